package handler

import (
	"crypto/subtle"
	"net/http"

	"github.com/attaboy/matchday/internal/auth"
	"github.com/attaboy/matchday/internal/domain"
	"github.com/attaboy/matchday/internal/guard"
	"github.com/attaboy/matchday/internal/service"
	"github.com/google/uuid"
)

// AuthHandler issues player and admin tokens.
type AuthHandler struct {
	games    *service.GameService
	jwt      *auth.JWTManager
	adminKey string
	limiter  *guard.RateLimiter
}

// NewAuthHandler creates a new AuthHandler. Admin sign-in is disabled when
// adminKey is empty.
func NewAuthHandler(games *service.GameService, jwt *auth.JWTManager, adminKey string, limiter *guard.RateLimiter) *AuthHandler {
	return &AuthHandler{games: games, jwt: jwt, adminKey: adminKey, limiter: limiter}
}

// GuestInput is the body of POST /auth/guest.
type GuestInput struct {
	Name string `json:"name"`
}

// TokenResult is returned by the sign-in endpoints.
type TokenResult struct {
	Token  string         `json:"token"`
	Player *domain.Player `json:"player,omitempty"`
}

// Guest handles POST /auth/guest: it registers a new player and signs them in.
func (h *AuthHandler) Guest(w http.ResponseWriter, r *http.Request) {
	if res := h.limiter.Check(r.Context(), "guest:"+ClientIP(r)); !res.Allowed {
		respondBlocked(w, res)
		return
	}

	var input GuestInput
	if err := DecodeJSON(r, &input); err != nil {
		respondInvalidBody(w)
		return
	}

	player, err := h.games.CreatePlayer(r.Context(), input.Name)
	if err != nil {
		RespondError(w, err)
		return
	}
	token, err := h.jwt.GenerateToken(auth.RealmPlayer, player.ID, player.Name, "")
	if err != nil {
		RespondError(w, domain.ErrInternal("issue token", err))
		return
	}
	RespondJSON(w, http.StatusCreated, TokenResult{Token: token, Player: player})
}

// AdminInput is the body of POST /auth/admin.
type AdminInput struct {
	APIKey string `json:"api_key"`
	Role   string `json:"role"`
}

// Admin handles POST /auth/admin: it exchanges the admin API key for a token.
func (h *AuthHandler) Admin(w http.ResponseWriter, r *http.Request) {
	if res := h.limiter.Check(r.Context(), "admin:"+ClientIP(r)); !res.Allowed {
		respondBlocked(w, res)
		return
	}

	var input AdminInput
	if err := DecodeJSON(r, &input); err != nil {
		respondInvalidBody(w)
		return
	}
	if h.adminKey == "" || subtle.ConstantTimeCompare([]byte(input.APIKey), []byte(h.adminKey)) != 1 {
		RespondError(w, domain.ErrUnauthorized("invalid api key"))
		return
	}
	role := input.Role
	if role == "" {
		role = auth.RoleOperator
	}
	if !auth.ValidRole(role) {
		RespondError(w, domain.ErrValidation("unknown role: "+role))
		return
	}

	token, err := h.jwt.GenerateToken(auth.RealmAdmin, uuid.New(), "admin", role)
	if err != nil {
		RespondError(w, domain.ErrInternal("issue token", err))
		return
	}
	RespondJSON(w, http.StatusOK, TokenResult{Token: token})
}
