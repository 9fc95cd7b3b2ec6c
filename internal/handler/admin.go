package handler

import (
	"net/http"

	"github.com/attaboy/matchday/internal/domain"
	"github.com/attaboy/matchday/internal/service"
	"github.com/google/uuid"
)

// AdminHandler serves game management for the admin realm.
type AdminHandler struct {
	games *service.GameService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(games *service.GameService) *AdminHandler {
	return &AdminHandler{games: games}
}

// CreateGame handles POST /admin/games.
func (h *AdminHandler) CreateGame(w http.ResponseWriter, r *http.Request) {
	var input service.CreateGameInput
	if err := DecodeJSON(r, &input); err != nil {
		respondInvalidBody(w)
		return
	}
	g, err := h.games.CreateGame(r.Context(), input)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusCreated, newGameView(g))
}

// Matches handles GET /admin/games/{gameID}/matches with every bet visible.
func (h *AdminHandler) Matches(w http.ResponseWriter, r *http.Request) {
	gameID, err := URLUUID(r, "gameID")
	if err != nil {
		RespondError(w, err)
		return
	}
	g, err := h.games.Game(r.Context(), gameID)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, map[string]interface{}{"matches": g.IncomingMatches()})
}

// PushMatch handles POST /admin/games/{gameID}/matches: a manual feed update.
// The match id is derived from the fixture when omitted.
func (h *AdminHandler) PushMatch(w http.ResponseWriter, r *http.Request) {
	gameID, err := URLUUID(r, "gameID")
	if err != nil {
		RespondError(w, err)
		return
	}
	var m domain.Match
	if err := DecodeJSON(r, &m); err != nil {
		respondInvalidBody(w)
		return
	}

	g, err := h.games.Game(r.Context(), gameID)
	if err != nil {
		RespondError(w, err)
		return
	}
	header := g.Header()
	if m.Competition == "" {
		m.Competition, m.Season = header.Competition, header.Season
	}
	if m.ID == uuid.Nil {
		m.ID = domain.MatchID(m.Competition, m.Season, m.Matchday, m.HomeTeam, m.AwayTeam)
	}

	result, err := h.games.ApplyMatchUpdate(r.Context(), gameID, m)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, map[string]interface{}{
		"match_id": m.ID,
		"result":   result.String(),
	})
}
