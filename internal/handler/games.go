package handler

import (
	"net/http"

	"github.com/attaboy/matchday/internal/auth"
	"github.com/attaboy/matchday/internal/domain"
	"github.com/attaboy/matchday/internal/game"
	"github.com/attaboy/matchday/internal/guard"
	"github.com/attaboy/matchday/internal/service"
	"github.com/google/uuid"
)

// GameHandler serves the player-facing game endpoints.
type GameHandler struct {
	games   *service.GameService
	limiter *guard.RateLimiter
}

// NewGameHandler creates a new GameHandler.
func NewGameHandler(games *service.GameService, limiter *guard.RateLimiter) *GameHandler {
	return &GameHandler{games: games, limiter: limiter}
}

// GameView is the summary returned by GET /games/{gameID}.
type GameView struct {
	domain.Game
	Players  []domain.Player `json:"players"`
	Incoming int             `json:"incoming_matches"`
	Past     int             `json:"past_matches"`
}

func newGameView(g *game.Game) GameView {
	snap := g.Snapshot()
	return GameView{
		Game:     snap.Game,
		Players:  snap.Players,
		Incoming: len(snap.Incoming),
		Past:     len(snap.Past),
	}
}

// List handles GET /games.
func (h *GameHandler) List(w http.ResponseWriter, r *http.Request) {
	games, err := h.games.ListActive(r.Context())
	if err != nil {
		RespondError(w, err)
		return
	}
	if games == nil {
		games = []domain.Game{}
	}
	RespondJSON(w, http.StatusOK, map[string]interface{}{"games": games})
}

// Get handles GET /games/{gameID}.
func (h *GameHandler) Get(w http.ResponseWriter, r *http.Request) {
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
	RespondJSON(w, http.StatusOK, newGameView(g))
}

// Join handles POST /games/{gameID}/join.
func (h *GameHandler) Join(w http.ResponseWriter, r *http.Request) {
	playerID, gameID, ok := h.playerAndGame(w, r)
	if !ok {
		return
	}
	if err := h.games.JoinGame(r.Context(), gameID, playerID); err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusNoContent, nil)
}

// Matches handles GET /games/{gameID}/matches. Other players' bets stay
// hidden until their match kicks off.
func (h *GameHandler) Matches(w http.ResponseWriter, r *http.Request) {
	playerID, gameID, ok := h.playerAndGame(w, r)
	if !ok {
		return
	}
	views, err := h.games.IncomingMatches(r.Context(), gameID, playerID)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, map[string]interface{}{"matches": views})
}

// Match handles GET /games/{gameID}/matches/{matchID}.
func (h *GameHandler) Match(w http.ResponseWriter, r *http.Request) {
	gameID, err := URLUUID(r, "gameID")
	if err != nil {
		RespondError(w, err)
		return
	}
	matchID, err := URLUUID(r, "matchID")
	if err != nil {
		RespondError(w, err)
		return
	}
	m, err := h.games.Match(r.Context(), gameID, matchID)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, m)
}

// PlaceBetInput is the body of POST /games/{gameID}/bets.
type PlaceBetInput struct {
	MatchID   uuid.UUID `json:"match_id"`
	HomeGoals *int      `json:"home_goals"`
	AwayGoals *int      `json:"away_goals"`
}

// PlaceBet handles POST /games/{gameID}/bets.
func (h *GameHandler) PlaceBet(w http.ResponseWriter, r *http.Request) {
	playerID, gameID, ok := h.playerAndGame(w, r)
	if !ok {
		return
	}
	if res := h.limiter.Check(r.Context(), "bet:"+playerID.String()); !res.Allowed {
		respondBlocked(w, res)
		return
	}

	var input PlaceBetInput
	if err := DecodeJSON(r, &input); err != nil {
		respondInvalidBody(w)
		return
	}
	if input.MatchID == uuid.Nil || input.HomeGoals == nil || input.AwayGoals == nil {
		RespondError(w, domain.ErrValidation("match_id, home_goals and away_goals are required"))
		return
	}

	bet := domain.Bet{MatchID: input.MatchID, HomeGoals: *input.HomeGoals, AwayGoals: *input.AwayGoals}
	if err := h.games.PlaceBet(r.Context(), gameID, playerID, bet); err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusCreated, bet)
}

// Results handles GET /games/{gameID}/results.
func (h *GameHandler) Results(w http.ResponseWriter, r *http.Request) {
	gameID, err := URLUUID(r, "gameID")
	if err != nil {
		RespondError(w, err)
		return
	}
	results, err := h.games.PastResults(r.Context(), gameID)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, map[string]interface{}{"results": results})
}

// Standings handles GET /games/{gameID}/standings.
func (h *GameHandler) Standings(w http.ResponseWriter, r *http.Request) {
	gameID, err := URLUUID(r, "gameID")
	if err != nil {
		RespondError(w, err)
		return
	}
	standings, err := h.games.Standings(r.Context(), gameID)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, standings)
}

// Winners handles GET /games/{gameID}/winners.
func (h *GameHandler) Winners(w http.ResponseWriter, r *http.Request) {
	gameID, err := URLUUID(r, "gameID")
	if err != nil {
		RespondError(w, err)
		return
	}
	winners, err := h.games.Winners(r.Context(), gameID)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, map[string]interface{}{"winners": winners})
}

func (h *GameHandler) playerAndGame(w http.ResponseWriter, r *http.Request) (uuid.UUID, uuid.UUID, bool) {
	playerID, ok := auth.SubjectFromContext(r.Context())
	if !ok {
		RespondError(w, domain.ErrUnauthorized("no player in context"))
		return uuid.Nil, uuid.Nil, false
	}
	gameID, err := URLUUID(r, "gameID")
	if err != nil {
		RespondError(w, err)
		return uuid.Nil, uuid.Nil, false
	}
	return playerID, gameID, true
}
