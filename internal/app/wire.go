package app

import (
	"log/slog"

	"github.com/attaboy/matchday/internal/auth"
	"github.com/attaboy/matchday/internal/guard"
	"github.com/attaboy/matchday/internal/handler"
	"github.com/attaboy/matchday/internal/infra"
	"github.com/attaboy/matchday/internal/service"
	"github.com/go-chi/chi/v5"
)

// RouterDeps holds all dependencies needed by NewRouter.
type RouterDeps struct {
	Games       *service.GameService
	Hub         *infra.WSHub
	JWTMgr      *auth.JWTManager
	Logger      *slog.Logger
	AdminAPIKey string
	CORSOrigins []string

	BetLimiter    *guard.RateLimiter
	SignInLimiter *guard.RateLimiter

	// Health
	Store       infra.Pinger
	Projections infra.Pinger
	Feed        handler.FeedStatuser
}

// NewRouter assembles the chi.Router with all routes and middleware.
func NewRouter(deps RouterDeps) chi.Router {
	jwtMgr := deps.JWTMgr
	logger := deps.Logger

	// Handlers
	authHandler := handler.NewAuthHandler(deps.Games, jwtMgr, deps.AdminAPIKey, deps.SignInLimiter)
	gameHandler := handler.NewGameHandler(deps.Games, deps.BetLimiter)
	liveHandler := handler.NewLiveHandler(deps.Games, deps.Hub, deps.CORSOrigins, logger)
	adminHandler := handler.NewAdminHandler(deps.Games)

	// Router
	r := chi.NewRouter()

	// Global middleware (order matters)
	r.Use(handler.Recovery(logger))
	r.Use(handler.RequestID)
	r.Use(handler.RequestLogger(logger))
	r.Use(handler.CORS(deps.CORSOrigins))
	r.Use(handler.JSONContentType)

	// Health (no auth)
	r.Get("/health", handler.HealthHandler(handler.HealthDeps{
		Store:       deps.Store,
		Projections: deps.Projections,
		Feed:        deps.Feed,
		Hub:         deps.Hub,
	}))

	// Auth routes (no auth)
	r.Route("/auth", func(r chi.Router) {
		r.Post("/guest", authHandler.Guest)
		r.Post("/admin", authHandler.Admin)
	})

	// Player-authenticated routes
	r.Group(func(r chi.Router) {
		r.Use(auth.AuthenticatePlayer(jwtMgr))

		r.Route("/games", func(r chi.Router) {
			r.Get("/", gameHandler.List)
			r.Route("/{gameID}", func(r chi.Router) {
				r.Get("/", gameHandler.Get)
				r.Post("/join", gameHandler.Join)
				r.Get("/matches", gameHandler.Matches)
				r.Get("/matches/{matchID}", gameHandler.Match)
				r.Post("/bets", gameHandler.PlaceBet)
				r.Get("/results", gameHandler.Results)
				r.Get("/standings", gameHandler.Standings)
				r.Get("/winners", gameHandler.Winners)
				r.Get("/live", liveHandler.Stream)
			})
		})
	})

	// Admin-authenticated routes
	r.Route("/admin", func(r chi.Router) {
		r.Use(auth.AuthenticateAdmin(jwtMgr))

		r.Route("/games", func(r chi.Router) {
			r.Get("/{gameID}/matches", adminHandler.Matches)

			r.Group(func(r chi.Router) {
				r.Use(auth.RequireRole(auth.WriteRoles()...))
				r.Post("/", adminHandler.CreateGame)
				r.Post("/{gameID}/matches", adminHandler.PushMatch)
			})
		})
	})

	return r
}
