package handler

import (
	"net/http"

	"github.com/attaboy/matchday/internal/feed"
	"github.com/attaboy/matchday/internal/infra"
)

// FeedStatuser reports the match feed poller health.
type FeedStatuser interface {
	Status() feed.Status
}

// HealthDeps are the dependencies /health reports on. Only Store is required.
type HealthDeps struct {
	Store       infra.Pinger
	Projections infra.Pinger
	Feed        FeedStatuser
	Hub         *infra.WSHub
}

// HealthHandler returns a health check endpoint. Storage failures answer 503;
// an unhealthy feed only degrades the status since bets keep working.
func HealthHandler(deps HealthDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := "healthy"
		code := http.StatusOK
		checks := map[string]string{}

		ping := func(name string, p infra.Pinger) {
			if p == nil {
				return
			}
			if err := infra.HealthCheck(r.Context(), p); err != nil {
				checks[name] = err.Error()
				status, code = "unhealthy", http.StatusServiceUnavailable
				return
			}
			checks[name] = "ok"
		}
		ping("store", deps.Store)
		ping("projections", deps.Projections)

		body := map[string]interface{}{"checks": checks}
		if deps.Feed != nil {
			st := deps.Feed.Status()
			body["feed"] = st
			if !st.IsReady() && status == "healthy" {
				status = "degraded"
			}
		}
		if deps.Hub != nil {
			body["live"] = map[string]int{
				"connections": deps.Hub.ConnectionCount(),
				"rooms":       deps.Hub.RoomCount(),
			}
		}
		body["status"] = status
		RespondJSON(w, code, body)
	}
}
