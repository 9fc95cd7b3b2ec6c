package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/attaboy/matchday/internal/auth"
	"github.com/attaboy/matchday/internal/domain"
	"github.com/attaboy/matchday/internal/infra"
	"github.com/attaboy/matchday/internal/projection"
	"github.com/attaboy/matchday/internal/repository"
	"github.com/attaboy/matchday/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "live-test-secret-that-is-long-enough"

func TestLiveStream(t *testing.T) {
	ctx := context.Background()
	hub := infra.NewWSHub(noopLogger())
	svc := service.NewGameService(repository.NewMemoryStore(), projection.NewInMemoryStore(), hub, nil, noopLogger())
	jwtMgr := auth.NewJWTManager(testSecret, time.Hour, time.Hour)

	alice, err := svc.CreatePlayer(ctx, "alice")
	require.NoError(t, err)
	m := domain.NewMatch("PL", "2024", 1, "Arsenal", "Wolves", time.Now().Add(24*time.Hour))
	g, err := svc.CreateGame(ctx, service.CreateGameInput{
		Name: "pool", Competition: "PL", Season: "2024",
		PlayerIDs: []uuid.UUID{alice.ID}, Matches: []domain.Match{m},
	})
	require.NoError(t, err)

	r := chi.NewRouter()
	r.With(auth.AuthenticatePlayer(jwtMgr)).Get("/games/{gameID}/live", NewLiveHandler(svc, hub, []string{"*"}, noopLogger()).Stream)
	srv := httptest.NewServer(r)
	defer srv.Close()

	token, err := jwtMgr.GenerateToken(auth.RealmPlayer, alice.ID, alice.Name, "")
	require.NoError(t, err)
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/games/" + g.ID().String() + "/live?access_token=" + token

	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()
	assert.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)

	require.Eventually(t, func() bool { return hub.ConnectionCount() == 1 }, time.Second, 10*time.Millisecond)

	require.NoError(t, svc.PlaceBet(ctx, g.ID(), alice.ID, domain.Bet{MatchID: m.ID, HomeGoals: 1, AwayGoals: 0}))

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, payload, err := conn.ReadMessage()
	require.NoError(t, err)

	var msg struct {
		Event string            `json:"event"`
		Data  map[string]string `json:"data"`
	}
	require.NoError(t, json.Unmarshal(payload, &msg))
	assert.Equal(t, "bet.placed", msg.Event)
	assert.Equal(t, m.ID.String(), msg.Data["match_id"])
	assert.NotContains(t, string(payload), "home_goals", "predictions stay private")

	conn.Close()
	require.Eventually(t, func() bool { return hub.ConnectionCount() == 0 }, 2*time.Second, 10*time.Millisecond)
}

func TestLiveStream_Rejects(t *testing.T) {
	hub := infra.NewWSHub(noopLogger())
	svc := service.NewGameService(repository.NewMemoryStore(), projection.NewInMemoryStore(), hub, nil, noopLogger())
	jwtMgr := auth.NewJWTManager(testSecret, time.Hour, time.Hour)

	r := chi.NewRouter()
	r.With(auth.AuthenticatePlayer(jwtMgr)).Get("/games/{gameID}/live", NewLiveHandler(svc, hub, nil, noopLogger()).Stream)
	srv := httptest.NewServer(r)
	defer srv.Close()
	base := "ws" + strings.TrimPrefix(srv.URL, "http")

	t.Run("no token", func(t *testing.T) {
		_, resp, err := websocket.DefaultDialer.Dial(base+"/games/"+uuid.New().String()+"/live", nil)
		require.Error(t, err)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("unknown game", func(t *testing.T) {
		token, err := jwtMgr.GenerateToken(auth.RealmPlayer, uuid.New(), "ghost", "")
		require.NoError(t, err)
		_, resp, err := websocket.DefaultDialer.Dial(base+"/games/"+uuid.New().String()+"/live?access_token="+token, nil)
		require.Error(t, err)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestLiveStream_HubShutdownClosesSocket(t *testing.T) {
	ctx := context.Background()
	hub := infra.NewWSHub(noopLogger())
	svc := service.NewGameService(repository.NewMemoryStore(), projection.NewInMemoryStore(), hub, nil, noopLogger())
	jwtMgr := auth.NewJWTManager(testSecret, time.Hour, time.Hour)

	m := domain.NewMatch("PL", "2024", 1, "Arsenal", "Wolves", time.Now().Add(time.Hour))
	g, err := svc.CreateGame(ctx, service.CreateGameInput{Name: "pool", Competition: "PL", Season: "2024", Matches: []domain.Match{m}})
	require.NoError(t, err)

	r := chi.NewRouter()
	r.With(auth.AuthenticatePlayer(jwtMgr)).Get("/games/{gameID}/live", NewLiveHandler(svc, hub, nil, noopLogger()).Stream)
	srv := httptest.NewServer(r)
	defer srv.Close()

	token, err := jwtMgr.GenerateToken(auth.RealmPlayer, uuid.New(), "viewer", "")
	require.NoError(t, err)
	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/games/"+g.ID().String()+"/live?access_token="+token, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.ConnectionCount() == 1 }, time.Second, 10*time.Millisecond)
	hub.Shutdown(ctx)

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, _, err = conn.ReadMessage()
	var closeErr *websocket.CloseError
	require.ErrorAs(t, err, &closeErr)
	assert.Equal(t, websocket.CloseGoingAway, closeErr.Code)
}
