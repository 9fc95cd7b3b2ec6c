// Package feed keeps loaded games in step with an external match feed.
package feed

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/attaboy/matchday/internal/domain"
	"github.com/attaboy/matchday/internal/guard"
	"github.com/attaboy/matchday/internal/provider"
	"github.com/attaboy/matchday/internal/service"
	"github.com/google/uuid"
)

const defaultInterval = time.Minute

// Games is the slice of GameService the poller drives.
type Games interface {
	ListActive(ctx context.Context) ([]domain.Game, error)
	ApplyMatchUpdate(ctx context.Context, gameID uuid.UUID, m domain.Match) (service.UpdateResult, error)
}

// Status describes the recent health of the poll loop.
type Status struct {
	Source              string    `json:"source"`
	Circuit             string    `json:"circuit"`
	ConsecutiveFailures int       `json:"consecutive_failures"`
	LastError           string    `json:"last_error,omitempty"`
	LastAttempt         time.Time `json:"last_attempt"`
	LastSuccess         time.Time `json:"last_success"`
}

// IsReady reports whether the feed has succeeded recently enough to trust.
func (s Status) IsReady() bool {
	return !s.LastSuccess.IsZero() && s.Circuit != guard.CircuitOpen.String()
}

// CycleStats counts what one poll did.
type CycleStats struct {
	Fetched int
	Stored  int
	Scored  int
	Skipped int
	Failed  int
}

// Poller fetches every active competition season on an interval and forwards
// each snapshot, in feed order, to the games that track it.
type Poller struct {
	games    Games
	source   provider.MatchSource
	breaker  *guard.CircuitBreaker
	dedup    *guard.DedupGuard
	interval time.Duration
	logger   *slog.Logger
	now      func() time.Time

	statusMu sync.RWMutex
	status   Status
}

// NewPoller creates a feed poller.
func NewPoller(games Games, source provider.MatchSource, breaker *guard.CircuitBreaker, interval time.Duration, logger *slog.Logger) *Poller {
	if interval <= 0 {
		interval = defaultInterval
	}
	return &Poller{
		games:    games,
		source:   source,
		breaker:  breaker,
		dedup:    guard.NewDedupGuard(),
		interval: interval,
		logger:   logger,
		now:      time.Now,
		status:   Status{Source: source.Name(), Circuit: guard.CircuitClosed.String()},
	}
}

// Run polls until ctx is cancelled. The first poll happens immediately.
func (p *Poller) Run(ctx context.Context) {
	p.logger.Info("feed poller started", "source", p.source.Name(), "interval", p.interval.String())

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.PollOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("feed poller stopped")
			return
		case <-ticker.C:
			p.PollOnce(ctx)
		}
	}
}

type season struct {
	competition string
	season      string
}

func (s season) key() string { return s.competition + "/" + s.season }

// PollOnce runs a single fetch-and-apply cycle.
func (p *Poller) PollOnce(ctx context.Context) CycleStats {
	var stats CycleStats
	start := p.now()
	p.recordAttempt(start)

	active, err := p.games.ListActive(ctx)
	if err != nil {
		p.logger.Error("feed list games failed", "error", err)
		p.recordFailure(err)
		return stats
	}

	p.pruneDedup(active)

	bySeason := make(map[season][]uuid.UUID)
	var order []season
	for _, g := range active {
		s := season{g.Competition, g.Season}
		if _, ok := bySeason[s]; !ok {
			order = append(order, s)
		}
		bySeason[s] = append(bySeason[s], g.ID)
	}

	failed := false
	for _, s := range order {
		circuitKey := p.source.Name() + ":" + s.key()
		if res := p.breaker.Check(ctx, circuitKey); !res.Allowed {
			p.logger.Warn("feed fetch skipped", "competition", s.competition, "season", s.season, "reason", res.Reason)
			failed = true
			continue
		}

		matches, err := p.source.FetchMatches(ctx, s.competition, s.season)
		if err != nil {
			p.breaker.RecordFailure(circuitKey)
			p.logger.Error("feed fetch failed", "competition", s.competition, "season", s.season, "error", err)
			p.recordFailure(fmt.Errorf("fetch %s: %w", s.key(), err))
			failed = true
			continue
		}
		p.breaker.RecordSuccess(circuitKey)
		stats.Fetched += len(matches)

		for _, gameID := range bySeason[s] {
			p.applyAll(ctx, gameID, matches, &stats)
		}
	}

	if !failed {
		p.recordSuccess(start)
	}
	p.logger.Debug("feed poll complete",
		"games", len(active), "fetched", stats.Fetched, "stored", stats.Stored,
		"scored", stats.Scored, "skipped", stats.Skipped, "failed", stats.Failed,
		"duration_ms", p.now().Sub(start).Milliseconds())
	return stats
}

func (p *Poller) applyAll(ctx context.Context, gameID uuid.UUID, matches []domain.Match, stats *CycleStats) {
	for _, m := range matches {
		key := gameID.String() + ":" + m.ID.String()
		if res := p.dedup.Check(ctx, key, fingerprint(m)); !res.Allowed {
			stats.Skipped++
			continue
		}

		result, err := p.games.ApplyMatchUpdate(ctx, gameID, m)
		if err != nil {
			// Retry the same snapshot next cycle.
			p.dedup.Forget(key)
			stats.Failed++
			p.logger.Error("feed apply failed", "game_id", gameID, "match_id", m.ID, "error", err)
			continue
		}
		switch result {
		case service.UpdateStored:
			stats.Stored++
		case service.UpdateScored:
			stats.Scored++
		default:
			stats.Skipped++
		}
	}
}

// pruneDedup forgets fingerprints of games that no longer take updates.
func (p *Poller) pruneDedup(active []domain.Game) {
	live := make(map[string]bool, len(active))
	for _, g := range active {
		live[g.ID.String()] = true
	}
	dropped := p.dedup.Retain(func(key string) bool {
		gameID, _, _ := strings.Cut(key, ":")
		return live[gameID]
	})
	if dropped > 0 {
		p.logger.Debug("feed dedup pruned", "keys", dropped)
	}
}

// fingerprint covers every field a feed update can change.
func fingerprint(m domain.Match) string {
	return fmt.Sprintf("%s|%d-%d|%s|%.3f/%.3f/%.3f",
		m.Status, m.HomeGoals, m.AwayGoals, m.Date.UTC().Format(time.RFC3339),
		m.HomeOdds, m.DrawOdds, m.AwayOdds)
}

func (p *Poller) recordAttempt(at time.Time) {
	p.statusMu.Lock()
	defer p.statusMu.Unlock()
	p.status.LastAttempt = at
}

func (p *Poller) recordSuccess(at time.Time) {
	p.statusMu.Lock()
	defer p.statusMu.Unlock()
	p.status.ConsecutiveFailures = 0
	p.status.LastError = ""
	p.status.LastSuccess = at
}

func (p *Poller) recordFailure(err error) {
	p.statusMu.Lock()
	defer p.statusMu.Unlock()
	p.status.ConsecutiveFailures++
	p.status.LastError = err.Error()
}

// Status returns a snapshot of the poller's recent health. Circuit reports
// the worst circuit state across the polled seasons.
func (p *Poller) Status() Status {
	p.statusMu.RLock()
	st := p.status
	p.statusMu.RUnlock()
	st.Circuit = p.worstCircuit().String()
	return st
}

func (p *Poller) worstCircuit() guard.CircuitState {
	worst := guard.CircuitClosed
	for _, key := range p.breaker.Keys() {
		switch state, _ := p.breaker.State(key); state {
		case guard.CircuitOpen:
			return state
		case guard.CircuitHalfOpen:
			worst = state
		}
	}
	return worst
}
