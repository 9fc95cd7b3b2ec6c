// Package provider fetches match snapshots from external feeds.
package provider

import (
	"context"

	"github.com/attaboy/matchday/internal/domain"
)

// MatchSource supplies the current snapshot of every match in one
// competition season. Implementations must derive match ids with
// domain.MatchID so repeated fetches refer to the same matches.
type MatchSource interface {
	Name() string
	FetchMatches(ctx context.Context, competition, season string) ([]domain.Match, error)
}
