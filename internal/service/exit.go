package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ldevries/trailhop/internal/domain"
	"github.com/ldevries/trailhop/internal/geo"
	"github.com/ldevries/trailhop/internal/repo"
)

// Exit strategy tuning. The radius and candidate cap bound the cost of one
// recomputation; the wait penalty is a flat estimate for reaching and
// boarding transit from an exit that has a linked stop.
const (
	exitRadiusKm          = 20.0
	exitCandidateLimit    = 10
	walkSpeedKmh          = 5.0
	transitWaitPenaltyMin = 10
)

// ExitScorer is the optional collaborator that rates an exit point from its
// textual description. A score augments the deterministic metrics but never
// replaces them; a failing scorer degrades ranking quality only.
type ExitScorer interface {
	Score(ctx context.Context, description string) (float64, error)
}

// ExitService is the exit strategy engine: on every position update it
// replaces the hike's entire strategy set with freshly ranked safe-exit
// options for the new position.
type ExitService struct {
	exitPoints repo.ExitPointRepo
	strategies repo.ExitStrategyRepo
	scorer     ExitScorer // nil when no scorer is configured

	now   func() time.Time
	newID func() uuid.UUID
}

// NewExitService constructs an ExitService. scorer may be nil; strategies
// then rank purely on eta.
func NewExitService(exitPoints repo.ExitPointRepo, strategies repo.ExitStrategyRepo, scorer ExitScorer) *ExitService {
	return &ExitService{
		exitPoints: exitPoints,
		strategies: strategies,
		scorer:     scorer,
		now:        time.Now,
		newID:      uuid.New,
	}
}

// Recompute builds the full strategy batch for the given position in memory
// and then swaps it in atomically, discarding everything computed for the
// previous position. The previous set describes a position the hiker is no
// longer at, so it is replaced even when no candidates are found — an empty
// set is a valid answer for a hiker outside coverage, not an error.
func (s *ExitService) Recompute(ctx context.Context, hike domain.ActiveHike, pos domain.Position) error {
	const op = "service.ExitService.Recompute"

	candidates, err := s.exitPoints.NearestWithin(ctx, pos, exitRadiusKm, exitCandidateLimit)
	if err != nil {
		return fmt.Errorf("%s: hike %s: %w", op, hike.ID, err)
	}

	computedAt := s.now()
	batch := make([]domain.ExitStrategy, 0, len(candidates))
	for _, ep := range candidates {
		onFoot := geo.Minutes(geo.HaversineKm(pos.Lat, pos.Lng, ep.Position.Lat, ep.Position.Lng), walkSpeedKmh)

		transit := 0
		if len(ep.TransitStopIDs) > 0 {
			transit = transitWaitPenaltyMin
		}

		st := domain.ExitStrategy{
			ID:             s.newID(),
			ActiveHikeID:   hike.ID,
			ExitPointID:    ep.ID,
			OnFootMinutes:  onFoot,
			TransitMinutes: transit,
			ETAMinutes:     onFoot + transit,
			ComputedAt:     computedAt,
		}

		if s.scorer != nil {
			// A transient scorer failure leaves this candidate unscored; it
			// must never abort the recomputation.
			if score, err := s.scorer.Score(ctx, describeExitPoint(ep)); err == nil {
				st.Score = &score
			}
		}

		batch = append(batch, st)
	}

	if err := s.strategies.ReplaceForHike(ctx, hike.ID, batch); err != nil {
		return fmt.Errorf("%s: hike %s: %w", op, hike.ID, err)
	}
	return nil
}

// Strategies returns the hike's current exit strategies ranked by score
// descending (missing score lowest) then eta ascending — a quality signal
// can override raw travel time, and the order stays total with no scorer.
func (s *ExitService) Strategies(ctx context.Context, hikeID uuid.UUID) ([]domain.ExitStrategy, error) {
	strategies, err := s.strategies.ListByHike(ctx, hikeID)
	if err != nil {
		return nil, fmt.Errorf("service.ExitService.Strategies: hike %s: %w", hikeID, err)
	}
	return strategies, nil
}

// describeExitPoint flattens an exit point into the text the scorer sees.
func describeExitPoint(ep domain.ExitPoint) string {
	if len(ep.AccessibilityTags) == 0 {
		return ep.Name
	}
	return ep.Name + " " + strings.Join(ep.AccessibilityTags, " ")
}
