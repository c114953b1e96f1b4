package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/ldevries/trailhop/internal/domain"
	"github.com/ldevries/trailhop/internal/lock"
	"github.com/ldevries/trailhop/internal/repo"
)

// StrategyEngine is the exit strategy engine surface the hike lifecycle
// depends on. *ExitService satisfies it; tests inject a mock.
type StrategyEngine interface {
	Recompute(ctx context.Context, hike domain.ActiveHike, pos domain.Position) error
	Strategies(ctx context.Context, hikeID uuid.UUID) ([]domain.ExitStrategy, error)
}

// StartHikeRequest carries the inputs for starting a hike. StartTime is
// optional; the service clock supplies "now" when it is nil.
type StartHikeRequest struct {
	PlannedRouteID uuid.UUID
	UserID         string
	Position       domain.Position
	StartTime      *time.Time
}

// HikeService is the state machine for one hiker's in-progress journey:
// start, location updates with strategy recomputation, and the final end.
//
// Operations on one hike are serialized through a per-hike lock so a
// location update's discard-and-recreate of the strategy set can never
// interleave with another update, a strategy read, or the end of the hike.
// Operations on distinct hikes run concurrently.
type HikeService struct {
	hikes      repo.HikeRepo
	completed  repo.CompletedHikeRepo
	exitPoints repo.ExitPointRepo
	engine     StrategyEngine
	locks      lock.Locker

	now   func() time.Time
	newID func() uuid.UUID
}

// NewHikeService constructs a HikeService.
func NewHikeService(
	hikes repo.HikeRepo,
	completed repo.CompletedHikeRepo,
	exitPoints repo.ExitPointRepo,
	engine StrategyEngine,
	locks lock.Locker,
) *HikeService {
	return &HikeService{
		hikes:      hikes,
		completed:  completed,
		exitPoints: exitPoints,
		engine:     engine,
		locks:      locks,
		now:        time.Now,
		newID:      uuid.New,
	}
}

// Start creates an active hike for the user. The one-active-hike-per-user
// rule is enforced by the store's partial unique index; a second start
// without an intervening End surfaces as domain.ErrConflict regardless of
// which service instance handles it.
func (s *HikeService) Start(ctx context.Context, req StartHikeRequest) (domain.ActiveHike, error) {
	const op = "service.HikeService.Start"

	if req.UserID == "" {
		return domain.ActiveHike{}, fmt.Errorf("%s: %w: user_id is required", op, domain.ErrValidation)
	}
	if req.PlannedRouteID == uuid.Nil {
		return domain.ActiveHike{}, fmt.Errorf("%s: %w: planned_route_id is required", op, domain.ErrValidation)
	}
	if err := req.Position.Validate(); err != nil {
		return domain.ActiveHike{}, fmt.Errorf("%s: %w", op, err)
	}

	startedAt := s.now()
	if req.StartTime != nil {
		startedAt = *req.StartTime
	}

	hike := domain.ActiveHike{
		ID:              s.newID(),
		UserID:          req.UserID,
		PlannedRouteID:  req.PlannedRouteID,
		CurrentPosition: req.Position,
		StartedAt:       startedAt,
		Status:          domain.HikeStatusActive,
	}

	created, err := s.hikes.Create(ctx, hike)
	if err != nil {
		return domain.ActiveHike{}, fmt.Errorf("%s: %w", op, err)
	}
	return created, nil
}

// UpdateLocation records a new position for an active hike. Exit strategies
// are recomputed for the new position before it is persisted, so a
// concurrent strategy read never observes a position with no matching
// strategies.
func (s *HikeService) UpdateLocation(ctx context.Context, hikeID uuid.UUID, pos domain.Position, at *time.Time) error {
	const op = "service.HikeService.UpdateLocation"

	unlock, err := s.locks.Lock(ctx, hikeKey(hikeID))
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer unlock()

	hike, err := s.hikes.GetByID(ctx, hikeID)
	if err != nil {
		return fmt.Errorf("%s: hike %s: %w", op, hikeID, err)
	}
	if hike.Status != domain.HikeStatusActive {
		return fmt.Errorf("%s: %w: hike %s is %s", op, domain.ErrState, hikeID, hike.Status)
	}
	if err := pos.Validate(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.engine.Recompute(ctx, hike, pos); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	ts := s.now()
	if at != nil {
		ts = *at
	}
	if err := s.hikes.SetPosition(ctx, hikeID, pos, ts); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// End terminates an active hike at the given exit point, writes the
// immutable completed-hike archive record, and flips the hike's status.
// Ended hikes reject all further UpdateLocation and End calls.
func (s *HikeService) End(ctx context.Context, hikeID, exitPointID uuid.UUID, endTime *time.Time) (domain.CompletedHike, error) {
	const op = "service.HikeService.End"

	unlock, err := s.locks.Lock(ctx, hikeKey(hikeID))
	if err != nil {
		return domain.CompletedHike{}, fmt.Errorf("%s: %w", op, err)
	}
	defer unlock()

	hike, err := s.hikes.GetByID(ctx, hikeID)
	if err != nil {
		return domain.CompletedHike{}, fmt.Errorf("%s: hike %s: %w", op, hikeID, err)
	}
	if hike.Status != domain.HikeStatusActive {
		return domain.CompletedHike{}, fmt.Errorf("%s: %w: hike %s is %s", op, domain.ErrState, hikeID, hike.Status)
	}

	exitPoint, err := s.exitPoints.GetByID(ctx, exitPointID)
	if err != nil {
		return domain.CompletedHike{}, fmt.Errorf("%s: exit point %s: %w", op, exitPointID, err)
	}

	endedAt := s.now()
	if endTime != nil {
		endedAt = *endTime
	}

	completed := domain.CompletedHike{
		ID:              s.newID(),
		ActiveHikeID:    hike.ID,
		UserID:          hike.UserID,
		PlannedRouteID:  hike.PlannedRouteID,
		EndedAt:         endedAt,
		ExitPointID:     exitPoint.ID,
		DurationMinutes: int(math.Round(endedAt.Sub(hike.StartedAt).Minutes())),
	}

	archived, err := s.completed.Create(ctx, completed)
	if err != nil {
		return domain.CompletedHike{}, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.hikes.MarkEnded(ctx, hike.ID); err != nil {
		return domain.CompletedHike{}, fmt.Errorf("%s: %w", op, err)
	}

	return archived, nil
}

// ExitStrategies returns the ranked exit strategies for the hike's latest
// reported position. The read takes the same per-hike lock as location
// updates, so it always sees a fully swapped-in strategy set.
func (s *HikeService) ExitStrategies(ctx context.Context, hikeID uuid.UUID) ([]domain.ExitStrategy, error) {
	const op = "service.HikeService.ExitStrategies"

	unlock, err := s.locks.Lock(ctx, hikeKey(hikeID))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer unlock()

	if _, err := s.hikes.GetByID(ctx, hikeID); err != nil {
		return nil, fmt.Errorf("%s: hike %s: %w", op, hikeID, err)
	}

	strategies, err := s.engine.Strategies(ctx, hikeID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return strategies, nil
}

func hikeKey(id uuid.UUID) string {
	return "hike:" + id.String()
}
