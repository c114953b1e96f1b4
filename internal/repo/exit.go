package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/ldevries/trailhop/internal/domain"
)

// ExitPointRepo defines the persistence operations for exit points.
type ExitPointRepo interface {
	Create(ctx context.Context, ep domain.ExitPoint) (domain.ExitPoint, error)

	// GetByID retrieves an exit point by its UUID primary key.
	// Returns domain.ErrNotFound if no exit point with that ID exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.ExitPoint, error)

	// NearestWithin returns up to limit exit points within radiusKm of pos,
	// nearest first. An empty result is not an error — the hiker may simply
	// be outside coverage.
	NearestWithin(ctx context.Context, pos domain.Position, radiusKm float64, limit int) ([]domain.ExitPoint, error)
}

// ExitStrategyRepo defines the persistence operations for exit strategies.
// The strategy set for a hike is only ever replaced wholesale or read — no
// per-row edits exist.
type ExitStrategyRepo interface {
	// ReplaceForHike discards every strategy currently stored for the hike
	// and inserts the given batch, inside a single transaction. A failure
	// rolls the whole swap back, so readers never observe a half-updated set.
	ReplaceForHike(ctx context.Context, hikeID uuid.UUID, batch []domain.ExitStrategy) error

	// ListByHike returns the hike's current strategies ordered by score
	// descending with missing scores last, then eta_minutes ascending.
	ListByHike(ctx context.Context, hikeID uuid.UUID) ([]domain.ExitStrategy, error)
}

type pgExitPointRepo struct {
	db db
}

// NewExitPointRepo constructs an ExitPointRepo backed by the provided db connection.
func NewExitPointRepo(db db) ExitPointRepo {
	return &pgExitPointRepo{db: db}
}

func (r *pgExitPointRepo) Create(ctx context.Context, ep domain.ExitPoint) (domain.ExitPoint, error) {
	const q = `
		INSERT INTO exit_points (id, name, location, accessibility_tags, transit_stop_ids)
		VALUES (@id, @name, ST_SetSRID(ST_MakePoint(@lng, @lat), 4326)::geography,
		        @accessibility_tags, @transit_stop_ids::uuid[])
		RETURNING id, name, ST_Y(location::geometry), ST_X(location::geometry),
		          accessibility_tags, transit_stop_ids`

	if ep.ID == uuid.Nil {
		ep.ID = uuid.New()
	}
	args := pgx.NamedArgs{
		"id":                 ep.ID,
		"name":               ep.Name,
		"lat":                ep.Position.Lat,
		"lng":                ep.Position.Lng,
		"accessibility_tags": ep.AccessibilityTags,
		"transit_stop_ids":   uuidStrings(ep.TransitStopIDs),
	}

	row := r.db.QueryRow(ctx, q, args)
	result, err := scanExitPoint(row)
	if err != nil {
		return domain.ExitPoint{}, fmt.Errorf("repo.ExitPointRepo.Create: %w", err)
	}
	return result, nil
}

func (r *pgExitPointRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.ExitPoint, error) {
	const q = `
		SELECT id, name, ST_Y(location::geometry), ST_X(location::geometry),
		       accessibility_tags, transit_stop_ids
		FROM exit_points
		WHERE id = @id`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id})
	result, err := scanExitPoint(row)
	if err != nil {
		return domain.ExitPoint{}, fmt.Errorf("repo.ExitPointRepo.GetByID: %w", err)
	}
	return result, nil
}

// NearestWithin combines an ST_DWithin radius filter with KNN ordering, so
// the result is both bounded and nearest-first in one index-assisted query.
func (r *pgExitPointRepo) NearestWithin(ctx context.Context, pos domain.Position, radiusKm float64, limit int) ([]domain.ExitPoint, error) {
	const q = `
		SELECT id, name, ST_Y(location::geometry), ST_X(location::geometry),
		       accessibility_tags, transit_stop_ids
		FROM exit_points
		WHERE ST_DWithin(location, ST_SetSRID(ST_MakePoint(@lng, @lat), 4326)::geography, @radius_m)
		ORDER BY location <-> ST_SetSRID(ST_MakePoint(@lng, @lat), 4326)::geography
		LIMIT @limit`

	args := pgx.NamedArgs{
		"lat":      pos.Lat,
		"lng":      pos.Lng,
		"radius_m": radiusKm * 1000,
		"limit":    limit,
	}

	rows, err := r.db.Query(ctx, q, args)
	if err != nil {
		return nil, fmt.Errorf("repo.ExitPointRepo.NearestWithin: %w", err)
	}
	defer rows.Close()

	var points []domain.ExitPoint
	for rows.Next() {
		ep, err := scanExitPoint(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.ExitPointRepo.NearestWithin: scan: %w", err)
		}
		points = append(points, ep)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.ExitPointRepo.NearestWithin: rows: %w", err)
	}

	return points, nil
}

func scanExitPoint(s scanner) (domain.ExitPoint, error) {
	var (
		ep      domain.ExitPoint
		id      pgtype.UUID
		stopIDs []pgtype.UUID
	)

	err := s.Scan(&id, &ep.Name, &ep.Position.Lat, &ep.Position.Lng,
		&ep.AccessibilityTags, &stopIDs)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ExitPoint{}, domain.ErrNotFound
		}
		return domain.ExitPoint{}, err
	}

	ep.ID = uuid.UUID(id.Bytes)
	ep.TransitStopIDs = pgUUIDs(stopIDs)
	return ep, nil
}

type pgExitStrategyRepo struct {
	db txdb
}

// NewExitStrategyRepo constructs an ExitStrategyRepo backed by the provided
// transaction-capable db connection (*pgxpool.Pool in production).
func NewExitStrategyRepo(db txdb) ExitStrategyRepo {
	return &pgExitStrategyRepo{db: db}
}

func (r *pgExitStrategyRepo) ReplaceForHike(ctx context.Context, hikeID uuid.UUID, batch []domain.ExitStrategy) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("repo.ExitStrategyRepo.ReplaceForHike: begin: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	const del = `DELETE FROM exit_strategies WHERE active_hike_id = @hike_id`
	if _, err := tx.Exec(ctx, del, pgx.NamedArgs{"hike_id": hikeID}); err != nil {
		return fmt.Errorf("repo.ExitStrategyRepo.ReplaceForHike: discard: %w", err)
	}

	const ins = `
		INSERT INTO exit_strategies
			(id, active_hike_id, exit_point_id, on_foot_minutes, transit_minutes,
			 eta_minutes, score, computed_at)
		VALUES (@id, @hike_id, @exit_point_id, @on_foot_minutes, @transit_minutes,
		        @eta_minutes, @score, @computed_at)`

	for _, st := range batch {
		id := st.ID
		if id == uuid.Nil {
			id = uuid.New()
		}
		args := pgx.NamedArgs{
			"id":              id,
			"hike_id":         hikeID,
			"exit_point_id":   st.ExitPointID,
			"on_foot_minutes": st.OnFootMinutes,
			"transit_minutes": st.TransitMinutes,
			"eta_minutes":     st.ETAMinutes,
			"score":           st.Score, // nil becomes NULL
			"computed_at":     st.ComputedAt,
		}
		if _, err := tx.Exec(ctx, ins, args); err != nil {
			return fmt.Errorf("repo.ExitStrategyRepo.ReplaceForHike: insert: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("repo.ExitStrategyRepo.ReplaceForHike: commit: %w", err)
	}
	return nil
}

func (r *pgExitStrategyRepo) ListByHike(ctx context.Context, hikeID uuid.UUID) ([]domain.ExitStrategy, error) {
	const q = `
		SELECT id, active_hike_id, exit_point_id, on_foot_minutes, transit_minutes,
		       eta_minutes, score, computed_at
		FROM exit_strategies
		WHERE active_hike_id = @hike_id
		ORDER BY score DESC NULLS LAST, eta_minutes ASC`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"hike_id": hikeID})
	if err != nil {
		return nil, fmt.Errorf("repo.ExitStrategyRepo.ListByHike: %w", err)
	}
	defer rows.Close()

	var strategies []domain.ExitStrategy
	for rows.Next() {
		st, err := scanStrategy(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.ExitStrategyRepo.ListByHike: scan: %w", err)
		}
		strategies = append(strategies, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.ExitStrategyRepo.ListByHike: rows: %w", err)
	}

	return strategies, nil
}

func scanStrategy(s scanner) (domain.ExitStrategy, error) {
	var (
		st          domain.ExitStrategy
		id          pgtype.UUID
		hikeID      pgtype.UUID
		exitPointID pgtype.UUID
		score       pgtype.Float8
	)

	err := s.Scan(&id, &hikeID, &exitPointID, &st.OnFootMinutes, &st.TransitMinutes,
		&st.ETAMinutes, &score, &st.ComputedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ExitStrategy{}, domain.ErrNotFound
		}
		return domain.ExitStrategy{}, err
	}

	st.ID = uuid.UUID(id.Bytes)
	st.ActiveHikeID = uuid.UUID(hikeID.Bytes)
	st.ExitPointID = uuid.UUID(exitPointID.Bytes)
	if score.Valid {
		v := score.Float64
		st.Score = &v
	}
	return st, nil
}
