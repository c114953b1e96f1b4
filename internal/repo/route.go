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

// RouteRepo defines the persistence operations for planned routes.
// The table is INSERT-only: every replan creates a new record and nothing is
// ever updated or deleted, preserving the full planning history.
type RouteRepo interface {
	// Create inserts a new planned route and returns the persisted record
	// (with created_at populated by the database).
	Create(ctx context.Context, route domain.PlannedRoute) (domain.PlannedRoute, error)

	// GetByID retrieves a single planned route.
	// Returns domain.ErrNotFound if no route with that ID exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.PlannedRoute, error)

	// ListPaged returns one page of routes ordered by created_at descending,
	// plus the total count for pagination metadata.
	ListPaged(ctx context.Context, p domain.PaginationParams) ([]domain.PlannedRoute, int64, error)
}

type pgRouteRepo struct {
	db db
}

// NewRouteRepo constructs a RouteRepo backed by the provided db connection.
func NewRouteRepo(db db) RouteRepo {
	return &pgRouteRepo{db: db}
}

func (r *pgRouteRepo) Create(ctx context.Context, route domain.PlannedRoute) (domain.PlannedRoute, error) {
	const q = `
		INSERT INTO planned_routes
			(id, origin, destination_trailhead_id, transit_segments, hiking_segments,
			 total_minutes, transit_minutes, hiking_minutes, criteria, max_travel_minutes)
		VALUES
			(@id, ST_SetSRID(ST_MakePoint(@lng, @lat), 4326)::geography, @trailhead_id,
			 @transit_segments, @hiking_segments,
			 @total_minutes, @transit_minutes, @hiking_minutes, @criteria, @max_travel_minutes)
		RETURNING id, ST_Y(origin::geometry), ST_X(origin::geometry), destination_trailhead_id,
		          transit_segments, hiking_segments,
		          total_minutes, transit_minutes, hiking_minutes, criteria, max_travel_minutes, created_at`

	if route.ID == uuid.Nil {
		route.ID = uuid.New()
	}
	args := pgx.NamedArgs{
		"id":                 route.ID,
		"lat":                route.Origin.Lat,
		"lng":                route.Origin.Lng,
		"trailhead_id":       route.DestinationTrailheadID,
		"transit_segments":   route.TransitSegments, // pgx encodes to jsonb
		"hiking_segments":    route.HikingSegments,
		"total_minutes":      route.TotalMinutes,
		"transit_minutes":    route.TransitMinutes,
		"hiking_minutes":     route.HikingMinutes,
		"criteria":           string(route.Criteria),
		"max_travel_minutes": route.Constraints.MaxTravelMinutes,
	}

	row := r.db.QueryRow(ctx, q, args)
	result, err := scanRoute(row)
	if err != nil {
		return domain.PlannedRoute{}, fmt.Errorf("repo.RouteRepo.Create: %w", err)
	}
	return result, nil
}

func (r *pgRouteRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.PlannedRoute, error) {
	const q = `
		SELECT id, ST_Y(origin::geometry), ST_X(origin::geometry), destination_trailhead_id,
		       transit_segments, hiking_segments,
		       total_minutes, transit_minutes, hiking_minutes, criteria, max_travel_minutes, created_at
		FROM planned_routes
		WHERE id = @id`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id})
	result, err := scanRoute(row)
	if err != nil {
		return domain.PlannedRoute{}, fmt.Errorf("repo.RouteRepo.GetByID: %w", err)
	}
	return result, nil
}

func (r *pgRouteRepo) ListPaged(ctx context.Context, p domain.PaginationParams) ([]domain.PlannedRoute, int64, error) {
	var total int64
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM planned_routes`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("repo.RouteRepo.ListPaged: count: %w", err)
	}

	const q = `
		SELECT id, ST_Y(origin::geometry), ST_X(origin::geometry), destination_trailhead_id,
		       transit_segments, hiking_segments,
		       total_minutes, transit_minutes, hiking_minutes, criteria, max_travel_minutes, created_at
		FROM planned_routes
		ORDER BY created_at DESC
		LIMIT @limit OFFSET @offset`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"limit": p.Limit, "offset": p.Offset()})
	if err != nil {
		return nil, 0, fmt.Errorf("repo.RouteRepo.ListPaged: %w", err)
	}
	defer rows.Close()

	var routes []domain.PlannedRoute
	for rows.Next() {
		rt, err := scanRoute(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("repo.RouteRepo.ListPaged: scan: %w", err)
		}
		routes = append(routes, rt)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("repo.RouteRepo.ListPaged: rows: %w", err)
	}

	return routes, total, nil
}

// scanRoute maps a single database row into a domain.PlannedRoute.
// The segment columns are jsonb; pgx unmarshals them into the slices directly.
func scanRoute(s scanner) (domain.PlannedRoute, error) {
	var (
		rt          domain.PlannedRoute
		id          pgtype.UUID
		trailheadID pgtype.UUID
		criteria    string
	)

	err := s.Scan(&id, &rt.Origin.Lat, &rt.Origin.Lng, &trailheadID,
		&rt.TransitSegments, &rt.HikingSegments,
		&rt.TotalMinutes, &rt.TransitMinutes, &rt.HikingMinutes,
		&criteria, &rt.Constraints.MaxTravelMinutes, &rt.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.PlannedRoute{}, domain.ErrNotFound
		}
		return domain.PlannedRoute{}, err
	}

	rt.ID = uuid.UUID(id.Bytes)
	rt.DestinationTrailheadID = uuid.UUID(trailheadID.Bytes)
	rt.Criteria = domain.Criteria(criteria)
	return rt, nil
}
