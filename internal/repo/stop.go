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

// TransitStopRepo defines the persistence operations for transit stops.
// Stops are reference data: inserted by operators, read by the planner.
type TransitStopRepo interface {
	// Create inserts a new stop and returns the persisted record.
	Create(ctx context.Context, stop domain.TransitStop) (domain.TransitStop, error)

	// Nearest returns the single stop closest to pos, at any distance.
	// Returns domain.ErrNotFound only when no stop exists at all.
	Nearest(ctx context.Context, pos domain.Position) (domain.TransitStop, error)
}

// pgTransitStopRepo is the Postgres/PostGIS implementation of TransitStopRepo.
type pgTransitStopRepo struct {
	db db
}

// NewTransitStopRepo constructs a TransitStopRepo backed by the provided db
// connection. In production pass *pgxpool.Pool; in tests pass a pgx.Tx.
func NewTransitStopRepo(db db) TransitStopRepo {
	return &pgTransitStopRepo{db: db}
}

func (r *pgTransitStopRepo) Create(ctx context.Context, stop domain.TransitStop) (domain.TransitStop, error) {
	const q = `
		INSERT INTO transit_stops (id, name, location, served_routes)
		VALUES (@id, @name, ST_SetSRID(ST_MakePoint(@lng, @lat), 4326)::geography, @served_routes)
		RETURNING id, name, ST_Y(location::geometry), ST_X(location::geometry), served_routes`

	if stop.ID == uuid.Nil {
		stop.ID = uuid.New()
	}
	args := pgx.NamedArgs{
		"id":            stop.ID,
		"name":          stop.Name,
		"lat":           stop.Position.Lat,
		"lng":           stop.Position.Lng,
		"served_routes": stop.ServedRoutes,
	}

	row := r.db.QueryRow(ctx, q, args)
	result, err := scanTransitStop(row)
	if err != nil {
		return domain.TransitStop{}, fmt.Errorf("repo.TransitStopRepo.Create: %w", err)
	}
	return result, nil
}

// Nearest orders the whole table by KNN distance to pos and takes the first
// row. With a GiST index on location this is an index walk, not a scan.
func (r *pgTransitStopRepo) Nearest(ctx context.Context, pos domain.Position) (domain.TransitStop, error) {
	const q = `
		SELECT id, name, ST_Y(location::geometry), ST_X(location::geometry), served_routes
		FROM transit_stops
		ORDER BY location <-> ST_SetSRID(ST_MakePoint(@lng, @lat), 4326)::geography
		LIMIT 1`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"lat": pos.Lat, "lng": pos.Lng})
	result, err := scanTransitStop(row)
	if err != nil {
		return domain.TransitStop{}, fmt.Errorf("repo.TransitStopRepo.Nearest: %w", err)
	}
	return result, nil
}

// scanTransitStop maps a single database row into a domain.TransitStop.
func scanTransitStop(s scanner) (domain.TransitStop, error) {
	var (
		stop domain.TransitStop
		id   pgtype.UUID
	)

	err := s.Scan(&id, &stop.Name, &stop.Position.Lat, &stop.Position.Lng, &stop.ServedRoutes)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.TransitStop{}, domain.ErrNotFound
		}
		return domain.TransitStop{}, err
	}

	stop.ID = uuid.UUID(id.Bytes)
	return stop, nil
}
