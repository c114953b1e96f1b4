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

// TrailheadRepo defines the persistence operations for trailheads.
type TrailheadRepo interface {
	Create(ctx context.Context, th domain.Trailhead) (domain.Trailhead, error)

	// GetByID retrieves a trailhead by its UUID primary key.
	// Returns domain.ErrNotFound if no trailhead with that ID exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Trailhead, error)
}

// TrailRepo defines the persistence operations for trails.
type TrailRepo interface {
	Create(ctx context.Context, trail domain.Trail) (domain.Trail, error)

	// ListByIDs returns the trails whose ids appear in ids, ordered by name
	// ascending. Missing ids are silently omitted — the caller decides
	// whether an empty result is an error.
	ListByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Trail, error)
}

type pgTrailheadRepo struct {
	db db
}

// NewTrailheadRepo constructs a TrailheadRepo backed by the provided db connection.
func NewTrailheadRepo(db db) TrailheadRepo {
	return &pgTrailheadRepo{db: db}
}

func (r *pgTrailheadRepo) Create(ctx context.Context, th domain.Trailhead) (domain.Trailhead, error) {
	const q = `
		INSERT INTO trailheads (id, name, location, connecting_trail_ids)
		VALUES (@id, @name, ST_SetSRID(ST_MakePoint(@lng, @lat), 4326)::geography, @trail_ids::uuid[])
		RETURNING id, name, ST_Y(location::geometry), ST_X(location::geometry), connecting_trail_ids`

	if th.ID == uuid.Nil {
		th.ID = uuid.New()
	}
	args := pgx.NamedArgs{
		"id":        th.ID,
		"name":      th.Name,
		"lat":       th.Position.Lat,
		"lng":       th.Position.Lng,
		"trail_ids": uuidStrings(th.ConnectingTrailIDs),
	}

	row := r.db.QueryRow(ctx, q, args)
	result, err := scanTrailhead(row)
	if err != nil {
		return domain.Trailhead{}, fmt.Errorf("repo.TrailheadRepo.Create: %w", err)
	}
	return result, nil
}

func (r *pgTrailheadRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Trailhead, error) {
	const q = `
		SELECT id, name, ST_Y(location::geometry), ST_X(location::geometry), connecting_trail_ids
		FROM trailheads
		WHERE id = @id`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id})
	result, err := scanTrailhead(row)
	if err != nil {
		return domain.Trailhead{}, fmt.Errorf("repo.TrailheadRepo.GetByID: %w", err)
	}
	return result, nil
}

func scanTrailhead(s scanner) (domain.Trailhead, error) {
	var (
		th       domain.Trailhead
		id       pgtype.UUID
		trailIDs []pgtype.UUID
	)

	err := s.Scan(&id, &th.Name, &th.Position.Lat, &th.Position.Lng, &trailIDs)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Trailhead{}, domain.ErrNotFound
		}
		return domain.Trailhead{}, err
	}

	th.ID = uuid.UUID(id.Bytes)
	th.ConnectingTrailIDs = pgUUIDs(trailIDs)
	return th, nil
}

type pgTrailRepo struct {
	db db
}

// NewTrailRepo constructs a TrailRepo backed by the provided db connection.
func NewTrailRepo(db db) TrailRepo {
	return &pgTrailRepo{db: db}
}

func (r *pgTrailRepo) Create(ctx context.Context, trail domain.Trail) (domain.Trail, error) {
	const q = `
		INSERT INTO trails (id, name, estimated_minutes, description)
		VALUES (@id, @name, @estimated_minutes, @description)
		RETURNING id, name, estimated_minutes, description`

	if trail.ID == uuid.Nil {
		trail.ID = uuid.New()
	}
	args := pgx.NamedArgs{
		"id":                trail.ID,
		"name":              trail.Name,
		"estimated_minutes": trail.EstimatedMinutes,
		"description":       trail.Description,
	}

	row := r.db.QueryRow(ctx, q, args)
	result, err := scanTrail(row)
	if err != nil {
		return domain.Trail{}, fmt.Errorf("repo.TrailRepo.Create: %w", err)
	}
	return result, nil
}

func (r *pgTrailRepo) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Trail, error) {
	const q = `
		SELECT id, name, estimated_minutes, description
		FROM trails
		WHERE id = ANY(@ids::uuid[])
		ORDER BY name ASC`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"ids": uuidStrings(ids)})
	if err != nil {
		return nil, fmt.Errorf("repo.TrailRepo.ListByIDs: %w", err)
	}
	defer rows.Close()

	var trails []domain.Trail
	for rows.Next() {
		t, err := scanTrail(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.TrailRepo.ListByIDs: scan: %w", err)
		}
		trails = append(trails, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.TrailRepo.ListByIDs: rows: %w", err)
	}

	return trails, nil
}

func scanTrail(s scanner) (domain.Trail, error) {
	var (
		t  domain.Trail
		id pgtype.UUID
	)

	err := s.Scan(&id, &t.Name, &t.EstimatedMinutes, &t.Description)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Trail{}, domain.ErrNotFound
		}
		return domain.Trail{}, err
	}

	t.ID = uuid.UUID(id.Bytes)
	return t, nil
}
