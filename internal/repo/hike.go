package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/ldevries/trailhop/internal/domain"
)

// HikeRepo defines the persistence operations for active hikes.
type HikeRepo interface {
	// Create inserts a new active hike. Returns domain.ErrConflict when the
	// user already owns an active hike — the partial unique index over
	// (user_id) WHERE status='active' rejects the insert, which makes the
	// one-active-hike-per-user rule hold across concurrent service instances.
	Create(ctx context.Context, hike domain.ActiveHike) (domain.ActiveHike, error)

	// GetByID retrieves a hike by its UUID primary key.
	// Returns domain.ErrNotFound if no hike with that ID exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.ActiveHike, error)

	// SetPosition overwrites the hike's current position and last-update
	// timestamp. Returns domain.ErrNotFound when the hike does not exist.
	SetPosition(ctx context.Context, id uuid.UUID, pos domain.Position, at time.Time) error

	// MarkEnded flips the hike's status to ended.
	// Returns domain.ErrNotFound when the hike does not exist.
	MarkEnded(ctx context.Context, id uuid.UUID) error
}

// CompletedHikeRepo defines the persistence operations for the immutable
// completed-hike archive.
type CompletedHikeRepo interface {
	// Create inserts the archive record. Written exactly once per hike.
	Create(ctx context.Context, ch domain.CompletedHike) (domain.CompletedHike, error)

	// ListExportRows returns one flat row per completed hike for the given
	// user, joined with the planned route it followed, most recent first.
	ListExportRows(ctx context.Context, userID string) ([]domain.HikeExportRow, error)
}

type pgHikeRepo struct {
	db db
}

// NewHikeRepo constructs a HikeRepo backed by the provided db connection.
func NewHikeRepo(db db) HikeRepo {
	return &pgHikeRepo{db: db}
}

func (r *pgHikeRepo) Create(ctx context.Context, hike domain.ActiveHike) (domain.ActiveHike, error) {
	const q = `
		INSERT INTO active_hikes (id, user_id, planned_route_id, current_position, started_at, status)
		VALUES (@id, @user_id, @route_id,
		        ST_SetSRID(ST_MakePoint(@lng, @lat), 4326)::geography, @started_at, @status)
		RETURNING id, user_id, planned_route_id,
		          ST_Y(current_position::geometry), ST_X(current_position::geometry),
		          started_at, last_update_at, status`

	if hike.ID == uuid.Nil {
		hike.ID = uuid.New()
	}
	args := pgx.NamedArgs{
		"id":         hike.ID,
		"user_id":    hike.UserID,
		"route_id":   hike.PlannedRouteID,
		"lat":        hike.CurrentPosition.Lat,
		"lng":        hike.CurrentPosition.Lng,
		"started_at": hike.StartedAt,
		"status":     string(hike.Status),
	}

	row := r.db.QueryRow(ctx, q, args)
	result, err := scanHike(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return domain.ActiveHike{}, fmt.Errorf("repo.HikeRepo.Create: user %s already has an active hike: %w", hike.UserID, domain.ErrConflict)
		}
		return domain.ActiveHike{}, fmt.Errorf("repo.HikeRepo.Create: %w", err)
	}
	return result, nil
}

func (r *pgHikeRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.ActiveHike, error) {
	const q = `
		SELECT id, user_id, planned_route_id,
		       ST_Y(current_position::geometry), ST_X(current_position::geometry),
		       started_at, last_update_at, status
		FROM active_hikes
		WHERE id = @id`

	row := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id})
	result, err := scanHike(row)
	if err != nil {
		return domain.ActiveHike{}, fmt.Errorf("repo.HikeRepo.GetByID: %w", err)
	}
	return result, nil
}

func (r *pgHikeRepo) SetPosition(ctx context.Context, id uuid.UUID, pos domain.Position, at time.Time) error {
	const q = `
		UPDATE active_hikes
		SET current_position = ST_SetSRID(ST_MakePoint(@lng, @lat), 4326)::geography,
		    last_update_at   = @at
		WHERE id = @id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id, "lat": pos.Lat, "lng": pos.Lng, "at": at})
	if err != nil {
		return fmt.Errorf("repo.HikeRepo.SetPosition: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.HikeRepo.SetPosition: hike %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

func (r *pgHikeRepo) MarkEnded(ctx context.Context, id uuid.UUID) error {
	const q = `UPDATE active_hikes SET status = 'ended' WHERE id = @id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("repo.HikeRepo.MarkEnded: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.HikeRepo.MarkEnded: hike %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// scanHike maps a single database row into a domain.ActiveHike.
// It handles the UUID and nullable last_update_at conversions.
func scanHike(s scanner) (domain.ActiveHike, error) {
	var (
		h       domain.ActiveHike
		id      pgtype.UUID
		routeID pgtype.UUID
		lastUpd pgtype.Timestamptz
		status  string
	)

	err := s.Scan(&id, &h.UserID, &routeID,
		&h.CurrentPosition.Lat, &h.CurrentPosition.Lng,
		&h.StartedAt, &lastUpd, &status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ActiveHike{}, domain.ErrNotFound
		}
		return domain.ActiveHike{}, err
	}

	h.ID = uuid.UUID(id.Bytes)
	h.PlannedRouteID = uuid.UUID(routeID.Bytes)
	h.Status = domain.HikeStatus(status)
	if lastUpd.Valid {
		t := lastUpd.Time
		h.LastUpdateAt = &t
	}
	return h, nil
}

type pgCompletedHikeRepo struct {
	db db
}

// NewCompletedHikeRepo constructs a CompletedHikeRepo backed by the provided
// db connection.
func NewCompletedHikeRepo(db db) CompletedHikeRepo {
	return &pgCompletedHikeRepo{db: db}
}

func (r *pgCompletedHikeRepo) Create(ctx context.Context, ch domain.CompletedHike) (domain.CompletedHike, error) {
	const q = `
		INSERT INTO completed_hikes
			(id, active_hike_id, user_id, planned_route_id, ended_at, exit_point_id, duration_minutes)
		VALUES (@id, @hike_id, @user_id, @route_id, @ended_at, @exit_point_id, @duration_minutes)
		RETURNING id`

	if ch.ID == uuid.Nil {
		ch.ID = uuid.New()
	}
	args := pgx.NamedArgs{
		"id":               ch.ID,
		"hike_id":          ch.ActiveHikeID,
		"user_id":          ch.UserID,
		"route_id":         ch.PlannedRouteID,
		"ended_at":         ch.EndedAt,
		"exit_point_id":    ch.ExitPointID,
		"duration_minutes": ch.DurationMinutes,
	}

	var id pgtype.UUID
	if err := r.db.QueryRow(ctx, q, args).Scan(&id); err != nil {
		return domain.CompletedHike{}, fmt.Errorf("repo.CompletedHikeRepo.Create: %w", err)
	}
	ch.ID = uuid.UUID(id.Bytes)
	return ch, nil
}

func (r *pgCompletedHikeRepo) ListExportRows(ctx context.Context, userID string) ([]domain.HikeExportRow, error) {
	const q = `
		SELECT ch.id, ch.user_id, ch.ended_at, ch.duration_minutes, ch.exit_point_id,
		       pr.id, pr.destination_trailhead_id,
		       pr.total_minutes, pr.transit_minutes, pr.hiking_minutes, pr.criteria
		FROM completed_hikes ch
		JOIN planned_routes pr ON pr.id = ch.planned_route_id
		WHERE ch.user_id = @user_id
		ORDER BY ch.ended_at DESC`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"user_id": userID})
	if err != nil {
		return nil, fmt.Errorf("repo.CompletedHikeRepo.ListExportRows: %w", err)
	}
	defer rows.Close()

	var out []domain.HikeExportRow
	for rows.Next() {
		var (
			row         domain.HikeExportRow
			id          pgtype.UUID
			exitPointID pgtype.UUID
			routeID     pgtype.UUID
			trailheadID pgtype.UUID
		)
		err := rows.Scan(&id, &row.UserID, &row.EndedAt, &row.DurationMinutes, &exitPointID,
			&routeID, &trailheadID,
			&row.TotalMinutes, &row.TransitMinutes, &row.HikingMinutes, &row.Criteria)
		if err != nil {
			return nil, fmt.Errorf("repo.CompletedHikeRepo.ListExportRows: scan: %w", err)
		}
		row.CompletedHikeID = uuid.UUID(id.Bytes).String()
		row.ExitPointID = uuid.UUID(exitPointID.Bytes).String()
		row.RouteID = uuid.UUID(routeID.Bytes).String()
		row.TrailheadID = uuid.UUID(trailheadID.Bytes).String()
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.CompletedHikeRepo.ListExportRows: rows: %w", err)
	}

	return out, nil
}
