// Package repo contains all database access logic for TrailHop.
// Each resource has its own file with an interface and a Postgres
// implementation. Positions are stored as PostGIS geography points, which is
// what makes the nearest-neighbor queries (KNN "<->" ordering, ST_DWithin)
// index-assisted. No business logic lives here — only SQL and type mapping.
package repo

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/google/uuid"
)

// db is the minimal interface satisfied by *pgxpool.Pool, pgx.Conn, and pgx.Tx.
// Accepting this interface instead of *pgxpool.Pool directly allows tests to
// pass a transaction that is rolled back after each test, or a pgxmock pool.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// txdb extends db with transaction support. *pgxpool.Pool satisfies it, and
// so does pgx.Tx (nested transactions become savepoints). The exit strategy
// repo needs it to swap a strategy batch atomically.
type txdb interface {
	db
	Begin(ctx context.Context) (pgx.Tx, error)
}

// scanner is satisfied by both pgx.Row and pgx.Rows, allowing the per-entity
// scan helpers to be reused for both QueryRow and Query calls.
type scanner interface {
	Scan(dest ...any) error
}

// uniqueViolation is the Postgres error code raised when an INSERT hits a
// unique index, e.g. the one-active-hike-per-user partial index.
const uniqueViolation = "23505"

// pgUUIDs converts a scanned uuid[] column into []uuid.UUID.
func pgUUIDs(in []pgtype.UUID) []uuid.UUID {
	if len(in) == 0 {
		return nil
	}
	out := make([]uuid.UUID, len(in))
	for i, u := range in {
		out[i] = uuid.UUID(u.Bytes)
	}
	return out
}

// uuidStrings renders ids for a uuid[] bind parameter. pgx encodes []string
// into uuid[] without needing pgtype wrappers on the way in.
func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}
