package storage

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrNotFound is returned when a workflow or node id does not resolve
	// to a stored record.
	ErrNotFound = errors.New("storage: not found")

	// ErrConflict is returned when a write would break a per-workflow rule,
	// such as a second start or end node, or a change of a node's type.
	ErrConflict = errors.New("storage: conflict")
)

// Postgres SQLSTATE codes the store translates.
const (
	pgForeignKeyViolation = "23503"
	pgUniqueViolation     = "23505"
)

// translate maps driver errors onto the storage sentinels. Errors it does
// not recognise are returned as-is.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgForeignKeyViolation:
			return ErrNotFound
		case pgUniqueViolation:
			return ErrConflict
		}
	}
	return err
}
