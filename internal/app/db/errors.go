package db

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// Store errors. Handlers translate them into application error codes.
var (
	ErrNotFound     = errors.New("record not found")
	ErrDuplicate    = errors.New("record already exists")
	ErrNoUpdateData = errors.New("no data provided for update")
)

// IsUniqueViolation checks if the error is a PostgreSQL unique constraint violation (code 23505).
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}
