package dberrors

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// UniqueViolation is the SQLSTATE Postgres reports for a unique constraint breach.
const UniqueViolation = "23505"

// IsDuplicateConstraintError reports whether err is a unique violation on the
// named constraint. An empty constraintName matches any unique constraint.
func IsDuplicateConstraintError(err error, constraintName string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != UniqueViolation {
		return false
	}
	return constraintName == "" || pgErr.ConstraintName == constraintName
}
