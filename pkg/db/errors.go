package db

import (
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

// Postgres SQLSTATE codes the schema resolver cares about.
const (
	pgUndefinedTable  = "42P01"
	pgUndefinedColumn = "42703"
)

// IsUndefinedTable reports whether err means the referenced relation does not
// exist. Covers pgx, lib/pq and the sqlite driver used in tests.
func IsUndefinedTable(err error) bool {
	if err == nil {
		return false
	}
	if code := sqlState(err); code != "" {
		return code == pgUndefinedTable
	}
	return strings.Contains(err.Error(), "no such table")
}

// IsUndefinedColumn reports whether err means a referenced column does not
// exist on an otherwise-present relation.
func IsUndefinedColumn(err error) bool {
	if err == nil {
		return false
	}
	if code := sqlState(err); code != "" {
		return code == pgUndefinedColumn
	}
	return strings.Contains(err.Error(), "no such column")
}

// IsUniqueViolation reports whether the provided error references a Postgres
// unique violation constraint. When constraintName is provided, the helper
// looks for the constraint text in the error message.
func IsUniqueViolation(err error, constraintName string) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	if constraintName != "" {
		return strings.Contains(msg, constraintName)
	}
	return strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}

func sqlState(err error) string {
	var pgxErr *pgconn.PgError
	if errors.As(err, &pgxErr) {
		return pgxErr.Code
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	return ""
}
