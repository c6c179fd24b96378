/*
Package db manages the PostgreSQL connection pool and migrations.

This file classifies pgx errors.
*/
package db

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// IsNoRows reports whether a single-row query matched nothing.
func IsNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

// IsUndefinedTable checks if the error is a PostgreSQL undefined_table error (code 42P01),
// which means migrations have not run against this database.
func IsUndefinedTable(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "42P01"
	}
	return false
}
