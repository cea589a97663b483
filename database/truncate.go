package database

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/oullin/profilesync/metal/env"
)

const undefinedTable = "42P01"

var sqlStatePattern = regexp.MustCompile(`(?i)\(SQLSTATE ([0-9A-Z]{5})\)`)

// Truncate wipes the local snapshot history. It refuses to run against a
// production environment.
type Truncate struct {
	database *Connection
	env      *env.Environment
}

func NewTruncate(db *Connection, env *env.Environment) *Truncate {
	return &Truncate{database: db, env: env}
}

// Execute empties every schema table and returns the names it cleared.
// Missing tables are skipped; other failures are collected and joined.
func (t Truncate) Execute(ctx context.Context) ([]string, error) {
	if t.env.App.IsProduction() {
		return nil, errors.New("refusing to truncate in production")
	}

	db := t.database.Sql().WithContext(ctx)

	var cleared []string
	var errs []error

	for _, table := range GetSchemaTables() {
		if !isValidTable(table) {
			errs = append(errs, fmt.Errorf("unknown table %q", table))
			continue
		}

		if !db.Migrator().HasTable(table) {
			slog.Info("truncate skipped missing table", "table", table)
			continue
		}

		err := db.Exec(t.statementFor(table)).Error
		switch {
		case err == nil:
			cleared = append(cleared, table)
			slog.Info("truncated table", "table", table)
		case sqlState(err) == undefinedTable:
			slog.Info("truncate skipped undefined relation", "table", table, "error", err)
		default:
			errs = append(errs, fmt.Errorf("truncate table %s: %w", table, err))
		}
	}

	return cleared, errors.Join(errs...)
}

func (t Truncate) statementFor(table string) string {
	if t.database.DriverName() == env.DriverSqlite {
		return "DELETE FROM " + table + ";"
	}

	return "TRUNCATE TABLE " + table + " RESTART IDENTITY CASCADE;"
}

// sqlState extracts the five character SQLSTATE code from a driver error,
// falling back to the "(SQLSTATE XXXXX)" suffix pgx renders in messages.
func sqlState(err error) string {
	if err == nil {
		return ""
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}

	if m := sqlStatePattern.FindStringSubmatch(err.Error()); m != nil {
		return m[1]
	}

	return ""
}
