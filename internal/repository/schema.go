package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Schema is the planning read model. Dates are stored as YYYY-MM-DD so the
// same statements work on SQLite and Postgres.
var Schema = []string{
	`CREATE TABLE IF NOT EXISTS people (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		profile TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT 'active',
		contract_type TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	`CREATE TABLE IF NOT EXISTS projects (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		client_name TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS assignments (
		id TEXT PRIMARY KEY,
		person_id TEXT NOT NULL REFERENCES people(id),
		project_id TEXT NOT NULL REFERENCES projects(id),
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		allocation NUMERIC NOT NULL CHECK (allocation > 0),
		is_billable BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		CHECK (start_date <= end_date)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_assignments_person_range ON assignments (person_id, start_date, end_date)`,
}

// EnsureSchema creates the planning tables when they are missing.
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	for _, stmt := range Schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}
