package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/staffplan-api/internal/models"
)

// Import loads a planning snapshot into an empty database in one transaction.
// It exists for local SQLite files and fixtures; the API never writes.
func Import(ctx context.Context, db *sqlx.DB, people []models.Person, projects []models.Project, assignments []models.Assignment) (err error) {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin import: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	now := time.Now().UTC()
	for _, p := range people {
		created := p.CreatedAt
		if created.IsZero() {
			created = now
		}
		if _, err = tx.ExecContext(ctx, tx.Rebind("INSERT INTO people (id, name, profile, status, contract_type, created_at) VALUES (?, ?, ?, ?, ?, ?)"),
			p.ID, p.Name, p.Profile, string(p.Status), p.ContractType, created); err != nil {
			return fmt.Errorf("insert person %s: %w", p.ID, err)
		}
	}
	for _, p := range projects {
		if _, err = tx.ExecContext(ctx, tx.Rebind("INSERT INTO projects (id, name, client_name, status) VALUES (?, ?, ?, ?)"),
			p.ID, p.Name, p.ClientName, p.Status); err != nil {
			return fmt.Errorf("insert project %s: %w", p.ID, err)
		}
	}
	for i, a := range assignments {
		created := a.CreatedAt
		if created.IsZero() {
			// Keep file order as the tie-break for assignments starting the same day.
			created = now.Add(time.Duration(i) * time.Millisecond)
		}
		if _, err = tx.ExecContext(ctx, tx.Rebind("INSERT INTO assignments ("+assignmentColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?)"),
			a.ID, a.PersonID, a.ProjectID, a.StartDay, a.EndDay, a.Allocation, a.IsBillable, created); err != nil {
			return fmt.Errorf("insert assignment %s: %w", a.ID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit import: %w", err)
	}
	return nil
}
