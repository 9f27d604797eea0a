package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/staffplan-api/internal/models"
	"github.com/noah-isme/staffplan-api/pkg/calendarday"
)

const assignmentColumns = "id, person_id, project_id, start_date, end_date, allocation, is_billable, created_at"

// assignmentOrder keeps lane packing deterministic: ties on start fall back to
// creation order.
const assignmentOrder = " ORDER BY start_date ASC, created_at ASC, id ASC"

// AssignmentRepository reads assignments. It never writes; the engine works
// on the snapshot it returns.
type AssignmentRepository struct {
	db *sqlx.DB
}

// NewAssignmentRepository constructs an AssignmentRepository.
func NewAssignmentRepository(db *sqlx.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

// ListByPerson returns every assignment of one person.
func (r *AssignmentRepository) ListByPerson(ctx context.Context, personID string) ([]models.Assignment, error) {
	query := r.db.Rebind("SELECT " + assignmentColumns + " FROM assignments WHERE person_id = ?" + assignmentOrder)
	var assignments []models.Assignment
	if err := r.db.SelectContext(ctx, &assignments, query, personID); err != nil {
		return nil, fmt.Errorf("list assignments for person %s: %w", personID, err)
	}
	return assignments, nil
}

// ListByPeople returns the assignments of the given people that touch window.
func (r *AssignmentRepository) ListByPeople(ctx context.Context, personIDs []string, window calendarday.Range) ([]models.Assignment, error) {
	if len(personIDs) == 0 {
		return []models.Assignment{}, nil
	}
	query, args, err := sqlx.In(
		"SELECT "+assignmentColumns+" FROM assignments WHERE person_id IN (?) AND start_date <= ? AND end_date >= ?"+assignmentOrder,
		personIDs, window.End(), window.Start(),
	)
	if err != nil {
		return nil, fmt.Errorf("build assignments query: %w", err)
	}

	var assignments []models.Assignment
	if err := r.db.SelectContext(ctx, &assignments, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("list assignments: %w", err)
	}
	return assignments, nil
}
