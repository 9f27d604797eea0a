package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/staffplan-api/internal/models"
)

const personColumns = "id, name, profile, status, contract_type, created_at"

// PersonRepository reads people for planning.
type PersonRepository struct {
	db *sqlx.DB
}

// NewPersonRepository constructs a PersonRepository.
func NewPersonRepository(db *sqlx.DB) *PersonRepository {
	return &PersonRepository{db: db}
}

// List returns the people matching the person-level dimensions of filter,
// ordered by name. Matching is case-insensitive.
func (r *PersonRepository) List(ctx context.Context, filter models.PlanningFilter) ([]models.Person, error) {
	query := "SELECT " + personColumns + " FROM people WHERE 1=1"
	var args []interface{}

	if len(filter.Profiles) > 0 {
		query += " AND LOWER(profile) IN (?)"
		args = append(args, lowerAll(filter.Profiles))
	}
	if len(filter.Statuses) > 0 {
		statuses := make([]string, len(filter.Statuses))
		for i, s := range filter.Statuses {
			statuses[i] = string(s)
		}
		query += " AND LOWER(status) IN (?)"
		args = append(args, lowerAll(statuses))
	}
	if len(filter.ContractTypes) > 0 {
		query += " AND LOWER(contract_type) IN (?)"
		args = append(args, lowerAll(filter.ContractTypes))
	}
	query += " ORDER BY name ASC, id ASC"

	if len(args) > 0 {
		var err error
		query, args, err = sqlx.In(query, args...)
		if err != nil {
			return nil, fmt.Errorf("build people query: %w", err)
		}
	}

	var people []models.Person
	if err := r.db.SelectContext(ctx, &people, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("list people: %w", err)
	}
	return people, nil
}

// FindByID returns a person; the error wraps sql.ErrNoRows when absent.
func (r *PersonRepository) FindByID(ctx context.Context, id string) (*models.Person, error) {
	var person models.Person
	query := r.db.Rebind("SELECT " + personColumns + " FROM people WHERE id = ?")
	if err := r.db.GetContext(ctx, &person, query, id); err != nil {
		return nil, fmt.Errorf("find person %s: %w", id, err)
	}
	return &person, nil
}

func lowerAll(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = strings.ToLower(strings.TrimSpace(v))
	}
	return out
}
