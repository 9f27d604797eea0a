package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/staffplan-api/internal/models"
)

// ProjectRepository reads projects referenced by assignments.
type ProjectRepository struct {
	db *sqlx.DB
}

// NewProjectRepository constructs a ProjectRepository.
func NewProjectRepository(db *sqlx.DB) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// ListByIDs returns the projects with the given ids in name order. Unknown ids
// are simply absent from the result.
func (r *ProjectRepository) ListByIDs(ctx context.Context, ids []string) ([]models.Project, error) {
	if len(ids) == 0 {
		return []models.Project{}, nil
	}
	query, args, err := sqlx.In("SELECT id, name, client_name, status FROM projects WHERE id IN (?) ORDER BY name ASC, id ASC", ids)
	if err != nil {
		return nil, fmt.Errorf("build projects query: %w", err)
	}

	var projects []models.Project
	if err := r.db.SelectContext(ctx, &projects, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return projects, nil
}
