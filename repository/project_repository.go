package repository

import (
	"context"
	"fmt"

	"tenderpulse-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ProjectRepository handles database operations for tender projects
type ProjectRepository struct {
	db *pgxpool.Pool
}

// NewProjectRepository creates a new project repository
func NewProjectRepository(db *pgxpool.Pool) *ProjectRepository {
	return &ProjectRepository{db: db}
}

// Create creates a new project
func (r *ProjectRepository) Create(ctx context.Context, project *models.Project) error {
	query := `
		INSERT INTO projects (
			organization_id, title, description, tender_reference, deadline,
			status, evaluation_criteria, budget_range_min, budget_range_max
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRow(
		ctx, query,
		project.OrganizationID,
		project.Title,
		project.Description,
		project.TenderReference,
		project.Deadline,
		project.Status,
		project.Criteria,
		project.BudgetRangeMin,
		project.BudgetRangeMax,
	).Scan(&project.ID, &project.CreatedAt, &project.UpdatedAt)

	return err
}

// GetByID retrieves a project by ID
func (r *ProjectRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	project := &models.Project{}
	query := `
		SELECT id, organization_id, title, description, tender_reference,
			deadline, status, evaluation_criteria, budget_range_min,
			budget_range_max, created_at, updated_at
		FROM projects
		WHERE id = $1`

	err := r.db.QueryRow(ctx, query, id).Scan(
		&project.ID,
		&project.OrganizationID,
		&project.Title,
		&project.Description,
		&project.TenderReference,
		&project.Deadline,
		&project.Status,
		&project.Criteria,
		&project.BudgetRangeMin,
		&project.BudgetRangeMax,
		&project.CreatedAt,
		&project.UpdatedAt,
	)

	if err != nil {
		return nil, err
	}

	return project, nil
}

// Update updates a project
func (r *ProjectRepository) Update(ctx context.Context, project *models.Project) error {
	query := `
		UPDATE projects SET
			title = $2,
			description = $3,
			tender_reference = $4,
			deadline = $5,
			status = $6,
			evaluation_criteria = $7,
			budget_range_min = $8,
			budget_range_max = $9,
			updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := r.db.QueryRow(
		ctx, query,
		project.ID,
		project.Title,
		project.Description,
		project.TenderReference,
		project.Deadline,
		project.Status,
		project.Criteria,
		project.BudgetRangeMin,
		project.BudgetRangeMax,
	).Scan(&project.UpdatedAt)

	return err
}

// UpdateStatus updates only the project status
func (r *ProjectRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.ProjectStatus) error {
	query := `
		UPDATE projects SET
			status = $2,
			updated_at = NOW()
		WHERE id = $1`

	_, err := r.db.Exec(ctx, query, id, status)
	return err
}

// ListByOrganizationID retrieves all projects owned by an organization
func (r *ProjectRepository) ListByOrganizationID(ctx context.Context, organizationID uuid.UUID, status *models.ProjectStatus, limit, offset int) ([]*models.Project, error) {
	query := `
		SELECT id, organization_id, title, description, tender_reference,
			deadline, status, evaluation_criteria, budget_range_min,
			budget_range_max, created_at, updated_at
		FROM projects
		WHERE organization_id = $1`

	args := []interface{}{organizationID}
	argIndex := 2

	if status != nil {
		query += fmt.Sprintf(" AND status = $%d", argIndex)
		args = append(args, *status)
		argIndex++
	}

	query += " ORDER BY created_at DESC"

	if limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argIndex)
		args = append(args, limit)
		argIndex++
		if offset > 0 {
			query += fmt.Sprintf(" OFFSET $%d", argIndex)
			args = append(args, offset)
		}
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []*models.Project
	for rows.Next() {
		project := &models.Project{}
		err := rows.Scan(
			&project.ID,
			&project.OrganizationID,
			&project.Title,
			&project.Description,
			&project.TenderReference,
			&project.Deadline,
			&project.Status,
			&project.Criteria,
			&project.BudgetRangeMin,
			&project.BudgetRangeMax,
			&project.CreatedAt,
			&project.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		projects = append(projects, project)
	}

	return projects, rows.Err()
}
