package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/intern-rotation-api/internal/models"
)

// InternRepository provides persistence for interns.
type InternRepository struct {
	db *sqlx.DB
}

// NewInternRepository creates a new intern repository.
func NewInternRepository(db *sqlx.DB) *InternRepository {
	return &InternRepository{db: db}
}

const internColumns = `id, name, batch, start_date, status, extension_days, created_at, updated_at`

// List returns interns matching the filter with a total count.
func (r *InternRepository) List(ctx context.Context, filter models.InternFilter) ([]models.Intern, int, error) {
	base := `FROM interns WHERE 1=1`
	var conditions []string
	var args []interface{}

	if filter.Batch != "" {
		conditions = append(conditions, fmt.Sprintf("batch = $%d", len(args)+1))
		args = append(args, filter.Batch)
	}
	if filter.Status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, filter.Status)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("LOWER(name) LIKE $%d", len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	sortBy := filter.SortBy
	allowedSorts := map[string]bool{
		"name":       true,
		"start_date": true,
		"status":     true,
		"created_at": true,
	}
	if !allowedSorts[sortBy] {
		sortBy = "start_date"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "ASC"
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf("SELECT %s %s ORDER BY %s %s LIMIT %d OFFSET %d", internColumns, base, sortBy, order, size, offset)
	var interns []models.Intern
	if err := r.db.SelectContext(ctx, &interns, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list interns: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count interns: %w", err)
	}

	return interns, total, nil
}

// ListByStatuses returns interns whose status is one of the provided values,
// ordered by start date. Used by the batch advance run.
func (r *InternRepository) ListByStatuses(ctx context.Context, statuses ...models.InternStatus) ([]models.Intern, error) {
	if len(statuses) == 0 {
		return nil, nil
	}
	marks := make([]string, len(statuses))
	args := make([]interface{}, len(statuses))
	for i, status := range statuses {
		marks[i] = fmt.Sprintf("$%d", i+1)
		args[i] = status
	}
	query := fmt.Sprintf("SELECT %s FROM interns WHERE status IN (%s) ORDER BY start_date ASC, name ASC",
		internColumns, strings.Join(marks, ","))
	var interns []models.Intern
	if err := r.db.SelectContext(ctx, &interns, query, args...); err != nil {
		return nil, fmt.Errorf("list interns by status: %w", err)
	}
	return interns, nil
}

// FindByID loads an intern by id.
func (r *InternRepository) FindByID(ctx context.Context, id string) (*models.Intern, error) {
	query := fmt.Sprintf(`SELECT %s FROM interns WHERE id = $1`, internColumns)
	var intern models.Intern
	if err := r.db.GetContext(ctx, &intern, query, id); err != nil {
		return nil, err
	}
	return &intern, nil
}

// Create stores a new intern.
func (r *InternRepository) Create(ctx context.Context, intern *models.Intern) error {
	if intern.ID == "" {
		intern.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	intern.CreatedAt = now
	intern.UpdatedAt = now
	const query = `INSERT INTO interns (id, name, batch, start_date, status, extension_days, created_at, updated_at)
VALUES (:id, :name, :batch, :start_date, :status, :extension_days, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, intern); err != nil {
		return fmt.Errorf("create intern: %w", err)
	}
	return nil
}

// Update rewrites an intern's mutable attributes.
func (r *InternRepository) Update(ctx context.Context, intern *models.Intern) error {
	intern.UpdatedAt = time.Now().UTC()
	const query = `UPDATE interns SET name = :name, batch = :batch, start_date = :start_date,
status = :status, extension_days = :extension_days, updated_at = :updated_at WHERE id = :id`
	result, err := r.db.NamedExecContext(ctx, query, intern)
	if err != nil {
		return fmt.Errorf("update intern: %w", err)
	}
	return requireRowAffected(result, "intern", intern.ID)
}

// UpdateStatusExtension persists the derived status and extension day count.
func (r *InternRepository) UpdateStatusExtension(ctx context.Context, id string, status models.InternStatus, extensionDays int) error {
	const query = `UPDATE interns SET status = $2, extension_days = $3, updated_at = $4 WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id, status, extensionDays, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update intern status: %w", err)
	}
	return requireRowAffected(result, "intern", id)
}

// Delete removes an intern and cascades to their rotations.
func (r *InternRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM interns WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete intern: %w", err)
	}
	return requireRowAffected(result, "intern", id)
}

func requireRowAffected(result sql.Result, resource, id string) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected for %s %s: %w", resource, id, err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
