package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/intern-rotation-api/internal/models"
)

// UnitRepository provides persistence for training units.
type UnitRepository struct {
	db *sqlx.DB
}

// NewUnitRepository creates a new unit repository.
func NewUnitRepository(db *sqlx.DB) *UnitRepository {
	return &UnitRepository{db: db}
}

const unitColumns = `id, name, duration_days, workload, position, created_at, updated_at`

// ListOrdered returns all units in rotation order: explicit position first,
// unpositioned units after, ties broken by name for determinism.
func (r *UnitRepository) ListOrdered(ctx context.Context) ([]models.Unit, error) {
	query := fmt.Sprintf(`SELECT %s FROM units ORDER BY position IS NULL, position ASC, name ASC`, unitColumns)
	var units []models.Unit
	if err := r.db.SelectContext(ctx, &units, query); err != nil {
		return nil, fmt.Errorf("list units: %w", err)
	}
	return units, nil
}

// FindByID loads a unit by id.
func (r *UnitRepository) FindByID(ctx context.Context, id string) (*models.Unit, error) {
	query := fmt.Sprintf(`SELECT %s FROM units WHERE id = $1`, unitColumns)
	var unit models.Unit
	if err := r.db.GetContext(ctx, &unit, query, id); err != nil {
		return nil, err
	}
	return &unit, nil
}

// FindByName loads a unit by its unique name.
func (r *UnitRepository) FindByName(ctx context.Context, name string) (*models.Unit, error) {
	query := fmt.Sprintf(`SELECT %s FROM units WHERE name = $1`, unitColumns)
	var unit models.Unit
	if err := r.db.GetContext(ctx, &unit, query, name); err != nil {
		return nil, err
	}
	return &unit, nil
}

// Create stores a new unit.
func (r *UnitRepository) Create(ctx context.Context, unit *models.Unit) error {
	if unit.ID == "" {
		unit.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	unit.CreatedAt = now
	unit.UpdatedAt = now
	const query = `INSERT INTO units (id, name, duration_days, workload, position, created_at, updated_at)
VALUES (:id, :name, :duration_days, :workload, :position, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, unit); err != nil {
		return fmt.Errorf("create unit: %w", err)
	}
	return nil
}

// Update rewrites a unit's mutable attributes.
func (r *UnitRepository) Update(ctx context.Context, unit *models.Unit) error {
	unit.UpdatedAt = time.Now().UTC()
	const query = `UPDATE units SET name = :name, duration_days = :duration_days, workload = :workload,
position = :position, updated_at = :updated_at WHERE id = :id`
	result, err := r.db.NamedExecContext(ctx, query, unit)
	if err != nil {
		return fmt.Errorf("update unit: %w", err)
	}
	return requireRowAffected(result, "unit", unit.ID)
}

// Delete removes a unit.
func (r *UnitRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM units WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete unit: %w", err)
	}
	return requireRowAffected(result, "unit", id)
}

// Coverage aggregates intern headcount per unit as of the provided day.
func (r *UnitRepository) Coverage(ctx context.Context, today models.Date) ([]models.UnitCoverage, error) {
	const query = `SELECT u.id AS unit_id, u.name AS unit_name, u.workload,
COUNT(*) FILTER (WHERE r.start_date <= $1 AND r.end_date >= $1) AS active_count,
COUNT(*) FILTER (WHERE r.start_date > $1) AS future_count,
COUNT(*) FILTER (WHERE r.end_date < $1) AS visited_count
FROM units u
LEFT JOIN rotations r ON r.unit_id = u.id
GROUP BY u.id, u.name, u.workload, u.position
ORDER BY u.position IS NULL, u.position ASC, u.name ASC`
	var coverage []models.UnitCoverage
	if err := r.db.SelectContext(ctx, &coverage, query, today); err != nil {
		return nil, fmt.Errorf("unit coverage: %w", err)
	}
	return coverage, nil
}
