package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/intern-rotation-api/internal/models"
)

// RotationRepository provides persistence for rotation rows.
type RotationRepository struct {
	db *sqlx.DB
}

// NewRotationRepository creates a new rotation repository.
func NewRotationRepository(db *sqlx.DB) *RotationRepository {
	return &RotationRepository{db: db}
}

const rotationColumns = `id, intern_id, unit_id, start_date, end_date, is_manual, created_at, updated_at`

// ListByIntern returns all rotations for an intern ordered by start date.
func (r *RotationRepository) ListByIntern(ctx context.Context, internID string) ([]models.Rotation, error) {
	query := fmt.Sprintf(`SELECT %s FROM rotations WHERE intern_id = $1 ORDER BY start_date ASC, end_date ASC`, rotationColumns)
	var rotations []models.Rotation
	if err := r.db.SelectContext(ctx, &rotations, query, internID); err != nil {
		return nil, fmt.Errorf("list rotations: %w", err)
	}
	return rotations, nil
}

// FindByID loads a rotation by id.
func (r *RotationRepository) FindByID(ctx context.Context, id string) (*models.Rotation, error) {
	query := fmt.Sprintf(`SELECT %s FROM rotations WHERE id = $1`, rotationColumns)
	var rotation models.Rotation
	if err := r.db.GetContext(ctx, &rotation, query, id); err != nil {
		return nil, err
	}
	return &rotation, nil
}

// FindOverlapping returns rotations for the intern whose interval intersects
// [start, end]. Used to reject conflicting manual inserts before mutation.
func (r *RotationRepository) FindOverlapping(ctx context.Context, internID string, start, end models.Date) ([]models.Rotation, error) {
	query := fmt.Sprintf(`SELECT %s FROM rotations
WHERE intern_id = $1 AND start_date <= $3 AND end_date >= $2
ORDER BY start_date ASC`, rotationColumns)
	var rotations []models.Rotation
	if err := r.db.SelectContext(ctx, &rotations, query, internID, start, end); err != nil {
		return nil, fmt.Errorf("find overlapping rotations: %w", err)
	}
	return rotations, nil
}

// Create stores a new rotation.
func (r *RotationRepository) Create(ctx context.Context, rotation *models.Rotation) error {
	if rotation.ID == "" {
		rotation.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	rotation.CreatedAt = now
	rotation.UpdatedAt = now
	const query = `INSERT INTO rotations (id, intern_id, unit_id, start_date, end_date, is_manual, created_at, updated_at)
VALUES (:id, :intern_id, :unit_id, :start_date, :end_date, :is_manual, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, rotation); err != nil {
		return fmt.Errorf("create rotation: %w", err)
	}
	return nil
}

// UpdateUnit rewrites only the unit reference of a rotation, leaving dates
// untouched.
func (r *RotationRepository) UpdateUnit(ctx context.Context, id, unitID string) error {
	const query = `UPDATE rotations SET unit_id = $2, updated_at = $3 WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id, unitID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update rotation unit: %w", err)
	}
	return requireRowAffected(result, "rotation", id)
}

// UpdateDates rewrites a rotation's interval and manual flag.
func (r *RotationRepository) UpdateDates(ctx context.Context, id string, start, end models.Date, isManual bool) error {
	const query = `UPDATE rotations SET start_date = $2, end_date = $3, is_manual = $4, updated_at = $5 WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id, start, end, isManual, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update rotation dates: %w", err)
	}
	return requireRowAffected(result, "rotation", id)
}

// CountByUnit reports how many rotations reference a unit.
func (r *RotationRepository) CountByUnit(ctx context.Context, unitID string) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM rotations WHERE unit_id = $1`, unitID); err != nil {
		return 0, fmt.Errorf("count rotations by unit: %w", err)
	}
	return count, nil
}

// Delete removes a rotation. Only explicit operator deletions reach here;
// the engine itself never deletes automatic rotations to repair a schedule.
func (r *RotationRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM rotations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete rotation: %w", err)
	}
	return requireRowAffected(result, "rotation", id)
}
