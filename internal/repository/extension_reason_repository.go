package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/intern-rotation-api/internal/models"
)

// ExtensionReasonRepository persists extension audit records. Rows are
// append-only and never mutated.
type ExtensionReasonRepository struct {
	db *sqlx.DB
}

// NewExtensionReasonRepository constructs the repository.
func NewExtensionReasonRepository(db *sqlx.DB) *ExtensionReasonRepository {
	return &ExtensionReasonRepository{db: db}
}

// Create appends an extension reason entry.
func (r *ExtensionReasonRepository) Create(ctx context.Context, reason *models.ExtensionReason) error {
	if reason.ID == "" {
		reason.ID = uuid.NewString()
	}
	reason.CreatedAt = time.Now().UTC()
	const query = `INSERT INTO extension_reasons (id, intern_id, days, reason, notes, created_at)
VALUES (:id, :intern_id, :days, :reason, :notes, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, reason); err != nil {
		return fmt.Errorf("create extension reason: %w", err)
	}
	return nil
}

// ListByIntern returns an intern's extension history, newest first.
func (r *ExtensionReasonRepository) ListByIntern(ctx context.Context, internID string) ([]models.ExtensionReason, error) {
	const query = `SELECT id, intern_id, days, reason, notes, created_at
FROM extension_reasons WHERE intern_id = $1 ORDER BY created_at DESC`
	var reasons []models.ExtensionReason
	if err := r.db.SelectContext(ctx, &reasons, query, internID); err != nil {
		return nil, fmt.Errorf("list extension reasons: %w", err)
	}
	return reasons, nil
}
