package repository

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/intern-rotation-api/internal/models"
)

// SettingRepository persists key-value settings, including the round-robin
// rotation offset.
type SettingRepository struct {
	db *sqlx.DB
}

// NewSettingRepository constructs the repository.
func NewSettingRepository(db *sqlx.DB) *SettingRepository {
	return &SettingRepository{db: db}
}

// Get fetches a single setting by key.
func (r *SettingRepository) Get(ctx context.Context, key string) (*models.Setting, error) {
	const query = `SELECT key, value, type, updated_by, updated_at FROM settings WHERE key = $1`
	var setting models.Setting
	if err := r.db.GetContext(ctx, &setting, query, key); err != nil {
		return nil, err
	}
	return &setting, nil
}

// Upsert inserts or updates a setting entry.
func (r *SettingRepository) Upsert(ctx context.Context, setting *models.Setting) error {
	const query = `INSERT INTO settings (key, value, type, updated_by, updated_at)
VALUES (:key, :value, :type, :updated_by, :updated_at)
ON CONFLICT (key)
DO UPDATE SET value = EXCLUDED.value, type = EXCLUDED.type,
              updated_by = EXCLUDED.updated_by, updated_at = EXCLUDED.updated_at`
	setting.UpdatedAt = time.Now().UTC()
	if _, err := r.db.NamedExecContext(ctx, query, setting); err != nil {
		return fmt.Errorf("upsert setting: %w", err)
	}
	return nil
}

// IncrementInt atomically returns the current integer value of a setting and
// bumps it by one in the same statement. A missing row counts as zero. The
// read and the write form a single round trip, so concurrent callers can
// never observe the same value twice.
func (r *SettingRepository) IncrementInt(ctx context.Context, key string) (int, error) {
	const query = `INSERT INTO settings (key, value, type, updated_at)
VALUES ($1, '1', 'INTEGER', $2)
ON CONFLICT (key)
DO UPDATE SET value = (settings.value::bigint + 1)::text, updated_at = EXCLUDED.updated_at
RETURNING (value::bigint - 1)::text`
	var previous string
	if err := r.db.GetContext(ctx, &previous, query, key, time.Now().UTC()); err != nil {
		return 0, fmt.Errorf("increment setting %s: %w", key, err)
	}
	value, err := strconv.Atoi(previous)
	if err != nil {
		return 0, fmt.Errorf("setting %s holds non-integer value %q: %w", key, previous, err)
	}
	return value, nil
}
