package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/intern-rotation-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestSettingRepositoryIncrementIntReturnsPreviousValue(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewSettingRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO settings")).
		WithArgs(models.SettingRoundRobinOffset, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow("4"))

	value, err := repo.IncrementInt(context.Background(), models.SettingRoundRobinOffset)
	require.NoError(t, err)
	require.Equal(t, 4, value)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSettingRepositoryIncrementIntStartsAtZero(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewSettingRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO settings")).
		WithArgs(models.SettingRoundRobinOffset, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow("0"))

	value, err := repo.IncrementInt(context.Background(), models.SettingRoundRobinOffset)
	require.NoError(t, err)
	require.Equal(t, 0, value)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSettingRepositoryIncrementIntRejectsGarbage(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewSettingRepository(db)
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO settings")).
		WithArgs(models.SettingRoundRobinOffset, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow("not-a-number"))

	_, err := repo.IncrementInt(context.Background(), models.SettingRoundRobinOffset)
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSettingRepositoryGetAndUpsert(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewSettingRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO settings")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	setting := &models.Setting{Key: "auto_generate", Value: "true", Type: models.SettingTypeBoolean}
	require.NoError(t, repo.Upsert(context.Background(), setting))

	rows := sqlmock.NewRows([]string{"key", "value", "type", "updated_by", "updated_at"}).
		AddRow("auto_generate", "true", "BOOLEAN", nil, setting.UpdatedAt)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT key, value, type, updated_by, updated_at FROM settings")).
		WithArgs("auto_generate").
		WillReturnRows(rows)

	found, err := repo.Get(context.Background(), "auto_generate")
	require.NoError(t, err)
	require.Equal(t, "true", found.Value)
	require.NoError(t, mock.ExpectationsWereMet())
}
