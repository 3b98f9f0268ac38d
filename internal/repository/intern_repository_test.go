package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/intern-rotation-api/internal/models"
)

func internRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "name", "batch", "start_date", "status", "extension_days", "created_at", "updated_at"})
}

func TestInternRepositoryListAppliesFilters(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewInternRepository(db)
	now := time.Now().UTC()
	rows := internRows().
		AddRow("i1", "Ana", "MORNING", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), "ACTIVE", 0, now, now)
	mock.ExpectQuery("SELECT .+ FROM interns WHERE 1=1 AND batch .+ AND status .+ ORDER BY start_date ASC").
		WithArgs("MORNING", "ACTIVE").
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM interns WHERE 1=1")).
		WithArgs("MORNING", "ACTIVE").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	interns, total, err := repo.List(context.Background(), models.InternFilter{
		Batch:  models.BatchMorning,
		Status: models.InternStatusActive,
	})
	require.NoError(t, err)
	require.Len(t, interns, 1)
	require.Equal(t, 1, total)
	require.Equal(t, "Ana", interns[0].Name)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInternRepositoryListByStatuses(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewInternRepository(db)
	now := time.Now().UTC()
	rows := internRows().
		AddRow("i1", "Ana", "MORNING", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), "ACTIVE", 0, now, now).
		AddRow("i2", "Ben", "EVENING", time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), "EXTENDED", 5, now, now)
	mock.ExpectQuery("SELECT .+ FROM interns WHERE status IN").
		WithArgs("ACTIVE", "EXTENDED").
		WillReturnRows(rows)

	interns, err := repo.ListByStatuses(context.Background(), models.InternStatusActive, models.InternStatusExtended)
	require.NoError(t, err)
	require.Len(t, interns, 2)
	require.Equal(t, 5, interns[1].ExtensionDays)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInternRepositoryListByStatusesEmptyInput(t *testing.T) {
	db, _, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewInternRepository(db)
	interns, err := repo.ListByStatuses(context.Background())
	require.NoError(t, err)
	require.Empty(t, interns)
}

func TestInternRepositoryCreateAssignsID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewInternRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO interns")).
		WillReturnResult(sqlmock.NewResult(0, 1))

	intern := &models.Intern{
		Name:      "Ana",
		Batch:     models.BatchMorning,
		StartDate: models.NewDate(2024, time.January, 1),
		Status:    models.InternStatusActive,
	}
	require.NoError(t, repo.Create(context.Background(), intern))
	require.NotEmpty(t, intern.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInternRepositoryUpdateStatusExtension(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewInternRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE interns SET status")).
		WithArgs("i1", "EXTENDED", 5, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.UpdateStatusExtension(context.Background(), "i1", models.InternStatusExtended, 5)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInternRepositoryDeleteMissingRow(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()

	repo := NewInternRepository(db)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM interns")).
		WithArgs("ghost").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), "ghost")
	require.ErrorIs(t, err, sql.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}
