package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schoolworks/sis-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestAcademicYearRepositoryFindActive(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAcademicYearRepository(db)

	rows := sqlmock.NewRows([]string{"id", "year", "is_active", "created_at", "updated_at"}).
		AddRow("y1", "2026/2027", true, time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, year, is_active, created_at, updated_at FROM academic_years WHERE is_active = TRUE LIMIT 1")).
		WillReturnRows(rows)

	year, err := repo.FindActive(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "y1", year.ID)
	assert.True(t, year.IsActive)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAcademicYearRepositoryActivate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAcademicYearRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE academic_years SET is_active = FALSE, updated_at = $1 WHERE is_active = TRUE AND id <> $2")).
		WithArgs(sqlmock.AnyArg(), "y2").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE academic_years SET is_active = TRUE, updated_at = $2 WHERE id = $1")).
		WithArgs("y2", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Activate(context.Background(), "y2"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAcademicYearRepositoryActivateRollsBackOnFailure(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAcademicYearRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE academic_years SET is_active = FALSE, updated_at = $1 WHERE is_active = TRUE AND id <> $2")).
		WithArgs(sqlmock.AnyArg(), "y2").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE academic_years SET is_active = TRUE, updated_at = $2 WHERE id = $1")).
		WithArgs("y2", sqlmock.AnyArg()).
		WillReturnError(errors.New("boom"))
	mock.ExpectRollback()

	require.Error(t, repo.Activate(context.Background(), "y2"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAcademicYearRepositoryDeactivate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAcademicYearRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE academic_years SET is_active = FALSE, updated_at = $2 WHERE id = $1")).
		WithArgs("y1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Deactivate(context.Background(), "y1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAcademicYearRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAcademicYearRepository(db)

	mock.ExpectExec("INSERT INTO academic_years").
		WithArgs(sqlmock.AnyArg(), "2026/2027", false, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	year := &models.AcademicYear{Year: "2026/2027"}
	require.NoError(t, repo.Create(context.Background(), year))
	assert.NotEmpty(t, year.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
