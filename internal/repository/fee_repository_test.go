package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schoolworks/sis-api/internal/models"
)

func TestFeeRepositoryFindByID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewFeeRepository(db)

	rows := sqlmock.NewRows([]string{"id", "student_id", "amount_due", "amount_paid", "due_date", "academic_year_id", "created_at", "updated_at"}).
		AddRow("f1", "st1", 500.0, 200.0, time.Now(), "y1", time.Now(), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, student_id, amount_due, amount_paid, due_date, academic_year_id, created_at, updated_at FROM fees WHERE id = $1")).
		WithArgs("f1").
		WillReturnRows(rows)

	fee, err := repo.FindByID(context.Background(), "f1")
	require.NoError(t, err)
	assert.Equal(t, models.FeeStatusPartiallyPaid, fee.Status())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFeeRepositoryRecordPayment(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewFeeRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE fees SET amount_paid = amount_paid + $2, updated_at = $3 WHERE id = $1")).
		WithArgs("f1", 300.0, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.RecordPayment(context.Background(), "f1", 300))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFeeRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewFeeRepository(db)

	mock.ExpectExec("INSERT INTO fees").
		WithArgs(sqlmock.AnyArg(), "st1", 500.0, 0.0, sqlmock.AnyArg(), "y1", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	fee := &models.Fee{
		StudentID:      "st1",
		AmountDue:      500,
		DueDate:        time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		AcademicYearID: "y1",
	}
	require.NoError(t, repo.Create(context.Background(), fee))
	assert.NotEmpty(t, fee.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
