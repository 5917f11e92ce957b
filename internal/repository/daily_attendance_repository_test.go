package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schoolworks/sis-api/internal/models"
)

func TestDailyAttendanceRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewDailyAttendanceRepository(db)

	mock.ExpectExec("INSERT INTO teacher_daily_attendance").
		WithArgs(sqlmock.AnyArg(), "t1", sqlmock.AnyArg(), "Present", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	record := &models.DailyAttendance{
		ProfileID: "t1",
		Date:      time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC),
		Status:    models.AttendancePresent,
	}
	require.NoError(t, repo.Create(context.Background(), models.StaffKindTeacher, record))
	assert.NotEmpty(t, record.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDailyAttendanceRepositoryCreateSurfacesUniqueViolation(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewDailyAttendanceRepository(db)

	mock.ExpectExec("INSERT INTO staff_daily_attendance").
		WillReturnError(&pq.Error{Code: "23505"})

	record := &models.DailyAttendance{
		ProfileID: "s1",
		Date:      time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC),
		Status:    models.AttendanceAbsent,
	}
	err := repo.Create(context.Background(), models.StaffKindStaff, record)
	require.Error(t, err)
	assert.True(t, IsUniqueViolation(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDailyAttendanceRepositoryCreateUnknownLedger(t *testing.T) {
	db, _, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewDailyAttendanceRepository(db)

	err := repo.Create(context.Background(), models.StaffKind("janitor"), &models.DailyAttendance{ProfileID: "x"})
	require.Error(t, err)
}
