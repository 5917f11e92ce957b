package service

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/schoolworks/sis-api/internal/models"
	appErrors "github.com/schoolworks/sis-api/pkg/errors"
)

type mockDailyAttendanceRepo struct {
	createErr error
	created   []models.DailyAttendance
	updated   map[string]models.AttendanceStatus
}

func (m *mockDailyAttendanceRepo) List(ctx context.Context, kind models.StaffKind, filter models.DailyAttendanceFilter) ([]models.DailyAttendanceDetail, int, error) {
	return nil, 0, nil
}

func (m *mockDailyAttendanceRepo) Create(ctx context.Context, kind models.StaffKind, record *models.DailyAttendance) error {
	if m.createErr != nil {
		return m.createErr
	}
	if record.ID == "" {
		record.ID = "generated"
	}
	m.created = append(m.created, *record)
	return nil
}

func (m *mockDailyAttendanceRepo) UpdateStatus(ctx context.Context, kind models.StaffKind, id string, status models.AttendanceStatus) error {
	if m.updated == nil {
		m.updated = make(map[string]models.AttendanceStatus)
	}
	m.updated[id] = status
	return nil
}

func TestDailyAttendanceServiceRecordTruncatesDate(t *testing.T) {
	repo := &mockDailyAttendanceRepo{}
	svc := NewDailyAttendanceService(repo, validator.New(), zap.NewNop())

	record, err := svc.Record(context.Background(), models.StaffKindTeacher, RecordDailyAttendanceRequest{
		ProfileID: "t1",
		Date:      time.Date(2026, 8, 28, 14, 30, 12, 0, time.UTC),
		Status:    models.AttendancePresent,
	})
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC), record.Date)
	assert.Len(t, repo.created, 1)
}

func TestDailyAttendanceServiceRecordDuplicateConflicts(t *testing.T) {
	repo := &mockDailyAttendanceRepo{createErr: &pq.Error{Code: "23505"}}
	svc := NewDailyAttendanceService(repo, validator.New(), zap.NewNop())

	_, err := svc.Record(context.Background(), models.StaffKindStaff, RecordDailyAttendanceRequest{
		ProfileID: "s1",
		Date:      time.Now(),
		Status:    models.AttendanceAbsent,
	})
	require.Error(t, err)

	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
}

func TestDailyAttendanceServiceRecordRejectsUnknownStatus(t *testing.T) {
	repo := &mockDailyAttendanceRepo{}
	svc := NewDailyAttendanceService(repo, validator.New(), zap.NewNop())

	_, err := svc.Record(context.Background(), models.StaffKindTeacher, RecordDailyAttendanceRequest{
		ProfileID: "t1",
		Date:      time.Now(),
		Status:    models.AttendanceStatus("Late"),
	})
	require.Error(t, err)
	assert.Empty(t, repo.created)
}

func TestDailyAttendanceServiceCorrect(t *testing.T) {
	repo := &mockDailyAttendanceRepo{}
	svc := NewDailyAttendanceService(repo, validator.New(), zap.NewNop())

	require.NoError(t, svc.Correct(context.Background(), models.StaffKindTeacher, "rec1", models.AttendanceAbsent))
	assert.Equal(t, models.AttendanceAbsent, repo.updated["rec1"])

	err := svc.Correct(context.Background(), models.StaffKindTeacher, "rec1", models.AttendanceStatus("Late"))
	require.Error(t, err)
}
