package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/schoolworks/sis-api/internal/models"
	"github.com/schoolworks/sis-api/internal/repository"
	appErrors "github.com/schoolworks/sis-api/pkg/errors"
)

type dailyAttendanceRepository interface {
	List(ctx context.Context, kind models.StaffKind, filter models.DailyAttendanceFilter) ([]models.DailyAttendanceDetail, int, error)
	Create(ctx context.Context, kind models.StaffKind, record *models.DailyAttendance) error
	UpdateStatus(ctx context.Context, kind models.StaffKind, id string, status models.AttendanceStatus) error
}

// RecordDailyAttendanceRequest marks a teacher or staff member present
// or absent for a date.
type RecordDailyAttendanceRequest struct {
	ProfileID string                  `json:"profile_id" validate:"required"`
	Date      time.Time               `json:"date" validate:"required"`
	Status    models.AttendanceStatus `json:"status" validate:"required"`
}

// DailyAttendanceService orchestrates the teacher and staff daily
// attendance ledgers. The database enforces one record per person per
// day; a duplicate surfaces as a conflict.
type DailyAttendanceService struct {
	repo      dailyAttendanceRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewDailyAttendanceService creates a new daily attendance service.
func NewDailyAttendanceService(repo dailyAttendanceRepository, validate *validator.Validate, logger *zap.Logger) *DailyAttendanceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DailyAttendanceService{repo: repo, validator: validate, logger: logger}
}

// List returns paginated daily attendance records for one ledger.
func (s *DailyAttendanceService) List(ctx context.Context, kind models.StaffKind, filter models.DailyAttendanceFilter) ([]models.DailyAttendanceDetail, *models.Pagination, error) {
	records, total, err := s.repo.List(ctx, kind, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list daily attendance")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}

	return records, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Record marks one person present or absent for a date.
func (s *DailyAttendanceService) Record(ctx context.Context, kind models.StaffKind, req RecordDailyAttendanceRequest) (*models.DailyAttendance, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid daily attendance payload")
	}
	if !req.Status.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported attendance status")
	}

	record := &models.DailyAttendance{
		ProfileID: req.ProfileID,
		Date:      req.Date.UTC().Truncate(24 * time.Hour),
		Status:    req.Status,
	}
	if err := s.repo.Create(ctx, kind, record); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "attendance already recorded for this date")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record daily attendance")
	}
	return record, nil
}

// Correct updates the status of an existing record.
func (s *DailyAttendanceService) Correct(ctx context.Context, kind models.StaffKind, id string, status models.AttendanceStatus) error {
	if !status.Valid() {
		return appErrors.Clone(appErrors.ErrValidation, "unsupported attendance status")
	}
	if err := s.repo.UpdateStatus(ctx, kind, id, status); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update daily attendance")
	}
	return nil
}
