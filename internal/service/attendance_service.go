package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/schoolworks/sis-api/internal/models"
	appErrors "github.com/schoolworks/sis-api/pkg/errors"
)

type attendanceRepository interface {
	List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceRecord, int, error)
	FindByID(ctx context.Context, id string) (*models.Attendance, error)
	Exists(ctx context.Context, studentID, subjectID string, date time.Time) (bool, error)
	Create(ctx context.Context, record *models.Attendance) error
	UpdateStatus(ctx context.Context, id string, status models.AttendanceStatus) error
	Delete(ctx context.Context, id string) error
}

// RecordAttendanceRequest marks a student's presence for a subject on a
// given date.
type RecordAttendanceRequest struct {
	StudentID      string                  `json:"student_id" validate:"required"`
	SubjectID      string                  `json:"subject_id" validate:"required"`
	Date           time.Time               `json:"date" validate:"required"`
	Status         models.AttendanceStatus `json:"status" validate:"required"`
	AcademicYearID string                  `json:"academic_year_id" validate:"required"`
}

// UpdateAttendanceRequest corrects a recorded status.
type UpdateAttendanceRequest struct {
	Status models.AttendanceStatus `json:"status" validate:"required"`
}

// AttendanceService orchestrates per-subject student attendance.
type AttendanceService struct {
	repo      attendanceRepository
	subjects  scheduleSubjectLookup
	profiles  assignmentProfileLookup
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAttendanceService creates a new attendance service instance.
func NewAttendanceService(repo attendanceRepository, subjects scheduleSubjectLookup, profiles assignmentProfileLookup, validate *validator.Validate, logger *zap.Logger) *AttendanceService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AttendanceService{repo: repo, subjects: subjects, profiles: profiles, validator: validate, logger: logger}
}

// List returns paginated attendance records.
func (s *AttendanceService) List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceRecord, *models.Pagination, error) {
	records, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list attendance")
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

// Record marks a student present or absent for a subject on a date.
func (s *AttendanceService) Record(ctx context.Context, req RecordAttendanceRequest) (*models.Attendance, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid attendance payload")
	}
	if !req.Status.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported attendance status")
	}

	if _, err := s.profiles.FindProfileDetail(ctx, models.RoleStudent, req.StudentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "student does not exist")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	if _, err := s.subjects.FindByID(ctx, req.SubjectID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "subject does not exist")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subject")
	}

	date := req.Date.UTC().Truncate(24 * time.Hour)
	exists, err := s.repo.Exists(ctx, req.StudentID, req.SubjectID, date)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check attendance uniqueness")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "attendance already recorded for this date")
	}

	record := &models.Attendance{
		StudentID:      req.StudentID,
		SubjectID:      req.SubjectID,
		Date:           date,
		Status:         req.Status,
		AcademicYearID: req.AcademicYearID,
	}
	if err := s.repo.Create(ctx, record); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record attendance")
	}
	return record, nil
}

// Correct updates the status of an existing record.
func (s *AttendanceService) Correct(ctx context.Context, id string, req UpdateAttendanceRequest) (*models.Attendance, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid attendance payload")
	}
	if !req.Status.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported attendance status")
	}

	record, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "attendance record not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance record")
	}

	if err := s.repo.UpdateStatus(ctx, id, req.Status); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update attendance")
	}
	record.Status = req.Status
	return record, nil
}

// Delete removes an attendance record.
func (s *AttendanceService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "attendance record not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance record")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete attendance")
	}
	return nil
}
