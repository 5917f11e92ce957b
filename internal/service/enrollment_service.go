package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/schoolworks/sis-api/internal/models"
	appErrors "github.com/schoolworks/sis-api/pkg/errors"
)

type enrollmentRepository interface {
	List(ctx context.Context, filter models.StudentEnrollmentFilter) ([]models.StudentEnrollmentDetail, int, error)
	FindByID(ctx context.Context, id string) (*models.StudentEnrollment, error)
	Exists(ctx context.Context, studentID, yearID string) (bool, error)
	Create(ctx context.Context, enrollment *models.StudentEnrollment) error
	Delete(ctx context.Context, id string) error
}

// CreateEnrollmentRequest describes payload for enrolling a student.
type CreateEnrollmentRequest struct {
	StudentID      string `json:"student_id" validate:"required"`
	ClassID        string `json:"class_id" validate:"required"`
	AcademicYearID string `json:"academic_year_id" validate:"required"`
}

// EnrollmentService orchestrates student enrollment workflows.
// Enrollments may only target active classes and a student enrolls at
// most once per academic year.
type EnrollmentService struct {
	repo      enrollmentRepository
	classes   scheduleClassLookup
	profiles  assignmentProfileLookup
	validator *validator.Validate
	logger    *zap.Logger
}

// NewEnrollmentService creates a new enrollment service instance.
func NewEnrollmentService(repo enrollmentRepository, classes scheduleClassLookup, profiles assignmentProfileLookup, validate *validator.Validate, logger *zap.Logger) *EnrollmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrollmentService{repo: repo, classes: classes, profiles: profiles, validator: validate, logger: logger}
}

// List returns paginated enrollments.
func (s *EnrollmentService) List(ctx context.Context, filter models.StudentEnrollmentFilter) ([]models.StudentEnrollmentDetail, *models.Pagination, error) {
	enrollments, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list enrollments")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}

	return enrollments, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Create enrolls a student into a class.
func (s *EnrollmentService) Create(ctx context.Context, req CreateEnrollmentRequest) (*models.StudentEnrollment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid enrollment payload")
	}

	if _, err := s.profiles.FindProfileDetail(ctx, models.RoleStudent, req.StudentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "student does not exist")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	class, err := s.classes.FindByID(ctx, req.ClassID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "class does not exist")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
	}
	if !class.IsActive {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "cannot enroll into an inactive class")
	}
	if class.AcademicYearID != req.AcademicYearID {
		return nil, appErrors.Clone(appErrors.ErrValidation, "class does not belong to the academic year")
	}

	exists, err := s.repo.Exists(ctx, req.StudentID, req.AcademicYearID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check enrollment uniqueness")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "student is already enrolled for this academic year")
	}

	enrollment := &models.StudentEnrollment{
		StudentID:      req.StudentID,
		ClassID:        req.ClassID,
		AcademicYearID: req.AcademicYearID,
	}
	if err := s.repo.Create(ctx, enrollment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create enrollment")
	}
	return enrollment, nil
}

// Delete removes an enrollment.
func (s *EnrollmentService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "enrollment not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollment")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete enrollment")
	}
	return nil
}
