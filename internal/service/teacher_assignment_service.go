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

type teacherAssignmentRepository interface {
	List(ctx context.Context, filter models.TeacherAssignmentFilter) ([]models.TeacherAssignmentDetail, int, error)
	FindByID(ctx context.Context, id string) (*models.TeacherAssignment, error)
	Exists(ctx context.Context, teacherID, subjectID, classID, yearID string) (bool, error)
	Create(ctx context.Context, assignment *models.TeacherAssignment) error
	Delete(ctx context.Context, id string) error
}

type assignmentProfileLookup interface {
	FindProfileDetail(ctx context.Context, role models.UserRole, profileID string) (*models.ProfileDetail, error)
}

// CreateTeacherAssignmentRequest describes payload for assigning a
// teacher to a subject and class.
type CreateTeacherAssignmentRequest struct {
	TeacherID      string `json:"teacher_id" validate:"required"`
	SubjectID      string `json:"subject_id" validate:"required"`
	ClassID        string `json:"class_id" validate:"required"`
	AcademicYearID string `json:"academic_year_id" validate:"required"`
}

// TeacherAssignmentService orchestrates teacher assignment workflows.
// Assignments may only target active classes.
type TeacherAssignmentService struct {
	repo      teacherAssignmentRepository
	classes   scheduleClassLookup
	subjects  scheduleSubjectLookup
	profiles  assignmentProfileLookup
	validator *validator.Validate
	logger    *zap.Logger
}

// NewTeacherAssignmentService creates a new assignment service instance.
func NewTeacherAssignmentService(repo teacherAssignmentRepository, classes scheduleClassLookup, subjects scheduleSubjectLookup, profiles assignmentProfileLookup, validate *validator.Validate, logger *zap.Logger) *TeacherAssignmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TeacherAssignmentService{repo: repo, classes: classes, subjects: subjects, profiles: profiles, validator: validate, logger: logger}
}

// List returns paginated assignments.
func (s *TeacherAssignmentService) List(ctx context.Context, filter models.TeacherAssignmentFilter) ([]models.TeacherAssignmentDetail, *models.Pagination, error) {
	assignments, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list assignments")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}

	return assignments, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Create assigns a teacher to a subject and class.
func (s *TeacherAssignmentService) Create(ctx context.Context, req CreateTeacherAssignmentRequest) (*models.TeacherAssignment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid assignment payload")
	}

	if _, err := s.profiles.FindProfileDetail(ctx, models.RoleTeacher, req.TeacherID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "teacher does not exist")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher")
	}

	if _, err := s.subjects.FindByID(ctx, req.SubjectID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "subject does not exist")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subject")
	}

	class, err := s.classes.FindByID(ctx, req.ClassID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "class does not exist")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
	}
	if !class.IsActive {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "cannot assign to an inactive class")
	}

	exists, err := s.repo.Exists(ctx, req.TeacherID, req.SubjectID, req.ClassID, req.AcademicYearID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check assignment uniqueness")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "assignment already exists")
	}

	assignment := &models.TeacherAssignment{
		TeacherID:      req.TeacherID,
		SubjectID:      req.SubjectID,
		ClassID:        req.ClassID,
		AcademicYearID: req.AcademicYearID,
	}
	if err := s.repo.Create(ctx, assignment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create assignment")
	}
	return assignment, nil
}

// Delete removes an assignment.
func (s *TeacherAssignmentService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "assignment not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load assignment")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete assignment")
	}
	return nil
}
