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

type examRepository interface {
	List(ctx context.Context, filter models.ExamFilter) ([]models.ExamDetail, int, error)
	FindByID(ctx context.Context, id string) (*models.Exam, error)
	Create(ctx context.Context, exam *models.Exam) error
	Update(ctx context.Context, exam *models.Exam) error
	Delete(ctx context.Context, id string) error
}

// ExamRequest describes payload for scheduling or rescheduling an exam.
type ExamRequest struct {
	Name           string    `json:"name" validate:"required,min=2,max=120"`
	SubjectID      string    `json:"subject_id" validate:"required"`
	ClassID        string    `json:"class_id" validate:"required"`
	ExamDate       time.Time `json:"exam_date" validate:"required"`
	AcademicYearID string    `json:"academic_year_id" validate:"required"`
}

// ExamService orchestrates exam scheduling workflows.
type ExamService struct {
	repo      examRepository
	classes   scheduleClassLookup
	subjects  scheduleSubjectLookup
	validator *validator.Validate
	logger    *zap.Logger
}

// NewExamService creates a new exam service instance.
func NewExamService(repo examRepository, classes scheduleClassLookup, subjects scheduleSubjectLookup, validate *validator.Validate, logger *zap.Logger) *ExamService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExamService{repo: repo, classes: classes, subjects: subjects, validator: validate, logger: logger}
}

// List returns paginated exams.
func (s *ExamService) List(ctx context.Context, filter models.ExamFilter) ([]models.ExamDetail, *models.Pagination, error) {
	exams, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list exams")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}

	return exams, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns an exam by ID.
func (s *ExamService) Get(ctx context.Context, id string) (*models.Exam, error) {
	exam, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "exam not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load exam")
	}
	return exam, nil
}

// Create schedules a new exam.
func (s *ExamService) Create(ctx context.Context, req ExamRequest) (*models.Exam, error) {
	if err := s.checkReferences(ctx, req); err != nil {
		return nil, err
	}

	exam := &models.Exam{
		Name:           req.Name,
		SubjectID:      req.SubjectID,
		ClassID:        req.ClassID,
		ExamDate:       req.ExamDate.UTC(),
		AcademicYearID: req.AcademicYearID,
	}
	if err := s.repo.Create(ctx, exam); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create exam")
	}
	return exam, nil
}

// Update reschedules or renames an exam.
func (s *ExamService) Update(ctx context.Context, id string, req ExamRequest) (*models.Exam, error) {
	exam, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "exam not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load exam")
	}

	if err := s.checkReferences(ctx, req); err != nil {
		return nil, err
	}

	exam.Name = req.Name
	exam.SubjectID = req.SubjectID
	exam.ClassID = req.ClassID
	exam.ExamDate = req.ExamDate.UTC()

	if err := s.repo.Update(ctx, exam); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update exam")
	}
	return exam, nil
}

// Delete removes an exam.
func (s *ExamService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "exam not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load exam")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete exam")
	}
	return nil
}

func (s *ExamService) checkReferences(ctx context.Context, req ExamRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid exam payload")
	}

	if _, err := s.subjects.FindByID(ctx, req.SubjectID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrValidation, "subject does not exist")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subject")
	}

	if _, err := s.classes.FindByID(ctx, req.ClassID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrValidation, "class does not exist")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
	}

	return nil
}
