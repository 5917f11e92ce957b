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

type subjectRepository interface {
	List(ctx context.Context, filter models.SubjectFilter) ([]models.SubjectDetail, int, error)
	FindByID(ctx context.Context, id string) (*models.Subject, error)
	ListClassIDs(ctx context.Context, subjectID string) ([]string, error)
	CreateWithClasses(ctx context.Context, subject *models.Subject, classIDs []string) error
	UpdateWithClasses(ctx context.Context, subject *models.Subject, classIDs []string) error
	Deactivate(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

type subjectClassLookup interface {
	FindByIDs(ctx context.Context, ids []string) ([]models.Class, error)
}

// CreateSubjectRequest describes payload for creating a subject with its
// class links.
type CreateSubjectRequest struct {
	Name           string   `json:"name" validate:"required"`
	GradeID        string   `json:"grade_id" validate:"required"`
	AcademicYearID string   `json:"academic_year_id" validate:"required"`
	ClassIDs       []string `json:"class_ids"`
	IsActive       bool     `json:"is_active"`
}

// UpdateSubjectRequest updates a subject and replaces its class links.
type UpdateSubjectRequest struct {
	Name           string   `json:"name" validate:"required"`
	GradeID        string   `json:"grade_id" validate:"required"`
	AcademicYearID string   `json:"academic_year_id" validate:"required"`
	ClassIDs       []string `json:"class_ids"`
	IsActive       *bool    `json:"is_active"`
}

// SubjectService orchestrates subject workflows. Class links are checked
// against the subject's grade before anything is written: a subject can
// only be linked to classes of its own grade.
type SubjectService struct {
	repo      subjectRepository
	classes   subjectClassLookup
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSubjectService creates a new subject service instance.
func NewSubjectService(repo subjectRepository, classes subjectClassLookup, validate *validator.Validate, logger *zap.Logger) *SubjectService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SubjectService{repo: repo, classes: classes, validator: validate, logger: logger}
}

// List returns paginated subjects.
func (s *SubjectService) List(ctx context.Context, filter models.SubjectFilter) ([]models.SubjectDetail, *models.Pagination, error) {
	subjects, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list subjects")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}

	return subjects, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns a subject with its linked class IDs.
func (s *SubjectService) Get(ctx context.Context, id string) (*models.SubjectDetail, error) {
	subject, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "subject not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subject")
	}

	classIDs, err := s.repo.ListClassIDs(ctx, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subject classes")
	}

	return &models.SubjectDetail{Subject: *subject, ClassIDs: classIDs}, nil
}

// Create adds a subject and its class links atomically.
func (s *SubjectService) Create(ctx context.Context, req CreateSubjectRequest) (*models.SubjectDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid subject payload")
	}

	if err := s.checkClassGrades(ctx, req.GradeID, req.ClassIDs); err != nil {
		return nil, err
	}

	subject := &models.Subject{
		Name:           req.Name,
		GradeID:        req.GradeID,
		AcademicYearID: req.AcademicYearID,
		IsActive:       req.IsActive,
	}
	if err := s.repo.CreateWithClasses(ctx, subject, req.ClassIDs); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create subject")
	}

	return &models.SubjectDetail{Subject: *subject, ClassIDs: req.ClassIDs}, nil
}

// Update modifies a subject and replaces its class links atomically.
func (s *SubjectService) Update(ctx context.Context, id string, req UpdateSubjectRequest) (*models.SubjectDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid subject payload")
	}

	subject, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "subject not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subject")
	}

	if err := s.checkClassGrades(ctx, req.GradeID, req.ClassIDs); err != nil {
		return nil, err
	}

	subject.Name = req.Name
	subject.GradeID = req.GradeID
	subject.AcademicYearID = req.AcademicYearID
	if req.IsActive != nil {
		subject.IsActive = *req.IsActive
	}

	if err := s.repo.UpdateWithClasses(ctx, subject, req.ClassIDs); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update subject")
	}

	return &models.SubjectDetail{Subject: *subject, ClassIDs: req.ClassIDs}, nil
}

// Deactivate closes a subject to new records.
func (s *SubjectService) Deactivate(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "subject not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subject")
	}
	if err := s.repo.Deactivate(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to deactivate subject")
	}
	return nil
}

// Delete removes a subject and its class links.
func (s *SubjectService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "subject not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subject")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete subject")
	}
	return nil
}

// checkClassGrades verifies all linked classes exist and belong to the
// subject's grade.
func (s *SubjectService) checkClassGrades(ctx context.Context, gradeID string, classIDs []string) error {
	if len(classIDs) == 0 {
		return nil
	}

	classes, err := s.classes.FindByIDs(ctx, classIDs)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load classes")
	}

	found := make(map[string]models.Class, len(classes))
	for _, class := range classes {
		found[class.ID] = class
	}

	for _, classID := range classIDs {
		class, ok := found[classID]
		if !ok {
			return appErrors.Clone(appErrors.ErrValidation, "class does not exist: "+classID)
		}
		if class.GradeID != gradeID {
			return appErrors.Clone(appErrors.ErrValidation, "class "+class.Name+" does not belong to the subject's grade")
		}
	}
	return nil
}
