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

type academicYearRepository interface {
	List(ctx context.Context, filter models.AcademicYearFilter) ([]models.AcademicYear, int, error)
	FindByID(ctx context.Context, id string) (*models.AcademicYear, error)
	FindActive(ctx context.Context) (*models.AcademicYear, error)
	ExistsByYear(ctx context.Context, year string, excludeID string) (bool, error)
	Create(ctx context.Context, year *models.AcademicYear) error
	Update(ctx context.Context, year *models.AcademicYear) error
	Activate(ctx context.Context, id string) error
	Deactivate(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
	CountClasses(ctx context.Context, id string) (int, error)
}

// CreateAcademicYearRequest describes payload for creating academic years.
type CreateAcademicYearRequest struct {
	Year     string `json:"year" validate:"required"`
	IsActive bool   `json:"is_active"`
}

// UpdateAcademicYearRequest updates the year label and, when is_active
// is present, toggles the active flag.
type UpdateAcademicYearRequest struct {
	Year     string `json:"year" validate:"required"`
	IsActive *bool  `json:"is_active"`
}

// AcademicYearService orchestrates academic year workflows. Activation is
// an explicit operation; creating a year never silently toggles others.
type AcademicYearService struct {
	repo      academicYearRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewAcademicYearService creates a new academic year service.
func NewAcademicYearService(repo academicYearRepository, validate *validator.Validate, logger *zap.Logger) *AcademicYearService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AcademicYearService{repo: repo, validator: validate, logger: logger}
}

// List returns paginated academic years.
func (s *AcademicYearService) List(ctx context.Context, filter models.AcademicYearFilter) ([]models.AcademicYear, *models.Pagination, error) {
	years, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list academic years")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}

	return years, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns an academic year by ID.
func (s *AcademicYearService) Get(ctx context.Context, id string) (*models.AcademicYear, error) {
	year, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "academic year not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load academic year")
	}
	return year, nil
}

// GetActive returns the currently active academic year.
func (s *AcademicYearService) GetActive(ctx context.Context) (*models.AcademicYear, error) {
	year, err := s.repo.FindActive(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no active academic year")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load active academic year")
	}
	return year, nil
}

// Create adds a new academic year, optionally activating it.
func (s *AcademicYearService) Create(ctx context.Context, req CreateAcademicYearRequest) (*models.AcademicYear, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid academic year payload")
	}

	exists, err := s.repo.ExistsByYear(ctx, req.Year, "")
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check academic year uniqueness")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "academic year already exists")
	}

	year := &models.AcademicYear{Year: req.Year}
	if err := s.repo.Create(ctx, year); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create academic year")
	}

	if req.IsActive {
		if err := s.repo.Activate(ctx, year.ID); err != nil {
			s.logger.Error("failed to activate academic year after create", zap.Error(err))
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to activate academic year")
		}
		year.IsActive = true
	}

	return year, nil
}

// Update changes the year label. An is_active value in the payload is
// applied last: true behaves exactly like Activate, false clears the
// flag even when that leaves no active year.
func (s *AcademicYearService) Update(ctx context.Context, id string, req UpdateAcademicYearRequest) (*models.AcademicYear, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid academic year payload")
	}

	year, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "academic year not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load academic year")
	}

	exists, err := s.repo.ExistsByYear(ctx, req.Year, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check academic year uniqueness")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "academic year already exists")
	}

	year.Year = req.Year
	if err := s.repo.Update(ctx, year); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update academic year")
	}

	if req.IsActive != nil && *req.IsActive != year.IsActive {
		if *req.IsActive {
			if err := s.repo.Activate(ctx, year.ID); err != nil {
				return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to activate academic year")
			}
		} else {
			if err := s.repo.Deactivate(ctx, year.ID); err != nil {
				return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to deactivate academic year")
			}
		}
		year.IsActive = *req.IsActive
	}
	return year, nil
}

// Activate designates a year as the single active one.
func (s *AcademicYearService) Activate(ctx context.Context, id string) (*models.AcademicYear, error) {
	year, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "academic year not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load academic year")
	}

	if err := s.repo.Activate(ctx, year.ID); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to activate academic year")
	}
	year.IsActive = true
	return year, nil
}

// Deactivate clears the active flag on a year. Deactivating the current
// active year leaves the system with no active year until another one
// is activated.
func (s *AcademicYearService) Deactivate(ctx context.Context, id string) (*models.AcademicYear, error) {
	year, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "academic year not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load academic year")
	}

	if year.IsActive {
		if err := s.repo.Deactivate(ctx, year.ID); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to deactivate academic year")
		}
		year.IsActive = false
	}
	return year, nil
}

// Delete removes a year when inactive and without dependent classes.
func (s *AcademicYearService) Delete(ctx context.Context, id string) error {
	year, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "academic year not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load academic year")
	}

	if year.IsActive {
		return appErrors.Clone(appErrors.ErrPreconditionFailed, "cannot delete active academic year")
	}

	count, err := s.repo.CountClasses(ctx, id)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check academic year dependencies")
	}
	if count > 0 {
		return appErrors.Clone(appErrors.ErrPreconditionFailed, "academic year has classes associated")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete academic year")
	}
	return nil
}
