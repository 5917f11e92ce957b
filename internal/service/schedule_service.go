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

type scheduleRepository interface {
	List(ctx context.Context, filter models.ScheduleFilter) ([]models.ScheduleDetail, int, error)
	ListForClass(ctx context.Context, classID string) ([]models.ScheduleDetail, error)
	FindByID(ctx context.Context, id string) (*models.Schedule, error)
	ExistsForSlot(ctx context.Context, classID string, day models.ScheduleDay, section models.ScheduleSection, excludeID string) (bool, error)
	Create(ctx context.Context, slot *models.Schedule) error
	Update(ctx context.Context, slot *models.Schedule) error
	Delete(ctx context.Context, id string) error
}

type scheduleClassLookup interface {
	FindByID(ctx context.Context, id string) (*models.Class, error)
}

type scheduleSubjectLookup interface {
	FindByID(ctx context.Context, id string) (*models.Subject, error)
	ListClassIDs(ctx context.Context, subjectID string) ([]string, error)
}

// ScheduleRequest describes payload for creating or replacing a slot.
// SubjectID stays empty for break slots.
type ScheduleRequest struct {
	ClassID   string                 `json:"class_id" validate:"required"`
	SubjectID string                 `json:"subject_id"`
	DayOfWeek models.ScheduleDay     `json:"day_of_week" validate:"required"`
	Section   models.ScheduleSection `json:"section" validate:"required"`
}

// ScheduleService orchestrates timetable workflows.
type ScheduleService struct {
	repo      scheduleRepository
	classes   scheduleClassLookup
	subjects  scheduleSubjectLookup
	validator *validator.Validate
	logger    *zap.Logger
}

// NewScheduleService creates a new schedule service instance.
func NewScheduleService(repo scheduleRepository, classes scheduleClassLookup, subjects scheduleSubjectLookup, validate *validator.Validate, logger *zap.Logger) *ScheduleService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScheduleService{repo: repo, classes: classes, subjects: subjects, validator: validate, logger: logger}
}

// List returns paginated schedule slots.
func (s *ScheduleService) List(ctx context.Context, filter models.ScheduleFilter) ([]models.ScheduleDetail, *models.Pagination, error) {
	slots, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list schedules")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}

	return slots, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Timetable returns the full weekly timetable of one class.
func (s *ScheduleService) Timetable(ctx context.Context, classID string) ([]models.ScheduleDetail, error) {
	if classID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "class_id is required")
	}
	slots, err := s.repo.ListForClass(ctx, classID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load timetable")
	}
	return slots, nil
}

// Get returns a slot by ID.
func (s *ScheduleService) Get(ctx context.Context, id string) (*models.Schedule, error) {
	slot, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "schedule not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule")
	}
	return slot, nil
}

// Create adds a timetable slot after validating day, section, class and
// subject constraints.
func (s *ScheduleService) Create(ctx context.Context, req ScheduleRequest) (*models.Schedule, error) {
	slot, err := s.prepare(ctx, req, "")
	if err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, slot); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create schedule")
	}
	return slot, nil
}

// Update replaces a timetable slot.
func (s *ScheduleService) Update(ctx context.Context, id string, req ScheduleRequest) (*models.Schedule, error) {
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "schedule not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule")
	}

	slot, err := s.prepare(ctx, req, id)
	if err != nil {
		return nil, err
	}
	slot.ID = existing.ID
	slot.CreatedAt = existing.CreatedAt

	if err := s.repo.Update(ctx, slot); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update schedule")
	}
	return slot, nil
}

// Delete removes a timetable slot.
func (s *ScheduleService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "schedule not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete schedule")
	}
	return nil
}

func (s *ScheduleService) prepare(ctx context.Context, req ScheduleRequest, excludeID string) (*models.Schedule, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid schedule payload")
	}
	if !req.DayOfWeek.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported day of week")
	}
	if !req.Section.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported section")
	}

	isBreak := req.Section == models.SectionBreak
	if isBreak && req.SubjectID != "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "break slots cannot carry a subject")
	}
	if !isBreak && req.SubjectID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "subject_id is required for teaching sections")
	}

	class, err := s.classes.FindByID(ctx, req.ClassID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "class does not exist")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load class")
	}

	slot := &models.Schedule{
		ClassID:   req.ClassID,
		DayOfWeek: req.DayOfWeek,
		Section:   req.Section,
	}

	if req.SubjectID != "" {
		if _, err := s.subjects.FindByID(ctx, req.SubjectID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrValidation, "subject does not exist")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subject")
		}
		classIDs, err := s.subjects.ListClassIDs(ctx, req.SubjectID)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subject classes")
		}
		linked := false
		for _, id := range classIDs {
			if id == class.ID {
				linked = true
				break
			}
		}
		if !linked {
			return nil, appErrors.Clone(appErrors.ErrValidation, "subject is not taught in this class")
		}
		subjectID := req.SubjectID
		slot.SubjectID = &subjectID
	}

	exists, err := s.repo.ExistsForSlot(ctx, req.ClassID, req.DayOfWeek, req.Section, excludeID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check slot availability")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "class already has an entry for this day and section")
	}

	return slot, nil
}
