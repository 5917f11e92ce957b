package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/schoolworks/sis-api/internal/models"
	appErrors "github.com/schoolworks/sis-api/pkg/errors"
)

type notificationRepository interface {
	List(ctx context.Context, filter models.NotificationFilter) ([]models.NotificationDetail, int, error)
	FindByID(ctx context.Context, id string) (*models.NotificationDetail, error)
	CreateWithTargets(ctx context.Context, notification *models.Notification, classIDs, gradeIDs []string) error
	SetActive(ctx context.Context, id string, active bool) error
	Delete(ctx context.Context, id string) error
}

type notificationClassLookup interface {
	FindByIDs(ctx context.Context, ids []string) ([]models.Class, error)
}

type notificationGradeLookup interface {
	FindByID(ctx context.Context, id string) (*models.Grade, error)
}

// CreateNotificationRequest describes payload for broadcasting a message.
// ClassIDs are required for Class scope, GradeIDs for Grade scope, and
// neither for School scope.
type CreateNotificationRequest struct {
	Title    string                   `json:"title" validate:"required,min=2,max=200"`
	Message  string                   `json:"message" validate:"required"`
	Scope    models.NotificationScope `json:"scope" validate:"required"`
	ClassIDs []string                 `json:"class_ids"`
	GradeIDs []string                 `json:"grade_ids"`
}

// NotificationService orchestrates scoped broadcast messages. Target
// links are validated up front and persisted atomically with the base
// record.
type NotificationService struct {
	repo      notificationRepository
	classes   notificationClassLookup
	grades    notificationGradeLookup
	validator *validator.Validate
	logger    *zap.Logger
}

// NewNotificationService creates a new notification service instance.
func NewNotificationService(repo notificationRepository, classes notificationClassLookup, grades notificationGradeLookup, validate *validator.Validate, logger *zap.Logger) *NotificationService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{repo: repo, classes: classes, grades: grades, validator: validate, logger: logger}
}

// List returns paginated notifications.
func (s *NotificationService) List(ctx context.Context, filter models.NotificationFilter) ([]models.NotificationDetail, *models.Pagination, error) {
	notifications, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list notifications")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}

	return notifications, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Get returns a notification with its targets.
func (s *NotificationService) Get(ctx context.Context, id string) (*models.NotificationDetail, error) {
	notification, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "notification not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load notification")
	}
	return notification, nil
}

// Create broadcasts a message to the requested scope.
func (s *NotificationService) Create(ctx context.Context, senderID string, req CreateNotificationRequest) (*models.Notification, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid notification payload")
	}
	if !req.Scope.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported notification scope")
	}

	switch req.Scope {
	case models.ScopeClass:
		if len(req.ClassIDs) == 0 {
			return nil, appErrors.Clone(appErrors.ErrValidation, "class scope requires at least one class_id")
		}
		if len(req.GradeIDs) > 0 {
			return nil, appErrors.Clone(appErrors.ErrValidation, "class scope does not accept grade_ids")
		}
		if err := s.checkClasses(ctx, req.ClassIDs); err != nil {
			return nil, err
		}
	case models.ScopeGrade:
		if len(req.GradeIDs) == 0 {
			return nil, appErrors.Clone(appErrors.ErrValidation, "grade scope requires at least one grade_id")
		}
		if len(req.ClassIDs) > 0 {
			return nil, appErrors.Clone(appErrors.ErrValidation, "grade scope does not accept class_ids")
		}
		if err := s.checkGrades(ctx, req.GradeIDs); err != nil {
			return nil, err
		}
	case models.ScopeSchool:
		if len(req.ClassIDs) > 0 || len(req.GradeIDs) > 0 {
			return nil, appErrors.Clone(appErrors.ErrValidation, "school scope does not accept targets")
		}
	}

	notification := &models.Notification{
		Title:    req.Title,
		Message:  req.Message,
		SenderID: senderID,
		Scope:    req.Scope,
		IsActive: true,
	}
	if err := s.repo.CreateWithTargets(ctx, notification, req.ClassIDs, req.GradeIDs); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create notification")
	}

	s.logger.Info("notification published",
		zap.String("notification_id", notification.ID),
		zap.String("scope", string(notification.Scope)))
	return notification, nil
}

// SetActive toggles whether a notification is visible.
func (s *NotificationService) SetActive(ctx context.Context, id string, active bool) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "notification not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load notification")
	}
	if err := s.repo.SetActive(ctx, id, active); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update notification")
	}
	return nil
}

// Delete removes a notification and its target links.
func (s *NotificationService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "notification not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load notification")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete notification")
	}
	return nil
}

func (s *NotificationService) checkClasses(ctx context.Context, ids []string) error {
	classes, err := s.classes.FindByIDs(ctx, ids)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load target classes")
	}
	found := make(map[string]struct{}, len(classes))
	for _, class := range classes {
		found[class.ID] = struct{}{}
	}
	for _, id := range ids {
		if _, ok := found[id]; !ok {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("class %s does not exist", id))
		}
	}
	return nil
}

func (s *NotificationService) checkGrades(ctx context.Context, ids []string) error {
	for _, id := range ids {
		if _, err := s.grades.FindByID(ctx, id); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("grade %s does not exist", id))
			}
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load target grades")
		}
	}
	return nil
}
