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

type salaryRepository interface {
	Create(ctx context.Context, payment *models.SalaryPayment) error
	ListForStaff(ctx context.Context, staffProfileID string, limit int) ([]models.SalaryPayment, error)
	Delete(ctx context.Context, id string) error
}

// RecordSalaryPaymentRequest describes payload for paying a teacher or
// staff member.
type RecordSalaryPaymentRequest struct {
	ProfileID string          `json:"profile_id" validate:"required"`
	Role      models.UserRole `json:"role" validate:"required"`
	Amount    float64         `json:"amount" validate:"gt=0"`
	PaidAt    time.Time       `json:"paid_at"`
	Notes     string          `json:"notes" validate:"max=500"`
}

// SalaryService orchestrates salary payment records.
type SalaryService struct {
	repo      salaryRepository
	profiles  assignmentProfileLookup
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSalaryService creates a new salary service instance.
func NewSalaryService(repo salaryRepository, profiles assignmentProfileLookup, validate *validator.Validate, logger *zap.Logger) *SalaryService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SalaryService{repo: repo, profiles: profiles, validator: validate, logger: logger}
}

// Record registers a salary payment for a teacher or staff member.
func (s *SalaryService) Record(ctx context.Context, req RecordSalaryPaymentRequest) (*models.SalaryPayment, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid salary payment payload")
	}
	if req.Role != models.RoleTeacher && req.Role != models.RoleStaff {
		return nil, appErrors.Clone(appErrors.ErrValidation, "salary payments apply to teachers and staff only")
	}

	if _, err := s.profiles.FindProfileDetail(ctx, req.Role, req.ProfileID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "profile does not exist")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load profile")
	}

	payment := &models.SalaryPayment{
		StaffProfileID: req.ProfileID,
		Amount:         req.Amount,
		PaidAt:         req.PaidAt.UTC(),
		Notes:          &req.Notes,
	}
	if req.PaidAt.IsZero() {
		payment.PaidAt = time.Now().UTC()
	}
	if err := s.repo.Create(ctx, payment); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record salary payment")
	}

	s.logger.Info("salary payment recorded",
		zap.String("profile_id", req.ProfileID),
		zap.Float64("amount", req.Amount))
	return payment, nil
}

// History returns the payment history of one person, newest first.
func (s *SalaryService) History(ctx context.Context, profileID string, limit int) ([]models.SalaryPayment, error) {
	if profileID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "profile_id is required")
	}
	payments, err := s.repo.ListForStaff(ctx, profileID, limit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list salary payments")
	}
	return payments, nil
}

// Delete removes a salary payment record.
func (s *SalaryService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete salary payment")
	}
	return nil
}
