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

type feeRepository interface {
	List(ctx context.Context, filter models.FeeFilter) ([]models.FeeDetail, int, error)
	FindByID(ctx context.Context, id string) (*models.Fee, error)
	Create(ctx context.Context, fee *models.Fee) error
	Update(ctx context.Context, fee *models.Fee) error
	RecordPayment(ctx context.Context, id string, amount float64) error
	Delete(ctx context.Context, id string) error
	Summary(ctx context.Context, yearID string) (*models.FeeSummary, error)
}

// CreateFeeRequest describes payload for billing a student.
type CreateFeeRequest struct {
	StudentID      string    `json:"student_id" validate:"required"`
	AmountDue      float64   `json:"amount_due" validate:"gt=0"`
	AmountPaid     float64   `json:"amount_paid" validate:"min=0"`
	DueDate        time.Time `json:"due_date" validate:"required"`
	AcademicYearID string    `json:"academic_year_id" validate:"required"`
}

// UpdateFeeRequest adjusts an existing bill.
type UpdateFeeRequest struct {
	AmountDue float64   `json:"amount_due" validate:"gt=0"`
	DueDate   time.Time `json:"due_date" validate:"required"`
}

// RecordPaymentRequest registers a payment against a fee record.
type RecordPaymentRequest struct {
	Amount float64 `json:"amount" validate:"gt=0"`
}

// FeeService orchestrates student billing. Payment status is never
// stored; it derives from the due and paid amounts on every read.
type FeeService struct {
	repo      feeRepository
	profiles  assignmentProfileLookup
	validator *validator.Validate
	logger    *zap.Logger
}

// NewFeeService creates a new fee service instance.
func NewFeeService(repo feeRepository, profiles assignmentProfileLookup, validate *validator.Validate, logger *zap.Logger) *FeeService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FeeService{repo: repo, profiles: profiles, validator: validate, logger: logger}
}

// List returns paginated fee records with derived status.
func (s *FeeService) List(ctx context.Context, filter models.FeeFilter) ([]models.FeeDetail, *models.Pagination, error) {
	fees, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list fees")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}

	return fees, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// feeDetail wraps a stored record with its derived status so every read
// path reports fee_status, not just the listing join.
func feeDetail(fee *models.Fee) *models.FeeDetail {
	return &models.FeeDetail{Fee: *fee, FeeStatus: fee.Status()}
}

// Get returns a fee record by ID with derived status.
func (s *FeeService) Get(ctx context.Context, id string) (*models.FeeDetail, error) {
	fee, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "fee record not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load fee record")
	}
	return feeDetail(fee), nil
}

// Create bills a student.
func (s *FeeService) Create(ctx context.Context, req CreateFeeRequest) (*models.FeeDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid fee payload")
	}

	if _, err := s.profiles.FindProfileDetail(ctx, models.RoleStudent, req.StudentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "student does not exist")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	fee := &models.Fee{
		StudentID:      req.StudentID,
		AmountDue:      req.AmountDue,
		AmountPaid:     req.AmountPaid,
		DueDate:        req.DueDate.UTC(),
		AcademicYearID: req.AcademicYearID,
	}
	if err := s.repo.Create(ctx, fee); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create fee record")
	}
	return feeDetail(fee), nil
}

// Update adjusts the billed amount or due date.
func (s *FeeService) Update(ctx context.Context, id string, req UpdateFeeRequest) (*models.FeeDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid fee payload")
	}

	fee, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "fee record not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load fee record")
	}

	fee.AmountDue = req.AmountDue
	fee.DueDate = req.DueDate.UTC()

	if err := s.repo.Update(ctx, fee); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update fee record")
	}
	return feeDetail(fee), nil
}

// RecordPayment adds a payment to a fee record and returns the updated
// record with its derived status.
func (s *FeeService) RecordPayment(ctx context.Context, id string, req RecordPaymentRequest) (*models.FeeDetail, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "payment amount must be positive")
	}

	fee, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "fee record not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load fee record")
	}

	if err := s.repo.RecordPayment(ctx, id, req.Amount); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record payment")
	}
	fee.AmountPaid += req.Amount

	s.logger.Info("fee payment recorded",
		zap.String("fee_id", id),
		zap.Float64("amount", req.Amount),
		zap.String("status", string(fee.Status())))
	return feeDetail(fee), nil
}

// Delete removes a fee record.
func (s *FeeService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "fee record not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load fee record")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete fee record")
	}
	return nil
}

// Summary aggregates fee totals, optionally scoped to one academic year.
func (s *FeeService) Summary(ctx context.Context, yearID string) (*models.FeeSummary, error) {
	summary, err := s.repo.Summary(ctx, yearID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to compute fee summary")
	}
	return summary, nil
}
