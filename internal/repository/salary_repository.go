package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/schoolworks/sis-api/internal/models"
)

// SalaryRepository manages persistence for staff salary payments.
type SalaryRepository struct {
	db *sqlx.DB
}

// NewSalaryRepository constructs a SalaryRepository.
func NewSalaryRepository(db *sqlx.DB) *SalaryRepository {
	return &SalaryRepository{db: db}
}

// Create inserts a salary payment record.
func (r *SalaryRepository) Create(ctx context.Context, payment *models.SalaryPayment) error {
	if payment.ID == "" {
		payment.ID = uuid.NewString()
	}
	if payment.CreatedAt.IsZero() {
		payment.CreatedAt = time.Now().UTC()
	}
	if payment.PaidAt.IsZero() {
		payment.PaidAt = time.Now().UTC()
	}

	const query = `INSERT INTO salary_payments (id, staff_profile_id, amount, paid_at, notes, created_at)
		VALUES (:id, :staff_profile_id, :amount, :paid_at, :notes, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, payment); err != nil {
		return fmt.Errorf("create salary payment: %w", err)
	}
	return nil
}

// ListForStaff returns the payment history of a staff member, newest first.
func (r *SalaryRepository) ListForStaff(ctx context.Context, staffProfileID string, limit int) ([]models.SalaryPayment, error) {
	if limit <= 0 || limit > 100 {
		limit = 24
	}
	query := fmt.Sprintf(`SELECT id, staff_profile_id, amount, paid_at, notes, created_at
        FROM salary_payments WHERE staff_profile_id = $1 ORDER BY paid_at DESC LIMIT %d`, limit)
	var payments []models.SalaryPayment
	if err := r.db.SelectContext(ctx, &payments, query, staffProfileID); err != nil {
		return nil, fmt.Errorf("list salary payments: %w", err)
	}
	return payments, nil
}

// Delete removes a salary payment permanently.
func (r *SalaryRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM salary_payments WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete salary payment: %w", err)
	}
	return nil
}
