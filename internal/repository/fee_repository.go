package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/schoolworks/sis-api/internal/models"
)

// FeeRepository manages persistence for fee records.
type FeeRepository struct {
	db *sqlx.DB
}

// NewFeeRepository constructs a FeeRepository.
func NewFeeRepository(db *sqlx.DB) *FeeRepository {
	return &FeeRepository{db: db}
}

// List returns fee records with student names, matching filters.
func (r *FeeRepository) List(ctx context.Context, filter models.FeeFilter) ([]models.FeeDetail, int, error) {
	base := `FROM fees f
JOIN student_profiles sp ON sp.id = f.student_id
JOIN users u ON u.id = sp.user_id
WHERE 1=1`
	var conditions []string
	var args []interface{}

	if filter.StudentID != "" {
		conditions = append(conditions, fmt.Sprintf("f.student_id = $%d", len(args)+1))
		args = append(args, filter.StudentID)
	}
	if filter.AcademicYearID != "" {
		conditions = append(conditions, fmt.Sprintf("f.academic_year_id = $%d", len(args)+1))
		args = append(args, filter.AcademicYearID)
	}
	if filter.DueBefore != nil {
		conditions = append(conditions, fmt.Sprintf("f.due_date <= $%d", len(args)+1))
		args = append(args, *filter.DueBefore)
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	sortBy := filter.SortBy
	if sortBy == "" {
		sortBy = "due_date"
	}
	allowedSorts := map[string]string{
		"due_date":   "f.due_date",
		"amount_due": "f.amount_due",
		"created_at": "f.created_at",
	}
	column, ok := allowedSorts[sortBy]
	if !ok {
		column = "f.due_date"
	}

	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "DESC"
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT f.id, f.student_id, f.amount_due, f.amount_paid, f.due_date, f.academic_year_id, f.created_at, f.updated_at,
        u.full_name AS student_name
        %s ORDER BY %s %s LIMIT %d OFFSET %d`, base, column, order, size, offset)

	var fees []models.FeeDetail
	if err := r.db.SelectContext(ctx, &fees, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list fees: %w", err)
	}
	for i := range fees {
		fees[i].FeeStatus = fees[i].Status()
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count fees: %w", err)
	}

	return fees, total, nil
}

// FindByID fetches a fee record by ID.
func (r *FeeRepository) FindByID(ctx context.Context, id string) (*models.Fee, error) {
	const query = `SELECT id, student_id, amount_due, amount_paid, due_date, academic_year_id, created_at, updated_at FROM fees WHERE id = $1`
	var fee models.Fee
	if err := r.db.GetContext(ctx, &fee, query, id); err != nil {
		return nil, err
	}
	return &fee, nil
}

// Create inserts a new fee record.
func (r *FeeRepository) Create(ctx context.Context, fee *models.Fee) error {
	if fee.ID == "" {
		fee.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if fee.CreatedAt.IsZero() {
		fee.CreatedAt = now
	}
	fee.UpdatedAt = now

	const query = `INSERT INTO fees (id, student_id, amount_due, amount_paid, due_date, academic_year_id, created_at, updated_at)
		VALUES (:id, :student_id, :amount_due, :amount_paid, :due_date, :academic_year_id, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, fee); err != nil {
		return fmt.Errorf("create fee: %w", err)
	}
	return nil
}

// Update modifies an existing fee record.
func (r *FeeRepository) Update(ctx context.Context, fee *models.Fee) error {
	fee.UpdatedAt = time.Now().UTC()
	const query = `UPDATE fees SET amount_due = :amount_due, amount_paid = :amount_paid, due_date = :due_date, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, fee); err != nil {
		return fmt.Errorf("update fee: %w", err)
	}
	return nil
}

// RecordPayment adds an amount to the paid total.
func (r *FeeRepository) RecordPayment(ctx context.Context, id string, amount float64) error {
	const query = `UPDATE fees SET amount_paid = amount_paid + $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, amount, time.Now().UTC()); err != nil {
		return fmt.Errorf("record fee payment: %w", err)
	}
	return nil
}

// Delete removes a fee record permanently.
func (r *FeeRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM fees WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete fee: %w", err)
	}
	return nil
}

// Summary aggregates fee totals and per-status counts, optionally scoped
// to one academic year.
func (r *FeeRepository) Summary(ctx context.Context, yearID string) (*models.FeeSummary, error) {
	const query = `SELECT amount_due, amount_paid FROM fees WHERE ($1 = '' OR academic_year_id = $1)`
	rows := []struct {
		AmountDue  float64 `db:"amount_due"`
		AmountPaid float64 `db:"amount_paid"`
	}{}
	if err := r.db.SelectContext(ctx, &rows, query, yearID); err != nil {
		return nil, fmt.Errorf("fee summary: %w", err)
	}

	summary := &models.FeeSummary{}
	for _, row := range rows {
		summary.TotalDue += row.AmountDue
		summary.TotalPaid += row.AmountPaid
		fee := models.Fee{AmountDue: row.AmountDue, AmountPaid: row.AmountPaid}
		switch fee.Status() {
		case models.FeeStatusComplete:
			summary.CompleteCount++
		case models.FeeStatusPartiallyPaid:
			summary.PartialCount++
		default:
			summary.UnpaidCount++
		}
	}
	summary.Outstanding = summary.TotalDue - summary.TotalPaid
	if summary.Outstanding < 0 {
		summary.Outstanding = 0
	}
	return summary, nil
}

// ListForStudent returns all fee records of a student with derived status.
func (r *FeeRepository) ListForStudent(ctx context.Context, studentID string) ([]models.FeeDetail, error) {
	const query = `SELECT f.id, f.student_id, f.amount_due, f.amount_paid, f.due_date, f.academic_year_id, f.created_at, f.updated_at,
        u.full_name AS student_name
        FROM fees f
        JOIN student_profiles sp ON sp.id = f.student_id
        JOIN users u ON u.id = sp.user_id
        WHERE f.student_id = $1
        ORDER BY f.due_date DESC`
	var fees []models.FeeDetail
	if err := r.db.SelectContext(ctx, &fees, query, studentID); err != nil {
		return nil, fmt.Errorf("list student fees: %w", err)
	}
	for i := range fees {
		fees[i].FeeStatus = fees[i].Status()
	}
	return fees, nil
}
