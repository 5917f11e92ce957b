package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/schoolworks/sis-api/internal/models"
)

// AttendanceRepository handles persistence for per-subject student
// attendance records.
type AttendanceRepository struct {
	db *sqlx.DB
}

// NewAttendanceRepository constructs the repository.
func NewAttendanceRepository(db *sqlx.DB) *AttendanceRepository {
	return &AttendanceRepository{db: db}
}

// List returns attendance rows matching the provided filter.
func (r *AttendanceRepository) List(ctx context.Context, filter models.AttendanceFilter) ([]models.AttendanceRecord, int, error) {
	base := `FROM attendance a
JOIN student_profiles sp ON sp.id = a.student_id
JOIN users u ON u.id = sp.user_id
JOIN subjects s ON s.id = a.subject_id
WHERE 1=1`
	var conditions []string
	var args []interface{}

	if filter.StudentID != "" {
		conditions = append(conditions, fmt.Sprintf("a.student_id = $%d", len(args)+1))
		args = append(args, filter.StudentID)
	}
	if filter.SubjectID != "" {
		conditions = append(conditions, fmt.Sprintf("a.subject_id = $%d", len(args)+1))
		args = append(args, filter.SubjectID)
	}
	if filter.AcademicYearID != "" {
		conditions = append(conditions, fmt.Sprintf("a.academic_year_id = $%d", len(args)+1))
		args = append(args, filter.AcademicYearID)
	}
	if filter.Status != nil && filter.Status.Valid() {
		conditions = append(conditions, fmt.Sprintf("a.status = $%d", len(args)+1))
		args = append(args, *filter.Status)
	}
	if filter.DateFrom != nil {
		conditions = append(conditions, fmt.Sprintf("a.date >= $%d", len(args)+1))
		args = append(args, *filter.DateFrom)
	}
	if filter.DateTo != nil {
		conditions = append(conditions, fmt.Sprintf("a.date <= $%d", len(args)+1))
		args = append(args, *filter.DateTo)
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	sortBy := filter.SortBy
	if sortBy == "" {
		sortBy = "date"
	}
	allowedSorts := map[string]string{
		"date":       "a.date",
		"status":     "a.status",
		"created_at": "a.created_at",
	}
	column, ok := allowedSorts[sortBy]
	if !ok {
		column = "a.date"
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

	query := fmt.Sprintf(`SELECT a.id, a.student_id, a.subject_id, a.date, a.status, a.academic_year_id, a.created_at,
        u.full_name AS student_name, s.name AS subject_name
        %s ORDER BY %s %s LIMIT %d OFFSET %d`, base, column, order, size, offset)

	var records []models.AttendanceRecord
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list attendance: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count attendance: %w", err)
	}

	return records, total, nil
}

// FindByID fetches an attendance record by ID.
func (r *AttendanceRepository) FindByID(ctx context.Context, id string) (*models.Attendance, error) {
	const query = `SELECT id, student_id, subject_id, date, status, academic_year_id, created_at FROM attendance WHERE id = $1`
	var record models.Attendance
	if err := r.db.GetContext(ctx, &record, query, id); err != nil {
		return nil, err
	}
	return &record, nil
}

// Exists checks if the student already has a record for the subject and date.
func (r *AttendanceRepository) Exists(ctx context.Context, studentID, subjectID string, date time.Time) (bool, error) {
	const query = `SELECT 1 FROM attendance WHERE student_id = $1 AND subject_id = $2 AND date = $3 LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, studentID, subjectID, date); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check attendance: %w", err)
	}
	return true, nil
}

// Create inserts a new attendance record.
func (r *AttendanceRepository) Create(ctx context.Context, record *models.Attendance) error {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}

	const query = `INSERT INTO attendance (id, student_id, subject_id, date, status, academic_year_id, created_at)
		VALUES (:id, :student_id, :subject_id, :date, :status, :academic_year_id, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, record); err != nil {
		return fmt.Errorf("create attendance: %w", err)
	}
	return nil
}

// UpdateStatus changes the status of an existing record.
func (r *AttendanceRepository) UpdateStatus(ctx context.Context, id string, status models.AttendanceStatus) error {
	const query = `UPDATE attendance SET status = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, status); err != nil {
		return fmt.Errorf("update attendance status: %w", err)
	}
	return nil
}

// Delete removes an attendance record permanently.
func (r *AttendanceRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM attendance WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete attendance: %w", err)
	}
	return nil
}

// StudentSummary aggregates present and absent counts for a student.
func (r *AttendanceRepository) StudentSummary(ctx context.Context, studentID, yearID string) (present, absent int, err error) {
	const query = `SELECT status, COUNT(*) AS cnt FROM attendance
        WHERE student_id = $1 AND ($2 = '' OR academic_year_id = $2)
        GROUP BY status`
	rows := []struct {
		Status string `db:"status"`
		Count  int    `db:"cnt"`
	}{}
	if err = r.db.SelectContext(ctx, &rows, query, studentID, yearID); err != nil {
		return 0, 0, fmt.Errorf("student attendance summary: %w", err)
	}
	for _, row := range rows {
		switch models.AttendanceStatus(row.Status) {
		case models.AttendancePresent:
			present = row.Count
		case models.AttendanceAbsent:
			absent = row.Count
		}
	}
	return present, absent, nil
}
