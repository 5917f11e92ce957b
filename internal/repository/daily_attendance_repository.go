package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/schoolworks/sis-api/internal/models"
)

// dailyAttendanceTables maps the ledger kind to its table.
var dailyAttendanceTables = map[models.StaffKind]string{
	models.StaffKindTeacher: "teacher_daily_attendance",
	models.StaffKindStaff:   "staff_daily_attendance",
}

// IsUniqueViolation reports whether the error is a Postgres unique
// constraint violation.
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	return false
}

// DailyAttendanceRepository handles per-day attendance ledgers for
// teachers and staff. Both tables carry a unique (profile_id, date)
// constraint; duplicate inserts surface as unique violations.
type DailyAttendanceRepository struct {
	db *sqlx.DB
}

// NewDailyAttendanceRepository constructs the repository.
func NewDailyAttendanceRepository(db *sqlx.DB) *DailyAttendanceRepository {
	return &DailyAttendanceRepository{db: db}
}

// List returns daily attendance rows for a ledger matching the filter.
func (r *DailyAttendanceRepository) List(ctx context.Context, kind models.StaffKind, filter models.DailyAttendanceFilter) ([]models.DailyAttendanceDetail, int, error) {
	table, ok := dailyAttendanceTables[kind]
	if !ok {
		return nil, 0, fmt.Errorf("list daily attendance: unknown ledger %q", kind)
	}
	profileTable := "teacher_profiles"
	if kind == models.StaffKindStaff {
		profileTable = "staff_profiles"
	}

	base := fmt.Sprintf(`FROM %s da
JOIN %s p ON p.id = da.profile_id
JOIN users u ON u.id = p.user_id
WHERE 1=1`, table, profileTable)
	var conditions []string
	var args []interface{}

	if filter.ProfileID != "" {
		conditions = append(conditions, fmt.Sprintf("da.profile_id = $%d", len(args)+1))
		args = append(args, filter.ProfileID)
	}
	if filter.Status != nil && filter.Status.Valid() {
		conditions = append(conditions, fmt.Sprintf("da.status = $%d", len(args)+1))
		args = append(args, *filter.Status)
	}
	if filter.DateFrom != nil {
		conditions = append(conditions, fmt.Sprintf("da.date >= $%d", len(args)+1))
		args = append(args, *filter.DateFrom)
	}
	if filter.DateTo != nil {
		conditions = append(conditions, fmt.Sprintf("da.date <= $%d", len(args)+1))
		args = append(args, *filter.DateTo)
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
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

	query := fmt.Sprintf(`SELECT da.id, da.profile_id, da.date, da.status, da.created_at, u.full_name
        %s ORDER BY da.date DESC LIMIT %d OFFSET %d`, base, size, offset)

	var records []models.DailyAttendanceDetail
	if err := r.db.SelectContext(ctx, &records, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list daily attendance: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count daily attendance: %w", err)
	}

	return records, total, nil
}

// Create inserts a daily attendance record. A second record for the same
// person and date fails with a unique violation.
func (r *DailyAttendanceRepository) Create(ctx context.Context, kind models.StaffKind, record *models.DailyAttendance) error {
	table, ok := dailyAttendanceTables[kind]
	if !ok {
		return fmt.Errorf("create daily attendance: unknown ledger %q", kind)
	}
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}

	query := fmt.Sprintf(`INSERT INTO %s (id, profile_id, date, status, created_at) VALUES ($1, $2, $3, $4, $5)`, table)
	if _, err := r.db.ExecContext(ctx, query, record.ID, record.ProfileID, record.Date, record.Status, record.CreatedAt); err != nil {
		if IsUniqueViolation(err) {
			return err
		}
		return fmt.Errorf("create daily attendance: %w", err)
	}
	return nil
}

// UpdateStatus changes the status of an existing record.
func (r *DailyAttendanceRepository) UpdateStatus(ctx context.Context, kind models.StaffKind, id string, status models.AttendanceStatus) error {
	table, ok := dailyAttendanceTables[kind]
	if !ok {
		return fmt.Errorf("update daily attendance: unknown ledger %q", kind)
	}
	query := fmt.Sprintf(`UPDATE %s SET status = $2 WHERE id = $1`, table)
	if _, err := r.db.ExecContext(ctx, query, id, status); err != nil {
		return fmt.Errorf("update daily attendance: %w", err)
	}
	return nil
}

// ListForProfile returns recent records for one person, newest first.
func (r *DailyAttendanceRepository) ListForProfile(ctx context.Context, kind models.StaffKind, profileID string, limit int) ([]models.DailyAttendance, error) {
	table, ok := dailyAttendanceTables[kind]
	if !ok {
		return nil, fmt.Errorf("list profile attendance: unknown ledger %q", kind)
	}
	if limit <= 0 || limit > 100 {
		limit = 30
	}
	query := fmt.Sprintf(`SELECT id, profile_id, date, status, created_at FROM %s WHERE profile_id = $1 ORDER BY date DESC LIMIT %d`, table, limit)
	var records []models.DailyAttendance
	if err := r.db.SelectContext(ctx, &records, query, profileID); err != nil {
		return nil, fmt.Errorf("list profile attendance: %w", err)
	}
	return records, nil
}
