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

// ScheduleRepository manages persistence for timetable slots.
type ScheduleRepository struct {
	db *sqlx.DB
}

// NewScheduleRepository constructs a ScheduleRepository.
func NewScheduleRepository(db *sqlx.DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

// List returns schedule slots with class and subject names.
func (r *ScheduleRepository) List(ctx context.Context, filter models.ScheduleFilter) ([]models.ScheduleDetail, int, error) {
	base := `FROM schedules sc
JOIN classes c ON c.id = sc.class_id
LEFT JOIN subjects s ON s.id = sc.subject_id
WHERE 1=1`
	var conditions []string
	var args []interface{}

	if filter.ClassID != "" {
		conditions = append(conditions, fmt.Sprintf("sc.class_id = $%d", len(args)+1))
		args = append(args, filter.ClassID)
	}
	if filter.SubjectID != "" {
		conditions = append(conditions, fmt.Sprintf("sc.subject_id = $%d", len(args)+1))
		args = append(args, filter.SubjectID)
	}
	if filter.DayOfWeek != "" {
		conditions = append(conditions, fmt.Sprintf("sc.day_of_week = $%d", len(args)+1))
		args = append(args, filter.DayOfWeek)
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	sortBy := filter.SortBy
	if sortBy == "" {
		sortBy = "day_of_week"
	}
	allowedSorts := map[string]string{
		"day_of_week": "sc.day_of_week",
		"section":     "sc.section",
		"created_at":  "sc.created_at",
	}
	column, ok := allowedSorts[sortBy]
	if !ok {
		column = "sc.day_of_week"
	}

	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "ASC"
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

	query := fmt.Sprintf(`SELECT sc.id, sc.class_id, sc.subject_id, sc.day_of_week, sc.section, sc.created_at,
        c.name AS class_name, s.name AS subject_name
        %s ORDER BY %s %s, sc.section ASC LIMIT %d OFFSET %d`, base, column, order, size, offset)

	var slots []models.ScheduleDetail
	if err := r.db.SelectContext(ctx, &slots, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list schedules: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count schedules: %w", err)
	}

	return slots, total, nil
}

// ListForClass returns the full weekly timetable of a class.
func (r *ScheduleRepository) ListForClass(ctx context.Context, classID string) ([]models.ScheduleDetail, error) {
	const query = `SELECT sc.id, sc.class_id, sc.subject_id, sc.day_of_week, sc.section, sc.created_at,
        c.name AS class_name, s.name AS subject_name
        FROM schedules sc
        JOIN classes c ON c.id = sc.class_id
        LEFT JOIN subjects s ON s.id = sc.subject_id
        WHERE sc.class_id = $1
        ORDER BY sc.day_of_week, sc.section`
	var slots []models.ScheduleDetail
	if err := r.db.SelectContext(ctx, &slots, query, classID); err != nil {
		return nil, fmt.Errorf("list class schedule: %w", err)
	}
	return slots, nil
}

// FindByID fetches a slot by ID.
func (r *ScheduleRepository) FindByID(ctx context.Context, id string) (*models.Schedule, error) {
	const query = `SELECT id, class_id, subject_id, day_of_week, section, created_at FROM schedules WHERE id = $1`
	var slot models.Schedule
	if err := r.db.GetContext(ctx, &slot, query, id); err != nil {
		return nil, err
	}
	return &slot, nil
}

// ExistsForSlot checks if the class already has an entry for the day and
// section.
func (r *ScheduleRepository) ExistsForSlot(ctx context.Context, classID string, day models.ScheduleDay, section models.ScheduleSection, excludeID string) (bool, error) {
	query := "SELECT 1 FROM schedules WHERE class_id = $1 AND day_of_week = $2 AND section = $3"
	args := []interface{}{classID, day, section}
	if excludeID != "" {
		query += " AND id <> $4"
		args = append(args, excludeID)
	}
	var exists int
	if err := r.db.GetContext(ctx, &exists, query+" LIMIT 1", args...); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check schedule slot: %w", err)
	}
	return true, nil
}

// Create inserts a new schedule slot.
func (r *ScheduleRepository) Create(ctx context.Context, slot *models.Schedule) error {
	if slot.ID == "" {
		slot.ID = uuid.NewString()
	}
	if slot.CreatedAt.IsZero() {
		slot.CreatedAt = time.Now().UTC()
	}

	const query = `INSERT INTO schedules (id, class_id, subject_id, day_of_week, section, created_at)
		VALUES (:id, :class_id, :subject_id, :day_of_week, :section, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, slot); err != nil {
		return fmt.Errorf("create schedule: %w", err)
	}
	return nil
}

// Update modifies an existing schedule slot.
func (r *ScheduleRepository) Update(ctx context.Context, slot *models.Schedule) error {
	const query = `UPDATE schedules SET class_id = :class_id, subject_id = :subject_id, day_of_week = :day_of_week, section = :section WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, slot); err != nil {
		return fmt.Errorf("update schedule: %w", err)
	}
	return nil
}

// Delete removes a schedule slot permanently.
func (r *ScheduleRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM schedules WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete schedule: %w", err)
	}
	return nil
}
