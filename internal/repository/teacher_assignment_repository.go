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

// TeacherAssignmentRepository manages persistence for teacher assignments.
type TeacherAssignmentRepository struct {
	db *sqlx.DB
}

// NewTeacherAssignmentRepository constructs the repository.
func NewTeacherAssignmentRepository(db *sqlx.DB) *TeacherAssignmentRepository {
	return &TeacherAssignmentRepository{db: db}
}

// List returns assignments with descriptive fields, matching filters.
func (r *TeacherAssignmentRepository) List(ctx context.Context, filter models.TeacherAssignmentFilter) ([]models.TeacherAssignmentDetail, int, error) {
	base := `FROM teacher_assignments ta
JOIN teacher_profiles tp ON tp.id = ta.teacher_id
JOIN users u ON u.id = tp.user_id
JOIN subjects s ON s.id = ta.subject_id
JOIN classes c ON c.id = ta.class_id
JOIN academic_years y ON y.id = ta.academic_year_id
WHERE 1=1`
	var conditions []string
	var args []interface{}

	if filter.TeacherID != "" {
		conditions = append(conditions, fmt.Sprintf("ta.teacher_id = $%d", len(args)+1))
		args = append(args, filter.TeacherID)
	}
	if filter.SubjectID != "" {
		conditions = append(conditions, fmt.Sprintf("ta.subject_id = $%d", len(args)+1))
		args = append(args, filter.SubjectID)
	}
	if filter.ClassID != "" {
		conditions = append(conditions, fmt.Sprintf("ta.class_id = $%d", len(args)+1))
		args = append(args, filter.ClassID)
	}
	if filter.AcademicYearID != "" {
		conditions = append(conditions, fmt.Sprintf("ta.academic_year_id = $%d", len(args)+1))
		args = append(args, filter.AcademicYearID)
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	sortBy := filter.SortBy
	if sortBy == "" {
		sortBy = "created_at"
	}
	allowedSorts := map[string]string{
		"teacher":    "u.full_name",
		"subject":    "s.name",
		"class":      "c.name",
		"created_at": "ta.created_at",
	}
	column, ok := allowedSorts[sortBy]
	if !ok {
		column = "ta.created_at"
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

	query := fmt.Sprintf(`SELECT ta.id, ta.teacher_id, ta.subject_id, ta.class_id, ta.academic_year_id, ta.created_at,
        u.full_name AS teacher_name, s.name AS subject_name, c.name AS class_name, y.year AS year_label
        %s ORDER BY %s %s LIMIT %d OFFSET %d`, base, column, order, size, offset)

	var assignments []models.TeacherAssignmentDetail
	if err := r.db.SelectContext(ctx, &assignments, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list teacher assignments: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count teacher assignments: %w", err)
	}

	return assignments, total, nil
}

// FindByID fetches an assignment by ID.
func (r *TeacherAssignmentRepository) FindByID(ctx context.Context, id string) (*models.TeacherAssignment, error) {
	const query = `SELECT id, teacher_id, subject_id, class_id, academic_year_id, created_at FROM teacher_assignments WHERE id = $1`
	var assignment models.TeacherAssignment
	if err := r.db.GetContext(ctx, &assignment, query, id); err != nil {
		return nil, err
	}
	return &assignment, nil
}

// Exists checks whether an identical assignment already exists.
func (r *TeacherAssignmentRepository) Exists(ctx context.Context, teacherID, subjectID, classID, yearID string) (bool, error) {
	const query = `SELECT 1 FROM teacher_assignments WHERE teacher_id = $1 AND subject_id = $2 AND class_id = $3 AND academic_year_id = $4 LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, teacherID, subjectID, classID, yearID); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check teacher assignment: %w", err)
	}
	return true, nil
}

// Create inserts a new assignment record.
func (r *TeacherAssignmentRepository) Create(ctx context.Context, assignment *models.TeacherAssignment) error {
	if assignment.ID == "" {
		assignment.ID = uuid.NewString()
	}
	if assignment.CreatedAt.IsZero() {
		assignment.CreatedAt = time.Now().UTC()
	}

	const query = `INSERT INTO teacher_assignments (id, teacher_id, subject_id, class_id, academic_year_id, created_at)
		VALUES (:id, :teacher_id, :subject_id, :class_id, :academic_year_id, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, assignment); err != nil {
		return fmt.Errorf("create teacher assignment: %w", err)
	}
	return nil
}

// Delete removes an assignment permanently.
func (r *TeacherAssignmentRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM teacher_assignments WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete teacher assignment: %w", err)
	}
	return nil
}

// ListForTeacher returns a teacher's assignments for dashboard views.
func (r *TeacherAssignmentRepository) ListForTeacher(ctx context.Context, teacherID string) ([]models.TeacherAssignmentDetail, error) {
	const query = `SELECT ta.id, ta.teacher_id, ta.subject_id, ta.class_id, ta.academic_year_id, ta.created_at,
        u.full_name AS teacher_name, s.name AS subject_name, c.name AS class_name, y.year AS year_label
        FROM teacher_assignments ta
        JOIN teacher_profiles tp ON tp.id = ta.teacher_id
        JOIN users u ON u.id = tp.user_id
        JOIN subjects s ON s.id = ta.subject_id
        JOIN classes c ON c.id = ta.class_id
        JOIN academic_years y ON y.id = ta.academic_year_id
        WHERE ta.teacher_id = $1
        ORDER BY c.name, s.name`
	var assignments []models.TeacherAssignmentDetail
	if err := r.db.SelectContext(ctx, &assignments, query, teacherID); err != nil {
		return nil, fmt.Errorf("list teacher assignments for teacher: %w", err)
	}
	return assignments, nil
}
