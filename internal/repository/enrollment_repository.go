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

// EnrollmentRepository manages persistence for student enrollments.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository constructs an EnrollmentRepository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// List returns enrollments with descriptive fields, matching filters.
func (r *EnrollmentRepository) List(ctx context.Context, filter models.StudentEnrollmentFilter) ([]models.StudentEnrollmentDetail, int, error) {
	base := `FROM student_enrollments se
JOIN student_profiles sp ON sp.id = se.student_id
JOIN users u ON u.id = sp.user_id
JOIN classes c ON c.id = se.class_id
JOIN academic_years y ON y.id = se.academic_year_id
WHERE 1=1`
	var conditions []string
	var args []interface{}

	if filter.StudentID != "" {
		conditions = append(conditions, fmt.Sprintf("se.student_id = $%d", len(args)+1))
		args = append(args, filter.StudentID)
	}
	if filter.ClassID != "" {
		conditions = append(conditions, fmt.Sprintf("se.class_id = $%d", len(args)+1))
		args = append(args, filter.ClassID)
	}
	if filter.AcademicYearID != "" {
		conditions = append(conditions, fmt.Sprintf("se.academic_year_id = $%d", len(args)+1))
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
		"student":    "u.full_name",
		"class":      "c.name",
		"created_at": "se.created_at",
	}
	column, ok := allowedSorts[sortBy]
	if !ok {
		column = "se.created_at"
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

	query := fmt.Sprintf(`SELECT se.id, se.student_id, se.class_id, se.academic_year_id, se.created_at,
        u.full_name AS student_name, c.name AS class_name, y.year AS year_label
        %s ORDER BY %s %s LIMIT %d OFFSET %d`, base, column, order, size, offset)

	var enrollments []models.StudentEnrollmentDetail
	if err := r.db.SelectContext(ctx, &enrollments, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list enrollments: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count enrollments: %w", err)
	}

	return enrollments, total, nil
}

// FindByID fetches an enrollment by ID.
func (r *EnrollmentRepository) FindByID(ctx context.Context, id string) (*models.StudentEnrollment, error) {
	const query = `SELECT id, student_id, class_id, academic_year_id, created_at FROM student_enrollments WHERE id = $1`
	var enrollment models.StudentEnrollment
	if err := r.db.GetContext(ctx, &enrollment, query, id); err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// FindForStudent returns the student's enrollment for a given year, or the
// latest one when yearID is empty.
func (r *EnrollmentRepository) FindForStudent(ctx context.Context, studentID, yearID string) (*models.StudentEnrollmentDetail, error) {
	base := `SELECT se.id, se.student_id, se.class_id, se.academic_year_id, se.created_at,
        u.full_name AS student_name, c.name AS class_name, y.year AS year_label
        FROM student_enrollments se
        JOIN student_profiles sp ON sp.id = se.student_id
        JOIN users u ON u.id = sp.user_id
        JOIN classes c ON c.id = se.class_id
        JOIN academic_years y ON y.id = se.academic_year_id
        WHERE se.student_id = $1`
	args := []interface{}{studentID}
	if yearID != "" {
		base += " AND se.academic_year_id = $2"
		args = append(args, yearID)
	}
	base += " ORDER BY se.created_at DESC LIMIT 1"

	var enrollment models.StudentEnrollmentDetail
	if err := r.db.GetContext(ctx, &enrollment, base, args...); err != nil {
		return nil, err
	}
	return &enrollment, nil
}

// Exists checks whether the student is already enrolled for the year.
func (r *EnrollmentRepository) Exists(ctx context.Context, studentID, yearID string) (bool, error) {
	const query = `SELECT 1 FROM student_enrollments WHERE student_id = $1 AND academic_year_id = $2 LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, studentID, yearID); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check enrollment: %w", err)
	}
	return true, nil
}

// Create inserts a new enrollment record.
func (r *EnrollmentRepository) Create(ctx context.Context, enrollment *models.StudentEnrollment) error {
	if enrollment.ID == "" {
		enrollment.ID = uuid.NewString()
	}
	if enrollment.CreatedAt.IsZero() {
		enrollment.CreatedAt = time.Now().UTC()
	}

	const query = `INSERT INTO student_enrollments (id, student_id, class_id, academic_year_id, created_at)
		VALUES (:id, :student_id, :class_id, :academic_year_id, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, enrollment); err != nil {
		return fmt.Errorf("create enrollment: %w", err)
	}
	return nil
}

// Delete removes an enrollment permanently.
func (r *EnrollmentRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM student_enrollments WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete enrollment: %w", err)
	}
	return nil
}

// ListStudentIDsForClass returns the student profile IDs enrolled in a class.
func (r *EnrollmentRepository) ListStudentIDsForClass(ctx context.Context, classID string) ([]string, error) {
	const query = `SELECT student_id FROM student_enrollments WHERE class_id = $1 ORDER BY student_id`
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, query, classID); err != nil {
		return nil, fmt.Errorf("list class students: %w", err)
	}
	return ids, nil
}
