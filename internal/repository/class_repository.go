package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/schoolworks/sis-api/internal/models"
)

// ClassRepository manages persistence for class sections.
type ClassRepository struct {
	db *sqlx.DB
}

// NewClassRepository constructs a ClassRepository.
func NewClassRepository(db *sqlx.DB) *ClassRepository {
	return &ClassRepository{db: db}
}

// List returns classes with grade and year labels, matching filters.
func (r *ClassRepository) List(ctx context.Context, filter models.ClassFilter) ([]models.ClassDetail, int, error) {
	base := `FROM classes c
JOIN grades g ON g.id = c.grade_id
JOIN academic_years y ON y.id = c.academic_year_id
WHERE 1=1`
	var conditions []string
	var args []interface{}

	if filter.GradeID != "" {
		conditions = append(conditions, fmt.Sprintf("c.grade_id = $%d", len(args)+1))
		args = append(args, filter.GradeID)
	}
	if filter.AcademicYearID != "" {
		conditions = append(conditions, fmt.Sprintf("c.academic_year_id = $%d", len(args)+1))
		args = append(args, filter.AcademicYearID)
	}
	if filter.IsActive != nil {
		conditions = append(conditions, fmt.Sprintf("c.is_active = $%d", len(args)+1))
		args = append(args, *filter.IsActive)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("LOWER(c.name) LIKE $%d", len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	sortBy := filter.SortBy
	if sortBy == "" {
		sortBy = "name"
	}
	allowedSorts := map[string]string{
		"name":       "c.name",
		"grade":      "g.name",
		"year":       "y.year",
		"created_at": "c.created_at",
	}
	column, ok := allowedSorts[sortBy]
	if !ok {
		column = "c.name"
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

	query := fmt.Sprintf(`SELECT c.id, c.name, c.grade_id, c.academic_year_id, c.is_active, c.created_at, c.updated_at,
        g.name AS grade_name, y.year AS year_label
        %s ORDER BY %s %s LIMIT %d OFFSET %d`, base, column, order, size, offset)

	var classes []models.ClassDetail
	if err := r.db.SelectContext(ctx, &classes, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list classes: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count classes: %w", err)
	}

	return classes, total, nil
}

// FindByID fetches a class by ID.
func (r *ClassRepository) FindByID(ctx context.Context, id string) (*models.Class, error) {
	const query = `SELECT id, name, grade_id, academic_year_id, is_active, created_at, updated_at FROM classes WHERE id = $1`
	var class models.Class
	if err := r.db.GetContext(ctx, &class, query, id); err != nil {
		return nil, err
	}
	return &class, nil
}

// FindByIDs fetches several classes at once. Missing IDs are silently
// absent from the result.
func (r *ClassRepository) FindByIDs(ctx context.Context, ids []string) ([]models.Class, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	const query = `SELECT id, name, grade_id, academic_year_id, is_active, created_at, updated_at FROM classes WHERE id = ANY($1)`
	var classes []models.Class
	if err := r.db.SelectContext(ctx, &classes, query, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("find classes by ids: %w", err)
	}
	return classes, nil
}

// Create inserts a new class record.
func (r *ClassRepository) Create(ctx context.Context, class *models.Class) error {
	if class.ID == "" {
		class.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if class.CreatedAt.IsZero() {
		class.CreatedAt = now
	}
	class.UpdatedAt = now

	const query = `INSERT INTO classes (id, name, grade_id, academic_year_id, is_active, created_at, updated_at)
		VALUES (:id, :name, :grade_id, :academic_year_id, :is_active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, class); err != nil {
		return fmt.Errorf("create class: %w", err)
	}
	return nil
}

// Update modifies an existing class record.
func (r *ClassRepository) Update(ctx context.Context, class *models.Class) error {
	class.UpdatedAt = time.Now().UTC()
	const query = `UPDATE classes SET name = :name, grade_id = :grade_id, academic_year_id = :academic_year_id, is_active = :is_active, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, class); err != nil {
		return fmt.Errorf("update class: %w", err)
	}
	return nil
}

// Deactivate sets a class's active flag to false.
func (r *ClassRepository) Deactivate(ctx context.Context, id string) error {
	const query = `UPDATE classes SET is_active = FALSE, updated_at = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, time.Now().UTC()); err != nil {
		return fmt.Errorf("deactivate class: %w", err)
	}
	return nil
}

// Delete removes a class permanently.
func (r *ClassRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM classes WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete class: %w", err)
	}
	return nil
}

// CountActive returns the number of active classes.
func (r *ClassRepository) CountActive(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM classes WHERE is_active = TRUE`); err != nil {
		return 0, fmt.Errorf("count classes: %w", err)
	}
	return count, nil
}

// CountEnrollments returns the number of enrollments referencing the class.
func (r *ClassRepository) CountEnrollments(ctx context.Context, id string) (int, error) {
	const query = `SELECT COUNT(*) FROM student_enrollments WHERE class_id = $1`
	var count int
	if err := r.db.GetContext(ctx, &count, query, id); err != nil {
		return 0, fmt.Errorf("count class enrollments: %w", err)
	}
	return count, nil
}
