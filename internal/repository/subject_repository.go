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

// SubjectRepository manages persistence for subjects and their class links.
type SubjectRepository struct {
	db *sqlx.DB
}

// NewSubjectRepository constructs a SubjectRepository.
func NewSubjectRepository(db *sqlx.DB) *SubjectRepository {
	return &SubjectRepository{db: db}
}

// List returns subjects matching filters along with total count.
func (r *SubjectRepository) List(ctx context.Context, filter models.SubjectFilter) ([]models.SubjectDetail, int, error) {
	base := `FROM subjects s
JOIN grades g ON g.id = s.grade_id
WHERE 1=1`
	var conditions []string
	var args []interface{}

	if filter.GradeID != "" {
		conditions = append(conditions, fmt.Sprintf("s.grade_id = $%d", len(args)+1))
		args = append(args, filter.GradeID)
	}
	if filter.AcademicYearID != "" {
		conditions = append(conditions, fmt.Sprintf("s.academic_year_id = $%d", len(args)+1))
		args = append(args, filter.AcademicYearID)
	}
	if filter.ClassID != "" {
		conditions = append(conditions, fmt.Sprintf("s.id IN (SELECT subject_id FROM subject_classes WHERE class_id = $%d)", len(args)+1))
		args = append(args, filter.ClassID)
	}
	if filter.IsActive != nil {
		conditions = append(conditions, fmt.Sprintf("s.is_active = $%d", len(args)+1))
		args = append(args, *filter.IsActive)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("LOWER(s.name) LIKE $%d", len(args)+1))
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
		"name":       "s.name",
		"grade":      "g.name",
		"created_at": "s.created_at",
	}
	column, ok := allowedSorts[sortBy]
	if !ok {
		column = "s.name"
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

	query := fmt.Sprintf(`SELECT s.id, s.name, s.grade_id, s.academic_year_id, s.is_active, s.created_at, s.updated_at,
        g.name AS grade_name
        %s ORDER BY %s %s LIMIT %d OFFSET %d`, base, column, order, size, offset)

	var subjects []models.SubjectDetail
	if err := r.db.SelectContext(ctx, &subjects, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list subjects: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count subjects: %w", err)
	}

	return subjects, total, nil
}

// FindByID fetches a subject by ID.
func (r *SubjectRepository) FindByID(ctx context.Context, id string) (*models.Subject, error) {
	const query = `SELECT id, name, grade_id, academic_year_id, is_active, created_at, updated_at FROM subjects WHERE id = $1`
	var subject models.Subject
	if err := r.db.GetContext(ctx, &subject, query, id); err != nil {
		return nil, err
	}
	return &subject, nil
}

// ListClassIDs returns the class IDs linked to a subject.
func (r *SubjectRepository) ListClassIDs(ctx context.Context, subjectID string) ([]string, error) {
	const query = `SELECT class_id FROM subject_classes WHERE subject_id = $1 ORDER BY class_id`
	var ids []string
	if err := r.db.SelectContext(ctx, &ids, query, subjectID); err != nil {
		return nil, fmt.Errorf("list subject classes: %w", err)
	}
	return ids, nil
}

// CreateWithClasses inserts the subject row and its class links atomically.
func (r *SubjectRepository) CreateWithClasses(ctx context.Context, subject *models.Subject, classIDs []string) error {
	if subject.ID == "" {
		subject.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if subject.CreatedAt.IsZero() {
		subject.CreatedAt = now
	}
	subject.UpdatedAt = now

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create subject tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const insert = `INSERT INTO subjects (id, name, grade_id, academic_year_id, is_active, created_at, updated_at)
		VALUES (:id, :name, :grade_id, :academic_year_id, :is_active, :created_at, :updated_at)`
	if _, err = tx.NamedExecContext(ctx, insert, subject); err != nil {
		return fmt.Errorf("create subject: %w", err)
	}

	const link = `INSERT INTO subject_classes (subject_id, class_id) VALUES ($1, $2)`
	for _, classID := range classIDs {
		if _, err = tx.ExecContext(ctx, link, subject.ID, classID); err != nil {
			return fmt.Errorf("link subject class: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit create subject tx: %w", err)
	}
	return nil
}

// UpdateWithClasses updates the subject row and replaces its class links
// atomically.
func (r *SubjectRepository) UpdateWithClasses(ctx context.Context, subject *models.Subject, classIDs []string) error {
	subject.UpdatedAt = time.Now().UTC()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin update subject tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const update = `UPDATE subjects SET name = :name, grade_id = :grade_id, academic_year_id = :academic_year_id, is_active = :is_active, updated_at = :updated_at WHERE id = :id`
	if _, err = tx.NamedExecContext(ctx, update, subject); err != nil {
		return fmt.Errorf("update subject: %w", err)
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM subject_classes WHERE subject_id = $1`, subject.ID); err != nil {
		return fmt.Errorf("clear subject classes: %w", err)
	}

	const link = `INSERT INTO subject_classes (subject_id, class_id) VALUES ($1, $2)`
	for _, classID := range classIDs {
		if _, err = tx.ExecContext(ctx, link, subject.ID, classID); err != nil {
			return fmt.Errorf("link subject class: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit update subject tx: %w", err)
	}
	return nil
}

// CountActive returns the number of active subjects.
func (r *SubjectRepository) CountActive(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM subjects WHERE is_active = TRUE`); err != nil {
		return 0, fmt.Errorf("count subjects: %w", err)
	}
	return count, nil
}

// Deactivate sets a subject's active flag to false.
func (r *SubjectRepository) Deactivate(ctx context.Context, id string) error {
	const query = `UPDATE subjects SET is_active = FALSE, updated_at = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, time.Now().UTC()); err != nil {
		return fmt.Errorf("deactivate subject: %w", err)
	}
	return nil
}

// Delete removes a subject and its class links permanently.
func (r *SubjectRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete subject tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM subject_classes WHERE subject_id = $1`, id); err != nil {
		return fmt.Errorf("delete subject classes: %w", err)
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM subjects WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete subject: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit delete subject tx: %w", err)
	}
	return nil
}
