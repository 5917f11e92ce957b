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

// ExamRepository manages persistence for exams.
type ExamRepository struct {
	db *sqlx.DB
}

// NewExamRepository constructs an ExamRepository.
func NewExamRepository(db *sqlx.DB) *ExamRepository {
	return &ExamRepository{db: db}
}

// List returns exams with subject and class names, matching filters.
func (r *ExamRepository) List(ctx context.Context, filter models.ExamFilter) ([]models.ExamDetail, int, error) {
	base := `FROM exams e
JOIN subjects s ON s.id = e.subject_id
JOIN classes c ON c.id = e.class_id
WHERE 1=1`
	var conditions []string
	var args []interface{}

	if filter.SubjectID != "" {
		conditions = append(conditions, fmt.Sprintf("e.subject_id = $%d", len(args)+1))
		args = append(args, filter.SubjectID)
	}
	if filter.ClassID != "" {
		conditions = append(conditions, fmt.Sprintf("e.class_id = $%d", len(args)+1))
		args = append(args, filter.ClassID)
	}
	if filter.AcademicYearID != "" {
		conditions = append(conditions, fmt.Sprintf("e.academic_year_id = $%d", len(args)+1))
		args = append(args, filter.AcademicYearID)
	}
	if filter.DateFrom != nil {
		conditions = append(conditions, fmt.Sprintf("e.exam_date >= $%d", len(args)+1))
		args = append(args, *filter.DateFrom)
	}
	if filter.DateTo != nil {
		conditions = append(conditions, fmt.Sprintf("e.exam_date <= $%d", len(args)+1))
		args = append(args, *filter.DateTo)
	}

	if len(conditions) > 0 {
		base += " AND " + strings.Join(conditions, " AND ")
	}

	sortBy := filter.SortBy
	if sortBy == "" {
		sortBy = "exam_date"
	}
	allowedSorts := map[string]string{
		"name":       "e.name",
		"exam_date":  "e.exam_date",
		"created_at": "e.created_at",
	}
	column, ok := allowedSorts[sortBy]
	if !ok {
		column = "e.exam_date"
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

	query := fmt.Sprintf(`SELECT e.id, e.name, e.subject_id, e.class_id, e.exam_date, e.academic_year_id, e.created_at,
        s.name AS subject_name, c.name AS class_name
        %s ORDER BY %s %s LIMIT %d OFFSET %d`, base, column, order, size, offset)

	var exams []models.ExamDetail
	if err := r.db.SelectContext(ctx, &exams, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list exams: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count exams: %w", err)
	}

	return exams, total, nil
}

// FindByID fetches an exam by ID.
func (r *ExamRepository) FindByID(ctx context.Context, id string) (*models.Exam, error) {
	const query = `SELECT id, name, subject_id, class_id, exam_date, academic_year_id, created_at FROM exams WHERE id = $1`
	var exam models.Exam
	if err := r.db.GetContext(ctx, &exam, query, id); err != nil {
		return nil, err
	}
	return &exam, nil
}

// Create inserts a new exam record.
func (r *ExamRepository) Create(ctx context.Context, exam *models.Exam) error {
	if exam.ID == "" {
		exam.ID = uuid.NewString()
	}
	if exam.CreatedAt.IsZero() {
		exam.CreatedAt = time.Now().UTC()
	}

	const query = `INSERT INTO exams (id, name, subject_id, class_id, exam_date, academic_year_id, created_at)
		VALUES (:id, :name, :subject_id, :class_id, :exam_date, :academic_year_id, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, exam); err != nil {
		return fmt.Errorf("create exam: %w", err)
	}
	return nil
}

// Update modifies an existing exam record.
func (r *ExamRepository) Update(ctx context.Context, exam *models.Exam) error {
	const query = `UPDATE exams SET name = :name, subject_id = :subject_id, class_id = :class_id, exam_date = :exam_date WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, exam); err != nil {
		return fmt.Errorf("update exam: %w", err)
	}
	return nil
}

// Delete removes an exam permanently.
func (r *ExamRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM exams WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete exam: %w", err)
	}
	return nil
}

// ListUpcoming returns future exams, optionally scoped to a set of classes.
func (r *ExamRepository) ListUpcoming(ctx context.Context, after time.Time, classIDs []string, limit int) ([]models.ExamDetail, error) {
	if limit <= 0 || limit > 50 {
		limit = 10
	}
	base := `SELECT e.id, e.name, e.subject_id, e.class_id, e.exam_date, e.academic_year_id, e.created_at,
        s.name AS subject_name, c.name AS class_name
        FROM exams e
        JOIN subjects s ON s.id = e.subject_id
        JOIN classes c ON c.id = e.class_id
        WHERE e.exam_date >= $1`
	args := []interface{}{after}
	if len(classIDs) > 0 {
		placeholders := make([]string, len(classIDs))
		for i, id := range classIDs {
			placeholders[i] = fmt.Sprintf("$%d", len(args)+1)
			args = append(args, id)
		}
		base += fmt.Sprintf(" AND e.class_id IN (%s)", strings.Join(placeholders, ", "))
	}
	base += fmt.Sprintf(" ORDER BY e.exam_date ASC LIMIT %d", limit)

	var exams []models.ExamDetail
	if err := r.db.SelectContext(ctx, &exams, base, args...); err != nil {
		return nil, fmt.Errorf("list upcoming exams: %w", err)
	}
	return exams, nil
}
