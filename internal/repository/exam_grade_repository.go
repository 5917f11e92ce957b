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

// ExamGradeRepository manages persistence for student exam scores.
type ExamGradeRepository struct {
	db *sqlx.DB
}

// NewExamGradeRepository constructs an ExamGradeRepository.
func NewExamGradeRepository(db *sqlx.DB) *ExamGradeRepository {
	return &ExamGradeRepository{db: db}
}

// List returns exam grades with descriptive fields, matching filters.
func (r *ExamGradeRepository) List(ctx context.Context, filter models.ExamGradeFilter) ([]models.ExamGradeDetail, int, error) {
	base := `FROM exam_grades eg
JOIN student_profiles sp ON sp.id = eg.student_id
JOIN users u ON u.id = sp.user_id
JOIN exams e ON e.id = eg.exam_id
JOIN subjects s ON s.id = eg.subject_id
WHERE 1=1`
	var conditions []string
	var args []interface{}

	if filter.StudentID != "" {
		conditions = append(conditions, fmt.Sprintf("eg.student_id = $%d", len(args)+1))
		args = append(args, filter.StudentID)
	}
	if filter.ExamID != "" {
		conditions = append(conditions, fmt.Sprintf("eg.exam_id = $%d", len(args)+1))
		args = append(args, filter.ExamID)
	}
	if filter.SubjectID != "" {
		conditions = append(conditions, fmt.Sprintf("eg.subject_id = $%d", len(args)+1))
		args = append(args, filter.SubjectID)
	}
	if filter.AcademicYearID != "" {
		conditions = append(conditions, fmt.Sprintf("eg.academic_year_id = $%d", len(args)+1))
		args = append(args, filter.AcademicYearID)
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

	query := fmt.Sprintf(`SELECT eg.id, eg.student_id, eg.exam_id, eg.subject_id, eg.score, eg.academic_year_id, eg.created_at,
        u.full_name AS student_name, e.name AS exam_name, s.name AS subject_name
        %s ORDER BY eg.created_at DESC LIMIT %d OFFSET %d`, base, size, offset)

	var grades []models.ExamGradeDetail
	if err := r.db.SelectContext(ctx, &grades, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list exam grades: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count exam grades: %w", err)
	}

	return grades, total, nil
}

// FindByID fetches an exam grade by ID.
func (r *ExamGradeRepository) FindByID(ctx context.Context, id string) (*models.ExamGrade, error) {
	const query = `SELECT id, student_id, exam_id, subject_id, score, academic_year_id, created_at FROM exam_grades WHERE id = $1`
	var grade models.ExamGrade
	if err := r.db.GetContext(ctx, &grade, query, id); err != nil {
		return nil, err
	}
	return &grade, nil
}

// Exists checks whether the student already has a score for the exam.
func (r *ExamGradeRepository) Exists(ctx context.Context, studentID, examID string) (bool, error) {
	const query = `SELECT 1 FROM exam_grades WHERE student_id = $1 AND exam_id = $2 LIMIT 1`
	var exists int
	if err := r.db.GetContext(ctx, &exists, query, studentID, examID); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check exam grade: %w", err)
	}
	return true, nil
}

// Create inserts a new exam grade record.
func (r *ExamGradeRepository) Create(ctx context.Context, grade *models.ExamGrade) error {
	if grade.ID == "" {
		grade.ID = uuid.NewString()
	}
	if grade.CreatedAt.IsZero() {
		grade.CreatedAt = time.Now().UTC()
	}

	const query = `INSERT INTO exam_grades (id, student_id, exam_id, subject_id, score, academic_year_id, created_at)
		VALUES (:id, :student_id, :exam_id, :subject_id, :score, :academic_year_id, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, grade); err != nil {
		return fmt.Errorf("create exam grade: %w", err)
	}
	return nil
}

// UpdateScore changes the score of an existing record.
func (r *ExamGradeRepository) UpdateScore(ctx context.Context, id string, score float64) error {
	const query = `UPDATE exam_grades SET score = $2 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, score); err != nil {
		return fmt.Errorf("update exam grade: %w", err)
	}
	return nil
}

// Delete removes an exam grade permanently.
func (r *ExamGradeRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM exam_grades WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete exam grade: %w", err)
	}
	return nil
}

// ListForStudent returns all scores of a student, optionally for one year.
func (r *ExamGradeRepository) ListForStudent(ctx context.Context, studentID, yearID string) ([]models.ExamGradeDetail, error) {
	base := `SELECT eg.id, eg.student_id, eg.exam_id, eg.subject_id, eg.score, eg.academic_year_id, eg.created_at,
        u.full_name AS student_name, e.name AS exam_name, s.name AS subject_name
        FROM exam_grades eg
        JOIN student_profiles sp ON sp.id = eg.student_id
        JOIN users u ON u.id = sp.user_id
        JOIN exams e ON e.id = eg.exam_id
        JOIN subjects s ON s.id = eg.subject_id
        WHERE eg.student_id = $1`
	args := []interface{}{studentID}
	if yearID != "" {
		base += " AND eg.academic_year_id = $2"
		args = append(args, yearID)
	}
	base += " ORDER BY e.exam_date DESC"

	var grades []models.ExamGradeDetail
	if err := r.db.SelectContext(ctx, &grades, base, args...); err != nil {
		return nil, fmt.Errorf("list student exam grades: %w", err)
	}
	return grades, nil
}
