package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/schoolworks/sis-api/internal/models"
	appErrors "github.com/schoolworks/sis-api/pkg/errors"
)

type examGradeRepository interface {
	List(ctx context.Context, filter models.ExamGradeFilter) ([]models.ExamGradeDetail, int, error)
	FindByID(ctx context.Context, id string) (*models.ExamGrade, error)
	Exists(ctx context.Context, studentID, examID string) (bool, error)
	Create(ctx context.Context, grade *models.ExamGrade) error
	UpdateScore(ctx context.Context, id string, score float64) error
	Delete(ctx context.Context, id string) error
}

type examGradeExamLookup interface {
	FindByID(ctx context.Context, id string) (*models.Exam, error)
}

// RecordExamGradeRequest describes payload for recording a score.
type RecordExamGradeRequest struct {
	StudentID string  `json:"student_id" validate:"required"`
	ExamID    string  `json:"exam_id" validate:"required"`
	Score     float64 `json:"score" validate:"min=0,max=100"`
}

// UpdateExamGradeRequest corrects a recorded score.
type UpdateExamGradeRequest struct {
	Score float64 `json:"score" validate:"min=0,max=100"`
}

// ExamGradeService orchestrates exam scoring. A student gets at most one
// score per exam; the subject and year are copied from the exam itself.
type ExamGradeService struct {
	repo      examGradeRepository
	exams     examGradeExamLookup
	profiles  assignmentProfileLookup
	validator *validator.Validate
	logger    *zap.Logger
}

// NewExamGradeService creates a new exam grade service instance.
func NewExamGradeService(repo examGradeRepository, exams examGradeExamLookup, profiles assignmentProfileLookup, validate *validator.Validate, logger *zap.Logger) *ExamGradeService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExamGradeService{repo: repo, exams: exams, profiles: profiles, validator: validate, logger: logger}
}

// List returns paginated exam grades.
func (s *ExamGradeService) List(ctx context.Context, filter models.ExamGradeFilter) ([]models.ExamGradeDetail, *models.Pagination, error) {
	grades, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list exam grades")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 {
		size = 20
	}

	return grades, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

// Record stores a student's score for an exam.
func (s *ExamGradeService) Record(ctx context.Context, req RecordExamGradeRequest) (*models.ExamGrade, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid exam grade payload")
	}

	if _, err := s.profiles.FindProfileDetail(ctx, models.RoleStudent, req.StudentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "student does not exist")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load student")
	}

	exam, err := s.exams.FindByID(ctx, req.ExamID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "exam does not exist")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load exam")
	}

	exists, err := s.repo.Exists(ctx, req.StudentID, req.ExamID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check exam grade uniqueness")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "student already has a score for this exam")
	}

	grade := &models.ExamGrade{
		StudentID:      req.StudentID,
		ExamID:         req.ExamID,
		SubjectID:      exam.SubjectID,
		Score:          req.Score,
		AcademicYearID: exam.AcademicYearID,
	}
	if err := s.repo.Create(ctx, grade); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record exam grade")
	}
	return grade, nil
}

// Correct updates the score of an existing record.
func (s *ExamGradeService) Correct(ctx context.Context, id string, req UpdateExamGradeRequest) (*models.ExamGrade, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid exam grade payload")
	}

	grade, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "exam grade not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load exam grade")
	}

	if err := s.repo.UpdateScore(ctx, id, req.Score); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update exam grade")
	}
	grade.Score = req.Score
	return grade, nil
}

// Delete removes an exam grade.
func (s *ExamGradeService) Delete(ctx context.Context, id string) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "exam grade not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load exam grade")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete exam grade")
	}
	return nil
}
