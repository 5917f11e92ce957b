package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/schoolworks/sis-api/internal/models"
	appErrors "github.com/schoolworks/sis-api/pkg/errors"
)

type mockExamGradeRepo struct {
	items    map[string]*models.ExamGrade
	recorded map[string]string
	created  []models.ExamGrade
}

func (m *mockExamGradeRepo) List(ctx context.Context, filter models.ExamGradeFilter) ([]models.ExamGradeDetail, int, error) {
	return nil, 0, nil
}

func (m *mockExamGradeRepo) FindByID(ctx context.Context, id string) (*models.ExamGrade, error) {
	if grade, ok := m.items[id]; ok {
		cp := *grade
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockExamGradeRepo) Exists(ctx context.Context, studentID, examID string) (bool, error) {
	return m.recorded[studentID] == examID, nil
}

func (m *mockExamGradeRepo) Create(ctx context.Context, grade *models.ExamGrade) error {
	if grade.ID == "" {
		grade.ID = "generated"
	}
	m.created = append(m.created, *grade)
	return nil
}

func (m *mockExamGradeRepo) UpdateScore(ctx context.Context, id string, score float64) error {
	if grade, ok := m.items[id]; ok {
		grade.Score = score
	}
	return nil
}

func (m *mockExamGradeRepo) Delete(ctx context.Context, id string) error {
	delete(m.items, id)
	return nil
}

type mockExamLookup struct {
	exams map[string]models.Exam
}

func (m *mockExamLookup) FindByID(ctx context.Context, id string) (*models.Exam, error) {
	if exam, ok := m.exams[id]; ok {
		cp := exam
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func midtermExams() *mockExamLookup {
	return &mockExamLookup{exams: map[string]models.Exam{
		"e1": {
			ID:             "e1",
			Name:           "Midterm",
			SubjectID:      "sub1",
			ClassID:        "c1",
			ExamDate:       time.Date(2026, 10, 5, 0, 0, 0, 0, time.UTC),
			AcademicYearID: "y1",
		},
	}}
}

func TestExamGradeServiceRecordCopiesExamFields(t *testing.T) {
	repo := &mockExamGradeRepo{}
	svc := NewExamGradeService(repo, midtermExams(), studentProfiles("st1"), validator.New(), zap.NewNop())

	grade, err := svc.Record(context.Background(), RecordExamGradeRequest{
		StudentID: "st1",
		ExamID:    "e1",
		Score:     88,
	})
	require.NoError(t, err)
	assert.Equal(t, "sub1", grade.SubjectID)
	assert.Equal(t, "y1", grade.AcademicYearID)
	assert.Len(t, repo.created, 1)
}

func TestExamGradeServiceRejectsDuplicate(t *testing.T) {
	repo := &mockExamGradeRepo{recorded: map[string]string{"st1": "e1"}}
	svc := NewExamGradeService(repo, midtermExams(), studentProfiles("st1"), validator.New(), zap.NewNop())

	_, err := svc.Record(context.Background(), RecordExamGradeRequest{
		StudentID: "st1",
		ExamID:    "e1",
		Score:     75,
	})
	require.Error(t, err)

	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
	assert.Empty(t, repo.created)
}

func TestExamGradeServiceRejectsScoreOutOfRange(t *testing.T) {
	repo := &mockExamGradeRepo{}
	svc := NewExamGradeService(repo, midtermExams(), studentProfiles("st1"), validator.New(), zap.NewNop())

	_, err := svc.Record(context.Background(), RecordExamGradeRequest{
		StudentID: "st1",
		ExamID:    "e1",
		Score:     101,
	})
	require.Error(t, err)

	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestExamGradeServiceRejectsUnknownExam(t *testing.T) {
	repo := &mockExamGradeRepo{}
	svc := NewExamGradeService(repo, &mockExamLookup{}, studentProfiles("st1"), validator.New(), zap.NewNop())

	_, err := svc.Record(context.Background(), RecordExamGradeRequest{
		StudentID: "st1",
		ExamID:    "missing",
		Score:     50,
	})
	require.Error(t, err)

	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestExamGradeServiceCorrect(t *testing.T) {
	repo := &mockExamGradeRepo{items: map[string]*models.ExamGrade{
		"eg1": {ID: "eg1", StudentID: "st1", ExamID: "e1", Score: 60},
	}}
	svc := NewExamGradeService(repo, midtermExams(), studentProfiles("st1"), validator.New(), zap.NewNop())

	grade, err := svc.Correct(context.Background(), "eg1", UpdateExamGradeRequest{Score: 72})
	require.NoError(t, err)
	assert.Equal(t, float64(72), grade.Score)
	assert.Equal(t, float64(72), repo.items["eg1"].Score)
}
