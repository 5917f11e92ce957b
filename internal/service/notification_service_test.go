package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/schoolworks/sis-api/internal/models"
	appErrors "github.com/schoolworks/sis-api/pkg/errors"
)

type mockNotificationRepo struct {
	items         map[string]*models.NotificationDetail
	createdClass  []string
	createdGrades []string
	created       int
}

func (m *mockNotificationRepo) List(ctx context.Context, filter models.NotificationFilter) ([]models.NotificationDetail, int, error) {
	return nil, 0, nil
}

func (m *mockNotificationRepo) FindByID(ctx context.Context, id string) (*models.NotificationDetail, error) {
	if notification, ok := m.items[id]; ok {
		cp := *notification
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockNotificationRepo) CreateWithTargets(ctx context.Context, notification *models.Notification, classIDs, gradeIDs []string) error {
	if notification.ID == "" {
		notification.ID = "generated"
	}
	m.created++
	m.createdClass = classIDs
	m.createdGrades = gradeIDs
	return nil
}

func (m *mockNotificationRepo) SetActive(ctx context.Context, id string, active bool) error {
	if notification, ok := m.items[id]; ok {
		notification.IsActive = active
	}
	return nil
}

func (m *mockNotificationRepo) Delete(ctx context.Context, id string) error {
	delete(m.items, id)
	return nil
}

type mockGradeLookup struct {
	grades map[string]models.Grade
}

func (m *mockGradeLookup) FindByID(ctx context.Context, id string) (*models.Grade, error) {
	if grade, ok := m.grades[id]; ok {
		cp := grade
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func newNotificationService(repo *mockNotificationRepo, classes map[string]models.Class, grades map[string]models.Grade) *NotificationService {
	return NewNotificationService(
		repo,
		&mockClassLookup{classes: classes},
		&mockGradeLookup{grades: grades},
		validator.New(),
		zap.NewNop(),
	)
}

func TestNotificationServiceCreateClassScope(t *testing.T) {
	repo := &mockNotificationRepo{}
	svc := newNotificationService(repo, map[string]models.Class{
		"c1": {ID: "c1", GradeID: "g10"},
	}, nil)

	notification, err := svc.Create(context.Background(), "sender-1", CreateNotificationRequest{
		Title:    "Exam week",
		Message:  "Exams start Monday",
		Scope:    models.ScopeClass,
		ClassIDs: []string{"c1"},
	})
	require.NoError(t, err)
	assert.True(t, notification.IsActive)
	assert.Equal(t, "sender-1", notification.SenderID)
	assert.Equal(t, []string{"c1"}, repo.createdClass)
}

func TestNotificationServiceClassScopeRequiresClasses(t *testing.T) {
	repo := &mockNotificationRepo{}
	svc := newNotificationService(repo, nil, nil)

	_, err := svc.Create(context.Background(), "sender-1", CreateNotificationRequest{
		Title:   "Exam week",
		Message: "Exams start Monday",
		Scope:   models.ScopeClass,
	})
	require.Error(t, err)

	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.Zero(t, repo.created)
}

func TestNotificationServiceClassScopeRejectsGradeTargets(t *testing.T) {
	repo := &mockNotificationRepo{}
	svc := newNotificationService(repo, map[string]models.Class{
		"c1": {ID: "c1"},
	}, nil)

	_, err := svc.Create(context.Background(), "sender-1", CreateNotificationRequest{
		Title:    "Exam week",
		Message:  "Exams start Monday",
		Scope:    models.ScopeClass,
		ClassIDs: []string{"c1"},
		GradeIDs: []string{"g10"},
	})
	require.Error(t, err)
	assert.Zero(t, repo.created)
}

func TestNotificationServiceGradeScope(t *testing.T) {
	repo := &mockNotificationRepo{}
	svc := newNotificationService(repo, nil, map[string]models.Grade{
		"g10": {ID: "g10", Name: "Grade 10"},
	})

	_, err := svc.Create(context.Background(), "sender-1", CreateNotificationRequest{
		Title:    "Field trip",
		Message:  "Permission slips due Friday",
		Scope:    models.ScopeGrade,
		GradeIDs: []string{"g10"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"g10"}, repo.createdGrades)
}

func TestNotificationServiceGradeScopeRejectsUnknownGrade(t *testing.T) {
	repo := &mockNotificationRepo{}
	svc := newNotificationService(repo, nil, nil)

	_, err := svc.Create(context.Background(), "sender-1", CreateNotificationRequest{
		Title:    "Field trip",
		Message:  "Permission slips due Friday",
		Scope:    models.ScopeGrade,
		GradeIDs: []string{"missing"},
	})
	require.Error(t, err)

	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestNotificationServiceSchoolScopeRejectsTargets(t *testing.T) {
	repo := &mockNotificationRepo{}
	svc := newNotificationService(repo, nil, nil)

	_, err := svc.Create(context.Background(), "sender-1", CreateNotificationRequest{
		Title:    "Holiday notice",
		Message:  "School closed tomorrow",
		Scope:    models.ScopeSchool,
		ClassIDs: []string{"c1"},
	})
	require.Error(t, err)
	assert.Zero(t, repo.created)
}

func TestNotificationServiceSchoolScope(t *testing.T) {
	repo := &mockNotificationRepo{}
	svc := newNotificationService(repo, nil, nil)

	notification, err := svc.Create(context.Background(), "sender-1", CreateNotificationRequest{
		Title:   "Holiday notice",
		Message: "School closed tomorrow",
		Scope:   models.ScopeSchool,
	})
	require.NoError(t, err)
	assert.Equal(t, models.ScopeSchool, notification.Scope)
	assert.Equal(t, 1, repo.created)
}

func TestNotificationServiceRejectsUnknownScope(t *testing.T) {
	repo := &mockNotificationRepo{}
	svc := newNotificationService(repo, nil, nil)

	_, err := svc.Create(context.Background(), "sender-1", CreateNotificationRequest{
		Title:   "Broken",
		Message: "Broken",
		Scope:   models.NotificationScope("District"),
	})
	require.Error(t, err)
	assert.Zero(t, repo.created)
}
