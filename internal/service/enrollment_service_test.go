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

type mockEnrollmentRepo struct {
	items    map[string]*models.StudentEnrollment
	enrolled map[string]string
	created  []string
}

func (m *mockEnrollmentRepo) List(ctx context.Context, filter models.StudentEnrollmentFilter) ([]models.StudentEnrollmentDetail, int, error) {
	return nil, 0, nil
}

func (m *mockEnrollmentRepo) FindByID(ctx context.Context, id string) (*models.StudentEnrollment, error) {
	if enrollment, ok := m.items[id]; ok {
		cp := *enrollment
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockEnrollmentRepo) Exists(ctx context.Context, studentID, yearID string) (bool, error) {
	return m.enrolled[studentID] == yearID, nil
}

func (m *mockEnrollmentRepo) Create(ctx context.Context, enrollment *models.StudentEnrollment) error {
	if enrollment.ID == "" {
		enrollment.ID = "generated"
	}
	m.created = append(m.created, enrollment.ID)
	return nil
}

func (m *mockEnrollmentRepo) Delete(ctx context.Context, id string) error {
	delete(m.items, id)
	return nil
}

type mockProfileLookup struct {
	profiles map[string]models.ProfileDetail
}

func (m *mockProfileLookup) FindProfileDetail(ctx context.Context, role models.UserRole, profileID string) (*models.ProfileDetail, error) {
	if profile, ok := m.profiles[profileID]; ok && profile.Role == role {
		cp := profile
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func studentProfiles(ids ...string) *mockProfileLookup {
	profiles := make(map[string]models.ProfileDetail, len(ids))
	for _, id := range ids {
		profiles[id] = models.ProfileDetail{Role: models.RoleStudent, FullName: "Student " + id}
	}
	return &mockProfileLookup{profiles: profiles}
}

func TestEnrollmentServiceCreate(t *testing.T) {
	repo := &mockEnrollmentRepo{}
	classes := &mockClassLookup{classes: map[string]models.Class{
		"c1": {ID: "c1", GradeID: "g10", AcademicYearID: "y1", IsActive: true},
	}}
	svc := NewEnrollmentService(repo, classes, studentProfiles("st1"), validator.New(), zap.NewNop())

	enrollment, err := svc.Create(context.Background(), CreateEnrollmentRequest{
		StudentID:      "st1",
		ClassID:        "c1",
		AcademicYearID: "y1",
	})
	require.NoError(t, err)
	assert.Equal(t, "c1", enrollment.ClassID)
	assert.Len(t, repo.created, 1)
}

func TestEnrollmentServiceRejectsInactiveClass(t *testing.T) {
	repo := &mockEnrollmentRepo{}
	classes := &mockClassLookup{classes: map[string]models.Class{
		"c1": {ID: "c1", GradeID: "g10", AcademicYearID: "y1", IsActive: false},
	}}
	svc := NewEnrollmentService(repo, classes, studentProfiles("st1"), validator.New(), zap.NewNop())

	_, err := svc.Create(context.Background(), CreateEnrollmentRequest{
		StudentID:      "st1",
		ClassID:        "c1",
		AcademicYearID: "y1",
	})
	require.Error(t, err)

	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErr.Code)
	assert.Empty(t, repo.created)
}

func TestEnrollmentServiceRejectsYearMismatch(t *testing.T) {
	repo := &mockEnrollmentRepo{}
	classes := &mockClassLookup{classes: map[string]models.Class{
		"c1": {ID: "c1", GradeID: "g10", AcademicYearID: "y1", IsActive: true},
	}}
	svc := NewEnrollmentService(repo, classes, studentProfiles("st1"), validator.New(), zap.NewNop())

	_, err := svc.Create(context.Background(), CreateEnrollmentRequest{
		StudentID:      "st1",
		ClassID:        "c1",
		AcademicYearID: "y2",
	})
	require.Error(t, err)

	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestEnrollmentServiceRejectsDuplicate(t *testing.T) {
	repo := &mockEnrollmentRepo{enrolled: map[string]string{"st1": "y1"}}
	classes := &mockClassLookup{classes: map[string]models.Class{
		"c1": {ID: "c1", GradeID: "g10", AcademicYearID: "y1", IsActive: true},
	}}
	svc := NewEnrollmentService(repo, classes, studentProfiles("st1"), validator.New(), zap.NewNop())

	_, err := svc.Create(context.Background(), CreateEnrollmentRequest{
		StudentID:      "st1",
		ClassID:        "c1",
		AcademicYearID: "y1",
	})
	require.Error(t, err)

	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
}

func TestEnrollmentServiceRejectsUnknownStudent(t *testing.T) {
	repo := &mockEnrollmentRepo{}
	classes := &mockClassLookup{classes: map[string]models.Class{
		"c1": {ID: "c1", GradeID: "g10", AcademicYearID: "y1", IsActive: true},
	}}
	svc := NewEnrollmentService(repo, classes, studentProfiles(), validator.New(), zap.NewNop())

	_, err := svc.Create(context.Background(), CreateEnrollmentRequest{
		StudentID:      "ghost",
		ClassID:        "c1",
		AcademicYearID: "y1",
	})
	require.Error(t, err)

	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}
