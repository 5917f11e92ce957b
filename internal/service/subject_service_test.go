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

type mockSubjectRepo struct {
	items   map[string]*models.Subject
	links   map[string][]string
	created []string
}

func (m *mockSubjectRepo) List(ctx context.Context, filter models.SubjectFilter) ([]models.SubjectDetail, int, error) {
	return nil, 0, nil
}

func (m *mockSubjectRepo) FindByID(ctx context.Context, id string) (*models.Subject, error) {
	if subject, ok := m.items[id]; ok {
		cp := *subject
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockSubjectRepo) ListClassIDs(ctx context.Context, subjectID string) ([]string, error) {
	return m.links[subjectID], nil
}

func (m *mockSubjectRepo) CreateWithClasses(ctx context.Context, subject *models.Subject, classIDs []string) error {
	if m.items == nil {
		m.items = make(map[string]*models.Subject)
	}
	if m.links == nil {
		m.links = make(map[string][]string)
	}
	if subject.ID == "" {
		subject.ID = "generated"
	}
	cp := *subject
	m.items[subject.ID] = &cp
	m.links[subject.ID] = classIDs
	m.created = append(m.created, subject.ID)
	return nil
}

func (m *mockSubjectRepo) UpdateWithClasses(ctx context.Context, subject *models.Subject, classIDs []string) error {
	cp := *subject
	m.items[subject.ID] = &cp
	m.links[subject.ID] = classIDs
	return nil
}

func (m *mockSubjectRepo) Deactivate(ctx context.Context, id string) error {
	if subject, ok := m.items[id]; ok {
		subject.IsActive = false
	}
	return nil
}

func (m *mockSubjectRepo) Delete(ctx context.Context, id string) error {
	delete(m.items, id)
	return nil
}

type mockClassLookup struct {
	classes map[string]models.Class
}

func (m *mockClassLookup) FindByID(ctx context.Context, id string) (*models.Class, error) {
	if class, ok := m.classes[id]; ok {
		cp := class
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockClassLookup) FindByIDs(ctx context.Context, ids []string) ([]models.Class, error) {
	var result []models.Class
	for _, id := range ids {
		if class, ok := m.classes[id]; ok {
			result = append(result, class)
		}
	}
	return result, nil
}

func TestSubjectServiceCreateLinksClasses(t *testing.T) {
	repo := &mockSubjectRepo{}
	classes := &mockClassLookup{classes: map[string]models.Class{
		"c1": {ID: "c1", Name: "10-A", GradeID: "g10", AcademicYearID: "y1", IsActive: true},
		"c2": {ID: "c2", Name: "10-B", GradeID: "g10", AcademicYearID: "y1", IsActive: true},
	}}
	svc := NewSubjectService(repo, classes, validator.New(), zap.NewNop())

	subject, err := svc.Create(context.Background(), CreateSubjectRequest{
		Name:           "Mathematics",
		GradeID:        "g10",
		AcademicYearID: "y1",
		ClassIDs:       []string{"c1", "c2"},
		IsActive:       true,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"c1", "c2"}, subject.ClassIDs)
	assert.Len(t, repo.created, 1)
}

func TestSubjectServiceCreateRejectsForeignGradeClass(t *testing.T) {
	repo := &mockSubjectRepo{}
	classes := &mockClassLookup{classes: map[string]models.Class{
		"c1": {ID: "c1", Name: "10-A", GradeID: "g10", AcademicYearID: "y1", IsActive: true},
		"c9": {ID: "c9", Name: "11-A", GradeID: "g11", AcademicYearID: "y1", IsActive: true},
	}}
	svc := NewSubjectService(repo, classes, validator.New(), zap.NewNop())

	_, err := svc.Create(context.Background(), CreateSubjectRequest{
		Name:           "Mathematics",
		GradeID:        "g10",
		AcademicYearID: "y1",
		ClassIDs:       []string{"c1", "c9"},
	})
	require.Error(t, err)

	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.Empty(t, repo.created)
}

func TestSubjectServiceCreateRejectsUnknownClass(t *testing.T) {
	repo := &mockSubjectRepo{}
	classes := &mockClassLookup{classes: map[string]models.Class{}}
	svc := NewSubjectService(repo, classes, validator.New(), zap.NewNop())

	_, err := svc.Create(context.Background(), CreateSubjectRequest{
		Name:           "Mathematics",
		GradeID:        "g10",
		AcademicYearID: "y1",
		ClassIDs:       []string{"missing"},
	})
	require.Error(t, err)

	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
}

func TestSubjectServiceUpdateReplacesLinks(t *testing.T) {
	repo := &mockSubjectRepo{
		items: map[string]*models.Subject{
			"s1": {ID: "s1", Name: "Math", GradeID: "g10", AcademicYearID: "y1", IsActive: true},
		},
		links: map[string][]string{"s1": {"c1"}},
	}
	classes := &mockClassLookup{classes: map[string]models.Class{
		"c2": {ID: "c2", Name: "10-B", GradeID: "g10", AcademicYearID: "y1", IsActive: true},
	}}
	svc := NewSubjectService(repo, classes, validator.New(), zap.NewNop())

	updated, err := svc.Update(context.Background(), "s1", UpdateSubjectRequest{
		Name:           "Mathematics",
		GradeID:        "g10",
		AcademicYearID: "y1",
		ClassIDs:       []string{"c2"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Mathematics", updated.Name)
	assert.Equal(t, []string{"c2"}, repo.links["s1"])
}
