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

type mockAcademicYearRepo struct {
	items map[string]*models.AcademicYear
}

func (m *mockAcademicYearRepo) List(ctx context.Context, filter models.AcademicYearFilter) ([]models.AcademicYear, int, error) {
	return nil, 0, nil
}

func (m *mockAcademicYearRepo) FindByID(ctx context.Context, id string) (*models.AcademicYear, error) {
	if year, ok := m.items[id]; ok {
		cp := *year
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockAcademicYearRepo) FindActive(ctx context.Context) (*models.AcademicYear, error) {
	for _, year := range m.items {
		if year.IsActive {
			cp := *year
			return &cp, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockAcademicYearRepo) ExistsByYear(ctx context.Context, label string, excludeID string) (bool, error) {
	for _, year := range m.items {
		if year.Year == label && year.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockAcademicYearRepo) Create(ctx context.Context, year *models.AcademicYear) error {
	if m.items == nil {
		m.items = make(map[string]*models.AcademicYear)
	}
	if year.ID == "" {
		year.ID = "generated"
	}
	cp := *year
	m.items[year.ID] = &cp
	return nil
}

func (m *mockAcademicYearRepo) Update(ctx context.Context, year *models.AcademicYear) error {
	if stored, ok := m.items[year.ID]; ok {
		stored.Year = year.Year
	}
	return nil
}

func (m *mockAcademicYearRepo) Activate(ctx context.Context, id string) error {
	for _, year := range m.items {
		year.IsActive = year.ID == id
	}
	return nil
}

func (m *mockAcademicYearRepo) Deactivate(ctx context.Context, id string) error {
	if year, ok := m.items[id]; ok {
		year.IsActive = false
	}
	return nil
}

func (m *mockAcademicYearRepo) Delete(ctx context.Context, id string) error {
	delete(m.items, id)
	return nil
}

func (m *mockAcademicYearRepo) CountClasses(ctx context.Context, id string) (int, error) {
	return 0, nil
}

func (m *mockAcademicYearRepo) activeCount() int {
	count := 0
	for _, year := range m.items {
		if year.IsActive {
			count++
		}
	}
	return count
}

func newAcademicYearService(repo *mockAcademicYearRepo) *AcademicYearService {
	return NewAcademicYearService(repo, validator.New(), zap.NewNop())
}

func TestAcademicYearServiceDeactivateLeavesNoActiveYear(t *testing.T) {
	repo := &mockAcademicYearRepo{items: map[string]*models.AcademicYear{
		"y1": {ID: "y1", Year: "2026/2027", IsActive: true},
		"y2": {ID: "y2", Year: "2025/2026"},
	}}
	svc := newAcademicYearService(repo)

	year, err := svc.Deactivate(context.Background(), "y1")
	require.NoError(t, err)
	assert.False(t, year.IsActive)
	assert.Zero(t, repo.activeCount())

	_, err = svc.GetActive(context.Background())
	require.Error(t, err)

	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestAcademicYearServiceDeactivateUnknownYear(t *testing.T) {
	svc := newAcademicYearService(&mockAcademicYearRepo{})

	_, err := svc.Deactivate(context.Background(), "missing")
	require.Error(t, err)

	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}

func TestAcademicYearServiceUpdateActivates(t *testing.T) {
	repo := &mockAcademicYearRepo{items: map[string]*models.AcademicYear{
		"y1": {ID: "y1", Year: "2025/2026", IsActive: true},
		"y2": {ID: "y2", Year: "2026/2027"},
	}}
	svc := newAcademicYearService(repo)

	active := true
	year, err := svc.Update(context.Background(), "y2", UpdateAcademicYearRequest{Year: "2026/2027", IsActive: &active})
	require.NoError(t, err)
	assert.True(t, year.IsActive)

	// Update with is_active=true behaves like the activate endpoint: the
	// previously active year is switched off in the same step.
	assert.False(t, repo.items["y1"].IsActive)
	assert.Equal(t, 1, repo.activeCount())
}

func TestAcademicYearServiceUpdateDeactivates(t *testing.T) {
	repo := &mockAcademicYearRepo{items: map[string]*models.AcademicYear{
		"y1": {ID: "y1", Year: "2026/2027", IsActive: true},
	}}
	svc := newAcademicYearService(repo)

	active := false
	year, err := svc.Update(context.Background(), "y1", UpdateAcademicYearRequest{Year: "2026/2027", IsActive: &active})
	require.NoError(t, err)
	assert.False(t, year.IsActive)
	assert.Zero(t, repo.activeCount())
}

func TestAcademicYearServiceUpdateRejectsDuplicateLabel(t *testing.T) {
	repo := &mockAcademicYearRepo{items: map[string]*models.AcademicYear{
		"y1": {ID: "y1", Year: "2025/2026"},
		"y2": {ID: "y2", Year: "2026/2027"},
	}}
	svc := newAcademicYearService(repo)

	_, err := svc.Update(context.Background(), "y1", UpdateAcademicYearRequest{Year: "2026/2027"})
	require.Error(t, err)

	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, appErrors.ErrConflict.Code, appErr.Code)
}
