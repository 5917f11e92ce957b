package handler

import (
	"bytes"
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/schoolworks/sis-api/internal/middleware"
	"github.com/schoolworks/sis-api/internal/models"
	"github.com/schoolworks/sis-api/internal/service"
)

type stubGradeRepo struct {
	grades map[string]*models.Grade
	names  map[string]string
}

func (s *stubGradeRepo) List(ctx context.Context, filter models.GradeFilter) ([]models.Grade, int, error) {
	var result []models.Grade
	for _, grade := range s.grades {
		result = append(result, *grade)
	}
	return result, len(result), nil
}

func (s *stubGradeRepo) FindByID(ctx context.Context, id string) (*models.Grade, error) {
	if grade, ok := s.grades[id]; ok {
		cp := *grade
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (s *stubGradeRepo) ExistsByName(ctx context.Context, name, excludeID string) (bool, error) {
	owner, ok := s.names[name]
	return ok && owner != excludeID, nil
}

func (s *stubGradeRepo) Create(ctx context.Context, grade *models.Grade) error {
	if s.grades == nil {
		s.grades = make(map[string]*models.Grade)
	}
	if grade.ID == "" {
		grade.ID = "generated"
	}
	cp := *grade
	s.grades[grade.ID] = &cp
	return nil
}

func (s *stubGradeRepo) Update(ctx context.Context, grade *models.Grade) error {
	cp := *grade
	s.grades[grade.ID] = &cp
	return nil
}

func (s *stubGradeRepo) Delete(ctx context.Context, id string) error {
	delete(s.grades, id)
	return nil
}

func (s *stubGradeRepo) CountClasses(ctx context.Context, id string) (int, error) {
	return 0, nil
}

func testAuth(role models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "u1", Role: role})
		c.Next()
	}
}

func buildGradeRouter(repo *stubGradeRepo, role models.UserRole) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := NewGradeHandler(service.NewGradeLevelService(repo, nil, zap.NewNop()))

	r := gin.New()
	grades := r.Group("/grades", testAuth(role))
	grades.GET("", handler.List)
	grades.GET("/:id", handler.Get)
	grades.POST("", middleware.RequireRoles(models.RoleAdmin), handler.Create)
	grades.DELETE("/:id", middleware.RequireRoles(models.RoleAdmin), handler.Delete)
	return r
}

func performRequest(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func TestGradeHandlerCreate(t *testing.T) {
	repo := &stubGradeRepo{}
	router := buildGradeRouter(repo, models.RoleAdmin)

	req, _ := http.NewRequest(http.MethodPost, "/grades", bytes.NewBufferString(`{"name":"Grade 10"}`))
	req.Header.Set("Content-Type", "application/json")
	resp := performRequest(router, req)

	require.Equal(t, http.StatusCreated, resp.Code)
	require.Contains(t, resp.Body.String(), `"Grade 10"`)
	require.Len(t, repo.grades, 1)
}

func TestGradeHandlerCreateInvalidPayload(t *testing.T) {
	router := buildGradeRouter(&stubGradeRepo{}, models.RoleAdmin)

	req, _ := http.NewRequest(http.MethodPost, "/grades", bytes.NewBufferString(`{`))
	req.Header.Set("Content-Type", "application/json")
	resp := performRequest(router, req)

	require.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestGradeHandlerCreateForbiddenForTeachers(t *testing.T) {
	repo := &stubGradeRepo{}
	router := buildGradeRouter(repo, models.RoleTeacher)

	req, _ := http.NewRequest(http.MethodPost, "/grades", bytes.NewBufferString(`{"name":"Grade 10"}`))
	req.Header.Set("Content-Type", "application/json")
	resp := performRequest(router, req)

	require.Equal(t, http.StatusForbidden, resp.Code)
	require.Empty(t, repo.grades)
}

func TestGradeHandlerGetNotFound(t *testing.T) {
	router := buildGradeRouter(&stubGradeRepo{}, models.RoleAdmin)

	req, _ := http.NewRequest(http.MethodGet, "/grades/missing", nil)
	resp := performRequest(router, req)

	require.Equal(t, http.StatusNotFound, resp.Code)
}

func TestGradeHandlerList(t *testing.T) {
	repo := &stubGradeRepo{grades: map[string]*models.Grade{
		"g10": {ID: "g10", Name: "Grade 10"},
	}}
	router := buildGradeRouter(repo, models.RoleStudent)

	req, _ := http.NewRequest(http.MethodGet, "/grades", nil)
	resp := performRequest(router, req)

	require.Equal(t, http.StatusOK, resp.Code)
	require.Contains(t, resp.Body.String(), `"Grade 10"`)
}
