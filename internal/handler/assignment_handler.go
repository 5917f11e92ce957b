package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/schoolworks/sis-api/internal/models"
	"github.com/schoolworks/sis-api/internal/service"
	appErrors "github.com/schoolworks/sis-api/pkg/errors"
	"github.com/schoolworks/sis-api/pkg/response"
)

// AssignmentHandler exposes teacher assignment endpoints.
type AssignmentHandler struct {
	service *service.TeacherAssignmentService
}

// NewAssignmentHandler constructs an assignment handler.
func NewAssignmentHandler(svc *service.TeacherAssignmentService) *AssignmentHandler {
	return &AssignmentHandler{service: svc}
}

// List godoc
// @Summary List teacher assignments
// @Tags Assignments
// @Produce json
// @Param teacher_id query string false "Filter by teacher"
// @Param subject_id query string false "Filter by subject"
// @Param class_id query string false "Filter by class"
// @Param academic_year_id query string false "Filter by academic year"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /assignments [get]
func (h *AssignmentHandler) List(c *gin.Context) {
	var filter models.TeacherAssignmentFilter
	filter.TeacherID = c.Query("teacher_id")
	filter.SubjectID = c.Query("subject_id")
	filter.ClassID = c.Query("class_id")
	filter.AcademicYearID = c.Query("academic_year_id")
	filter.Page, filter.PageSize = pageQuery(c)
	filter.SortBy, filter.SortOrder = sortQuery(c)

	assignments, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, assignments, pagination)
}

// Create godoc
// @Summary Assign a teacher to a subject and class
// @Tags Assignments
// @Accept json
// @Produce json
// @Param payload body service.CreateTeacherAssignmentRequest true "Assignment payload"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /assignments [post]
func (h *AssignmentHandler) Create(c *gin.Context) {
	var req service.CreateTeacherAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	assignment, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, assignment)
}

// Delete godoc
// @Summary Remove a teacher assignment
// @Tags Assignments
// @Produce json
// @Param id path string true "Assignment ID"
// @Success 204
// @Security BearerAuth
// @Router /assignments/{id} [delete]
func (h *AssignmentHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
