package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/schoolworks/sis-api/internal/models"
	"github.com/schoolworks/sis-api/internal/service"
	appErrors "github.com/schoolworks/sis-api/pkg/errors"
	"github.com/schoolworks/sis-api/pkg/response"
)

// ExamGradeHandler exposes exam scoring endpoints.
type ExamGradeHandler struct {
	service *service.ExamGradeService
}

// NewExamGradeHandler constructs an exam grade handler.
func NewExamGradeHandler(svc *service.ExamGradeService) *ExamGradeHandler {
	return &ExamGradeHandler{service: svc}
}

// List godoc
// @Summary List exam grades
// @Tags ExamGrades
// @Produce json
// @Param student_id query string false "Filter by student"
// @Param exam_id query string false "Filter by exam"
// @Param subject_id query string false "Filter by subject"
// @Param academic_year_id query string false "Filter by academic year"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /exam-grades [get]
func (h *ExamGradeHandler) List(c *gin.Context) {
	var filter models.ExamGradeFilter
	filter.StudentID = c.Query("student_id")
	filter.ExamID = c.Query("exam_id")
	filter.SubjectID = c.Query("subject_id")
	filter.AcademicYearID = c.Query("academic_year_id")
	filter.Page, filter.PageSize = pageQuery(c)

	grades, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grades, pagination)
}

// Record godoc
// @Summary Record a student's exam score
// @Tags ExamGrades
// @Accept json
// @Produce json
// @Param payload body service.RecordExamGradeRequest true "Score payload"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /exam-grades [post]
func (h *ExamGradeHandler) Record(c *gin.Context) {
	var req service.RecordExamGradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	grade, err := h.service.Record(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, grade)
}

// Correct godoc
// @Summary Correct a recorded exam score
// @Tags ExamGrades
// @Accept json
// @Produce json
// @Param id path string true "Exam grade ID"
// @Param payload body service.UpdateExamGradeRequest true "Score payload"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /exam-grades/{id} [put]
func (h *ExamGradeHandler) Correct(c *gin.Context) {
	var req service.UpdateExamGradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	grade, err := h.service.Correct(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, grade, nil)
}

// Delete godoc
// @Summary Remove an exam grade
// @Tags ExamGrades
// @Produce json
// @Param id path string true "Exam grade ID"
// @Success 204
// @Security BearerAuth
// @Router /exam-grades/{id} [delete]
func (h *ExamGradeHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
