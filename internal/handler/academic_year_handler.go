package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/schoolworks/sis-api/internal/models"
	"github.com/schoolworks/sis-api/internal/service"
	appErrors "github.com/schoolworks/sis-api/pkg/errors"
	"github.com/schoolworks/sis-api/pkg/response"
)

// AcademicYearHandler exposes academic year endpoints.
type AcademicYearHandler struct {
	service *service.AcademicYearService
}

// NewAcademicYearHandler constructs an academic year handler.
func NewAcademicYearHandler(svc *service.AcademicYearService) *AcademicYearHandler {
	return &AcademicYearHandler{service: svc}
}

// List godoc
// @Summary List academic years
// @Tags AcademicYears
// @Produce json
// @Param active query bool false "Filter by active state"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /academic-years [get]
func (h *AcademicYearHandler) List(c *gin.Context) {
	var filter models.AcademicYearFilter
	filter.Year = c.Query("year")
	if active := c.Query("active"); active != "" {
		if parsed, err := strconv.ParseBool(active); err == nil {
			filter.IsActive = &parsed
		}
	}
	filter.Page, filter.PageSize = pageQuery(c)
	filter.SortBy, filter.SortOrder = sortQuery(c)

	years, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, years, pagination)
}

// GetActive godoc
// @Summary Get the active academic year
// @Tags AcademicYears
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /academic-years/active [get]
func (h *AcademicYearHandler) GetActive(c *gin.Context) {
	year, err := h.service.GetActive(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, year, nil)
}

// Get godoc
// @Summary Get academic year detail
// @Tags AcademicYears
// @Produce json
// @Param id path string true "Academic year ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /academic-years/{id} [get]
func (h *AcademicYearHandler) Get(c *gin.Context) {
	year, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, year, nil)
}

// Create godoc
// @Summary Create an academic year
// @Tags AcademicYears
// @Accept json
// @Produce json
// @Param payload body service.CreateAcademicYearRequest true "Academic year payload"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /academic-years [post]
func (h *AcademicYearHandler) Create(c *gin.Context) {
	var req service.CreateAcademicYearRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	year, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, year)
}

// Update godoc
// @Summary Update an academic year
// @Tags AcademicYears
// @Accept json
// @Produce json
// @Param id path string true "Academic year ID"
// @Param payload body service.UpdateAcademicYearRequest true "Academic year payload"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /academic-years/{id} [put]
func (h *AcademicYearHandler) Update(c *gin.Context) {
	var req service.UpdateAcademicYearRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	year, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, year, nil)
}

// Activate godoc
// @Summary Activate an academic year, deactivating all others
// @Tags AcademicYears
// @Produce json
// @Param id path string true "Academic year ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /academic-years/{id}/activate [post]
func (h *AcademicYearHandler) Activate(c *gin.Context) {
	year, err := h.service.Activate(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, year, nil)
}

// Deactivate godoc
// @Summary Deactivate an academic year, possibly leaving none active
// @Tags AcademicYears
// @Produce json
// @Param id path string true "Academic year ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /academic-years/{id}/deactivate [post]
func (h *AcademicYearHandler) Deactivate(c *gin.Context) {
	year, err := h.service.Deactivate(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, year, nil)
}

// Delete godoc
// @Summary Delete an academic year
// @Tags AcademicYears
// @Produce json
// @Param id path string true "Academic year ID"
// @Success 204
// @Security BearerAuth
// @Router /academic-years/{id} [delete]
func (h *AcademicYearHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
