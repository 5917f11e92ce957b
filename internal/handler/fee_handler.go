package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/schoolworks/sis-api/internal/models"
	"github.com/schoolworks/sis-api/internal/service"
	appErrors "github.com/schoolworks/sis-api/pkg/errors"
	"github.com/schoolworks/sis-api/pkg/response"
)

// FeeHandler exposes student billing endpoints.
type FeeHandler struct {
	service *service.FeeService
}

// NewFeeHandler constructs a fee handler.
func NewFeeHandler(svc *service.FeeService) *FeeHandler {
	return &FeeHandler{service: svc}
}

// List godoc
// @Summary List fee records with derived status
// @Tags Fees
// @Produce json
// @Param student_id query string false "Filter by student"
// @Param academic_year_id query string false "Filter by academic year"
// @Param due_before query string false "Due date upper bound (YYYY-MM-DD)"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /fees [get]
func (h *FeeHandler) List(c *gin.Context) {
	var filter models.FeeFilter
	filter.StudentID = c.Query("student_id")
	filter.AcademicYearID = c.Query("academic_year_id")
	if due := c.Query("due_before"); due != "" {
		if parsed, err := time.Parse("2006-01-02", due); err == nil {
			filter.DueBefore = &parsed
		}
	}
	filter.Page, filter.PageSize = pageQuery(c)
	filter.SortBy, filter.SortOrder = sortQuery(c)

	fees, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, fees, pagination)
}

// Get godoc
// @Summary Get fee record detail
// @Tags Fees
// @Produce json
// @Param id path string true "Fee ID"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /fees/{id} [get]
func (h *FeeHandler) Get(c *gin.Context) {
	fee, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, fee, nil)
}

// Create godoc
// @Summary Bill a student
// @Tags Fees
// @Accept json
// @Produce json
// @Param payload body service.CreateFeeRequest true "Fee payload"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /fees [post]
func (h *FeeHandler) Create(c *gin.Context) {
	var req service.CreateFeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	fee, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, fee)
}

// Update godoc
// @Summary Adjust a fee record
// @Tags Fees
// @Accept json
// @Produce json
// @Param id path string true "Fee ID"
// @Param payload body service.UpdateFeeRequest true "Fee payload"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /fees/{id} [put]
func (h *FeeHandler) Update(c *gin.Context) {
	var req service.UpdateFeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	fee, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, fee, nil)
}

// RecordPayment godoc
// @Summary Record a payment against a fee record
// @Tags Fees
// @Accept json
// @Produce json
// @Param id path string true "Fee ID"
// @Param payload body service.RecordPaymentRequest true "Payment payload"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /fees/{id}/payments [post]
func (h *FeeHandler) RecordPayment(c *gin.Context) {
	var req service.RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	fee, err := h.service.RecordPayment(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, fee, nil)
}

// Summary godoc
// @Summary Aggregate fee totals
// @Tags Fees
// @Produce json
// @Param academic_year_id query string false "Scope to one academic year"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /fees/summary [get]
func (h *FeeHandler) Summary(c *gin.Context) {
	summary, err := h.service.Summary(c.Request.Context(), c.Query("academic_year_id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}

// Delete godoc
// @Summary Delete a fee record
// @Tags Fees
// @Produce json
// @Param id path string true "Fee ID"
// @Success 204
// @Security BearerAuth
// @Router /fees/{id} [delete]
func (h *FeeHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
