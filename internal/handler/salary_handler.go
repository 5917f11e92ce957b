package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/schoolworks/sis-api/internal/service"
	appErrors "github.com/schoolworks/sis-api/pkg/errors"
	"github.com/schoolworks/sis-api/pkg/response"
)

// SalaryHandler exposes salary payment endpoints.
type SalaryHandler struct {
	service *service.SalaryService
}

// NewSalaryHandler constructs a salary handler.
func NewSalaryHandler(svc *service.SalaryService) *SalaryHandler {
	return &SalaryHandler{service: svc}
}

// Record godoc
// @Summary Record a salary payment
// @Tags Salaries
// @Accept json
// @Produce json
// @Param payload body service.RecordSalaryPaymentRequest true "Payment payload"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /salaries [post]
func (h *SalaryHandler) Record(c *gin.Context) {
	var req service.RecordSalaryPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	payment, err := h.service.Record(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, payment)
}

// History godoc
// @Summary List a person's salary payment history
// @Tags Salaries
// @Produce json
// @Param id path string true "Profile ID"
// @Param limit query int false "Maximum records"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /salaries/{id} [get]
func (h *SalaryHandler) History(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil {
			limit = parsed
		}
	}
	payments, err := h.service.History(c.Request.Context(), c.Param("id"), limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, payments, nil)
}

// Delete godoc
// @Summary Remove a salary payment record
// @Tags Salaries
// @Produce json
// @Param id path string true "Payment ID"
// @Success 204
// @Security BearerAuth
// @Router /salaries/{id} [delete]
func (h *SalaryHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
