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

// DailyAttendanceHandler exposes the teacher and staff daily attendance
// ledgers. The :kind route segment selects the ledger.
type DailyAttendanceHandler struct {
	service *service.DailyAttendanceService
}

// NewDailyAttendanceHandler constructs a daily attendance handler.
func NewDailyAttendanceHandler(svc *service.DailyAttendanceService) *DailyAttendanceHandler {
	return &DailyAttendanceHandler{service: svc}
}

func staffKindFromParam(c *gin.Context) (models.StaffKind, bool) {
	switch c.Param("kind") {
	case "teachers":
		return models.StaffKindTeacher, true
	case "staff":
		return models.StaffKindStaff, true
	default:
		return "", false
	}
}

// List godoc
// @Summary List daily attendance for teachers or staff
// @Tags DailyAttendance
// @Produce json
// @Param kind path string true "Ledger (teachers or staff)"
// @Param profile_id query string false "Filter by profile"
// @Param status query string false "Filter by status"
// @Param from query string false "Start date (YYYY-MM-DD)"
// @Param to query string false "End date (YYYY-MM-DD)"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /daily-attendance/{kind} [get]
func (h *DailyAttendanceHandler) List(c *gin.Context) {
	kind, ok := staffKindFromParam(c)
	if !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "unknown attendance ledger"))
		return
	}

	var filter models.DailyAttendanceFilter
	filter.ProfileID = c.Query("profile_id")
	if status := c.Query("status"); status != "" {
		s := models.AttendanceStatus(status)
		filter.Status = &s
	}
	if from := c.Query("from"); from != "" {
		if parsed, err := time.Parse("2006-01-02", from); err == nil {
			filter.DateFrom = &parsed
		}
	}
	if to := c.Query("to"); to != "" {
		if parsed, err := time.Parse("2006-01-02", to); err == nil {
			filter.DateTo = &parsed
		}
	}
	filter.Page, filter.PageSize = pageQuery(c)

	records, pagination, err := h.service.List(c.Request.Context(), kind, filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, records, pagination)
}

// Record godoc
// @Summary Record daily attendance for a teacher or staff member
// @Tags DailyAttendance
// @Accept json
// @Produce json
// @Param kind path string true "Ledger (teachers or staff)"
// @Param payload body service.RecordDailyAttendanceRequest true "Attendance payload"
// @Success 201 {object} response.Envelope
// @Security BearerAuth
// @Router /daily-attendance/{kind} [post]
func (h *DailyAttendanceHandler) Record(c *gin.Context) {
	kind, ok := staffKindFromParam(c)
	if !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "unknown attendance ledger"))
		return
	}

	var req service.RecordDailyAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	record, err := h.service.Record(c.Request.Context(), kind, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, record)
}

// Correct godoc
// @Summary Correct a daily attendance status
// @Tags DailyAttendance
// @Accept json
// @Produce json
// @Param kind path string true "Ledger (teachers or staff)"
// @Param id path string true "Record ID"
// @Param payload body service.RecordDailyAttendanceRequest true "Attendance payload"
// @Success 204
// @Security BearerAuth
// @Router /daily-attendance/{kind}/{id} [put]
func (h *DailyAttendanceHandler) Correct(c *gin.Context) {
	kind, ok := staffKindFromParam(c)
	if !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "unknown attendance ledger"))
		return
	}

	var req struct {
		Status models.AttendanceStatus `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if err := h.service.Correct(c.Request.Context(), kind, c.Param("id"), req.Status); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
