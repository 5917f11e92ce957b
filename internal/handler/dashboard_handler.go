package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/schoolworks/sis-api/internal/service"
	appErrors "github.com/schoolworks/sis-api/pkg/errors"
	"github.com/schoolworks/sis-api/pkg/response"
)

// DashboardHandler exposes per-role dashboard endpoints.
type DashboardHandler struct {
	service *service.DashboardService
}

// NewDashboardHandler constructs a dashboard handler.
func NewDashboardHandler(svc *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{service: svc}
}

func cacheMeta(hit bool) map[string]interface{} {
	return map[string]interface{}{"cache_hit": hit}
}

// Admin godoc
// @Summary School-wide admin dashboard
// @Tags Dashboards
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /dashboards/admin [get]
func (h *DashboardHandler) Admin(c *gin.Context) {
	dashboard, hit, err := h.service.Admin(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dashboard, nil, cacheMeta(hit))
}

// Staff godoc
// @Summary Staff member's own dashboard
// @Tags Dashboards
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /dashboards/staff [get]
func (h *DashboardHandler) Staff(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	dashboard, hit, err := h.service.Staff(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dashboard, nil, cacheMeta(hit))
}

// Teacher godoc
// @Summary Teacher's own dashboard
// @Tags Dashboards
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /dashboards/teacher [get]
func (h *DashboardHandler) Teacher(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	dashboard, hit, err := h.service.Teacher(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dashboard, nil, cacheMeta(hit))
}

// Student godoc
// @Summary Student's own dashboard
// @Tags Dashboards
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /dashboards/student [get]
func (h *DashboardHandler) Student(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	dashboard, hit, err := h.service.Student(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dashboard, nil, cacheMeta(hit))
}

// Parent godoc
// @Summary Parent dashboard aggregating linked children
// @Tags Dashboards
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /dashboards/parent [get]
func (h *DashboardHandler) Parent(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	dashboard, hit, err := h.service.Parent(c.Request.Context(), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dashboard, nil, cacheMeta(hit))
}
