package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/rosterd/roster-sync-api/internal/service"
	"github.com/rosterd/roster-sync-api/pkg/response"
)

// DashboardHandler exposes the read-only aggregate endpoints.
type DashboardHandler struct {
	dashboard *service.DashboardService
}

// NewDashboardHandler constructs DashboardHandler.
func NewDashboardHandler(dashboard *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard}
}

// Jumbotron godoc
// @Summary Headline counters
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /dashboard/jumbotron [get]
func (h *DashboardHandler) Jumbotron(c *gin.Context) {
	data, err := h.dashboard.Jumbotron(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, data, nil)
}

// MostPopularPreferences godoc
// @Summary Course codes ranked by preference count
// @Tags Dashboard
// @Produce json
// @Param limit query int false "Row limit"
// @Success 200 {object} response.Envelope
// @Router /dashboard/most-popular-preferences [get]
func (h *DashboardHandler) MostPopularPreferences(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	data, err := h.dashboard.MostPopularPreferences(c.Request.Context(), limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, data, nil)
}

// MostPopularRegistrations godoc
// @Summary Course codes ranked by enrollment count
// @Tags Dashboard
// @Produce json
// @Param limit query int false "Row limit"
// @Success 200 {object} response.Envelope
// @Router /dashboard/most-popular-course-registrations [get]
func (h *DashboardHandler) MostPopularRegistrations(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	data, err := h.dashboard.MostPopularRegistrations(c.Request.Context(), limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, data, nil)
}

// ScheduleProgression godoc
// @Summary Daily completion/approval snapshot series
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /dashboard/schedule-progression [get]
func (h *DashboardHandler) ScheduleProgression(c *gin.Context) {
	data, err := h.dashboard.ScheduleProgression(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, data, nil)
}
