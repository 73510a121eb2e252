package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/rosterd/roster-sync-api/internal/models"
	"github.com/rosterd/roster-sync-api/internal/service"
	"github.com/rosterd/roster-sync-api/pkg/response"
)

// StudentHandler exposes student read, delete and flag endpoints.
type StudentHandler struct {
	students     *service.StudentService
	progressions *service.ProgressionService
	dashboard    *service.DashboardService
}

// NewStudentHandler constructs StudentHandler.
func NewStudentHandler(students *service.StudentService, progressions *service.ProgressionService, dashboard *service.DashboardService) *StudentHandler {
	return &StudentHandler{students: students, progressions: progressions, dashboard: dashboard}
}

// List godoc
// @Summary List students
// @Tags Students
// @Produce json
// @Param search query string false "Search by name, email or ID"
// @Param term query string false "Filter by term code"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /students [get]
func (h *StudentHandler) List(c *gin.Context) {
	var filter models.StudentFilter
	filter.Search = strings.TrimSpace(c.Query("search"))
	filter.TermCode = c.Query("term")
	if page, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil {
		filter.Page = page
	}
	if size, err := strconv.Atoi(c.DefaultQuery("limit", "100")); err == nil {
		filter.PageSize = size
	}
	filter.SortBy = c.Query("sort")
	filter.SortOrder = c.Query("order")

	students, pagination, err := h.students.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, students, pagination)
}

// Get godoc
// @Summary Get one student with preferences and schedule
// @Tags Students
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /students/{id} [get]
func (h *StudentHandler) Get(c *gin.Context) {
	detail, err := h.students.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, detail, nil)
}

// Delete godoc
// @Summary Delete a student and release their seats
// @Tags Students
// @Param id path string true "Student ID"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /students/{id} [delete]
func (h *StudentHandler) Delete(c *gin.Context) {
	if err := h.students.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	h.dashboard.InvalidateJumbotron(c.Request.Context())
	response.NoContent(c)
}

// FlipCompleted godoc
// @Summary Toggle the schedule-completed flag
// @Tags Students
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /students/{id}/completed [patch]
func (h *StudentHandler) FlipCompleted(c *gin.Context) {
	value, err := h.progressions.FlipCompleted(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	h.dashboard.InvalidateJumbotron(c.Request.Context())
	response.JSON(c, http.StatusOK, gin.H{"is_completed": value}, nil)
}

// FlipApproved godoc
// @Summary Toggle the program-head approval flag
// @Tags Students
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /students/{id}/approved [patch]
func (h *StudentHandler) FlipApproved(c *gin.Context) {
	value, err := h.progressions.FlipApproved(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	h.dashboard.InvalidateJumbotron(c.Request.Context())
	response.JSON(c, http.StatusOK, gin.H{"is_approved_by_program_heads": value}, nil)
}
