package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/rosterd/roster-sync-api/internal/service"
	appErrors "github.com/rosterd/roster-sync-api/pkg/errors"
	"github.com/rosterd/roster-sync-api/pkg/response"
)

// EnrollmentHandler exposes the schedule mutation endpoints.
type EnrollmentHandler struct {
	enrollments *service.EnrollmentService
}

// NewEnrollmentHandler constructs EnrollmentHandler.
func NewEnrollmentHandler(enrollments *service.EnrollmentService) *EnrollmentHandler {
	return &EnrollmentHandler{enrollments: enrollments}
}

type enrollRequest struct {
	CourseID int `json:"course_id" binding:"required"`
}

type replaceScheduleRequest struct {
	CourseIDs []int `json:"course_ids" binding:"required"`
}

type groupingsRequest struct {
	Groupings []string `json:"groupings" binding:"required"`
}

// Add godoc
// @Summary Enroll a student in one section
// @Tags Enrollments
// @Accept json
// @Produce json
// @Param id path string true "Student ID"
// @Param payload body enrollRequest true "Course to add"
// @Success 201 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /students/{id}/enrollments [post]
func (h *EnrollmentHandler) Add(c *gin.Context) {
	var req enrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if err := h.enrollments.Add(c.Request.Context(), c.Param("id"), req.CourseID); err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, gin.H{"course_id": req.CourseID})
}

// Remove godoc
// @Summary Drop a student from one section
// @Tags Enrollments
// @Param id path string true "Student ID"
// @Param courseId path int true "Course ID"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /students/{id}/enrollments/{courseId} [delete]
func (h *EnrollmentHandler) Remove(c *gin.Context) {
	courseID, err := strconv.Atoi(c.Param("courseId"))
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "course id must be numeric"))
		return
	}
	if err := h.enrollments.Remove(c.Request.Context(), c.Param("id"), courseID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ReplaceAll godoc
// @Summary Replace a student's whole schedule
// @Tags Enrollments
// @Accept json
// @Produce json
// @Param id path string true "Student ID"
// @Param payload body replaceScheduleRequest true "New course IDs"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /students/{id}/enrollments [put]
func (h *EnrollmentHandler) ReplaceAll(c *gin.Context) {
	var req replaceScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if err := h.enrollments.ReplaceAll(c.Request.Context(), c.Param("id"), req.CourseIDs); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"course_ids": req.CourseIDs}, nil)
}

// AddByGroupings godoc
// @Summary Enroll a student in every section of each grouping
// @Tags Enrollments
// @Accept json
// @Produce json
// @Param id path string true "Student ID"
// @Param payload body groupingsRequest true "Grouping keys"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /students/{id}/groupings [post]
func (h *EnrollmentHandler) AddByGroupings(c *gin.Context) {
	var req groupingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	if err := h.enrollments.AddByGroupings(c.Request.Context(), c.Param("id"), req.Groupings); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"groupings": req.Groupings}, nil)
}

// RemoveAllGroupings godoc
// @Summary Clear a student's whole schedule
// @Tags Enrollments
// @Param id path string true "Student ID"
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /students/{id}/groupings [delete]
func (h *EnrollmentHandler) RemoveAllGroupings(c *gin.Context) {
	if err := h.enrollments.RemoveAllGroupings(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Schedule godoc
// @Summary List the sections assigned to a student
// @Tags Enrollments
// @Produce json
// @Param id path string true "Student ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /students/{id}/enrollments [get]
func (h *EnrollmentHandler) Schedule(c *gin.Context) {
	courses, err := h.enrollments.Schedule(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, courses, nil)
}

// EligibleCourses godoc
// @Summary List eligible sections for a course code, grouped
// @Tags Enrollments
// @Produce json
// @Param id path string true "Student ID"
// @Param code path string true "Course code"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /students/{id}/eligible-courses/{code} [get]
func (h *EnrollmentHandler) EligibleCourses(c *gin.Context) {
	groups, err := h.enrollments.EligibleCourses(c.Request.Context(), c.Param("code"), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, groups, nil)
}
