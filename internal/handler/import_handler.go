package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rosterd/roster-sync-api/internal/service"
	appErrors "github.com/rosterd/roster-sync-api/pkg/errors"
	"github.com/rosterd/roster-sync-api/pkg/response"
)

// ImportHandler exposes the bulk roster and catalog import endpoints.
type ImportHandler struct {
	courses   *service.CourseImportService
	students  *service.StudentImportService
	dashboard *service.DashboardService
}

// NewImportHandler constructs ImportHandler.
func NewImportHandler(courses *service.CourseImportService, students *service.StudentImportService, dashboard *service.DashboardService) *ImportHandler {
	return &ImportHandler{courses: courses, students: students, dashboard: dashboard}
}

// ImportCourses godoc
// @Summary Replace the course catalog from a spreadsheet
// @Tags Imports
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Offering spreadsheet (.csv or .xlsx)"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /imports/courses [post]
func (h *ImportHandler) ImportCourses(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInvalidUploadFile.Code, http.StatusBadRequest, "missing upload file"))
		return
	}
	file, err := header.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInvalidUploadFile.Code, http.StatusBadRequest, "open upload file"))
		return
	}
	defer file.Close()

	result, err := h.courses.Import(c.Request.Context(), header.Filename, file)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.dashboard.InvalidateJumbotron(c.Request.Context())
	response.JSON(c, http.StatusOK, result, nil)
}

// ImportStudents godoc
// @Summary Import the student roster from a spreadsheet
// @Tags Imports
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Roster spreadsheet (.csv or .xlsx)"
// @Param mode query string false "replace (default) or update"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /imports/students [post]
func (h *ImportHandler) ImportStudents(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInvalidUploadFile.Code, http.StatusBadRequest, "missing upload file"))
		return
	}
	file, err := header.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInvalidUploadFile.Code, http.StatusBadRequest, "open upload file"))
		return
	}
	defer file.Close()

	mode := service.StudentImportMode(c.DefaultQuery("mode", string(service.StudentImportReplace)))
	result, err := h.students.Import(c.Request.Context(), mode, header.Filename, file)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.dashboard.InvalidateJumbotron(c.Request.Context())
	response.JSON(c, http.StatusOK, result, nil)
}
