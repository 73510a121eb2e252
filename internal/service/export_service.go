package service

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"go.uber.org/zap"

	"github.com/rosterd/roster-sync-api/internal/models"
	appErrors "github.com/rosterd/roster-sync-api/pkg/errors"
	"github.com/rosterd/roster-sync-api/pkg/export"
)

// ExportFormat selects the rendered output type.
type ExportFormat string

const (
	ExportCSV ExportFormat = "csv"
	ExportPDF ExportFormat = "pdf"
)

type exportStudentStore interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error)
}

type exportCourseStore interface {
	ListAll(ctx context.Context) ([]models.Course, error)
}

// ExportService renders the roster and the catalog as downloadable
// documents.
type ExportService struct {
	students exportStudentStore
	courses  exportCourseStore
	logger   *zap.Logger
}

// NewExportService constructs ExportService.
func NewExportService(students exportStudentStore, courses exportCourseStore, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{students: students, courses: courses, logger: logger}
}

// Roster writes every student with their progression flags.
func (s *ExportService) Roster(ctx context.Context, format ExportFormat, w io.Writer) (string, error) {
	students, _, err := s.students.List(ctx, models.StudentFilter{PageSize: exportPageSize})
	if err != nil {
		return "", appErrors.Database(err, "list students for export")
	}

	dataset := export.Dataset{
		Headers: []string{"ID", "First Name", "Last Name", "Email", "Term", "Completed", "Approved"},
	}
	for _, st := range students {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"ID":         st.ID,
			"First Name": st.FirstName,
			"Last Name":  st.LastName,
			"Email":      st.Email,
			"Term":       st.TermCode,
			"Completed":  yesNo(st.IsCompleted),
			"Approved":   yesNo(st.IsApprovedByProgramHeads),
		})
	}
	return s.render(format, "roster", "Student Roster", dataset, w)
}

// Catalog writes the full course catalog.
func (s *ExportService) Catalog(ctx context.Context, format ExportFormat, w io.Writer) (string, error) {
	courses, err := s.courses.ListAll(ctx)
	if err != nil {
		return "", appErrors.Database(err, "list courses for export")
	}

	dataset := export.Dataset{
		Headers: []string{"CRN", "Course", "Type", "Day", "Begin", "End", "Instructor", "Room", "Enrolled", "Capacity", "Grouping"},
	}
	for _, c := range courses {
		dataset.Rows = append(dataset.Rows, map[string]string{
			"CRN":        strconv.Itoa(c.CRN),
			"Course":     c.CourseCode,
			"Type":       c.CourseType,
			"Day":        c.Day,
			"Begin":      c.BeginTime,
			"End":        c.EndTime,
			"Instructor": c.Instructor,
			"Room":       c.BuildingRoom,
			"Enrolled":   strconv.Itoa(c.NumEnrolled),
			"Capacity":   strconv.Itoa(c.MaxCapacity),
			"Grouping":   c.Grouping,
		})
	}
	return s.render(format, "catalog", "Course Catalog", dataset, w)
}

// exportPageSize matches the repository's page cap so an export is a
// single query.
const exportPageSize = 500

func (s *ExportService) render(format ExportFormat, name, title string, dataset export.Dataset, w io.Writer) (string, error) {
	var (
		filename string
		err      error
	)
	switch format {
	case ExportCSV:
		err = export.NewCSVExporter().Render(w, dataset)
		filename = name + ".csv"
	case ExportPDF:
		err = export.NewPDFExporter().Render(w, dataset, title)
		filename = name + ".pdf"
	default:
		return "", appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown export format %q", format))
	}
	if err != nil {
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "render export")
	}
	return filename, nil
}

func yesNo(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}
