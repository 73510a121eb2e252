package service

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rosterd/roster-sync-api/internal/models"
	appErrors "github.com/rosterd/roster-sync-api/pkg/errors"
)

type exportStudentFake struct {
	students []models.Student
	filter   models.StudentFilter
}

func (f *exportStudentFake) List(_ context.Context, filter models.StudentFilter) ([]models.Student, int, error) {
	f.filter = filter
	return f.students, len(f.students), nil
}

type exportCourseFake struct {
	courses []models.Course
}

func (f *exportCourseFake) ListAll(context.Context) ([]models.Course, error) {
	return f.courses, nil
}

func TestExportServiceRosterCSV(t *testing.T) {
	students := &exportStudentFake{students: []models.Student{
		{ID: "A01234567", FirstName: "Jane", LastName: "Smith", Email: "jane@example.edu", TermCode: "202530", IsCompleted: true},
		{ID: "A07654321", FirstName: "Sam", LastName: "Lee", Email: "sam@example.edu", TermCode: "202530"},
	}}
	svc := NewExportService(students, &exportCourseFake{}, nil)

	var buf bytes.Buffer
	filename, err := svc.Roster(context.Background(), ExportCSV, &buf)
	require.NoError(t, err)
	assert.Equal(t, "roster.csv", filename)
	assert.Equal(t, exportPageSize, students.filter.PageSize)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "ID,First Name,Last Name,Email,Term,Completed,Approved", lines[0])
	assert.Equal(t, "A01234567,Jane,Smith,jane@example.edu,202530,Yes,No", lines[1])
	assert.Equal(t, "A07654321,Sam,Lee,sam@example.edu,202530,No,No", lines[2])
}

func TestExportServiceCatalogCSV(t *testing.T) {
	start := time.Date(2025, 9, 2, 0, 0, 0, 0, time.UTC)
	courses := &exportCourseFake{courses: []models.Course{{
		CRN: 21211, CourseCode: "COMP1234", CourseType: "Lecture",
		Day: "Mon", BeginTime: "08:30", EndTime: "10:20",
		Instructor: "Jane Smith", BuildingRoom: "SW03-3000",
		StartDate: start, EndDate: start, MaxCapacity: 24, NumEnrolled: 3,
		Grouping: "1ACOMP1234",
	}}}
	svc := NewExportService(&exportStudentFake{}, courses, nil)

	var buf bytes.Buffer
	filename, err := svc.Catalog(context.Background(), ExportCSV, &buf)
	require.NoError(t, err)
	assert.Equal(t, "catalog.csv", filename)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "21211,COMP1234,Lecture,Mon,08:30,10:20,Jane Smith,SW03-3000,3,24,1ACOMP1234", lines[1])
}

func TestExportServiceRosterPDF(t *testing.T) {
	students := &exportStudentFake{students: []models.Student{
		{ID: "A01234567", FirstName: "Jane", LastName: "Smith", Email: "jane@example.edu", TermCode: "202530"},
	}}
	svc := NewExportService(students, &exportCourseFake{}, nil)

	var buf bytes.Buffer
	filename, err := svc.Roster(context.Background(), ExportPDF, &buf)
	require.NoError(t, err)
	assert.Equal(t, "roster.pdf", filename)
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))
}

func TestExportServiceUnknownFormat(t *testing.T) {
	svc := NewExportService(&exportStudentFake{}, &exportCourseFake{}, nil)

	var buf bytes.Buffer
	_, err := svc.Roster(context.Background(), ExportFormat("xml"), &buf)
	require.Error(t, err)

	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.Zero(t, buf.Len())
}
