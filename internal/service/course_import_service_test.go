package service

import (
	"context"
	"strings"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rosterd/roster-sync-api/internal/models"
	"github.com/rosterd/roster-sync-api/pkg/config"
	appErrors "github.com/rosterd/roster-sync-api/pkg/errors"
)

type catalogWriterFake struct {
	replaced [][]models.Course
	err      error
}

func (f *catalogWriterFake) ReplaceAllTx(_ context.Context, _ *sqlx.Tx, courses []models.Course) error {
	if f.err != nil {
		return f.err
	}
	f.replaced = append(f.replaced, courses)
	return nil
}

const courseCSVHeader = "Status,Block,CRN,Course,Type,Day,Begin Time,End Time,Instructor,Bldg/Room,Start Date,End Date,Max.,FT/PT,Term,Hrs,Sorted By"

func courseCSVRow(block, crn, code, day, instructor string) string {
	return strings.Join([]string{
		"Active", block, crn, code, "LEC", day, "830", "1120", instructor,
		"SE12-301", "2025-09-02 00:00:00", "2025-12-12 00:00:00", "24.0", "FT", "202530", "3", "x",
	}, ",")
}

func TestCourseImportMergesInstructorsAcrossDuplicateRows(t *testing.T) {
	db, mock := newTxMock(t)
	writer := &catalogWriterFake{}
	svc := NewCourseImportService(writer, db, nil, nil, config.ImportsConfig{}, nil)

	csv := strings.Join([]string{
		courseCSVHeader,
		courseCSVRow("1A", "30921.0", "COMP1234", "Mon", "\"Smith, Jane\""),
		courseCSVRow("1A", "30921.0", "COMP1234", "Mon", "\"Lee, Sam\""),
		courseCSVRow("1A", "30921.0", "COMP1234", "Mon", "\"Smith, Jane\""),
		courseCSVRow("1A", "30922.0", "COMP1234", "Tue", "\"Lee, Sam\""),
	}, "\n")

	mock.ExpectBegin()
	mock.ExpectCommit()

	result, err := svc.Import(context.Background(), "offerings.csv", strings.NewReader(csv))
	require.NoError(t, err)

	assert.Equal(t, 2, result.Imported)
	assert.Empty(t, result.InvalidRows)
	assert.True(t, result.EnrollmentsCleared)

	require.Len(t, writer.replaced, 1)
	courses := writer.replaced[0]
	require.Len(t, courses, 2)
	assert.Equal(t, "Jane Smith,Sam Lee", courses[0].Instructor)
	assert.Equal(t, "Sam Lee", courses[1].Instructor)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseImportReportsInvalidRowsAndStillCommits(t *testing.T) {
	db, mock := newTxMock(t)
	writer := &catalogWriterFake{}
	svc := NewCourseImportService(writer, db, nil, nil, config.ImportsConfig{}, nil)

	csv := strings.Join([]string{
		courseCSVHeader,
		courseCSVRow("1A", "30921.0", "COMP1234", "Mon", "\"Smith, Jane\""),
		courseCSVRow("1B", "not-a-crn", "COMP2345", "Tue", "\"Lee, Sam\""),
	}, "\n")

	mock.ExpectBegin()
	mock.ExpectCommit()

	result, err := svc.Import(context.Background(), "offerings.csv", strings.NewReader(csv))
	require.NoError(t, err)

	assert.Equal(t, 1, result.Imported)
	require.Len(t, result.InvalidRows, 1)
	assert.Equal(t, "not-a-crn", result.InvalidRows[0].CRN)
	assert.Equal(t, "COMP2345", result.InvalidRows[0].Course)
	assert.NotEmpty(t, result.InvalidRows[0].Error)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseImportRejectsUnknownFileType(t *testing.T) {
	db, _ := newTxMock(t)
	svc := NewCourseImportService(&catalogWriterFake{}, db, nil, nil, config.ImportsConfig{}, nil)

	_, err := svc.Import(context.Background(), "offerings.txt", strings.NewReader("x"))
	require.Error(t, err)
}

func TestCourseImportDropsAdministrativeColumns(t *testing.T) {
	db, mock := newTxMock(t)
	writer := &catalogWriterFake{}
	svc := NewCourseImportService(writer, db, nil, nil, config.ImportsConfig{}, nil)

	// Two rows identical except for a dropped column must collapse.
	csv := strings.Join([]string{
		courseCSVHeader,
		courseCSVRow("1A", "30921.0", "COMP1234", "Mon", "\"Smith, Jane\""),
		strings.Replace(courseCSVRow("1A", "30921.0", "COMP1234", "Mon", "\"Smith, Jane\""), ",3,x", ",4,y", 1),
	}, "\n")

	mock.ExpectBegin()
	mock.ExpectCommit()

	result, err := svc.Import(context.Background(), "offerings.csv", strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, 1, result.Imported)
}

func TestCourseImportKeepsRowsApartOnUnexpectedColumns(t *testing.T) {
	db, mock := newTxMock(t)
	writer := &catalogWriterFake{}
	svc := NewCourseImportService(writer, db, nil, nil, config.ImportsConfig{}, nil)

	// A column the exporter never documented still keeps rows distinct.
	csv := strings.Join([]string{
		courseCSVHeader + ",Notes",
		courseCSVRow("1A", "30921.0", "COMP1234", "Mon", "\"Smith, Jane\"") + ",section one",
		courseCSVRow("1A", "30921.0", "COMP1234", "Mon", "\"Smith, Jane\"") + ",section two",
		courseCSVRow("1A", "30921.0", "COMP1234", "Mon", "\"Lee, Sam\"") + ",section two",
	}, "\n")

	mock.ExpectBegin()
	mock.ExpectCommit()

	result, err := svc.Import(context.Background(), "offerings.csv", strings.NewReader(csv))
	require.NoError(t, err)

	assert.Equal(t, 2, result.Imported)
	require.Len(t, writer.replaced, 1)
	require.Len(t, writer.replaced[0], 2)
	assert.Equal(t, "Jane Smith", writer.replaced[0][0].Instructor)
	assert.Equal(t, "Jane Smith,Sam Lee", writer.replaced[0][1].Instructor)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCourseImportEnforcesExtensionAllowlist(t *testing.T) {
	db, _ := newTxMock(t)
	writer := &catalogWriterFake{}
	svc := NewCourseImportService(writer, db, nil, nil, config.ImportsConfig{AllowedExtensions: []string{".xlsx"}}, nil)

	_, err := svc.Import(context.Background(), "offerings.csv", strings.NewReader("x"))
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, appErrors.ErrInvalidFileType.Code, appErr.Code)
	assert.Empty(t, writer.replaced)
}
