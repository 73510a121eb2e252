package service

import (
	"context"
	"database/sql"
	"strings"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rosterd/roster-sync-api/internal/models"
	"github.com/rosterd/roster-sync-api/pkg/config"
)

type studentStoreFake struct {
	existing map[string]*models.Student

	created  []models.Student
	updated  []models.Student
	wipedAll bool
}

func (f *studentStoreFake) FindByIDTx(_ context.Context, _ *sqlx.Tx, id string) (*models.Student, error) {
	if st, ok := f.existing[id]; ok {
		copied := *st
		return &copied, nil
	}
	return nil, sql.ErrNoRows
}

func (f *studentStoreFake) CreateTx(_ context.Context, _ *sqlx.Tx, student *models.Student) error {
	f.created = append(f.created, *student)
	return nil
}

func (f *studentStoreFake) UpdateProfileTx(_ context.Context, _ *sqlx.Tx, student *models.Student) error {
	f.updated = append(f.updated, *student)
	return nil
}

func (f *studentStoreFake) DeleteAllTx(context.Context, *sqlx.Tx) error {
	f.existing = nil
	f.created = nil
	f.updated = nil
	f.wipedAll = true
	return nil
}

type preferenceStoreFake struct {
	replaced map[string][]string
	wipedAll bool
}

func (f *preferenceStoreFake) ReplaceForStudentTx(_ context.Context, _ *sqlx.Tx, studentID string, codes []string) error {
	if f.replaced == nil {
		f.replaced = make(map[string][]string)
	}
	f.replaced[studentID] = codes
	return nil
}

func (f *preferenceStoreFake) DeleteAllTx(context.Context, *sqlx.Tx) error {
	f.replaced = nil
	f.wipedAll = true
	return nil
}

type enrollmentWipeFake struct {
	wipedAll bool
}

func (f *enrollmentWipeFake) DeleteAllTx(context.Context, *sqlx.Tx) error {
	f.wipedAll = true
	return nil
}

const studentCSVHeader = "ID,First Name,Last Name,Email,Term Code,Preference 1,Preference 2,Preference 3,Preference 4,Preference 5,Preference 6,Preference 7,Preference 8"

func TestStudentImportReplaceWipesAndCreates(t *testing.T) {
	db, mock := newTxMock(t)
	students := &studentStoreFake{}
	prefs := &preferenceStoreFake{}
	enrollments := &enrollmentWipeFake{}
	svc := NewStudentImportService(students, prefs, enrollments, db, nil, nil, nil, config.ImportsConfig{}, nil)

	csv := strings.Join([]string{
		studentCSVHeader,
		"A01234567,Jane,Smith,jane@example.edu,202530,COMP1234,COMP2345,,,,,,",
		",Noid,Row,,202530,,,,,,,,",
		"A07654321,Sam,Lee,sam@example.edu,202530,,,,,,,,",
	}, "\n")

	mock.ExpectBegin()
	mock.ExpectCommit()

	result, err := svc.Import(context.Background(), StudentImportReplace, "roster.csv", strings.NewReader(csv))
	require.NoError(t, err)

	assert.True(t, students.wipedAll)
	assert.True(t, prefs.wipedAll)
	assert.True(t, enrollments.wipedAll)

	assert.Equal(t, 2, result.Created)
	require.Len(t, result.InvalidRows, 1)
	assert.Equal(t, "", result.InvalidRows[0].ID)

	assert.Equal(t, []string{"COMP1234", "COMP2345"}, prefs.replaced["A01234567"])
	assert.Empty(t, prefs.replaced["A07654321"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentImportReplaceRejectsDuplicateIDs(t *testing.T) {
	db, mock := newTxMock(t)
	students := &studentStoreFake{}
	svc := NewStudentImportService(students, &preferenceStoreFake{}, &enrollmentWipeFake{}, db, nil, nil, nil, config.ImportsConfig{}, nil)

	csv := strings.Join([]string{
		studentCSVHeader,
		"A01234567,Jane,Smith,jane@example.edu,202530,,,,,,,,",
		"A01234567,Jane,Again,jane@example.edu,202530,,,,,,,,",
	}, "\n")

	mock.ExpectBegin()
	mock.ExpectCommit()

	result, err := svc.Import(context.Background(), StudentImportReplace, "roster.csv", strings.NewReader(csv))
	require.NoError(t, err)

	assert.Equal(t, 1, result.Created)
	require.Len(t, result.InvalidRows, 1)
	assert.Equal(t, "A01234567", result.InvalidRows[0].ID)
}

func TestStudentImportReplaceRejectsMalformedRecords(t *testing.T) {
	db, mock := newTxMock(t)
	students := &studentStoreFake{}
	svc := NewStudentImportService(students, &preferenceStoreFake{}, &enrollmentWipeFake{}, db, nil, nil, nil, config.ImportsConfig{}, nil)

	csv := strings.Join([]string{
		studentCSVHeader,
		"A0123,Jane,Smith,jane@example.edu,202530,,,,,,,,",
		"A07654321,Sam,Lee,not-an-email,202530,,,,,,,,",
		"A00000001,Pat,Doe,pat@example.edu,202530,,,,,,,,",
	}, "\n")

	mock.ExpectBegin()
	mock.ExpectCommit()

	result, err := svc.Import(context.Background(), StudentImportReplace, "roster.csv", strings.NewReader(csv))
	require.NoError(t, err)

	assert.Equal(t, 1, result.Created)
	require.Len(t, result.InvalidRows, 2)
	assert.Equal(t, "A0123", result.InvalidRows[0].ID)
	assert.Equal(t, "A07654321", result.InvalidRows[1].ID)
	require.Len(t, students.created, 1)
	assert.Equal(t, "A00000001", students.created[0].ID)
}

func TestStudentImportUpdateDiffsProfiles(t *testing.T) {
	db, mock := newTxMock(t)
	students := &studentStoreFake{existing: map[string]*models.Student{
		"A01234567": {
			ID: "A01234567", FirstName: "Jane", LastName: "Smith",
			Email: "old@example.edu", TermCode: "202530",
			IsCompleted: true, IsApprovedByProgramHeads: true,
		},
		"A00000001": {
			ID: "A00000001", FirstName: "Pat", LastName: "Doe",
			Email: "pat@example.edu", TermCode: "202530",
		},
	}}
	prefs := &preferenceStoreFake{}
	enrollments := &enrollmentWipeFake{}
	svc := NewStudentImportService(students, prefs, enrollments, db, nil, nil, nil, config.ImportsConfig{}, nil)

	csv := strings.Join([]string{
		studentCSVHeader,
		"A01234567,Jane,Smith,new@example.edu,202530,,,,,,,,",
		"A00000001,Pat,Doe,pat@example.edu,202530,,,,,,,,",
		"A07654321,Sam,Lee,sam@example.edu,202530,COMP1234,,,,,,,",
	}, "\n")

	mock.ExpectBegin()
	mock.ExpectCommit()

	result, err := svc.Import(context.Background(), StudentImportUpdate, "roster.csv", strings.NewReader(csv))
	require.NoError(t, err)

	// Nothing is wiped in update mode.
	assert.False(t, students.wipedAll)
	assert.False(t, prefs.wipedAll)
	assert.False(t, enrollments.wipedAll)

	assert.Equal(t, 1, result.Created)
	assert.Equal(t, []string{"A07654321"}, result.AddedStudents)
	require.Len(t, result.UpdatedStudents, 1)
	assert.Equal(t, "A01234567", result.UpdatedStudents[0].ID)
	assert.Equal(t, []string{"email"}, result.UpdatedStudents[0].Fields)

	// Only new students get preferences stored.
	assert.Equal(t, []string{"COMP1234"}, prefs.replaced["A07654321"])
	_, touched := prefs.replaced["A01234567"]
	assert.False(t, touched)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentImportRejectsUnknownMode(t *testing.T) {
	db, _ := newTxMock(t)
	svc := NewStudentImportService(&studentStoreFake{}, &preferenceStoreFake{}, &enrollmentWipeFake{}, db, nil, nil, nil, config.ImportsConfig{}, nil)

	_, err := svc.Import(context.Background(), StudentImportMode("merge"), "roster.csv", strings.NewReader("ID\n"))
	require.Error(t, err)
}

func TestStudentImportReplaceTwiceYieldsSameRoster(t *testing.T) {
	db, mock := newTxMock(t)
	students := &studentStoreFake{}
	prefs := &preferenceStoreFake{}
	svc := NewStudentImportService(students, prefs, &enrollmentWipeFake{}, db, nil, nil, nil, config.ImportsConfig{}, nil)

	csv := strings.Join([]string{
		studentCSVHeader,
		"A01234567,Jane,Smith,jane@example.edu,202530,COMP1234,COMP2345,,,,,,",
		"A07654321,Sam,Lee,sam@example.edu,202530,COMP3456,,,,,,,",
		",Noid,Row,,202530,,,,,,,,",
	}, "\n")

	mock.ExpectBegin()
	mock.ExpectCommit()
	first, err := svc.Import(context.Background(), StudentImportReplace, "roster.csv", strings.NewReader(csv))
	require.NoError(t, err)

	firstCreated := append([]models.Student(nil), students.created...)
	firstPrefs := make(map[string][]string, len(prefs.replaced))
	for id, codes := range prefs.replaced {
		firstPrefs[id] = append([]string(nil), codes...)
	}

	mock.ExpectBegin()
	mock.ExpectCommit()
	second, err := svc.Import(context.Background(), StudentImportReplace, "roster.csv", strings.NewReader(csv))
	require.NoError(t, err)

	assert.Equal(t, first.Created, second.Created)
	assert.Equal(t, first.InvalidRows, second.InvalidRows)
	assert.Equal(t, firstCreated, students.created)
	assert.Equal(t, firstPrefs, prefs.replaced)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStudentImportCapsPreferences(t *testing.T) {
	db, mock := newTxMock(t)
	prefs := &preferenceStoreFake{}
	svc := NewStudentImportService(&studentStoreFake{}, prefs, &enrollmentWipeFake{}, db, nil, nil, nil, config.ImportsConfig{MaxPreferences: 2}, nil)

	csv := strings.Join([]string{
		studentCSVHeader,
		"A01234567,Jane,Smith,jane@example.edu,202530,COMP1234,COMP2345,COMP3456,COMP4567,,,,",
	}, "\n")

	mock.ExpectBegin()
	mock.ExpectCommit()

	_, err := svc.Import(context.Background(), StudentImportReplace, "roster.csv", strings.NewReader(csv))
	require.NoError(t, err)
	assert.Equal(t, []string{"COMP1234", "COMP2345"}, prefs.replaced["A01234567"])
	assert.NoError(t, mock.ExpectationsWereMet())
}
