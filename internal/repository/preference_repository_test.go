package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreferenceRepositoryReplaceForStudentTx(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewPreferenceRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM preferences WHERE student_id = $1`)).
		WithArgs("A01234567").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO preferences (student_id, priority, course_code) VALUES ($1, $2, $3)`)).
		WithArgs("A01234567", 1, "COMP1234").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO preferences (student_id, priority, course_code) VALUES ($1, $2, $3)`)).
		WithArgs("A01234567", 2, "MATH1500").
		WillReturnResult(sqlmock.NewResult(2, 1))
	mock.ExpectCommit()

	tx, err := db.BeginTxx(context.Background(), nil)
	require.NoError(t, err)
	require.NoError(t, repo.ReplaceForStudentTx(context.Background(), tx, "A01234567", []string{"COMP1234", "MATH1500"}))
	require.NoError(t, tx.Commit())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPreferenceRepositoryListByStudent(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewPreferenceRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT student_id, priority, course_code FROM preferences WHERE student_id = $1 ORDER BY priority ASC`)).
		WithArgs("A01234567").
		WillReturnRows(sqlmock.NewRows([]string{"student_id", "priority", "course_code"}).
			AddRow("A01234567", 1, "COMP1234").
			AddRow("A01234567", 2, "MATH1500"))

	prefs, err := repo.ListByStudent(context.Background(), "A01234567")
	require.NoError(t, err)
	require.Len(t, prefs, 2)
	assert.Equal(t, 1, prefs[0].Priority)
	assert.Equal(t, "COMP1234", prefs[0].CourseCode)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPreferenceRepositoryTopPreferences(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewPreferenceRepository(db)

	mock.ExpectQuery(`SELECT course_code, COUNT\(\*\) AS count FROM preferences`).
		WithArgs(10).
		WillReturnRows(sqlmock.NewRows([]string{"course_code", "count"}).
			AddRow("COMP1234", 40))

	counts, err := repo.TopPreferences(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, counts, 1)
	assert.Equal(t, 40, counts[0].Count)
	assert.NoError(t, mock.ExpectationsWereMet())
}
