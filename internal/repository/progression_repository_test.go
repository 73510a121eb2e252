package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rosterd/roster-sync-api/internal/models"
)

func TestProgressionRepositoryFindByDateTx(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewProgressionRepository(db)

	day := time.Date(2025, 10, 6, 0, 0, 0, 0, time.UTC)
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id, date, num_schedules_completed, num_approvals_from_program_heads FROM schedule_progression WHERE date = \$1 FOR UPDATE`).
		WithArgs(day).
		WillReturnRows(sqlmock.NewRows([]string{"id", "date", "num_schedules_completed", "num_approvals_from_program_heads"}).
			AddRow(5, day, 12, 4))
	mock.ExpectCommit()

	tx, err := db.BeginTxx(context.Background(), nil)
	require.NoError(t, err)

	row, err := repo.FindByDateTx(context.Background(), tx, day)
	require.NoError(t, err)
	assert.Equal(t, 12, row.NumSchedulesCompleted)
	assert.Equal(t, 4, row.NumApprovalsFromProgramHeads)

	require.NoError(t, tx.Commit())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProgressionRepositoryFindByDateTxMissing(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewProgressionRepository(db)

	day := time.Date(2025, 10, 6, 0, 0, 0, 0, time.UTC)
	mock.ExpectBegin()
	mock.ExpectQuery(`FROM schedule_progression WHERE date = \$1 FOR UPDATE`).
		WithArgs(day).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	tx, err := db.BeginTxx(context.Background(), nil)
	require.NoError(t, err)

	_, err = repo.FindByDateTx(context.Background(), tx, day)
	assert.ErrorIs(t, err, sql.ErrNoRows)

	require.NoError(t, tx.Rollback())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProgressionRepositoryCreateTx(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewProgressionRepository(db)

	day := time.Date(2025, 10, 6, 0, 0, 0, 0, time.UTC)
	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO schedule_progression`).
		WithArgs(day, 13, 4).
		WillReturnResult(sqlmock.NewResult(6, 1))
	mock.ExpectCommit()

	tx, err := db.BeginTxx(context.Background(), nil)
	require.NoError(t, err)
	require.NoError(t, repo.CreateTx(context.Background(), tx, &models.ScheduleProgression{
		Date:                         day,
		NumSchedulesCompleted:        13,
		NumApprovalsFromProgramHeads: 4,
	}))
	require.NoError(t, tx.Commit())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProgressionRepositoryApplyDeltaTx(t *testing.T) {
	db, mock := newRepoMock(t)
	repo := NewProgressionRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`num_schedules_completed = num_schedules_completed + $2`)).
		WithArgs(5, 1, 0).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	tx, err := db.BeginTxx(context.Background(), nil)
	require.NoError(t, err)
	require.NoError(t, repo.ApplyDeltaTx(context.Background(), tx, 5, 1, 0))
	require.NoError(t, tx.Commit())
	assert.NoError(t, mock.ExpectationsWereMet())
}
