package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/rosterd/roster-sync-api/internal/models"
	appErrors "github.com/rosterd/roster-sync-api/pkg/errors"
)

type progressionStudentStore interface {
	FindByIDTx(ctx context.Context, tx *sqlx.Tx, id string) (*models.Student, error)
	SetCompletedTx(ctx context.Context, tx *sqlx.Tx, id string, value bool) error
	SetApprovedTx(ctx context.Context, tx *sqlx.Tx, id string, value bool) error
	CountFlagsTx(ctx context.Context, tx *sqlx.Tx) (completed, approved int, err error)
}

type progressionStore interface {
	FindByDateTx(ctx context.Context, tx *sqlx.Tx, date time.Time) (*models.ScheduleProgression, error)
	CreateTx(ctx context.Context, tx *sqlx.Tx, row *models.ScheduleProgression) error
	ApplyDeltaTx(ctx context.Context, tx *sqlx.Tx, id, completedDelta, approvedDelta int) error
	SetCountsTx(ctx context.Context, tx *sqlx.Tx, id, completed, approved int) error
	History(ctx context.Context) ([]models.ScheduleProgression, error)
}

// ProgressionService toggles per-student completion and approval flags
// and maintains the daily roll-up of both counters. The day's snapshot
// row is created lazily on the first toggle of the day.
type ProgressionService struct {
	students     progressionStudentStore
	progressions progressionStore
	db           txBeginner
	logger       *zap.Logger

	now func() time.Time
}

// NewProgressionService constructs ProgressionService.
func NewProgressionService(students progressionStudentStore, progressions progressionStore, db txBeginner, logger *zap.Logger) *ProgressionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProgressionService{
		students:     students,
		progressions: progressions,
		db:           db,
		logger:       logger,
		now:          time.Now,
	}
}

// FlipCompleted toggles a student's schedule-completed flag and
// applies the matching delta to today's snapshot. The new flag value
// is returned.
func (s *ProgressionService) FlipCompleted(ctx context.Context, studentID string) (bool, error) {
	return s.flip(ctx, studentID, flagCompleted)
}

// FlipApproved toggles a student's program-head approval flag and
// applies the matching delta to today's snapshot.
func (s *ProgressionService) FlipApproved(ctx context.Context, studentID string) (bool, error) {
	return s.flip(ctx, studentID, flagApproved)
}

type progressionFlag int

const (
	flagCompleted progressionFlag = iota
	flagApproved
)

func (s *ProgressionService) flip(ctx context.Context, studentID string, flag progressionFlag) (bool, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, appErrors.Database(err, "begin flag toggle")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	student, err := s.students.FindByIDTx(ctx, tx, studentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("student %s not found", studentID))
		}
		return false, appErrors.Database(err, "look up student")
	}

	var newValue bool
	var completedDelta, approvedDelta int
	switch flag {
	case flagCompleted:
		newValue = !student.IsCompleted
		completedDelta = deltaFor(newValue)
		err = s.students.SetCompletedTx(ctx, tx, studentID, newValue)
	case flagApproved:
		newValue = !student.IsApprovedByProgramHeads
		approvedDelta = deltaFor(newValue)
		err = s.students.SetApprovedTx(ctx, tx, studentID, newValue)
	}
	if err != nil {
		return false, appErrors.Database(err, "set student flag")
	}

	// The flag is written before the snapshot is touched so a lazily
	// created row recounts from state that already reflects the flip.
	if err = s.bumpToday(ctx, tx, completedDelta, approvedDelta); err != nil {
		return false, err
	}

	if err = tx.Commit(); err != nil {
		return false, appErrors.Database(err, "commit flag toggle")
	}
	return newValue, nil
}

func deltaFor(newValue bool) int {
	if newValue {
		return 1
	}
	return -1
}

func (s *ProgressionService) bumpToday(ctx context.Context, tx *sqlx.Tx, completedDelta, approvedDelta int) error {
	today := dateOnly(s.now())
	row, err := s.progressions.FindByDateTx(ctx, tx, today)
	if errors.Is(err, sql.ErrNoRows) {
		completed, approved, err := s.students.CountFlagsTx(ctx, tx)
		if err != nil {
			return appErrors.Database(err, "count student flags")
		}
		row = &models.ScheduleProgression{
			Date:                         today,
			NumSchedulesCompleted:        completed,
			NumApprovalsFromProgramHeads: approved,
		}
		if err := s.progressions.CreateTx(ctx, tx, row); err != nil {
			return appErrors.Database(err, "create progression snapshot")
		}
		return nil
	}
	if err != nil {
		return appErrors.Database(err, "find progression snapshot")
	}
	if err := s.progressions.ApplyDeltaTx(ctx, tx, row.ID, completedDelta, approvedDelta); err != nil {
		return appErrors.Database(err, "apply progression delta")
	}
	return nil
}

// Reconcile recounts both flags and overwrites today's snapshot,
// creating it when absent. It is run periodically so drift from any
// out-of-band writes cannot accumulate past a day.
func (s *ProgressionService) Reconcile(ctx context.Context) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return appErrors.Database(err, "begin reconcile")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	completed, approved, err := s.students.CountFlagsTx(ctx, tx)
	if err != nil {
		return appErrors.Database(err, "count student flags")
	}

	today := dateOnly(s.now())
	row, err := s.progressions.FindByDateTx(ctx, tx, today)
	if errors.Is(err, sql.ErrNoRows) {
		row = &models.ScheduleProgression{
			Date:                         today,
			NumSchedulesCompleted:        completed,
			NumApprovalsFromProgramHeads: approved,
		}
		if err = s.progressions.CreateTx(ctx, tx, row); err != nil {
			return appErrors.Database(err, "create progression snapshot")
		}
	} else if err != nil {
		return appErrors.Database(err, "find progression snapshot")
	} else if row.NumSchedulesCompleted != completed || row.NumApprovalsFromProgramHeads != approved {
		s.logger.Warn("progression snapshot drifted",
			zap.Int("recorded_completed", row.NumSchedulesCompleted),
			zap.Int("actual_completed", completed),
			zap.Int("recorded_approved", row.NumApprovalsFromProgramHeads),
			zap.Int("actual_approved", approved),
		)
		if err = s.progressions.SetCountsTx(ctx, tx, row.ID, completed, approved); err != nil {
			return appErrors.Database(err, "reset progression snapshot")
		}
	}

	if err = tx.Commit(); err != nil {
		return appErrors.Database(err, "commit reconcile")
	}
	return nil
}

// History returns every snapshot in date order.
func (s *ProgressionService) History(ctx context.Context) ([]models.ScheduleProgression, error) {
	rows, err := s.progressions.History(ctx)
	if err != nil {
		return nil, appErrors.Database(err, "load progression history")
	}
	return rows, nil
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
