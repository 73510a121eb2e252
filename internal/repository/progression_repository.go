package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/rosterd/roster-sync-api/internal/models"
)

// ProgressionRepository manages the daily schedule progression snapshots.
type ProgressionRepository struct {
	db *sqlx.DB
}

// NewProgressionRepository constructs a ProgressionRepository.
func NewProgressionRepository(db *sqlx.DB) *ProgressionRepository {
	return &ProgressionRepository{db: db}
}

// FindByDateTx returns the snapshot row for a date, locked for update.
func (r *ProgressionRepository) FindByDateTx(ctx context.Context, tx *sqlx.Tx, date time.Time) (*models.ScheduleProgression, error) {
	const query = `SELECT id, date, num_schedules_completed, num_approvals_from_program_heads FROM schedule_progression WHERE date = $1 FOR UPDATE`
	var row models.ScheduleProgression
	if err := tx.GetContext(ctx, &row, query, date); err != nil {
		return nil, err
	}
	return &row, nil
}

// CreateTx inserts a new daily snapshot.
func (r *ProgressionRepository) CreateTx(ctx context.Context, tx *sqlx.Tx, row *models.ScheduleProgression) error {
	const query = `INSERT INTO schedule_progression (date, num_schedules_completed, num_approvals_from_program_heads)
        VALUES (:date, :num_schedules_completed, :num_approvals_from_program_heads)`
	if _, err := tx.NamedExecContext(ctx, query, row); err != nil {
		return fmt.Errorf("create progression row: %w", err)
	}
	return nil
}

// ApplyDeltaTx increments or decrements the snapshot counters in place.
func (r *ProgressionRepository) ApplyDeltaTx(ctx context.Context, tx *sqlx.Tx, id, completedDelta, approvedDelta int) error {
	const query = `UPDATE schedule_progression
        SET num_schedules_completed = num_schedules_completed + $2,
            num_approvals_from_program_heads = num_approvals_from_program_heads + $3
        WHERE id = $1`
	if _, err := tx.ExecContext(ctx, query, id, completedDelta, approvedDelta); err != nil {
		return fmt.Errorf("apply progression delta: %w", err)
	}
	return nil
}

// SetCountsTx overwrites the snapshot counters with recounted values.
func (r *ProgressionRepository) SetCountsTx(ctx context.Context, tx *sqlx.Tx, id, completed, approved int) error {
	const query = `UPDATE schedule_progression
        SET num_schedules_completed = $2, num_approvals_from_program_heads = $3
        WHERE id = $1`
	if _, err := tx.ExecContext(ctx, query, id, completed, approved); err != nil {
		return fmt.Errorf("set progression counts: %w", err)
	}
	return nil
}

// History returns every snapshot in date order.
func (r *ProgressionRepository) History(ctx context.Context) ([]models.ScheduleProgression, error) {
	const query = `SELECT id, date, num_schedules_completed, num_approvals_from_program_heads FROM schedule_progression ORDER BY date ASC`
	var rows []models.ScheduleProgression
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("progression history: %w", err)
	}
	return rows, nil
}
