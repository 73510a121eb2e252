package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/rosterd/roster-sync-api/internal/models"
)

// PreferenceRepository manages the ranked course-code preferences.
type PreferenceRepository struct {
	db *sqlx.DB
}

// NewPreferenceRepository constructs a PreferenceRepository.
func NewPreferenceRepository(db *sqlx.DB) *PreferenceRepository {
	return &PreferenceRepository{db: db}
}

// ListByStudent returns a student's preferences ordered by priority.
func (r *PreferenceRepository) ListByStudent(ctx context.Context, studentID string) ([]models.Preference, error) {
	const query = `SELECT student_id, priority, course_code FROM preferences WHERE student_id = $1 ORDER BY priority ASC`
	var prefs []models.Preference
	if err := r.db.SelectContext(ctx, &prefs, query, studentID); err != nil {
		return nil, fmt.Errorf("list preferences: %w", err)
	}
	return prefs, nil
}

// ReplaceForStudentTx swaps a student's preference list all-or-nothing.
// Priorities are assigned densely from 1 in the order given.
func (r *PreferenceRepository) ReplaceForStudentTx(ctx context.Context, tx *sqlx.Tx, studentID string, courseCodes []string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM preferences WHERE student_id = $1`, studentID); err != nil {
		return fmt.Errorf("clear preferences for %s: %w", studentID, err)
	}
	for i, code := range courseCodes {
		if _, err := tx.ExecContext(ctx, `INSERT INTO preferences (student_id, priority, course_code) VALUES ($1, $2, $3)`, studentID, i+1, code); err != nil {
			return fmt.Errorf("insert preference %d for %s: %w", i+1, studentID, err)
		}
	}
	return nil
}

// DeleteByStudentTx removes one student's preferences.
func (r *PreferenceRepository) DeleteByStudentTx(ctx context.Context, tx *sqlx.Tx, studentID string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM preferences WHERE student_id = $1`, studentID); err != nil {
		return fmt.Errorf("delete preferences for %s: %w", studentID, err)
	}
	return nil
}

// DeleteAllTx clears the preferences table.
func (r *PreferenceRepository) DeleteAllTx(ctx context.Context, tx *sqlx.Tx) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM preferences`); err != nil {
		return fmt.Errorf("clear preferences: %w", err)
	}
	return nil
}

// TopPreferences returns course codes ranked by how many students list them.
func (r *PreferenceRepository) TopPreferences(ctx context.Context, limit int) ([]models.CourseCodeCount, error) {
	const query = `SELECT course_code, COUNT(*) AS count FROM preferences
        GROUP BY course_code ORDER BY count DESC, course_code ASC LIMIT $1`
	var counts []models.CourseCodeCount
	if err := r.db.SelectContext(ctx, &counts, query, limit); err != nil {
		return nil, fmt.Errorf("top preferences: %w", err)
	}
	return counts, nil
}
