package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// EnrollmentRepository manages the student-course join edges. The pair
// (student_id, course_id) is the whole identity of an edge.
type EnrollmentRepository struct {
	db *sqlx.DB
}

// NewEnrollmentRepository constructs an EnrollmentRepository.
func NewEnrollmentRepository(db *sqlx.DB) *EnrollmentRepository {
	return &EnrollmentRepository{db: db}
}

// ExistsTx reports whether the edge exists, locking it if it does.
func (r *EnrollmentRepository) ExistsTx(ctx context.Context, tx *sqlx.Tx, studentID string, courseID int) (bool, error) {
	var one int
	err := tx.GetContext(ctx, &one, `SELECT 1 FROM enrollments WHERE student_id = $1 AND course_id = $2 FOR UPDATE`, studentID, courseID)
	if err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, fmt.Errorf("check enrollment: %w", err)
	}
	return true, nil
}

// InsertTx creates one edge.
func (r *EnrollmentRepository) InsertTx(ctx context.Context, tx *sqlx.Tx, studentID string, courseID int) error {
	if _, err := tx.ExecContext(ctx, `INSERT INTO enrollments (student_id, course_id) VALUES ($1, $2)`, studentID, courseID); err != nil {
		return fmt.Errorf("insert enrollment: %w", err)
	}
	return nil
}

// DeleteTx removes one edge, reporting sql.ErrNoRows when it is absent.
func (r *EnrollmentRepository) DeleteTx(ctx context.Context, tx *sqlx.Tx, studentID string, courseID int) error {
	res, err := tx.ExecContext(ctx, `DELETE FROM enrollments WHERE student_id = $1 AND course_id = $2`, studentID, courseID)
	if err != nil {
		return fmt.Errorf("delete enrollment: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// CourseIDsByStudent returns the IDs of the sections assigned to a student.
func (r *EnrollmentRepository) CourseIDsByStudent(ctx context.Context, studentID string) ([]int, error) {
	var ids []int
	if err := r.db.SelectContext(ctx, &ids, `SELECT course_id FROM enrollments WHERE student_id = $1 ORDER BY course_id`, studentID); err != nil {
		return nil, fmt.Errorf("list enrollments for %s: %w", studentID, err)
	}
	return ids, nil
}

// CourseIDsByStudentTx is CourseIDsByStudent inside a transaction.
func (r *EnrollmentRepository) CourseIDsByStudentTx(ctx context.Context, tx *sqlx.Tx, studentID string) ([]int, error) {
	var ids []int
	if err := tx.SelectContext(ctx, &ids, `SELECT course_id FROM enrollments WHERE student_id = $1 ORDER BY course_id`, studentID); err != nil {
		return nil, fmt.Errorf("list enrollments for %s: %w", studentID, err)
	}
	return ids, nil
}

// DeleteByStudentTx removes all of a student's edges.
func (r *EnrollmentRepository) DeleteByStudentTx(ctx context.Context, tx *sqlx.Tx, studentID string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM enrollments WHERE student_id = $1`, studentID); err != nil {
		return fmt.Errorf("delete enrollments for %s: %w", studentID, err)
	}
	return nil
}

// DeleteAllTx clears the join table.
func (r *EnrollmentRepository) DeleteAllTx(ctx context.Context, tx *sqlx.Tx) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM enrollments`); err != nil {
		return fmt.Errorf("clear enrollments: %w", err)
	}
	return nil
}

// CountByCourse returns the number of edges referencing a section.
func (r *EnrollmentRepository) CountByCourse(ctx context.Context, courseID int) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM enrollments WHERE course_id = $1`, courseID); err != nil {
		return 0, fmt.Errorf("count enrollments: %w", err)
	}
	return count, nil
}
