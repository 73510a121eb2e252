package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/rosterd/roster-sync-api/internal/models"
)

const courseColumns = "id, status, block, crn, course_code, course_type, day, begin_time, end_time, instructor, building_room, start_date, end_date, max_capacity, num_enrolled, full_time, term_code, course_grouping"

// CourseRepository manages persistence for course sections.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository constructs a CourseRepository.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

// FindByID fetches a single section by its surrogate ID.
func (r *CourseRepository) FindByID(ctx context.Context, id int) (*models.Course, error) {
	query := fmt.Sprintf(`SELECT %s FROM courses WHERE id = $1`, courseColumns)
	var course models.Course
	if err := r.db.GetContext(ctx, &course, query, id); err != nil {
		return nil, err
	}
	return &course, nil
}

// FindForUpdateTx locks and returns a section row within a transaction.
func (r *CourseRepository) FindForUpdateTx(ctx context.Context, tx *sqlx.Tx, id int) (*models.Course, error) {
	query := fmt.Sprintf(`SELECT %s FROM courses WHERE id = $1 FOR UPDATE`, courseColumns)
	var course models.Course
	if err := tx.GetContext(ctx, &course, query, id); err != nil {
		return nil, err
	}
	return &course, nil
}

// ListByCourseCode returns every section offered under a course code.
func (r *CourseRepository) ListByCourseCode(ctx context.Context, code string) ([]models.Course, error) {
	query := fmt.Sprintf(`SELECT %s FROM courses WHERE course_code = $1 ORDER BY course_grouping, day, begin_time`, courseColumns)
	var courses []models.Course
	if err := r.db.SelectContext(ctx, &courses, query, code); err != nil {
		return nil, fmt.Errorf("list courses by code: %w", err)
	}
	return courses, nil
}

// ListAll returns the whole catalog in grouping order.
func (r *CourseRepository) ListAll(ctx context.Context) ([]models.Course, error) {
	query := fmt.Sprintf(`SELECT %s FROM courses ORDER BY course_grouping, day, begin_time`, courseColumns)
	var courses []models.Course
	if err := r.db.SelectContext(ctx, &courses, query); err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	return courses, nil
}

// ListByGroupingTx returns every section sharing a grouping key.
func (r *CourseRepository) ListByGroupingTx(ctx context.Context, tx *sqlx.Tx, grouping string) ([]models.Course, error) {
	query := fmt.Sprintf(`SELECT %s FROM courses WHERE course_grouping = $1 ORDER BY day, begin_time`, courseColumns)
	var courses []models.Course
	if err := tx.SelectContext(ctx, &courses, query, grouping); err != nil {
		return nil, fmt.Errorf("list courses by grouping: %w", err)
	}
	return courses, nil
}

// ListByStudent returns the sections currently assigned to a student.
func (r *CourseRepository) ListByStudent(ctx context.Context, studentID string) ([]models.Course, error) {
	query := fmt.Sprintf(`SELECT c.%s FROM courses c
        JOIN enrollments e ON e.course_id = c.id
        WHERE e.student_id = $1 ORDER BY c.day, c.begin_time`, courseColumnsPrefixed())
	var courses []models.Course
	if err := r.db.SelectContext(ctx, &courses, query, studentID); err != nil {
		return nil, fmt.Errorf("list courses by student: %w", err)
	}
	return courses, nil
}

// ListByStudentTx is ListByStudent inside an existing transaction.
func (r *CourseRepository) ListByStudentTx(ctx context.Context, tx *sqlx.Tx, studentID string) ([]models.Course, error) {
	query := fmt.Sprintf(`SELECT c.%s FROM courses c
        JOIN enrollments e ON e.course_id = c.id
        WHERE e.student_id = $1 ORDER BY c.day, c.begin_time`, courseColumnsPrefixed())
	var courses []models.Course
	if err := tx.SelectContext(ctx, &courses, query, studentID); err != nil {
		return nil, fmt.Errorf("list courses by student: %w", err)
	}
	return courses, nil
}

// ValidateIDs reports which of the provided course IDs do not exist.
func (r *CourseRepository) ValidateIDs(ctx context.Context, ids []int) ([]int, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query, args, err := sqlx.In(`SELECT id FROM courses WHERE id IN (?)`, ids)
	if err != nil {
		return nil, fmt.Errorf("build course id query: %w", err)
	}
	query = r.db.Rebind(query)

	var found []int
	if err := r.db.SelectContext(ctx, &found, query, args...); err != nil {
		return nil, fmt.Errorf("validate course ids: %w", err)
	}
	existing := make(map[int]bool, len(found))
	for _, id := range found {
		existing[id] = true
	}
	var missing []int
	for _, id := range ids {
		if !existing[id] {
			missing = append(missing, id)
		}
	}
	return missing, nil
}

// ReplaceAllTx wipes every enrollment edge and every course, restarts
// the course ID sequence from 1, then inserts the new catalog. Course
// IDs are therefore not stable across imports.
func (r *CourseRepository) ReplaceAllTx(ctx context.Context, tx *sqlx.Tx, courses []models.Course) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM enrollments`); err != nil {
		return fmt.Errorf("clear enrollments: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM courses`); err != nil {
		return fmt.Errorf("clear courses: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `ALTER SEQUENCE courses_id_seq RESTART WITH 1`); err != nil {
		return fmt.Errorf("restart course sequence: %w", err)
	}

	const query = `INSERT INTO courses (status, block, crn, course_code, course_type, day, begin_time, end_time, instructor, building_room, start_date, end_date, max_capacity, num_enrolled, full_time, term_code, course_grouping)
        VALUES (:status, :block, :crn, :course_code, :course_type, :day, :begin_time, :end_time, :instructor, :building_room, :start_date, :end_date, :max_capacity, :num_enrolled, :full_time, :term_code, :course_grouping)`
	for i := range courses {
		if _, err := tx.NamedExecContext(ctx, query, &courses[i]); err != nil {
			return fmt.Errorf("insert course crn %d: %w", courses[i].CRN, err)
		}
	}
	return nil
}

// AdjustEnrolledTx applies a delta to a section's enrolled counter.
func (r *CourseRepository) AdjustEnrolledTx(ctx context.Context, tx *sqlx.Tx, courseID, delta int) error {
	if _, err := tx.ExecContext(ctx, `UPDATE courses SET num_enrolled = num_enrolled + $2 WHERE id = $1`, courseID, delta); err != nil {
		return fmt.Errorf("adjust enrolled count: %w", err)
	}
	return nil
}

// Count returns the catalog size.
func (r *CourseRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM courses`); err != nil {
		return 0, fmt.Errorf("count courses: %w", err)
	}
	return count, nil
}

// TopRegistrations returns course codes ranked by enrollment edges.
func (r *CourseRepository) TopRegistrations(ctx context.Context, limit int) ([]models.CourseCodeCount, error) {
	const query = `SELECT c.course_code, COUNT(e.student_id) AS count
        FROM courses c JOIN enrollments e ON e.course_id = c.id
        GROUP BY c.course_code ORDER BY count DESC, c.course_code ASC LIMIT $1`
	var counts []models.CourseCodeCount
	if err := r.db.SelectContext(ctx, &counts, query, limit); err != nil {
		return nil, fmt.Errorf("top registrations: %w", err)
	}
	return counts, nil
}

func courseColumnsPrefixed() string {
	return "id, c.status, c.block, c.crn, c.course_code, c.course_type, c.day, c.begin_time, c.end_time, c.instructor, c.building_room, c.start_date, c.end_date, c.max_capacity, c.num_enrolled, c.full_time, c.term_code, c.course_grouping"
}
