package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/rosterd/roster-sync-api/internal/models"
	appErrors "github.com/rosterd/roster-sync-api/pkg/errors"
)

type enrollmentCourseStore interface {
	FindForUpdateTx(ctx context.Context, tx *sqlx.Tx, id int) (*models.Course, error)
	ListByCourseCode(ctx context.Context, code string) ([]models.Course, error)
	ListByGroupingTx(ctx context.Context, tx *sqlx.Tx, grouping string) ([]models.Course, error)
	ListByStudent(ctx context.Context, studentID string) ([]models.Course, error)
	ValidateIDs(ctx context.Context, ids []int) ([]int, error)
	AdjustEnrolledTx(ctx context.Context, tx *sqlx.Tx, courseID, delta int) error
}

type enrollmentEdgeStore interface {
	ExistsTx(ctx context.Context, tx *sqlx.Tx, studentID string, courseID int) (bool, error)
	InsertTx(ctx context.Context, tx *sqlx.Tx, studentID string, courseID int) error
	DeleteTx(ctx context.Context, tx *sqlx.Tx, studentID string, courseID int) error
	CourseIDsByStudentTx(ctx context.Context, tx *sqlx.Tx, studentID string) ([]int, error)
}

type enrollmentStudentStore interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
	FindByIDTx(ctx context.Context, tx *sqlx.Tx, id string) (*models.Student, error)
}

// EnrollmentService maintains the student/course assignment edges and
// keeps each section's enrolled counter consistent with them.
type EnrollmentService struct {
	courses     enrollmentCourseStore
	enrollments enrollmentEdgeStore
	students    enrollmentStudentStore
	db          txBeginner
	metrics     *MetricsService
	logger      *zap.Logger
}

// NewEnrollmentService constructs EnrollmentService.
func NewEnrollmentService(courses enrollmentCourseStore, enrollments enrollmentEdgeStore, students enrollmentStudentStore, db txBeginner, metrics *MetricsService, logger *zap.Logger) *EnrollmentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EnrollmentService{courses: courses, enrollments: enrollments, students: students, db: db, metrics: metrics, logger: logger}
}

func (s *EnrollmentService) recordOp(operation string, err error) {
	if s.metrics == nil {
		return
	}
	outcome := "succeeded"
	if err != nil {
		outcome = "failed"
	}
	s.metrics.RecordEnrollmentOp(operation, outcome)
}

// Add enrolls a student in one section. The section row is locked for
// the capacity check so concurrent adds cannot oversubscribe it.
func (s *EnrollmentService) Add(ctx context.Context, studentID string, courseID int) (err error) {
	defer func() { s.recordOp("add", err) }()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return appErrors.Database(err, "begin enrollment")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = s.addTx(ctx, tx, studentID, courseID); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return appErrors.Database(err, "commit enrollment")
	}
	return nil
}

func (s *EnrollmentService) addTx(ctx context.Context, tx *sqlx.Tx, studentID string, courseID int) error {
	if _, err := s.students.FindByIDTx(ctx, tx, studentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("student %s not found", studentID))
		}
		return appErrors.Database(err, "look up student")
	}

	course, err := s.courses.FindForUpdateTx(ctx, tx, courseID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("course %d not found", courseID))
		}
		return appErrors.Database(err, "look up course")
	}

	exists, err := s.enrollments.ExistsTx(ctx, tx, studentID, courseID)
	if err != nil {
		return appErrors.Database(err, "check enrollment")
	}
	if exists {
		return appErrors.Clone(appErrors.ErrAlreadyExists, fmt.Sprintf("student %s already enrolled in course %d", studentID, courseID))
	}
	if course.Full() {
		return appErrors.Clone(appErrors.ErrCourseFull, fmt.Sprintf("course %d is at capacity", courseID))
	}

	if err := s.enrollments.InsertTx(ctx, tx, studentID, courseID); err != nil {
		return appErrors.Database(err, "insert enrollment")
	}
	if err := s.courses.AdjustEnrolledTx(ctx, tx, courseID, 1); err != nil {
		return appErrors.Database(err, "bump enrolled count")
	}
	return nil
}

// Remove drops one enrollment edge and decrements the counter.
func (s *EnrollmentService) Remove(ctx context.Context, studentID string, courseID int) (err error) {
	defer func() { s.recordOp("remove", err) }()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return appErrors.Database(err, "begin enrollment removal")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = s.removeTx(ctx, tx, studentID, courseID); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return appErrors.Database(err, "commit enrollment removal")
	}
	return nil
}

func (s *EnrollmentService) removeTx(ctx context.Context, tx *sqlx.Tx, studentID string, courseID int) error {
	if err := s.enrollments.DeleteTx(ctx, tx, studentID, courseID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("student %s is not enrolled in course %d", studentID, courseID))
		}
		return appErrors.Database(err, "delete enrollment")
	}
	if err := s.courses.AdjustEnrolledTx(ctx, tx, courseID, -1); err != nil {
		return appErrors.Database(err, "drop enrolled count")
	}
	return nil
}

// ReplaceAll swaps a student's entire schedule for the given course
// IDs. Every ID is validated before anything is mutated; an unknown ID
// fails the whole call and names the missing ones.
func (s *EnrollmentService) ReplaceAll(ctx context.Context, studentID string, courseIDs []int) (err error) {
	defer func() { s.recordOp("replace_all", err) }()

	if _, err := s.students.FindByID(ctx, studentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("student %s not found", studentID))
		}
		return appErrors.Database(err, "look up student")
	}
	missing, err := s.courses.ValidateIDs(ctx, courseIDs)
	if err != nil {
		return appErrors.Database(err, "validate course ids")
	}
	if len(missing) > 0 {
		return appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("unknown course ids %v", missing))
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return appErrors.Database(err, "begin schedule replace")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	current, err := s.enrollments.CourseIDsByStudentTx(ctx, tx, studentID)
	if err != nil {
		return appErrors.Database(err, "list current enrollments")
	}
	for _, id := range current {
		if err = s.removeTx(ctx, tx, studentID, id); err != nil {
			return err
		}
	}
	for _, id := range courseIDs {
		if err = s.addTx(ctx, tx, studentID, id); err != nil {
			return err
		}
	}
	if err = tx.Commit(); err != nil {
		return appErrors.Database(err, "commit schedule replace")
	}
	return nil
}

// AddByGroupings enrolls a student in every section of each named
// grouping. This is the authoritative scheduling path, so capacity is
// not checked; unknown groupings and already-present edges are skipped
// without error.
func (s *EnrollmentService) AddByGroupings(ctx context.Context, studentID string, groupings []string) (err error) {
	defer func() { s.recordOp("add_groupings", err) }()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return appErrors.Database(err, "begin grouping enrollment")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = s.students.FindByIDTx(ctx, tx, studentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("student %s not found", studentID))
		}
		return appErrors.Database(err, "look up student")
	}

	for _, grouping := range groupings {
		var sections []models.Course
		sections, err = s.courses.ListByGroupingTx(ctx, tx, grouping)
		if err != nil {
			return appErrors.Database(err, "list grouping sections")
		}
		for _, section := range sections {
			var exists bool
			exists, err = s.enrollments.ExistsTx(ctx, tx, studentID, section.ID)
			if err != nil {
				return appErrors.Database(err, "check enrollment")
			}
			if exists {
				continue
			}
			if err = s.enrollments.InsertTx(ctx, tx, studentID, section.ID); err != nil {
				return appErrors.Database(err, "insert enrollment")
			}
			if err = s.courses.AdjustEnrolledTx(ctx, tx, section.ID, 1); err != nil {
				return appErrors.Database(err, "bump enrolled count")
			}
		}
	}
	if err = tx.Commit(); err != nil {
		return appErrors.Database(err, "commit grouping enrollment")
	}
	return nil
}

// RemoveAllGroupings clears a student's entire schedule.
func (s *EnrollmentService) RemoveAllGroupings(ctx context.Context, studentID string) (err error) {
	defer func() { s.recordOp("remove_groupings", err) }()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return appErrors.Database(err, "begin schedule clear")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = s.students.FindByIDTx(ctx, tx, studentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("student %s not found", studentID))
		}
		return appErrors.Database(err, "look up student")
	}

	current, err := s.enrollments.CourseIDsByStudentTx(ctx, tx, studentID)
	if err != nil {
		return appErrors.Database(err, "list current enrollments")
	}
	for _, id := range current {
		if err = s.removeTx(ctx, tx, studentID, id); err != nil {
			return err
		}
	}
	if err = tx.Commit(); err != nil {
		return appErrors.Database(err, "commit schedule clear")
	}
	return nil
}

// CourseGroup is one grouping key with its member sections.
type CourseGroup struct {
	Grouping string          `json:"grouping"`
	Courses  []models.Course `json:"courses"`
}

// EligibleCourses returns the sections offered under a course code
// grouped by grouping key. A grouping containing any inactive or full
// section is excluded, unless the student already holds a seat in it.
func (s *EnrollmentService) EligibleCourses(ctx context.Context, courseCode, studentID string) ([]CourseGroup, error) {
	if _, err := s.students.FindByID(ctx, studentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("student %s not found", studentID))
		}
		return nil, appErrors.Database(err, "look up student")
	}

	enrolled, err := s.courses.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Database(err, "list student courses")
	}
	heldGroupings := make(map[string]bool, len(enrolled))
	for _, c := range enrolled {
		heldGroupings[c.Grouping] = true
	}

	sections, err := s.courses.ListByCourseCode(ctx, courseCode)
	if err != nil {
		return nil, appErrors.Database(err, "list sections by code")
	}

	var order []string
	byGrouping := make(map[string][]models.Course)
	blocked := make(map[string]bool)
	for _, course := range sections {
		if _, ok := byGrouping[course.Grouping]; !ok {
			order = append(order, course.Grouping)
		}
		byGrouping[course.Grouping] = append(byGrouping[course.Grouping], course)
		if !course.Status || course.Full() {
			blocked[course.Grouping] = true
		}
	}

	groups := make([]CourseGroup, 0, len(order))
	for _, key := range order {
		if blocked[key] && !heldGroupings[key] {
			continue
		}
		groups = append(groups, CourseGroup{Grouping: key, Courses: byGrouping[key]})
	}
	return groups, nil
}

// Schedule returns the sections currently assigned to a student.
func (s *EnrollmentService) Schedule(ctx context.Context, studentID string) ([]models.Course, error) {
	if _, err := s.students.FindByID(ctx, studentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("student %s not found", studentID))
		}
		return nil, appErrors.Database(err, "look up student")
	}
	courses, err := s.courses.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, appErrors.Database(err, "list student courses")
	}
	return courses, nil
}
