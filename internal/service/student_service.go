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

type studentReadStore interface {
	List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error)
	FindByID(ctx context.Context, id string) (*models.Student, error)
	DeleteTx(ctx context.Context, tx *sqlx.Tx, id string) error
}

type studentPreferenceStore interface {
	ListByStudent(ctx context.Context, studentID string) ([]models.Preference, error)
	DeleteByStudentTx(ctx context.Context, tx *sqlx.Tx, studentID string) error
}

type studentCourseStore interface {
	ListByStudent(ctx context.Context, studentID string) ([]models.Course, error)
	AdjustEnrolledTx(ctx context.Context, tx *sqlx.Tx, courseID, delta int) error
}

type studentEnrollmentStore interface {
	CourseIDsByStudentTx(ctx context.Context, tx *sqlx.Tx, studentID string) ([]int, error)
	DeleteByStudentTx(ctx context.Context, tx *sqlx.Tx, studentID string) error
}

// StudentService serves student reads and owns the cascading delete.
type StudentService struct {
	students    studentReadStore
	preferences studentPreferenceStore
	courses     studentCourseStore
	enrollments studentEnrollmentStore
	db          txBeginner
	logger      *zap.Logger
}

// NewStudentService constructs StudentService.
func NewStudentService(students studentReadStore, preferences studentPreferenceStore, courses studentCourseStore, enrollments studentEnrollmentStore, db txBeginner, logger *zap.Logger) *StudentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{
		students:    students,
		preferences: preferences,
		courses:     courses,
		enrollments: enrollments,
		db:          db,
		logger:      logger,
	}
}

// List returns a page of students with pagination metadata.
func (s *StudentService) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, *models.Pagination, error) {
	students, total, err := s.students.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Database(err, "list students")
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	return students, &models.Pagination{Page: page, PageSize: len(students), TotalCount: total}, nil
}

// Get returns one student with their preferences and assigned sections.
func (s *StudentService) Get(ctx context.Context, id string) (*models.StudentDetail, error) {
	student, err := s.students.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("student %s not found", id))
		}
		return nil, appErrors.Database(err, "look up student")
	}

	preferences, err := s.preferences.ListByStudent(ctx, id)
	if err != nil {
		return nil, appErrors.Database(err, "list preferences")
	}
	courses, err := s.courses.ListByStudent(ctx, id)
	if err != nil {
		return nil, appErrors.Database(err, "list student courses")
	}

	return &models.StudentDetail{Student: *student, Preferences: preferences, Courses: courses}, nil
}

// Delete removes a student together with their preferences and
// enrollment edges, decrementing the enrolled counter of every section
// they held a seat in.
func (s *StudentService) Delete(ctx context.Context, id string) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return appErrors.Database(err, "begin student delete")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	courseIDs, err := s.enrollments.CourseIDsByStudentTx(ctx, tx, id)
	if err != nil {
		return appErrors.Database(err, "list enrollments")
	}
	for _, courseID := range courseIDs {
		if err = s.courses.AdjustEnrolledTx(ctx, tx, courseID, -1); err != nil {
			return appErrors.Database(err, "drop enrolled count")
		}
	}
	if err = s.enrollments.DeleteByStudentTx(ctx, tx, id); err != nil {
		return appErrors.Database(err, "delete enrollments")
	}
	if err = s.preferences.DeleteByStudentTx(ctx, tx, id); err != nil {
		return appErrors.Database(err, "delete preferences")
	}
	if err = s.students.DeleteTx(ctx, tx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("student %s not found", id))
		}
		return appErrors.Database(err, "delete student")
	}

	if err = tx.Commit(); err != nil {
		return appErrors.Database(err, "commit student delete")
	}
	s.logger.Info("student deleted", zap.String("student_id", id), zap.Int("enrollments_released", len(courseIDs)))
	return nil
}
