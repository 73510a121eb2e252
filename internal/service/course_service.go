package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/rosterd/roster-sync-api/internal/models"
	appErrors "github.com/rosterd/roster-sync-api/pkg/errors"
)

type courseReadStore interface {
	FindByID(ctx context.Context, id int) (*models.Course, error)
	ListAll(ctx context.Context) ([]models.Course, error)
	ListByCourseCode(ctx context.Context, code string) ([]models.Course, error)
}

// CourseService serves catalog reads.
type CourseService struct {
	courses courseReadStore
	logger  *zap.Logger
}

// NewCourseService constructs CourseService.
func NewCourseService(courses courseReadStore, logger *zap.Logger) *CourseService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CourseService{courses: courses, logger: logger}
}

// List returns the whole catalog.
func (s *CourseService) List(ctx context.Context) ([]models.Course, error) {
	courses, err := s.courses.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Database(err, "list courses")
	}
	return courses, nil
}

// Get returns one section.
func (s *CourseService) Get(ctx context.Context, id int) (*models.Course, error) {
	course, err := s.courses.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("course %d not found", id))
		}
		return nil, appErrors.Database(err, "look up course")
	}
	return course, nil
}

// SectionsByCode returns a course code's sections grouped by grouping
// key, in catalog order.
func (s *CourseService) SectionsByCode(ctx context.Context, code string) ([]CourseGroup, error) {
	sections, err := s.courses.ListByCourseCode(ctx, code)
	if err != nil {
		return nil, appErrors.Database(err, "list sections by code")
	}
	if len(sections) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("no sections for course code %s", code))
	}

	var order []string
	byGrouping := make(map[string][]models.Course)
	for _, course := range sections {
		if _, ok := byGrouping[course.Grouping]; !ok {
			order = append(order, course.Grouping)
		}
		byGrouping[course.Grouping] = append(byGrouping[course.Grouping], course)
	}
	groups := make([]CourseGroup, 0, len(order))
	for _, key := range order {
		groups = append(groups, CourseGroup{Grouping: key, Courses: byGrouping[key]})
	}
	return groups, nil
}
