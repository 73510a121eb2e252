package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/rosterd/roster-sync-api/internal/models"
	appErrors "github.com/rosterd/roster-sync-api/pkg/errors"
)

const (
	cacheKeyJumbotron = "dashboard:jumbotron"

	defaultTopLimit = 10
	maxTopLimit     = 50
)

type dashboardStudentStore interface {
	Count(ctx context.Context) (int, error)
	CountFlags(ctx context.Context) (completed, approved int, err error)
}

type dashboardCourseStore interface {
	Count(ctx context.Context) (int, error)
	TopRegistrations(ctx context.Context, limit int) ([]models.CourseCodeCount, error)
}

type dashboardPreferenceStore interface {
	TopPreferences(ctx context.Context, limit int) ([]models.CourseCodeCount, error)
}

type dashboardCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Invalidate(ctx context.Context, keys ...string)
}

// Jumbotron is the headline counter block for the dashboard.
type Jumbotron struct {
	TotalStudents      int `json:"total_students"`
	CompletedSchedules int `json:"completed_schedules"`
	ApprovedSchedules  int `json:"approved_schedules"`
	TotalCourses       int `json:"total_courses"`
}

// DashboardService serves read-only aggregates for the admin screens.
type DashboardService struct {
	students     dashboardStudentStore
	courses      dashboardCourseStore
	preferences  dashboardPreferenceStore
	progressions progressionStore
	cache        dashboardCache
	cacheTTL     time.Duration
	logger       *zap.Logger
}

// NewDashboardService constructs DashboardService.
func NewDashboardService(students dashboardStudentStore, courses dashboardCourseStore, preferences dashboardPreferenceStore, progressions progressionStore, cache dashboardCache, cacheTTL time.Duration, logger *zap.Logger) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{
		students:     students,
		courses:      courses,
		preferences:  preferences,
		progressions: progressions,
		cache:        cache,
		cacheTTL:     cacheTTL,
		logger:       logger,
	}
}

// Jumbotron returns the headline counters, served from cache when
// fresh enough.
func (s *DashboardService) Jumbotron(ctx context.Context) (*Jumbotron, error) {
	var cached Jumbotron
	if err := s.cache.Get(ctx, cacheKeyJumbotron, &cached); err == nil {
		return &cached, nil
	}

	totalStudents, err := s.students.Count(ctx)
	if err != nil {
		return nil, appErrors.Database(err, "count students")
	}
	completed, approved, err := s.students.CountFlags(ctx)
	if err != nil {
		return nil, appErrors.Database(err, "count student flags")
	}
	totalCourses, err := s.courses.Count(ctx)
	if err != nil {
		return nil, appErrors.Database(err, "count courses")
	}

	result := &Jumbotron{
		TotalStudents:      totalStudents,
		CompletedSchedules: completed,
		ApprovedSchedules:  approved,
		TotalCourses:       totalCourses,
	}
	if err := s.cache.Set(ctx, cacheKeyJumbotron, result, s.cacheTTL); err != nil {
		s.logger.Warn("jumbotron cache write failed", zap.Error(err))
	}
	return result, nil
}

// InvalidateJumbotron drops the cached headline counters. Imports and
// flag toggles call it so stale totals never outlive a write.
func (s *DashboardService) InvalidateJumbotron(ctx context.Context) {
	s.cache.Invalidate(ctx, cacheKeyJumbotron)
}

// MostPopularPreferences ranks course codes by preference count.
func (s *DashboardService) MostPopularPreferences(ctx context.Context, limit int) ([]models.CourseCodeCount, error) {
	counts, err := s.preferences.TopPreferences(ctx, clampLimit(limit))
	if err != nil {
		return nil, appErrors.Database(err, "rank preferences")
	}
	return counts, nil
}

// MostPopularRegistrations ranks course codes by enrollment count.
func (s *DashboardService) MostPopularRegistrations(ctx context.Context, limit int) ([]models.CourseCodeCount, error) {
	counts, err := s.courses.TopRegistrations(ctx, clampLimit(limit))
	if err != nil {
		return nil, appErrors.Database(err, "rank registrations")
	}
	return counts, nil
}

// ScheduleProgression returns the dated snapshot series for the chart.
func (s *DashboardService) ScheduleProgression(ctx context.Context) ([]models.ScheduleProgression, error) {
	rows, err := s.progressions.History(ctx)
	if err != nil {
		return nil, appErrors.Database(err, "load progression history")
	}
	return rows, nil
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultTopLimit
	}
	if limit > maxTopLimit {
		return maxTopLimit
	}
	return limit
}
