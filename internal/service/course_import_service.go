package service

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/rosterd/roster-sync-api/internal/models"
	"github.com/rosterd/roster-sync-api/internal/normalize"
	"github.com/rosterd/roster-sync-api/internal/sheet"
	"github.com/rosterd/roster-sync-api/pkg/config"
	appErrors "github.com/rosterd/roster-sync-api/pkg/errors"
)

// dropCourseColumns are source-specific administrative columns carried
// by the offering export that have no domain meaning.
var dropCourseColumns = []string{
	"Hrs",
	"Block Code (swvmday)",
	"Block Conflicts (swvmday)",
	"Instructor Conflicts (swvmday)",
	"Instructor Conflicts (swvmday) = 'Y'",
	"Meeting Day No. (swvmday)",
	"Room Conflicts (swvmday)",
	"Room Conflicts (swvmday)  =  'Y'",
	"Sorted By",
	"Sort Order",
	"Time",
}

type courseCatalogWriter interface {
	ReplaceAllTx(ctx context.Context, tx *sqlx.Tx, courses []models.Course) error
}

type txBeginner interface {
	BeginTxx(ctx context.Context, opts *sql.TxOptions) (*sqlx.Tx, error)
}

// InvalidCourseRow identifies a source row that failed normalization.
type InvalidCourseRow struct {
	CRN        string `json:"crn"`
	Course     string `json:"course"`
	Block      string `json:"block"`
	Instructor string `json:"instructor"`
	Error      string `json:"error"`
}

// CourseImportResult reports a finished catalog replace.
type CourseImportResult struct {
	Imported    int                `json:"imported"`
	InvalidRows []InvalidCourseRow `json:"invalid_rows"`
	// EnrollmentsCleared reminds callers that every student assignment
	// was wiped and must be re-derived from preferences.
	EnrollmentsCleared bool `json:"enrollments_cleared"`
}

// CourseImportService replaces the whole course catalog from an
// uploaded offering spreadsheet.
type CourseImportService struct {
	courses courseCatalogWriter
	db      txBeginner
	gate    *ImportGate
	metrics *MetricsService
	cfg     config.ImportsConfig
	logger  *zap.Logger
}

// NewCourseImportService constructs CourseImportService.
func NewCourseImportService(courses courseCatalogWriter, db txBeginner, gate *ImportGate, metrics *MetricsService, cfg config.ImportsConfig, logger *zap.Logger) *CourseImportService {
	if gate == nil {
		gate = NewImportGate()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CourseImportService{courses: courses, db: db, gate: gate, metrics: metrics, cfg: cfg, logger: logger}
}

// Import parses, groups and normalizes the offering file, then swaps
// the catalog in one transaction. Rows that fail normalization are
// skipped and reported; the rest of the import still commits.
func (s *CourseImportService) Import(ctx context.Context, filename string, file io.Reader) (*CourseImportResult, error) {
	release, err := s.gate.Acquire(ctx, ImportKindCourses)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "import cancelled while waiting for gate")
	}
	defer release()

	if err := allowedExtension(s.cfg.AllowedExtensions, filename); err != nil {
		s.recordImport("rejected")
		return nil, err
	}

	table, err := sheet.Parse(filename, file)
	if err != nil {
		s.recordImport("rejected")
		return nil, err
	}
	table.DropColumns(dropCourseColumns...)

	grouped := groupSections(table.Headers, table.Rows())

	result := &CourseImportResult{EnrollmentsCleared: true}
	courses := make([]models.Course, 0, len(grouped))
	for _, row := range grouped {
		course, err := normalize.Course(row)
		if err != nil {
			result.InvalidRows = append(result.InvalidRows, InvalidCourseRow{
				CRN:        row[normalize.ColCRN],
				Course:     row[normalize.ColCourse],
				Block:      row[normalize.ColBlock],
				Instructor: row[normalize.ColInstructor],
				Error:      err.Error(),
			})
			continue
		}
		courses = append(courses, *course)
	}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		s.recordImport("failed")
		return nil, appErrors.Database(err, "begin course import")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = s.courses.ReplaceAllTx(ctx, tx, courses); err != nil {
		s.recordImport("failed")
		return nil, appErrors.Database(err, "replace course catalog")
	}
	if err = tx.Commit(); err != nil {
		s.recordImport("failed")
		return nil, appErrors.Database(err, "commit course import")
	}

	result.Imported = len(courses)
	s.recordImport("succeeded")
	s.logger.Info("course catalog replaced",
		zap.Int("imported", result.Imported),
		zap.Int("invalid_rows", len(result.InvalidRows)),
	)
	return result, nil
}

// allowedExtension enforces the configured upload extension allowlist.
// An empty allowlist accepts every file the parser understands.
func allowedExtension(allowed []string, filename string) error {
	if len(allowed) == 0 {
		return nil
	}
	ext := strings.ToLower(filepath.Ext(filename))
	for _, a := range allowed {
		a = strings.TrimSpace(a)
		if a == "" {
			continue
		}
		if !strings.HasPrefix(a, ".") {
			a = "." + a
		}
		if strings.EqualFold(a, ext) {
			return nil
		}
	}
	return appErrors.Clone(appErrors.ErrInvalidFileType, fmt.Sprintf("file extension %q is not allowed", ext))
}

func (s *CourseImportService) recordImport(outcome string) {
	if s.metrics != nil {
		s.metrics.RecordImport(string(ImportKindCourses), outcome)
	}
}

// groupSections coalesces rows that are identical in every column
// except Instructor into one row whose instructor cell is the
// deduplicated, comma-joined merge of the group, with each name
// reversed from "Last, First" into "First Last". First-seen order is
// preserved both for rows and for merged instructors.
func groupSections(headers []string, rows []map[string]string) []map[string]string {
	type group struct {
		row         map[string]string
		instructors []string
		seen        map[string]struct{}
	}

	keyCols := make([]string, 0, len(headers))
	for _, h := range headers {
		if h == normalize.ColInstructor {
			continue
		}
		keyCols = append(keyCols, h)
	}

	var order []string
	groups := make(map[string]*group)

	for _, row := range rows {
		key := groupKey(keyCols, row)
		g, ok := groups[key]
		if !ok {
			g = &group{row: row, seen: make(map[string]struct{})}
			groups[key] = g
			order = append(order, key)
		}
		name := normalize.FlipName(row[normalize.ColInstructor])
		if name == "" {
			continue
		}
		if _, dup := g.seen[name]; dup {
			continue
		}
		g.seen[name] = struct{}{}
		g.instructors = append(g.instructors, name)
	}

	merged := make([]map[string]string, 0, len(order))
	for _, key := range order {
		g := groups[key]
		g.row[normalize.ColInstructor] = strings.Join(g.instructors, ",")
		merged = append(merged, g.row)
	}
	return merged
}

// groupKey joins the row's values in header order, so any column the
// file carries (besides Instructor) keeps distinct rows apart.
func groupKey(cols []string, row map[string]string) string {
	parts := make([]string, len(cols))
	for i, c := range cols {
		parts[i] = row[c]
	}
	return strings.Join(parts, "\x1f")
}
