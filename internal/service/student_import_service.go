package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/rosterd/roster-sync-api/internal/models"
	"github.com/rosterd/roster-sync-api/internal/normalize"
	"github.com/rosterd/roster-sync-api/internal/sheet"
	"github.com/rosterd/roster-sync-api/pkg/config"
	appErrors "github.com/rosterd/roster-sync-api/pkg/errors"
)

// StudentImportMode selects between wiping the roster and diffing it.
type StudentImportMode string

const (
	StudentImportReplace StudentImportMode = "replace"
	StudentImportUpdate  StudentImportMode = "update"
)

type studentImportStore interface {
	FindByIDTx(ctx context.Context, tx *sqlx.Tx, id string) (*models.Student, error)
	CreateTx(ctx context.Context, tx *sqlx.Tx, student *models.Student) error
	UpdateProfileTx(ctx context.Context, tx *sqlx.Tx, student *models.Student) error
	DeleteAllTx(ctx context.Context, tx *sqlx.Tx) error
}

type preferenceImportStore interface {
	ReplaceForStudentTx(ctx context.Context, tx *sqlx.Tx, studentID string, courseCodes []string) error
	DeleteAllTx(ctx context.Context, tx *sqlx.Tx) error
}

type enrollmentImportStore interface {
	DeleteAllTx(ctx context.Context, tx *sqlx.Tx) error
}

// InvalidStudentRow identifies a source row that failed normalization.
type InvalidStudentRow struct {
	ID    string `json:"id"`
	Error string `json:"error"`
}

// UpdatedStudent names a student whose profile changed and which
// fields differed.
type UpdatedStudent struct {
	ID     string   `json:"id"`
	Fields []string `json:"fields"`
}

// StudentImportResult reports a finished roster import.
type StudentImportResult struct {
	Mode            StudentImportMode   `json:"mode"`
	Created         int                 `json:"created"`
	AddedStudents   []string            `json:"added_students,omitempty"`
	UpdatedStudents []UpdatedStudent    `json:"updated_students,omitempty"`
	InvalidRows     []InvalidStudentRow `json:"invalid_rows"`
}

// studentRecord carries the normalized profile fields that must hold
// before a row is written.
type studentRecord struct {
	ID    string `validate:"required,len=9"`
	Email string `validate:"omitempty,email"`
}

// StudentImportService loads the student roster from an uploaded
// spreadsheet, either replacing it wholesale or folding in a diff.
type StudentImportService struct {
	students    studentImportStore
	preferences preferenceImportStore
	enrollments enrollmentImportStore
	db          txBeginner
	gate        *ImportGate
	metrics     *MetricsService
	validator   *validator.Validate
	cfg         config.ImportsConfig
	logger      *zap.Logger
}

// NewStudentImportService constructs StudentImportService.
func NewStudentImportService(students studentImportStore, preferences preferenceImportStore, enrollments enrollmentImportStore, db txBeginner, gate *ImportGate, metrics *MetricsService, validate *validator.Validate, cfg config.ImportsConfig, logger *zap.Logger) *StudentImportService {
	if gate == nil {
		gate = NewImportGate()
	}
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentImportService{
		students:    students,
		preferences: preferences,
		enrollments: enrollments,
		db:          db,
		gate:        gate,
		metrics:     metrics,
		validator:   validate,
		cfg:         cfg,
		logger:      logger,
	}
}

// Import runs the roster import in a single transaction. In replace
// mode every student, preference and enrollment is wiped before the
// file is loaded; in update mode existing students keep their flags
// and enrollments and only changed profile fields are written.
func (s *StudentImportService) Import(ctx context.Context, mode StudentImportMode, filename string, file io.Reader) (*StudentImportResult, error) {
	if mode != StudentImportReplace && mode != StudentImportUpdate {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown import mode %q", mode))
	}

	release, err := s.gate.Acquire(ctx, ImportKindStudents)
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

	result := &StudentImportResult{Mode: mode}

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		s.recordImport("failed")
		return nil, appErrors.Database(err, "begin student import")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	switch mode {
	case StudentImportReplace:
		err = s.replaceAll(ctx, tx, table, result)
	case StudentImportUpdate:
		err = s.applyDiff(ctx, tx, table, result)
	}
	if err != nil {
		s.recordImport("failed")
		return nil, err
	}

	if err = tx.Commit(); err != nil {
		s.recordImport("failed")
		return nil, appErrors.Database(err, "commit student import")
	}

	s.recordImport("succeeded")
	s.logger.Info("student roster imported",
		zap.String("mode", string(mode)),
		zap.Int("created", result.Created),
		zap.Int("added", len(result.AddedStudents)),
		zap.Int("updated", len(result.UpdatedStudents)),
		zap.Int("invalid_rows", len(result.InvalidRows)),
	)
	return result, nil
}

func (s *StudentImportService) replaceAll(ctx context.Context, tx *sqlx.Tx, table *sheet.Table, result *StudentImportResult) error {
	if err := s.preferences.DeleteAllTx(ctx, tx); err != nil {
		return appErrors.Database(err, "clear preferences")
	}
	if err := s.enrollments.DeleteAllTx(ctx, tx); err != nil {
		return appErrors.Database(err, "clear enrollments")
	}
	if err := s.students.DeleteAllTx(ctx, tx); err != nil {
		return appErrors.Database(err, "clear students")
	}

	seen := make(map[string]struct{})
	for _, row := range table.Rows() {
		student, prefs, err := normalize.Student(row)
		if err != nil {
			result.InvalidRows = append(result.InvalidRows, InvalidStudentRow{
				ID:    row[normalize.ColStudentID],
				Error: err.Error(),
			})
			continue
		}
		if err := s.validator.Struct(studentRecord{ID: student.ID, Email: student.Email}); err != nil {
			result.InvalidRows = append(result.InvalidRows, InvalidStudentRow{
				ID:    student.ID,
				Error: err.Error(),
			})
			continue
		}
		if _, dup := seen[student.ID]; dup {
			result.InvalidRows = append(result.InvalidRows, InvalidStudentRow{
				ID:    student.ID,
				Error: "duplicate student id in file",
			})
			continue
		}
		seen[student.ID] = struct{}{}

		if err := s.students.CreateTx(ctx, tx, student); err != nil {
			return appErrors.Database(err, "create student "+student.ID)
		}
		if err := s.preferences.ReplaceForStudentTx(ctx, tx, student.ID, s.capPreferences(prefs)); err != nil {
			return appErrors.Database(err, "store preferences for "+student.ID)
		}
		result.Created++
	}
	return nil
}

func (s *StudentImportService) applyDiff(ctx context.Context, tx *sqlx.Tx, table *sheet.Table, result *StudentImportResult) error {
	for _, row := range table.Rows() {
		student, prefs, err := normalize.Student(row)
		if err != nil {
			result.InvalidRows = append(result.InvalidRows, InvalidStudentRow{
				ID:    row[normalize.ColStudentID],
				Error: err.Error(),
			})
			continue
		}
		if err := s.validator.Struct(studentRecord{ID: student.ID, Email: student.Email}); err != nil {
			result.InvalidRows = append(result.InvalidRows, InvalidStudentRow{
				ID:    student.ID,
				Error: err.Error(),
			})
			continue
		}

		existing, err := s.students.FindByIDTx(ctx, tx, student.ID)
		if errors.Is(err, sql.ErrNoRows) {
			if err := s.students.CreateTx(ctx, tx, student); err != nil {
				return appErrors.Database(err, "create student "+student.ID)
			}
			if err := s.preferences.ReplaceForStudentTx(ctx, tx, student.ID, s.capPreferences(prefs)); err != nil {
				return appErrors.Database(err, "store preferences for "+student.ID)
			}
			result.Created++
			result.AddedStudents = append(result.AddedStudents, student.ID)
			continue
		}
		if err != nil {
			return appErrors.Database(err, "look up student "+student.ID)
		}

		fields := diffProfile(existing, student)
		if len(fields) == 0 {
			continue
		}
		if err := s.students.UpdateProfileTx(ctx, tx, student); err != nil {
			return appErrors.Database(err, "update student "+student.ID)
		}
		result.UpdatedStudents = append(result.UpdatedStudents, UpdatedStudent{ID: student.ID, Fields: fields})
	}
	return nil
}

// diffProfile compares the mutable profile fields only. Completion and
// approval flags are operator state and never come from the file.
func diffProfile(existing, incoming *models.Student) []string {
	var fields []string
	if existing.FirstName != incoming.FirstName {
		fields = append(fields, "first_name")
	}
	if existing.LastName != incoming.LastName {
		fields = append(fields, "last_name")
	}
	if existing.Email != incoming.Email {
		fields = append(fields, "email")
	}
	if existing.TermCode != incoming.TermCode {
		fields = append(fields, "term_code")
	}
	return fields
}

// capPreferences truncates a student's ranked preference list to the
// configured maximum. Zero or negative means unlimited.
func (s *StudentImportService) capPreferences(prefs []string) []string {
	if max := s.cfg.MaxPreferences; max > 0 && len(prefs) > max {
		return prefs[:max]
	}
	return prefs
}

func (s *StudentImportService) recordImport(outcome string) {
	if s.metrics != nil {
		s.metrics.RecordImport(string(ImportKindStudents), outcome)
	}
}
