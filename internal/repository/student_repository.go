package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/rosterd/roster-sync-api/internal/models"
)

const studentColumns = "id, first_name, last_name, email, term_code, is_completed, is_approved_by_program_heads"

// StudentRepository manages persistence for student records.
type StudentRepository struct {
	db *sqlx.DB
}

// NewStudentRepository constructs a StudentRepository.
func NewStudentRepository(db *sqlx.DB) *StudentRepository {
	return &StudentRepository{db: db}
}

// List returns students matching the provided filters.
func (r *StudentRepository) List(ctx context.Context, filter models.StudentFilter) ([]models.Student, int, error) {
	base := "FROM students"
	conditions := []string{"1=1"}
	var args []interface{}

	if filter.TermCode != "" {
		conditions = append(conditions, fmt.Sprintf("term_code = $%d", len(args)+1))
		args = append(args, filter.TermCode)
	}
	if filter.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(LOWER(first_name) LIKE $%d OR LOWER(last_name) LIKE $%d OR id LIKE $%d)", len(args)+1, len(args)+1, len(args)+1))
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
	}
	base = fmt.Sprintf("%s WHERE %s", base, strings.Join(conditions, " AND "))

	allowedSorts := map[string]string{
		"id":        "id",
		"last_name": "last_name",
		"email":     "email",
	}
	column, ok := allowedSorts[filter.SortBy]
	if !ok {
		column = "last_name"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "ASC"
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 500 {
		size = 100
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT %s %s ORDER BY %s %s LIMIT %d OFFSET %d`, studentColumns, base, column, order, size, offset)
	var students []models.Student
	if err := r.db.SelectContext(ctx, &students, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list students: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count students: %w", err)
	}
	return students, total, nil
}

// FindByID fetches a student by the institution-assigned ID.
func (r *StudentRepository) FindByID(ctx context.Context, id string) (*models.Student, error) {
	query := fmt.Sprintf(`SELECT %s FROM students WHERE id = $1`, studentColumns)
	var student models.Student
	if err := r.db.GetContext(ctx, &student, query, id); err != nil {
		return nil, err
	}
	return &student, nil
}

// FindByIDTx is FindByID inside an existing transaction.
func (r *StudentRepository) FindByIDTx(ctx context.Context, tx *sqlx.Tx, id string) (*models.Student, error) {
	query := fmt.Sprintf(`SELECT %s FROM students WHERE id = $1 FOR UPDATE`, studentColumns)
	var student models.Student
	if err := tx.GetContext(ctx, &student, query, id); err != nil {
		return nil, err
	}
	return &student, nil
}

// CreateTx inserts a new student within a transaction.
func (r *StudentRepository) CreateTx(ctx context.Context, tx *sqlx.Tx, student *models.Student) error {
	const query = `INSERT INTO students (id, first_name, last_name, email, term_code, is_completed, is_approved_by_program_heads)
        VALUES (:id, :first_name, :last_name, :email, :term_code, :is_completed, :is_approved_by_program_heads)`
	if _, err := tx.NamedExecContext(ctx, query, student); err != nil {
		return fmt.Errorf("create student %s: %w", student.ID, err)
	}
	return nil
}

// UpdateProfileTx rewrites the updatable scalar fields of a student.
// Flags are intentionally excluded: imports never flip them.
func (r *StudentRepository) UpdateProfileTx(ctx context.Context, tx *sqlx.Tx, student *models.Student) error {
	const query = `UPDATE students SET first_name = :first_name, last_name = :last_name, email = :email, term_code = :term_code WHERE id = :id`
	if _, err := tx.NamedExecContext(ctx, query, student); err != nil {
		return fmt.Errorf("update student %s: %w", student.ID, err)
	}
	return nil
}

// SetCompletedTx sets the completion flag.
func (r *StudentRepository) SetCompletedTx(ctx context.Context, tx *sqlx.Tx, id string, value bool) error {
	if _, err := tx.ExecContext(ctx, `UPDATE students SET is_completed = $2 WHERE id = $1`, id, value); err != nil {
		return fmt.Errorf("set completed: %w", err)
	}
	return nil
}

// SetApprovedTx sets the program-head approval flag.
func (r *StudentRepository) SetApprovedTx(ctx context.Context, tx *sqlx.Tx, id string, value bool) error {
	if _, err := tx.ExecContext(ctx, `UPDATE students SET is_approved_by_program_heads = $2 WHERE id = $1`, id, value); err != nil {
		return fmt.Errorf("set approved: %w", err)
	}
	return nil
}

// DeleteTx removes one student.
func (r *StudentRepository) DeleteTx(ctx context.Context, tx *sqlx.Tx, id string) error {
	res, err := tx.ExecContext(ctx, `DELETE FROM students WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete student %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// DeleteAllTx clears the whole roster.
func (r *StudentRepository) DeleteAllTx(ctx context.Context, tx *sqlx.Tx) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM students`); err != nil {
		return fmt.Errorf("clear students: %w", err)
	}
	return nil
}

// Count returns the roster size.
func (r *StudentRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM students`); err != nil {
		return 0, fmt.Errorf("count students: %w", err)
	}
	return count, nil
}

// CountFlagsTx recounts completion and approval flags within a
// transaction; used to backfill and reconcile daily snapshots.
func (r *StudentRepository) CountFlagsTx(ctx context.Context, tx *sqlx.Tx) (completed, approved int, err error) {
	const query = `SELECT
        COUNT(*) FILTER (WHERE is_completed) AS completed,
        COUNT(*) FILTER (WHERE is_approved_by_program_heads) AS approved
        FROM students`
	row := tx.QueryRowxContext(ctx, query)
	if err := row.Scan(&completed, &approved); err != nil {
		return 0, 0, fmt.Errorf("count student flags: %w", err)
	}
	return completed, approved, nil
}

// CountFlags is CountFlagsTx outside a transaction, for dashboards.
func (r *StudentRepository) CountFlags(ctx context.Context) (completed, approved int, err error) {
	const query = `SELECT
        COUNT(*) FILTER (WHERE is_completed) AS completed,
        COUNT(*) FILTER (WHERE is_approved_by_program_heads) AS approved
        FROM students`
	row := r.db.QueryRowxContext(ctx, query)
	if err := row.Scan(&completed, &approved); err != nil {
		return 0, 0, fmt.Errorf("count student flags: %w", err)
	}
	return completed, approved, nil
}
