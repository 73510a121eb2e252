package models

// Preference is a student's ranked desired course code. Priorities are
// dense starting at 1; replacing a student's preferences is always
// delete-then-insert.
type Preference struct {
	StudentID  string `db:"student_id" json:"student_id"`
	Priority   int    `db:"priority" json:"priority"`
	CourseCode string `db:"course_code" json:"course_code"`
}
