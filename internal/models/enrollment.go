package models

// Enrollment is the join edge between a student and a course section.
// The pair is unique and carries no attributes of its own.
type Enrollment struct {
	StudentID string `db:"student_id" json:"student_id"`
	CourseID  int    `db:"course_id" json:"course_id"`
}
