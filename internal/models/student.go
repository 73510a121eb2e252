package models

// Student is a roster member identified by an institution-assigned ID.
// The ID is fixed width and never generated by this system.
type Student struct {
	ID                       string `db:"id" json:"id"`
	FirstName                string `db:"first_name" json:"first_name"`
	LastName                 string `db:"last_name" json:"last_name"`
	Email                    string `db:"email" json:"email"`
	TermCode                 string `db:"term_code" json:"term_code"`
	IsCompleted              bool   `db:"is_completed" json:"is_completed"`
	IsApprovedByProgramHeads bool   `db:"is_approved_by_program_heads" json:"is_approved_by_program_heads"`
}

// StudentDetail bundles a student with their ranked preferences and the
// sections currently assigned to them.
type StudentDetail struct {
	Student
	Preferences []Preference `json:"preferences"`
	Courses     []Course     `json:"courses"`
}

// StudentFilter encapsulates allowed search parameters for listing students.
type StudentFilter struct {
	Search    string
	TermCode  string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}
