package models

import "time"

// Course is one scheduled section of an offering. Several sections can
// share a CRN across terms, so the CRN is deliberately not unique; the
// surrogate ID is reassigned from 1 on every full catalog replace.
type Course struct {
	ID           int       `db:"id" json:"id"`
	Status       bool      `db:"status" json:"status"`
	Block        string    `db:"block" json:"block"`
	CRN          int       `db:"crn" json:"crn"`
	CourseCode   string    `db:"course_code" json:"course_code"`
	CourseType   string    `db:"course_type" json:"course_type"`
	Day          string    `db:"day" json:"day"`
	BeginTime    string    `db:"begin_time" json:"begin_time"`
	EndTime      string    `db:"end_time" json:"end_time"`
	Instructor   string    `db:"instructor" json:"instructor"`
	BuildingRoom string    `db:"building_room" json:"building_room"`
	StartDate    time.Time `db:"start_date" json:"start_date"`
	EndDate      time.Time `db:"end_date" json:"end_date"`
	MaxCapacity  int       `db:"max_capacity" json:"max_capacity"`
	NumEnrolled  int       `db:"num_enrolled" json:"num_enrolled"`
	FullTime     bool      `db:"full_time" json:"full_time"`
	TermCode     string    `db:"term_code" json:"term_code"`
	Grouping     string    `db:"course_grouping" json:"course_grouping"`
}

// Full reports whether the section has reached its enrollment cap.
func (c Course) Full() bool {
	return c.NumEnrolled >= c.MaxCapacity
}

// CourseCodeCount pairs a course code with an aggregate count, used by
// the popularity dashboards.
type CourseCodeCount struct {
	CourseCode string `db:"course_code" json:"course_code"`
	Count      int    `db:"count" json:"count"`
}
