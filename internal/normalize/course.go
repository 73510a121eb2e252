package normalize

import (
	"github.com/rosterd/roster-sync-api/internal/models"
)

// Raw column names of the course offering export.
const (
	ColStatus       = "Status"
	ColBlock        = "Block"
	ColCRN          = "CRN"
	ColCourse       = "Course"
	ColType         = "Type"
	ColDay          = "Day"
	ColBeginTime    = "Begin Time"
	ColEndTime      = "End Time"
	ColInstructor   = "Instructor"
	ColBuildingRoom = "Bldg/Room"
	ColStartDate    = "Start Date"
	ColEndDate      = "End Date"
	ColMaxCapacity  = "Max."
	ColFullPartTime = "FT/PT"
	ColTerm         = "Term"
)

// Byte caps applied to course string fields.
const (
	MaxBlockLen        = 8
	MaxCourseCodeLen   = 8
	MaxCourseTypeLen   = 4
	MaxDayLen          = 3
	MaxInstructorLen   = 256
	MaxBuildingRoomLen = 10
	MaxTermCodeLen     = 6
	MaxGroupingLen     = 16
)

// Enumerated source values that map to the true branch. Anything else
// silently maps to false rather than failing the row.
const (
	statusActive = "Active"
	fullTime     = "FT"
)

// Course converts one cleaned spreadsheet row into a canonical course
// record. The instructor cell is expected to be pre-merged; it is only
// truncated here. The grouping key is derived from block and course
// code and identifies every section of one logical offering.
func Course(row map[string]string) (*models.Course, error) {
	crn, err := ParseCount(row[ColCRN])
	if err != nil {
		return nil, fieldErr(ColCRN, row[ColCRN], err.Error())
	}
	begin, err := ParseClock(row[ColBeginTime])
	if err != nil {
		return nil, fieldErr(ColBeginTime, row[ColBeginTime], err.Error())
	}
	end, err := ParseClock(row[ColEndTime])
	if err != nil {
		return nil, fieldErr(ColEndTime, row[ColEndTime], err.Error())
	}
	startDate, err := ParseDate(row[ColStartDate])
	if err != nil {
		return nil, fieldErr(ColStartDate, row[ColStartDate], err.Error())
	}
	endDate, err := ParseDate(row[ColEndDate])
	if err != nil {
		return nil, fieldErr(ColEndDate, row[ColEndDate], err.Error())
	}
	maxCapacity, err := ParseCount(row[ColMaxCapacity])
	if err != nil {
		return nil, fieldErr(ColMaxCapacity, row[ColMaxCapacity], err.Error())
	}

	block := Truncate(row[ColBlock], MaxBlockLen)
	code := Truncate(row[ColCourse], MaxCourseCodeLen)

	return &models.Course{
		Status:       row[ColStatus] == statusActive,
		Block:        block,
		CRN:          crn,
		CourseCode:   code,
		CourseType:   Truncate(row[ColType], MaxCourseTypeLen),
		Day:          Truncate(row[ColDay], MaxDayLen),
		BeginTime:    begin,
		EndTime:      end,
		Instructor:   Truncate(row[ColInstructor], MaxInstructorLen),
		BuildingRoom: Truncate(row[ColBuildingRoom], MaxBuildingRoomLen),
		StartDate:    startDate,
		EndDate:      endDate,
		MaxCapacity:  maxCapacity,
		FullTime:     row[ColFullPartTime] == fullTime,
		TermCode:     Truncate(row[ColTerm], MaxTermCodeLen),
		Grouping:     Truncate(block+code, MaxGroupingLen),
	}, nil
}
