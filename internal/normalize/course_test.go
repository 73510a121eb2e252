package normalize

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func courseRow() map[string]string {
	return map[string]string{
		ColStatus:       "Active",
		ColBlock:        "1A",
		ColCRN:          "30921.0",
		ColCourse:       "COMP1234",
		ColType:         "LEC",
		ColDay:          "Mon",
		ColBeginTime:    "830",
		ColEndTime:      "1120",
		ColInstructor:   "Jane Smith",
		ColBuildingRoom: "SE12-301",
		ColStartDate:    "2025-09-02 00:00:00",
		ColEndDate:      "2025-12-12 00:00:00",
		ColMaxCapacity:  "24.0",
		ColFullPartTime: "FT",
		ColTerm:         "202530",
	}
}

func TestCourseNormalizesRow(t *testing.T) {
	course, err := Course(courseRow())
	require.NoError(t, err)

	assert.True(t, course.Status)
	assert.Equal(t, "1A", course.Block)
	assert.Equal(t, 30921, course.CRN)
	assert.Equal(t, "COMP1234", course.CourseCode)
	assert.Equal(t, "08:30", course.BeginTime)
	assert.Equal(t, "11:20", course.EndTime)
	assert.Equal(t, time.Date(2025, 9, 2, 0, 0, 0, 0, time.UTC), course.StartDate)
	assert.Equal(t, 24, course.MaxCapacity)
	assert.Equal(t, 0, course.NumEnrolled)
	assert.True(t, course.FullTime)
	assert.Equal(t, "1ACOMP1234", course.Grouping)
}

func TestCourseLenientBooleans(t *testing.T) {
	row := courseRow()
	row[ColStatus] = "Cancelled"
	row[ColFullPartTime] = "PT"

	course, err := Course(row)
	require.NoError(t, err)
	assert.False(t, course.Status)
	assert.False(t, course.FullTime)
}

func TestCourseRejectsBadNumericFields(t *testing.T) {
	for col, bad := range map[string]string{
		ColCRN:         "CRN-1",
		ColBeginTime:   "late",
		ColEndTime:     "2575",
		ColStartDate:   "tomorrow",
		ColMaxCapacity: "-5",
	} {
		row := courseRow()
		row[col] = bad
		_, err := Course(row)
		require.Error(t, err, col)
		var nerr *Error
		require.ErrorAs(t, err, &nerr)
		assert.Equal(t, col, nerr.Field)
		assert.Equal(t, bad, nerr.Value)
	}
}

func TestCourseTruncatesLongStrings(t *testing.T) {
	row := courseRow()
	row[ColCourse] = "COMP123456789"
	row[ColDay] = "Monday"

	course, err := Course(row)
	require.NoError(t, err)
	assert.Equal(t, "COMP1234", course.CourseCode)
	assert.Equal(t, "Mon", course.Day)
	assert.LessOrEqual(t, len(course.Grouping), MaxGroupingLen)
}
