package normalize

import (
	"fmt"

	"github.com/rosterd/roster-sync-api/internal/models"
)

// Raw column names of the student roster export. Preference columns are
// "Preference 1" through "Preference 8".
const (
	ColStudentID = "ID"
	ColFirstName = "First Name"
	ColLastName  = "Last Name"
	ColEmail     = "Email"
	ColTermCode  = "Term Code"

	prefColumnFormat = "Preference %d"
)

// MaxPreferences is the highest ranked preference column read per row.
const MaxPreferences = 8

// Byte caps applied to student string fields.
const (
	StudentIDLen      = 9
	MaxNameLen        = 50
	MaxEmailLen       = 100
	MaxStudentTermLen = 6
)

// Student converts one cleaned roster row into a canonical student
// record plus the ordered course codes of its non-empty preference
// columns. Flags always start false; imports never complete or approve.
func Student(row map[string]string) (*models.Student, []string, error) {
	id := row[ColStudentID]
	if id == "" {
		return nil, nil, fieldErr(ColStudentID, id, "missing student ID")
	}

	prefs := make([]string, 0, MaxPreferences)
	for i := 1; i <= MaxPreferences; i++ {
		code := row[fmt.Sprintf(prefColumnFormat, i)]
		if code == "" {
			continue
		}
		prefs = append(prefs, Truncate(code, MaxCourseCodeLen))
	}

	return &models.Student{
		ID:        Truncate(id, StudentIDLen),
		FirstName: Truncate(row[ColFirstName], MaxNameLen),
		LastName:  Truncate(row[ColLastName], MaxNameLen),
		Email:     Truncate(row[ColEmail], MaxEmailLen),
		TermCode:  Truncate(row[ColTermCode], MaxStudentTermLen),
	}, prefs, nil
}
