package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStudentNormalizesRowWithDensePreferences(t *testing.T) {
	row := map[string]string{
		ColStudentID: "A01234567",
		ColFirstName: "Jane",
		ColLastName:  "Smith",
		ColEmail:     "jane@example.edu",
		ColTermCode:  "202530",
	}
	row["Preference 1"] = "COMP1234"
	row["Preference 3"] = "COMP2345"
	row["Preference 8"] = "COMP3456"

	student, prefs, err := Student(row)
	require.NoError(t, err)
	assert.Equal(t, "A01234567", student.ID)
	assert.False(t, student.IsCompleted)
	assert.False(t, student.IsApprovedByProgramHeads)
	assert.Equal(t, []string{"COMP1234", "COMP2345", "COMP3456"}, prefs)
}

func TestStudentTruncatesFields(t *testing.T) {
	row := map[string]string{
		ColStudentID: "A0123456789",
		ColFirstName: "Jane",
		ColLastName:  "Smith",
	}
	student, prefs, err := Student(row)
	require.NoError(t, err)
	assert.Equal(t, "A01234567", student.ID)
	assert.Empty(t, prefs)
}

func TestStudentRejectsMissingID(t *testing.T) {
	_, _, err := Student(map[string]string{ColFirstName: "Jane"})
	require.Error(t, err)
	var nerr *Error
	require.ErrorAs(t, err, &nerr)
	assert.Equal(t, ColStudentID, nerr.Field)
}
