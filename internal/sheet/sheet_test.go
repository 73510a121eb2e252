package sheet

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/rosterd/roster-sync-api/pkg/errors"
)

func TestParseCSVCleansCells(t *testing.T) {
	csv := "Status*,Course,Instructor\n" +
		"Active,COMP1234,\"Smith,\nJane\"\n" +
		"Active,COMP2345\n"

	table, err := Parse("upload.csv", strings.NewReader(csv))
	require.NoError(t, err)

	assert.Equal(t, []string{"Status", "Course", "Instructor"}, table.Headers)
	require.Len(t, table.Records, 2)
	assert.Equal(t, []string{"Active", "COMP1234", "Smith,Jane"}, table.Records[0])
	// Short records pad missing trailing cells with empties.
	assert.Equal(t, []string{"Active", "COMP2345", ""}, table.Records[1])
}

func TestParseRejectsUnknownExtension(t *testing.T) {
	_, err := Parse("upload.pdf", strings.NewReader("x"))
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrInvalidFileType.Code, appErr.Code)
}

func TestParseRejectsEmptyFile(t *testing.T) {
	_, err := Parse("upload.csv", strings.NewReader(""))
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrInvalidUploadFile.Code, appErr.Code)
}

func TestDropColumns(t *testing.T) {
	table := &Table{
		Headers: []string{"Course", "Hrs", "Sorted By", "Day"},
		Records: [][]string{{"COMP1234", "3", "x", "Mon"}},
	}
	table.DropColumns("Hrs", "Sorted By", "Not Present")

	assert.Equal(t, []string{"Course", "Day"}, table.Headers)
	assert.Equal(t, [][]string{{"COMP1234", "Mon"}}, table.Records)
}

func TestRows(t *testing.T) {
	table := &Table{
		Headers: []string{"Course", "Day"},
		Records: [][]string{{"COMP1234", "Mon"}, {"COMP2345", "Tue"}},
	}
	rows := table.Rows()
	require.Len(t, rows, 2)
	assert.Equal(t, "COMP1234", rows[0]["Course"])
	assert.Equal(t, "Tue", rows[1]["Day"])
}
