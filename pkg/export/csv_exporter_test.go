package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVExporterRender(t *testing.T) {
	dataset := Dataset{
		Headers: []string{"ID", "Name"},
		Rows: []map[string]string{
			{"ID": "A01234567", "Name": "Jane, Smith"},
			{"ID": "A07654321", "Name": "Sam Lee", "Extra": "ignored"},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, NewCSVExporter().Render(&buf, dataset))
	assert.Equal(t, "ID,Name\nA01234567,\"Jane, Smith\"\nA07654321,Sam Lee\n", buf.String())
}

func TestCSVExporterRenderNoHeaders(t *testing.T) {
	var buf bytes.Buffer
	err := NewCSVExporter().Render(&buf, Dataset{})
	require.Error(t, err)
	assert.Zero(t, buf.Len())
}

func TestPDFExporterRender(t *testing.T) {
	dataset := Dataset{
		Headers: []string{"ID", "Name"},
		Rows:    []map[string]string{{"ID": "A01234567", "Name": "Jane Smith"}},
	}

	var buf bytes.Buffer
	require.NoError(t, NewPDFExporter().Render(&buf, dataset, "Roster"))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))
}

func TestPDFExporterRenderNoHeaders(t *testing.T) {
	var buf bytes.Buffer
	err := NewPDFExporter().Render(&buf, Dataset{}, "Roster")
	require.Error(t, err)
	assert.Zero(t, buf.Len())
}
