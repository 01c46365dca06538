package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDataset() Dataset {
	return Dataset{
		Headers: []string{"Date", "Class", "Member"},
		Rows: []map[string]string{
			{"Date": "2025-04-16", "Class": "Morning HIIT", "Member": "Alex Doe"},
			{"Date": "2025-04-16", "Class": "Morning HIIT", "Member": "Sam Lee"},
		},
	}
}

func TestCSVExporterRender(t *testing.T) {
	out, err := NewCSVExporter().Render(sampleDataset())
	require.NoError(t, err)

	expected := "Date,Class,Member\n" +
		"2025-04-16,Morning HIIT,Alex Doe\n" +
		"2025-04-16,Morning HIIT,Sam Lee\n"
	assert.Equal(t, expected, string(out))
}

func TestCSVExporterRejectsEmptyHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	require.Error(t, err)
}

func TestCSVExporterFillsMissingCells(t *testing.T) {
	ds := Dataset{
		Headers: []string{"Date", "Class"},
		Rows:    []map[string]string{{"Date": "2025-04-16"}},
	}
	out, err := NewCSVExporter().Render(ds)
	require.NoError(t, err)
	assert.Equal(t, "Date,Class\n2025-04-16,\n", string(out))
}

func TestPDFExporterRender(t *testing.T) {
	out, err := NewPDFExporter().Render(sampleDataset(), "Attendance")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestPDFExporterRejectsEmptyHeaders(t *testing.T) {
	_, err := NewPDFExporter().Render(Dataset{}, "Attendance")
	require.Error(t, err)
}
