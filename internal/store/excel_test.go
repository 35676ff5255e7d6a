package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/THE-AGENTVE/Leads-Scrapper/pkg/models"
)

func sampleBatch() []*models.Lead {
	return []*models.Lead{
		{Name: "Joe's Cafe", Phone: "5551234567", Address: "12 Main St", Source: models.SourceGoogleMaps, Rating: 4.5, RatingCount: "132", IsRelevant: true},
		{Name: "Acme Tools", Phone: "5550001111", Address: "1 First Ave", Source: models.SourceYellowPages},
	}
}

func TestMergeRowsCreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "leads.xlsx")

	appended, skipped, err := MergeRows(path, sampleBatch())
	require.NoError(t, err)
	assert.Equal(t, 2, appended)
	assert.Equal(t, 0, skipped)

	rows, err := ReadRows(path)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Joe's Cafe", rows[0].Name)
	assert.Equal(t, 4.5, rows[0].Rating)
	assert.Equal(t, "132", rows[0].RatingCount)
	assert.Equal(t, models.SourceGoogleMaps, rows[0].Source)
	assert.True(t, rows[0].IsRelevant)
}

func TestMergeRowsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "leads.xlsx")

	appended, _, err := MergeRows(path, sampleBatch())
	require.NoError(t, err)
	assert.Equal(t, 2, appended)

	// Second run of the same batch appends nothing.
	appended, skipped, err := MergeRows(path, sampleBatch())
	require.NoError(t, err)
	assert.Equal(t, 0, appended)
	assert.Equal(t, 2, skipped)

	rows, err := ReadRows(path)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestMergeRowsCollapsesCaseAndWhitespaceVariants(t *testing.T) {
	path := filepath.Join(t.TempDir(), "leads.xlsx")

	// Two raw records for the same business, differing only in casing and
	// whitespace, must collapse to one persisted row.
	batch := []*models.Lead{
		{Name: "Joe's Cafe", Phone: "555 123 4567", Address: "12 Main St"},
		{Name: "JOE'S  CAFE", Phone: "5551234567", Address: " 12 main st "},
	}
	appended, skipped, err := MergeRows(path, batch)
	require.NoError(t, err)
	assert.Equal(t, 1, appended)
	assert.Equal(t, 1, skipped)

	rows, err := ReadRows(path)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Joe's Cafe", rows[0].Name, "first writer wins")
}

func TestReadRowsMissingFile(t *testing.T) {
	rows, err := ReadRows(filepath.Join(t.TempDir(), "absent.xlsx"))
	require.NoError(t, err)
	assert.Nil(t, rows)
}
