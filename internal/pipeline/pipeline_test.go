package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/THE-AGENTVE/Leads-Scrapper/pkg/models"
)

func TestDedupeAgainstExisting(t *testing.T) {
	known := &models.Lead{Name: "Joe's Cafe", Phone: "5551234567", Address: "12 Main St"}
	fresh := &models.Lead{Name: "Acme Tools", Phone: "5550001111"}

	existing := map[string]bool{known.Fingerprint(): true}
	kept, duplicates := Dedupe([]*models.Lead{known, fresh}, existing)

	assert.Equal(t, 1, duplicates)
	if assert.Len(t, kept, 1) {
		assert.Equal(t, "Acme Tools", kept[0].Name)
	}
}

func TestDedupeWithinBatchFirstWins(t *testing.T) {
	batch := []*models.Lead{
		{Name: "Joe's Cafe", Phone: "555 123 4567", Address: "12 Main St"},
		{Name: "JOE'S  CAFE", Phone: "5551234567", Address: " 12 main st "},
		{Name: "Other Shop"},
	}

	kept, duplicates := Dedupe(batch, nil)

	assert.Equal(t, 1, duplicates)
	if assert.Len(t, kept, 2) {
		assert.Equal(t, "Joe's Cafe", kept[0].Name)
		assert.Equal(t, "Other Shop", kept[1].Name)
	}
}

func TestDedupeDoesNotMutateExisting(t *testing.T) {
	existing := map[string]bool{"somekey": true}
	Dedupe([]*models.Lead{{Name: "New Place"}}, existing)
	assert.Len(t, existing, 1)
}

func TestMergeByNamePrefersPaginatedRecords(t *testing.T) {
	primary := []*models.Lead{
		{Name: "Joe's Cafe", Phone: "5551234567"},
	}
	secondary := []*models.Lead{
		{Name: "joe's cafe"}, // same listing surfaced by the extractor
		{Name: "Acme Tools"},
	}

	out := mergeByName(primary, secondary)

	if assert.Len(t, out, 2) {
		assert.Equal(t, "Joe's Cafe", out[0].Name)
		assert.Equal(t, "5551234567", out[0].Phone)
		assert.Equal(t, "Acme Tools", out[1].Name)
	}
}
