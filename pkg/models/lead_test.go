package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFingerprintStability(t *testing.T) {
	a := Fingerprint("Joe's Cafe", "555 123 4567", "12 Main St")
	b := Fingerprint("JOE'S   CAFE", "5551234567", "  12  main st ")
	assert.Equal(t, a, b, "case and whitespace changes must collide")

	c := Fingerprint("Joe's Cafe", "5551234568", "12 Main St")
	assert.NotEqual(t, a, c)
}

func TestFingerprintMethodMatchesFunc(t *testing.T) {
	l := Lead{Name: "Acme Tools", Phone: "+15550001111", Address: "1 First Ave"}
	assert.Equal(t, Fingerprint(l.Name, l.Phone, l.Address), l.Fingerprint())
}

func TestMergeFieldFirstWriterWins(t *testing.T) {
	assert.Equal(t, "555-1111", MergeField("555-1111", ""), "empty candidate must not clear")
	assert.Equal(t, "555-1111", MergeField("555-1111", "555-2222"), "non-empty existing must not be overridden")
	assert.Equal(t, "555-2222", MergeField("", "  555-2222 "))
	assert.Equal(t, "", MergeField("", "   "))
}

func TestQualify(t *testing.T) {
	tests := []struct {
		name    string
		lead    Lead
		reasons []string
	}{
		{"no contact info", Lead{Name: "Joe's Cafe", Rating: 4}, []string{"No contact info"}},
		{"low rating", Lead{Name: "Joe's Cafe", Phone: "5551234567", Rating: -1}, []string{"Low rating"}},
		{"invalid name", Lead{Name: "A", Phone: "5551234567"}, []string{"Invalid name"}},
		{"accepted", Lead{Name: "Joe's Cafe", Phone: "5551234567", Rating: 4}, nil},
		{"rating above five accepted", Lead{Name: "Joe's Cafe", Email: "joe@cafe.com", Rating: 9}, nil},
		{"email alone is contact info", Lead{Name: "Joe's Cafe", Email: "joe@cafe.com"}, nil},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.reasons, tc.lead.Qualify())
		})
	}
}

func TestParseSource(t *testing.T) {
	src, ok := ParseSource("1")
	assert.True(t, ok)
	assert.Equal(t, SourceGoogleMaps, src)

	src, ok = ParseSource("Yellow Pages")
	assert.True(t, ok)
	assert.Equal(t, SourceYellowPages, src)

	_, ok = ParseSource("3")
	assert.False(t, ok, "3 means both and is handled by the prompt, not ParseSource")
}
