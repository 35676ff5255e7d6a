package extract

import (
	"encoding/json"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/THE-AGENTVE/Leads-Scrapper/pkg/models"
)

// xssiPrefix guards listing endpoint payloads; it must be stripped before
// JSON parsing.
const xssiPrefix = `)]}'`

// Dense positional slots used by the array-shaped listing payload. The same
// endpoint is also known to emit an object shape; parseBusiness falls back to
// named fields for it.
const (
	posRating      = 4
	posRatingCount = 5
	posWebsite     = 6
	posPhone       = 7
	posDetail      = 10
	posName        = 11
	posCategory    = 13
	posAddress     = 14
	posDescription = 15
)

// FromPayloads runs the primary extraction path over captured response
// bodies. HTML-shaped payloads are rejected without a JSON parse attempt.
// Output order is the insertion order of first-seen names, so identical
// input always yields identical output.
func FromPayloads(payloads []string, source models.Source) []*models.Lead {
	seen := make(map[string]bool)
	var leads []*models.Lead

	for _, body := range payloads {
		s := StripPayloadPrefix(body)
		if s == "" || IsHTMLShaped(s) {
			continue
		}
		var root any
		if err := json.Unmarshal([]byte(s), &root); err != nil {
			continue
		}
		for _, entry := range probeBusinessArrays(root) {
			lead := parseBusiness(entry, source)
			if lead == nil {
				continue
			}
			key := strings.ToLower(lead.Name)
			if seen[key] {
				continue
			}
			seen[key] = true
			leads = append(leads, lead)
		}
	}
	return leads
}

// StripPayloadPrefix removes the XSSI guard (and a leading comment line)
// from a raw payload body.
func StripPayloadPrefix(body string) string {
	s := strings.TrimSpace(body)
	if strings.HasPrefix(s, "/*") {
		if end := strings.Index(s, "*/"); end >= 0 {
			s = s[end+2:]
		}
	}
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, xssiPrefix) {
		s = strings.TrimSpace(s[len(xssiPrefix):])
	}
	return s
}

// IsHTMLShaped reports whether a payload is rendered markup rather than
// structured data: a leading doctype/html tag or embedded body/script/div
// markers.
func IsHTMLShaped(body string) bool {
	lower := strings.ToLower(strings.TrimSpace(body))
	if strings.HasPrefix(lower, "<!doctype") || strings.HasPrefix(lower, "<html") {
		return true
	}
	for _, marker := range []string{"<body", "<script", "<div"} {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// probeBusinessArrays locates the business container by trying a fixed
// priority list of known payload shapes: a wrapped-JSON "d" field, the
// positional locations [0][1] and [64], then the named "results"/"features"
// fields.
func probeBusinessArrays(root any) []any {
	switch v := root.(type) {
	case map[string]any:
		if wrapped, ok := v["d"].(string); ok {
			var nested any
			if json.Unmarshal([]byte(StripPayloadPrefix(wrapped)), &nested) == nil {
				if entries := probeBusinessArrays(nested); len(entries) > 0 {
					return entries
				}
			}
		}
		for _, key := range []string{"results", "features"} {
			if arr, ok := v[key].([]any); ok && len(arr) > 0 {
				return arr
			}
		}
	case []any:
		for _, path := range [][]int{{0, 1}, {64}} {
			if arr := digArray(v, path); len(arr) > 0 {
				return arr
			}
		}
	}
	return nil
}

func digArray(arr []any, path []int) []any {
	cur := any(arr)
	for _, idx := range path {
		a, ok := cur.([]any)
		if !ok || idx < 0 || idx >= len(a) {
			return nil
		}
		cur = a[idx]
	}
	out, _ := cur.([]any)
	return out
}

// parseBusiness reads one container entry, positional-index first with a
// named-field fallback. Entries without a usable name are discarded.
func parseBusiness(entry any, source models.Source) *models.Lead {
	name := CleanText(asString(field(entry, posName, "name", "title")))
	if utf8.RuneCountInString(name) < 2 {
		return nil
	}

	lead := &models.Lead{
		Name:        name,
		Phone:       NormalizePhone(asString(field(entry, posPhone, "phone", "phoneNumber"))),
		Address:     CleanText(asString(field(entry, posAddress, "address", "fullAddress"))),
		Category:    CleanText(asString(field(entry, posCategory, "category", "type"))),
		Website:     strings.TrimSpace(asString(field(entry, posWebsite, "website", "url"))),
		Description: CleanText(asString(field(entry, posDescription, "description", "snippet"))),
		Rating:      asFloat(field(entry, posRating, "rating", "stars")),
		RatingCount: ParseRatingCount(asString(field(entry, posRatingCount, "reviews", "ratingCount"))),
		DetailURL:   strings.TrimSpace(asString(field(entry, posDetail, "detailUrl", "link", "placeUrl"))),
		Source:      source,
	}
	lead.DetailsNeeded = !lead.HasFullDetail()
	return lead
}

// field reads one logical field from an entry: by position for the dense
// array shape, by name for the object shape.
func field(entry any, pos int, names ...string) any {
	if arr, ok := entry.([]any); ok {
		if pos >= 0 && pos < len(arr) && arr[pos] != nil {
			return arr[pos]
		}
		return nil
	}
	if m, ok := entry.(map[string]any); ok {
		for _, n := range names {
			if v, ok := m[n]; ok && v != nil {
				return v
			}
		}
	}
	return nil
}

func asString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	}
	return ""
}

func asFloat(v any) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case string:
		return ParseRating(t)
	}
	return 0
}
