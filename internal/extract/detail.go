package extract

import (
	"github.com/PuerkitoBio/goquery"

	"github.com/THE-AGENTVE/Leads-Scrapper/pkg/models"
)

// detailChains extract the missing contact fields from a rendered detail
// page. Structured attributes are preferred over free text.
var detailChains = map[models.Source]map[string]fieldChain{
	models.SourceGoogleMaps: {
		"phone": {
			{`button[data-item-id^="phone"]`, "aria-label"},
			{`a[href^="tel:"]`, "href"},
			{`span[aria-label^="Phone"]`, "aria-label"},
		},
		"website": {
			{`a[data-item-id="authority"]`, "href"},
			{`a[aria-label^="Website"]`, "href"},
		},
		"address": {
			{`button[data-item-id="address"]`, "aria-label"},
			{`div[data-item-id="address"]`, ""},
		},
		"description": {
			{`div.PYvSYb`, ""},
			{`meta[name="description"]`, "content"},
		},
	},
	models.SourceYellowPages: {
		"phone": {
			{`a[href^="tel:"]`, "href"},
			{`p.phone`, ""},
			{`div.phones`, ""},
		},
		"website": {
			{`a.website-link`, "href"},
			{`a.track-visit-website`, "href"},
		},
		"address": {
			{`span.address`, ""},
			{`h2.address`, ""},
			{`p.adr`, ""},
		},
		"description": {
			{`dd.general-info`, ""},
			{`section.about p`, ""},
			{`meta[name="description"]`, "content"},
		},
	},
}

// DetailFields runs the detail-page chains over a parsed document and
// returns the raw first-match value per field. Missing fields come back
// empty; the caller merges them first-writer-wins.
func DetailFields(doc *goquery.Document, source models.Source) map[string]string {
	chains, ok := detailChains[source]
	if !ok {
		return nil
	}
	out := make(map[string]string, len(chains))
	for name, chain := range chains {
		out[name] = chain.extract(doc.Selection)
	}
	return out
}
