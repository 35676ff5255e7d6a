package extract

import (
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"github.com/THE-AGENTVE/Leads-Scrapper/pkg/models"
)

// strategy is one attempt at a field: a selector plus the attribute to read,
// or the node text when attr is empty. An empty selector targets the listing
// node itself.
type strategy struct {
	selector string
	attr     string
}

// fieldChain is an ordered strategy list, evaluated first-success-wins.
type fieldChain []strategy

func (fc fieldChain) extract(sel *goquery.Selection) string {
	for _, st := range fc {
		node := sel
		if st.selector != "" {
			node = sel.Find(st.selector).First()
		}
		if node.Length() == 0 {
			continue
		}
		var v string
		if st.attr != "" {
			v, _ = node.Attr(st.attr)
		} else {
			v = node.Text()
		}
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

// listingSelectors locates candidate listing nodes. The first family that
// yields at least one match is used exclusively; families are never mixed.
var listingSelectors = map[models.Source][]string{
	models.SourceGoogleMaps: {
		`div[role="feed"] div[role="article"]`,
		`div[role="article"]`,
		`div.Nv2PK`,
	},
	models.SourceYellowPages: {
		`div.search-results div.result`,
		`div.srp-listing`,
		`div.listing`,
		`li.business-card`,
	},
}

var fieldChains = map[models.Source]map[string]fieldChain{
	models.SourceGoogleMaps: {
		"name": {
			{`a[aria-label]`, "aria-label"},
			{`div.qBF1Pd`, ""},
			{`div.fontHeadlineSmall`, ""},
		},
		"rating": {
			{`span[role="img"]`, "aria-label"},
			{`span.MW4etd`, ""},
		},
		"ratingCount": {
			{`span.UY7F9`, ""},
			{`span[role="img"]`, "aria-label"},
		},
		"category": {
			{`div.W4Efsd > span:first-child`, ""},
		},
		"address": {
			{`div.W4Efsd > span:nth-child(2)`, ""},
		},
		"phone": {
			{`span.UsdlK`, ""},
			{`span[aria-label^="Phone"]`, "aria-label"},
		},
		"website": {
			{`a[data-value="Website"]`, "href"},
		},
		"description": {
			{`div.fontBodyMedium > div:last-child`, ""},
		},
		"detail": {
			{`a[href*="/maps/place"]`, "href"},
			{``, "href"},
		},
	},
	models.SourceYellowPages: {
		"name": {
			{`a.business-name span`, ""},
			{`a.business-name`, ""},
			{`h2 a`, ""},
			{`h2`, ""},
		},
		"rating": {
			{`div.ratings`, "data-rating"},
			{`span.rating-stars`, "aria-label"},
		},
		"ratingCount": {
			{`span.count`, ""},
		},
		"category": {
			{`div.categories a`, ""},
			{`div.categories`, ""},
		},
		"address": {
			{`div.street-address`, ""},
			{`p.adr`, ""},
			{`div.locality`, ""},
		},
		"phone": {
			{`div.phones`, ""},
			{`a[href^="tel:"]`, "href"},
		},
		"website": {
			{`a.track-visit-website`, "href"},
			{`a.website-link`, "href"},
		},
		"description": {
			{`p.body`, ""},
			{`div.snippet`, ""},
		},
		"detail": {
			{`a.business-name`, "href"},
			{`h2 a`, "href"},
		},
	},
}

// FromMarkup runs the fallback extraction path over rendered markup.
func FromMarkup(html string, source models.Source) ([]*models.Lead, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, err
	}

	var nodes *goquery.Selection
	for _, sel := range listingSelectors[source] {
		if s := doc.Find(sel); s.Length() > 0 {
			nodes = s
			break
		}
	}
	if nodes == nil {
		return nil, nil
	}

	chains := fieldChains[source]
	seen := make(map[string]bool)
	var leads []*models.Lead

	nodes.Each(func(_ int, sel *goquery.Selection) {
		name := CleanText(chains["name"].extract(sel))
		if utf8.RuneCountInString(name) < 2 {
			return
		}
		key := strings.ToLower(name)
		if seen[key] {
			return
		}
		seen[key] = true

		lead := &models.Lead{
			Name:        name,
			Phone:       NormalizePhone(chains["phone"].extract(sel)),
			Address:     CleanText(chains["address"].extract(sel)),
			Category:    CleanText(chains["category"].extract(sel)),
			Website:     chains["website"].extract(sel),
			Description: CleanText(chains["description"].extract(sel)),
			Rating:      ParseRating(chains["rating"].extract(sel)),
			RatingCount: ParseRatingCount(chains["ratingCount"].extract(sel)),
			DetailURL:   chains["detail"].extract(sel),
			Source:      source,
		}
		lead.DetailsNeeded = !lead.HasFullDetail()
		leads = append(leads, lead)
	})

	return leads, nil
}

// Records is the dual-strategy entry point: payloads first, markup when the
// primary path yields nothing.
func Records(payloads []string, html string, source models.Source) []*models.Lead {
	if leads := FromPayloads(payloads, source); len(leads) > 0 {
		return leads
	}
	leads, _ := FromMarkup(html, source)
	return leads
}
