package enrich

import (
	"strings"
	"sync"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/THE-AGENTVE/Leads-Scrapper/pkg/models"
)

const detailPageFixture = `
<html><body>
  <a href="tel:+15559998888">Call</a>
  <a class="website-link" href="https://acme-tools.com">Visit site</a>
  <span class="address">99 Industrial Way, Springfield</span>
  <dd class="general-info">Purveyor of fine tools since 1950.</dd>
</body></html>`

func detailDoc(t *testing.T) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(detailPageFixture))
	require.NoError(t, err)
	return doc
}

func TestApplyDetailFieldsFillsMissing(t *testing.T) {
	l := &models.Lead{Name: "Acme Tools", Source: models.SourceYellowPages, DetailsNeeded: true}
	ApplyDetailFields(l, detailDoc(t))

	assert.Equal(t, "+15559998888", l.Phone)
	assert.Equal(t, "https://acme-tools.com", l.Website)
	assert.Equal(t, "99 Industrial Way, Springfield", l.Address)
	assert.Equal(t, "Purveyor of fine tools since 1950.", l.Description)
}

func TestApplyDetailFieldsNeverOverwrites(t *testing.T) {
	l := &models.Lead{
		Name:    "Acme Tools",
		Source:  models.SourceYellowPages,
		Phone:   "5551111111",
		Website: "https://original.example.net",
	}
	ApplyDetailFields(l, detailDoc(t))

	assert.Equal(t, "5551111111", l.Phone, "populated phone must survive enrichment")
	assert.Equal(t, "https://original.example.net", l.Website)
	assert.Equal(t, "99 Industrial Way, Springfield", l.Address, "empty fields are still filled")
}

func TestResolveDetailURL(t *testing.T) {
	assert.Equal(t,
		"https://www.yellowpages.com/biz/acme",
		ResolveDetailURL(models.SourceYellowPages, "/biz/acme"))
	assert.Equal(t,
		"https://www.google.com/maps/place/x",
		ResolveDetailURL(models.SourceGoogleMaps, "/maps/place/x"))
	assert.Equal(t,
		"https://elsewhere.com/p",
		ResolveDetailURL(models.SourceYellowPages, "https://elsewhere.com/p"),
		"absolute URLs pass through")
	assert.Equal(t, "", ResolveDetailURL(models.SourceYellowPages, "  "))
}

func TestForEachProcessesEveryLeadOnce(t *testing.T) {
	leads := make([]*models.Lead, 20)
	for i := range leads {
		leads[i] = &models.Lead{Name: "x"}
	}
	var mu sync.Mutex
	seen := 0
	forEach(leads, 3, func(l *models.Lead) {
		mu.Lock()
		seen++
		l.Category = "done"
		mu.Unlock()
	})
	assert.Equal(t, 20, seen)
	for _, l := range leads {
		assert.Equal(t, "done", l.Category)
	}
}
