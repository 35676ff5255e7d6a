package enrich

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func docFrom(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func TestFindEmailPrefersMailto(t *testing.T) {
	doc := docFrom(t, `
	<body>
	  <p>Reach us at info@acme-tools.com for quotes.</p>
	  <a href="mailto:sales@acme-tools.com?subject=hi">Email sales</a>
	</body>`)
	assert.Equal(t, "sales@acme-tools.com", FindEmail(doc))
}

func TestFindEmailFromVisibleText(t *testing.T) {
	doc := docFrom(t, `<body><footer>Contact: Info@Acme-Tools.com</footer></body>`)
	assert.Equal(t, "Info@Acme-Tools.com", FindEmail(doc))
}

func TestFindEmailRejectsPlaceholderDomains(t *testing.T) {
	doc := docFrom(t, `
	<body>
	  <a href="mailto:user@example.com">template</a>
	  <p>noreply@o1234.sentry.io</p>
	  <p>real@business.io</p>
	</body>`)
	assert.Equal(t, "real@business.io", FindEmail(doc))
}

func TestFindEmailDedupesCaseInsensitively(t *testing.T) {
	doc := docFrom(t, `
	<body>
	  <a href="mailto:INFO@example.com">one</a>
	  <p>info@example.com info@example.com</p>
	</body>`)
	assert.Equal(t, "", FindEmail(doc), "all candidates are placeholder duplicates")
}

func TestFindEmailNone(t *testing.T) {
	doc := docFrom(t, `<body><p>no contact information here</p></body>`)
	assert.Equal(t, "", FindEmail(doc))
}

func TestIsPlaceholder(t *testing.T) {
	assert.True(t, isPlaceholder("a@example.com"))
	assert.True(t, isPlaceholder("a@sub.test.com"))
	assert.False(t, isPlaceholder("a@testable.com"), "suffix match must respect domain boundaries")
	assert.False(t, isPlaceholder("a@realbusiness.com"))
}
