package enrich

import (
	"context"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/THE-AGENTVE/Leads-Scrapper/internal/browser"
	"github.com/THE-AGENTVE/Leads-Scrapper/internal/config"
	"github.com/THE-AGENTVE/Leads-Scrapper/pkg/models"
)

var emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)

// placeholderDomains is the denylist of addresses that show up in templates
// and tracking snippets rather than real contact pages.
var placeholderDomains = map[string]struct{}{
	"example.com":    {},
	"example.org":    {},
	"example.net":    {},
	"domain.com":     {},
	"yourdomain.com": {},
	"yoursite.com":   {},
	"mysite.com":     {},
	"test.com":       {},
	"email.com":      {},
	"sentry.io":      {},
	"wixpress.com":   {},
}

// FindEmail scans mailto links first and visible text second for an
// email-shaped token, deduplicates case-insensitively, rejects placeholder
// domains and returns the first accepted address, or empty.
func FindEmail(doc *goquery.Document) string {
	var candidates []string
	doc.Find(`a[href^="mailto:"]`).Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		href = strings.TrimPrefix(href, "mailto:")
		if i := strings.IndexByte(href, '?'); i >= 0 {
			href = href[:i]
		}
		candidates = append(candidates, href)
	})
	candidates = append(candidates, emailPattern.FindAllString(doc.Find("body").Text(), -1)...)

	seen := make(map[string]bool)
	for _, c := range candidates {
		m := emailPattern.FindString(strings.TrimSpace(c))
		if m == "" {
			continue
		}
		lower := strings.ToLower(m)
		if seen[lower] {
			continue
		}
		seen[lower] = true
		if isPlaceholder(lower) {
			continue
		}
		return m
	}
	return ""
}

func isPlaceholder(addr string) bool {
	at := strings.LastIndexByte(addr, '@')
	if at < 0 {
		return true
	}
	domain := addr[at+1:]
	if _, ok := placeholderDomains[domain]; ok {
		return true
	}
	for d := range placeholderDomains {
		if strings.HasSuffix(domain, "."+d) {
			return true
		}
	}
	return false
}

// EmailResolver visits business websites to find a contact email. It runs
// on its own browser group so it never contends with the primary session.
type EmailResolver struct {
	group *browser.Group
	cfg   *config.EnrichConfig
	log   *zap.Logger
}

func NewEmailResolver(group *browser.Group, cfg *config.EnrichConfig, log *zap.Logger) *EmailResolver {
	return &EmailResolver{group: group, cfg: cfg, log: log.With(zap.String("stage", "email"))}
}

// Run resolves emails for every lead with a website and no email yet.
// Blocks until all tasks finish.
func (r *EmailResolver) Run(ctx context.Context, leads []*models.Lead) {
	var pending []*models.Lead
	for _, l := range leads {
		if l.Website != "" && l.Email == "" {
			pending = append(pending, l)
		}
	}
	if len(pending) == 0 {
		return
	}
	r.log.Info("resolving emails", zap.Int("records", len(pending)), zap.Int("workers", r.cfg.EmailWorkers))
	forEach(pending, r.cfg.EmailWorkers, func(l *models.Lead) {
		// throttle request rate between email tasks
		sleepCtx(ctx, randDelay(r.cfg.EmailDelayMin, r.cfg.EmailDelayMax))
		r.resolveOne(ctx, l)
	})
}

func (r *EmailResolver) resolveOne(ctx context.Context, l *models.Lead) {
	target := l.Website
	if !strings.Contains(target, "://") {
		target = "https://" + target
	}

	sess, err := r.group.NewSession()
	if err != nil {
		r.log.Warn("session open failed", zap.String("name", l.Name), zap.Error(err))
		return
	}
	defer sess.Close()

	if err := navigateWithRetry(ctx, sess, target, r.cfg); err != nil {
		r.log.Warn("website navigation abandoned",
			zap.String("name", l.Name), zap.String("url", target), zap.Error(err))
		return
	}

	html, err := sess.HTML()
	if err != nil {
		return
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return
	}

	if email := FindEmail(doc); email != "" {
		l.Email = models.MergeField(l.Email, email)
		r.log.Info("email found", zap.String("name", l.Name), zap.String("email", email))
	}
}
