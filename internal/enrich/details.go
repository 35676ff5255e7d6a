package enrich

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/THE-AGENTVE/Leads-Scrapper/internal/browser"
	"github.com/THE-AGENTVE/Leads-Scrapper/internal/config"
	"github.com/THE-AGENTVE/Leads-Scrapper/internal/extract"
	"github.com/THE-AGENTVE/Leads-Scrapper/pkg/models"
)

// detailBaseURLs are the origins relative detail links resolve against.
var detailBaseURLs = map[models.Source]string{
	models.SourceGoogleMaps:  "https://www.google.com",
	models.SourceYellowPages: "https://www.yellowpages.com",
}

// DetailEnricher visits each record's detail surface and fills missing
// phone/website/address/description fields.
type DetailEnricher struct {
	group *browser.Group
	cfg   *config.EnrichConfig
	log   *zap.Logger
}

func NewDetailEnricher(group *browser.Group, cfg *config.EnrichConfig, log *zap.Logger) *DetailEnricher {
	return &DetailEnricher{group: group, cfg: cfg, log: log.With(zap.String("stage", "details"))}
}

// Run enriches every lead that still needs details and has a detail URL;
// records without one pass through unchanged. Blocks until all tasks finish.
func (e *DetailEnricher) Run(ctx context.Context, leads []*models.Lead) {
	var pending []*models.Lead
	for _, l := range leads {
		if l.DetailsNeeded && l.DetailURL != "" {
			pending = append(pending, l)
		}
	}
	if len(pending) == 0 {
		return
	}
	e.log.Info("enriching details", zap.Int("records", len(pending)), zap.Int("workers", e.cfg.DetailWorkers))
	forEach(pending, e.cfg.DetailWorkers, func(l *models.Lead) {
		e.enrichOne(ctx, l)
	})
}

func (e *DetailEnricher) enrichOne(ctx context.Context, l *models.Lead) {
	// The attempt is made exactly once per record; whatever happens, the
	// record keeps the fields it already had.
	defer func() { l.DetailsNeeded = false }()

	target := ResolveDetailURL(l.Source, l.DetailURL)
	if target == "" {
		return
	}

	sess, err := e.group.NewSession()
	if err != nil {
		e.log.Warn("session open failed", zap.String("name", l.Name), zap.Error(err))
		return
	}
	defer sess.Close()

	if err := navigateWithRetry(ctx, sess, target, e.cfg); err != nil {
		e.log.Warn("detail navigation abandoned",
			zap.String("name", l.Name), zap.String("url", target), zap.Error(err))
		return
	}

	html, err := sess.HTML()
	if err != nil {
		e.log.Warn("detail markup failed", zap.String("name", l.Name), zap.Error(err))
		return
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return
	}

	ApplyDetailFields(l, doc)
}

// ApplyDetailFields merges extracted detail-page fields into the lead,
// first-writer-wins per field.
func ApplyDetailFields(l *models.Lead, doc *goquery.Document) {
	fields := extract.DetailFields(doc, l.Source)
	l.Phone = models.MergeField(l.Phone, extract.NormalizePhone(fields["phone"]))
	l.Website = models.MergeField(l.Website, fields["website"])
	l.Address = models.MergeField(l.Address, extract.CleanText(fields["address"]))
	l.Description = models.MergeField(l.Description, extract.CleanText(fields["description"]))
}

// ResolveDetailURL resolves a possibly-relative detail link against the
// source's base origin.
func ResolveDetailURL(source models.Source, detail string) string {
	detail = strings.TrimSpace(detail)
	if detail == "" {
		return ""
	}
	u, err := url.Parse(detail)
	if err != nil {
		return ""
	}
	if u.IsAbs() {
		return detail
	}
	base, err := url.Parse(detailBaseURLs[source])
	if err != nil || base.Host == "" {
		return ""
	}
	return base.ResolveReference(u).String()
}

// navigateWithRetry retries a navigation with a randomized delay between
// attempts, then gives up so the task completes with partial data.
func navigateWithRetry(ctx context.Context, sess *browser.Session, target string, cfg *config.EnrichConfig) error {
	var err error
	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if attempt > 0 {
			time.Sleep(randDelay(cfg.RetryDelayMin, cfg.RetryDelayMax))
		}
		if err = sess.Navigate(target); err == nil {
			return nil
		}
	}
	return err
}
