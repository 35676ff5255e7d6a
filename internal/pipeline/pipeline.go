// Package pipeline wires the stages together: acquisition, dual-strategy
// extraction, enrichment, classification, qualification and persistence,
// with a full barrier between stages. Best-effort completeness governs:
// only a browser-launch failure or a CAPTCHA on the sole requested source
// ends a run early.
package pipeline

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/THE-AGENTVE/Leads-Scrapper/internal/acquire"
	"github.com/THE-AGENTVE/Leads-Scrapper/internal/browser"
	"github.com/THE-AGENTVE/Leads-Scrapper/internal/classify"
	"github.com/THE-AGENTVE/Leads-Scrapper/internal/config"
	"github.com/THE-AGENTVE/Leads-Scrapper/internal/enrich"
	"github.com/THE-AGENTVE/Leads-Scrapper/internal/extract"
	"github.com/THE-AGENTVE/Leads-Scrapper/internal/store"
	"github.com/THE-AGENTVE/Leads-Scrapper/pkg/models"
)

// Stats summarizes one run.
type Stats struct {
	Found          int
	Extracted      int
	Qualified      int
	Rejected       int
	Duplicates     int
	Appended       int
	SkippedRows    int
	Upserted       int
	UpsertFailed   int
	SourceFailures int
}

// Runner owns the run-scoped resources and executes the stages in order.
type Runner struct {
	cfg        *config.AppConfig
	log        *zap.Logger
	classifier *classify.Client
	documents  *store.Mongo // nil selects a file-only run
}

func New(cfg *config.AppConfig, log *zap.Logger, classifier *classify.Client, documents *store.Mongo) *Runner {
	return &Runner{cfg: cfg, log: log, classifier: classifier, documents: documents}
}

// Run executes the full pipeline and reports stats. Partial failures are
// counted, logged and survived.
func (r *Runner) Run(ctx context.Context) (*Stats, error) {
	stats := &Stats{}
	drivers := r.drivers()
	if len(drivers) == 0 {
		return stats, errors.New("no valid sources selected")
	}

	primary := browser.NewGroup(&r.cfg.Browser, r.log)
	defer primary.Close()

	leads, err := r.acquireAll(ctx, primary, drivers, stats)
	if err != nil {
		return stats, err
	}
	if len(leads) == 0 {
		r.log.Warn("no leads discovered")
		return stats, nil
	}

	enrich.NewDetailEnricher(primary, &r.cfg.Enrich, r.log).Run(ctx, leads)

	if r.cfg.Search.ExtractEmails {
		// Isolated session group so email traffic never contends with the
		// primary browser.
		emailGroup := browser.NewGroup(&r.cfg.Browser, r.log)
		enrich.NewEmailResolver(emailGroup, &r.cfg.Enrich, r.log).Run(ctx, leads)
		emailGroup.Close()
	}

	r.classifyAll(ctx, leads)

	qualified := r.qualify(leads, stats)
	batch, duplicates := Dedupe(qualified, r.existingFingerprints(ctx))
	stats.Duplicates = duplicates

	r.persist(ctx, batch, stats)

	r.log.Info("pipeline complete",
		zap.Int("found", stats.Found),
		zap.Int("extracted", stats.Extracted),
		zap.Int("qualified", stats.Qualified),
		zap.Int("rejected", stats.Rejected),
		zap.Int("duplicates", stats.Duplicates),
		zap.Int("appended", stats.Appended),
		zap.Int("upserted", stats.Upserted),
		zap.Int("source_failures", stats.SourceFailures))

	return stats, nil
}

// acquireAll runs acquisition strictly sequentially, one source at a time,
// one session per source, closed on every exit path.
func (r *Runner) acquireAll(ctx context.Context, group *browser.Group, drivers []acquire.Driver, stats *Stats) ([]*models.Lead, error) {
	var leads []*models.Lead

	for _, d := range drivers {
		capture, err := r.acquireOne(ctx, group, d)
		if err != nil {
			if errors.Is(err, acquire.ErrCaptcha) && len(drivers) == 1 {
				return nil, err // sole requested source blocked, nothing left to do
			}
			stats.SourceFailures++
			r.log.Error("source acquisition failed",
				zap.String("source", string(d.Source())), zap.Error(err))
			continue
		}

		records := extract.Records(capture.Payloads, capture.HTML, d.Source())
		records = mergeByName(capture.Records, records)
		stats.Found += capture.Found
		stats.Extracted += len(records)
		leads = append(leads, records...)
	}
	return leads, nil
}

func (r *Runner) acquireOne(ctx context.Context, group *browser.Group, d acquire.Driver) (*acquire.Capture, error) {
	sess, err := group.NewSession()
	if err != nil {
		return nil, err
	}
	defer sess.Close()
	return d.Acquire(ctx, sess, r.cfg.Search.Query, r.cfg.Search.Location, r.cfg.Search.MaxResults)
}

// classifyAll issues classification calls sequentially with a randomized
// politeness delay; failures degrade to defaults inside the client.
func (r *Runner) classifyAll(ctx context.Context, leads []*models.Lead) {
	for i, l := range leads {
		classify.Apply(l, r.classifier.Classify(ctx, l))
		if i < len(leads)-1 {
			sleepCtx(ctx, r.classifier.Delay())
		}
	}
}

func (r *Runner) qualify(leads []*models.Lead, stats *Stats) []*models.Lead {
	var qualified []*models.Lead
	for _, l := range leads {
		if reasons := l.Qualify(); len(reasons) > 0 {
			stats.Rejected++
			r.log.Debug("lead rejected",
				zap.String("name", l.Name), zap.Strings("reasons", reasons))
			continue
		}
		qualified = append(qualified, l)
	}
	stats.Qualified = len(qualified)
	return qualified
}

// existingFingerprints loads the identity keys already present in the
// destinations at batch start.
func (r *Runner) existingFingerprints(ctx context.Context) map[string]bool {
	existing := make(map[string]bool)

	rows, err := store.ReadRows(r.cfg.Search.OutputFile)
	if err != nil {
		r.log.Warn("could not read existing spreadsheet", zap.Error(err))
	}
	for _, l := range rows {
		existing[l.Fingerprint()] = true
	}

	if r.documents != nil {
		fps, err := r.documents.Fingerprints(ctx)
		if err != nil {
			r.log.Warn("could not load store fingerprints", zap.Error(err))
		}
		for fp := range fps {
			existing[fp] = true
		}
	}
	return existing
}

func (r *Runner) persist(ctx context.Context, batch []*models.Lead, stats *Stats) {
	if len(batch) == 0 {
		return
	}

	if r.documents != nil {
		stats.Upserted, stats.UpsertFailed = r.documents.UpsertBatch(ctx, batch)
	}

	appended, skipped, err := store.MergeRows(r.cfg.Search.OutputFile, batch)
	if err != nil {
		r.log.Error("spreadsheet merge failed", zap.Error(err))
		return
	}
	stats.Appended = appended
	stats.SkippedRows = skipped
	r.log.Info("spreadsheet merged",
		zap.String("file", r.cfg.Search.OutputFile),
		zap.Int("appended", appended),
		zap.Int("skipped_duplicates", skipped))
}

func (r *Runner) drivers() []acquire.Driver {
	var drivers []acquire.Driver
	seen := make(map[models.Source]bool)
	for _, s := range r.cfg.Search.Sources {
		src, ok := models.ParseSource(s)
		if !ok || seen[src] {
			continue
		}
		seen[src] = true
		switch src {
		case models.SourceGoogleMaps:
			drivers = append(drivers, acquire.NewGoogleMaps(r.log))
		case models.SourceYellowPages:
			drivers = append(drivers, acquire.NewYellowPages(r.log))
		}
	}
	return drivers
}

// Dedupe excludes leads whose fingerprint is already present among the
// records loaded from the destination at batch start; within the batch the
// first occurrence of a fingerprint wins.
func Dedupe(leads []*models.Lead, existing map[string]bool) (kept []*models.Lead, duplicates int) {
	seen := make(map[string]bool, len(existing))
	for fp := range existing {
		seen[fp] = true
	}
	for _, l := range leads {
		fp := l.Fingerprint()
		if seen[fp] {
			duplicates++
			continue
		}
		seen[fp] = true
		kept = append(kept, l)
	}
	return kept, duplicates
}

// mergeByName combines pagination-parsed records with the dual-strategy
// extractor's output, keeping the first occurrence of each name.
func mergeByName(primary, secondary []*models.Lead) []*models.Lead {
	seen := make(map[string]bool, len(primary))
	out := make([]*models.Lead, 0, len(primary)+len(secondary))
	for _, l := range primary {
		seen[strings.ToLower(l.Name)] = true
		out = append(out, l)
	}
	for _, l := range secondary {
		key := strings.ToLower(l.Name)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, l)
	}
	return out
}

func sleepCtx(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
