// Package enrich fills missing lead fields by visiting detail pages and
// business websites, each behind its own bounded worker pool.
package enrich

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/THE-AGENTVE/Leads-Scrapper/pkg/models"
)

// forEach distributes leads over a fixed-size worker pool and blocks until
// every task completes; callers rely on this as the barrier between stages.
// Each lead is handed to exactly one worker.
func forEach(leads []*models.Lead, workers int, fn func(*models.Lead)) {
	if len(leads) == 0 {
		return
	}
	if workers < 1 {
		workers = 1
	}

	jobs := make(chan *models.Lead, len(leads))
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for lead := range jobs {
				fn(lead)
			}
		}()
	}

	for _, lead := range leads {
		jobs <- lead
	}
	close(jobs)
	wg.Wait()
}

// sleepCtx sleeps for d unless the context ends first.
func sleepCtx(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

// randDelay picks a duration in the [min, max) window.
func randDelay(min, max time.Duration) time.Duration {
	if max <= min {
		return min
	}
	return min + time.Duration(rand.Int63n(int64(max-min)))
}
