// Package acquire drives browser sessions through search navigation,
// incremental result reveal and network-response capture, one source at a
// time.
package acquire

import (
	"context"
	"errors"

	"github.com/THE-AGENTVE/Leads-Scrapper/internal/browser"
	"github.com/THE-AGENTVE/Leads-Scrapper/pkg/models"
)

// ErrCaptcha marks a CAPTCHA challenge. It is fatal for the source that hit
// it; other sources continue.
var ErrCaptcha = errors.New("captcha challenge detected")

// minPayloadBytes is the size floor for captured network responses; anything
// smaller carries no listing data.
const minPayloadBytes = 100

// Capture is everything one source's acquisition observed: records parsed
// during pagination, raw structured payload bodies, and a final markup
// snapshot for the fallback extraction path.
type Capture struct {
	Source       models.Source
	Records      []*models.Lead
	Payloads     []string
	HTML         string
	Found        int
	PageFailures int
}

// Driver acquires partially-populated leads for one source.
type Driver interface {
	Source() models.Source
	Acquire(ctx context.Context, sess *browser.Session, query, location string, target int) (*Capture, error)
}
