package acquire

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"time"

	"go.uber.org/zap"

	"github.com/THE-AGENTVE/Leads-Scrapper/internal/browser"
	"github.com/THE-AGENTVE/Leads-Scrapper/pkg/models"
)

// mapsEndpointPattern matches the listing/detail endpoints whose responses
// carry structured business data.
var mapsEndpointPattern = regexp.MustCompile(`/search\?.*tbm=map|/maps/preview/place|/maps/rpc/`)

const (
	captchaProbeJS = `(function() {
		if (document.querySelector('form#captcha-form, iframe[src*="recaptcha"], div#recaptcha')) return true;
		var t = document.body ? document.body.innerText : '';
		return t.indexOf('unusual traffic') !== -1 || t.indexOf("confirm you're not a robot") !== -1;
	})()`

	mapsCountJS = `document.querySelectorAll('div[role="feed"] div[role="article"], div.Nv2PK').length`

	mapsScrollJS = `(function() {
		var feed = document.querySelector('div[role="feed"]');
		if (feed) { feed.scrollTop = feed.scrollHeight; } else { window.scrollBy(0, 2000); }
	})()`
)

// GoogleMapsDriver acquires leads from the maps-style source via
// scroll-until-count over the results feed.
type GoogleMapsDriver struct {
	log *zap.Logger
}

func NewGoogleMaps(log *zap.Logger) *GoogleMapsDriver {
	return &GoogleMapsDriver{log: log.With(zap.String("source", string(models.SourceGoogleMaps)))}
}

func (d *GoogleMapsDriver) Source() models.Source { return models.SourceGoogleMaps }

func (d *GoogleMapsDriver) Acquire(ctx context.Context, sess *browser.Session, query, location string, target int) (*Capture, error) {
	capture := sess.CaptureResponses(mapsEndpointPattern, minPayloadBytes)

	searchURL := "https://www.google.com/maps/search/" + url.PathEscape(query+" "+location)
	d.log.Info("navigating to search", zap.String("url", searchURL))
	if err := sess.Navigate(searchURL); err != nil {
		return nil, fmt.Errorf("search navigation: %w", err)
	}

	if err := CheckCaptcha(sess, "google_maps"); err != nil {
		return nil, err
	}

	found, err := ScrollUntilCount(target,
		func() (int, error) {
			if err := ctx.Err(); err != nil {
				return 0, err
			}
			var n int
			if err := sess.Evaluate(mapsCountJS, &n); err != nil {
				return 0, err
			}
			return n, nil
		},
		func() error {
			if err := sess.Evaluate(mapsScrollJS, nil); err != nil {
				return err
			}
			sess.Sleep(1200 * time.Millisecond)
			return nil
		},
	)
	if err != nil {
		d.log.Warn("scroll loop ended early", zap.Error(err), zap.Int("found", found))
	}
	d.log.Info("scrolling finished", zap.Int("found", found), zap.Int("target", target))

	// Give in-flight listing responses a moment to land in the capture.
	sess.Sleep(1500 * time.Millisecond)

	html, err := sess.HTML()
	if err != nil {
		d.log.Warn("markup snapshot failed", zap.Error(err))
	}

	responses := capture.Responses()
	payloads := make([]string, 0, len(responses))
	for _, r := range responses {
		payloads = append(payloads, r.Body)
	}

	return &Capture{
		Source:   models.SourceGoogleMaps,
		Payloads: payloads,
		HTML:     html,
		Found:    found,
	}, nil
}

// CheckCaptcha probes the page for a CAPTCHA marker; on detection it captures
// a diagnostic screenshot and returns ErrCaptcha.
func CheckCaptcha(sess *browser.Session, name string) error {
	var blocked bool
	if err := sess.Evaluate(captchaProbeJS, &blocked); err != nil {
		// A failed probe is not a CAPTCHA; acquisition proceeds.
		return nil
	}
	if !blocked {
		return nil
	}
	if path, err := sess.Screenshot("captcha-" + name); err == nil {
		return fmt.Errorf("%w (screenshot: %s)", ErrCaptcha, path)
	}
	return ErrCaptcha
}
