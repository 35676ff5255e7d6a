package acquire

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/THE-AGENTVE/Leads-Scrapper/internal/browser"
	"github.com/THE-AGENTVE/Leads-Scrapper/internal/extract"
	"github.com/THE-AGENTVE/Leads-Scrapper/pkg/models"
)

// YellowPagesBaseURL is the origin relative detail links resolve against.
const YellowPagesBaseURL = "https://www.yellowpages.com"

var ypEndpointPattern = regexp.MustCompile(`/search\?|/listings/`)

const (
	ypNextJS = `document.querySelector('a.next, div.pagination a.next, a[rel="next"]') !== null`

	ypShowMoreJS = `document.querySelector('button.show-more, a.show-more, button[data-analytics*="more"]') !== null`

	ypCountJS = `document.querySelectorAll('div.search-results div.result, div.srp-listing, div.listing, li.business-card').length`

	ypScrollJS = `(function() {
		var before = window.scrollY;
		window.scrollBy(0, 2000);
		return window.scrollY > before;
	})()`
)

// YellowPagesDriver acquires leads from the directory-style source. The
// primary strategy is a sequential-page loop; single-page result surfaces
// fall back to scroll-and-click.
type YellowPagesDriver struct {
	log *zap.Logger
}

func NewYellowPages(log *zap.Logger) *YellowPagesDriver {
	return &YellowPagesDriver{log: log.With(zap.String("source", string(models.SourceYellowPages)))}
}

func (d *YellowPagesDriver) Source() models.Source { return models.SourceYellowPages }

func (d *YellowPagesDriver) searchURL(query, location string, page int) string {
	v := url.Values{}
	v.Set("search_terms", query)
	v.Set("geo_location_terms", location)
	if page > 1 {
		v.Set("page", fmt.Sprint(page))
	}
	return YellowPagesBaseURL + "/search?" + v.Encode()
}

func (d *YellowPagesDriver) Acquire(ctx context.Context, sess *browser.Session, query, location string, target int) (*Capture, error) {
	responseCapture := sess.CaptureResponses(ypEndpointPattern, minPayloadBytes)

	out := &Capture{Source: models.SourceYellowPages}
	seen := make(map[string]bool)
	var captchaErr error

	appendRecords := func(html string) int {
		leads, err := extract.FromMarkup(html, models.SourceYellowPages)
		if err != nil {
			return 0
		}
		added := 0
		for _, l := range leads {
			key := strings.ToLower(l.Name)
			if seen[key] {
				continue
			}
			seen[key] = true
			out.Records = append(out.Records, l)
			added++
		}
		return added
	}

	visitPage := func(num int) (int, error) {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		if err := sess.Navigate(d.searchURL(query, location, num)); err != nil {
			return 0, fmt.Errorf("page %d navigation: %w", num, err)
		}
		if num == 1 {
			if err := CheckCaptcha(sess, "yellow_pages"); err != nil {
				captchaErr = err
				return 0, err
			}
		}
		html, err := sess.HTML()
		if err != nil {
			return 0, fmt.Errorf("page %d markup: %w", num, err)
		}
		if num == 1 {
			out.HTML = html
		}
		return appendRecords(html), nil
	}

	hasNext := func() bool {
		var next bool
		if err := sess.Evaluate(ypNextJS, &next); err != nil {
			return false
		}
		return next
	}

	total, failures := Paginate(target, visitPage, hasNext)
	out.Found = total
	out.PageFailures = failures
	if captchaErr != nil {
		return nil, captchaErr
	}

	// Single-page surface: no pagination control but a "show more" style
	// button. Reveal the rest with the scroll-and-click loop and reparse.
	if total < target && !hasNext() && d.hasShowMore(sess) {
		d.log.Info("no pagination control, switching to scroll-and-click", zap.Int("found", total))
		n, err := ScrollClickUntilCount(target,
			func() (int, error) {
				var c int
				if err := sess.Evaluate(ypCountJS, &c); err != nil {
					return 0, err
				}
				return c, nil
			},
			func() (bool, error) {
				var moved bool
				if err := sess.Evaluate(ypScrollJS, &moved); err != nil {
					return false, err
				}
				sess.Sleep(900 * time.Millisecond)
				return moved, nil
			},
			func() bool {
				return sess.Click(`button.show-more, a.show-more`) == nil
			},
		)
		if err != nil {
			d.log.Warn("scroll-and-click ended early", zap.Error(err))
		}
		if html, err := sess.HTML(); err == nil {
			out.HTML = html
			appendRecords(html)
		}
		out.Found = max(n, len(out.Records))
	}

	for _, r := range responseCapture.Responses() {
		out.Payloads = append(out.Payloads, r.Body)
	}

	d.log.Info("acquisition finished",
		zap.Int("records", len(out.Records)),
		zap.Int("payloads", len(out.Payloads)),
		zap.Int("page_failures", out.PageFailures))

	return out, nil
}

func (d *YellowPagesDriver) hasShowMore(sess *browser.Session) bool {
	var present bool
	if err := sess.Evaluate(ypShowMoreJS, &present); err != nil {
		return false
	}
	return present
}
