package browser

import (
	"regexp"
	"sync"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
)

// CapturedResponse is the raw body text of one intercepted network response.
type CapturedResponse struct {
	URL  string
	Body string
}

// ResponseCapture records bodies of responses whose URL matches a pattern
// and whose size exceeds the threshold. Bodies arrive asynchronously as the
// browser finishes loading them.
type ResponseCapture struct {
	pattern  *regexp.Regexp
	minBytes int

	mu        sync.Mutex
	pending   map[network.RequestID]string
	responses []CapturedResponse
}

// CaptureResponses registers a response listener on the session. The capture
// stays active for the session's lifetime.
func (s *Session) CaptureResponses(pattern *regexp.Regexp, minBytes int) *ResponseCapture {
	c := &ResponseCapture{
		pattern:  pattern,
		minBytes: minBytes,
		pending:  make(map[network.RequestID]string),
	}

	chromedp.ListenTarget(s.ctx, func(ev any) {
		switch e := ev.(type) {
		case *network.EventResponseReceived:
			if c.pattern.MatchString(e.Response.URL) {
				c.mu.Lock()
				c.pending[e.RequestID] = e.Response.URL
				c.mu.Unlock()
			}
		case *network.EventLoadingFinished:
			c.mu.Lock()
			url, ok := c.pending[e.RequestID]
			delete(c.pending, e.RequestID)
			c.mu.Unlock()
			if !ok {
				return
			}
			// The body must be fetched outside the event handler: the
			// handler runs on the CDP message loop and GetResponseBody is
			// itself a CDP round-trip.
			go c.fetchBody(s, e.RequestID, url)
		}
	})

	return c
}

func (c *ResponseCapture) fetchBody(s *Session, id network.RequestID, url string) {
	exec := chromedp.FromContext(s.ctx)
	body, err := network.GetResponseBody(id).Do(cdp.WithExecutor(s.ctx, exec.Target))
	if err != nil || len(body) <= c.minBytes {
		return
	}
	c.mu.Lock()
	c.responses = append(c.responses, CapturedResponse{URL: url, Body: string(body)})
	c.mu.Unlock()
}

// Responses returns a snapshot of the captured bodies in arrival order.
func (c *ResponseCapture) Responses() []CapturedResponse {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]CapturedResponse, len(c.responses))
	copy(out, c.responses)
	return out
}
