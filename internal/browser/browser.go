// Package browser wraps chromedp behind the five operations the pipeline
// depends on: navigation, script evaluation, network-response capture,
// request fingerprint configuration and screenshots.
package browser

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/THE-AGENTVE/Leads-Scrapper/internal/config"
)

// stealthJS patches the navigator signals headless Chrome leaks before any
// page script runs.
const stealthJS = `
Object.defineProperty(navigator, 'webdriver', { get: () => undefined });
Object.defineProperty(navigator, 'languages', { get: () => ['en-US', 'en'] });
Object.defineProperty(navigator, 'plugins', { get: () => [1, 2, 3, 4, 5] });
window.chrome = window.chrome || { runtime: {} };
`

// Group owns one browser process allocator. Sessions created from the same
// group share the process; the email stage uses its own group so it never
// contends with the acquisition session.
type Group struct {
	allocCtx context.Context
	cancel   context.CancelFunc
	cfg      *config.BrowserConfig
	log      *zap.Logger
}

// NewGroup configures a browser allocator. The browser process itself starts
// lazily with the first session.
func NewGroup(cfg *config.BrowserConfig, log *zap.Logger) *Group {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.Headless),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("disable-infobars", true),
		chromedp.Flag("lang", "en-US"),
		chromedp.UserAgent(cfg.UserAgent),
		chromedp.WindowSize(cfg.ViewportW, cfg.ViewportH),
	)

	allocCtx, cancel := chromedp.NewExecAllocator(context.Background(), opts...)
	return &Group{
		allocCtx: allocCtx,
		cancel:   cancel,
		cfg:      cfg,
		log:      log,
	}
}

// Close tears down the allocator and every session spawned from it.
func (g *Group) Close() {
	g.cancel()
	g.log.Debug("browser group closed")
}

// Session is a single browser tab with the anti-detection configuration
// applied.
type Session struct {
	ctx    context.Context
	cancel context.CancelFunc
	cfg    *config.BrowserConfig
	log    *zap.Logger
}

// NewSession opens a tab, applies headers, user agent, viewport and the
// fingerprint patch, and verifies the browser actually launched.
func (g *Group) NewSession() (*Session, error) {
	ctx, cancel := chromedp.NewContext(g.allocCtx)

	err := chromedp.Run(ctx,
		network.Enable(),
		network.SetExtraHTTPHeaders(network.Headers{
			"Accept-Language": "en-US,en;q=0.9",
		}),
		emulation.SetUserAgentOverride(g.cfg.UserAgent),
		chromedp.EmulateViewport(int64(g.cfg.ViewportW), int64(g.cfg.ViewportH)),
		chromedp.ActionFunc(func(ctx context.Context) error {
			_, err := page.AddScriptToEvaluateOnNewDocument(stealthJS).Do(ctx)
			return err
		}),
	)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("browser launch: %w", err)
	}

	g.log.Debug("session opened")
	return &Session{ctx: ctx, cancel: cancel, cfg: g.cfg, log: g.log}, nil
}

// Close releases the tab.
func (s *Session) Close() {
	s.cancel()
}

// Navigate loads a URL and waits for the body to be ready, bounded by the
// per-navigation timeout.
func (s *Session) Navigate(url string) error {
	ctx, cancel := context.WithTimeout(s.ctx, s.cfg.NavTimeout)
	defer cancel()
	return chromedp.Run(ctx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
}

// Evaluate runs a script in page context and unmarshals the serializable
// result into out. Pass nil to discard the result.
func (s *Session) Evaluate(js string, out any) error {
	ctx, cancel := context.WithTimeout(s.ctx, s.cfg.WaitTimeout)
	defer cancel()
	return chromedp.Run(ctx, chromedp.Evaluate(js, out))
}

// Click clicks the first visible node matching the selector.
func (s *Session) Click(sel string) error {
	ctx, cancel := context.WithTimeout(s.ctx, s.cfg.WaitTimeout)
	defer cancel()
	return chromedp.Run(ctx, chromedp.Click(sel, chromedp.ByQuery, chromedp.NodeVisible))
}

// HTML returns the rendered markup of the current page.
func (s *Session) HTML() (string, error) {
	ctx, cancel := context.WithTimeout(s.ctx, s.cfg.WaitTimeout)
	defer cancel()
	var html string
	err := chromedp.Run(ctx, chromedp.OuterHTML("html", &html, chromedp.ByQuery))
	return html, err
}

// Screenshot captures the viewport into the configured diagnostics directory
// and returns the file path.
func (s *Session) Screenshot(name string) (string, error) {
	ctx, cancel := context.WithTimeout(s.ctx, s.cfg.WaitTimeout)
	defer cancel()

	var buf []byte
	if err := chromedp.Run(ctx, chromedp.CaptureScreenshot(&buf)); err != nil {
		return "", err
	}

	if err := os.MkdirAll(s.cfg.ScreenshotDir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(s.cfg.ScreenshotDir, fmt.Sprintf("%s-%d.png", name, time.Now().UnixNano()))
	if err := os.WriteFile(path, buf, 0o644); err != nil {
		return "", err
	}
	s.log.Info("screenshot saved", zap.String("path", path))
	return path, nil
}

// Sleep pauses inside the session, for waits between scroll cycles.
func (s *Session) Sleep(d time.Duration) {
	_ = chromedp.Run(s.ctx, chromedp.Sleep(d))
}
