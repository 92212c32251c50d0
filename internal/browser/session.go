// File: internal/browser/session.go
package browser

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/wronai/formap/api/schemas"
	"github.com/wronai/formap/internal/config"
	"github.com/wronai/formap/internal/humanoid"
)

// NavigationError is the fatal taxonomy class: the target document could not
// be reached or loaded. It aborts the current operation.
type NavigationError struct {
	URL string
	Err error
}

func (e *NavigationError) Error() string {
	return fmt.Sprintf("navigation to %q failed: %v", e.URL, e.Err)
}

func (e *NavigationError) Unwrap() error { return e.Err }

// Session is one browser tab implementing schemas.Page over chromedp. All
// interactions run sequentially against this one tab; concurrent use of one
// session is not supported.
type Session struct {
	id     string
	ctx    context.Context
	cancel context.CancelFunc
	logger *zap.Logger
	cfg    *config.Config
	typist *humanoid.Typist

	onClose   func()
	closeOnce sync.Once
}

var _ schemas.Page = (*Session)(nil)

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Close tears down the tab. Idempotent.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		s.logger.Debug("Closing session")
		s.cancel()
		if s.onClose != nil {
			s.onClose()
		}
	})
}

// run executes chromedp actions on this session's tab, bounded by timeout
// and by the caller's context.
func (s *Session) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	opCtx, cancel := context.WithTimeout(s.ctx, timeout)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	if err := chromedp.Run(opCtx, actions...); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return err
	}
	return nil
}

// Navigate loads the URL and waits for the page to stabilize. Any failure
// here is fatal to the operation that needed the page.
func (s *Session) Navigate(ctx context.Context, rawURL string) error {
	s.logger.Debug("Navigating", zap.String("url", rawURL))

	if err := s.run(ctx, s.cfg.Network.NavigationTimeout, chromedp.Navigate(rawURL)); err != nil {
		return &NavigationError{URL: rawURL, Err: err}
	}
	if err := s.stabilize(ctx); err != nil {
		if ctx.Err() != nil {
			return &NavigationError{URL: rawURL, Err: ctx.Err()}
		}
		// Stabilization is best-effort once the document committed.
		s.logger.Warn("Page did not stabilize after navigation", zap.Error(err))
	}
	return nil
}

// stabilize waits for the body to be ready plus a configured quiet period so
// late-running scripts can finish mutating the form.
func (s *Session) stabilize(ctx context.Context) error {
	if err := s.run(ctx, 30*time.Second, chromedp.WaitReady("body", chromedp.ByQuery)); err != nil {
		return err
	}
	if wait := s.cfg.Network.PostLoadWait; wait > 0 {
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// HTML snapshots the rendered document's outer HTML.
func (s *Session) HTML(ctx context.Context) (string, error) {
	var raw string
	if err := s.run(ctx, s.cfg.Browser.ActionTimeout, chromedp.OuterHTML("html", &raw, chromedp.ByQuery)); err != nil {
		return "", fmt.Errorf("capturing outer HTML: %w", err)
	}
	return raw, nil
}

// ScrollPage scrolls the page to trigger lazy-loaded content.
func (s *Session) ScrollPage(ctx context.Context, direction string) error {
	var script string
	switch direction {
	case "bottom":
		script = `window.scrollTo(0, document.body.scrollHeight);`
	case "top":
		script = `window.scrollTo(0, 0);`
	default:
		return fmt.Errorf("invalid scroll direction %q (supported: top, bottom)", direction)
	}
	if err := s.run(ctx, 10*time.Second, chromedp.Evaluate(script, nil), chromedp.Sleep(500*time.Millisecond)); err != nil {
		return fmt.Errorf("scroll %s: %w", direction, err)
	}
	return nil
}
