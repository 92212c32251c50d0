// File: internal/browser/consent.go
package browser

import (
	"context"
	"strconv"
	"time"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

// consentSelectors are CSS selectors for the accept buttons of common
// cookie-consent banners, tried in order.
var consentSelectors = []string{
	`button#onetrust-accept-btn-handler`,
	`button[aria-label*="cookie" i]`,
	`button[class*="cookie" i]`,
	`.cookie-banner .accept`,
	`.cookie-consent .accept`,
	`#cookie-consent-accept`,
	`.cookie-accept`,
	`.accept-cookies`,
}

// consentTexts match accept buttons by caption when no selector hits.
var consentTexts = []string{
	"Accept All", "Accept all", "Accept", "Agree",
	"Akzeptieren", "Zustimmen", "Alle akzeptieren",
}

// DismissConsent clicks the first visible cookie-banner accept control, if
// any. Banners cover the form and swallow clicks, so this runs before a
// scan or fill. Every failure is swallowed; a page without a banner is the
// normal case.
func (s *Session) DismissConsent(ctx context.Context) {
	for _, sel := range consentSelectors {
		if s.tryConsentClick(ctx, clickBySelectorScript(sel)) {
			s.logger.Debug("Dismissed cookie banner", zap.String("selector", sel))
			return
		}
	}
	for _, text := range consentTexts {
		if s.tryConsentClick(ctx, clickByTextScript(text)) {
			s.logger.Debug("Dismissed cookie banner", zap.String("text", text))
			return
		}
	}
}

// tryConsentClick runs a click script and waits out the banner animation on
// success.
func (s *Session) tryConsentClick(ctx context.Context, script string) bool {
	var clicked bool
	if err := s.run(ctx, 5*time.Second, chromedp.Evaluate(script, &clicked)); err != nil {
		return false
	}
	if clicked {
		select {
		case <-time.After(time.Second):
		case <-ctx.Done():
		}
	}
	return clicked
}

func clickBySelectorScript(selector string) string {
	return `(() => {
		const el = document.querySelector(` + strconv.Quote(selector) + `);
		if (!el) { return false; }
		const style = window.getComputedStyle(el);
		const rect = el.getBoundingClientRect();
		if (style.display === 'none' || rect.width === 0 || el.disabled) { return false; }
		el.click();
		return true;
	})()`
}

func clickByTextScript(text string) string {
	return `(() => {
		for (const el of document.querySelectorAll('button, [role="button"]')) {
			if (el.textContent.trim() !== ` + strconv.Quote(text) + `) { continue; }
			const style = window.getComputedStyle(el);
			const rect = el.getBoundingClientRect();
			if (style.display === 'none' || rect.width === 0 || el.disabled) { continue; }
			el.click();
			return true;
		}
		return false;
	})()`
}
