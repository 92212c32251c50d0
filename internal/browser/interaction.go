// File: internal/browser/interaction.go
package browser

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

// LocatorNotFoundError is the per-field taxonomy class: the stored locator
// no longer resolves on the live page. Recorded by callers, never fatal.
type LocatorNotFoundError struct {
	Locator string
}

func (e *LocatorNotFoundError) Error() string {
	return fmt.Sprintf("no element on live page for locator %q", e.Locator)
}

// elementProbe is the result shape of the probe script.
type elementProbe struct {
	Found   bool `json:"found"`
	Visible bool `json:"visible"`
	Checked bool `json:"checked"`
}

// probeScript inspects the element addressed by an XPath locator without
// touching it. Locator resolution mirrors the scanner's: direct id lookup or
// a root-to-element positional walk, both expressible as document.evaluate.
func probeScript(locator string) string {
	return `(() => {
		const el = document.evaluate(` + strconv.Quote(locator) + `, document, null, XPathResult.FIRST_ORDERED_NODE_TYPE, null).singleNodeValue;
		if (!el) { return {found: false, visible: false, checked: false}; }
		const style = window.getComputedStyle(el);
		const rect = el.getBoundingClientRect();
		const visible = style.display !== 'none' && style.visibility !== 'hidden' && rect.width > 0 && rect.height > 0;
		return {found: true, visible: visible, checked: !!el.checked};
	})()`
}

// probe evaluates the element state for a locator.
func (s *Session) probe(ctx context.Context, locator string) (elementProbe, error) {
	var p elementProbe
	if err := s.run(ctx, s.cfg.Browser.ActionTimeout, chromedp.Evaluate(probeScript(locator), &p)); err != nil {
		return p, fmt.Errorf("probing %q: %w", locator, err)
	}
	return p, nil
}

// IsVisible reports whether the located element is rendered and visible.
func (s *Session) IsVisible(ctx context.Context, locator string) (bool, error) {
	p, err := s.probe(ctx, locator)
	if err != nil {
		return false, err
	}
	if !p.Found {
		return false, &LocatorNotFoundError{Locator: locator}
	}
	return p.Visible, nil
}

// IsChecked reports the live checked state of a checkbox or radio.
func (s *Session) IsChecked(ctx context.Context, locator string) (bool, error) {
	p, err := s.probe(ctx, locator)
	if err != nil {
		return false, err
	}
	if !p.Found {
		return false, &LocatorNotFoundError{Locator: locator}
	}
	return p.Checked, nil
}

// ScrollIntoView centers the element in the viewport.
func (s *Session) ScrollIntoView(ctx context.Context, locator string) error {
	script := `(() => {
		const el = document.evaluate(` + strconv.Quote(locator) + `, document, null, XPathResult.FIRST_ORDERED_NODE_TYPE, null).singleNodeValue;
		if (!el) { return false; }
		el.scrollIntoView({block: 'center'});
		return true;
	})()`
	var found bool
	if err := s.run(ctx, s.cfg.Browser.ActionTimeout, chromedp.Evaluate(script, &found)); err != nil {
		return fmt.Errorf("scrolling to %q: %w", locator, err)
	}
	if !found {
		return &LocatorNotFoundError{Locator: locator}
	}
	return nil
}

// Click dispatches a real click on the located element.
func (s *Session) Click(ctx context.Context, locator string) error {
	if err := s.run(ctx, s.cfg.Browser.ActionTimeout,
		chromedp.WaitVisible(locator, chromedp.BySearch),
		chromedp.Click(locator, chromedp.BySearch),
	); err != nil {
		return fmt.Errorf("clicking %q: %w", locator, err)
	}
	return nil
}

// ClearAndType focuses the element, empties its current value, then inserts
// the text with character-paced keystrokes.
func (s *Session) ClearAndType(ctx context.Context, locator, text string) error {
	clear := `(() => {
		const el = document.evaluate(` + strconv.Quote(locator) + `, document, null, XPathResult.FIRST_ORDERED_NODE_TYPE, null).singleNodeValue;
		if (!el) { return false; }
		if ('value' in el) { el.value = ''; } else { el.textContent = ''; }
		el.dispatchEvent(new Event('input', {bubbles: true}));
		return true;
	})()`

	timeout := s.cfg.Browser.ActionTimeout + typeBudget(text)
	var cleared bool
	if err := s.run(ctx, timeout,
		chromedp.WaitVisible(locator, chromedp.BySearch),
		chromedp.Click(locator, chromedp.BySearch),
		chromedp.Evaluate(clear, &cleared),
	); err != nil {
		return fmt.Errorf("preparing %q for typing: %w", locator, err)
	}
	if !cleared {
		return &LocatorNotFoundError{Locator: locator}
	}

	if err := s.run(ctx, timeout, s.typist.Type(text)); err != nil {
		return fmt.Errorf("typing into %q: %w", locator, err)
	}

	// Change fires on blur in a real browser; dispatch it so listeners that
	// only watch change still observe the new value.
	change := `(() => {
		const el = document.activeElement;
		if (el) { el.dispatchEvent(new Event('change', {bubbles: true})); }
		return true;
	})()`
	var ok bool
	if err := s.run(ctx, s.cfg.Browser.ActionTimeout, chromedp.Evaluate(change, &ok)); err != nil {
		s.logger.Debug("Change dispatch failed after typing", zap.String("locator", locator), zap.Error(err))
	}
	return nil
}

// SelectOption selects the option whose value equals value exactly.
func (s *Session) SelectOption(ctx context.Context, locator, value string) error {
	script := `(() => {
		const el = document.evaluate(` + strconv.Quote(locator) + `, document, null, XPathResult.FIRST_ORDERED_NODE_TYPE, null).singleNodeValue;
		if (!el) { return 'no-element'; }
		if (el.tagName !== 'SELECT') { return 'not-a-select'; }
		const opt = Array.from(el.options).find(o => o.value === ` + strconv.Quote(value) + `);
		if (!opt) { return 'no-option'; }
		el.value = opt.value;
		el.dispatchEvent(new Event('input', {bubbles: true}));
		el.dispatchEvent(new Event('change', {bubbles: true}));
		return 'ok';
	})()`

	var status string
	if err := s.run(ctx, s.cfg.Browser.ActionTimeout, chromedp.Evaluate(script, &status)); err != nil {
		return fmt.Errorf("selecting option on %q: %w", locator, err)
	}
	switch status {
	case "ok":
		return nil
	case "no-element":
		return &LocatorNotFoundError{Locator: locator}
	case "not-a-select":
		return fmt.Errorf("element at %q is not a select", locator)
	default:
		return fmt.Errorf("select at %q has no option with value %q", locator, value)
	}
}

// SetFiles attaches local files to a file input.
func (s *Session) SetFiles(ctx context.Context, locator string, paths []string) error {
	if err := s.run(ctx, s.cfg.Browser.ActionTimeout,
		chromedp.SetUploadFiles(locator, paths, chromedp.BySearch),
	); err != nil {
		return fmt.Errorf("setting files on %q: %w", locator, err)
	}
	return nil
}

// typeBudget scales the typing timeout with the text length so long values
// are not cut off mid-entry by the flat action timeout.
func typeBudget(text string) time.Duration {
	return time.Duration(len(text)) * 150 * time.Millisecond
}
