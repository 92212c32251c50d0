// File: internal/humanoid/keyboard.go
package humanoid

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
)

// Config bounds the sampled inter-key delay. Zero values fall back to the
// defaults below.
type Config struct {
	Enabled     bool
	KeyDelayMin time.Duration
	KeyDelayMax time.Duration
}

const (
	defaultKeyDelayMin = 30 * time.Millisecond
	defaultKeyDelayMax = 90 * time.Millisecond
)

// Typist produces character-paced typing actions. Pacing gives debounced
// validation and key-driven page logic time to fire between characters,
// which a single atomic value-set would never trigger.
type Typist struct {
	cfg Config

	mu  sync.Mutex
	rng *rand.Rand
}

// NewTypist seeds a typist. A nil rng gets a time-seeded source.
func NewTypist(cfg Config, rng *rand.Rand) *Typist {
	if cfg.KeyDelayMin <= 0 {
		cfg.KeyDelayMin = defaultKeyDelayMin
	}
	if cfg.KeyDelayMax < cfg.KeyDelayMin {
		cfg.KeyDelayMax = cfg.KeyDelayMin
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Typist{cfg: cfg, rng: rng}
}

// KeyDelay samples the pause before the next keystroke.
func (t *Typist) KeyDelay() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	spread := t.cfg.KeyDelayMax - t.cfg.KeyDelayMin
	if spread <= 0 {
		return t.cfg.KeyDelayMin
	}
	return t.cfg.KeyDelayMin + time.Duration(t.rng.Int63n(int64(spread)))
}

// Type returns an action that sends text to the focused element one rune at
// a time. The element must already hold focus; callers click it first. With
// pacing disabled the whole string goes in one SendKeys dispatch.
func (t *Typist) Type(text string) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		if !t.cfg.Enabled {
			return chromedp.SendKeys("document.activeElement", text, chromedp.ByJSPath).Do(ctx)
		}
		for _, r := range text {
			if err := chromedp.SendKeys("document.activeElement", string(r), chromedp.ByJSPath).Do(ctx); err != nil {
				return err
			}
			select {
			case <-time.After(t.KeyDelay()):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})
}
