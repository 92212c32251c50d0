// File: internal/browser/manager.go
package browser

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/chromedp"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wronai/formap/internal/config"
	"github.com/wronai/formap/internal/humanoid"
)

const shutdownGracePeriod = 15 * time.Second

// Manager owns the Chrome allocator and creates isolated sessions (one tab
// each). Sessions share the browser process but no mutable state; running
// independent sessions concurrently is safe.
type Manager struct {
	logger      *zap.Logger
	cfg         *config.Config
	allocCtx    context.Context
	allocCancel context.CancelFunc

	mu       sync.Mutex
	wg       sync.WaitGroup
	isClosed bool
}

// NewManager prepares the exec allocator. Chrome itself launches lazily on
// the first session.
func NewManager(ctx context.Context, cfg *config.Config, logger *zap.Logger) *Manager {
	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, allocatorOptions(cfg.Browser)...)
	return &Manager{
		logger:      logger.Named("browser_manager"),
		cfg:         cfg,
		allocCtx:    allocCtx,
		allocCancel: allocCancel,
	}
}

// allocatorOptions builds the Chrome launch flags: the chromedp defaults,
// container-safe stability flags, and user extras from config.
func allocatorOptions(cfg config.BrowserConfig) []chromedp.ExecAllocatorOption {
	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	opts = append(opts,
		chromedp.Flag("headless", cfg.Headless),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.NoSandbox,
	)
	if cfg.ViewportWidth > 0 && cfg.ViewportHeight > 0 {
		opts = append(opts, chromedp.WindowSize(cfg.ViewportWidth, cfg.ViewportHeight))
	}
	for _, arg := range cfg.Args {
		name, value := splitChromeArg(arg)
		if name != "" {
			opts = append(opts, chromedp.Flag(name, value))
		}
	}
	return opts
}

// splitChromeArg normalizes "--name=value" / "--name" / "name" config args.
func splitChromeArg(arg string) (string, any) {
	arg = strings.TrimLeft(strings.TrimSpace(arg), "-")
	if arg == "" {
		return "", nil
	}
	if name, value, found := strings.Cut(arg, "="); found {
		return name, value
	}
	return arg, true
}

// NewSession opens a fresh tab with its own lifecycle context.
func (m *Manager) NewSession(ctx context.Context) (*Session, error) {
	m.mu.Lock()
	if m.isClosed {
		m.mu.Unlock()
		return nil, fmt.Errorf("browser manager is shut down")
	}
	m.wg.Add(1)
	m.mu.Unlock()

	tabCtx, tabCancel := chromedp.NewContext(m.allocCtx)

	// Forces target creation so launch failures surface here, not on the
	// first interaction.
	if err := chromedp.Run(tabCtx); err != nil {
		tabCancel()
		m.wg.Done()
		return nil, fmt.Errorf("starting browser target: %w", err)
	}

	// The window-size flag only hints the initial window; the emulation
	// override pins the actual viewport the page lays out against.
	if w, h := m.cfg.Browser.ViewportWidth, m.cfg.Browser.ViewportHeight; w > 0 && h > 0 {
		if err := chromedp.Run(tabCtx, emulation.SetDeviceMetricsOverride(int64(w), int64(h), 1.0, false)); err != nil {
			tabCancel()
			m.wg.Done()
			return nil, fmt.Errorf("applying viewport override: %w", err)
		}
	}

	sessionID := uuid.New().String()
	s := &Session{
		id:     sessionID,
		ctx:    tabCtx,
		cancel: tabCancel,
		logger: m.logger.With(zap.String("session_id", sessionID)),
		cfg:    m.cfg,
		typist: humanoid.NewTypist(humanoid.Config{
			Enabled:     m.cfg.Browser.Humanoid.Enabled,
			KeyDelayMin: m.cfg.Browser.Humanoid.KeyDelayMin,
			KeyDelayMax: m.cfg.Browser.Humanoid.KeyDelayMax,
		}, rand.New(rand.NewSource(time.Now().UnixNano()))),
		onClose: m.wg.Done,
	}

	// Honor caller cancellation for the whole session lifetime.
	context.AfterFunc(ctx, s.Close)

	s.logger.Debug("Session created")
	return s, nil
}

// Shutdown waits for open sessions (bounded) and stops the browser.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	if m.isClosed {
		m.mu.Unlock()
		return nil
	}
	m.isClosed = true
	m.mu.Unlock()

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	graceCtx, cancel := context.WithTimeout(ctx, shutdownGracePeriod)
	defer cancel()
	select {
	case <-done:
	case <-graceCtx.Done():
		m.logger.Warn("Timed out waiting for sessions to close; forcing browser shutdown")
	}

	m.allocCancel()
	m.logger.Info("Browser manager shut down")
	return nil
}
