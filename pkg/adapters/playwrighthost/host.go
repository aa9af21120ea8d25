// Package playwrighthost implements ports.RenderHost on a Playwright-managed
// Chromium.
package playwrighthost

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/playwright-community/playwright-go"

	"github.com/user/webrec/pkg/ports"
)

var (
	// ErrNotLaunched is returned when the host is used before Launch.
	ErrNotLaunched = errors.New("playwrighthost: not launched")

	// ErrUnsupportedFormat is returned for snapshot formats Playwright
	// cannot produce.
	ErrUnsupportedFormat = errors.New("playwrighthost: unsupported snapshot format")
)

// InstallChromium downloads the Playwright driver and Chromium if missing
// and returns the Chromium executable path.
func InstallChromium() (string, error) {
	if err := playwright.Install(&playwright.RunOptions{
		Browsers: []string{"chromium"},
		Verbose:  false,
	}); err != nil {
		return "", fmt.Errorf("install chromium: %w", err)
	}

	pw, err := playwright.Run()
	if err != nil {
		return "", fmt.Errorf("start playwright: %w", err)
	}
	defer pw.Stop()

	return pw.Chromium.ExecutablePath(), nil
}

// Host implements ports.RenderHost.
type Host struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	page    playwright.Page
	opts    ports.HostOptions

	loaded     chan struct{}
	loadedOnce sync.Once
	wg         sync.WaitGroup
}

// New creates a new Host.
func New() *Host {
	return &Host{loaded: make(chan struct{})}
}

// Launch installs Chromium if needed, starts it and opens a page sized to
// exactly opts.Width x opts.Height at device scale 1.
func (h *Host) Launch(ctx context.Context, opts ports.HostOptions) error {
	if opts.Format == ports.SnapshotWebP {
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, opts.Format)
	}
	h.opts = opts

	if err := playwright.Install(&playwright.RunOptions{Browsers: []string{"chromium"}}); err != nil {
		return fmt.Errorf("install chromium: %w", err)
	}

	pw, err := playwright.Run()
	if err != nil {
		return fmt.Errorf("start playwright: %w", err)
	}
	h.pw = pw

	launch := playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
		Args:     []string{"--hide-scrollbars", "--mute-audio", "--disable-dev-shm-usage"},
	}
	if opts.ChromePath != "" {
		launch.ExecutablePath = playwright.String(opts.ChromePath)
	}
	if opts.ProxyServer != "" {
		launch.Proxy = &playwright.Proxy{Server: opts.ProxyServer}
	}

	browser, err := pw.Chromium.Launch(launch)
	if err != nil {
		h.Close()
		return fmt.Errorf("launch chromium: %w", err)
	}
	h.browser = browser

	ctxOpts := playwright.BrowserNewContextOptions{
		Viewport:          &playwright.Size{Width: opts.Width, Height: opts.Height},
		DeviceScaleFactor: playwright.Float(1),
		IgnoreHttpsErrors: playwright.Bool(opts.IgnoreHTTPSErrors),
	}
	if opts.UserAgent != "" {
		ctxOpts.UserAgent = playwright.String(opts.UserAgent)
	}
	if len(opts.Headers) > 0 {
		ctxOpts.ExtraHttpHeaders = opts.Headers
	}

	bctx, err := browser.NewContext(ctxOpts)
	if err != nil {
		h.Close()
		return fmt.Errorf("new context: %w", err)
	}

	page, err := bctx.NewPage()
	if err != nil {
		h.Close()
		return fmt.Errorf("new page: %w", err)
	}
	page.OnLoad(func(playwright.Page) {
		h.loadedOnce.Do(func() { close(h.loaded) })
	})
	h.page = page
	return nil
}

// Navigate starts loading url. Loaded fires on the page load event.
func (h *Host) Navigate(url string) error {
	if h.page == nil {
		return ErrNotLaunched
	}
	_, err := h.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateCommit,
	})
	if err != nil {
		return fmt.Errorf("navigate: %w", err)
	}
	return nil
}

// Loaded implements ports.RenderHost.
func (h *Host) Loaded() <-chan struct{} {
	return h.loaded
}

// RequestSnapshot screenshots the viewport on a separate goroutine.
func (h *Host) RequestSnapshot(ctx context.Context, cb ports.SnapshotCallback) {
	if h.page == nil {
		cb(nil, ErrNotLaunched)
		return
	}

	opts := playwright.PageScreenshotOptions{Type: playwright.ScreenshotTypePng}
	if h.opts.Format == ports.SnapshotJPEG {
		opts.Type = playwright.ScreenshotTypeJpeg
		if h.opts.Quality > 0 {
			opts.Quality = playwright.Int(h.opts.Quality)
		}
	}

	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		if err := ctx.Err(); err != nil {
			cb(nil, err)
			return
		}
		data, err := h.page.Screenshot(opts)
		if err != nil {
			cb(nil, fmt.Errorf("screenshot: %w", err))
			return
		}
		cb(data, nil)
	}()
}

// Close shuts down the browser and the Playwright driver.
func (h *Host) Close() error {
	h.wg.Wait()

	var errs []error
	if h.browser != nil {
		if err := h.browser.Close(); err != nil {
			errs = append(errs, err)
		}
		h.browser = nil
	}
	if h.pw != nil {
		if err := h.pw.Stop(); err != nil {
			errs = append(errs, err)
		}
		h.pw = nil
	}
	h.page = nil
	return errors.Join(errs...)
}

// Ensure Host implements ports.RenderHost
var _ ports.RenderHost = (*Host)(nil)
