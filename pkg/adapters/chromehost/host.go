// Package chromehost implements ports.RenderHost on Chrome/Chromium driven
// through the DevTools protocol.
package chromehost

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"github.com/user/webrec/pkg/adapters/playwrighthost"
	"github.com/user/webrec/pkg/ports"
)

// ErrNotLaunched is returned when the host is used before Launch.
var ErrNotLaunched = errors.New("chromehost: not launched")

// Host implements ports.RenderHost using chromedp.
type Host struct {
	logger ports.Logger

	allocCtx    context.Context
	allocCancel context.CancelFunc
	ctx         context.Context
	cancel      context.CancelFunc

	opts ports.HostOptions

	loaded     chan struct{}
	loadedOnce sync.Once
	wg         sync.WaitGroup

	// installChromium is replaced in tests.
	installChromium func() (string, error)
}

// New creates a new Host.
func New(logger ports.Logger) *Host {
	return &Host{
		logger:          logger.WithComponent("chrome"),
		loaded:          make(chan struct{}),
		installChromium: playwrighthost.InstallChromium,
	}
}

// allocatorOptions returns the Chrome flag set for the given options.
func allocatorOptions(opts ports.HostOptions, chromePath string) []chromedp.ExecAllocatorOption {
	o := []chromedp.ExecAllocatorOption{
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
		chromedp.ExecPath(chromePath),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-background-networking", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-sync", true),
		chromedp.Flag("disable-translate", true),
		chromedp.Flag("metrics-recording-only", true),
		chromedp.Flag("mute-audio", true),
		chromedp.Flag("safebrowsing-disable-auto-update", true),
		chromedp.Flag("hide-scrollbars", true),
		chromedp.Flag("force-device-scale-factor", "1"),
		chromedp.WindowSize(opts.Width, opts.Height),
	}

	if opts.Headless {
		o = append(o, chromedp.Flag("headless", "new"))
	}
	if opts.Incognito {
		o = append(o, chromedp.Flag("incognito", true))
	}
	if opts.UserAgent != "" {
		o = append(o, chromedp.UserAgent(opts.UserAgent))
	}
	if opts.IgnoreHTTPSErrors {
		o = append(o,
			chromedp.Flag("ignore-certificate-errors", true),
			chromedp.Flag("ignore-certificate-errors-spki-list", true),
			chromedp.Flag("allow-insecure-localhost", true))
	}
	if opts.ProxyServer != "" {
		o = append(o, chromedp.Flag("proxy-server", opts.ProxyServer))
	}

	// Server and container execution
	o = append(o,
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-software-rasterizer", true),
		chromedp.Flag("disable-setuid-sandbox", true),
		chromedp.Flag("disable-namespace-sandbox", true),
		chromedp.Flag("disable-seccomp-filter-sandbox", true),
		chromedp.Flag("no-zygote", true),
	)
	return o
}

// Launch starts Chrome and pins the viewport to opts.Width x opts.Height at
// device scale 1 so snapshots match the encoder dimensions.
func (h *Host) Launch(ctx context.Context, opts ports.HostOptions) error {
	h.opts = opts

	chromePath := ResolveChromePath(opts.ChromePath)
	if chromePath == "" {
		h.logger.Info("Chrome not found, installing Chromium via Playwright")
		path, err := h.installChromium()
		if err != nil {
			return fmt.Errorf("chrome not found: please install Chrome/Chromium, set CHROME_PATH environment variable, or use --chrome-path option: %w", err)
		}
		chromePath = path
	}
	h.logger.Debug("Using Chrome at %s", chromePath)

	h.allocCtx, h.allocCancel = chromedp.NewExecAllocator(ctx, allocatorOptions(opts, chromePath)...)
	h.ctx, h.cancel = chromedp.NewContext(h.allocCtx)

	chromedp.ListenTarget(h.ctx, func(ev interface{}) {
		if _, ok := ev.(*page.EventLoadEventFired); ok {
			h.loadedOnce.Do(func() { close(h.loaded) })
		}
	})

	actions := []chromedp.Action{
		page.Enable(),
		emulation.SetDeviceMetricsOverride(int64(opts.Width), int64(opts.Height), 1, false).
			WithScreenWidth(int64(opts.Width)).
			WithScreenHeight(int64(opts.Height)),
	}
	if len(opts.Headers) > 0 {
		headers := make(network.Headers, len(opts.Headers))
		for k, v := range opts.Headers {
			headers[k] = v
		}
		actions = append(actions, network.Enable(), network.SetExtraHTTPHeaders(headers))
	}

	if err := chromedp.Run(h.ctx, actions...); err != nil {
		h.Close()
		return fmt.Errorf("prepare page: %w", err)
	}
	return nil
}

// Navigate starts loading url without waiting for the load event; Loaded
// fires when it arrives.
func (h *Host) Navigate(url string) error {
	if h.ctx == nil {
		return ErrNotLaunched
	}
	return chromedp.Run(h.ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		_, _, errText, err := page.Navigate(url).Do(ctx)
		if err != nil {
			return fmt.Errorf("navigate: %w", err)
		}
		if errText != "" {
			return fmt.Errorf("navigate: %s", errText)
		}
		return nil
	}))
}

// Loaded implements ports.RenderHost.
func (h *Host) Loaded() <-chan struct{} {
	return h.loaded
}

func screenshotFormat(f ports.SnapshotFormat) page.CaptureScreenshotFormat {
	switch f {
	case ports.SnapshotJPEG:
		return page.CaptureScreenshotFormatJpeg
	case ports.SnapshotWebP:
		return page.CaptureScreenshotFormatWebp
	default:
		return page.CaptureScreenshotFormatPng
	}
}

// RequestSnapshot captures the viewport on a separate goroutine.
func (h *Host) RequestSnapshot(ctx context.Context, cb ports.SnapshotCallback) {
	if h.ctx == nil {
		cb(nil, ErrNotLaunched)
		return
	}

	params := page.CaptureScreenshot().
		WithFormat(screenshotFormat(h.opts.Format)).
		WithFromSurface(true)
	if h.opts.Format != ports.SnapshotPNG && h.opts.Quality > 0 {
		params = params.WithQuality(int64(h.opts.Quality))
	}

	h.wg.Add(1)
	go func() {
		defer h.wg.Done()

		runCtx, cancel := context.WithCancel(h.ctx)
		defer cancel()
		stop := context.AfterFunc(ctx, cancel)
		defer stop()

		var data []byte
		err := chromedp.Run(runCtx, chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			data, err = params.Do(ctx)
			return err
		}))
		if err != nil {
			cb(nil, fmt.Errorf("capture screenshot: %w", err))
			return
		}
		cb(data, nil)
	}()
}

// Close shuts down the browser.
func (h *Host) Close() error {
	h.wg.Wait()

	if h.cancel != nil {
		h.cancel()
	}

	// Give Chrome a moment to shut down gracefully, then force kill
	time.Sleep(100 * time.Millisecond)

	if h.allocCancel != nil {
		h.allocCancel()
	}
	h.ctx = nil
	return nil
}

// Ensure Host implements ports.RenderHost
var _ ports.RenderHost = (*Host)(nil)
