// Package patternhost provides a synthetic render host that draws a moving
// test pattern with the gg library. It needs no browser and is used by the
// pattern source and by tests.
package patternhost

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"math/rand"
	"sync"
	"time"

	"github.com/fogleman/gg"

	"github.com/user/webrec/pkg/adapters/pixeldecoder"
	"github.com/user/webrec/pkg/ports"
)

var (
	// ErrInjected is returned for snapshots selected by Options.Fail.
	ErrInjected = errors.New("patternhost: injected snapshot failure")

	// ErrNotLaunched is returned when a snapshot is requested before Launch.
	ErrNotLaunched = errors.New("patternhost: not launched")
)

// Options tunes the simulated host.
type Options struct {
	// Latency delays every snapshot callback.
	Latency time.Duration
	// Jitter adds a random extra delay in [0, Jitter).
	Jitter time.Duration
	// Fail selects request numbers (starting at 1) that fail.
	Fail func(request uint64) bool
	// Seed for the jitter source.
	Seed int64
}

// Host implements ports.RenderHost with a generated surface.
type Host struct {
	opts Options

	mu       sync.Mutex
	width    int
	height   int
	format   ports.SnapshotFormat
	quality  int
	launched bool
	requests uint64
	rng      *rand.Rand

	loaded     chan struct{}
	loadedOnce sync.Once
	wg         sync.WaitGroup
}

// New creates a pattern host.
func New(opts Options) *Host {
	return &Host{
		opts:   opts,
		rng:    rand.New(rand.NewSource(opts.Seed)),
		loaded: make(chan struct{}),
	}
}

// Launch sets the surface size and snapshot format.
func (h *Host) Launch(ctx context.Context, opts ports.HostOptions) error {
	if opts.Width <= 0 || opts.Height <= 0 {
		return fmt.Errorf("patternhost: invalid size %dx%d", opts.Width, opts.Height)
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.width = opts.Width
	h.height = opts.Height
	h.format = opts.Format
	h.quality = opts.Quality
	h.launched = true
	return nil
}

// Navigate fires the load signal. The URL is ignored.
func (h *Host) Navigate(url string) error {
	h.loadedOnce.Do(func() { close(h.loaded) })
	return nil
}

// Loaded is closed after Navigate.
func (h *Host) Loaded() <-chan struct{} {
	return h.loaded
}

// RequestSnapshot renders the next pattern frame on its own goroutine.
func (h *Host) RequestSnapshot(ctx context.Context, cb ports.SnapshotCallback) {
	h.mu.Lock()
	if !h.launched {
		h.mu.Unlock()
		go cb(nil, ErrNotLaunched)
		return
	}
	h.requests++
	n := h.requests
	delay := h.opts.Latency
	if h.opts.Jitter > 0 {
		delay += time.Duration(h.rng.Int63n(int64(h.opts.Jitter)))
	}
	w, ht, format, quality := h.width, h.height, h.format, h.quality
	h.mu.Unlock()

	h.wg.Add(1)
	go func() {
		defer h.wg.Done()

		if delay > 0 {
			t := time.NewTimer(delay)
			select {
			case <-t.C:
			case <-ctx.Done():
				t.Stop()
				cb(nil, ctx.Err())
				return
			}
		}

		if h.opts.Fail != nil && h.opts.Fail(n) {
			cb(nil, fmt.Errorf("request %d: %w", n, ErrInjected))
			return
		}

		data, err := pixeldecoder.Encode(Render(w, ht, n).Image(), format, quality)
		cb(data, err)
	}()
}

// Requests returns the number of snapshots requested so far.
func (h *Host) Requests() uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.requests
}

// Close waits for in-flight snapshots to call back.
func (h *Host) Close() error {
	h.wg.Wait()
	return nil
}

// Render draws pattern frame n: a hue-cycling background, a bar sweeping
// left to right and the frame number.
func Render(width, height int, n uint64) *gg.Context {
	dc := gg.NewContext(width, height)

	hue := float64(n%360) / 360
	dc.SetColor(hsv(hue, 0.35, 0.25))
	dc.Clear()

	barWidth := float64(width) / 10
	step := float64(width) / 60
	x := float64(n) * step
	for x >= float64(width) {
		x -= float64(width)
	}
	dc.SetColor(color.RGBA{R: 100, G: 180, B: 255, A: 255})
	dc.DrawRectangle(x, 0, barWidth, float64(height))
	dc.Fill()

	dc.SetColor(color.White)
	dc.DrawStringAnchored(fmt.Sprintf("frame %d", n), float64(width)/2, float64(height)/2, 0.5, 0.5)

	return dc
}

func hsv(h, s, v float64) color.RGBA {
	i := int(h * 6)
	f := h*6 - float64(i)
	p := v * (1 - s)
	q := v * (1 - f*s)
	t := v * (1 - (1-f)*s)

	var r, g, b float64
	switch i % 6 {
	case 0:
		r, g, b = v, t, p
	case 1:
		r, g, b = q, v, p
	case 2:
		r, g, b = p, v, t
	case 3:
		r, g, b = p, q, v
	case 4:
		r, g, b = t, p, v
	default:
		r, g, b = v, p, q
	}
	return color.RGBA{R: uint8(r * 255), G: uint8(g * 255), B: uint8(b * 255), A: 255}
}

// Ensure Host implements ports.RenderHost
var _ ports.RenderHost = (*Host)(nil)
