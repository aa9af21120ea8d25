// Package mjpegbackend writes a Motion-JPEG AVI file using icza/mjpeg.
package mjpegbackend

import (
	"errors"
	"fmt"
	"time"

	"github.com/icza/mjpeg"

	"github.com/user/webrec/pkg/adapters/pixeldecoder"
	"github.com/user/webrec/pkg/ports"
	"github.com/user/webrec/pkg/timing"
)

const defaultQuality = 85

var (
	// ErrFractionalRate is returned by Init for rates that are not a whole
	// number of frames per second; the AVI header stores an integer rate.
	ErrFractionalRate = errors.New("mjpegbackend: frame rate must be an integer")

	// ErrNotInitialized is returned when Submit or Finalize run before Init.
	ErrNotInitialized = errors.New("mjpegbackend: not initialized")
)

// Backend implements ports.EncoderBackend.
type Backend struct {
	logger ports.Logger

	aw       mjpeg.AviWriter
	cfg      ports.BackendConfig
	quality  int
	cursor   *timing.Cursor
	last     []byte
	finished bool
}

// New creates an MJPEG backend.
func New(logger ports.Logger) *Backend {
	return &Backend{logger: logger.WithComponent("mjpeg")}
}

// Name implements ports.EncoderBackend.
func (b *Backend) Name() string {
	return "mjpeg"
}

// Init opens the AVI writer.
func (b *Backend) Init(cfg ports.BackendConfig) error {
	if b.aw != nil {
		return fmt.Errorf("mjpegbackend: already initialized")
	}
	if !cfg.Rate.IsInteger() {
		return fmt.Errorf("%w: %s", ErrFractionalRate, cfg.Rate)
	}
	fps := int32(cfg.Rate.Num / cfg.Rate.Den)

	aw, err := mjpeg.New(cfg.OutputPath, int32(cfg.Width), int32(cfg.Height), fps)
	if err != nil {
		return fmt.Errorf("create avi: %w", err)
	}
	b.aw = aw
	b.cfg = cfg
	b.cursor = timing.NewCursor(cfg.Rate)
	b.quality = cfg.Quality
	if b.quality <= 0 {
		b.quality = defaultQuality
	}
	return nil
}

// Submit JPEG-encodes the frame and appends it, repeating the previous
// frame for skipped slots.
func (b *Backend) Submit(frame ports.RawFrame, pts time.Duration) error {
	if b.finished {
		return ports.ErrBackendEndOfStream
	}
	if b.aw == nil {
		return ErrNotInitialized
	}

	_, gap, err := b.cursor.Advance(pts)
	if err != nil {
		return err
	}

	data, err := pixeldecoder.Encode(pixeldecoder.ToImage(frame), ports.SnapshotJPEG, b.quality)
	if err != nil {
		return err
	}

	fill := b.last
	if fill == nil {
		fill = data
	}
	for i := uint64(0); i < gap; i++ {
		if err := b.aw.AddFrame(fill); err != nil {
			return fmt.Errorf("add held frame: %w", err)
		}
	}
	if err := b.aw.AddFrame(data); err != nil {
		return fmt.Errorf("add frame: %w", err)
	}
	b.last = data
	return nil
}

// Finalize writes the AVI index and closes the file.
func (b *Backend) Finalize() error {
	if b.finished {
		return ports.ErrBackendEndOfStream
	}
	if b.aw == nil {
		return ErrNotInitialized
	}
	b.finished = true

	if err := b.aw.Close(); err != nil {
		return fmt.Errorf("close avi: %w", err)
	}
	b.logger.Debug("Wrote %d frames to %s", b.cursor.Next(), b.cfg.OutputPath)
	return nil
}

// Ensure Backend implements ports.EncoderBackend
var _ ports.EncoderBackend = (*Backend)(nil)
