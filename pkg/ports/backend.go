package ports

import (
	"errors"
	"time"

	"github.com/user/webrec/pkg/timing"
)

var (
	// ErrBackendBusy is returned by Submit when the backend cannot accept a
	// frame right now (pipeline busy or flushing). The caller may retry.
	ErrBackendBusy = errors.New("backend: busy")

	// ErrBackendEndOfStream is returned by Submit after the backend has seen
	// end of input. Submitting after Finalize is a caller bug.
	ErrBackendEndOfStream = errors.New("backend: end of stream")
)

// RawFrame is a decoded picture as packed 8-bit samples.
type RawFrame struct {
	Width    int
	Height   int
	Channels int    // Samples per pixel; 4 for RGBA
	Samples  []byte // len == Width*Height*Channels, row stride Width*Channels
}

// Stride returns the number of bytes per row.
func (f RawFrame) Stride() int {
	return f.Width * f.Channels
}

// BackendConfig configures an encoder backend.
type BackendConfig struct {
	Width      int
	Height     int
	Rate       timing.Rate
	OutputPath string
	Quality    int      // 0-100, higher is better; 0 selects the backend default
	Codecs     []string // Preferred codecs in fallback order (ffmpeg only)
}

// EncoderBackend abstracts a streaming encoder/muxer that writes a single
// video stream into a container file.
type EncoderBackend interface {
	// Name identifies the backend in logs.
	Name() string

	// Init allocates the encoder and opens the output file.
	Init(cfg BackendConfig) error

	// Submit encodes one frame at the given presentation time.
	// Presentation times are strictly increasing.
	Submit(frame RawFrame, pts time.Duration) error

	// Finalize signals end of input, drains buffered output and closes the
	// output file. The file is only playable after Finalize returns nil.
	Finalize() error
}
