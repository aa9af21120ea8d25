// Package ffmpegbackend encodes raw RGBA frames by piping them into an
// ffmpeg subprocess that writes the output container directly.
package ffmpegbackend

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/user/webrec/pkg/ports"
	"github.com/user/webrec/pkg/timing"
)

// DefaultCodecs is the codec fallback order: software HEVC, then hardware
// HEVC encoders, then software H.264.
var DefaultCodecs = []string{"libx265", "hevc_nvenc", "hevc_vaapi", "hevc_qsv", "libx264"}

// Backend implements ports.EncoderBackend on top of ffmpeg.
type Backend struct {
	ffmpegPath string
	logger     ports.Logger

	mu       sync.Mutex
	cmd      *exec.Cmd
	stdin    io.WriteCloser
	stderr   syncBuffer
	cfg      ports.BackendConfig
	codec    string
	cursor   *timing.Cursor
	last     []byte
	finished bool
}

// New creates a backend. customPath may be empty to search for ffmpeg.
func New(customPath string, logger ports.Logger) *Backend {
	return &Backend{
		ffmpegPath: customPath,
		logger:     logger.WithComponent("ffmpeg"),
	}
}

// Name implements ports.EncoderBackend.
func (b *Backend) Name() string {
	if b.codec != "" {
		return "ffmpeg/" + b.codec
	}
	return "ffmpeg"
}

// Codec returns the selected ffmpeg encoder after Init.
func (b *Backend) Codec() string {
	return b.codec
}

// Init locates ffmpeg, picks a codec and starts the process.
func (b *Backend) Init(cfg ports.BackendConfig) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.cmd != nil {
		return fmt.Errorf("ffmpegbackend: already initialized")
	}

	path, err := FindFFmpeg(b.ffmpegPath)
	if err != nil {
		return err
	}

	available, err := ListEncoders(path)
	if err != nil {
		return err
	}
	preferred := cfg.Codecs
	if len(preferred) == 0 {
		preferred = DefaultCodecs
	}
	codec, err := SelectCodec(preferred, available)
	if err != nil {
		return err
	}
	if codec != preferred[0] {
		b.logger.Warn("%s not available, falling back to %s", preferred[0], codec)
	}

	b.cfg = cfg
	b.codec = codec
	b.cursor = timing.NewCursor(cfg.Rate)

	b.cmd = exec.Command(path, buildArgs(cfg, codec)...)
	b.cmd.Stderr = &b.stderr

	stdin, err := b.cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("failed to get stdin pipe: %w", err)
	}
	b.stdin = stdin

	if err := b.cmd.Start(); err != nil {
		return fmt.Errorf("failed to start ffmpeg: %w", err)
	}

	b.logger.Debug("Started %s (%s) for %s", path, codec, cfg.OutputPath)
	return nil
}

func buildArgs(cfg ports.BackendConfig, codec string) []string {
	args := []string{
		"-hide_banner",
		"-loglevel", "error",
		"-y",
		"-f", "rawvideo",
		"-pix_fmt", "rgba",
		"-s", fmt.Sprintf("%dx%d", cfg.Width, cfg.Height),
		"-framerate", fmt.Sprintf("%d/%d", cfg.Rate.Num, cfg.Rate.Den),
		"-i", "pipe:0",
		"-c:v", codec,
	}
	if strings.HasSuffix(codec, "_vaapi") {
		args = append(args, "-vf", "format=nv12,hwupload")
	} else {
		args = append(args, "-pix_fmt", "yuv420p")
	}
	args = append(args, qualityArgs(codec, cfg.Quality)...)

	switch strings.ToLower(filepath.Ext(cfg.OutputPath)) {
	case ".mp4", ".mov":
		if strings.HasPrefix(codec, "hevc") || codec == "libx265" {
			args = append(args, "-tag:v", "hvc1")
		}
	}

	return append(args, cfg.OutputPath)
}

// qualityArgs maps the 1-100 quality scale (higher is better) onto each
// encoder's native knob. Zero keeps the encoder default.
func qualityArgs(codec string, quality int) []string {
	if quality <= 0 {
		return nil
	}
	if quality > 100 {
		quality = 100
	}
	q := 51 - quality*51/100

	switch {
	case codec == "libx264" || codec == "libx265":
		return []string{"-preset", "fast", "-crf", fmt.Sprint(q)}
	case strings.HasSuffix(codec, "_nvenc"):
		return []string{"-rc", "vbr", "-cq", fmt.Sprint(q)}
	case strings.HasSuffix(codec, "_qsv"):
		return []string{"-global_quality", fmt.Sprint(q)}
	case strings.HasSuffix(codec, "_vaapi"):
		return []string{"-qp", fmt.Sprint(q)}
	default:
		return nil
	}
}

// Submit writes the frame for its slot. Slots skipped since the previous
// frame repeat the previous picture so the output stays constant-rate.
func (b *Backend) Submit(frame ports.RawFrame, pts time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.finished {
		return ports.ErrBackendEndOfStream
	}
	if b.stdin == nil {
		return ErrNotInitialized
	}
	if frame.Width != b.cfg.Width || frame.Height != b.cfg.Height || frame.Channels != 4 {
		return fmt.Errorf("ffmpegbackend: frame %dx%dx%d does not match %dx%d RGBA",
			frame.Width, frame.Height, frame.Channels, b.cfg.Width, b.cfg.Height)
	}

	_, gap, err := b.cursor.Advance(pts)
	if err != nil {
		return err
	}

	fill := b.last
	if fill == nil {
		fill = frame.Samples
	}
	for i := uint64(0); i < gap; i++ {
		if err := b.write(fill); err != nil {
			return err
		}
	}
	if err := b.write(frame.Samples); err != nil {
		return err
	}
	b.last = frame.Samples
	return nil
}

func (b *Backend) write(samples []byte) error {
	if _, err := b.stdin.Write(samples); err != nil {
		return fmt.Errorf("%w: %w: %s", ErrProcessExited, err, b.stderrTail())
	}
	return nil
}

// Finalize closes stdin and waits for ffmpeg to write the trailer.
func (b *Backend) Finalize() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.finished {
		return ports.ErrBackendEndOfStream
	}
	if b.stdin == nil {
		return ErrNotInitialized
	}
	b.finished = true

	closeErr := b.stdin.Close()
	b.stdin = nil

	if err := b.cmd.Wait(); err != nil {
		return fmt.Errorf("ffmpeg encoding failed: %w\nstderr: %s", err, b.stderrTail())
	}
	if closeErr != nil && !errors.Is(closeErr, io.ErrClosedPipe) {
		return fmt.Errorf("close ffmpeg stdin: %w", closeErr)
	}

	b.logger.Debug("ffmpeg wrote %d frames to %s", b.cursor.Next(), b.cfg.OutputPath)
	return nil
}

// syncBuffer collects ffmpeg's stderr; exec copies into it from its own
// goroutine while Submit may read it.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (s *syncBuffer) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Write(p)
}

func (s *syncBuffer) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.String()
}

func (b *Backend) stderrTail() string {
	s := strings.TrimSpace(b.stderr.String())
	const max = 2000
	if len(s) > max {
		s = s[len(s)-max:]
	}
	return s
}

// Ensure Backend implements ports.EncoderBackend
var _ ports.EncoderBackend = (*Backend)(nil)
