// Package backendselect picks an encoder backend from a requested kind and
// the output file extension, falling back to a pure-Go writer when ffmpeg is
// missing.
package backendselect

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/user/webrec/pkg/adapters/ffmpegbackend"
	"github.com/user/webrec/pkg/adapters/mjpegbackend"
	"github.com/user/webrec/pkg/adapters/mp4backend"
	"github.com/user/webrec/pkg/ports"
)

// Kind names a backend family.
type Kind string

const (
	// KindAuto tries ffmpeg first and falls back by output extension.
	KindAuto Kind = "auto"
	// KindFFmpeg pipes raw frames into an ffmpeg subprocess.
	KindFFmpeg Kind = "ffmpeg"
	// KindMP4 writes fragmented MP4 with JPEG samples.
	KindMP4 Kind = "mp4"
	// KindMJPEG writes a Motion-JPEG AVI.
	KindMJPEG Kind = "mjpeg"
)

var (
	// ErrUnknownKind is returned for an unrecognised backend name.
	ErrUnknownKind = errors.New("backendselect: unknown backend")

	// ErrNoBackendAvailable is returned when auto selection finds nothing
	// able to write the requested container.
	ErrNoBackendAvailable = errors.New("backendselect: no backend available")
)

// ParseKind parses a backend name.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case "", KindAuto:
		return KindAuto, nil
	case KindFFmpeg, KindMP4, KindMJPEG:
		return k, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
}

// Info describes the selection outcome.
type Info struct {
	Kind         Kind
	Requested    Kind
	FallbackUsed bool
}

// Options configures selection.
type Options struct {
	// FFmpegPath is an optional custom path to the ffmpeg binary.
	FFmpegPath string
	// FragmentFrames is the mp4 fragment size; 0 selects the default.
	FragmentFrames int
	// Logger is used to log fallback warnings.
	Logger ports.Logger

	// ffmpegAvailable overrides the ffmpeg probe in tests.
	ffmpegAvailable func(string) bool
}

// New returns a backend for the requested kind and output path.
//
// The auto selection flow:
//  1. ffmpeg, when a binary can be found
//  2. mp4 for .mp4/.m4v/.mov outputs
//  3. mjpeg for .avi outputs
func New(kind Kind, outputPath string, opts Options) (ports.EncoderBackend, Info, error) {
	info := Info{Requested: kind}

	switch kind {
	case KindFFmpeg:
		info.Kind = KindFFmpeg
		return ffmpegbackend.New(opts.FFmpegPath, opts.Logger), info, nil
	case KindMP4:
		info.Kind = KindMP4
		return mp4backend.New(opts.FragmentFrames, opts.Logger), info, nil
	case KindMJPEG:
		info.Kind = KindMJPEG
		return mjpegbackend.New(opts.Logger), info, nil
	case KindAuto, "":
		return selectAuto(outputPath, opts, info)
	default:
		return nil, info, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
}

func selectAuto(outputPath string, opts Options, info Info) (ports.EncoderBackend, Info, error) {
	available := opts.ffmpegAvailable
	if available == nil {
		available = ffmpegbackend.IsAvailable
	}

	if available(opts.FFmpegPath) {
		info.Kind = KindFFmpeg
		return ffmpegbackend.New(opts.FFmpegPath, opts.Logger), info, nil
	}

	ext := strings.ToLower(filepath.Ext(outputPath))
	switch ext {
	case ".mp4", ".m4v", ".mov":
		info.Kind = KindMP4
		info.FallbackUsed = true
		opts.Logger.Warn("ffmpeg not found, falling back to the built-in MP4 writer (JPEG samples)")
		return mp4backend.New(opts.FragmentFrames, opts.Logger), info, nil
	case ".avi":
		info.Kind = KindMJPEG
		info.FallbackUsed = true
		opts.Logger.Warn("ffmpeg not found, falling back to the built-in Motion-JPEG writer")
		return mjpegbackend.New(opts.Logger), info, nil
	default:
		return nil, info, fmt.Errorf("%w: ffmpeg not found and no built-in writer for %q (use .mp4 or .avi)", ErrNoBackendAvailable, ext)
	}
}
