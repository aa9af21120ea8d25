// Package encode implements the encoder session and the worker that feeds it
// from the frame channel.
package encode

import (
	"errors"
	"fmt"
	"time"

	"github.com/user/webrec/pkg/ports"
	"github.com/user/webrec/pkg/timing"
)

// State is the lifecycle state of a Session.
type State int

const (
	StateUninitialized State = iota
	StateStarted
	StateFinalized
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateStarted:
		return "started"
	case StateFinalized:
		return "finalized"
	default:
		return "unknown"
	}
}

// SessionConfig holds the immutable parameters of one output stream.
type SessionConfig struct {
	Width      int
	Height     int
	Rate       timing.Rate
	OutputPath string
	Quality    int
	Codecs     []string
}

// Session owns one encoder backend from Start to Finish and stamps every
// frame from its sequence number. It is not safe for concurrent use; a
// single goroutine owns it after Start returns.
type Session struct {
	backend ports.EncoderBackend
	cfg     SessionConfig
	state   State

	pushed  bool
	lastSeq uint64
	lastPTS time.Duration
	frames  uint64
}

// Start validates cfg, initializes the backend and returns a started session.
func Start(backend ports.EncoderBackend, cfg SessionConfig) (*Session, error) {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("%w: invalid size %dx%d", ErrEncoderInit, cfg.Width, cfg.Height)
	}
	if err := cfg.Rate.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncoderInit, err)
	}
	if cfg.OutputPath == "" {
		return nil, fmt.Errorf("%w: empty output path", ErrEncoderInit)
	}

	err := backend.Init(ports.BackendConfig{
		Width:      cfg.Width,
		Height:     cfg.Height,
		Rate:       cfg.Rate,
		OutputPath: cfg.OutputPath,
		Quality:    cfg.Quality,
		Codecs:     cfg.Codecs,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrEncoderInit, backend.Name(), err)
	}

	return &Session{
		backend: backend,
		cfg:     cfg,
		state:   StateStarted,
	}, nil
}

// Push stamps frame with the presentation time of sequence and submits it.
// A retryable error leaves the session unchanged so the same sequence can be
// pushed again.
func (s *Session) Push(frame ports.RawFrame, sequence uint64) error {
	switch s.state {
	case StateUninitialized:
		return ErrNotStarted
	case StateFinalized:
		return fmt.Errorf("%w: sequence %d", ErrPushAfterFinalize, sequence)
	}

	if frame.Width != s.cfg.Width || frame.Height != s.cfg.Height {
		return fmt.Errorf("%w: got %dx%d, want %dx%d", ErrFrameSize,
			frame.Width, frame.Height, s.cfg.Width, s.cfg.Height)
	}

	pts, err := timing.Timestamp(sequence, s.cfg.Rate)
	if err != nil {
		return fmt.Errorf("sequence %d: %w", sequence, err)
	}
	if s.pushed && pts <= s.lastPTS {
		return fmt.Errorf("%w: sequence %d (pts %v) after sequence %d (pts %v)",
			ErrNonMonotonicTimestamp, sequence, pts, s.lastSeq, s.lastPTS)
	}

	if err := s.backend.Submit(frame, pts); err != nil {
		switch {
		case errors.Is(err, ports.ErrBackendBusy):
			return fmt.Errorf("%w: sequence %d: %w", ErrBusy, sequence, err)
		case errors.Is(err, ports.ErrBackendEndOfStream):
			return fmt.Errorf("%w: sequence %d: %w", ErrPushAfterFinalize, sequence, err)
		default:
			return fmt.Errorf("%w: submit sequence %d: %w", ErrBackend, sequence, err)
		}
	}

	s.pushed = true
	s.lastSeq = sequence
	s.lastPTS = pts
	s.frames++
	return nil
}

// Finish ends the stream, drains the backend and releases the output file.
// Only the first call reaches the backend; later calls fail with
// ErrAlreadyFinalized.
func (s *Session) Finish() error {
	switch s.state {
	case StateUninitialized:
		return ErrNotStarted
	case StateFinalized:
		return ErrAlreadyFinalized
	}
	s.state = StateFinalized

	if err := s.backend.Finalize(); err != nil {
		return fmt.Errorf("%w: finalize: %w", ErrBackend, err)
	}
	return nil
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	return s.state
}

// Frames returns the number of frames accepted by the backend.
func (s *Session) Frames() uint64 {
	return s.frames
}

// LastPTS returns the presentation time of the last accepted frame.
func (s *Session) LastPTS() time.Duration {
	return s.lastPTS
}

// Backend returns the backend name.
func (s *Session) Backend() string {
	return s.backend.Name()
}
