package encode

import (
	"errors"
)

var (
	// ErrEncoderInit is returned by Start when the backend cannot be constructed.
	ErrEncoderInit = errors.New("encode: encoder init failed")

	// ErrNotStarted is returned when a session is used before Start.
	ErrNotStarted = errors.New("encode: session not started")

	// ErrNonMonotonicTimestamp is returned when a frame's presentation time is
	// not strictly greater than the previous one.
	ErrNonMonotonicTimestamp = errors.New("encode: non-monotonic timestamp")

	// ErrPushAfterFinalize is returned when a frame is pushed after the stream
	// has ended.
	ErrPushAfterFinalize = errors.New("encode: push after finalize")

	// ErrAlreadyFinalized is returned by a second call to Finish.
	ErrAlreadyFinalized = errors.New("encode: already finalized")

	// ErrFrameSize is returned when a frame does not match the session size.
	ErrFrameSize = errors.New("encode: frame size does not match session")

	// ErrBusy wraps a backend busy/flushing response. The push may be retried.
	ErrBusy = errors.New("encode: backend busy")

	// ErrBackend wraps an unrecoverable backend failure.
	ErrBackend = errors.New("encode: backend failure")
)

// IsRetryable reports whether err is a transient backend condition and the
// same push may be tried again.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrBusy)
}

// IsProgrammerError reports whether err indicates a violated ordering or
// lifecycle rule rather than an environmental fault.
func IsProgrammerError(err error) bool {
	return errors.Is(err, ErrNotStarted) ||
		errors.Is(err, ErrNonMonotonicTimestamp) ||
		errors.Is(err, ErrPushAfterFinalize) ||
		errors.Is(err, ErrAlreadyFinalized) ||
		errors.Is(err, ErrFrameSize)
}
