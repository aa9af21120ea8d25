package ffmpegbackend

import "errors"

var (
	// ErrFFmpegNotFound is returned when no ffmpeg binary can be located.
	ErrFFmpegNotFound = errors.New("ffmpegbackend: ffmpeg not found")

	// ErrNoCodec is returned when none of the preferred codecs is available.
	ErrNoCodec = errors.New("ffmpegbackend: no usable codec")

	// ErrNotInitialized is returned when Submit or Finalize run before Init.
	ErrNotInitialized = errors.New("ffmpegbackend: not initialized")

	// ErrProcessExited is returned when the ffmpeg process stops accepting input.
	ErrProcessExited = errors.New("ffmpegbackend: ffmpeg exited")
)
