package pipeline

import (
	"time"

	"github.com/user/webrec/pkg/ports"
	"github.com/user/webrec/pkg/timing"
)

// =============================================================================
// Channel Types
// =============================================================================

// CapturedFrame is one snapshot result tagged with its capture sequence.
// Payload ownership moves to the receiver when the frame is sent.
type CapturedFrame struct {
	Sequence   uint64
	Payload    []byte // Compressed still image (PNG, JPEG or WebP)
	CapturedAt time.Time
}

// Message is the value carried by the frame channel: either a frame or the
// end-of-stream marker.
type Message struct {
	Frame       CapturedFrame
	EndOfStream bool
}

// FrameMessage wraps a captured frame.
func FrameMessage(f CapturedFrame) Message {
	return Message{Frame: f}
}

// EndOfStreamMessage returns the end-of-stream marker.
func EndOfStreamMessage() Message {
	return Message{EndOfStream: true}
}

// =============================================================================
// Capture Stage Types
// =============================================================================

// CaptureStats counts scheduler activity.
type CaptureStats struct {
	Issued   uint64 // Snapshot requests sent to the host
	Captured uint64 // Successful captures pushed to the channel
	Failed   uint64 // Capture callbacks that returned an error
	Late     uint64 // Callbacks that arrived after the scheduler was abandoned
}

// =============================================================================
// Encode Stage Types
// =============================================================================

// EncodeStats counts encoder worker activity.
type EncodeStats struct {
	Received     uint64        // Frames dequeued from the channel
	Encoded      uint64        // Frames accepted by the backend
	DecodeDrops  uint64        // Frames dropped by the pixel decoder
	BusyDrops    uint64        // Frames dropped after exhausting busy retries
	LastSequence uint64        // Sequence of the last encoded frame
	LastPTS      time.Duration // Presentation time of the last encoded frame
}

// =============================================================================
// Snapshot Stage Types
// =============================================================================

// SnapshotInput contains parameters for a one-shot snapshot.
type SnapshotInput struct {
	URL     string
	Host    ports.HostOptions
	Delay   time.Duration // Extra wait after the load signal
	Timeout time.Duration
}

// SnapshotResult contains a validated snapshot.
type SnapshotResult struct {
	Data  []byte // Encoded image exactly as the host returned it
	Frame ports.RawFrame
}

// =============================================================================
// Recording Types
// =============================================================================

// RecordingSummary describes a finished recording.
type RecordingSummary struct {
	SessionID  string        `json:"sessionId"`
	URL        string        `json:"url"`
	Output     string        `json:"output"`
	Backend    string        `json:"backend"`
	Width      int           `json:"width"`
	Height     int           `json:"height"`
	Rate       timing.Rate   `json:"-"`
	RateString string        `json:"rate"`
	Capture    CaptureStats  `json:"capture"`
	Encode     EncodeStats   `json:"encode"`
	StartedAt  time.Time     `json:"startedAt"`
	Wall       time.Duration `json:"wallNs"`
	Abandoned  bool          `json:"abandoned"` // Grace period expired with a capture in flight
}
