// Package nullsink provides a no-op debug sink implementation.
package nullsink

import (
	"github.com/user/webrec/pkg/ports"
)

// Sink is a no-op implementation of ports.DebugSink.
// It discards all debug output.
type Sink struct{}

// New creates a new NullSink.
func New() *Sink {
	return &Sink{}
}

// Enabled returns false as this sink discards all output.
func (s *Sink) Enabled() bool {
	return false
}

// SaveSnapshot does nothing.
func (s *Sink) SaveSnapshot(sequence uint64, format ports.SnapshotFormat, data []byte) error {
	return nil
}

// SaveSummaryJSON does nothing.
func (s *Sink) SaveSummaryJSON(data []byte) error {
	return nil
}

// Ensure Sink implements ports.DebugSink
var _ ports.DebugSink = (*Sink)(nil)
