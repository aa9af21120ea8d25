package mocks

import (
	"sync"

	"github.com/user/webrec/pkg/ports"
)

// DebugSink is a mock implementation of ports.DebugSink.
type DebugSink struct {
	mu sync.RWMutex

	enabled bool

	Snapshots   map[uint64][]byte
	Formats     map[uint64]ports.SnapshotFormat
	SummaryJSON []byte
}

// NewDebugSink creates a new mock DebugSink.
func NewDebugSink(enabled bool) *DebugSink {
	return &DebugSink{
		enabled:   enabled,
		Snapshots: make(map[uint64][]byte),
		Formats:   make(map[uint64]ports.SnapshotFormat),
	}
}

func (m *DebugSink) Enabled() bool {
	return m.enabled
}

func (m *DebugSink) SaveSnapshot(sequence uint64, format ports.SnapshotFormat, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Snapshots[sequence] = data
	m.Formats[sequence] = format
	return nil
}

func (m *DebugSink) SaveSummaryJSON(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SummaryJSON = data
	return nil
}

// SnapshotCount returns the number of saved snapshots.
func (m *DebugSink) SnapshotCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.Snapshots)
}

var _ ports.DebugSink = (*DebugSink)(nil)
