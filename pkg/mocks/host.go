package mocks

import (
	"context"
	"sync"

	"github.com/user/webrec/pkg/ports"
)

// RenderHost is a mock implementation of ports.RenderHost.
// Snapshot callbacks are parked until the test resolves them, so tests
// control completion order and timing.
type RenderHost struct {
	mu sync.Mutex

	LaunchFunc   func(ctx context.Context, opts ports.HostOptions) error
	NavigateFunc func(url string) error
	// SnapshotFunc, when set, resolves requests immediately instead of
	// parking them.
	SnapshotFunc func(ctx context.Context, cb ports.SnapshotCallback)

	loaded     chan struct{}
	loadedOnce sync.Once
	pending    []ports.SnapshotCallback

	// Recorded calls for verification
	LaunchCalled  bool
	LaunchOptions ports.HostOptions
	NavigatedURL  string
	Requests      int
	MaxInFlight   int
	CloseCalled   bool
}

// NewRenderHost creates a mock host. If loaded is true the load signal is
// already fired.
func NewRenderHost(loaded bool) *RenderHost {
	h := &RenderHost{loaded: make(chan struct{})}
	if loaded {
		h.FireLoaded()
	}
	return h
}

func (m *RenderHost) Launch(ctx context.Context, opts ports.HostOptions) error {
	m.mu.Lock()
	m.LaunchCalled = true
	m.LaunchOptions = opts
	m.mu.Unlock()
	if m.LaunchFunc != nil {
		return m.LaunchFunc(ctx, opts)
	}
	return nil
}

func (m *RenderHost) Navigate(url string) error {
	m.mu.Lock()
	m.NavigatedURL = url
	m.mu.Unlock()
	if m.NavigateFunc != nil {
		return m.NavigateFunc(url)
	}
	return nil
}

func (m *RenderHost) Loaded() <-chan struct{} {
	return m.loaded
}

// FireLoaded closes the load signal.
func (m *RenderHost) FireLoaded() {
	m.loadedOnce.Do(func() { close(m.loaded) })
}

func (m *RenderHost) RequestSnapshot(ctx context.Context, cb ports.SnapshotCallback) {
	m.mu.Lock()
	m.Requests++
	if m.SnapshotFunc != nil {
		m.mu.Unlock()
		m.SnapshotFunc(ctx, cb)
		return
	}
	m.pending = append(m.pending, cb)
	if len(m.pending) > m.MaxInFlight {
		m.MaxInFlight = len(m.pending)
	}
	m.mu.Unlock()
}

// Pending returns the number of unresolved snapshot requests.
func (m *RenderHost) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pending)
}

// Resolve completes the oldest pending request. It reports false if nothing
// was pending.
func (m *RenderHost) Resolve(data []byte, err error) bool {
	m.mu.Lock()
	if len(m.pending) == 0 {
		m.mu.Unlock()
		return false
	}
	cb := m.pending[0]
	m.pending = m.pending[1:]
	m.mu.Unlock()
	cb(data, err)
	return true
}

func (m *RenderHost) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CloseCalled = true
	return nil
}

var _ ports.RenderHost = (*RenderHost)(nil)
