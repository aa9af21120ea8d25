package mocks

import (
	"sync"
	"time"

	"github.com/user/webrec/pkg/ports"
)

// EncoderBackend is a mock implementation of ports.EncoderBackend.
type EncoderBackend struct {
	mu sync.Mutex

	InitFunc     func(cfg ports.BackendConfig) error
	SubmitFunc   func(frame ports.RawFrame, pts time.Duration) error
	FinalizeFunc func() error

	// Recorded calls for verification
	InitCalled    bool
	InitConfig    ports.BackendConfig
	SubmitCalls   []SubmitCall
	FinalizeCalls int
}

// SubmitCall records a call to Submit.
type SubmitCall struct {
	PTS    time.Duration
	Width  int
	Height int
	First  byte // First sample, lets tests tell frames apart
}

func (m *EncoderBackend) Name() string {
	return "mock"
}

func (m *EncoderBackend) Init(cfg ports.BackendConfig) error {
	m.mu.Lock()
	m.InitCalled = true
	m.InitConfig = cfg
	m.mu.Unlock()
	if m.InitFunc != nil {
		return m.InitFunc(cfg)
	}
	return nil
}

func (m *EncoderBackend) Submit(frame ports.RawFrame, pts time.Duration) error {
	if m.SubmitFunc != nil {
		if err := m.SubmitFunc(frame, pts); err != nil {
			return err
		}
	}
	call := SubmitCall{PTS: pts, Width: frame.Width, Height: frame.Height}
	if len(frame.Samples) > 0 {
		call.First = frame.Samples[0]
	}
	m.mu.Lock()
	m.SubmitCalls = append(m.SubmitCalls, call)
	m.mu.Unlock()
	return nil
}

func (m *EncoderBackend) Finalize() error {
	m.mu.Lock()
	m.FinalizeCalls++
	m.mu.Unlock()
	if m.FinalizeFunc != nil {
		return m.FinalizeFunc()
	}
	return nil
}

// PTS returns the presentation times of all accepted submits.
func (m *EncoderBackend) PTS() []time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]time.Duration, len(m.SubmitCalls))
	for i, c := range m.SubmitCalls {
		out[i] = c.PTS
	}
	return out
}

// Finalized returns how many times Finalize was called.
func (m *EncoderBackend) Finalized() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.FinalizeCalls
}

var _ ports.EncoderBackend = (*EncoderBackend)(nil)
