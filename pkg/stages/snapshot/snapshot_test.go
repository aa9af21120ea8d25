package snapshot

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/user/webrec/pkg/adapters/patternhost"
	"github.com/user/webrec/pkg/adapters/pixeldecoder"
	"github.com/user/webrec/pkg/mocks"
	"github.com/user/webrec/pkg/pipeline"
	"github.com/user/webrec/pkg/ports"
)

func TestStage_Execute_Pattern(t *testing.T) {
	stage := New(patternhost.New(patternhost.Options{}), mocks.NewLogger())

	result, err := stage.Execute(context.Background(), pipeline.SnapshotInput{
		Host:    ports.HostOptions{Width: 80, Height: 60, Format: ports.SnapshotPNG},
		Timeout: 5 * time.Second,
	})
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if result.Frame.Width != 80 || result.Frame.Height != 60 {
		t.Errorf("expected 80x60, got %dx%d", result.Frame.Width, result.Frame.Height)
	}
	if len(result.Data) == 0 {
		t.Error("expected encoded data")
	}
}

func TestStage_Execute_DimensionMismatch(t *testing.T) {
	host := mocks.NewRenderHost(true)
	img, _ := pixeldecoder.Encode(patternhost.Render(32, 32, 0).Image(), ports.SnapshotPNG, 0)
	host.SnapshotFunc = func(ctx context.Context, cb ports.SnapshotCallback) { cb(img, nil) }

	_, err := New(host, mocks.NewLogger()).Execute(context.Background(), pipeline.SnapshotInput{
		Host: ports.HostOptions{Width: 64, Height: 64},
	})
	if !errors.Is(err, pixeldecoder.ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch, got %v", err)
	}
	if !host.CloseCalled {
		t.Error("host should be closed")
	}
}

func TestStage_Execute_LoadTimeout(t *testing.T) {
	host := mocks.NewRenderHost(false)

	_, err := New(host, mocks.NewLogger()).Execute(context.Background(), pipeline.SnapshotInput{
		Host:    ports.HostOptions{Width: 64, Height: 64},
		Timeout: 20 * time.Millisecond,
	})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected DeadlineExceeded, got %v", err)
	}
	if host.Requests != 0 {
		t.Error("no snapshot should be requested before load")
	}
}

func TestStage_Execute_Errors(t *testing.T) {
	snapErr := errors.New("boom")
	tests := []struct {
		name    string
		setup   func(h *mocks.RenderHost)
		wantErr error
	}{
		{
			name: "launch failure",
			setup: func(h *mocks.RenderHost) {
				h.LaunchFunc = func(context.Context, ports.HostOptions) error { return snapErr }
			},
			wantErr: snapErr,
		},
		{
			name: "capture failure",
			setup: func(h *mocks.RenderHost) {
				h.SnapshotFunc = func(ctx context.Context, cb ports.SnapshotCallback) { cb(nil, snapErr) }
			},
			wantErr: snapErr,
		},
		{
			name: "empty payload",
			setup: func(h *mocks.RenderHost) {
				h.SnapshotFunc = func(ctx context.Context, cb ports.SnapshotCallback) { cb(nil, nil) }
			},
			wantErr: ErrEmptySnapshot,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			host := mocks.NewRenderHost(true)
			tt.setup(host)
			_, err := New(host, mocks.NewLogger()).Execute(context.Background(), pipeline.SnapshotInput{
				Host: ports.HostOptions{Width: 64, Height: 64},
			})
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}
