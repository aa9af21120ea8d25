// Package snapshot implements the one-shot snapshot stage: wait for the
// surface to load, capture once and validate the image.
package snapshot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/user/webrec/pkg/adapters/pixeldecoder"
	"github.com/user/webrec/pkg/pipeline"
	"github.com/user/webrec/pkg/ports"
)

// ErrEmptySnapshot is returned when the host reports success with no data.
var ErrEmptySnapshot = errors.New("snapshot: host returned no data")

// Stage takes a single snapshot from a render host.
type Stage struct {
	host   ports.RenderHost
	logger ports.Logger
}

// New creates a new snapshot stage.
func New(host ports.RenderHost, logger ports.Logger) *Stage {
	return &Stage{
		host:   host,
		logger: logger.WithComponent("snapshot"),
	}
}

// Execute launches the host, waits for load plus input.Delay, captures and
// decodes one frame at the requested size.
func (s *Stage) Execute(ctx context.Context, input pipeline.SnapshotInput) (pipeline.SnapshotResult, error) {
	var result pipeline.SnapshotResult

	if input.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, input.Timeout)
		defer cancel()
	}

	s.logger.Debug("Launching render host")
	if err := s.host.Launch(ctx, input.Host); err != nil {
		return result, fmt.Errorf("launch host: %w", err)
	}
	defer s.host.Close()

	if err := s.host.Navigate(input.URL); err != nil {
		return result, fmt.Errorf("navigate: %w", err)
	}

	select {
	case <-s.host.Loaded():
		s.logger.Debug("Surface loaded")
	case <-ctx.Done():
		return result, fmt.Errorf("wait for load: %w", ctx.Err())
	}

	if input.Delay > 0 {
		t := time.NewTimer(input.Delay)
		select {
		case <-t.C:
		case <-ctx.Done():
			t.Stop()
			return result, fmt.Errorf("delay: %w", ctx.Err())
		}
	}

	type reply struct {
		data []byte
		err  error
	}
	done := make(chan reply, 1)
	s.host.RequestSnapshot(ctx, func(data []byte, err error) {
		done <- reply{data, err}
	})

	var r reply
	select {
	case r = <-done:
	case <-ctx.Done():
		return result, fmt.Errorf("wait for snapshot: %w", ctx.Err())
	}
	if r.err != nil {
		return result, fmt.Errorf("capture: %w", r.err)
	}
	if len(r.data) == 0 {
		return result, ErrEmptySnapshot
	}

	frame, err := pixeldecoder.New(input.Host.Width, input.Host.Height).Decode(r.data)
	if err != nil {
		return result, err
	}
	s.logger.Debug("Captured %dx%d snapshot (%d bytes)", frame.Width, frame.Height, len(r.data))

	result.Data = r.data
	result.Frame = frame
	return result, nil
}

// Ensure Stage implements pipeline.Stage
var _ pipeline.Stage[pipeline.SnapshotInput, pipeline.SnapshotResult] = (*Stage)(nil)
