// Package capture implements the capture scheduler that decides when to
// snapshot the render host and tags each result with its sequence number.
//
// A Scheduler is not safe for concurrent use. Every method must be called
// from the single event-loop goroutine; snapshot callbacks that arrive on
// other goroutines have to be marshalled into that loop before calling
// Complete.
package capture

import (
	"time"

	"github.com/user/webrec/pkg/pipeline"
	"github.com/user/webrec/pkg/ports"
	"github.com/user/webrec/pkg/timing"
)

// Sender is the producing side of the frame channel.
type Sender interface {
	Send(msg pipeline.Message) error
}

// RequestFunc asks the host for a snapshot. The result must come back
// through Scheduler.Complete exactly once.
type RequestFunc func()

// Options configures a Scheduler.
type Options struct {
	Rate      timing.Rate
	MaxFrames uint64 // Stop after this many successful captures; 0 is unlimited
	Format    ports.SnapshotFormat
}

// Scheduler issues at most one snapshot request at a time, spaced at least
// one frame interval apart, and pushes successful results onto the channel.
type Scheduler struct {
	request  RequestFunc
	out      Sender
	sink     ports.DebugSink
	logger   ports.Logger
	interval time.Duration
	opts     Options

	loaded      bool
	outstanding bool
	requested   bool // at least one request issued
	lastRequest time.Time
	nextSeq     uint64

	stopping  bool
	abandoned bool
	eosSent   bool
	done      chan struct{}

	stats pipeline.CaptureStats
}

// New creates a scheduler. The frame interval is derived from opts.Rate.
func New(request RequestFunc, out Sender, sink ports.DebugSink, logger ports.Logger, opts Options) (*Scheduler, error) {
	if err := opts.Rate.Validate(); err != nil {
		return nil, err
	}
	return &Scheduler{
		request:  request,
		out:      out,
		sink:     sink,
		logger:   logger.WithComponent("capture"),
		interval: opts.Rate.FrameInterval(),
		opts:     opts,
		done:     make(chan struct{}),
	}, nil
}

// SetLoaded opens the gate once the surface has finished its initial load.
func (s *Scheduler) SetLoaded() {
	if !s.loaded {
		s.logger.Debug("Surface loaded, capture enabled")
	}
	s.loaded = true
}

// Tick is called once per event-loop iteration. It issues a new request when
// recording is active, the surface is loaded, nothing is outstanding and a
// full frame interval has passed since the previous request. It reports
// whether a request was issued.
func (s *Scheduler) Tick(now time.Time) bool {
	if s.stopping || !s.loaded || s.outstanding {
		return false
	}
	if s.opts.MaxFrames > 0 && s.stats.Captured >= s.opts.MaxFrames {
		return false
	}
	if s.requested && now.Sub(s.lastRequest) < s.interval {
		return false
	}

	s.outstanding = true
	s.requested = true
	s.lastRequest = now
	s.stats.Issued++
	s.logger.Debug("Requesting snapshot #%d", s.stats.Issued)
	s.request()
	return true
}

// Complete delivers the result of the outstanding request. A failure or an
// empty payload drops the frame without consuming a sequence number.
func (s *Scheduler) Complete(data []byte, err error, at time.Time) {
	if !s.outstanding {
		s.stats.Late++
		s.logger.Warn("Discarding snapshot that arrived after shutdown")
		return
	}
	s.outstanding = false

	switch {
	case err != nil:
		s.stats.Failed++
		s.logger.Warn("Snapshot failed, frame dropped: %v", err)
	case len(data) == 0:
		s.stats.Failed++
		s.logger.Warn("Snapshot returned no data, frame dropped")
	default:
		s.push(data, at)
	}

	if s.opts.MaxFrames > 0 && s.stats.Captured >= s.opts.MaxFrames && !s.stopping {
		s.logger.Info("Frame limit %d reached", s.opts.MaxFrames)
		s.Stop()
		return
	}
	if s.stopping {
		s.emitEndOfStream()
	}
}

func (s *Scheduler) push(data []byte, at time.Time) {
	seq := s.nextSeq
	s.nextSeq++

	if s.sink.Enabled() {
		if err := s.sink.SaveSnapshot(seq, s.opts.Format, data); err != nil {
			s.logger.Warn("Failed to save snapshot %d: %v", seq, err)
		}
	}

	frame := pipeline.CapturedFrame{Sequence: seq, Payload: data, CapturedAt: at}
	if err := s.out.Send(pipeline.FrameMessage(frame)); err != nil {
		s.logger.Error("Failed to enqueue frame %d: %v", seq, err)
		return
	}
	s.stats.Captured++
	s.logger.Debug("Captured frame %d (%d bytes)", seq, len(data))
}

// Stop stops issuing new requests. The end-of-stream marker is sent right
// away if nothing is outstanding, otherwise when the outstanding request
// completes.
func (s *Scheduler) Stop() {
	if s.stopping {
		return
	}
	s.stopping = true
	s.logger.Debug("Stopping capture (outstanding=%v)", s.outstanding)
	if !s.outstanding {
		s.emitEndOfStream()
	}
}

// Abandon gives up on an outstanding request after the shutdown grace period
// and sends the end-of-stream marker now. A callback that still lands later
// is discarded by Complete.
func (s *Scheduler) Abandon() {
	s.stopping = true
	if s.eosSent {
		return
	}
	if s.outstanding {
		s.abandoned = true
		s.outstanding = false
		s.logger.Warn("Grace period expired with a snapshot in flight, abandoning it")
	}
	s.emitEndOfStream()
}

func (s *Scheduler) emitEndOfStream() {
	if s.eosSent {
		return
	}
	s.eosSent = true
	if err := s.out.Send(pipeline.EndOfStreamMessage()); err != nil {
		s.logger.Error("Failed to enqueue end of stream: %v", err)
	}
	close(s.done)
	s.logger.Debug("End of stream sent after %d frames", s.stats.Captured)
}

// Done is closed once the end-of-stream marker has been sent.
func (s *Scheduler) Done() <-chan struct{} {
	return s.done
}

// Stopping reports whether Stop or Abandon has been called.
func (s *Scheduler) Stopping() bool {
	return s.stopping
}

// Outstanding reports whether a snapshot request is in flight.
func (s *Scheduler) Outstanding() bool {
	return s.outstanding
}

// Abandoned reports whether an in-flight request was given up on.
func (s *Scheduler) Abandoned() bool {
	return s.abandoned
}

// Stats returns a copy of the scheduler counters.
func (s *Scheduler) Stats() pipeline.CaptureStats {
	return s.stats
}
