package encode

import (
	"context"
	"errors"
	"time"

	"github.com/user/webrec/pkg/framechan"
	"github.com/user/webrec/pkg/pipeline"
	"github.com/user/webrec/pkg/ports"
)

// Receiver is the consuming side of the frame channel.
type Receiver interface {
	Receive(ctx context.Context) (pipeline.Message, error)
}

// RetryPolicy bounds how long a busy backend is retried before the frame is
// dropped.
type RetryPolicy struct {
	Attempts int           // Retries after the first attempt
	Backoff  time.Duration // Delay before the first retry, doubled each time
}

// DefaultRetryPolicy returns the policy used by the recorder.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{Attempts: 3, Backoff: 5 * time.Millisecond}
}

// Worker is the sole consumer of the frame channel and the sole owner of the
// session once Run starts.
type Worker struct {
	in      Receiver
	decoder ports.PixelDecoder
	session *Session
	logger  ports.Logger
	retry   RetryPolicy
	stats   pipeline.EncodeStats
}

// NewWorker creates a worker for a started session.
func NewWorker(in Receiver, decoder ports.PixelDecoder, session *Session, logger ports.Logger, retry RetryPolicy) *Worker {
	return &Worker{
		in:      in,
		decoder: decoder,
		session: session,
		logger:  logger.WithComponent("encoder"),
		retry:   retry,
	}
}

// Run dequeues frames until the end-of-stream marker or channel close, then
// finishes the session. Per-frame decode failures and exhausted busy retries
// drop the frame. Any other push error aborts: the session is finished on a
// best-effort basis and the push error is returned.
func (w *Worker) Run(ctx context.Context) (pipeline.EncodeStats, error) {
	for {
		msg, err := w.in.Receive(ctx)
		if err != nil {
			if errors.Is(err, framechan.ErrClosed) {
				w.logger.Warn("Frame channel closed without end of stream")
				break
			}
			w.abort()
			return w.stats, err
		}
		if msg.EndOfStream {
			w.logger.Debug("End of stream received")
			break
		}

		if err := w.handle(ctx, msg.Frame); err != nil {
			w.logger.Error("Aborting recording: %v", err)
			w.abort()
			return w.stats, err
		}
	}

	if err := w.session.Finish(); err != nil {
		return w.stats, err
	}
	w.logger.Info("Encoded %d frames, last pts %v", w.stats.Encoded, w.stats.LastPTS)
	return w.stats, nil
}

func (w *Worker) handle(ctx context.Context, frame pipeline.CapturedFrame) error {
	w.stats.Received++

	raw, err := w.decoder.Decode(frame.Payload)
	if err != nil {
		w.stats.DecodeDrops++
		w.logger.Warn("Dropping frame %d: %v", frame.Sequence, err)
		return nil
	}

	backoff := w.retry.Backoff
	for attempt := 0; ; attempt++ {
		err = w.session.Push(raw, frame.Sequence)
		if err == nil {
			break
		}
		if !IsRetryable(err) {
			return err
		}
		if attempt >= w.retry.Attempts {
			w.stats.BusyDrops++
			w.logger.Warn("Dropping frame %d after %d busy retries", frame.Sequence, attempt)
			return nil
		}
		if err := sleep(ctx, backoff); err != nil {
			return err
		}
		backoff *= 2
	}

	w.stats.Encoded++
	w.stats.LastSequence = frame.Sequence
	w.stats.LastPTS = w.session.LastPTS()
	w.logger.Debug("Pushed frame %d at %v", frame.Sequence, w.stats.LastPTS)
	return nil
}

// abort finishes the session so the output file handle is released. The
// partial file is left as is.
func (w *Worker) abort() {
	if err := w.session.Finish(); err != nil && !errors.Is(err, ErrAlreadyFinalized) {
		w.logger.Warn("Finalize after failure: %v", err)
	}
}

// Stats returns the worker counters. Only valid after Run returns.
func (w *Worker) Stats() pipeline.EncodeStats {
	return w.stats
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
