// Package recorder runs one recording: it owns the event loop that drives
// the capture scheduler and joins the encoder worker before returning.
package recorder

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/user/webrec/pkg/adapters/pixeldecoder"
	"github.com/user/webrec/pkg/framechan"
	"github.com/user/webrec/pkg/pipeline"
	"github.com/user/webrec/pkg/ports"
	"github.com/user/webrec/pkg/stages/capture"
	"github.com/user/webrec/pkg/stages/encode"
	"github.com/user/webrec/pkg/timing"
)

var (
	// ErrInvalidConfig is returned when the recording parameters are unusable.
	ErrInvalidConfig = errors.New("recorder: invalid config")

	// ErrLoadTimeout is returned when the surface never signals load.
	ErrLoadTimeout = errors.New("recorder: timed out waiting for page load")
)

// Config contains the parameters of one recording. It is read once at the
// start of Run and never modified.
type Config struct {
	URL        string
	OutputPath string
	Width      int
	Height     int
	Rate       timing.Rate

	MaxFrames   uint64        // Stop after this many captured frames; 0 is unlimited
	Duration    time.Duration // Stop this long after load; 0 is unlimited
	Grace       time.Duration // Wait for an in-flight snapshot after stop
	LoadTimeout time.Duration // 0 waits forever

	Host    ports.HostOptions // Width, Height and Format are taken from this Config
	Format  ports.SnapshotFormat
	Quality int      // Encoder quality, 0-100
	Codecs  []string // ffmpeg codec preference

	Retry encode.RetryPolicy
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		Width:       1920,
		Height:      1080,
		Rate:        timing.Rate{Num: 30, Den: 1},
		Grace:       100 * time.Millisecond,
		LoadTimeout: 30 * time.Second,
		Format:      ports.SnapshotPNG,
		Host:        ports.HostOptions{Headless: true},
		Retry:       encode.DefaultRetryPolicy(),
	}
}

// Validate checks that the config can drive a recording.
func (c Config) Validate() error {
	if err := c.Rate.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("%w: size %dx%d", ErrInvalidConfig, c.Width, c.Height)
	}
	if c.OutputPath == "" {
		return fmt.Errorf("%w: output path is required", ErrInvalidConfig)
	}
	if c.Grace < 0 {
		return fmt.Errorf("%w: negative grace period", ErrInvalidConfig)
	}
	return nil
}

func (c Config) hostOptions() ports.HostOptions {
	o := c.Host
	o.Width = c.Width
	o.Height = c.Height
	o.Format = c.Format
	return o
}

// Recorder wires a render host to an encoder backend.
type Recorder struct {
	host    ports.RenderHost
	backend ports.EncoderBackend
	decoder ports.PixelDecoder
	fs      ports.FileSystem
	sink    ports.DebugSink
	logger  ports.Logger
	flag    *ShutdownFlag
	now     func() time.Time
}

// New creates a Recorder. decoder may be nil to decode with the standard
// image codecs at the configured size; flag may be nil when the caller only
// stops through ctx.
func New(
	host ports.RenderHost,
	backend ports.EncoderBackend,
	decoder ports.PixelDecoder,
	fs ports.FileSystem,
	sink ports.DebugSink,
	logger ports.Logger,
	flag *ShutdownFlag,
) *Recorder {
	if flag == nil {
		flag = &ShutdownFlag{}
	}
	return &Recorder{
		host:    host,
		backend: backend,
		decoder: decoder,
		fs:      fs,
		sink:    sink,
		logger:  logger,
		flag:    flag,
		now:     time.Now,
	}
}

type completion struct {
	data []byte
	err  error
	at   time.Time
}

type workerResult struct {
	stats pipeline.EncodeStats
	err   error
}

// tickInterval is the event-loop period: a fraction of the frame interval
// so requests stay close to their slot.
func tickInterval(r timing.Rate) time.Duration {
	d := r.FrameInterval() / 4
	if d < time.Millisecond {
		d = time.Millisecond
	}
	if d > 10*time.Millisecond {
		d = 10 * time.Millisecond
	}
	return d
}

// Run records until the frame or duration limit is hit, the shutdown flag
// is raised or ctx is cancelled. It returns after the encoder worker has
// finished, so a nil error means the output file is complete.
func (r *Recorder) Run(ctx context.Context, cfg Config) (pipeline.RecordingSummary, error) {
	summary := pipeline.RecordingSummary{
		SessionID:  uuid.NewString(),
		URL:        cfg.URL,
		Output:     cfg.OutputPath,
		Backend:    r.backend.Name(),
		Width:      cfg.Width,
		Height:     cfg.Height,
		Rate:       cfg.Rate,
		RateString: cfg.Rate.String(),
		StartedAt:  r.now(),
	}

	if err := cfg.Validate(); err != nil {
		return summary, err
	}

	unlock, err := r.fs.Lock(cfg.OutputPath)
	if err != nil {
		return summary, fmt.Errorf("lock output: %w", err)
	}
	defer func() {
		if err := unlock(); err != nil {
			r.logger.Warn("Failed to release output lock: %s", err)
		}
	}()

	session, err := encode.Start(r.backend, encode.SessionConfig{
		Width:      cfg.Width,
		Height:     cfg.Height,
		Rate:       cfg.Rate,
		OutputPath: cfg.OutputPath,
		Quality:    cfg.Quality,
		Codecs:     cfg.Codecs,
	})
	if err != nil {
		r.logger.Error("Failed to start encoder: %s", err)
		return summary, err
	}
	summary.Backend = session.Backend()
	r.logger.Info("Encoding %dx%d at %s fps with %s", cfg.Width, cfg.Height, cfg.Rate, session.Backend())

	decoder := r.decoder
	if decoder == nil {
		decoder = pixeldecoder.New(cfg.Width, cfg.Height)
	}

	ch := framechan.New()
	worker := encode.NewWorker(ch, decoder, session, r.logger, cfg.Retry)
	workerDone := make(chan workerResult, 1)
	go func() {
		// The worker ends on the end-of-stream marker, never on ctx, so the
		// file is finalized even when the recording is cancelled.
		stats, err := worker.Run(context.WithoutCancel(ctx))
		workerDone <- workerResult{stats, err}
	}()

	// Snapshot requests outlive neither the loop nor the grace period.
	reqCtx, cancelReq := context.WithCancel(ctx)
	defer cancelReq()

	completions := make(chan completion, 1)
	request := func() {
		r.host.RequestSnapshot(reqCtx, func(data []byte, err error) {
			completions <- completion{data: data, err: err, at: r.now()}
		})
	}

	sched, err := capture.New(request, ch, r.sink, r.logger, capture.Options{
		Rate:      cfg.Rate,
		MaxFrames: cfg.MaxFrames,
		Format:    cfg.Format,
	})
	if err != nil {
		ch.Close()
		<-workerDone
		return summary, err
	}

	loopErr := r.start(ctx, cfg)
	if loopErr == nil {
		loopErr = r.loop(ctx, cfg, sched, completions, workerDone)
		cancelReq()
		if err := r.host.Close(); err != nil {
			r.logger.Warn("Failed to close render host: %s", err)
		}
		drainLate(sched, completions)
	} else {
		sched.Stop()
	}

	ch.Close()
	res := <-workerDone

	summary.Capture = sched.Stats()
	summary.Encode = res.stats
	summary.Abandoned = sched.Abandoned()
	summary.Wall = r.now().Sub(summary.StartedAt)
	r.saveSummary(summary)

	if res.err != nil {
		r.logger.Error("Encoding failed: %s", res.err)
		return summary, fmt.Errorf("encode: %w", res.err)
	}
	if loopErr != nil {
		return summary, loopErr
	}

	r.logger.Info("Recorded %d frames to %s", res.stats.Encoded, cfg.OutputPath)
	return summary, nil
}

// start launches the host and begins navigation.
func (r *Recorder) start(ctx context.Context, cfg Config) error {
	r.logger.Info("Launching render host")
	if err := r.host.Launch(ctx, cfg.hostOptions()); err != nil {
		r.logger.Error("Failed to launch render host: %s", err)
		return fmt.Errorf("launch host: %w", err)
	}
	if cfg.URL != "" {
		r.logger.Info("Navigating to %s", cfg.URL)
	}
	if err := r.host.Navigate(cfg.URL); err != nil {
		r.host.Close()
		r.logger.Error("Failed to navigate: %s", err)
		return fmt.Errorf("navigate: %w", err)
	}
	return nil
}

// loop is the single goroutine that touches the scheduler. It returns once
// the end-of-stream marker has been sent or the worker has died.
func (r *Recorder) loop(
	ctx context.Context,
	cfg Config,
	sched *capture.Scheduler,
	completions <-chan completion,
	workerDone chan workerResult,
) error {
	ticker := time.NewTicker(tickInterval(cfg.Rate))
	defer ticker.Stop()

	loaded := r.host.Loaded()
	var loadTimeout <-chan time.Time
	if cfg.LoadTimeout > 0 {
		t := time.NewTimer(cfg.LoadTimeout)
		defer t.Stop()
		loadTimeout = t.C
	}

	var (
		deadline <-chan time.Time
		grace    <-chan time.Time
		ctxDone  = ctx.Done()
		loopErr  error
	)

	stop := func(msg string, args ...interface{}) {
		if sched.Stopping() {
			return
		}
		r.logger.Info(msg, args...)
		sched.Stop()
	}

	for {
		select {
		case <-loaded:
			loaded = nil
			loadTimeout = nil
			r.logger.Info("Page loaded, recording started")
			sched.SetLoaded()
			if cfg.Duration > 0 {
				t := time.NewTimer(cfg.Duration)
				defer t.Stop()
				deadline = t.C
			}

		case c := <-completions:
			sched.Complete(c.data, c.err, c.at)

		case now := <-ticker.C:
			if r.flag.Requested() {
				stop("Interrupted, shutting down...")
			}
			sched.Tick(now)

		case <-deadline:
			deadline = nil
			stop("Duration limit %s reached", cfg.Duration)

		case <-loadTimeout:
			loadTimeout = nil
			loopErr = fmt.Errorf("%w after %s", ErrLoadTimeout, cfg.LoadTimeout)
			r.logger.Error("%v", loopErr)
			stop("Stopping recording")

		case <-ctxDone:
			ctxDone = nil
			if loopErr == nil {
				loopErr = ctx.Err()
			}
			stop("Interrupted, shutting down...")

		case <-grace:
			sched.Abandon()

		case res := <-workerDone:
			// The worker died early. Put the result back for Run to collect.
			workerDone <- res
			sched.Abandon()
			return loopErr

		case <-sched.Done():
			return loopErr
		}

		if sched.Stopping() && grace == nil && sched.Outstanding() {
			grace = time.After(cfg.Grace)
		}
	}
}

// drainLate hands a callback that landed after the loop exited to the
// scheduler so it is counted. Host.Close has already joined in-flight
// snapshots, so the callback is buffered by now if it ever arrives.
func drainLate(sched *capture.Scheduler, completions <-chan completion) {
	select {
	case c := <-completions:
		sched.Complete(c.data, c.err, c.at)
	default:
	}
}

func (r *Recorder) saveSummary(summary pipeline.RecordingSummary) {
	if !r.sink.Enabled() {
		return
	}
	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return
	}
	if err := r.sink.SaveSummaryJSON(data); err != nil {
		r.logger.Warn("Failed to save summary: %s", err)
	}
}
