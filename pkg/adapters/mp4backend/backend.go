// Package mp4backend writes a fragmented MP4 with Photo-JPEG samples using
// mp4ff. It needs no external encoder, so it is the fallback when ffmpeg is
// missing.
package mp4backend

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/Eyevinn/mp4ff/mp4"

	"github.com/user/webrec/pkg/adapters/pixeldecoder"
	"github.com/user/webrec/pkg/ports"
	"github.com/user/webrec/pkg/timing"
)

const (
	trackID = 1

	// DefaultFragmentFrames is the number of samples per moof/mdat pair.
	DefaultFragmentFrames = 30

	defaultQuality = 85
)

var (
	// ErrNotInitialized is returned when Submit or Finalize run before Init.
	ErrNotInitialized = errors.New("mp4backend: not initialized")
)

// Backend implements ports.EncoderBackend. The track timescale is the rate
// numerator and every sample lasts one rate denominator, so sample times are
// exact for rational rates such as 30000/1001.
type Backend struct {
	fragmentFrames int
	logger         ports.Logger

	file     *os.File
	w        *bufio.Writer
	cfg      ports.BackendConfig
	quality  int
	cursor   *timing.Cursor
	pending  []mp4.FullSample
	fragNr   uint32
	last     []byte
	samples  uint64
	finished bool
}

// New creates a backend that flushes a fragment every fragmentFrames samples.
func New(fragmentFrames int, logger ports.Logger) *Backend {
	if fragmentFrames <= 0 {
		fragmentFrames = DefaultFragmentFrames
	}
	return &Backend{
		fragmentFrames: fragmentFrames,
		logger:         logger.WithComponent("mp4"),
	}
}

// Name implements ports.EncoderBackend.
func (b *Backend) Name() string {
	return "mp4"
}

// Init creates the output file and writes ftyp and moov.
func (b *Backend) Init(cfg ports.BackendConfig) error {
	if b.file != nil {
		return fmt.Errorf("mp4backend: already initialized")
	}
	if cfg.Width > 0xFFFF || cfg.Height > 0xFFFF {
		return fmt.Errorf("mp4backend: size %dx%d too large", cfg.Width, cfg.Height)
	}

	f, err := os.Create(cfg.OutputPath)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	b.file = f
	b.w = bufio.NewWriterSize(f, 1<<20)
	b.cfg = cfg
	b.cursor = timing.NewCursor(cfg.Rate)
	b.quality = cfg.Quality
	if b.quality <= 0 {
		b.quality = defaultQuality
	}

	init := mp4.CreateEmptyInit()
	init.AddEmptyTrack(cfg.Rate.Num, "video", "und")
	trak := init.Moov.Trak

	entry := mp4.CreateVisualSampleEntryBox("jpeg", uint16(cfg.Width), uint16(cfg.Height), nil)
	trak.Mdia.Minf.Stbl.Stsd.AddChild(entry)
	trak.Tkhd.Width = mp4.Fixed32(cfg.Width << 16)
	trak.Tkhd.Height = mp4.Fixed32(cfg.Height << 16)

	ftyp := mp4.NewFtyp("isom", 0x200, []string{"isom", "iso6", "mp41"})
	if err := ftyp.Encode(b.w); err != nil {
		return b.abortInit(fmt.Errorf("encode ftyp: %w", err))
	}
	if err := init.Moov.Encode(b.w); err != nil {
		return b.abortInit(fmt.Errorf("encode moov: %w", err))
	}
	if err := b.w.Flush(); err != nil {
		return b.abortInit(fmt.Errorf("write init segment: %w", err))
	}

	b.logger.Debug("Writing %s at %dx%d, timescale %d", cfg.OutputPath, cfg.Width, cfg.Height, cfg.Rate.Num)
	return nil
}

// abortInit closes the half-written output so a failed Init leaks nothing.
func (b *Backend) abortInit(err error) error {
	b.file.Close()
	b.file = nil
	b.w = nil
	return err
}

// Submit JPEG-encodes the frame and queues it for its slot. Skipped slots
// repeat the previous sample.
func (b *Backend) Submit(frame ports.RawFrame, pts time.Duration) error {
	if b.finished {
		return ports.ErrBackendEndOfStream
	}
	if b.file == nil {
		return ErrNotInitialized
	}

	slot, gap, err := b.cursor.Advance(pts)
	if err != nil {
		return err
	}

	data, err := pixeldecoder.Encode(pixeldecoder.ToImage(frame), ports.SnapshotJPEG, b.quality)
	if err != nil {
		return err
	}

	fill := b.last
	if fill == nil {
		fill = data
	}
	for s := slot - gap; s < slot; s++ {
		if err := b.add(fill, s); err != nil {
			return err
		}
	}
	if err := b.add(data, slot); err != nil {
		return err
	}
	b.last = data
	return nil
}

func (b *Backend) add(data []byte, slot uint64) error {
	dur := b.cfg.Rate.Den
	b.pending = append(b.pending, mp4.FullSample{
		Sample: mp4.Sample{
			Flags: mp4.SyncSampleFlags,
			Size:  uint32(len(data)),
			Dur:   dur,
		},
		DecodeTime: slot * uint64(dur),
		Data:       data,
	})
	b.samples++
	if len(b.pending) >= b.fragmentFrames {
		return b.flush()
	}
	return nil
}

func (b *Backend) flush() error {
	if len(b.pending) == 0 {
		return nil
	}
	b.fragNr++
	frag, err := mp4.CreateFragment(b.fragNr, trackID)
	if err != nil {
		return fmt.Errorf("create fragment: %w", err)
	}
	for _, s := range b.pending {
		frag.AddFullSample(s)
	}
	if err := frag.Encode(b.w); err != nil {
		return fmt.Errorf("encode fragment %d: %w", b.fragNr, err)
	}
	b.pending = b.pending[:0]
	return nil
}

// Finalize writes the remaining samples and closes the file.
func (b *Backend) Finalize() error {
	if b.finished {
		return ports.ErrBackendEndOfStream
	}
	if b.file == nil {
		return ErrNotInitialized
	}
	b.finished = true

	flushErr := b.flush()
	if flushErr == nil {
		flushErr = b.w.Flush()
	}
	closeErr := b.file.Close()
	if flushErr != nil {
		return flushErr
	}
	if closeErr != nil {
		return fmt.Errorf("close output: %w", closeErr)
	}

	b.logger.Debug("Wrote %d samples in %d fragments", b.samples, b.fragNr)
	return nil
}

// Ensure Backend implements ports.EncoderBackend
var _ ports.EncoderBackend = (*Backend)(nil)
