package mp4backend

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/user/webrec/pkg/adapters/logger"
	"github.com/user/webrec/pkg/adapters/mp4inspect"
	"github.com/user/webrec/pkg/ports"
	"github.com/user/webrec/pkg/timing"
)

func gradientFrame(w, h int, shift byte) ports.RawFrame {
	samples := make([]byte, w*h*4)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			i := (y*w + x) * 4
			samples[i] = byte(x*4) + shift
			samples[i+1] = byte(y * 4)
			samples[i+2] = shift
			samples[i+3] = 255
		}
	}
	return ports.RawFrame{Width: w, Height: h, Channels: 4, Samples: samples}
}

func TestBackend_RoundTrip(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out.mp4")
	rate := timing.Rate{Num: 30000, Den: 1001}
	b := New(4, logger.NewNoop())

	err := b.Init(ports.BackendConfig{Width: 32, Height: 24, Rate: rate, OutputPath: out})
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	for _, seq := range []uint64{0, 1, 2, 4, 5} {
		pts, _ := timing.Timestamp(seq, rate)
		if err := b.Submit(gradientFrame(32, 24, byte(seq*30)), pts); err != nil {
			t.Fatalf("Submit %d failed: %v", seq, err)
		}
	}
	if err := b.Finalize(); err != nil {
		t.Fatalf("Finalize failed: %v", err)
	}

	report, err := mp4inspect.InspectFile(out)
	if err != nil {
		t.Fatalf("inspect failed: %v", err)
	}

	if !report.Fragmented {
		t.Error("expected fragmented MP4")
	}
	if report.Codec != "jpeg" {
		t.Errorf("expected jpeg sample entry, got %q", report.Codec)
	}
	if report.Width != 32 || report.Height != 24 {
		t.Errorf("expected 32x24, got %dx%d", report.Width, report.Height)
	}
	if report.Timescale != 30000 {
		t.Errorf("expected timescale 30000, got %d", report.Timescale)
	}

	// Slot 3 is held from slot 2
	if len(report.Samples) != 6 {
		t.Fatalf("expected 6 samples, got %d", len(report.Samples))
	}
	for i, s := range report.Samples {
		if s.DecodeTime != uint64(i)*1001 || s.Dur != 1001 {
			t.Errorf("sample %d: decode time %d dur %d", i, s.DecodeTime, s.Dur)
		}
		want, _ := timing.Timestamp(uint64(i), rate)
		if report.PTS(i) != want {
			t.Errorf("sample %d: expected pts %v, got %v", i, want, report.PTS(i))
		}
	}
	if report.Samples[3].Size != report.Samples[2].Size {
		t.Error("held sample should repeat the previous picture")
	}
	if want, _ := timing.Timestamp(6, rate); report.Duration() != want {
		t.Errorf("expected duration %v, got %v", want, report.Duration())
	}
}

func TestBackend_Lifecycle(t *testing.T) {
	b := New(0, logger.NewNoop())

	if err := b.Submit(gradientFrame(8, 8, 0), 0); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("expected ErrNotInitialized, got %v", err)
	}

	out := filepath.Join(t.TempDir(), "out.mp4")
	if err := b.Init(ports.BackendConfig{Width: 8, Height: 8, Rate: timing.Rate{Num: 30, Den: 1}, OutputPath: out}); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if err := b.Submit(gradientFrame(8, 8, 0), time.Second); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if err := b.Submit(gradientFrame(8, 8, 0), time.Second); !errors.Is(err, timing.ErrSlotBehind) {
		t.Errorf("expected ErrSlotBehind for repeated pts, got %v", err)
	}
	if err := b.Finalize(); err != nil {
		t.Fatalf("Finalize failed: %v", err)
	}
	if err := b.Submit(gradientFrame(8, 8, 0), 2*time.Second); !errors.Is(err, ports.ErrBackendEndOfStream) {
		t.Errorf("expected ErrBackendEndOfStream, got %v", err)
	}

	report, err := mp4inspect.InspectFile(out)
	if err != nil {
		t.Fatalf("inspect failed: %v", err)
	}
	// First frame at 1s fills slots 0-29 with itself
	if len(report.Samples) != 31 {
		t.Errorf("expected 31 samples, got %d", len(report.Samples))
	}
}

func TestBackend_UnwritablePath(t *testing.T) {
	b := New(0, logger.NewNoop())
	err := b.Init(ports.BackendConfig{
		Width:      8,
		Height:     8,
		Rate:       timing.Rate{Num: 30, Den: 1},
		OutputPath: filepath.Join(t.TempDir(), "missing", "dir", "out.mp4"),
	})
	if err == nil {
		t.Fatal("expected error for unwritable path")
	}
}

func TestBackend_InitWriteFailureReleasesFile(t *testing.T) {
	// Writes to /dev/full always fail with ENOSPC.
	if _, err := os.Stat("/dev/full"); err != nil {
		t.Skip("/dev/full not available")
	}

	b := New(0, logger.NewNoop())
	cfg := ports.BackendConfig{
		Width:      8,
		Height:     8,
		Rate:       timing.Rate{Num: 30, Den: 1},
		OutputPath: "/dev/full",
	}
	if err := b.Init(cfg); err == nil {
		t.Fatal("expected Init to fail writing the init segment")
	}
	if b.file != nil {
		t.Error("output file left open after failed Init")
	}

	cfg.OutputPath = filepath.Join(t.TempDir(), "retry.mp4")
	if err := b.Init(cfg); err != nil {
		t.Fatalf("Init after failure: %v", err)
	}
	if err := b.Finalize(); err != nil {
		t.Fatalf("Finalize: %v", err)
	}
}
