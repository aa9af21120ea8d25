package mjpegbackend

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/user/webrec/pkg/adapters/logger"
	"github.com/user/webrec/pkg/ports"
	"github.com/user/webrec/pkg/timing"
)

func frame(v byte) ports.RawFrame {
	samples := make([]byte, 16*16*4)
	for i := range samples {
		samples[i] = v
	}
	return ports.RawFrame{Width: 16, Height: 16, Channels: 4, Samples: samples}
}

func TestBackend_WritesAVI(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out.avi")
	rate := timing.Rate{Num: 10, Den: 1}
	b := New(logger.NewNoop())

	if err := b.Init(ports.BackendConfig{Width: 16, Height: 16, Rate: rate, OutputPath: out}); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	for _, seq := range []uint64{0, 1, 3} {
		pts, _ := timing.Timestamp(seq, rate)
		if err := b.Submit(frame(byte(seq*50)), pts); err != nil {
			t.Fatalf("Submit %d failed: %v", seq, err)
		}
	}
	if err := b.Finalize(); err != nil {
		t.Fatalf("Finalize failed: %v", err)
	}
	if b.cursor.Next() != 4 {
		t.Errorf("expected 4 frames written including the held one, got %d", b.cursor.Next())
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("RIFF")) || !bytes.Equal(data[8:12], []byte("AVI ")) {
		t.Errorf("output is not a RIFF AVI file")
	}

	if err := b.Finalize(); !errors.Is(err, ports.ErrBackendEndOfStream) {
		t.Errorf("expected ErrBackendEndOfStream on second Finalize, got %v", err)
	}
}

func TestBackend_FractionalRate(t *testing.T) {
	b := New(logger.NewNoop())
	err := b.Init(ports.BackendConfig{
		Width:      16,
		Height:     16,
		Rate:       timing.Rate{Num: 30000, Den: 1001},
		OutputPath: filepath.Join(t.TempDir(), "out.avi"),
	})
	if !errors.Is(err, ErrFractionalRate) {
		t.Errorf("expected ErrFractionalRate, got %v", err)
	}
}

func TestBackend_NotInitialized(t *testing.T) {
	b := New(logger.NewNoop())
	if err := b.Submit(frame(0), 0); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("expected ErrNotInitialized, got %v", err)
	}
}
