package backendselect

import (
	"errors"
	"testing"

	"github.com/user/webrec/pkg/mocks"
	"github.com/user/webrec/pkg/ports"
)

func TestParseKind(t *testing.T) {
	tests := []struct {
		in      string
		want    Kind
		wantErr bool
	}{
		{"", KindAuto, false},
		{"auto", KindAuto, false},
		{"FFmpeg", KindFFmpeg, false},
		{" mp4 ", KindMP4, false},
		{"mjpeg", KindMJPEG, false},
		{"gstreamer", "", true},
	}
	for _, tt := range tests {
		got, err := ParseKind(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseKind(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseKind(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNew_Explicit(t *testing.T) {
	log := mocks.NewLogger()
	for _, kind := range []Kind{KindFFmpeg, KindMP4, KindMJPEG} {
		b, info, err := New(kind, "out.mkv", Options{Logger: log})
		if err != nil {
			t.Fatalf("New(%s) failed: %v", kind, err)
		}
		if info.Kind != kind || info.FallbackUsed {
			t.Errorf("New(%s) info = %+v", kind, info)
		}
		if b == nil {
			t.Errorf("New(%s) returned nil backend", kind)
		}
	}
}

func TestNew_AutoPrefersFFmpeg(t *testing.T) {
	opts := Options{
		Logger:          mocks.NewLogger(),
		ffmpegAvailable: func(string) bool { return true },
	}
	b, info, err := New(KindAuto, "out.avi", opts)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if info.Kind != KindFFmpeg || info.FallbackUsed {
		t.Errorf("expected ffmpeg without fallback, got %+v", info)
	}
	if b.Name() != "ffmpeg" {
		t.Errorf("expected ffmpeg backend, got %s", b.Name())
	}
}

func TestNew_AutoFallback(t *testing.T) {
	tests := []struct {
		output string
		want   Kind
		name   string
	}{
		{"clip.mp4", KindMP4, "mp4"},
		{"clip.MOV", KindMP4, "mp4"},
		{"clip.avi", KindMJPEG, "mjpeg"},
	}
	for _, tt := range tests {
		log := mocks.NewLogger()
		opts := Options{
			Logger:          log,
			ffmpegAvailable: func(string) bool { return false },
		}
		b, info, err := New(KindAuto, tt.output, opts)
		if err != nil {
			t.Fatalf("New(%s) failed: %v", tt.output, err)
		}
		if info.Kind != tt.want || !info.FallbackUsed {
			t.Errorf("New(%s) info = %+v", tt.output, info)
		}
		if b.Name() != tt.name {
			t.Errorf("New(%s) backend = %s, want %s", tt.output, b.Name(), tt.name)
		}
		if log.Count(ports.LevelWarn, "falling back") != 1 {
			t.Errorf("New(%s) expected one fallback warning", tt.output)
		}
	}
}

func TestNew_AutoNothingAvailable(t *testing.T) {
	opts := Options{
		Logger:          mocks.NewLogger(),
		ffmpegAvailable: func(string) bool { return false },
	}
	_, _, err := New(KindAuto, "out.mkv", opts)
	if !errors.Is(err, ErrNoBackendAvailable) {
		t.Errorf("expected ErrNoBackendAvailable, got %v", err)
	}
}
