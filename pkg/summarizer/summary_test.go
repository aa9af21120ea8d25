package summarizer

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/user/webrec/pkg/adapters/mp4inspect"
	"github.com/user/webrec/pkg/mocks"
	"github.com/user/webrec/pkg/pipeline"
	"github.com/user/webrec/pkg/timing"
)

func testRecording() pipeline.RecordingSummary {
	rate := timing.Rate{Num: 30, Den: 1}
	return pipeline.RecordingSummary{
		SessionID:  "0b6f0e9e-6a3e-4c43-9d4e-3a7c1d1f4b10",
		URL:        "https://example.com",
		Output:     "output.mkv",
		Backend:    "ffmpeg/libx264",
		Width:      1920,
		Height:     1080,
		Rate:       rate,
		RateString: rate.String(),
		Capture:    pipeline.CaptureStats{Issued: 5, Captured: 4, Failed: 1},
		Encode:     pipeline.EncodeStats{Received: 4, Encoded: 4, LastSequence: 3, LastPTS: 100 * time.Millisecond},
		Wall:       1500 * time.Millisecond,
	}
}

func TestBuilder(t *testing.T) {
	s := NewBuilder().
		WithRecording(testRecording()).
		WithFileSize(2048).
		Build()

	if s.Recording.Encode.Encoded != 4 {
		t.Errorf("recording not set: %+v", s.Recording)
	}
	if s.FileSize != 2048 {
		t.Errorf("expected file size 2048, got %d", s.FileSize)
	}
	if s.GeneratedAt.IsZero() {
		t.Error("GeneratedAt should be set")
	}
}

func TestSummary_Duration(t *testing.T) {
	s := NewBuilder().WithRecording(testRecording()).Build()
	want := 100*time.Millisecond + 33333333*time.Nanosecond
	if got := s.Duration(); got != want {
		t.Errorf("Duration() = %v, want %v", got, want)
	}

	empty := NewSummary()
	if empty.Duration() != 0 {
		t.Error("empty recording should have zero duration")
	}
}

func TestTableFormatter(t *testing.T) {
	s := NewBuilder().WithRecording(testRecording()).WithFileSize(3 * 1024 * 1024).Build()
	out := NewTableFormatter().Format(s)

	for _, want := range []string{"Frames encoded", "ffmpeg/libx264", "1920x1080", "Capture failures", "3.0 MiB", "133ms"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Abandoned") {
		t.Error("abandoned row should only appear when a snapshot was abandoned")
	}
}

func TestJSONFormatter(t *testing.T) {
	s := NewBuilder().WithRecording(testRecording()).Build()
	out := NewJSONFormatter().Format(s)

	var decoded struct {
		Recording struct {
			Rate    string `json:"rate"`
			Capture struct {
				Failed uint64
			} `json:"capture"`
		} `json:"recording"`
	}
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}
	if decoded.Recording.Rate != "30" || decoded.Recording.Capture.Failed != 1 {
		t.Errorf("unexpected JSON content: %s", out)
	}
}

func TestFormatInspect(t *testing.T) {
	report := &mp4inspect.Report{
		Fragmented: true,
		Codec:      "jpeg",
		Width:      64,
		Height:     48,
		Timescale:  30000,
		Samples: []mp4inspect.Sample{
			{DecodeTime: 0, Dur: 1001, Size: 100},
			{DecodeTime: 1001, Dur: 1001, Size: 110},
			{DecodeTime: 2002, Dur: 1001, Size: 120},
		},
	}

	out := FormatInspect(report, 2)
	if !strings.Contains(out, "33366667") {
		t.Errorf("expected second sample pts in output:\n%s", out)
	}
	if strings.Contains(out, "66733333") {
		t.Errorf("third sample should be cut by the limit:\n%s", out)
	}
}

func TestWriter_Write(t *testing.T) {
	fs := mocks.NewFileSystem()
	w := NewWriter(NewJSONFormatter(), fs)

	if err := w.Write("debug/summary.json", NewBuilder().WithRecording(testRecording()).Build()); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	data, ok := fs.GetFile("debug/summary.json")
	if !ok || !strings.Contains(string(data), "sessionId") {
		t.Errorf("summary not written: %q", data)
	}
}

func TestFormatBytes(t *testing.T) {
	tests := map[int64]string{
		512:             "512 B",
		1536:            "1.5 KiB",
		5 * 1024 * 1024: "5.0 MiB",
	}
	for in, want := range tests {
		if got := formatBytes(in); got != want {
			t.Errorf("formatBytes(%d) = %q, want %q", in, got, want)
		}
	}
}
