package mp4inspect

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/Eyevinn/mp4ff/mp4"
)

func buildAudioOnly(t *testing.T) []byte {
	t.Helper()
	init := mp4.CreateEmptyInit()
	init.AddEmptyTrack(48000, "audio", "und")

	var buf bytes.Buffer
	if err := init.Encode(&buf); err != nil {
		t.Fatalf("encode init: %v", err)
	}
	return buf.Bytes()
}

func TestInspect_NoVideoTrack(t *testing.T) {
	_, err := Inspect(bytes.NewReader(buildAudioOnly(t)))
	if !errors.Is(err, ErrNoVideoTrack) {
		t.Errorf("expected ErrNoVideoTrack, got %v", err)
	}
}

func TestInspect_Garbage(t *testing.T) {
	if _, err := Inspect(bytes.NewReader([]byte("definitely not an mp4 file"))); err == nil {
		t.Error("expected error for garbage input")
	}
}

func TestReport_Timing(t *testing.T) {
	r := &Report{
		Timescale: 30000,
		Samples: []Sample{
			{DecodeTime: 0, Dur: 1001},
			{DecodeTime: 1001, Dur: 1001},
			{DecodeTime: 2002, Dur: 1001},
		},
	}

	if r.PTS(1) != 33366667*time.Nanosecond {
		t.Errorf("unexpected pts %v", r.PTS(1))
	}
	if r.Duration() != 100100000*time.Nanosecond {
		t.Errorf("unexpected duration %v", r.Duration())
	}

	empty := &Report{}
	if empty.Duration() != 0 {
		t.Error("empty report should have zero duration")
	}
}
