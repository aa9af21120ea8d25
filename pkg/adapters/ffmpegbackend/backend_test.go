package ffmpegbackend

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/user/webrec/pkg/adapters/logger"
	"github.com/user/webrec/pkg/ports"
	"github.com/user/webrec/pkg/timing"
)

const sampleEncoders = `Encoders:
 V..... = Video
 A..... = Audio
 ------
 V....D libx264              libx264 H.264 / AVC / MPEG-4 AVC (codec h264)
 V....D libx265              libx265 H.265 / HEVC (codec hevc)
 V..... hevc_nvenc           NVIDIA NVENC hevc encoder (codec hevc)
 A....D aac                  AAC (Advanced Audio Coding)
`

func TestParseEncoders(t *testing.T) {
	enc := parseEncoders([]byte(sampleEncoders))

	for _, name := range []string{"libx264", "libx265", "hevc_nvenc"} {
		if !enc[name] {
			t.Errorf("expected %s to be listed", name)
		}
	}
	if enc["aac"] {
		t.Error("audio encoders must not be listed")
	}
	if enc["V....."] || enc["="] {
		t.Error("legend lines must be skipped")
	}
}

func TestSelectCodec(t *testing.T) {
	available := map[string]bool{"libx264": true, "hevc_qsv": true}

	codec, err := SelectCodec(DefaultCodecs, available)
	if err != nil {
		t.Fatalf("SelectCodec failed: %v", err)
	}
	if codec != "hevc_qsv" {
		t.Errorf("expected hevc_qsv, got %s", codec)
	}

	if _, err := SelectCodec([]string{"libaom-av1"}, available); !errors.Is(err, ErrNoCodec) {
		t.Errorf("expected ErrNoCodec, got %v", err)
	}
}

func TestBuildArgs(t *testing.T) {
	cfg := ports.BackendConfig{
		Width:      640,
		Height:     360,
		Rate:       timing.Rate{Num: 30000, Den: 1001},
		OutputPath: "out.mp4",
		Quality:    100,
	}

	args := buildArgs(cfg, "libx265")

	want := map[string]string{
		"-s":         "640x360",
		"-framerate": "30000/1001",
		"-c:v":       "libx265",
		"-crf":       "0",
		"-tag:v":     "hvc1",
	}
	for flag, value := range want {
		found := false
		for i := 0; i < len(args)-1; i++ {
			if args[i] == flag && args[i+1] == value {
				found = true
			}
		}
		if !found {
			t.Errorf("expected %s %s in %v", flag, value, args)
		}
	}
	if args[len(args)-1] != "out.mp4" {
		t.Errorf("expected output path last, got %s", args[len(args)-1])
	}
}

func TestQualityArgs(t *testing.T) {
	if qualityArgs("libx264", 0) != nil {
		t.Error("zero quality should keep encoder defaults")
	}
	if got := qualityArgs("hevc_nvenc", 50); !reflect.DeepEqual(got, []string{"-rc", "vbr", "-cq", "26"}) {
		t.Errorf("unexpected nvenc args %v", got)
	}
}

func TestFindFFmpeg_CustomPathMissing(t *testing.T) {
	_, err := FindFFmpeg(filepath.Join(t.TempDir(), "no-ffmpeg"))
	if !errors.Is(err, ErrFFmpegNotFound) {
		t.Errorf("expected ErrFFmpegNotFound, got %v", err)
	}
}

func TestBackend_NotInitialized(t *testing.T) {
	b := New("", logger.NewNoop())

	if err := b.Submit(ports.RawFrame{}, 0); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("expected ErrNotInitialized, got %v", err)
	}
	if err := b.Finalize(); !errors.Is(err, ErrNotInitialized) {
		t.Errorf("expected ErrNotInitialized, got %v", err)
	}
}

func solidFrame(w, h int, v byte) ports.RawFrame {
	samples := make([]byte, w*h*4)
	for i := range samples {
		samples[i] = v
	}
	return ports.RawFrame{Width: w, Height: h, Channels: 4, Samples: samples}
}

func TestBackend_EncodeMKV(t *testing.T) {
	if !IsAvailable("") {
		t.Skip("ffmpeg not available")
	}

	out := filepath.Join(t.TempDir(), "out.mkv")
	rate := timing.Rate{Num: 30, Den: 1}
	b := New("", logger.NewNoop())

	err := b.Init(ports.BackendConfig{
		Width:      64,
		Height:     64,
		Rate:       rate,
		OutputPath: out,
		Codecs:     []string{"libx264", "libx265", "mpeg4"},
	})
	if err != nil {
		t.Skipf("ffmpeg has no usable codec: %v", err)
	}

	for _, seq := range []uint64{0, 1, 2, 4, 5} {
		pts, _ := timing.Timestamp(seq, rate)
		if err := b.Submit(solidFrame(64, 64, byte(seq*40)), pts); err != nil {
			t.Fatalf("Submit %d failed: %v", seq, err)
		}
	}

	if err := b.Finalize(); err != nil {
		t.Fatalf("Finalize failed: %v", err)
	}
	if err := b.Submit(solidFrame(64, 64, 0), time.Second); !errors.Is(err, ports.ErrBackendEndOfStream) {
		t.Errorf("expected ErrBackendEndOfStream after Finalize, got %v", err)
	}

	info, err := os.Stat(out)
	if err != nil {
		t.Fatalf("output missing: %v", err)
	}
	if info.Size() == 0 {
		t.Error("output is empty")
	}
}
