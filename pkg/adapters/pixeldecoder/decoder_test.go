package pixeldecoder

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/user/webrec/pkg/ports"
)

func testImage(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x * 10), G: uint8(y * 10), B: 200, A: 255})
		}
	}
	return img
}

func TestDecoder_PNG(t *testing.T) {
	data, err := Encode(testImage(8, 6), ports.SnapshotPNG, 0)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	frame, err := New(8, 6).Decode(data)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	if frame.Width != 8 || frame.Height != 6 || frame.Channels != 4 {
		t.Fatalf("unexpected frame geometry %dx%dx%d", frame.Width, frame.Height, frame.Channels)
	}
	if len(frame.Samples) != 8*6*4 {
		t.Fatalf("expected %d samples, got %d", 8*6*4, len(frame.Samples))
	}

	// Pixel (3,2) is R=30 G=20 B=200
	off := 2*frame.Stride() + 3*4
	got := frame.Samples[off : off+4]
	if got[0] != 30 || got[1] != 20 || got[2] != 200 || got[3] != 255 {
		t.Errorf("unexpected pixel %v", got)
	}
}

func TestDecoder_JPEG(t *testing.T) {
	data, err := Encode(testImage(16, 16), ports.SnapshotJPEG, 95)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	frame, err := New(16, 16).Decode(data)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if len(frame.Samples) != 16*16*4 {
		t.Errorf("expected %d samples, got %d", 16*16*4, len(frame.Samples))
	}
}

func TestDecoder_Malformed(t *testing.T) {
	_, err := New(8, 6).Decode([]byte("not an image"))
	if !errors.Is(err, ErrDecode) {
		t.Errorf("expected ErrDecode, got %v", err)
	}
}

func TestDecoder_TruncatedPNG(t *testing.T) {
	data, _ := Encode(testImage(8, 6), ports.SnapshotPNG, 0)

	_, err := New(8, 6).Decode(data[:len(data)/2])
	if !errors.Is(err, ErrDecode) {
		t.Errorf("expected ErrDecode, got %v", err)
	}
}

func TestDecoder_DimensionMismatch(t *testing.T) {
	data, _ := Encode(testImage(8, 6), ports.SnapshotPNG, 0)

	_, err := New(1920, 1080).Decode(data)
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Errorf("expected ErrDimensionMismatch, got %v", err)
	}
}

func TestToRawFrame_SubImage(t *testing.T) {
	full := image.NewRGBA(image.Rect(0, 0, 10, 10))
	full.Set(5, 5, color.RGBA{R: 1, G: 2, B: 3, A: 255})
	sub := full.SubImage(image.Rect(5, 5, 7, 7))

	frame := ToRawFrame(sub)
	if frame.Width != 2 || frame.Height != 2 {
		t.Fatalf("unexpected size %dx%d", frame.Width, frame.Height)
	}
	if frame.Samples[0] != 1 || frame.Samples[1] != 2 || frame.Samples[2] != 3 {
		t.Errorf("sub image not re-anchored, got %v", frame.Samples[:4])
	}

	img := ToImage(frame)
	if img.RGBAAt(0, 0).B != 3 {
		t.Error("ToImage does not share the frame samples")
	}
}
