// Package pixeldecoder turns compressed still images into packed RGBA frames.
package pixeldecoder

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"github.com/user/webrec/pkg/ports"
)

var (
	// ErrDecode is returned for malformed or unsupported image data.
	ErrDecode = errors.New("pixeldecoder: decode failed")

	// ErrDimensionMismatch is returned when the decoded size differs from the
	// configured capture size.
	ErrDimensionMismatch = errors.New("pixeldecoder: dimension mismatch")
)

// Decoder implements ports.PixelDecoder for PNG, JPEG and WebP input.
type Decoder struct {
	width  int
	height int
}

// New creates a decoder that only accepts width x height images.
func New(width, height int) *Decoder {
	return &Decoder{width: width, height: height}
}

// Decode decodes data into a packed RGBA frame.
// The header is checked first so mismatched snapshots are rejected without
// decoding the pixels.
func (d *Decoder) Decode(data []byte) (ports.RawFrame, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return ports.RawFrame{}, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	if cfg.Width != d.width || cfg.Height != d.height {
		return ports.RawFrame{}, fmt.Errorf("%w: %s is %dx%d, want %dx%d",
			ErrDimensionMismatch, format, cfg.Width, cfg.Height, d.width, d.height)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return ports.RawFrame{}, fmt.Errorf("%w: %s: %w", ErrDecode, format, err)
	}

	return ToRawFrame(img), nil
}

// ToRawFrame converts any image into a packed RGBA frame anchored at 0,0.
func ToRawFrame(img image.Image) ports.RawFrame {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	if rgba, ok := img.(*image.RGBA); ok && rgba.Stride == w*4 && bounds.Min == (image.Point{}) {
		return ports.RawFrame{Width: w, Height: h, Channels: 4, Samples: rgba.Pix[:w*h*4]}
	}

	rgba := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)
	return ports.RawFrame{Width: w, Height: h, Channels: 4, Samples: rgba.Pix}
}

// ToImage wraps a packed RGBA frame as an image without copying.
func ToImage(f ports.RawFrame) *image.RGBA {
	return &image.RGBA{
		Pix:    f.Samples,
		Stride: f.Stride(),
		Rect:   image.Rect(0, 0, f.Width, f.Height),
	}
}

// Encode compresses img as PNG or JPEG. WebP has no encoder here and falls
// back to PNG.
func Encode(img image.Image, format ports.SnapshotFormat, quality int) ([]byte, error) {
	var buf bytes.Buffer

	switch format {
	case ports.SnapshotJPEG:
		if quality <= 0 {
			quality = 90
		}
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
			return nil, fmt.Errorf("encode JPEG: %w", err)
		}
	default:
		if err := png.Encode(&buf, img); err != nil {
			return nil, fmt.Errorf("encode PNG: %w", err)
		}
	}

	return buf.Bytes(), nil
}

// Ensure Decoder implements ports.PixelDecoder
var _ ports.PixelDecoder = (*Decoder)(nil)
