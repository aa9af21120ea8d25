package mocks

import (
	"github.com/user/webrec/pkg/ports"
)

// PixelDecoder is a mock implementation of ports.PixelDecoder.
// By default it returns a 2x2 RGBA frame whose samples all equal the first
// payload byte.
type PixelDecoder struct {
	DecodeFunc func(data []byte) (ports.RawFrame, error)
}

func (m *PixelDecoder) Decode(data []byte) (ports.RawFrame, error) {
	if m.DecodeFunc != nil {
		return m.DecodeFunc(data)
	}
	var v byte
	if len(data) > 0 {
		v = data[0]
	}
	samples := make([]byte, 2*2*4)
	for i := range samples {
		samples[i] = v
	}
	return ports.RawFrame{Width: 2, Height: 2, Channels: 4, Samples: samples}, nil
}

var _ ports.PixelDecoder = (*PixelDecoder)(nil)
