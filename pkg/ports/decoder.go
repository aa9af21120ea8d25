package ports

// PixelDecoder turns a compressed still image into raw samples.
type PixelDecoder interface {
	// Decode decodes data and validates it against the configured dimensions.
	Decode(data []byte) (RawFrame, error)
}
