// Package summarizer renders recording results for the console and for
// machine consumption.
package summarizer

import (
	"time"

	"github.com/user/webrec/pkg/pipeline"
)

// Summary contains all data collected during a recording session.
type Summary struct {
	GeneratedAt time.Time                 `json:"generatedAt"`
	Recording   pipeline.RecordingSummary `json:"recording"`
	FileSize    int64                     `json:"fileSize"`
}

// Duration returns the length of the encoded video.
func (s *Summary) Duration() time.Duration {
	if s.Recording.Encode.Encoded == 0 {
		return 0
	}
	return s.Recording.Encode.LastPTS + s.Recording.Rate.FrameInterval()
}

// NewSummary creates a new Summary with the current timestamp.
func NewSummary() *Summary {
	return &Summary{
		GeneratedAt: time.Now(),
	}
}

// Builder provides a fluent interface for building a Summary.
type Builder struct {
	summary *Summary
}

// NewBuilder creates a new Builder.
func NewBuilder() *Builder {
	return &Builder{
		summary: NewSummary(),
	}
}

// WithRecording sets the recorder's result.
func (b *Builder) WithRecording(rec pipeline.RecordingSummary) *Builder {
	b.summary.Recording = rec
	return b
}

// WithFileSize sets the size of the output file in bytes.
func (b *Builder) WithFileSize(size int64) *Builder {
	b.summary.FileSize = size
	return b
}

// Build returns the constructed Summary.
func (b *Builder) Build() *Summary {
	return b.summary
}
