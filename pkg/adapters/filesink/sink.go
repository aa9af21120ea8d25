// Package filesink provides a file-based debug sink implementation.
package filesink

import (
	"fmt"
	"path/filepath"

	"github.com/user/webrec/pkg/ports"
)

// Sink saves debug output to files.
type Sink struct {
	baseDir string
	fs      ports.FileSystem
}

// New creates a new FileSink rooted at baseDir.
func New(baseDir string, fs ports.FileSystem) *Sink {
	return &Sink{
		baseDir: baseDir,
		fs:      fs,
	}
}

// Enabled returns true as this sink saves output.
func (s *Sink) Enabled() bool {
	return true
}

// SaveSnapshot saves the snapshot exactly as the host returned it.
func (s *Sink) SaveSnapshot(sequence uint64, format ports.SnapshotFormat, data []byte) error {
	dir := filepath.Join(s.baseDir, "snapshots")
	if err := s.fs.MkdirAll(dir); err != nil {
		return err
	}
	path := filepath.Join(dir, fmt.Sprintf("frame-%06d.%s", sequence, extension(format)))
	return s.fs.WriteFile(path, data)
}

// SaveSummaryJSON saves the recording summary.
func (s *Sink) SaveSummaryJSON(data []byte) error {
	path := filepath.Join(s.baseDir, "summary.json")
	return s.fs.WriteFile(path, data)
}

func extension(format ports.SnapshotFormat) string {
	switch format {
	case ports.SnapshotJPEG:
		return "jpg"
	case ports.SnapshotWebP:
		return "webp"
	default:
		return "png"
	}
}

// Ensure Sink implements ports.DebugSink
var _ ports.DebugSink = (*Sink)(nil)
