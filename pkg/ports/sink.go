package ports

// DebugSink abstracts debug output for intermediate results.
// It allows saving raw snapshots and run metadata for troubleshooting.
type DebugSink interface {
	// Enabled returns true if debug output is enabled.
	Enabled() bool

	// SaveSnapshot saves a raw snapshot payload under its sequence number.
	SaveSnapshot(sequence uint64, format SnapshotFormat, data []byte) error

	// SaveSummaryJSON saves the recording summary as JSON.
	SaveSummaryJSON(data []byte) error
}
