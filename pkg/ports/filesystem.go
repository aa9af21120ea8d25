package ports

import "errors"

// ErrLocked is returned by FileSystem.Lock when another process already holds
// the lock.
var ErrLocked = errors.New("filesystem: locked by another process")

// FileSystem abstracts file system operations.
type FileSystem interface {
	// ReadFile reads the entire contents of a file.
	ReadFile(path string) ([]byte, error)

	// WriteFile writes data to a file, creating parent directories if necessary.
	WriteFile(path string, data []byte) error

	// MkdirAll creates a directory and all parent directories.
	MkdirAll(path string) error

	// Lock takes an exclusive advisory lock guarding path without blocking.
	// It returns ErrLocked if the lock is held elsewhere. The returned
	// function releases the lock.
	Lock(path string) (unlock func() error, err error)
}
