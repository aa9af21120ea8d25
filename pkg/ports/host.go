// Package ports defines interfaces for external dependencies.
package ports

import (
	"context"
)

// SnapshotFormat selects the still-image encoding a host produces.
type SnapshotFormat string

const (
	SnapshotPNG  SnapshotFormat = "png"
	SnapshotJPEG SnapshotFormat = "jpeg"
	SnapshotWebP SnapshotFormat = "webp"
)

// SnapshotCallback receives the result of one snapshot request: an encoded
// still image, or an error. It is invoked exactly once per request and may
// run on any goroutine.
type SnapshotCallback func(data []byte, err error)

// RenderHost owns a renderable surface and can snapshot it asynchronously.
type RenderHost interface {
	// Launch prepares the surface with the given options.
	Launch(ctx context.Context, opts HostOptions) error

	// Navigate loads the specified URL into the surface.
	// Hosts without a notion of URL ignore it.
	Navigate(url string) error

	// Loaded is closed once the surface has finished its initial load.
	Loaded() <-chan struct{}

	// RequestSnapshot starts an asynchronous capture of the current surface
	// contents and returns immediately. cb is called exactly once.
	RequestSnapshot(ctx context.Context, cb SnapshotCallback)

	// Close releases the surface.
	Close() error
}

// HostOptions configures a render host.
type HostOptions struct {
	Width   int // Surface width in device pixels
	Height  int // Surface height in device pixels
	Format  SnapshotFormat
	Quality int // JPEG/WebP quality (0-100), ignored for PNG

	// Browser hosts
	Headless          bool
	ChromePath        string
	UserAgent         string
	Headers           map[string]string
	IgnoreHTTPSErrors bool
	ProxyServer       string
	Incognito         bool

	// VNC host
	Address  string // host:port of the VNC server
	Password string
}
