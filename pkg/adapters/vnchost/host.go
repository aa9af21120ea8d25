// Package vnchost implements ports.RenderHost on a remote VNC framebuffer.
package vnchost

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	"net"
	"sync"

	vnc "github.com/unistack-org/go-rfb"

	"github.com/user/webrec/pkg/adapters/pixeldecoder"
	"github.com/user/webrec/pkg/ports"
)

var (
	// ErrNotLaunched is returned when the host is used before Launch.
	ErrNotLaunched = errors.New("vnchost: not launched")

	// ErrDisconnected is delivered to pending snapshots when the connection
	// drops.
	ErrDisconnected = errors.New("vnchost: disconnected")
)

// Host implements ports.RenderHost against a VNC server. Each snapshot asks
// for a full framebuffer update and encodes the result.
type Host struct {
	logger ports.Logger

	conn     net.Conn
	cc       *vnc.ClientConn
	toServer chan vnc.ClientMessage
	opts     ports.HostOptions

	mu      sync.Mutex
	width   int
	height  int
	fb      []vnc.Color
	pending []ports.SnapshotCallback
	closed  bool

	loaded     chan struct{}
	loadedOnce sync.Once
	done       chan struct{}
	wg         sync.WaitGroup
}

// New creates a new Host.
func New(logger ports.Logger) *Host {
	return &Host{
		logger: logger.WithComponent("vnc"),
		loaded: make(chan struct{}),
		done:   make(chan struct{}),
	}
}

func securityHandlers(password string) []vnc.SecurityHandler {
	if password == "" {
		return []vnc.SecurityHandler{&vnc.ClientAuthNone{}}
	}
	return []vnc.SecurityHandler{
		&vnc.ClientAuthVNC{Password: []byte(password)},
		&vnc.ClientAuthNone{},
	}
}

// Launch connects to opts.Address and requests the first full framebuffer.
func (h *Host) Launch(ctx context.Context, opts ports.HostOptions) error {
	h.opts = opts

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", opts.Address)
	if err != nil {
		return fmt.Errorf("dial %s: %w", opts.Address, err)
	}

	fromServer := make(chan vnc.ServerMessage, 1)
	h.toServer = make(chan vnc.ClientMessage, 1)
	errorCh := make(chan error, 1)

	cfg := &vnc.ClientConfig{
		SecurityHandlers: securityHandlers(opts.Password),
		PixelFormat:      vnc.PixelFormat32bit,
		ClientMessageCh:  h.toServer,
		ServerMessageCh:  fromServer,
		Messages:         vnc.DefaultServerMessages,
		Encodings:        []vnc.Encoding{&vnc.RawEncoding{}},
		ErrorCh:          errorCh,
		Handlers: []vnc.Handler{
			&vnc.DefaultClientVersionHandler{},
			&vnc.DefaultClientSecurityHandler{},
			&vnc.DefaultClientClientInitHandler{},
			&vnc.DefaultClientServerInitHandler{},
		},
	}

	cc, err := vnc.Connect(ctx, conn, cfg)
	if err != nil {
		conn.Close()
		return fmt.Errorf("vnc negotiation: %w", err)
	}
	h.conn = conn
	h.cc = cc
	h.width = int(cc.Width())
	h.height = int(cc.Height())
	h.fb = make([]vnc.Color, h.width*h.height)

	if h.width != opts.Width || h.height != opts.Height {
		h.logger.Warn("VNC framebuffer is %dx%d, recording expects %dx%d", h.width, h.height, opts.Width, opts.Height)
	}

	// The message handler exits on its own once the connection is closed.
	// It also sends the initial full update request that fires Loaded.
	go func() {
		if err := (&vnc.DefaultClientMessageHandler{}).Handle(cc); err != nil {
			h.fail(err)
		}
	}()
	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		h.readLoop(fromServer, errorCh)
	}()

	return nil
}

// Navigate is a no-op; the remote desktop has no URL.
func (h *Host) Navigate(url string) error {
	if h.cc == nil {
		return ErrNotLaunched
	}
	return nil
}

// Loaded is closed after the first full framebuffer arrives.
func (h *Host) Loaded() <-chan struct{} {
	return h.loaded
}

// RequestSnapshot asks the server for a full update and encodes the
// framebuffer once it has been applied.
func (h *Host) RequestSnapshot(ctx context.Context, cb ports.SnapshotCallback) {
	if h.cc == nil {
		cb(nil, ErrNotLaunched)
		return
	}
	if err := ctx.Err(); err != nil {
		cb(nil, err)
		return
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		cb(nil, ErrDisconnected)
		return
	}
	h.pending = append(h.pending, cb)
	h.mu.Unlock()

	if err := h.requestFull(); err != nil {
		h.fail(err)
	}
}

func (h *Host) requestFull() error {
	req := &vnc.FramebufferUpdateRequest{
		Inc:    0,
		X:      0,
		Y:      0,
		Width:  uint16(h.width),
		Height: uint16(h.height),
	}
	select {
	case h.toServer <- req:
		return nil
	case <-h.done:
		return ErrDisconnected
	}
}

func (h *Host) readLoop(fromServer <-chan vnc.ServerMessage, errorCh <-chan error) {
	for {
		select {
		case msg := <-fromServer:
			update, ok := msg.(*vnc.FramebufferUpdate)
			if !ok {
				continue
			}
			h.apply(update.Rects)
		case err := <-errorCh:
			if errors.Is(err, io.EOF) {
				h.fail(ErrDisconnected)
				return
			}
			h.logger.Warn("VNC error: %v", err)
		case <-h.done:
			return
		}
	}
}

// apply copies raw rectangles into the framebuffer and resolves every
// pending snapshot.
func (h *Host) apply(rects []*vnc.Rectangle) {
	h.mu.Lock()
	for _, rect := range rects {
		raw, ok := rect.Enc.(*vnc.RawEncoding)
		if !ok {
			continue
		}
		w := int(rect.Width)
		for y := 0; y < int(rect.Height); y++ {
			row := int(rect.Y) + y
			if row >= h.height {
				break
			}
			dst := row*h.width + int(rect.X)
			n := min(w, h.width-int(rect.X))
			copy(h.fb[dst:dst+n], raw.Colors[y*w:y*w+n])
		}
	}
	img := h.image()
	pending := h.pending
	h.pending = nil
	h.mu.Unlock()

	h.loadedOnce.Do(func() { close(h.loaded) })

	if len(pending) == 0 {
		return
	}
	data, err := pixeldecoder.Encode(img, h.opts.Format, h.opts.Quality)
	for _, cb := range pending {
		cb(data, err)
	}
}

// image converts the framebuffer to RGBA. Callers hold h.mu.
func (h *Host) image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, h.width, h.height))
	for i, c := range h.fb {
		img.SetRGBA(i%h.width, i/h.width, color.RGBA{uint8(c.R), uint8(c.G), uint8(c.B), 255})
	}
	return img
}

// fail marks the connection closed and fails every pending snapshot.
func (h *Host) fail(err error) {
	h.mu.Lock()
	pending := h.pending
	h.pending = nil
	h.closed = true
	h.mu.Unlock()

	for _, cb := range pending {
		cb(nil, fmt.Errorf("%w: %v", ErrDisconnected, err))
	}
}

// Close disconnects from the server.
func (h *Host) Close() error {
	if h.cc == nil {
		return nil
	}
	close(h.done)
	err := h.cc.Close()
	h.wg.Wait()
	h.fail(ErrDisconnected)
	h.cc = nil
	return err
}

// Ensure Host implements ports.RenderHost
var _ ports.RenderHost = (*Host)(nil)
