package chromehost

import (
	"context"
	"errors"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/user/webrec/pkg/adapters/logger"
	"github.com/user/webrec/pkg/adapters/pixeldecoder"
	"github.com/user/webrec/pkg/ports"
)

func TestHost_NotLaunched(t *testing.T) {
	h := New(logger.NewNoop())

	if err := h.Navigate("about:blank"); !errors.Is(err, ErrNotLaunched) {
		t.Errorf("expected ErrNotLaunched, got %v", err)
	}

	var got error
	h.RequestSnapshot(context.Background(), func(data []byte, err error) { got = err })
	if !errors.Is(got, ErrNotLaunched) {
		t.Errorf("expected ErrNotLaunched from snapshot, got %v", got)
	}
}

func TestHost_Launch_InstallFailure(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("only Linux resolves Chrome purely through PATH")
	}
	t.Setenv("CHROME_PATH", "")
	t.Setenv("PATH", "")

	installErr := errors.New("offline")
	h := New(logger.NewNoop())
	h.installChromium = func() (string, error) { return "", installErr }

	err := h.Launch(context.Background(), ports.HostOptions{Width: 64, Height: 48, Headless: true})
	if !errors.Is(err, installErr) {
		t.Errorf("expected install error to be wrapped, got %v", err)
	}
}

func TestScreenshotFormat(t *testing.T) {
	if screenshotFormat(ports.SnapshotJPEG) != "jpeg" {
		t.Error("jpeg format mismatch")
	}
	if screenshotFormat(ports.SnapshotWebP) != "webp" {
		t.Error("webp format mismatch")
	}
	if screenshotFormat("") != "png" {
		t.Error("default format should be png")
	}
}

func TestHost_Snapshot(t *testing.T) {
	chromePath := ResolveChromePath("")
	if chromePath == "" {
		t.Skip("Chrome not installed")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	h := New(logger.NewNoop())
	opts := ports.HostOptions{Width: 320, Height: 240, Format: ports.SnapshotPNG, Headless: true, ChromePath: chromePath}
	if err := h.Launch(ctx, opts); err != nil {
		t.Fatalf("Launch failed: %v", err)
	}
	defer h.Close()

	if err := h.Navigate("data:text/html,<body style='background:red'>hi</body>"); err != nil {
		t.Fatalf("Navigate failed: %v", err)
	}

	select {
	case <-h.Loaded():
	case <-ctx.Done():
		t.Fatal("timed out waiting for load")
	}

	type result struct {
		data []byte
		err  error
	}
	done := make(chan result, 1)
	h.RequestSnapshot(ctx, func(data []byte, err error) { done <- result{data, err} })

	r := <-done
	if r.err != nil {
		t.Fatalf("snapshot failed: %v", r.err)
	}
	if _, err := pixeldecoder.New(320, 240).Decode(r.data); err != nil {
		t.Errorf("snapshot does not match viewport: %v", err)
	}
}

func TestHost_NavigateReportsLoadError(t *testing.T) {
	chromePath := ResolveChromePath("")
	if chromePath == "" {
		t.Skip("Chrome not installed")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	h := New(logger.NewNoop())
	opts := ports.HostOptions{Width: 320, Height: 240, Format: ports.SnapshotPNG, Headless: true, ChromePath: chromePath}
	if err := h.Launch(ctx, opts); err != nil {
		t.Fatalf("Launch failed: %v", err)
	}
	defer h.Close()

	// Nothing listens on port 1, so Chrome reports a net:: error text.
	err := h.Navigate("http://127.0.0.1:1/")
	if err == nil {
		t.Fatal("expected a navigation error")
	}
	if !strings.Contains(err.Error(), "net::") {
		t.Errorf("expected Chrome's error text, got %v", err)
	}
}
