package qr

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"lottus/internal/logger"
)

func setupRenderer(t *testing.T, opts ...Option) *Renderer {
	t.Helper()
	r := New(logger.New(logger.LevelOff, nil), opts...)
	t.Cleanup(r.Close)
	return r
}

// waitRenders polls until n renders have completed.
func waitRenders(t *testing.T, r *Renderer, n int64) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if r.Renders() >= n {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("expected %d renders, got %d", n, r.Renders())
}

func TestRenderIsDeterministic(t *testing.T) {
	a, err := Render("http://host/tok", 128)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	b, err := Render("http://host/tok", 128)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if !bytes.Equal(a, b) {
		t.Fatal("same URL produced different images")
	}
	if len(a) == 0 {
		t.Fatal("empty image")
	}
}

func TestScheduleCoalesces(t *testing.T) {
	r := setupRenderer(t, WithDebounce(30*time.Millisecond), WithSize(64))

	// Three rapid edits — only the last survives the window.
	r.Schedule("http://host/a")
	r.Schedule("http://host/b")
	r.Schedule("http://host/c")

	waitRenders(t, r, 1)
	_, url, ok := r.Latest()
	if !ok {
		t.Fatal("expected a rendered image")
	}
	if url != "http://host/c" {
		t.Fatalf("expected last URL rendered, got %q", url)
	}
	if r.Renders() != 1 {
		t.Fatalf("expected exactly 1 render, got %d", r.Renders())
	}
}

func TestScheduleResetsWindow(t *testing.T) {
	r := setupRenderer(t, WithDebounce(80*time.Millisecond), WithSize(64))

	r.Schedule("http://host/a")
	time.Sleep(30 * time.Millisecond)
	r.Schedule("http://host/b") // inside the window: resets the timer

	// Shortly after the reset, nothing has rendered yet.
	time.Sleep(30 * time.Millisecond)
	if r.Renders() != 0 {
		t.Fatalf("render fired before quiescence (%d renders)", r.Renders())
	}

	waitRenders(t, r, 1)
	_, url, _ := r.Latest()
	if url != "http://host/b" {
		t.Fatalf("expected %q rendered, got %q", "http://host/b", url)
	}
}

func TestSupersededImageReplaced(t *testing.T) {
	r := setupRenderer(t, WithDebounce(10*time.Millisecond), WithSize(64))

	r.Schedule("http://host/first")
	waitRenders(t, r, 1)
	first, _, _ := r.Latest()

	r.Schedule("http://host/second")
	waitRenders(t, r, 2)
	second, url, _ := r.Latest()

	if url != "http://host/second" {
		t.Fatalf("expected second URL, got %q", url)
	}
	if bytes.Equal(first, second) {
		t.Fatal("expected a different image for a different URL")
	}
}

func TestWriteThroughFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "share.png")
	r := setupRenderer(t, WithDebounce(10*time.Millisecond), WithSize(64), WithFile(path))

	r.Schedule("http://host/file")
	waitRenders(t, r, 1)

	// The file write happens right after the render bookkeeping; give it
	// a moment.
	deadline := time.Now().Add(time.Second)
	for {
		if data, err := os.ReadFile(path); err == nil && len(data) > 0 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("QR file never written")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestCloseCancelsPending(t *testing.T) {
	r := setupRenderer(t, WithDebounce(20*time.Millisecond), WithSize(64))

	r.Schedule("http://host/doomed")
	r.Close()

	time.Sleep(60 * time.Millisecond)
	if r.Renders() != 0 {
		t.Fatalf("render fired after close (%d)", r.Renders())
	}
	r.Schedule("http://host/ignored")
	time.Sleep(60 * time.Millisecond)
	if _, _, ok := r.Latest(); ok {
		t.Fatal("schedule after close should be ignored")
	}
}
