// Package qr renders share links as QR code images. Rendering is
// debounced: rapid successive document edits coalesce into a single
// render once typing goes quiet.
package qr

import (
	"os"
	"sync"
	"time"

	qrcode "github.com/skip2/go-qrcode"

	"lottus/internal/logger"
)

// Option configures the renderer.
type Option func(*Renderer)

// WithDebounce sets the quiescence window before a scheduled render runs.
func WithDebounce(d time.Duration) Option {
	return func(r *Renderer) {
		r.debounce = d
	}
}

// WithSize sets the rendered image size in pixels.
func WithSize(px int) Option {
	return func(r *Renderer) {
		r.size = px
	}
}

// WithFile enables write-through of the latest image to a PNG file, so
// the code can be scanned straight from an image viewer.
func WithFile(path string) Option {
	return func(r *Renderer) {
		r.file = path
	}
}

// Renderer holds the latest QR image for the current share link. Only
// one image is retained — scheduling a render for a new URL drops the
// previous image when it completes.
type Renderer struct {
	log      *logger.Logger
	debounce time.Duration
	size     int
	file     string

	mu      sync.Mutex
	pending string
	timer   *time.Timer
	image   []byte // latest rendered PNG, nil before the first render
	url     string // URL the latest image encodes
	closed  bool
	renders int64
}

// New creates a QR renderer.
func New(log *logger.Logger, opts ...Option) *Renderer {
	r := &Renderer{
		log:      log,
		debounce: 500 * time.Millisecond,
		size:     256,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Schedule queues a render of the given URL. Any call landing within the
// debounce window resets the timer; only the last URL after quiescence
// is actually rendered.
func (r *Renderer) Schedule(url string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return
	}
	r.pending = url
	if r.timer != nil {
		r.timer.Stop()
	}
	r.timer = time.AfterFunc(r.debounce, r.flush)
}

// flush renders the pending URL. Runs on the debounce timer goroutine.
func (r *Renderer) flush() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	url := r.pending
	r.timer = nil
	r.mu.Unlock()

	png, err := Render(url, r.size)
	if err != nil {
		r.log.Error("qr: render failed for %d-char url: %v", len(url), err)
		return
	}

	r.mu.Lock()
	r.image = nil // drop the superseded image before swapping in the new one
	r.image = png
	r.url = url
	r.renders++
	file := r.file
	r.mu.Unlock()

	r.log.Debug("qr: rendered %d bytes for %d-char url", len(png), len(url))

	if file != "" {
		if err := os.WriteFile(file, png, 0o644); err != nil {
			r.log.Error("qr: writing %s: %v", file, err)
		}
	}
}

// Latest returns the most recently rendered image and the URL it
// encodes. ok is false before the first render completes.
func (r *Renderer) Latest() (png []byte, url string, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.image == nil {
		return nil, "", false
	}
	return r.image, r.url, true
}

// Renders returns how many renders have completed.
func (r *Renderer) Renders() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.renders
}

// Close cancels any pending render. Further Schedule calls are ignored.
func (r *Renderer) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
}

// Render encodes a URL as a PNG QR image of the given pixel size.
// Pure: same URL and size, same image.
func Render(url string, size int) ([]byte, error) {
	return qrcode.Encode(url, qrcode.Medium, size)
}
