package share

import (
	"sync"
	"sync/atomic"

	"lottus/internal/domain"
	"lottus/internal/logger"
)

// Scheduler coalesces share-artifact regeneration requests. Satisfied by
// the QR renderer.
type Scheduler interface {
	Schedule(url string)
}

// Publisher keeps the current share link in sync with the document. It
// subscribes to store changes, re-encodes the token on every mutation
// once the initial load has completed, and schedules a QR re-render.
// There is no history: a new link replaces the previous one.
type Publisher struct {
	codec  domain.Codec
	base   string
	qr     Scheduler // may be nil
	log    *logger.Logger
	loaded atomic.Bool

	mu    sync.RWMutex
	token string
	url   string
}

// NewPublisher creates a publisher for the given base URL. qr may be nil
// when no QR artifact is wanted.
func NewPublisher(codec domain.Codec, base string, qr Scheduler, log *logger.Logger) *Publisher {
	return &Publisher{codec: codec, base: base, qr: qr, log: log}
}

// MarkLoaded enables publishing. Store changes made while restoring a
// shared document must not re-encode half-loaded state, so the
// entrypoint calls this after the initial document is in place.
func (p *Publisher) MarkLoaded() {
	p.loaded.Store(true)
	p.log.Debug("publisher: initial load complete")
}

// Loaded reports whether the initial load has completed.
func (p *Publisher) Loaded() bool { return p.loaded.Load() }

// OnChange is the store listener. Re-encodes the document and refreshes
// the share artifacts.
func (p *Publisher) OnChange(doc domain.Document) {
	if !p.loaded.Load() {
		return
	}

	token, err := p.codec.Encode(doc)
	if err != nil {
		p.log.Error("publisher: encoding document: %v", err)
		return
	}

	link := Link(p.base, token)

	p.mu.Lock()
	p.token = token
	p.url = link
	p.mu.Unlock()

	if p.qr != nil {
		p.qr.Schedule(link)
	}
	p.log.Debug("publisher: share link updated (%d chars)", len(link))
}

// URL returns the current share link, or "" before the first publish.
func (p *Publisher) URL() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.url
}

// Token returns the current share token, or "" before the first publish.
func (p *Publisher) Token() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.token
}
