// Package verse holds the in-memory document store: the ordered verse
// sequence plus title, mutated through index-validated operations.
package verse

import (
	"sync"
	"time"

	"lottus/internal/domain"
	"lottus/internal/logger"
)

// Listener receives a snapshot of the document after every mutation.
// Listeners are invoked synchronously, in registration order, outside
// the store lock.
type Listener func(domain.Document)

// Store owns the current document. Every mutation is copy-on-write: the
// verse slice is rebuilt rather than edited in place, so snapshots handed
// out earlier never change underneath their holders. Safe for concurrent
// use.
type Store struct {
	mu        sync.RWMutex
	doc       domain.Document
	listeners []Listener
	log       *logger.Logger
}

// NewStore creates an empty store (title "", zero verses).
func NewStore(log *logger.Logger) *Store {
	return &Store{log: log}
}

// Subscribe registers a listener for document changes. Not safe to call
// concurrently with mutations; wire listeners up during startup.
func (s *Store) Subscribe(fn Listener) {
	s.listeners = append(s.listeners, fn)
}

// Document returns a snapshot of the current document.
func (s *Store) Document() domain.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc.Clone()
}

// Len returns the number of verses.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.doc.Verses)
}

// Add appends a verse with the given text and trailing pause.
func (s *Store) Add(text string, pause time.Duration) {
	s.mu.Lock()
	verses := append(cloneVerses(s.doc.Verses), domain.Verse{Text: text, Pause: pause})
	s.doc.Verses = verses
	snap := s.doc.Clone()
	s.mu.Unlock()

	s.log.Debug("store: added verse %d (pause=%s)", len(verses)-1, pause)
	s.publish(snap)
}

// Update applies a partial update to the verse at index. Returns
// ErrIndexOutOfRange if the index is invalid.
func (s *Store) Update(index int, patch domain.VersePatch) error {
	s.mu.Lock()
	if index < 0 || index >= len(s.doc.Verses) {
		s.mu.Unlock()
		return domain.ErrIndexOutOfRange
	}
	verses := cloneVerses(s.doc.Verses)
	if patch.Text != nil {
		verses[index].Text = *patch.Text
	}
	if patch.Pause != nil {
		verses[index].Pause = *patch.Pause
	}
	s.doc.Verses = verses
	snap := s.doc.Clone()
	s.mu.Unlock()

	s.log.Debug("store: updated verse %d", index)
	s.publish(snap)
	return nil
}

// Delete removes the verse at index, preserving the relative order of
// the remaining verses. Returns ErrIndexOutOfRange if the index is
// invalid. Confirmation is the caller's concern.
func (s *Store) Delete(index int) error {
	s.mu.Lock()
	if index < 0 || index >= len(s.doc.Verses) {
		s.mu.Unlock()
		return domain.ErrIndexOutOfRange
	}
	old := s.doc.Verses
	verses := make([]domain.Verse, 0, len(old)-1)
	verses = append(verses, old[:index]...)
	verses = append(verses, old[index+1:]...)
	s.doc.Verses = verses
	snap := s.doc.Clone()
	s.mu.Unlock()

	s.log.Debug("store: deleted verse %d (%d remain)", index, len(verses))
	s.publish(snap)
	return nil
}

// ReplaceAll swaps in a whole new verse sequence.
func (s *Store) ReplaceAll(verses []domain.Verse) {
	s.mu.Lock()
	s.doc.Verses = cloneVerses(verses)
	snap := s.doc.Clone()
	s.mu.Unlock()

	s.log.Debug("store: replaced all verses (count=%d)", len(verses))
	s.publish(snap)
}

// SetDocument replaces the whole document (title and verses). Used when
// opening a share link.
func (s *Store) SetDocument(doc domain.Document) {
	s.mu.Lock()
	s.doc = doc.Clone()
	snap := s.doc.Clone()
	s.mu.Unlock()

	s.log.Debug("store: document replaced (title=%q, verses=%d)", doc.Title, len(doc.Verses))
	s.publish(snap)
}

// SetTitle changes the document title.
func (s *Store) SetTitle(title string) {
	s.mu.Lock()
	s.doc.Title = title
	snap := s.doc.Clone()
	s.mu.Unlock()

	s.log.Debug("store: title set to %q", title)
	s.publish(snap)
}

// Clear resets the store to an empty document.
func (s *Store) Clear() {
	s.mu.Lock()
	s.doc = domain.Document{}
	snap := s.doc.Clone()
	s.mu.Unlock()

	s.log.Debug("store: cleared")
	s.publish(snap)
}

func (s *Store) publish(snap domain.Document) {
	for _, fn := range s.listeners {
		fn(snap)
	}
}

func cloneVerses(in []domain.Verse) []domain.Verse {
	if len(in) == 0 {
		return nil
	}
	out := make([]domain.Verse, len(in))
	copy(out, in)
	return out
}
