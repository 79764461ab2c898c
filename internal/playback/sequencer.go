// Package playback implements the verse playback state machine: Idle →
// Playing(index) → Idle on completion, stop, or error. One run speaks the
// document's verses strictly in order, one utterance at a time, honoring
// each verse's trailing pause.
package playback

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"lottus/internal/domain"
	"lottus/internal/logger"
	"lottus/internal/verse"
)

// Option configures the sequencer.
type Option func(*Sequencer)

// WithNotifier sets a notifier used to report playback failures to the
// user. Without one, failures are only logged.
func WithNotifier(n domain.Notifier) Option {
	return func(s *Sequencer) {
		s.notifier = n
	}
}

// Listener receives playback state snapshots on every transition.
// Invoked from the playback goroutine; keep it cheap.
type Listener func(domain.PlaybackState)

// Sequencer drives speech playback over the verse store. A run snapshots
// the document at Play time: store mutations during playback do not
// affect the verses already in flight.
//
// Each run carries a fresh id; state transitions from a superseded run
// compare against the live id and are dropped, so a completion landing
// after Stop can never resurrect a cancelled run.
type Sequencer struct {
	store    *verse.Store
	speaker  domain.Speaker
	notifier domain.Notifier
	log      *logger.Logger

	mu        sync.Mutex
	state     domain.PlaybackState
	runID     string        // id of the active run, "" when idle
	cancel    chan struct{} // closed by Stop, nil when idle
	listeners []Listener
}

// New creates a sequencer with the given dependencies and options.
func New(store *verse.Store, speaker domain.Speaker, log *logger.Logger, opts ...Option) *Sequencer {
	s := &Sequencer{
		store:   store,
		speaker: speaker,
		log:     log,
		state:   domain.IdleState(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Subscribe registers a state listener. Wire listeners up during startup;
// not safe to call concurrently with playback.
func (s *Sequencer) Subscribe(fn Listener) {
	s.listeners = append(s.listeners, fn)
}

// State returns the current playback state.
func (s *Sequencer) State() domain.PlaybackState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Play starts a full playback run over a snapshot of the current
// document. Returns ErrNoVerses for an empty document and
// ErrPlaybackActive if a run (or a single-verse test) is already in
// flight — a second Play never stops, restarts, or queues behind the
// first.
func (s *Sequencer) Play(ctx context.Context) error {
	doc := s.store.Document()
	if len(doc.Verses) == 0 {
		return domain.ErrNoVerses
	}

	s.mu.Lock()
	if s.state.Playing {
		s.mu.Unlock()
		return domain.ErrPlaybackActive
	}
	runID := uuid.NewString()
	cancel := make(chan struct{})
	s.runID = runID
	s.cancel = cancel
	s.state = domain.PlaybackState{Playing: true, Index: domain.NoVerse}
	st := s.state
	s.mu.Unlock()

	s.publish(st)
	s.log.Info("playback: run %s started (%d verses)", shortID(runID), len(doc.Verses))

	go s.run(ctx, runID, cancel, doc.Verses)
	return nil
}

// SpeakOne speaks the verse at index in isolation, without its trailing
// pause. Uses the same single-lane guard as Play: it is rejected while a
// run is active, and a run is rejected while it is active.
func (s *Sequencer) SpeakOne(ctx context.Context, index int) error {
	doc := s.store.Document()
	if index < 0 || index >= len(doc.Verses) {
		return domain.ErrIndexOutOfRange
	}

	s.mu.Lock()
	if s.state.Playing {
		s.mu.Unlock()
		return domain.ErrPlaybackActive
	}
	runID := uuid.NewString()
	cancel := make(chan struct{})
	s.runID = runID
	s.cancel = cancel
	s.state = domain.PlaybackState{Playing: true, Index: index}
	st := s.state
	s.mu.Unlock()

	s.publish(st)
	s.log.Info("playback: speaking verse %d in isolation", index)

	go func() {
		v := doc.Verses[index]
		if err := s.speakSegments(ctx, cancel, v); err != nil {
			if !cancelled(ctx, cancel) {
				s.reportFailure(index, err)
			}
		}
		s.finish(runID, "done")
	}()
	return nil
}

// Stop cancels the active run immediately: the in-flight utterance is
// interrupted, the pending pause timer is abandoned, and remaining jobs
// are discarded. Safe to call when nothing is playing.
func (s *Sequencer) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	if cancel == nil {
		s.mu.Unlock()
		return
	}
	s.cancel = nil
	s.runID = ""
	s.state = domain.IdleState()
	st := s.state
	s.mu.Unlock()

	close(cancel)
	s.speaker.Stop()
	s.publish(st)
	s.log.Info("playback: stopped")
}

// run executes one full playback traversal. verses is the Play-time
// snapshot.
func (s *Sequencer) run(ctx context.Context, runID string, cancel <-chan struct{}, verses []domain.Verse) {
	for i, v := range verses {
		if cancelled(ctx, cancel) {
			s.finish(runID, "cancelled")
			return
		}

		s.setIndex(runID, i)
		if err := s.speakSegments(ctx, cancel, v); err != nil {
			if cancelled(ctx, cancel) {
				s.finish(runID, "cancelled")
				return
			}
			s.reportFailure(i, err)
			s.finish(runID, "error")
			return
		}

		// The verse is done speaking; nothing is highlighted during the
		// trailing pause.
		s.setIndex(runID, domain.NoVerse)
		if !s.wait(ctx, cancel, v.Pause) {
			s.finish(runID, "cancelled")
			return
		}
	}
	s.finish(runID, "completed")
}

// speakSegments speaks a verse's delimiter-separated segments with the
// fixed inter-segment pause between them. A verse with empty text is
// silently skipped.
func (s *Sequencer) speakSegments(ctx context.Context, cancel <-chan struct{}, v domain.Verse) error {
	segments := v.Segments()
	for j, seg := range segments {
		if cancelled(ctx, cancel) {
			return nil
		}
		if j > 0 {
			if !s.wait(ctx, cancel, domain.SegmentPause) {
				return nil
			}
		}
		if err := s.speaker.Speak(ctx, seg); err != nil {
			return err
		}
	}
	return nil
}

// setIndex publishes a new current-verse index for the given run. Stale
// runs (superseded by Stop or a newer run) are ignored.
func (s *Sequencer) setIndex(runID string, index int) {
	s.mu.Lock()
	if s.runID != runID {
		s.mu.Unlock()
		return
	}
	s.state.Index = index
	st := s.state
	s.mu.Unlock()
	s.publish(st)
}

// finish settles the given run back to Idle. A no-op when the run has
// already been superseded.
func (s *Sequencer) finish(runID, reason string) {
	s.mu.Lock()
	if s.runID != runID {
		s.mu.Unlock()
		return
	}
	s.runID = ""
	s.cancel = nil
	s.state = domain.IdleState()
	st := s.state
	s.mu.Unlock()

	s.publish(st)
	s.log.Info("playback: run %s %s", shortID(runID), reason)
}

// wait blocks for d or until cancellation. Returns false when cancelled.
func (s *Sequencer) wait(ctx context.Context, cancel <-chan struct{}, d time.Duration) bool {
	if d <= 0 {
		return !cancelled(ctx, cancel)
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-cancel:
		return false
	case <-t.C:
		return true
	}
}

func (s *Sequencer) reportFailure(index int, err error) {
	s.log.Error("playback: verse %d failed: %v", index, err)
	if s.notifier != nil {
		s.notifier.NotifyUrgent(context.Background(), "Playback stopped: speech failed.")
	}
}

func (s *Sequencer) publish(st domain.PlaybackState) {
	for _, fn := range s.listeners {
		fn(st)
	}
}

func cancelled(ctx context.Context, cancel <-chan struct{}) bool {
	select {
	case <-ctx.Done():
		return true
	case <-cancel:
		return true
	default:
		return false
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
