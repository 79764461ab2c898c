// Package speech provides text-to-speech synthesis and audio output.
package speech

import (
	"context"
	"fmt"
	"sync"

	"lottus/internal/domain"
	"lottus/internal/logger"
)

// Compile-time interface check.
var _ domain.Speaker = (*Voice)(nil)

// Voice is the TTS-backed Speaker: synthesize (with caching), then play.
// Utterances are serialized — the audio channel is single-lane, so a
// second Speak blocks until the first has finished or been stopped.
type Voice struct {
	tts    *AzureClient
	player *Player
	cache  *AudioCache
	log    *logger.Logger

	mu sync.Mutex // serializes utterances
}

// NewVoice creates a speaker from a TTS client and an audio player.
func NewVoice(tts *AzureClient, player *Player, log *logger.Logger) *Voice {
	return &Voice{
		tts:    tts,
		player: player,
		cache:  NewAudioCache(tts.ProsodyKey(), log),
		log:    log,
	}
}

// Speak synthesizes the text (cache permitting) and plays it. Blocks
// until playback completes or Stop interrupts it.
func (v *Voice) Speak(ctx context.Context, text string) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	audio, err := v.synthesizeWithCache(ctx, text)
	if err != nil {
		return fmt.Errorf("synthesizing: %w", err)
	}
	if err := v.player.Play(audio); err != nil {
		return fmt.Errorf("playing audio: %w", err)
	}
	return nil
}

// Stop interrupts the current utterance mid-playback. Safe to call when
// nothing is playing.
func (v *Voice) Stop() {
	v.player.Stop()
}

// Prefetch pre-synthesizes the given texts in background goroutines so
// playback starts instantly when they are spoken. Texts already cached
// are skipped. Non-blocking.
func (v *Voice) Prefetch(ctx context.Context, texts ...string) {
	for _, text := range texts {
		if text == "" || v.cache.Has(text) {
			continue
		}
		go func(t string) {
			audio, err := v.tts.Synthesize(ctx, t)
			if err != nil {
				v.log.Error("prefetch: synthesis failed: %v", err)
				return
			}
			v.cache.Put(t, audio)
			v.log.Debug("prefetch: cached %d bytes for: %s", len(audio), truncateForLog(t, 50))
		}(text)
	}
}

// Cache returns the audio cache. Useful for stats and for clearing when
// a new document is opened.
func (v *Voice) Cache() *AudioCache { return v.cache }

// synthesizeWithCache checks the cache first, otherwise calls the TTS
// service and stores the result.
func (v *Voice) synthesizeWithCache(ctx context.Context, text string) ([]byte, error) {
	if audio, ok := v.cache.Get(text); ok {
		return audio, nil
	}
	audio, err := v.tts.Synthesize(ctx, text)
	if err != nil {
		return nil, err
	}
	v.cache.Put(text, audio)
	return audio, nil
}
