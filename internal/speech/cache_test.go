package speech

import (
	"testing"

	"lottus/internal/logger"
)

func TestCachePutGet(t *testing.T) {
	c := NewAudioCache("voice@1.00x+0.0", logger.New(logger.LevelOff, nil))

	if _, ok := c.Get("hello"); ok {
		t.Fatal("unexpected hit on empty cache")
	}

	c.Put("hello", []byte{1, 2, 3})
	audio, ok := c.Get("hello")
	if !ok || len(audio) != 3 {
		t.Fatalf("expected cached audio, got ok=%v len=%d", ok, len(audio))
	}
	if !c.Has("hello") {
		t.Fatal("Has should report the cached entry")
	}

	hits, misses := c.Stats()
	if hits != 1 || misses != 1 {
		t.Fatalf("expected 1 hit / 1 miss, got %d/%d", hits, misses)
	}
}

func TestCacheKeysIncludeProsody(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	a := NewAudioCache("voiceA@1.00x+0.0", log)
	b := NewAudioCache("voiceB@1.00x+0.0", log)

	if a.hashKey("same text") == b.hashKey("same text") {
		t.Fatal("different prosody settings must produce different cache keys")
	}
}

func TestCacheClear(t *testing.T) {
	c := NewAudioCache("v", logger.New(logger.LevelOff, nil))
	c.Put("a", []byte{1})
	c.Put("b", []byte{2})

	if c.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", c.Len())
	}
	c.Clear()
	if c.Len() != 0 {
		t.Fatalf("expected empty cache after clear, got %d", c.Len())
	}
}
