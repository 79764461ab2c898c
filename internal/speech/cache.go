package speech

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"

	"lottus/internal/logger"
)

// AudioCache is a thread-safe in-memory cache for synthesized audio. The
// cache key is sha256(prosody + ":" + text), so changing the voice, rate,
// or pitch automatically causes misses until the old settings return.
// Verses are short and documents small, so there is no eviction; Clear
// drops everything when a new document is opened.
type AudioCache struct {
	mu      sync.RWMutex
	entries map[string][]byte // hash -> WAV bytes
	log     *logger.Logger
	prosody string // voice+rate+pitch, included in every cache key
	hits    int64
	misses  int64
}

// NewAudioCache creates an audio cache scoped to one prosody setting.
func NewAudioCache(prosody string, log *logger.Logger) *AudioCache {
	return &AudioCache{
		entries: make(map[string][]byte),
		log:     log,
		prosody: prosody,
	}
}

// Get returns cached audio for the given text and true, or nil and false.
func (c *AudioCache) Get(text string) ([]byte, bool) {
	key := c.hashKey(text)

	c.mu.Lock()
	defer c.mu.Unlock()

	data, ok := c.entries[key]
	if !ok {
		c.misses++
		return nil, false
	}
	c.hits++
	c.log.Debug("cache hit: %s (%d bytes)", truncateForLog(text, 40), len(data))
	return data, true
}

// Put stores audio data for the given text.
func (c *AudioCache) Put(text string, audio []byte) {
	key := c.hashKey(text)

	c.mu.Lock()
	c.entries[key] = audio
	size := len(c.entries)
	c.mu.Unlock()

	c.log.Debug("cache store: %s (%d bytes, %d entries)", truncateForLog(text, 40), len(audio), size)
}

// Has returns true if audio for the text is cached.
func (c *AudioCache) Has(text string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.entries[c.hashKey(text)]
	return ok
}

// Len returns the number of cached entries.
func (c *AudioCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Stats returns hit and miss counts.
func (c *AudioCache) Stats() (hits, misses int64) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits, c.misses
}

// Clear empties the cache.
func (c *AudioCache) Clear() {
	c.mu.Lock()
	c.entries = make(map[string][]byte)
	c.hits = 0
	c.misses = 0
	c.mu.Unlock()
	c.log.Debug("cache cleared")
}

// hashKey returns a hex-encoded SHA-256 of prosody + ":" + text.
func (c *AudioCache) hashKey(text string) string {
	h := sha256.Sum256([]byte(c.prosody + ":" + text))
	return hex.EncodeToString(h[:])
}

func truncateForLog(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
