package share

import (
	"bytes"
	"encoding/base64"
	"errors"
	"testing"
	"time"

	"github.com/andybalholm/brotli"

	"lottus/internal/domain"
	"lottus/internal/logger"
)

func setupCodec(t *testing.T) *Codec {
	t.Helper()
	return NewCodec(logger.New(logger.LevelOff, nil))
}

func TestRoundTrip(t *testing.T) {
	c := setupCodec(t)

	tests := []struct {
		name string
		doc  domain.Document
	}{
		{"empty", domain.Document{}},
		{"title only", domain.Document{Title: "evening walk"}},
		{"single verse", domain.Document{
			Title:  "one",
			Verses: []domain.Verse{{Text: "breathe in", Pause: 500 * time.Millisecond}},
		}},
		{"multiple verses", domain.Document{
			Title: "intervals",
			Verses: []domain.Verse{
				{Text: "sprint", Pause: 30 * time.Second},
				{Text: "rest", Pause: 90 * time.Second},
				{Text: "cool down / stretch", Pause: 0},
			},
		}},
		{"unicode and zero pause", domain.Document{
			Title:  "héllo — ☀",
			Verses: []domain.Verse{{Text: "çava? 速い", Pause: 0}},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := c.Encode(tt.doc)
			if err != nil {
				t.Fatalf("encode: %v", err)
			}
			got, err := c.Decode(token)
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if !got.Equal(tt.doc) {
				t.Fatalf("round-trip mismatch:\n enc %+v\n dec %+v", tt.doc, got)
			}
		})
	}
}

func TestEncodeIsDeterministic(t *testing.T) {
	c := setupCodec(t)
	doc := domain.Document{
		Title:  "same",
		Verses: []domain.Verse{{Text: "twice", Pause: time.Second}},
	}

	a, err := c.Encode(doc)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	b, err := c.Encode(doc)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if a != b {
		t.Fatalf("same document produced different tokens:\n%s\n%s", a, b)
	}
}

func TestTokenIsURLSafe(t *testing.T) {
	c := setupCodec(t)
	doc := domain.Document{
		Title:  "punctuation galore?!",
		Verses: []domain.Verse{{Text: "a/b & c=d", Pause: time.Second}},
	}

	token, err := c.Encode(doc)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	for _, r := range token {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			t.Fatalf("token contains non-URL-safe rune %q", r)
		}
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	c := setupCodec(t)

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"not base64", "!!!not//base64!!!"},
		{"base64 but not brotli-json", "aGVsbG8gd29ybGQ"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.Decode(tt.token)
			if !errors.Is(err, domain.ErrBadToken) {
				t.Fatalf("expected ErrBadToken, got %v", err)
			}
		})
	}
}

func TestDecodeClampsNegativePause(t *testing.T) {
	// A hostile or buggy encoder could ship a negative pause; decoding
	// must never hand the sequencer a negative wait.
	c := setupCodec(t)

	doc, err := c.Decode(encodeRawJSON(t, `{"title":"x","verses":[{"text":"v","pause":-100}]}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if doc.Verses[0].Pause != 0 {
		t.Fatalf("expected clamped pause 0, got %s", doc.Verses[0].Pause)
	}
}

// encodeRawJSON builds a token from raw JSON, bypassing Encode. Lets
// tests feed the decoder wire payloads Encode would never produce.
func encodeRawJSON(t *testing.T, raw string) string {
	t.Helper()
	var buf bytes.Buffer
	w := brotli.NewWriterLevel(&buf, compressionLevel)
	if _, err := w.Write([]byte(raw)); err != nil {
		t.Fatalf("compress: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("compress: %v", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf.Bytes())
}

func TestLinkHelpers(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"full url", "http://192.168.1.4:7777/abcDEF-123", "abcDEF-123"},
		{"trailing slash", "http://host/abc/", "abc"},
		{"bare path", "/xyz", "xyz"},
		{"bare token", "xyz", "xyz"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TokenFromLink(tt.in); got != tt.want {
				t.Fatalf("TokenFromLink(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}

	if got := Link("http://host:7777/", "tok"); got != "http://host:7777/tok" {
		t.Fatalf("Link produced %q", got)
	}
}

func TestLinkRoundTripsThroughToken(t *testing.T) {
	c := setupCodec(t)
	doc := domain.Document{
		Title:  "shared",
		Verses: []domain.Verse{{Text: "hello", Pause: 100 * time.Millisecond}},
	}

	token, err := c.Encode(doc)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	link := Link("http://10.0.0.2:7777", token)
	got, err := c.Decode(TokenFromLink(link))
	if err != nil {
		t.Fatalf("decode from link: %v", err)
	}
	if !got.Equal(doc) {
		t.Fatalf("link round-trip mismatch: %+v", got)
	}
}
