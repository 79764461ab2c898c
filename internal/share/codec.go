// Package share turns documents into compressed URL-safe tokens and back,
// builds share links, and keeps the current link published as the
// document changes.
package share

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/andybalholm/brotli"

	"lottus/internal/domain"
	"lottus/internal/logger"
)

// Compile-time interface check.
var _ domain.Codec = (*Codec)(nil)

// compressionLevel is fixed so that encoding stays deterministic: the
// same document always yields the same token.
const compressionLevel = 6

// Wire layout of an encoded document. Pauses travel as integer
// milliseconds.
type wireDocument struct {
	Title  string      `json:"title"`
	Verses []wireVerse `json:"verses"`
}

type wireVerse struct {
	Text  string `json:"text"`
	Pause int64  `json:"pause"`
}

// Codec encodes documents as JSON → brotli → base64 (URL-safe, unpadded).
type Codec struct {
	log *logger.Logger
}

// NewCodec creates a document codec.
func NewCodec(log *logger.Logger) *Codec {
	return &Codec{log: log}
}

// Encode serializes a document into a share token. Pure: the token is a
// function of the document alone.
func (c *Codec) Encode(doc domain.Document) (string, error) {
	wire := wireDocument{Title: doc.Title, Verses: make([]wireVerse, len(doc.Verses))}
	for i, v := range doc.Verses {
		wire.Verses[i] = wireVerse{Text: v.Text, Pause: v.Pause.Milliseconds()}
	}

	raw, err := json.Marshal(wire)
	if err != nil {
		return "", fmt.Errorf("marshaling document: %w", err)
	}

	var buf bytes.Buffer
	w := brotli.NewWriterLevel(&buf, compressionLevel)
	if _, err := w.Write(raw); err != nil {
		return "", fmt.Errorf("compressing document: %w", err)
	}
	if err := w.Close(); err != nil {
		return "", fmt.Errorf("compressing document: %w", err)
	}

	token := base64.RawURLEncoding.EncodeToString(buf.Bytes())
	c.log.Debug("codec: encoded %d verses into %d-char token", len(doc.Verses), len(token))
	return token, nil
}

// Decode parses a share token back into a document. Any malformed input
// returns an error wrapping domain.ErrBadToken; callers recover by
// starting from an empty document.
func (c *Codec) Decode(token string) (domain.Document, error) {
	if token == "" {
		return domain.Document{}, fmt.Errorf("%w: empty token", domain.ErrBadToken)
	}

	compressed, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return domain.Document{}, fmt.Errorf("%w: %v", domain.ErrBadToken, err)
	}

	raw, err := io.ReadAll(brotli.NewReader(bytes.NewReader(compressed)))
	if err != nil {
		return domain.Document{}, fmt.Errorf("%w: %v", domain.ErrBadToken, err)
	}

	var wire wireDocument
	if err := json.Unmarshal(raw, &wire); err != nil {
		return domain.Document{}, fmt.Errorf("%w: %v", domain.ErrBadToken, err)
	}

	doc := domain.Document{Title: wire.Title}
	if len(wire.Verses) > 0 {
		doc.Verses = make([]domain.Verse, len(wire.Verses))
		for i, v := range wire.Verses {
			pause := v.Pause
			if pause < 0 {
				pause = 0
			}
			doc.Verses[i] = domain.Verse{Text: v.Text, Pause: time.Duration(pause) * time.Millisecond}
		}
	}

	c.log.Debug("codec: decoded token into %d verses (title=%q)", len(doc.Verses), doc.Title)
	return doc, nil
}
