package domain

import (
	"strings"
	"time"
)

// SegmentDelimiter splits a verse into separately spoken segments.
// Segments within one verse are separated by SegmentPause, which is
// deliberately shorter than any sensible verse pause and is not
// user-configurable.
const (
	SegmentDelimiter = "/"
	SegmentPause     = 250 * time.Millisecond
)

// DefaultPause is the trailing pause assigned to newly added verses.
const DefaultPause = time.Second

// Verse is one unit of spoken text with a trailing pause. A verse has no
// stable identity — it is addressed by its position in the document.
type Verse struct {
	Text  string
	Pause time.Duration
}

// Segments returns the spoken segments of the verse text. Text without
// the delimiter yields a single segment. Empty segments (e.g. "a//b")
// are dropped.
func (v Verse) Segments() []string {
	if v.Text == "" {
		return nil
	}
	var out []string
	for _, s := range splitTrim(v.Text, SegmentDelimiter) {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Document is the full shareable state: a title plus ordered verses.
type Document struct {
	Title  string
	Verses []Verse
}

// Clone returns a deep copy of the document. Mutating the copy never
// affects the original.
func (d Document) Clone() Document {
	out := Document{Title: d.Title}
	if len(d.Verses) > 0 {
		out.Verses = make([]Verse, len(d.Verses))
		copy(out.Verses, d.Verses)
	}
	return out
}

// Empty reports whether the document has no title and no verses.
func (d Document) Empty() bool {
	return d.Title == "" && len(d.Verses) == 0
}

// Equal reports whether two documents hold the same title and verses.
func (d Document) Equal(other Document) bool {
	if d.Title != other.Title || len(d.Verses) != len(other.Verses) {
		return false
	}
	for i, v := range d.Verses {
		if v != other.Verses[i] {
			return false
		}
	}
	return true
}

// splitTrim splits s on sep and trims surrounding whitespace from each part.
func splitTrim(s, sep string) []string {
	parts := strings.Split(s, sep)
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}

// VersePatch is a partial verse update. Nil fields are left untouched.
type VersePatch struct {
	Text  *string
	Pause *time.Duration
}
