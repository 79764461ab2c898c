package domain

import "context"

// Speaker produces audible speech. Speak blocks until the utterance has
// been fully played or the context is cancelled; Stop interrupts the
// current utterance mid-playback. Implementations can be TTS-backed or
// no-op (when audio is unavailable).
type Speaker interface {
	Speak(ctx context.Context, text string) error
	Stop()
}

// Codec serializes documents to and from compressed share tokens.
// Encode must be a pure function of the document; Decode of a token
// produced by Encode returns an equivalent document.
type Codec interface {
	Encode(doc Document) (string, error)
	Decode(token string) (Document, error)
}

// Notifier delivers messages to the user. Implementations can write to
// the terminal, a log, or anything else user-visible.
type Notifier interface {
	Notify(ctx context.Context, message string) error
	NotifyUrgent(ctx context.Context, message string) error
}

// IntentParser converts raw REPL input into structured intents.
type IntentParser interface {
	Parse(ctx context.Context, input string) (*Intent, error)
}
