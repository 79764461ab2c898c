package speech

import (
	"context"

	"lottus/internal/domain"
	"lottus/internal/logger"
)

// Compile-time interface check.
var _ domain.Speaker = (*NoOp)(nil)

// NoOp is a speaker that only logs. Used when TTS credentials are absent
// or speech is disabled, so the sequencer stays fully drivable (pauses
// and highlighting still run, nothing is audible).
type NoOp struct {
	log *logger.Logger
}

// NewNoOp creates a no-op speaker.
func NewNoOp(log *logger.Logger) *NoOp {
	return &NoOp{log: log}
}

// Speak logs the text and returns immediately.
func (n *NoOp) Speak(ctx context.Context, text string) error {
	n.log.Debug("speech no-op: would say %q", text)
	return nil
}

// Stop does nothing.
func (n *NoOp) Stop() {}
