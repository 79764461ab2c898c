package domain

import "errors"

// Sentinel errors used across layers.
var (
	ErrNotFound        = errors.New("not found")
	ErrIndexOutOfRange = errors.New("verse index out of range")
	ErrPlaybackActive  = errors.New("playback already active")
	ErrNoVerses        = errors.New("document has no verses")
	ErrBadToken        = errors.New("malformed share token")
)
