package domain

// NoVerse is the Index value when no verse is being spoken.
const NoVerse = -1

// PlaybackState is the transient state of the playback sequencer. It is
// owned solely by the sequencer; everything else receives immutable
// snapshots through the observer callback.
type PlaybackState struct {
	Playing bool
	Index   int // index of the verse being spoken, or NoVerse
}

// IdleState is the settled state: not playing, no verse active.
func IdleState() PlaybackState {
	return PlaybackState{Playing: false, Index: NoVerse}
}

// String returns a human-readable playback state.
func (s PlaybackState) String() string {
	switch {
	case !s.Playing:
		return "idle"
	case s.Index == NoVerse:
		return "playing (between verses)"
	default:
		return "playing"
	}
}
