package domain

// IntentType classifies what the user wants to do.
type IntentType int

const (
	IntentUnknown IntentType = iota
	IntentAddVerse
	IntentEditVerse
	IntentDeleteVerse
	IntentSetPause
	IntentSetTitle
	IntentList
	IntentPlay
	IntentStop
	IntentSpeakVerse // "test" a single verse in isolation
	IntentShare      // show the share link + QR
	IntentOpen       // load a document from a share link or token
	IntentClear
	IntentStatus
	IntentHelp
	IntentQuit
)

// String returns a human-readable intent type.
func (i IntentType) String() string {
	switch i {
	case IntentAddVerse:
		return "add_verse"
	case IntentEditVerse:
		return "edit_verse"
	case IntentDeleteVerse:
		return "delete_verse"
	case IntentSetPause:
		return "set_pause"
	case IntentSetTitle:
		return "set_title"
	case IntentList:
		return "list"
	case IntentPlay:
		return "play"
	case IntentStop:
		return "stop"
	case IntentSpeakVerse:
		return "speak_verse"
	case IntentShare:
		return "share"
	case IntentOpen:
		return "open"
	case IntentClear:
		return "clear"
	case IntentStatus:
		return "status"
	case IntentHelp:
		return "help"
	case IntentQuit:
		return "quit"
	default:
		return "unknown"
	}
}

// Intent represents a parsed user action.
type Intent struct {
	Type    IntentType
	Index   int    // verse index for indexed intents, NoVerse otherwise
	Payload string // free text, e.g. verse text or a share link
}
