package conversation

import (
	"context"
	"testing"
	"time"

	"lottus/internal/domain"
	"lottus/internal/logger"
)

func TestCommandParser(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	parser := NewCommandParser(log)
	ctx := context.Background()

	tests := []struct {
		input       string
		wantType    domain.IntentType
		wantIndex   int
		wantPayload string
	}{
		// Add
		{"add breathe in", domain.IntentAddVerse, domain.NoVerse, "breathe in"},
		{"a hold it there", domain.IntentAddVerse, domain.NoVerse, "hold it there"},
		{"Add  extra spaces  ", domain.IntentAddVerse, domain.NoVerse, "extra spaces"},

		// Edit
		{"edit 2 new words", domain.IntentEditVerse, 1, "new words"},
		{"e 1 first", domain.IntentEditVerse, 0, "first"},

		// Delete
		{"del 3", domain.IntentDeleteVerse, 2, ""},
		{"delete 1", domain.IntentDeleteVerse, 0, ""},
		{"rm 2", domain.IntentDeleteVerse, 1, ""},

		// Pause
		{"pause 1 2s", domain.IntentSetPause, 0, "2s"},
		{"wait 4 750ms", domain.IntentSetPause, 3, "750ms"},

		// Title
		{"title Morning Practice", domain.IntentSetTitle, domain.NoVerse, "Morning Practice"},

		// List
		{"list", domain.IntentList, domain.NoVerse, ""},
		{"ls", domain.IntentList, domain.NoVerse, ""},

		// Play / stop
		{"play", domain.IntentPlay, domain.NoVerse, ""},
		{"p", domain.IntentPlay, domain.NoVerse, ""},
		{"stop", domain.IntentStop, domain.NoVerse, ""},

		// Speak one verse
		{"speak 2", domain.IntentSpeakVerse, 1, ""},
		{"test 1", domain.IntentSpeakVerse, 0, ""},

		// Share / open
		{"share", domain.IntentShare, domain.NoVerse, ""},
		{"open https://example.com/abc123", domain.IntentOpen, domain.NoVerse, "https://example.com/abc123"},

		// Clear / status
		{"clear", domain.IntentClear, domain.NoVerse, ""},
		{"status", domain.IntentStatus, domain.NoVerse, ""},

		// Help
		{"help", domain.IntentHelp, domain.NoVerse, ""},
		{"?", domain.IntentHelp, domain.NoVerse, ""},

		// Quit
		{"quit", domain.IntentQuit, domain.NoVerse, ""},
		{"exit", domain.IntentQuit, domain.NoVerse, ""},
		{"q", domain.IntentQuit, domain.NoVerse, ""},

		// Unknown
		{"flamingo dance", domain.IntentUnknown, domain.NoVerse, "flamingo dance"},
		{"edit nope text", domain.IntentUnknown, domain.NoVerse, "edit nope text"},
		{"del 0", domain.IntentUnknown, domain.NoVerse, "del 0"},
		{"", domain.IntentUnknown, domain.NoVerse, ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			intent, err := parser.Parse(ctx, tt.input)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if intent.Type != tt.wantType {
				t.Errorf("input=%q: got type %s, want %s", tt.input, intent.Type, tt.wantType)
			}
			if intent.Index != tt.wantIndex {
				t.Errorf("input=%q: got index %d, want %d", tt.input, intent.Index, tt.wantIndex)
			}
			if intent.Payload != tt.wantPayload {
				t.Errorf("input=%q: got payload %q, want %q", tt.input, intent.Payload, tt.wantPayload)
			}
		})
	}
}

func TestParsePause(t *testing.T) {
	tests := []struct {
		input  string
		want   time.Duration
		wantOK bool
	}{
		{"2s", 2 * time.Second, true},
		{"750ms", 750 * time.Millisecond, true},
		{"1.5", 1500 * time.Millisecond, true},
		{"0", 0, true},
		{"-1s", 0, false},
		{"soon", 0, false},
	}

	for _, tt := range tests {
		got, ok := ParsePause(tt.input)
		if ok != tt.wantOK || got != tt.want {
			t.Errorf("ParsePause(%q) = (%v, %v), want (%v, %v)", tt.input, got, ok, tt.want, tt.wantOK)
		}
	}
}
