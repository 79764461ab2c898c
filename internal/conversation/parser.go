// Package conversation provides intent parsing and user notification implementations.
package conversation

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"time"

	"lottus/internal/domain"
	"lottus/internal/logger"
)

// Compile-time interface check.
var _ domain.IntentParser = (*CommandParser)(nil)

// CommandParser matches REPL input to intents using keywords and simple
// patterns. Indexed commands take 1-based verse numbers and the parser
// converts them to 0-based indices.
type CommandParser struct {
	log      *logger.Logger
	keywords []keywordRule
	indexed  []indexedRule
}

type keywordRule struct {
	regex  *regexp.Regexp
	intent domain.IntentType
}

// indexedRule captures a verse number and optional trailing text.
type indexedRule struct {
	regex  *regexp.Regexp
	intent domain.IntentType
}

// NewCommandParser creates a keyword-based intent parser.
func NewCommandParser(log *logger.Logger) *CommandParser {
	p := &CommandParser{log: log}
	p.keywords = []keywordRule{
		{regexp.MustCompile(`(?i)^(list|ls|l)$`), domain.IntentList},
		{regexp.MustCompile(`(?i)^(play|p)$`), domain.IntentPlay},
		{regexp.MustCompile(`(?i)^(stop|halt)$`), domain.IntentStop},
		{regexp.MustCompile(`(?i)^(share|link|url)$`), domain.IntentShare},
		{regexp.MustCompile(`(?i)^(clear|reset|new)$`), domain.IntentClear},
		{regexp.MustCompile(`(?i)^(status|where|info)$`), domain.IntentStatus},
		{regexp.MustCompile(`(?i)^(help|h|\?)$`), domain.IntentHelp},
		{regexp.MustCompile(`(?i)^(quit|exit|q)$`), domain.IntentQuit},
	}
	p.indexed = []indexedRule{
		{regexp.MustCompile(`(?i)^(?:edit|e)\s+(\d+)\s+(.+)$`), domain.IntentEditVerse},
		{regexp.MustCompile(`(?i)^(?:pause|wait)\s+(\d+)\s+(\S+)$`), domain.IntentSetPause},
		{regexp.MustCompile(`(?i)^(?:del|delete|rm)\s+(\d+)\s*$`), domain.IntentDeleteVerse},
		{regexp.MustCompile(`(?i)^(?:speak|test|say)\s+(\d+)\s*$`), domain.IntentSpeakVerse},
	}
	return p
}

// Parse converts REPL input into an intent.
func (p *CommandParser) Parse(ctx context.Context, input string) (*domain.Intent, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return &domain.Intent{Type: domain.IntentUnknown, Index: domain.NoVerse}, nil
	}

	p.log.Debug("parsing input: %q", trimmed)

	for _, rule := range p.keywords {
		if rule.regex.MatchString(trimmed) {
			p.log.Debug("matched intent: %s", rule.intent)
			return &domain.Intent{Type: rule.intent, Index: domain.NoVerse}, nil
		}
	}

	for _, rule := range p.indexed {
		m := rule.regex.FindStringSubmatch(trimmed)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil || n < 1 {
			break
		}
		intent := &domain.Intent{Type: rule.intent, Index: n - 1}
		if len(m) > 2 {
			intent.Payload = strings.TrimSpace(m[2])
		}
		p.log.Debug("matched intent: %s index=%d", rule.intent, intent.Index)
		return intent, nil
	}

	// Commands that carry the rest of the line as payload.
	if payload, ok := splitCommand(trimmed, "add", "a"); ok {
		return &domain.Intent{Type: domain.IntentAddVerse, Index: domain.NoVerse, Payload: payload}, nil
	}
	if payload, ok := splitCommand(trimmed, "title", "t"); ok {
		return &domain.Intent{Type: domain.IntentSetTitle, Index: domain.NoVerse, Payload: payload}, nil
	}
	if payload, ok := splitCommand(trimmed, "open", "load"); ok {
		return &domain.Intent{Type: domain.IntentOpen, Index: domain.NoVerse, Payload: payload}, nil
	}

	p.log.Debug("no match, returning unknown intent")
	return &domain.Intent{Type: domain.IntentUnknown, Index: domain.NoVerse, Payload: trimmed}, nil
}

// splitCommand returns the argument after one of the given command words,
// and whether the input started with one of them.
func splitCommand(input string, words ...string) (string, bool) {
	lower := strings.ToLower(input)
	for _, w := range words {
		if !strings.HasPrefix(lower, w+" ") {
			continue
		}
		arg := strings.TrimSpace(input[len(w)+1:])
		if arg == "" {
			return "", false
		}
		return arg, true
	}
	return "", false
}

// ParsePause converts a pause argument into a duration. Accepts Go
// duration syntax ("1.5s", "750ms") or a bare number of seconds.
func ParsePause(s string) (time.Duration, bool) {
	if d, err := time.ParseDuration(s); err == nil && d >= 0 {
		return d, true
	}
	if secs, err := strconv.ParseFloat(s, 64); err == nil && secs >= 0 {
		return time.Duration(secs * float64(time.Second)), true
	}
	return 0, false
}
