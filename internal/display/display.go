// Package display provides the terminal UI using Bubble Tea.
//
// The [UI] type manages a persistent playback status bar and an input
// prompt at the bottom of the terminal. All application output is
// printed above the rendered area via Program.Println / Printf,
// ensuring concurrent writes never garble the display.
package display

import (
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"lottus/internal/domain"
)

// ── Styles ───────────────────────────────────────────────────────

var (
	barBg = lipgloss.NewStyle().
		Background(lipgloss.Color("#27272a")).
		Foreground(lipgloss.Color("#a1a1aa"))

	playingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#bbf7d0"))

	pausedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#fde68a")).
			Italic(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#a1a1aa"))

	sepStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#52525b"))

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#94a3b8"))

	// ── Output styles (soft palette) ──

	// BannerStyle — muted slate for the startup banner.
	BannerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#94a3b8"))

	// Verse being spoken — soft sky blue.
	activeVerseStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#bae6fd"))

	// Verse list numbering — soft mint.
	numberStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#bbf7d0"))

	// Primary text — light zinc for verse text.
	primaryStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#d4d4d8"))

	// Secondary text — dimmed zinc for hints, pauses, metadata.
	secondaryStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#71717a"))

	// Urgent — soft coral for errors/alerts.
	urgentOutputStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#fca5a5"))

	userInputEchoStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#a1a1aa"))
)

// StatusFunc reports the current playback state for the status bar.
type StatusFunc func() domain.PlaybackState

// DocumentFunc reports the current document for the status bar.
type DocumentFunc func() domain.Document

// ── UI ───────────────────────────────────────────────────────────

// UI manages the terminal through Bubble Tea.
//
// Call [NewUI] then [UI.Run] (blocking).  Other goroutines may
// safely call [UI.Println], [UI.Printf], and read from
// [UI.InputChan] at any time after [UI.WaitReady] returns.
type UI struct {
	program  *tea.Program
	inputCh  chan string
	readyCh  chan struct{}
	quitCh   chan struct{}
	statusFn StatusFunc
	docFn    DocumentFunc
	done     atomic.Bool
}

// NewUI creates the display. Call Run() to start.
func NewUI(statusFn StatusFunc, docFn DocumentFunc) *UI {
	return &UI{
		statusFn: statusFn,
		docFn:    docFn,
		inputCh:  make(chan string, 16),
		readyCh:  make(chan struct{}),
		quitCh:   make(chan struct{}),
	}
}

// Println prints a line above the prompt. Thread-safe.
// Each argument is converted via fmt.Sprint and printed on its own
// line(s).  If the program hasn't started yet, falls back to
// fmt.Println.
func (u *UI) Println(a ...interface{}) {
	if u.program != nil && !u.done.Load() {
		u.program.Println(a...)
	} else {
		fmt.Println(a...)
	}
}

// Printf prints formatted text above the prompt. Thread-safe.
// The output is printed on its own line (a trailing newline in the
// format string will produce an extra blank line).
func (u *UI) Printf(format string, a ...interface{}) {
	if u.program != nil && !u.done.Load() {
		u.program.Printf(format, a...)
	} else {
		fmt.Printf(format, a...)
	}
}

// InputChan returns completed user-input lines.
func (u *UI) InputChan() <-chan string { return u.inputCh }

// ── Styled print helpers ─────────────────────────────────────────
// These give output visual hierarchy with lipgloss colors.

// PrintActiveVerse prints the verse currently being spoken.
func (u *UI) PrintActiveVerse(text string) {
	u.Println(activeVerseStyle.Render("  " + text))
}

// PrintVerse prints a numbered verse line for listings.
func (u *UI) PrintVerse(number int, text string, pause time.Duration) {
	u.Println(
		numberStyle.Render(fmt.Sprintf("  %2d. ", number)) +
			primaryStyle.Render(text) +
			secondaryStyle.Render("  ("+fmtDuration(pause)+" pause)"))
}

// PrintTitle prints a document title line.
func (u *UI) PrintTitle(text string) {
	u.Println(numberStyle.Render("  " + text))
}

// PrintHint prints a secondary/dimmed line.
func (u *UI) PrintHint(text string) {
	u.Println(secondaryStyle.Render("  " + text))
}

// PrintUrgent prints an urgent/error line (red, bold).
func (u *UI) PrintUrgent(text string) {
	u.Println(urgentOutputStyle.Render("  " + text))
}

// PrintUserInput echoes the user's typed command into the scrollback.
func (u *UI) PrintUserInput(text string) {
	u.Println(promptStyle.Render("lottus") + secondaryStyle.Render("> ") + userInputEchoStyle.Render(text))
}

// WaitReady blocks until the Bubble Tea event loop is running.
func (u *UI) WaitReady() { <-u.readyCh }

// Quit tells Bubble Tea to exit.
func (u *UI) Quit() {
	if u.program != nil {
		u.program.Quit()
	}
}

// QuitChan is closed when Run returns.
func (u *UI) QuitChan() <-chan struct{} { return u.quitCh }

// Run starts the Bubble Tea event loop.  Blocks until quit.
func (u *UI) Run() error {
	ti := textinput.New()
	// Use a plain-text prompt so the textinput width math stays correct.
	// Lipgloss-styled prompts add invisible ANSI bytes that break the
	// internal offset/scroll calculations for long input.
	ti.Prompt = "lottus> "
	ti.PromptStyle = promptStyle
	ti.TextStyle = userInputEchoStyle
	ti.Cursor.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#94a3b8"))
	ti.Focus()
	ti.CharLimit = 500
	ti.Width = 60 // updated on first WindowSizeMsg

	m := model{
		statusFn: u.statusFn,
		docFn:    u.docFn,
		input:    ti,
		inputCh:  u.inputCh,
		readyCh:  u.readyCh,
		echoFn: func(v string) {
			u.PrintUserInput(v)
		},
	}

	u.program = tea.NewProgram(m)
	_, err := u.program.Run()
	u.done.Store(true)
	close(u.quitCh)
	return err
}

// Teardown is an alias for Quit kept for drop-in compatibility.
func (u *UI) Teardown() { u.Quit() }

// ── Bubble Tea model ─────────────────────────────────────────────

type model struct {
	statusFn StatusFunc
	docFn    DocumentFunc
	input    textinput.Model
	inputCh  chan<- string
	readyCh  chan struct{}
	echoFn   func(string) // prints user input into scrollback
	status   barStatus
	width    int
}

// barStatus is the snapshot the status bar renders from.
type barStatus struct {
	playing bool
	index   int
	total   int
	title   string
	verse   string
}

// Messages.
type tickMsg time.Time

func (m model) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		tickCmd(),
		signalReady(m.readyCh),
	)
}

func signalReady(ch chan struct{}) tea.Cmd {
	return func() tea.Msg {
		close(ch)
		return nil
	}
}

func tickCmd() tea.Cmd {
	return tea.Tick(250*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC:
			return m, tea.Quit
		case tea.KeyEnter:
			v := m.input.Value()
			m.input.Reset()
			if strings.TrimSpace(v) != "" {
				m.inputCh <- v
				// Return a Cmd that prints the echo — this runs
				// outside Update so it won't deadlock on msgs.
				echoFn := m.echoFn
				return m, func() tea.Msg {
					echoFn(v)
					return nil
				}
			}
			return m, nil
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		// Let the text input use the full width minus the prompt ("lottus> " = 8 chars).
		const promptLen = 8
		if msg.Width > promptLen {
			m.input.Width = msg.Width - promptLen
		}
		return m, nil

	case tickMsg:
		m.refreshStatus()
		cmds := []tea.Cmd{tickCmd()}
		if m.status.playing {
			cmds = append(cmds, tea.SetWindowTitle(m.titleStr()))
		} else {
			cmds = append(cmds, tea.SetWindowTitle("Lottus"))
		}
		return m, tea.Batch(cmds...)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *model) refreshStatus() {
	state := m.statusFn()
	doc := m.docFn()

	m.status = barStatus{
		playing: state.Playing,
		index:   state.Index,
		total:   len(doc.Verses),
		title:   doc.Title,
	}
	if state.Index >= 0 && state.Index < len(doc.Verses) {
		m.status.verse = doc.Verses[state.Index].Text
	}
}

func (m model) titleStr() string {
	if m.status.index == domain.NoVerse {
		return "Lottus — playing"
	}
	return fmt.Sprintf("Lottus — verse %d/%d", m.status.index+1, m.status.total)
}

func (m model) View() string {
	var b strings.Builder

	if m.status.playing {
		b.WriteString(m.renderBar())
		b.WriteByte('\n')
	}

	// Blank line before prompt for visual separation.
	b.WriteByte('\n')
	b.WriteString(m.input.View())
	return b.String()
}

func (m model) renderBar() string {
	var parts []string

	title := m.status.title
	if title == "" {
		title = "untitled"
	}
	parts = append(parts, labelStyle.Render(title))

	if m.status.index == domain.NoVerse {
		parts = append(parts, pausedStyle.Render("…"))
	} else {
		parts = append(parts,
			playingStyle.Render(fmt.Sprintf("▶ %d/%d", m.status.index+1, m.status.total)))
		if m.status.verse != "" {
			parts = append(parts, primaryStyle.Render(truncate(m.status.verse, 48)))
		}
	}

	content := " " + strings.Join(parts, sepStyle.Render("  │  ")) + " "

	w := m.width
	if w <= 0 {
		w = 80
	}
	return barBg.Width(w).Render(content)
}

// ── Helpers ──────────────────────────────────────────────────────

func fmtDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	secs := d.Seconds()
	if secs == float64(int(secs)) {
		return fmt.Sprintf("%ds", int(secs))
	}
	return fmt.Sprintf("%.1fs", secs)
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}
