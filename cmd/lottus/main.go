// Lottus — compose verses, hear them spoken, share them as a link.
//
// Usage:
//
//	lottus [-verbose] [-quiet] [share-link-or-token]
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	stdlog "log"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"lottus/internal/conversation"
	"lottus/internal/display"
	"lottus/internal/domain"
	"lottus/internal/logger"
	"lottus/internal/playback"
	"lottus/internal/qr"
	"lottus/internal/server"
	"lottus/internal/share"
	"lottus/internal/speech"
	"lottus/internal/verse"
)

// envOr returns the value of the environment variable name, or fallback
// when it is unset or empty.
func envOr(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}

func main() {
	_ = godotenv.Load()

	verbose := flag.Bool("verbose", false, "enable verbose/debug logging")
	quiet := flag.Bool("quiet", false, "disable all logging")
	logFile := flag.String("log-file", ".lottus-logs/lottus.log", "file to write logs to (use \"stderr\" to log to console)")
	noSpeech := flag.Bool("no-speech", false, "disable text-to-speech even if Azure keys are set")
	voiceName := flag.String("voice", speech.DefaultVoice, "Azure TTS voice name")
	rate := flag.Float64("rate", speech.DefaultRate, "speech rate multiplier")
	listen := flag.String("listen", envOr("LOTTUS_LISTEN", ":8080"), "address for the share page server")
	noServer := flag.Bool("no-server", false, "disable the local share page server")
	baseURL := flag.String("base-url", envOr("LOTTUS_BASE_URL", "http://localhost:8080"), "base URL used to build share links")
	qrFile := flag.String("qr-file", "", "write the share QR code PNG to this path on every change")
	flag.Parse()

	// Configure logger.
	logLevel := logger.LevelNormal
	if *verbose {
		logLevel = logger.LevelVerbose
	}
	if *quiet {
		logLevel = logger.LevelOff
	}

	// Direct logs to a file by default so the REPL stays clean.
	var logOut io.Writer = os.Stderr
	if *logFile != "" && *logFile != "stderr" {
		dir := filepath.Dir(*logFile)
		if dir != "" && dir != "." {
			os.MkdirAll(dir, 0o755)
		}
		f, err := os.OpenFile(*logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not open log file %s: %v (falling back to stderr)\n", *logFile, err)
		} else {
			logOut = f
			defer f.Close()
		}
	}

	// Redirect Go's default log package (used by third-party libs) to
	// the same output so it doesn't spam the terminal.
	stdlog.SetOutput(logOut)
	stdlog.SetFlags(stdlog.Ltime)

	log := logger.New(logLevel, logOut)

	// Set up context — cancelled when the UI quits.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Wire dependencies.
	store := verse.NewStore(log)
	codec := share.NewCodec(log)

	qrOpts := []qr.Option{}
	if *qrFile != "" {
		qrOpts = append(qrOpts, qr.WithFile(*qrFile))
	}
	qrRenderer := qr.New(log, qrOpts...)
	defer qrRenderer.Close()

	publisher := share.NewPublisher(codec, *baseURL, qrRenderer, log)
	store.Subscribe(publisher.OnChange)

	// The UI polls playback state; the sequencer is wired in below.
	var seq *playback.Sequencer
	ui := display.NewUI(
		func() domain.PlaybackState {
			if seq == nil {
				return domain.IdleState()
			}
			return seq.State()
		},
		store.Document,
	)
	notifier := conversation.NewCLINotifier(log, ui.Printf)
	parser := conversation.NewCommandParser(log)

	// Build the speaker. TTS needs Azure credentials; otherwise the
	// sequencer runs against a silent speaker so pacing still works.
	var speaker domain.Speaker
	var voice *speech.Voice

	azureKey := os.Getenv(speech.EnvSpeechKey)
	azureRegion := os.Getenv(speech.EnvSpeechRegion)

	if azureKey != "" && azureRegion != "" && !*noSpeech {
		ttsClient := speech.NewAzureClient(azureKey, azureRegion, log,
			speech.WithVoice(*voiceName),
			speech.WithRate(*rate),
		)
		player, err := speech.NewPlayer(log)
		if err != nil {
			log.Error("audio player init failed, speech disabled: %v", err)
		} else {
			voice = speech.NewVoice(ttsClient, player, log)
			speaker = voice
			log.Info("TTS enabled (voice=%s, region=%s)", *voiceName, azureRegion)
		}
	} else if !*noSpeech {
		log.Info("TTS disabled: set %s and %s env vars to enable", speech.EnvSpeechKey, speech.EnvSpeechRegion)
	}
	if speaker == nil {
		speaker = speech.NewNoOp(log)
	}

	seq = playback.New(store, speaker, log, playback.WithNotifier(notifier))

	// Load a shared document passed on the command line. A bad token
	// starts the app with an empty document rather than refusing to run.
	if arg := flag.Arg(0); arg != "" {
		token := share.TokenFromLink(arg)
		doc, err := codec.Decode(token)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not open %q: %v (starting empty)\n", arg, err)
			log.Warn("open %q: %v", arg, err)
		} else {
			store.SetDocument(doc)
			log.Info("opened shared document %q (%d verses)", doc.Title, len(doc.Verses))
		}
	}

	// Share tokens reflect every change from here on.
	publisher.MarkLoaded()
	publisher.OnChange(store.Document())

	// Start the share page server.
	if !*noServer {
		srv := &http.Server{
			Addr:    *listen,
			Handler: server.NewServer(codec, log),
		}
		go func() {
			log.Info("share server listening on %s", *listen)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("share server: %v", err)
			}
		}()
		defer func() {
			shutCtx, shutCancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer shutCancel()
			srv.Shutdown(shutCtx)
		}()
	}

	// Build the CLI app.
	app := &cliApp{
		store:         store,
		seq:           seq,
		publisher:     publisher,
		codec:         codec,
		renderer:      qrRenderer,
		voice:         voice,
		parser:        parser,
		log:           log,
		ui:            ui,
		pendingDelete: domain.NoVerse,
	}

	fmt.Println(display.RenderBanner())
	fmt.Println(display.BannerStyle.Render("  Type 'help' for commands, 'quit' to exit."))
	fmt.Println()

	// Run app logic in a background goroutine.
	go func() {
		ui.WaitReady()
		app.run(ctx)
		ui.Quit()
	}()

	// Bubble Tea owns the terminal — blocks until quit.
	if err := ui.Run(); err != nil {
		log.Error("display: %v", err)
	}
	cancel()
	seq.Stop()
}

type cliApp struct {
	store         *verse.Store
	seq           *playback.Sequencer
	publisher     *share.Publisher
	codec         domain.Codec
	renderer      *qr.Renderer
	voice         *speech.Voice // nil when TTS is disabled
	parser        domain.IntentParser
	log           *logger.Logger
	ui            *display.UI
	pendingDelete int // verse index awaiting delete confirmation, NoVerse otherwise
}

func (a *cliApp) run(ctx context.Context) {
	a.showVerses()

	uiCh := a.ui.InputChan()

	for {
		var input string
		var ok bool

		select {
		case <-ctx.Done():
			return
		case input, ok = <-uiCh:
			if !ok {
				return
			}
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		intent, err := a.parser.Parse(ctx, input)
		if err != nil {
			a.log.Error("parsing input: %v", err)
			continue
		}

		a.log.Debug("intent: %s (index=%d payload=%q)", intent.Type, intent.Index, intent.Payload)
		if a.handleIntent(ctx, intent) {
			return
		}
	}
}

// handleIntent dispatches one intent. Returns true when the app should exit.
func (a *cliApp) handleIntent(ctx context.Context, intent *domain.Intent) bool {
	// A pending delete survives only until the next command.
	if intent.Type != domain.IntentDeleteVerse {
		a.pendingDelete = domain.NoVerse
	}

	switch intent.Type {
	case domain.IntentAddVerse:
		a.addVerse(intent.Payload)
	case domain.IntentEditVerse:
		a.editVerse(intent.Index, intent.Payload)
	case domain.IntentDeleteVerse:
		a.deleteVerse(intent.Index)
	case domain.IntentSetPause:
		a.setPause(intent.Index, intent.Payload)
	case domain.IntentSetTitle:
		a.setTitle(intent.Payload)
	case domain.IntentList:
		a.showVerses()
	case domain.IntentPlay:
		a.play(ctx)
	case domain.IntentStop:
		a.seq.Stop()
		a.ui.PrintHint("stopped")
	case domain.IntentSpeakVerse:
		a.speakOne(ctx, intent.Index)
	case domain.IntentShare:
		a.showShare()
	case domain.IntentOpen:
		a.open(intent.Payload)
	case domain.IntentClear:
		a.clear()
	case domain.IntentStatus:
		a.status()
	case domain.IntentHelp:
		a.showHelp()
	case domain.IntentQuit:
		return true
	case domain.IntentUnknown:
		if intent.Payload != "" {
			a.ui.PrintUrgent(fmt.Sprintf("unrecognised command: %q", intent.Payload))
		}
		a.ui.PrintHint("type 'help' for commands")
	}
	return false
}

// blockIfPlaying rejects document mutations while playback is running.
func (a *cliApp) blockIfPlaying() bool {
	if a.seq.State().Playing {
		a.ui.PrintUrgent("playback is running — type 'stop' before editing")
		return true
	}
	return false
}

func (a *cliApp) addVerse(text string) {
	if a.blockIfPlaying() {
		return
	}
	a.store.Add(text, domain.DefaultPause)
	a.ui.PrintHint(fmt.Sprintf("added verse %d", a.store.Len()))
}

func (a *cliApp) editVerse(index int, text string) {
	if a.blockIfPlaying() {
		return
	}
	if err := a.store.Update(index, domain.VersePatch{Text: &text}); err != nil {
		a.ui.PrintUrgent(fmt.Sprintf("no verse %d", index+1))
		return
	}
	a.ui.PrintHint(fmt.Sprintf("updated verse %d", index+1))
}

func (a *cliApp) deleteVerse(index int) {
	if a.blockIfPlaying() {
		return
	}
	if index < 0 || index >= a.store.Len() {
		a.ui.PrintUrgent(fmt.Sprintf("no verse %d", index+1))
		a.pendingDelete = domain.NoVerse
		return
	}
	if a.pendingDelete != index {
		a.pendingDelete = index
		a.ui.PrintHint(fmt.Sprintf("delete verse %d? repeat the command to confirm", index+1))
		return
	}
	a.pendingDelete = domain.NoVerse
	if err := a.store.Delete(index); err != nil {
		a.ui.PrintUrgent(fmt.Sprintf("no verse %d", index+1))
		return
	}
	a.ui.PrintHint(fmt.Sprintf("deleted verse %d", index+1))
}

func (a *cliApp) setPause(index int, arg string) {
	if a.blockIfPlaying() {
		return
	}
	d, ok := conversation.ParsePause(arg)
	if !ok {
		a.ui.PrintUrgent(fmt.Sprintf("bad pause %q — try '2s', '750ms' or a number of seconds", arg))
		return
	}
	if err := a.store.Update(index, domain.VersePatch{Pause: &d}); err != nil {
		a.ui.PrintUrgent(fmt.Sprintf("no verse %d", index+1))
		return
	}
	a.ui.PrintHint(fmt.Sprintf("verse %d pause set to %s", index+1, d))
}

func (a *cliApp) setTitle(title string) {
	if a.blockIfPlaying() {
		return
	}
	a.store.SetTitle(title)
	a.ui.PrintHint(fmt.Sprintf("title set to %q", title))
}

func (a *cliApp) showVerses() {
	doc := a.store.Document()

	title := doc.Title
	if title == "" {
		title = "(untitled)"
	}
	a.ui.PrintTitle(title)
	a.ui.Println("")

	if len(doc.Verses) == 0 {
		a.ui.PrintHint("no verses yet — 'add <text>' to write the first one")
		return
	}
	for i, v := range doc.Verses {
		a.ui.PrintVerse(i+1, v.Text, v.Pause)
	}
}

func (a *cliApp) play(ctx context.Context) {
	// Warm the TTS cache so playback doesn't stall between verses.
	if a.voice != nil {
		var texts []string
		for _, v := range a.store.Document().Verses {
			texts = append(texts, v.Segments()...)
		}
		a.voice.Prefetch(ctx, texts...)
	}

	err := a.seq.Play(ctx)
	switch {
	case errors.Is(err, domain.ErrNoVerses):
		a.ui.PrintUrgent("nothing to play — add a verse first")
	case errors.Is(err, domain.ErrPlaybackActive):
		a.ui.PrintUrgent("already playing — type 'stop' first")
	case err != nil:
		a.ui.PrintUrgent(fmt.Sprintf("play: %v", err))
	}
}

func (a *cliApp) speakOne(ctx context.Context, index int) {
	err := a.seq.SpeakOne(ctx, index)
	switch {
	case errors.Is(err, domain.ErrIndexOutOfRange):
		a.ui.PrintUrgent(fmt.Sprintf("no verse %d", index+1))
	case errors.Is(err, domain.ErrPlaybackActive):
		a.ui.PrintUrgent("already playing — type 'stop' first")
	case err != nil:
		a.ui.PrintUrgent(fmt.Sprintf("speak: %v", err))
	}
}

func (a *cliApp) showShare() {
	url := a.publisher.URL()
	if url == "" {
		a.ui.PrintUrgent("no share link yet")
		return
	}
	a.ui.PrintTitle("share link")
	a.ui.PrintActiveVerse(url)
	if _, _, ok := a.renderer.Latest(); ok {
		a.ui.PrintHint("QR code rendered — open the link on this machine for a scannable version")
	}
}

func (a *cliApp) open(arg string) {
	if a.blockIfPlaying() {
		return
	}
	token := share.TokenFromLink(arg)
	doc, err := a.codec.Decode(token)
	if err != nil {
		a.ui.PrintUrgent(fmt.Sprintf("could not open %q: %v", arg, err))
		return
	}
	a.store.SetDocument(doc)
	a.ui.PrintHint(fmt.Sprintf("opened %q (%d verses)", doc.Title, len(doc.Verses)))
	a.showVerses()
}

func (a *cliApp) clear() {
	if a.blockIfPlaying() {
		return
	}
	a.store.Clear()
	a.ui.PrintHint("cleared")
}

func (a *cliApp) status() {
	doc := a.store.Document()
	state := a.seq.State()

	title := doc.Title
	if title == "" {
		title = "(untitled)"
	}
	a.ui.PrintTitle("status")
	a.ui.PrintHint(fmt.Sprintf("verses: %d", len(doc.Verses)))
	a.ui.PrintHint("title:  " + title)
	if state.Playing {
		if state.Index == domain.NoVerse {
			a.ui.PrintHint("state:  playing (between verses)")
		} else {
			a.ui.PrintHint(fmt.Sprintf("state:  playing verse %d/%d", state.Index+1, len(doc.Verses)))
		}
	} else {
		a.ui.PrintHint("state:  idle")
	}
	if url := a.publisher.URL(); url != "" {
		a.ui.PrintHint("share:  " + url)
	}
	if a.voice != nil {
		hits, misses := a.voice.Cache().Stats()
		a.ui.PrintHint(fmt.Sprintf("speech: %d cached utterances (%d hits, %d misses)", a.voice.Cache().Len(), hits, misses))
	} else {
		a.ui.PrintHint("speech: disabled")
	}
}

func (a *cliApp) showHelp() {
	a.ui.PrintTitle("commands")
	a.ui.PrintHint("  add <text>         append a verse ('/' splits it into segments)")
	a.ui.PrintHint("  edit <n> <text>    replace the text of verse n")
	a.ui.PrintHint("  del <n>            delete verse n (asks to confirm)")
	a.ui.PrintHint("  pause <n> <dur>    set the pause after verse n (e.g. 2s, 750ms)")
	a.ui.PrintHint("  title <text>       set the document title")
	a.ui.PrintHint("  list               show all verses")
	a.ui.PrintHint("  play / stop        play the whole document / stop playback")
	a.ui.PrintHint("  speak <n>          speak a single verse")
	a.ui.PrintHint("  share              show the share link")
	a.ui.PrintHint("  open <link>        load a document from a share link or token")
	a.ui.PrintHint("  clear              remove all verses and the title")
	a.ui.PrintHint("  status             show document and playback state")
	a.ui.PrintHint("  quit               exit")
}
