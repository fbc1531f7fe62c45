package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"

	"snaptranslate/src/capture"
	"snaptranslate/src/clipboard"
	"snaptranslate/src/config"
	"snaptranslate/src/eventloop"
	"snaptranslate/src/logutil"
	"snaptranslate/src/notification"
	"snaptranslate/src/ocr"
	"snaptranslate/src/popover"
	"snaptranslate/src/prefs"
	"snaptranslate/src/presenter"
	"snaptranslate/src/selector"
	"snaptranslate/src/session"
	"snaptranslate/src/singleinstance"
	"snaptranslate/src/translate"
	"snaptranslate/src/tray"
)

// normalizeArgs maps GNU-style --capture/--stdout to Go's single-dash form
func normalizeArgs(args []string) []string {
	out := make([]string, len(args))
	copy(out, args)
	for i := 1; i < len(out); i++ {
		switch out[i] {
		case "--capture":
			out[i] = "-capture"
		case "--stdout":
			out[i] = "-stdout"
		}
	}
	return out
}

func main() {
	captureOnce := flag.Bool("capture", false, "Capture a region once, copy the translation, and exit")
	toStdout := flag.Bool("stdout", false, "With -capture, print the translation to stdout instead of the clipboard")
	os.Args = normalizeArgs(os.Args)
	flag.Parse()

	// Load .env early so SINGLEINSTANCE_PORT_* apply before any port scan
	_, _ = config.Load()

	// One-shot mode prefers delegating to a resident instance over a
	// standalone capture, so the resident's hotkeys and tray stay coherent.
	if *captureOnce {
		ctx := context.Background()
		client := singleinstance.NewClient()

		delegated, text, err := client.TryCapture(ctx, *toStdout)
		if err != nil {
			log.Printf("Delegation error: %v; falling back to standalone", err)
			runCaptureOnce(*toStdout)
			return
		}
		if delegated {
			if *toStdout {
				fmt.Print(text)
			}
			return
		}
		runCaptureOnce(*toStdout)
		return
	}

	// ---------- SINGLE-INSTANCE PRE-FLIGHT ----------
	startPort, _ := singleinstance.GetPortRangeForDebug()
	addr := fmt.Sprintf("127.0.0.1:%d", startPort)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		log.Printf("Pre-flight: port %d busy, resident already exists", startPort)
		fmt.Printf("one is already running on port %d\n", startPort)
		os.Exit(1)
	}
	// We claimed the port; release it so the event loop can re-bind.
	_ = listener.Close()
	log.Printf("Pre-flight: port %d free, we are the resident", startPort)
	// ------------------------------------------------

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logutil.Setup(cfg.EnableFileLogging)

	if err := clipboard.Init(); err != nil {
		notification.ShowBlockingError("Clipboard unavailable", fmt.Sprintf("Startup check failed: %v", err))
		log.Fatalf("Failed to initialize clipboard: %v", err)
	}

	store := openPrefs()
	if store != nil {
		defer store.Close()
	}

	translator := newTranslator(cfg)

	log.Printf("SnapTranslate initialized")
	log.Printf("Capture hotkey: %s, clipboard hotkey: %s", cfg.CaptureHotkey, cfg.ClipboardHotkey)
	log.Printf("Session deadline: %ds", cfg.DeadlineSec)
	if cfg.DeepLAPIKey != "" {
		log.Printf("DeepL key: %s", logutil.RedactKey(cfg.DeepLAPIKey))
	} else {
		log.Printf("DeepL key: not configured, provider chain runs without it")
	}

	languagePriority := cfg.LanguagePriority
	if store != nil && store.GetDefault(prefs.KeyChinesePriority, "") == "true" {
		languagePriority = ocr.ChinesePriority
	}

	ctrl := newPanelController(store, cfg)

	fyneApp := app.New()
	panel := popover.New(fyneApp, ctrl)
	pres := presenter.New(panel, translator)
	ctrl.attach(pres)

	capturer := capture.New(displayScale())
	recognizer := ocr.New()
	sel := selector.New(selector.NewHookSource(), selector.Options{})
	manager := session.NewManager()

	sessionOpts := func() session.Options {
		from, to, preferred := ctrl.current()
		return session.Options{
			SelectRegion: sel.Select,
			Capture:      capturer.Capture,
			Recognize:    recognizeText(recognizer),
			Translate:    translator.Translate,
			OnState: func(id string, s session.State) {
				log.Printf("session %s: %s", id, s)
			},
			SourceLang:        from,
			TargetLang:        to,
			PreferredProvider: preferred,
			LanguagePriority:  languagePriority,
			Deadline:          time.Duration(cfg.DeadlineSec) * time.Second,
		}
	}

	loop := eventloop.New(cfg, manager, translator, sessionOpts)
	loop.SetDefaultTooltip(fmt.Sprintf("SnapTranslate - %s to capture", cfg.CaptureHotkey))
	loop.SetPresenter(func(res session.Result) {
		if res.Image != nil {
			panel.SetImage(res.Image.Bitmap)
		} else {
			panel.SetImage(nil)
		}
		pres.ShowResult(res.Recognized, res.Translated)
		panel.Show()
	})
	loop.SetIdleEscape(panel.Hide)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go tray.Run(tray.Handlers{
		OnCapture:   loop.PostCapture,
		OnClipboard: loop.PostClipboard,
		OnQuit:      cancel,
	})

	loop.StartHotkeys(cfg.CaptureHotkey, cfg.ClipboardHotkey)

	// Handle SIGINT/SIGTERM
	go func() {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
		<-ch
		cancel()
	}()

	go func() {
		if err := loop.Run(ctx); err != nil {
			log.Printf("event loop stopped: %v", err)
		}
		tray.Quit()
		fyne.Do(fyneApp.Quit)
	}()

	panel.Show()
	fyneApp.Run()
	cancel()
}

// openPrefs opens the preference store; a failure degrades to config
// defaults rather than refusing to start.
func openPrefs() *prefs.Store {
	path, err := prefs.DefaultPath()
	if err != nil {
		log.Printf("prefs: no config dir: %v", err)
		return nil
	}
	store, err := prefs.Open(path)
	if err != nil {
		log.Printf("prefs: open %s: %v", path, err)
		return nil
	}
	return store
}

// newTranslator builds the provider chain with retry on top.
func newTranslator(cfg *config.Config) *translate.Retrier {
	providers := translate.DefaultProviders(cfg.DeepLAPIKey)
	if cfg.LibreTranslateURL != "" {
		for _, p := range providers {
			if lt, ok := p.(*translate.LibreTranslate); ok {
				lt.Endpoint = cfg.LibreTranslateURL
			}
		}
	}
	return translate.NewRetrier(translate.NewOrchestrator(providers...))
}

func recognizeText(r *ocr.Recognizer) session.RecognizeFunc {
	return func(ctx context.Context, img *capture.Image, priority []string) (string, error) {
		blocks, err := r.Recognize(ctx, img, priority)
		if err != nil {
			return "", err
		}
		return ocr.Join(blocks), nil
	}
}

// displayScale reads the point-to-pixel factor from DISPLAY_SCALE. Retina
// panels report pixels at twice the point size; there is no portable way
// to detect this without a window system query, so it stays configurable.
func displayScale() float64 {
	v := strings.TrimSpace(os.Getenv("DISPLAY_SCALE"))
	if v == "" {
		return 1.0
	}
	scale, err := strconv.ParseFloat(v, 64)
	if err != nil || scale <= 0 {
		log.Printf("invalid DISPLAY_SCALE %q, using 1.0", v)
		return 1.0
	}
	return scale
}

// panelController sits between the popover and the presenter: it forwards
// input and persists the chosen languages and provider so the next start
// restores them.
type panelController struct {
	mu        sync.Mutex
	pres      *presenter.Presenter
	store     *prefs.Store
	from      string
	to        string
	preferred string
}

func newPanelController(store *prefs.Store, cfg *config.Config) *panelController {
	c := &panelController{
		store:     store,
		from:      cfg.SourceLang,
		to:        cfg.TargetLang,
		preferred: cfg.PreferredProvider,
	}
	if store != nil {
		c.from, c.to = store.LanguagePair(c.from, c.to)
		c.preferred = store.GetDefault(prefs.KeyPreferredProvider, c.preferred)
	}
	return c
}

func (c *panelController) attach(p *presenter.Presenter) {
	c.mu.Lock()
	from, to, preferred := c.from, c.to, c.preferred
	c.pres = p
	c.mu.Unlock()
	p.SetLanguages(from, to)
	if preferred != "" {
		p.SetPreferredProvider(preferred)
	}
}

func (c *panelController) current() (from, to, preferred string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.from, c.to, c.preferred
}

func (c *panelController) EditSourceText(text string) {
	c.mu.Lock()
	p := c.pres
	c.mu.Unlock()
	if p != nil {
		p.EditSourceText(text)
	}
}

func (c *panelController) SetLanguages(source, target string) {
	c.mu.Lock()
	c.from, c.to = source, target
	p, store := c.pres, c.store
	c.mu.Unlock()
	if store != nil {
		if err := store.SetLanguagePair(source, target); err != nil {
			log.Printf("prefs: save languages: %v", err)
		}
	}
	if p != nil {
		p.SetLanguages(source, target)
	}
}

func (c *panelController) SetPreferredProvider(name string) {
	c.mu.Lock()
	c.preferred = name
	p, store := c.pres, c.store
	c.mu.Unlock()
	if store != nil {
		if err := store.Set(prefs.KeyPreferredProvider, name); err != nil {
			log.Printf("prefs: save provider: %v", err)
		}
	}
	if p != nil {
		p.SetPreferredProvider(name)
	}
}

func (c *panelController) SwapLanguages() {
	c.mu.Lock()
	c.from, c.to = c.to, c.from
	from, to := c.from, c.to
	p, store := c.pres, c.store
	c.mu.Unlock()
	if store != nil {
		if err := store.SetLanguagePair(from, to); err != nil {
			log.Printf("prefs: save languages: %v", err)
		}
	}
	if p != nil {
		p.SwapLanguages()
	}
}

// runCaptureOnce performs a single capture-translate session and exits.
func runCaptureOnce(outputToStdout bool) {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logutil.Setup(cfg.EnableFileLogging)

	if err := clipboard.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize clipboard: %v\n", err)
		os.Exit(1)
	}

	translator := newTranslator(cfg)
	capturer := capture.New(displayScale())
	recognizer := ocr.New()
	sel := selector.New(selector.NewHookSource(), selector.Options{})
	manager := session.NewManager()

	var target session.Target = session.ClipboardTarget{}
	if outputToStdout {
		target = session.StdoutTarget{Writer: os.Stdout}
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.DeadlineSec)*time.Second)
	defer cancel()

	res, err := manager.Run(ctx, session.Options{
		SelectRegion:      sel.Select,
		Capture:           capturer.Capture,
		Recognize:         recognizeText(recognizer),
		Translate:         translator.Translate,
		Target:            target,
		SourceLang:        cfg.SourceLang,
		TargetLang:        cfg.TargetLang,
		PreferredProvider: cfg.PreferredProvider,
		LanguagePriority:  cfg.LanguagePriority,
		Deadline:          time.Duration(cfg.DeadlineSec) * time.Second,
	})
	if err != nil {
		if err == session.ErrSelectionCancelled {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "Capture failed: %v\n", err)
		os.Exit(1)
	}

	safeText := sanitizeForLogging(res.Translated.Text)
	log.Printf("translated %d chars via %s: %q", len(res.Translated.Text), res.Translated.Provider, safeText)
}

// sanitizeForLogging trims and escapes text so a recognized string cannot
// inject log lines.
func sanitizeForLogging(text string) string {
	const maxLogLength = 100
	if len(text) > maxLogLength {
		text = text[:maxLogLength] + "..."
	}

	sanitized := ""
	for _, r := range text {
		if r == '\n' || r == '\r' {
			sanitized += "\\n"
		} else if r == '\t' {
			sanitized += "\\t"
		} else if r < 32 || r == 127 {
			sanitized += "?"
		} else {
			sanitized += string(r)
		}
	}
	return sanitized
}
