package eventloop

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"snaptranslate/src/clipboard"
	"snaptranslate/src/config"
	"snaptranslate/src/hotkey"
	"snaptranslate/src/notification"
	"snaptranslate/src/session"
	"snaptranslate/src/singleinstance"
	"snaptranslate/src/translate"
	"snaptranslate/src/tray"
	"snaptranslate/src/worker"
)

// Loop is the single-threaded coordinator for hotkey, tray and delegated
// IPC flows. All state transitions happen on the Run goroutine; workers
// post completions back through the results channel.
type Loop struct {
	manager    *session.Manager
	translator translate.Translator
	pool       *worker.Pool
	srv        singleinstance.Server

	// sessionOpts builds a fresh options template per request; the loop
	// fills in the Target.
	sessionOpts func() session.Options

	// present pushes a finished session into the translation panel, nil in
	// headless (CLI-delegated only) mode.
	present func(res session.Result)

	// onIdleEscape closes the result surface when ESC fires outside a
	// session; during a session ESC cancels the session instead.
	onIdleEscape func()

	// sessionCancel aborts the active capture session; only touched on
	// the Run goroutine.
	sessionCancel context.CancelFunc

	busy           bool
	results        chan result
	captureCh      chan struct{}
	clipboardCh    chan struct{}
	escCh          chan struct{}
	defaultTooltip string
	deadline       time.Duration

	tooltip func(string) // injectable for tests
}

type result struct {
	res    session.Result
	err    error
	conn   singleinstance.Conn
	cancel context.CancelFunc
}

// New creates the loop. If cfg is nil or cfg.DeadlineSec <= 0, a 30s
// deadline is used.
func New(cfg *config.Config, manager *session.Manager, translator translate.Translator, sessionOpts func() session.Options) *Loop {
	deadlineSec := 30
	if cfg != nil && cfg.DeadlineSec > 0 {
		deadlineSec = cfg.DeadlineSec
	}

	return &Loop{
		manager:        manager,
		translator:     translator,
		pool:           worker.New(1),
		sessionOpts:    sessionOpts,
		results:        make(chan result, 1),
		captureCh:      make(chan struct{}, 4),
		clipboardCh:    make(chan struct{}, 4),
		escCh:          make(chan struct{}, 1),
		defaultTooltip: "SnapTranslate",
		deadline:       time.Duration(deadlineSec) * time.Second,
		tooltip:        tray.UpdateTooltip,
	}
}

// SetDefaultTooltip optionally sets the tray tooltip base text.
func (l *Loop) SetDefaultTooltip(tt string) { l.defaultTooltip = tt }

// SetPresenter installs the panel hook for finished sessions.
func (l *Loop) SetPresenter(present func(res session.Result)) { l.present = present }

// SetIdleEscape installs the hook run when ESC fires with no session active.
func (l *Loop) SetIdleEscape(fn func()) { l.onIdleEscape = fn }

func (l *Loop) setBusy(b bool) {
	l.busy = b
	if b {
		l.tooltip("SnapTranslate: translating...")
	} else {
		l.tooltip(l.defaultTooltip)
	}
}

// StartHotkeys registers the global hotkeys and posts events into the loop.
func (l *Loop) StartHotkeys(captureCombo, clipboardCombo string) {
	if captureCombo != "" {
		hotkey.Listen(captureCombo, func() { l.PostCapture() })
	}
	if clipboardCombo != "" {
		hotkey.Listen(clipboardCombo, func() { l.PostClipboard() })
	}
	hotkey.Listen("Esc", func() { l.PostEscape() })
}

// PostCapture requests a capture session; used by hotkeys and the tray menu.
func (l *Loop) PostCapture() {
	select {
	case l.captureCh <- struct{}{}:
	default:
	}
}

// PostClipboard requests a clipboard translation.
func (l *Loop) PostClipboard() {
	select {
	case l.clipboardCh <- struct{}{}:
	default:
	}
}

// PostEscape routes a global ESC press into the loop.
func (l *Loop) PostEscape() {
	select {
	case l.escCh <- struct{}{}:
	default:
	}
}

// Run starts the singleinstance server and processes requests. It blocks
// until ctx is cancelled.
func (l *Loop) Run(ctx context.Context) error {
	l.srv = singleinstance.NewServer()
	if err := l.srv.Start(ctx); err != nil {
		return err
	}
	defer l.srv.Close()
	if p := l.srv.Port(); p > 0 {
		log.Printf("Resident listening on 127.0.0.1:%d", p)
		tray.SetAboutExtra(fmt.Sprintf("Resident TCP port: %d", p))
	}
	defer l.pool.Close()

	// Accept loop in background to avoid blocking result handling
	reqCh := make(chan singleinstance.Conn, 4)
	go func() {
		for {
			conn, err := l.srv.Next(ctx)
			if err != nil {
				close(reqCh)
				return
			}
			reqCh <- conn
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.captureCh:
			l.handleCaptureHotkey(ctx)
		case <-l.clipboardCh:
			l.handleClipboardHotkey(ctx)
		case <-l.escCh:
			if l.busy {
				if l.sessionCancel != nil {
					log.Printf("escape: cancelling active session")
					l.sessionCancel()
				}
			} else if l.onIdleEscape != nil {
				l.onIdleEscape()
			}
		case conn, ok := <-reqCh:
			if !ok {
				return nil
			}
			l.handleConn(ctx, conn)
		case res := <-l.results:
			l.handleResult(res)
		}
	}
}

func (l *Loop) handleCaptureHotkey(ctx context.Context) {
	log.Printf("handleCaptureHotkey: called")
	l.startCapture(ctx, nil, nil, func() {
		log.Printf("handleCaptureHotkey: busy, skipping")
		notification.Show("Busy, please retry")
	})
}

func (l *Loop) handleClipboardHotkey(ctx context.Context) {
	log.Printf("handleClipboardHotkey: called")
	if l.busy {
		notification.Show("Busy, please retry")
		return
	}
	text, err := clipboard.Read()
	if err != nil || text == "" {
		log.Printf("handleClipboardHotkey: nothing to translate (err=%v)", err)
		notification.Show("Clipboard is empty")
		return
	}
	opts := l.sessionOpts()
	l.startTranslate(ctx, text, opts.SourceLang, opts.TargetLang, opts.PreferredProvider, nil)
}

func (l *Loop) handleConn(ctx context.Context, conn singleinstance.Conn) {
	req := conn.Request()
	switch req.Kind {
	case singleinstance.KindTranslate:
		opts := l.sessionOpts()
		from, to := req.SourceLang, req.TargetLang
		if from == "" {
			from = opts.SourceLang
		}
		if to == "" {
			to = opts.TargetLang
		}
		l.startTranslate(ctx, req.Text, from, to, opts.PreferredProvider, conn)
	default:
		target := session.DelegatedTarget{Conn: conn, OutputToStdout: req.OutputToStdout}
		l.startCapture(ctx, target, conn, func() {
			_ = target.OnFailure(errors.New("Busy, please retry"))
			_ = conn.Close()
		})
	}
}

// startCapture submits a full capture-translate session to the pool. A
// nil target falls back to the options template, then to the clipboard.
// onBusy runs when the loop or the queue is saturated.
func (l *Loop) startCapture(ctx context.Context, target session.Target, conn singleinstance.Conn, onBusy func()) {
	if l.busy {
		if onBusy != nil {
			onBusy()
		}
		return
	}

	jobCtx, cancel := context.WithCancel(ctx)
	opts := l.sessionOpts()
	if target != nil {
		opts.Target = target
	} else if opts.Target == nil {
		opts.Target = session.ClipboardTarget{}
	}
	opts.Deadline = l.deadline

	l.setBusy(true)
	l.sessionCancel = cancel
	submitted := l.pool.Submit(jobCtx,
		func(runCtx context.Context) (session.Result, error) {
			return l.manager.Run(runCtx, opts)
		},
		func(res session.Result, err error) {
			l.results <- result{res: res, err: err, conn: conn, cancel: cancel}
		})
	if !submitted {
		cancel()
		l.sessionCancel = nil
		l.setBusy(false)
		if onBusy != nil {
			onBusy()
		}
	}
}

// startTranslate runs a text-only translation through the same pool so
// back-pressure applies uniformly.
func (l *Loop) startTranslate(ctx context.Context, text, from, to, preferred string, conn singleinstance.Conn) {
	if l.busy {
		if conn != nil {
			_ = conn.RespondError("Busy, please retry")
			_ = conn.Close()
		}
		return
	}

	jobCtx, cancel := context.WithTimeout(ctx, l.deadline)
	l.setBusy(true)
	submitted := l.pool.Submit(jobCtx,
		func(runCtx context.Context) (session.Result, error) {
			tr := l.translator.Translate(runCtx, text, from, to, preferred)
			res := session.Result{Recognized: text, Translated: tr}
			return res, tr.Err
		},
		func(res session.Result, err error) {
			l.results <- result{res: res, err: err, conn: conn, cancel: cancel}
		})
	if !submitted {
		cancel()
		l.setBusy(false)
		if conn != nil {
			_ = conn.RespondError("Busy, please retry")
			_ = conn.Close()
		}
	}
}

func (l *Loop) handleResult(res result) {
	log.Printf("handleResult: session=%s err=%v", res.res.ID, res.err)
	defer func() {
		l.sessionCancel = nil
		l.setBusy(false)
		if res.cancel != nil {
			res.cancel()
		}
	}()

	if res.conn != nil {
		// Delegated translate requests are answered here; delegated capture
		// sessions already responded through their DelegatedTarget.
		if res.res.ID == "" {
			if res.err != nil {
				_ = res.conn.RespondError(res.err.Error())
			} else {
				_ = res.conn.RespondSuccess(res.res.Translated.Text)
			}
		}
		_ = res.conn.Close()
		return
	}

	if res.err != nil {
		if errors.Is(res.err, session.ErrSelectionCancelled) || errors.Is(res.err, context.Canceled) {
			return
		}
		if res.res.ID != "" && res.res.Translated.Err != nil && l.present != nil {
			// Recognition succeeded; keep the source text in the panel with
			// the failure message in the output pane.
			l.present(res.res)
		}
		notification.Show(translate.FailureMessage)
		return
	}

	if l.present != nil {
		l.present(res.res)
	}
	notification.Show(res.res.Translated.Text)
}

// Deadline returns the configured session deadline for this loop.
func (l *Loop) Deadline() time.Duration { return l.deadline }
