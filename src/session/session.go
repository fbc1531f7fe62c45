// Package session drives one capture-translate flow from region selection
// through OCR to the translated result. A Manager admits a single active
// session at a time; a second trigger while one is running is rejected.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"snaptranslate/src/capture"
	"snaptranslate/src/clipboard"
	"snaptranslate/src/singleinstance"
	"snaptranslate/src/translate"
)

type State int

const (
	StateIdle State = iota
	StateSelecting
	StateCapturing
	StateRecognizing
	StateTranslating
	StateDone
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSelecting:
		return "selecting"
	case StateCapturing:
		return "capturing"
	case StateRecognizing:
		return "recognizing"
	case StateTranslating:
		return "translating"
	case StateDone:
		return "done"
	case StateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

var (
	ErrSessionActive      = errors.New("a session is already active")
	ErrSelectionCancelled = errors.New("selection cancelled")
)

// SelectRegionFunc blocks until the user finishes dragging. cancelled is
// true when the selection was dismissed (ESC or an outside click).
type SelectRegionFunc func(ctx context.Context) (capture.Region, bool, error)

type CaptureFunc func(region capture.Region) (*capture.Image, error)

type RecognizeFunc func(ctx context.Context, img *capture.Image, priority []string) (string, error)

type TranslateFunc func(ctx context.Context, text, from, to, preferred string) translate.Result

// Target receives the finished outcome of a session.
type Target interface {
	OnSuccess(res translate.Result) error
	OnFailure(err error) error
}

// StateFunc observes state transitions, called from the session goroutine.
type StateFunc func(id string, state State)

type Options struct {
	SelectRegion SelectRegionFunc
	Capture      CaptureFunc
	Recognize    RecognizeFunc
	Translate    TranslateFunc
	Target       Target
	OnState      StateFunc

	SourceLang        string
	TargetLang        string
	PreferredProvider string
	LanguagePriority  []string

	// SettleDelay is the pause between overlay dismissal and the grab, so
	// the compositor has removed the selection chrome from the frame.
	SettleDelay time.Duration

	Deadline time.Duration
}

type Result struct {
	ID         string
	Region     capture.Region
	Image      *capture.Image
	Recognized string
	Translated translate.Result
}

const (
	defaultSettleDelay = 100 * time.Millisecond
	defaultDeadline    = 30 * time.Second
)

// Manager serializes sessions. Run executes the whole flow on the calling
// goroutine; concurrent Run calls beyond the first fail with
// ErrSessionActive.
type Manager struct {
	mu      sync.Mutex
	active  bool
	entropy *ulid.MonotonicEntropy
	sleep   func(context.Context, time.Duration) error
}

func NewManager() *Manager {
	return &Manager{
		entropy: ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0),
		sleep:   sleepCtx,
	}
}

func (m *Manager) newID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), m.entropy).String()
}

func (m *Manager) acquire() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active {
		return false
	}
	m.active = true
	return true
}

func (m *Manager) release() {
	m.mu.Lock()
	m.active = false
	m.mu.Unlock()
}

// Active reports whether a session is currently running.
func (m *Manager) Active() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active
}

func (m *Manager) Run(ctx context.Context, opts Options) (Result, error) {
	if opts.SelectRegion == nil {
		return Result{}, errors.New("SelectRegion is required")
	}
	if opts.Capture == nil {
		return Result{}, errors.New("Capture is required")
	}
	if opts.Recognize == nil {
		return Result{}, errors.New("Recognize is required")
	}
	if opts.Translate == nil {
		return Result{}, errors.New("Translate is required")
	}
	if opts.Target == nil {
		opts.Target = NopTarget{}
	}
	if !m.acquire() {
		return Result{}, ErrSessionActive
	}
	defer m.release()

	id := m.newID()
	res := Result{ID: id}
	emit := func(s State) {
		if opts.OnState != nil {
			opts.OnState(id, s)
		}
	}

	emit(StateSelecting)
	region, cancelled, err := m.selectValidRegion(ctx, opts)
	if err != nil {
		emit(StateCancelled)
		_ = opts.Target.OnFailure(err)
		return res, err
	}
	if cancelled {
		emit(StateCancelled)
		_ = opts.Target.OnFailure(ErrSelectionCancelled)
		return res, ErrSelectionCancelled
	}
	res.Region = region

	settle := opts.SettleDelay
	if settle <= 0 {
		settle = defaultSettleDelay
	}
	if err := m.sleep(ctx, settle); err != nil {
		emit(StateCancelled)
		_ = opts.Target.OnFailure(err)
		return res, err
	}

	emit(StateCapturing)
	img, err := opts.Capture(region)
	if err != nil {
		emit(StateCancelled)
		wrapped := fmt.Errorf("capture: %w", err)
		_ = opts.Target.OnFailure(wrapped)
		return res, wrapped
	}
	res.Image = img

	deadline := opts.Deadline
	if deadline <= 0 {
		deadline = defaultDeadline
	}
	jobCtx, cancel := context.WithTimeout(ctx, deadline)
	defer cancel()

	emit(StateRecognizing)
	text, err := opts.Recognize(jobCtx, img, opts.LanguagePriority)
	if err != nil {
		emit(StateCancelled)
		wrapped := fmt.Errorf("ocr: %w", err)
		_ = opts.Target.OnFailure(wrapped)
		return res, wrapped
	}
	res.Recognized = text

	emit(StateTranslating)
	tr := opts.Translate(jobCtx, text, opts.SourceLang, opts.TargetLang, opts.PreferredProvider)
	res.Translated = tr
	if !tr.OK() {
		emit(StateDone)
		_ = opts.Target.OnFailure(tr.Err)
		return res, tr.Err
	}

	emit(StateDone)
	if err := opts.Target.OnSuccess(tr); err != nil {
		return res, err
	}
	return res, nil
}

// minRegionSide filters out stray clicks and accidental micro-drags.
// Both sides must exceed it before a capture starts.
const minRegionSide = 10

// selectValidRegion re-arms the selector until a drag exceeds the minimum
// size, the user cancels, or the selector errors.
func (m *Manager) selectValidRegion(ctx context.Context, opts Options) (capture.Region, bool, error) {
	for {
		region, cancelled, err := opts.SelectRegion(ctx)
		if err != nil || cancelled {
			return capture.Region{}, cancelled, err
		}
		if region.Width > minRegionSide && region.Height > minRegionSide {
			return region, false, nil
		}
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

type NopTarget struct{}

func (NopTarget) OnSuccess(translate.Result) error { return nil }
func (NopTarget) OnFailure(error) error            { return nil }

// ClipboardTarget copies the translated text to the system clipboard.
type ClipboardTarget struct{}

func (ClipboardTarget) OnSuccess(res translate.Result) error {
	return clipboard.Write(res.Text)
}

func (ClipboardTarget) OnFailure(err error) error { return nil }

// StdoutTarget prints the translated text, for CLI-delegated sessions.
type StdoutTarget struct {
	Writer io.Writer
}

func (t StdoutTarget) OnSuccess(res translate.Result) error {
	w := t.Writer
	if w == nil {
		w = os.Stdout
	}
	_, err := fmt.Fprint(w, res.Text)
	return err
}

func (t StdoutTarget) OnFailure(err error) error { return nil }

// DelegatedTarget answers a request that arrived over the resident
// instance socket.
type DelegatedTarget struct {
	Conn           singleinstance.Conn
	OutputToStdout bool
}

func (t DelegatedTarget) OnSuccess(res translate.Result) error {
	if t.Conn == nil {
		return errors.New("delegated target missing connection")
	}
	if t.OutputToStdout {
		return t.Conn.RespondSuccess(res.Text)
	}
	if err := clipboard.Write(res.Text); err != nil {
		return fmt.Errorf("clipboard error: %w", err)
	}
	return t.Conn.RespondSuccess("")
}

func (t DelegatedTarget) OnFailure(err error) error {
	if t.Conn == nil {
		return nil
	}
	if err == nil {
		return t.Conn.RespondError("unknown session error")
	}
	return t.Conn.RespondError(err.Error())
}
