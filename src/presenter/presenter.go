// Package presenter owns the translation panel's behavior: it reacts to
// text edits and language switches, debounces them, runs translations in
// the background and applies only the newest result to the view.
package presenter

import (
	"context"
	"sync"
	"time"

	"snaptranslate/src/debounce"
	"snaptranslate/src/translate"
)

// View is the passive surface the presenter drives. Implementations must
// tolerate calls from background goroutines and marshal onto their UI
// thread themselves.
type View interface {
	SetSourceText(text string)
	SetTranslatedText(text string)
	SetProvider(name string)
	SetBusy(busy bool)
}

const (
	// editDelay lets the user finish typing before a re-translation.
	editDelay = 2 * time.Second
	// languageDelay only absorbs accidental double-toggles.
	languageDelay = 300 * time.Millisecond
)

type Presenter struct {
	view       View
	translator translate.Translator

	editDebounce *debounce.Debouncer
	langDebounce *debounce.Debouncer
	ordinal      debounce.Ordinal

	mu         sync.Mutex
	sourceText string
	sourceLang string
	targetLang string
	preferred  string

	submit func(func()) // injectable for tests
}

func New(view View, translator translate.Translator) *Presenter {
	return &Presenter{
		view:         view,
		translator:   translator,
		editDebounce: debounce.New(editDelay),
		langDebounce: debounce.New(languageDelay),
		sourceLang:   "en",
		targetLang:   "vi",
		submit:       func(fn func()) { go fn() },
	}
}

// ShowRecognized installs freshly recognized text and translates it
// immediately, without the edit debounce.
func (p *Presenter) ShowRecognized(text string) {
	p.mu.Lock()
	p.sourceText = text
	p.mu.Unlock()
	p.view.SetSourceText(text)
	p.retranslate()
}

// ShowResult installs a finished capture outcome: recognized text in the
// source pane, its translation in the output pane. The session already
// translated, so no new request is issued; any in-flight ticket is
// invalidated so a slow earlier translation cannot overwrite this.
func (p *Presenter) ShowResult(recognized string, res translate.Result) {
	p.mu.Lock()
	p.sourceText = recognized
	if res.SourceLang != "" {
		p.sourceLang = res.SourceLang
	}
	if res.TargetLang != "" {
		p.targetLang = res.TargetLang
	}
	p.mu.Unlock()
	p.ordinal.Next()
	p.view.SetSourceText(recognized)
	p.view.SetBusy(false)
	if res.OK() {
		p.view.SetTranslatedText(res.Text)
		p.view.SetProvider(res.Provider)
		return
	}
	p.view.SetTranslatedText(translate.FailureMessage)
	p.view.SetProvider("")
}

// EditSourceText records a user edit and schedules a re-translation once
// typing pauses.
func (p *Presenter) EditSourceText(text string) {
	p.mu.Lock()
	p.sourceText = text
	p.mu.Unlock()
	p.editDebounce.Trigger(p.retranslate)
}

// SetLanguages switches the translation pair. A quick follow-up switch
// replaces the pending one.
func (p *Presenter) SetLanguages(source, target string) {
	p.mu.Lock()
	p.sourceLang, p.targetLang = source, target
	p.mu.Unlock()
	p.langDebounce.Trigger(p.retranslate)
}

// SetPreferredProvider changes which provider is tried first.
func (p *Presenter) SetPreferredProvider(name string) {
	p.mu.Lock()
	p.preferred = name
	p.mu.Unlock()
	p.langDebounce.Trigger(p.retranslate)
}

// SwapLanguages exchanges source and target and re-translates.
func (p *Presenter) SwapLanguages() {
	p.mu.Lock()
	p.sourceLang, p.targetLang = p.targetLang, p.sourceLang
	p.mu.Unlock()
	p.langDebounce.Trigger(p.retranslate)
}

func (p *Presenter) snapshot() (text, from, to, preferred string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.sourceText, p.sourceLang, p.targetLang, p.preferred
}

// retranslate issues a ticketed background translation. Results of
// superseded tickets are discarded so a slow early request can never
// overwrite a later one.
func (p *Presenter) retranslate() {
	text, from, to, preferred := p.snapshot()
	ticket := p.ordinal.Next()

	p.view.SetBusy(true)
	p.submit(func() {
		res := p.translator.Translate(context.Background(), text, from, to, preferred)
		if !p.ordinal.Latest(ticket) {
			return
		}
		p.view.SetBusy(false)
		if res.OK() {
			p.view.SetTranslatedText(res.Text)
			p.view.SetProvider(res.Provider)
			return
		}
		// The source pane keeps the user's text; only the output pane
		// shows the failure notice.
		p.view.SetTranslatedText(translate.FailureMessage)
		p.view.SetProvider("")
	})
}
