// Package popover renders the translation panel with Fyne: a source pane,
// a translated pane, language selectors and a provider label. It
// implements the presenter's View and forwards user input back through a
// Controller.
package popover

import (
	"image"
	"log"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"snaptranslate/src/clipboard"
)

// Controller is the input half of the panel, satisfied by the presenter.
type Controller interface {
	EditSourceText(text string)
	SetLanguages(source, target string)
	SetPreferredProvider(name string)
	SwapLanguages()
}

// languageOptions maps the display names to translation codes.
var languageOptions = []struct {
	Label string
	Code  string
}{
	{"English", "en"},
	{"Vietnamese", "vi"},
	{"Chinese (Simplified)", "zh-CN"},
	{"Chinese (Traditional)", "zh-TW"},
}

func labelFor(code string) string {
	for _, o := range languageOptions {
		if o.Code == code {
			return o.Label
		}
	}
	return code
}

func codeFor(label string) string {
	for _, o := range languageOptions {
		if o.Label == label {
			return o.Code
		}
	}
	return label
}

// Panel is the translation window. All mutating methods marshal onto the
// Fyne main thread with fyne.Do, so the presenter may call them from any
// goroutine.
type Panel struct {
	window fyne.Window

	captured    *canvas.Image
	sourceEntry *widget.Entry
	translated  *widget.Entry
	sourceSel   *widget.Select
	targetSel   *widget.Select
	provider    *widget.Label
	busy        *widget.ProgressBarInfinite

	controller Controller

	// suppress swallows entry callbacks triggered by our own SetSourceText
	// so programmatic updates never re-enter the presenter.
	suppress bool
}

func New(app fyne.App, controller Controller) *Panel {
	p := &Panel{controller: controller}

	p.sourceEntry = widget.NewMultiLineEntry()
	p.sourceEntry.SetPlaceHolder("Recognized text")
	p.sourceEntry.Wrapping = fyne.TextWrapWord
	p.sourceEntry.OnChanged = func(text string) {
		if p.suppress || p.controller == nil {
			return
		}
		p.controller.EditSourceText(text)
	}

	p.translated = widget.NewMultiLineEntry()
	p.translated.SetPlaceHolder("Translation")
	p.translated.Wrapping = fyne.TextWrapWord
	p.translated.Disable()

	labels := make([]string, len(languageOptions))
	for i, o := range languageOptions {
		labels[i] = o.Label
	}
	p.sourceSel = widget.NewSelect(labels, func(string) { p.languagesChanged() })
	p.targetSel = widget.NewSelect(labels, func(string) { p.languagesChanged() })
	p.sourceSel.SetSelected(labelFor("en"))
	p.targetSel.SetSelected(labelFor("vi"))

	swap := widget.NewButton("⇄", func() {
		if p.controller == nil {
			return
		}
		p.suppress = true
		s, t := p.sourceSel.Selected, p.targetSel.Selected
		p.sourceSel.SetSelected(t)
		p.targetSel.SetSelected(s)
		p.suppress = false
		p.controller.SwapLanguages()
	})

	p.provider = widget.NewLabel("")
	p.busy = widget.NewProgressBarInfinite()
	p.busy.Hide()

	p.captured = canvas.NewImageFromImage(nil)
	p.captured.FillMode = canvas.ImageFillContain
	p.captured.SetMinSize(fyne.NewSize(0, 80))
	p.captured.Hide()

	copyBtn := widget.NewButton("Copy", func() {
		if err := clipboard.Write(p.translated.Text); err != nil {
			log.Printf("copy translation: %v", err)
		}
	})

	top := container.NewVBox(container.NewHBox(p.sourceSel, swap, p.targetSel), p.captured)
	bottom := container.NewVBox(p.busy, container.NewHBox(p.provider, copyBtn))
	split := container.NewVSplit(p.sourceEntry, p.translated)

	p.window = app.NewWindow("SnapTranslate")
	p.window.SetContent(container.NewBorder(top, bottom, nil, nil, split))
	p.window.Resize(fyne.NewSize(420, 360))
	// Closing the panel hides it; the app stays resident in the tray.
	p.window.SetCloseIntercept(p.window.Hide)
	return p
}

func (p *Panel) languagesChanged() {
	if p.suppress || p.controller == nil {
		return
	}
	p.controller.SetLanguages(codeFor(p.sourceSel.Selected), codeFor(p.targetSel.Selected))
}

// Show brings the panel to the front.
func (p *Panel) Show() {
	fyne.Do(func() { p.window.Show() })
}

// Hide dismisses the panel without destroying it.
func (p *Panel) Hide() {
	fyne.Do(func() { p.window.Hide() })
}

// SetImage shows the captured bitmap above the source pane; nil hides it.
func (p *Panel) SetImage(img image.Image) {
	fyne.Do(func() {
		p.captured.Image = img
		if img == nil {
			p.captured.Hide()
			return
		}
		p.captured.Show()
		p.captured.Refresh()
	})
}

func (p *Panel) SetSourceText(text string) {
	fyne.Do(func() {
		p.suppress = true
		p.sourceEntry.SetText(text)
		p.suppress = false
	})
}

func (p *Panel) SetTranslatedText(text string) {
	fyne.Do(func() { p.translated.SetText(text) })
}

func (p *Panel) SetProvider(name string) {
	fyne.Do(func() {
		if name == "" {
			p.provider.SetText("")
			return
		}
		p.provider.SetText("via " + name)
	})
}

func (p *Panel) SetBusy(busy bool) {
	fyne.Do(func() {
		if busy {
			p.busy.Show()
			p.busy.Start()
			return
		}
		p.busy.Stop()
		p.busy.Hide()
	})
}
