package tray

import (
	"log"
	"sync"

	"github.com/getlantern/systray"
)

// Handlers receive menu events. Callbacks run on the systray goroutine and
// should hand off real work elsewhere.
type Handlers struct {
	OnCapture   func()
	OnClipboard func()
	OnQuit      func()
}

var (
	mu         sync.Mutex
	aboutExtra string
	mAbout     *systray.MenuItem
)

// Run starts the systray loop. Blocks until Quit.
func Run(h Handlers) {
	systray.Run(func() { onReady(h) }, onExit)
}

func onReady(h Handlers) {
	if icon := Icon(); len(icon) > 0 {
		systray.SetIcon(icon)
	}
	systray.SetTitle("SnapTranslate")
	systray.SetTooltip("SnapTranslate")

	mCapture := systray.AddMenuItem("Capture && Translate", "Select a screen region to translate")
	mClipboard := systray.AddMenuItem("Translate Clipboard", "Translate the current clipboard text")
	systray.AddSeparator()
	mu.Lock()
	mAbout = systray.AddMenuItem("About", aboutExtra)
	mu.Unlock()
	mQuit := systray.AddMenuItem("Quit", "Quit the application")

	go func() {
		for {
			select {
			case <-mCapture.ClickedCh:
				if h.OnCapture != nil {
					h.OnCapture()
				}
			case <-mClipboard.ClickedCh:
				if h.OnClipboard != nil {
					h.OnClipboard()
				}
			case <-mAbout.ClickedCh:
				mu.Lock()
				extra := aboutExtra
				mu.Unlock()
				log.Printf("SnapTranslate: %s", extra)
			case <-mQuit.ClickedCh:
				if h.OnQuit != nil {
					h.OnQuit()
				}
				systray.Quit()
			}
		}
	}()
}

func onExit() {}

// Quit stops the systray loop from outside the menu, e.g. on SIGTERM.
func Quit() {
	systray.Quit()
}

// UpdateTooltip replaces the tray tooltip, used to signal busy state.
func UpdateTooltip(tt string) {
	systray.SetTooltip(tt)
}

// SetAboutExtra records extra diagnostic text shown by the About item.
func SetAboutExtra(extra string) {
	mu.Lock()
	defer mu.Unlock()
	aboutExtra = extra
	if mAbout != nil {
		mAbout.SetTooltip(extra)
	}
}
