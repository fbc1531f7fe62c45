package selector

import (
	"context"
	"log"

	gohook "github.com/robotn/gohook"

	"snaptranslate/src/hotkey"
)

// escRawcodes covers VK_ESCAPE and the macOS virtual keycode for ESC.
var escRawcodes = []uint16{27, 53}

// HookSource feeds Selector from the shared global input tap.
type HookSource struct{}

func NewHookSource() *HookSource { return &HookSource{} }

func (h *HookSource) Events(ctx context.Context) (<-chan Event, error) {
	evChan, cancel := hotkey.Subscribe()

	out := make(chan Event, 16)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("PANIC in selector hook goroutine: %v", r)
			}
		}()
		defer close(out)
		defer cancel()

		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-evChan:
				if !ok {
					return
				}
				mapped, ok := mapEvent(ev)
				if !ok {
					continue
				}
				select {
				case out <- mapped:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

func mapEvent(ev gohook.Event) (Event, bool) {
	switch ev.Kind {
	case gohook.MouseDown:
		return Event{Kind: EventMouseDown, X: int(ev.X), Y: int(ev.Y)}, true
	case gohook.MouseMove, gohook.MouseDrag:
		return Event{Kind: EventMouseMove, X: int(ev.X), Y: int(ev.Y)}, true
	case gohook.MouseUp:
		return Event{Kind: EventMouseUp, X: int(ev.X), Y: int(ev.Y)}, true
	case gohook.KeyDown, gohook.KeyHold:
		for _, rc := range escRawcodes {
			if ev.Rawcode == rc {
				return Event{Kind: EventEscape}, true
			}
		}
	}
	return Event{}, false
}
