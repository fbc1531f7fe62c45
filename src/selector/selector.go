// Package selector turns raw pointer input into a selected screen region.
// The drag logic is independent of the input backend so it can be driven
// by scripted events in tests; the gohook backend lives in hook.go.
package selector

import (
	"context"
	"errors"

	"snaptranslate/src/capture"
)

type Kind int

const (
	EventMouseDown Kind = iota
	EventMouseMove
	EventMouseUp
	EventEscape
)

// Event is one pointer or key occurrence in screen points.
type Event struct {
	Kind Kind
	X    int
	Y    int
}

// Source streams input events for the duration of one selection. The
// channel closes when ctx is cancelled or the backend shuts down.
type Source interface {
	Events(ctx context.Context) (<-chan Event, error)
}

var errSourceClosed = errors.New("input source closed before selection finished")

// Overlay draws the selection chrome. Show is called when a selection
// starts, Update on every drag move, Dismiss exactly once when the
// selection ends regardless of outcome. Nil overlay means headless.
type Overlay interface {
	Show()
	Update(capture.Region)
	Dismiss()
}

type Options struct {
	// OnDrag receives the current rubber-band rectangle on every pointer
	// move between press and release, for overlay rendering.
	OnDrag func(capture.Region)

	Overlay Overlay
}

type Selector struct {
	source Source
	opts   Options
}

func New(source Source, opts Options) *Selector {
	return &Selector{source: source, opts: opts}
}

// Select blocks until a press-drag-release completes, ESC dismisses the
// selection, or ctx is cancelled. The returned region is normalized so
// width and height are non-negative regardless of drag direction; size
// validation is the caller's concern.
func (s *Selector) Select(ctx context.Context) (capture.Region, bool, error) {
	events, err := s.source.Events(ctx)
	if err != nil {
		return capture.Region{}, false, err
	}

	if s.opts.Overlay != nil {
		s.opts.Overlay.Show()
		defer s.opts.Overlay.Dismiss()
	}

	var anchorX, anchorY int
	dragging := false

	for {
		select {
		case <-ctx.Done():
			return capture.Region{}, false, ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return capture.Region{}, false, errSourceClosed
			}
			switch ev.Kind {
			case EventEscape:
				return capture.Region{}, true, nil
			case EventMouseDown:
				anchorX, anchorY = ev.X, ev.Y
				dragging = true
			case EventMouseMove:
				if dragging {
					r := regionBetween(anchorX, anchorY, ev.X, ev.Y)
					if s.opts.Overlay != nil {
						s.opts.Overlay.Update(r)
					}
					if s.opts.OnDrag != nil {
						s.opts.OnDrag(r)
					}
				}
			case EventMouseUp:
				if !dragging {
					continue
				}
				return regionBetween(anchorX, anchorY, ev.X, ev.Y), false, nil
			}
		}
	}
}

// regionBetween normalizes two corner points into an origin-plus-size
// rectangle.
func regionBetween(x1, y1, x2, y2 int) capture.Region {
	if x2 < x1 {
		x1, x2 = x2, x1
	}
	if y2 < y1 {
		y1, y2 = y2, y1
	}
	return capture.Region{X: x1, Y: y1, Width: x2 - x1, Height: y2 - y1}
}
