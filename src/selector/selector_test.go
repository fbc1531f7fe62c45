package selector

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"snaptranslate/src/capture"
)

type scriptedSource struct {
	events []Event
}

func (s *scriptedSource) Events(ctx context.Context) (<-chan Event, error) {
	ch := make(chan Event, len(s.events))
	for _, ev := range s.events {
		ch <- ev
	}
	// Leave the channel open; tests that need closure use closedSource.
	return ch, nil
}

type closedSource struct{}

func (closedSource) Events(ctx context.Context) (<-chan Event, error) {
	ch := make(chan Event)
	close(ch)
	return ch, nil
}

func TestSelectDragProducesRegion(t *testing.T) {
	src := &scriptedSource{events: []Event{
		{Kind: EventMouseDown, X: 100, Y: 100},
		{Kind: EventMouseMove, X: 250, Y: 180},
		{Kind: EventMouseUp, X: 400, Y: 300},
	}}
	s := New(src, Options{})

	region, cancelled, err := s.Select(context.Background())
	require.NoError(t, err)
	assert.False(t, cancelled)
	assert.Equal(t, capture.Region{X: 100, Y: 100, Width: 300, Height: 200}, region)
}

func TestSelectNormalizesReverseDrag(t *testing.T) {
	src := &scriptedSource{events: []Event{
		{Kind: EventMouseDown, X: 400, Y: 300},
		{Kind: EventMouseUp, X: 100, Y: 100},
	}}
	s := New(src, Options{})

	region, cancelled, err := s.Select(context.Background())
	require.NoError(t, err)
	assert.False(t, cancelled)
	assert.Equal(t, capture.Region{X: 100, Y: 100, Width: 300, Height: 200}, region)
}

func TestSelectEscapeCancels(t *testing.T) {
	src := &scriptedSource{events: []Event{
		{Kind: EventMouseDown, X: 10, Y: 10},
		{Kind: EventMouseMove, X: 50, Y: 50},
		{Kind: EventEscape},
	}}
	s := New(src, Options{})

	_, cancelled, err := s.Select(context.Background())
	require.NoError(t, err)
	assert.True(t, cancelled)
}

func TestSelectClickWithoutDragIsPointRegion(t *testing.T) {
	src := &scriptedSource{events: []Event{
		{Kind: EventMouseDown, X: 42, Y: 42},
		{Kind: EventMouseUp, X: 42, Y: 42},
	}}
	s := New(src, Options{})

	region, cancelled, err := s.Select(context.Background())
	require.NoError(t, err)
	assert.False(t, cancelled)
	assert.Equal(t, capture.Region{X: 42, Y: 42, Width: 0, Height: 0}, region)
}

func TestSelectIgnoresMoveAndUpBeforePress(t *testing.T) {
	src := &scriptedSource{events: []Event{
		{Kind: EventMouseMove, X: 5, Y: 5},
		{Kind: EventMouseUp, X: 9, Y: 9},
		{Kind: EventMouseDown, X: 20, Y: 20},
		{Kind: EventMouseUp, X: 80, Y: 90},
	}}
	s := New(src, Options{})

	region, _, err := s.Select(context.Background())
	require.NoError(t, err)
	assert.Equal(t, capture.Region{X: 20, Y: 20, Width: 60, Height: 70}, region)
}

func TestSelectReportsDragRectangles(t *testing.T) {
	src := &scriptedSource{events: []Event{
		{Kind: EventMouseDown, X: 0, Y: 0},
		{Kind: EventMouseMove, X: 10, Y: 10},
		{Kind: EventMouseMove, X: 30, Y: 20},
		{Kind: EventMouseUp, X: 30, Y: 20},
	}}

	var frames []capture.Region
	s := New(src, Options{OnDrag: func(r capture.Region) { frames = append(frames, r) }})

	_, _, err := s.Select(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []capture.Region{
		{X: 0, Y: 0, Width: 10, Height: 10},
		{X: 0, Y: 0, Width: 30, Height: 20},
	}, frames)
}

func TestSelectContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := New(&scriptedSource{}, Options{})
	_, _, err := s.Select(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSelectSourceClosedIsError(t *testing.T) {
	s := New(closedSource{}, Options{})
	_, _, err := s.Select(context.Background())
	assert.Error(t, err)
}

type recordingOverlay struct {
	shows     int
	updates   []capture.Region
	dismisses int
}

func (o *recordingOverlay) Show()                   { o.shows++ }
func (o *recordingOverlay) Update(r capture.Region) { o.updates = append(o.updates, r) }
func (o *recordingOverlay) Dismiss()                { o.dismisses++ }

func TestSelectDrivesOverlay(t *testing.T) {
	src := &scriptedSource{events: []Event{
		{Kind: EventMouseDown, X: 0, Y: 0},
		{Kind: EventMouseMove, X: 10, Y: 10},
		{Kind: EventMouseMove, X: 30, Y: 20},
		{Kind: EventMouseUp, X: 30, Y: 20},
	}}
	ov := &recordingOverlay{}
	s := New(src, Options{Overlay: ov})

	_, _, err := s.Select(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, ov.shows)
	assert.Equal(t, 1, ov.dismisses)
	assert.Equal(t, []capture.Region{
		{X: 0, Y: 0, Width: 10, Height: 10},
		{X: 0, Y: 0, Width: 30, Height: 20},
	}, ov.updates)
}

func TestSelectDismissesOverlayOnEscape(t *testing.T) {
	src := &scriptedSource{events: []Event{
		{Kind: EventMouseDown, X: 0, Y: 0},
		{Kind: EventEscape},
	}}
	ov := &recordingOverlay{}
	s := New(src, Options{Overlay: ov})

	_, cancelled, err := s.Select(context.Background())
	require.NoError(t, err)
	assert.True(t, cancelled)
	assert.Equal(t, 1, ov.dismisses)
}
