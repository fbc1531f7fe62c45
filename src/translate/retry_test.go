package translate

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedTranslator struct {
	results []Result
	calls   int
}

func (s *scriptedTranslator) Translate(_ context.Context, text, from, to, _ string) Result {
	res := s.results[s.calls]
	s.calls++
	if res.Text == "" && res.Err != nil {
		res.Text = text
	}
	res.SourceLang, res.TargetLang = from, to
	return res
}

func noSleep(_ context.Context, _ time.Duration) error { return nil }

func TestRetrierFirstAttemptSuccess(t *testing.T) {
	inner := &scriptedTranslator{results: []Result{{Text: "chào", Provider: "A"}}}
	r := NewRetrier(inner)
	r.sleep = noSleep

	res := r.Translate(context.Background(), "hello", "en", "vi", "")
	require.True(t, res.OK())
	assert.Equal(t, 1, inner.calls)
	assert.Equal(t, "chào", res.Text)
}

func TestRetrierRecoversOnSecondAttempt(t *testing.T) {
	inner := &scriptedTranslator{results: []Result{
		{Err: errors.New("service unavailable (503)")},
		{Text: "chào", Provider: "A"},
	}}
	r := NewRetrier(inner)
	r.sleep = noSleep

	res := r.Translate(context.Background(), "hello", "en", "vi", "")
	require.True(t, res.OK())
	assert.Equal(t, 2, inner.calls)
}

func TestRetrierExhaustionKeepsSourceText(t *testing.T) {
	cause := errors.New("HTTP error 500")
	inner := &scriptedTranslator{results: []Result{
		{Err: cause}, {Err: cause}, {Err: cause},
	}}
	r := NewRetrier(inner)
	r.sleep = noSleep

	res := r.Translate(context.Background(), "hello", "en", "vi", "")
	require.False(t, res.OK())
	assert.Equal(t, 3, inner.calls)
	assert.Equal(t, "hello", res.Text)
	assert.Equal(t, FailureMessage, res.Err.Error())
	assert.ErrorIs(t, res.Err, cause)
}

func TestRetrierSleepsBetweenAttemptsOnly(t *testing.T) {
	inner := &scriptedTranslator{results: []Result{
		{Err: errors.New("x")}, {Err: errors.New("x")}, {Err: errors.New("x")},
	}}
	r := NewRetrier(inner)

	var delays []time.Duration
	r.sleep = func(_ context.Context, d time.Duration) error {
		delays = append(delays, d)
		return nil
	}

	r.Translate(context.Background(), "hello", "en", "vi", "")
	require.Len(t, delays, 2, "no delay after the final attempt")
	assert.Equal(t, time.Second, delays[0])
	assert.Equal(t, time.Second, delays[1])
}

func TestRetrierStopsWhenContextCancelled(t *testing.T) {
	inner := &scriptedTranslator{results: []Result{
		{Err: errors.New("x")}, {Err: errors.New("x")}, {Err: errors.New("x")},
	}}
	r := NewRetrier(inner)
	r.sleep = func(_ context.Context, _ time.Duration) error {
		return context.Canceled
	}

	res := r.Translate(context.Background(), "hello", "en", "vi", "")
	require.False(t, res.OK())
	assert.Equal(t, 1, inner.calls)
}
