package worker

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"snaptranslate/src/session"
)

func TestSubmitRunsAndCallsBack(t *testing.T) {
	p := New(1)
	defer p.Close()

	done := make(chan session.Result, 1)
	ok := p.Submit(context.Background(),
		func(context.Context) (session.Result, error) {
			return session.Result{ID: "abc", Recognized: "hi"}, nil
		},
		func(res session.Result, err error) {
			require.NoError(t, err)
			done <- res
		})
	require.True(t, ok)

	select {
	case res := <-done:
		assert.Equal(t, "abc", res.ID)
	case <-time.After(time.Second):
		t.Fatal("callback never invoked")
	}
}

func TestSubmitAppliesBackPressure(t *testing.T) {
	p := New(1)
	defer p.Close()

	started := make(chan struct{})
	release := make(chan struct{})
	blocker := func(context.Context) (session.Result, error) {
		close(started)
		<-release
		return session.Result{}, nil
	}
	noop := func(session.Result, error) {}

	require.True(t, p.Submit(context.Background(), blocker, noop))
	<-started

	// Queue holds one waiting job; a third submit must be dropped.
	require.True(t, p.Submit(context.Background(),
		func(context.Context) (session.Result, error) { return session.Result{}, nil }, noop))
	assert.False(t, p.Submit(context.Background(),
		func(context.Context) (session.Result, error) { return session.Result{}, nil }, noop))

	close(release)
}
