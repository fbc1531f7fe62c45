package translate

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	name  string
	out   string
	err   error
	calls int
}

func (f *fakeProvider) Name() string       { return f.name }
func (f *fakeProvider) MaxCharacters() int { return 10000 }

func (f *fakeProvider) Translate(_ context.Context, text, from, to string) Result {
	f.calls++
	if f.err != nil {
		return failure(text, from, to, f.name, f.err)
	}
	return success(f.out, from, to, f.name)
}

func TestOrchestratorFirstSuccessWins(t *testing.T) {
	a := &fakeProvider{name: "A", out: "xin chào"}
	b := &fakeProvider{name: "B", out: "unused"}
	o := NewOrchestrator(a, b)

	res := o.Translate(context.Background(), "hello", "en", "vi", "")
	require.True(t, res.OK())
	assert.Equal(t, "xin chào", res.Text)
	assert.Equal(t, "A", res.Provider)
	assert.Equal(t, 1, a.calls)
	assert.Equal(t, 0, b.calls, "later providers must not run after a success")
}

func TestOrchestratorFallsThroughFailures(t *testing.T) {
	a := &fakeProvider{name: "A", err: errors.New("service unavailable (503)")}
	b := &fakeProvider{name: "B", err: errors.New("rate limit exceeded (429)")}
	c := &fakeProvider{name: "C", out: "done"}
	o := NewOrchestrator(a, b, c)

	res := o.Translate(context.Background(), "hello", "en", "vi", "")
	require.True(t, res.OK())
	assert.Equal(t, "C", res.Provider)
	assert.Equal(t, 1, a.calls)
	assert.Equal(t, 1, b.calls)
}

func TestOrchestratorPreferredTriedFirst(t *testing.T) {
	a := &fakeProvider{name: "A", out: "from A"}
	b := &fakeProvider{name: "B", out: "from B"}
	o := NewOrchestrator(a, b)

	res := o.Translate(context.Background(), "hello", "en", "vi", "B")
	require.True(t, res.OK())
	assert.Equal(t, "B", res.Provider)
	assert.Equal(t, 0, a.calls)
}

func TestOrchestratorPreferredFailureFallsBack(t *testing.T) {
	a := &fakeProvider{name: "A", out: "from A"}
	b := &fakeProvider{name: "B", err: errors.New("forbidden (403)")}
	o := NewOrchestrator(a, b)

	res := o.Translate(context.Background(), "hello", "en", "vi", "B")
	require.True(t, res.OK())
	assert.Equal(t, "A", res.Provider)
	assert.Equal(t, 1, b.calls)
	assert.Equal(t, 1, a.calls)
}

func TestOrchestratorUnknownPreferredUsesConfiguredOrder(t *testing.T) {
	a := &fakeProvider{name: "A", out: "from A"}
	b := &fakeProvider{name: "B", out: "from B"}
	o := NewOrchestrator(a, b)

	res := o.Translate(context.Background(), "hello", "en", "vi", "Nope")
	require.True(t, res.OK())
	assert.Equal(t, "A", res.Provider)
}

func TestOrchestratorAggregateFailureNamesEveryProvider(t *testing.T) {
	a := &fakeProvider{name: "MyMemory", err: errors.New("service unavailable (503)")}
	b := &fakeProvider{name: "Google Translate", err: errors.New("HTTP error 500")}
	o := NewOrchestrator(a, b)

	res := o.Translate(context.Background(), "hello", "en", "vi", "")
	require.False(t, res.OK())
	assert.Equal(t, "hello", res.Text, "source text preserved on total failure")
	assert.Contains(t, res.Err.Error(), "MyMemory: service unavailable (503)")
	assert.Contains(t, res.Err.Error(), "Google Translate: HTTP error 500")
}

func TestOrchestratorEmptyTextShortCircuits(t *testing.T) {
	a := &fakeProvider{name: "A"}
	o := NewOrchestrator(a)

	res := o.Translate(context.Background(), "", "en", "vi", "")
	require.True(t, res.OK())
	assert.Equal(t, "", res.Text)
	assert.Equal(t, "N/A", res.Provider)
	assert.Equal(t, 0, a.calls)
}

func TestDefaultProvidersOrder(t *testing.T) {
	o := NewOrchestrator(DefaultProviders("")...)
	assert.Equal(t,
		[]string{"MyMemory", "LibreTranslate", "Google Translate", "DeepL"},
		o.ProviderNames())
}
