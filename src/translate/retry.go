package translate

import (
	"context"
	"time"
)

// FailureMessage is shown in place of a translation when every attempt
// across every provider has failed.
const FailureMessage = "Translation failed — Không thể dịch. Vui lòng thử lại."

// Translator is satisfied by Orchestrator and by single providers wrapped
// for tests.
type Translator interface {
	Translate(ctx context.Context, text, from, to, preferred string) Result
}

// Retrier re-runs a Translator a fixed number of times with a flat delay
// between attempts. The source text is never replaced: on exhaustion the
// Result keeps the input text and reports FailureMessage through Err.
type Retrier struct {
	inner    Translator
	attempts int
	delay    time.Duration
	sleep    func(context.Context, time.Duration) error
}

func NewRetrier(inner Translator) *Retrier {
	return &Retrier{
		inner:    inner,
		attempts: 3,
		delay:    time.Second,
		sleep:    sleepCtx,
	}
}

func (r *Retrier) Translate(ctx context.Context, text, from, to, preferred string) Result {
	var last Result
	for attempt := 1; attempt <= r.attempts; attempt++ {
		last = r.inner.Translate(ctx, text, from, to, preferred)
		if last.OK() {
			return last
		}
		if attempt < r.attempts {
			if err := r.sleep(ctx, r.delay); err != nil {
				break
			}
		}
	}
	return failure(text, from, to, last.Provider, retryExhaustedErr{cause: last.Err})
}

type retryExhaustedErr struct {
	cause error
}

func (e retryExhaustedErr) Error() string { return FailureMessage }
func (e retryExhaustedErr) Unwrap() error { return e.cause }

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
