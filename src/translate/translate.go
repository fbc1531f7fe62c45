// Package translate dispatches translation requests across independent
// third-party providers with word-boundary chunking, ordered fallback and
// a fixed-delay retry wrapper.
package translate

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Result is the uniform outcome every provider returns. Err == nil means
// success. On failure Text carries the original input unchanged so the
// caller never displays a partial or garbled translation.
type Result struct {
	Text       string
	SourceLang string
	TargetLang string
	Provider   string
	Err        error
}

// OK reports success.
func (r Result) OK() bool { return r.Err == nil }

// Provider adapts one third-party translation backend.
type Provider interface {
	Name() string
	MaxCharacters() int
	Translate(ctx context.Context, text, from, to string) Result
}

// requestTimeout bounds every provider HTTP call. A provider times out
// with a failure result, never hangs.
const requestTimeout = 30 * time.Second

const userAgent = "Mozilla/5.0"

func newHTTPClient() *http.Client {
	return &http.Client{Timeout: requestTimeout}
}

var errParse = errors.New("parse error")

// statusErr maps non-200 responses to the uniform provider error strings.
func statusErr(code int) error {
	switch code {
	case http.StatusTooManyRequests:
		return errors.New("rate limit exceeded (429)")
	case http.StatusServiceUnavailable:
		return errors.New("service unavailable (503)")
	case http.StatusForbidden:
		return errors.New("forbidden (403)")
	default:
		return fmt.Errorf("HTTP error %d", code)
	}
}

func transportErr(err error) error {
	return fmt.Errorf("exception: %v", err)
}

func exceedsLimitErr(max int) error {
	return fmt.Errorf("exceeds %d chars limit", max)
}

func failure(text, from, to, provider string, err error) Result {
	return Result{Text: text, SourceLang: from, TargetLang: to, Provider: provider, Err: err}
}

func success(text, from, to, provider string) Result {
	return Result{Text: text, SourceLang: from, TargetLang: to, Provider: provider}
}
