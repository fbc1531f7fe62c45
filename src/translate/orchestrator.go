package translate

import (
	"context"
	"fmt"
	"strings"
)

// Orchestrator walks a fixed provider list until one succeeds. The
// preferred provider, when set and known, is tried first; the remaining
// providers follow in their configured order.
type Orchestrator struct {
	providers []Provider
}

func NewOrchestrator(providers ...Provider) *Orchestrator {
	return &Orchestrator{providers: providers}
}

// DefaultProviders returns the standard fallback chain. DeepL is appended
// even without an API key so that an aggregate failure names it with the
// misconfiguration reason.
func DefaultProviders(deeplAPIKey string) []Provider {
	return []Provider{
		NewMyMemory(),
		NewLibreTranslate(),
		NewGoogleWeb(),
		NewDeepL(deeplAPIKey),
	}
}

// ProviderNames lists the configured providers in fallback order.
func (o *Orchestrator) ProviderNames() []string {
	names := make([]string, 0, len(o.providers))
	for _, p := range o.providers {
		names = append(names, p.Name())
	}
	return names
}

// Translate tries each provider until one returns success. Empty input is
// a success without any provider call. When every provider fails, the
// returned Result carries the source text unchanged and an error listing
// each provider with its reason.
func (o *Orchestrator) Translate(ctx context.Context, text, from, to, preferred string) Result {
	if text == "" {
		return success("", from, to, "N/A")
	}

	var failures []string
	for _, p := range o.order(preferred) {
		if err := ctx.Err(); err != nil {
			failures = append(failures, fmt.Sprintf("%s: %v", p.Name(), err))
			continue
		}
		res := p.Translate(ctx, text, from, to)
		if res.OK() {
			return res
		}
		failures = append(failures, fmt.Sprintf("%s: %v", p.Name(), res.Err))
	}

	return failure(text, from, to, "",
		fmt.Errorf("all providers failed:\n%s", strings.Join(failures, "\n")))
}

func (o *Orchestrator) order(preferred string) []Provider {
	if preferred == "" {
		return o.providers
	}
	var first Provider
	for _, p := range o.providers {
		if p.Name() == preferred {
			first = p
			break
		}
	}
	if first == nil {
		return o.providers
	}
	ordered := make([]Provider, 0, len(o.providers))
	ordered = append(ordered, first)
	for _, p := range o.providers {
		if p != first {
			ordered = append(ordered, p)
		}
	}
	return ordered
}
