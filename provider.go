package swarm

import (
	"context"
	"errors"
	"sync"

	"github.com/zoobzio/zyn"
)

// Provider is the completion capability every stage depends on. It matches
// the zyn.Provider interface so any zyn-backed LLM can be injected
// directly. Calls are synchronous and may fail; the swarm performs no
// retries of its own.
type Provider interface {
	Call(ctx context.Context, messages []zyn.Message, temperature float32) (*zyn.ProviderResponse, error)
	Name() string
}

// ErrNoProvider is returned when no provider can be resolved.
var ErrNoProvider = errors.New("no provider configured: set via context, stage-level, or global")

type providerKeyType struct{}

var providerKey = providerKeyType{}

var (
	globalProvider   Provider
	globalProviderMu sync.RWMutex
)

// SetProvider sets the global fallback provider used when neither a
// stage-level nor a context provider is available.
func SetProvider(p Provider) {
	globalProviderMu.Lock()
	defer globalProviderMu.Unlock()
	globalProvider = p
}

// GetProvider returns the global provider, if set.
func GetProvider() Provider {
	globalProviderMu.RLock()
	defer globalProviderMu.RUnlock()
	return globalProvider
}

// WithProvider attaches a provider to the context, scoping it to one call
// tree. Preferred over the global fallback.
func WithProvider(ctx context.Context, p Provider) context.Context {
	return context.WithValue(ctx, providerKey, p)
}

// ProviderFromContext retrieves the context provider, if present.
func ProviderFromContext(ctx context.Context) (Provider, bool) {
	p, ok := ctx.Value(providerKey).(Provider)
	return p, ok
}

// ResolveProvider picks the provider for a stage call: stage-level first,
// then context, then global, else ErrNoProvider.
func ResolveProvider(ctx context.Context, stageProvider Provider) (Provider, error) {
	if stageProvider != nil {
		return stageProvider, nil
	}
	if p, ok := ProviderFromContext(ctx); ok {
		return p, nil
	}
	if p := GetProvider(); p != nil {
		return p, nil
	}
	return nil, ErrNoProvider
}

// toZynMessages converts the session log into the provider wire format.
func toZynMessages(msgs []Message) []zyn.Message {
	out := make([]zyn.Message, len(msgs))
	for i, m := range msgs {
		out[i] = zyn.Message{Role: m.Role, Content: m.Content}
	}
	return out
}
