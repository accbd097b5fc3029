package provider

import (
	"context"
	"fmt"
	"sync"
)

// EnhancerFactory creates an Enhancer for the given text model.
type EnhancerFactory func(ctx context.Context, model string) (Enhancer, error)

var (
	enhancerMu sync.RWMutex
	enhancers  = make(map[string]EnhancerFactory)
)

// RegisterEnhancer registers an enhancer factory under a provider name.
// Implementations register themselves in init(); callers blank-import the
// provider packages they want available.
func RegisterEnhancer(name string, factory EnhancerFactory) {
	enhancerMu.Lock()
	defer enhancerMu.Unlock()
	enhancers[name] = factory
}

// NewEnhancer builds the named enhancer ("google", "openai", "anthropic").
func NewEnhancer(ctx context.Context, name, model string) (Enhancer, error) {
	enhancerMu.RLock()
	factory, ok := enhancers[name]
	enhancerMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown enhancer provider: %s", name)
	}
	return factory(ctx, model)
}
