package provider

import (
	"context"
	"sync"
)

// FakeResponse is one queued reply for the FakeGateway.
type FakeResponse struct {
	Result *GenerateResult
	Err    error
}

// FakeGateway is a test double that returns predefined responses and
// records every request it receives.
//
// Usage:
//
//	fake := &provider.FakeGateway{
//	    Responses: []provider.FakeResponse{
//	        {Result: &provider.GenerateResult{ImageURL: "data:image/png;base64,..."}},
//	    },
//	}
type FakeGateway struct {
	mu sync.Mutex

	// Responses is the queue of replies, consumed in order. When
	// exhausted, an empty result is returned.
	Responses []FakeResponse

	// Calls records every Generate request in order.
	Calls []GenerateRequest

	// Enhanced, when non-empty, is returned by EnhancePrompt; EnhanceErr
	// simulates a silent enhancement failure.
	Enhanced   string
	EnhanceErr error
}

var _ Gateway = (*FakeGateway)(nil)

func (f *FakeGateway) Generate(ctx context.Context, req GenerateRequest) (*GenerateResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.Calls = append(f.Calls, req)

	if len(f.Responses) == 0 {
		return &GenerateResult{}, nil
	}
	next := f.Responses[0]
	f.Responses = f.Responses[1:]
	if next.Err != nil {
		return nil, next.Err
	}
	return next.Result, nil
}

// EnhancePrompt honors the enhance contract: failures fall back to the
// original prompt.
func (f *FakeGateway) EnhancePrompt(ctx context.Context, prompt string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.EnhanceErr != nil || f.Enhanced == "" {
		return prompt, nil
	}
	return f.Enhanced, nil
}

// LastCall returns the most recent recorded request.
func (f *FakeGateway) LastCall() (GenerateRequest, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.Calls) == 0 {
		return GenerateRequest{}, false
	}
	return f.Calls[len(f.Calls)-1], true
}
