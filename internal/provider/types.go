// Package provider defines the generation gateway contract: build a request
// from resolved images + prompt + settings, get back a uniform result
// (image or text), with failures normalized to GenerationError.
package provider

import (
	"context"
	"fmt"

	"github.com/pixenhq/pixen/internal/config"
	"github.com/pixenhq/pixen/internal/message"
)

// GenerateRequest carries everything one generation call needs.
type GenerateRequest struct {
	// Images are the resolved input images, in order. Entries missing a
	// payload or MIME type are silently dropped when the request is built.
	Images []message.ImageRef

	// Prompt is the effective user prompt before augmentation.
	Prompt string

	Settings config.GenSettings
}

// EditMode reports whether the request selects the editing system
// instruction (at least one input image) or free generation (none). This
// is the only mode switch; it is not configurable beyond image presence.
func (r GenerateRequest) EditMode() bool {
	for _, img := range r.Images {
		if img.Valid() {
			return true
		}
	}
	return false
}

// GenerateResult is the uniform parse of a heterogeneous model response.
// Image presence is authoritative success; text is a fallback explanation.
// Both absent means the response was empty or malformed — not an error.
type GenerateResult struct {
	ImageURL string // data:image/png;base64,... when present
	Text     string
}

// Gateway is the contract wrapper around the remote model.
type Gateway interface {
	Generate(ctx context.Context, req GenerateRequest) (*GenerateResult, error)

	// EnhancePrompt rewrites a prompt to be more descriptive but concise.
	// It never fails outward: on any failure the original prompt comes
	// back unchanged.
	EnhancePrompt(ctx context.Context, prompt string) (string, error)
}

// Enhancer is a text-only completion used for prompt rewriting. Selected
// by config; google, openai, and anthropic implementations register here.
type Enhancer interface {
	Name() string
	Enhance(ctx context.Context, prompt string) (string, error)
}

// GenerationError normalizes transport and model failures from any
// provider. Its message surfaces verbatim as an error-flagged model
// message in the conversation.
type GenerationError struct {
	Provider string
	Err      error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("%s: generation failed: %v", e.Provider, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}
