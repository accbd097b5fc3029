package google

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/pixenhq/pixen/internal/provider"
)

// Enhancer rewrites prompts with a Gemini text model.
type Enhancer struct {
	client *genai.Client
	model  string
}

var _ provider.Enhancer = (*Enhancer)(nil)

const defaultEnhanceModel = "gemini-2.5-flash"

// NewEnhancer creates a Gemini-backed prompt enhancer. An empty model
// selects the default.
func NewEnhancer(ctx context.Context, model string) (provider.Enhancer, error) {
	if model == "" {
		model = defaultEnhanceModel
	}
	client, err := newSDKClient(ctx)
	if err != nil {
		return nil, err
	}
	return &Enhancer{client: client, model: model}, nil
}

func (e *Enhancer) Name() string {
	return "google"
}

func (e *Enhancer) Enhance(ctx context.Context, prompt string) (string, error) {
	contents := []*genai.Content{{
		Role:  "user",
		Parts: []*genai.Part{{Text: prompt}},
	}}
	config := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: provider.EnhanceInstruction}},
		},
	}

	resp, err := e.client.Models.GenerateContent(ctx, e.model, contents, config)
	if err != nil {
		return "", err
	}

	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part != nil && part.Text != "" {
				return part.Text, nil
			}
		}
	}
	return "", fmt.Errorf("empty enhancement response")
}

func init() {
	provider.RegisterEnhancer("google", NewEnhancer)
}
