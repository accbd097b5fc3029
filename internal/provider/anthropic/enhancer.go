// Package anthropic provides a prompt enhancer backed by the Anthropic API.
package anthropic

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/pixenhq/pixen/internal/provider"
)

const defaultModel = "claude-sonnet-4-20250514"

// Enhancer rewrites prompts with a Claude model.
type Enhancer struct {
	client anthropic.Client
	model  string
}

var _ provider.Enhancer = (*Enhancer)(nil)

// NewEnhancer creates an Anthropic-backed prompt enhancer. The client
// reads ANTHROPIC_API_KEY from the environment. An empty model selects
// the default.
func NewEnhancer(ctx context.Context, model string) (provider.Enhancer, error) {
	if model == "" {
		model = defaultModel
	}
	return &Enhancer{client: anthropic.NewClient(), model: model}, nil
}

func (e *Enhancer) Name() string {
	return "anthropic"
}

func (e *Enhancer) Enhance(ctx context.Context, prompt string) (string, error) {
	msg, err := e.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(e.model),
		MaxTokens: 1024,
		System: []anthropic.TextBlockParam{
			{Text: provider.EnhanceInstruction},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", err
	}

	for _, block := range msg.Content {
		if block.Type == "text" && block.Text != "" {
			return block.Text, nil
		}
	}
	return "", fmt.Errorf("empty enhancement response")
}

func init() {
	provider.RegisterEnhancer("anthropic", NewEnhancer)
}
