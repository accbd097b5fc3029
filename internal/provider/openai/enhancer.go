// Package openai provides a prompt enhancer backed by the OpenAI API.
package openai

import (
	"context"
	"fmt"

	"github.com/openai/openai-go/v3"

	"github.com/pixenhq/pixen/internal/provider"
)

const defaultModel = "gpt-4o"

// Enhancer rewrites prompts with an OpenAI chat model.
type Enhancer struct {
	client openai.Client
	model  string
}

var _ provider.Enhancer = (*Enhancer)(nil)

// NewEnhancer creates an OpenAI-backed prompt enhancer. The client reads
// OPENAI_API_KEY from the environment. An empty model selects the default.
func NewEnhancer(ctx context.Context, model string) (provider.Enhancer, error) {
	if model == "" {
		model = defaultModel
	}
	return &Enhancer{client: openai.NewClient(), model: model}, nil
}

func (e *Enhancer) Name() string {
	return "openai"
}

func (e *Enhancer) Enhance(ctx context.Context, prompt string) (string, error) {
	resp, err := e.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(e.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(provider.EnhanceInstruction),
			openai.UserMessage(prompt),
		},
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty enhancement response")
	}
	return resp.Choices[0].Message.Content, nil
}

func init() {
	provider.RegisterEnhancer("openai", NewEnhancer)
}
