// Package google implements the generation gateway on the Google GenAI SDK.
package google

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"strings"

	"google.golang.org/genai"

	"github.com/pixenhq/pixen/internal/log"
	"github.com/pixenhq/pixen/internal/provider"
)

// Gateway implements provider.Gateway using the Gemini API.
type Gateway struct {
	client   *genai.Client
	model    string
	enhancer provider.Enhancer
}

var _ provider.Gateway = (*Gateway)(nil)

// NewGateway creates a gateway for the given image model. The enhancer
// handles EnhancePrompt; pass nil to disable enhancement (prompts come
// back unchanged).
func NewGateway(ctx context.Context, model string, enhancer provider.Enhancer) (*Gateway, error) {
	client, err := newSDKClient(ctx)
	if err != nil {
		return nil, err
	}
	return &Gateway{client: client, model: model, enhancer: enhancer}, nil
}

func newSDKClient(ctx context.Context) (*genai.Client, error) {
	apiKey := os.Getenv("GOOGLE_API_KEY")
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	return genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
}

// Generate builds the multi-part request (inline images then exactly one
// text part with the augmented prompt), calls the model, and parses the
// heterogeneous response into a uniform result.
func (g *Gateway) Generate(ctx context.Context, req provider.GenerateRequest) (*provider.GenerateResult, error) {
	editMode := req.EditMode()
	prompt := provider.AugmentPrompt(req.Prompt, req.Settings, editMode)

	parts := make([]*genai.Part, 0, len(req.Images)+1)
	for _, img := range req.Images {
		// Entries missing payload or MIME type are silently dropped.
		if !img.Valid() {
			continue
		}
		raw, err := base64.StdEncoding.DecodeString(img.Base64Data)
		if err != nil {
			log.Logger().Warn("dropping undecodable input image")
			continue
		}
		parts = append(parts, &genai.Part{
			InlineData: &genai.Blob{MIMEType: img.MimeType, Data: raw},
		})
	}
	parts = append(parts, &genai.Part{Text: prompt})

	contents := []*genai.Content{{Role: "user", Parts: parts}}

	temp := float32(req.Settings.Temperature)
	config := &genai.GenerateContentConfig{
		Temperature: &temp,
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: provider.SystemInstruction(req)}},
		},
		ResponseModalities: []string{"IMAGE", "TEXT"},
		ImageConfig:        &genai.ImageConfig{AspectRatio: req.Settings.AspectRatio},
	}

	log.LogGenerate("google", g.model, len(parts)-1, prompt, req.Settings.Temperature, req.Settings.AspectRatio)

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, config)
	if err != nil {
		log.LogError("google", err)
		return nil, &provider.GenerationError{Provider: "google", Err: err}
	}

	result := parseResponse(resp)
	log.LogGenerateResult("google", result.ImageURL != "", result.Text)
	return result, nil
}

// parseResponse scans the candidate parts: the first inline image becomes
// ImageURL (re-encoded as a PNG data URL), the first text part becomes
// Text. Missing or malformed structure yields an empty result, never a
// crash.
func parseResponse(resp *genai.GenerateContentResponse) *provider.GenerateResult {
	result := &provider.GenerateResult{}
	if resp == nil {
		return result
	}

	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil {
				continue
			}
			if part.InlineData != nil && len(part.InlineData.Data) > 0 && result.ImageURL == "" {
				result.ImageURL = "data:image/png;base64," +
					base64.StdEncoding.EncodeToString(part.InlineData.Data)
			}
			if part.Text != "" && result.Text == "" {
				result.Text = part.Text
			}
		}
	}
	return result
}

// EnhancePrompt delegates to the configured enhancer. It never fails
// outward: on any failure the original prompt is returned unchanged.
func (g *Gateway) EnhancePrompt(ctx context.Context, prompt string) (string, error) {
	if g.enhancer == nil {
		return prompt, nil
	}
	enhanced, err := g.enhancer.Enhance(ctx, prompt)
	if err != nil {
		log.LogError(g.enhancer.Name(), fmt.Errorf("enhance failed, keeping original: %w", err))
		return prompt, nil
	}
	if strings.TrimSpace(enhanced) == "" {
		return prompt, nil
	}
	return strings.TrimSpace(enhanced), nil
}
