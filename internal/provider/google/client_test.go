package google

import (
	"encoding/base64"
	"testing"

	"google.golang.org/genai"
)

func TestParseResponseFirstOfEachKindWins(t *testing.T) {
	first := []byte{1, 2, 3}
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{
				Parts: []*genai.Part{
					{Text: "here you go"},
					{InlineData: &genai.Blob{MIMEType: "image/webp", Data: first}},
					{Text: "ignored second text"},
					{InlineData: &genai.Blob{MIMEType: "image/png", Data: []byte{9}}},
				},
			},
		}},
	}

	result := parseResponse(resp)

	want := "data:image/png;base64," + base64.StdEncoding.EncodeToString(first)
	if result.ImageURL != want {
		t.Errorf("image = %q, want first inline part re-encoded as PNG data URL", result.ImageURL)
	}
	if result.Text != "here you go" {
		t.Errorf("text = %q", result.Text)
	}
}

func TestParseResponseMalformed(t *testing.T) {
	tests := []struct {
		name string
		resp *genai.GenerateContentResponse
	}{
		{"nil response", nil},
		{"no candidates", &genai.GenerateContentResponse{}},
		{"nil candidate", &genai.GenerateContentResponse{Candidates: []*genai.Candidate{nil}}},
		{"nil content", &genai.GenerateContentResponse{Candidates: []*genai.Candidate{{}}}},
		{"nil part", &genai.GenerateContentResponse{
			Candidates: []*genai.Candidate{{Content: &genai.Content{Parts: []*genai.Part{nil}}}},
		}},
		{"empty inline data", &genai.GenerateContentResponse{
			Candidates: []*genai.Candidate{{Content: &genai.Content{
				Parts: []*genai.Part{{InlineData: &genai.Blob{MIMEType: "image/png"}}},
			}}},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := parseResponse(tt.resp)
			if result.ImageURL != "" || result.Text != "" {
				t.Errorf("malformed response should yield empty result, got %+v", result)
			}
		})
	}
}
