// Package llmclient wraps the official genai client. Only the API call
// lives here; prompt assembly and stream interpretation belong to the
// orchestrator.
package llmclient

import (
	"context"
	"errors"
	"strings"

	genai "google.golang.org/genai"
)

var ErrEmptyResponse = errors.New("llmclient: empty response from model")

// Streamer delivers a model response as incremental text chunks and returns
// the complete text. The orchestrator is written against this interface so
// tests can feed scripted chunk sequences.
type Streamer interface {
	StreamText(ctx context.Context, prompt string, onChunk func(chunk string)) (string, error)
}

// GeminiClient is a thin wrapper around the official genai client.
type GeminiClient struct {
	cli   *genai.Client
	model string
}

func NewGeminiClient(ctx context.Context, model string) (*GeminiClient, error) {
	// The genai client reads GEMINI_API_KEY from the environment.
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{Backend: genai.BackendGeminiAPI})
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(model) == "" {
		model = "gemini-2.5-flash"
	}
	return &GeminiClient{cli: cli, model: model}, nil
}

func (g *GeminiClient) Name() string { return "Gemini:" + g.model }
func (g *GeminiClient) Close() error { return nil }

// StreamText asks for application/json and forwards each streamed text part
// to onChunk as it arrives. The accumulated full text is returned so the
// caller can run an authoritative final parse.
func (g *GeminiClient) StreamText(ctx context.Context, prompt string, onChunk func(chunk string)) (string, error) {
	var full strings.Builder
	for resp, err := range g.cli.Models.GenerateContentStream(ctx, g.model,
		[]*genai.Content{{Parts: []*genai.Part{{Text: prompt}}}},
		&genai.GenerateContentConfig{ResponseMIMEType: "application/json"},
	) {
		if err != nil {
			return full.String(), err
		}
		if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
			continue
		}
		for _, part := range resp.Candidates[0].Content.Parts {
			if part == nil || part.Text == "" {
				continue
			}
			full.WriteString(part.Text)
			if onChunk != nil {
				onChunk(part.Text)
			}
		}
	}
	if full.Len() == 0 {
		return "", ErrEmptyResponse
	}
	return full.String(), nil
}
