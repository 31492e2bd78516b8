package summarizer

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"google.golang.org/genai"

	"hinglish-snaps/config"
)

const DefaultModel = "gemini-2.5-flash"

// Gemini summarizes with the Gemini API.
type Gemini struct {
	client *genai.Client
	model  string
}

// NewGemini builds a Gemini summarizer. httpClient may be nil.
func NewGemini(ctx context.Context, cfg config.GeminiConfig, httpClient *http.Client) (*Gemini, error) {
	cc := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions.BaseURL = cfg.BaseURL
	}
	if cfg.Timeout > 0 {
		timeout := cfg.Timeout
		cc.HTTPOptions.Timeout = &timeout
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("genai client: %w", err)
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	return &Gemini{client: client, model: model}, nil
}

func (g *Gemini) Summarize(ctx context.Context, title, body string) (string, error) {
	start := time.Now()
	result, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(BuildPrompt(title, body)), nil)
	if err != nil {
		return "", fmt.Errorf("gemini generate (%s): %w", time.Since(start).Round(time.Millisecond), err)
	}
	return Clean(result.Text())
}
