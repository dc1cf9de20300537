package transliterate

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// GeminiProvider implements Provider using the Gemini API
type GeminiProvider struct {
	model  string
	client *genai.Client
}

// NewGeminiProvider creates a new Gemini transliteration provider
func NewGeminiProvider(ctx context.Context, config *Config) (*GeminiProvider, error) {
	if config.GeminiKey == "" {
		return nil, fmt.Errorf("Gemini API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  config.GeminiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := config.GeminiModel
	if model == "" {
		model = DefaultProviderConfig().GeminiModel
	}

	return &GeminiProvider{model: model, client: client}, nil
}

// Transliterate asks Gemini for a Tamil-script rendering of text
func (p *GeminiProvider) Transliterate(ctx context.Context, text string) (string, error) {
	resp, err := p.client.Models.GenerateContent(ctx, p.model,
		genai.Text(fmt.Sprintf(transliterationPrompt, text)),
		&genai.GenerateContentConfig{Temperature: genai.Ptr[float32](0.2)},
	)
	if err != nil {
		return "", fmt.Errorf("Gemini API error: %w", err)
	}

	out := strings.TrimSpace(resp.Text())
	if out == "" {
		return "", fmt.Errorf("no transliteration returned")
	}
	return out, nil
}

// Name returns the provider name
func (p *GeminiProvider) Name() string {
	return "gemini"
}
