package transliterate

import (
	"context"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
)

const transliterationPrompt = "Transliterate the following English text phonetically into Tamil script. " +
	"Do not translate the meaning, only render the sounds. Respond with only the Tamil text, nothing else.\n\n%s"

// OpenAIProvider implements Provider using an OpenAI chat model
type OpenAIProvider struct {
	apiKey string
	model  string
	client *openai.Client
}

// NewOpenAIProvider creates a new OpenAI transliteration provider
func NewOpenAIProvider(config *Config) (*OpenAIProvider, error) {
	if config.OpenAIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}

	clientConfig := openai.DefaultConfig(config.OpenAIKey)
	if config.OpenAIBaseURL != "" {
		clientConfig.BaseURL = config.OpenAIBaseURL
	}

	model := config.OpenAIModel
	if model == "" {
		model = openai.GPT4oMini
	}

	return &OpenAIProvider{
		apiKey: config.OpenAIKey,
		model:  model,
		client: openai.NewClientWithConfig(clientConfig),
	}, nil
}

// Transliterate asks the chat model for a Tamil-script rendering of text
func (p *OpenAIProvider) Transliterate(ctx context.Context, text string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: p.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: fmt.Sprintf(transliterationPrompt, text),
			},
		},
		MaxTokens:   200,
		Temperature: 0.2,
	}

	resp, err := p.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("OpenAI API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no transliteration returned")
	}

	out := strings.TrimSpace(resp.Choices[0].Message.Content)
	if out == "" {
		return "", fmt.Errorf("empty transliteration returned")
	}
	return out, nil
}

// Name returns the provider name
func (p *OpenAIProvider) Name() string {
	return "openai"
}
