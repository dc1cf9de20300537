package transliterate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
)

// ErrStatus is returned when the remote service answers with a non-success status
var ErrStatus = errors.New("transliteration service returned non-success status")

// Provider defines the interface for English to Tamil transliteration backends
type Provider interface {
	// Transliterate renders text phonetically in Tamil script
	Transliterate(ctx context.Context, text string) (string, error)

	// Name returns the provider name
	Name() string
}

// Config holds configuration for transliteration providers
type Config struct {
	Provider string        // "google", "openai" or "gemini"
	Fallback string        // Optional secondary provider, same values
	Timeout  time.Duration // Per-request timeout

	// Google Input Tools settings
	GoogleURL         string
	InputScheme       string
	RequestsPerMinute int

	// OpenAI-specific settings
	OpenAIKey     string
	OpenAIModel   string
	OpenAIBaseURL string

	// Gemini-specific settings
	GeminiKey   string
	GeminiModel string

	// Circuit breaker: consecutive failures before the breaker opens
	BreakerFailures uint32
	BreakerCooldown time.Duration
}

// DefaultProviderConfig returns default configuration
func DefaultProviderConfig() *Config {
	return &Config{
		Provider:          "google",
		Timeout:           10 * time.Second,
		GoogleURL:         DefaultGoogleURL,
		InputScheme:       TamilInputScheme,
		RequestsPerMinute: 120,
		OpenAIModel:       "gpt-4o-mini",
		GeminiModel:       "gemini-2.0-flash",
		BreakerFailures:   5,
		BreakerCooldown:   30 * time.Second,
	}
}

// NewProvider creates the configured provider, wrapped with its fallback and
// a circuit breaker.
func NewProvider(ctx context.Context, config *Config) (Provider, error) {
	if config == nil {
		config = DefaultProviderConfig()
	}

	primary, err := newNamedProvider(ctx, config.Provider, config)
	if err != nil {
		return nil, err
	}
	primary = NewBreakerProvider(primary, config.BreakerFailures, config.BreakerCooldown)

	if config.Fallback == "" || config.Fallback == config.Provider {
		return primary, nil
	}

	fallback, err := newNamedProvider(ctx, config.Fallback, config)
	if err != nil {
		return nil, fmt.Errorf("fallback provider: %w", err)
	}
	fallback = NewBreakerProvider(fallback, config.BreakerFailures, config.BreakerCooldown)

	return NewProviderWithFallback(primary, fallback), nil
}

func newNamedProvider(ctx context.Context, name string, config *Config) (Provider, error) {
	switch name {
	case "", "google":
		return NewGoogleProvider(config), nil
	case "openai":
		p, err := NewOpenAIProvider(config)
		if err != nil {
			return nil, err
		}
		return p, nil
	case "gemini":
		p, err := NewGeminiProvider(ctx, config)
		if err != nil {
			return nil, err
		}
		return p, nil
	default:
		return nil, fmt.Errorf("unknown transliteration provider: %s", name)
	}
}

// ProviderWithFallback wraps a primary provider with a fallback option
type ProviderWithFallback struct {
	primary  Provider
	fallback Provider
}

// NewProviderWithFallback creates a provider that falls back to secondary if primary fails
func NewProviderWithFallback(primary, fallback Provider) Provider {
	return &ProviderWithFallback{
		primary:  primary,
		fallback: fallback,
	}
}

// Transliterate tries the primary provider first, falls back to secondary on error
func (p *ProviderWithFallback) Transliterate(ctx context.Context, text string) (string, error) {
	out, err := p.primary.Transliterate(ctx, text)
	if err == nil {
		return out, nil
	}

	log.Warn("primary transliteration provider failed, falling back",
		"primary", p.primary.Name(), "fallback", p.fallback.Name(), "err", err)

	out, fbErr := p.fallback.Transliterate(ctx, text)
	if fbErr != nil {
		return "", errors.Join(err, fbErr)
	}
	return out, nil
}

// Name returns the provider name
func (p *ProviderWithFallback) Name() string {
	return fmt.Sprintf("%s (fallback: %s)", p.primary.Name(), p.fallback.Name())
}
