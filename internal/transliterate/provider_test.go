package transliterate

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/sony/gobreaker"

	"codeberg.org/snonux/tamildecl/internal/testutil"
)

func TestNewProvider(t *testing.T) {
	tests := []struct {
		name     string
		config   *Config
		wantName string
		wantErr  bool
	}{
		{
			name:     "nil config uses google",
			config:   nil,
			wantName: "google",
		},
		{
			name:     "explicit google",
			config:   &Config{Provider: "google"},
			wantName: "google",
		},
		{
			name:    "openai without key",
			config:  &Config{Provider: "openai"},
			wantErr: true,
		},
		{
			name:     "google with openai fallback",
			config:   &Config{Provider: "google", Fallback: "openai", OpenAIKey: "test-key"},
			wantName: "google (fallback: openai)",
		},
		{
			name:     "fallback equal to primary is ignored",
			config:   &Config{Provider: "google", Fallback: "google"},
			wantName: "google",
		},
		{
			name:    "unknown provider",
			config:  &Config{Provider: "babelfish"},
			wantErr: true,
		},
		{
			name:    "unknown fallback",
			config:  &Config{Provider: "google", Fallback: "babelfish"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewProvider(context.Background(), tt.config)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewProvider() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && p.Name() != tt.wantName {
				t.Errorf("NewProvider() name = %q, want %q", p.Name(), tt.wantName)
			}
		})
	}
}

func TestProviderWithFallback(t *testing.T) {
	primary := &testutil.MockProvider{ProviderName: "primary", DefaultErr: errors.New("down")}
	fallback := &testutil.MockProvider{ProviderName: "fallback"}

	p := NewProviderWithFallback(primary, fallback)
	got, err := p.Transliterate(context.Background(), "int x")
	if err != nil {
		t.Fatalf("Transliterate failed: %v", err)
	}
	if got != "ta(int x)" {
		t.Errorf("Expected fallback result, got %q", got)
	}
	if len(primary.Calls()) != 1 || len(fallback.Calls()) != 1 {
		t.Errorf("Expected one call each, got primary=%d fallback=%d", len(primary.Calls()), len(fallback.Calls()))
	}
}

func TestProviderWithFallback_BothFail(t *testing.T) {
	primary := &testutil.MockProvider{DefaultErr: ErrStatus}
	fallback := &testutil.MockProvider{DefaultErr: errors.New("network down")}

	_, err := NewProviderWithFallback(primary, fallback).Transliterate(context.Background(), "x")
	if err == nil {
		t.Fatal("Expected error when both providers fail")
	}
	if !errors.Is(err, ErrStatus) || !strings.Contains(err.Error(), "network down") {
		t.Errorf("Expected both errors to be reported, got %v", err)
	}
}

func TestBreakerProvider_OpensAfterFailures(t *testing.T) {
	next := &testutil.MockProvider{DefaultErr: errors.New("connection refused")}
	b := NewBreakerProvider(next, 2, time.Minute)

	for i := 0; i < 2; i++ {
		if _, err := b.Transliterate(context.Background(), "x"); err == nil {
			t.Fatal("Expected error from failing provider")
		}
	}
	if b.State() != gobreaker.StateOpen {
		t.Fatalf("Expected open breaker, got %s", b.State())
	}

	_, err := b.Transliterate(context.Background(), "x")
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Errorf("Expected ErrOpenState, got %v", err)
	}
	if len(next.Calls()) != 2 {
		t.Errorf("Expected provider to be skipped while open, got %d calls", len(next.Calls()))
	}
}

func TestBreakerProvider_StatusErrorsKeepBreakerClosed(t *testing.T) {
	next := &testutil.MockProvider{DefaultErr: ErrStatus}
	b := NewBreakerProvider(next, 1, time.Minute)

	for i := 0; i < 3; i++ {
		if _, err := b.Transliterate(context.Background(), "x"); !errors.Is(err, ErrStatus) {
			t.Fatalf("Expected ErrStatus, got %v", err)
		}
	}
	if b.State() != gobreaker.StateClosed {
		t.Errorf("Expected closed breaker, got %s", b.State())
	}
}
