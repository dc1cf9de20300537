package transliterate

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
)

func TestNewOpenAIProvider(t *testing.T) {
	if _, err := NewOpenAIProvider(&Config{}); err == nil || err.Error() != "OpenAI API key is required" {
		t.Errorf("Expected missing key error, got %v", err)
	}

	p, err := NewOpenAIProvider(&Config{OpenAIKey: "test-key"})
	if err != nil {
		t.Fatalf("NewOpenAIProvider failed: %v", err)
	}
	if p.model != "gpt-4o-mini" {
		t.Errorf("Expected default model gpt-4o-mini, got %s", p.model)
	}
	if p.client == nil {
		t.Error("OpenAI client not initialized")
	}
}

func TestOpenAIProvider_Transliterate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("Unexpected path %s", r.URL.Path)
		}

		var req struct {
			Model    string `json:"model"`
			Messages []struct {
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("Failed to decode request: %v", err)
		}
		if req.Model != "test-model" {
			t.Errorf("Expected model test-model, got %s", req.Model)
		}
		if len(req.Messages) != 1 || !strings.Contains(req.Messages[0].Content, "pointer to int") {
			t.Errorf("Prompt does not carry the text: %+v", req.Messages)
		}

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"1","object":"chat.completion","created":1,"model":"test-model",
			"choices":[{"index":0,"message":{"role":"assistant","content":"  பாயிண்டர் டு இன்ட்\n"},"finish_reason":"stop"}]}`)
	}))
	defer server.Close()

	p, err := NewOpenAIProvider(&Config{
		OpenAIKey:     "test-key",
		OpenAIModel:   "test-model",
		OpenAIBaseURL: server.URL + "/v1",
	})
	if err != nil {
		t.Fatalf("NewOpenAIProvider failed: %v", err)
	}

	got, err := p.Transliterate(context.Background(), "pointer to int")
	if err != nil {
		t.Fatalf("Transliterate failed: %v", err)
	}
	if got != "பாயிண்டர் டு இன்ட்" {
		t.Errorf("Unexpected transliteration %q", got)
	}
}

func TestOpenAIProvider_NoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"1","object":"chat.completion","created":1,"model":"m","choices":[]}`)
	}))
	defer server.Close()

	p, err := NewOpenAIProvider(&Config{OpenAIKey: "k", OpenAIBaseURL: server.URL + "/v1"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := p.Transliterate(context.Background(), "int x"); err == nil {
		t.Error("Expected error when no choices are returned")
	}
}

func TestOpenAIProvider_Integration(t *testing.T) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		t.Skip("Skipping integration test: OPENAI_API_KEY not set")
	}

	p, err := NewOpenAIProvider(&Config{OpenAIKey: apiKey})
	if err != nil {
		t.Fatal(err)
	}

	got, err := p.Transliterate(context.Background(), "declare x as int")
	if err != nil {
		t.Fatalf("Transliterate failed: %v", err)
	}
	t.Logf("Transliteration: %s", got)
}
