package testutil

import (
	"context"
	"fmt"
	"sync"
)

// MockProvider mocks a transliteration provider
type MockProvider struct {
	ProviderName     string
	Transliterations map[string]string
	Errors           map[string]error
	DefaultErr       error

	mu    sync.Mutex
	calls []string
}

// Transliterate mocks transliterating text
func (m *MockProvider) Transliterate(ctx context.Context, text string) (string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, text)
	m.mu.Unlock()

	if err, ok := m.Errors[text]; ok {
		return "", err
	}
	if m.DefaultErr != nil {
		return "", m.DefaultErr
	}
	if out, ok := m.Transliterations[text]; ok {
		return out, nil
	}

	// Default mock transliteration
	return fmt.Sprintf("ta(%s)", text), nil
}

// Name returns the mock provider name
func (m *MockProvider) Name() string {
	if m.ProviderName == "" {
		return "mock"
	}
	return m.ProviderName
}

// Calls returns a copy of the texts passed to Transliterate
func (m *MockProvider) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

// FailedTransliteration is what MockTransliterator returns for Failing texts
const FailedTransliteration = "Transliteration error."

// MockTransliterator mocks the never-failing transliteration client
type MockTransliterator struct {
	// Failing texts render as FailedTransliteration
	Failing map[string]bool

	mu    sync.Mutex
	calls []string
}

// Text returns a recognisable marker around text
func (m *MockTransliterator) Text(ctx context.Context, text string) string {
	out, _ := m.Render(ctx, text)
	return out
}

// Render is Text reporting whether the text was in Failing
func (m *MockTransliterator) Render(ctx context.Context, text string) (string, bool) {
	m.mu.Lock()
	m.calls = append(m.calls, text)
	m.mu.Unlock()

	if m.Failing[text] {
		return FailedTransliteration, false
	}
	return Tamil(text), true
}

// Calls returns a copy of the texts passed to Text
func (m *MockTransliterator) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.calls...)
}

// Tamil is the marker MockTransliterator wraps around its input
func Tamil(text string) string {
	return "ta(" + text + ")"
}

// MockRunner mocks the declaration explainer subprocess
type MockRunner struct {
	Output []string
	Err    error
	// Errs, when set, overrides Err for the first len(Errs) calls
	Errs []error
	// Block, when set, is received from before Run returns
	Block chan struct{}

	mu     sync.Mutex
	inputs [][]string
}

// Run records the input lines and returns the configured output
func (m *MockRunner) Run(ctx context.Context, lines []string) ([]string, error) {
	m.mu.Lock()
	call := len(m.inputs)
	m.inputs = append(m.inputs, append([]string(nil), lines...))
	m.mu.Unlock()

	if m.Block != nil {
		select {
		case <-m.Block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	err := m.Err
	if call < len(m.Errs) {
		err = m.Errs[call]
	}
	if err != nil {
		return nil, err
	}
	return m.Output, nil
}

// Invocations returns how many times Run was called
func (m *MockRunner) Invocations() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.inputs)
}

// Inputs returns the lines of every Run call
func (m *MockRunner) Inputs() [][]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]string, len(m.inputs))
	copy(out, m.inputs)
	return out
}
