package transliterate

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"
)

const (
	// DefaultGoogleURL is the Google Input Tools endpoint
	DefaultGoogleURL = "https://inputtools.google.com/request"

	// TamilInputScheme selects Tamil transliteration from Latin input
	TamilInputScheme = "ta-t-i0-und"

	successStatus   = "SUCCESS"
	maxResponseSize = 1 << 20
)

// GoogleProvider implements Provider for the Google Input Tools API
type GoogleProvider struct {
	endpoint    string
	scheme      string
	httpClient  *http.Client
	rateLimiter *rate.Limiter
}

// NewGoogleProvider creates a new Google Input Tools provider
func NewGoogleProvider(config *Config) *GoogleProvider {
	defaults := DefaultProviderConfig()

	endpoint := config.GoogleURL
	if endpoint == "" {
		endpoint = defaults.GoogleURL
	}
	scheme := config.InputScheme
	if scheme == "" {
		scheme = defaults.InputScheme
	}
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = defaults.Timeout
	}
	rpm := config.RequestsPerMinute
	if rpm <= 0 {
		rpm = defaults.RequestsPerMinute
	}

	return &GoogleProvider{
		endpoint:    endpoint,
		scheme:      scheme,
		httpClient:  &http.Client{Timeout: timeout},
		rateLimiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(rpm)), rpm),
	}
}

// Transliterate posts text to the Input Tools endpoint and joins the
// candidates of the first segment with single spaces.
func (g *GoogleProvider) Transliterate(ctx context.Context, text string) (string, error) {
	if err := g.rateLimiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit wait cancelled: %w", err)
	}

	form := url.Values{}
	form.Set("itc", g.scheme)
	form.Set("num", "1")
	form.Set("cp", "0")
	form.Set("text", text)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("unexpected HTTP status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	return ParseResponse(body)
}

// ParseResponse extracts the first transliteration from an Input Tools
// response of the form [status, [[segment, [candidates...], ...], ...]].
func ParseResponse(body []byte) (string, error) {
	if !gjson.ValidBytes(body) {
		return "", fmt.Errorf("malformed response: invalid JSON")
	}

	root := gjson.ParseBytes(body)
	if !root.IsArray() {
		return "", fmt.Errorf("malformed response: expected array")
	}

	status := root.Get("0")
	if status.Type != gjson.String {
		return "", fmt.Errorf("malformed response: missing status")
	}
	if status.String() != successStatus {
		return "", fmt.Errorf("%w: %s", ErrStatus, status.String())
	}

	candidates := root.Get("1.0.1")
	if !candidates.IsArray() {
		return "", fmt.Errorf("malformed response: missing candidates")
	}

	var words []string
	for _, c := range candidates.Array() {
		words = append(words, c.String())
	}
	if len(words) == 0 {
		return "", fmt.Errorf("malformed response: empty candidates")
	}

	return strings.Join(words, " "), nil
}

// Name returns the provider name
func (g *GoogleProvider) Name() string {
	return "google"
}
