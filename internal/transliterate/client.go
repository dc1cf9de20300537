package transliterate

import (
	"context"
	"errors"

	"github.com/charmbracelet/log"
	"github.com/jellydator/ttlcache/v3"
)

// Degraded results returned in place of a transliteration
const (
	StatusErrorText = "Error in transliteration."
	FailureText     = "Transliteration error."
)

// Client turns provider errors into human-readable strings, so callers always
// get something to show.
type Client struct {
	provider Provider
	cache    *ttlcache.Cache[string, string]
}

// NewClient creates a client around provider, memoizing up to cacheSize
// successful results. A cacheSize of zero disables memoization.
func NewClient(provider Provider, cacheSize uint64) *Client {
	c := &Client{provider: provider}
	if cacheSize > 0 {
		c.cache = ttlcache.New[string, string](
			ttlcache.WithCapacity[string, string](cacheSize),
		)
	}
	return c
}

// Text returns the Tamil transliteration of text, or a descriptive English
// message when the provider fails.
func (c *Client) Text(ctx context.Context, text string) string {
	out, _ := c.Render(ctx, text)
	return out
}

// Render is Text that also reports whether the provider succeeded
func (c *Client) Render(ctx context.Context, text string) (string, bool) {
	if c.cache != nil {
		if item := c.cache.Get(text); item != nil {
			return item.Value(), true
		}
	}

	out, err := c.provider.Transliterate(ctx, text)
	if err != nil {
		if errors.Is(err, ErrStatus) {
			log.Error("Error in transliteration", "provider", c.provider.Name(), "err", err)
			return StatusErrorText, false
		}
		log.Error("Transliteration error", "provider", c.provider.Name(), "err", err)
		return FailureText, false
	}

	if c.cache != nil {
		c.cache.Set(text, out, ttlcache.DefaultTTL)
	}
	return out, true
}

// Provider returns the underlying provider
func (c *Client) Provider() Provider {
	return c.provider
}
