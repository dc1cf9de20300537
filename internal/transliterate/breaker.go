package transliterate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/sony/gobreaker"
)

// BreakerProvider guards a provider with a circuit breaker so an unreachable
// endpoint fails fast instead of stalling every request.
type BreakerProvider struct {
	next Provider
	cb   *gobreaker.CircuitBreaker
}

// NewBreakerProvider wraps next. The breaker opens after failures consecutive
// errors and probes again after cooldown.
func NewBreakerProvider(next Provider, failures uint32, cooldown time.Duration) *BreakerProvider {
	if failures == 0 {
		failures = 5
	}
	if cooldown <= 0 {
		cooldown = 30 * time.Second
	}

	settings := gobreaker.Settings{
		Name:    next.Name(),
		Timeout: cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		IsSuccessful: func(err error) bool {
			// a well-formed non-success answer means the endpoint is up
			return err == nil || errors.Is(err, ErrStatus) || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("transliteration circuit breaker changed state", "provider", name, "from", from.String(), "to", to.String())
		},
	}

	return &BreakerProvider{next: next, cb: gobreaker.NewCircuitBreaker(settings)}
}

// Transliterate runs the wrapped provider through the breaker
func (b *BreakerProvider) Transliterate(ctx context.Context, text string) (string, error) {
	out, err := b.cb.Execute(func() (interface{}, error) {
		return b.next.Transliterate(ctx, text)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return "", fmt.Errorf("%s unavailable: %w", b.next.Name(), err)
		}
		return "", err
	}
	return out.(string), nil
}

// Name returns the wrapped provider name
func (b *BreakerProvider) Name() string {
	return b.next.Name()
}

// State reports the breaker state
func (b *BreakerProvider) State() gobreaker.State {
	return b.cb.State()
}
