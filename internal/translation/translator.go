package translation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/jellydator/ttlcache/v3"
	"golang.org/x/sync/singleflight"

	"codeberg.org/snonux/tamildecl/internal"
	"codeberg.org/snonux/tamildecl/internal/explain"
)

// Messages passed through transliteration when no explanation is available
const (
	SyntaxError        = "syntax error"
	ExecutableNotFound = "Executable not found."
	SubprocessError    = "Subprocess execution error."
	TranslationError   = "Error during translation."
	InvalidInput       = "Invalid input provided."

	// HelpText is the fixed Tamil rendering of "syntax error"
	HelpText = "சின்டாக்ஸ் பிழை"
)

var storageClasses = map[string]bool{
	"auto":     true,
	"extern":   true,
	"static":   true,
	"register": true,
}

// Runner runs the declaration explainer
type Runner interface {
	Run(ctx context.Context, lines []string) ([]string, error)
}

// MessageTransliterator renders English text in Tamil script, never failing
type MessageTransliterator interface {
	Text(ctx context.Context, text string) string
}

// Transliterator also reports through Render whether the result is a real
// transliteration rather than a degraded message.
type Transliterator interface {
	MessageTransliterator
	Render(ctx context.Context, text string) (string, bool)
}

// Store is a persistent second-level memo
type Store interface {
	Get(ctx context.Context, query string) (string, bool, error)
	Put(ctx context.Context, query, output string) error
}

// Config holds the memo cache settings
type Config struct {
	CacheSize uint64        // Maximum cached queries, least recently used evicted first
	CacheTTL  time.Duration // Zero keeps entries until evicted
}

// DefaultConfig returns the default cache configuration
func DefaultConfig() *Config {
	return &Config{CacheSize: 1000}
}

// Translator explains C declarations in Tamil, memoized by exact query
type Translator struct {
	runner   Runner
	translit Transliterator
	store    Store
	cache    *ttlcache.Cache[string, string]
	group    singleflight.Group
	expiring bool
	stopOnce sync.Once
}

// NewTranslator creates a translator. store may be nil. With a CacheTTL the
// expiry loop starts here and runs until Stop.
func NewTranslator(runner Runner, translit Transliterator, store Store, config *Config) *Translator {
	if config == nil {
		config = DefaultConfig()
	}
	size := config.CacheSize
	if size == 0 {
		size = DefaultConfig().CacheSize
	}

	// hits must not extend the TTL, or a busy key would never expire
	opts := []ttlcache.Option[string, string]{
		ttlcache.WithCapacity[string, string](size),
		ttlcache.WithDisableTouchOnHit[string, string](),
	}
	if config.CacheTTL > 0 {
		opts = append(opts, ttlcache.WithTTL[string, string](config.CacheTTL))
	}

	t := &Translator{
		runner:   runner,
		translit: translit,
		store:    store,
		cache:    ttlcache.New[string, string](opts...),
		expiring: config.CacheTTL > 0,
	}
	if t.expiring {
		go t.cache.Start()
	}
	return t
}

// Stop ends the cache expiry loop, if one is running. Safe to call twice.
func (t *Translator) Stop() {
	t.stopOnce.Do(func() {
		if t.expiring {
			t.cache.Stop()
		}
	})
}

// Translate returns the Tamil explanation of a C declaration query
func (t *Translator) Translate(ctx context.Context, query string) string {
	if item := t.cache.Get(query); item != nil {
		log.Debug("translation cache hit", "query", internal.Truncate(query, 40))
		return item.Value()
	}

	v, _, _ := t.group.Do(query, func() (interface{}, error) {
		// shared by every waiter, so one caller going away must not abort it
		ctx := context.WithoutCancel(ctx)

		if t.store != nil {
			out, found, err := t.store.Get(ctx, query)
			if err != nil {
				log.Warn("history lookup failed", "err", err)
			} else if found {
				t.cache.Set(query, out, ttlcache.DefaultTTL)
				return out, nil
			}
		}

		out, durable := t.translate(ctx, query)
		t.cache.Set(query, out, ttlcache.DefaultTTL)

		// degraded results stay in memory only, so they expire with the TTL
		// and do not survive a restart
		if durable && t.store != nil {
			if err := t.store.Put(ctx, query, out); err != nil {
				log.Warn("history write failed", "err", err)
			}
		}
		return out, nil
	})

	return v.(string)
}

// translate reports whether the result is durable: the explainer ran and the
// transliteration succeeded.
func (t *Translator) translate(ctx context.Context, query string) (string, bool) {
	tokens := strings.Fields(query)
	if len(tokens) == 0 {
		return t.translit.Render(ctx, SyntaxError)
	}

	// reserved for building the candidate lines below
	if tokens[0] == "declare" || tokens[0] == "cast" {
		return t.translit.Render(ctx, SyntaxError)
	}

	query = Normalize(query)

	lines, err := t.runner.Run(ctx, CandidateLines(query))
	if err != nil {
		var exitErr *explain.ExitError
		switch {
		case errors.Is(err, explain.ErrNotFound):
			log.Error("Executable not found", "err", err)
			return t.translit.Text(ctx, ExecutableNotFound), false
		case errors.As(err, &exitErr):
			log.Error("Subprocess error", "code", exitErr.Code, "stderr", exitErr.Stderr)
			return t.translit.Text(ctx, SubprocessError), false
		default:
			log.Error("Error during translation", "err", err)
			return t.translit.Text(ctx, TranslationError), false
		}
	}

	if line, ok := FirstExplanation(lines); ok {
		log.Info("Subprocess output", "line", line)
		return t.translit.Render(ctx, line)
	}
	return t.translit.Render(ctx, SyntaxError)
}

// Stats reports memo cache counters
func (t *Translator) Stats() string {
	m := t.cache.Metrics()
	return fmt.Sprintf("hits=%d misses=%d insertions=%d evictions=%d size=%d",
		m.Hits, m.Misses, m.Insertions, m.Evictions, t.cache.Len())
}

// Help returns the fixed Tamil syntax-error message
func Help(ctx context.Context, translit MessageTransliterator) string {
	return translit.Text(ctx, HelpText)
}

// Normalize inserts the default type int into a short storage-class
// declaration such as "static foo".
func Normalize(query string) string {
	tokens := strings.Fields(query)
	if len(tokens) == 0 || len(tokens) >= 3 || !storageClasses[tokens[0]] {
		return query
	}

	return strings.Join(append([]string{tokens[0], "int"}, tokens[1:]...), " ")
}

// CandidateLines builds the explainer input for query
func CandidateLines(query string) []string {
	return []string{
		query,
		fmt.Sprintf("explain %s;", query),
		fmt.Sprintf("declare %s;", query),
	}
}

// FirstExplanation returns the first non-empty line that is not a syntax error
func FirstExplanation(lines []string) (string, bool) {
	for _, line := range lines {
		if line != "" && line != SyntaxError {
			return line, true
		}
	}
	return "", false
}
