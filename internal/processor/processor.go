package processor

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/viper"

	"codeberg.org/snonux/tamildecl/internal"
	"codeberg.org/snonux/tamildecl/internal/batch"
	"codeberg.org/snonux/tamildecl/internal/cli"
	"codeberg.org/snonux/tamildecl/internal/explain"
	"codeberg.org/snonux/tamildecl/internal/history"
	"codeberg.org/snonux/tamildecl/internal/server"
	"codeberg.org/snonux/tamildecl/internal/translation"
	"codeberg.org/snonux/tamildecl/internal/transliterate"
)

// transliterationCacheSize bounds the memo of fixed message transliterations
const transliterationCacheSize = 256

// Processor handles the main declaration processing logic
type Processor struct {
	flags      *cli.Flags
	runner     *explain.Runner
	translit   *transliterate.Client
	store      *history.Store
	translator *translation.Translator
}

// NewProcessor builds the translation pipeline. It fails when the explainer
// executable is missing.
func NewProcessor(ctx context.Context, flags *cli.Flags) (*Processor, error) {
	runner, err := explain.New(&explain.Config{
		Path:    flags.ExplainerPath,
		Timeout: flags.ExplainerTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("declaration explainer unavailable: %w", err)
	}
	log.Debug("using explainer", "path", runner.Path())

	provider, err := transliterate.NewProvider(ctx, providerConfig(flags))
	if err != nil {
		return nil, fmt.Errorf("failed to create transliteration provider: %w", err)
	}

	p := &Processor{
		flags:    flags,
		runner:   runner,
		translit: transliterate.NewClient(provider, transliterationCacheSize),
	}

	// A nil *history.Store must not reach the translator as a non-nil interface
	var store translation.Store
	if flags.HistoryDB != "" {
		p.store, err = history.Open(flags.HistoryDB)
		if err != nil {
			return nil, err
		}
		store = p.store
	}

	p.translator = translation.NewTranslator(runner, p.translit, store, &translation.Config{
		CacheSize: flags.CacheSize,
		CacheTTL:  flags.CacheTTL,
	})

	return p, nil
}

func providerConfig(flags *cli.Flags) *transliterate.Config {
	config := transliterate.DefaultProviderConfig()
	config.Provider = flags.Provider
	config.Fallback = flags.Fallback
	config.Timeout = flags.TranslitTimeout
	config.RequestsPerMinute = flags.TranslitRPM
	config.OpenAIKey = cli.GetOpenAIKey()
	config.OpenAIModel = flags.OpenAIModel
	config.GeminiKey = cli.GetGeminiKey()
	config.GeminiModel = flags.GeminiModel

	// Config-file only settings
	if url := viper.GetString("transliterate.google_url"); url != "" {
		config.GoogleURL = url
	}
	if url := viper.GetString("transliterate.openai_base_url"); url != "" {
		config.OpenAIBaseURL = url
	}
	return config
}

// ProcessSingleQuery explains one declaration and prints the result
func (p *Processor) ProcessSingleQuery(ctx context.Context, query string, w io.Writer) error {
	query = strings.TrimSpace(query)
	if query == "" {
		return fmt.Errorf("empty declaration")
	}

	fmt.Fprintln(w, p.answer(ctx, query))
	return nil
}

// answer follows the web form's handling of the reserved help query
func (p *Processor) answer(ctx context.Context, query string) string {
	if strings.ToLower(query) == "help" {
		return translation.Help(ctx, p.translit)
	}
	return p.translator.Translate(ctx, query)
}

// ProcessBatch explains every declaration in the batch file
func (p *Processor) ProcessBatch(ctx context.Context, w io.Writer) error {
	queries, err := batch.ReadBatchFile(p.flags.BatchFile)
	if err != nil {
		return err
	}

	processed := 0
	for i, query := range queries {
		if err := ctx.Err(); err != nil {
			return err
		}

		log.Debug("processing declaration", "n", i+1, "of", len(queries), "query", internal.Truncate(query, 40))
		fmt.Fprintf(w, "%s\n  %s\n", query, p.answer(ctx, query))
		processed++
	}

	fmt.Fprintf(w, "\n=== Batch Summary ===\n")
	fmt.Fprintf(w, "Total declarations: %d\n", len(queries))
	fmt.Fprintf(w, "Processed: %d\n", processed)
	fmt.Fprintf(w, "%s\n", p.translator.Stats())
	return nil
}

// Serve runs the web front-end until ctx is cancelled
func (p *Processor) Serve(ctx context.Context) error {
	config := server.DefaultConfig()
	config.Addr = p.flags.Addr
	if p.flags.ExplainerTimeout+p.flags.TranslitTimeout*2 > config.WriteTimeout {
		config.WriteTimeout = p.flags.ExplainerTimeout + p.flags.TranslitTimeout*2
	}

	srv, err := server.New(p.translator, p.translit, config)
	if err != nil {
		return err
	}

	log.Info("tamildecl "+internal.Version,
		"explainer", p.runner.Path(),
		"provider", p.translit.Provider().Name(),
		"cache", p.flags.CacheSize)
	defer log.Info("translation cache", "stats", p.translator.Stats())

	return srv.ListenAndServe(ctx)
}

// Close releases the history database and stops cache expiry
func (p *Processor) Close() error {
	p.translator.Stop()
	if p.store != nil {
		return p.store.Close()
	}
	return nil
}

// PrintHistory prints the n most recent translations from the database at dbPath
func PrintHistory(ctx context.Context, dbPath string, n int, w io.Writer) error {
	if dbPath == "" {
		return fmt.Errorf("no history database configured, use --db")
	}

	store, err := history.Open(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	records, err := store.Recent(ctx, n)
	if err != nil {
		return err
	}

	if len(records) == 0 {
		fmt.Fprintln(w, "No translations recorded yet.")
		return nil
	}

	for _, rec := range records {
		fmt.Fprintf(w, "%s  %-40s  %s  (hits: %d)\n",
			rec.CreatedAt.Local().Format("2006-01-02 15:04:05"),
			internal.Truncate(rec.Query, 40),
			rec.Output,
			rec.Hits)
	}
	return nil
}
