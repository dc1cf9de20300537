package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"codeberg.org/snonux/tamildecl/internal"
)

// flagKeys maps flag names to their viper configuration keys
var flagKeys = map[string]string{
	"log-level":         "log.level",
	"log-file":          "log.file",
	"addr":              "server.addr",
	"explainer":         "explainer.path",
	"explainer-timeout": "explainer.timeout",
	"cache-size":        "cache.size",
	"cache-ttl":         "cache.ttl",
	"db":                "history.db",
	"provider":          "transliterate.provider",
	"fallback":          "transliterate.fallback",
	"translit-timeout":  "transliterate.timeout",
	"translit-rpm":      "transliterate.rpm",
	"openai-model":      "transliterate.openai_model",
	"gemini-model":      "transliterate.gemini_model",
}

// envKeyReplacer maps config keys to environment names, server.addr -> SERVER_ADDR
var envKeyReplacer = strings.NewReplacer(".", "_", "-", "_")

// CreateRootCommand creates and configures the root cobra command
func CreateRootCommand(flags *Flags) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "tamildecl [declaration]",
		Short: "Explain C declarations in Tamil",
		Long: `tamildecl explains C declarations in Tamil.

It runs each declaration through a cdecl-style explainer and transliterates
the English explanation into Tamil script.

Examples:
  tamildecl                          # Serve the web form on 127.0.0.1:5000 (default)
  tamildecl "char *(*fp)(int)"       # Explain one declaration
  tamildecl --batch decls.txt        # Explain declarations from a file
  tamildecl --db history.db --history 20`,
		Args:          cobra.MaximumNArgs(1),
		Version:       internal.Version,
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	// Set up flags
	setupFlags(rootCmd, flags)

	return rootCmd
}

func setupFlags(cmd *cobra.Command, flags *Flags) {
	// Global flags
	cmd.PersistentFlags().StringVar(&flags.CfgFile, "config", "", "config file (default is $HOME/.tamildecl.yaml)")
	cmd.PersistentFlags().StringVar(&flags.LogLevel, "log-level", flags.LogLevel, "Log level: debug, info, warn, error")
	cmd.PersistentFlags().StringVar(&flags.LogFile, "log-file", "", "Append logs to this file instead of stderr")

	// Local flags
	cmd.Flags().StringVar(&flags.BatchFile, "batch", "", "Explain declarations from file (one per line)")
	cmd.Flags().IntVar(&flags.History, "history", 0, "Print the N most recent translations from the history database")
	cmd.Flags().BoolVar(&flags.Archive, "archive", false, "Move the history database into its archive directory")
	cmd.Flags().BoolVar(&flags.ListModels, "list-models", false, "List OpenAI chat models for the current API key")

	// Server flags
	cmd.Flags().StringVar(&flags.Addr, "addr", flags.Addr, "HTTP listen address")

	// Explainer flags
	cmd.Flags().StringVar(&flags.ExplainerPath, "explainer", flags.ExplainerPath, "Declaration explainer executable, relative to the working directory")
	cmd.Flags().DurationVar(&flags.ExplainerTimeout, "explainer-timeout", flags.ExplainerTimeout, "Timeout for one explainer run")

	// Cache flags
	cmd.Flags().Uint64Var(&flags.CacheSize, "cache-size", flags.CacheSize, "Maximum number of memoized translations")
	cmd.Flags().DurationVar(&flags.CacheTTL, "cache-ttl", 0, "Expire memoized translations after this long (0 keeps them until evicted)")
	cmd.Flags().StringVar(&flags.HistoryDB, "db", "", "SQLite history database (empty disables history)")

	// Transliteration flags
	cmd.Flags().StringVar(&flags.Provider, "provider", flags.Provider, "Transliteration provider: google, openai, gemini")
	cmd.Flags().StringVar(&flags.Fallback, "fallback", "", "Fallback transliteration provider: google, openai, gemini")
	cmd.Flags().DurationVar(&flags.TranslitTimeout, "translit-timeout", flags.TranslitTimeout, "Timeout for one transliteration request")
	cmd.Flags().IntVar(&flags.TranslitRPM, "translit-rpm", flags.TranslitRPM, "Maximum transliteration requests per minute (google)")
	cmd.Flags().StringVar(&flags.OpenAIModel, "openai-model", flags.OpenAIModel, "OpenAI chat model for --provider openai")
	cmd.Flags().StringVar(&flags.GeminiModel, "gemini-model", flags.GeminiModel, "Gemini model for --provider gemini")

	// Bind flags to viper
	bindFlagsToViper(cmd)
}

func bindFlagsToViper(cmd *cobra.Command) {
	for name, key := range flagKeys {
		flag := cmd.Flags().Lookup(name)
		if flag == nil {
			flag = cmd.PersistentFlags().Lookup(name)
		}
		if flag != nil {
			viper.BindPFlag(key, flag)
		}
	}
}

// InitConfig initializes viper configuration
func InitConfig(cfgFile string) {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error getting home directory: %v\n", err)
			return
		}

		// Search config in home directory with name ".tamildecl" (without extension)
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".tamildecl")
	}

	// Environment variables, e.g. TAMILDECL_SERVER_ADDR
	viper.SetEnvPrefix("TAMILDECL")
	viper.SetEnvKeyReplacer(envKeyReplacer)
	viper.AutomaticEnv()

	// Read config file
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// ResolveFlags fills flags from viper, so config file and environment values
// apply wherever a flag was not given explicitly.
func ResolveFlags(flags *Flags) {
	flags.LogLevel = viper.GetString("log.level")
	flags.LogFile = viper.GetString("log.file")
	flags.Addr = viper.GetString("server.addr")
	flags.ExplainerPath = viper.GetString("explainer.path")
	flags.ExplainerTimeout = viper.GetDuration("explainer.timeout")
	flags.CacheSize = viper.GetUint64("cache.size")
	flags.CacheTTL = viper.GetDuration("cache.ttl")
	flags.HistoryDB = viper.GetString("history.db")
	flags.Provider = viper.GetString("transliterate.provider")
	flags.Fallback = viper.GetString("transliterate.fallback")
	flags.TranslitTimeout = viper.GetDuration("transliterate.timeout")
	flags.TranslitRPM = viper.GetInt("transliterate.rpm")
	flags.OpenAIModel = viper.GetString("transliterate.openai_model")
	flags.GeminiModel = viper.GetString("transliterate.gemini_model")
}

// GetOpenAIKey retrieves the OpenAI API key from environment or config
func GetOpenAIKey() string {
	// First check environment variable
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		return key
	}

	// Then check config file
	return viper.GetString("transliterate.openai_key")
}

// GetGeminiKey retrieves the Gemini API key from environment or config
func GetGeminiKey() string {
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		return key
	}
	return viper.GetString("transliterate.gemini_key")
}
