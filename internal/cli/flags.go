package cli

import "time"

// Flags holds all command-line flag values
type Flags struct {
	// General flags
	CfgFile    string
	LogLevel   string
	LogFile    string
	BatchFile  string
	History    int
	Archive    bool
	ListModels bool

	// Server flags
	Addr string

	// Explainer flags
	ExplainerPath    string
	ExplainerTimeout time.Duration

	// Cache flags
	CacheSize uint64
	CacheTTL  time.Duration
	HistoryDB string

	// Transliteration flags
	Provider        string
	Fallback        string
	TranslitTimeout time.Duration
	TranslitRPM     int
	OpenAIModel     string
	GeminiModel     string
}

// NewFlags creates a new Flags instance with default values
func NewFlags() *Flags {
	return &Flags{
		LogLevel:         "info",
		Addr:             "127.0.0.1:5000",
		ExplainerPath:    "c++decl",
		ExplainerTimeout: 10 * time.Second,
		CacheSize:        1000,
		Provider:         "google",
		TranslitTimeout:  10 * time.Second,
		TranslitRPM:      120,
		OpenAIModel:      "gpt-4o-mini",
		GeminiModel:      "gemini-2.0-flash",
	}
}
