package server

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"codeberg.org/snonux/tamildecl/internal"
	"codeberg.org/snonux/tamildecl/internal/translation"
)

//go:embed web
var webFS embed.FS

const (
	maxFormBytes      = 64 << 10
	internalErrorText = "Internal server error occurred."
)

// Translator explains a declaration query in Tamil
type Translator interface {
	Translate(ctx context.Context, query string) string
}

// Transliterator renders English text in Tamil script
type Transliterator interface {
	Text(ctx context.Context, text string) string
}

// Config holds HTTP server settings
type Config struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// DefaultConfig returns the default server configuration
func DefaultConfig() *Config {
	return &Config{
		Addr:            "127.0.0.1:5000",
		ReadTimeout:     10 * time.Second,
		WriteTimeout:    60 * time.Second,
		ShutdownTimeout: 10 * time.Second,
	}
}

// Server is the web front-end for the translator
type Server struct {
	config     *Config
	translator Translator
	translit   Transliterator
	index      *template.Template
	static     http.Handler
}

// New creates a server. config may be nil.
func New(translator Translator, translit Transliterator, config *Config) (*Server, error) {
	if config == nil {
		config = DefaultConfig()
	}

	index, err := template.ParseFS(webFS, "web/index.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse index template: %w", err)
	}

	staticFS, err := fs.Sub(webFS, "web/static")
	if err != nil {
		return nil, fmt.Errorf("failed to open static assets: %w", err)
	}

	return &Server{
		config:     config,
		translator: translator,
		translit:   translit,
		index:      index,
		static:     http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))),
	}, nil
}

// Handler returns the HTTP routes
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("POST /{$}", s.handleQuery)
	mux.Handle("GET /static/", s.static)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		fmt.Fprintln(w, "ok")
	})
	return recoverer(mux)
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.config.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: s.config.ReadTimeout,
		ReadTimeout:       s.config.ReadTimeout,
		WriteTimeout:      s.config.WriteTimeout,
		IdleTimeout:       2 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", "addr", s.config.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	return nil
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	data := struct {
		Title   string
		Version string
	}{
		Title:   "C declarations in Tamil",
		Version: internal.Version,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.index.Execute(w, data); err != nil {
		log.Error("failed to render index", "err", err)
	}
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := parseForm(r); err != nil {
		log.Warn("bad form submission", "err", err)
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": s.translit.Text(ctx, translation.InvalidInput),
		})
		return
	}

	query := strings.TrimSpace(r.PostFormValue("query"))
	if query == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": s.translit.Text(ctx, translation.InvalidInput),
		})
		return
	}

	if strings.ToLower(query) == "help" {
		writeJSON(w, http.StatusOK, map[string]string{
			"output": translation.Help(ctx, s.translit),
		})
		return
	}

	start := time.Now()
	output := s.translator.Translate(ctx, query)
	log.Debug("translated", "query", internal.Truncate(query, 40), "took", time.Since(start))

	writeJSON(w, http.StatusOK, map[string]string{"output": output})
}

// parseForm accepts both urlencoded and multipart form bodies
func parseForm(r *http.Request) error {
	if err := r.ParseForm(); err != nil {
		return err
	}
	if err := r.ParseMultipartForm(maxFormBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return err
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error("failed to write response", "err", err)
	}
}

// recoverer turns a panic in a handler into a 500 JSON error
func recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				log.Error("Unhandled exception", "panic", rec, "method", r.Method, "path", r.URL.Path)
				writeJSON(w, http.StatusInternalServerError, map[string]string{"error": internalErrorText})
			}
		}()
		next.ServeHTTP(w, r)
	})
}
