package explain

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// ErrNotFound is returned when the explainer executable cannot be located
var ErrNotFound = errors.New("explainer executable not found")

// ExitError reports a non-zero exit status of the explainer
type ExitError struct {
	Code   int
	Stderr string
}

func (e *ExitError) Error() string {
	if e.Stderr == "" {
		return fmt.Sprintf("explainer exited with status %d", e.Code)
	}
	return fmt.Sprintf("explainer exited with status %d: %s", e.Code, e.Stderr)
}

// Config holds configuration for the declaration explainer
type Config struct {
	Path    string        // Executable path, relative paths resolve against the working directory
	Timeout time.Duration // Applied when the caller's context carries no deadline
}

// DefaultConfig returns the default explainer configuration
func DefaultConfig() *Config {
	return &Config{
		Path:    "c++decl",
		Timeout: 10 * time.Second,
	}
}

// Runner invokes the external declaration explainer, one process per call
type Runner struct {
	path    string
	timeout time.Duration
}

// New creates a Runner after verifying the executable exists
func New(config *Config) (*Runner, error) {
	if config == nil {
		config = DefaultConfig()
	}

	path, err := CheckInstalled(config.Path)
	if err != nil {
		return nil, err
	}

	timeout := config.Timeout
	if timeout <= 0 {
		timeout = DefaultConfig().Timeout
	}

	return &Runner{path: path, timeout: timeout}, nil
}

// Path returns the absolute executable path
func (r *Runner) Path() string {
	return r.path
}

// Run feeds lines, newline-joined, to the explainer's stdin and returns its
// stdout split into lines.
func (r *Runner) Run(ctx context.Context, lines []string) ([]string, error) {
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, r.path)
	cmd.Stdin = strings.NewReader(strings.Join(lines, "\n"))

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	if ctx.Err() != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("explainer timed out: %w", ctx.Err())
		}
		return nil, fmt.Errorf("explainer cancelled: %w", ctx.Err())
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return nil, &ExitError{
				Code:   exitErr.ExitCode(),
				Stderr: strings.TrimSpace(stderr.String()),
			}
		}
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, exec.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, r.path)
		}
		return nil, fmt.Errorf("failed to run explainer: %w", err)
	}

	return SplitLines(stdout.String()), nil
}

// SplitLines splits explainer output on newlines, tolerating CRLF.
// A trailing newline does not produce an empty final line.
func SplitLines(s string) []string {
	if s == "" {
		return nil
	}
	s = strings.TrimSuffix(s, "\n")
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}

// CheckInstalled resolves path against the working directory and verifies it
// names a regular file.
func CheckInstalled(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("%w: empty path", ErrNotFound)
	}

	abs := path
	if !filepath.IsAbs(path) {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("failed to get working directory: %w", err)
		}
		abs = filepath.Join(wd, path)
	}

	info, err := os.Stat(abs)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, abs)
		}
		return "", fmt.Errorf("failed to stat explainer: %w", err)
	}
	if !info.Mode().IsRegular() {
		return "", fmt.Errorf("%w: %s is not a regular file", ErrNotFound, abs)
	}

	return abs, nil
}
