package explain

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"codeberg.org/snonux/tamildecl/internal/testutil"
)

func TestSplitLines(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"empty", "", nil},
		{"single line", "declare x as int", []string{"declare x as int"}},
		{"trailing newline", "a\nb\n", []string{"a", "b"}},
		{"crlf", "a\r\nb\r\n", []string{"a", "b"}},
		{"blank lines kept", "\nsyntax error\n\nx", []string{"", "syntax error", "", "x"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SplitLines(tt.in); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SplitLines(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestCheckInstalled(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	testutil.WriteExplainer(t, dir, "c++decl", "cat")
	if err := os.Mkdir(filepath.Join(dir, "subdir"), 0755); err != nil {
		t.Fatal(err)
	}

	path, err := CheckInstalled("c++decl")
	if err != nil {
		t.Fatalf("CheckInstalled failed: %v", err)
	}
	if !filepath.IsAbs(path) {
		t.Errorf("Expected absolute path, got %s", path)
	}

	for _, missing := range []string{"", "nope", "subdir"} {
		if _, err := CheckInstalled(missing); !errors.Is(err, ErrNotFound) {
			t.Errorf("CheckInstalled(%q) error = %v, want ErrNotFound", missing, err)
		}
	}
}

func TestNew_MissingExecutable(t *testing.T) {
	t.Chdir(t.TempDir())

	_, err := New(&Config{Path: "c++decl"})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestRun_FeedsStdin(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteExplainer(t, dir, "echo-decl", "cat")

	r, err := New(&Config{Path: path})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	lines := []string{"int x", "explain int x;", "declare int x;"}
	got, err := r.Run(context.Background(), lines)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if !reflect.DeepEqual(got, lines) {
		t.Errorf("Run() = %q, want %q", got, lines)
	}
}

func TestRun_NonZeroExit(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteExplainer(t, dir, "fail-decl", "echo 'bad input' >&2\nexit 3")

	r, err := New(&Config{Path: path})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	_, err = r.Run(context.Background(), []string{"int x"})
	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("Expected *ExitError, got %v", err)
	}
	if exitErr.Code != 3 {
		t.Errorf("Expected exit code 3, got %d", exitErr.Code)
	}
	if exitErr.Stderr != "bad input" {
		t.Errorf("Expected stderr 'bad input', got %q", exitErr.Stderr)
	}
}

func TestRun_RemovedAfterStartup(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteExplainer(t, dir, "gone-decl", "cat")

	r, err := New(&Config{Path: path})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if err := os.Remove(path); err != nil {
		t.Fatal(err)
	}

	_, err = r.Run(context.Background(), []string{"int x"})
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestRun_Timeout(t *testing.T) {
	dir := t.TempDir()
	path := testutil.WriteExplainer(t, dir, "slow-decl", "exec sleep 5")

	r, err := New(&Config{Path: path, Timeout: 100 * time.Millisecond})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	start := time.Now()
	_, err = r.Run(context.Background(), []string{"int x"})
	if err == nil || !strings.Contains(err.Error(), "timed out") {
		t.Errorf("Expected timeout error, got %v", err)
	}
	if time.Since(start) > 3*time.Second {
		t.Error("Run did not honour the timeout")
	}
}
