package archive

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"codeberg.org/snonux/tamildecl/internal/testutil"
)

func TestArchiveHistory(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "history.db")
	testutil.CreateTestFile(t, dbPath, []byte("sqlite"))
	testutil.CreateTestFile(t, dbPath+"-wal", []byte("wal"))

	archived, err := ArchiveHistory(dbPath)
	if err != nil {
		t.Fatalf("ArchiveHistory failed: %v", err)
	}

	testutil.AssertFileNotExists(t, dbPath)
	testutil.AssertFileNotExists(t, dbPath+"-wal")
	testutil.AssertFileExists(t, archived+"-wal")
	testutil.AssertFileContains(t, archived, "sqlite")

	if filepath.Dir(archived) != filepath.Join(tmpDir, "archive") {
		t.Errorf("Archive placed in unexpected directory: %s", archived)
	}

	name := filepath.Base(archived)
	if !strings.HasPrefix(name, "history-") || !strings.HasSuffix(name, ".db") {
		t.Errorf("Unexpected archive name: %s", name)
	}

	stamp := strings.TrimSuffix(strings.TrimPrefix(name, "history-"), ".db")
	if _, err := time.Parse("20060102-150405", stamp); err != nil {
		t.Errorf("Archive name has invalid timestamp %q: %v", stamp, err)
	}
}

func TestArchiveHistory_SameSecond(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "history.db")

	testutil.CreateTestFile(t, dbPath, []byte("one"))
	first, err := ArchiveHistory(dbPath)
	if err != nil {
		t.Fatal(err)
	}

	testutil.CreateTestFile(t, dbPath, []byte("two"))
	second, err := ArchiveHistory(dbPath)
	if err != nil {
		t.Fatal(err)
	}

	if first == second {
		t.Error("Expected distinct archive paths")
	}
	entries, err := os.ReadDir(filepath.Join(tmpDir, "archive"))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Errorf("Expected 2 archives, got %d", len(entries))
	}
}

func TestArchiveHistory_Missing(t *testing.T) {
	_, err := ArchiveHistory(filepath.Join(t.TempDir(), "missing.db"))
	if err == nil || !strings.Contains(err.Error(), "does not exist") {
		t.Errorf("Expected missing database error, got %v", err)
	}
}
