package archive

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ArchiveHistory moves the history database into an archive directory next to
// it, suffixed with a timestamp, and returns the new path.
func ArchiveHistory(dbPath string) (string, error) {
	info, err := os.Stat(dbPath)
	if os.IsNotExist(err) {
		return "", fmt.Errorf("history database does not exist: %s", dbPath)
	}
	if err != nil {
		return "", fmt.Errorf("failed to stat history database: %w", err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("history database is a directory: %s", dbPath)
	}

	archiveDir := filepath.Join(filepath.Dir(dbPath), "archive")
	if err := os.MkdirAll(archiveDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create archive directory: %w", err)
	}

	ext := filepath.Ext(dbPath)
	base := strings.TrimSuffix(filepath.Base(dbPath), ext)

	timestamp := time.Now().Format("20060102-150405")
	archivePath := filepath.Join(archiveDir, fmt.Sprintf("%s-%s%s", base, timestamp, ext))

	// Add microseconds if an archive from the same second exists
	if _, err := os.Stat(archivePath); err == nil {
		timestamp = time.Now().Format("20060102-150405.000000")
		archivePath = filepath.Join(archiveDir, fmt.Sprintf("%s-%s%s", base, timestamp, ext))
	}

	if err := os.Rename(dbPath, archivePath); err != nil {
		return "", fmt.Errorf("failed to archive history database: %w", err)
	}

	// SQLite side files follow the database when present
	for _, suffix := range []string{"-wal", "-shm"} {
		if _, err := os.Stat(dbPath + suffix); err == nil {
			if err := os.Rename(dbPath+suffix, archivePath+suffix); err != nil {
				return "", fmt.Errorf("failed to archive %s file: %w", suffix, err)
			}
		}
	}

	return archivePath, nil
}
