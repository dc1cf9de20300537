package batch

import (
	"fmt"
	"os"
	"strings"
)

// ReadBatchFile reads declaration queries from a file, one per line.
// Blank lines and lines starting with '#' are skipped; surrounding
// whitespace is trimmed.
func ReadBatchFile(filename string) ([]string, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read batch file: %w", err)
	}

	return ParseQueries(string(content)), nil
}

// ParseQueries splits batch content into queries
func ParseQueries(content string) []string {
	var queries []string

	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		queries = append(queries, line)
	}

	return queries
}
