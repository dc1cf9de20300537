package internal

import (
	"crypto/md5"
	"encoding/hex"
	"strings"
)

// Version is the tamildecl release version
const Version = "0.3.0"

// QueryID derives a stable identifier for a declaration query.
// Format: md5(query)[:16]
func QueryID(query string) string {
	hash := md5.Sum([]byte(query))
	return hex.EncodeToString(hash[:])[:16]
}

// Truncate shortens s to at most n runes for log output
func Truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return strings.TrimSpace(string(runes[:n])) + "…"
}
