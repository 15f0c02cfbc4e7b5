package helpers

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultFilename replaces a missing or fully stripped client filename.
const DefaultFilename = "file.bin"

const (
	maxFilenameBytes = 200
	// longer client names are cut before filtering
	maxRawFilenameBytes = 4 << 10
)

// SanitizeFilename reduces an untrusted client filename to a single safe path element.
// Directory components, control characters and characters reserved on common filesystems are removed.
func SanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	if len(name) > maxRawFilenameBytes {
		name = name[:maxRawFilenameBytes]
	}

	var b strings.Builder
	for _, r := range name {
		if unicode.IsControl(r) || r == unicode.ReplacementChar {
			continue
		}
		switch r {
		case '<', '>', ':', '"', '|', '?', '*':
			continue
		}
		b.WriteRune(r)
	}

	out := strings.Trim(b.String(), " .")
	if len(out) > maxFilenameBytes {
		out = strings.TrimRight(truncateRunes(out, maxFilenameBytes), " .")
	}
	if isReservedName(out) {
		return ""
	}
	return out
}

// truncateRunes cuts s at the last rune boundary at or below max bytes.
func truncateRunes(s string, max int) string {
	cut := 0
	for i, r := range s {
		if i+utf8.RuneLen(r) > max {
			break
		}
		cut = i + utf8.RuneLen(r)
	}
	return s[:cut]
}

// isReservedName reports device names that cannot be used as files on Windows.
func isReservedName(name string) bool {
	base := strings.ToUpper(name)
	if i := strings.IndexByte(base, '.'); i >= 0 {
		base = base[:i]
	}
	switch base {
	case "CON", "PRN", "AUX", "NUL":
		return true
	}
	if len(base) == 4 && (strings.HasPrefix(base, "COM") || strings.HasPrefix(base, "LPT")) {
		return base[3] >= '1' && base[3] <= '9'
	}
	return false
}
