package textutil

import (
	"strings"
	"unicode"
)

// SanitizeFileName turns name into a single path element. Separators, colons
// and asterisks become dashes, other characters that are unsafe on common
// filesystems are dropped, runs of dashes collapse, and leading or trailing
// dashes, dots and spaces are trimmed. An absolute path such as
// "/srv/out/links.csv" becomes "srv-out-links.csv".
func SanitizeFileName(name string) string {
	mapped := strings.Map(func(r rune) rune {
		switch {
		case r == '/' || r == '\\' || r == ':' || r == '*':
			return '-'
		case r == '?' || r == '"' || r == '<' || r == '>' || r == '|' || unicode.IsControl(r):
			return -1
		}
		return r
	}, name)
	for strings.Contains(mapped, "--") {
		mapped = strings.ReplaceAll(mapped, "--", "-")
	}
	return strings.Trim(mapped, "-. ")
}

// SanitizeIdentifier converts value to a lower-case SQL identifier made of
// ASCII letters, digits and underscores. Other characters become underscores,
// surrounding underscores are trimmed, and a leading digit gets a "t_"
// prefix. Input with nothing usable yields fallback.
func SanitizeIdentifier(value, fallback string) string {
	ident := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r >= 'A' && r <= 'Z':
			return unicode.ToLower(r)
		}
		return '_'
	}, strings.TrimSpace(value))
	ident = strings.Trim(ident, "_")
	switch {
	case ident == "":
		return fallback
	case ident[0] >= '0' && ident[0] <= '9':
		return "t_" + ident
	}
	return ident
}
