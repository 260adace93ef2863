// Package textutil provides the small text helpers shared across vinyl:
// filename sanitization for download destinations and case-folded matching
// for track search.
package textutil

import (
	"strings"

	"golang.org/x/text/cases"
)

// fileNameReplacer replaces filesystem-unsafe characters with safe alternatives.
var fileNameReplacer = strings.NewReplacer(
	"/", "-",
	"\\", "-",
	":", "-",
	"*", "-",
	"?", "",
	"\"", "",
	"<", "",
	">", "",
	"|", "",
)

// SanitizeFileName replaces filesystem-unsafe characters in a filename.
// Slashes, backslashes, colons, and asterisks become dashes; other unsafe
// characters are removed. The result is trimmed of leading/trailing
// whitespace.
func SanitizeFileName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	return strings.TrimSpace(fileNameReplacer.Replace(name))
}

// Fold lowercases s using full Unicode case folding for caseless matching.
func Fold(s string) string {
	return cases.Fold().String(s)
}

// ContainsFold reports whether s contains substr under Unicode case folding.
// Every string contains the empty string.
func ContainsFold(s, substr string) bool {
	if substr == "" {
		return true
	}
	return strings.Contains(Fold(s), Fold(substr))
}
