package util

import (
	"strings"
	"unicode"

	"github.com/google/uuid"
)

// ShortIDLength is the number of id characters shown after the prefix in
// listings. Longer prefixes are still accepted when resolving ids.
const ShortIDLength = 8

// NewID returns an identifier in the format <prefix>-<uuid>, using a random
// (version 4) UUID.
func NewID(prefix string) string {
	return prefix + "-" + uuid.NewString()
}

// ShortID trims an id produced by NewID for display, keeping the prefix.
// Ids that don't follow the format are returned as-is.
func ShortID(id string) string {
	prefix, rest, ok := strings.Cut(id, "-")
	if !ok || len(rest) <= ShortIDLength {
		return id
	}
	return prefix + "-" + rest[:ShortIDLength]
}

// NormalizeTag converts a tag to kebab-case.
// It lowercases the string, replaces spaces and underscores with hyphens,
// removes non-alphanumeric characters (except hyphens), collapses multiple
// consecutive hyphens, and trims leading/trailing hyphens.
func NormalizeTag(s string) string {
	var result strings.Builder

	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			result.WriteRune(unicode.ToLower(r))
		} else if r == ' ' || r == '_' || r == '-' {
			result.WriteRune('-')
		}
		// Other characters are dropped
	}

	// Collapse multiple consecutive hyphens
	str := result.String()
	for strings.Contains(str, "--") {
		str = strings.ReplaceAll(str, "--", "-")
	}

	return strings.Trim(str, "-")
}

// ParseTags splits a comma separated list into normalized tags, dropping
// empty entries. Duplicates are kept.
func ParseTags(s string) []string {
	tags := []string{}
	for _, part := range strings.Split(s, ",") {
		if tag := NormalizeTag(part); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}
