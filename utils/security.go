// Package utils provides input sanitization for the storefront search box.
package utils

import (
	"context"
	"strings"
	"unicode"
)

// SecurityConfig holds the sanitization policy for search box input.
type SecurityConfig struct {
	// MaxQueryLength defines the maximum allowed length for search queries
	MaxQueryLength int

	// StripHTMLTags enables removal of HTML tags from queries
	StripHTMLTags bool

	// NormalizeWhitespace enables whitespace normalization (tabs, newlines, excessive spaces)
	NormalizeWhitespace bool
}

const (
	// DefaultMaxQueryLength is the default maximum query length
	DefaultMaxQueryLength = 512
)

// DefaultSecurityConfig returns the default sanitization policy.
func DefaultSecurityConfig() *SecurityConfig {
	return &SecurityConfig{
		MaxQueryLength:      DefaultMaxQueryLength,
		StripHTMLTags:       true,
		NormalizeWhitespace: true,
	}
}

// QuerySanitizer cleans free-text queries before they are stored in a
// session and sent to the search engine. Output escaping happens in the
// templates; this only removes markup and invisible characters.
type QuerySanitizer struct {
	config *SecurityConfig
}

// NewQuerySanitizer creates a new query sanitizer
func NewQuerySanitizer(config *SecurityConfig) *QuerySanitizer {
	if config == nil {
		config = DefaultSecurityConfig()
	}
	return &QuerySanitizer{config: config}
}

// SanitizeQuery removes zero-width characters, HTML tags and redundant
// whitespace, then truncates to MaxQueryLength runes.
func (s *QuerySanitizer) SanitizeQuery(ctx context.Context, query string) string {
	if query == "" {
		return ""
	}

	query = s.removeZeroWidthChars(query)

	if s.config.StripHTMLTags {
		query = s.stripHTMLTags(query)
	}

	if s.config.NormalizeWhitespace {
		query = s.normalizeWhitespace(query)
	}

	if runes := []rune(query); s.config.MaxQueryLength > 0 && len(runes) > s.config.MaxQueryLength {
		query = strings.TrimSpace(string(runes[:s.config.MaxQueryLength]))
	}

	return query
}

// stripHTMLTags removes HTML tags from the query
func (s *QuerySanitizer) stripHTMLTags(input string) string {
	// Remove script tags and their content
	for {
		start := strings.Index(strings.ToLower(input), "<script")
		if start == -1 {
			break
		}
		end := strings.Index(strings.ToLower(input[start:]), "</script>")
		if end == -1 {
			// No closing tag, remove from start to end
			input = input[:start]
			break
		}
		end += start + len("</script>")
		input = input[:start] + input[end:]
	}

	// Remove any remaining HTML tags
	for {
		start := strings.Index(input, "<")
		if start == -1 {
			break
		}
		end := strings.Index(input[start:], ">")
		if end == -1 {
			input = input[:start]
			break
		}
		end += start + 1
		input = input[:start] + input[end:]
	}

	return input
}

// normalizeWhitespace collapses runs of whitespace and control characters into single spaces.
func (s *QuerySanitizer) normalizeWhitespace(input string) string {
	input = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return ' '
		}
		return r
	}, input)
	return strings.Join(strings.Fields(input), " ")
}

var zeroWidthChars = []string{
	"\u200B", // Zero width space
	"\u200C", // Zero width non-joiner
	"\u200D", // Zero width joiner
	"\uFEFF", // Zero width no-break space (BOM)
	"\u200E", // Left-to-right mark
	"\u200F", // Right-to-left mark
}

func (s *QuerySanitizer) removeZeroWidthChars(input string) string {
	for _, char := range zeroWidthChars {
		input = strings.ReplaceAll(input, char, "")
	}
	return input
}
