package domain

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	MaxQueryLength        = 512
	MaxRefinedAttributes  = 10
	MaxValuesPerAttribute = 20
	MaxRefinementLength   = 100
)

var (
	attributeNameRegex   = regexp.MustCompile(`^[A-Za-z0-9_.]+$`)
	refinementValueRegex = regexp.MustCompile(`^[\p{L}\p{N}\s\-_.,&'/()+]+$`)
)

// ValidateQuery validates the free-text search box input.
func ValidateQuery(query string) error {
	if n := utf8.RuneCountInString(query); n > MaxQueryLength {
		return &ValidationError{Field: "q", Reason: fmt.Sprintf("maximum %d characters, got %d", MaxQueryLength, n)}
	}
	for _, r := range query {
		if unicode.IsControl(r) {
			return &ValidationError{Field: "q", Reason: "control characters not allowed"}
		}
	}
	return nil
}

// ValidateRefinement validates one facet refinement before it reaches a filter expression.
func ValidateRefinement(attribute, value string) error {
	if !attributeNameRegex.MatchString(attribute) {
		return &ValidationError{Field: "attribute", Reason: fmt.Sprintf("invalid attribute name: %q", attribute)}
	}

	if strings.TrimSpace(value) == "" {
		return &ValidationError{Field: attribute, Reason: "empty or whitespace-only value not allowed"}
	}

	if len(value) > MaxRefinementLength {
		return &ValidationError{Field: attribute, Reason: fmt.Sprintf("value too long: maximum %d characters, got %d", MaxRefinementLength, len(value))}
	}

	if !refinementValueRegex.MatchString(value) {
		return &ValidationError{Field: attribute, Reason: fmt.Sprintf("invalid characters in value: %s", value)}
	}

	for _, r := range value {
		if unicode.IsControl(r) {
			return &ValidationError{Field: attribute, Reason: fmt.Sprintf("control characters not allowed in value: %s", value)}
		}
	}

	return nil
}

// ValidateRefinements validates all refinements of a session.
func ValidateRefinements(refinements map[string][]string) error {
	if len(refinements) > MaxRefinedAttributes {
		return &ValidationError{Field: "refinements", Reason: fmt.Sprintf("too many refined attributes: maximum %d allowed, got %d", MaxRefinedAttributes, len(refinements))}
	}

	for attribute, values := range refinements {
		if len(values) > MaxValuesPerAttribute {
			return &ValidationError{Field: attribute, Reason: fmt.Sprintf("too many values: maximum %d allowed, got %d", MaxValuesPerAttribute, len(values))}
		}
		for _, v := range values {
			if err := ValidateRefinement(attribute, v); err != nil {
				return err
			}
		}
	}

	return nil
}
