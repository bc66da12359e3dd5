package driver

import (
	"fmt"
	"sort"
	"strings"
)

// escapeMeilisearchValue escapes special characters in Meilisearch filter values.
func escapeMeilisearchValue(value string) string {
	value = strings.ReplaceAll(value, "\\", "\\\\")
	value = strings.ReplaceAll(value, "\"", "\\\"")
	return value
}

// makeRefinementFilter ORs the values of one attribute and ANDs across
// attributes. Attributes are emitted in sorted order.
func makeRefinementFilter(refinements map[string][]string) []string {
	attributes := make([]string, 0, len(refinements))
	for attribute, values := range refinements {
		if len(values) > 0 {
			attributes = append(attributes, attribute)
		}
	}
	sort.Strings(attributes)

	clauses := make([]string, 0, len(attributes))
	for _, attribute := range attributes {
		values := refinements[attribute]
		terms := make([]string, 0, len(values))
		for _, v := range values {
			terms = append(terms, fmt.Sprintf("%s = \"%s\"", attribute, escapeMeilisearchValue(v)))
		}
		if len(terms) == 1 {
			clauses = append(clauses, terms[0])
			continue
		}
		clauses = append(clauses, "("+strings.Join(terms, " OR ")+")")
	}

	return clauses
}

func makeNumericFilter(ranges []NumericRange) []string {
	var clauses []string
	for _, r := range ranges {
		if r.Min != nil {
			clauses = append(clauses, fmt.Sprintf("%s >= %s", r.Attribute, formatNumber(*r.Min)))
		}
		if r.Max != nil {
			clauses = append(clauses, fmt.Sprintf("%s <= %s", r.Attribute, formatNumber(*r.Max)))
		}
	}
	return clauses
}

// BuildSearchFilter creates a secure Meilisearch filter expression from search params.
func BuildSearchFilter(p SearchParams) string {
	clauses := makeRefinementFilter(p.Refinements)
	clauses = append(clauses, makeNumericFilter(p.NumericRanges)...)
	return strings.Join(clauses, " AND ")
}
