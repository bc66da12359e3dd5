package driver

import (
	"encoding/json"
	"errors"
	"strconv"
)

// ErrKeyNotFound is returned by session drivers for missing or expired keys.
var ErrKeyNotFound = errors.New("key not found")

// ProductDocument represents a product document in the search engine
type ProductDocument struct {
	ID          DocumentID `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Brand       string     `json:"brand"`
	Type        string     `json:"type"`
	Categories  []string   `json:"categories"`
	Price       float64    `json:"price"`
	Rating      int        `json:"rating"`
	Image       string     `json:"image"`
}

// DocumentID accepts both string and numeric primary keys.
type DocumentID string

func (id *DocumentID) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*id = DocumentID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*id = DocumentID(n.String())
	return nil
}

// ProductRow represents a product from the catalog database
type ProductRow struct {
	ID          string
	Name        string
	Description string
	Brand       string
	Type        string
	Categories  []string
	Price       float64
	Rating      int
	Image       string
}

// NumericRange restricts a numeric attribute; nil ends are unbounded.
type NumericRange struct {
	Attribute string
	Min       *float64
	Max       *float64
}

// SearchParams is one search request in driver terms.
type SearchParams struct {
	Query         string
	Refinements   map[string][]string
	NumericRanges []NumericRange
	Facets        []string
	Page          int64
	HitsPerPage   int64
}

// FacetStat is the min/max of a numeric facet.
type FacetStat struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// SearchResponseDriver is the decoded search engine response.
type SearchResponseDriver struct {
	Hits               []ProductDocument           `json:"hits"`
	FacetDistribution  map[string]map[string]int64 `json:"facetDistribution"`
	FacetStats         map[string]FacetStat        `json:"facetStats"`
	TotalHits          int64                       `json:"totalHits"`
	TotalPages         int64                       `json:"totalPages"`
	Page               int64                       `json:"page"`
	HitsPerPage        int64                       `json:"hitsPerPage"`
	EstimatedTotalHits int64                       `json:"estimatedTotalHits"`
	ProcessingTimeMs   int64                       `json:"processingTimeMs"`
}

// DriverError represents an error from the driver layer
type DriverError struct {
	Op  string
	Err string
}

func (e *DriverError) Error() string {
	return e.Op + ": " + e.Err
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
