package domain

// SearchQuery is one request to the hosted search engine.
type SearchQuery struct {
	Query       string
	Refinements map[string][]string
	// NumericFilters restricts numeric attributes; open bounds add no filter.
	NumericFilters map[string]Selection
	Facets         []string
	Page           int
	HitsPerPage    int
}

// FacetValue is one value of a facet with its hit count.
type FacetValue struct {
	Value string
	Count int64
}

// SearchResult is the engine's answer to a SearchQuery.
type SearchResult struct {
	Hits              []Product
	TotalHits         int64
	TotalPages        int64
	Page              int64
	HitsPerPage       int64
	ProcessingTimeMs  int64
	FacetDistribution map[string][]FacetValue
	FacetStats        map[string]NumericDomain
}
