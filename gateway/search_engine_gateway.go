package gateway

import (
	"context"
	"sort"

	"search-storefront/domain"
	"search-storefront/driver"
)

type SearchDriver interface {
	Search(ctx context.Context, params driver.SearchParams) (*driver.SearchResponseDriver, error)
	IndexProducts(ctx context.Context, docs []driver.ProductDocument) error
	EnsureIndex(ctx context.Context) error
}

type SearchEngineGateway struct {
	driver SearchDriver
}

func NewSearchEngineGateway(driver SearchDriver) *SearchEngineGateway {
	return &SearchEngineGateway{
		driver: driver,
	}
}

func (g *SearchEngineGateway) Search(ctx context.Context, query domain.SearchQuery) (*domain.SearchResult, error) {
	resp, err := g.driver.Search(ctx, g.convertQuery(query))
	if err != nil {
		return nil, &domain.SearchEngineError{
			Op:  "Search",
			Err: err.Error(),
		}
	}

	return g.convertResponse(resp), nil
}

func (g *SearchEngineGateway) convertQuery(query domain.SearchQuery) driver.SearchParams {
	params := driver.SearchParams{
		Query:       query.Query,
		Refinements: query.Refinements,
		Facets:      query.Facets,
		Page:        int64(query.Page),
		HitsPerPage: int64(query.HitsPerPage),
	}

	attributes := make([]string, 0, len(query.NumericFilters))
	for attribute := range query.NumericFilters {
		attributes = append(attributes, attribute)
	}
	sort.Strings(attributes)

	for _, attribute := range attributes {
		sel := query.NumericFilters[attribute]
		r := driver.NumericRange{Attribute: attribute}
		if !sel.From.Open {
			v := sel.From.Value
			r.Min = &v
		}
		if !sel.To.Open {
			v := sel.To.Value
			r.Max = &v
		}
		if r.Min == nil && r.Max == nil {
			continue
		}
		params.NumericRanges = append(params.NumericRanges, r)
	}

	return params
}

func (g *SearchEngineGateway) convertResponse(resp *driver.SearchResponseDriver) *domain.SearchResult {
	result := &domain.SearchResult{
		Hits:              make([]domain.Product, len(resp.Hits)),
		TotalHits:         resp.TotalHits,
		TotalPages:        resp.TotalPages,
		Page:              resp.Page,
		HitsPerPage:       resp.HitsPerPage,
		ProcessingTimeMs:  resp.ProcessingTimeMs,
		FacetDistribution: make(map[string][]domain.FacetValue, len(resp.FacetDistribution)),
		FacetStats:        make(map[string]domain.NumericDomain, len(resp.FacetStats)),
	}

	for i, doc := range resp.Hits {
		result.Hits[i] = domain.Product{
			ID:          string(doc.ID),
			Name:        doc.Name,
			Description: doc.Description,
			Brand:       doc.Brand,
			Type:        doc.Type,
			Categories:  doc.Categories,
			Price:       doc.Price,
			Rating:      doc.Rating,
			Image:       doc.Image,
		}
	}

	for attribute, counts := range resp.FacetDistribution {
		values := make([]domain.FacetValue, 0, len(counts))
		for value, count := range counts {
			values = append(values, domain.FacetValue{Value: value, Count: count})
		}
		// Highest count first, ties by value for a stable order.
		sort.Slice(values, func(i, j int) bool {
			if values[i].Count != values[j].Count {
				return values[i].Count > values[j].Count
			}
			return values[i].Value < values[j].Value
		})
		result.FacetDistribution[attribute] = values
	}

	for attribute, stat := range resp.FacetStats {
		result.FacetStats[attribute] = domain.NumericDomain{Min: stat.Min, Max: stat.Max}
	}

	return result
}

func (g *SearchEngineGateway) IndexProducts(ctx context.Context, products []domain.Product) error {
	if len(products) == 0 {
		return nil
	}

	docs := make([]driver.ProductDocument, len(products))
	for i, p := range products {
		docs[i] = driver.ProductDocument{
			ID:          driver.DocumentID(p.ID),
			Name:        p.Name,
			Description: p.Description,
			Brand:       p.Brand,
			Type:        p.Type,
			Categories:  p.Categories,
			Price:       p.Price,
			Rating:      p.Rating,
			Image:       p.Image,
		}
	}

	if err := g.driver.IndexProducts(ctx, docs); err != nil {
		return &domain.SearchEngineError{
			Op:  "IndexProducts",
			Err: err.Error(),
		}
	}

	return nil
}

func (g *SearchEngineGateway) EnsureIndex(ctx context.Context) error {
	err := g.driver.EnsureIndex(ctx)
	if err != nil {
		return &domain.SearchEngineError{
			Op:  "EnsureIndex",
			Err: err.Error(),
		}
	}
	return nil
}
