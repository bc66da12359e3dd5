package usecase

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"search-storefront/domain"
	"search-storefront/port"
	"search-storefront/utils/otel"

	"golang.org/x/sync/errgroup"
)

// MaxFacetValues is how many values a refinement list shows per attribute.
// Refined values are always shown.
const MaxFacetValues = 10

type SearchProductsUsecase struct {
	searchEngine    port.SearchEngine
	priceAttribute  string
	facetAttributes []string
	hitsPerPage     int
}

// SearchPage is everything the results side of the page renders.
type SearchPage struct {
	Query            string               `json:"query"`
	Hits             []domain.Product     `json:"hits"`
	TotalHits        int64                `json:"total_hits"`
	ProcessingTimeMs int64                `json:"processing_time_ms"`
	Facets           []FacetList          `json:"facets"`
	PriceDomain      domain.NumericDomain `json:"price_domain"`
	Pagination       domain.Pagination    `json:"pagination"`
}

// FacetList is one refinement list widget.
type FacetList struct {
	Attribute string      `json:"attribute"`
	Values    []FacetItem `json:"values"`
}

type FacetItem struct {
	Value   string `json:"value"`
	Count   int64  `json:"count"`
	Refined bool   `json:"refined"`
}

func NewSearchProductsUsecase(searchEngine port.SearchEngine, priceAttribute string, facetAttributes []string, hitsPerPage int) *SearchProductsUsecase {
	return &SearchProductsUsecase{
		searchEngine:    searchEngine,
		priceAttribute:  priceAttribute,
		facetAttributes: facetAttributes,
		hitsPerPage:     hitsPerPage,
	}
}

// Execute runs the searches one page needs concurrently: the hits query with
// every refinement, a price stats query without the price refinement so the
// slider domain stays put while the user narrows it, and one query per
// refined facet without its own refinement so the other values keep counts.
func (u *SearchProductsUsecase) Execute(ctx context.Context, session *domain.SearchSession) (*SearchPage, error) {
	start := time.Now()
	defer func() {
		otel.Metrics.RecordSearch(ctx, "page", time.Since(start))
	}()

	refinedAttributes := make([]string, 0, len(session.Refinements))
	for attribute, values := range session.Refinements {
		if len(values) > 0 && u.isFacetAttribute(attribute) {
			refinedAttributes = append(refinedAttributes, attribute)
		}
	}
	sort.Strings(refinedAttributes)

	var main, stats *domain.SearchResult
	disjunctive := make([]*domain.SearchResult, len(refinedAttributes))

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		res, err := u.searchEngine.Search(gctx, domain.SearchQuery{
			Query:          session.Query,
			Refinements:    session.Refinements,
			NumericFilters: map[string]domain.Selection{u.priceAttribute: session.Price},
			Facets:         u.facetAttributes,
			Page:           max(session.Page, 1),
			HitsPerPage:    u.hitsPerPage,
		})
		if err != nil {
			return err
		}
		main = res
		return nil
	})

	g.Go(func() error {
		res, err := u.searchEngine.Search(gctx, domain.SearchQuery{
			Query:       session.Query,
			Refinements: session.Refinements,
			Facets:      []string{u.priceAttribute},
			Page:        1,
			HitsPerPage: 1,
		})
		if err != nil {
			return err
		}
		stats = res
		return nil
	})

	for i, attribute := range refinedAttributes {
		g.Go(func() error {
			res, err := u.searchEngine.Search(gctx, domain.SearchQuery{
				Query:          session.Query,
				Refinements:    withoutAttribute(session.Refinements, attribute),
				NumericFilters: map[string]domain.Selection{u.priceAttribute: session.Price},
				Facets:         []string{attribute},
				Page:           1,
				HitsPerPage:    1,
			})
			if err != nil {
				return err
			}
			disjunctive[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("search products: %w", err)
	}

	distribution := make(map[string][]domain.FacetValue, len(main.FacetDistribution))
	for attribute, values := range main.FacetDistribution {
		distribution[attribute] = values
	}
	for i, attribute := range refinedAttributes {
		distribution[attribute] = disjunctive[i].FacetDistribution[attribute]
	}

	page := &SearchPage{
		Query:            session.Query,
		Hits:             main.Hits,
		TotalHits:        main.TotalHits,
		ProcessingTimeMs: main.ProcessingTimeMs,
		Facets:           u.buildFacets(distribution, session),
		PriceDomain:      priceDomain(stats.FacetStats[u.priceAttribute]),
		Pagination:       domain.NewPagination(max(session.Page, 1), int(main.TotalPages), domain.DefaultPagePadding),
	}
	if page.Hits == nil {
		page.Hits = []domain.Product{}
	}

	return page, nil
}

// priceDomain widens the engine's facet stats to whole numbers.
func priceDomain(stats domain.NumericDomain) domain.NumericDomain {
	return domain.NumericDomain{
		Min: math.Floor(stats.Min),
		Max: math.Ceil(stats.Max),
	}
}

// isFacetAttribute reports whether attribute renders as a refinement list.
// The price attribute has its own widget and categories are hierarchical.
func (u *SearchProductsUsecase) isFacetAttribute(attribute string) bool {
	return attribute != u.priceAttribute && !strings.HasPrefix(attribute, "categories")
}

func (u *SearchProductsUsecase) buildFacets(distribution map[string][]domain.FacetValue, session *domain.SearchSession) []FacetList {
	attributes := make([]string, 0, len(distribution))
	for attribute := range distribution {
		if u.isFacetAttribute(attribute) {
			attributes = append(attributes, attribute)
		}
	}
	for attribute := range session.Refinements {
		if _, ok := distribution[attribute]; !ok && u.isFacetAttribute(attribute) {
			attributes = append(attributes, attribute)
		}
	}
	sort.Strings(attributes)

	facets := make([]FacetList, 0, len(attributes))
	for _, attribute := range attributes {
		values := distribution[attribute]
		items := make([]FacetItem, 0, min(len(values), MaxFacetValues))
		seen := make(map[string]bool, len(values))

		for _, v := range values {
			refined := session.IsRefined(attribute, v.Value)
			if len(items) >= MaxFacetValues && !refined {
				continue
			}
			items = append(items, FacetItem{Value: v.Value, Count: v.Count, Refined: refined})
			seen[v.Value] = true
		}

		// Keep refined values visible even when nothing matches them any more.
		for _, v := range session.Refinements[attribute] {
			if !seen[v] {
				items = append(items, FacetItem{Value: v, Count: 0, Refined: true})
			}
		}

		if len(items) == 0 {
			continue
		}
		facets = append(facets, FacetList{Attribute: attribute, Values: items})
	}

	return facets
}

func withoutAttribute(refinements map[string][]string, attribute string) map[string][]string {
	out := make(map[string][]string, len(refinements))
	for k, v := range refinements {
		if k != attribute {
			out[k] = v
		}
	}
	return out
}
