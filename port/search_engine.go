package port

import (
	"context"

	"search-storefront/domain"
)

type SearchEngine interface {
	Search(ctx context.Context, query domain.SearchQuery) (*domain.SearchResult, error)
	IndexProducts(ctx context.Context, products []domain.Product) error
	EnsureIndex(ctx context.Context) error
}
