package port

import (
	"context"

	"search-storefront/domain"
)

type ProductRepository interface {
	// GetProducts returns up to limit products ordered by ID, strictly after afterID.
	GetProducts(ctx context.Context, afterID string, limit int) ([]*domain.Product, error)
	// GetProductsByIDs returns the listed products that exist; unknown IDs are skipped.
	GetProductsByIDs(ctx context.Context, ids []string) ([]*domain.Product, error)
}
