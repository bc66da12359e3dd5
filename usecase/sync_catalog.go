package usecase

import (
	"context"
	"errors"
	"fmt"

	"search-storefront/domain"
	"search-storefront/port"
	"search-storefront/utils/otel"
)

type SyncCatalogUsecase struct {
	productRepo  port.ProductRepository
	searchEngine port.SearchEngine
}

type SyncResult struct {
	SyncedCount int
	LastID      string
}

func NewSyncCatalogUsecase(productRepo port.ProductRepository, searchEngine port.SearchEngine) *SyncCatalogUsecase {
	return &SyncCatalogUsecase{
		productRepo:  productRepo,
		searchEngine: searchEngine,
	}
}

// Execute copies one batch of products after afterID into the index.
func (u *SyncCatalogUsecase) Execute(ctx context.Context, afterID string, batchSize int) (*SyncResult, error) {
	if batchSize <= 0 {
		return nil, errors.New("batch size must be greater than 0")
	}

	products, err := u.productRepo.GetProducts(ctx, afterID, batchSize)
	if err != nil {
		return nil, err
	}

	if len(products) == 0 {
		return &SyncResult{
			SyncedCount: 0,
			LastID:      afterID,
		}, nil
	}

	docs := make([]domain.Product, 0, len(products))
	for _, p := range products {
		docs = append(docs, *p)
	}

	if err := u.searchEngine.IndexProducts(ctx, docs); err != nil {
		return nil, err
	}

	return &SyncResult{
		SyncedCount: len(docs),
		LastID:      products[len(products)-1].ID,
	}, nil
}

// SyncAll pages through the whole catalog and returns the number of products indexed.
func (u *SyncCatalogUsecase) SyncAll(ctx context.Context, batchSize int) (int, error) {
	total := 0
	lastID := ""

	for {
		if err := ctx.Err(); err != nil {
			return total, err
		}

		result, err := u.Execute(ctx, lastID, batchSize)
		if err != nil {
			otel.Metrics.RecordSync(ctx, total, true)
			return total, fmt.Errorf("sync catalog after %q: %w", lastID, err)
		}

		total += result.SyncedCount
		if result.SyncedCount < batchSize {
			otel.Metrics.RecordSync(ctx, total, false)
			return total, nil
		}
		lastID = result.LastID
	}
}

// IndexByIDs re-indexes the listed products. Duplicate IDs are collapsed and
// IDs missing from the catalog are skipped.
func (u *SyncCatalogUsecase) IndexByIDs(ctx context.Context, ids []string) (*SyncResult, error) {
	seen := make(map[string]struct{}, len(ids))
	unique := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			unique = append(unique, id)
		}
	}
	if len(unique) == 0 {
		return &SyncResult{}, nil
	}

	products, err := u.productRepo.GetProductsByIDs(ctx, unique)
	if err != nil {
		otel.Metrics.RecordSync(ctx, 0, true)
		return nil, fmt.Errorf("load changed products: %w", err)
	}
	if len(products) == 0 {
		return &SyncResult{}, nil
	}

	docs := make([]domain.Product, 0, len(products))
	for _, p := range products {
		docs = append(docs, *p)
	}

	if err := u.searchEngine.IndexProducts(ctx, docs); err != nil {
		otel.Metrics.RecordSync(ctx, 0, true)
		return nil, fmt.Errorf("index changed products: %w", err)
	}

	otel.Metrics.RecordSync(ctx, len(docs), false)
	return &SyncResult{
		SyncedCount: len(docs),
		LastID:      products[len(products)-1].ID,
	}, nil
}
