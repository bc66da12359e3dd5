package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"search-storefront/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockProductRepo serves products in ID order from a fixed catalog.
type mockProductRepo struct {
	products []*domain.Product
	err      error
	calls    []string
}

func (m *mockProductRepo) GetProducts(ctx context.Context, afterID string, limit int) ([]*domain.Product, error) {
	m.calls = append(m.calls, afterID)
	if m.err != nil {
		return nil, m.err
	}

	var out []*domain.Product
	for _, p := range m.products {
		if p.ID > afterID && len(out) < limit {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockProductRepo) GetProductsByIDs(ctx context.Context, ids []string) ([]*domain.Product, error) {
	m.calls = append(m.calls, strings.Join(ids, ","))
	if m.err != nil {
		return nil, m.err
	}

	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var out []*domain.Product
	for _, p := range m.products {
		if want[p.ID] {
			out = append(out, p)
		}
	}
	return out, nil
}

type indexingEngine struct {
	mockSearchEngine
	indexed []domain.Product
	err     error
}

func (m *indexingEngine) IndexProducts(ctx context.Context, products []domain.Product) error {
	if m.err != nil {
		return m.err
	}
	m.indexed = append(m.indexed, products...)
	return nil
}

func catalog(n int) []*domain.Product {
	out := make([]*domain.Product, 0, n)
	for i := 1; i <= n; i++ {
		p, _ := domain.NewProduct(fmt.Sprintf("p%03d", i), fmt.Sprintf("Product %d", i), "", float64(i))
		out = append(out, p)
	}
	return out
}

func TestSyncCatalogUsecase_Execute(t *testing.T) {
	tests := []struct {
		name       string
		repo       *mockProductRepo
		engineErr  error
		afterID    string
		batchSize  int
		wantCount  int
		wantLastID string
		wantErr    bool
	}{
		{
			name:       "first batch",
			repo:       &mockProductRepo{products: catalog(5)},
			batchSize:  2,
			wantCount:  2,
			wantLastID: "p002",
		},
		{
			name:       "empty batch keeps cursor",
			repo:       &mockProductRepo{products: catalog(2)},
			afterID:    "p002",
			batchSize:  2,
			wantCount:  0,
			wantLastID: "p002",
		},
		{
			name:      "repository error",
			repo:      &mockProductRepo{err: &domain.RepositoryError{Op: "GetProducts", Err: "down"}},
			batchSize: 2,
			wantErr:   true,
		},
		{
			name:      "index error",
			repo:      &mockProductRepo{products: catalog(1)},
			engineErr: &domain.SearchEngineError{Op: "IndexProducts", Err: "down"},
			batchSize: 2,
			wantErr:   true,
		},
		{
			name:      "invalid batch size",
			repo:      &mockProductRepo{},
			batchSize: 0,
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := &indexingEngine{err: tt.engineErr}
			uc := NewSyncCatalogUsecase(tt.repo, engine)

			result, err := uc.Execute(context.Background(), tt.afterID, tt.batchSize)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantCount, result.SyncedCount)
			assert.Equal(t, tt.wantLastID, result.LastID)
			assert.Len(t, engine.indexed, tt.wantCount)
		})
	}
}

func TestSyncCatalogUsecase_SyncAll(t *testing.T) {
	repo := &mockProductRepo{products: catalog(5)}
	engine := &indexingEngine{}
	uc := NewSyncCatalogUsecase(repo, engine)

	total, err := uc.SyncAll(context.Background(), 2)
	require.NoError(t, err)

	assert.Equal(t, 5, total)
	assert.Len(t, engine.indexed, 5)
	assert.Equal(t, []string{"", "p002", "p004"}, repo.calls)
}

func TestSyncCatalogUsecase_SyncAll_Error(t *testing.T) {
	repoErr := errors.New("connection reset")
	uc := NewSyncCatalogUsecase(&mockProductRepo{err: repoErr}, &indexingEngine{})

	_, err := uc.SyncAll(context.Background(), 2)
	assert.ErrorIs(t, err, repoErr)
}

func TestSyncCatalogUsecase_SyncAll_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	uc := NewSyncCatalogUsecase(&mockProductRepo{products: catalog(3)}, &indexingEngine{})
	_, err := uc.SyncAll(ctx, 2)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSyncCatalogUsecase_IndexByIDs(t *testing.T) {
	tests := []struct {
		name      string
		repo      *mockProductRepo
		engineErr error
		ids       []string
		wantCount int
		wantCalls []string
		wantErr   bool
	}{
		{
			name:      "deduplicates and skips unknown ids",
			repo:      &mockProductRepo{products: catalog(3)},
			ids:       []string{"p002", "p002", "p009", "", "p001"},
			wantCount: 2,
			wantCalls: []string{"p002,p009,p001"},
		},
		{
			name:      "nothing to do",
			repo:      &mockProductRepo{products: catalog(3)},
			ids:       []string{""},
			wantCount: 0,
		},
		{
			name:      "all ids gone",
			repo:      &mockProductRepo{products: catalog(1)},
			ids:       []string{"p005"},
			wantCount: 0,
			wantCalls: []string{"p005"},
		},
		{
			name:    "repository error",
			repo:    &mockProductRepo{err: errors.New("down")},
			ids:     []string{"p001"},
			wantErr: true,
		},
		{
			name:      "index error",
			repo:      &mockProductRepo{products: catalog(1)},
			engineErr: &domain.SearchEngineError{Op: "IndexProducts", Err: "down"},
			ids:       []string{"p001"},
			wantErr:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := &indexingEngine{err: tt.engineErr}
			uc := NewSyncCatalogUsecase(tt.repo, engine)

			result, err := uc.IndexByIDs(context.Background(), tt.ids)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantCount, result.SyncedCount)
			assert.Len(t, engine.indexed, tt.wantCount)
			assert.Equal(t, tt.wantCalls, tt.repo.calls)
		})
	}
}
