package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"search-storefront/domain"
)

// mockSearchEngine answers stats queries with a fixed price range and page
// queries with a small facetted result.
type mockSearchEngine struct {
	mu       sync.Mutex
	queries  []domain.SearchQuery
	err      error
	priceMin float64
	priceMax float64
}

func newMockSearchEngine() *mockSearchEngine {
	return &mockSearchEngine{priceMin: 0.5, priceMax: 99.2}
}

func (m *mockSearchEngine) Search(ctx context.Context, q domain.SearchQuery) (*domain.SearchResult, error) {
	m.mu.Lock()
	m.queries = append(m.queries, q)
	err := m.err
	priceMin, priceMax := m.priceMin, m.priceMax
	m.mu.Unlock()

	if err != nil {
		return nil, err
	}

	if isStatsQuery(q) {
		return &domain.SearchResult{
			FacetStats: map[string]domain.NumericDomain{"price": {Min: priceMin, Max: priceMax}},
		}, nil
	}

	if len(q.Facets) == 1 && q.Facets[0] == "brand" {
		return &domain.SearchResult{
			FacetDistribution: map[string][]domain.FacetValue{
				"brand": {{Value: "Apple", Count: 5}, {Value: "Samsung", Count: 3}},
			},
		}, nil
	}

	brands := []domain.FacetValue{{Value: "Apple", Count: 5}, {Value: "Samsung", Count: 3}}
	if values := q.Refinements["brand"]; len(values) == 1 && values[0] == "Apple" {
		brands = []domain.FacetValue{{Value: "Apple", Count: 5}}
	}

	return &domain.SearchResult{
		Hits:        []domain.Product{{ID: "1", Name: "Phone", Price: 42}},
		TotalHits:   20,
		TotalPages:  3,
		Page:        int64(q.Page),
		HitsPerPage: int64(q.HitsPerPage),
		FacetDistribution: map[string][]domain.FacetValue{
			"brand":           brands,
			"price":           {{Value: "42", Count: 1}},
			"categories.lvl0": {{Value: "Phones", Count: 20}},
			"type":            {{Value: "Phone", Count: 20}},
		},
	}, nil
}

func (m *mockSearchEngine) IndexProducts(ctx context.Context, products []domain.Product) error {
	return nil
}

func (m *mockSearchEngine) EnsureIndex(ctx context.Context) error {
	return nil
}

func (m *mockSearchEngine) setErr(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

func (m *mockSearchEngine) recorded() []domain.SearchQuery {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.SearchQuery, len(m.queries))
	copy(out, m.queries)
	return out
}

func (m *mockSearchEngine) reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queries = nil
}

func isStatsQuery(q domain.SearchQuery) bool {
	return len(q.Facets) == 1 && q.Facets[0] == "price" && len(q.NumericFilters) == 0
}

func mainQueries(qs []domain.SearchQuery) []domain.SearchQuery {
	var out []domain.SearchQuery
	for _, q := range qs {
		if q.HitsPerPage > 1 {
			out = append(out, q)
		}
	}
	return out
}

// mockSessionStore keeps JSON copies so tests see only what was saved.
type mockSessionStore struct {
	mu      sync.Mutex
	data    map[string][]byte
	loadErr error
	saveErr error
	saves   int
}

func newMockSessionStore() *mockSessionStore {
	return &mockSessionStore{data: map[string][]byte{}}
}

func (m *mockSessionStore) Load(ctx context.Context, id string) (*domain.SearchSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	raw, ok := m.data[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	var s domain.SearchSession
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (m *mockSessionStore) Save(ctx context.Context, s *domain.SearchSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	raw, err := json.Marshal(s)
	if err != nil {
		return err
	}
	m.data[s.ID] = raw
	m.saves++
	return nil
}

func (m *mockSessionStore) stored(id string) *domain.SearchSession {
	s, err := m.Load(context.Background(), id)
	if err != nil {
		return nil
	}
	return s
}

var errEngineDown = errors.New("engine down")
