package driver

import (
	"context"
	"encoding/json"
	"time"

	"github.com/meilisearch/meilisearch-go"
)

var (
	filterableAttributes = []string{"price", "brand", "type", "categories", "categories.lvl0", "categories.lvl1"}
	searchableAttributes = []string{"name", "categories", "description"}
	sortableAttributes   = []string{"price"}
)

type MeilisearchDriver struct {
	client      meilisearch.ServiceManager
	index       meilisearch.IndexManager
	indexName   string
	taskTimeout time.Duration
}

func NewMeilisearchDriver(client meilisearch.ServiceManager, indexName string, taskTimeout time.Duration) *MeilisearchDriver {
	return &MeilisearchDriver{
		client:      client,
		index:       client.Index(indexName),
		indexName:   indexName,
		taskTimeout: taskTimeout,
	}
}

func (d *MeilisearchDriver) Search(ctx context.Context, params SearchParams) (*SearchResponseDriver, error) {
	searchRequest := &meilisearch.SearchRequest{
		Page:        params.Page,
		HitsPerPage: params.HitsPerPage,
	}
	if len(params.Facets) > 0 {
		searchRequest.Facets = params.Facets
	}

	// Only add filter if it's not empty
	if filter := BuildSearchFilter(params); filter != "" {
		searchRequest.Filter = filter
	}

	result, err := d.index.SearchWithContext(ctx, params.Query, searchRequest)
	if err != nil {
		return nil, &DriverError{
			Op:  "Search",
			Err: err.Error(),
		}
	}

	raw, err := json.Marshal(result)
	if err != nil {
		return nil, &DriverError{
			Op:  "Search",
			Err: "failed to encode search response: " + err.Error(),
		}
	}

	return decodeSearchResponse(raw)
}

// decodeSearchResponse maps the engine's JSON response onto driver types.
func decodeSearchResponse(raw []byte) (*SearchResponseDriver, error) {
	var resp SearchResponseDriver
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, &DriverError{
			Op:  "decodeSearchResponse",
			Err: err.Error(),
		}
	}

	if resp.TotalHits == 0 && resp.EstimatedTotalHits > 0 {
		resp.TotalHits = resp.EstimatedTotalHits
	}
	if resp.Hits == nil {
		resp.Hits = []ProductDocument{}
	}

	return &resp, nil
}

func (d *MeilisearchDriver) IndexProducts(ctx context.Context, docs []ProductDocument) error {
	if len(docs) == 0 {
		return nil
	}

	task, err := d.index.AddDocuments(docs)
	if err != nil {
		return &DriverError{
			Op:  "IndexProducts",
			Err: err.Error(),
		}
	}

	if _, err = d.index.WaitForTask(task.TaskUID, d.taskTimeout); err != nil {
		return &DriverError{
			Op:  "IndexProducts",
			Err: "failed to wait for indexing task: " + err.Error(),
		}
	}

	return nil
}

func (d *MeilisearchDriver) EnsureIndex(ctx context.Context) error {
	// Check if index exists
	if _, err := d.index.FetchInfo(); err != nil {
		task, err := d.client.CreateIndex(&meilisearch.IndexConfig{
			Uid:        d.indexName,
			PrimaryKey: "id",
		})
		if err != nil {
			return &DriverError{
				Op:  "EnsureIndex",
				Err: "failed to create index: " + err.Error(),
			}
		}

		if _, err = d.index.WaitForTask(task.TaskUID, d.taskTimeout); err != nil {
			return &DriverError{
				Op:  "EnsureIndex",
				Err: "failed to wait for index creation: " + err.Error(),
			}
		}
	}

	task, err := d.index.UpdateFilterableAttributes(&filterableAttributes)
	if err != nil {
		return &DriverError{
			Op:  "EnsureIndex",
			Err: "failed to set filterable attributes: " + err.Error(),
		}
	}
	if _, err = d.index.WaitForTask(task.TaskUID, d.taskTimeout); err != nil {
		return &DriverError{
			Op:  "EnsureIndex",
			Err: "failed to wait for filterable attributes: " + err.Error(),
		}
	}

	task, err = d.index.UpdateSearchableAttributes(&searchableAttributes)
	if err != nil {
		return &DriverError{
			Op:  "EnsureIndex",
			Err: "failed to set searchable attributes: " + err.Error(),
		}
	}
	if _, err = d.index.WaitForTask(task.TaskUID, d.taskTimeout); err != nil {
		return &DriverError{
			Op:  "EnsureIndex",
			Err: "failed to wait for searchable attributes: " + err.Error(),
		}
	}

	task, err = d.index.UpdateSortableAttributes(&sortableAttributes)
	if err != nil {
		return &DriverError{
			Op:  "EnsureIndex",
			Err: "failed to set sortable attributes: " + err.Error(),
		}
	}
	if _, err = d.index.WaitForTask(task.TaskUID, d.taskTimeout); err != nil {
		return &DriverError{
			Op:  "EnsureIndex",
			Err: "failed to wait for sortable attributes: " + err.Error(),
		}
	}

	return nil
}

// Health reports whether the Meilisearch instance is reachable.
func (d *MeilisearchDriver) Health(ctx context.Context) error {
	if _, err := d.client.Health(); err != nil {
		return &DriverError{
			Op:  "Health",
			Err: err.Error(),
		}
	}
	return nil
}
