package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"search-storefront/usecase"
)

const (
	batchFlushSize     = 10
	batchFlushInterval = 2 * time.Second
)

const (
	EventProductUpserted = "ProductUpserted"
	EventPriceChanged    = "ProductPriceChanged"
)

// ErrMalformedEvent marks events that can never be handled. The consumer
// acknowledges them instead of leaving them pending.
var ErrMalformedEvent = errors.New("malformed event")

// ProductChangedPayload is the payload of every product change event.
type ProductChangedPayload struct {
	ProductID string `json:"product_id"`
}

// ProductIndexer re-indexes products by ID.
type ProductIndexer interface {
	IndexByIDs(ctx context.Context, ids []string) (*usecase.SyncResult, error)
}

// IndexEventHandler buffers changed product IDs and re-indexes them in
// batches, flushing at batchFlushSize IDs or after batchFlushInterval.
type IndexEventHandler struct {
	indexer ProductIndexer
	logger  *slog.Logger

	mu     sync.Mutex
	buffer []string
	timer  *time.Timer
	ctx    context.Context
	cancel context.CancelFunc
}

func NewIndexEventHandler(indexer ProductIndexer, logger *slog.Logger) *IndexEventHandler {
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &IndexEventHandler{
		indexer: indexer,
		logger:  logger,
		buffer:  make([]string, 0, batchFlushSize),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Stop flushes whatever is buffered and stops the flush timer.
func (h *IndexEventHandler) Stop() {
	h.mu.Lock()
	if h.timer != nil {
		h.timer.Stop()
		h.timer = nil
	}
	h.mu.Unlock()

	h.flush()
	h.cancel()
}

// HandleEvent buffers the product of a change event. Unknown event types
// are acknowledged and skipped.
func (h *IndexEventHandler) HandleEvent(ctx context.Context, event Event) error {
	switch event.EventType {
	case EventProductUpserted, EventPriceChanged:
	default:
		h.logger.Warn("unknown event type, skipping",
			"event_type", event.EventType,
			"event_id", event.EventID,
		)
		return nil
	}

	var payload ProductChangedPayload
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		h.logger.Error("failed to unmarshal product event payload",
			"event_id", event.EventID,
			"event_type", event.EventType,
			"error", err,
		)
		return fmt.Errorf("%w: event %s: %v", ErrMalformedEvent, event.EventID, err)
	}
	if payload.ProductID == "" {
		return fmt.Errorf("%w: event %s: product_id is empty", ErrMalformedEvent, event.EventID)
	}

	h.logger.Debug("buffering product change",
		"event_type", event.EventType,
		"product_id", payload.ProductID,
	)
	h.enqueue(payload.ProductID)
	return nil
}

func (h *IndexEventHandler) enqueue(productID string) {
	h.mu.Lock()
	h.buffer = append(h.buffer, productID)
	size := len(h.buffer)

	if size == 1 {
		h.timer = time.AfterFunc(batchFlushInterval, h.flush)
	}
	h.mu.Unlock()

	if size >= batchFlushSize {
		h.flush()
	}
}

// flush re-indexes the buffered IDs in one call. IDs of a failed batch are
// dropped; the next periodic catalog sync picks the products up again.
func (h *IndexEventHandler) flush() {
	h.mu.Lock()
	if len(h.buffer) == 0 {
		h.mu.Unlock()
		return
	}
	ids := h.buffer
	h.buffer = make([]string, 0, batchFlushSize)
	if h.timer != nil {
		h.timer.Stop()
		h.timer = nil
	}
	h.mu.Unlock()

	result, err := h.indexer.IndexByIDs(h.ctx, ids)
	if err != nil {
		h.logger.Error("batch re-index failed", "count", len(ids), "error", err)
		return
	}

	h.logger.Info("changed products re-indexed", "indexed", result.SyncedCount)
}
