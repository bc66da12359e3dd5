package consumer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingHandler struct {
	mu      sync.Mutex
	events  []Event
	failOn  string
	failErr error
}

func (h *recordingHandler) HandleEvent(ctx context.Context, event Event) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, event)
	if event.EventID == h.failOn {
		if h.failErr != nil {
			return h.failErr
		}
		return errors.New("handler failed")
	}
	return nil
}

func (h *recordingHandler) handledIDs() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	ids := make([]string, len(h.events))
	for i, e := range h.events {
		ids[i] = e.EventID
	}
	return ids
}

func addEvent(t *testing.T, client *redis.Client, stream, id string) {
	t.Helper()
	require.NoError(t, client.XAdd(context.Background(), &redis.XAddArgs{
		Stream: stream,
		Values: map[string]any{
			"event_id":   id,
			"event_type": EventProductUpserted,
			"source":     "catalog-service",
			"created_at": "2026-01-02T03:04:05Z",
			"payload":    `{"product_id":"p1"}`,
		},
	}).Err())
}

func pendingCount(t *testing.T, c *Consumer, client *redis.Client) int64 {
	t.Helper()
	pending, err := client.XPending(context.Background(), c.config.StreamKey, c.config.GroupName).Result()
	require.NoError(t, err)
	return pending.Count
}

func newTestConsumer(t *testing.T, handler EventHandler) (*Consumer, *redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)

	cfg := DefaultConfig()
	cfg.Enabled = true
	cfg.RedisURL = "redis://" + mr.Addr()
	cfg.BlockTimeout = 10 * time.Millisecond

	c, err := NewConsumer(cfg, handler, slog.Default())
	require.NoError(t, err)
	t.Cleanup(c.Stop)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return c, client, mr
}

func TestConsumer_Disabled(t *testing.T) {
	c, err := NewConsumer(DefaultConfig(), &recordingHandler{}, nil)
	require.NoError(t, err)

	assert.False(t, c.IsEnabled())
	assert.NoError(t, c.Start(context.Background()))
	c.Stop()
}

func TestConsumer_EnsureConsumerGroupIsIdempotent(t *testing.T) {
	c, _, _ := newTestConsumer(t, &recordingHandler{})
	ctx := context.Background()

	require.NoError(t, c.ensureConsumerGroup(ctx))
	require.NoError(t, c.ensureConsumerGroup(ctx))
}

func TestConsumer_ReadAndProcess(t *testing.T) {
	handler := &recordingHandler{failOn: "evt-2"}
	c, client, _ := newTestConsumer(t, handler)
	ctx := context.Background()

	require.NoError(t, c.ensureConsumerGroup(ctx))

	for _, id := range []string{"evt-1", "evt-2"} {
		require.NoError(t, client.XAdd(ctx, &redis.XAddArgs{
			Stream: c.config.StreamKey,
			Values: map[string]any{
				"event_id":   id,
				"event_type": EventProductUpserted,
				"source":     "catalog-service",
				"created_at": "2026-01-02T03:04:05Z",
				"payload":    `{"product_id":"p1"}`,
			},
		}).Err())
	}

	require.NoError(t, c.readAndProcess(ctx))

	handler.mu.Lock()
	require.Len(t, handler.events, 2)
	first := handler.events[0]
	handler.mu.Unlock()

	assert.Equal(t, "evt-1", first.EventID)
	assert.Equal(t, EventProductUpserted, first.EventType)
	assert.Equal(t, "catalog-service", first.Source)
	assert.Equal(t, time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC), first.CreatedAt)
	assert.JSONEq(t, `{"product_id":"p1"}`, string(first.Payload))

	// only the failed event stays pending
	pending, err := client.XPending(ctx, c.config.StreamKey, c.config.GroupName).Result()
	require.NoError(t, err)
	assert.Equal(t, int64(1), pending.Count)
}

func TestConsumer_FailedEventIsRedeliveredAfterIdle(t *testing.T) {
	handler := &recordingHandler{failOn: "evt-2"}
	c, client, mr := newTestConsumer(t, handler)
	ctx := context.Background()

	require.NoError(t, c.ensureConsumerGroup(ctx))
	addEvent(t, client, c.config.StreamKey, "evt-1")
	addEvent(t, client, c.config.StreamKey, "evt-2")

	require.NoError(t, c.readAndProcess(ctx))
	assert.Equal(t, []string{"evt-1", "evt-2"}, handler.handledIDs())
	assert.Equal(t, int64(1), pendingCount(t, c, client))

	// not idle long enough yet
	require.NoError(t, c.readAndProcess(ctx))
	assert.Equal(t, []string{"evt-1", "evt-2"}, handler.handledIDs())

	handler.mu.Lock()
	handler.failOn = ""
	handler.mu.Unlock()
	mr.SetTime(time.Now().Add(c.config.ClaimIdleTime + time.Second))

	require.NoError(t, c.readAndProcess(ctx))
	assert.Equal(t, []string{"evt-1", "evt-2", "evt-2"}, handler.handledIDs())
	assert.Equal(t, int64(0), pendingCount(t, c, client))
}

func TestConsumer_MalformedEventIsAcknowledged(t *testing.T) {
	handler := &recordingHandler{failOn: "evt-bad", failErr: fmt.Errorf("%w: no product", ErrMalformedEvent)}
	c, client, _ := newTestConsumer(t, handler)
	ctx := context.Background()

	require.NoError(t, c.ensureConsumerGroup(ctx))
	addEvent(t, client, c.config.StreamKey, "evt-bad")

	require.NoError(t, c.readAndProcess(ctx))
	assert.Equal(t, []string{"evt-bad"}, handler.handledIDs())
	assert.Equal(t, int64(0), pendingCount(t, c, client))
}
