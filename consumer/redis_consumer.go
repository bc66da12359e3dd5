package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Event is one catalog change read from the stream.
type Event struct {
	// MessageID is the Redis Stream message ID.
	MessageID string
	EventID   string
	EventType string
	// Source is the service that produced the event.
	Source    string
	CreatedAt time.Time
	Payload   json.RawMessage
}

// EventHandler processes events from the stream.
type EventHandler interface {
	HandleEvent(ctx context.Context, event Event) error
}

// Consumer reads a Redis Stream through a consumer group. Events are
// acknowledged only after the handler accepts them.
type Consumer struct {
	client       *redis.Client
	config       Config
	handler      EventHandler
	logger       *slog.Logger
	shutdownChan chan struct{}
	stopOnce     sync.Once
}

// NewConsumer creates a new Redis Streams consumer.
func NewConsumer(config Config, handler EventHandler, logger *slog.Logger) (*Consumer, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if !config.Enabled {
		return &Consumer{config: config, logger: logger}, nil
	}

	opts, err := redis.ParseURL(config.RedisURL)
	if err != nil {
		return nil, err
	}

	return &Consumer{
		client:       redis.NewClient(opts),
		config:       config,
		handler:      handler,
		logger:       logger,
		shutdownChan: make(chan struct{}),
	}, nil
}

// Start creates the consumer group if needed and begins consuming in the
// background.
func (c *Consumer) Start(ctx context.Context) error {
	if !c.config.Enabled {
		c.logger.Info("catalog event consumer disabled, not starting")
		return nil
	}

	if err := c.ensureConsumerGroup(ctx); err != nil {
		return err
	}

	c.logger.Info("starting catalog event consumer",
		"stream", c.config.StreamKey,
		"group", c.config.GroupName,
		"consumer", c.config.ConsumerName,
	)

	go c.consumeLoop(ctx)
	return nil
}

// Stop ends the consume loop and closes the Redis client.
func (c *Consumer) Stop() {
	c.stopOnce.Do(func() {
		if c.shutdownChan != nil {
			close(c.shutdownChan)
		}
		if c.client != nil {
			_ = c.client.Close()
		}
	})
}

func (c *Consumer) IsEnabled() bool {
	return c.config.Enabled
}

func (c *Consumer) ensureConsumerGroup(ctx context.Context) error {
	err := c.client.XGroupCreateMkStream(ctx, c.config.StreamKey, c.config.GroupName, "0").Err()
	if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
		return err
	}
	return nil
}

func (c *Consumer) consumeLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			c.logger.Info("consumer context cancelled, stopping")
			return
		case <-c.shutdownChan:
			c.logger.Info("consumer shutdown requested, stopping")
			return
		default:
			if err := c.readAndProcess(ctx); err != nil {
				if errors.Is(err, redis.ErrClosed) || ctx.Err() != nil {
					return
				}
				c.logger.Error("error processing events", "error", err)
				time.Sleep(time.Second)
			}
		}
	}
}

// readAndProcess first claims messages that stayed pending longer than
// ClaimIdleTime, then reads one batch of new messages. A message is
// acknowledged when the handler accepts it or rejects it as malformed; any
// other failure leaves it pending until it is claimed again.
func (c *Consumer) readAndProcess(ctx context.Context) error {
	if err := c.claimIdle(ctx); err != nil {
		return err
	}

	streams, err := c.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    c.config.GroupName,
		Consumer: c.config.ConsumerName,
		Streams:  []string{c.config.StreamKey, ">"},
		Count:    c.config.BatchSize,
		Block:    c.config.BlockTimeout,
	}).Result()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		return err
	}

	for _, stream := range streams {
		c.process(ctx, stream.Messages)
	}
	return nil
}

func (c *Consumer) claimIdle(ctx context.Context) error {
	if c.config.ClaimIdleTime <= 0 {
		return nil
	}

	messages, _, err := c.client.XAutoClaim(ctx, &redis.XAutoClaimArgs{
		Stream:   c.config.StreamKey,
		Group:    c.config.GroupName,
		Consumer: c.config.ConsumerName,
		MinIdle:  c.config.ClaimIdleTime,
		Start:    "0-0",
		Count:    c.config.BatchSize,
	}).Result()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		return err
	}

	if len(messages) > 0 {
		c.logger.Info("claimed idle pending events", "count", len(messages))
	}
	c.process(ctx, messages)
	return nil
}

func (c *Consumer) process(ctx context.Context, messages []redis.XMessage) {
	for _, message := range messages {
		event := parseEvent(message)

		if err := c.handler.HandleEvent(ctx, event); err != nil {
			c.logger.Error("failed to process event",
				"message_id", message.ID,
				"event_type", event.EventType,
				"error", err,
			)
			if !errors.Is(err, ErrMalformedEvent) {
				continue
			}
		}

		if err := c.client.XAck(ctx, c.config.StreamKey, c.config.GroupName, message.ID).Err(); err != nil {
			c.logger.Error("failed to acknowledge message",
				"message_id", message.ID,
				"error", err,
			)
		}
	}
}

func parseEvent(message redis.XMessage) Event {
	event := Event{MessageID: message.ID}

	if v, ok := message.Values["event_id"].(string); ok {
		event.EventID = v
	}
	if v, ok := message.Values["event_type"].(string); ok {
		event.EventType = v
	}
	if v, ok := message.Values["source"].(string); ok {
		event.Source = v
	}
	if v, ok := message.Values["created_at"].(string); ok {
		event.CreatedAt, _ = time.Parse(time.RFC3339, v)
	}
	if v, ok := message.Values["payload"].(string); ok {
		event.Payload = json.RawMessage(v)
	}

	return event
}
