package store

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"eventhub/internal/event/models"
	id "eventhub/pkg/domain"
)

const cacheKeyPrefix = "eventhub:event:"

// Store is the full event persistence contract the cache decorates.
type Store interface {
	Create(ctx context.Context, event *models.Event) (*models.Event, error)
	Get(ctx context.Context, eventID id.EventID) (*models.Event, error)
	List(ctx context.Context, filter models.Filter) ([]*models.Event, error)
	Execute(ctx context.Context, eventID id.EventID, fn func(*models.Event) error) (*models.Event, error)
	IncrementViews(ctx context.Context, eventID id.EventID) error
}

// Cached is a read-through Redis decorator around an event store. Single-event
// reads are cached; every mutation evicts. Listings always hit the store.
// Cache failures degrade to direct reads and are logged, never surfaced.
type Cached struct {
	inner  Store
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

func NewCached(inner Store, client *redis.Client, ttl time.Duration, logger *slog.Logger) *Cached {
	return &Cached{inner: inner, client: client, ttl: ttl, logger: logger}
}

func (c *Cached) Create(ctx context.Context, event *models.Event) (*models.Event, error) {
	return c.inner.Create(ctx, event)
}

func (c *Cached) Get(ctx context.Context, eventID id.EventID) (*models.Event, error) {
	key := cacheKeyPrefix + eventID.String()

	payload, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		var event models.Event
		if err := json.Unmarshal(payload, &event); err == nil {
			return &event, nil
		}
		c.logger.WarnContext(ctx, "corrupt cache entry, evicting", "key", key)
		c.client.Del(ctx, key)
	} else if err != redis.Nil {
		c.logger.WarnContext(ctx, "event cache read failed", "key", key, "error", err)
	}

	event, err := c.inner.Get(ctx, eventID)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(event); err == nil {
		if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
			c.logger.WarnContext(ctx, "event cache write failed", "key", key, "error", err)
		}
	}
	return event, nil
}

func (c *Cached) List(ctx context.Context, filter models.Filter) ([]*models.Event, error) {
	return c.inner.List(ctx, filter)
}

func (c *Cached) Execute(ctx context.Context, eventID id.EventID, fn func(*models.Event) error) (*models.Event, error) {
	event, err := c.inner.Execute(ctx, eventID, fn)
	if err != nil {
		return nil, err
	}
	c.evict(ctx, eventID)
	return event, nil
}

func (c *Cached) IncrementViews(ctx context.Context, eventID id.EventID) error {
	if err := c.inner.IncrementViews(ctx, eventID); err != nil {
		return err
	}
	c.evict(ctx, eventID)
	return nil
}

func (c *Cached) evict(ctx context.Context, eventID id.EventID) {
	key := cacheKeyPrefix + eventID.String()
	if err := c.client.Del(ctx, key).Err(); err != nil {
		c.logger.WarnContext(ctx, "event cache eviction failed", "key", key, "error", err)
	}
}
