package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"event-capacity/internal/pkg/errs"
	"event-capacity/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const availabilityTTL = 30 * time.Second

// PoolAvailabilityCache keeps the hot availability snapshot in redis. Every
// capacity mutation invalidates the key; a short TTL bounds staleness if an
// invalidation is lost.
type PoolAvailabilityCache struct {
	client *redis.Client
}

func NewPoolAvailabilityCache(client *redis.Client) *PoolAvailabilityCache {
	return &PoolAvailabilityCache{client: client}
}

func availabilityKey(poolID uuid.UUID) string {
	return fmt.Sprintf("pool:availability:%s", poolID)
}

func (c *PoolAvailabilityCache) Get(ctx context.Context, poolID uuid.UUID) (*queries.PoolAvailabilityView, error) {
	data, err := c.client.Get(ctx, availabilityKey(poolID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, errs.Wrap(err, "failed to read availability cache")
	}

	var view queries.PoolAvailabilityView
	if err := json.Unmarshal(data, &view); err != nil {
		return nil, errs.Wrap(err, "failed to decode cached availability")
	}
	return &view, nil
}

func (c *PoolAvailabilityCache) Set(ctx context.Context, view *queries.PoolAvailabilityView) error {
	data, err := json.Marshal(view)
	if err != nil {
		return errs.Wrap(err, "failed to encode availability")
	}
	if err := c.client.Set(ctx, availabilityKey(view.PoolID), data, availabilityTTL).Err(); err != nil {
		return errs.Wrap(err, "failed to write availability cache")
	}
	return nil
}

func (c *PoolAvailabilityCache) Invalidate(ctx context.Context, poolID uuid.UUID) error {
	if err := c.client.Del(ctx, availabilityKey(poolID)).Err(); err != nil {
		return errs.Wrap(err, "failed to invalidate availability cache")
	}
	return nil
}
