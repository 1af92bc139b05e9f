//go:build unit

package cache_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"event-capacity/internal/infra/cache"
	"event-capacity/internal/usecase/queries"

	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func availabilityView(poolID uuid.UUID) *queries.PoolAvailabilityView {
	total := int32(100)
	return &queries.PoolAvailabilityView{
		PoolID:            poolID,
		ScopeID:           uuid.New(),
		ScopeType:         "event",
		TotalCapacity:     &total,
		Available:         40,
		Blocked:           50,
		Confirmed:         10,
		OverbookPercent:   0,
		RiskLevel:         "low",
		OverbookingActive: true,
	}
}

func TestPoolAvailabilityCache(t *testing.T) {
	poolID := uuid.New()
	key := "pool:availability:" + poolID.String()

	t.Run("hit", func(t *testing.T) {
		client, mock := redismock.NewClientMock()
		view := availabilityView(poolID)
		data, err := json.Marshal(view)
		require.NoError(t, err)
		mock.ExpectGet(key).SetVal(string(data))

		got, err := cache.NewPoolAvailabilityCache(client).Get(context.Background(), poolID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, view.Available, got.Available)
		assert.Equal(t, view.RiskLevel, got.RiskLevel)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("miss is not an error", func(t *testing.T) {
		client, mock := redismock.NewClientMock()
		mock.ExpectGet(key).RedisNil()

		got, err := cache.NewPoolAvailabilityCache(client).Get(context.Background(), poolID)
		require.NoError(t, err)
		assert.Nil(t, got)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("corrupt payload", func(t *testing.T) {
		client, mock := redismock.NewClientMock()
		mock.ExpectGet(key).SetVal("{not json")

		_, err := cache.NewPoolAvailabilityCache(client).Get(context.Background(), poolID)
		assert.Error(t, err)
	})

	t.Run("set writes with TTL", func(t *testing.T) {
		client, mock := redismock.NewClientMock()
		view := availabilityView(poolID)
		data, err := json.Marshal(view)
		require.NoError(t, err)
		mock.ExpectSet(key, data, 30*time.Second).SetVal("OK")

		require.NoError(t, cache.NewPoolAvailabilityCache(client).Set(context.Background(), view))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("invalidate deletes the key", func(t *testing.T) {
		client, mock := redismock.NewClientMock()
		mock.ExpectDel(key).SetVal(1)

		require.NoError(t, cache.NewPoolAvailabilityCache(client).Invalidate(context.Background(), poolID))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
