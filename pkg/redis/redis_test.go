package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codergirlprerna/t20-predictor/backend/pkg/config"
)

func TestNewClient_Disabled(t *testing.T) {
	cfg := &config.Config{
		Redis: config.RedisConfig{
			Enabled: false,
		},
	}

	client, err := New(cfg)
	require.NoError(t, err)
	assert.False(t, client.Enabled())
	assert.NoError(t, client.Close())
}

func TestNilClientIsDisabled(t *testing.T) {
	var c *Client
	assert.False(t, c.Enabled())
}

func TestRateLimiter_Disabled(t *testing.T) {
	limiter := NewRateLimiter(Disabled(), "test")

	allowed, remaining, err := limiter.Allow(context.Background(), FeedRateLimit)
	require.NoError(t, err)
	assert.True(t, allowed)
	assert.Equal(t, FeedRateLimit.Limit, remaining)

	assert.NoError(t, limiter.Wait(context.Background(), FeedRateLimit))
}

func TestCache_Disabled(t *testing.T) {
	cache := NewCache(Disabled(), "test")
	ctx := context.Background()

	var result string
	found, err := cache.Get(ctx, "key", &result)
	require.NoError(t, err)
	assert.False(t, found)

	assert.NoError(t, cache.Set(ctx, "key", "value", time.Minute))
	assert.NoError(t, cache.Delete(ctx, "key"))
}

func TestCache_GetOrSetDisabledCallsFn(t *testing.T) {
	cache := NewCache(Disabled(), "test")

	type payload struct {
		Group string  `json:"group"`
		Pct   float64 `json:"pct"`
	}

	calls := 0
	var got payload
	for i := 0; i < 2; i++ {
		err := cache.GetOrSet(context.Background(), ChancesKey("1"), &got, TTLShort, func() (interface{}, error) {
			calls++
			return payload{Group: "1", Pct: 62.5}, nil
		})
		require.NoError(t, err)
	}

	assert.Equal(t, 2, calls, "nothing is cached without redis")
	assert.Equal(t, payload{Group: "1", Pct: 62.5}, got)
}

func TestCacheKeys(t *testing.T) {
	tests := []struct {
		name     string
		got      string
		expected string
	}{
		{"StandingsKey", StandingsKey(), "standings"},
		{"ChancesKey", ChancesKey("2"), "chances:2"},
		{"ImpactKey", ImpactKey("7", "9", "9", 1700000000000), "impact:1700000000000:7:9:9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.got)
		})
	}

	assert.Equal(t, "t20:cache:standings", NewCache(Disabled(), "t20").fullKey(StandingsKey()))
}
