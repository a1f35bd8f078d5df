package oracle

import (
	"context"
	"testing"
	"time"

	"collateral-ledger/internal/domain/risk"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	s := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return s, rdb
}

func TestValue(t *testing.T) {
	_, rdb := newClient(t)
	ctx := context.Background()
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, SetPrice(ctx, rdb, "ETH", decimal.RequireFromString("1.6"), now.Add(-time.Minute)))

	o := NewRedisOracle(rdb, 5*time.Minute).WithClock(func() time.Time { return now })
	v, err := o.Value(ctx, "ETH", decimal.NewFromInt(750))
	require.NoError(t, err)
	assert.Equal(t, "1200", v.String())
}

func TestValue_Missing(t *testing.T) {
	_, rdb := newClient(t)
	o := NewRedisOracle(rdb, time.Minute)

	_, err := o.Value(context.Background(), "BTC", decimal.NewFromInt(1))
	require.ErrorIs(t, err, risk.ErrPriceUnavailable)
}

func TestValue_Malformed(t *testing.T) {
	s, rdb := newClient(t)
	require.NoError(t, s.Set("price:BTC", "not-json"))
	o := NewRedisOracle(rdb, time.Minute)

	_, err := o.Value(context.Background(), "BTC", decimal.NewFromInt(1))
	require.ErrorIs(t, err, risk.ErrPriceUnavailable)
}

func TestValue_Stale(t *testing.T) {
	_, rdb := newClient(t)
	ctx := context.Background()
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, SetPrice(ctx, rdb, "ETH", decimal.NewFromInt(2), now.Add(-10*time.Minute)))

	o := NewRedisOracle(rdb, 5*time.Minute).WithClock(func() time.Time { return now })
	_, err := o.Value(ctx, "ETH", decimal.NewFromInt(1))
	require.ErrorIs(t, err, risk.ErrStalePrice)

	// zero max age accepts any timestamp
	v, err := NewRedisOracle(rdb, 0).Value(ctx, "ETH", decimal.NewFromInt(3))
	require.NoError(t, err)
	assert.Equal(t, "6", v.String())
}

func TestValue_RedisDown(t *testing.T) {
	s, rdb := newClient(t)
	s.Close()
	_, err := NewRedisOracle(rdb, 0).Value(context.Background(), "ETH", decimal.NewFromInt(1))
	require.Error(t, err)
}
