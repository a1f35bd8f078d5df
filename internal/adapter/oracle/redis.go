// Package oracle serves collateral prices published into Redis by an external feeder.
package oracle

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"collateral-ledger/internal/domain/risk"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

const keyPrefix = "price:"

type priceRecord struct {
	Price     decimal.Decimal `json:"price"`
	UpdatedAt time.Time       `json:"updated_at"`
}

type RedisOracle struct {
	rdb    *redis.Client
	maxAge time.Duration
	now    func() time.Time
}

var _ risk.PriceOracle = (*RedisOracle)(nil)

// NewRedisOracle rejects prices older than maxAge; zero disables the check.
func NewRedisOracle(rdb *redis.Client, maxAge time.Duration) *RedisOracle {
	return &RedisOracle{rdb: rdb, maxAge: maxAge, now: time.Now}
}

func (o *RedisOracle) WithClock(now func() time.Time) *RedisOracle {
	o.now = now
	return o
}

func (o *RedisOracle) Value(ctx context.Context, asset string, amount decimal.Decimal) (decimal.Decimal, error) {
	raw, err := o.rdb.Get(ctx, keyPrefix+asset).Bytes()
	if errors.Is(err, redis.Nil) {
		return decimal.Zero, fmt.Errorf("%w: no price for %s", risk.ErrPriceUnavailable, asset)
	}
	if err != nil {
		return decimal.Zero, err
	}
	var rec priceRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return decimal.Zero, fmt.Errorf("%w: malformed price for %s", risk.ErrPriceUnavailable, asset)
	}
	if o.maxAge > 0 && o.now().Sub(rec.UpdatedAt) > o.maxAge {
		return decimal.Zero, fmt.Errorf("%w: %s updated %s", risk.ErrStalePrice, asset, rec.UpdatedAt.Format(time.RFC3339))
	}
	return amount.Mul(rec.Price), nil
}

// SetPrice publishes a price; used by the feeder side and tests.
func SetPrice(ctx context.Context, rdb *redis.Client, asset string, price decimal.Decimal, at time.Time) error {
	b, err := json.Marshal(priceRecord{Price: price, UpdatedAt: at.UTC()})
	if err != nil {
		return err
	}
	return rdb.Set(ctx, keyPrefix+asset, b, 0).Err()
}
