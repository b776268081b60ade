package rediscache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jhoicas/ledger-api/internal/application/ledger"
	"github.com/jhoicas/ledger-api/internal/domain/entity"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

var _ ledger.BalanceCache = (*BalanceCache)(nil)

// BalanceCache guarda el último saldo de cada entidad como JSON con expiración.
type BalanceCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewBalanceCache construye la caché. ttl == 0 significa sin expiración.
func NewBalanceCache(rdb *redis.Client, ttl time.Duration) *BalanceCache {
	return &BalanceCache{rdb: rdb, ttl: ttl}
}

type cachedBalance struct {
	AsOf  int64           `json:"as_of"`
	Count int64           `json:"count"`
	Value decimal.Decimal `json:"value"`
}

func balanceKey(ref entity.EntityRef) string {
	return keyPrefix + "balance:" + ref.Key()
}

func (c *BalanceCache) Get(ctx context.Context, ref entity.EntityRef) (entity.Balance, bool, error) {
	raw, err := c.rdb.Get(ctx, balanceKey(ref)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return entity.Balance{}, false, nil
		}
		return entity.Balance{}, false, fmt.Errorf("redis get balance: %w", err)
	}
	b, err := decodeBalance(ref, raw)
	if err != nil {
		return entity.Balance{}, false, err
	}
	return b, true, nil
}

func (c *BalanceCache) Set(ctx context.Context, b entity.Balance) error {
	raw, err := encodeBalance(b)
	if err != nil {
		return err
	}
	if err := c.rdb.Set(ctx, balanceKey(b.EntityRef), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set balance: %w", err)
	}
	return nil
}

func (c *BalanceCache) Invalidate(ctx context.Context, ref entity.EntityRef) error {
	if err := c.rdb.Del(ctx, balanceKey(ref)).Err(); err != nil {
		return fmt.Errorf("redis del balance: %w", err)
	}
	return nil
}

func encodeBalance(b entity.Balance) ([]byte, error) {
	raw, err := json.Marshal(cachedBalance{AsOf: int64(b.AsOf), Count: b.Count, Value: b.Value})
	if err != nil {
		return nil, fmt.Errorf("encode balance: %w", err)
	}
	return raw, nil
}

func decodeBalance(ref entity.EntityRef, raw []byte) (entity.Balance, error) {
	var cb cachedBalance
	if err := json.Unmarshal(raw, &cb); err != nil {
		return entity.Balance{}, fmt.Errorf("decode balance: %w", err)
	}
	return entity.Balance{EntityRef: ref, AsOf: entity.MovementID(cb.AsOf), Count: cb.Count, Value: cb.Value}, nil
}
