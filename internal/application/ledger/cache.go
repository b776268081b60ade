package ledger

import (
	"context"
	"sync"

	"github.com/jhoicas/ledger-api/internal/domain/entity"
)

var _ BalanceCache = (*MemoryCache)(nil)

// MemoryCache caché de saldos en proceso.
type MemoryCache struct {
	mu       sync.RWMutex
	balances map[string]entity.Balance
}

// NewMemoryCache construye una caché vacía.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{balances: make(map[string]entity.Balance)}
}

func (c *MemoryCache) Get(_ context.Context, ref entity.EntityRef) (entity.Balance, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	b, ok := c.balances[ref.Key()]
	return b, ok, nil
}

func (c *MemoryCache) Set(_ context.Context, b entity.Balance) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.balances[b.EntityRef.Key()] = b
	return nil
}

func (c *MemoryCache) Invalidate(_ context.Context, ref entity.EntityRef) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.balances, ref.Key())
	return nil
}
