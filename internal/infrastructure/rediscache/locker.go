package rediscache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	"github.com/jhoicas/ledger-api/internal/application/ledger"
	"github.com/jhoicas/ledger-api/internal/domain"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

var _ ledger.EntityLocker = (*Locker)(nil)

// Locker candado distribuido por entidad. Serializa escritores de réplicas distintas.
type Locker struct {
	client *redislock.Client
	ttl    time.Duration
	wait   time.Duration
	retry  time.Duration
	log    zerolog.Logger
}

// NewLocker construye el candado. ttl acota cuánto dura un candado huérfano; wait cuánto se espera para obtenerlo.
func NewLocker(rdb *redis.Client, ttl, wait time.Duration, log zerolog.Logger) *Locker {
	return &Locker{
		client: redislock.New(rdb),
		ttl:    ttl,
		wait:   wait,
		retry:  25 * time.Millisecond,
		log:    log,
	}
}

// Lock obtiene el candado de key reintentando hasta wait o hasta que ctx se cancele.
func (l *Locker) Lock(ctx context.Context, key string) (func(), error) {
	obtainCtx, cancel := context.WithTimeout(ctx, l.wait)
	defer cancel()

	lock, err := l.client.Obtain(obtainCtx, keyPrefix+"lock:"+key, l.ttl, &redislock.Options{
		RetryStrategy: redislock.LinearBackoff(l.retry),
	})
	if errors.Is(err, redislock.ErrNotObtained) {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: candado de %s ocupado", domain.ErrConcurrentAppendConflict, key)
	}
	if err != nil {
		return nil, fmt.Errorf("redis lock %s: %w: %w", key, domain.ErrStorageUnavailable, err)
	}

	return func() {
		// El ctx del request puede estar cancelado al liberar.
		releaseCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		if err := lock.Release(releaseCtx); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			l.log.Warn().Err(err).Str("key", key).Msg("no se pudo liberar el candado")
		}
	}, nil
}
