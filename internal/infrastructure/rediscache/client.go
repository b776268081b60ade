// Package rediscache implementa la caché de saldos y el candado por entidad sobre Redis,
// compartidos entre réplicas del servicio.
package rediscache

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/ledger-api/internal/domain"
	"github.com/jhoicas/ledger-api/pkg/config"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const keyPrefix = "ledger:"

// Connect abre el cliente y verifica la conexión con reintentos y espera exponencial (tope 30s).
func Connect(ctx context.Context, cfg config.RedisConfig, log zerolog.Logger) (*redis.Client, error) {
	var lastErr error
	for attempt := 1; attempt <= cfg.ConnectAttempts; attempt++ {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Address,
			Password: cfg.Password,
			DB:       cfg.DB,
			PoolSize: cfg.PoolSize,
		})
		if lastErr = rdb.Ping(ctx).Err(); lastErr == nil {
			log.Info().Str("addr", cfg.Address).Int("attempt", attempt).Msg("conectado a redis")
			return rdb, nil
		}
		_ = rdb.Close()

		sleep := time.Second * time.Duration(1<<min(attempt, 5))
		if sleep > 30*time.Second {
			sleep = 30 * time.Second
		}
		log.Warn().Err(lastErr).Str("addr", cfg.Address).Int("attempt", attempt).Dur("retry_in", sleep).Msg("no se pudo conectar a redis")
		if attempt == cfg.ConnectAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(sleep):
		}
	}
	return nil, fmt.Errorf("redis %s: %w: %w", cfg.Address, domain.ErrStorageUnavailable, lastErr)
}
