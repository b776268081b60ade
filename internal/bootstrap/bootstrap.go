// Package bootstrap arma el servicio del libro a partir de la configuración:
// almacenamiento (PostgreSQL o memoria), caché de saldos y candado por entidad.
package bootstrap

import (
	"context"
	"fmt"

	appledger "github.com/jhoicas/ledger-api/internal/application/ledger"
	"github.com/jhoicas/ledger-api/internal/infrastructure/memory"
	"github.com/jhoicas/ledger-api/internal/infrastructure/postgres"
	"github.com/jhoicas/ledger-api/internal/infrastructure/rediscache"
	"github.com/jhoicas/ledger-api/pkg/config"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Ledger servicio armado más los recursos que hay que cerrar al apagar.
type Ledger struct {
	Service *appledger.Service
	// Ping verifica el almacenamiento (health check).
	Ping    func(ctx context.Context) error
	closers []func()
}

// Close libera conexiones en orden inverso a su apertura.
func (l *Ledger) Close() {
	for i := len(l.closers) - 1; i >= 0; i-- {
		l.closers[i]()
	}
}

// Build construye el servicio según LEDGER_STORE, LEDGER_CACHE y LEDGER_LOCK.
func Build(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Ledger, error) {
	out := &Ledger{Ping: func(context.Context) error { return nil }}
	opts := []appledger.Option{
		appledger.WithLogger(log.With().Str("component", "ledger").Logger()),
		appledger.WithRetryPolicy(appledger.RetryPolicy{
			ConflictRetries:    cfg.Ledger.ConflictRetries,
			UnavailableRetries: cfg.Ledger.UnavailableRetries,
			BaseBackoff:        cfg.Ledger.BackoffBase,
			MaxBackoff:         cfg.Ledger.BackoffMax,
		}),
		appledger.WithSnapshotConcurrency(cfg.Ledger.SnapshotConcurrency),
	}

	if cfg.Ledger.UsesRedis() {
		rdb, err := rediscache.Connect(ctx, cfg.Redis, log.With().Str("component", "redis").Logger())
		if err != nil {
			return nil, err
		}
		out.closers = append(out.closers, func() { _ = rdb.Close() })
		opts = append(opts, redisOptions(cfg, rdb, log)...)
	}

	switch cfg.Ledger.Store {
	case config.StoreMemory:
		store := memory.NewStore()
		out.Service = appledger.NewService(store, store, store, store, opts...)
		log.Warn().Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
	case config.StorePostgres:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			out.Close()
			return nil, err
		}
		out.closers = append(out.closers, pool.Close)
		if cfg.DB.Migrate {
			if err := postgres.Migrate(ctx, pool); err != nil {
				out.Close()
				return nil, err
			}
			log.Info().Msg("esquema del libro verificado")
		}
		out.Service = appledger.NewService(
			postgres.NewMovementRepository(pool),
			postgres.NewEntityDirectoryRepository(pool),
			postgres.NewStockTakeRepository(pool),
			postgres.NewTxRunner(pool),
			opts...,
		)
		out.Ping = pool.Ping
	default:
		out.Close()
		return nil, fmt.Errorf("LEDGER_STORE desconocido: %q", cfg.Ledger.Store)
	}
	return out, nil
}

func redisOptions(cfg *config.Config, rdb *redis.Client, log zerolog.Logger) []appledger.Option {
	var opts []appledger.Option
	if cfg.Ledger.Cache == config.CacheRedis {
		opts = append(opts, appledger.WithCache(rediscache.NewBalanceCache(rdb, cfg.Redis.BalanceTTL)))
	}
	if cfg.Ledger.Lock == config.LockRedis {
		opts = append(opts, appledger.WithLocker(rediscache.NewLocker(rdb, cfg.Ledger.LockTTL, cfg.Ledger.LockWait, log)))
	}
	return opts
}
