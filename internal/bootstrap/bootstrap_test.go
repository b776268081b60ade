package bootstrap_test

import (
	"context"
	"testing"
	"time"

	"github.com/jhoicas/ledger-api/internal/bootstrap"
	"github.com/jhoicas/ledger-api/internal/domain/entity"
	"github.com/jhoicas/ledger-api/pkg/config"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func memoryConfig() *config.Config {
	return &config.Config{
		Ledger: config.LedgerConfig{
			Store:               config.StoreMemory,
			Cache:               config.CacheMemory,
			Lock:                config.LockLocal,
			ConflictRetries:     3,
			UnavailableRetries:  3,
			BackoffBase:         time.Millisecond,
			BackoffMax:          10 * time.Millisecond,
			SnapshotConcurrency: 4,
		},
	}
}

func TestBuild_MemoryStore(t *testing.T) {
	ctx := context.Background()
	l, err := bootstrap.Build(ctx, memoryConfig(), zerolog.Nop())
	require.NoError(t, err)
	defer l.Close()

	ref := entity.StockRef("P1", "S1")
	_, err = l.Service.RegisterEntity(ctx, ref, entity.PolarityNormalDebit, "")
	require.NoError(t, err)
	require.NoError(t, l.Service.AppendMovement(ctx, &entity.Movement{
		EntityRef: ref, In: decimal.NewFromInt(7), Kind: entity.MovementKindIN,
	}))

	bal, err := l.Service.GetBalance(ctx, ref, 0)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(7).Equal(bal.Value))
	assert.NoError(t, l.Ping(ctx))
}

func TestBuild_UnknownStore(t *testing.T) {
	cfg := memoryConfig()
	cfg.Ledger.Store = "sqlite"
	_, err := bootstrap.Build(context.Background(), cfg, zerolog.Nop())
	assert.Error(t, err)
}
