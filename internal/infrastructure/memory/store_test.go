package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jhoicas/ledger-api/internal/domain"
	"github.com/jhoicas/ledger-api/internal/domain/entity"
	"github.com/jhoicas/ledger-api/internal/domain/repository"
	"github.com/jhoicas/ledger-api/internal/infrastructure/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ref = entity.StockRef("P1", "S1")

func in(q int64) *entity.Movement {
	return &entity.Movement{EntityRef: ref, In: decimal.NewFromInt(q), Kind: entity.MovementKindIN}
}

func TestStore_AppendAssignsSequence(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()

	for i := 1; i <= 3; i++ {
		m := in(10)
		require.NoError(t, s.Append(ctx, m))
		assert.Equal(t, entity.MovementID(i), m.ID)
	}

	// Un id provisional mayor que el siguiente se respeta; uno menor se corrige.
	m := in(1)
	m.ID = 7
	require.NoError(t, s.Append(ctx, m))
	assert.Equal(t, entity.MovementID(7), m.ID)

	m = in(1)
	m.ID = 2
	require.NoError(t, s.Append(ctx, m))
	assert.Equal(t, entity.MovementID(8), m.ID)

	stats, err := s.Stats(ctx, ref)
	require.NoError(t, err)
	assert.Equal(t, entity.MovementStats{Count: 5, MaxID: 8}, stats)
}

func TestStore_QueryRange(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	for i := 0; i < 5; i++ {
		require.NoError(t, s.Append(ctx, in(1)))
	}

	got, err := s.Query(ctx, ref, 2, 4)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, entity.MovementID(2), got[0].ID)
	assert.Equal(t, entity.MovementID(4), got[2].ID)

	all, err := s.Query(ctx, ref, 1, 0)
	require.NoError(t, err)
	assert.Len(t, all, 5)

	none, err := s.Query(ctx, entity.AccountRef("X"), 1, 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestStore_RegisterPolarity(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()

	require.NoError(t, s.Register(ctx, &entity.LedgerEntity{Ref: ref, Polarity: entity.PolarityNormalDebit}))
	require.NoError(t, s.Register(ctx, &entity.LedgerEntity{Ref: ref, Polarity: entity.PolarityNormalDebit}))

	err := s.Register(ctx, &entity.LedgerEntity{Ref: ref, Polarity: entity.PolarityNormalCredit})
	assert.True(t, errors.Is(err, domain.ErrPolarityConflict))

	e, err := s.Get(ctx, ref)
	require.NoError(t, err)
	require.NotNil(t, e)
	assert.Equal(t, entity.PolarityNormalDebit, e.Polarity)

	require.NoError(t, s.Register(ctx, &entity.LedgerEntity{Ref: entity.StockRef("A0", "S1"), Polarity: entity.PolarityNormalDebit}))
	require.NoError(t, s.Register(ctx, &entity.LedgerEntity{Ref: entity.StockRef("Z9", "S2"), Polarity: entity.PolarityNormalDebit}))
	products, err := s.ListStoreProducts(ctx, "S1")
	require.NoError(t, err)
	assert.Equal(t, []string{"A0", "P1"}, products)
}

func TestStore_RunRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	require.NoError(t, s.Append(ctx, in(5)))
	boom := errors.New("boom")

	err := s.Run(ctx, func(movs repository.MovementStore, _ repository.EntityDirectory, takes repository.StockTakeRepository) error {
		require.NoError(t, movs.Append(ctx, in(1)))
		require.NoError(t, takes.Create(ctx, &entity.StockTakeSession{ID: "st-1", StoreID: "S1", Status: entity.StockTakeStatusDraft}))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	stats, err := s.Stats(ctx, ref)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.Count)
	session, err := s.GetByID(ctx, "st-1")
	require.NoError(t, err)
	assert.Nil(t, session)
}

func TestStore_SessionLifecycle(t *testing.T) {
	ctx := context.Background()
	s := memory.NewStore()
	session := &entity.StockTakeSession{
		ID: "st-1", StoreID: "S1", Status: entity.StockTakeStatusDraft,
		Lines: []entity.StockTakeLine{{ProductID: "P1", SystemQuantity: decimal.NewFromInt(3)}},
	}
	require.NoError(t, s.Create(ctx, session))

	require.NoError(t, s.SetCounted(ctx, "st-1", "P1", decimal.NewFromInt(2)))
	assert.ErrorIs(t, s.SetCounted(ctx, "st-1", "P9", decimal.NewFromInt(2)), domain.ErrNotFound)

	got, err := s.GetByID(ctx, "st-1")
	require.NoError(t, err)
	require.NotNil(t, got.Lines[0].Counted)
	assert.Equal(t, "2", got.Lines[0].Counted.String())
	assert.Nil(t, session.Lines[0].Counted, "la copia del llamador no se modifica")

	require.NoError(t, s.MarkPosted(ctx, "st-1", time.Now()))
	assert.ErrorIs(t, s.MarkPosted(ctx, "st-1", time.Now()), domain.ErrAlreadyPosted)
	assert.ErrorIs(t, s.SetCounted(ctx, "st-1", "P1", decimal.NewFromInt(1)), domain.ErrAlreadyPosted)
	assert.ErrorIs(t, s.Delete(ctx, "st-1"), domain.ErrAlreadyPosted)
	assert.ErrorIs(t, s.Delete(ctx, "st-404"), domain.ErrNotFound)
}
