package ledger_test

import (
	"errors"
	"testing"

	"github.com/jhoicas/ledger-api/internal/domain"
	"github.com/jhoicas/ledger-api/internal/domain/entity"
	"github.com/jhoicas/ledger-api/internal/domain/ledger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var stockP1 = entity.StockRef("P1", "S1")

func counted(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func debitOnly(entity.EntityRef) (entity.Polarity, error) { return entity.PolarityNormalDebit, nil }

func TestReconcile_Shrinkage(t *testing.T) {
	system := entity.Balance{EntityRef: stockP1, AsOf: 8, Value: dec("200")}

	rec, err := ledger.Reconcile(system, dec("185"), entity.PolarityNormalDebit)
	require.NoError(t, err)

	assert.True(t, rec.Variance.Equal(dec("-15")))
	require.NotNil(t, rec.Adjustment)
	assert.True(t, rec.Adjustment.In.IsZero())
	assert.True(t, rec.Adjustment.Out.Equal(dec("15")))
	assert.Equal(t, entity.MovementKindADJUSTMENT, rec.Adjustment.Kind)
	assert.Equal(t, entity.MovementID(9), rec.Adjustment.ID)
	assert.Equal(t, stockP1, rec.Adjustment.EntityRef)
}

func TestReconcile_ZeroVariance(t *testing.T) {
	system := entity.Balance{EntityRef: stockP1, AsOf: 3, Value: dec("200")}

	rec, err := ledger.Reconcile(system, dec("200.00"), entity.PolarityNormalDebit)
	require.NoError(t, err)

	assert.True(t, rec.Variance.IsZero())
	assert.Nil(t, rec.Adjustment)
	assert.False(t, rec.HasAdjustment())
}

func TestReconcile_Convergence(t *testing.T) {
	history := []entity.Movement{
		{ID: 1, EntityRef: acct, In: dec("100"), Out: decimal.Zero},
		{ID: 2, EntityRef: acct, In: decimal.Zero, Out: dec("30")},
		{ID: 5, EntityRef: acct, In: dec("50"), Out: decimal.Zero},
	}
	targets := []string{"0", "120", "121.5", "-40", "500"}

	for _, pol := range []entity.Polarity{entity.PolarityNormalDebit, entity.PolarityNormalCredit} {
		sys, err := ledger.Replay(history, pol, decimal.Zero)
		require.NoError(t, err)
		balance := entity.Balance{EntityRef: acct, AsOf: sys.AsOf, Count: sys.Count, Value: sys.Final}

		for _, target := range targets {
			rec, err := ledger.Reconcile(balance, dec(target), pol)
			require.NoError(t, err)

			movs := append([]entity.Movement{}, history...)
			if rec.Adjustment != nil {
				assert.Greater(t, rec.Adjustment.ID, sys.AsOf)
				assert.Empty(t, rec.Adjustment.Validate())
				movs = append(movs, *rec.Adjustment)
			}
			after, err := ledger.Replay(movs, pol, decimal.Zero)
			require.NoError(t, err)
			assert.True(t, after.Final.Equal(dec(target)), "polaridad %s, objetivo %s, obtenido %s", pol, target, after.Final)
		}
	}
}

func TestReconcile_UnknownPolarity(t *testing.T) {
	_, err := ledger.Reconcile(entity.Balance{EntityRef: stockP1}, dec("1"), entity.PolarityUnknown)
	assert.True(t, errors.Is(err, domain.ErrPolarityUndetermined))
}

// ──────────────────────────────────────────────────────────────────────────────
// Conciliación por sesión
// ──────────────────────────────────────────────────────────────────────────────

func TestReconcileSession_MixedVariances(t *testing.T) {
	session := &entity.StockTakeSession{
		ID:      "st-1",
		StoreID: "S1",
		Status:  entity.StockTakeStatusDraft,
		Lines: []entity.StockTakeLine{
			{ProductID: "P1", SystemQuantity: dec("200"), AsOf: 4, Counted: counted("185")},
			{ProductID: "P2", SystemQuantity: dec("10"), AsOf: 2, Counted: counted("10")},
			{ProductID: "P3", SystemQuantity: dec("0"), AsOf: 0, Counted: counted("7")},
		},
	}

	recs, err := ledger.ReconcileSession(session, debitOnly)
	require.NoError(t, err)
	require.Len(t, recs, 3)

	adj := ledger.Adjustments(recs)
	require.Len(t, adj, 2)
	assert.Equal(t, entity.StockRef("P1", "S1"), adj[0].EntityRef)
	assert.True(t, adj[0].Out.Equal(dec("15")))
	assert.Equal(t, "st-1", adj[0].Reference)
	assert.Equal(t, entity.StockRef("P3", "S1"), adj[1].EntityRef)
	assert.True(t, adj[1].In.Equal(dec("7")))
	assert.Equal(t, entity.MovementID(1), adj[1].ID)
}

func TestReconcileSession_NoVarianceNoAdjustments(t *testing.T) {
	session := &entity.StockTakeSession{
		ID: "st-2", StoreID: "S1", Status: entity.StockTakeStatusDraft,
		Lines: []entity.StockTakeLine{{ProductID: "P1", SystemQuantity: dec("200"), AsOf: 3, Counted: counted("200")}},
	}

	recs, err := ledger.ReconcileSession(session, debitOnly)
	require.NoError(t, err)
	assert.Empty(t, ledger.Adjustments(recs))
}

func TestReconcileSession_Rejections(t *testing.T) {
	t.Run("Caso 1: sesión contabilizada", func(t *testing.T) {
		session := &entity.StockTakeSession{ID: "st-3", Status: entity.StockTakeStatusPosted}
		_, err := ledger.ReconcileSession(session, debitOnly)
		assert.True(t, errors.Is(err, domain.ErrAlreadyPosted))
	})

	t.Run("Caso 2: conteo incompleto", func(t *testing.T) {
		session := &entity.StockTakeSession{
			ID: "st-4", StoreID: "S1", Status: entity.StockTakeStatusDraft,
			Lines: []entity.StockTakeLine{
				{ProductID: "P1", SystemQuantity: dec("1"), Counted: counted("1")},
				{ProductID: "P2", SystemQuantity: dec("1")},
			},
		}
		_, err := ledger.ReconcileSession(session, debitOnly)
		require.True(t, errors.Is(err, domain.ErrIncompleteCount))
		var ie *domain.IncompleteCountError
		require.True(t, errors.As(err, &ie))
		assert.Equal(t, []string{"P2"}, ie.ProductIDs)
	})

	t.Run("Caso 3: polaridad no resuelta", func(t *testing.T) {
		session := &entity.StockTakeSession{
			ID: "st-5", StoreID: "S1", Status: entity.StockTakeStatusDraft,
			Lines: []entity.StockTakeLine{{ProductID: "P1", SystemQuantity: dec("1"), Counted: counted("2")}},
		}
		_, err := ledger.ReconcileSession(session, func(ref entity.EntityRef) (entity.Polarity, error) {
			return entity.PolarityUnknown, &domain.PolarityUndeterminedError{EntityRef: ref.Key()}
		})
		assert.True(t, errors.Is(err, domain.ErrPolarityUndetermined))
	})
}
