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

var acct = entity.AccountRef("1105")

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func mv(id int64, in, out string) entity.Movement {
	return entity.Movement{ID: entity.MovementID(id), EntityRef: acct, In: dec(in), Out: dec(out), Kind: entity.MovementKindJOURNAL}
}

func balances(r ledger.ReplayResult) []string {
	out := make([]string, len(r.Steps))
	for i, s := range r.Steps {
		out[i] = s.Balance.String()
	}
	return out
}

// ──────────────────────────────────────────────────────────────────────────────
// Escenarios de saldo corrido
// ──────────────────────────────────────────────────────────────────────────────

func TestReplay_NormalDebit(t *testing.T) {
	movs := []entity.Movement{mv(1, "100", "0"), mv(2, "0", "30"), mv(3, "50", "0")}

	res, err := ledger.Replay(movs, entity.PolarityNormalDebit, decimal.Zero)
	require.NoError(t, err)

	assert.Equal(t, []string{"100", "70", "120"}, balances(res))
	assert.True(t, res.Final.Equal(dec("120")))
	assert.Equal(t, entity.MovementID(3), res.AsOf)
	assert.Equal(t, int64(3), res.Count)
}

func TestReplay_NormalCredit(t *testing.T) {
	movs := []entity.Movement{mv(1, "100", "0"), mv(2, "0", "30"), mv(3, "50", "0")}

	res, err := ledger.Replay(movs, entity.PolarityNormalCredit, decimal.Zero)
	require.NoError(t, err)

	assert.Equal(t, []string{"-100", "-70", "-120"}, balances(res))
	assert.True(t, res.Final.Equal(dec("-120")))
}

func TestReplay_EmptyReturnsOpening(t *testing.T) {
	res, err := ledger.Replay(nil, entity.PolarityNormalDebit, dec("42.5"))
	require.NoError(t, err)

	assert.True(t, res.Final.Equal(dec("42.5")))
	assert.Empty(t, res.Steps)
	assert.Equal(t, entity.MovementID(0), res.AsOf)
	assert.Zero(t, res.Count)
}

func TestReplay_ZeroMovementIsCheckpoint(t *testing.T) {
	movs := []entity.Movement{mv(1, "10", "0"), mv(2, "0", "0"), mv(3, "0", "4")}

	res, err := ledger.Replay(movs, entity.PolarityNormalDebit, decimal.Zero)
	require.NoError(t, err)

	require.Len(t, res.Steps, 3)
	assert.Equal(t, entity.MovementID(2), res.Steps[1].MovementID)
	assert.True(t, res.Steps[1].Delta.IsZero())
	assert.Equal(t, []string{"10", "10", "6"}, balances(res))
}

func TestReplay_DecimalPrecision(t *testing.T) {
	movs := []entity.Movement{mv(1, "0.1", "0"), mv(2, "0.2", "0")}

	res, err := ledger.Replay(movs, entity.PolarityNormalDebit, decimal.Zero)
	require.NoError(t, err)
	assert.Equal(t, "0.3", res.Final.String())
}

// ──────────────────────────────────────────────────────────────────────────────
// Fallos
// ──────────────────────────────────────────────────────────────────────────────

func TestReplay_OrderingError(t *testing.T) {
	cases := []struct {
		name  string
		ids   []int64
		index int
	}{
		{"Caso 1: descendente", []int64{3, 1, 2}, 1},
		{"Caso 2: id repetido", []int64{1, 2, 2}, 2},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var movs []entity.Movement
			for _, id := range tc.ids {
				movs = append(movs, mv(id, "1", "0"))
			}
			_, err := ledger.Replay(movs, entity.PolarityNormalDebit, decimal.Zero)
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrOrdering))

			var oe *domain.OrderingError
			require.True(t, errors.As(err, &oe))
			assert.Equal(t, tc.index, oe.Index)
		})
	}
}

func TestReplay_UnknownPolarity(t *testing.T) {
	_, err := ledger.Replay([]entity.Movement{mv(1, "1", "0")}, entity.PolarityUnknown, decimal.Zero)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrPolarityUndetermined))
}

func TestReplay_InvalidMovement(t *testing.T) {
	cases := []struct {
		name    string
		in, out string
	}{
		{"Caso 1: entrada y salida a la vez", "5", "3"},
		{"Caso 2: entrada negativa", "-1", "0"},
		{"Caso 3: salida negativa", "0", "-1"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ledger.Replay([]entity.Movement{mv(1, tc.in, tc.out)}, entity.PolarityNormalDebit, decimal.Zero)
			assert.True(t, errors.Is(err, domain.ErrInvalidMovement))
		})
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Propiedades
// ──────────────────────────────────────────────────────────────────────────────

func TestReplay_Chunking(t *testing.T) {
	movs := []entity.Movement{
		mv(1, "100", "0"), mv(2, "0", "30"), mv(4, "0", "0"),
		mv(7, "12.75", "0"), mv(9, "0", "80.25"), mv(10, "3", "0"),
	}
	for _, pol := range []entity.Polarity{entity.PolarityNormalDebit, entity.PolarityNormalCredit} {
		full, err := ledger.Replay(movs, pol, dec("5"))
		require.NoError(t, err)

		for k := 0; k <= len(movs); k++ {
			head, err := ledger.Replay(movs[:k], pol, dec("5"))
			require.NoError(t, err)
			tail, err := ledger.Replay(movs[k:], pol, head.Final)
			require.NoError(t, err)
			assert.True(t, full.Final.Equal(tail.Final), "polaridad %s, corte en %d", pol, k)
		}
	}
}

func TestReplay_Deterministic(t *testing.T) {
	movs := []entity.Movement{mv(1, "1.5", "0"), mv(2, "0", "0.25")}
	a, err := ledger.Replay(movs, entity.PolarityNormalDebit, decimal.Zero)
	require.NoError(t, err)
	b, err := ledger.Replay(movs, entity.PolarityNormalDebit, decimal.Zero)
	require.NoError(t, err)
	assert.Equal(t, balances(a), balances(b))
	assert.True(t, a.Final.Equal(b.Final))
}

func TestSortCanonical(t *testing.T) {
	movs := []entity.Movement{mv(3, "1", "0"), mv(1, "1", "0"), mv(2, "0", "1")}
	ledger.SortCanonical(movs)

	assert.Equal(t, entity.MovementID(1), movs[0].ID)
	assert.Equal(t, entity.MovementID(2), movs[1].ID)
	assert.Equal(t, entity.MovementID(3), movs[2].ID)

	_, err := ledger.Replay(movs, entity.PolarityNormalDebit, decimal.Zero)
	assert.NoError(t, err)
}
