// Package ledger contiene los servicios de dominio puros del libro de movimientos:
// reproducción de saldos y conciliación contra conteos externos. No hace I/O ni reintentos.
package ledger

import (
	"sort"

	"github.com/jhoicas/ledger-api/internal/domain"
	"github.com/jhoicas/ledger-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// Step saldo corrido después de aplicar un movimiento.
type Step struct {
	MovementID entity.MovementID
	Delta      decimal.Decimal
	Balance    decimal.Decimal
}

// ReplayResult traza completa de una reproducción.
type ReplayResult struct {
	Steps []Step
	Final decimal.Decimal
	AsOf  entity.MovementID // id del último movimiento aplicado (cero si no hubo)
	Count int64
}

// Replay aplica los movimientos, en orden ascendente estricto por id, sobre el saldo de apertura.
// Nunca reordena: una secuencia desordenada devuelve *domain.OrderingError.
// Un movimiento de monto cero no cambia el saldo pero aparece en la traza.
func Replay(movements []entity.Movement, polarity entity.Polarity, opening decimal.Decimal) (ReplayResult, error) {
	if !polarity.Valid() {
		ref := ""
		if len(movements) > 0 {
			ref = movements[0].EntityRef.Key()
		}
		return ReplayResult{}, &domain.PolarityUndeterminedError{EntityRef: ref}
	}

	res := ReplayResult{
		Steps: make([]Step, 0, len(movements)),
		Final: opening,
	}
	running := opening
	for i, m := range movements {
		if i > 0 && m.ID <= movements[i-1].ID {
			return ReplayResult{}, &domain.OrderingError{Index: i, PrevID: int64(movements[i-1].ID), ID: int64(m.ID)}
		}
		if reason := m.Validate(); reason != "" {
			return ReplayResult{}, &domain.InvalidMovementError{ID: int64(m.ID), Reason: reason}
		}
		delta := m.Delta(polarity)
		running = running.Add(delta)
		res.Steps = append(res.Steps, Step{MovementID: m.ID, Delta: delta, Balance: running})
		res.AsOf = m.ID
	}
	res.Final = running
	res.Count = int64(len(movements))
	return res, nil
}

// SortCanonical ordena in-place por id ascendente: el único orden válido de reproducción.
// Es un paso explícito del llamador; Replay nunca lo hace por su cuenta.
func SortCanonical(movements []entity.Movement) {
	sort.SliceStable(movements, func(i, j int) bool {
		return movements[i].ID < movements[j].ID
	})
}
