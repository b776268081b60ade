package ledger

import (
	"github.com/jhoicas/ledger-api/internal/domain"
	"github.com/jhoicas/ledger-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// Reconciliation resultado de comparar un saldo del sistema con un valor contado.
type Reconciliation struct {
	EntityRef  entity.EntityRef
	System     decimal.Decimal
	Counted    decimal.Decimal
	Variance   decimal.Decimal  // Counted - System
	Adjustment *entity.Movement // nil cuando la varianza es cero
}

// HasAdjustment indica si la conciliación produjo un movimiento de ajuste.
func (r Reconciliation) HasAdjustment() bool { return r.Adjustment != nil }

// Reconcile calcula la varianza y, si es distinta de cero, el movimiento que la corrige.
//
// El ajuste lleva un id provisional system.AsOf+1: queda después de todo movimiento que
// contribuyó al saldo del sistema, de modo que Replay(movimientos ++ ajuste) == counted.
// El almacén asigna el id definitivo, que nunca es menor.
func Reconcile(system entity.Balance, counted decimal.Decimal, polarity entity.Polarity) (Reconciliation, error) {
	if !polarity.Valid() {
		return Reconciliation{}, &domain.PolarityUndeterminedError{EntityRef: system.EntityRef.Key()}
	}
	variance := counted.Sub(system.Value)
	rec := Reconciliation{
		EntityRef: system.EntityRef,
		System:    system.Value,
		Counted:   counted,
		Variance:  variance,
	}
	if variance.IsZero() {
		return rec, nil
	}

	increase, decrease := variance, decimal.Zero
	if variance.IsNegative() {
		increase, decrease = decimal.Zero, variance.Neg()
	}
	adj := entity.Movement{
		ID:        system.AsOf + 1,
		EntityRef: system.EntityRef,
		Kind:      entity.MovementKindADJUSTMENT,
	}
	// En NORMAL_CREDIT la salida es la que aumenta el saldo.
	if polarity == entity.PolarityNormalCredit {
		adj.In, adj.Out = decrease, increase
	} else {
		adj.In, adj.Out = increase, decrease
	}
	rec.Adjustment = &adj
	return rec, nil
}

// PolarityFunc resuelve la polaridad de una entidad.
type PolarityFunc func(entity.EntityRef) (entity.Polarity, error)

// ReconcileSession concilia cada línea contra la cantidad congelada al abrir la sesión,
// nunca contra un saldo vivo. No persiste nada: el commit atómico es del servicio.
func ReconcileSession(session *entity.StockTakeSession, polarityOf PolarityFunc) ([]Reconciliation, error) {
	if session.IsPosted() {
		return nil, &domain.AlreadyPostedError{SessionID: session.ID}
	}
	if missing := session.Uncounted(); len(missing) > 0 {
		return nil, &domain.IncompleteCountError{SessionID: session.ID, ProductIDs: missing}
	}

	out := make([]Reconciliation, 0, len(session.Lines))
	for _, line := range session.Lines {
		ref := entity.StockRef(line.ProductID, session.StoreID)
		polarity, err := polarityOf(ref)
		if err != nil {
			return nil, err
		}
		system := entity.Balance{EntityRef: ref, AsOf: line.AsOf, Value: line.SystemQuantity}
		rec, err := Reconcile(system, *line.Counted, polarity)
		if err != nil {
			return nil, err
		}
		if rec.Adjustment != nil {
			rec.Adjustment.Reference = session.ID
		}
		out = append(out, rec)
	}
	return out, nil
}

// Adjustments extrae los movimientos de ajuste no nulos.
func Adjustments(recs []Reconciliation) []entity.Movement {
	var out []entity.Movement
	for _, r := range recs {
		if r.Adjustment != nil {
			out = append(out, *r.Adjustment)
		}
	}
	return out
}
