package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento.
const (
	MovementKindIN         = "IN"         // entrada
	MovementKindOUT        = "OUT"        // salida
	MovementKindADJUSTMENT = "ADJUSTMENT" // ajuste por conciliación o toma de inventario
	MovementKindTRANSFER   = "TRANSFER"   // traslado entre tiendas
	MovementKindJOURNAL    = "JOURNAL"    // línea de asiento contable
	MovementKindOPENING    = "OPENING"    // saldo inicial
)

// MovementID secuencia por entidad (1, 2, 3...). Cero significa "aún sin asignar".
type MovementID int64

// Movement registro inmutable de un cambio de cantidad sobre una entidad.
// Un movimiento es entrada o salida, nunca ambas: In y Out no pueden ser distintos de cero a la vez.
type Movement struct {
	ID        MovementID
	EntityRef EntityRef
	In        decimal.Decimal
	Out       decimal.Decimal
	Kind      string
	Reference string // factura, sesión de toma, asiento, etc.
	CreatedAt time.Time
	CreatedBy string
}

// IsZero indica un movimiento sin cantidad (punto de control).
func (m Movement) IsZero() bool {
	return m.In.IsZero() && m.Out.IsZero()
}

// Delta devuelve la variación del saldo según la polaridad de la entidad.
func (m Movement) Delta(p Polarity) decimal.Decimal {
	if p == PolarityNormalCredit {
		return m.Out.Sub(m.In)
	}
	return m.In.Sub(m.Out)
}

// Validate comprueba la invariante de montos. Devuelve una razón vacía si es válido.
func (m Movement) Validate() string {
	switch {
	case m.In.IsNegative():
		return "in_amount negativo"
	case m.Out.IsNegative():
		return "out_amount negativo"
	case !m.In.IsZero() && !m.Out.IsZero():
		return "in_amount y out_amount no pueden ser ambos distintos de cero"
	}
	return ""
}

// MovementStats resumen de los movimientos de una entidad; sirve para validar cachés de saldo.
type MovementStats struct {
	Count int64
	MaxID MovementID
}
