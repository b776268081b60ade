package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una toma de inventario.
const (
	StockTakeStatusDraft  = "DRAFT"
	StockTakeStatusPosted = "POSTED"
)

// StockTakeLine línea de conteo: la cantidad del sistema queda congelada al abrir la sesión.
type StockTakeLine struct {
	ProductID      string
	SystemQuantity decimal.Decimal
	AsOf           MovementID       // último movimiento incluido en SystemQuantity
	Counted        *decimal.Decimal // nil hasta que se registra el conteo físico
}

// StockTakeSession toma física de inventario de una tienda.
type StockTakeSession struct {
	ID        string
	StoreID   string
	Status    string
	StartedAt time.Time
	PostedAt  *time.Time
	CreatedBy string
	Lines     []StockTakeLine
}

// IsPosted indica si la sesión ya quedó congelada.
func (s *StockTakeSession) IsPosted() bool {
	return s.Status == StockTakeStatusPosted
}

// Line devuelve la línea del producto, o nil si no pertenece a la sesión.
func (s *StockTakeSession) Line(productID string) *StockTakeLine {
	for i := range s.Lines {
		if s.Lines[i].ProductID == productID {
			return &s.Lines[i]
		}
	}
	return nil
}

// Uncounted devuelve los productos sin conteo registrado.
func (s *StockTakeSession) Uncounted() []string {
	var out []string
	for _, l := range s.Lines {
		if l.Counted == nil {
			out = append(out, l.ProductID)
		}
	}
	return out
}
