package entity

import "github.com/shopspring/decimal"

// Balance saldo de una entidad tras reproducir sus movimientos hasta AsOf (inclusive).
// Siempre puede re-derivarse; cualquier copia persistida es una caché.
type Balance struct {
	EntityRef EntityRef
	AsOf      MovementID
	Count     int64
	Value     decimal.Decimal
}

// StatementLine movimiento con el saldo corrido después de aplicarlo.
type StatementLine struct {
	Movement Movement
	Delta    decimal.Decimal
	Balance  decimal.Decimal
}

// Statement extracto de una entidad en un rango cerrado de ids.
type Statement struct {
	EntityRef EntityRef
	Polarity  Polarity
	FromID    MovementID
	ToID      MovementID
	Opening   decimal.Decimal
	Lines     []StatementLine
	Closing   decimal.Decimal
}
