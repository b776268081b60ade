package repository

import (
	"context"
	"time"

	"github.com/jhoicas/ledger-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// StockTakeRepository define el puerto de persistencia de las tomas de inventario.
// Las únicas mutaciones legales son: conteo mientras está en DRAFT, DRAFT→POSTED y borrado en DRAFT.
type StockTakeRepository interface {
	Create(ctx context.Context, s *entity.StockTakeSession) error
	// GetByID devuelve nil, nil si la sesión no existe.
	GetByID(ctx context.Context, id string) (*entity.StockTakeSession, error)
	// GetForUpdate igual que GetByID pero bloquea la sesión hasta el fin de la transacción (SELECT FOR UPDATE).
	GetForUpdate(ctx context.Context, id string) (*entity.StockTakeSession, error)
	SetCounted(ctx context.Context, id, productID string, counted decimal.Decimal) error
	MarkPosted(ctx context.Context, id string, postedAt time.Time) error
	Delete(ctx context.Context, id string) error
}
