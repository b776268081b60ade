package repository

import (
	"context"

	"github.com/jhoicas/ledger-api/internal/domain/entity"
)

// EntityDirectory define el puerto que clasifica cada entidad con su polaridad.
type EntityDirectory interface {
	// Register clasifica la entidad. Registrar de nuevo con la misma polaridad no hace nada;
	// con otra polaridad devuelve domain.ErrPolarityConflict.
	Register(ctx context.Context, e *entity.LedgerEntity) error
	// Get devuelve nil, nil si la entidad no está clasificada.
	Get(ctx context.Context, ref entity.EntityRef) (*entity.LedgerEntity, error)
	// ListStoreProducts lista los productos con saldo de stock registrado en la tienda, ordenados.
	ListStoreProducts(ctx context.Context, storeID string) ([]string, error)
}
