package repository

import (
	"context"

	"github.com/jhoicas/ledger-api/internal/domain/entity"
)

// MovementStore define el puerto del libro de movimientos. Solo admite inserciones:
// un movimiento persistido nunca se modifica ni se borra.
type MovementStore interface {
	// Append asigna el id definitivo (max(ultimo+1, id provisional)) y persiste el movimiento.
	// Si otro escritor tomó la misma secuencia devuelve domain.ErrConcurrentAppendConflict.
	Append(ctx context.Context, m *entity.Movement) error
	// Query devuelve los movimientos con from <= id <= to en orden ascendente. to == 0 significa "hasta el último".
	Query(ctx context.Context, ref entity.EntityRef, from, to entity.MovementID) ([]entity.Movement, error)
	Stats(ctx context.Context, ref entity.EntityRef) (entity.MovementStats, error)
}
