package ledger

import (
	"context"

	"github.com/jhoicas/ledger-api/internal/domain/entity"
	"github.com/jhoicas/ledger-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción, pasando repositorios atados a esa tx.
// Si fn devuelve error no queda ningún efecto persistido.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		movements repository.MovementStore,
		entities repository.EntityDirectory,
		takes repository.StockTakeRepository,
	) error) error
}

// EntityLocker serializa los escritores de una misma entidad.
// Lock bloquea hasta obtener el candado o hasta que ctx se cancele; la función devuelta lo libera.
type EntityLocker interface {
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

// BalanceCache guarda el último saldo calculado por entidad. No es fuente de verdad:
// el servicio valida cada entrada contra las estadísticas del almacén antes de usarla.
type BalanceCache interface {
	Get(ctx context.Context, ref entity.EntityRef) (entity.Balance, bool, error)
	Set(ctx context.Context, b entity.Balance) error
	Invalidate(ctx context.Context, ref entity.EntityRef) error
}
