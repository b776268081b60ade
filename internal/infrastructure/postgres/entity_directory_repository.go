package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/ledger-api/internal/domain"
	"github.com/jhoicas/ledger-api/internal/domain/entity"
	"github.com/jhoicas/ledger-api/internal/domain/repository"
)

var _ repository.EntityDirectory = (*EntityDirectoryRepo)(nil)

// EntityDirectoryRepo clasificación de entidades sobre PostgreSQL (usable con pool o tx).
type EntityDirectoryRepo struct {
	q Querier
}

// NewEntityDirectoryRepository construye el adaptador. Pasar pool o tx (Querier).
func NewEntityDirectoryRepository(q Querier) *EntityDirectoryRepo {
	return &EntityDirectoryRepo{q: q}
}

// Register inserta la entidad si no existe; si existe con otra polaridad devuelve ErrPolarityConflict.
func (r *EntityDirectoryRepo) Register(ctx context.Context, e *entity.LedgerEntity) error {
	query := `
		INSERT INTO ledger_entities (entity_ref, account_id, product_id, store_id, polarity, name, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, now())
		ON CONFLICT (entity_ref) DO NOTHING`
	tag, err := r.q.Exec(ctx, query,
		e.Ref.Key(), e.Ref.AccountID, e.Ref.ProductID, e.Ref.StoreID, string(e.Polarity), e.Name,
	)
	if err != nil {
		return translateError("register entity", err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}
	prev, err := r.Get(ctx, e.Ref)
	if err != nil {
		return err
	}
	if prev != nil && prev.Polarity != e.Polarity {
		return fmt.Errorf("%w: %s es %s", domain.ErrPolarityConflict, e.Ref.Key(), prev.Polarity)
	}
	return nil
}

// Get devuelve la entidad clasificada o nil, nil si no existe.
func (r *EntityDirectoryRepo) Get(ctx context.Context, ref entity.EntityRef) (*entity.LedgerEntity, error) {
	query := `SELECT polarity, name FROM ledger_entities WHERE entity_ref = $1`
	e := entity.LedgerEntity{Ref: ref}
	var polarity string
	err := r.q.QueryRow(ctx, query, ref.Key()).Scan(&polarity, &e.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, translateError("get entity", err)
	}
	e.Polarity = entity.Polarity(polarity)
	return &e, nil
}

// ListStoreProducts lista los productos con saldo de stock clasificado en la tienda.
func (r *EntityDirectoryRepo) ListStoreProducts(ctx context.Context, storeID string) ([]string, error) {
	query := `
		SELECT product_id FROM ledger_entities
		WHERE store_id = $1 AND product_id <> ''
		ORDER BY product_id`
	rows, err := r.q.Query(ctx, query, storeID)
	if err != nil {
		return nil, translateError("list store products", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		out = append(out, id)
	}
	if err := rows.Err(); err != nil {
		return nil, translateError("list store products", err)
	}
	return out, nil
}
