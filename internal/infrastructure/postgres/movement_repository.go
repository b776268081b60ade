package postgres

import (
	"context"
	"fmt"

	"github.com/jhoicas/ledger-api/internal/domain/entity"
	"github.com/jhoicas/ledger-api/internal/domain/repository"
)

var _ repository.MovementStore = (*MovementRepo)(nil)

// MovementRepo libro de movimientos sobre PostgreSQL (usable con pool o tx).
// La secuencia por entidad la protege UNIQUE(entity_ref, seq): dos escritores que calculan
// el mismo seq chocan y uno recibe ErrConcurrentAppendConflict.
type MovementRepo struct {
	q Querier
}

// NewMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewMovementRepository(q Querier) *MovementRepo {
	return &MovementRepo{q: q}
}

// Append inserta el movimiento con seq = max(último + 1, id provisional) y lo devuelve en m.ID.
func (r *MovementRepo) Append(ctx context.Context, m *entity.Movement) error {
	query := `
		INSERT INTO ledger_movements (entity_ref, seq, in_amount, out_amount, kind, reference, created_at, created_by)
		SELECT $1::text, GREATEST(COALESCE(MAX(seq), 0) + 1, $2::bigint), $3::numeric, $4::numeric, $5::text, $6::text, $7::timestamptz, $8::text
		FROM ledger_movements WHERE entity_ref = $1
		RETURNING seq`
	var createdBy *string
	if m.CreatedBy != "" {
		createdBy = &m.CreatedBy
	}
	var seq int64
	err := r.q.QueryRow(ctx, query,
		m.EntityRef.Key(), int64(m.ID), m.In, m.Out, m.Kind, m.Reference, m.CreatedAt, createdBy,
	).Scan(&seq)
	if err != nil {
		return translateError("append movement", err)
	}
	m.ID = entity.MovementID(seq)
	return nil
}

// Query devuelve los movimientos from <= seq <= to (to == 0: sin tope) ordenados por seq.
func (r *MovementRepo) Query(ctx context.Context, ref entity.EntityRef, from, to entity.MovementID) ([]entity.Movement, error) {
	query := `
		SELECT seq, in_amount, out_amount, kind, reference, created_at, created_by
		FROM ledger_movements
		WHERE entity_ref = $1 AND seq >= $2 AND ($3::bigint = 0 OR seq <= $3::bigint)
		ORDER BY seq`
	rows, err := r.q.Query(ctx, query, ref.Key(), int64(from), int64(to))
	if err != nil {
		return nil, translateError("query movements", err)
	}
	defer rows.Close()

	var list []entity.Movement
	for rows.Next() {
		m := entity.Movement{EntityRef: ref}
		var seq int64
		var createdBy *string
		if err := rows.Scan(&seq, &m.In, &m.Out, &m.Kind, &m.Reference, &m.CreatedAt, &createdBy); err != nil {
			return nil, fmt.Errorf("scan movement: %w", err)
		}
		m.ID = entity.MovementID(seq)
		if createdBy != nil {
			m.CreatedBy = *createdBy
		}
		list = append(list, m)
	}
	if err := rows.Err(); err != nil {
		return nil, translateError("query movements", err)
	}
	return list, nil
}

// Stats cuenta los movimientos de la entidad y devuelve el último seq.
func (r *MovementRepo) Stats(ctx context.Context, ref entity.EntityRef) (entity.MovementStats, error) {
	query := `SELECT COUNT(*), COALESCE(MAX(seq), 0) FROM ledger_movements WHERE entity_ref = $1`
	var count, maxSeq int64
	if err := r.q.QueryRow(ctx, query, ref.Key()).Scan(&count, &maxSeq); err != nil {
		return entity.MovementStats{}, translateError("movement stats", err)
	}
	return entity.MovementStats{Count: count, MaxID: entity.MovementID(maxSeq)}, nil
}
