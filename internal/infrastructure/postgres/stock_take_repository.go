package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/ledger-api/internal/domain"
	"github.com/jhoicas/ledger-api/internal/domain/entity"
	"github.com/jhoicas/ledger-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var _ repository.StockTakeRepository = (*StockTakeRepo)(nil)

// StockTakeRepo tomas de inventario sobre PostgreSQL (usable con pool o tx).
// Toda mutación filtra por status = 'DRAFT'.
type StockTakeRepo struct {
	q Querier
}

// NewStockTakeRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockTakeRepository(q Querier) *StockTakeRepo {
	return &StockTakeRepo{q: q}
}

// Create inserta la cabecera y sus líneas en un único batch (transacción implícita si q es el pool).
func (r *StockTakeRepo) Create(ctx context.Context, s *entity.StockTakeSession) error {
	b := &pgx.Batch{}
	b.Queue(`
		INSERT INTO stock_take_sessions (id, store_id, status, started_at, created_by)
		VALUES ($1, $2, $3, $4, $5)`,
		s.ID, s.StoreID, s.Status, s.StartedAt, s.CreatedBy,
	)
	for _, l := range s.Lines {
		b.Queue(`
			INSERT INTO stock_take_lines (session_id, product_id, system_quantity, as_of, counted_quantity)
			VALUES ($1, $2, $3, $4, $5)`,
			s.ID, l.ProductID, l.SystemQuantity, int64(l.AsOf), l.Counted,
		)
	}
	br := r.q.SendBatch(ctx, b)
	for i := 0; i < b.Len(); i++ {
		if _, err := br.Exec(); err != nil {
			_ = br.Close()
			if isUniqueViolation(err) {
				return fmt.Errorf("%w: la toma %s ya existe", domain.ErrInvalidInput, s.ID)
			}
			return translateError("create stock take", err)
		}
	}
	if err := br.Close(); err != nil {
		return translateError("create stock take", err)
	}
	return nil
}

// GetByID obtiene la sesión con sus líneas; nil, nil si no existe.
func (r *StockTakeRepo) GetByID(ctx context.Context, id string) (*entity.StockTakeSession, error) {
	return r.get(ctx, id, false)
}

// GetForUpdate obtiene la sesión y bloquea su fila hasta el fin de la transacción.
func (r *StockTakeRepo) GetForUpdate(ctx context.Context, id string) (*entity.StockTakeSession, error) {
	return r.get(ctx, id, true)
}

func (r *StockTakeRepo) get(ctx context.Context, id string, forUpdate bool) (*entity.StockTakeSession, error) {
	query := `
		SELECT id, store_id, status, started_at, posted_at, created_by
		FROM stock_take_sessions WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	var s entity.StockTakeSession
	err := r.q.QueryRow(ctx, query, id).Scan(&s.ID, &s.StoreID, &s.Status, &s.StartedAt, &s.PostedAt, &s.CreatedBy)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, translateError("get stock take", err)
	}

	rows, err := r.q.Query(ctx, `
		SELECT product_id, system_quantity, as_of, counted_quantity
		FROM stock_take_lines WHERE session_id = $1
		ORDER BY product_id`, id)
	if err != nil {
		return nil, translateError("get stock take lines", err)
	}
	defer rows.Close()
	for rows.Next() {
		var l entity.StockTakeLine
		var asOf int64
		if err := rows.Scan(&l.ProductID, &l.SystemQuantity, &asOf, &l.Counted); err != nil {
			return nil, fmt.Errorf("scan stock take line: %w", err)
		}
		l.AsOf = entity.MovementID(asOf)
		s.Lines = append(s.Lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, translateError("get stock take lines", err)
	}
	return &s, nil
}

// SetCounted registra el conteo de un producto mientras la sesión está en DRAFT.
func (r *StockTakeRepo) SetCounted(ctx context.Context, id, productID string, counted decimal.Decimal) error {
	query := `
		UPDATE stock_take_lines l SET counted_quantity = $3
		FROM stock_take_sessions s
		WHERE l.session_id = $1 AND l.product_id = $2 AND s.id = l.session_id AND s.status = 'DRAFT'`
	tag, err := r.q.Exec(ctx, query, id, productID, counted)
	if err != nil {
		return translateError("set counted", err)
	}
	if tag.RowsAffected() == 0 {
		return r.draftError(ctx, id)
	}
	return nil
}

// MarkPosted cambia DRAFT→POSTED.
func (r *StockTakeRepo) MarkPosted(ctx context.Context, id string, postedAt time.Time) error {
	query := `
		UPDATE stock_take_sessions SET status = 'POSTED', posted_at = $2
		WHERE id = $1 AND status = 'DRAFT'`
	tag, err := r.q.Exec(ctx, query, id, postedAt)
	if err != nil {
		return translateError("mark posted", err)
	}
	if tag.RowsAffected() == 0 {
		return r.draftError(ctx, id)
	}
	return nil
}

// Delete descarta una sesión en DRAFT; las líneas se borran en cascada.
func (r *StockTakeRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM stock_take_sessions WHERE id = $1 AND status = 'DRAFT'`, id)
	if err != nil {
		return translateError("delete stock take", err)
	}
	if tag.RowsAffected() == 0 {
		return r.draftError(ctx, id)
	}
	return nil
}

// draftError explica por qué una mutación no afectó filas.
func (r *StockTakeRepo) draftError(ctx context.Context, id string) error {
	var status string
	err := r.q.QueryRow(ctx, `SELECT status FROM stock_take_sessions WHERE id = $1`, id).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrNotFound
		}
		return translateError("get stock take status", err)
	}
	if status == entity.StockTakeStatusPosted {
		return &domain.AlreadyPostedError{SessionID: id}
	}
	// Sesión en DRAFT pero sin la línea pedida.
	return domain.ErrNotFound
}
