package ledger

import (
	"context"
	"fmt"

	"github.com/jhoicas/ledger-api/internal/domain"
	"github.com/jhoicas/ledger-api/internal/domain/entity"
	"github.com/jhoicas/ledger-api/internal/domain/ledger"
	"github.com/jhoicas/ledger-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

// PostResult resultado de contabilizar una toma de inventario.
type PostResult struct {
	Session         *entity.StockTakeSession
	Reconciliations []ledger.Reconciliation
	Adjustments     []entity.Movement // con el id definitivo asignado por el almacén
}

// OpenStockTake abre una toma para la tienda y congela el saldo de cada producto en ese instante.
func (s *Service) OpenStockTake(ctx context.Context, storeID, createdBy string) (*entity.StockTakeSession, error) {
	storeID = entity.NormalizeID(storeID)
	if !entity.ValidStockID(storeID) {
		return nil, domain.ErrInvalidInput
	}
	var products []string
	err := s.withRetry(ctx, "list_store_products", func() error {
		var err error
		products, err = s.entities.ListStoreProducts(ctx, storeID)
		return err
	})
	if err != nil {
		return nil, err
	}

	lines, err := s.snapshot(ctx, storeID, products)
	if err != nil {
		return nil, err
	}
	session := &entity.StockTakeSession{
		ID:        s.newID(),
		StoreID:   storeID,
		Status:    entity.StockTakeStatusDraft,
		StartedAt: s.now(),
		CreatedBy: createdBy,
		Lines:     lines,
	}
	err = s.withRetry(ctx, "open_stock_take", func() error {
		return s.takes.Create(ctx, session)
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("session_id", session.ID).Str("store_id", storeID).Int("lines", len(lines)).Msg("toma de inventario abierta")
	return session, nil
}

// GetStockTake devuelve la sesión o domain.ErrNotFound.
func (s *Service) GetStockTake(ctx context.Context, id string) (*entity.StockTakeSession, error) {
	var session *entity.StockTakeSession
	err := s.withRetry(ctx, "get_stock_take", func() error {
		var err error
		session, err = s.takes.GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, domain.ErrNotFound
	}
	return session, nil
}

// RecordCount registra (o corrige) la cantidad contada de un producto mientras la sesión está en DRAFT.
func (s *Service) RecordCount(ctx context.Context, sessionID, productID string, counted decimal.Decimal) (*entity.StockTakeSession, error) {
	productID = entity.NormalizeID(productID)
	if !entity.ValidStockID(productID) || counted.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	var session *entity.StockTakeSession
	err := s.withRetry(ctx, "record_count", func() error {
		return s.txRunner.Run(ctx, func(_ repository.MovementStore, _ repository.EntityDirectory, takes repository.StockTakeRepository) error {
			var err error
			session, err = lockDraft(ctx, takes, sessionID)
			if err != nil {
				return err
			}
			line := session.Line(productID)
			if line == nil {
				return fmt.Errorf("%w: el producto %s no pertenece a la toma %s", domain.ErrNotFound, productID, sessionID)
			}
			if err := takes.SetCounted(ctx, sessionID, productID, counted); err != nil {
				return err
			}
			c := counted
			line.Counted = &c
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return session, nil
}

// PostStockTake concilia cada línea contra su cantidad congelada, persiste los ajustes y marca la
// sesión POSTED en una sola transacción. Si algo falla la sesión sigue en DRAFT y puede reintentarse.
func (s *Service) PostStockTake(ctx context.Context, sessionID, postedBy string) (*PostResult, error) {
	var result *PostResult
	err := s.withRetry(ctx, "post_stock_take", func() error {
		result = nil
		return s.txRunner.Run(ctx, func(movs repository.MovementStore, ents repository.EntityDirectory, takes repository.StockTakeRepository) error {
			session, err := lockDraft(ctx, takes, sessionID)
			if err != nil {
				return err
			}
			recs, err := ledger.ReconcileSession(session, func(ref entity.EntityRef) (entity.Polarity, error) {
				return s.polarity(ctx, ents, ref)
			})
			if err != nil {
				return err
			}

			now := s.now()
			res := &PostResult{Session: session, Reconciliations: recs}
			for i := range recs {
				if recs[i].Adjustment == nil {
					continue
				}
				adj := *recs[i].Adjustment
				adj.CreatedAt = now
				adj.CreatedBy = postedBy
				if err := movs.Append(ctx, &adj); err != nil {
					return err
				}
				recs[i].Adjustment = &adj
				res.Adjustments = append(res.Adjustments, adj)
			}
			if err := takes.MarkPosted(ctx, sessionID, now); err != nil {
				return err
			}
			session.Status = entity.StockTakeStatusPosted
			session.PostedAt = &now
			result = res
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	for _, adj := range result.Adjustments {
		s.invalidate(ctx, adj.EntityRef)
	}
	s.log.Info().Str("session_id", sessionID).Int("adjustments", len(result.Adjustments)).Msg("toma de inventario contabilizada")
	return result, nil
}

// DiscardStockTake elimina una sesión en DRAFT sin ningún efecto sobre el libro.
func (s *Service) DiscardStockTake(ctx context.Context, sessionID string) error {
	err := s.withRetry(ctx, "discard_stock_take", func() error {
		return s.txRunner.Run(ctx, func(_ repository.MovementStore, _ repository.EntityDirectory, takes repository.StockTakeRepository) error {
			if _, err := lockDraft(ctx, takes, sessionID); err != nil {
				return err
			}
			return takes.Delete(ctx, sessionID)
		})
	})
	if err != nil {
		return err
	}
	s.log.Info().Str("session_id", sessionID).Msg("toma de inventario descartada")
	return nil
}

// lockDraft bloquea la sesión y exige que siga en DRAFT.
func lockDraft(ctx context.Context, takes repository.StockTakeRepository, id string) (*entity.StockTakeSession, error) {
	session, err := takes.GetForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if session == nil {
		return nil, domain.ErrNotFound
	}
	if session.IsPosted() {
		return nil, &domain.AlreadyPostedError{SessionID: id}
	}
	return session, nil
}
