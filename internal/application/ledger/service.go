// Package ledger orquesta el libro de movimientos: saldos, conciliación y tomas de inventario.
package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/ledger-api/internal/domain"
	"github.com/jhoicas/ledger-api/internal/domain/entity"
	"github.com/jhoicas/ledger-api/internal/domain/ledger"
	"github.com/jhoicas/ledger-api/internal/domain/repository"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

const defaultSnapshotConcurrency = 8

// Service caso de uso principal del libro. Es seguro para uso concurrente.
type Service struct {
	movements repository.MovementStore
	entities  repository.EntityDirectory
	takes     repository.StockTakeRepository
	txRunner  TxRunner

	cache               BalanceCache
	locker              EntityLocker
	retry               RetryPolicy
	snapshotConcurrency int
	log                 zerolog.Logger
	now                 func() time.Time
	newID               func() string
}

// Option configura dependencias opcionales del servicio.
type Option func(*Service)

// WithCache reemplaza la caché en memoria (p. ej. por Redis).
func WithCache(c BalanceCache) Option { return func(s *Service) { s.cache = c } }

// WithLocker reemplaza el candado en proceso (p. ej. por un candado distribuido).
func WithLocker(l EntityLocker) Option { return func(s *Service) { s.locker = l } }

// WithRetryPolicy define el presupuesto de reintentos.
func WithRetryPolicy(p RetryPolicy) Option { return func(s *Service) { s.retry = p } }

// WithSnapshotConcurrency limita las consultas de saldo simultáneas al abrir una toma.
func WithSnapshotConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.snapshotConcurrency = n
		}
	}
}

// WithLogger define el logger del servicio.
func WithLogger(l zerolog.Logger) Option { return func(s *Service) { s.log = l } }

// WithClock fija el reloj (tests).
func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

// WithIDGenerator fija el generador de ids de sesión (tests).
func WithIDGenerator(f func() string) Option { return func(s *Service) { s.newID = f } }

// NewService construye el servicio. Sin opciones usa caché y candado en memoria.
func NewService(
	movements repository.MovementStore,
	entities repository.EntityDirectory,
	takes repository.StockTakeRepository,
	txRunner TxRunner,
	opts ...Option,
) *Service {
	s := &Service{
		movements:           movements,
		entities:            entities,
		takes:               takes,
		txRunner:            txRunner,
		cache:               NewMemoryCache(),
		locker:              NewLocalLocker(),
		retry:               DefaultRetryPolicy(),
		snapshotConcurrency: defaultSnapshotConcurrency,
		log:                 zerolog.Nop(),
		now:                 time.Now,
		newID:               uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ──────────────────────────────────────────────────────────────────────────────
// Entidades y movimientos
// ──────────────────────────────────────────────────────────────────────────────

// RegisterEntity clasifica una entidad con su polaridad. La polaridad no cambia después.
func (s *Service) RegisterEntity(ctx context.Context, ref entity.EntityRef, polarity entity.Polarity, name string) (*entity.LedgerEntity, error) {
	if !ref.Valid() || !polarity.Valid() {
		return nil, domain.ErrInvalidInput
	}
	e := &entity.LedgerEntity{Ref: ref, Polarity: polarity, Name: name}
	err := s.withRetry(ctx, "register_entity", func() error {
		return s.entities.Register(ctx, e)
	})
	if err != nil {
		return nil, err
	}
	return e, nil
}

// AppendMovement agrega un movimiento al libro. Los escritores de una misma entidad se serializan;
// el almacén asigna el id definitivo en m.ID.
func (s *Service) AppendMovement(ctx context.Context, m *entity.Movement) error {
	if !m.EntityRef.Valid() || m.Kind == "" {
		return domain.ErrInvalidInput
	}
	if reason := m.Validate(); reason != "" {
		return &domain.InvalidMovementError{ID: int64(m.ID), Reason: reason}
	}
	if _, err := s.polarity(ctx, s.entities, m.EntityRef); err != nil {
		return err
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = s.now()
	}

	provisional := m.ID
	err := s.withRetry(ctx, "append_movement", func() error {
		unlock, err := s.lock(ctx, m.EntityRef)
		if err != nil {
			return err
		}
		defer unlock()
		m.ID = provisional
		return s.movements.Append(ctx, m)
	})
	if err != nil {
		return err
	}
	s.invalidate(ctx, m.EntityRef)
	return nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Saldos
// ──────────────────────────────────────────────────────────────────────────────

// GetBalance reproduce los movimientos de la entidad hasta asOf (0 = último).
// El saldo al último movimiento se sirve desde la caché cuando sigue vigente.
func (s *Service) GetBalance(ctx context.Context, ref entity.EntityRef, asOf entity.MovementID) (entity.Balance, error) {
	if !ref.Valid() || asOf < 0 {
		return entity.Balance{}, domain.ErrInvalidInput
	}
	var out entity.Balance
	err := s.withRetry(ctx, "get_balance", func() error {
		polarity, err := s.polarity(ctx, s.entities, ref)
		if err != nil {
			return err
		}
		if asOf == 0 {
			out, err = s.latestBalance(ctx, ref, polarity)
			return err
		}
		movs, err := s.movements.Query(ctx, ref, 1, asOf)
		if err != nil {
			return err
		}
		res, err := ledger.Replay(movs, polarity, decimal.Zero)
		if err != nil {
			return err
		}
		out = entity.Balance{EntityRef: ref, AsOf: res.AsOf, Count: res.Count, Value: res.Final}
		return nil
	})
	return out, err
}

func (s *Service) latestBalance(ctx context.Context, ref entity.EntityRef, polarity entity.Polarity) (entity.Balance, error) {
	stats, err := s.movements.Stats(ctx, ref)
	if err != nil {
		return entity.Balance{}, err
	}

	cached, ok, err := s.cache.Get(ctx, ref)
	if err != nil {
		s.log.Warn().Err(err).Str("entity", ref.Key()).Msg("caché de saldos no disponible")
		ok = false
	}
	if ok {
		if cached.Count == stats.Count && cached.AsOf == stats.MaxID {
			s.log.Debug().Str("entity", ref.Key()).Int64("as_of", int64(cached.AsOf)).Msg("saldo desde caché")
			return cached, nil
		}
		// La entrada es un prefijo del libro: basta reproducir la cola sobre el saldo cacheado.
		if stats.Count > cached.Count && stats.MaxID > cached.AsOf {
			tail, err := s.movements.Query(ctx, ref, cached.AsOf+1, stats.MaxID)
			if err != nil {
				return entity.Balance{}, err
			}
			if int64(len(tail)) == stats.Count-cached.Count {
				res, err := ledger.Replay(tail, polarity, cached.Value)
				if err != nil {
					return entity.Balance{}, err
				}
				b := entity.Balance{EntityRef: ref, AsOf: res.AsOf, Count: cached.Count + res.Count, Value: res.Final}
				s.remember(ctx, b)
				return b, nil
			}
		}
	}

	movs, err := s.movements.Query(ctx, ref, 1, stats.MaxID)
	if err != nil {
		return entity.Balance{}, err
	}
	if stats.Count == 0 {
		movs = nil
	}
	res, err := ledger.Replay(movs, polarity, decimal.Zero)
	if err != nil {
		return entity.Balance{}, err
	}
	b := entity.Balance{EntityRef: ref, AsOf: res.AsOf, Count: res.Count, Value: res.Final}
	if res.Count == stats.Count {
		s.remember(ctx, b)
	}
	return b, nil
}

// Statement devuelve el extracto de la entidad entre from y to (0 = último), ambos incluidos.
// El saldo de apertura es la reproducción completa del prefijo [1, from). Un rango vacío
// cumple ToID = FromID-1 cuando to es 0.
func (s *Service) Statement(ctx context.Context, ref entity.EntityRef, from, to entity.MovementID) (*entity.Statement, error) {
	if !ref.Valid() || from < 0 || to < 0 {
		return nil, domain.ErrInvalidInput
	}
	if from == 0 {
		from = 1
	}
	if to != 0 && to < from {
		return nil, domain.ErrInvalidInput
	}

	var st *entity.Statement
	err := s.withRetry(ctx, "statement", func() error {
		polarity, err := s.polarity(ctx, s.entities, ref)
		if err != nil {
			return err
		}
		opening := decimal.Zero
		if from > 1 {
			prefix, err := s.movements.Query(ctx, ref, 1, from-1)
			if err != nil {
				return err
			}
			head, err := ledger.Replay(prefix, polarity, decimal.Zero)
			if err != nil {
				return err
			}
			opening = head.Final
		}
		page, err := s.movements.Query(ctx, ref, from, to)
		if err != nil {
			return err
		}
		res, err := ledger.Replay(page, polarity, opening)
		if err != nil {
			return err
		}
		// Sin movimientos en el rango, ToID cierra el rango pedido (from-1 si era "hasta el último").
		toID := res.AsOf
		if len(page) == 0 {
			toID = to
			if to == 0 {
				toID = from - 1
			}
		}
		st = &entity.Statement{
			EntityRef: ref,
			Polarity:  polarity,
			FromID:    from,
			ToID:      toID,
			Opening:   opening,
			Lines:     make([]entity.StatementLine, len(page)),
			Closing:   res.Final,
		}
		for i, m := range page {
			st.Lines[i] = entity.StatementLine{Movement: m, Delta: res.Steps[i].Delta, Balance: res.Steps[i].Balance}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return st, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Conciliación puntual
// ──────────────────────────────────────────────────────────────────────────────

// ReconcileInput entrada de la conciliación de una entidad contra un valor contado.
type ReconcileInput struct {
	EntityRef entity.EntityRef
	Counted   decimal.Decimal
	DryRun    bool   // solo calcula la varianza, no persiste el ajuste
	Reference string // documento que respalda el conteo
	CreatedBy string
}

// Reconcile compara el saldo vivo con el valor contado y persiste el ajuste si hay varianza.
// El ajuste se inserta solo si ningún otro movimiento entró después del saldo leído; si no, se reintenta.
func (s *Service) Reconcile(ctx context.Context, in ReconcileInput) (ledger.Reconciliation, error) {
	if !in.EntityRef.Valid() {
		return ledger.Reconciliation{}, domain.ErrInvalidInput
	}
	if in.EntityRef.IsStock() && in.Counted.IsNegative() {
		return ledger.Reconciliation{}, domain.ErrInvalidInput
	}

	if in.DryRun {
		bal, err := s.GetBalance(ctx, in.EntityRef, 0)
		if err != nil {
			return ledger.Reconciliation{}, err
		}
		polarity, err := s.polarity(ctx, s.entities, in.EntityRef)
		if err != nil {
			return ledger.Reconciliation{}, err
		}
		return ledger.Reconcile(bal, in.Counted, polarity)
	}

	var rec ledger.Reconciliation
	err := s.withRetry(ctx, "reconcile", func() error {
		unlock, err := s.lock(ctx, in.EntityRef)
		if err != nil {
			return err
		}
		defer unlock()
		return s.txRunner.Run(ctx, func(movs repository.MovementStore, ents repository.EntityDirectory, _ repository.StockTakeRepository) error {
			polarity, err := s.polarity(ctx, ents, in.EntityRef)
			if err != nil {
				return err
			}
			all, err := movs.Query(ctx, in.EntityRef, 1, 0)
			if err != nil {
				return err
			}
			res, err := ledger.Replay(all, polarity, decimal.Zero)
			if err != nil {
				return err
			}
			system := entity.Balance{EntityRef: in.EntityRef, AsOf: res.AsOf, Count: res.Count, Value: res.Final}
			rec, err = ledger.Reconcile(system, in.Counted, polarity)
			if err != nil || rec.Adjustment == nil {
				return err
			}
			adj := *rec.Adjustment
			adj.Reference = in.Reference
			adj.CreatedBy = in.CreatedBy
			adj.CreatedAt = s.now()
			provisional := adj.ID
			if err := movs.Append(ctx, &adj); err != nil {
				return err
			}
			if adj.ID != provisional {
				return fmt.Errorf("%w: %s avanzó a %d", domain.ErrConcurrentAppendConflict, in.EntityRef.Key(), adj.ID)
			}
			rec.Adjustment = &adj
			return nil
		})
	})
	if err != nil {
		return ledger.Reconciliation{}, err
	}
	if rec.Adjustment != nil {
		s.invalidate(ctx, in.EntityRef)
		s.log.Info().Str("entity", in.EntityRef.Key()).Str("variance", rec.Variance.String()).
			Int64("movement_id", int64(rec.Adjustment.ID)).Msg("ajuste de conciliación registrado")
	}
	return rec, nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────────────────────────────────

func (s *Service) polarity(ctx context.Context, dir repository.EntityDirectory, ref entity.EntityRef) (entity.Polarity, error) {
	e, err := dir.Get(ctx, ref)
	if err != nil {
		return entity.PolarityUnknown, err
	}
	if e == nil || !e.Polarity.Valid() {
		return entity.PolarityUnknown, &domain.PolarityUndeterminedError{EntityRef: ref.Key()}
	}
	return e.Polarity, nil
}

// lock toma el candado de la entidad. Un candado ocupado llega como ErrConcurrentAppendConflict
// y consume el mismo presupuesto de reintentos que un conflicto de secuencia.
func (s *Service) lock(ctx context.Context, ref entity.EntityRef) (func(), error) {
	unlock, err := s.locker.Lock(ctx, ref.Key())
	if err != nil {
		return nil, fmt.Errorf("lock %s: %w", ref.Key(), err)
	}
	return unlock, nil
}

func (s *Service) remember(ctx context.Context, b entity.Balance) {
	if err := s.cache.Set(ctx, b); err != nil {
		s.log.Warn().Err(err).Str("entity", b.EntityRef.Key()).Msg("no se pudo guardar el saldo en caché")
	}
}

func (s *Service) invalidate(ctx context.Context, ref entity.EntityRef) {
	if err := s.cache.Invalidate(ctx, ref); err != nil {
		s.log.Warn().Err(err).Str("entity", ref.Key()).Msg("no se pudo invalidar el saldo en caché")
	}
}

// snapshot consulta en paralelo (acotado) el saldo de cada producto de la tienda.
func (s *Service) snapshot(ctx context.Context, storeID string, products []string) ([]entity.StockTakeLine, error) {
	lines := make([]entity.StockTakeLine, len(products))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.snapshotConcurrency)
	for i, productID := range products {
		g.Go(func() error {
			bal, err := s.GetBalance(gctx, entity.StockRef(productID, storeID), 0)
			if err != nil {
				return fmt.Errorf("snapshot %s: %w", productID, err)
			}
			lines[i] = entity.StockTakeLine{ProductID: productID, SystemQuantity: bal.Value, AsOf: bal.AsOf}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return lines, nil
}
