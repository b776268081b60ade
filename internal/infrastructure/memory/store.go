// Package memory implementa los puertos del libro en memoria (tests y modo demo).
// Las transacciones se simulan con copia del estado y restauración si fn falla.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/jhoicas/ledger-api/internal/application/ledger"
	"github.com/jhoicas/ledger-api/internal/domain/entity"
	"github.com/jhoicas/ledger-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var (
	_ repository.MovementStore       = (*Store)(nil)
	_ repository.EntityDirectory     = (*Store)(nil)
	_ repository.StockTakeRepository = (*Store)(nil)
	_ ledger.TxRunner                = (*Store)(nil)
)

// Store guarda movimientos, entidades y tomas de inventario en mapas protegidos por un RWMutex.
type Store struct {
	mu sync.RWMutex
	st state
}

type state struct {
	movements map[string][]entity.Movement
	entities  map[string]entity.LedgerEntity
	sessions  map[string]*entity.StockTakeSession
}

// NewStore construye un almacén vacío.
func NewStore() *Store {
	return &Store{st: state{
		movements: make(map[string][]entity.Movement),
		entities:  make(map[string]entity.LedgerEntity),
		sessions:  make(map[string]*entity.StockTakeSession),
	}}
}

// Run ejecuta fn con acceso exclusivo al estado. Si fn devuelve error se restaura la copia previa.
func (s *Store) Run(ctx context.Context, fn func(
	movements repository.MovementStore,
	entities repository.EntityDirectory,
	takes repository.StockTakeRepository,
) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.st.clone()
	view := &txView{st: &s.st}
	if err := fn(view, view, view); err != nil {
		s.st = snapshot
		return err
	}
	return nil
}

func (st *state) clone() state {
	out := state{
		movements: make(map[string][]entity.Movement, len(st.movements)),
		entities:  make(map[string]entity.LedgerEntity, len(st.entities)),
		sessions:  make(map[string]*entity.StockTakeSession, len(st.sessions)),
	}
	for k, v := range st.movements {
		out.movements[k] = append([]entity.Movement(nil), v...)
	}
	for k, v := range st.entities {
		out.entities[k] = v
	}
	for k, v := range st.sessions {
		out.sessions[k] = cloneSession(v)
	}
	return out
}

func cloneSession(s *entity.StockTakeSession) *entity.StockTakeSession {
	c := *s
	if s.PostedAt != nil {
		t := *s.PostedAt
		c.PostedAt = &t
	}
	c.Lines = make([]entity.StockTakeLine, len(s.Lines))
	for i, l := range s.Lines {
		c.Lines[i] = l
		if l.Counted != nil {
			v := *l.Counted
			c.Lines[i].Counted = &v
		}
	}
	return &c
}

// ──────────────────────────────────────────────────────────────────────────────
// Acceso fuera de transacción: cada llamada toma el candado y delega en el estado.
// ──────────────────────────────────────────────────────────────────────────────

func (s *Store) Append(ctx context.Context, m *entity.Movement) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.append(m)
}

func (s *Store) Query(ctx context.Context, ref entity.EntityRef, from, to entity.MovementID) ([]entity.Movement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.query(ref, from, to), nil
}

func (s *Store) Stats(ctx context.Context, ref entity.EntityRef) (entity.MovementStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.stats(ref), nil
}

func (s *Store) Register(ctx context.Context, e *entity.LedgerEntity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.register(e)
}

func (s *Store) Get(ctx context.Context, ref entity.EntityRef) (*entity.LedgerEntity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.lookup(ref), nil
}

func (s *Store) ListStoreProducts(ctx context.Context, storeID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.storeProducts(storeID), nil
}

func (s *Store) Create(ctx context.Context, session *entity.StockTakeSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.createSession(session)
}

// GetByID devuelve una copia de la sesión (nil si no existe).
func (s *Store) GetByID(ctx context.Context, id string) (*entity.StockTakeSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st.session(id), nil
}

func (s *Store) GetForUpdate(ctx context.Context, id string) (*entity.StockTakeSession, error) {
	return s.GetByID(ctx, id)
}

func (s *Store) SetCounted(ctx context.Context, id, productID string, counted decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.setCounted(id, productID, counted)
}

func (s *Store) MarkPosted(ctx context.Context, id string, postedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.markPosted(id, postedAt)
}

func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.deleteSession(id)
}
