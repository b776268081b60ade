package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jhoicas/ledger-api/internal/domain"
	"github.com/jhoicas/ledger-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

func (st *state) append(m *entity.Movement) error {
	key := m.EntityRef.Key()
	list := st.movements[key]
	next := entity.MovementID(1)
	if n := len(list); n > 0 {
		next = list[n-1].ID + 1
	}
	if m.ID < next {
		m.ID = next
	}
	st.movements[key] = append(list, *m)
	return nil
}

func (st *state) query(ref entity.EntityRef, from, to entity.MovementID) []entity.Movement {
	list := st.movements[ref.Key()]
	i := sort.Search(len(list), func(i int) bool { return list[i].ID >= from })
	var out []entity.Movement
	for ; i < len(list); i++ {
		if to != 0 && list[i].ID > to {
			break
		}
		out = append(out, list[i])
	}
	return out
}

func (st *state) stats(ref entity.EntityRef) entity.MovementStats {
	list := st.movements[ref.Key()]
	if len(list) == 0 {
		return entity.MovementStats{}
	}
	return entity.MovementStats{Count: int64(len(list)), MaxID: list[len(list)-1].ID}
}

func (st *state) register(e *entity.LedgerEntity) error {
	key := e.Ref.Key()
	if prev, ok := st.entities[key]; ok {
		if prev.Polarity != e.Polarity {
			return fmt.Errorf("%w: %s es %s", domain.ErrPolarityConflict, key, prev.Polarity)
		}
		return nil
	}
	st.entities[key] = *e
	return nil
}

func (st *state) lookup(ref entity.EntityRef) *entity.LedgerEntity {
	e, ok := st.entities[ref.Key()]
	if !ok {
		return nil
	}
	return &e
}

func (st *state) storeProducts(storeID string) []string {
	var out []string
	for _, e := range st.entities {
		if e.Ref.IsStock() && e.Ref.StoreID == storeID {
			out = append(out, e.Ref.ProductID)
		}
	}
	sort.Strings(out)
	return out
}

func (st *state) createSession(s *entity.StockTakeSession) error {
	if _, ok := st.sessions[s.ID]; ok {
		return fmt.Errorf("%w: la toma %s ya existe", domain.ErrInvalidInput, s.ID)
	}
	st.sessions[s.ID] = cloneSession(s)
	return nil
}

func (st *state) session(id string) *entity.StockTakeSession {
	s, ok := st.sessions[id]
	if !ok {
		return nil
	}
	return cloneSession(s)
}

func (st *state) draft(id string) (*entity.StockTakeSession, error) {
	s, ok := st.sessions[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if s.IsPosted() {
		return nil, &domain.AlreadyPostedError{SessionID: id}
	}
	return s, nil
}

func (st *state) setCounted(id, productID string, counted decimal.Decimal) error {
	s, err := st.draft(id)
	if err != nil {
		return err
	}
	line := s.Line(productID)
	if line == nil {
		return domain.ErrNotFound
	}
	line.Counted = &counted
	return nil
}

func (st *state) markPosted(id string, postedAt time.Time) error {
	s, err := st.draft(id)
	if err != nil {
		return err
	}
	s.Status = entity.StockTakeStatusPosted
	s.PostedAt = &postedAt
	return nil
}

func (st *state) deleteSession(id string) error {
	if _, err := st.draft(id); err != nil {
		return err
	}
	delete(st.sessions, id)
	return nil
}

// txView expone el estado a la función de Run; el candado ya lo tiene Run.
type txView struct {
	st *state
}

func (v *txView) Append(_ context.Context, m *entity.Movement) error { return v.st.append(m) }

func (v *txView) Query(_ context.Context, ref entity.EntityRef, from, to entity.MovementID) ([]entity.Movement, error) {
	return v.st.query(ref, from, to), nil
}

func (v *txView) Stats(_ context.Context, ref entity.EntityRef) (entity.MovementStats, error) {
	return v.st.stats(ref), nil
}

func (v *txView) Register(_ context.Context, e *entity.LedgerEntity) error { return v.st.register(e) }

func (v *txView) Get(_ context.Context, ref entity.EntityRef) (*entity.LedgerEntity, error) {
	return v.st.lookup(ref), nil
}

func (v *txView) ListStoreProducts(_ context.Context, storeID string) ([]string, error) {
	return v.st.storeProducts(storeID), nil
}

func (v *txView) Create(_ context.Context, s *entity.StockTakeSession) error {
	return v.st.createSession(s)
}

func (v *txView) GetByID(_ context.Context, id string) (*entity.StockTakeSession, error) {
	return v.st.session(id), nil
}

func (v *txView) GetForUpdate(_ context.Context, id string) (*entity.StockTakeSession, error) {
	return v.st.session(id), nil
}

func (v *txView) SetCounted(_ context.Context, id, productID string, counted decimal.Decimal) error {
	return v.st.setCounted(id, productID, counted)
}

func (v *txView) MarkPosted(_ context.Context, id string, postedAt time.Time) error {
	return v.st.markPosted(id, postedAt)
}

func (v *txView) Delete(_ context.Context, id string) error { return v.st.deleteSession(id) }
