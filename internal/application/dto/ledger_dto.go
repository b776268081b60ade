package dto

import (
	"time"

	"github.com/jhoicas/ledger-api/internal/domain/entity"
	"github.com/jhoicas/ledger-api/internal/domain/ledger"
	"github.com/shopspring/decimal"
)

// RegisterEntityRequest body para POST /api/ledger/entities.
type RegisterEntityRequest struct {
	EntityRef string `json:"entity_ref"` // account:<id> | stock:<product>@<store>
	Polarity  string `json:"polarity"`   // NORMAL_DEBIT | NORMAL_CREDIT
	Name      string `json:"name,omitempty"`
}

// EntityResponse entidad clasificada.
type EntityResponse struct {
	EntityRef string `json:"entity_ref"`
	Polarity  string `json:"polarity"`
	Name      string `json:"name,omitempty"`
}

// AppendMovementRequest body para POST /api/ledger/movements.
type AppendMovementRequest struct {
	EntityRef string          `json:"entity_ref"`
	In        decimal.Decimal `json:"in_amount"`
	Out       decimal.Decimal `json:"out_amount"`
	Kind      string          `json:"kind"`
	Reference string          `json:"reference,omitempty"`
}

// MovementResponse movimiento persistido.
type MovementResponse struct {
	ID        int64           `json:"id"`
	EntityRef string          `json:"entity_ref"`
	In        decimal.Decimal `json:"in_amount"`
	Out       decimal.Decimal `json:"out_amount"`
	Kind      string          `json:"kind"`
	Reference string          `json:"reference,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	CreatedBy string          `json:"created_by,omitempty"`
}

// BalanceResponse saldo reproducido de una entidad.
type BalanceResponse struct {
	EntityRef string          `json:"entity_ref"`
	AsOf      int64           `json:"as_of"`
	Count     int64           `json:"count"`
	Value     decimal.Decimal `json:"value"`
}

// StatementLineResponse línea del extracto con su saldo corrido.
type StatementLineResponse struct {
	Movement MovementResponse `json:"movement"`
	Delta    decimal.Decimal  `json:"delta"`
	Balance  decimal.Decimal  `json:"balance"`
}

// StatementResponse página de un extracto: Opening + suma de Delta de Lines = Closing.
type StatementResponse struct {
	EntityRef string                  `json:"entity_ref"`
	Polarity  string                  `json:"polarity"`
	FromID    int64                   `json:"from_id"`
	ToID      int64                   `json:"to_id"`
	Opening   decimal.Decimal         `json:"opening"`
	Lines     []StatementLineResponse `json:"lines"`
	Closing   decimal.Decimal         `json:"closing"`
	Page      PageResponse            `json:"page"`
}

// ReconcileRequest body para POST /api/ledger/reconcile.
type ReconcileRequest struct {
	EntityRef string          `json:"entity_ref"`
	Counted   decimal.Decimal `json:"counted"`
	DryRun    bool            `json:"dry_run"`
	Reference string          `json:"reference,omitempty"`
}

// ReconciliationResponse varianza y ajuste (si lo hubo).
type ReconciliationResponse struct {
	EntityRef  string            `json:"entity_ref"`
	System     decimal.Decimal   `json:"system"`
	Counted    decimal.Decimal   `json:"counted"`
	Variance   decimal.Decimal   `json:"variance"`
	Adjustment *MovementResponse `json:"adjustment,omitempty"`
}

// OpenStockTakeRequest body para POST /api/stock-takes.
type OpenStockTakeRequest struct {
	StoreID string `json:"store_id"`
}

// RecordCountRequest body para PUT /api/stock-takes/:id/lines/:product_id.
type RecordCountRequest struct {
	Counted decimal.Decimal `json:"counted"`
}

// StockTakeLineResponse línea de la toma.
type StockTakeLineResponse struct {
	ProductID      string           `json:"product_id"`
	SystemQuantity decimal.Decimal  `json:"system_quantity"`
	AsOf           int64            `json:"as_of"`
	Counted        *decimal.Decimal `json:"counted_quantity"`
}

// StockTakeResponse sesión de toma de inventario.
type StockTakeResponse struct {
	ID        string                  `json:"id"`
	StoreID   string                  `json:"store_id"`
	Status    string                  `json:"status"`
	StartedAt time.Time               `json:"started_at"`
	PostedAt  *time.Time              `json:"posted_at,omitempty"`
	CreatedBy string                  `json:"created_by,omitempty"`
	Lines     []StockTakeLineResponse `json:"lines"`
}

// PostStockTakeResponse resultado de contabilizar una toma.
type PostStockTakeResponse struct {
	Session     StockTakeResponse        `json:"session"`
	Variances   []ReconciliationResponse `json:"variances"`
	Adjustments []MovementResponse       `json:"adjustments"`
}

// NewMovementResponse mapea un movimiento de dominio.
func NewMovementResponse(m entity.Movement) MovementResponse {
	return MovementResponse{
		ID:        int64(m.ID),
		EntityRef: m.EntityRef.Key(),
		In:        m.In,
		Out:       m.Out,
		Kind:      m.Kind,
		Reference: m.Reference,
		CreatedAt: m.CreatedAt,
		CreatedBy: m.CreatedBy,
	}
}

// NewBalanceResponse mapea un saldo.
func NewBalanceResponse(b entity.Balance) BalanceResponse {
	return BalanceResponse{EntityRef: b.EntityRef.Key(), AsOf: int64(b.AsOf), Count: b.Count, Value: b.Value}
}

// NewStatementResponse mapea la página p del extracto. Opening y Closing se toman del saldo
// corrido alrededor de la página; FromID y ToID acotan los ids de sus líneas.
func NewStatementResponse(s *entity.Statement, p PageRequest) StatementResponse {
	p.DefaultPage()
	total := len(s.Lines)
	start, end := p.Bounds(total)
	out := StatementResponse{
		EntityRef: s.EntityRef.Key(),
		Polarity:  string(s.Polarity),
		FromID:    int64(s.FromID),
		ToID:      int64(s.ToID),
		Opening:   s.Opening,
		Lines:     make([]StatementLineResponse, 0, end-start),
		Closing:   s.Closing,
		Page:      PageResponse{Limit: p.Limit, Offset: p.Offset, Total: total, HasMore: end < total},
	}
	if start == end {
		if start > 0 {
			out.Opening = s.Closing
		}
		out.Closing = out.Opening
		return out
	}
	if start > 0 {
		out.Opening = s.Lines[start-1].Balance
		out.FromID = int64(s.Lines[start].Movement.ID)
	}
	if end < total {
		out.Closing = s.Lines[end-1].Balance
		out.ToID = int64(s.Lines[end-1].Movement.ID)
	}
	for _, l := range s.Lines[start:end] {
		out.Lines = append(out.Lines, StatementLineResponse{Movement: NewMovementResponse(l.Movement), Delta: l.Delta, Balance: l.Balance})
	}
	return out
}

// NewReconciliationResponse mapea una conciliación.
func NewReconciliationResponse(r ledger.Reconciliation) ReconciliationResponse {
	out := ReconciliationResponse{
		EntityRef: r.EntityRef.Key(),
		System:    r.System,
		Counted:   r.Counted,
		Variance:  r.Variance,
	}
	if r.Adjustment != nil {
		adj := NewMovementResponse(*r.Adjustment)
		out.Adjustment = &adj
	}
	return out
}

// NewStockTakeResponse mapea una sesión de toma.
func NewStockTakeResponse(s *entity.StockTakeSession) StockTakeResponse {
	out := StockTakeResponse{
		ID:        s.ID,
		StoreID:   s.StoreID,
		Status:    s.Status,
		StartedAt: s.StartedAt,
		PostedAt:  s.PostedAt,
		CreatedBy: s.CreatedBy,
		Lines:     make([]StockTakeLineResponse, len(s.Lines)),
	}
	for i, l := range s.Lines {
		out.Lines[i] = StockTakeLineResponse{
			ProductID:      l.ProductID,
			SystemQuantity: l.SystemQuantity,
			AsOf:           int64(l.AsOf),
			Counted:        l.Counted,
		}
	}
	return out
}
