package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/ledger-api/internal/application/dto"
	appledger "github.com/jhoicas/ledger-api/internal/application/ledger"
)

// StockTakeHandler maneja las tomas físicas de inventario (protegido).
type StockTakeHandler struct {
	svc *appledger.Service
}

// NewStockTakeHandler construye el handler.
func NewStockTakeHandler(svc *appledger.Service) *StockTakeHandler {
	return &StockTakeHandler{svc: svc}
}

// Open godoc
// @Summary      Abrir toma de inventario
// @Description  Congela el saldo de cada producto de la tienda al momento de abrir.
// @Tags         stock-takes
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.OpenStockTakeRequest  true  "store_id"
// @Success      201   {object}  dto.StockTakeResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Router       /api/stock-takes [post]
func (h *StockTakeHandler) Open(c *fiber.Ctx) error {
	var in dto.OpenStockTakeRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	session, err := h.svc.OpenStockTake(c.UserContext(), in.StoreID, GetUserID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewStockTakeResponse(session))
}

// GetByID godoc
// @Summary      Obtener toma de inventario
// @Tags         stock-takes
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la toma"
// @Success      200  {object}  dto.StockTakeResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stock-takes/{id} [get]
func (h *StockTakeHandler) GetByID(c *fiber.Ctx) error {
	id, err := pathParam(c, "id")
	if err != nil {
		return badRequest(c, "INVALID_PATH", "id mal codificado")
	}
	session, err := h.svc.GetStockTake(c.UserContext(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.NewStockTakeResponse(session))
}

// RecordCount godoc
// @Summary      Registrar conteo físico de un producto
// @Tags         stock-takes
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id          path  string                  true  "ID de la toma"
// @Param        product_id  path  string                  true  "ID del producto"
// @Param        body        body  dto.RecordCountRequest  true  "counted"
// @Success      200  {object}  dto.StockTakeResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/stock-takes/{id}/lines/{product_id} [put]
func (h *StockTakeHandler) RecordCount(c *fiber.Ctx) error {
	var in dto.RecordCountRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	id, err := pathParam(c, "id")
	if err != nil {
		return badRequest(c, "INVALID_PATH", "id mal codificado")
	}
	productID, err := pathParam(c, "product_id")
	if err != nil {
		return badRequest(c, "INVALID_PATH", "product_id mal codificado")
	}
	session, err := h.svc.RecordCount(c.UserContext(), id, productID, in.Counted)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.NewStockTakeResponse(session))
}

// Post godoc
// @Summary      Contabilizar toma de inventario
// @Description  Concilia cada línea contra su saldo congelado y registra los ajustes en una sola transacción.
// @Tags         stock-takes
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la toma"
// @Success      200  {object}  dto.PostStockTakeResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/stock-takes/{id}/post [post]
func (h *StockTakeHandler) Post(c *fiber.Ctx) error {
	id, err := pathParam(c, "id")
	if err != nil {
		return badRequest(c, "INVALID_PATH", "id mal codificado")
	}
	res, err := h.svc.PostStockTake(c.UserContext(), id, GetUserID(c))
	if err != nil {
		return writeError(c, err)
	}
	out := dto.PostStockTakeResponse{
		Session:     dto.NewStockTakeResponse(res.Session),
		Variances:   make([]dto.ReconciliationResponse, 0, len(res.Reconciliations)),
		Adjustments: make([]dto.MovementResponse, 0, len(res.Adjustments)),
	}
	for _, r := range res.Reconciliations {
		out.Variances = append(out.Variances, dto.NewReconciliationResponse(r))
	}
	for _, m := range res.Adjustments {
		out.Adjustments = append(out.Adjustments, dto.NewMovementResponse(m))
	}
	return c.JSON(out)
}

// Discard godoc
// @Summary      Descartar toma en borrador
// @Tags         stock-takes
// @Security     Bearer
// @Param        id   path  string  true  "ID de la toma"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/stock-takes/{id} [delete]
func (h *StockTakeHandler) Discard(c *fiber.Ctx) error {
	id, err := pathParam(c, "id")
	if err != nil {
		return badRequest(c, "INVALID_PATH", "id mal codificado")
	}
	if err := h.svc.DiscardStockTake(c.UserContext(), id); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
