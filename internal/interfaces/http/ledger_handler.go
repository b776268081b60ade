package http

import (
	"net/url"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/ledger-api/internal/application/dto"
	appledger "github.com/jhoicas/ledger-api/internal/application/ledger"
	"github.com/jhoicas/ledger-api/internal/domain/entity"
)

// LedgerHandler maneja entidades, movimientos, saldos, extractos y conciliaciones (protegido).
type LedgerHandler struct {
	svc *appledger.Service
}

// NewLedgerHandler construye el handler.
func NewLedgerHandler(svc *appledger.Service) *LedgerHandler {
	return &LedgerHandler{svc: svc}
}

// RegisterEntity godoc
// @Summary      Clasificar entidad con su polaridad
// @Tags         ledger
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RegisterEntityRequest  true  "entity_ref, polarity (NORMAL_DEBIT | NORMAL_CREDIT), name"
// @Success      201   {object}  dto.EntityResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/ledger/entities [post]
func (h *LedgerHandler) RegisterEntity(c *fiber.Ctx) error {
	var in dto.RegisterEntityRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	ref, err := entity.ParseEntityRef(in.EntityRef)
	if err != nil {
		return badRequest(c, "INVALID_ENTITY_REF", err.Error())
	}
	polarity, ok := entity.ParsePolarity(in.Polarity)
	if !ok {
		return badRequest(c, "INVALID_POLARITY", "polarity debe ser NORMAL_DEBIT o NORMAL_CREDIT")
	}
	e, err := h.svc.RegisterEntity(c.UserContext(), ref, polarity, in.Name)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.EntityResponse{EntityRef: e.Ref.Key(), Polarity: string(e.Polarity), Name: e.Name})
}

// AppendMovement godoc
// @Summary      Registrar movimiento en el libro
// @Tags         ledger
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AppendMovementRequest  true  "entity_ref, in_amount o out_amount, kind, reference"
// @Success      201   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Failure      503   {object}  dto.ErrorResponse
// @Router       /api/ledger/movements [post]
func (h *LedgerHandler) AppendMovement(c *fiber.Ctx) error {
	var in dto.AppendMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	ref, err := entity.ParseEntityRef(in.EntityRef)
	if err != nil {
		return badRequest(c, "INVALID_ENTITY_REF", err.Error())
	}
	m := &entity.Movement{
		EntityRef: ref,
		In:        in.In,
		Out:       in.Out,
		Kind:      in.Kind,
		Reference: in.Reference,
		CreatedBy: GetUserID(c),
	}
	if err := h.svc.AppendMovement(c.UserContext(), m); err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewMovementResponse(*m))
}

// GetBalance godoc
// @Summary      Saldo de una entidad
// @Tags         ledger
// @Security     Bearer
// @Produce      json
// @Param        ref    path   string  true   "account:<id> o stock:<producto>@<tienda>"
// @Param        as_of  query  int     false  "último id incluido (0 = último)"
// @Success      200    {object}  dto.BalanceResponse
// @Failure      400    {object}  dto.ErrorResponse
// @Failure      422    {object}  dto.ErrorResponse
// @Router       /api/ledger/balances/{ref} [get]
func (h *LedgerHandler) GetBalance(c *fiber.Ctx) error {
	ref, err := refParam(c)
	if err != nil {
		return badRequest(c, "INVALID_ENTITY_REF", err.Error())
	}
	asOf, err := idQuery(c, "as_of")
	if err != nil {
		return badRequest(c, "INVALID_QUERY", "as_of debe ser un entero no negativo")
	}
	bal, err := h.svc.GetBalance(c.UserContext(), ref, asOf)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.NewBalanceResponse(bal))
}

// GetStatement godoc
// @Summary      Extracto con saldo corrido
// @Tags         ledger
// @Security     Bearer
// @Produce      json
// @Param        ref     path   string  true   "account:<id> o stock:<producto>@<tienda>"
// @Param        from    query  int     false  "primer id (por defecto 1)"
// @Param        to      query  int     false  "último id (0 = último)"
// @Param        limit   query  int     false  "líneas por página (por defecto 100, máximo 500)"
// @Param        offset  query  int     false  "líneas a saltar"
// @Success      200     {object}  dto.StatementResponse
// @Failure      400     {object}  dto.ErrorResponse
// @Router       /api/ledger/statements/{ref} [get]
func (h *LedgerHandler) GetStatement(c *fiber.Ctx) error {
	ref, err := refParam(c)
	if err != nil {
		return badRequest(c, "INVALID_ENTITY_REF", err.Error())
	}
	from, err := idQuery(c, "from")
	if err != nil {
		return badRequest(c, "INVALID_QUERY", "from debe ser un entero no negativo")
	}
	to, err := idQuery(c, "to")
	if err != nil {
		return badRequest(c, "INVALID_QUERY", "to debe ser un entero no negativo")
	}
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil || page.Limit < 0 || page.Offset < 0 {
		return badRequest(c, "INVALID_QUERY", "limit y offset deben ser enteros no negativos")
	}
	if from == 0 {
		from = 1
	}
	st, err := h.svc.Statement(c.UserContext(), ref, from, to)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.NewStatementResponse(st, page))
}

// Reconcile godoc
// @Summary      Conciliar una entidad contra un valor contado
// @Tags         ledger
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ReconcileRequest  true  "entity_ref, counted, dry_run, reference"
// @Success      200   {object}  dto.ReconciliationResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/ledger/reconcile [post]
func (h *LedgerHandler) Reconcile(c *fiber.Ctx) error {
	var in dto.ReconcileRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	ref, err := entity.ParseEntityRef(in.EntityRef)
	if err != nil {
		return badRequest(c, "INVALID_ENTITY_REF", err.Error())
	}
	rec, err := h.svc.Reconcile(c.UserContext(), appledger.ReconcileInput{
		EntityRef: ref,
		Counted:   in.Counted,
		DryRun:    in.DryRun,
		Reference: in.Reference,
		CreatedBy: GetUserID(c),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.NewReconciliationResponse(rec))
}

// pathParam devuelve el parámetro de ruta decodificado: "Caf%C3%A9" llega como "Café".
func pathParam(c *fiber.Ctx, key string) (string, error) {
	return url.PathUnescape(c.Params(key))
}

func refParam(c *fiber.Ctx) (entity.EntityRef, error) {
	raw, err := pathParam(c, "ref")
	if err != nil {
		return entity.EntityRef{}, err
	}
	return entity.ParseEntityRef(raw)
}

func idQuery(c *fiber.Ctx, key string) (entity.MovementID, error) {
	v := c.Query(key)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil || n < 0 {
		return 0, strconv.ErrSyntax
	}
	return entity.MovementID(n), nil
}
