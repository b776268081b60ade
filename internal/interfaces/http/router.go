package http

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/ledger-api/internal/application/dto"
	appledger "github.com/jhoicas/ledger-api/internal/application/ledger"
	"github.com/jhoicas/ledger-api/pkg/jwt"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Ledger      *appledger.Service
	JWTSecret   string
	ServiceName string
	// HealthCheck verifica el almacenamiento; nil responde siempre ok.
	HealthCheck func(ctx context.Context) error
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		if deps.HealthCheck != nil {
			if err := deps.HealthCheck(c.UserContext()); err != nil {
				return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "STORAGE_UNAVAILABLE", Message: err.Error()})
			}
		}
		return c.JSON(fiber.Map{"status": "ok", "service": deps.ServiceName})
	})

	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))
	canPost := RequireRole(jwt.RoleAdmin, jwt.RoleBodeguero)
	canReconcile := RequireRole(jwt.RoleAdmin, jwt.RoleContador, jwt.RoleBodeguero)

	// Libro
	ledgerGroup := api.Group("/ledger")
	ledgerHandler := NewLedgerHandler(deps.Ledger)
	ledgerGroup.Post("/entities", RequireRole(jwt.RoleAdmin, jwt.RoleContador), ledgerHandler.RegisterEntity)
	ledgerGroup.Post("/movements", ledgerHandler.AppendMovement)
	ledgerGroup.Get("/balances/:ref", ledgerHandler.GetBalance)
	ledgerGroup.Get("/statements/:ref", ledgerHandler.GetStatement)
	ledgerGroup.Post("/reconcile", canReconcile, ledgerHandler.Reconcile)

	// Tomas de inventario
	takes := api.Group("/stock-takes")
	takeHandler := NewStockTakeHandler(deps.Ledger)
	takes.Post("/", canPost, takeHandler.Open)
	takes.Get("/:id", takeHandler.GetByID)
	takes.Put("/:id/lines/:product_id", canPost, takeHandler.RecordCount)
	takes.Post("/:id/post", canPost, takeHandler.Post)
	takes.Delete("/:id", canPost, takeHandler.Discard)
}
