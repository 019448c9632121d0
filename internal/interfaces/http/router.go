package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger/internal/application/inventory"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	RegisterMovement *inventory.RegisterMovementUseCase
	Queries          *inventory.QueryUseCase
	JWTSecret        string
	JWTIssuer        string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret, deps.JWTIssuer))

	invGroup := protected.Group("/inventory")
	h := NewInventoryHandler(deps.RegisterMovement, deps.Queries)

	invGroup.Post("/movements", h.RegisterMovement)
	invGroup.Get("/movements/:id", h.GetMovement)
	invGroup.Delete("/movements/:id", h.ArchiveMovement)

	invGroup.Get("/products/:productId/movements", h.ListByProduct)
	invGroup.Get("/products/:productId/balances", h.ListBalances)
	invGroup.Get("/products/:productId/balances/:location", h.GetBalance)
	invGroup.Get("/products/:productId/balances/:location/reconcile", h.Reconcile)

	invGroup.Get("/locations/:location/movements", h.ListByLocation)
}
