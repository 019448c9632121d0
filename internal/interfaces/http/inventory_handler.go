package http

import (
	"net/url"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// InventoryHandler maneja las peticiones HTTP de movimientos y saldos (protegido).
type InventoryHandler struct {
	uc      *inventory.RegisterMovementUseCase
	queries *inventory.QueryUseCase
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(uc *inventory.RegisterMovementUseCase, queries *inventory.QueryUseCase) *InventoryHandler {
	return &InventoryHandler{uc: uc, queries: queries}
}

// RegisterMovement godoc
// @Summary      Registrar movimiento de inventario
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RegisterMovementRequest  true  "kind (entry|exit|transfer), product_id, quantity, origen/destino"
// @Success      201   {object}  dto.StockMovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/movements [post]
func (h *InventoryHandler) RegisterMovement(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.RegisterMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	resp, err := h.uc.RegisterMovementFromRequest(c.Context(), userID, in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(resp)
}

// GetMovement godoc
// @Summary      Obtener un movimiento del libro
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del movimiento"
// @Success      200  {object}  dto.StockMovementResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/movements/{id} [get]
func (h *InventoryHandler) GetMovement(c *fiber.Ctx) error {
	mov, err := h.queries.GetMovement(c.Context(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(inventory.ToMovementResponse(mov))
}

// ArchiveMovement godoc
// @Summary      Archivar un movimiento (auditoría, no revierte saldos)
// @Tags         inventory
// @Security     Bearer
// @Param        id   path  string  true  "ID del movimiento"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/movements/{id} [delete]
func (h *InventoryHandler) ArchiveMovement(c *fiber.Ctx) error {
	if err := h.queries.ArchiveMovement(c.Context(), c.Params("id"), GetUserID(c)); err != nil {
		return writeError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ListByProduct godoc
// @Summary      Movimientos de un producto
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        productId  path   string  true   "Producto"
// @Param        limit      query  int     false  "Máximo 100"
// @Param        offset     query  int     false  "Desplazamiento"
// @Param        from       query  string  false  "YYYY-MM-DD o RFC3339"
// @Param        to         query  string  false  "YYYY-MM-DD o RFC3339"
// @Success      200  {object}  dto.MovementListResponse
// @Router       /api/inventory/products/{productId}/movements [get]
func (h *InventoryHandler) ListByProduct(c *fiber.Ctx) error {
	filter, page, err := parseMovementQuery(c)
	if err != nil {
		return writeError(c, err)
	}
	list, err := h.queries.ListByProduct(c.Context(), param(c, "productId"), filter)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.MovementListResponse{Page: page, Movements: inventory.ToMovementResponses(list)})
}

// ListByLocation godoc
// @Summary      Movimientos que entran o salen de una ubicación
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        location  path   string  true   "Clave de ubicación"
// @Param        limit     query  int     false  "Máximo 100"
// @Param        offset    query  int     false  "Desplazamiento"
// @Success      200  {object}  dto.MovementListResponse
// @Router       /api/inventory/locations/{location}/movements [get]
func (h *InventoryHandler) ListByLocation(c *fiber.Ctx) error {
	filter, page, err := parseMovementQuery(c)
	if err != nil {
		return writeError(c, err)
	}
	list, err := h.queries.ListByLocation(c.Context(), param(c, "location"), filter)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.MovementListResponse{Page: page, Movements: inventory.ToMovementResponses(list)})
}

// ListBalances godoc
// @Summary      Saldos de un producto por ubicación
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        productId  path  string  true  "Producto"
// @Success      200  {array}  dto.StockLocationResponse
// @Router       /api/inventory/products/{productId}/balances [get]
func (h *InventoryHandler) ListBalances(c *fiber.Ctx) error {
	rows, err := h.queries.ListBalances(c.Context(), param(c, "productId"))
	if err != nil {
		return writeError(c, err)
	}
	out := make([]dto.StockLocationResponse, 0, len(rows))
	for _, r := range rows {
		out = append(out, inventory.ToLocationResponse(r))
	}
	return c.JSON(out)
}

// GetBalance godoc
// @Summary      Saldo de un producto en una ubicación (0 si nunca se tocó)
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        productId  path  string  true  "Producto"
// @Param        location   path  string  true  "Clave de ubicación"
// @Success      200  {object}  dto.StockLocationResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/products/{productId}/balances/{location} [get]
func (h *InventoryHandler) GetBalance(c *fiber.Ctx) error {
	row, err := h.queries.GetBalance(c.Context(), param(c, "productId"), param(c, "location"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(inventory.ToLocationResponse(row))
}

// Reconcile godoc
// @Summary      Compara el saldo registrado con el derivado del libro
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        productId  path  string  true  "Producto"
// @Param        location   path  string  true  "Clave de ubicación"
// @Success      200  {object}  dto.ReconciliationResponse
// @Router       /api/inventory/products/{productId}/balances/{location}/reconcile [get]
func (h *InventoryHandler) Reconcile(c *fiber.Ctx) error {
	rec, err := h.queries.Reconcile(c.Context(), param(c, "productId"), param(c, "location"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(inventory.ToReconciliationResponse(rec))
}

// param valor de ruta decodificado (las claves lógicas llevan "tipo:id").
func param(c *fiber.Ctx, name string) string {
	raw := c.Params(name)
	if v, err := url.PathUnescape(raw); err == nil {
		return v
	}
	return raw
}

func parseMovementQuery(c *fiber.Ctx) (repository.MovementFilter, dto.PageResponse, error) {
	var q dto.MovementListQuery
	if err := c.QueryParser(&q); err != nil {
		return repository.MovementFilter{}, dto.PageResponse{}, domain.NewValidationError("query", "parámetros inválidos")
	}
	q.DefaultPage()
	from, err := inventory.ParseTimestamp(q.From)
	if err != nil {
		return repository.MovementFilter{}, dto.PageResponse{}, domain.NewValidationError("from", "formato esperado YYYY-MM-DD o RFC3339")
	}
	to, err := inventory.ParseTimestamp(q.To)
	if err != nil {
		return repository.MovementFilter{}, dto.PageResponse{}, domain.NewValidationError("to", "formato esperado YYYY-MM-DD o RFC3339")
	}
	filter := repository.MovementFilter{
		From: from, To: to, Limit: q.Limit, Offset: q.Offset, IncludeDeleted: q.IncludeDeleted,
	}
	return filter, dto.PageResponse{Limit: q.Limit, Offset: q.Offset}, nil
}
