package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/stockerp/stockerp-api/internal/application/dto"
	appledger "github.com/stockerp/stockerp-api/internal/application/ledger"
	domledger "github.com/stockerp/stockerp-api/internal/domain/ledger"
)

// StockHandler maneja movimientos y consultas de stock.
// Movimientos: staff+ (ADJUSTMENT admin+); consultas: viewer+; reconcile: admin+.
type StockHandler struct {
	submit    *appledger.SubmitMovementUseCase
	query     *appledger.StockQueryUseCase
	reconcile *appledger.ReconcileUseCase
}

// NewStockHandler construye el handler de stock.
func NewStockHandler(submit *appledger.SubmitMovementUseCase, query *appledger.StockQueryUseCase, reconcile *appledger.ReconcileUseCase) *StockHandler {
	return &StockHandler{submit: submit, query: query, reconcile: reconcile}
}

// In godoc
// @Summary      Registrar entrada de stock
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.SubmitMovementRequest  true  "item_sku, location_code, quantity (magnitud positiva), unit_cost opcional"
// @Success      201   {object}  dto.SubmitMovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/stock/in [post]
func (h *StockHandler) In(c *fiber.Ctx) error {
	return h.handleMovement(c, domledger.SubmitIN)
}

// Out godoc
// @Summary      Registrar salida de stock
// @Description  Con política estricta, se rechaza con 409 INSUFFICIENT_STOCK si el balance quedaría negativo.
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.SubmitMovementRequest  true  "item_sku, location_code, quantity (magnitud positiva)"
// @Success      201   {object}  dto.SubmitMovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/stock/out [post]
func (h *StockHandler) Out(c *fiber.Ctx) error {
	return h.handleMovement(c, domledger.SubmitOUT)
}

// Transfer godoc
// @Summary      Trasladar stock entre ubicaciones
// @Description  Genera las dos piernas (TRANSFER_OUT y TRANSFER_IN) en una sola transacción: nunca se confirma una sin la otra.
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.SubmitMovementRequest  true  "item_sku, from_location_code, to_location_code, quantity (magnitud positiva)"
// @Success      201   {object}  dto.SubmitMovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/stock/transfer [post]
func (h *StockHandler) Transfer(c *fiber.Ctx) error {
	return h.handleMovement(c, domledger.SubmitTransfer)
}

// Adjustment godoc
// @Summary      Registrar ajuste correctivo (solo admin+)
// @Description  quantity es un delta firmado y puede dejar el balance negativo; queda en auditoría quién lo hizo.
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.SubmitMovementRequest  true  "item_sku, location_code, quantity (delta firmado, nunca cero)"
// @Success      201   {object}  dto.SubmitMovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/inventory/stock/adjustment [post]
func (h *StockHandler) Adjustment(c *fiber.Ctx) error {
	return h.handleMovement(c, domledger.SubmitAdjustment)
}

// handleMovement parsea el body, arma el MovementInput del tipo fijado por la
// ruta y delega en el caso de uso.
func (h *StockHandler) handleMovement(c *fiber.Ctx, movType string) error {
	var in dto.SubmitMovementRequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if err := dto.Validate(in); err != nil {
		return writeValidationError(c, err)
	}
	result, err := h.submit.Submit(c.Context(), GetPrincipal(c), domledger.MovementInput{
		Type:           movType,
		ItemSKU:        in.ItemSKU,
		LocationCode:   in.LocationCode,
		FromCode:       in.FromLocationCode,
		ToCode:         in.ToLocationCode,
		Quantity:       in.Quantity,
		UnitCost:       in.UnitCost,
		ReferenceNo:    in.ReferenceNo,
		Notes:          in.Notes,
		IdempotencyKey: in.IdempotencyKey,
	})
	if err != nil {
		return writeError(c, err)
	}
	out := dto.SubmitMovementResponse{}
	for _, e := range result.Entries {
		out.Entries = append(out.Entries, appledger.ToLedgerEntryResponse(e))
	}
	for _, b := range result.Balances {
		out.Balances = append(out.Balances, dto.BalanceSnapshot{LocationCode: b.LocationCode, Quantity: b.Quantity})
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// CurrentStock godoc
// @Summary      Consultar stock actual por (ítem, ubicación)
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        item_sku       query  string  false  "filtrar por SKU"
// @Param        location_code  query  string  false  "filtrar por ubicación"
// @Param        name           query  string  false  "buscar por nombre de ítem"
// @Param        status         query  string  false  "ACTIVE | INACTIVE | DISCONTINUED"
// @Param        min_quantity   query  number  false  "cantidad mínima"
// @Param        max_quantity   query  number  false  "cantidad máxima"
// @Success      200  {object}  dto.CurrentStockResponse
// @Router       /api/inventory/stock/current [get]
func (h *StockHandler) CurrentStock(c *fiber.Ctx) error {
	var q dto.CurrentStockQuery
	if err := c.QueryParser(&q); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "parámetros de consulta inválidos"})
	}
	if err := dto.Validate(q); err != nil {
		return writeValidationError(c, err)
	}
	out, err := h.query.GetCurrentStock(GetPrincipal(c), q)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Balance godoc
// @Summary      Consultar el balance de un par (ítem, ubicación)
// @Description  Un par sin movimientos devuelve cantidad cero, no 404.
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        item_sku       query  string  true  "SKU del ítem"
// @Param        location_code  query  string  true  "código de la ubicación"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/stock/balance [get]
func (h *StockHandler) Balance(c *fiber.Ctx) error {
	sku := c.Query("item_sku")
	code := c.Query("location_code")
	if sku == "" || code == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "item_sku y location_code son requeridos"})
	}
	qty, err := h.query.GetBalance(GetPrincipal(c), sku, code)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"item_sku": sku, "location_code": code, "quantity": qty})
}

// Ledger godoc
// @Summary      Consultar el historial del ledger
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        item_sku       query  string  false  "filtrar por SKU"
// @Param        location_code  query  string  false  "filtrar por ubicación"
// @Param        type           query  string  false  "IN | OUT | TRANSFER_IN | TRANSFER_OUT | ADJUSTMENT"
// @Param        reference_no   query  string  false  "filtrar por referencia externa"
// @Param        from           query  string  false  "desde (RFC 3339)"
// @Param        to             query  string  false  "hasta (RFC 3339)"
// @Success      200  {object}  dto.LedgerListResponse
// @Router       /api/inventory/stock/ledger [get]
func (h *StockHandler) Ledger(c *fiber.Ctx) error {
	var q dto.LedgerQuery
	if err := c.QueryParser(&q); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "parámetros de consulta inválidos"})
	}
	if err := dto.Validate(q); err != nil {
		return writeValidationError(c, err)
	}
	out, err := h.query.ListLedger(GetPrincipal(c), q)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Reconcile godoc
// @Summary      Reconciliar balances contra el ledger (solo admin+)
// @Description  Compara la proyección materializada contra SUM(ledger). Con repair=true reconstruye la tabla por replay.
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        repair  query  bool  false  "reconstruir balances por replay del ledger"
// @Success      200  {object}  dto.ReconcileResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/inventory/stock/reconcile [post]
func (h *StockHandler) Reconcile(c *fiber.Ctx) error {
	out, err := h.reconcile.Run(c.Context(), GetPrincipal(c), c.QueryBool("repair"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
