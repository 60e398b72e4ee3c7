package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/stockerp/stockerp-api/internal/application/dto"
	"github.com/stockerp/stockerp-api/internal/application/usecase"
)

// AuditHandler consulta del registro de auditoría (solo admin+).
type AuditHandler struct {
	uc *usecase.AuditUseCase
}

// NewAuditHandler construye el handler de auditoría.
func NewAuditHandler(uc *usecase.AuditUseCase) *AuditHandler {
	return &AuditHandler{uc: uc}
}

// List godoc
// @Summary      Listar registro de auditoría
// @Tags         audit
// @Security     Bearer
// @Produce      json
// @Param        user_id      query  string  false  "filtrar por usuario"
// @Param        action       query  string  false  "CREATE | UPDATE | DELETE | ADJUSTMENT"
// @Param        entity_type  query  string  false  "item | location | stock_ledger | user"
// @Param        from         query  string  false  "desde (RFC 3339)"
// @Param        to           query  string  false  "hasta (RFC 3339)"
// @Success      200  {object}  dto.AuditListResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/audit [get]
func (h *AuditHandler) List(c *fiber.Ctx) error {
	var q dto.AuditQuery
	if err := c.QueryParser(&q); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "parámetros de consulta inválidos"})
	}
	if err := dto.Validate(q); err != nil {
		return writeValidationError(c, err)
	}
	out, err := h.uc.List(GetPrincipal(c), q)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
