package http

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/stockeasy/stockeasy-api/internal/application/dto"
	"github.com/stockeasy/stockeasy-api/internal/application/inventory"
	"github.com/stockeasy/stockeasy-api/internal/domain"
	"github.com/stockeasy/stockeasy-api/internal/domain/repository"
)

// InventoryHandler ledger de stock, lista de reposición y reporte PDF.
type InventoryHandler struct {
	movements *inventory.RegisterMovementUseCase
	restock   *inventory.ReplenishmentUseCase
	reports   *inventory.ReportUseCase
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(
	movements *inventory.RegisterMovementUseCase,
	restock *inventory.ReplenishmentUseCase,
	reports *inventory.ReportUseCase,
) *InventoryHandler {
	return &InventoryHandler{movements: movements, restock: restock, reports: reports}
}

// movementQuery filtros de GET /api/movements.
type movementQuery struct {
	dto.PageRequest
	ProductID string `query:"product_id" validate:"omitempty,uuid"`
	Type      string `query:"type" validate:"omitempty,oneof=entrada saida ajuste"`
	From      string `query:"from"`
	To        string `query:"to"`
}

// RegisterMovement godoc
// @Summary      Registrar movimiento de stock
// @Description  entrada/saida usan quantity (una saida mayor al stock se recorta a 0); ajuste usa new_stock.
// @Tags         movements
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RegisterMovementRequest  true  "Movimiento"
// @Success      201   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/movements [post]
func (h *InventoryHandler) RegisterMovement(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var in dto.RegisterMovementRequest
	if err := parseBody(c, &in); err != nil {
		return err
	}
	out, err := h.movements.RecordMovementFromRequest(c.UserContext(), p, in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ListMovements godoc
// @Summary      Listar movimientos (más reciente primero)
// @Tags         movements
// @Security     Bearer
// @Produce      json
// @Param        product_id  query  string  false  "Producto"
// @Param        type        query  string  false  "entrada | saida | ajuste"
// @Param        from        query  string  false  "Desde (YYYY-MM-DD o RFC3339)"
// @Param        to          query  string  false  "Hasta (YYYY-MM-DD o RFC3339)"
// @Success      200  {object}  dto.MovementListResponse
// @Router       /api/movements [get]
func (h *InventoryHandler) ListMovements(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var q movementQuery
	if err := c.QueryParser(&q); err != nil {
		return fmt.Errorf("%w: filtros inválidos", domain.ErrInvalidInput)
	}
	if err := validateStruct(&q); err != nil {
		return err
	}
	filter := repository.MovementFilter{
		Page:      repository.Page{Limit: q.Limit, Offset: q.Offset},
		ProductID: q.ProductID,
		Type:      q.Type,
	}
	if filter.From, err = parseTimeParam("from", q.From, false); err != nil {
		return err
	}
	if filter.To, err = parseTimeParam("to", q.To, true); err != nil {
		return err
	}
	out, err := h.movements.ListMovements(c.UserContext(), p, filter)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// Restock godoc
// @Summary      Lista de reposición por proveedor
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.RestockResponse
// @Router       /api/inventory/restock [get]
func (h *InventoryHandler) Restock(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	out, err := h.restock.GenerateRestockList(c.UserContext(), p)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// StockReport godoc
// @Summary      Reporte PDF de posición de stock
// @Tags         reports
// @Security     Bearer
// @Produce      application/pdf
// @Success      200  {file}  binary
// @Router       /api/reports/stock.pdf [get]
func (h *InventoryHandler) StockReport(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	pdf, filename, err := h.reports.StockReportPDF(c.UserContext(), p)
	if err != nil {
		return err
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Send(pdf)
}

// parseTimeParam acepta fecha (YYYY-MM-DD) o RFC3339. Una fecha "hasta" cubre el día entero.
func parseTimeParam(name, v string, endOfDay bool) (*time.Time, error) {
	if v == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return &t, nil
	}
	t, err := time.ParseInLocation(time.DateOnly, v, time.Local)
	if err != nil {
		return nil, &validationError{fields: map[string]string{name: "fecha inválida (YYYY-MM-DD o RFC3339)"}}
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}
