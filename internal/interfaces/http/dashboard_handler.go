package http

import (
	"github.com/gofiber/fiber/v2"

	appanalytics "github.com/stockeasy/stockeasy-api/internal/application/analytics"
)

// DashboardHandler maneja los endpoints del dashboard y del resumen de plataforma.
type DashboardHandler struct {
	uc *appanalytics.DashboardUseCase
}

// NewDashboardHandler construye el handler.
func NewDashboardHandler(uc *appanalytics.DashboardUseCase) *DashboardHandler {
	return &DashboardHandler{uc: uc}
}

// GetSummary devuelve los contadores del día para el scope del principal.
// GET /api/dashboard/summary
//
// Respuesta: DashboardSummaryDTO (productos, stock bajo, valor del stock, movimientos
// de hoy por tipo y avance de checklists). MASTER ve la suma de todas las empresas.
func (h *DashboardHandler) GetSummary(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	out, err := h.uc.GetSummary(c.UserContext(), p)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// Overview contadores globales de la plataforma (MASTER).
// GET /api/super-admin/overview
func (h *DashboardHandler) Overview(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	out, err := h.uc.Overview(c.UserContext(), p)
	if err != nil {
		return err
	}
	return c.JSON(out)
}
