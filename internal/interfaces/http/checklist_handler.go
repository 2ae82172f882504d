package http

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/stockeasy/stockeasy-api/internal/application/checklist"
	"github.com/stockeasy/stockeasy-api/internal/application/dto"
	"github.com/stockeasy/stockeasy-api/internal/domain"
	"github.com/stockeasy/stockeasy-api/internal/domain/repository"
)

// ChecklistHandler plantillas de checklist y sus ejecuciones diarias.
type ChecklistHandler struct {
	templates  *checklist.TemplateUseCase
	executions *checklist.ExecutionUseCase
}

// NewChecklistHandler construye el handler.
func NewChecklistHandler(templates *checklist.TemplateUseCase, executions *checklist.ExecutionUseCase) *ChecklistHandler {
	return &ChecklistHandler{templates: templates, executions: executions}
}

type templateQuery struct {
	dto.PageRequest
	Type   string `query:"type" validate:"omitempty,oneof=abertura fechamento limpeza"`
	Active bool   `query:"active"`
}

type executionQuery struct {
	dto.PageRequest
	TemplateID string `query:"template_id" validate:"omitempty,uuid"`
	Date       string `query:"date" validate:"omitempty,datetime=2006-01-02"`
	Open       bool   `query:"open"`
}

// ─── Plantillas ──────────────────────────────────────────────────────────────

// CreateTemplate godoc
// @Summary      Crear plantilla de checklist
// @Tags         checklists
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateTemplateRequest  true  "Plantilla con ítems opcionales"
// @Success      201   {object}  dto.TemplateResponse
// @Router       /api/checklists/templates [post]
func (h *ChecklistHandler) CreateTemplate(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var in dto.CreateTemplateRequest
	if err := parseBody(c, &in); err != nil {
		return err
	}
	out, err := h.templates.Create(c.UserContext(), p, in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetTemplate godoc
// @Summary      Obtener plantilla con sus ítems
// @Tags         checklists
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la plantilla"
// @Success      200  {object}  dto.TemplateResponse
// @Router       /api/checklists/templates/{id} [get]
func (h *ChecklistHandler) GetTemplate(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	out, err := h.templates.Get(c.UserContext(), p, id)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// ListTemplates godoc
// @Summary      Listar plantillas
// @Tags         checklists
// @Security     Bearer
// @Produce      json
// @Param        type    query  string  false  "abertura | fechamento | limpeza"
// @Param        active  query  bool    false  "Solo activas"
// @Success      200  {object}  dto.TemplateListResponse
// @Router       /api/checklists/templates [get]
func (h *ChecklistHandler) ListTemplates(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var q templateQuery
	if err := c.QueryParser(&q); err != nil {
		return fmt.Errorf("%w: filtros inválidos", domain.ErrInvalidInput)
	}
	if err := validateStruct(&q); err != nil {
		return err
	}
	out, err := h.templates.List(c.UserContext(), p, q.PageRequest, q.Type, q.Active)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// UpdateTemplate godoc
// @Summary      Actualizar plantilla
// @Tags         checklists
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                     true  "ID de la plantilla"
// @Param        body  body  dto.UpdateTemplateRequest  true  "Campos a actualizar"
// @Success      200   {object}  dto.TemplateResponse
// @Router       /api/checklists/templates/{id} [put]
func (h *ChecklistHandler) UpdateTemplate(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	var in dto.UpdateTemplateRequest
	if err := parseBody(c, &in); err != nil {
		return err
	}
	out, err := h.templates.Update(c.UserContext(), p, id, in)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// DeleteTemplate godoc
// @Summary      Borrar plantilla
// @Description  Una plantilla con ejecuciones no se puede borrar (409): desactivarla.
// @Tags         checklists
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la plantilla"
// @Success      200  {object}  dto.DeleteResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/checklists/templates/{id} [delete]
func (h *ChecklistHandler) DeleteTemplate(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	ok, err := h.templates.Delete(c.UserContext(), p, id)
	if err != nil {
		return err
	}
	return c.JSON(dto.DeleteResponse{Deleted: ok})
}

// ListItems godoc
// @Summary      Ítems de una plantilla
// @Tags         checklists
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la plantilla"
// @Success      200  {array}   dto.ItemResponse
// @Router       /api/checklists/templates/{id}/items [get]
func (h *ChecklistHandler) ListItems(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	out, err := h.templates.ListItems(c.UserContext(), p, id)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// AddItem godoc
// @Summary      Agregar ítem a una plantilla
// @Tags         checklists
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                 true  "ID de la plantilla"
// @Param        body  body  dto.CreateItemRequest  true  "Ítem"
// @Success      201   {object}  dto.ItemResponse
// @Router       /api/checklists/templates/{id}/items [post]
func (h *ChecklistHandler) AddItem(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	var in dto.CreateItemRequest
	if err := parseBody(c, &in); err != nil {
		return err
	}
	out, err := h.templates.AddItem(c.UserContext(), p, id, in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// UpdateItem godoc
// @Summary      Actualizar ítem de una plantilla
// @Tags         checklists
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id      path  string                 true  "ID de la plantilla"
// @Param        itemId  path  string                 true  "ID del ítem"
// @Param        body    body  dto.UpdateItemRequest  true  "Campos a actualizar"
// @Success      200     {object}  dto.ItemResponse
// @Router       /api/checklists/templates/{id}/items/{itemId} [put]
func (h *ChecklistHandler) UpdateItem(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	itemID, err := parseUUIDParam(c, "itemId")
	if err != nil {
		return err
	}
	var in dto.UpdateItemRequest
	if err := parseBody(c, &in); err != nil {
		return err
	}
	out, err := h.templates.UpdateItem(c.UserContext(), p, id, itemID, in)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// DeleteItem godoc
// @Summary      Borrar ítem de una plantilla
// @Tags         checklists
// @Security     Bearer
// @Produce      json
// @Param        id      path  string  true  "ID de la plantilla"
// @Param        itemId  path  string  true  "ID del ítem"
// @Success      200     {object}  dto.DeleteResponse
// @Router       /api/checklists/templates/{id}/items/{itemId} [delete]
func (h *ChecklistHandler) DeleteItem(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	itemID, err := parseUUIDParam(c, "itemId")
	if err != nil {
		return err
	}
	ok, err := h.templates.DeleteItem(c.UserContext(), p, id, itemID)
	if err != nil {
		return err
	}
	return c.JSON(dto.DeleteResponse{Deleted: ok})
}

// ─── Ejecuciones ─────────────────────────────────────────────────────────────

// StartExecution godoc
// @Summary      Iniciar ejecución de checklist para hoy
// @Tags         checklists
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.StartExecutionRequest  true  "Plantilla"
// @Success      201   {object}  dto.ExecutionResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/checklists/executions [post]
func (h *ChecklistHandler) StartExecution(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var in dto.StartExecutionRequest
	if err := parseBody(c, &in); err != nil {
		return err
	}
	out, err := h.executions.Start(c.UserContext(), p, in)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetExecution godoc
// @Summary      Obtener ejecución con ítems y progreso
// @Tags         checklists
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la ejecución"
// @Success      200  {object}  dto.ExecutionResponse
// @Router       /api/checklists/executions/{id} [get]
func (h *ChecklistHandler) GetExecution(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	out, err := h.executions.Get(c.UserContext(), p, id)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// ListExecutions godoc
// @Summary      Listar ejecuciones
// @Tags         checklists
// @Security     Bearer
// @Produce      json
// @Param        template_id  query  string  false  "Plantilla"
// @Param        date         query  string  false  "Día (YYYY-MM-DD)"
// @Param        open         query  bool    false  "Solo en curso"
// @Success      200  {object}  dto.ExecutionListResponse
// @Router       /api/checklists/executions [get]
func (h *ChecklistHandler) ListExecutions(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var q executionQuery
	if err := c.QueryParser(&q); err != nil {
		return fmt.Errorf("%w: filtros inválidos", domain.ErrInvalidInput)
	}
	if err := validateStruct(&q); err != nil {
		return err
	}
	filter := repository.ExecutionFilter{
		Page:       repository.Page{Limit: q.Limit, Offset: q.Offset},
		TemplateID: q.TemplateID,
		OnlyOpen:   q.Open,
	}
	if q.Date != "" {
		d, _ := time.ParseInLocation(time.DateOnly, q.Date, time.Local)
		filter.Date = &d
	}
	out, err := h.executions.List(c.UserContext(), p, filter)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// ToggleItem godoc
// @Summary      Marcar o desmarcar un ítem de la ejecución
// @Description  itemId es el ID del ítem de la plantilla. Marcar de nuevo renueva completed_at; notes "" borra la nota.
// @Tags         checklists
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id      path  string                 true  "ID de la ejecución"
// @Param        itemId  path  string                 true  "ID del ítem de la plantilla"
// @Param        body    body  dto.ToggleItemRequest  true  "Estado"
// @Success      200     {object}  dto.ExecutionItemResponse
// @Failure      409     {object}  dto.ErrorResponse
// @Router       /api/checklists/executions/{id}/items/{itemId} [put]
func (h *ChecklistHandler) ToggleItem(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	itemID, err := parseUUIDParam(c, "itemId")
	if err != nil {
		return err
	}
	var in dto.ToggleItemRequest
	if err := parseBody(c, &in); err != nil {
		return err
	}
	out, err := h.executions.ToggleItem(c.UserContext(), p, id, itemID, in)
	if err != nil {
		return err
	}
	return c.JSON(out)
}

// CompleteExecution godoc
// @Summary      Completar ejecución
// @Description  Exige todos los ítems obligatorios marcados (400).
// @Tags         checklists
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                        true   "ID de la ejecución"
// @Param        body  body  dto.CompleteExecutionRequest  false  "Notas"
// @Success      200   {object}  dto.ExecutionResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/checklists/executions/{id}/complete [post]
func (h *ChecklistHandler) CompleteExecution(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return err
	}
	var in dto.CompleteExecutionRequest
	if len(c.Body()) > 0 {
		if err := parseBody(c, &in); err != nil {
			return err
		}
	}
	out, err := h.executions.Complete(c.UserContext(), p, id, in)
	if err != nil {
		return err
	}
	return c.JSON(out)
}
