package checklist

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/stockeasy/stockeasy-api/internal/application/dto"
	"github.com/stockeasy/stockeasy-api/internal/application/ports"
	"github.com/stockeasy/stockeasy-api/internal/domain"
	"github.com/stockeasy/stockeasy-api/internal/domain/authz"
	"github.com/stockeasy/stockeasy-api/internal/domain/entity"
	"github.com/stockeasy/stockeasy-api/internal/domain/repository"
)

// ExecutionUseCase máquina de estados de una ejecución de checklist:
// EnCurso (isCompleted=false) → Completada (isCompleted=true, completedAt != nil). No hay vuelta atrás.
type ExecutionUseCase struct {
	txRunner   ports.TxRunner
	templates  repository.ChecklistTemplateRepository
	executions repository.ChecklistExecutionRepository
	now        func() time.Time
}

// NewExecutionUseCase construye el caso de uso.
func NewExecutionUseCase(
	txRunner ports.TxRunner,
	templates repository.ChecklistTemplateRepository,
	executions repository.ChecklistExecutionRepository,
) *ExecutionUseCase {
	return &ExecutionUseCase{txRunner: txRunner, templates: templates, executions: executions, now: time.Now}
}

// DateOnly medianoche del día de t en su zona horaria.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// Start abre una ejecución de la plantilla para hoy con un ítem por cada ítem de la plantilla.
// Solo puede haber una ejecución abierta por plantilla y día (domain.ErrConflict).
func (uc *ExecutionUseCase) Start(ctx context.Context, p authz.Principal, in dto.StartExecutionRequest) (*dto.ExecutionResponse, error) {
	if in.TemplateID == "" {
		return nil, domain.ErrInvalidInput
	}
	now := uc.now()
	today := DateOnly(now)

	var exec *entity.ChecklistExecution
	var execItems []*entity.ChecklistExecutionItem
	err := uc.txRunner.Run(ctx, p.Scope(), func(repos ports.Repos) error {
		tpl, err := repos.Templates.GetByID(ctx, p.Scope(), in.TemplateID)
		if err != nil {
			return err
		}
		if tpl == nil {
			return domain.ErrNotFound
		}
		if !tpl.IsActive {
			return fmt.Errorf("%w: la plantilla está inactiva", domain.ErrConflict)
		}
		open, err := repos.Executions.FindOpen(ctx, tpl.ID, today)
		if err != nil {
			return err
		}
		if open != nil {
			return fmt.Errorf("%w: ya existe una ejecución abierta (%s) de esta plantilla hoy", domain.ErrConflict, open.ID)
		}
		items, err := repos.Templates.ListItems(ctx, p.Scope(), tpl.ID)
		if err != nil {
			return err
		}

		exec = &entity.ChecklistExecution{
			ID:            uuid.New().String(),
			TemplateID:    tpl.ID,
			TemplateName:  tpl.Name,
			TemplateType:  tpl.Type,
			UserID:        p.UserID,
			CompanyID:     tpl.CompanyID,
			ExecutionDate: today,
			StartedAt:     now,
			Notes:         in.Notes,
		}
		if err := repos.Executions.Create(ctx, exec); err != nil {
			return err
		}
		execItems = make([]*entity.ChecklistExecutionItem, 0, len(items))
		for _, it := range items {
			execItems = append(execItems, &entity.ChecklistExecutionItem{
				ID:          uuid.New().String(),
				ExecutionID: exec.ID,
				ItemID:      it.ID,
				CompanyID:   exec.CompanyID,
				Title:       it.Title,
				IsRequired:  it.IsRequired,
				Order:       it.Order,
			})
		}
		if len(execItems) == 0 {
			return nil
		}
		return repos.Executions.CreateItems(ctx, execItems)
	})
	if err != nil {
		return nil, err
	}
	return toExecutionDetail(exec, execItems), nil
}

// ToggleItem marca o desmarca un ítem. Marcar de nuevo un ítem ya marcado renueva completedAt
// (queda una sola marca, la última). Una ejecución completada ya no admite cambios (domain.ErrConflict).
func (uc *ExecutionUseCase) ToggleItem(ctx context.Context, p authz.Principal, executionID, itemID string, in dto.ToggleItemRequest) (*dto.ExecutionItemResponse, error) {
	var item *entity.ChecklistExecutionItem
	err := uc.txRunner.Run(ctx, p.Scope(), func(repos ports.Repos) error {
		exec, err := repos.Executions.GetForUpdate(ctx, p.Scope(), executionID)
		if err != nil {
			return err
		}
		if exec == nil {
			return domain.ErrNotFound
		}
		if exec.IsCompleted {
			return fmt.Errorf("%w: la ejecución ya fue completada", domain.ErrConflict)
		}
		item, err = repos.Executions.GetItem(ctx, p.Scope(), executionID, itemID)
		if err != nil {
			return err
		}
		if item == nil {
			return domain.ErrNotFound
		}
		changed := false
		switch {
		case in.IsCompleted:
			t := uc.now()
			item.IsCompleted = true
			item.CompletedAt = &t
			changed = true
		case item.IsCompleted:
			item.IsCompleted = false
			item.CompletedAt = nil
			changed = true
		}
		if in.Notes != nil && *in.Notes != item.Notes {
			item.Notes = *in.Notes
			changed = true
		}
		if !changed {
			return nil
		}
		return repos.Executions.UpdateItem(ctx, item)
	})
	if err != nil {
		return nil, err
	}
	out := toExecutionItemResponse(item)
	return &out, nil
}

// Complete cierra la ejecución. Exige todos los ítems obligatorios marcados (domain.ErrInvalidInput).
func (uc *ExecutionUseCase) Complete(ctx context.Context, p authz.Principal, executionID string, in dto.CompleteExecutionRequest) (*dto.ExecutionResponse, error) {
	var exec *entity.ChecklistExecution
	var items []*entity.ChecklistExecutionItem
	err := uc.txRunner.Run(ctx, p.Scope(), func(repos ports.Repos) error {
		var err error
		exec, err = repos.Executions.GetForUpdate(ctx, p.Scope(), executionID)
		if err != nil {
			return err
		}
		if exec == nil {
			return domain.ErrNotFound
		}
		if exec.IsCompleted {
			return fmt.Errorf("%w: la ejecución ya fue completada", domain.ErrConflict)
		}
		items, err = repos.Executions.ListItems(ctx, p.Scope(), exec.ID)
		if err != nil {
			return err
		}
		var pending []string
		for _, it := range items {
			if it.IsRequired && !it.IsCompleted {
				pending = append(pending, it.Title)
			}
		}
		if len(pending) > 0 {
			return fmt.Errorf("%w: ítems obligatorios pendientes: %s", domain.ErrInvalidInput, strings.Join(pending, ", "))
		}
		t := uc.now()
		exec.IsCompleted = true
		exec.CompletedAt = &t
		if in.Notes != "" {
			exec.Notes = in.Notes
		}
		return repos.Executions.MarkCompleted(ctx, exec)
	})
	if err != nil {
		return nil, err
	}
	return toExecutionDetail(exec, items), nil
}

// Get devuelve la ejecución con sus ítems y el progreso.
func (uc *ExecutionUseCase) Get(ctx context.Context, p authz.Principal, executionID string) (*dto.ExecutionResponse, error) {
	exec, err := uc.executions.GetByID(ctx, p.Scope(), executionID)
	if err != nil {
		return nil, err
	}
	if exec == nil {
		return nil, domain.ErrNotFound
	}
	items, err := uc.executions.ListItems(ctx, p.Scope(), exec.ID)
	if err != nil {
		return nil, err
	}
	return toExecutionDetail(exec, items), nil
}

// List ejecuciones visibles, la más reciente primero.
func (uc *ExecutionUseCase) List(ctx context.Context, p authz.Principal, filter repository.ExecutionFilter) (*dto.ExecutionListResponse, error) {
	filter.Page = filter.Page.Normalize()
	if filter.Date != nil {
		d := DateOnly(*filter.Date)
		filter.Date = &d
	}
	list, total, err := uc.executions.List(ctx, p.Scope(), filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ExecutionResponse, 0, len(list))
	for _, e := range list {
		items = append(items, *toExecutionResponse(e))
	}
	return &dto.ExecutionListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: filter.Page.Limit, Offset: filter.Page.Offset, Total: total},
	}, nil
}

// Progress completados / total, con porcentaje redondeado a un decimal.
func Progress(items []*entity.ChecklistExecutionItem) dto.ProgressDTO {
	out := dto.ProgressDTO{Total: len(items)}
	for _, it := range items {
		if it.IsCompleted {
			out.Completed++
		}
	}
	if out.Total > 0 {
		out.Percent = math.Round(float64(out.Completed)*1000/float64(out.Total)) / 10
	}
	return out
}

func toExecutionResponse(e *entity.ChecklistExecution) *dto.ExecutionResponse {
	return &dto.ExecutionResponse{
		ID:            e.ID,
		TemplateID:    e.TemplateID,
		TemplateName:  e.TemplateName,
		TemplateType:  e.TemplateType,
		CompanyID:     e.CompanyID,
		UserID:        e.UserID,
		ExecutionDate: e.ExecutionDate.Format(time.DateOnly),
		StartedAt:     e.StartedAt,
		CompletedAt:   e.CompletedAt,
		IsCompleted:   e.IsCompleted,
		Notes:         e.Notes,
	}
}

func toExecutionDetail(e *entity.ChecklistExecution, items []*entity.ChecklistExecutionItem) *dto.ExecutionResponse {
	out := toExecutionResponse(e)
	out.Items = make([]dto.ExecutionItemResponse, 0, len(items))
	for _, it := range items {
		out.Items = append(out.Items, toExecutionItemResponse(it))
	}
	progress := Progress(items)
	out.Progress = &progress
	return out
}

func toExecutionItemResponse(it *entity.ChecklistExecutionItem) dto.ExecutionItemResponse {
	return dto.ExecutionItemResponse{
		ID:          it.ID,
		ItemID:      it.ItemID,
		Title:       it.Title,
		IsRequired:  it.IsRequired,
		Order:       it.Order,
		IsCompleted: it.IsCompleted,
		CompletedAt: it.CompletedAt,
		Notes:       it.Notes,
	}
}
