package checklist

import (
	"context"
	"fmt"
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

// TemplateUseCase CRUD de plantillas de checklist y sus ítems.
type TemplateUseCase struct {
	txRunner  ports.TxRunner
	templates repository.ChecklistTemplateRepository
	companies repository.CompanyRepository
}

// NewTemplateUseCase construye el caso de uso.
func NewTemplateUseCase(
	txRunner ports.TxRunner,
	templates repository.ChecklistTemplateRepository,
	companies repository.CompanyRepository,
) *TemplateUseCase {
	return &TemplateUseCase{txRunner: txRunner, templates: templates, companies: companies}
}

// Create crea la plantilla y sus ítems en una sola transacción.
func (uc *TemplateUseCase) Create(ctx context.Context, p authz.Principal, in dto.CreateTemplateRequest) (*dto.TemplateResponse, error) {
	if strings.TrimSpace(in.Name) == "" || !entity.ValidChecklistType(in.Type) {
		return nil, domain.ErrInvalidInput
	}
	companyID, err := authz.TargetCompany(p, in.CompanyID)
	if err != nil {
		return nil, err
	}
	company, err := uc.companies.GetByID(ctx, authz.Scope{All: true}, companyID)
	if err != nil {
		return nil, err
	}
	if company == nil || !company.IsActive {
		return nil, fmt.Errorf("%w: empresa %s inexistente o inactiva", domain.ErrReferential, companyID)
	}

	now := time.Now()
	tpl := &entity.ChecklistTemplate{
		ID:          uuid.New().String(),
		CompanyID:   companyID,
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Type:        in.Type,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	items := make([]*entity.ChecklistItem, 0, len(in.Items))
	for i, req := range in.Items {
		it, err := newItem(tpl, req, i, now)
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}

	err = uc.txRunner.Run(ctx, p.Scope(), func(repos ports.Repos) error {
		if err := repos.Templates.Create(ctx, tpl); err != nil {
			return err
		}
		for _, it := range items {
			if err := repos.Templates.CreateItem(ctx, it); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	out := toTemplateResponse(tpl)
	out.Items = toItemResponses(items)
	return out, nil
}

// Get devuelve la plantilla con sus ítems ordenados.
func (uc *TemplateUseCase) Get(ctx context.Context, p authz.Principal, id string) (*dto.TemplateResponse, error) {
	tpl, err := uc.visible(ctx, p, id)
	if err != nil {
		return nil, err
	}
	items, err := uc.templates.ListItems(ctx, p.Scope(), tpl.ID)
	if err != nil {
		return nil, err
	}
	out := toTemplateResponse(tpl)
	out.Items = toItemResponses(items)
	return out, nil
}

// List lista plantillas visibles, opcionalmente por tipo y solo activas.
func (uc *TemplateUseCase) List(ctx context.Context, p authz.Principal, page dto.PageRequest, checklistType string, onlyActive bool) (*dto.TemplateListResponse, error) {
	if checklistType != "" && !entity.ValidChecklistType(checklistType) {
		return nil, fmt.Errorf("%w: tipo %q", domain.ErrInvalidInput, checklistType)
	}
	pg := repository.Page{Limit: page.Limit, Offset: page.Offset}.Normalize()
	list, total, err := uc.templates.List(ctx, p.Scope(), repository.TemplateFilter{Page: pg, Type: checklistType, OnlyActive: onlyActive})
	if err != nil {
		return nil, err
	}
	items := make([]dto.TemplateResponse, 0, len(list))
	for _, t := range list {
		items = append(items, *toTemplateResponse(t))
	}
	return &dto.TemplateListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: pg.Limit, Offset: pg.Offset, Total: total},
	}, nil
}

// Update actualización parcial; company_id solo lo cambia MASTER.
func (uc *TemplateUseCase) Update(ctx context.Context, p authz.Principal, id string, in dto.UpdateTemplateRequest) (*dto.TemplateResponse, error) {
	tpl, err := uc.visible(ctx, p, id)
	if err != nil {
		return nil, err
	}
	if in.CompanyID != nil {
		if err := authz.CheckCompanyChange(p, tpl.CompanyID, *in.CompanyID); err != nil {
			return nil, err
		}
		if *in.CompanyID != "" && *in.CompanyID != tpl.CompanyID {
			company, err := uc.companies.GetByID(ctx, authz.Scope{All: true}, *in.CompanyID)
			if err != nil {
				return nil, err
			}
			if company == nil || !company.IsActive {
				return nil, fmt.Errorf("%w: empresa %s inexistente o inactiva", domain.ErrReferential, *in.CompanyID)
			}
			used, err := uc.templates.HasExecutions(ctx, tpl.ID)
			if err != nil {
				return nil, err
			}
			if used {
				return nil, fmt.Errorf("%w: la plantilla tiene ejecuciones y no puede cambiar de empresa", domain.ErrConflict)
			}
			tpl.CompanyID = *in.CompanyID
		}
	}
	if in.Name != nil {
		if strings.TrimSpace(*in.Name) == "" {
			return nil, domain.ErrInvalidInput
		}
		tpl.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		tpl.Description = *in.Description
	}
	if in.Type != nil {
		if !entity.ValidChecklistType(*in.Type) {
			return nil, domain.ErrInvalidInput
		}
		tpl.Type = *in.Type
	}
	if in.IsActive != nil {
		tpl.IsActive = *in.IsActive
	}
	tpl.UpdatedAt = time.Now()
	if err := uc.templates.Update(ctx, p.Scope(), tpl); err != nil {
		return nil, err
	}
	return toTemplateResponse(tpl), nil
}

// Delete borra la plantilla y sus ítems. Con ejecuciones registradas devuelve domain.ErrConflict
// (desactivarla conserva el historial).
func (uc *TemplateUseCase) Delete(ctx context.Context, p authz.Principal, id string) (bool, error) {
	return uc.templates.Delete(ctx, p.Scope(), id)
}

// ListItems ítems de una plantilla visible.
func (uc *TemplateUseCase) ListItems(ctx context.Context, p authz.Principal, templateID string) ([]dto.ItemResponse, error) {
	tpl, err := uc.visible(ctx, p, templateID)
	if err != nil {
		return nil, err
	}
	items, err := uc.templates.ListItems(ctx, p.Scope(), tpl.ID)
	if err != nil {
		return nil, err
	}
	return toItemResponses(items), nil
}

// AddItem agrega un ítem al final de la plantilla (o en Order si se indica).
func (uc *TemplateUseCase) AddItem(ctx context.Context, p authz.Principal, templateID string, in dto.CreateItemRequest) (*dto.ItemResponse, error) {
	tpl, err := uc.visible(ctx, p, templateID)
	if err != nil {
		return nil, err
	}
	existing, err := uc.templates.ListItems(ctx, p.Scope(), tpl.ID)
	if err != nil {
		return nil, err
	}
	it, err := newItem(tpl, in, len(existing), time.Now())
	if err != nil {
		return nil, err
	}
	if err := uc.templates.CreateItem(ctx, it); err != nil {
		return nil, err
	}
	out := toItemResponse(it)
	return &out, nil
}

// UpdateItem actualización parcial de un ítem de plantilla.
func (uc *TemplateUseCase) UpdateItem(ctx context.Context, p authz.Principal, templateID, itemID string, in dto.UpdateItemRequest) (*dto.ItemResponse, error) {
	it, err := uc.templates.GetItem(ctx, p.Scope(), templateID, itemID)
	if err != nil {
		return nil, err
	}
	if it == nil {
		return nil, domain.ErrNotFound
	}
	if in.Title != nil {
		if strings.TrimSpace(*in.Title) == "" {
			return nil, domain.ErrInvalidInput
		}
		it.Title = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil {
		it.Description = *in.Description
	}
	if in.Category != nil {
		it.Category = *in.Category
	}
	if in.EstimatedMinutes != nil {
		if *in.EstimatedMinutes < 0 {
			return nil, domain.ErrInvalidInput
		}
		it.EstimatedMinutes = *in.EstimatedMinutes
	}
	if in.Order != nil {
		if *in.Order < 0 {
			return nil, domain.ErrInvalidInput
		}
		it.Order = *in.Order
	}
	if in.IsRequired != nil {
		it.IsRequired = *in.IsRequired
	}
	if err := uc.templates.UpdateItem(ctx, p.Scope(), it); err != nil {
		return nil, err
	}
	out := toItemResponse(it)
	return &out, nil
}

// DeleteItem borra un ítem. Si ya fue usado en alguna ejecución devuelve domain.ErrConflict.
func (uc *TemplateUseCase) DeleteItem(ctx context.Context, p authz.Principal, templateID, itemID string) (bool, error) {
	return uc.templates.DeleteItem(ctx, p.Scope(), templateID, itemID)
}

func (uc *TemplateUseCase) visible(ctx context.Context, p authz.Principal, id string) (*entity.ChecklistTemplate, error) {
	tpl, err := uc.templates.GetByID(ctx, p.Scope(), id)
	if err != nil {
		return nil, err
	}
	if tpl == nil {
		return nil, domain.ErrNotFound
	}
	return tpl, nil
}

func newItem(tpl *entity.ChecklistTemplate, in dto.CreateItemRequest, defaultOrder int, now time.Time) (*entity.ChecklistItem, error) {
	if strings.TrimSpace(in.Title) == "" || in.EstimatedMinutes < 0 {
		return nil, domain.ErrInvalidInput
	}
	order := defaultOrder
	if in.Order != nil {
		if *in.Order < 0 {
			return nil, domain.ErrInvalidInput
		}
		order = *in.Order
	}
	required := true
	if in.IsRequired != nil {
		required = *in.IsRequired
	}
	category := in.Category
	if category == "" {
		category = "geral"
	}
	return &entity.ChecklistItem{
		ID:               uuid.New().String(),
		TemplateID:       tpl.ID,
		CompanyID:        tpl.CompanyID,
		Title:            strings.TrimSpace(in.Title),
		Description:      in.Description,
		Category:         category,
		EstimatedMinutes: in.EstimatedMinutes,
		Order:            order,
		IsRequired:       required,
		CreatedAt:        now,
	}, nil
}

func toTemplateResponse(t *entity.ChecklistTemplate) *dto.TemplateResponse {
	return &dto.TemplateResponse{
		ID:          t.ID,
		CompanyID:   t.CompanyID,
		Name:        t.Name,
		Description: t.Description,
		Type:        t.Type,
		IsActive:    t.IsActive,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func toItemResponse(it *entity.ChecklistItem) dto.ItemResponse {
	return dto.ItemResponse{
		ID:               it.ID,
		TemplateID:       it.TemplateID,
		Title:            it.Title,
		Description:      it.Description,
		Category:         it.Category,
		EstimatedMinutes: it.EstimatedMinutes,
		Order:            it.Order,
		IsRequired:       it.IsRequired,
	}
}

func toItemResponses(items []*entity.ChecklistItem) []dto.ItemResponse {
	out := make([]dto.ItemResponse, 0, len(items))
	for _, it := range items {
		out = append(out, toItemResponse(it))
	}
	return out
}
