package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/stockeasy/stockeasy-api/internal/application/dto"
	"github.com/stockeasy/stockeasy-api/internal/domain"
	"github.com/stockeasy/stockeasy-api/internal/domain/authz"
	"github.com/stockeasy/stockeasy-api/internal/domain/entity"
	"github.com/stockeasy/stockeasy-api/internal/domain/repository"
)

// CategoryUseCase CRUD de categorías con scope de empresa.
type CategoryUseCase struct {
	repo      repository.CategoryRepository
	companies repository.CompanyRepository
}

// NewCategoryUseCase construye el caso de uso.
func NewCategoryUseCase(repo repository.CategoryRepository, companies repository.CompanyRepository) *CategoryUseCase {
	return &CategoryUseCase{repo: repo, companies: companies}
}

// Create crea una categoría en la empresa del principal (MASTER indica company_id).
func (uc *CategoryUseCase) Create(ctx context.Context, p authz.Principal, in dto.CreateCategoryRequest) (*dto.CategoryResponse, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, domain.ErrInvalidInput
	}
	companyID, err := authz.TargetCompany(p, in.CompanyID)
	if err != nil {
		return nil, err
	}
	if _, err := activeCompany(ctx, uc.companies, companyID); err != nil {
		return nil, err
	}
	now := time.Now()
	c := &entity.Category{
		ID:          uuid.New().String(),
		CompanyID:   companyID,
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return toCategoryResponse(c), nil
}

// GetByID devuelve domain.ErrNotFound si no existe o está fuera de scope.
func (uc *CategoryUseCase) GetByID(ctx context.Context, p authz.Principal, id string) (*dto.CategoryResponse, error) {
	c, err := uc.repo.GetByID(ctx, p.Scope(), id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, domain.ErrNotFound
	}
	return toCategoryResponse(c), nil
}

// List lista las categorías visibles.
func (uc *CategoryUseCase) List(ctx context.Context, p authz.Principal, page dto.PageRequest) (*dto.CategoryListResponse, error) {
	pg := toPage(page)
	list, total, err := uc.repo.List(ctx, p.Scope(), pg)
	if err != nil {
		return nil, err
	}
	items := make([]dto.CategoryResponse, 0, len(list))
	for _, c := range list {
		items = append(items, *toCategoryResponse(c))
	}
	return &dto.CategoryListResponse{Items: items, Page: toPageResponse(pg, total)}, nil
}

// Update actualiza una categoría; company_id solo lo cambia MASTER.
func (uc *CategoryUseCase) Update(ctx context.Context, p authz.Principal, id string, in dto.UpdateCategoryRequest) (*dto.CategoryResponse, error) {
	c, err := uc.repo.GetByID(ctx, p.Scope(), id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, domain.ErrNotFound
	}
	if in.CompanyID != nil {
		if err := authz.CheckCompanyChange(p, c.CompanyID, *in.CompanyID); err != nil {
			return nil, err
		}
		if *in.CompanyID != "" && *in.CompanyID != c.CompanyID {
			if _, err := activeCompany(ctx, uc.companies, *in.CompanyID); err != nil {
				return nil, err
			}
			used, err := uc.repo.HasProducts(ctx, c.ID)
			if err != nil {
				return nil, err
			}
			if used {
				return nil, fmt.Errorf("%w: la categoría tiene productos y no puede cambiar de empresa", domain.ErrConflict)
			}
			c.CompanyID = *in.CompanyID
		}
	}
	if in.Name != nil {
		if strings.TrimSpace(*in.Name) == "" {
			return nil, domain.ErrInvalidInput
		}
		c.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		c.Description = *in.Description
	}
	c.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, p.Scope(), c); err != nil {
		return nil, err
	}
	return toCategoryResponse(c), nil
}

// Delete borra la categoría; los productos quedan sin categoría. false si no existía o no es visible.
func (uc *CategoryUseCase) Delete(ctx context.Context, p authz.Principal, id string) (bool, error) {
	return uc.repo.Delete(ctx, p.Scope(), id)
}

func toCategoryResponse(c *entity.Category) *dto.CategoryResponse {
	return &dto.CategoryResponse{
		ID:          c.ID,
		CompanyID:   c.CompanyID,
		Name:        c.Name,
		Description: c.Description,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}
