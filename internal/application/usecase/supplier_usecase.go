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

// SupplierUseCase CRUD de proveedores con scope de empresa.
type SupplierUseCase struct {
	repo      repository.SupplierRepository
	companies repository.CompanyRepository
}

// NewSupplierUseCase construye el caso de uso.
func NewSupplierUseCase(repo repository.SupplierRepository, companies repository.CompanyRepository) *SupplierUseCase {
	return &SupplierUseCase{repo: repo, companies: companies}
}

// Create crea un proveedor en la empresa del principal (MASTER indica company_id).
func (uc *SupplierUseCase) Create(ctx context.Context, p authz.Principal, in dto.CreateSupplierRequest) (*dto.SupplierResponse, error) {
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
	s := &entity.Supplier{
		ID:        uuid.New().String(),
		CompanyID: companyID,
		Name:      strings.TrimSpace(in.Name),
		Phone:     in.Phone,
		Email:     strings.ToLower(strings.TrimSpace(in.Email)),
		Address:   in.Address,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.repo.Create(ctx, s); err != nil {
		return nil, err
	}
	return toSupplierResponse(s), nil
}

// GetByID devuelve domain.ErrNotFound si no existe o está fuera de scope.
func (uc *SupplierUseCase) GetByID(ctx context.Context, p authz.Principal, id string) (*dto.SupplierResponse, error) {
	s, err := uc.repo.GetByID(ctx, p.Scope(), id)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, domain.ErrNotFound
	}
	return toSupplierResponse(s), nil
}

// List lista los proveedores visibles.
func (uc *SupplierUseCase) List(ctx context.Context, p authz.Principal, page dto.PageRequest) (*dto.SupplierListResponse, error) {
	pg := toPage(page)
	list, total, err := uc.repo.List(ctx, p.Scope(), pg)
	if err != nil {
		return nil, err
	}
	items := make([]dto.SupplierResponse, 0, len(list))
	for _, s := range list {
		items = append(items, *toSupplierResponse(s))
	}
	return &dto.SupplierListResponse{Items: items, Page: toPageResponse(pg, total)}, nil
}

// Update actualiza un proveedor; company_id solo lo cambia MASTER.
func (uc *SupplierUseCase) Update(ctx context.Context, p authz.Principal, id string, in dto.UpdateSupplierRequest) (*dto.SupplierResponse, error) {
	s, err := uc.repo.GetByID(ctx, p.Scope(), id)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, domain.ErrNotFound
	}
	if in.CompanyID != nil {
		if err := authz.CheckCompanyChange(p, s.CompanyID, *in.CompanyID); err != nil {
			return nil, err
		}
		if *in.CompanyID != "" && *in.CompanyID != s.CompanyID {
			if _, err := activeCompany(ctx, uc.companies, *in.CompanyID); err != nil {
				return nil, err
			}
			used, err := uc.repo.HasProducts(ctx, s.ID)
			if err != nil {
				return nil, err
			}
			if used {
				return nil, fmt.Errorf("%w: el proveedor tiene productos y no puede cambiar de empresa", domain.ErrConflict)
			}
			s.CompanyID = *in.CompanyID
		}
	}
	if in.Name != nil {
		if strings.TrimSpace(*in.Name) == "" {
			return nil, domain.ErrInvalidInput
		}
		s.Name = strings.TrimSpace(*in.Name)
	}
	if in.Phone != nil {
		s.Phone = *in.Phone
	}
	if in.Email != nil {
		s.Email = strings.ToLower(strings.TrimSpace(*in.Email))
	}
	if in.Address != nil {
		s.Address = *in.Address
	}
	s.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, p.Scope(), s); err != nil {
		return nil, err
	}
	return toSupplierResponse(s), nil
}

// Delete borra el proveedor; los productos quedan sin proveedor. false si no existía o no es visible.
func (uc *SupplierUseCase) Delete(ctx context.Context, p authz.Principal, id string) (bool, error) {
	return uc.repo.Delete(ctx, p.Scope(), id)
}

func toSupplierResponse(s *entity.Supplier) *dto.SupplierResponse {
	return &dto.SupplierResponse{
		ID:        s.ID,
		CompanyID: s.CompanyID,
		Name:      s.Name,
		Phone:     s.Phone,
		Email:     s.Email,
		Address:   s.Address,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.UpdatedAt,
	}
}
