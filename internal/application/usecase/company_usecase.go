package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/stockeasy/stockeasy-api/internal/application/auth"
	"github.com/stockeasy/stockeasy-api/internal/application/dto"
	"github.com/stockeasy/stockeasy-api/internal/domain"
	"github.com/stockeasy/stockeasy-api/internal/domain/authz"
	"github.com/stockeasy/stockeasy-api/internal/domain/entity"
	"github.com/stockeasy/stockeasy-api/internal/domain/repository"
)

// CompanyUseCase directorio de tenants. Alta, listado y desactivación son exclusivos de MASTER;
// un admin solo puede editar los datos de contacto de su propia empresa.
type CompanyUseCase struct {
	repo  repository.CompanyRepository
	cache PrincipalCache
}

// NewCompanyUseCase construye el caso de uso con el puerto de persistencia.
func NewCompanyUseCase(repo repository.CompanyRepository, cache PrincipalCache) *CompanyUseCase {
	return &CompanyUseCase{repo: repo, cache: cacheOrNoop(cache)}
}

// Create crea una empresa activa (MASTER).
func (uc *CompanyUseCase) Create(ctx context.Context, p authz.Principal, in dto.CreateCompanyRequest) (*dto.CompanyResponse, error) {
	if err := requireMaster(p); err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.Email) == "" {
		return nil, domain.ErrInvalidInput
	}
	plan := in.Plan
	if plan == "" {
		plan = entity.PlanBasic
	}
	if !entity.ValidPlan(plan) {
		return nil, fmt.Errorf("%w: plan %q", domain.ErrInvalidInput, plan)
	}
	maxUsers := in.MaxUsers
	if maxUsers <= 0 {
		maxUsers = entity.DefaultMaxUsers
	}
	now := time.Now()
	company := &entity.Company{
		ID:        uuid.New().String(),
		Name:      strings.TrimSpace(in.Name),
		Email:     strings.ToLower(strings.TrimSpace(in.Email)),
		CNPJ:      in.CNPJ,
		Phone:     in.Phone,
		Address:   in.Address,
		Plan:      plan,
		MaxUsers:  maxUsers,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.repo.Create(ctx, company); err != nil {
		return nil, err
	}
	return auth.ToCompanyResponse(company), nil
}

// GetByID devuelve domain.ErrNotFound si no existe o no es la empresa del principal.
func (uc *CompanyUseCase) GetByID(ctx context.Context, p authz.Principal, id string) (*dto.CompanyResponse, error) {
	company, err := uc.repo.GetByID(ctx, p.Scope(), id)
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, domain.ErrNotFound
	}
	return auth.ToCompanyResponse(company), nil
}

// Mine devuelve la empresa del principal. MASTER no tiene empresa.
func (uc *CompanyUseCase) Mine(ctx context.Context, p authz.Principal) (*dto.CompanyResponse, error) {
	if p.IsMaster() {
		return nil, domain.ErrNotFound
	}
	return uc.GetByID(ctx, p, p.CompanyID)
}

// List lista todas las empresas (MASTER).
func (uc *CompanyUseCase) List(ctx context.Context, p authz.Principal, page dto.PageRequest) (*dto.CompanyListResponse, error) {
	if err := requireMaster(p); err != nil {
		return nil, err
	}
	pg := toPage(page)
	list, total, err := uc.repo.List(ctx, pg)
	if err != nil {
		return nil, err
	}
	items := make([]dto.CompanyResponse, 0, len(list))
	for _, c := range list {
		items = append(items, *auth.ToCompanyResponse(c))
	}
	return &dto.CompanyListResponse{Items: items, Page: toPageResponse(pg, total)}, nil
}

// Update actualiza una empresa. Plan, MaxUsers e IsActive solo los cambia MASTER.
func (uc *CompanyUseCase) Update(ctx context.Context, p authz.Principal, id string, in dto.UpdateCompanyRequest) (*dto.CompanyResponse, error) {
	if err := requireAdmin(p); err != nil {
		return nil, err
	}
	company, err := uc.repo.GetByID(ctx, p.Scope(), id)
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, domain.ErrNotFound
	}
	if !p.IsMaster() && (in.Plan != nil || in.MaxUsers != nil || in.IsActive != nil) {
		return nil, fmt.Errorf("%w: plan, max_users e is_active solo para MASTER", domain.ErrForbidden)
	}
	if in.Name != nil {
		if strings.TrimSpace(*in.Name) == "" {
			return nil, domain.ErrInvalidInput
		}
		company.Name = strings.TrimSpace(*in.Name)
	}
	if in.Email != nil {
		company.Email = strings.ToLower(strings.TrimSpace(*in.Email))
	}
	if in.CNPJ != nil {
		company.CNPJ = *in.CNPJ
	}
	if in.Phone != nil {
		company.Phone = *in.Phone
	}
	if in.Address != nil {
		company.Address = *in.Address
	}
	if in.Plan != nil {
		if !entity.ValidPlan(*in.Plan) {
			return nil, fmt.Errorf("%w: plan %q", domain.ErrInvalidInput, *in.Plan)
		}
		company.Plan = *in.Plan
	}
	if in.MaxUsers != nil {
		if *in.MaxUsers <= 0 {
			return nil, domain.ErrInvalidInput
		}
		company.MaxUsers = *in.MaxUsers
	}
	statusChanged := in.IsActive != nil && *in.IsActive != company.IsActive
	if in.IsActive != nil {
		company.IsActive = *in.IsActive
	}
	company.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, p.Scope(), company); err != nil {
		return nil, err
	}
	if statusChanged {
		uc.cache.Invalidate()
	}
	return auth.ToCompanyResponse(company), nil
}

// Deactivate desactiva una empresa (MASTER). Sus usuarios dejan de autenticarse.
func (uc *CompanyUseCase) Deactivate(ctx context.Context, p authz.Principal, id string) (bool, error) {
	if err := requireMaster(p); err != nil {
		return false, err
	}
	ok, err := uc.repo.SetActive(ctx, id, false)
	if err != nil {
		return false, err
	}
	if ok {
		uc.cache.Invalidate()
	}
	return ok, nil
}
