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

// UserUseCase perfiles de usuario. Lectura para cualquier rol dentro de su empresa;
// altas y cambios solo admin (en su empresa) o MASTER.
type UserUseCase struct {
	repo      repository.UserRepository
	companies repository.CompanyRepository
	cache     PrincipalCache
}

// NewUserUseCase construye el caso de uso con los puertos de persistencia.
func NewUserUseCase(repo repository.UserRepository, companies repository.CompanyRepository, cache PrincipalCache) *UserUseCase {
	return &UserUseCase{repo: repo, companies: companies, cache: cacheOrNoop(cache)}
}

// Me devuelve el perfil del principal.
func (uc *UserUseCase) Me(ctx context.Context, p authz.Principal) (*dto.UserResponse, error) {
	return uc.GetByID(ctx, p, p.UserID)
}

// GetByID devuelve domain.ErrNotFound si no existe o pertenece a otra empresa.
func (uc *UserUseCase) GetByID(ctx context.Context, p authz.Principal, id string) (*dto.UserResponse, error) {
	user, err := uc.repo.GetByID(ctx, p.Scope(), id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrNotFound
	}
	return auth.ToUserResponse(user), nil
}

// List lista los usuarios visibles para el principal.
func (uc *UserUseCase) List(ctx context.Context, p authz.Principal, page dto.PageRequest) (*dto.UserListResponse, error) {
	pg := toPage(page)
	list, total, err := uc.repo.List(ctx, p.Scope(), pg)
	if err != nil {
		return nil, err
	}
	items := make([]dto.UserResponse, 0, len(list))
	for _, u := range list {
		items = append(items, *auth.ToUserResponse(u))
	}
	return &dto.UserListResponse{Items: items, Page: toPageResponse(pg, total)}, nil
}

// Create da de alta un perfil sin identidad externa; se enlaza por email en el primer login.
// Respeta MaxUsers de la empresa (domain.ErrConflict al superarlo).
func (uc *UserUseCase) Create(ctx context.Context, p authz.Principal, in dto.CreateUserRequest) (*dto.UserResponse, error) {
	if err := requireAdmin(p); err != nil {
		return nil, err
	}
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if email == "" || strings.TrimSpace(in.Name) == "" {
		return nil, domain.ErrInvalidInput
	}
	if in.Role == entity.RoleMaster && !p.IsMaster() {
		return nil, fmt.Errorf("%w: solo MASTER crea usuarios MASTER", domain.ErrForbidden)
	}

	companyID := ""
	if in.Role != entity.RoleMaster {
		var err error
		if companyID, err = authz.TargetCompany(p, in.CompanyID); err != nil {
			return nil, err
		}
	} else if in.CompanyID != "" {
		return nil, fmt.Errorf("%w: MASTER no puede pertenecer a una empresa", domain.ErrInvalidInput)
	}
	if err := authz.ValidateRoleCompany(in.Role, companyID); err != nil {
		return nil, err
	}
	if companyID != "" {
		if err := uc.checkSeat(ctx, companyID); err != nil {
			return nil, err
		}
	}
	existing, err := uc.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicate
	}

	now := time.Now()
	user := &entity.User{
		ID:        uuid.New().String(),
		CompanyID: companyID,
		Name:      strings.TrimSpace(in.Name),
		Email:     email,
		Role:      in.Role,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := uc.repo.Create(ctx, user); err != nil {
		return nil, err
	}
	return auth.ToUserResponse(user), nil
}

// Update cambia nombre, rol, estado o (solo MASTER) empresa.
func (uc *UserUseCase) Update(ctx context.Context, p authz.Principal, id string, in dto.UpdateUserRequest) (*dto.UserResponse, error) {
	if err := requireAdmin(p); err != nil {
		return nil, err
	}
	user, err := uc.repo.GetByID(ctx, p.Scope(), id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrNotFound
	}
	requested := ""
	if in.CompanyID != nil {
		requested = *in.CompanyID
	}
	if err := authz.CheckCompanyChange(p, user.CompanyID, requested); err != nil {
		return nil, err
	}
	if in.Role != nil && *in.Role == entity.RoleMaster && !p.IsMaster() {
		return nil, fmt.Errorf("%w: solo MASTER asigna el rol MASTER", domain.ErrForbidden)
	}
	if user.ID == p.UserID && in.IsActive != nil && !*in.IsActive {
		return nil, fmt.Errorf("%w: un usuario no puede desactivarse a sí mismo", domain.ErrConflict)
	}

	wasActive, prevCompany := user.IsActive, user.CompanyID
	if in.Name != nil {
		if strings.TrimSpace(*in.Name) == "" {
			return nil, domain.ErrInvalidInput
		}
		user.Name = strings.TrimSpace(*in.Name)
	}
	if in.Role != nil {
		user.Role = *in.Role
	}
	if requested != "" {
		user.CompanyID = requested
	}
	if in.IsActive != nil {
		user.IsActive = *in.IsActive
	}
	if err := authz.ValidateRoleCompany(user.Role, user.CompanyID); err != nil {
		return nil, err
	}
	if user.CompanyID != "" && user.IsActive && (!wasActive || user.CompanyID != prevCompany) {
		if err := uc.checkSeat(ctx, user.CompanyID); err != nil {
			return nil, err
		}
	}
	user.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, p.Scope(), user); err != nil {
		return nil, err
	}
	uc.cache.Invalidate()
	return auth.ToUserResponse(user), nil
}

// AssignCompany acción MASTER: mueve un usuario a otra empresa (o lo convierte en MASTER),
// validando el invariante rol/empresa.
func (uc *UserUseCase) AssignCompany(ctx context.Context, p authz.Principal, id string, in dto.AssignCompanyRequest) (*dto.UserResponse, error) {
	if err := requireMaster(p); err != nil {
		return nil, err
	}
	user, err := uc.repo.GetByID(ctx, p.Scope(), id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrNotFound
	}
	role := user.Role
	if in.Role != "" {
		role = in.Role
	}
	if err := authz.ValidateRoleCompany(role, in.CompanyID); err != nil {
		return nil, err
	}
	if in.CompanyID != "" && in.CompanyID != user.CompanyID {
		if err := uc.checkSeat(ctx, in.CompanyID); err != nil {
			return nil, err
		}
	}
	user.Role = role
	user.CompanyID = in.CompanyID
	user.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, p.Scope(), user); err != nil {
		return nil, err
	}
	uc.cache.Invalidate()
	return auth.ToUserResponse(user), nil
}

// checkSeat verifica que la empresa exista, esté activa y tenga cupo de usuarios.
func (uc *UserUseCase) checkSeat(ctx context.Context, companyID string) error {
	company, err := activeCompany(ctx, uc.companies, companyID)
	if err != nil {
		return err
	}
	n, err := uc.repo.CountActiveByCompany(ctx, companyID)
	if err != nil {
		return err
	}
	if n >= company.MaxUsers {
		return fmt.Errorf("%w: la empresa alcanzó el límite de %d usuarios", domain.ErrConflict, company.MaxUsers)
	}
	return nil
}
