package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/stockeasy/stockeasy-api/internal/application/dto"
	"github.com/stockeasy/stockeasy-api/internal/application/ports"
	"github.com/stockeasy/stockeasy-api/internal/domain"
	"github.com/stockeasy/stockeasy-api/internal/domain/authz"
	"github.com/stockeasy/stockeasy-api/internal/domain/entity"
	"github.com/stockeasy/stockeasy-api/internal/domain/repository"
	"github.com/stockeasy/stockeasy-api/pkg/jwt"
)

// JWTConfig configuración para generación de tokens.
type JWTConfig struct {
	Secret     string
	ExpMinutes int
	Issuer     string
}

// AuthUseCase alta de empresas (signup) y login con password propio.
type AuthUseCase struct {
	tx     ports.TxRunner
	users  repository.UserRepository
	jwtCfg JWTConfig
}

// NewAuthUseCase construye el caso de uso de auth.
func NewAuthUseCase(tx ports.TxRunner, users repository.UserRepository, jwtCfg JWTConfig) *AuthUseCase {
	return &AuthUseCase{tx: tx, users: users, jwtCfg: jwtCfg}
}

// Signup crea en una transacción la empresa (plan basic) y su primer admin con password bcrypt.
// Devuelve domain.ErrDuplicate si el email ya está registrado.
func (uc *AuthUseCase) Signup(ctx context.Context, in dto.SignupRequest) (*dto.SignupResponse, error) {
	email := normalizeEmail(in.Email)
	if email == "" || strings.TrimSpace(in.CompanyName) == "" || strings.TrimSpace(in.Name) == "" || len(in.Password) < 8 {
		return nil, domain.ErrInvalidInput
	}
	existing, err := uc.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicate
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now()
	companyEmail := normalizeEmail(in.CompanyEmail)
	if companyEmail == "" {
		companyEmail = email
	}
	company := &entity.Company{
		ID:        uuid.New().String(),
		Name:      strings.TrimSpace(in.CompanyName),
		Email:     companyEmail,
		CNPJ:      in.CNPJ,
		Plan:      entity.PlanBasic,
		MaxUsers:  entity.DefaultMaxUsers,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	user := &entity.User{
		ID:           uuid.New().String(),
		AuthID:       uuid.New().String(),
		CompanyID:    company.ID,
		Name:         strings.TrimSpace(in.Name),
		Email:        email,
		PasswordHash: string(hash),
		Role:         entity.RoleAdmin,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = uc.tx.Run(ctx, authz.Scope{All: true}, func(r ports.Repos) error {
		if err := r.Companies.Create(ctx, company); err != nil {
			return err
		}
		return r.Users.Create(ctx, user)
	})
	if err != nil {
		return nil, err
	}

	token, err := jwt.Generate(uc.jwtCfg.Secret, user.AuthID, user.Email, uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return nil, err
	}
	return &dto.SignupResponse{
		Token:   token,
		User:    *ToUserResponse(user),
		Company: *ToCompanyResponse(company),
	}, nil
}

// Login verifica email/password y emite un token cuyo subject es el AuthID del usuario.
// Cualquier fallo de credenciales devuelve domain.ErrUnauthorized sin distinguir la causa.
func (uc *AuthUseCase) Login(ctx context.Context, in dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := uc.users.GetByEmail(ctx, normalizeEmail(in.Email))
	if err != nil {
		return nil, err
	}
	if user == nil || user.PasswordHash == "" || !user.IsActive {
		return nil, domain.ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, domain.ErrUnauthorized
	}
	if user.AuthID == "" {
		authID := uuid.New().String()
		linked, err := uc.users.LinkAuthID(ctx, user.ID, authID)
		if err != nil {
			return nil, err
		}
		if !linked {
			return nil, domain.ErrConflict
		}
		user.AuthID = authID
	}
	token, err := jwt.Generate(uc.jwtCfg.Secret, user.AuthID, user.Email, uc.jwtCfg.Issuer, uc.jwtCfg.ExpMinutes)
	if err != nil {
		return nil, err
	}
	return &dto.LoginResponse{
		Token: token,
		User:  *ToUserResponse(user),
	}, nil
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// ToUserResponse mapea la entidad a DTO (sin hash).
func ToUserResponse(u *entity.User) *dto.UserResponse {
	if u == nil {
		return nil
	}
	return &dto.UserResponse{
		ID:        u.ID,
		CompanyID: u.CompanyID,
		Email:     u.Email,
		Name:      u.Name,
		Role:      u.Role,
		IsActive:  u.IsActive,
		Linked:    u.AuthID != "",
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// ToCompanyResponse mapea la entidad a DTO.
func ToCompanyResponse(c *entity.Company) *dto.CompanyResponse {
	if c == nil {
		return nil
	}
	return &dto.CompanyResponse{
		ID:        c.ID,
		Name:      c.Name,
		Email:     c.Email,
		CNPJ:      c.CNPJ,
		Phone:     c.Phone,
		Address:   c.Address,
		Plan:      c.Plan,
		MaxUsers:  c.MaxUsers,
		IsActive:  c.IsActive,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}
