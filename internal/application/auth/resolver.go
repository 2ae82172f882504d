package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/stockeasy/stockeasy-api/internal/domain"
	"github.com/stockeasy/stockeasy-api/internal/domain/authz"
	"github.com/stockeasy/stockeasy-api/internal/domain/entity"
	"github.com/stockeasy/stockeasy-api/internal/domain/repository"
)

// Identity identidad externa verificada (subject del proveedor + email si lo trae).
// EmailVerified solo es true si el proveedor afirma haber verificado el email.
type Identity struct {
	Subject       string
	Email         string
	EmailVerified bool
}

// IdentityVerifier valida una credencial bearer opaca.
// Devuelve un error que envuelve domain.ErrUpstream si el proveedor no respondió.
type IdentityVerifier interface {
	Verify(ctx context.Context, token string) (Identity, error)
}

// PrincipalResolver traduce una credencial en el principal {usuario, rol, empresa}.
type PrincipalResolver interface {
	Resolve(ctx context.Context, token string) (authz.Principal, error)
}

var _ PrincipalResolver = (*TokenResolver)(nil)

// TokenResolver resolvedor de producción: verifica la credencial y busca el perfil en users.
// Si el perfil aún no está enlazado a la identidad externa (alta por invitación) lo enlaza
// por email, una sola vez y solo con email verificado por el proveedor.
type TokenResolver struct {
	verifier  IdentityVerifier
	users     repository.UserRepository
	companies repository.CompanyRepository
}

// NewTokenResolver construye el resolvedor.
func NewTokenResolver(verifier IdentityVerifier, users repository.UserRepository, companies repository.CompanyRepository) *TokenResolver {
	return &TokenResolver{verifier: verifier, users: users, companies: companies}
}

// Resolve devuelve domain.ErrUnauthorized si la credencial es inválida, el usuario no existe,
// está inactivo, su empresa está desactivada o viola el invariante rol/empresa.
func (r *TokenResolver) Resolve(ctx context.Context, token string) (authz.Principal, error) {
	if strings.TrimSpace(token) == "" {
		return authz.Principal{}, fmt.Errorf("%w: token vacío", domain.ErrUnauthorized)
	}
	id, err := r.verifier.Verify(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrUpstream) {
			return authz.Principal{}, err
		}
		return authz.Principal{}, fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
	}

	user, err := r.lookup(ctx, id)
	if err != nil {
		return authz.Principal{}, err
	}
	if user == nil {
		return authz.Principal{}, fmt.Errorf("%w: usuario no registrado", domain.ErrUnauthorized)
	}
	if !user.IsActive {
		return authz.Principal{}, fmt.Errorf("%w: usuario inactivo", domain.ErrUnauthorized)
	}

	p := authz.Principal{UserID: user.ID, Email: user.Email, Role: user.Role, CompanyID: user.CompanyID}
	if err := p.Validate(); err != nil {
		return authz.Principal{}, err
	}
	if !p.IsMaster() {
		company, err := r.companies.GetByID(ctx, p.Scope(), p.CompanyID)
		if err != nil {
			return authz.Principal{}, fmt.Errorf("resolver: empresa: %w", err)
		}
		if company == nil || !company.IsActive {
			return authz.Principal{}, fmt.Errorf("%w: empresa inactiva", domain.ErrUnauthorized)
		}
	}
	return p, nil
}

func (r *TokenResolver) lookup(ctx context.Context, id Identity) (*entity.User, error) {
	user, err := r.users.GetByAuthID(ctx, id.Subject)
	if err != nil {
		return nil, fmt.Errorf("resolver: usuario: %w", err)
	}
	if user != nil || id.Email == "" || !id.EmailVerified {
		return user, nil
	}

	// Sincronización perezosa: perfil creado por un admin, aún sin identidad externa.
	candidate, err := r.users.GetUnlinkedByEmail(ctx, strings.ToLower(id.Email))
	if err != nil {
		return nil, fmt.Errorf("resolver: usuario por email: %w", err)
	}
	if candidate == nil {
		return nil, nil
	}
	linked, err := r.users.LinkAuthID(ctx, candidate.ID, id.Subject)
	if err != nil {
		return nil, fmt.Errorf("resolver: enlazar identidad: %w", err)
	}
	if !linked {
		// Otra petición concurrente ganó el enlace.
		return r.users.GetByAuthID(ctx, id.Subject)
	}
	candidate.AuthID = id.Subject
	return candidate, nil
}
