package repository

import (
	"context"

	"github.com/stockeasy/stockeasy-api/internal/domain/authz"
	"github.com/stockeasy/stockeasy-api/internal/domain/entity"
)

// UserRepository define el puerto de persistencia para User (DIP).
// GetByAuthID, GetUnlinkedByEmail y LinkAuthID no llevan scope: los usa el resolvedor
// de principales antes de que exista un principal.
type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	GetByID(ctx context.Context, scope authz.Scope, id string) (*entity.User, error)
	GetByAuthID(ctx context.Context, authID string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	GetUnlinkedByEmail(ctx context.Context, email string) (*entity.User, error)
	// LinkAuthID enlaza la identidad externa solo si el perfil aún no tiene una.
	LinkAuthID(ctx context.Context, userID, authID string) (bool, error)
	List(ctx context.Context, scope authz.Scope, page Page) ([]*entity.User, int, error)
	Update(ctx context.Context, scope authz.Scope, user *entity.User) error
	CountActiveByCompany(ctx context.Context, companyID string) (int, error)
}
