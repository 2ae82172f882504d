package repository

import (
	"context"

	"github.com/stockeasy/stockeasy-api/internal/domain/authz"
	"github.com/stockeasy/stockeasy-api/internal/domain/entity"
)

// CategoryRepository define el puerto de persistencia para Category (DIP).
type CategoryRepository interface {
	Create(ctx context.Context, category *entity.Category) error
	GetByID(ctx context.Context, scope authz.Scope, id string) (*entity.Category, error)
	List(ctx context.Context, scope authz.Scope, page Page) ([]*entity.Category, int, error)
	Update(ctx context.Context, scope authz.Scope, category *entity.Category) error
	Delete(ctx context.Context, scope authz.Scope, id string) (bool, error)
	// HasProducts indica si algún producto (activo o no) referencia a la categoría.
	HasProducts(ctx context.Context, id string) (bool, error)
}
