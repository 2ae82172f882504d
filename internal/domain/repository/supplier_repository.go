package repository

import (
	"context"

	"github.com/stockeasy/stockeasy-api/internal/domain/authz"
	"github.com/stockeasy/stockeasy-api/internal/domain/entity"
)

// SupplierRepository define el puerto de persistencia para Supplier (DIP).
type SupplierRepository interface {
	Create(ctx context.Context, supplier *entity.Supplier) error
	GetByID(ctx context.Context, scope authz.Scope, id string) (*entity.Supplier, error)
	List(ctx context.Context, scope authz.Scope, page Page) ([]*entity.Supplier, int, error)
	Update(ctx context.Context, scope authz.Scope, supplier *entity.Supplier) error
	Delete(ctx context.Context, scope authz.Scope, id string) (bool, error)
	// HasProducts indica si algún producto (activo o no) referencia al proveedor.
	HasProducts(ctx context.Context, id string) (bool, error)
}
