package repository

import (
	"context"

	"github.com/stockeasy/stockeasy-api/internal/domain/authz"
	"github.com/stockeasy/stockeasy-api/internal/domain/entity"
)

// ProductFilter filtros del listado de productos (solo activos).
type ProductFilter struct {
	Page     Page
	LowStock bool
	Query    string // búsqueda por nombre (ILIKE)
}

// ProductRepository define el puerto de persistencia para Product (DIP).
// current_stock solo se modifica con UpdateStock dentro de la transacción del ledger.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	// GetByID devuelve también productos inactivos; el caso de uso decide.
	GetByID(ctx context.Context, scope authz.Scope, id string) (*entity.Product, error)
	// GetForUpdate bloquea la fila (SELECT FOR UPDATE). Solo dentro de una transacción.
	GetForUpdate(ctx context.Context, scope authz.Scope, id string) (*entity.Product, error)
	List(ctx context.Context, scope authz.Scope, filter ProductFilter) ([]*entity.Product, int, error)
	ListLowStock(ctx context.Context, scope authz.Scope) ([]*entity.Product, error)
	Update(ctx context.Context, scope authz.Scope, product *entity.Product) error
	UpdateStock(ctx context.Context, id string, newStock int) error
	SoftDelete(ctx context.Context, scope authz.Scope, id string) (bool, error)
}
