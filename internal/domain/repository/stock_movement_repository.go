package repository

import (
	"context"
	"time"

	"github.com/stockeasy/stockeasy-api/internal/domain/authz"
	"github.com/stockeasy/stockeasy-api/internal/domain/entity"
)

// MovementFilter filtros del historial de movimientos.
type MovementFilter struct {
	Page      Page
	ProductID string
	Type      string
	From      *time.Time
	To        *time.Time
}

// StockMovementRepository ledger append-only: no hay Update ni Delete.
type StockMovementRepository interface {
	Create(ctx context.Context, movement *entity.StockMovement) error
	// List devuelve el más reciente primero; ProductName solo para productos activos.
	List(ctx context.Context, scope authz.Scope, filter MovementFilter) ([]*entity.StockMovement, int, error)
	// ExistsForProduct indica si el producto ya tiene historial (no puede cambiar de empresa).
	ExistsForProduct(ctx context.Context, productID string) (bool, error)
}
