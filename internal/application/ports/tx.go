package ports

import (
	"context"

	"github.com/stockeasy/stockeasy-api/internal/domain/authz"
	"github.com/stockeasy/stockeasy-api/internal/domain/repository"
)

// Repos repositorios atados a una misma transacción.
type Repos struct {
	Companies  repository.CompanyRepository
	Users      repository.UserRepository
	Products   repository.ProductRepository
	Movements  repository.StockMovementRepository
	Templates  repository.ChecklistTemplateRepository
	Executions repository.ChecklistExecutionRepository
}

// TxRunner ejecuta fn dentro de una transacción de BD con el scope del principal
// (la implementación PostgreSQL lo publica para las políticas RLS). Commit si fn
// devuelve nil, Rollback en cualquier otro caso.
type TxRunner interface {
	Run(ctx context.Context, scope authz.Scope, fn func(repos Repos) error) error
}
