package repository

import (
	"context"

	"github.com/stockeasy/stockeasy-api/internal/domain/authz"
	"github.com/stockeasy/stockeasy-api/internal/domain/entity"
)

// CompanyRepository define el puerto de persistencia para Company (DIP).
// Las empresas nunca se eliminan; SetActive las desactiva.
type CompanyRepository interface {
	Create(ctx context.Context, company *entity.Company) error
	GetByID(ctx context.Context, scope authz.Scope, id string) (*entity.Company, error)
	List(ctx context.Context, page Page) ([]*entity.Company, int, error)
	Update(ctx context.Context, scope authz.Scope, company *entity.Company) error
	SetActive(ctx context.Context, id string, active bool) (bool, error)
}
