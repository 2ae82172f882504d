package usecase

import (
	"context"
	"fmt"

	"github.com/stockeasy/stockeasy-api/internal/application/dto"
	"github.com/stockeasy/stockeasy-api/internal/domain"
	"github.com/stockeasy/stockeasy-api/internal/domain/authz"
	"github.com/stockeasy/stockeasy-api/internal/domain/entity"
	"github.com/stockeasy/stockeasy-api/internal/domain/repository"
)

// PrincipalCache caché de principales a invalidar cuando cambian usuarios o empresas.
type PrincipalCache interface {
	Invalidate()
}

type noopCache struct{}

func (noopCache) Invalidate() {}

func cacheOrNoop(c PrincipalCache) PrincipalCache {
	if c == nil {
		return noopCache{}
	}
	return c
}

func toPage(in dto.PageRequest) repository.Page {
	return repository.Page{Limit: in.Limit, Offset: in.Offset}.Normalize()
}

func toPageResponse(page repository.Page, total int) dto.PageResponse {
	return dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: total}
}

func requireMaster(p authz.Principal) error {
	if !p.IsMaster() {
		return fmt.Errorf("%w: requiere MASTER", domain.ErrForbidden)
	}
	return nil
}

func requireAdmin(p authz.Principal) error {
	if p.IsMaster() || p.Role == entity.RoleAdmin {
		return nil
	}
	return fmt.Errorf("%w: requiere admin", domain.ErrForbidden)
}

// activeCompany verifica que la empresa destino de una escritura exista y esté activa.
func activeCompany(ctx context.Context, companies repository.CompanyRepository, id string) (*entity.Company, error) {
	c, err := companies.GetByID(ctx, authz.Scope{All: true}, id)
	if err != nil {
		return nil, err
	}
	if c == nil || !c.IsActive {
		return nil, fmt.Errorf("%w: empresa %s inexistente o inactiva", domain.ErrReferential, id)
	}
	return c, nil
}
