package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/stockeasy/stockeasy-api/internal/application/dto"
	"github.com/stockeasy/stockeasy-api/internal/application/ports"
	"github.com/stockeasy/stockeasy-api/internal/domain"
	"github.com/stockeasy/stockeasy-api/internal/domain/authz"
	"github.com/stockeasy/stockeasy-api/internal/domain/entity"
	"github.com/stockeasy/stockeasy-api/internal/domain/repository"
)

// ProductUseCase casos de uso CRUD para productos. El stock se maneja vía movimientos.
type ProductUseCase struct {
	tx         ports.TxRunner
	repo       repository.ProductRepository
	suppliers  repository.SupplierRepository
	categories repository.CategoryRepository
	companies  repository.CompanyRepository
}

// NewProductUseCase construye el caso de uso.
func NewProductUseCase(
	tx ports.TxRunner,
	repo repository.ProductRepository,
	suppliers repository.SupplierRepository,
	categories repository.CategoryRepository,
	companies repository.CompanyRepository,
) *ProductUseCase {
	return &ProductUseCase{tx: tx, repo: repo, suppliers: suppliers, categories: categories, companies: companies}
}

// Create crea un nuevo producto con stock 0.
func (uc *ProductUseCase) Create(ctx context.Context, p authz.Principal, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.Unit) == "" || in.MinStock < 0 {
		return nil, domain.ErrInvalidInput
	}
	if err := checkStockBounds(in.MinStock, in.MaxStock); err != nil {
		return nil, err
	}
	if in.CostPrice != nil && in.CostPrice.IsNegative() {
		return nil, domain.ErrInvalidInput
	}
	companyID, err := authz.TargetCompany(p, in.CompanyID)
	if err != nil {
		return nil, err
	}
	if _, err := activeCompany(ctx, uc.companies, companyID); err != nil {
		return nil, err
	}
	if err := uc.checkRefs(ctx, companyID, in.SupplierID, in.CategoryID); err != nil {
		return nil, err
	}
	now := time.Now()
	product := &entity.Product{
		ID:           uuid.New().String(),
		CompanyID:    companyID,
		Name:         strings.TrimSpace(in.Name),
		Unit:         strings.TrimSpace(in.Unit),
		CurrentStock: 0,
		MinStock:     in.MinStock,
		MaxStock:     in.MaxStock,
		CostPrice:    in.CostPrice,
		SupplierID:   in.SupplierID,
		CategoryID:   in.CategoryID,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.repo.Create(ctx, product); err != nil {
		return nil, err
	}
	return toProductResponse(product), nil
}

// GetByID obtiene un producto activo visible para el principal.
func (uc *ProductUseCase) GetByID(ctx context.Context, p authz.Principal, id string) (*dto.ProductResponse, error) {
	product, err := uc.repo.GetByID(ctx, p.Scope(), id)
	if err != nil {
		return nil, err
	}
	if product == nil || !product.IsActive {
		return nil, domain.ErrNotFound
	}
	return toProductResponse(product), nil
}

// GetAny lectura privilegiada de MASTER: incluye productos inactivos de cualquier empresa.
func (uc *ProductUseCase) GetAny(ctx context.Context, p authz.Principal, id string) (*dto.ProductResponse, error) {
	if err := requireMaster(p); err != nil {
		return nil, err
	}
	product, err := uc.repo.GetByID(ctx, authz.Scope{All: true}, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.ErrNotFound
	}
	return toProductResponse(product), nil
}

// List lista productos activos visibles, opcionalmente solo los de stock bajo.
func (uc *ProductUseCase) List(ctx context.Context, p authz.Principal, page dto.PageRequest, lowStock bool, query string) (*dto.ProductListResponse, error) {
	pg := toPage(page)
	list, total, err := uc.repo.List(ctx, p.Scope(), repository.ProductFilter{
		Page:     pg,
		LowStock: lowStock,
		Query:    strings.TrimSpace(query),
	})
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, product := range list {
		items = append(items, *toProductResponse(product))
	}
	return &dto.ProductListResponse{Items: items, Page: toPageResponse(pg, total)}, nil
}

// Update actualiza un producto. No permite modificar el stock (se maneja vía movimientos).
// Un producto con movimientos no cambia de empresa: su historial quedaría en la anterior (domain.ErrConflict).
func (uc *ProductUseCase) Update(ctx context.Context, p authz.Principal, id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	if in.ClearMaxStock && in.MaxStock != nil {
		return nil, fmt.Errorf("%w: max_stock y clear_max_stock son excluyentes", domain.ErrInvalidInput)
	}
	var out *entity.Product
	err := uc.tx.Run(ctx, p.Scope(), func(repos ports.Repos) error {
		// Bloqueo de la fila: serializa con los movimientos en curso del mismo producto.
		product, err := repos.Products.GetForUpdate(ctx, p.Scope(), id)
		if err != nil {
			return err
		}
		if product == nil || !product.IsActive {
			return domain.ErrNotFound
		}
		if in.CompanyID != nil {
			if err := authz.CheckCompanyChange(p, product.CompanyID, *in.CompanyID); err != nil {
				return err
			}
			if *in.CompanyID != "" && *in.CompanyID != product.CompanyID {
				if err := uc.checkMove(ctx, repos, product.ID, *in.CompanyID); err != nil {
					return err
				}
				product.CompanyID = *in.CompanyID
				// Las referencias de la empresa anterior no se arrastran.
				if in.SupplierID == nil {
					product.SupplierID = ""
				}
				if in.CategoryID == nil {
					product.CategoryID = ""
				}
			}
		}
		if err := applyProductPatch(product, in); err != nil {
			return err
		}
		if err := uc.checkRefs(ctx, product.CompanyID, product.SupplierID, product.CategoryID); err != nil {
			return err
		}
		product.UpdatedAt = time.Now()
		if err := repos.Products.Update(ctx, p.Scope(), product); err != nil {
			return err
		}
		out = product
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toProductResponse(out), nil
}

func (uc *ProductUseCase) checkMove(ctx context.Context, repos ports.Repos, productID, target string) error {
	if _, err := activeCompany(ctx, uc.companies, target); err != nil {
		return err
	}
	moved, err := repos.Movements.ExistsForProduct(ctx, productID)
	if err != nil {
		return err
	}
	if moved {
		return fmt.Errorf("%w: el producto tiene movimientos y no puede cambiar de empresa", domain.ErrConflict)
	}
	return nil
}

func applyProductPatch(product *entity.Product, in dto.UpdateProductRequest) error {
	if in.Name != nil {
		if strings.TrimSpace(*in.Name) == "" {
			return domain.ErrInvalidInput
		}
		product.Name = strings.TrimSpace(*in.Name)
	}
	if in.Unit != nil {
		if strings.TrimSpace(*in.Unit) == "" {
			return domain.ErrInvalidInput
		}
		product.Unit = strings.TrimSpace(*in.Unit)
	}
	if in.MinStock != nil {
		if *in.MinStock < 0 {
			return domain.ErrInvalidInput
		}
		product.MinStock = *in.MinStock
	}
	switch {
	case in.ClearMaxStock:
		product.MaxStock = nil
	case in.MaxStock != nil:
		product.MaxStock = in.MaxStock
	}
	if err := checkStockBounds(product.MinStock, product.MaxStock); err != nil {
		return err
	}
	if in.CostPrice != nil {
		if in.CostPrice.IsNegative() {
			return domain.ErrInvalidInput
		}
		product.CostPrice = in.CostPrice
	}
	if in.SupplierID != nil {
		product.SupplierID = *in.SupplierID
	}
	if in.CategoryID != nil {
		product.CategoryID = *in.CategoryID
	}
	return nil
}

// Delete borrado lógico. false si no existía, ya estaba inactivo o no es visible.
func (uc *ProductUseCase) Delete(ctx context.Context, p authz.Principal, id string) (bool, error) {
	return uc.repo.SoftDelete(ctx, p.Scope(), id)
}

// checkRefs proveedor y categoría deben pertenecer a la misma empresa que el producto.
func (uc *ProductUseCase) checkRefs(ctx context.Context, companyID, supplierID, categoryID string) error {
	scope := authz.Scope{CompanyID: companyID}
	if supplierID != "" {
		s, err := uc.suppliers.GetByID(ctx, scope, supplierID)
		if err != nil {
			return err
		}
		if s == nil {
			return fmt.Errorf("%w: proveedor %s no pertenece a la empresa", domain.ErrReferential, supplierID)
		}
	}
	if categoryID != "" {
		c, err := uc.categories.GetByID(ctx, scope, categoryID)
		if err != nil {
			return err
		}
		if c == nil {
			return fmt.Errorf("%w: categoría %s no pertenece a la empresa", domain.ErrReferential, categoryID)
		}
	}
	return nil
}

func checkStockBounds(minStock int, maxStock *int) error {
	if maxStock != nil && *maxStock < minStock {
		return fmt.Errorf("%w: max_stock menor que min_stock", domain.ErrInvalidInput)
	}
	return nil
}

func toProductResponse(p *entity.Product) *dto.ProductResponse {
	return &dto.ProductResponse{
		ID:           p.ID,
		CompanyID:    p.CompanyID,
		Name:         p.Name,
		Unit:         p.Unit,
		CurrentStock: p.CurrentStock,
		MinStock:     p.MinStock,
		MaxStock:     p.MaxStock,
		CostPrice:    p.CostPrice,
		SupplierID:   p.SupplierID,
		CategoryID:   p.CategoryID,
		IsActive:     p.IsActive,
		LowStock:     p.IsLowStock(),
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}
