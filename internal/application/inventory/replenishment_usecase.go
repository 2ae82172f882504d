package inventory

import (
	"context"
	"slices"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/stockeasy/stockeasy-api/internal/application/dto"
	"github.com/stockeasy/stockeasy-api/internal/domain/authz"
	"github.com/stockeasy/stockeasy-api/internal/domain/entity"
	"github.com/stockeasy/stockeasy-api/internal/domain/repository"
)

const noSupplierName = "Sem fornecedor"

// ReplenishmentUseCase genera la lista de reposición: productos con stock bajo agrupados
// por proveedor, con cantidad sugerida y el texto del pedido en pt-BR.
type ReplenishmentUseCase struct {
	productRepo  repository.ProductRepository
	supplierRepo repository.SupplierRepository
	printer      *message.Printer
}

// NewReplenishmentUseCase construye el caso de uso de reposición.
func NewReplenishmentUseCase(
	productRepo repository.ProductRepository,
	supplierRepo repository.SupplierRepository,
) *ReplenishmentUseCase {
	return &ReplenishmentUseCase{
		productRepo:  productRepo,
		supplierRepo: supplierRepo,
		printer:      message.NewPrinter(language.BrazilianPortuguese),
	}
}

// SuggestedQuantity cantidad a pedir: max_stock - actual o, sin máximo, 2×min - actual.
func SuggestedQuantity(p *entity.Product) int {
	target := 2 * p.MinStock
	if p.MaxStock != nil {
		target = *p.MaxStock
	}
	if q := target - p.CurrentStock; q > 0 {
		return q
	}
	return 0
}

type groupKey struct{ companyID, supplierID string }

// GenerateRestockList devuelve los pedidos sugeridos visibles para el principal.
// Productos sin cantidad sugerida (ej. min_stock 0) se omiten.
func (uc *ReplenishmentUseCase) GenerateRestockList(ctx context.Context, p authz.Principal) (*dto.RestockResponse, error) {
	scope := p.Scope()
	products, err := uc.productRepo.ListLowStock(ctx, scope)
	if err != nil {
		return nil, err
	}

	groups := map[groupKey]*dto.RestockGroupDTO{}
	for _, prod := range products {
		qty := SuggestedQuantity(prod)
		if qty == 0 {
			continue
		}
		key := groupKey{companyID: prod.CompanyID, supplierID: prod.SupplierID}
		g, ok := groups[key]
		if !ok {
			g = &dto.RestockGroupDTO{CompanyID: prod.CompanyID, SupplierID: prod.SupplierID, SupplierName: noSupplierName}
			if prod.SupplierID != "" {
				sup, err := uc.supplierRepo.GetByID(ctx, scope, prod.SupplierID)
				if err != nil {
					return nil, err
				}
				if sup != nil {
					g.SupplierName = sup.Name
					g.SupplierPhone = sup.Phone
				}
			}
			groups[key] = g
		}
		cost := decimal.Zero
		if prod.CostPrice != nil {
			cost = prod.CostPrice.Mul(decimal.NewFromInt(int64(qty)))
		}
		g.Items = append(g.Items, dto.RestockItemDTO{
			ProductID:     prod.ID,
			ProductName:   prod.Name,
			Unit:          prod.Unit,
			CurrentStock:  prod.CurrentStock,
			MinStock:      prod.MinStock,
			SuggestedQty:  qty,
			EstimatedCost: cost,
		})
		g.EstimatedCost = g.EstimatedCost.Add(cost)
	}

	out := &dto.RestockResponse{Groups: make([]dto.RestockGroupDTO, 0, len(groups)), EstimatedCost: decimal.Zero}
	for _, g := range groups {
		g.Message = uc.restockMessage(g)
		out.Groups = append(out.Groups, *g)
		out.EstimatedCost = out.EstimatedCost.Add(g.EstimatedCost)
	}
	// Proveedores por nombre; "sem fornecedor" al final.
	slices.SortFunc(out.Groups, func(a, b dto.RestockGroupDTO) int {
		if (a.SupplierID == "") != (b.SupplierID == "") {
			if a.SupplierID == "" {
				return 1
			}
			return -1
		}
		if c := strings.Compare(a.SupplierName, b.SupplierName); c != 0 {
			return c
		}
		return strings.Compare(a.CompanyID, b.CompanyID)
	})
	return out, nil
}

// restockMessage texto del pedido listo para copiar y enviar al proveedor.
func (uc *ReplenishmentUseCase) restockMessage(g *dto.RestockGroupDTO) string {
	var b strings.Builder
	if g.SupplierID != "" {
		b.WriteString(uc.printer.Sprintf("Olá, %s! Gostaria de fazer o seguinte pedido:\n", g.SupplierName))
	} else {
		b.WriteString("Itens para repor (sem fornecedor cadastrado):\n")
	}
	for _, it := range g.Items {
		b.WriteString(uc.printer.Sprintf("- %d %s de %s\n", it.SuggestedQty, it.Unit, it.ProductName))
	}
	if g.EstimatedCost.IsPositive() {
		b.WriteString(uc.printer.Sprintf("Valor estimado: R$ %.2f\n", g.EstimatedCost.InexactFloat64()))
	}
	b.WriteString("Obrigado!")
	return b.String()
}
