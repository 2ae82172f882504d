package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/stockeasy/stockeasy-api/internal/domain/authz"
	"github.com/stockeasy/stockeasy-api/internal/domain/entity"
	"github.com/stockeasy/stockeasy-api/internal/domain/repository"
)

// ReportUseCase genera el PDF de posición de stock de los productos activos visibles.
type ReportUseCase struct {
	productRepo repository.ProductRepository
	companyRepo repository.CompanyRepository
	renderer    StockReportRenderer
}

// NewReportUseCase construye el caso de uso inyectando el generador de PDF.
func NewReportUseCase(
	productRepo repository.ProductRepository,
	companyRepo repository.CompanyRepository,
	renderer StockReportRenderer,
) *ReportUseCase {
	return &ReportUseCase{productRepo: productRepo, companyRepo: companyRepo, renderer: renderer}
}

// StockReportPDF devuelve (pdfBytes, filename, error).
func (uc *ReportUseCase) StockReportPDF(ctx context.Context, p authz.Principal) ([]byte, string, error) {
	title := "Posição de estoque - todas as empresas"
	if !p.IsMaster() {
		company, err := uc.companyRepo.GetByID(ctx, p.Scope(), p.CompanyID)
		if err != nil {
			return nil, "", fmt.Errorf("reporte: obtener empresa: %w", err)
		}
		if company != nil {
			title = "Posição de estoque - " + company.Name
		}
	}

	products, err := uc.allActive(ctx, p.Scope())
	if err != nil {
		return nil, "", fmt.Errorf("reporte: listar productos: %w", err)
	}
	now := time.Now()
	report := StockReport{Title: title, GeneratedAt: now, TotalValue: decimal.Zero}
	for _, prod := range products {
		report.Rows = append(report.Rows, StockReportRow{
			Name:         prod.Name,
			Unit:         prod.Unit,
			CurrentStock: prod.CurrentStock,
			MinStock:     prod.MinStock,
			CostPrice:    prod.CostPrice,
			LowStock:     prod.IsLowStock(),
		})
		if prod.CostPrice != nil {
			report.TotalValue = report.TotalValue.Add(prod.CostPrice.Mul(decimal.NewFromInt(int64(prod.CurrentStock))))
		}
	}

	pdfBytes, err := uc.renderer.RenderStockReport(ctx, report)
	if err != nil {
		return nil, "", fmt.Errorf("reporte: generar pdf: %w", err)
	}
	return pdfBytes, fmt.Sprintf("estoque_%s.pdf", now.Format("20060102")), nil
}

// allActive recorre todas las páginas del listado.
func (uc *ReportUseCase) allActive(ctx context.Context, scope authz.Scope) ([]*entity.Product, error) {
	var out []*entity.Product
	page := repository.Page{Limit: repository.MaxLimit}
	for {
		list, total, err := uc.productRepo.List(ctx, scope, repository.ProductFilter{Page: page})
		if err != nil {
			return nil, err
		}
		out = append(out, list...)
		page.Offset += len(list)
		if len(list) == 0 || page.Offset >= total {
			return out, nil
		}
	}
}
