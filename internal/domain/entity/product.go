package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product insumo o producto controlado en stock.
// CurrentStock solo cambia a través de StockMovement; el borrado es lógico (IsActive=false).
type Product struct {
	ID           string
	CompanyID    string
	Name         string
	Unit         string // kg, un, l, cx...
	CurrentStock int
	MinStock     int
	MaxStock     *int
	CostPrice    *decimal.Decimal
	SupplierID   string // vacío = sin proveedor
	CategoryID   string // vacío = sin categoría
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (p *Product) OwnerCompanyID() string { return p.CompanyID }

// IsLowStock stock en o por debajo del mínimo.
func (p *Product) IsLowStock() bool {
	return p.CurrentStock <= p.MinStock
}
