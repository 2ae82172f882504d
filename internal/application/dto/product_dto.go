package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProductRequest entrada para crear un producto. El stock inicial siempre es 0:
// se carga con un movimiento de entrada.
type CreateProductRequest struct {
	CompanyID  string           `json:"company_id" validate:"omitempty,uuid"`
	Name       string           `json:"name" validate:"required,min=1,max=200"`
	Unit       string           `json:"unit" validate:"required,min=1,max=20"`
	MinStock   int              `json:"min_stock" validate:"min=0"`
	MaxStock   *int             `json:"max_stock" validate:"omitempty,min=0"`
	CostPrice  *decimal.Decimal `json:"cost_price"`
	SupplierID string           `json:"supplier_id" validate:"omitempty,uuid"`
	CategoryID string           `json:"category_id" validate:"omitempty,uuid"`
}

// UpdateProductRequest actualización parcial (sin stock: se maneja vía movimientos).
// SupplierID/CategoryID con "" quitan la referencia; ClearMaxStock vuelve max_stock a null.
type UpdateProductRequest struct {
	CompanyID     *string          `json:"company_id" validate:"omitempty,uuid"`
	Name          *string          `json:"name" validate:"omitempty,min=1,max=200"`
	Unit          *string          `json:"unit" validate:"omitempty,min=1,max=20"`
	MinStock      *int             `json:"min_stock" validate:"omitempty,min=0"`
	MaxStock      *int             `json:"max_stock" validate:"omitempty,min=0"`
	ClearMaxStock bool             `json:"clear_max_stock"`
	CostPrice     *decimal.Decimal `json:"cost_price"`
	SupplierID    *string          `json:"supplier_id" validate:"omitempty,uuid"`
	CategoryID    *string          `json:"category_id" validate:"omitempty,uuid"`
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID           string           `json:"id"`
	CompanyID    string           `json:"company_id"`
	Name         string           `json:"name"`
	Unit         string           `json:"unit"`
	CurrentStock int              `json:"current_stock"`
	MinStock     int              `json:"min_stock"`
	MaxStock     *int             `json:"max_stock,omitempty"`
	CostPrice    *decimal.Decimal `json:"cost_price,omitempty"`
	SupplierID   string           `json:"supplier_id,omitempty"`
	CategoryID   string           `json:"category_id,omitempty"`
	IsActive     bool             `json:"is_active"`
	LowStock     bool             `json:"low_stock"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

// ProductListResponse lista paginada de productos.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}
