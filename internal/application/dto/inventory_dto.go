package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// RegisterMovementRequest body para POST /api/movements.
// entrada/saida usan Quantity; ajuste usa NewStock.
type RegisterMovementRequest struct {
	ProductID  string           `json:"product_id" validate:"required,uuid"`
	Type       string           `json:"type" validate:"required,oneof=entrada saida ajuste"`
	Quantity   int              `json:"quantity" validate:"min=0"`
	NewStock   *int             `json:"new_stock" validate:"omitempty,min=0"`
	UnitPrice  *decimal.Decimal `json:"unit_price"`
	TotalPrice *decimal.Decimal `json:"total_price"`
	Notes      string           `json:"notes" validate:"omitempty,max=500"`
}

// MovementResponse salida de un movimiento del ledger.
type MovementResponse struct {
	ID            string           `json:"id"`
	CompanyID     string           `json:"company_id"`
	ProductID     string           `json:"product_id"`
	ProductName   string           `json:"product_name,omitempty"`
	UserID        string           `json:"user_id"`
	Type          string           `json:"type"`
	Quantity      int              `json:"quantity"`
	UnitPrice     *decimal.Decimal `json:"unit_price,omitempty"`
	TotalPrice    *decimal.Decimal `json:"total_price,omitempty"`
	Notes         string           `json:"notes,omitempty"`
	PreviousStock int              `json:"previous_stock"`
	NewStock      int              `json:"new_stock"`
	CreatedAt     time.Time        `json:"created_at"`
}

// MovementListResponse lista paginada de movimientos.
type MovementListResponse struct {
	Items []MovementResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}

// RestockItemDTO producto con stock bajo y cantidad sugerida de pedido.
type RestockItemDTO struct {
	ProductID     string          `json:"product_id"`
	ProductName   string          `json:"product_name"`
	Unit          string          `json:"unit"`
	CurrentStock  int             `json:"current_stock"`
	MinStock      int             `json:"min_stock"`
	SuggestedQty  int             `json:"suggested_qty"`  // max_stock - actual, o 2×min - actual
	EstimatedCost decimal.Decimal `json:"estimated_cost"` // SuggestedQty × cost_price
}

// RestockGroupDTO pedido sugerido para un proveedor (SupplierID vacío = sin proveedor).
type RestockGroupDTO struct {
	CompanyID     string           `json:"company_id"`
	SupplierID    string           `json:"supplier_id,omitempty"`
	SupplierName  string           `json:"supplier_name"`
	SupplierPhone string           `json:"supplier_phone,omitempty"`
	Items         []RestockItemDTO `json:"items"`
	EstimatedCost decimal.Decimal  `json:"estimated_cost"`
	Message       string           `json:"message"` // texto listo para enviar al proveedor
}

// RestockResponse pedidos sugeridos agrupados por proveedor.
type RestockResponse struct {
	Groups        []RestockGroupDTO `json:"groups"`
	EstimatedCost decimal.Decimal   `json:"estimated_cost"`
}
