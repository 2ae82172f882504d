package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento de stock.
const (
	MovementEntrada = "entrada" // suma
	MovementSaida   = "saida"   // resta, sin bajar de cero
	MovementAjuste  = "ajuste"  // fija el stock a un valor objetivo
)

// ValidMovementType indica si el tipo de movimiento existe.
func ValidMovementType(t string) bool {
	switch t {
	case MovementEntrada, MovementSaida, MovementAjuste:
		return true
	}
	return false
}

// StockMovement registro inmutable del ledger de stock.
type StockMovement struct {
	ID            string
	CompanyID     string // siempre la empresa del producto
	ProductID     string
	ProductName   string // solo lectura; vacío si el producto está inactivo o es de otra empresa
	UserID        string
	Type          string
	Quantity      int // siempre > 0
	UnitPrice     *decimal.Decimal
	TotalPrice    *decimal.Decimal
	Notes         string
	PreviousStock int
	NewStock      int
	CreatedAt     time.Time
}

func (m *StockMovement) OwnerCompanyID() string { return m.CompanyID }
