package entity

import "time"

// Supplier proveedor de insumos de una empresa.
type Supplier struct {
	ID        string
	CompanyID string
	Name      string
	Phone     string
	Email     string
	Address   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (s *Supplier) OwnerCompanyID() string { return s.CompanyID }
