package entity

import "time"

// Planes de suscripción.
const (
	PlanBasic       = "basic"
	PlanPro         = "pro"
	PlanEnterprise  = "enterprise"
	DefaultMaxUsers = 5
)

// Company representa una organización/tenant del sistema (raíz del aislamiento multi-tenant).
// Nunca se elimina: se desactiva con IsActive=false.
type Company struct {
	ID        string
	Name      string
	Email     string
	CNPJ      string // opcional
	Phone     string
	Address   string
	Plan      string // basic, pro, enterprise
	MaxUsers  int
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// OwnerCompanyID la empresa es dueña de sí misma.
func (c *Company) OwnerCompanyID() string { return c.ID }

// ValidPlan indica si el plan es uno de los soportados.
func ValidPlan(plan string) bool {
	switch plan {
	case PlanBasic, PlanPro, PlanEnterprise:
		return true
	}
	return false
}
