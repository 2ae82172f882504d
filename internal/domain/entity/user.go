package entity

import "time"

// Roles válidos para User. MASTER es el operador de la plataforma y no pertenece a ninguna empresa.
const (
	RoleMaster   = "MASTER"
	RoleAdmin    = "admin"
	RoleGerente  = "gerente"
	RoleOperador = "operador"
)

// ValidRole indica si el rol existe.
func ValidRole(role string) bool {
	switch role {
	case RoleMaster, RoleAdmin, RoleGerente, RoleOperador:
		return true
	}
	return false
}

// User perfil de aplicación ligado a una identidad externa (AuthID).
// CompanyID vacío solo para MASTER.
type User struct {
	ID           string
	AuthID       string // subject del proveedor de identidad; vacío hasta el primer login
	CompanyID    string
	Name         string
	Email        string
	PasswordHash string // bcrypt; solo usuarios creados por signup propio
	Role         string
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (u *User) OwnerCompanyID() string { return u.CompanyID }
