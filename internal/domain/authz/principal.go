// Package authz concentra la regla de aislamiento multi-tenant: un principal MASTER ve todo,
// cualquier otro rol solo ve filas cuya empresa coincide con la suya.
package authz

import (
	"fmt"

	"github.com/stockeasy/stockeasy-api/internal/domain"
	"github.com/stockeasy/stockeasy-api/internal/domain/entity"
)

// noCompany UUID que no existe en ninguna tabla; se usa cuando un principal sin empresa
// llega a una consulta con filtro (nunca debe devolver filas).
const noCompany = "00000000-0000-0000-0000-000000000000"

// Principal identidad resuelta detrás de una petición. Role y CompanyID son las únicas
// entradas de cualquier decisión de autorización.
type Principal struct {
	UserID    string
	Email     string
	Role      string
	CompanyID string // vacío para MASTER
}

// IsMaster indica si el principal tiene visibilidad global.
func (p Principal) IsMaster() bool {
	return p.Role == entity.RoleMaster
}

// Scope deriva el filtro por petición que reciben todos los repositorios.
func (p Principal) Scope() Scope {
	if p.IsMaster() {
		return Scope{All: true}
	}
	return Scope{CompanyID: p.CompanyID}
}

// Validate rechaza principales inconsistentes (rol desconocido, MASTER con empresa, rol sin empresa).
func (p Principal) Validate() error {
	if p.UserID == "" {
		return fmt.Errorf("%w: principal sin usuario", domain.ErrUnauthorized)
	}
	if err := ValidateRoleCompany(p.Role, p.CompanyID); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
	}
	return nil
}

// Scope filtro de empresa. All=true solo para MASTER.
type Scope struct {
	CompanyID string
	All       bool
}

// Allows es el mismo predicado que aplican las consultas SQL, para filtrar en memoria.
func (s Scope) Allows(companyID string) bool {
	if s.All {
		return true
	}
	return s.CompanyID != "" && s.CompanyID == companyID
}

// FilterArg valor para enlazar en `($n::uuid IS NULL OR company_id = $n::uuid)`.
// nil solo para MASTER; un scope sin empresa se enlaza a un UUID que no coincide con nada.
func (s Scope) FilterArg() *string {
	if s.All {
		return nil
	}
	if s.CompanyID == "" {
		id := noCompany
		return &id
	}
	id := s.CompanyID
	return &id
}
