package authz

import (
	"fmt"

	"github.com/stockeasy/stockeasy-api/internal/domain"
	"github.com/stockeasy/stockeasy-api/internal/domain/entity"
)

// Owned cualquier fila con empresa dueña, directa o heredada de su padre
// (ítems de checklist vía plantilla, ítems de ejecución vía ejecución).
type Owned interface {
	OwnerCompanyID() string
}

// CanAccess indica si la fila es visible y modificable por el principal.
func CanAccess(p Principal, row Owned) bool {
	if row == nil {
		return false
	}
	return p.Scope().Allows(row.OwnerCompanyID())
}

// TargetCompany resuelve la empresa de un registro nuevo.
// No-MASTER: siempre la del principal, ignorando lo enviado. MASTER: debe indicarla.
func TargetCompany(p Principal, requested string) (string, error) {
	if p.IsMaster() {
		if requested == "" {
			return "", fmt.Errorf("%w: company_id es requerido para MASTER", domain.ErrInvalidInput)
		}
		return requested, nil
	}
	if p.CompanyID == "" {
		return "", domain.ErrUnauthorized
	}
	return p.CompanyID, nil
}

// CheckCompanyChange rechaza que un no-MASTER mueva un registro a otra empresa.
// requested vacío significa "sin cambio".
func CheckCompanyChange(p Principal, current, requested string) error {
	if requested == "" || requested == current {
		return nil
	}
	if !p.IsMaster() {
		return fmt.Errorf("%w: company_id no puede modificarse", domain.ErrInvalidInput)
	}
	return nil
}

// ValidateRoleCompany invariante role = MASTER ⇔ companyID vacío.
// Un MASTER con empresa se trata como dato corrupto.
func ValidateRoleCompany(role, companyID string) error {
	if !entity.ValidRole(role) {
		return fmt.Errorf("%w: rol %q desconocido", domain.ErrInvalidInput, role)
	}
	if role == entity.RoleMaster && companyID != "" {
		return fmt.Errorf("%w: MASTER no puede pertenecer a una empresa", domain.ErrInvalidInput)
	}
	if role != entity.RoleMaster && companyID == "" {
		return fmt.Errorf("%w: el rol %s requiere empresa", domain.ErrInvalidInput, role)
	}
	return nil
}
