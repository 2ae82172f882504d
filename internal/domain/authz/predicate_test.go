package authz_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockeasy/stockeasy-api/internal/domain"
	"github.com/stockeasy/stockeasy-api/internal/domain/authz"
	"github.com/stockeasy/stockeasy-api/internal/domain/entity"
)

const (
	companyA = "11111111-1111-1111-1111-111111111111"
	companyB = "22222222-2222-2222-2222-222222222222"
)

var (
	master    = authz.Principal{UserID: "m", Role: entity.RoleMaster}
	adminA    = authz.Principal{UserID: "a", Role: entity.RoleAdmin, CompanyID: companyA}
	operadorB = authz.Principal{UserID: "b", Role: entity.RoleOperador, CompanyID: companyB}
)

// ──────────────────────────────────────────────────────────────────────────────
// CanAccess
// ──────────────────────────────────────────────────────────────────────────────

func TestCanAccess_MismaEmpresa(t *testing.T) {
	row := &entity.Supplier{ID: "s1", CompanyID: companyA}
	assert.True(t, authz.CanAccess(adminA, row))
	assert.False(t, authz.CanAccess(operadorB, row), "otra empresa no debe ver la fila")
}

func TestCanAccess_MasterVeTodo(t *testing.T) {
	assert.True(t, authz.CanAccess(master, &entity.Product{CompanyID: companyA}))
	assert.True(t, authz.CanAccess(master, &entity.Product{CompanyID: companyB}))
	assert.True(t, authz.CanAccess(master, &entity.User{Role: entity.RoleMaster}))
}

func TestCanAccess_FilasHeredadas(t *testing.T) {
	item := &entity.ChecklistItem{TemplateID: "t1", CompanyID: companyA}
	execItem := &entity.ChecklistExecutionItem{ExecutionID: "e1", CompanyID: companyB}

	assert.True(t, authz.CanAccess(adminA, item))
	assert.False(t, authz.CanAccess(adminA, execItem))
	assert.True(t, authz.CanAccess(operadorB, execItem))
}

func TestCanAccess_PrincipalSinEmpresaNoVeNada(t *testing.T) {
	broken := authz.Principal{UserID: "x", Role: entity.RoleAdmin}
	assert.False(t, authz.CanAccess(broken, &entity.Category{CompanyID: ""}))
	assert.False(t, authz.CanAccess(broken, &entity.Category{CompanyID: companyA}))
	assert.False(t, authz.CanAccess(adminA, nil))
}

// ──────────────────────────────────────────────────────────────────────────────
// Scope
// ──────────────────────────────────────────────────────────────────────────────

func TestScope_FilterArg(t *testing.T) {
	assert.Nil(t, master.Scope().FilterArg())

	arg := adminA.Scope().FilterArg()
	require.NotNil(t, arg)
	assert.Equal(t, companyA, *arg)

	empty := authz.Scope{}.FilterArg()
	require.NotNil(t, empty, "un scope vacío nunca debe equivaler a MASTER")
	assert.NotEqual(t, companyA, *empty)
}

// ──────────────────────────────────────────────────────────────────────────────
// TargetCompany / CheckCompanyChange
// ──────────────────────────────────────────────────────────────────────────────

func TestTargetCompany(t *testing.T) {
	got, err := authz.TargetCompany(adminA, companyB)
	require.NoError(t, err)
	assert.Equal(t, companyA, got, "no-MASTER siempre crea en su propia empresa")

	_, err = authz.TargetCompany(master, "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	got, err = authz.TargetCompany(master, companyB)
	require.NoError(t, err)
	assert.Equal(t, companyB, got)
}

func TestCheckCompanyChange(t *testing.T) {
	assert.NoError(t, authz.CheckCompanyChange(adminA, companyA, ""))
	assert.NoError(t, authz.CheckCompanyChange(adminA, companyA, companyA))
	assert.ErrorIs(t, authz.CheckCompanyChange(adminA, companyA, companyB), domain.ErrInvalidInput)
	assert.NoError(t, authz.CheckCompanyChange(master, companyA, companyB))
}

// ──────────────────────────────────────────────────────────────────────────────
// Invariante rol/empresa
// ──────────────────────────────────────────────────────────────────────────────

func TestValidateRoleCompany(t *testing.T) {
	cases := []struct {
		name      string
		role      string
		companyID string
		ok        bool
	}{
		{"master sin empresa", entity.RoleMaster, "", true},
		{"master con empresa", entity.RoleMaster, companyA, false},
		{"admin con empresa", entity.RoleAdmin, companyA, true},
		{"gerente sin empresa", entity.RoleGerente, "", false},
		{"rol desconocido", "vendedor", companyA, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := authz.ValidateRoleCompany(tc.role, tc.companyID)
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, domain.ErrInvalidInput)
			}
		})
	}
}

func TestPrincipalValidate(t *testing.T) {
	assert.NoError(t, master.Validate())
	assert.NoError(t, adminA.Validate())

	corrupt := authz.Principal{UserID: "m2", Role: entity.RoleMaster, CompanyID: companyA}
	assert.ErrorIs(t, corrupt.Validate(), domain.ErrUnauthorized)
	assert.ErrorIs(t, authz.Principal{Role: entity.RoleAdmin, CompanyID: companyA}.Validate(), domain.ErrUnauthorized)
}
