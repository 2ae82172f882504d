package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockeasy/stockeasy-api/internal/application/apptest"
	"github.com/stockeasy/stockeasy-api/internal/application/dto"
	"github.com/stockeasy/stockeasy-api/internal/application/usecase"
	"github.com/stockeasy/stockeasy-api/internal/domain"
	"github.com/stockeasy/stockeasy-api/internal/domain/entity"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

type countingCache struct{ n int }

func (c *countingCache) Invalidate() { c.n++ }

type fixture struct {
	store      *apptest.Store
	cache      *countingCache
	companies  *usecase.CompanyUseCase
	users      *usecase.UserUseCase
	categories *usecase.CategoryUseCase
	suppliers  *usecase.SupplierUseCase
	products   *usecase.ProductUseCase
}

func newFixture() *fixture {
	s := apptest.NewStore()
	cache := &countingCache{}
	return &fixture{
		store:      s,
		cache:      cache,
		companies:  usecase.NewCompanyUseCase(s.Companies(), cache),
		users:      usecase.NewUserUseCase(s.Users(), s.Companies(), cache),
		categories: usecase.NewCategoryUseCase(s.Categories(), s.Companies()),
		suppliers:  usecase.NewSupplierUseCase(s.Suppliers(), s.Companies()),
		products:   usecase.NewProductUseCase(s.TxRunner(), s.Products(), s.Suppliers(), s.Categories(), s.Companies()),
	}
}

func ptr[T any](v T) *T { return &v }

// ──────────────────────────────────────────────────────────────────────────────
// Aislamiento entre empresas
// ──────────────────────────────────────────────────────────────────────────────

func TestProduct_AdminNoVeProductosDeOtraEmpresa(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	a := f.store.SeedCompany("Pizzaria A")
	b := f.store.SeedCompany("Pizzaria B")
	adminA := f.store.SeedUser(entity.RoleAdmin, a.ID, "auth-a")
	adminB := f.store.SeedUser(entity.RoleAdmin, b.ID, "auth-b")
	queijoB := f.store.SeedProduct(b.ID, "Queijo", 10, 2)

	_, err := f.products.GetByID(ctx, adminA, queijoB.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	list, err := f.products.List(ctx, adminA, dto.PageRequest{}, false, "")
	require.NoError(t, err)
	assert.Empty(t, list.Items)

	_, err = f.products.Update(ctx, adminA, queijoB.ID, dto.UpdateProductRequest{Name: ptr("Roubado")})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	deleted, err := f.products.Delete(ctx, adminA, queijoB.ID)
	require.NoError(t, err)
	assert.False(t, deleted)

	got, err := f.products.GetByID(ctx, adminB, queijoB.ID)
	require.NoError(t, err)
	assert.Equal(t, "Queijo", got.Name)
}

func TestProduct_CreateIgnoraCompanyIDDeNoMaster(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	a := f.store.SeedCompany("Pizzaria A")
	b := f.store.SeedCompany("Pizzaria B")
	gerenteA := f.store.SeedUser(entity.RoleGerente, a.ID, "auth-a")

	out, err := f.products.Create(ctx, gerenteA, dto.CreateProductRequest{
		CompanyID: b.ID, Name: "Farinha", Unit: "kg", MinStock: 5,
	})
	require.NoError(t, err)
	assert.Equal(t, a.ID, out.CompanyID, "el registro queda en la empresa del principal")
	assert.Equal(t, 0, out.CurrentStock)
	assert.True(t, out.LowStock)
}

func TestProduct_MasterDebeIndicarEmpresa(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	a := f.store.SeedCompany("Pizzaria A")
	master := f.store.SeedUser(entity.RoleMaster, "", "auth-master")

	_, err := f.products.Create(ctx, master, dto.CreateProductRequest{Name: "Farinha", Unit: "kg"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	out, err := f.products.Create(ctx, master, dto.CreateProductRequest{CompanyID: a.ID, Name: "Farinha", Unit: "kg"})
	require.NoError(t, err)
	assert.Equal(t, a.ID, out.CompanyID)
}

func TestProduct_MasterVeTodasLasEmpresas(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	a := f.store.SeedCompany("Pizzaria A")
	b := f.store.SeedCompany("Pizzaria B")
	f.store.SeedProduct(a.ID, "Queijo", 1, 2)
	f.store.SeedProduct(b.ID, "Tomate", 9, 2)
	master := f.store.SeedUser(entity.RoleMaster, "", "auth-master")

	list, err := f.products.List(ctx, master, dto.PageRequest{}, false, "")
	require.NoError(t, err)
	assert.Equal(t, 2, list.Page.Total)

	low, err := f.products.List(ctx, master, dto.PageRequest{}, true, "")
	require.NoError(t, err)
	require.Len(t, low.Items, 1)
	assert.Equal(t, "Queijo", low.Items[0].Name)
}

func TestProduct_NoMasterNoCambiaEmpresa(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	a := f.store.SeedCompany("Pizzaria A")
	b := f.store.SeedCompany("Pizzaria B")
	adminA := f.store.SeedUser(entity.RoleAdmin, a.ID, "auth-a")
	p := f.store.SeedProduct(a.ID, "Queijo", 1, 2)

	_, err := f.products.Update(ctx, adminA, p.ID, dto.UpdateProductRequest{CompanyID: ptr(b.ID)})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	master := f.store.SeedUser(entity.RoleMaster, "", "auth-master")
	out, err := f.products.Update(ctx, master, p.ID, dto.UpdateProductRequest{CompanyID: ptr(b.ID)})
	require.NoError(t, err)
	assert.Equal(t, b.ID, out.CompanyID)
}

// ──────────────────────────────────────────────────────────────────────────────
// Cambio de empresa (MASTER)
// ──────────────────────────────────────────────────────────────────────────────

// Un producto con historial no se mueve: sus movimientos quedarían en la empresa anterior.
func TestProduct_ConMovimientosNoCambiaDeEmpresa(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	a := f.store.SeedCompany("Pizzaria A")
	b := f.store.SeedCompany("Pizzaria B")
	master := f.store.SeedUser(entity.RoleMaster, "", "auth-master")
	queijo := f.store.SeedProduct(a.ID, "Queijo", 7, 2)
	require.NoError(t, f.store.Movements().Create(ctx, &entity.StockMovement{
		ID: "mov-1", CompanyID: a.ID, ProductID: queijo.ID, Type: entity.MovementEntrada,
		Quantity: 7, PreviousStock: 0, NewStock: 7, CreatedAt: time.Now(),
	}))

	_, err := f.products.Update(ctx, master, queijo.ID, dto.UpdateProductRequest{
		CompanyID: ptr(b.ID), Name: ptr("Segredo de B"),
	})
	assert.ErrorIs(t, err, domain.ErrConflict)

	got, err := f.products.GetAny(ctx, master, queijo.ID)
	require.NoError(t, err)
	assert.Equal(t, a.ID, got.CompanyID)
	assert.Equal(t, "Queijo", got.Name, "el rechazo no deja cambios a medias")
	assert.Equal(t, 1, f.store.Rollbacks)
}

func TestSupplierYCategoria_ConProductosNoCambianDeEmpresa(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	a := f.store.SeedCompany("Pizzaria A")
	b := f.store.SeedCompany("Pizzaria B")
	adminA := f.store.SeedUser(entity.RoleAdmin, a.ID, "auth-a")
	master := f.store.SeedUser(entity.RoleMaster, "", "auth-master")

	sup := f.store.SeedSupplier(a.ID, "Laticínios Sul", "")
	cat, err := f.categories.Create(ctx, adminA, dto.CreateCategoryRequest{Name: "Frios"})
	require.NoError(t, err)
	_, err = f.products.Create(ctx, adminA, dto.CreateProductRequest{
		Name: "Mussarela", Unit: "kg", SupplierID: sup.ID, CategoryID: cat.ID,
	})
	require.NoError(t, err)

	_, err = f.suppliers.Update(ctx, master, sup.ID, dto.UpdateSupplierRequest{CompanyID: ptr(b.ID)})
	assert.ErrorIs(t, err, domain.ErrConflict)
	_, err = f.categories.Update(ctx, master, cat.ID, dto.UpdateCategoryRequest{CompanyID: ptr(b.ID)})
	assert.ErrorIs(t, err, domain.ErrConflict)

	libre := f.store.SeedSupplier(a.ID, "Sem produtos", "")
	out, err := f.suppliers.Update(ctx, master, libre.ID, dto.UpdateSupplierRequest{CompanyID: ptr(b.ID)})
	require.NoError(t, err)
	assert.Equal(t, b.ID, out.CompanyID)
}

func TestProduct_QuitarMaxStock(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	a := f.store.SeedCompany("Pizzaria A")
	adminA := f.store.SeedUser(entity.RoleAdmin, a.ID, "auth-a")
	created, err := f.products.Create(ctx, adminA, dto.CreateProductRequest{
		Name: "Farinha", Unit: "kg", MinStock: 5, MaxStock: ptr(40),
	})
	require.NoError(t, err)

	out, err := f.products.Update(ctx, adminA, created.ID, dto.UpdateProductRequest{ClearMaxStock: true})
	require.NoError(t, err)
	assert.Nil(t, out.MaxStock)

	_, err = f.products.Update(ctx, adminA, created.ID, dto.UpdateProductRequest{ClearMaxStock: true, MaxStock: ptr(10)})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ──────────────────────────────────────────────────────────────────────────────
// Referencias y borrado lógico
// ──────────────────────────────────────────────────────────────────────────────

func TestProduct_ProveedorDeOtraEmpresaEsReferencial(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	a := f.store.SeedCompany("Pizzaria A")
	b := f.store.SeedCompany("Pizzaria B")
	adminA := f.store.SeedUser(entity.RoleAdmin, a.ID, "auth-a")
	supB := f.store.SeedSupplier(b.ID, "Laticínios B", "11999990000")

	_, err := f.products.Create(ctx, adminA, dto.CreateProductRequest{
		Name: "Queijo", Unit: "kg", SupplierID: supB.ID,
	})
	assert.ErrorIs(t, err, domain.ErrReferential)

	supA := f.store.SeedSupplier(a.ID, "Laticínios A", "11999990001")
	out, err := f.products.Create(ctx, adminA, dto.CreateProductRequest{
		Name: "Queijo", Unit: "kg", SupplierID: supA.ID, CostPrice: ptr(decimal.RequireFromString("32.50")),
	})
	require.NoError(t, err)
	assert.Equal(t, supA.ID, out.SupplierID)
}

func TestProduct_MaxMenorQueMinEsInvalido(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	a := f.store.SeedCompany("Pizzaria A")
	adminA := f.store.SeedUser(entity.RoleAdmin, a.ID, "auth-a")

	_, err := f.products.Create(ctx, adminA, dto.CreateProductRequest{
		Name: "Queijo", Unit: "kg", MinStock: 10, MaxStock: ptr(5),
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestProduct_BorradoLogico(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	a := f.store.SeedCompany("Pizzaria A")
	adminA := f.store.SeedUser(entity.RoleAdmin, a.ID, "auth-a")
	master := f.store.SeedUser(entity.RoleMaster, "", "auth-master")
	p := f.store.SeedProduct(a.ID, "Queijo", 4, 2)

	deleted, err := f.products.Delete(ctx, adminA, p.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	again, err := f.products.Delete(ctx, adminA, p.ID)
	require.NoError(t, err)
	assert.False(t, again, "borrar dos veces no es error pero devuelve false")

	_, err = f.products.GetByID(ctx, adminA, p.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	list, err := f.products.List(ctx, adminA, dto.PageRequest{}, false, "")
	require.NoError(t, err)
	assert.Empty(t, list.Items)

	// La fila sigue existiendo para la lectura privilegiada.
	got, err := f.products.GetAny(ctx, master, p.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)
	assert.Equal(t, 4, got.CurrentStock)

	_, err = f.products.GetAny(ctx, adminA, p.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

// U1 (empresa C1) crea "Fornecedor X"; U2 (empresa C2) no lo lista ni lo obtiene.
func TestSupplier_OtraEmpresaNoLoVe(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	c1 := f.store.SeedCompany("Pizzaria C1")
	c2 := f.store.SeedCompany("Pizzaria C2")
	u1 := f.store.SeedUser(entity.RoleGerente, c1.ID, "auth-u1")
	u2 := f.store.SeedUser(entity.RoleGerente, c2.ID, "auth-u2")

	sup, err := f.suppliers.Create(ctx, u1, dto.CreateSupplierRequest{Name: "Fornecedor X"})
	require.NoError(t, err)
	assert.Equal(t, c1.ID, sup.CompanyID)

	list, err := f.suppliers.List(ctx, u2, dto.PageRequest{})
	require.NoError(t, err)
	for _, s := range list.Items {
		assert.NotEqual(t, sup.ID, s.ID)
	}

	_, err = f.suppliers.GetByID(ctx, u2, sup.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	deleted, err := f.suppliers.Delete(ctx, u2, sup.ID)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestSupplier_BorrarDejaProductosSinProveedor(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	a := f.store.SeedCompany("Pizzaria A")
	adminA := f.store.SeedUser(entity.RoleAdmin, a.ID, "auth-a")
	sup := f.store.SeedSupplier(a.ID, "Hortifruti", "11988887777")

	prod, err := f.products.Create(ctx, adminA, dto.CreateProductRequest{Name: "Tomate", Unit: "kg", SupplierID: sup.ID})
	require.NoError(t, err)

	deleted, err := f.suppliers.Delete(ctx, adminA, sup.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	got, err := f.products.GetByID(ctx, adminA, prod.ID)
	require.NoError(t, err)
	assert.Empty(t, got.SupplierID)
}

func TestCategory_CrearYListarPorEmpresa(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	a := f.store.SeedCompany("Pizzaria A")
	b := f.store.SeedCompany("Pizzaria B")
	adminA := f.store.SeedUser(entity.RoleAdmin, a.ID, "auth-a")
	adminB := f.store.SeedUser(entity.RoleAdmin, b.ID, "auth-b")

	_, err := f.categories.Create(ctx, adminA, dto.CreateCategoryRequest{Name: "Laticínios"})
	require.NoError(t, err)
	_, err = f.categories.Create(ctx, adminB, dto.CreateCategoryRequest{Name: "Laticínios"})
	require.NoError(t, err, "el nombre es único por empresa, no global")

	_, err = f.categories.Create(ctx, adminA, dto.CreateCategoryRequest{Name: "Laticínios"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	list, err := f.categories.List(ctx, adminA, dto.PageRequest{})
	require.NoError(t, err)
	assert.Equal(t, 1, list.Page.Total)
}

// ──────────────────────────────────────────────────────────────────────────────
// Empresas y usuarios
// ──────────────────────────────────────────────────────────────────────────────

func TestCompany_SoloMasterCreaYLista(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	a := f.store.SeedCompany("Pizzaria A")
	adminA := f.store.SeedUser(entity.RoleAdmin, a.ID, "auth-a")
	master := f.store.SeedUser(entity.RoleMaster, "", "auth-master")

	_, err := f.companies.Create(ctx, adminA, dto.CreateCompanyRequest{Name: "Nova", Email: "nova@pizza.com"})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	out, err := f.companies.Create(ctx, master, dto.CreateCompanyRequest{Name: "Nova", Email: "nova@pizza.com"})
	require.NoError(t, err)
	assert.Equal(t, entity.PlanBasic, out.Plan)
	assert.Equal(t, entity.DefaultMaxUsers, out.MaxUsers)

	_, err = f.companies.List(ctx, adminA, dto.PageRequest{})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	mine, err := f.companies.Mine(ctx, adminA)
	require.NoError(t, err)
	assert.Equal(t, a.ID, mine.ID)

	_, err = f.companies.GetByID(ctx, adminA, out.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCompany_AdminNoCambiaPlan(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	a := f.store.SeedCompany("Pizzaria A")
	adminA := f.store.SeedUser(entity.RoleAdmin, a.ID, "auth-a")

	_, err := f.companies.Update(ctx, adminA, a.ID, dto.UpdateCompanyRequest{Plan: ptr(entity.PlanPro)})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	out, err := f.companies.Update(ctx, adminA, a.ID, dto.UpdateCompanyRequest{Phone: ptr("1133334444")})
	require.NoError(t, err)
	assert.Equal(t, "1133334444", out.Phone)
	assert.Zero(t, f.cache.n)
}

func TestCompany_DesactivarInvalidaCache(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	a := f.store.SeedCompany("Pizzaria A")
	master := f.store.SeedUser(entity.RoleMaster, "", "auth-master")

	ok, err := f.companies.Deactivate(ctx, master, a.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 1, f.cache.n)

	got, err := f.companies.GetByID(ctx, master, a.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)
}

func TestUser_CreateRespetaLimiteDeUsuarios(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	a := f.store.SeedCompany("Pizzaria A")
	adminA := f.store.SeedUser(entity.RoleAdmin, a.ID, "auth-a")

	// admin ya ocupa 1 de los 5 cupos.
	for i := 0; i < entity.DefaultMaxUsers-1; i++ {
		_, err := f.users.Create(ctx, adminA, dto.CreateUserRequest{
			Email: string(rune('a'+i)) + "@pizza.com", Name: "Operador", Role: entity.RoleOperador,
		})
		require.NoError(t, err)
	}
	_, err := f.users.Create(ctx, adminA, dto.CreateUserRequest{Email: "extra@pizza.com", Name: "Extra", Role: entity.RoleOperador})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestUser_AdminNoCreaMaster(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	a := f.store.SeedCompany("Pizzaria A")
	adminA := f.store.SeedUser(entity.RoleAdmin, a.ID, "auth-a")
	operador := f.store.SeedUser(entity.RoleOperador, a.ID, "auth-op")

	_, err := f.users.Create(ctx, adminA, dto.CreateUserRequest{Email: "m@x.com", Name: "M", Role: entity.RoleMaster})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = f.users.Create(ctx, operador, dto.CreateUserRequest{Email: "o@x.com", Name: "O", Role: entity.RoleOperador})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestUser_EmailDuplicado(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	a := f.store.SeedCompany("Pizzaria A")
	adminA := f.store.SeedUser(entity.RoleAdmin, a.ID, "auth-a")

	_, err := f.users.Create(ctx, adminA, dto.CreateUserRequest{Email: "Ana@Pizza.com", Name: "Ana", Role: entity.RoleGerente})
	require.NoError(t, err)
	_, err = f.users.Create(ctx, adminA, dto.CreateUserRequest{Email: "ana@pizza.com", Name: "Ana 2", Role: entity.RoleGerente})
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestUser_NoPuedeDesactivarseASiMismo(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	a := f.store.SeedCompany("Pizzaria A")
	adminA := f.store.SeedUser(entity.RoleAdmin, a.ID, "auth-a")

	_, err := f.users.Update(ctx, adminA, adminA.UserID, dto.UpdateUserRequest{IsActive: ptr(false)})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestUser_AssignCompanyValidaInvariante(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	a := f.store.SeedCompany("Pizzaria A")
	b := f.store.SeedCompany("Pizzaria B")
	master := f.store.SeedUser(entity.RoleMaster, "", "auth-master")
	op := f.store.SeedUser(entity.RoleOperador, a.ID, "auth-op")

	_, err := f.users.AssignCompany(ctx, master, op.UserID, dto.AssignCompanyRequest{CompanyID: ""})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "un operador sin empresa viola el invariante")

	out, err := f.users.AssignCompany(ctx, master, op.UserID, dto.AssignCompanyRequest{CompanyID: b.ID})
	require.NoError(t, err)
	assert.Equal(t, b.ID, out.CompanyID)
	assert.Equal(t, 1, f.cache.n)

	out, err = f.users.AssignCompany(ctx, master, op.UserID, dto.AssignCompanyRequest{Role: entity.RoleMaster})
	require.NoError(t, err)
	assert.Empty(t, out.CompanyID)
	assert.Equal(t, entity.RoleMaster, out.Role)
}
