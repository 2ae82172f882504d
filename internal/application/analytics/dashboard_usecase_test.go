package analytics_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockeasy/stockeasy-api/internal/application/analytics"
	"github.com/stockeasy/stockeasy-api/internal/application/apptest"
	"github.com/stockeasy/stockeasy-api/internal/application/checklist"
	"github.com/stockeasy/stockeasy-api/internal/application/dto"
	appinventory "github.com/stockeasy/stockeasy-api/internal/application/inventory"
	"github.com/stockeasy/stockeasy-api/internal/domain"
	"github.com/stockeasy/stockeasy-api/internal/domain/entity"
)

type mapCache struct {
	data map[string]*dto.DashboardSummaryDTO
	sets int
}

func (m *mapCache) GetSummary(_ context.Context, key string) (*dto.DashboardSummaryDTO, error) {
	return m.data[key], nil
}

func (m *mapCache) SetSummary(_ context.Context, key string, s *dto.DashboardSummaryDTO, _ time.Duration) error {
	m.data[key] = s
	m.sets++
	return nil
}

func TestGetSummary_AgregaSoloLaEmpresaDelPrincipal(t *testing.T) {
	ctx := context.Background()
	s := apptest.NewStore()
	c1 := s.SeedCompany("C1")
	c2 := s.SeedCompany("C2")
	admin := s.SeedUser(entity.RoleAdmin, c1.ID, "auth-admin")
	queijo := s.SeedProduct(c1.ID, "Queijo", 1, 2)
	cost := decimal.RequireFromString("20")
	queijo.CostPrice = &cost
	s.PutProduct(queijo)
	s.SeedProduct(c1.ID, "Farinha", 10, 2)
	s.SeedProduct(c2.ID, "Tomate", 0, 2)
	s.SeedSupplier(c1.ID, "Laticínios", "")
	s.SeedSupplier(c2.ID, "Hortifruti", "")
	tpl := s.SeedTemplate(c1.ID, entity.ChecklistAbertura, 4)

	ledger := appinventory.NewRegisterMovementUseCase(s.TxRunner(), s.Movements(), nil)
	_, err := ledger.RecordMovement(ctx, admin, appinventory.MovementInput{ProductID: queijo.ID, Type: entity.MovementEntrada, Quantity: 2})
	require.NoError(t, err)

	execs := checklist.NewExecutionUseCase(s.TxRunner(), s.Templates(), s.Executions())
	started, err := execs.Start(ctx, admin, dto.StartExecutionRequest{TemplateID: tpl.ID})
	require.NoError(t, err)
	_, err = execs.ToggleItem(ctx, admin, started.ID, started.Items[0].ItemID, dto.ToggleItemRequest{IsCompleted: true})
	require.NoError(t, err)

	uc := analytics.NewDashboardUseCase(s.Dashboard(), nil, 0)
	sum, err := uc.GetSummary(ctx, admin)
	require.NoError(t, err)

	assert.Equal(t, 2, sum.TotalProducts)
	assert.Equal(t, 0, sum.LowStock, "queijo ya tiene 3 > 2")
	assert.Equal(t, 1, sum.Suppliers)
	assert.True(t, sum.StockValue.Equal(decimal.NewFromInt(60)))
	assert.Equal(t, 1, sum.TodayEntradas)
	require.Len(t, sum.Checklists, 3)
	assert.Equal(t, entity.ChecklistAbertura, sum.Checklists[0].Type)
	assert.Equal(t, 1, sum.Checklists[0].Executions)
	assert.Equal(t, 25.0, sum.Checklists[0].Percent)
	assert.Zero(t, sum.Checklists[1].Executions)
	assert.NotEmpty(t, sum.DateLabel)
}

func TestGetSummary_UsaCacheDentroDelTTL(t *testing.T) {
	ctx := context.Background()
	s := apptest.NewStore()
	c1 := s.SeedCompany("C1")
	admin := s.SeedUser(entity.RoleAdmin, c1.ID, "auth-admin")
	s.SeedProduct(c1.ID, "Queijo", 1, 2)

	cache := &mapCache{data: map[string]*dto.DashboardSummaryDTO{}}
	uc := analytics.NewDashboardUseCase(s.Dashboard(), cache, time.Minute)

	first, err := uc.GetSummary(ctx, admin)
	require.NoError(t, err)
	assert.Equal(t, 1, first.TotalProducts)

	s.SeedProduct(c1.ID, "Farinha", 9, 2)
	second, err := uc.GetSummary(ctx, admin)
	require.NoError(t, err)
	assert.Equal(t, 1, second.TotalProducts, "servido desde caché")
	assert.Equal(t, 1, cache.sets)

	// Otro scope usa otra clave.
	master := s.SeedUser(entity.RoleMaster, "", "auth-master")
	all, err := uc.GetSummary(ctx, master)
	require.NoError(t, err)
	assert.Equal(t, 2, all.TotalProducts)
	assert.Equal(t, 2, cache.sets)
}

func TestOverview_SoloMaster(t *testing.T) {
	ctx := context.Background()
	s := apptest.NewStore()
	c1 := s.SeedCompany("C1")
	c2 := s.SeedCompany("C2")
	admin := s.SeedUser(entity.RoleAdmin, c1.ID, "auth-admin")
	master := s.SeedUser(entity.RoleMaster, "", "auth-master")
	s.SeedProduct(c2.ID, "Tomate", 0, 2)

	uc := analytics.NewDashboardUseCase(s.Dashboard(), nil, 0)
	_, err := uc.Overview(ctx, admin)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	out, err := uc.Overview(ctx, master)
	require.NoError(t, err)
	assert.Equal(t, 2, out.Companies)
	assert.Equal(t, 2, out.ActiveCompanies)
	assert.Equal(t, 2, out.Users)
	assert.Equal(t, 1, out.Products)
}
