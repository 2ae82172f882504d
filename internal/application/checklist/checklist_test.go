package checklist_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockeasy/stockeasy-api/internal/application/apptest"
	"github.com/stockeasy/stockeasy-api/internal/application/checklist"
	"github.com/stockeasy/stockeasy-api/internal/application/dto"
	"github.com/stockeasy/stockeasy-api/internal/domain"
	"github.com/stockeasy/stockeasy-api/internal/domain/entity"
	"github.com/stockeasy/stockeasy-api/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

func newUseCases(s *apptest.Store) (*checklist.TemplateUseCase, *checklist.ExecutionUseCase) {
	return checklist.NewTemplateUseCase(s.TxRunner(), s.Templates(), s.Companies()),
		checklist.NewExecutionUseCase(s.TxRunner(), s.Templates(), s.Executions())
}

func ptr[T any](v T) *T { return &v }

// ──────────────────────────────────────────────────────────────────────────────
// Ejecuciones
// ──────────────────────────────────────────────────────────────────────────────

// Plantilla con 5 ítems: start crea 5 ítems pendientes; marcar los 5 y completar cierra la ejecución.
func TestExecution_StartToggleComplete(t *testing.T) {
	ctx := context.Background()
	s := apptest.NewStore()
	c1 := s.SeedCompany("C1")
	op := s.SeedUser(entity.RoleOperador, c1.ID, "auth-op")
	tpl := s.SeedTemplate(c1.ID, entity.ChecklistAbertura, 5)
	_, execs := newUseCases(s)

	started, err := execs.Start(ctx, op, dto.StartExecutionRequest{TemplateID: tpl.ID})
	require.NoError(t, err)
	assert.Equal(t, 5, s.ExecutionItemCount(started.ID))
	require.Len(t, started.Items, 5)
	for _, it := range started.Items {
		assert.False(t, it.IsCompleted)
	}
	assert.False(t, started.IsCompleted)
	assert.Nil(t, started.CompletedAt)
	assert.Equal(t, c1.ID, started.CompanyID)
	assert.Equal(t, op.UserID, started.UserID)

	for _, it := range started.Items {
		_, err := execs.ToggleItem(ctx, op, started.ID, it.ItemID, dto.ToggleItemRequest{IsCompleted: true})
		require.NoError(t, err)
	}
	done, err := execs.Complete(ctx, op, started.ID, dto.CompleteExecutionRequest{Notes: "tudo ok"})
	require.NoError(t, err)
	assert.True(t, done.IsCompleted)
	require.NotNil(t, done.CompletedAt)
	assert.Equal(t, dto.ProgressDTO{Completed: 5, Total: 5, Percent: 100}, *done.Progress)

	got, err := execs.Get(ctx, op, started.ID)
	require.NoError(t, err)
	assert.True(t, got.IsCompleted)
	assert.Equal(t, "tudo ok", got.Notes)
}

func TestExecution_ToggleIdempotente(t *testing.T) {
	ctx := context.Background()
	s := apptest.NewStore()
	c1 := s.SeedCompany("C1")
	op := s.SeedUser(entity.RoleOperador, c1.ID, "auth-op")
	tpl := s.SeedTemplate(c1.ID, entity.ChecklistLimpeza, 2)
	_, execs := newUseCases(s)

	started, err := execs.Start(ctx, op, dto.StartExecutionRequest{TemplateID: tpl.ID})
	require.NoError(t, err)
	itemID := started.Items[0].ItemID

	t0 := time.Date(2026, 3, 2, 18, 0, 0, 0, time.UTC)
	clock := t0
	checklist.SetClock(execs, func() time.Time { return clock })

	first, err := execs.ToggleItem(ctx, op, started.ID, itemID, dto.ToggleItemRequest{IsCompleted: true})
	require.NoError(t, err)
	require.NotNil(t, first.CompletedAt)
	assert.Equal(t, t0, *first.CompletedAt)

	clock = t0.Add(10 * time.Minute)
	second, err := execs.ToggleItem(ctx, op, started.ID, itemID, dto.ToggleItemRequest{IsCompleted: true})
	require.NoError(t, err)
	assert.True(t, second.IsCompleted)
	assert.Equal(t, clock, *second.CompletedAt, "marcar de nuevo deja la última marca")

	got, err := execs.Get(ctx, op, started.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Progress.Completed)

	off, err := execs.ToggleItem(ctx, op, started.ID, itemID, dto.ToggleItemRequest{IsCompleted: false})
	require.NoError(t, err)
	assert.False(t, off.IsCompleted)
	assert.Nil(t, off.CompletedAt)

	got, err = execs.Get(ctx, op, started.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Progress.Completed)
}

func TestExecution_NotasDelItem(t *testing.T) {
	ctx := context.Background()
	s := apptest.NewStore()
	c1 := s.SeedCompany("C1")
	op := s.SeedUser(entity.RoleOperador, c1.ID, "auth-op")
	tpl := s.SeedTemplate(c1.ID, entity.ChecklistFechamento, 1)
	_, execs := newUseCases(s)

	started, err := execs.Start(ctx, op, dto.StartExecutionRequest{TemplateID: tpl.ID})
	require.NoError(t, err)
	itemID := started.Items[0].ItemID

	out, err := execs.ToggleItem(ctx, op, started.ID, itemID, dto.ToggleItemRequest{IsCompleted: true, Notes: ptr("forno desligado")})
	require.NoError(t, err)
	assert.Equal(t, "forno desligado", out.Notes)

	out, err = execs.ToggleItem(ctx, op, started.ID, itemID, dto.ToggleItemRequest{IsCompleted: true})
	require.NoError(t, err)
	assert.Equal(t, "forno desligado", out.Notes, "sin notes la nota se conserva")

	out, err = execs.ToggleItem(ctx, op, started.ID, itemID, dto.ToggleItemRequest{IsCompleted: true, Notes: ptr("")})
	require.NoError(t, err)
	assert.Empty(t, out.Notes)
}

func TestExecution_CompleteConObligatoriosPendientes(t *testing.T) {
	ctx := context.Background()
	s := apptest.NewStore()
	c1 := s.SeedCompany("C1")
	op := s.SeedUser(entity.RoleOperador, c1.ID, "auth-op")
	tpl := s.SeedTemplate(c1.ID, entity.ChecklistFechamento, 3)
	_, execs := newUseCases(s)

	started, err := execs.Start(ctx, op, dto.StartExecutionRequest{TemplateID: tpl.ID})
	require.NoError(t, err)
	_, err = execs.ToggleItem(ctx, op, started.ID, started.Items[0].ItemID, dto.ToggleItemRequest{IsCompleted: true})
	require.NoError(t, err)

	_, err = execs.Complete(ctx, op, started.ID, dto.CompleteExecutionRequest{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	got, err := execs.Get(ctx, op, started.ID)
	require.NoError(t, err)
	assert.False(t, got.IsCompleted)
	assert.Equal(t, 33.3, got.Progress.Percent)
}

func TestExecution_CompletadaNoAdmiteCambios(t *testing.T) {
	ctx := context.Background()
	s := apptest.NewStore()
	c1 := s.SeedCompany("C1")
	op := s.SeedUser(entity.RoleOperador, c1.ID, "auth-op")
	tpl := s.SeedTemplate(c1.ID, entity.ChecklistAbertura, 1)
	_, execs := newUseCases(s)

	started, err := execs.Start(ctx, op, dto.StartExecutionRequest{TemplateID: tpl.ID})
	require.NoError(t, err)
	itemID := started.Items[0].ItemID
	_, err = execs.ToggleItem(ctx, op, started.ID, itemID, dto.ToggleItemRequest{IsCompleted: true})
	require.NoError(t, err)
	_, err = execs.Complete(ctx, op, started.ID, dto.CompleteExecutionRequest{})
	require.NoError(t, err)

	_, err = execs.Complete(ctx, op, started.ID, dto.CompleteExecutionRequest{})
	assert.ErrorIs(t, err, domain.ErrConflict)
	_, err = execs.ToggleItem(ctx, op, started.ID, itemID, dto.ToggleItemRequest{IsCompleted: false})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestExecution_UnaAbiertaPorPlantillaYDia(t *testing.T) {
	ctx := context.Background()
	s := apptest.NewStore()
	c1 := s.SeedCompany("C1")
	op := s.SeedUser(entity.RoleOperador, c1.ID, "auth-op")
	tpl := s.SeedTemplate(c1.ID, entity.ChecklistAbertura, 1)
	_, execs := newUseCases(s)

	first, err := execs.Start(ctx, op, dto.StartExecutionRequest{TemplateID: tpl.ID})
	require.NoError(t, err)
	_, err = execs.Start(ctx, op, dto.StartExecutionRequest{TemplateID: tpl.ID})
	assert.ErrorIs(t, err, domain.ErrConflict)

	// Cerrada la primera, se puede abrir otra el mismo día.
	_, err = execs.ToggleItem(ctx, op, first.ID, first.Items[0].ItemID, dto.ToggleItemRequest{IsCompleted: true})
	require.NoError(t, err)
	_, err = execs.Complete(ctx, op, first.ID, dto.CompleteExecutionRequest{})
	require.NoError(t, err)
	_, err = execs.Start(ctx, op, dto.StartExecutionRequest{TemplateID: tpl.ID})
	require.NoError(t, err)

	open, err := execs.List(ctx, op, repository.ExecutionFilter{TemplateID: tpl.ID, OnlyOpen: true})
	require.NoError(t, err)
	assert.Equal(t, 1, open.Page.Total)
}

func TestExecution_PlantillaAjenaOInactiva(t *testing.T) {
	ctx := context.Background()
	s := apptest.NewStore()
	c1 := s.SeedCompany("C1")
	c2 := s.SeedCompany("C2")
	op := s.SeedUser(entity.RoleOperador, c1.ID, "auth-op")
	ajena := s.SeedTemplate(c2.ID, entity.ChecklistAbertura, 2)
	templates, execs := newUseCases(s)

	_, err := execs.Start(ctx, op, dto.StartExecutionRequest{TemplateID: ajena.ID})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	propia := s.SeedTemplate(c1.ID, entity.ChecklistAbertura, 2)
	admin := s.SeedUser(entity.RoleAdmin, c1.ID, "auth-admin")
	_, err = templates.Update(ctx, admin, propia.ID, dto.UpdateTemplateRequest{IsActive: ptr(false)})
	require.NoError(t, err)
	_, err = execs.Start(ctx, op, dto.StartExecutionRequest{TemplateID: propia.ID})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestExecution_FallaAlCrearItemsHaceRollback(t *testing.T) {
	ctx := context.Background()
	s := apptest.NewStore()
	c1 := s.SeedCompany("C1")
	op := s.SeedUser(entity.RoleOperador, c1.ID, "auth-op")
	tpl := s.SeedTemplate(c1.ID, entity.ChecklistAbertura, 3)
	_, execs := newUseCases(s)

	boom := errors.New("timeout")
	s.FailOn("executions.CreateItems", boom)
	_, err := execs.Start(ctx, op, dto.StartExecutionRequest{TemplateID: tpl.ID})
	assert.ErrorIs(t, err, boom)

	list, err := execs.List(ctx, op, repository.ExecutionFilter{})
	require.NoError(t, err)
	assert.Zero(t, list.Page.Total, "la ejecución no queda sin ítems")

	s.FailOn("executions.CreateItems", nil)
	_, err = execs.Start(ctx, op, dto.StartExecutionRequest{TemplateID: tpl.ID})
	require.NoError(t, err)
}

func TestExecution_OtraEmpresaNoLaVe(t *testing.T) {
	ctx := context.Background()
	s := apptest.NewStore()
	c1 := s.SeedCompany("C1")
	c2 := s.SeedCompany("C2")
	op1 := s.SeedUser(entity.RoleOperador, c1.ID, "auth-op1")
	op2 := s.SeedUser(entity.RoleOperador, c2.ID, "auth-op2")
	tpl := s.SeedTemplate(c1.ID, entity.ChecklistAbertura, 1)
	_, execs := newUseCases(s)

	started, err := execs.Start(ctx, op1, dto.StartExecutionRequest{TemplateID: tpl.ID})
	require.NoError(t, err)

	_, err = execs.Get(ctx, op2, started.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = execs.ToggleItem(ctx, op2, started.ID, started.Items[0].ItemID, dto.ToggleItemRequest{IsCompleted: true})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	list, err := execs.List(ctx, op2, repository.ExecutionFilter{})
	require.NoError(t, err)
	assert.Empty(t, list.Items)
}

// ──────────────────────────────────────────────────────────────────────────────
// Plantillas
// ──────────────────────────────────────────────────────────────────────────────

func TestTemplate_CreateConItems(t *testing.T) {
	ctx := context.Background()
	s := apptest.NewStore()
	c1 := s.SeedCompany("C1")
	admin := s.SeedUser(entity.RoleAdmin, c1.ID, "auth-admin")
	templates, _ := newUseCases(s)

	out, err := templates.Create(ctx, admin, dto.CreateTemplateRequest{
		Name: "Abertura da loja", Type: entity.ChecklistAbertura,
		Items: []dto.CreateItemRequest{
			{Title: "Ligar forno", EstimatedMinutes: 30},
			{Title: "Conferir massa", IsRequired: ptr(false)},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, c1.ID, out.CompanyID)
	require.Len(t, out.Items, 2)
	assert.True(t, out.Items[0].IsRequired)
	assert.False(t, out.Items[1].IsRequired)
	assert.Equal(t, 1, out.Items[1].Order)

	added, err := templates.AddItem(ctx, admin, out.ID, dto.CreateItemRequest{Title: "Abrir caixa"})
	require.NoError(t, err)
	assert.Equal(t, 2, added.Order)

	got, err := templates.Get(ctx, admin, out.ID)
	require.NoError(t, err)
	assert.Len(t, got.Items, 3)

	_, err = templates.Create(ctx, admin, dto.CreateTemplateRequest{Name: "X", Type: "almoço"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestTemplate_NoSeBorraConEjecuciones(t *testing.T) {
	ctx := context.Background()
	s := apptest.NewStore()
	c1 := s.SeedCompany("C1")
	admin := s.SeedUser(entity.RoleAdmin, c1.ID, "auth-admin")
	tpl := s.SeedTemplate(c1.ID, entity.ChecklistLimpeza, 2)
	libre := s.SeedTemplate(c1.ID, entity.ChecklistLimpeza, 2)
	templates, execs := newUseCases(s)

	started, err := execs.Start(ctx, admin, dto.StartExecutionRequest{TemplateID: tpl.ID})
	require.NoError(t, err)

	_, err = templates.Delete(ctx, admin, tpl.ID)
	assert.ErrorIs(t, err, domain.ErrConflict)
	_, err = templates.DeleteItem(ctx, admin, tpl.ID, started.Items[0].ItemID)
	assert.ErrorIs(t, err, domain.ErrConflict)

	deleted, err := templates.Delete(ctx, admin, libre.ID)
	require.NoError(t, err)
	assert.True(t, deleted)
	_, err = templates.Get(ctx, admin, libre.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTemplate_ConEjecucionesNoCambiaDeEmpresa(t *testing.T) {
	ctx := context.Background()
	s := apptest.NewStore()
	c1 := s.SeedCompany("C1")
	c2 := s.SeedCompany("C2")
	admin := s.SeedUser(entity.RoleAdmin, c1.ID, "auth-admin")
	master := s.SeedUser(entity.RoleMaster, "", "auth-master")
	usada := s.SeedTemplate(c1.ID, entity.ChecklistAbertura, 2)
	nueva := s.SeedTemplate(c1.ID, entity.ChecklistAbertura, 2)
	templates, execs := newUseCases(s)

	_, err := execs.Start(ctx, admin, dto.StartExecutionRequest{TemplateID: usada.ID})
	require.NoError(t, err)

	_, err = templates.Update(ctx, master, usada.ID, dto.UpdateTemplateRequest{CompanyID: &c2.ID})
	assert.ErrorIs(t, err, domain.ErrConflict)
	got, err := templates.Get(ctx, admin, usada.ID)
	require.NoError(t, err)
	assert.Equal(t, c1.ID, got.CompanyID)

	out, err := templates.Update(ctx, master, nueva.ID, dto.UpdateTemplateRequest{CompanyID: &c2.ID})
	require.NoError(t, err)
	assert.Equal(t, c2.ID, out.CompanyID)
}

func TestTemplate_ItemsHeredanEmpresaDeLaPlantilla(t *testing.T) {
	ctx := context.Background()
	s := apptest.NewStore()
	c1 := s.SeedCompany("C1")
	c2 := s.SeedCompany("C2")
	admin2 := s.SeedUser(entity.RoleAdmin, c2.ID, "auth-admin2")
	tpl := s.SeedTemplate(c1.ID, entity.ChecklistAbertura, 2)
	templates, _ := newUseCases(s)

	_, err := templates.ListItems(ctx, admin2, tpl.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = templates.AddItem(ctx, admin2, tpl.ID, dto.CreateItemRequest{Title: "Intruso"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	master := s.SeedUser(entity.RoleMaster, "", "auth-master")
	items, err := templates.ListItems(ctx, master, tpl.ID)
	require.NoError(t, err)
	require.Len(t, items, 2)

	_, err = templates.UpdateItem(ctx, admin2, tpl.ID, items[0].ID, dto.UpdateItemRequest{Title: ptr("x")})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	deleted, err := templates.DeleteItem(ctx, admin2, tpl.ID, items[0].ID)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestProgress(t *testing.T) {
	assert.Equal(t, dto.ProgressDTO{}, checklist.Progress(nil))
	items := []*entity.ChecklistExecutionItem{{IsCompleted: true}, {}, {}}
	assert.Equal(t, dto.ProgressDTO{Completed: 1, Total: 3, Percent: 33.3}, checklist.Progress(items))
}
