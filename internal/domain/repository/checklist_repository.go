package repository

import (
	"context"
	"time"

	"github.com/stockeasy/stockeasy-api/internal/domain/authz"
	"github.com/stockeasy/stockeasy-api/internal/domain/entity"
)

// TemplateFilter filtros del listado de plantillas.
type TemplateFilter struct {
	Page       Page
	Type       string
	OnlyActive bool
}

// ChecklistTemplateRepository plantillas e ítems. Los ítems se filtran por la empresa de su plantilla.
type ChecklistTemplateRepository interface {
	Create(ctx context.Context, template *entity.ChecklistTemplate) error
	GetByID(ctx context.Context, scope authz.Scope, id string) (*entity.ChecklistTemplate, error)
	List(ctx context.Context, scope authz.Scope, filter TemplateFilter) ([]*entity.ChecklistTemplate, int, error)
	Update(ctx context.Context, scope authz.Scope, template *entity.ChecklistTemplate) error
	// Delete elimina la plantilla y sus ítems (ON DELETE CASCADE).
	Delete(ctx context.Context, scope authz.Scope, id string) (bool, error)
	HasExecutions(ctx context.Context, id string) (bool, error)

	CreateItem(ctx context.Context, item *entity.ChecklistItem) error
	GetItem(ctx context.Context, scope authz.Scope, templateID, itemID string) (*entity.ChecklistItem, error)
	ListItems(ctx context.Context, scope authz.Scope, templateID string) ([]*entity.ChecklistItem, error)
	UpdateItem(ctx context.Context, scope authz.Scope, item *entity.ChecklistItem) error
	DeleteItem(ctx context.Context, scope authz.Scope, templateID, itemID string) (bool, error)
}

// ExecutionFilter filtros del listado de ejecuciones.
type ExecutionFilter struct {
	Page       Page
	TemplateID string
	Date       *time.Time
	OnlyOpen   bool
}

// ChecklistExecutionRepository ejecuciones y sus ítems. Los ítems se filtran por la empresa de la ejecución.
type ChecklistExecutionRepository interface {
	// Create devuelve domain.ErrConflict si ya hay una ejecución abierta de la plantilla ese día.
	Create(ctx context.Context, execution *entity.ChecklistExecution) error
	CreateItems(ctx context.Context, items []*entity.ChecklistExecutionItem) error
	GetByID(ctx context.Context, scope authz.Scope, id string) (*entity.ChecklistExecution, error)
	// GetForUpdate bloquea la ejecución. Solo dentro de una transacción.
	GetForUpdate(ctx context.Context, scope authz.Scope, id string) (*entity.ChecklistExecution, error)
	FindOpen(ctx context.Context, templateID string, date time.Time) (*entity.ChecklistExecution, error)
	List(ctx context.Context, scope authz.Scope, filter ExecutionFilter) ([]*entity.ChecklistExecution, int, error)
	ListItems(ctx context.Context, scope authz.Scope, executionID string) ([]*entity.ChecklistExecutionItem, error)
	GetItem(ctx context.Context, scope authz.Scope, executionID, itemID string) (*entity.ChecklistExecutionItem, error)
	UpdateItem(ctx context.Context, item *entity.ChecklistExecutionItem) error
	MarkCompleted(ctx context.Context, execution *entity.ChecklistExecution) error
}
