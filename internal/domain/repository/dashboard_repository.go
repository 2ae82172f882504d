package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stockeasy/stockeasy-api/internal/domain/authz"
)

// ProductCounters totales de productos activos.
type ProductCounters struct {
	Active     int
	LowStock   int
	StockValue decimal.Decimal // Σ current_stock × cost_price
}

// MovementCounters movimientos por tipo en un rango.
type MovementCounters struct {
	Entradas int
	Saidas   int
	Ajustes  int
}

// ChecklistProgress avance de ejecuciones de un tipo en un día.
type ChecklistProgress struct {
	Type           string
	Executions     int
	Completed      int
	ItemsTotal     int
	ItemsCompleted int
}

// PlatformCounters totales globales (solo MASTER).
type PlatformCounters struct {
	Companies       int
	ActiveCompanies int
	Users           int
	Products        int
}

// DashboardRepository consultas read-only del dashboard. Cada método es independiente
// para que el caso de uso pueda ejecutarlos en paralelo.
type DashboardRepository interface {
	ProductCounters(ctx context.Context, scope authz.Scope) (ProductCounters, error)
	CountSuppliers(ctx context.Context, scope authz.Scope) (int, error)
	CountCategories(ctx context.Context, scope authz.Scope) (int, error)
	MovementCounters(ctx context.Context, scope authz.Scope, from, to time.Time) (MovementCounters, error)
	ChecklistProgress(ctx context.Context, scope authz.Scope, day time.Time) ([]ChecklistProgress, error)
	PlatformCounters(ctx context.Context) (PlatformCounters, error)
}
