package postgres

import (
	"context"
	"time"

	"github.com/stockeasy/stockeasy-api/internal/domain/authz"
	"github.com/stockeasy/stockeasy-api/internal/domain/entity"
	"github.com/stockeasy/stockeasy-api/internal/domain/repository"
)

var _ repository.DashboardRepository = (*DashboardRepo)(nil)

// DashboardRepo consultas agregadas de solo lectura (se usan con el pool).
type DashboardRepo struct {
	q Querier
}

// NewDashboardRepository construye el repositorio de agregados del dashboard.
func NewDashboardRepository(q Querier) *DashboardRepo {
	return &DashboardRepo{q: q}
}

func (r *DashboardRepo) ProductCounters(ctx context.Context, scope authz.Scope) (repository.ProductCounters, error) {
	var out repository.ProductCounters
	err := r.q.QueryRow(ctx, `
		SELECT count(*),
			count(*) FILTER (WHERE current_stock <= min_stock),
			COALESCE(SUM(current_stock * cost_price), 0)
		FROM products
		WHERE is_active AND ($1::uuid IS NULL OR company_id = $1::uuid)`, scope.FilterArg()).
		Scan(&out.Active, &out.LowStock, &out.StockValue)
	if err != nil {
		return out, readErr("dashboard products", err)
	}
	return out, nil
}

func (r *DashboardRepo) count(ctx context.Context, op, table string, scope authz.Scope) (int, error) {
	var n int
	err := r.q.QueryRow(ctx, `SELECT count(*) FROM `+table+` WHERE ($1::uuid IS NULL OR company_id = $1::uuid)`,
		scope.FilterArg()).Scan(&n)
	if err != nil {
		return 0, readErr(op, err)
	}
	return n, nil
}

func (r *DashboardRepo) CountSuppliers(ctx context.Context, scope authz.Scope) (int, error) {
	return r.count(ctx, "dashboard suppliers", "suppliers", scope)
}

func (r *DashboardRepo) CountCategories(ctx context.Context, scope authz.Scope) (int, error) {
	return r.count(ctx, "dashboard categories", "categories", scope)
}

// MovementCounters rango semiabierto [from, to).
func (r *DashboardRepo) MovementCounters(ctx context.Context, scope authz.Scope, from, to time.Time) (repository.MovementCounters, error) {
	var out repository.MovementCounters
	err := r.q.QueryRow(ctx, `
		SELECT count(*) FILTER (WHERE type = $2),
			count(*) FILTER (WHERE type = $3),
			count(*) FILTER (WHERE type = $4)
		FROM stock_movements
		WHERE ($1::uuid IS NULL OR company_id = $1::uuid) AND created_at >= $5 AND created_at < $6`,
		scope.FilterArg(), entity.MovementEntrada, entity.MovementSaida, entity.MovementAjuste, from, to).
		Scan(&out.Entradas, &out.Saidas, &out.Ajustes)
	if err != nil {
		return out, readErr("dashboard movements", err)
	}
	return out, nil
}

func (r *DashboardRepo) ChecklistProgress(ctx context.Context, scope authz.Scope, day time.Time) ([]repository.ChecklistProgress, error) {
	rows, err := r.q.Query(ctx, `
		SELECT t.type,
			count(DISTINCT e.id),
			count(DISTINCT e.id) FILTER (WHERE e.is_completed),
			count(x.id),
			count(x.id) FILTER (WHERE x.is_completed)
		FROM checklist_executions e
		JOIN checklist_templates t ON t.id = e.template_id
		LEFT JOIN checklist_execution_items x ON x.execution_id = e.id
		WHERE e.execution_date = $2 AND ($1::uuid IS NULL OR e.company_id = $1::uuid)
		GROUP BY t.type
		ORDER BY t.type`, scope.FilterArg(), day)
	if err != nil {
		return nil, readErr("dashboard checklists", err)
	}
	defer rows.Close()
	var out []repository.ChecklistProgress
	for rows.Next() {
		var cp repository.ChecklistProgress
		if err := rows.Scan(&cp.Type, &cp.Executions, &cp.Completed, &cp.ItemsTotal, &cp.ItemsCompleted); err != nil {
			return nil, readErr("scan checklist progress", err)
		}
		out = append(out, cp)
	}
	return out, rows.Err()
}

func (r *DashboardRepo) PlatformCounters(ctx context.Context) (repository.PlatformCounters, error) {
	var out repository.PlatformCounters
	err := r.q.QueryRow(ctx, `
		SELECT (SELECT count(*) FROM companies),
			(SELECT count(*) FROM companies WHERE is_active),
			(SELECT count(*) FROM users),
			(SELECT count(*) FROM products WHERE is_active)`).
		Scan(&out.Companies, &out.ActiveCompanies, &out.Users, &out.Products)
	if err != nil {
		return out, readErr("platform counters", err)
	}
	return out, nil
}
