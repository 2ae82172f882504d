package apptest

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/stockeasy/stockeasy-api/internal/domain/authz"
	"github.com/stockeasy/stockeasy-api/internal/domain/entity"
	"github.com/stockeasy/stockeasy-api/internal/domain/repository"
)

var _ repository.DashboardRepository = (*DashboardRepo)(nil)

// DashboardRepo agregados calculados sobre el almacén en memoria.
type DashboardRepo struct{ s *Store }

func (r *DashboardRepo) ProductCounters(_ context.Context, scope authz.Scope) (repository.ProductCounters, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := repository.ProductCounters{StockValue: decimal.Zero}
	for _, p := range r.s.products {
		if !p.IsActive || !scope.Allows(p.CompanyID) {
			continue
		}
		out.Active++
		if p.IsLowStock() {
			out.LowStock++
		}
		if p.CostPrice != nil {
			out.StockValue = out.StockValue.Add(p.CostPrice.Mul(decimal.NewFromInt(int64(p.CurrentStock))))
		}
	}
	return out, nil
}

func (r *DashboardRepo) CountSuppliers(_ context.Context, scope authz.Scope) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	n := 0
	for _, s := range r.s.suppliers {
		if scope.Allows(s.CompanyID) {
			n++
		}
	}
	return n, nil
}

func (r *DashboardRepo) CountCategories(_ context.Context, scope authz.Scope) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	n := 0
	for _, c := range r.s.categories {
		if scope.Allows(c.CompanyID) {
			n++
		}
	}
	return n, nil
}

func (r *DashboardRepo) MovementCounters(_ context.Context, scope authz.Scope, from, to time.Time) (repository.MovementCounters, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out repository.MovementCounters
	for _, m := range r.s.movements {
		if !scope.Allows(m.CompanyID) || m.CreatedAt.Before(from) || !m.CreatedAt.Before(to) {
			continue
		}
		switch m.Type {
		case entity.MovementEntrada:
			out.Entradas++
		case entity.MovementSaida:
			out.Saidas++
		case entity.MovementAjuste:
			out.Ajustes++
		}
	}
	return out, nil
}

func (r *DashboardRepo) ChecklistProgress(_ context.Context, scope authz.Scope, day time.Time) ([]repository.ChecklistProgress, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	byType := map[string]*repository.ChecklistProgress{}
	for _, e := range r.s.executions {
		if !scope.Allows(e.CompanyID) || !sameDay(e.ExecutionDate, day) {
			continue
		}
		t, ok := r.s.templates[e.TemplateID]
		if !ok {
			continue
		}
		cp, ok := byType[t.Type]
		if !ok {
			cp = &repository.ChecklistProgress{Type: t.Type}
			byType[t.Type] = cp
		}
		cp.Executions++
		if e.IsCompleted {
			cp.Completed++
		}
		for _, it := range r.s.execItems {
			if it.ExecutionID != e.ID {
				continue
			}
			cp.ItemsTotal++
			if it.IsCompleted {
				cp.ItemsCompleted++
			}
		}
	}
	out := make([]repository.ChecklistProgress, 0, len(byType))
	for _, cp := range byType {
		out = append(out, *cp)
	}
	slices.SortFunc(out, func(a, b repository.ChecklistProgress) int { return strings.Compare(a.Type, b.Type) })
	return out, nil
}

func (r *DashboardRepo) PlatformCounters(_ context.Context) (repository.PlatformCounters, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := repository.PlatformCounters{Companies: len(r.s.companies), Users: len(r.s.users)}
	for _, c := range r.s.companies {
		if c.IsActive {
			out.ActiveCompanies++
		}
	}
	for _, p := range r.s.products {
		if p.IsActive {
			out.Products++
		}
	}
	return out, nil
}
