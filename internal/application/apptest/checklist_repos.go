package apptest

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/stockeasy/stockeasy-api/internal/domain"
	"github.com/stockeasy/stockeasy-api/internal/domain/authz"
	"github.com/stockeasy/stockeasy-api/internal/domain/entity"
	"github.com/stockeasy/stockeasy-api/internal/domain/repository"
)

var (
	_ repository.ChecklistTemplateRepository  = (*TemplateRepo)(nil)
	_ repository.ChecklistExecutionRepository = (*ExecutionRepo)(nil)
)

func sameDay(a, b time.Time) bool {
	return a.Format(time.DateOnly) == b.Format(time.DateOnly)
}

// TemplateRepo plantillas e ítems en memoria.
type TemplateRepo struct{ s *Store }

func (r *TemplateRepo) Create(_ context.Context, t *entity.ChecklistTemplate) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.templates[t.ID] = *t
	return nil
}

func (r *TemplateRepo) GetByID(_ context.Context, scope authz.Scope, id string) (*entity.ChecklistTemplate, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	t, ok := r.s.templates[id]
	if !ok || !scope.Allows(t.CompanyID) {
		return nil, nil
	}
	return &t, nil
}

func (r *TemplateRepo) List(_ context.Context, scope authz.Scope, f repository.TemplateFilter) ([]*entity.ChecklistTemplate, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var all []*entity.ChecklistTemplate
	for _, t := range r.s.templates {
		if !scope.Allows(t.CompanyID) || (f.Type != "" && t.Type != f.Type) || (f.OnlyActive && !t.IsActive) {
			continue
		}
		all = append(all, &t)
	}
	slices.SortFunc(all, func(a, b *entity.ChecklistTemplate) int {
		if c := strings.Compare(a.Type, b.Type); c != 0 {
			return c
		}
		return strings.Compare(a.Name, b.Name)
	})
	return paginate(all, f.Page), len(all), nil
}

func (r *TemplateRepo) Update(_ context.Context, scope authz.Scope, t *entity.ChecklistTemplate) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.templates[t.ID]
	if !ok || !scope.Allows(cur.CompanyID) {
		return domain.ErrNotFound
	}
	r.s.templates[t.ID] = *t
	return nil
}

func (r *TemplateRepo) Delete(_ context.Context, scope authz.Scope, id string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.templates[id]
	if !ok || !scope.Allows(cur.CompanyID) {
		return false, nil
	}
	for _, e := range r.s.executions {
		if e.TemplateID == id {
			return false, domain.ErrConflict
		}
	}
	delete(r.s.templates, id)
	for iid, it := range r.s.items {
		if it.TemplateID == id {
			delete(r.s.items, iid)
		}
	}
	return true, nil
}

func (r *TemplateRepo) HasExecutions(_ context.Context, id string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, e := range r.s.executions {
		if e.TemplateID == id {
			return true, nil
		}
	}
	return false, nil
}

func (r *TemplateRepo) CreateItem(_ context.Context, it *entity.ChecklistItem) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.templates[it.TemplateID]; !ok {
		return domain.ErrReferential
	}
	r.s.items[it.ID] = *it
	return nil
}

// withCompany completa CompanyID desde la plantilla; false si la plantilla no es visible.
func (r *TemplateRepo) withCompany(scope authz.Scope, it entity.ChecklistItem) (entity.ChecklistItem, bool) {
	t, ok := r.s.templates[it.TemplateID]
	if !ok || !scope.Allows(t.CompanyID) {
		return it, false
	}
	it.CompanyID = t.CompanyID
	return it, true
}

func (r *TemplateRepo) GetItem(_ context.Context, scope authz.Scope, templateID, itemID string) (*entity.ChecklistItem, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	it, ok := r.s.items[itemID]
	if !ok || it.TemplateID != templateID {
		return nil, nil
	}
	it, ok = r.withCompany(scope, it)
	if !ok {
		return nil, nil
	}
	return &it, nil
}

func (r *TemplateRepo) ListItems(_ context.Context, scope authz.Scope, templateID string) ([]*entity.ChecklistItem, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*entity.ChecklistItem
	for _, it := range r.s.items {
		if it.TemplateID != templateID {
			continue
		}
		if it, ok := r.withCompany(scope, it); ok {
			out = append(out, &it)
		}
	}
	slices.SortFunc(out, func(a, b *entity.ChecklistItem) int {
		if a.Order != b.Order {
			return a.Order - b.Order
		}
		return strings.Compare(a.Title, b.Title)
	})
	return out, nil
}

func (r *TemplateRepo) UpdateItem(_ context.Context, scope authz.Scope, it *entity.ChecklistItem) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.items[it.ID]
	if !ok {
		return domain.ErrNotFound
	}
	if _, ok := r.withCompany(scope, cur); !ok {
		return domain.ErrNotFound
	}
	r.s.items[it.ID] = *it
	return nil
}

func (r *TemplateRepo) DeleteItem(_ context.Context, scope authz.Scope, templateID, itemID string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.items[itemID]
	if !ok || cur.TemplateID != templateID {
		return false, nil
	}
	if _, ok := r.withCompany(scope, cur); !ok {
		return false, nil
	}
	for _, ei := range r.s.execItems {
		if ei.ItemID == itemID {
			return false, domain.ErrConflict
		}
	}
	delete(r.s.items, itemID)
	return true, nil
}

// ExecutionRepo ejecuciones e ítems de ejecución en memoria.
type ExecutionRepo struct{ s *Store }

func (r *ExecutionRepo) Create(_ context.Context, e *entity.ChecklistExecution) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, other := range r.s.executions {
		if other.TemplateID == e.TemplateID && !other.IsCompleted && sameDay(other.ExecutionDate, e.ExecutionDate) {
			return domain.ErrConflict
		}
	}
	r.s.executions[e.ID] = *e
	return nil
}

func (r *ExecutionRepo) CreateItems(_ context.Context, items []*entity.ChecklistExecutionItem) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("executions.CreateItems"); err != nil {
		return err
	}
	for _, it := range items {
		r.s.execItems[it.ID] = *it
	}
	return nil
}

func (r *ExecutionRepo) decorate(e entity.ChecklistExecution) entity.ChecklistExecution {
	if t, ok := r.s.templates[e.TemplateID]; ok {
		e.TemplateName = t.Name
		e.TemplateType = t.Type
	}
	return e
}

func (r *ExecutionRepo) GetByID(_ context.Context, scope authz.Scope, id string) (*entity.ChecklistExecution, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	e, ok := r.s.executions[id]
	if !ok || !scope.Allows(e.CompanyID) {
		return nil, nil
	}
	e = r.decorate(e)
	return &e, nil
}

func (r *ExecutionRepo) GetForUpdate(ctx context.Context, scope authz.Scope, id string) (*entity.ChecklistExecution, error) {
	return r.GetByID(ctx, scope, id)
}

func (r *ExecutionRepo) FindOpen(_ context.Context, templateID string, date time.Time) (*entity.ChecklistExecution, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, e := range r.s.executions {
		if e.TemplateID == templateID && !e.IsCompleted && sameDay(e.ExecutionDate, date) {
			return &e, nil
		}
	}
	return nil, nil
}

func (r *ExecutionRepo) List(_ context.Context, scope authz.Scope, f repository.ExecutionFilter) ([]*entity.ChecklistExecution, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var all []*entity.ChecklistExecution
	for _, e := range r.s.executions {
		if !scope.Allows(e.CompanyID) {
			continue
		}
		if f.TemplateID != "" && e.TemplateID != f.TemplateID {
			continue
		}
		if f.Date != nil && !sameDay(e.ExecutionDate, *f.Date) {
			continue
		}
		if f.OnlyOpen && e.IsCompleted {
			continue
		}
		e = r.decorate(e)
		all = append(all, &e)
	}
	slices.SortFunc(all, func(a, b *entity.ChecklistExecution) int { return b.StartedAt.Compare(a.StartedAt) })
	return paginate(all, f.Page), len(all), nil
}

// withParent completa los campos derivados de la ejecución y del ítem de plantilla.
func (r *ExecutionRepo) withParent(scope authz.Scope, it entity.ChecklistExecutionItem) (entity.ChecklistExecutionItem, bool) {
	e, ok := r.s.executions[it.ExecutionID]
	if !ok || !scope.Allows(e.CompanyID) {
		return it, false
	}
	it.CompanyID = e.CompanyID
	if tpl, ok := r.s.items[it.ItemID]; ok {
		it.Title = tpl.Title
		it.IsRequired = tpl.IsRequired
		it.Order = tpl.Order
	}
	return it, true
}

func (r *ExecutionRepo) ListItems(_ context.Context, scope authz.Scope, executionID string) ([]*entity.ChecklistExecutionItem, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*entity.ChecklistExecutionItem
	for _, it := range r.s.execItems {
		if it.ExecutionID != executionID {
			continue
		}
		if it, ok := r.withParent(scope, it); ok {
			out = append(out, &it)
		}
	}
	slices.SortFunc(out, func(a, b *entity.ChecklistExecutionItem) int {
		if a.Order != b.Order {
			return a.Order - b.Order
		}
		return strings.Compare(a.Title, b.Title)
	})
	return out, nil
}

func (r *ExecutionRepo) GetItem(_ context.Context, scope authz.Scope, executionID, itemID string) (*entity.ChecklistExecutionItem, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, it := range r.s.execItems {
		if it.ExecutionID == executionID && it.ItemID == itemID {
			if it, ok := r.withParent(scope, it); ok {
				return &it, nil
			}
			return nil, nil
		}
	}
	return nil, nil
}

func (r *ExecutionRepo) UpdateItem(_ context.Context, it *entity.ChecklistExecutionItem) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.execItems[it.ID]
	if !ok {
		return domain.ErrNotFound
	}
	cur.IsCompleted = it.IsCompleted
	cur.CompletedAt = it.CompletedAt
	cur.Notes = it.Notes
	r.s.execItems[it.ID] = cur
	return nil
}

func (r *ExecutionRepo) MarkCompleted(_ context.Context, e *entity.ChecklistExecution) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.executions[e.ID]
	if !ok {
		return domain.ErrNotFound
	}
	cur.IsCompleted = e.IsCompleted
	cur.CompletedAt = e.CompletedAt
	cur.Notes = e.Notes
	r.s.executions[e.ID] = cur
	return nil
}
