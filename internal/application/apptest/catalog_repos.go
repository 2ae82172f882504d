package apptest

import (
	"context"
	"slices"
	"strings"

	"github.com/stockeasy/stockeasy-api/internal/domain"
	"github.com/stockeasy/stockeasy-api/internal/domain/authz"
	"github.com/stockeasy/stockeasy-api/internal/domain/entity"
	"github.com/stockeasy/stockeasy-api/internal/domain/repository"
)

var (
	_ repository.CategoryRepository      = (*CategoryRepo)(nil)
	_ repository.SupplierRepository      = (*SupplierRepo)(nil)
	_ repository.ProductRepository       = (*ProductRepo)(nil)
	_ repository.StockMovementRepository = (*MovementRepo)(nil)
)

// CategoryRepo categorías en memoria.
type CategoryRepo struct{ s *Store }

func (r *CategoryRepo) Create(_ context.Context, c *entity.Category) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, other := range r.s.categories {
		if other.CompanyID == c.CompanyID && strings.EqualFold(other.Name, c.Name) {
			return domain.ErrDuplicate
		}
	}
	r.s.categories[c.ID] = *c
	return nil
}

func (r *CategoryRepo) GetByID(_ context.Context, scope authz.Scope, id string) (*entity.Category, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.categories[id]
	if !ok || !scope.Allows(c.CompanyID) {
		return nil, nil
	}
	return &c, nil
}

func (r *CategoryRepo) List(_ context.Context, scope authz.Scope, page repository.Page) ([]*entity.Category, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var all []*entity.Category
	for _, c := range r.s.categories {
		if scope.Allows(c.CompanyID) {
			all = append(all, &c)
		}
	}
	slices.SortFunc(all, func(a, b *entity.Category) int { return strings.Compare(a.Name, b.Name) })
	return paginate(all, page), len(all), nil
}

func (r *CategoryRepo) Update(_ context.Context, scope authz.Scope, c *entity.Category) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.categories[c.ID]
	if !ok || !scope.Allows(cur.CompanyID) {
		return domain.ErrNotFound
	}
	r.s.categories[c.ID] = *c
	return nil
}

func (r *CategoryRepo) Delete(_ context.Context, scope authz.Scope, id string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.categories[id]
	if !ok || !scope.Allows(cur.CompanyID) {
		return false, nil
	}
	delete(r.s.categories, id)
	for pid, p := range r.s.products {
		if p.CategoryID == id {
			p.CategoryID = ""
			r.s.products[pid] = p
		}
	}
	return true, nil
}

// SupplierRepo proveedores en memoria.
type SupplierRepo struct{ s *Store }

func (r *SupplierRepo) Create(_ context.Context, sup *entity.Supplier) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.suppliers[sup.ID] = *sup
	return nil
}

func (r *SupplierRepo) GetByID(_ context.Context, scope authz.Scope, id string) (*entity.Supplier, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	sup, ok := r.s.suppliers[id]
	if !ok || !scope.Allows(sup.CompanyID) {
		return nil, nil
	}
	return &sup, nil
}

func (r *SupplierRepo) List(_ context.Context, scope authz.Scope, page repository.Page) ([]*entity.Supplier, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var all []*entity.Supplier
	for _, sup := range r.s.suppliers {
		if scope.Allows(sup.CompanyID) {
			all = append(all, &sup)
		}
	}
	slices.SortFunc(all, func(a, b *entity.Supplier) int { return strings.Compare(a.Name, b.Name) })
	return paginate(all, page), len(all), nil
}

func (r *SupplierRepo) Update(_ context.Context, scope authz.Scope, sup *entity.Supplier) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.suppliers[sup.ID]
	if !ok || !scope.Allows(cur.CompanyID) {
		return domain.ErrNotFound
	}
	r.s.suppliers[sup.ID] = *sup
	return nil
}

func (r *SupplierRepo) Delete(_ context.Context, scope authz.Scope, id string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.suppliers[id]
	if !ok || !scope.Allows(cur.CompanyID) {
		return false, nil
	}
	delete(r.s.suppliers, id)
	for pid, p := range r.s.products {
		if p.SupplierID == id {
			p.SupplierID = ""
			r.s.products[pid] = p
		}
	}
	return true, nil
}

// ProductRepo productos en memoria.
type ProductRepo struct{ s *Store }

func (r *ProductRepo) Create(_ context.Context, p *entity.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.products[p.ID] = *p
	return nil
}

func (r *ProductRepo) GetByID(_ context.Context, scope authz.Scope, id string) (*entity.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	p, ok := r.s.products[id]
	if !ok || !scope.Allows(p.CompanyID) {
		return nil, nil
	}
	return &p, nil
}

func (r *ProductRepo) GetForUpdate(ctx context.Context, scope authz.Scope, id string) (*entity.Product, error) {
	return r.GetByID(ctx, scope, id)
}

func (r *ProductRepo) List(_ context.Context, scope authz.Scope, f repository.ProductFilter) ([]*entity.Product, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	q := strings.ToLower(strings.TrimSpace(f.Query))
	var all []*entity.Product
	for _, p := range r.s.products {
		if !p.IsActive || !scope.Allows(p.CompanyID) {
			continue
		}
		if f.LowStock && !p.IsLowStock() {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(p.Name), q) {
			continue
		}
		all = append(all, &p)
	}
	slices.SortFunc(all, func(a, b *entity.Product) int { return strings.Compare(a.Name, b.Name) })
	return paginate(all, f.Page), len(all), nil
}

func (r *ProductRepo) ListLowStock(_ context.Context, scope authz.Scope) ([]*entity.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []*entity.Product
	for _, p := range r.s.products {
		if p.IsActive && p.IsLowStock() && scope.Allows(p.CompanyID) {
			out = append(out, &p)
		}
	}
	slices.SortFunc(out, func(a, b *entity.Product) int { return strings.Compare(a.Name, b.Name) })
	return out, nil
}

func (r *ProductRepo) Update(_ context.Context, scope authz.Scope, p *entity.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.products[p.ID]
	if !ok || !scope.Allows(cur.CompanyID) {
		return domain.ErrNotFound
	}
	// El stock nunca se toca desde Update.
	p.CurrentStock = cur.CurrentStock
	r.s.products[p.ID] = *p
	return nil
}

func (r *ProductRepo) UpdateStock(_ context.Context, id string, newStock int) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("products.UpdateStock"); err != nil {
		return err
	}
	p, ok := r.s.products[id]
	if !ok {
		return domain.ErrNotFound
	}
	p.CurrentStock = newStock
	r.s.products[id] = p
	return nil
}

func (r *ProductRepo) SoftDelete(_ context.Context, scope authz.Scope, id string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[id]
	if !ok || !p.IsActive || !scope.Allows(p.CompanyID) {
		return false, nil
	}
	p.IsActive = false
	r.s.products[id] = p
	return true, nil
}

// MovementRepo ledger en memoria (append-only).
type MovementRepo struct{ s *Store }

func (r *MovementRepo) Create(_ context.Context, m *entity.StockMovement) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("movements.Create"); err != nil {
		return err
	}
	r.s.movements = append(r.s.movements, *m)
	return nil
}

func (r *MovementRepo) List(_ context.Context, scope authz.Scope, f repository.MovementFilter) ([]*entity.StockMovement, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var all []*entity.StockMovement
	for i := len(r.s.movements) - 1; i >= 0; i-- {
		m := r.s.movements[i]
		if !scope.Allows(m.CompanyID) {
			continue
		}
		if f.ProductID != "" && m.ProductID != f.ProductID {
			continue
		}
		if f.Type != "" && m.Type != f.Type {
			continue
		}
		if f.From != nil && m.CreatedAt.Before(*f.From) {
			continue
		}
		if f.To != nil && m.CreatedAt.After(*f.To) {
			continue
		}
		m.ProductName = ""
		if p, ok := r.s.products[m.ProductID]; ok && p.IsActive && p.CompanyID == m.CompanyID {
			m.ProductName = p.Name
		}
		all = append(all, &m)
	}
	slices.SortStableFunc(all, func(a, b *entity.StockMovement) int { return b.CreatedAt.Compare(a.CreatedAt) })
	return paginate(all, f.Page), len(all), nil
}

func (r *CategoryRepo) HasProducts(_ context.Context, id string) (bool, error) {
	return r.s.anyProduct(func(p entity.Product) bool { return p.CategoryID == id }), nil
}

func (r *SupplierRepo) HasProducts(_ context.Context, id string) (bool, error) {
	return r.s.anyProduct(func(p entity.Product) bool { return p.SupplierID == id }), nil
}

func (r *MovementRepo) ExistsForProduct(_ context.Context, productID string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, m := range r.s.movements {
		if m.ProductID == productID {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) anyProduct(match func(entity.Product) bool) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.products {
		if match(p) {
			return true
		}
	}
	return false
}
