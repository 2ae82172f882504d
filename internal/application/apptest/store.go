// Package apptest repositorios en memoria para tests de casos de uso y HTTP.
// Aplican el mismo predicado authz.Scope que las consultas SQL.
package apptest

import (
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/stockeasy/stockeasy-api/internal/application/ports"
	"github.com/stockeasy/stockeasy-api/internal/domain/authz"
	"github.com/stockeasy/stockeasy-api/internal/domain/entity"
	"github.com/stockeasy/stockeasy-api/internal/domain/repository"
)

// Store estado compartido por todos los repositorios en memoria.
type Store struct {
	txMu sync.Mutex
	mu   sync.RWMutex

	companies  map[string]entity.Company
	users      map[string]entity.User
	categories map[string]entity.Category
	suppliers  map[string]entity.Supplier
	products   map[string]entity.Product
	movements  []entity.StockMovement
	templates  map[string]entity.ChecklistTemplate
	items      map[string]entity.ChecklistItem
	executions map[string]entity.ChecklistExecution
	execItems  map[string]entity.ChecklistExecutionItem

	failures map[string]error

	Commits   int
	Rollbacks int
	Scopes    []authz.Scope // scope de cada transacción iniciada
}

// NewStore crea un almacén vacío.
func NewStore() *Store {
	return &Store{
		companies:  map[string]entity.Company{},
		users:      map[string]entity.User{},
		categories: map[string]entity.Category{},
		suppliers:  map[string]entity.Supplier{},
		products:   map[string]entity.Product{},
		templates:  map[string]entity.ChecklistTemplate{},
		items:      map[string]entity.ChecklistItem{},
		executions: map[string]entity.ChecklistExecution{},
		execItems:  map[string]entity.ChecklistExecutionItem{},
		failures:   map[string]error{},
	}
}

// FailOn hace que la operación op (ej. "products.UpdateStock") devuelva err hasta que se limpie.
func (s *Store) FailOn(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.failures, op)
		return
	}
	s.failures[op] = err
}

func (s *Store) fail(op string) error {
	return s.failures[op]
}

// Repos repositorios sobre este almacén.
func (s *Store) Repos() ports.Repos {
	return ports.Repos{
		Companies:  s.Companies(),
		Users:      s.Users(),
		Products:   s.Products(),
		Movements:  s.Movements(),
		Templates:  s.Templates(),
		Executions: s.Executions(),
	}
}

func (s *Store) Companies() *CompanyRepo    { return &CompanyRepo{s: s} }
func (s *Store) Users() *UserRepo           { return &UserRepo{s: s} }
func (s *Store) Categories() *CategoryRepo  { return &CategoryRepo{s: s} }
func (s *Store) Suppliers() *SupplierRepo   { return &SupplierRepo{s: s} }
func (s *Store) Products() *ProductRepo     { return &ProductRepo{s: s} }
func (s *Store) Movements() *MovementRepo   { return &MovementRepo{s: s} }
func (s *Store) Templates() *TemplateRepo   { return &TemplateRepo{s: s} }
func (s *Store) Executions() *ExecutionRepo { return &ExecutionRepo{s: s} }
func (s *Store) Dashboard() *DashboardRepo  { return &DashboardRepo{s: s} }

// TxRunner transacción en memoria: serializa las transacciones y restaura
// una copia del estado si fn devuelve error.
func (s *Store) TxRunner() ports.TxRunner { return &txRunner{s: s} }

type txRunner struct{ s *Store }

func (t *txRunner) Run(ctx context.Context, scope authz.Scope, fn func(repos ports.Repos) error) error {
	t.s.txMu.Lock()
	defer t.s.txMu.Unlock()

	t.s.mu.Lock()
	t.s.Scopes = append(t.s.Scopes, scope)
	snap := t.s.snapshot()
	t.s.mu.Unlock()

	if err := fn(t.s.Repos()); err != nil {
		t.s.mu.Lock()
		t.s.restore(snap)
		t.s.Rollbacks++
		t.s.mu.Unlock()
		return err
	}
	t.s.mu.Lock()
	t.s.Commits++
	t.s.mu.Unlock()
	return nil
}

type snapshot struct {
	companies  map[string]entity.Company
	users      map[string]entity.User
	categories map[string]entity.Category
	suppliers  map[string]entity.Supplier
	products   map[string]entity.Product
	movements  []entity.StockMovement
	templates  map[string]entity.ChecklistTemplate
	items      map[string]entity.ChecklistItem
	executions map[string]entity.ChecklistExecution
	execItems  map[string]entity.ChecklistExecutionItem
}

func (s *Store) snapshot() snapshot {
	return snapshot{
		companies:  maps.Clone(s.companies),
		users:      maps.Clone(s.users),
		categories: maps.Clone(s.categories),
		suppliers:  maps.Clone(s.suppliers),
		products:   maps.Clone(s.products),
		movements:  slices.Clone(s.movements),
		templates:  maps.Clone(s.templates),
		items:      maps.Clone(s.items),
		executions: maps.Clone(s.executions),
		execItems:  maps.Clone(s.execItems),
	}
}

func (s *Store) restore(snap snapshot) {
	s.companies = snap.companies
	s.users = snap.users
	s.categories = snap.categories
	s.suppliers = snap.suppliers
	s.products = snap.products
	s.movements = snap.movements
	s.templates = snap.templates
	s.items = snap.items
	s.executions = snap.executions
	s.execItems = snap.execItems
}

// ProductRow lectura directa sin scope ni filtro de activos (aserciones de tests).
func (s *Store) ProductRow(id string) (entity.Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.products[id]
	return p, ok
}

// MovementCount número de movimientos de un producto.
func (s *Store) MovementCount(productID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, m := range s.movements {
		if m.ProductID == productID {
			n++
		}
	}
	return n
}

// ExecutionItemCount número de ítems de una ejecución.
func (s *Store) ExecutionItemCount(executionID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, it := range s.execItems {
		if it.ExecutionID == executionID {
			n++
		}
	}
	return n
}

func paginate[T any](list []T, page repository.Page) []T {
	page = page.Normalize()
	if page.Offset >= len(list) {
		return []T{}
	}
	end := page.Offset + page.Limit
	if end > len(list) {
		end = len(list)
	}
	return list[page.Offset:end]
}
