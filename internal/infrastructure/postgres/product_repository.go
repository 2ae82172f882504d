package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/stockeasy/stockeasy-api/internal/domain"
	"github.com/stockeasy/stockeasy-api/internal/domain/authz"
	"github.com/stockeasy/stockeasy-api/internal/domain/entity"
	"github.com/stockeasy/stockeasy-api/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (usable con pool o tx).
type ProductRepo struct {
	q Querier
}

// NewProductRepository construye el adaptador de persistencia para productos. Pasar pool o tx (Querier).
func NewProductRepository(q Querier) *ProductRepo {
	return &ProductRepo{q: q}
}

const productColumns = `id, company_id, name, unit, current_stock, min_stock, max_stock, cost_price,
	supplier_id, category_id, is_active, created_at, updated_at`

func scanProduct(row pgx.Row) (*entity.Product, error) {
	var (
		p          entity.Product
		supplierID *string
		categoryID *string
	)
	err := row.Scan(&p.ID, &p.CompanyID, &p.Name, &p.Unit, &p.CurrentStock, &p.MinStock, &p.MaxStock,
		&p.CostPrice, &supplierID, &categoryID, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	p.SupplierID = deref(supplierID)
	p.CategoryID = deref(categoryID)
	return &p, nil
}

// Create persiste un nuevo producto. Proveedor/categoría inexistentes -> domain.ErrReferential.
func (r *ProductRepo) Create(ctx context.Context, p *entity.Product) error {
	query := `
		INSERT INTO products (` + productColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.q.Exec(ctx, query,
		p.ID, p.CompanyID, p.Name, p.Unit, p.CurrentStock, p.MinStock, p.MaxStock, p.CostPrice,
		nullable(p.SupplierID), nullable(p.CategoryID), p.IsActive, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return writeErr("insert product", err)
	}
	return nil
}

func (r *ProductRepo) getOne(ctx context.Context, op, suffix string, scope authz.Scope, id string) (*entity.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products
		WHERE id = $1 AND ($2::uuid IS NULL OR company_id = $2::uuid)` + suffix
	p, err := scanProduct(r.q.QueryRow(ctx, query, id, scope.FilterArg()))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, readErr(op, err)
	}
	return p, nil
}

// GetByID obtiene un producto por ID (activo o no).
func (r *ProductRepo) GetByID(ctx context.Context, scope authz.Scope, id string) (*entity.Product, error) {
	return r.getOne(ctx, "get product", "", scope, id)
}

// GetForUpdate bloquea la fila hasta el fin de la transacción del movimiento.
func (r *ProductRepo) GetForUpdate(ctx context.Context, scope authz.Scope, id string) (*entity.Product, error) {
	return r.getOne(ctx, "lock product", " FOR UPDATE", scope, id)
}

// List productos activos por nombre; filtros opcionales de stock bajo y búsqueda.
func (r *ProductRepo) List(ctx context.Context, scope authz.Scope, f repository.ProductFilter) ([]*entity.Product, int, error) {
	limit, offset := limitOffset(f.Page)
	where := `is_active AND ($1::uuid IS NULL OR company_id = $1::uuid)`
	args := []any{scope.FilterArg()}
	if f.LowStock {
		where += ` AND current_stock <= min_stock`
	}
	if q := strings.TrimSpace(f.Query); q != "" {
		args = append(args, "%"+q+"%")
		where += fmt.Sprintf(` AND name ILIKE $%d`, len(args))
	}

	var total int
	if err := r.q.QueryRow(ctx, `SELECT count(*) FROM products WHERE `+where, args...).Scan(&total); err != nil {
		return nil, 0, readErr("count products", err)
	}
	args = append(args, limit, offset)
	query := fmt.Sprintf(`SELECT %s FROM products WHERE %s ORDER BY name, id LIMIT $%d OFFSET $%d`,
		productColumns, where, len(args)-1, len(args))
	list, err := r.queryList(ctx, "list products", query, args...)
	if err != nil {
		return nil, 0, err
	}
	return list, total, nil
}

// ListLowStock productos activos con current_stock <= min_stock.
func (r *ProductRepo) ListLowStock(ctx context.Context, scope authz.Scope) ([]*entity.Product, error) {
	return r.queryList(ctx, "list low stock", `SELECT `+productColumns+` FROM products
		WHERE is_active AND current_stock <= min_stock AND ($1::uuid IS NULL OR company_id = $1::uuid)
		ORDER BY name, id`, scope.FilterArg())
}

func (r *ProductRepo) queryList(ctx context.Context, op, query string, args ...any) ([]*entity.Product, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, readErr(op, err)
	}
	defer rows.Close()
	var list []*entity.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, readErr("scan product", err)
		}
		list = append(list, p)
	}
	return list, rows.Err()
}

// Update actualiza un producto existente. No permite modificar el stock (se maneja vía movimientos).
func (r *ProductRepo) Update(ctx context.Context, scope authz.Scope, p *entity.Product) error {
	query := `
		UPDATE products SET company_id = $2, name = $3, unit = $4, min_stock = $5, max_stock = $6,
			cost_price = $7, supplier_id = $8, category_id = $9, is_active = $10, updated_at = $11
		WHERE id = $1 AND ($12::uuid IS NULL OR company_id = $12::uuid)`
	cmd, err := r.q.Exec(ctx, query,
		p.ID, p.CompanyID, p.Name, p.Unit, p.MinStock, p.MaxStock, p.CostPrice,
		nullable(p.SupplierID), nullable(p.CategoryID), p.IsActive, p.UpdatedAt, scope.FilterArg(),
	)
	if err != nil {
		return writeErr("update product", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// UpdateStock solo desde la transacción del ledger, después de GetForUpdate.
func (r *ProductRepo) UpdateStock(ctx context.Context, id string, newStock int) error {
	cmd, err := r.q.Exec(ctx, `UPDATE products SET current_stock = $2, updated_at = now() WHERE id = $1`, id, newStock)
	if err != nil {
		return writeErr("update product stock", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// SoftDelete marca is_active=false; el historial de movimientos se conserva.
func (r *ProductRepo) SoftDelete(ctx context.Context, scope authz.Scope, id string) (bool, error) {
	cmd, err := r.q.Exec(ctx, `
		UPDATE products SET is_active = FALSE, updated_at = now()
		WHERE id = $1 AND is_active AND ($2::uuid IS NULL OR company_id = $2::uuid)`,
		id, scope.FilterArg())
	if err != nil {
		return false, readErr("soft delete product", err)
	}
	return cmd.RowsAffected() > 0, nil
}
