package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/stockeasy/stockeasy-api/internal/domain"
	"github.com/stockeasy/stockeasy-api/internal/domain/authz"
	"github.com/stockeasy/stockeasy-api/internal/domain/entity"
	"github.com/stockeasy/stockeasy-api/internal/domain/repository"
)

var _ repository.SupplierRepository = (*SupplierRepo)(nil)

// SupplierRepo proveedores sobre PostgreSQL.
type SupplierRepo struct {
	q Querier
}

func NewSupplierRepository(q Querier) *SupplierRepo {
	return &SupplierRepo{q: q}
}

const supplierColumns = `id, company_id, name, phone, email, address, created_at, updated_at`

func scanSupplier(row pgx.Row) (*entity.Supplier, error) {
	var s entity.Supplier
	if err := row.Scan(&s.ID, &s.CompanyID, &s.Name, &s.Phone, &s.Email, &s.Address, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SupplierRepo) Create(ctx context.Context, s *entity.Supplier) error {
	_, err := r.q.Exec(ctx, `INSERT INTO suppliers (`+supplierColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		s.ID, s.CompanyID, s.Name, s.Phone, s.Email, s.Address, s.CreatedAt, s.UpdatedAt)
	if err != nil {
		return writeErr("insert supplier", err)
	}
	return nil
}

func (r *SupplierRepo) GetByID(ctx context.Context, scope authz.Scope, id string) (*entity.Supplier, error) {
	s, err := scanSupplier(r.q.QueryRow(ctx, `SELECT `+supplierColumns+` FROM suppliers
		WHERE id = $1 AND ($2::uuid IS NULL OR company_id = $2::uuid)`, id, scope.FilterArg()))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, readErr("get supplier", err)
	}
	return s, nil
}

func (r *SupplierRepo) List(ctx context.Context, scope authz.Scope, page repository.Page) ([]*entity.Supplier, int, error) {
	limit, offset := limitOffset(page)
	filter := scope.FilterArg()
	var total int
	if err := r.q.QueryRow(ctx, `SELECT count(*) FROM suppliers WHERE ($1::uuid IS NULL OR company_id = $1::uuid)`, filter).Scan(&total); err != nil {
		return nil, 0, readErr("count suppliers", err)
	}
	rows, err := r.q.Query(ctx, `SELECT `+supplierColumns+` FROM suppliers
		WHERE ($1::uuid IS NULL OR company_id = $1::uuid)
		ORDER BY name, id LIMIT $2 OFFSET $3`, filter, limit, offset)
	if err != nil {
		return nil, 0, readErr("list suppliers", err)
	}
	defer rows.Close()
	var list []*entity.Supplier
	for rows.Next() {
		s, err := scanSupplier(rows)
		if err != nil {
			return nil, 0, readErr("scan supplier", err)
		}
		list = append(list, s)
	}
	return list, total, rows.Err()
}

func (r *SupplierRepo) Update(ctx context.Context, scope authz.Scope, s *entity.Supplier) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE suppliers SET company_id = $2, name = $3, phone = $4, email = $5, address = $6, updated_at = $7
		WHERE id = $1 AND ($8::uuid IS NULL OR company_id = $8::uuid)`,
		s.ID, s.CompanyID, s.Name, s.Phone, s.Email, s.Address, s.UpdatedAt, scope.FilterArg())
	if err != nil {
		return writeErr("update supplier", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete los productos del proveedor quedan sin proveedor (ON DELETE SET NULL).
func (r *SupplierRepo) Delete(ctx context.Context, scope authz.Scope, id string) (bool, error) {
	cmd, err := r.q.Exec(ctx, `DELETE FROM suppliers WHERE id = $1 AND ($2::uuid IS NULL OR company_id = $2::uuid)`,
		id, scope.FilterArg())
	if err != nil {
		return false, deleteErr("delete supplier", err)
	}
	return cmd.RowsAffected() > 0, nil
}

func (r *SupplierRepo) HasProducts(ctx context.Context, id string) (bool, error) {
	return exists(ctx, r.q, "products of supplier",
		`SELECT EXISTS (SELECT 1 FROM products WHERE supplier_id = $1)`, id)
}
