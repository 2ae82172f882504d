package postgres

import (
	"context"

	"github.com/stockeasy/stockeasy-api/internal/domain"
	"github.com/stockeasy/stockeasy-api/internal/domain/authz"
	"github.com/stockeasy/stockeasy-api/internal/domain/entity"
	"github.com/stockeasy/stockeasy-api/internal/domain/repository"
)

var _ repository.CategoryRepository = (*CategoryRepo)(nil)

// CategoryRepo categorías sobre PostgreSQL. Nombre único por empresa (sin distinguir mayúsculas).
type CategoryRepo struct {
	q Querier
}

func NewCategoryRepository(q Querier) *CategoryRepo {
	return &CategoryRepo{q: q}
}

const categoryColumns = `id, company_id, name, description, created_at, updated_at`

func (r *CategoryRepo) Create(ctx context.Context, c *entity.Category) error {
	_, err := r.q.Exec(ctx, `INSERT INTO categories (`+categoryColumns+`) VALUES ($1, $2, $3, $4, $5, $6)`,
		c.ID, c.CompanyID, c.Name, c.Description, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		return writeErr("insert category", err)
	}
	return nil
}

func (r *CategoryRepo) GetByID(ctx context.Context, scope authz.Scope, id string) (*entity.Category, error) {
	var c entity.Category
	err := r.q.QueryRow(ctx, `SELECT `+categoryColumns+` FROM categories
		WHERE id = $1 AND ($2::uuid IS NULL OR company_id = $2::uuid)`, id, scope.FilterArg()).
		Scan(&c.ID, &c.CompanyID, &c.Name, &c.Description, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, readErr("get category", err)
	}
	return &c, nil
}

func (r *CategoryRepo) List(ctx context.Context, scope authz.Scope, page repository.Page) ([]*entity.Category, int, error) {
	limit, offset := limitOffset(page)
	filter := scope.FilterArg()
	var total int
	if err := r.q.QueryRow(ctx, `SELECT count(*) FROM categories WHERE ($1::uuid IS NULL OR company_id = $1::uuid)`, filter).Scan(&total); err != nil {
		return nil, 0, readErr("count categories", err)
	}
	rows, err := r.q.Query(ctx, `SELECT `+categoryColumns+` FROM categories
		WHERE ($1::uuid IS NULL OR company_id = $1::uuid)
		ORDER BY name, id LIMIT $2 OFFSET $3`, filter, limit, offset)
	if err != nil {
		return nil, 0, readErr("list categories", err)
	}
	defer rows.Close()
	var list []*entity.Category
	for rows.Next() {
		var c entity.Category
		if err := rows.Scan(&c.ID, &c.CompanyID, &c.Name, &c.Description, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, 0, readErr("scan category", err)
		}
		list = append(list, &c)
	}
	return list, total, rows.Err()
}

func (r *CategoryRepo) Update(ctx context.Context, scope authz.Scope, c *entity.Category) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE categories SET company_id = $2, name = $3, description = $4, updated_at = $5
		WHERE id = $1 AND ($6::uuid IS NULL OR company_id = $6::uuid)`,
		c.ID, c.CompanyID, c.Name, c.Description, c.UpdatedAt, scope.FilterArg())
	if err != nil {
		return writeErr("update category", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Delete los productos de la categoría quedan sin categoría (ON DELETE SET NULL).
func (r *CategoryRepo) Delete(ctx context.Context, scope authz.Scope, id string) (bool, error) {
	cmd, err := r.q.Exec(ctx, `DELETE FROM categories WHERE id = $1 AND ($2::uuid IS NULL OR company_id = $2::uuid)`,
		id, scope.FilterArg())
	if err != nil {
		return false, deleteErr("delete category", err)
	}
	return cmd.RowsAffected() > 0, nil
}

func (r *CategoryRepo) HasProducts(ctx context.Context, id string) (bool, error) {
	return exists(ctx, r.q, "products of category",
		`SELECT EXISTS (SELECT 1 FROM products WHERE category_id = $1)`, id)
}
