package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/stockeasy/stockeasy-api/internal/domain"
	"github.com/stockeasy/stockeasy-api/internal/domain/authz"
	"github.com/stockeasy/stockeasy-api/internal/domain/entity"
	"github.com/stockeasy/stockeasy-api/internal/domain/repository"
)

var _ repository.CompanyRepository = (*CompanyRepo)(nil)

// CompanyRepo implementación del puerto CompanyRepository sobre PostgreSQL (usable con pool o tx).
type CompanyRepo struct {
	q Querier
}

// NewCompanyRepository construye el adaptador. Pasar pool o tx (Querier).
func NewCompanyRepository(q Querier) *CompanyRepo {
	return &CompanyRepo{q: q}
}

const companyColumns = `id, name, email, cnpj, phone, address, plan, max_users, is_active, created_at, updated_at`

func scanCompany(row pgx.Row) (*entity.Company, error) {
	var c entity.Company
	err := row.Scan(&c.ID, &c.Name, &c.Email, &c.CNPJ, &c.Phone, &c.Address,
		&c.Plan, &c.MaxUsers, &c.IsActive, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Create persiste una nueva empresa.
func (r *CompanyRepo) Create(ctx context.Context, c *entity.Company) error {
	query := `
		INSERT INTO companies (` + companyColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err := r.q.Exec(ctx, query,
		c.ID, c.Name, c.Email, c.CNPJ, c.Phone, c.Address,
		c.Plan, c.MaxUsers, c.IsActive, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return writeErr("insert company", err)
	}
	return nil
}

// GetByID la empresa es visible si es la del scope (o para MASTER).
func (r *CompanyRepo) GetByID(ctx context.Context, scope authz.Scope, id string) (*entity.Company, error) {
	query := `SELECT ` + companyColumns + ` FROM companies
		WHERE id = $1 AND ($2::uuid IS NULL OR id = $2::uuid)`
	c, err := scanCompany(r.q.QueryRow(ctx, query, id, scope.FilterArg()))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, readErr("get company", err)
	}
	return c, nil
}

// List todas las empresas, por nombre.
func (r *CompanyRepo) List(ctx context.Context, page repository.Page) ([]*entity.Company, int, error) {
	limit, offset := limitOffset(page)
	var total int
	if err := r.q.QueryRow(ctx, `SELECT count(*) FROM companies`).Scan(&total); err != nil {
		return nil, 0, readErr("count companies", err)
	}
	rows, err := r.q.Query(ctx, `SELECT `+companyColumns+` FROM companies ORDER BY name, id LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, readErr("list companies", err)
	}
	defer rows.Close()
	var list []*entity.Company
	for rows.Next() {
		c, err := scanCompany(rows)
		if err != nil {
			return nil, 0, readErr("scan company", err)
		}
		list = append(list, c)
	}
	return list, total, rows.Err()
}

// Update actualiza datos de la empresa. domain.ErrNotFound si no es visible.
func (r *CompanyRepo) Update(ctx context.Context, scope authz.Scope, c *entity.Company) error {
	query := `
		UPDATE companies SET name = $2, email = $3, cnpj = $4, phone = $5, address = $6,
			plan = $7, max_users = $8, is_active = $9, updated_at = $10
		WHERE id = $1 AND ($11::uuid IS NULL OR id = $11::uuid)`
	cmd, err := r.q.Exec(ctx, query,
		c.ID, c.Name, c.Email, c.CNPJ, c.Phone, c.Address,
		c.Plan, c.MaxUsers, c.IsActive, c.UpdatedAt, scope.FilterArg(),
	)
	if err != nil {
		return writeErr("update company", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// SetActive activa o desactiva la empresa. false si no existe.
func (r *CompanyRepo) SetActive(ctx context.Context, id string, active bool) (bool, error) {
	cmd, err := r.q.Exec(ctx, `UPDATE companies SET is_active = $2, updated_at = now() WHERE id = $1`, id, active)
	if err != nil {
		return false, readErr("set company active", err)
	}
	return cmd.RowsAffected() > 0, nil
}
