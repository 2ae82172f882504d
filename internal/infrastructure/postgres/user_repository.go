package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/stockeasy/stockeasy-api/internal/domain"
	"github.com/stockeasy/stockeasy-api/internal/domain/authz"
	"github.com/stockeasy/stockeasy-api/internal/domain/entity"
	"github.com/stockeasy/stockeasy-api/internal/domain/repository"
)

var _ repository.UserRepository = (*UserRepo)(nil)

// UserRepo implementación del puerto UserRepository sobre PostgreSQL (usable con pool o tx).
type UserRepo struct {
	q Querier
}

// NewUserRepository construye el adaptador de persistencia para usuarios.
func NewUserRepository(q Querier) *UserRepo {
	return &UserRepo{q: q}
}

const userColumns = `id, auth_id, company_id, name, email, password_hash, role, is_active, created_at, updated_at`

func scanUser(row pgx.Row) (*entity.User, error) {
	var (
		u         entity.User
		authID    *string
		companyID *string
	)
	err := row.Scan(&u.ID, &authID, &companyID, &u.Name, &u.Email, &u.PasswordHash,
		&u.Role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	u.AuthID = deref(authID)
	u.CompanyID = deref(companyID)
	return &u, nil
}

func (r *UserRepo) getOne(ctx context.Context, op, where string, args ...any) (*entity.User, error) {
	u, err := scanUser(r.q.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE `+where, args...))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, readErr(op, err)
	}
	return u, nil
}

// Create persiste un nuevo usuario. Email duplicado -> domain.ErrDuplicate.
func (r *UserRepo) Create(ctx context.Context, u *entity.User) error {
	query := `
		INSERT INTO users (` + userColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query,
		u.ID, nullable(u.AuthID), nullable(u.CompanyID), u.Name, u.Email, u.PasswordHash,
		u.Role, u.IsActive, u.CreatedAt, u.UpdatedAt,
	)
	if err != nil {
		return writeErr("insert user", err)
	}
	return nil
}

// GetByID un MASTER (company_id NULL) solo es visible para otro MASTER.
func (r *UserRepo) GetByID(ctx context.Context, scope authz.Scope, id string) (*entity.User, error) {
	return r.getOne(ctx, "get user", `id = $1 AND ($2::uuid IS NULL OR company_id = $2::uuid)`, id, scope.FilterArg())
}

func (r *UserRepo) GetByAuthID(ctx context.Context, authID string) (*entity.User, error) {
	if authID == "" {
		return nil, nil
	}
	return r.getOne(ctx, "get user by auth id", `auth_id = $1`, authID)
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.getOne(ctx, "get user by email", `lower(email) = lower($1)`, email)
}

func (r *UserRepo) GetUnlinkedByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.getOne(ctx, "get unlinked user", `auth_id IS NULL AND lower(email) = lower($1)`, email)
}

// LinkAuthID enlaza la identidad externa solo si el perfil aún no tiene una.
func (r *UserRepo) LinkAuthID(ctx context.Context, userID, authID string) (bool, error) {
	cmd, err := r.q.Exec(ctx,
		`UPDATE users SET auth_id = $2, updated_at = now() WHERE id = $1 AND auth_id IS NULL`,
		userID, authID,
	)
	if err != nil {
		return false, writeErr("link auth id", err)
	}
	return cmd.RowsAffected() > 0, nil
}

// List usuarios visibles, por nombre.
func (r *UserRepo) List(ctx context.Context, scope authz.Scope, page repository.Page) ([]*entity.User, int, error) {
	limit, offset := limitOffset(page)
	filter := scope.FilterArg()
	var total int
	err := r.q.QueryRow(ctx,
		`SELECT count(*) FROM users WHERE ($1::uuid IS NULL OR company_id = $1::uuid)`, filter,
	).Scan(&total)
	if err != nil {
		return nil, 0, readErr("count users", err)
	}
	rows, err := r.q.Query(ctx, `SELECT `+userColumns+` FROM users
		WHERE ($1::uuid IS NULL OR company_id = $1::uuid)
		ORDER BY name, id LIMIT $2 OFFSET $3`, filter, limit, offset)
	if err != nil {
		return nil, 0, readErr("list users", err)
	}
	defer rows.Close()
	var list []*entity.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, readErr("scan user", err)
		}
		list = append(list, u)
	}
	return list, total, rows.Err()
}

// Update no toca auth_id ni password_hash.
func (r *UserRepo) Update(ctx context.Context, scope authz.Scope, u *entity.User) error {
	query := `
		UPDATE users SET company_id = $2, name = $3, email = $4, role = $5, is_active = $6, updated_at = $7
		WHERE id = $1 AND ($8::uuid IS NULL OR company_id = $8::uuid)`
	cmd, err := r.q.Exec(ctx, query,
		u.ID, nullable(u.CompanyID), u.Name, u.Email, u.Role, u.IsActive, u.UpdatedAt, scope.FilterArg(),
	)
	if err != nil {
		return writeErr("update user", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *UserRepo) CountActiveByCompany(ctx context.Context, companyID string) (int, error) {
	var n int
	err := r.q.QueryRow(ctx,
		`SELECT count(*) FROM users WHERE company_id = $1 AND is_active`, companyID,
	).Scan(&n)
	if err != nil {
		return 0, readErr("count active users", err)
	}
	return n, nil
}
