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
	_ repository.CompanyRepository = (*CompanyRepo)(nil)
	_ repository.UserRepository    = (*UserRepo)(nil)
)

// CompanyRepo empresas en memoria.
type CompanyRepo struct{ s *Store }

func (r *CompanyRepo) Create(_ context.Context, c *entity.Company) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("companies.Create"); err != nil {
		return err
	}
	if _, ok := r.s.companies[c.ID]; ok {
		return domain.ErrDuplicate
	}
	r.s.companies[c.ID] = *c
	return nil
}

func (r *CompanyRepo) GetByID(_ context.Context, scope authz.Scope, id string) (*entity.Company, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.companies[id]
	if !ok || !scope.Allows(c.ID) {
		return nil, nil
	}
	return &c, nil
}

func (r *CompanyRepo) List(_ context.Context, page repository.Page) ([]*entity.Company, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var all []*entity.Company
	for _, c := range r.s.companies {
		all = append(all, &c)
	}
	slices.SortFunc(all, func(a, b *entity.Company) int { return strings.Compare(a.Name, b.Name) })
	return paginate(all, page), len(all), nil
}

func (r *CompanyRepo) Update(_ context.Context, scope authz.Scope, c *entity.Company) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.companies[c.ID]
	if !ok || !scope.Allows(cur.ID) {
		return domain.ErrNotFound
	}
	r.s.companies[c.ID] = *c
	return nil
}

func (r *CompanyRepo) SetActive(_ context.Context, id string, active bool) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.companies[id]
	if !ok {
		return false, nil
	}
	c.IsActive = active
	r.s.companies[id] = c
	return true, nil
}

// UserRepo usuarios en memoria. Email único global.
type UserRepo struct{ s *Store }

func (r *UserRepo) Create(_ context.Context, u *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("users.Create"); err != nil {
		return err
	}
	for _, other := range r.s.users {
		if strings.EqualFold(other.Email, u.Email) || (u.AuthID != "" && other.AuthID == u.AuthID) {
			return domain.ErrDuplicate
		}
	}
	r.s.users[u.ID] = *u
	return nil
}

func (r *UserRepo) GetByID(_ context.Context, scope authz.Scope, id string) (*entity.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	u, ok := r.s.users[id]
	if !ok || !scope.Allows(u.CompanyID) {
		return nil, nil
	}
	return &u, nil
}

func (r *UserRepo) find(match func(entity.User) bool) *entity.User {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.users {
		if match(u) {
			return &u
		}
	}
	return nil
}

func (r *UserRepo) GetByAuthID(_ context.Context, authID string) (*entity.User, error) {
	if authID == "" {
		return nil, nil
	}
	return r.find(func(u entity.User) bool { return u.AuthID == authID }), nil
}

func (r *UserRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	return r.find(func(u entity.User) bool { return strings.EqualFold(u.Email, email) }), nil
}

func (r *UserRepo) GetUnlinkedByEmail(_ context.Context, email string) (*entity.User, error) {
	return r.find(func(u entity.User) bool { return u.AuthID == "" && strings.EqualFold(u.Email, email) }), nil
}

func (r *UserRepo) LinkAuthID(_ context.Context, userID, authID string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[userID]
	if !ok || u.AuthID != "" {
		return false, nil
	}
	u.AuthID = authID
	r.s.users[userID] = u
	return true, nil
}

func (r *UserRepo) List(_ context.Context, scope authz.Scope, page repository.Page) ([]*entity.User, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var all []*entity.User
	for _, u := range r.s.users {
		if scope.Allows(u.CompanyID) {
			all = append(all, &u)
		}
	}
	slices.SortFunc(all, func(a, b *entity.User) int { return strings.Compare(a.Name, b.Name) })
	return paginate(all, page), len(all), nil
}

func (r *UserRepo) Update(_ context.Context, scope authz.Scope, u *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cur, ok := r.s.users[u.ID]
	if !ok || !scope.Allows(cur.CompanyID) {
		return domain.ErrNotFound
	}
	r.s.users[u.ID] = *u
	return nil
}

func (r *UserRepo) CountActiveByCompany(_ context.Context, companyID string) (int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	n := 0
	for _, u := range r.s.users {
		if u.CompanyID == companyID && u.IsActive {
			n++
		}
	}
	return n, nil
}
