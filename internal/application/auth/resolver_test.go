package auth_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockeasy/stockeasy-api/internal/application/apptest"
	"github.com/stockeasy/stockeasy-api/internal/application/auth"
	"github.com/stockeasy/stockeasy-api/internal/application/auth/authtest"
	"github.com/stockeasy/stockeasy-api/internal/domain"
	"github.com/stockeasy/stockeasy-api/internal/domain/authz"
	"github.com/stockeasy/stockeasy-api/internal/domain/entity"
	"github.com/stockeasy/stockeasy-api/internal/domain/repository"
	pkgjwt "github.com/stockeasy/stockeasy-api/pkg/jwt"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

// fakeVerifier mapea tokens a identidades ya verificadas.
type fakeVerifier map[string]auth.Identity

func (v fakeVerifier) Verify(_ context.Context, token string) (auth.Identity, error) {
	if token == "jwks-caido" {
		return auth.Identity{}, fmt.Errorf("%w: jwks", domain.ErrUpstream)
	}
	id, ok := v[token]
	if !ok {
		return auth.Identity{}, errors.New("firma inválida")
	}
	return id, nil
}

// linkSpy cuenta enlaces y puede simular que otra petición enlazó primero.
type linkSpy struct {
	repository.UserRepository
	links  int
	winner string // si no es vacío, enlaza este subject antes del intento
}

func (r *linkSpy) LinkAuthID(ctx context.Context, userID, authID string) (bool, error) {
	r.links++
	if r.winner != "" {
		if _, err := r.UserRepository.LinkAuthID(ctx, userID, r.winner); err != nil {
			return false, err
		}
	}
	return r.UserRepository.LinkAuthID(ctx, userID, authID)
}

// countingResolver cuenta las llamadas al resolvedor interno.
type countingResolver struct {
	inner auth.PrincipalResolver
	calls int
}

func (r *countingResolver) Resolve(ctx context.Context, token string) (authz.Principal, error) {
	r.calls++
	return r.inner.Resolve(ctx, token)
}

// ──────────────────────────────────────────────────────────────────────────────
// TokenResolver
// ──────────────────────────────────────────────────────────────────────────────

func TestResolve_EnlazaPorEmailVerificadoUnaSolaVez(t *testing.T) {
	ctx := context.Background()
	s := apptest.NewStore()
	c := s.SeedCompany("Pizzaria A")
	invited := s.SeedInvitedUser(entity.RoleGerente, c.ID, "bia@pizzaria.com")
	users := &linkSpy{UserRepository: s.Users()}
	v := fakeVerifier{"tok": {Subject: "idp|bia", Email: "Bia@Pizzaria.com", EmailVerified: true}}
	r := auth.NewTokenResolver(v, users, s.Companies())

	p, err := r.Resolve(ctx, "tok")
	require.NoError(t, err)
	assert.Equal(t, invited.ID, p.UserID)
	assert.Equal(t, entity.RoleGerente, p.Role)
	assert.Equal(t, c.ID, p.CompanyID)

	again, err := r.Resolve(ctx, "tok")
	require.NoError(t, err)
	assert.Equal(t, invited.ID, again.UserID)
	assert.Equal(t, 1, users.links, "la segunda resolución encuentra el perfil por subject")

	linked, err := s.Users().GetByAuthID(ctx, "idp|bia")
	require.NoError(t, err)
	require.NotNil(t, linked)
	assert.Equal(t, invited.ID, linked.ID)
}

func TestResolve_EmailNoVerificadoNoEnlaza(t *testing.T) {
	ctx := context.Background()
	s := apptest.NewStore()
	c := s.SeedCompany("Pizzaria A")
	s.SeedInvitedUser(entity.RoleAdmin, c.ID, "dono@pizzaria.com")
	users := &linkSpy{UserRepository: s.Users()}
	v := fakeVerifier{"tok": {Subject: "idp|intruso", Email: "dono@pizzaria.com"}}

	_, err := auth.NewTokenResolver(v, users, s.Companies()).Resolve(ctx, "tok")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	assert.Zero(t, users.links)

	still, err := s.Users().GetUnlinkedByEmail(ctx, "dono@pizzaria.com")
	require.NoError(t, err)
	assert.NotNil(t, still, "el perfil sigue sin enlazar")
}

// Dos peticiones del mismo usuario: la otra enlazó primero y esta relee por subject.
func TestResolve_CarreraGanadaPorElMismoSubject(t *testing.T) {
	ctx := context.Background()
	s := apptest.NewStore()
	c := s.SeedCompany("Pizzaria A")
	invited := s.SeedInvitedUser(entity.RoleOperador, c.ID, "caio@pizzaria.com")
	users := &linkSpy{UserRepository: s.Users(), winner: "idp|caio"}
	v := fakeVerifier{"tok": {Subject: "idp|caio", Email: "caio@pizzaria.com", EmailVerified: true}}

	p, err := auth.NewTokenResolver(v, users, s.Companies()).Resolve(ctx, "tok")
	require.NoError(t, err)
	assert.Equal(t, invited.ID, p.UserID)
}

func TestResolve_CarreraGanadaPorOtraIdentidad(t *testing.T) {
	ctx := context.Background()
	s := apptest.NewStore()
	c := s.SeedCompany("Pizzaria A")
	s.SeedInvitedUser(entity.RoleOperador, c.ID, "caio@pizzaria.com")
	users := &linkSpy{UserRepository: s.Users(), winner: "idp|otro"}
	v := fakeVerifier{"tok": {Subject: "idp|caio", Email: "caio@pizzaria.com", EmailVerified: true}}

	_, err := auth.NewTokenResolver(v, users, s.Companies()).Resolve(ctx, "tok")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestResolve_Rechazos(t *testing.T) {
	ctx := context.Background()
	s := apptest.NewStore()
	active := s.SeedCompany("Ativa")
	closed := s.SeedCompany("Fechada")
	_, err := s.Companies().SetActive(ctx, closed.ID, false)
	require.NoError(t, err)

	s.SeedUser(entity.RoleAdmin, closed.ID, "idp|fechada")
	inactive := s.SeedInvitedUser(entity.RoleAdmin, active.ID, "ex@pizzaria.com")
	inactive.AuthID = "idp|ex"
	inactive.IsActive = false
	require.NoError(t, s.Users().Update(ctx, authz.Scope{All: true}, &inactive))

	v := fakeVerifier{
		"empresa-inactiva": {Subject: "idp|fechada"},
		"usuario-inactivo": {Subject: "idp|ex"},
		"sin-perfil":       {Subject: "idp|nadie", Email: "nadie@x.com", EmailVerified: true},
	}
	r := auth.NewTokenResolver(v, s.Users(), s.Companies())

	for _, tok := range []string{"", "desconocido", "empresa-inactiva", "usuario-inactivo", "sin-perfil"} {
		t.Run(tok, func(t *testing.T) {
			_, err := r.Resolve(ctx, tok)
			assert.ErrorIs(t, err, domain.ErrUnauthorized)
		})
	}

	_, err = r.Resolve(ctx, "jwks-caido")
	assert.ErrorIs(t, err, domain.ErrUpstream)
	assert.NotErrorIs(t, err, domain.ErrUnauthorized)
}

// ──────────────────────────────────────────────────────────────────────────────
// CachedResolver
// ──────────────────────────────────────────────────────────────────────────────

func newCached(t *testing.T) (*auth.CachedResolver, *countingResolver, *authtest.StaticResolver, authz.Principal) {
	t.Helper()
	static := authtest.NewStaticResolver()
	p := authz.Principal{UserID: "u1", Role: entity.RoleAdmin, CompanyID: "c1"}
	counting := &countingResolver{inner: static}
	return auth.NewCachedResolver(counting, 16, time.Minute), counting, static, p
}

func TestCachedResolver_AciertoYFallo(t *testing.T) {
	ctx := context.Background()
	c, counting, static, p := newCached(t)
	static.Add("tok-a", p)

	got, err := c.Resolve(ctx, "tok-a")
	require.NoError(t, err)
	assert.Equal(t, p, got)
	got, err = c.Resolve(ctx, "tok-a")
	require.NoError(t, err)
	assert.Equal(t, p, got)
	assert.Equal(t, 1, counting.calls)
	assert.Equal(t, 1, c.Len())
}

func TestCachedResolver_NoGuardaErrores(t *testing.T) {
	ctx := context.Background()
	c, counting, static, p := newCached(t)

	_, err := c.Resolve(ctx, "tok-b")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	assert.Zero(t, c.Len())

	static.Add("tok-b", p)
	got, err := c.Resolve(ctx, "tok-b")
	require.NoError(t, err)
	assert.Equal(t, p, got)
	assert.Equal(t, 2, counting.calls)
}

func TestCachedResolver_Invalidate(t *testing.T) {
	ctx := context.Background()
	c, counting, static, p := newCached(t)
	static.Add("tok-a", p)

	_, err := c.Resolve(ctx, "tok-a")
	require.NoError(t, err)
	c.Invalidate()
	assert.Zero(t, c.Len())

	_, err = c.Resolve(ctx, "tok-a")
	require.NoError(t, err)
	assert.Equal(t, 2, counting.calls)
}

// Una entrada no se sirve después del exp del token aunque el TTL siga vigente.
func TestCachedResolver_RespetaExpiracionDelToken(t *testing.T) {
	ctx := context.Background()
	c, counting, static, p := newCached(t)

	expired, err := pkgjwt.Generate("s", "auth-1", "", "stockeasy", -1)
	require.NoError(t, err)
	valid, err := pkgjwt.Generate("s", "auth-2", "", "stockeasy", 5)
	require.NoError(t, err)
	static.Add(expired, p)
	static.Add(valid, p)

	for i := 0; i < 2; i++ {
		_, err = c.Resolve(ctx, expired)
		require.NoError(t, err)
	}
	assert.Equal(t, 2, counting.calls, "el token vencido vuelve al resolvedor interno")

	for i := 0; i < 2; i++ {
		_, err = c.Resolve(ctx, valid)
		require.NoError(t, err)
	}
	assert.Equal(t, 3, counting.calls)
}
