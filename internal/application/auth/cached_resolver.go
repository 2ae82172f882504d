package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/stockeasy/stockeasy-api/internal/domain/authz"
	"github.com/stockeasy/stockeasy-api/pkg/jwt"
)

var _ PrincipalResolver = (*CachedResolver)(nil)

// CachedResolver memoriza principales resueltos por token durante un TTL corto.
// Una entrada nunca sobrevive al exp del token. Solo se guardan resoluciones exitosas;
// Invalidate vacía la caché tras cambios de usuarios o empresas.
type CachedResolver struct {
	inner PrincipalResolver
	cache *lru.LRU[string, cachedPrincipal]
}

type cachedPrincipal struct {
	principal authz.Principal
	expiresAt time.Time // cero si el token no trae exp legible
}

// NewCachedResolver envuelve inner con una LRU expirable de size entradas.
func NewCachedResolver(inner PrincipalResolver, size int, ttl time.Duration) *CachedResolver {
	if size <= 0 {
		size = 1024
	}
	return &CachedResolver{
		inner: inner,
		cache: lru.NewLRU[string, cachedPrincipal](size, nil, ttl),
	}
}

// Resolve consulta la caché y delega en inner en caso de fallo.
func (c *CachedResolver) Resolve(ctx context.Context, token string) (authz.Principal, error) {
	key := tokenKey(token)
	if e, ok := c.cache.Get(key); ok {
		if e.expiresAt.IsZero() || time.Now().Before(e.expiresAt) {
			return e.principal, nil
		}
		c.cache.Remove(key)
	}
	p, err := c.inner.Resolve(ctx, token)
	if err != nil {
		return authz.Principal{}, err
	}
	// inner ya validó la firma: leer exp sin verificar es seguro aquí.
	exp, _ := jwt.ExpiresAt(token)
	c.cache.Add(key, cachedPrincipal{principal: p, expiresAt: exp})
	return p, nil
}

// Invalidate descarta todos los principales memorizados.
func (c *CachedResolver) Invalidate() {
	c.cache.Purge()
}

// Len número de entradas en caché.
func (c *CachedResolver) Len() int {
	return c.cache.Len()
}

func tokenKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
