// Package authtest resolvedores de principales para tests. Ningún binario bajo cmd/ lo importa.
package authtest

import (
	"context"
	"fmt"
	"sync"

	"github.com/stockeasy/stockeasy-api/internal/domain"
	"github.com/stockeasy/stockeasy-api/internal/domain/authz"
)

// StaticResolver mapea tokens fijos a principales.
type StaticResolver struct {
	mu     sync.RWMutex
	tokens map[string]authz.Principal
}

// NewStaticResolver crea un resolvedor vacío.
func NewStaticResolver() *StaticResolver {
	return &StaticResolver{tokens: map[string]authz.Principal{}}
}

// Add registra token → principal y devuelve el token para encadenar.
func (r *StaticResolver) Add(token string, p authz.Principal) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tokens[token] = p
	return token
}

// Resolve devuelve el principal registrado o domain.ErrUnauthorized.
func (r *StaticResolver) Resolve(_ context.Context, token string) (authz.Principal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.tokens[token]
	if !ok {
		return authz.Principal{}, fmt.Errorf("%w: token desconocido", domain.ErrUnauthorized)
	}
	if err := p.Validate(); err != nil {
		return authz.Principal{}, err
	}
	return p, nil
}
