// Package identity verificadores de credenciales de proveedores de identidad externos.
package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/coreos/go-oidc/v3/oidc"

	"github.com/stockeasy/stockeasy-api/internal/application/auth"
	"github.com/stockeasy/stockeasy-api/internal/domain"
)

var _ auth.IdentityVerifier = (*OIDCVerifier)(nil)

// OIDCVerifier valida ID tokens de un emisor OpenID Connect (firma por JWKS, issuer, audiencia, expiración).
type OIDCVerifier struct {
	verifier *oidc.IDTokenVerifier
}

// NewOIDCVerifier descubre el emisor (/.well-known/openid-configuration) y construye el verificador.
func NewOIDCVerifier(ctx context.Context, issuer, clientID string) (*OIDCVerifier, error) {
	provider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("identity: descubrir emisor OIDC: %w", err)
	}
	return NewOIDCVerifierFrom(provider.Verifier(&oidc.Config{ClientID: clientID})), nil
}

// NewOIDCVerifierFrom envuelve un verificador ya construido (claves estáticas en tests).
func NewOIDCVerifierFrom(v *oidc.IDTokenVerifier) *OIDCVerifier {
	return &OIDCVerifier{verifier: v}
}

type idClaims struct {
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
}

// Verify los fallos al obtener el JWKS se devuelven como domain.ErrUpstream.
func (v *OIDCVerifier) Verify(ctx context.Context, token string) (auth.Identity, error) {
	idToken, err := v.verifier.Verify(ctx, token)
	if err != nil {
		var expired *oidc.TokenExpiredError
		switch {
		case errors.As(err, &expired):
			return auth.Identity{}, errors.New("token expirado")
		case strings.Contains(err.Error(), "get keys failed"):
			return auth.Identity{}, fmt.Errorf("%w: %v", domain.ErrUpstream, err)
		}
		return auth.Identity{}, fmt.Errorf("token inválido: %w", err)
	}
	var claims idClaims
	if err := idToken.Claims(&claims); err != nil {
		return auth.Identity{}, fmt.Errorf("claims inválidos: %w", err)
	}
	return auth.Identity{
		Subject:       idToken.Subject,
		Email:         strings.ToLower(claims.Email),
		EmailVerified: claims.EmailVerified,
	}, nil
}
