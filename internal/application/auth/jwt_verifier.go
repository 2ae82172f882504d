package auth

import (
	"context"

	"github.com/stockeasy/stockeasy-api/pkg/jwt"
)

var _ IdentityVerifier = (*JWTVerifier)(nil)

// JWTVerifier valida tokens HS256 firmados con el secreto compartido
// (emitidos por el login propio o por el proveedor de identidad).
type JWTVerifier struct {
	secret string
}

// NewJWTVerifier construye el verificador.
func NewJWTVerifier(secret string) *JWTVerifier {
	return &JWTVerifier{secret: secret}
}

// Verify valida firma y expiración.
func (v *JWTVerifier) Verify(_ context.Context, token string) (Identity, error) {
	id, err := jwt.ParseIdentity(v.secret, token)
	if err != nil {
		return Identity{}, err
	}
	return Identity{Subject: id.Subject, Email: id.Email, EmailVerified: id.EmailVerified}, nil
}
