package identity

import (
	"context"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockeasy/stockeasy-api/internal/domain"
)

const (
	testIssuer   = "https://auth.stockeasy.test"
	testClientID = "stockeasy-web"
)

func newKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return key
}

func newVerifier(pub *rsa.PublicKey) *OIDCVerifier {
	keySet := &oidc.StaticKeySet{PublicKeys: []crypto.PublicKey{pub}}
	return NewOIDCVerifierFrom(oidc.NewVerifier(testIssuer, keySet, &oidc.Config{ClientID: testClientID}))
}

func sign(t *testing.T, key *rsa.PrivateKey, claims jwt.MapClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(key)
	require.NoError(t, err)
	return tok
}

func baseClaims() jwt.MapClaims {
	now := time.Now()
	return jwt.MapClaims{
		"iss":   testIssuer,
		"aud":   testClientID,
		"sub":   "auth|123",
		"email": "Ana@Pizzaria.com",
		"iat":   now.Unix(),
		"exp":   now.Add(time.Hour).Unix(),
	}
}

func TestOIDCVerifier_TokenValido(t *testing.T) {
	key := newKey(t)
	id, err := newVerifier(&key.PublicKey).Verify(context.Background(), sign(t, key, baseClaims()))
	require.NoError(t, err)
	assert.Equal(t, "auth|123", id.Subject)
	assert.Equal(t, "ana@pizzaria.com", id.Email)
	assert.False(t, id.EmailVerified, "sin claim email_verified no se considera verificado")
}

func TestOIDCVerifier_EmailVerified(t *testing.T) {
	key := newKey(t)
	v := newVerifier(&key.PublicKey)

	verified := baseClaims()
	verified["email_verified"] = true
	id, err := v.Verify(context.Background(), sign(t, key, verified))
	require.NoError(t, err)
	assert.True(t, id.EmailVerified)

	unverified := baseClaims()
	unverified["email_verified"] = false
	id, err = v.Verify(context.Background(), sign(t, key, unverified))
	require.NoError(t, err)
	assert.False(t, id.EmailVerified)
}

func TestOIDCVerifier_Rechazos(t *testing.T) {
	key := newKey(t)
	other := newKey(t)
	v := newVerifier(&key.PublicKey)

	cases := map[string]string{}

	cases["firma de otra clave"] = sign(t, other, baseClaims())

	wrongAud := baseClaims()
	wrongAud["aud"] = "otra-app"
	cases["audiencia distinta"] = sign(t, key, wrongAud)

	wrongIss := baseClaims()
	wrongIss["iss"] = "https://evil.test"
	cases["emisor distinto"] = sign(t, key, wrongIss)

	expired := baseClaims()
	expired["exp"] = time.Now().Add(-time.Hour).Unix()
	cases["expirado"] = sign(t, key, expired)

	cases["basura"] = "no.es.un.jwt"

	for name, tok := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := v.Verify(context.Background(), tok)
			require.Error(t, err)
			assert.NotErrorIs(t, err, domain.ErrUpstream)
		})
	}
}

// El JWKS caído es un fallo del proveedor, no una credencial inválida.
func TestOIDCVerifier_JWKSCaidoEsUpstream(t *testing.T) {
	key := newKey(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "jwks no disponible", http.StatusInternalServerError)
	}))
	defer srv.Close()

	ctx := context.Background()
	keySet := oidc.NewRemoteKeySet(ctx, srv.URL)
	v := NewOIDCVerifierFrom(oidc.NewVerifier(testIssuer, keySet, &oidc.Config{ClientID: testClientID}))

	_, err := v.Verify(ctx, sign(t, key, baseClaims()))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUpstream)
}

func TestOIDCVerifier_JWKSInalcanzableEsUpstream(t *testing.T) {
	key := newKey(t)
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	ctx := context.Background()
	v := NewOIDCVerifierFrom(oidc.NewVerifier(testIssuer, oidc.NewRemoteKeySet(ctx, url), &oidc.Config{ClientID: testClientID}))

	_, err := v.Verify(ctx, sign(t, key, baseClaims()))
	assert.ErrorIs(t, err, domain.ErrUpstream)
}
