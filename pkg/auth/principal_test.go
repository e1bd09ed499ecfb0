package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func signedToken(t *testing.T, claims jwt.RegisteredClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-key"))
	require.NoError(t, err)
	return token
}

func requestWithAuth(header string) *http.Request {
	r := httptest.NewRequest(http.MethodPost, "/api/resolve", nil)
	if header != "" {
		r.Header.Set("Authorization", header)
	}
	return r
}

func newUnverifiedVerifier(t *testing.T) *Verifier {
	t.Helper()
	v, err := NewVerifier(false, "", zap.NewNop())
	require.NoError(t, err)
	return v
}

func TestPrincipalFromRequestAnonymous(t *testing.T) {
	v := newUnverifiedVerifier(t)

	principal, err := v.PrincipalFromRequest(requestWithAuth(""))
	require.NoError(t, err, "a missing header is anonymous, not an error")
	assert.Nil(t, principal)
}

func TestPrincipalFromRequestBearer(t *testing.T) {
	v := newUnverifiedVerifier(t)
	token := signedToken(t, jwt.RegisteredClaims{Subject: "user-a"})

	principal, err := v.PrincipalFromRequest(requestWithAuth("Bearer " + token))
	require.NoError(t, err)
	require.NotNil(t, principal)
	assert.Equal(t, "user-a", principal.Subject)
}

func TestPrincipalFromRequestNonBearerScheme(t *testing.T) {
	v := newUnverifiedVerifier(t)

	_, err := v.PrincipalFromRequest(requestWithAuth("Basic dXNlcjpwYXNz"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not a bearer token")
}

func TestPrincipalFromRequestGarbageToken(t *testing.T) {
	v := newUnverifiedVerifier(t)

	_, err := v.PrincipalFromRequest(requestWithAuth("Bearer not.a.jwt"))
	assert.Error(t, err)
}

func TestPrincipalFromRequestMissingSubject(t *testing.T) {
	v := newUnverifiedVerifier(t)
	token := signedToken(t, jwt.RegisteredClaims{Issuer: "someone"})

	_, err := v.PrincipalFromRequest(requestWithAuth("Bearer " + token))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no subject")
}

func TestNewVerifierRequiresReachableJWKS(t *testing.T) {
	_, err := NewVerifier(true, "http://127.0.0.1:1/jwks.json", zap.NewNop())
	assert.Error(t, err)
}
