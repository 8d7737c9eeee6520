package jwt_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgjwt "github.com/ecolink/crud-clientes/pkg/jwt"
)

const (
	testSecret = "test-secret-key-for-unit-tests"
	testIssuer = "ecolink-test"
)

func TestJWT_GenerateAndParse_ConRol(t *testing.T) {
	tok, err := pkgjwt.Generate(testSecret, 7, "ana@ecolink.com", "OPERADOR", testIssuer, 60)
	require.NoError(t, err)
	require.NotEmpty(t, tok)

	claims, err := pkgjwt.Parse(testSecret, tok)
	require.NoError(t, err)

	assert.Equal(t, int64(7), claims.UserID)
	assert.Equal(t, "ana@ecolink.com", claims.Email)
	assert.Equal(t, "OPERADOR", claims.Role)
	assert.Equal(t, "7", claims.Subject)
}

func TestJWT_TokenExpirado_RetornaError(t *testing.T) {
	tok, err := pkgjwt.Generate(testSecret, 1, "a@b.com", "ADMIN", testIssuer, -1)
	require.NoError(t, err)

	_, err = pkgjwt.Parse(testSecret, tok)
	assert.Error(t, err, "token expirado debe retornar error")
}

func TestJWT_SecretIncorrecto_RetornaError(t *testing.T) {
	tok, err := pkgjwt.Generate(testSecret, 1, "a@b.com", "ADMIN", testIssuer, 60)
	require.NoError(t, err)

	_, err = pkgjwt.Parse("otro-secret-completamente-distinto", tok)
	assert.Error(t, err, "secret incorrecto debe invalidar el token")
}

func TestJWT_SecretVacio(t *testing.T) {
	_, err := pkgjwt.Generate("", 1, "a@b.com", "ADMIN", testIssuer, 60)
	assert.Error(t, err)
}

func TestExpiresAt_LeeClaimSinVerificar(t *testing.T) {
	tok, err := pkgjwt.Generate(testSecret, 1, "a@b.com", "ADMIN", testIssuer, 30)
	require.NoError(t, err)

	exp, ok := pkgjwt.ExpiresAt(tok)
	require.True(t, ok)
	assert.WithinDuration(t, time.Now().Add(30*time.Minute), exp, 5*time.Second)
}

func TestExpiresAt_TokenOpaco(t *testing.T) {
	_, ok := pkgjwt.ExpiresAt("token-opaco-del-backend")
	assert.False(t, ok)
}
