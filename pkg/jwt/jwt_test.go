package jwt_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgjwt "github.com/ladespensa/despensa-api/pkg/jwt"
)

const testSecret = "test-secret-key-for-unit-tests"

func params(typ string, ttl time.Duration) pkgjwt.Params {
	return pkgjwt.Params{
		Secret: testSecret,
		Issuer: "la-despensa-test",
		UserID: "00000000-0000-0000-0000-000000000001",
		Role:   "jefe",
		Name:   "Marta",
		Type:   typ,
		TTL:    ttl,
	}
}

func TestGenerateAndParse_ConRole(t *testing.T) {
	tok, err := pkgjwt.Generate(params(pkgjwt.TypeAccess, time.Hour))
	require.NoError(t, err)

	claims, err := pkgjwt.Parse(testSecret, tok, pkgjwt.TypeAccess)
	require.NoError(t, err)
	assert.Equal(t, "00000000-0000-0000-0000-000000000001", claims.UserID)
	assert.Equal(t, "jefe", claims.Role)
	assert.Equal(t, "Marta", claims.Name)
}

func TestParse_TokenExpirado(t *testing.T) {
	tok, err := pkgjwt.Generate(params(pkgjwt.TypeAccess, -time.Minute))
	require.NoError(t, err)

	_, err = pkgjwt.Parse(testSecret, tok, pkgjwt.TypeAccess)
	assert.Error(t, err)
}

func TestParse_SecretIncorrecto(t *testing.T) {
	tok, err := pkgjwt.Generate(params(pkgjwt.TypeAccess, time.Hour))
	require.NoError(t, err)

	_, err = pkgjwt.Parse("otro-secret", tok, pkgjwt.TypeAccess)
	assert.Error(t, err)
}

func TestParse_RefreshNoSirveComoAccess(t *testing.T) {
	tok, err := pkgjwt.Generate(params(pkgjwt.TypeRefresh, time.Hour))
	require.NoError(t, err)

	_, err = pkgjwt.Parse(testSecret, tok, pkgjwt.TypeAccess)
	assert.ErrorIs(t, err, pkgjwt.ErrWrongTokenType)

	claims, err := pkgjwt.Parse(testSecret, tok, pkgjwt.TypeRefresh)
	require.NoError(t, err)
	assert.Equal(t, pkgjwt.TypeRefresh, claims.TokenType)
}

func TestGenerate_SecretVacio(t *testing.T) {
	p := params(pkgjwt.TypeAccess, time.Hour)
	p.Secret = ""
	_, err := pkgjwt.Generate(p)
	assert.Error(t, err)
}
