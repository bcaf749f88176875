package jwt_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pos-api/pkg/jwt"
)

func TestGenerateParse(t *testing.T) {
	token, err := jwt.Generate("secreto", "u-1", "cashier", "pos-api", 5)
	require.NoError(t, err)

	claims, err := jwt.Parse("secreto", token)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
	assert.Equal(t, "cashier", claims.Role)
	assert.Equal(t, "pos-api", claims.Issuer)

	_, err = jwt.Parse("otro", token)
	assert.Error(t, err)
}

func TestGenerate_Expirado(t *testing.T) {
	token, err := jwt.Generate("secreto", "u-1", "admin", "pos-api", -1)
	require.NoError(t, err)
	_, err = jwt.Parse("secreto", token)
	assert.Error(t, err)
}

func TestGenerate_SinSecret(t *testing.T) {
	_, err := jwt.Generate("", "u-1", "admin", "pos-api", 5)
	assert.Error(t, err)
}
