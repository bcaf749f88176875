package auth_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pos-api/internal/application/auth"
	"github.com/jhoicas/pos-api/internal/application/dto"
	"github.com/jhoicas/pos-api/internal/domain"
	"github.com/jhoicas/pos-api/internal/domain/entity"
	"github.com/jhoicas/pos-api/internal/infrastructure/memory"
	"github.com/jhoicas/pos-api/pkg/jwt"
)

const secret = "test-secret"

func TestEnsureAdminYLogin(t *testing.T) {
	store := memory.NewStore()
	uc := auth.NewAuthUseCase(store.Users(), auth.JWTConfig{Secret: secret, ExpMinutes: 15, Issuer: "pos-api"})
	ctx := context.Background()

	created, err := uc.EnsureAdmin(ctx, "admin", "admin1234")
	require.NoError(t, err)
	assert.True(t, created)

	// segunda vez: ya hay usuarios
	created, err = uc.EnsureAdmin(ctx, "admin", "admin1234")
	require.NoError(t, err)
	assert.False(t, created)

	res, err := uc.Login(ctx, dto.LoginRequest{Username: "admin", Password: "admin1234"})
	require.NoError(t, err)
	assert.Equal(t, entity.RoleAdmin, res.User.Role)
	assert.Equal(t, 900, res.ExpiresIn)

	claims, err := jwt.Parse(secret, res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, claims.UserID)
	assert.Equal(t, entity.RoleAdmin, claims.Role)
}

func TestLogin_CredencialesInvalidas(t *testing.T) {
	store := memory.NewStore()
	uc := auth.NewAuthUseCase(store.Users(), auth.JWTConfig{Secret: secret, ExpMinutes: 15})
	ctx := context.Background()
	_, err := uc.EnsureAdmin(ctx, "admin", "admin1234")
	require.NoError(t, err)

	_, err = uc.Login(ctx, dto.LoginRequest{Username: "admin", Password: "mala"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = uc.Login(ctx, dto.LoginRequest{Username: "nadie", Password: "admin1234"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestLogin_UsuarioInactivo(t *testing.T) {
	store := memory.NewStore()
	uc := auth.NewAuthUseCase(store.Users(), auth.JWTConfig{Secret: secret, ExpMinutes: 15})
	ctx := context.Background()
	_, err := uc.EnsureAdmin(ctx, "admin", "admin1234")
	require.NoError(t, err)

	u, err := store.Users().GetByUsername(ctx, "admin")
	require.NoError(t, err)
	u.Active = false
	require.NoError(t, store.Users().Update(ctx, u))

	_, err = uc.Login(ctx, dto.LoginRequest{Username: "admin", Password: "admin1234"})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}
