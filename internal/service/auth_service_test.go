package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tradejournal/internal/config"
	"github.com/tradejournal/internal/models"
	"github.com/tradejournal/internal/repository"
)

func newAuthService(t *testing.T) *AuthService {
	t.Helper()
	db := newTestDB(t)
	return NewAuthService(repository.NewUserRepository(db), config.JWTConfig{
		Secret:      "test-secret",
		ExpireHours: 1,
	})
}

func TestRegisterFirstUserBootstrapsAdmin(t *testing.T) {
	svc := newAuthService(t)

	first, err := svc.Register(&RegisterRequest{Username: "alice", Email: "alice@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, first.Role)
	assert.True(t, first.IsApproved)

	second, err := svc.Register(&RegisterRequest{Username: "bob", Email: "bob@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, second.Role)
	assert.False(t, second.IsApproved)
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	svc := newAuthService(t)

	_, err := svc.Register(&RegisterRequest{Username: "alice", Email: "alice@example.com", Password: "secret1"})
	require.NoError(t, err)

	_, err = svc.Register(&RegisterRequest{Username: "alice", Email: "other@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, ErrUsernameTaken)

	_, err = svc.Register(&RegisterRequest{Username: "alice2", Email: "alice@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestLoginPendingAccountIsRejected(t *testing.T) {
	svc := newAuthService(t)

	_, err := svc.Register(&RegisterRequest{Username: "admin", Email: "admin@example.com", Password: "secret1"})
	require.NoError(t, err)
	pending, err := svc.Register(&RegisterRequest{Username: "bob", Email: "bob@example.com", Password: "secret1"})
	require.NoError(t, err)

	_, err = svc.Login(&LoginRequest{Username: "bob", Password: "secret1"})
	assert.ErrorIs(t, err, ErrAccountPending)

	require.NoError(t, svc.SetApproval(pending.ID, true))

	token, err := svc.Login(&LoginRequest{Username: "bob", Password: "secret1"})
	require.NoError(t, err)
	assert.NotEmpty(t, token.AccessToken)
	assert.Equal(t, "Bearer", token.TokenType)
}

func TestLoginWrongPassword(t *testing.T) {
	svc := newAuthService(t)

	_, err := svc.Register(&RegisterRequest{Username: "alice", Email: "alice@example.com", Password: "secret1"})
	require.NoError(t, err)

	_, err = svc.Login(&LoginRequest{Username: "alice", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(&LoginRequest{Username: "nobody", Password: "secret1"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginByEmail(t *testing.T) {
	svc := newAuthService(t)

	_, err := svc.Register(&RegisterRequest{Username: "alice", Email: "alice@example.com", Password: "secret1"})
	require.NoError(t, err)

	_, err = svc.Login(&LoginRequest{Username: "alice@example.com", Password: "secret1"})
	require.NoError(t, err)
}

func TestValidateTokenCarriesRole(t *testing.T) {
	svc := newAuthService(t)

	_, err := svc.Register(&RegisterRequest{Username: "alice", Email: "alice@example.com", Password: "secret1"})
	require.NoError(t, err)

	token, err := svc.Login(&LoginRequest{Username: "alice", Password: "secret1"})
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, models.RoleAdmin, claims.Role)

	_, err = svc.ValidateToken("not.a.token")
	assert.Error(t, err)
}
