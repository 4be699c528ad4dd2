package service_test

import (
	"context"
	"testing"

	"deliverytrack/internal/model"
	"deliverytrack/internal/service"
	"deliverytrack/internal/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	tokens := token.NewManager("test-secret")

	t.Run("registers and logs in", func(t *testing.T) {
		users := newFakeUserRepo()
		svc := service.NewAuthService(users, tokens)

		u, err := svc.Register(ctx, "Buyer One", "Buyer@Example.com", "secret1", model.RoleBuyer)
		require.NoError(t, err)
		assert.Equal(t, "buyer@example.com", u.Email, "email is stored lowercased")
		assert.NotEqual(t, "secret1", u.PasswordHash)

		tok, got, err := svc.Login(ctx, "buyer@example.com", "secret1")
		require.NoError(t, err)
		assert.Equal(t, u.ID, got.ID)

		claims, err := tokens.Verify(tok)
		require.NoError(t, err)
		assert.Equal(t, u.ID, claims.UserID)
		assert.Equal(t, "buyer", claims.Role)
	})

	t.Run("rejects duplicate email", func(t *testing.T) {
		users := newFakeUserRepo()
		svc := service.NewAuthService(users, tokens)

		_, err := svc.Register(ctx, "Buyer One", "buyer@example.com", "secret1", model.RoleBuyer)
		require.NoError(t, err)
		_, err = svc.Register(ctx, "Imposter", "buyer@example.com", "secret2", model.RoleSeller)
		assert.ErrorIs(t, err, service.ErrEmailTaken)
	})

	t.Run("rejects bad credentials without telling which part is wrong", func(t *testing.T) {
		users := newFakeUserRepo()
		svc := service.NewAuthService(users, tokens)
		_, err := svc.Register(ctx, "Buyer One", "buyer@example.com", "secret1", model.RoleBuyer)
		require.NoError(t, err)

		_, _, err = svc.Login(ctx, "buyer@example.com", "wrong")
		assert.ErrorIs(t, err, service.ErrInvalidCredentials)

		_, _, err = svc.Login(ctx, "nobody@example.com", "secret1")
		assert.ErrorIs(t, err, service.ErrInvalidCredentials)
	})
}
