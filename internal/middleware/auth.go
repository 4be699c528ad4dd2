package middleware

import (
	"context"
	"net/http"
	"strings"

	"deliverytrack/internal/model"
	"deliverytrack/internal/repository"
	"deliverytrack/internal/token"
	"github.com/labstack/echo/v4"
)

// ContextUserKey is where RequireAuth stashes the authenticated *model.User.
const ContextUserKey = "user"

type AuthMiddleware struct {
	tokens *token.Manager
	users  repository.UserRepository
}

func NewAuthMiddleware(tokens *token.Manager, users repository.UserRepository) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, users: users}
}

// RequireAuth validates the bearer token and resolves it to a live user
// record, so downstream handlers see the current role and display name.
func (m *AuthMiddleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authz := c.Request().Header.Get("Authorization")
		if authz == "" || !strings.HasPrefix(authz, "Bearer ") {
			return c.JSON(http.StatusUnauthorized, map[string]string{"message": "No token provided"})
		}
		claims, err := m.tokens.Verify(strings.TrimPrefix(authz, "Bearer "))
		if err != nil {
			return c.JSON(http.StatusUnauthorized, map[string]string{"message": "Invalid token"})
		}
		u, err := m.users.FindByID(c.Request().Context(), claims.UserID)
		if err != nil {
			return c.JSON(http.StatusUnauthorized, map[string]string{"message": "User not found"})
		}
		c.Set(ContextUserKey, u)
		return next(c)
	}
}

// RequireRole gates a route to the given roles. It assumes RequireAuth ran
// first.
func (m *AuthMiddleware) RequireRole(roles ...model.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			u := UserFrom(c)
			if u == nil {
				return c.JSON(http.StatusUnauthorized, map[string]string{"message": "Not authenticated"})
			}
			for _, r := range roles {
				if u.Role == r {
					return next(c)
				}
			}
			return c.JSON(http.StatusForbidden, map[string]string{"message": "Forbidden"})
		}
	}
}

// UserFrom returns the authenticated user set by RequireAuth, or nil.
func UserFrom(c echo.Context) *model.User {
	u, _ := c.Get(ContextUserKey).(*model.User)
	return u
}

// ResolveUser is the websocket-handshake variant: it verifies a raw token
// string outside the echo middleware chain.
func (m *AuthMiddleware) ResolveUser(ctx context.Context, raw string) (*model.User, error) {
	claims, err := m.tokens.Verify(raw)
	if err != nil {
		return nil, err
	}
	return m.users.FindByID(ctx, claims.UserID)
}
