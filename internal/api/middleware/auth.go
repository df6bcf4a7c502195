package middleware

import (
	"context"
	"net/http"
	"strings"

	"setlist-sync/internal/domain"

	"github.com/labstack/echo/v4"
)

const userContextKey = "user"

// Authenticator resolves a bearer credential to a user, or fails.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*domain.User, error)
}

// RequireAuth authenticates the bearer token and stores the user on the echo
// context for the handlers downstream.
func RequireAuth(auth Authenticator) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if !strings.HasPrefix(header, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "please authenticate"})
			}

			user, err := auth.Authenticate(c.Request().Context(), strings.TrimPrefix(header, "Bearer "))
			if err != nil {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "please authenticate"})
			}

			c.Set(userContextKey, user)
			return next(c)
		}
	}
}

// CurrentUser returns the authenticated user RequireAuth stored on the
// context. Panics if called from a route that skipped the middleware.
func CurrentUser(c echo.Context) *domain.User {
	return c.Get(userContextKey).(*domain.User)
}
