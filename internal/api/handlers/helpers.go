package handlers

import (
	"errors"
	"net/http"

	"setlist-sync/internal/domain"

	"github.com/labstack/echo/v4"
)

// errorResponse maps domain errors onto HTTP statuses.
func errorResponse(c echo.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return c.JSON(http.StatusNotFound, map[string]string{"error": "resource not found"})
	case errors.Is(err, domain.ErrForbidden):
		return c.JSON(http.StatusForbidden, map[string]string{"error": "permission denied"})
	case errors.Is(err, domain.ErrEmailTaken):
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "email already taken"})
	case errors.Is(err, domain.ErrInvalidCredentials):
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "incorrect email or password"})
	case errors.Is(err, domain.ErrInviteCodeExpired):
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invite code is invalid or expired"})
	case errors.Is(err, domain.ErrAuthenticationFailed):
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "authentication failed"})
	default:
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}
}

type userView struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

func viewUser(u *domain.User) userView {
	return userView{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}
