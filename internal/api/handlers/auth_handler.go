package handlers

import (
	"net/http"

	"setlist-sync/internal/api/middleware"
	"setlist-sync/internal/services"
	"setlist-sync/pkg/logger"

	"github.com/labstack/echo/v4"
)

type AuthHandler struct {
	auth *services.AuthService
	log  logger.Logger
}

func NewAuthHandler(auth *services.AuthService, log logger.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, log: log}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if req.Name == "" || req.Email == "" || len(req.Password) < 8 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "name, email and a password of at least 8 characters are required"})
	}

	user, tokens, err := h.auth.Register(c.Request().Context(), req.Name, req.Email, req.Password)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"user":         viewUser(user),
		"token":        tokens.AccessToken,
		"refreshToken": tokens.RefreshToken,
	})
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if req.Email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "please provide email and password"})
	}

	user, tokens, err := h.auth.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return errorResponse(c, err)
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"user":         viewUser(user),
		"token":        tokens.AccessToken,
		"refreshToken": tokens.RefreshToken,
	})
}

func (h *AuthHandler) Refresh(c echo.Context) error {
	var req refreshRequest
	if err := c.Bind(&req); err != nil || req.RefreshToken == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "refresh token required"})
	}

	tokens, err := h.auth.Refresh(c.Request().Context(), req.RefreshToken)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, tokens)
}

func (h *AuthHandler) Logout(c echo.Context) error {
	var req refreshRequest
	if err := c.Bind(&req); err != nil || req.RefreshToken == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "refresh token required"})
	}

	if err := h.auth.Logout(c.Request().Context(), req.RefreshToken); err != nil {
		h.log.Warn("Logout failed", "error", err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *AuthHandler) Me(c echo.Context) error {
	return c.JSON(http.StatusOK, viewUser(middleware.CurrentUser(c)))
}
