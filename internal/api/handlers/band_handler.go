package handlers

import (
	"net/http"

	"setlist-sync/internal/api/middleware"
	"setlist-sync/internal/services"
	"setlist-sync/pkg/logger"

	"github.com/labstack/echo/v4"
)

type BandHandler struct {
	bands *services.BandService
	log   logger.Logger
}

func NewBandHandler(bands *services.BandService, log logger.Logger) *BandHandler {
	return &BandHandler{bands: bands, log: log}
}

func (h *BandHandler) Create(c echo.Context) error {
	var in services.CreateBandInput
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if in.Name == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "band name required"})
	}

	band, err := h.bands.Create(c.Request().Context(), middleware.CurrentUser(c).ID, in)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusCreated, band)
}

func (h *BandHandler) Get(c echo.Context) error {
	band, err := h.bands.Get(c.Request().Context(), middleware.CurrentUser(c).ID, c.Param("bandId"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, band)
}

func (h *BandHandler) List(c echo.Context) error {
	bands, err := h.bands.ListForUser(c.Request().Context(), middleware.CurrentUser(c).ID)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, bands)
}

func (h *BandHandler) Update(c echo.Context) error {
	var in services.UpdateBandInput
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	band, err := h.bands.Update(c.Request().Context(), middleware.CurrentUser(c).ID, c.Param("bandId"), in)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, band)
}

func (h *BandHandler) Delete(c echo.Context) error {
	if err := h.bands.Delete(c.Request().Context(), middleware.CurrentUser(c).ID, c.Param("bandId")); err != nil {
		return errorResponse(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *BandHandler) AddMember(c echo.Context) error {
	var in services.AddMemberInput
	if err := c.Bind(&in); err != nil || in.UserID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "user_id required"})
	}

	if err := h.bands.AddMember(c.Request().Context(), middleware.CurrentUser(c).ID, c.Param("bandId"), in); err != nil {
		return errorResponse(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *BandHandler) RemoveMember(c echo.Context) error {
	err := h.bands.RemoveMember(c.Request().Context(),
		middleware.CurrentUser(c).ID, c.Param("bandId"), c.Param("userId"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *BandHandler) GenerateInvite(c echo.Context) error {
	code, expires, err := h.bands.GenerateInviteCode(c.Request().Context(),
		middleware.CurrentUser(c).ID, c.Param("bandId"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"code":    code,
		"expires": expires,
	})
}

func (h *BandHandler) JoinByInvite(c echo.Context) error {
	var req struct {
		Code string `json:"code"`
	}
	if err := c.Bind(&req); err != nil || req.Code == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invite code required"})
	}

	band, err := h.bands.JoinByInviteCode(c.Request().Context(), middleware.CurrentUser(c).ID, req.Code)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, band)
}
