package handlers

import (
	"net/http"

	"setlist-sync/internal/api/middleware"
	"setlist-sync/internal/services"
	"setlist-sync/pkg/logger"

	"github.com/labstack/echo/v4"
)

type SongHandler struct {
	songs *services.SongService
	log   logger.Logger
}

func NewSongHandler(songs *services.SongService, log logger.Logger) *SongHandler {
	return &SongHandler{songs: songs, log: log}
}

func (h *SongHandler) Create(c echo.Context) error {
	var in services.SongInput
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if in.Title == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "song title required"})
	}

	song, err := h.songs.Create(c.Request().Context(), middleware.CurrentUser(c).ID, in)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusCreated, song)
}

func (h *SongHandler) Get(c echo.Context) error {
	song, err := h.songs.Get(c.Request().Context(), middleware.CurrentUser(c).ID, c.Param("songId"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, song)
}

func (h *SongHandler) List(c echo.Context) error {
	songs, err := h.songs.List(c.Request().Context(),
		middleware.CurrentUser(c).ID, c.QueryParam("band"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, songs)
}

func (h *SongHandler) Update(c echo.Context) error {
	var in services.SongInput
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	song, err := h.songs.Update(c.Request().Context(), middleware.CurrentUser(c).ID, c.Param("songId"), in)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, song)
}

func (h *SongHandler) Delete(c echo.Context) error {
	if err := h.songs.Delete(c.Request().Context(), middleware.CurrentUser(c).ID, c.Param("songId")); err != nil {
		return errorResponse(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
