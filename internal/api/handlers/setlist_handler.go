package handlers

import (
	"net/http"

	"setlist-sync/internal/api/middleware"
	"setlist-sync/internal/domain"
	"setlist-sync/internal/services"
	"setlist-sync/pkg/logger"

	"github.com/labstack/echo/v4"
)

type SetlistHandler struct {
	setlists *services.SetlistService
	log      logger.Logger
}

func NewSetlistHandler(setlists *services.SetlistService, log logger.Logger) *SetlistHandler {
	return &SetlistHandler{setlists: setlists, log: log}
}

func (h *SetlistHandler) Create(c echo.Context) error {
	var in services.CreateSetlistInput
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if in.Name == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "setlist name required"})
	}

	setlist, err := h.setlists.Create(c.Request().Context(), middleware.CurrentUser(c).ID, in)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusCreated, setlist)
}

func (h *SetlistHandler) Get(c echo.Context) error {
	setlist, err := h.setlists.Get(c.Request().Context(), middleware.CurrentUser(c).ID, c.Param("setlistId"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, setlist)
}

func (h *SetlistHandler) List(c echo.Context) error {
	setlists, err := h.setlists.ListForUser(c.Request().Context(), middleware.CurrentUser(c).ID)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, setlists)
}

func (h *SetlistHandler) Update(c echo.Context) error {
	var in services.UpdateSetlistInput
	if err := c.Bind(&in); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	setlist, err := h.setlists.Update(c.Request().Context(),
		middleware.CurrentUser(c).ID, c.Param("setlistId"), in)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, setlist)
}

func (h *SetlistHandler) Delete(c echo.Context) error {
	if err := h.setlists.Delete(c.Request().Context(), middleware.CurrentUser(c).ID, c.Param("setlistId")); err != nil {
		return errorResponse(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *SetlistHandler) AddSong(c echo.Context) error {
	var entry domain.SetlistEntry
	if err := c.Bind(&entry); err != nil || entry.SongID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "song_id required"})
	}

	setlist, err := h.setlists.AddSong(c.Request().Context(),
		middleware.CurrentUser(c).ID, c.Param("setlistId"), entry)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, setlist)
}

func (h *SetlistHandler) UpdateSong(c echo.Context) error {
	var entry domain.SetlistEntry
	if err := c.Bind(&entry); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	setlist, err := h.setlists.UpdateEntry(c.Request().Context(),
		middleware.CurrentUser(c).ID, c.Param("setlistId"), c.Param("songId"), entry)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, setlist)
}

func (h *SetlistHandler) RemoveSong(c echo.Context) error {
	setlist, err := h.setlists.RemoveSong(c.Request().Context(),
		middleware.CurrentUser(c).ID, c.Param("setlistId"), c.Param("songId"))
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, setlist)
}

func (h *SetlistHandler) Reorder(c echo.Context) error {
	var req struct {
		SongIDs []string `json:"song_ids"`
	}
	if err := c.Bind(&req); err != nil || len(req.SongIDs) == 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "song_ids required"})
	}

	setlist, err := h.setlists.Reorder(c.Request().Context(),
		middleware.CurrentUser(c).ID, c.Param("setlistId"), req.SongIDs)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, setlist)
}
