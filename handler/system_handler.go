package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

func (h *Handler) BridgeStatus(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"connected": h.Hub.Connected() > 0,
		"alive":     h.Hub.Alive(c.Request().Context()),
	})
}

func (h *Handler) SaveStatus(c echo.Context) error {
	last := h.Autosaver.LastSaved()
	resp := map[string]interface{}{"last_saved": nil}
	if !last.IsZero() {
		resp["last_saved"] = last
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *Handler) Save(c echo.Context) error {
	if err := h.Autosaver.Flush(); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Save failed")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"last_saved": h.Autosaver.LastSaved()})
}
