package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"novelweaver/epub"
)

func (h *Handler) DownloadEpub(c echo.Context) error {
	ws, ok := h.Store.Workspace(c.Param("id"))
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "Workspace not found")
	}
	if !ws.Settings.AllowEpub {
		return echo.NewHTTPError(http.StatusForbidden, "EPUB export is disabled for this workspace")
	}

	var buf bytes.Buffer
	if err := epub.Write(&buf, ws); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to generate EPUB")
	}

	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename=%q`, epub.Filename(ws)))
	return c.Blob(http.StatusOK, "application/epub+zip", buf.Bytes())
}

// ForkExport hands out the full workspace as JSON so contributors can work
// on a copy.
func (h *Handler) ForkExport(c echo.Context) error {
	ws, ok := h.Store.Workspace(c.Param("id"))
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "Workspace not found")
	}
	if !ws.Settings.AllowContribution {
		return echo.NewHTTPError(http.StatusForbidden, "Contributions are disabled for this workspace")
	}

	name := strings.Join(strings.Fields(ws.Name), "_")
	if name == "" {
		name = "untitled"
	}
	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename=%q`, name+"_contrib.json"))
	return c.JSON(http.StatusOK, ws)
}
