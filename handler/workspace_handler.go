package handlers

import (
	"encoding/base64"
	"fmt"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"novelweaver/models"
)

type createWorkspaceRequest struct {
	Name       string   `json:"name"`
	Author     string   `json:"author"`
	Genres     []string `json:"genres"`
	SourceLang string   `json:"source_lang"`
	TargetLang string   `json:"target_lang"`
}

func (h *Handler) ListWorkspaces(c echo.Context) error {
	workspaces, activeID := h.Store.Snapshot()
	return c.JSON(http.StatusOK, map[string]interface{}{
		"workspaces":          workspaces,
		"active_workspace_id": activeID,
	})
}

func (h *Handler) CreateWorkspace(c echo.Context) error {
	var req createWorkspaceRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if req.Name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Workspace name is required")
	}

	ws := h.Store.CreateWorkspace(req.Name, req.Author, req.Genres, req.SourceLang, req.TargetLang)
	return c.JSON(http.StatusCreated, ws)
}

func (h *Handler) GetWorkspace(c echo.Context) error {
	ws, ok := h.Store.Workspace(c.Param("id"))
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "Workspace not found")
	}
	return c.JSON(http.StatusOK, ws)
}

func (h *Handler) UpdateWorkspace(c echo.Context) error {
	var patch models.WorkspacePatch
	if err := c.Bind(&patch); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	id := c.Param("id")
	if !h.Store.UpdateWorkspace(id, patch) {
		return echo.NewHTTPError(http.StatusNotFound, "Workspace not found")
	}
	ws, _ := h.Store.Workspace(id)
	return c.JSON(http.StatusOK, ws)
}

func (h *Handler) DeleteWorkspace(c echo.Context) error {
	if err := requireConfirm(c); err != nil {
		return err
	}
	if !h.Store.DeleteWorkspace(c.Param("id")) {
		return echo.NewHTTPError(http.StatusNotFound, "Workspace not found")
	}
	return c.JSON(http.StatusOK, map[string]string{
		"message":             "Workspace deleted",
		"active_workspace_id": h.Store.ActiveID(),
	})
}

func (h *Handler) ActivateWorkspace(c echo.Context) error {
	if !h.Store.SetActive(c.Param("id")) {
		return echo.NewHTTPError(http.StatusNotFound, "Workspace not found")
	}
	return c.JSON(http.StatusOK, map[string]string{"active_workspace_id": c.Param("id")})
}

// UploadCover stores the cover in S3 when configured, otherwise inlines it
// as a data URI.
func (h *Handler) UploadCover(c echo.Context) error {
	id := c.Param("id")
	if _, ok := h.Store.Workspace(id); !ok {
		return echo.NewHTTPError(http.StatusNotFound, "Workspace not found")
	}

	file, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Cover file is required")
	}
	src, err := file.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Could not read cover file")
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Could not read cover file")
	}

	contentType := file.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}

	var coverURL string
	if h.Uploader != nil {
		coverURL, err = h.Uploader.Upload("covers", id+"_"+file.Filename, contentType, data)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "Cover upload failed")
		}
	} else {
		coverURL = fmt.Sprintf("data:%s;base64,%s", contentType, base64.StdEncoding.EncodeToString(data))
	}

	h.Store.UpdateWorkspace(id, models.WorkspacePatch{CoverImage: &coverURL})
	return c.JSON(http.StatusOK, map[string]string{"cover_image": coverURL})
}
