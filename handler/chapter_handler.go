package handlers

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"novelweaver/logutils"
	"novelweaver/models"
)

type addChapterRequest struct {
	Index      int    `json:"index"`
	Title      string `json:"title"`
	SourceText string `json:"source_text"`
	SourceURL  string `json:"source_url"`
	Prepend    bool   `json:"prepend"`
}

func (h *Handler) AddChapter(c echo.Context) error {
	var req addChapterRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	id := c.Param("id")
	ws, ok := h.Store.Workspace(id)
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "Workspace not found")
	}

	if req.Index <= 0 {
		req.Index = len(ws.Chapters) + 1
	}
	ch := h.Store.NewChapter(req.Index, req.Title, req.SourceText, req.SourceURL)
	h.Store.AddChapter(id, ch, req.Prepend)
	return c.JSON(http.StatusCreated, ch)
}

// UploadChapter imports a text file as a new chapter, using the filename
// (minus extension) as the title.
func (h *Handler) UploadChapter(c echo.Context) error {
	id := c.Param("id")
	ws, ok := h.Store.Workspace(id)
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "Workspace not found")
	}

	file, err := c.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Chapter file is required")
	}
	src, err := file.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Could not read chapter file")
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Could not read chapter file")
	}

	title := strings.TrimSuffix(file.Filename, ".txt")
	ch := h.Store.NewChapter(len(ws.Chapters)+1, title, string(data), "")
	h.Store.AddChapter(id, ch, false)
	return c.JSON(http.StatusCreated, ch)
}

func (h *Handler) GetChapter(c echo.Context) error {
	ch, ok := h.Store.Chapter(c.Param("id"), c.Param("chapterID"))
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "Chapter not found")
	}
	return c.JSON(http.StatusOK, ch)
}

func (h *Handler) UpdateChapter(c echo.Context) error {
	var patch models.ChapterPatch
	if err := c.Bind(&patch); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}

	id, chapterID := c.Param("id"), c.Param("chapterID")

	// Recount source words when the source text changes.
	if patch.SourceText != nil && patch.SourceWordCount == nil {
		words := models.CountWords(*patch.SourceText)
		patch.SourceWordCount = &words
	}

	if !h.Store.UpdateChapter(id, chapterID, patch) {
		return echo.NewHTTPError(http.StatusNotFound, "Chapter not found")
	}
	ch, _ := h.Store.Chapter(id, chapterID)
	return c.JSON(http.StatusOK, ch)
}

func (h *Handler) DeleteChapter(c echo.Context) error {
	if err := requireConfirm(c); err != nil {
		return err
	}
	if !h.Store.DeleteChapter(c.Param("id"), c.Param("chapterID")) {
		return echo.NewHTTPError(http.StatusNotFound, "Chapter not found")
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Chapter deleted"})
}

type bulkDeleteRequest struct {
	IDs     []string `json:"ids"`
	Confirm bool     `json:"confirm"`
}

func (h *Handler) DeleteChapters(c echo.Context) error {
	var req bulkDeleteRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if !req.Confirm {
		return echo.NewHTTPError(http.StatusBadRequest, "Destructive operation requires confirm=true")
	}

	id := c.Param("id")
	if _, ok := h.Store.Workspace(id); !ok {
		return echo.NewHTTPError(http.StatusNotFound, "Workspace not found")
	}

	removed := h.Store.DeleteChapters(id, req.IDs)
	return c.JSON(http.StatusOK, map[string]int{"deleted": removed})
}

// TranslateChapter kicks off a translation. With a worker the job goes to
// the queue; otherwise it runs in the background inline.
func (h *Handler) TranslateChapter(c echo.Context) error {
	id, chapterID := c.Param("id"), c.Param("chapterID")

	ch, ok := h.Store.Chapter(id, chapterID)
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "Chapter not found")
	}
	if ch.Status == models.ChapterTranslating {
		return echo.NewHTTPError(http.StatusConflict, "Chapter translation already in progress")
	}
	if strings.TrimSpace(ch.SourceText) == "" {
		return c.JSON(http.StatusOK, map[string]string{"message": "Nothing to translate"})
	}

	if h.Worker != nil {
		if err := h.Worker.EnqueueTranslation(id, chapterID); err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "Failed to enqueue translation")
		}
	} else {
		go func() {
			if err := h.Orchestrator.TranslateChapter(context.Background(), id, chapterID); err != nil {
				logutils.Log.WithError(err).Error("background translation failed")
			}
		}()
	}
	return c.JSON(http.StatusAccepted, map[string]string{"message": "Translation started"})
}

func (h *Handler) TranslateScratchpad(c echo.Context) error {
	id := c.Param("id")
	ws, ok := h.Store.Workspace(id)
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "Workspace not found")
	}
	if strings.TrimSpace(ws.SourceText) == "" {
		return c.JSON(http.StatusOK, map[string]string{"message": "Nothing to translate"})
	}

	go func() {
		if err := h.Orchestrator.TranslateScratchpad(context.Background(), id); err != nil {
			logutils.Log.WithError(err).Error("scratchpad translation failed")
		}
	}()
	return c.JSON(http.StatusAccepted, map[string]string{"message": "Translation started"})
}
