// Package handlers exposes the workspace manager over HTTP.
package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"novelweaver/bridge"
	"novelweaver/crawler"
	"novelweaver/db"
	"novelweaver/store"
	"novelweaver/translator"
	"novelweaver/utils"
	"novelweaver/worker"
)

// Handler bundles the service dependencies behind the HTTP surface.
// Worker and Uploader may be nil; the affected endpoints fall back to
// inline processing. Gemini may be nil too, in which case the image
// endpoints report the feature unavailable.
type Handler struct {
	Store        *store.Store
	Hub          *bridge.Hub
	Crawler      *crawler.Crawler
	Orchestrator *translator.Orchestrator
	Gemini       *translator.Gemini
	Worker       *worker.Worker
	Autosaver    *db.Autosaver
	Uploader     *utils.S3Uploader
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/workspaces", h.ListWorkspaces)
	e.POST("/workspaces", h.CreateWorkspace)
	e.GET("/workspaces/:id", h.GetWorkspace)
	e.PATCH("/workspaces/:id", h.UpdateWorkspace)
	e.DELETE("/workspaces/:id", h.DeleteWorkspace)
	e.POST("/workspaces/:id/activate", h.ActivateWorkspace)
	e.POST("/workspaces/:id/cover", h.UploadCover)

	e.POST("/workspaces/:id/chapters", h.AddChapter)
	e.POST("/workspaces/:id/chapters/upload", h.UploadChapter)
	e.POST("/workspaces/:id/chapters/delete", h.DeleteChapters)
	e.GET("/workspaces/:id/chapters/:chapterID", h.GetChapter)
	e.PATCH("/workspaces/:id/chapters/:chapterID", h.UpdateChapter)
	e.DELETE("/workspaces/:id/chapters/:chapterID", h.DeleteChapter)
	e.POST("/workspaces/:id/chapters/:chapterID/translate", h.TranslateChapter)

	e.POST("/workspaces/:id/glossary", h.AddGlossaryItem)
	e.PATCH("/workspaces/:id/glossary/:itemID", h.UpdateGlossaryItem)
	e.DELETE("/workspaces/:id/glossary/:itemID", h.DeleteGlossaryItem)

	e.POST("/workspaces/:id/characters", h.AddCharacter)
	e.PATCH("/workspaces/:id/characters/:itemID", h.UpdateCharacter)
	e.DELETE("/workspaces/:id/characters/:itemID", h.DeleteCharacter)

	e.POST("/workspaces/:id/relationships", h.AddRelationship)
	e.PATCH("/workspaces/:id/relationships/:itemID", h.UpdateRelationship)
	e.DELETE("/workspaces/:id/relationships/:itemID", h.DeleteRelationship)

	e.POST("/workspaces/:id/scrape", h.ScrapeChapter)
	e.POST("/workspaces/:id/scrape-toc", h.ScrapeTOC)
	e.POST("/workspaces/:id/translate-scratchpad", h.TranslateScratchpad)

	e.GET("/workspaces/:id/epub", h.DownloadEpub)
	e.GET("/workspaces/:id/fork", h.ForkExport)

	e.POST("/image/analyze", h.AnalyzeImage)
	e.POST("/image/generate", h.GenerateImage)

	e.GET("/bridge/status", h.BridgeStatus)
	e.GET("/ws", bridge.WSHandler(h.Hub))

	e.GET("/save-status", h.SaveStatus)
	e.POST("/save", h.Save)
}

// requireConfirm guards destructive deletes: the client must send
// ?confirm=true (or "confirm": true in the body for bulk operations).
func requireConfirm(c echo.Context) error {
	if c.QueryParam("confirm") != "true" {
		return echo.NewHTTPError(http.StatusBadRequest, "Destructive operation requires confirm=true")
	}
	return nil
}
