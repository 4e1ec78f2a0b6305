package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"novelweaver/crawler"
	"novelweaver/logutils"
	"novelweaver/models"
)

type scrapeRequest struct {
	URL      string `json:"url"`
	Selector string `json:"selector"`
	Range    string `json:"range"`
}

// ScrapeChapter fetches one page, extracts its text, and prepends it as a
// new chapter. The URL and selector are remembered on the workspace for the
// next scrape.
func (h *Handler) ScrapeChapter(c echo.Context) error {
	var req scrapeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if req.URL == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "URL is required")
	}

	id := c.Param("id")
	ws, ok := h.Store.Workspace(id)
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "Workspace not found")
	}

	html, err := h.Crawler.FetchHTML(c.Request().Context(), req.URL)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	}

	content, err := crawler.ExtractText(html, req.Selector)
	if err != nil {
		var notFound *crawler.SelectorNotFoundError
		if errors.As(err, &notFound) {
			return echo.NewHTTPError(http.StatusUnprocessableEntity, notFound.Error())
		}
		return echo.NewHTTPError(http.StatusBadGateway, "Failed to parse page")
	}

	index := len(ws.Chapters) + 1
	ch := h.Store.NewChapter(index, fmt.Sprintf("Scraped Chapter %d", index), content, req.URL)
	h.Store.AddChapter(id, ch, true)
	h.Store.UpdateWorkspace(id, models.WorkspacePatch{
		ScrapedURL:  &req.URL,
		CSSSelector: &req.Selector,
	})

	return c.JSON(http.StatusCreated, ch)
}

// ScrapeTOC fetches a table-of-contents page and appends one pending chapter
// per discovered link. Source text is fetched later, via the worker when one
// is running.
func (h *Handler) ScrapeTOC(c echo.Context) error {
	var req scrapeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if req.URL == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "URL is required")
	}

	id := c.Param("id")
	ws, ok := h.Store.Workspace(id)
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "Workspace not found")
	}

	html, err := h.Crawler.FetchHTML(c.Request().Context(), req.URL)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	}

	links, err := crawler.ExtractChapterLinks(html, req.Selector, req.URL)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, "Failed to parse page")
	}
	if len(links) == 0 {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "No chapters found. Please check your CSS selector.")
	}

	links, err = applyRange(links, req.Range)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	offset := len(ws.Chapters)
	chapters := make([]models.Chapter, 0, len(links))
	for i, link := range links {
		chapters = append(chapters, h.Store.NewChapter(offset+i+1, link.Title, "", link.URL))
	}
	h.Store.AddChapters(id, chapters)
	h.Store.UpdateWorkspace(id, models.WorkspacePatch{
		ScrapedURL:  &req.URL,
		CSSSelector: &req.Selector,
	})

	if h.Worker != nil {
		for _, ch := range chapters {
			if err := h.Worker.EnqueueFetch(id, ch.ID, ch.SourceURL, ""); err != nil {
				logutils.Log.WithError(err).WithField("url", ch.SourceURL).Error("enqueueing chapter fetch")
			}
		}
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"added":    len(chapters),
		"chapters": chapters,
	})
}

// applyRange narrows a chapter list to a 1-based inclusive selection like
// "1-100" or "5". An empty range keeps everything.
func applyRange(links []crawler.ChapterLink, rangeSpec string) ([]crawler.ChapterLink, error) {
	rangeSpec = strings.TrimSpace(rangeSpec)
	if rangeSpec == "" {
		return links, nil
	}

	start, end := 0, 0
	if i := strings.Index(rangeSpec, "-"); i >= 0 {
		var err1, err2 error
		start, err1 = strconv.Atoi(strings.TrimSpace(rangeSpec[:i]))
		end, err2 = strconv.Atoi(strings.TrimSpace(rangeSpec[i+1:]))
		if err1 != nil || err2 != nil {
			return nil, fmt.Errorf("invalid chapter range %q", rangeSpec)
		}
	} else {
		n, err := strconv.Atoi(rangeSpec)
		if err != nil {
			return nil, fmt.Errorf("invalid chapter range %q", rangeSpec)
		}
		start, end = n, n
	}

	if start < 1 || end < start {
		return nil, fmt.Errorf("invalid chapter range %q", rangeSpec)
	}
	if start > len(links) {
		return []crawler.ChapterLink{}, nil
	}
	if end > len(links) {
		end = len(links)
	}
	return links[start-1 : end], nil
}
