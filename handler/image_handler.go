package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type analyzeImageRequest struct {
	Image    string `json:"image"`
	MimeType string `json:"mime_type"`
	Prompt   string `json:"prompt"`
}

type generateImageRequest struct {
	Prompt      string `json:"prompt"`
	AspectRatio string `json:"aspect_ratio"`
}

// AnalyzeImage describes an uploaded image (base64 + mime type) for the
// image studio panel.
func (h *Handler) AnalyzeImage(c echo.Context) error {
	if h.Gemini == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "Image analysis requires a configured Gemini API key")
	}

	var req analyzeImageRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if req.Image == "" || req.MimeType == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "image and mime_type are required")
	}

	text, err := h.Gemini.AnalyzeImage(c.Request().Context(), req.Image, req.MimeType, req.Prompt)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"text": text})
}

// GenerateImage renders an illustration for a prompt and returns it as a
// data URI the client can drop straight into an <img> tag.
func (h *Handler) GenerateImage(c echo.Context) error {
	if h.Gemini == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "Image generation requires a configured Gemini API key")
	}

	var req generateImageRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if req.Prompt == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "prompt is required")
	}

	image, err := h.Gemini.GenerateImage(c.Request().Context(), req.Prompt, req.AspectRatio)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"image": image})
}
