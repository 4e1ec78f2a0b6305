package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"novelweaver/models"
)

func (h *Handler) AddGlossaryItem(c echo.Context) error {
	var item models.GlossaryItem
	if err := c.Bind(&item); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if item.Term == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Glossary term is required")
	}

	created, ok := h.Store.AddGlossaryItem(c.Param("id"), item)
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "Workspace not found")
	}
	return c.JSON(http.StatusCreated, created)
}

func (h *Handler) UpdateGlossaryItem(c echo.Context) error {
	var patch models.GlossaryPatch
	if err := c.Bind(&patch); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if !h.Store.UpdateGlossaryItem(c.Param("id"), c.Param("itemID"), patch) {
		return echo.NewHTTPError(http.StatusNotFound, "Glossary item not found")
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Glossary item updated"})
}

func (h *Handler) DeleteGlossaryItem(c echo.Context) error {
	if !h.Store.DeleteGlossaryItem(c.Param("id"), c.Param("itemID")) {
		return echo.NewHTTPError(http.StatusNotFound, "Glossary item not found")
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Glossary item deleted"})
}

func (h *Handler) AddCharacter(c echo.Context) error {
	var character models.Character
	if err := c.Bind(&character); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if character.OriginalName == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Character name is required")
	}

	created, ok := h.Store.AddCharacter(c.Param("id"), character)
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "Workspace not found")
	}
	return c.JSON(http.StatusCreated, created)
}

func (h *Handler) UpdateCharacter(c echo.Context) error {
	var patch models.CharacterPatch
	if err := c.Bind(&patch); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if !h.Store.UpdateCharacter(c.Param("id"), c.Param("itemID"), patch) {
		return echo.NewHTTPError(http.StatusNotFound, "Character not found")
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Character updated"})
}

func (h *Handler) DeleteCharacter(c echo.Context) error {
	if !h.Store.DeleteCharacter(c.Param("id"), c.Param("itemID")) {
		return echo.NewHTTPError(http.StatusNotFound, "Character not found")
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Character deleted"})
}

func (h *Handler) AddRelationship(c echo.Context) error {
	var rel models.Relationship
	if err := c.Bind(&rel); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if rel.CharAID == "" || rel.CharBID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "Both characters are required")
	}

	created, ok := h.Store.AddRelationship(c.Param("id"), rel)
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "Workspace not found")
	}
	return c.JSON(http.StatusCreated, created)
}

func (h *Handler) UpdateRelationship(c echo.Context) error {
	var patch models.RelationshipPatch
	if err := c.Bind(&patch); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request body")
	}
	if !h.Store.UpdateRelationship(c.Param("id"), c.Param("itemID"), patch) {
		return echo.NewHTTPError(http.StatusNotFound, "Relationship not found")
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Relationship updated"})
}

func (h *Handler) DeleteRelationship(c echo.Context) error {
	if !h.Store.DeleteRelationship(c.Param("id"), c.Param("itemID")) {
		return echo.NewHTTPError(http.StatusNotFound, "Relationship not found")
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Relationship deleted"})
}
