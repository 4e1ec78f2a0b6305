package models

// Patch types replace free-form field/value updates: each nil pointer leaves
// the current value untouched, each set pointer overwrites exactly one field.

type WorkspacePatch struct {
	Name           *string            `json:"name,omitempty"`
	Author         *string            `json:"author,omitempty"`
	Genres         *[]string          `json:"genres,omitempty"`
	Description    *string            `json:"description,omitempty"`
	CoverImage     *string            `json:"cover_image,omitempty"`
	SourceText     *string            `json:"source_text,omitempty"`
	TranslatedText *string            `json:"translated_text,omitempty"`
	ScrapedURL     *string            `json:"scraped_url,omitempty"`
	CSSSelector    *string            `json:"css_selector,omitempty"`
	Config         *TranslationConfig `json:"config,omitempty"`
	Settings       *WorkspaceSettings `json:"settings,omitempty"`
	Stats          *WorkspaceStats    `json:"stats,omitempty"`
}

func (p WorkspacePatch) Apply(w *Workspace) {
	if p.Name != nil {
		w.Name = *p.Name
	}
	if p.Author != nil {
		w.Author = *p.Author
	}
	if p.Genres != nil {
		w.Genres = *p.Genres
	}
	if p.Description != nil {
		w.Description = *p.Description
	}
	if p.CoverImage != nil {
		w.CoverImage = *p.CoverImage
	}
	if p.SourceText != nil {
		w.SourceText = *p.SourceText
	}
	if p.TranslatedText != nil {
		w.TranslatedText = *p.TranslatedText
	}
	if p.ScrapedURL != nil {
		w.ScrapedURL = *p.ScrapedURL
	}
	if p.CSSSelector != nil {
		w.CSSSelector = *p.CSSSelector
	}
	if p.Config != nil {
		w.Config = *p.Config
	}
	if p.Settings != nil {
		w.Settings = *p.Settings
	}
	if p.Stats != nil {
		w.Stats = *p.Stats
	}
}

type ChapterPatch struct {
	Index               *int           `json:"index,omitempty"`
	Title               *string        `json:"title,omitempty"`
	TranslatedTitle     *string        `json:"translated_title,omitempty"`
	Status              *ChapterStatus `json:"status,omitempty"`
	SourceText          *string        `json:"source_text,omitempty"`
	SourceURL           *string        `json:"source_url,omitempty"`
	TranslatedText      *string        `json:"translated_text,omitempty"`
	SourceWordCount     *int           `json:"source_word_count,omitempty"`
	TranslatedWordCount *int           `json:"translated_word_count,omitempty"`
}

func (p ChapterPatch) Apply(c *Chapter) {
	if p.Index != nil {
		c.Index = *p.Index
	}
	if p.Title != nil {
		c.Title = *p.Title
	}
	if p.TranslatedTitle != nil {
		c.TranslatedTitle = *p.TranslatedTitle
	}
	if p.Status != nil {
		c.Status = *p.Status
	}
	if p.SourceText != nil {
		c.SourceText = *p.SourceText
	}
	if p.SourceURL != nil {
		c.SourceURL = *p.SourceURL
	}
	if p.TranslatedText != nil {
		c.TranslatedText = *p.TranslatedText
	}
	if p.SourceWordCount != nil {
		c.SourceWordCount = *p.SourceWordCount
	}
	if p.TranslatedWordCount != nil {
		c.TranslatedWordCount = *p.TranslatedWordCount
	}
}

type GlossaryPatch struct {
	Term        *string       `json:"term,omitempty"`
	Translation *string       `json:"translation,omitempty"`
	Type        *GlossaryType `json:"type,omitempty"`
	Context     *string       `json:"context,omitempty"`
}

func (p GlossaryPatch) Apply(g *GlossaryItem) {
	if p.Term != nil {
		g.Term = *p.Term
	}
	if p.Translation != nil {
		g.Translation = *p.Translation
	}
	if p.Type != nil {
		g.Type = *p.Type
	}
	if p.Context != nil {
		g.Context = *p.Context
	}
}

type CharacterPatch struct {
	OriginalName   *string        `json:"original_name,omitempty"`
	TranslatedName *string        `json:"translated_name,omitempty"`
	Gender         *Gender        `json:"gender,omitempty"`
	Role           *CharacterRole `json:"role,omitempty"`
	Description    *string        `json:"description,omitempty"`
}

func (p CharacterPatch) Apply(c *Character) {
	if p.OriginalName != nil {
		c.OriginalName = *p.OriginalName
	}
	if p.TranslatedName != nil {
		c.TranslatedName = *p.TranslatedName
	}
	if p.Gender != nil {
		c.Gender = *p.Gender
	}
	if p.Role != nil {
		c.Role = *p.Role
	}
	if p.Description != nil {
		c.Description = *p.Description
	}
}

type RelationshipPatch struct {
	CharAID      *string `json:"char_a_id,omitempty"`
	CharBID      *string `json:"char_b_id,omitempty"`
	Relation     *string `json:"relation,omitempty"`
	CallAtoB     *string `json:"call_a_to_b,omitempty"`
	CallBtoA     *string `json:"call_b_to_a,omitempty"`
	ChapterRange *string `json:"chapter_range,omitempty"`
}

func (p RelationshipPatch) Apply(r *Relationship) {
	if p.CharAID != nil {
		r.CharAID = *p.CharAID
	}
	if p.CharBID != nil {
		r.CharBID = *p.CharBID
	}
	if p.Relation != nil {
		r.Relation = *p.Relation
	}
	if p.CallAtoB != nil {
		r.CallAtoB = *p.CallAtoB
	}
	if p.CallBtoA != nil {
		r.CallBtoA = *p.CallBtoA
	}
	if p.ChapterRange != nil {
		r.ChapterRange = *p.ChapterRange
	}
}
