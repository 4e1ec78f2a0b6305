package models

import (
	"strings"
	"time"
)

type ChapterStatus string

const (
	ChapterPending     ChapterStatus = "pending"
	ChapterTranslating ChapterStatus = "translating"
	ChapterCompleted   ChapterStatus = "completed"
	ChapterError       ChapterStatus = "error"
)

type GlossaryType string

const (
	GlossaryTerm     GlossaryType = "term"
	GlossaryName     GlossaryType = "name"
	GlossaryLocation GlossaryType = "location"
	GlossarySkill    GlossaryType = "skill"
	GlossaryItemKind GlossaryType = "item"
	GlossaryOther    GlossaryType = "other"
	GlossaryPronoun  GlossaryType = "pronoun"
)

type Gender string

const (
	GenderMale    Gender = "male"
	GenderFemale  Gender = "female"
	GenderOther   Gender = "other"
	GenderUnknown Gender = "unknown"
)

type CharacterRole string

const (
	RoleMain       CharacterRole = "main"
	RoleSupporting CharacterRole = "supporting"
	RoleVillain    CharacterRole = "villain"
	RoleMob        CharacterRole = "mob"
)

type ModelProvider string

const (
	ProviderGemini   ModelProvider = "Gemini"
	ProviderChatGPT  ModelProvider = "ChatGPT"
	ProviderOllama   ModelProvider = "Ollama"
	ProviderLMStudio ModelProvider = "LM Studio"
)

type CloudProvider string

const (
	CloudInternal    CloudProvider = "internal"
	CloudGoogleDrive CloudProvider = "google_drive"
	CloudDropbox     CloudProvider = "dropbox"
)

type TranslationConfig struct {
	SourceLang  string        `json:"source_lang"`
	TargetLang  string        `json:"target_lang"`
	Model       ModelProvider `json:"model"`
	Temperature float64       `json:"temperature"`
}

type WorkspaceSettings struct {
	PublicAccess      bool          `json:"public_access"`
	AllowEpub         bool          `json:"allow_epub"`
	AllowContribution bool          `json:"allow_contribution"`
	AutoSync          bool          `json:"auto_sync"`
	CloudProvider     CloudProvider `json:"cloud_provider"`
	WebhookURL        string        `json:"webhook_url,omitempty"`
	WebhookKey        string        `json:"webhook_key,omitempty"`
}

type WorkspaceStats struct {
	Likes    int `json:"likes"`
	Comments int `json:"comments"`
}

type ChapterProgress struct {
	Current int `json:"current"`
	Total   int `json:"total"`
}

type Chapter struct {
	ID                  string        `json:"id"`
	Index               int           `json:"index"`
	Title               string        `json:"title"`
	TranslatedTitle     string        `json:"translated_title,omitempty"`
	Status              ChapterStatus `json:"status"`
	SourceText          string        `json:"source_text"`
	SourceURL           string        `json:"source_url,omitempty"`
	TranslatedText      string        `json:"translated_text"`
	SourceWordCount     int           `json:"source_word_count"`
	TranslatedWordCount int           `json:"translated_word_count"`
	LastModified        time.Time     `json:"last_modified"`
}

type GlossaryItem struct {
	ID          string       `json:"id"`
	Term        string       `json:"term"`
	Translation string       `json:"translation"`
	Type        GlossaryType `json:"type"`
	Context     string       `json:"context,omitempty"`
}

type Character struct {
	ID             string        `json:"id"`
	OriginalName   string        `json:"original_name"`
	TranslatedName string        `json:"translated_name"`
	Gender         Gender        `json:"gender"`
	Role           CharacterRole `json:"role"`
	Description    string        `json:"description,omitempty"`
}

type Relationship struct {
	ID           string `json:"id"`
	CharAID      string `json:"char_a_id"`
	CharBID      string `json:"char_b_id"`
	Relation     string `json:"relation"`
	CallAtoB     string `json:"call_a_to_b"`
	CallBtoA     string `json:"call_b_to_a"`
	ChapterRange string `json:"chapter_range"`
}

type Workspace struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Author      string   `json:"author,omitempty"`
	Genres      []string `json:"genres,omitempty"`
	Description string   `json:"description,omitempty"`
	CoverImage  string   `json:"cover_image,omitempty"`

	// Scratchpad fields, read by the EPUB exporter.
	SourceText     string `json:"source_text"`
	TranslatedText string `json:"translated_text"`

	ScrapedURL  string `json:"scraped_url,omitempty"`
	CSSSelector string `json:"css_selector,omitempty"`

	Chapters      []Chapter      `json:"chapters"`
	Glossary      []GlossaryItem `json:"glossary"`
	Characters    []Character    `json:"characters"`
	Relationships []Relationship `json:"relationships"`

	Config   TranslationConfig `json:"config"`
	Settings WorkspaceSettings `json:"settings"`
	Stats    WorkspaceStats    `json:"stats"`

	ChapterProgress ChapterProgress `json:"chapter_progress"`
	CreatedAt       time.Time       `json:"created_at"`
	LastModified    time.Time       `json:"last_modified"`
}

// CountWords counts whitespace-delimited non-empty tokens.
func CountWords(text string) int {
	return len(strings.Fields(text))
}
