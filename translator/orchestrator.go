package translator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"novelweaver/logutils"
	"novelweaver/models"
	"novelweaver/store"
)

// ErrAlreadyTranslating rejects a re-trigger while a chapter is mid-stream.
var ErrAlreadyTranslating = errors.New("chapter translation already in progress")

// translationFailedText replaces the chapter body when a stream fails, so
// the UI surfaces the failure where the reader looks.
const translationFailedText = "Error: Failed to generate translation."

// Orchestrator drives chapter translations: it assembles the prompt, picks a
// provider, and folds the fragment stream back into the store.
type Orchestrator struct {
	store    *store.Store
	gemini   Provider
	fallback Provider
}

// NewOrchestrator wires the providers. gemini may be nil when no API key is
// configured; fallback handles every other model choice.
func NewOrchestrator(st *store.Store, gemini, fallback Provider) *Orchestrator {
	return &Orchestrator{store: st, gemini: gemini, fallback: fallback}
}

func (o *Orchestrator) pick(config models.TranslationConfig) (Provider, error) {
	if config.Model == models.ProviderGemini && o.gemini != nil {
		return o.gemini, nil
	}
	if o.fallback != nil {
		return o.fallback, nil
	}
	if o.gemini != nil {
		return o.gemini, nil
	}
	return nil, errors.New("no translation provider configured")
}

// TranslateChapter translates one chapter, streaming partial text into the
// store as fragments arrive. Empty source text is a no-op; a chapter already
// translating is rejected.
func (o *Orchestrator) TranslateChapter(ctx context.Context, workspaceID, chapterID string) error {
	ws, ok := o.store.Workspace(workspaceID)
	if !ok {
		return fmt.Errorf("workspace %s not found", workspaceID)
	}
	ch, ok := o.store.Chapter(workspaceID, chapterID)
	if !ok {
		return fmt.Errorf("chapter %s not found in workspace %s", chapterID, workspaceID)
	}

	if strings.TrimSpace(ch.SourceText) == "" {
		return nil
	}

	provider, err := o.pick(ws.Config)
	if err != nil {
		return err
	}

	// The claim is atomic: of any concurrent triggers exactly one proceeds,
	// the rest are rejected here.
	ch, claimed := o.store.BeginTranslation(workspaceID, chapterID)
	if !claimed {
		return ErrAlreadyTranslating
	}

	req := Request{
		Prompt:     BuildPrompt(ws.Config, ws.Glossary, ch.SourceText),
		SourceText: ch.SourceText,
		Config:     ws.Config,
	}
	fragments, err := provider.Stream(ctx, req)
	if err != nil {
		return o.failChapter(workspaceID, chapterID, provider.Name(), err)
	}

	var builder strings.Builder
	for f := range fragments {
		if f.Err != nil {
			return o.failChapter(workspaceID, chapterID, provider.Name(), f.Err)
		}
		builder.WriteString(f.Text)
		partial := builder.String()
		o.store.UpdateChapter(workspaceID, chapterID, models.ChapterPatch{
			TranslatedText: &partial,
		})
	}
	if err := ctx.Err(); err != nil {
		return o.failChapter(workspaceID, chapterID, provider.Name(), err)
	}

	completed := models.ChapterCompleted
	words := models.CountWords(builder.String())
	o.store.UpdateChapter(workspaceID, chapterID, models.ChapterPatch{
		Status:              &completed,
		TranslatedWordCount: &words,
	})
	return nil
}

func (o *Orchestrator) failChapter(workspaceID, chapterID, provider string, cause error) error {
	failed := models.ChapterError
	placeholder := translationFailedText
	o.store.UpdateChapter(workspaceID, chapterID, models.ChapterPatch{
		Status:         &failed,
		TranslatedText: &placeholder,
	})
	logutils.Log.WithError(cause).WithFields(logutils.Fields{
		"workspace": workspaceID,
		"chapter":   chapterID,
		"provider":  provider,
	}).Error("chapter translation failed")
	return fmt.Errorf("translating chapter %s: %w", chapterID, cause)
}

// TranslateScratchpad translates the workspace-level source scratchpad into
// its translated counterpart.
func (o *Orchestrator) TranslateScratchpad(ctx context.Context, workspaceID string) error {
	ws, ok := o.store.Workspace(workspaceID)
	if !ok {
		return fmt.Errorf("workspace %s not found", workspaceID)
	}
	if strings.TrimSpace(ws.SourceText) == "" {
		return nil
	}

	provider, err := o.pick(ws.Config)
	if err != nil {
		return err
	}

	empty := ""
	o.store.UpdateWorkspace(workspaceID, models.WorkspacePatch{TranslatedText: &empty})

	req := Request{
		Prompt:     BuildPrompt(ws.Config, ws.Glossary, ws.SourceText),
		SourceText: ws.SourceText,
		Config:     ws.Config,
	}
	fragments, err := provider.Stream(ctx, req)
	if err != nil {
		return o.failScratchpad(workspaceID, provider.Name(), err)
	}

	var builder strings.Builder
	for f := range fragments {
		if f.Err != nil {
			return o.failScratchpad(workspaceID, provider.Name(), f.Err)
		}
		builder.WriteString(f.Text)
		partial := builder.String()
		o.store.UpdateWorkspace(workspaceID, models.WorkspacePatch{TranslatedText: &partial})
	}
	if err := ctx.Err(); err != nil {
		return o.failScratchpad(workspaceID, provider.Name(), err)
	}
	return nil
}

func (o *Orchestrator) failScratchpad(workspaceID, provider string, cause error) error {
	placeholder := translationFailedText
	o.store.UpdateWorkspace(workspaceID, models.WorkspacePatch{TranslatedText: &placeholder})
	logutils.Log.WithError(cause).WithFields(logutils.Fields{
		"workspace": workspaceID,
		"provider":  provider,
	}).Error("scratchpad translation failed")
	return fmt.Errorf("translating scratchpad: %w", cause)
}
