// Package store holds the in-memory workspace graph. It is the only writer of
// workspace state; every other component reads from it or mutates through it.
package store

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"novelweaver/models"
)

type Store struct {
	mu         sync.RWMutex
	workspaces []models.Workspace
	activeID   string

	now   func() time.Time
	newID func() string
}

func New() *Store {
	return &Store{
		now:   func() time.Time { return time.Now().UTC() },
		newID: uuid.NewString,
	}
}

// NewWithClock lets tests pin timestamps.
func NewWithClock(now func() time.Time) *Store {
	s := New()
	s.now = now
	return s
}

// Reset replaces the whole graph, typically from a loaded snapshot.
func (s *Store) Reset(workspaces []models.Workspace, activeID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.workspaces = cloneWorkspaces(workspaces)
	s.activeID = activeID
	if s.findLocked(s.activeID) == nil {
		s.activeID = ""
	}
}

// Snapshot returns a deep copy of the graph for serialization.
func (s *Store) Snapshot() ([]models.Workspace, string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneWorkspaces(s.workspaces), s.activeID
}

func (s *Store) Workspaces() []models.Workspace {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneWorkspaces(s.workspaces)
}

func (s *Store) Workspace(id string) (models.Workspace, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	w := s.findLocked(id)
	if w == nil {
		return models.Workspace{}, false
	}
	return cloneWorkspace(*w), true
}

func (s *Store) ActiveID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeID
}

func (s *Store) SetActive(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.findLocked(id) == nil {
		return false
	}
	s.activeID = id
	return true
}

func (s *Store) CreateWorkspace(name, author string, genres []string, sourceLang, targetLang string) models.Workspace {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	w := models.Workspace{
		ID:            s.newID(),
		Name:          name,
		Author:        author,
		Genres:        append([]string(nil), genres...),
		Chapters:      []models.Chapter{},
		Glossary:      []models.GlossaryItem{},
		Characters:    []models.Character{},
		Relationships: []models.Relationship{},
		Config: models.TranslationConfig{
			SourceLang:  sourceLang,
			TargetLang:  targetLang,
			Model:       models.ProviderGemini,
			Temperature: 0.7,
		},
		Settings: models.WorkspaceSettings{
			PublicAccess:      false,
			AllowEpub:         true,
			AllowContribution: false,
			AutoSync:          true,
			CloudProvider:     models.CloudInternal,
		},
		Stats:           models.WorkspaceStats{},
		ChapterProgress: models.ChapterProgress{},
		CreatedAt:       now,
		LastModified:    now,
	}

	s.workspaces = append(s.workspaces, w)
	s.activeID = w.ID
	return cloneWorkspace(w)
}

func (s *Store) UpdateWorkspace(id string, p models.WorkspacePatch) bool {
	return s.mutate(id, func(w *models.Workspace) {
		p.Apply(w)
	})
}

// DeleteWorkspace removes the workspace and all owned collections. When the
// active workspace is deleted the active id falls back to the first remaining
// workspace, or to the empty sentinel when none remain.
func (s *Store) DeleteWorkspace(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i := range s.workspaces {
		if s.workspaces[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false
	}

	s.workspaces = append(s.workspaces[:idx], s.workspaces[idx+1:]...)
	if s.activeID == id {
		if len(s.workspaces) > 0 {
			s.activeID = s.workspaces[0].ID
		} else {
			s.activeID = ""
		}
	}
	return true
}

// NewChapter builds a chapter owned by nobody yet; callers hand it to
// AddChapter or AddChapters.
func (s *Store) NewChapter(index int, title, sourceText, sourceURL string) models.Chapter {
	return models.Chapter{
		ID:              s.newID(),
		Index:           index,
		Title:           title,
		Status:          models.ChapterPending,
		SourceText:      sourceText,
		SourceURL:       sourceURL,
		SourceWordCount: models.CountWords(sourceText),
		LastModified:    s.now(),
	}
}

// AddChapter inserts one chapter, prepended when prepend is set (scraped
// single chapters appear most-recent-first).
func (s *Store) AddChapter(workspaceID string, ch models.Chapter, prepend bool) bool {
	return s.mutate(workspaceID, func(w *models.Workspace) {
		if prepend {
			w.Chapters = append([]models.Chapter{ch}, w.Chapters...)
		} else {
			w.Chapters = append(w.Chapters, ch)
		}
	})
}

// AddChapters appends a batch in the given order (TOC import).
func (s *Store) AddChapters(workspaceID string, chs []models.Chapter) bool {
	return s.mutate(workspaceID, func(w *models.Workspace) {
		w.Chapters = append(w.Chapters, chs...)
	})
}

func (s *Store) Chapter(workspaceID, chapterID string) (models.Chapter, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	w := s.findLocked(workspaceID)
	if w == nil {
		return models.Chapter{}, false
	}
	for i := range w.Chapters {
		if w.Chapters[i].ID == chapterID {
			return w.Chapters[i], true
		}
	}
	return models.Chapter{}, false
}

func (s *Store) UpdateChapter(workspaceID, chapterID string, p models.ChapterPatch) bool {
	found := false
	s.mutate(workspaceID, func(w *models.Workspace) {
		for i := range w.Chapters {
			if w.Chapters[i].ID == chapterID {
				p.Apply(&w.Chapters[i])
				w.Chapters[i].LastModified = s.now()
				found = true
				return
			}
		}
	})
	return found
}

// BeginTranslation claims a chapter for translation. The translating check
// and the status write share one critical section, so of any number of
// concurrent triggers exactly one claims the chapter; the rest report false.
// A successful claim sets the status to translating, clears the translated
// text, and returns the pre-claim chapter.
func (s *Store) BeginTranslation(workspaceID, chapterID string) (models.Chapter, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w := s.findLocked(workspaceID)
	if w == nil {
		return models.Chapter{}, false
	}
	for i := range w.Chapters {
		if w.Chapters[i].ID != chapterID {
			continue
		}
		if w.Chapters[i].Status == models.ChapterTranslating {
			return models.Chapter{}, false
		}
		claimed := w.Chapters[i]
		w.Chapters[i].Status = models.ChapterTranslating
		w.Chapters[i].TranslatedText = ""
		w.Chapters[i].LastModified = s.now()
		refreshProgress(w)
		w.LastModified = s.now()
		return claimed, true
	}
	return models.Chapter{}, false
}

func (s *Store) DeleteChapter(workspaceID, chapterID string) bool {
	return s.DeleteChapters(workspaceID, []string{chapterID}) == 1
}

// DeleteChapters removes exactly the chapters whose ids are listed and
// reports how many were removed.
func (s *Store) DeleteChapters(workspaceID string, ids []string) int {
	drop := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}

	removed := 0
	s.mutate(workspaceID, func(w *models.Workspace) {
		kept := w.Chapters[:0]
		for _, ch := range w.Chapters {
			if _, ok := drop[ch.ID]; ok {
				removed++
				continue
			}
			kept = append(kept, ch)
		}
		w.Chapters = kept
	})
	return removed
}

func (s *Store) AddGlossaryItem(workspaceID string, item models.GlossaryItem) (models.GlossaryItem, bool) {
	item.ID = s.newID()
	if item.Type == "" {
		item.Type = models.GlossaryTerm
	}
	ok := s.mutate(workspaceID, func(w *models.Workspace) {
		w.Glossary = append([]models.GlossaryItem{item}, w.Glossary...)
	})
	return item, ok
}

func (s *Store) UpdateGlossaryItem(workspaceID, id string, p models.GlossaryPatch) bool {
	found := false
	s.mutate(workspaceID, func(w *models.Workspace) {
		for i := range w.Glossary {
			if w.Glossary[i].ID == id {
				p.Apply(&w.Glossary[i])
				found = true
				return
			}
		}
	})
	return found
}

func (s *Store) DeleteGlossaryItem(workspaceID, id string) bool {
	found := false
	s.mutate(workspaceID, func(w *models.Workspace) {
		for i := range w.Glossary {
			if w.Glossary[i].ID == id {
				w.Glossary = append(w.Glossary[:i], w.Glossary[i+1:]...)
				found = true
				return
			}
		}
	})
	return found
}

func (s *Store) AddCharacter(workspaceID string, c models.Character) (models.Character, bool) {
	c.ID = s.newID()
	if c.Gender == "" {
		c.Gender = models.GenderUnknown
	}
	if c.Role == "" {
		c.Role = models.RoleSupporting
	}
	ok := s.mutate(workspaceID, func(w *models.Workspace) {
		w.Characters = append([]models.Character{c}, w.Characters...)
	})
	return c, ok
}

func (s *Store) UpdateCharacter(workspaceID, id string, p models.CharacterPatch) bool {
	found := false
	s.mutate(workspaceID, func(w *models.Workspace) {
		for i := range w.Characters {
			if w.Characters[i].ID == id {
				p.Apply(&w.Characters[i])
				found = true
				return
			}
		}
	})
	return found
}

func (s *Store) DeleteCharacter(workspaceID, id string) bool {
	found := false
	s.mutate(workspaceID, func(w *models.Workspace) {
		for i := range w.Characters {
			if w.Characters[i].ID == id {
				w.Characters = append(w.Characters[:i], w.Characters[i+1:]...)
				found = true
				return
			}
		}
	})
	return found
}

func (s *Store) AddRelationship(workspaceID string, r models.Relationship) (models.Relationship, bool) {
	r.ID = s.newID()
	ok := s.mutate(workspaceID, func(w *models.Workspace) {
		w.Relationships = append([]models.Relationship{r}, w.Relationships...)
	})
	return r, ok
}

func (s *Store) UpdateRelationship(workspaceID, id string, p models.RelationshipPatch) bool {
	found := false
	s.mutate(workspaceID, func(w *models.Workspace) {
		for i := range w.Relationships {
			if w.Relationships[i].ID == id {
				p.Apply(&w.Relationships[i])
				found = true
				return
			}
		}
	})
	return found
}

func (s *Store) DeleteRelationship(workspaceID, id string) bool {
	found := false
	s.mutate(workspaceID, func(w *models.Workspace) {
		for i := range w.Relationships {
			if w.Relationships[i].ID == id {
				w.Relationships = append(w.Relationships[:i], w.Relationships[i+1:]...)
				found = true
				return
			}
		}
	})
	return found
}

// mutate runs fn on the matching workspace, then bumps LastModified and
// recomputes chapter progress. Missing ids are a safe no-op.
func (s *Store) mutate(id string, fn func(*models.Workspace)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	w := s.findLocked(id)
	if w == nil {
		return false
	}
	fn(w)
	refreshProgress(w)
	w.LastModified = s.now()
	return true
}

func (s *Store) findLocked(id string) *models.Workspace {
	if id == "" {
		return nil
	}
	for i := range s.workspaces {
		if s.workspaces[i].ID == id {
			return &s.workspaces[i]
		}
	}
	return nil
}

// Progress is derived: total tracks the chapter count, current the number of
// completed translations.
func refreshProgress(w *models.Workspace) {
	completed := 0
	for i := range w.Chapters {
		if w.Chapters[i].Status == models.ChapterCompleted {
			completed++
		}
	}
	w.ChapterProgress = models.ChapterProgress{
		Current: completed,
		Total:   len(w.Chapters),
	}
}

func cloneWorkspace(w models.Workspace) models.Workspace {
	w.Genres = append([]string(nil), w.Genres...)
	w.Chapters = append([]models.Chapter(nil), w.Chapters...)
	w.Glossary = append([]models.GlossaryItem(nil), w.Glossary...)
	w.Characters = append([]models.Character(nil), w.Characters...)
	w.Relationships = append([]models.Relationship(nil), w.Relationships...)
	return w
}

func cloneWorkspaces(ws []models.Workspace) []models.Workspace {
	out := make([]models.Workspace, len(ws))
	for i := range ws {
		out[i] = cloneWorkspace(ws[i])
	}
	return out
}
