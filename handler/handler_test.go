package handlers

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"novelweaver/bridge"
	"novelweaver/db"
	"novelweaver/models"
	"novelweaver/store"
	"novelweaver/translator"
)

type stubProvider struct {
	text string
}

func (p *stubProvider) Name() string { return "stub" }

func (p *stubProvider) Stream(_ context.Context, _ translator.Request) (<-chan translator.Fragment, error) {
	out := make(chan translator.Fragment, 1)
	out <- translator.Fragment{Text: p.text}
	close(out)
	return out, nil
}

func newTestHandler(t *testing.T) (*Handler, *store.Store) {
	t.Helper()

	st := store.New()
	backend, err := db.Open("file", t.TempDir(), "")
	if err != nil {
		t.Fatalf("opening backend: %v", err)
	}

	h := &Handler{
		Store:        st,
		Hub:          bridge.NewHub(),
		Orchestrator: translator.NewOrchestrator(st, &stubProvider{text: "translated"}, nil),
		Autosaver:    db.NewAutosaver(backend, st, time.Minute),
	}
	return h, st
}

func doRequest(t *testing.T, h *Handler, method, target string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshalling body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	e := echo.New()
	h.RegisterRoutes(e)
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestCreateAndListWorkspaces(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := doRequest(t, h, http.MethodPost, "/workspaces", map[string]interface{}{
		"name":        "Martial World",
		"author":      "Cocooned Cow",
		"source_lang": "Chinese",
		"target_lang": "English",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d: %s", rec.Code, rec.Body.String())
	}

	var ws models.Workspace
	if err := json.Unmarshal(rec.Body.Bytes(), &ws); err != nil {
		t.Fatalf("decoding workspace: %v", err)
	}
	if ws.Config.Model != models.ProviderGemini || ws.Config.Temperature != 0.7 {
		t.Fatalf("defaults not applied: %+v", ws.Config)
	}

	rec = doRequest(t, h, http.MethodGet, "/workspaces", nil)
	var list struct {
		Workspaces []models.Workspace `json:"workspaces"`
		ActiveID   string             `json:"active_workspace_id"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("decoding list: %v", err)
	}
	if len(list.Workspaces) != 1 || list.ActiveID != ws.ID {
		t.Fatalf("list = %+v", list)
	}
}

func TestCreateWorkspaceRequiresName(t *testing.T) {
	h, _ := newTestHandler(t)
	rec := doRequest(t, h, http.MethodPost, "/workspaces", map[string]string{"author": "x"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestDeleteWorkspaceRequiresConfirm(t *testing.T) {
	h, st := newTestHandler(t)
	ws := st.CreateWorkspace("W", "", nil, "zh", "en")

	rec := doRequest(t, h, http.MethodDelete, "/workspaces/"+ws.ID, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unconfirmed delete status = %d", rec.Code)
	}
	if _, ok := st.Workspace(ws.ID); !ok {
		t.Fatal("workspace deleted without confirmation")
	}

	rec = doRequest(t, h, http.MethodDelete, "/workspaces/"+ws.ID+"?confirm=true", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("confirmed delete status = %d: %s", rec.Code, rec.Body.String())
	}
	if _, ok := st.Workspace(ws.ID); ok {
		t.Fatal("workspace still present")
	}
}

func TestBulkDeleteChapters(t *testing.T) {
	h, st := newTestHandler(t)
	ws := st.CreateWorkspace("W", "", nil, "zh", "en")
	ch1 := st.NewChapter(1, "One", "a", "")
	ch2 := st.NewChapter(2, "Two", "b", "")
	st.AddChapters(ws.ID, []models.Chapter{ch1, ch2})

	rec := doRequest(t, h, http.MethodPost, "/workspaces/"+ws.ID+"/chapters/delete", map[string]interface{}{
		"ids": []string{ch1.ID, "missing"},
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unconfirmed bulk delete status = %d", rec.Code)
	}

	rec = doRequest(t, h, http.MethodPost, "/workspaces/"+ws.ID+"/chapters/delete", map[string]interface{}{
		"ids":     []string{ch1.ID, "missing"},
		"confirm": true,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("bulk delete status = %d: %s", rec.Code, rec.Body.String())
	}
	var resp map[string]int
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp["deleted"] != 1 {
		t.Fatalf("deleted = %d", resp["deleted"])
	}
	if _, ok := st.Chapter(ws.ID, ch2.ID); !ok {
		t.Fatal("surviving chapter removed")
	}
}

func TestTranslateChapterConflict(t *testing.T) {
	h, st := newTestHandler(t)
	ws := st.CreateWorkspace("W", "", nil, "zh", "en")
	ch := st.NewChapter(1, "One", "source", "")
	st.AddChapter(ws.ID, ch, false)
	translating := models.ChapterTranslating
	st.UpdateChapter(ws.ID, ch.ID, models.ChapterPatch{Status: &translating})

	rec := doRequest(t, h, http.MethodPost, "/workspaces/"+ws.ID+"/chapters/"+ch.ID+"/translate", nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestTranslateChapterEmptySourceNoOp(t *testing.T) {
	h, st := newTestHandler(t)
	ws := st.CreateWorkspace("W", "", nil, "zh", "en")
	ch := st.NewChapter(1, "One", "  ", "")
	st.AddChapter(ws.ID, ch, false)

	rec := doRequest(t, h, http.MethodPost, "/workspaces/"+ws.ID+"/chapters/"+ch.ID+"/translate", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestDownloadEpub(t *testing.T) {
	h, st := newTestHandler(t)
	ws := st.CreateWorkspace("My Novel", "Author", nil, "zh", "en")
	text := "Translated body."
	st.UpdateWorkspace(ws.ID, models.WorkspacePatch{TranslatedText: &text})

	rec := doRequest(t, h, http.MethodGet, "/workspaces/"+ws.ID+"/epub", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get(echo.HeaderContentDisposition); !strings.Contains(got, "My_Novel.epub") {
		t.Fatalf("content disposition = %q", got)
	}

	r, err := zip.NewReader(bytes.NewReader(rec.Body.Bytes()), int64(rec.Body.Len()))
	if err != nil {
		t.Fatalf("response is not a zip: %v", err)
	}
	if r.File[0].Name != "mimetype" {
		t.Fatal("mimetype not first entry")
	}
}

func TestDownloadEpubDisabled(t *testing.T) {
	h, st := newTestHandler(t)
	ws := st.CreateWorkspace("W", "", nil, "zh", "en")
	settings := ws.Settings
	settings.AllowEpub = false
	st.UpdateWorkspace(ws.ID, models.WorkspacePatch{Settings: &settings})

	rec := doRequest(t, h, http.MethodGet, "/workspaces/"+ws.ID+"/epub", nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestForkExportGatedByContribution(t *testing.T) {
	h, st := newTestHandler(t)
	ws := st.CreateWorkspace("My Novel", "", nil, "zh", "en")

	rec := doRequest(t, h, http.MethodGet, "/workspaces/"+ws.ID+"/fork", nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("fork allowed despite disabled contributions: %d", rec.Code)
	}

	settings := ws.Settings
	settings.AllowContribution = true
	st.UpdateWorkspace(ws.ID, models.WorkspacePatch{Settings: &settings})

	rec = doRequest(t, h, http.MethodGet, "/workspaces/"+ws.ID+"/fork", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := rec.Header().Get(echo.HeaderContentDisposition); !strings.Contains(got, "My_Novel_contrib.json") {
		t.Fatalf("content disposition = %q", got)
	}
}

func TestGlossaryLifecycle(t *testing.T) {
	h, st := newTestHandler(t)
	ws := st.CreateWorkspace("W", "", nil, "zh", "en")

	rec := doRequest(t, h, http.MethodPost, "/workspaces/"+ws.ID+"/glossary", map[string]string{
		"term":        "林动",
		"translation": "Lin Dong",
		"type":        "name",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("add status = %d: %s", rec.Code, rec.Body.String())
	}
	var item models.GlossaryItem
	json.Unmarshal(rec.Body.Bytes(), &item)

	rec = doRequest(t, h, http.MethodPatch, "/workspaces/"+ws.ID+"/glossary/"+item.ID, map[string]string{
		"translation": "Lin Dong!",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("update status = %d", rec.Code)
	}
	got, _ := st.Workspace(ws.ID)
	if got.Glossary[0].Translation != "Lin Dong!" {
		t.Fatalf("translation = %q", got.Glossary[0].Translation)
	}

	rec = doRequest(t, h, http.MethodDelete, "/workspaces/"+ws.ID+"/glossary/"+item.ID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete status = %d", rec.Code)
	}
}

func TestSaveEndpoints(t *testing.T) {
	h, st := newTestHandler(t)
	st.CreateWorkspace("W", "", nil, "zh", "en")

	rec := doRequest(t, h, http.MethodGet, "/save-status", nil)
	var status map[string]interface{}
	json.Unmarshal(rec.Body.Bytes(), &status)
	if status["last_saved"] != nil {
		t.Fatalf("last_saved before any save = %v", status["last_saved"])
	}

	rec = doRequest(t, h, http.MethodPost, "/save", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("save status = %d: %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(t, h, http.MethodGet, "/save-status", nil)
	json.Unmarshal(rec.Body.Bytes(), &status)
	if status["last_saved"] == nil {
		t.Fatal("last_saved still nil after explicit save")
	}
}

func TestUpdateChapterRecountsWords(t *testing.T) {
	h, st := newTestHandler(t)
	ws := st.CreateWorkspace("W", "", nil, "zh", "en")
	ch := st.NewChapter(1, "One", "a b", "")
	st.AddChapter(ws.ID, ch, false)

	rec := doRequest(t, h, http.MethodPatch, "/workspaces/"+ws.ID+"/chapters/"+ch.ID, map[string]string{
		"source_text": "one two three four",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	got, _ := st.Chapter(ws.ID, ch.ID)
	if got.SourceWordCount != 4 {
		t.Fatalf("word count = %d", got.SourceWordCount)
	}
}
