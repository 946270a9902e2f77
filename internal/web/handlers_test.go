package web

import (
	"encoding/json"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/hollandm/pocketroom/internal/capsule"
	"github.com/hollandm/pocketroom/internal/config"
	"github.com/hollandm/pocketroom/internal/progress"
	"github.com/hollandm/pocketroom/internal/repo"
	"github.com/hollandm/pocketroom/internal/store"
)

func setupTest(t *testing.T) *Handlers {
	t.Helper()
	st, err := store.Open(t.TempDir(), config.DefaultConfig())
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	r, err := repo.New(st)
	if err != nil {
		t.Fatalf("repo.New: %v", err)
	}
	tr, err := progress.New(st)
	if err != nil {
		t.Fatalf("progress.New: %v", err)
	}

	templateSub, err := fs.Sub(templateFS, "templates")
	if err != nil {
		t.Fatalf("template sub-FS: %v", err)
	}

	return &Handlers{
		repo:     r,
		tracker:  tr,
		renderer: NewRenderer(templateSub, "test"),
	}
}

// seedCapsule stores a capsule with the given content and returns its ID.
func seedCapsule(t *testing.T, h *Handlers, title string, content capsule.Content) string {
	t.Helper()
	now := time.Now().Unix()
	c := capsule.Capsule{
		ID:        "cap-" + title,
		Title:     title,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := h.repo.Upsert(c); err != nil {
		t.Fatalf("seed capsule %q: %v", title, err)
	}
	return c.ID
}

// --- HandleList ---

func TestHandleList_Default(t *testing.T) {
	h := setupTest(t)
	seedCapsule(t, h, "alpha", capsule.Notes{Text: "# Alpha"})

	req := httptest.NewRequest("GET", "/capsules", nil)
	rec := httptest.NewRecorder()
	h.HandleList(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "alpha") {
		t.Error("expected capsule title 'alpha' in response")
	}
	if !strings.Contains(body, "Capsules") {
		t.Error("expected page title 'Capsules' in response")
	}
}

func TestHandleList_Empty(t *testing.T) {
	h := setupTest(t)

	req := httptest.NewRequest("GET", "/capsules", nil)
	rec := httptest.NewRecorder()
	h.HandleList(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "No capsules yet") {
		t.Error("expected empty state message")
	}
}

func TestHandleList_FlashcardProgress(t *testing.T) {
	h := setupTest(t)
	id := seedCapsule(t, h, "deck", capsule.Flashcards{Cards: []capsule.Card{
		{Front: "cat", Back: "chat"},
		{Front: "dog", Back: "chien"},
	}})
	if err := h.tracker.MarkCard(id, "cat-chat", true); err != nil {
		t.Fatalf("MarkCard: %v", err)
	}

	req := httptest.NewRequest("GET", "/capsules", nil)
	rec := httptest.NewRecorder()
	h.HandleList(rec, req)

	if !strings.Contains(rec.Body.String(), "1/2 known") {
		t.Error("expected flashcard progress '1/2 known'")
	}
}

func TestHandleList_QuizBestScore(t *testing.T) {
	h := setupTest(t)
	id := seedCapsule(t, h, "quiz", capsule.Quiz{Questions: []capsule.Question{
		{Prompt: "2+2?", Options: [4]string{"3", "4", "5", "6"}, Correct: 1},
	}})

	req := httptest.NewRequest("GET", "/capsules", nil)
	rec := httptest.NewRecorder()
	h.HandleList(rec, req)
	if !strings.Contains(rec.Body.String(), "no attempts") {
		t.Error("expected 'no attempts' before any submission")
	}

	if err := h.tracker.RecordQuizScore(id, 75); err != nil {
		t.Fatalf("RecordQuizScore: %v", err)
	}

	rec = httptest.NewRecorder()
	h.HandleList(rec, httptest.NewRequest("GET", "/capsules", nil))
	if !strings.Contains(rec.Body.String(), "best 75%") {
		t.Error("expected 'best 75%' after a graded attempt")
	}
}

// --- HandleDetail ---

func TestHandleDetail_Notes(t *testing.T) {
	h := setupTest(t)
	id := seedCapsule(t, h, "reading", capsule.Notes{Text: "# Heading\n\nSome *notes* here."})

	req := httptest.NewRequest("GET", "/capsules/"+id, nil)
	req.SetPathValue("id", id)
	rec := httptest.NewRecorder()
	h.HandleDetail(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "reading") {
		t.Error("expected capsule title in detail page")
	}
	// Markdown should be rendered, not escaped
	if !strings.Contains(body, "<h1>Heading</h1>") {
		t.Error("expected rendered markdown heading")
	}
}

func TestHandleDetail_Flashcards(t *testing.T) {
	h := setupTest(t)
	id := seedCapsule(t, h, "deck", capsule.Flashcards{Cards: []capsule.Card{
		{Front: "cat", Back: "chat"},
		{Front: "dog", Back: "chien"},
	}})
	if err := h.tracker.MarkCard(id, "dog-chien", true); err != nil {
		t.Fatalf("MarkCard: %v", err)
	}

	req := httptest.NewRequest("GET", "/capsules/"+id, nil)
	req.SetPathValue("id", id)
	rec := httptest.NewRecorder()
	h.HandleDetail(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "1/2 cards known") {
		t.Error("expected progress summary")
	}
	if !strings.Contains(body, "chien") {
		t.Error("expected card backs in table")
	}
}

func TestHandleDetail_Quiz(t *testing.T) {
	h := setupTest(t)
	id := seedCapsule(t, h, "quiz", capsule.Quiz{Questions: []capsule.Question{
		{Prompt: "Capital of France?", Options: [4]string{"Lyon", "Paris", "Nice", "Lille"}, Correct: 1},
	}})

	req := httptest.NewRequest("GET", "/capsules/"+id, nil)
	req.SetPathValue("id", id)
	rec := httptest.NewRecorder()
	h.HandleDetail(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Capital of France?") {
		t.Error("expected question prompt")
	}
	if !strings.Contains(body, `class="correct"`) {
		t.Error("expected the correct option to be marked")
	}
}

func TestHandleDetail_NotFound(t *testing.T) {
	h := setupTest(t)

	req := httptest.NewRequest("GET", "/capsules/NONEXISTENT", nil)
	req.SetPathValue("id", "NONEXISTENT")
	rec := httptest.NewRecorder()
	h.HandleDetail(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "<!DOCTYPE html>") {
		t.Error("full error page should contain layout")
	}
	if !strings.Contains(body, "404") {
		t.Error("error page should show status code")
	}
}

func TestHandleDetail_JSONError(t *testing.T) {
	h := setupTest(t)

	req := httptest.NewRequest("GET", "/capsules/NONEXISTENT", nil)
	req.SetPathValue("id", "NONEXISTENT")
	req.Header.Set("Accept", "application/json")
	rec := httptest.NewRecorder()
	h.HandleDetail(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}

	var resp map[string]any
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode JSON: %v", err)
	}
	errObj, ok := resp["error"].(map[string]any)
	if !ok {
		t.Fatal("expected error object in JSON response")
	}
	if errObj["code"] != "NOT_FOUND" {
		t.Errorf("error.code = %v, want NOT_FOUND", errObj["code"])
	}
}

// --- Rendering helpers ---

func TestRenderMarkdown_Fallback(t *testing.T) {
	out := renderMarkdown("plain <script> text")
	if strings.Contains(string(out), "<script>") {
		t.Error("raw script tags must not survive rendering")
	}
}

func TestFormatTime(t *testing.T) {
	ts := time.Date(2025, 3, 14, 9, 26, 0, 0, time.UTC).Unix()
	if got := formatTime(ts); got != "2025-03-14 09:26" {
		t.Errorf("formatTime = %q", got)
	}
}

func TestDerefAndHasValue(t *testing.T) {
	n := 42
	if !hasValue(&n) {
		t.Error("hasValue(&n) = false")
	}
	if hasValue((*int)(nil)) {
		t.Error("hasValue(nil pointer) = true")
	}
	if got := deref(&n); got != n {
		t.Errorf("deref = %v", got)
	}
}
