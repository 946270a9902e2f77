package mcp

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hollandm/pocketroom/internal/config"
	"github.com/hollandm/pocketroom/internal/editor"
	"github.com/hollandm/pocketroom/internal/errors"
	"github.com/hollandm/pocketroom/internal/progress"
	"github.com/hollandm/pocketroom/internal/repo"
	"github.com/hollandm/pocketroom/internal/store"
)

// testHandlers wires a Handlers instance against a temporary store.
func testHandlers(t *testing.T) (*Handlers, string) {
	t.Helper()

	tmpDir := t.TempDir()
	st, err := store.Open(tmpDir, config.DefaultConfig())
	if err != nil {
		t.Fatalf("store.Open failed: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	r, err := repo.New(st)
	if err != nil {
		t.Fatalf("repo.New failed: %v", err)
	}
	tr, err := progress.New(st)
	if err != nil {
		t.Fatalf("progress.New failed: %v", err)
	}

	return NewHandlers(r, tr, editor.New(r), tmpDir), tmpDir
}

// makeRequest creates a CallToolRequest with the given arguments.
func makeRequest(args map[string]any) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: args,
		},
	}
}

// parseOutput unmarshals a successful tool result payload.
func parseOutput(t *testing.T, result *mcp.CallToolResult) map[string]any {
	t.Helper()
	if result.IsError {
		t.Fatalf("unexpected error result: %+v", result)
	}
	var output map[string]any
	if err := json.Unmarshal([]byte(result.Content[0].(mcp.TextContent).Text), &output); err != nil {
		t.Fatalf("failed to parse output: %v", err)
	}
	return output
}

// assertErrorCode asserts the result is an error with the given code.
func assertErrorCode(t *testing.T, result *mcp.CallToolResult, code errors.ErrorCode) {
	t.Helper()
	if !result.IsError {
		t.Fatalf("expected error result, got success")
	}
	var payload map[string]map[string]any
	if err := json.Unmarshal([]byte(result.Content[0].(mcp.TextContent).Text), &payload); err != nil {
		t.Fatalf("failed to parse error payload: %v", err)
	}
	if got := payload["error"]["code"]; got != string(code) {
		t.Errorf("error code = %v, want %s", got, code)
	}
}

func saveNotes(t *testing.T, h *Handlers, title string) string {
	t.Helper()
	result, err := h.HandleSave(context.Background(), makeRequest(map[string]any{
		"title": title,
		"type":  "notes",
		"notes": "body",
	}))
	if err != nil {
		t.Fatalf("HandleSave failed: %v", err)
	}
	output := parseOutput(t, result)
	return output["id"].(string)
}

func saveDeck(t *testing.T, h *Handlers) string {
	t.Helper()
	result, err := h.HandleSave(context.Background(), makeRequest(map[string]any{
		"title": "Deck",
		"type":  "flashcards",
		"cards": []map[string]any{
			{"front": "cat", "back": "chat"},
			{"front": "dog", "back": "chien"},
		},
	}))
	if err != nil {
		t.Fatalf("HandleSave failed: %v", err)
	}
	return parseOutput(t, result)["id"].(string)
}

func saveQuiz(t *testing.T, h *Handlers) string {
	t.Helper()
	result, err := h.HandleSave(context.Background(), makeRequest(map[string]any{
		"title": "Quiz",
		"type":  "quiz",
		"questions": []map[string]any{
			{"question": "2+2?", "options": []string{"3", "4", "5", "6"}, "correct": 1},
			{"question": "3+3?", "options": []string{"5", "6", "7", "8"}, "correct": 1},
		},
	}))
	if err != nil {
		t.Fatalf("HandleSave failed: %v", err)
	}
	return parseOutput(t, result)["id"].(string)
}

func TestHandleSave_CreateAndUpdate(t *testing.T) {
	h, _ := testHandlers(t)
	ctx := context.Background()

	id := saveNotes(t, h, "First")
	if len(id) != 26 {
		t.Errorf("id length = %d, want 26 (ULID)", len(id))
	}

	result, err := h.HandleSave(ctx, makeRequest(map[string]any{
		"id":    id,
		"title": "Renamed",
		"type":  "notes",
		"notes": "body",
	}))
	if err != nil {
		t.Fatalf("HandleSave update failed: %v", err)
	}
	output := parseOutput(t, result)
	if output["id"] != id {
		t.Errorf("update changed id: %v", output["id"])
	}
	if output["title"] != "Renamed" {
		t.Errorf("title = %v", output["title"])
	}
}

func TestHandleSave_ValidationError(t *testing.T) {
	h, _ := testHandlers(t)

	result, err := h.HandleSave(context.Background(), makeRequest(map[string]any{
		"type":  "notes",
		"notes": "body",
	}))
	if err != nil {
		t.Fatalf("HandleSave failed: %v", err)
	}
	assertErrorCode(t, result, errors.ErrValidationFailed)
}

func TestHandleGet(t *testing.T) {
	h, _ := testHandlers(t)
	ctx := context.Background()

	id := saveNotes(t, h, "Mine")

	result, err := h.HandleGet(ctx, makeRequest(map[string]any{"id": id}))
	if err != nil {
		t.Fatalf("HandleGet failed: %v", err)
	}
	output := parseOutput(t, result)
	if output["title"] != "Mine" || output["content"] != "body" {
		t.Errorf("output = %v", output)
	}

	result, err = h.HandleGet(ctx, makeRequest(map[string]any{"id": "missing"}))
	if err != nil {
		t.Fatalf("HandleGet failed: %v", err)
	}
	assertErrorCode(t, result, errors.ErrNotFound)
}

func TestHandleList(t *testing.T) {
	h, _ := testHandlers(t)

	saveNotes(t, h, "One")
	saveNotes(t, h, "Two")

	result, err := h.HandleList(context.Background(), makeRequest(nil))
	if err != nil {
		t.Fatalf("HandleList failed: %v", err)
	}
	output := parseOutput(t, result)
	if output["count"].(float64) != 2 {
		t.Errorf("count = %v, want 2", output["count"])
	}
}

func TestHandleDelete(t *testing.T) {
	h, _ := testHandlers(t)
	ctx := context.Background()

	id := saveNotes(t, h, "Doomed")

	result, err := h.HandleDelete(ctx, makeRequest(map[string]any{"id": id}))
	if err != nil {
		t.Fatalf("HandleDelete failed: %v", err)
	}
	if parseOutput(t, result)["deleted"] != id {
		t.Error("delete did not echo the id")
	}

	result, _ = h.HandleGet(ctx, makeRequest(map[string]any{"id": id}))
	assertErrorCode(t, result, errors.ErrNotFound)
}

func TestHandleExportImport(t *testing.T) {
	h, tmpDir := testHandlers(t)
	ctx := context.Background()

	id := saveDeck(t, h)

	path := filepath.Join(tmpDir, "deck.json")
	result, err := h.HandleExport(ctx, makeRequest(map[string]any{"id": id, "path": path}))
	if err != nil {
		t.Fatalf("HandleExport failed: %v", err)
	}
	if parseOutput(t, result)["path"] != path {
		t.Error("export did not echo the path")
	}

	result, err = h.HandleImport(ctx, makeRequest(map[string]any{"path": path}))
	if err != nil {
		t.Fatalf("HandleImport failed: %v", err)
	}
	imported := parseOutput(t, result)
	if imported["id"] == id {
		t.Error("import must assign a fresh id")
	}

	// Inline document variant
	result, err = h.HandleImport(ctx, makeRequest(map[string]any{
		"document": `{"title":"inline","type":"notes","content":"x"}`,
	}))
	if err != nil {
		t.Fatalf("inline HandleImport failed: %v", err)
	}
	if parseOutput(t, result)["title"] != "inline" {
		t.Error("inline import lost the title")
	}

	result, _ = h.HandleImport(ctx, makeRequest(map[string]any{"document": `{"title":"x"}`}))
	assertErrorCode(t, result, errors.ErrMalformedDocument)

	result, _ = h.HandleImport(ctx, makeRequest(nil))
	assertErrorCode(t, result, errors.ErrInvalidRequest)
}

func TestHandleMarkCard(t *testing.T) {
	h, _ := testHandlers(t)
	ctx := context.Background()

	id := saveDeck(t, h)

	result, err := h.HandleMarkCard(ctx, makeRequest(map[string]any{
		"capsule_id": id,
		"card_index": 0,
		"known":      true,
	}))
	if err != nil {
		t.Fatalf("HandleMarkCard failed: %v", err)
	}
	output := parseOutput(t, result)
	if output["known_cards"].(float64) != 1 {
		t.Errorf("known_cards = %v, want 1", output["known_cards"])
	}

	result, _ = h.HandleMarkCard(ctx, makeRequest(map[string]any{
		"capsule_id": id,
		"card_index": 5,
		"known":      true,
	}))
	assertErrorCode(t, result, errors.ErrInvalidRequest)

	noteID := saveNotes(t, h, "not a deck")
	result, _ = h.HandleMarkCard(ctx, makeRequest(map[string]any{
		"capsule_id": noteID,
		"card_index": 0,
		"known":      true,
	}))
	assertErrorCode(t, result, errors.ErrInvalidRequest)
}

func TestHandleQuizSubmit(t *testing.T) {
	h, _ := testHandlers(t)
	ctx := context.Background()

	id := saveQuiz(t, h)

	result, err := h.HandleQuizSubmit(ctx, makeRequest(map[string]any{
		"capsule_id": id,
		"answers":    []int{1, 3},
	}))
	if err != nil {
		t.Fatalf("HandleQuizSubmit failed: %v", err)
	}
	output := parseOutput(t, result)
	res := output["result"].(map[string]any)
	if res["score"].(float64) != 1 || res["percentage"].(float64) != 50 {
		t.Errorf("result = %v, want score 1 at 50%%", res)
	}
	if output["best_score"].(float64) != 50 {
		t.Errorf("best_score = %v, want 50", output["best_score"])
	}

	// Skipped questions grade wrong
	result, err = h.HandleQuizSubmit(ctx, makeRequest(map[string]any{
		"capsule_id": id,
		"answers":    []int{-1, 1},
	}))
	if err != nil {
		t.Fatalf("second HandleQuizSubmit failed: %v", err)
	}
	output = parseOutput(t, result)
	if output["best_score"].(float64) != 50 {
		t.Errorf("best score dropped: %v", output["best_score"])
	}

	result, _ = h.HandleQuizSubmit(ctx, makeRequest(map[string]any{
		"capsule_id": id,
		"answers":    []int{0, 0, 0},
	}))
	assertErrorCode(t, result, errors.ErrInvalidRequest)
}

func TestHandleProgress(t *testing.T) {
	h, _ := testHandlers(t)
	ctx := context.Background()

	deckID := saveDeck(t, h)
	saveNotes(t, h, "plain")

	if _, err := h.HandleMarkCard(ctx, makeRequest(map[string]any{
		"capsule_id": deckID,
		"card_index": 1,
		"known":      true,
	})); err != nil {
		t.Fatalf("HandleMarkCard failed: %v", err)
	}

	result, err := h.HandleProgress(ctx, makeRequest(map[string]any{"id": deckID}))
	if err != nil {
		t.Fatalf("HandleProgress failed: %v", err)
	}
	output := parseOutput(t, result)
	if output["known_cards"].(float64) != 1 || output["total_cards"].(float64) != 2 {
		t.Errorf("progress = %v", output)
	}

	result, err = h.HandleProgress(ctx, makeRequest(nil))
	if err != nil {
		t.Fatalf("HandleProgress all failed: %v", err)
	}
	output = parseOutput(t, result)
	if output["count"].(float64) != 2 {
		t.Errorf("count = %v, want 2", output["count"])
	}
}

func TestValidateDisabledTools(t *testing.T) {
	if unknown := ValidateDisabledTools([]string{"capsule_delete", "quiz_submit"}); len(unknown) != 0 {
		t.Errorf("unexpected unknown tools: %v", unknown)
	}
	if unknown := ValidateDisabledTools([]string{"nope"}); len(unknown) != 1 {
		t.Errorf("unknown tool not reported: %v", unknown)
	}

	if len(AllToolNames()) != len(toolRegistry) {
		t.Error("AllToolNames out of sync with the registry")
	}
}
