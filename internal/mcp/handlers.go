package mcp

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hollandm/pocketroom/internal/capsule"
	"github.com/hollandm/pocketroom/internal/editor"
	"github.com/hollandm/pocketroom/internal/errors"
	"github.com/hollandm/pocketroom/internal/learn"
	"github.com/hollandm/pocketroom/internal/progress"
	"github.com/hollandm/pocketroom/internal/repo"
	"github.com/hollandm/pocketroom/internal/transfer"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	repo    *repo.Repository
	tracker *progress.Tracker
	editor  *editor.Editor
	baseDir string
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(r *repo.Repository, tr *progress.Tracker, ed *editor.Editor, baseDir string) *Handlers {
	return &Handlers{repo: r, tracker: tr, editor: ed, baseDir: baseDir}
}

// Request types for each tool

// SaveRequest represents the arguments for capsule_save.
type SaveRequest struct {
	ID          string          `json:"id,omitempty"`
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	Type        string          `json:"type"`
	Notes       string          `json:"notes,omitempty"`
	Cards       []CardInput     `json:"cards,omitempty"`
	Questions   []QuestionInput `json:"questions,omitempty"`
}

// CardInput is one flashcard in capsule_save.
type CardInput struct {
	Front string `json:"front"`
	Back  string `json:"back"`
}

// QuestionInput is one quiz question in capsule_save.
type QuestionInput struct {
	Question string   `json:"question"`
	Options  []string `json:"options"`
	Correct  *int     `json:"correct"`
}

// GetRequest represents the arguments for capsule_get.
type GetRequest struct {
	ID string `json:"id"`
}

// DeleteRequest represents the arguments for capsule_delete.
type DeleteRequest struct {
	ID string `json:"id"`
}

// ExportRequest represents the arguments for capsule_export.
type ExportRequest struct {
	ID   string `json:"id"`
	Path string `json:"path,omitempty"`
}

// ImportRequest represents the arguments for capsule_import.
type ImportRequest struct {
	Path     string `json:"path,omitempty"`
	Document string `json:"document,omitempty"`
}

// ProgressRequest represents the arguments for progress_get.
type ProgressRequest struct {
	ID string `json:"id,omitempty"`
}

// MarkCardRequest represents the arguments for card_mark.
type MarkCardRequest struct {
	CapsuleID string `json:"capsule_id"`
	CardIndex int    `json:"card_index"`
	Known     bool   `json:"known"`
}

// QuizSubmitRequest represents the arguments for quiz_submit.
type QuizSubmitRequest struct {
	CapsuleID string `json:"capsule_id"`
	Answers   []int  `json:"answers"`
}

// Output shapes

// ListItem is one row of the capsule_list output.
type ListItem struct {
	ID         string       `json:"id"`
	Title      string       `json:"title"`
	Type       capsule.Type `json:"type"`
	Items      int          `json:"items"`
	KnownCards int          `json:"known_cards,omitempty"`
	BestScore  *int         `json:"best_score,omitempty"`
	UpdatedAt  int64        `json:"updated_at"`
}

// ProgressItem is one row of the progress_get output.
type ProgressItem struct {
	CapsuleID  string       `json:"capsule_id"`
	Title      string       `json:"title"`
	Type       capsule.Type `json:"type"`
	KnownCards int          `json:"known_cards"`
	TotalCards int          `json:"total_cards,omitempty"`
	BestScore  *int         `json:"best_score,omitempty"`
}

// Handler implementations

// HandleSave handles the capsule_save tool call.
func (h *Handlers) HandleSave(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[SaveRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	draft := editor.Draft{
		ID:          input.ID,
		Title:       input.Title,
		Description: input.Description,
		Type:        capsule.Type(input.Type),
		Notes:       input.Notes,
	}
	for _, c := range input.Cards {
		draft.Cards = append(draft.Cards, editor.CardDraft{Front: c.Front, Back: c.Back})
	}
	for _, q := range input.Questions {
		draft.Questions = append(draft.Questions, editor.QuestionDraft{
			Prompt:  q.Question,
			Options: q.Options,
			Correct: q.Correct,
		})
	}

	saved, err := h.editor.Save(draft)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(saved)
}

// HandleGet handles the capsule_get tool call.
func (h *Handlers) HandleGet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[GetRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	c, err := h.repo.Get(input.ID)
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(c)
}

// HandleList handles the capsule_list tool call.
func (h *Handlers) HandleList(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	capsules := h.repo.List()
	items := make([]ListItem, 0, len(capsules))
	for _, c := range capsules {
		rec := h.tracker.Get(c.ID)
		items = append(items, ListItem{
			ID:         c.ID,
			Title:      c.Title,
			Type:       c.Content.Type(),
			Items:      c.Content.Items(),
			KnownCards: len(rec.Known),
			BestScore:  rec.BestScore,
			UpdatedAt:  c.UpdatedAt,
		})
	}
	return successResult(map[string]any{"capsules": items, "count": len(items)})
}

// HandleDelete handles the capsule_delete tool call.
func (h *Handlers) HandleDelete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[DeleteRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}
	if input.ID == "" {
		return errorResult(errors.NewInvalidRequest("id is required")), nil
	}

	if err := h.repo.Remove(input.ID); err != nil {
		return errorResult(err), nil
	}
	return successResult(map[string]string{"deleted": input.ID})
}

// HandleExport handles the capsule_export tool call.
func (h *Handlers) HandleExport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ExportRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	c, err := h.repo.Get(input.ID)
	if err != nil {
		return errorResult(err), nil
	}

	path := input.Path
	if path == "" {
		path = transfer.DefaultPath(h.baseDir, c)
	}
	if err := transfer.WriteFile(c, path); err != nil {
		return errorResult(err), nil
	}
	return successResult(map[string]string{"id": c.ID, "path": path})
}

// HandleImport handles the capsule_import tool call.
func (h *Handlers) HandleImport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ImportRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	var c capsule.Capsule
	switch {
	case input.Document != "":
		c, err = transfer.Import([]byte(input.Document), h.repo)
	case input.Path != "":
		c, err = transfer.ReadFile(input.Path, h.repo)
	default:
		return errorResult(errors.NewInvalidRequest("either path or document is required")), nil
	}
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(c)
}

// HandleProgress handles the progress_get tool call.
func (h *Handlers) HandleProgress(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ProgressRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	if input.ID != "" {
		c, err := h.repo.Get(input.ID)
		if err != nil {
			return errorResult(err), nil
		}
		return successResult(h.progressItem(c))
	}

	items := make([]ProgressItem, 0)
	for _, c := range h.repo.List() {
		items = append(items, h.progressItem(c))
	}
	return successResult(map[string]any{"progress": items, "count": len(items)})
}

func (h *Handlers) progressItem(c capsule.Capsule) ProgressItem {
	rec := h.tracker.Get(c.ID)
	item := ProgressItem{
		CapsuleID:  c.ID,
		Title:      c.Title,
		Type:       c.Content.Type(),
		KnownCards: len(rec.Known),
		BestScore:  rec.BestScore,
	}
	if fc, ok := c.Content.(capsule.Flashcards); ok {
		item.TotalCards = len(fc.Cards)
	}
	return item
}

// HandleMarkCard handles the card_mark tool call.
func (h *Handlers) HandleMarkCard(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[MarkCardRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	c, err := h.repo.Get(input.CapsuleID)
	if err != nil {
		return errorResult(err), nil
	}
	fc, ok := c.Content.(capsule.Flashcards)
	if !ok {
		return errorResult(errors.NewInvalidRequest("capsule is not a flashcards capsule")), nil
	}
	if input.CardIndex < 0 || input.CardIndex >= len(fc.Cards) {
		return errorResult(errors.NewInvalidRequest("card_index is out of range")), nil
	}

	card := fc.Cards[input.CardIndex]
	if err := h.tracker.MarkCard(c.ID, card.ID(), input.Known); err != nil {
		return errorResult(err), nil
	}

	rec := h.tracker.Get(c.ID)
	return successResult(map[string]any{
		"capsule_id":  c.ID,
		"card_index":  input.CardIndex,
		"known":       input.Known,
		"known_cards": len(rec.Known),
		"total_cards": len(fc.Cards),
	})
}

// HandleQuizSubmit handles the quiz_submit tool call.
func (h *Handlers) HandleQuizSubmit(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[QuizSubmitRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	c, err := h.repo.Get(input.CapsuleID)
	if err != nil {
		return errorResult(err), nil
	}

	session, err := learn.NewQuizSession(c, h.tracker)
	if err != nil {
		return errorResult(err), nil
	}
	if len(input.Answers) > len(session.Questions()) {
		return errorResult(errors.NewInvalidRequest("more answers than questions")), nil
	}
	for i, ans := range input.Answers {
		if ans == learn.Unanswered {
			continue
		}
		if err := session.Select(i, ans); err != nil {
			return errorResult(err), nil
		}
	}

	result, err := session.Submit()
	if err != nil {
		return errorResult(err), nil
	}
	return successResult(map[string]any{
		"capsule_id": c.ID,
		"result":     result,
		"best_score": session.BestScore(),
	})
}

// Result helpers

// errorResult creates an MCP error result from any error.
// Uses IsError: true so MCP clients recognize failures properly.
// Note: Internal error details are not exposed to prevent leaking sensitive info.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	if perr, ok := err.(*errors.Error); ok {
		errorObj := map[string]any{
			"code":    perr.Code,
			"message": perr.Message,
			"status":  perr.Status,
		}
		// Only include details for non-internal errors to avoid leaking
		// sensitive info like file paths or SQL errors
		if perr.Code != errors.ErrInternal && perr.Details != nil {
			errorObj["details"] = perr.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    "INTERNAL",
				"message": "an internal error occurred",
				"status":  500,
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
