package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

var saveToolDef = mcp.NewTool("capsule_save",
	mcp.WithDescription("Create or update a capsule. Omit id to create. "+
		"Exactly one content field applies, selected by type: notes (text), "+
		"cards (flashcards) or questions (quiz)."),
	mcp.WithString("id", mcp.Description("Capsule ID to update; omit to create")),
	mcp.WithString("title", mcp.Required(), mcp.Description("Capsule title")),
	mcp.WithString("description", mcp.Description("Optional description")),
	mcp.WithString("type", mcp.Required(),
		mcp.Description("Capsule type"),
		mcp.Enum("notes", "flashcards", "quiz")),
	mcp.WithString("notes", mcp.Description("Notes text (type=notes)")),
	mcp.WithArray("cards",
		mcp.Description("Flashcards (type=flashcards)"),
		mcp.Items(map[string]any{
			"type": "object",
			"properties": map[string]any{
				"front": map[string]any{"type": "string"},
				"back":  map[string]any{"type": "string"},
			},
			"required": []string{"front", "back"},
		})),
	mcp.WithArray("questions",
		mcp.Description("Quiz questions (type=quiz)"),
		mcp.Items(map[string]any{
			"type": "object",
			"properties": map[string]any{
				"question": map[string]any{"type": "string"},
				"options": map[string]any{
					"type":     "array",
					"items":    map[string]any{"type": "string"},
					"minItems": 4,
					"maxItems": 4,
				},
				"correct": map[string]any{"type": "integer", "minimum": 0, "maximum": 3},
			},
			"required": []string{"question", "options", "correct"},
		})),
)

var getToolDef = mcp.NewTool("capsule_get",
	mcp.WithDescription("Fetch a capsule by ID, including its full content."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Capsule ID")),
)

var listToolDef = mcp.NewTool("capsule_list",
	mcp.WithDescription("List all capsules with item counts and progress summaries."),
)

var deleteToolDef = mcp.NewTool("capsule_delete",
	mcp.WithDescription("Delete a capsule by ID. Progress records are kept."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Capsule ID")),
)

var exportToolDef = mcp.NewTool("capsule_export",
	mcp.WithDescription("Export a capsule to a JSON file."),
	mcp.WithString("id", mcp.Required(), mcp.Description("Capsule ID")),
	mcp.WithString("path", mcp.Description("Target file path (default: exports dir, derived from title)")),
)

var importToolDef = mcp.NewTool("capsule_import",
	mcp.WithDescription("Import a capsule from a JSON document or file. "+
		"The imported capsule always gets a fresh ID and timestamps."),
	mcp.WithString("path", mcp.Description("Source file path")),
	mcp.WithString("document", mcp.Description("Inline JSON document (alternative to path)")),
)

var progressToolDef = mcp.NewTool("progress_get",
	mcp.WithDescription("Get learning progress for one capsule, or all capsules if id is omitted."),
	mcp.WithString("id", mcp.Description("Capsule ID")),
)

var markCardToolDef = mcp.NewTool("card_mark",
	mcp.WithDescription("Mark a flashcard as known or still learning."),
	mcp.WithString("capsule_id", mcp.Required(), mcp.Description("Flashcards capsule ID")),
	mcp.WithNumber("card_index", mcp.Required(), mcp.Description("Zero-based card index")),
	mcp.WithBoolean("known", mcp.Required(), mcp.Description("true = known, false = still learning")),
)

var quizSubmitToolDef = mcp.NewTool("quiz_submit",
	mcp.WithDescription("Grade one quiz attempt. answers holds one zero-based "+
		"option index per question; use -1 for unanswered questions."),
	mcp.WithString("capsule_id", mcp.Required(), mcp.Description("Quiz capsule ID")),
	mcp.WithArray("answers", mcp.Required(),
		mcp.Description("Selected option per question, -1 if skipped"),
		mcp.Items(map[string]any{"type": "integer"})),
)
