package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/hollandm/pocketroom/internal/config"
	"github.com/hollandm/pocketroom/internal/editor"
	"github.com/hollandm/pocketroom/internal/progress"
	"github.com/hollandm/pocketroom/internal/repo"
)

// toolEntry pairs a tool definition with a handler factory.
type toolEntry struct {
	def     mcp.Tool
	handler func(*Handlers) server.ToolHandlerFunc
}

// toolRegistry maps tool names to their definitions and handler factories.
var toolRegistry = map[string]toolEntry{
	"capsule_save": {
		def:     saveToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleSave },
	},
	"capsule_get": {
		def:     getToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleGet },
	},
	"capsule_list": {
		def:     listToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleList },
	},
	"capsule_delete": {
		def:     deleteToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleDelete },
	},
	"capsule_export": {
		def:     exportToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleExport },
	},
	"capsule_import": {
		def:     importToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleImport },
	},
	"progress_get": {
		def:     progressToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleProgress },
	},
	"card_mark": {
		def:     markCardToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleMarkCard },
	},
	"quiz_submit": {
		def:     quizSubmitToolDef,
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleQuizSubmit },
	},
}

// AllToolNames returns a list of all valid tool names.
func AllToolNames() []string {
	names := make([]string, 0, len(toolRegistry))
	for name := range toolRegistry {
		names = append(names, name)
	}
	return names
}

// ValidateDisabledTools returns a list of unknown tool names from the given list.
func ValidateDisabledTools(names []string) []string {
	unknown := make([]string, 0)
	for _, name := range names {
		if _, ok := toolRegistry[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	return unknown
}

// NewServer creates a new MCP server with pocketroom tools registered.
// Tools listed in cfg.DisabledTools are excluded from registration.
func NewServer(r *repo.Repository, tr *progress.Tracker, ed *editor.Editor, cfg *config.Config, baseDir, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"pocketroom",
		version,
		server.WithToolCapabilities(true),
	)

	h := NewHandlers(r, tr, ed, baseDir)

	disabled := make(map[string]bool)
	for _, name := range cfg.DisabledTools {
		disabled[name] = true
	}

	// Register tools (skip disabled)
	for name, entry := range toolRegistry {
		if disabled[name] {
			continue
		}
		s.AddTool(entry.def, entry.handler(h))
	}

	return s
}

// Run starts the MCP server using stdio transport.
func Run(r *repo.Repository, tr *progress.Tracker, ed *editor.Editor, cfg *config.Config, baseDir, version string) error {
	s := NewServer(r, tr, ed, cfg, baseDir, version)
	return server.ServeStdio(s)
}

// ToolHandlerFunc is the signature for tool handlers.
type ToolHandlerFunc func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error)
