package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/hollandm/pocketroom/internal/capsule"
	"github.com/hollandm/pocketroom/internal/editor"
	"github.com/hollandm/pocketroom/internal/errors"
	"github.com/hollandm/pocketroom/internal/transfer"
	"github.com/hollandm/pocketroom/internal/web"
)

// newCLIApp creates the CLI application with all commands.
func newCLIApp(a *app) *cli.App {
	cliApp := &cli.App{
		Name:    "pocketroom",
		Usage:   "Local notes, flashcards and quizzes",
		Version: Version,
		Commands: []*cli.Command{
			createCmd(a),
			editCmd(a),
			listCmd(a),
			showCmd(a),
			deleteCmd(a),
			learnCmd(a),
			progressCmd(a),
			exportCmd(a),
			importCmd(a),
			webCmd(a),
		},
	}
	// Disable default exit error handler to allow proper error return in tests
	cliApp.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return cliApp
}

// createCmd creates the create command.
func createCmd(a *app) *cli.Command {
	return &cli.Command{
		Name:  "create",
		Usage: "Create a capsule (interactive wizard, or a draft piped via stdin)",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "title", Aliases: []string{"t"}, Usage: "Capsule title"},
			&cli.StringFlag{Name: "description", Aliases: []string{"d"}, Usage: "Capsule description"},
			&cli.StringFlag{Name: "type", Usage: "Capsule type: notes|flashcards|quiz"},
		},
		Action: func(c *cli.Context) error {
			if !stdinHasData() {
				return runWizard(a, editor.Draft{})
			}

			draft, err := draftFromStdin(c)
			if err != nil {
				return outputError(err)
			}

			saved, err := a.editor.Save(draft)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(saved)
		},
	}
}

// editCmd creates the edit command.
func editCmd(a *app) *cli.Command {
	return &cli.Command{
		Name:      "edit",
		Usage:     "Edit a capsule (interactive wizard, or a draft piped via stdin)",
		ArgsUsage: "<id>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "title", Aliases: []string{"t"}, Usage: "New title"},
			&cli.StringFlag{Name: "description", Aliases: []string{"d"}, Usage: "New description"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return outputError(errors.NewInvalidRequest("capsule id is required"))
			}
			id := c.Args().First()

			existing, err := a.repo.Get(id)
			if err != nil {
				return outputError(err)
			}
			base := draftFromCapsule(existing)

			if !stdinHasData() {
				return runWizard(a, base)
			}

			over, err := draftFromStdin(c)
			if err != nil {
				return outputError(err)
			}
			draft := overlayDraft(base, over)

			saved, err := a.editor.Save(draft)
			if err != nil {
				return outputError(err)
			}
			return outputJSON(saved)
		},
	}
}

// listItem is one row of the list command output.
type listItem struct {
	ID         string       `json:"id"`
	Title      string       `json:"title"`
	Type       capsule.Type `json:"type"`
	Items      int          `json:"items"`
	KnownCards int          `json:"known_cards,omitempty"`
	BestScore  *int         `json:"best_score,omitempty"`
	UpdatedAt  int64        `json:"updated_at"`
}

// listCmd creates the list command.
func listCmd(a *app) *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "List all capsules with progress summaries",
		Action: func(_ *cli.Context) error {
			capsules := a.repo.List()
			items := make([]listItem, 0, len(capsules))
			for _, c := range capsules {
				rec := a.tracker.Get(c.ID)
				items = append(items, listItem{
					ID:         c.ID,
					Title:      c.Title,
					Type:       c.Content.Type(),
					Items:      c.Content.Items(),
					KnownCards: len(rec.Known),
					BestScore:  rec.BestScore,
					UpdatedAt:  c.UpdatedAt,
				})
			}
			return outputJSON(map[string]any{"capsules": items, "count": len(items)})
		},
	}
}

// showCmd creates the show command.
func showCmd(a *app) *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "Show a capsule by ID",
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return outputError(errors.NewInvalidRequest("capsule id is required"))
			}
			cp, err := a.repo.Get(c.Args().First())
			if err != nil {
				return outputError(err)
			}
			return outputJSON(cp)
		},
	}
}

// deleteCmd creates the delete command.
func deleteCmd(a *app) *cli.Command {
	return &cli.Command{
		Name:      "delete",
		Usage:     "Delete a capsule",
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return outputError(errors.NewInvalidRequest("capsule id is required"))
			}
			id := c.Args().First()
			if err := a.repo.Remove(id); err != nil {
				return outputError(err)
			}
			return outputJSON(map[string]string{"deleted": id})
		},
	}
}

// progressRow is one row of the progress command output.
type progressRow struct {
	CapsuleID  string       `json:"capsule_id"`
	Title      string       `json:"title"`
	Type       capsule.Type `json:"type"`
	KnownCards int          `json:"known_cards"`
	TotalCards int          `json:"total_cards,omitempty"`
	BestScore  *int         `json:"best_score,omitempty"`
}

// progressCmd creates the progress command.
func progressCmd(a *app) *cli.Command {
	return &cli.Command{
		Name:      "progress",
		Usage:     "Show learning progress for one capsule or all",
		ArgsUsage: "[id]",
		Action: func(c *cli.Context) error {
			if c.NArg() > 0 {
				cp, err := a.repo.Get(c.Args().First())
				if err != nil {
					return outputError(err)
				}
				return outputJSON(progressFor(a, cp))
			}

			rows := make([]progressRow, 0)
			for _, cp := range a.repo.List() {
				rows = append(rows, progressFor(a, cp))
			}
			return outputJSON(map[string]any{"progress": rows, "count": len(rows)})
		},
	}
}

func progressFor(a *app, cp capsule.Capsule) progressRow {
	rec := a.tracker.Get(cp.ID)
	row := progressRow{
		CapsuleID:  cp.ID,
		Title:      cp.Title,
		Type:       cp.Content.Type(),
		KnownCards: len(rec.Known),
		BestScore:  rec.BestScore,
	}
	if fc, ok := cp.Content.(capsule.Flashcards); ok {
		row.TotalCards = len(fc.Cards)
	}
	return row
}

// exportCmd creates the export command.
func exportCmd(a *app) *cli.Command {
	return &cli.Command{
		Name:      "export",
		Usage:     "Export a capsule to a JSON file",
		ArgsUsage: "<id>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "path", Aliases: []string{"p"}, Usage: "Export file path (default: ~/.pocketroom/exports/<title>.json)"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return outputError(errors.NewInvalidRequest("capsule id is required"))
			}
			cp, err := a.repo.Get(c.Args().First())
			if err != nil {
				return outputError(err)
			}

			path := c.String("path")
			if path == "" {
				path = transfer.DefaultPath(a.baseDir, cp)
			}
			if err := transfer.WriteFile(cp, path); err != nil {
				return outputError(err)
			}
			return outputJSON(map[string]string{"id": cp.ID, "path": path})
		},
	}
}

// importCmd creates the import command.
func importCmd(a *app) *cli.Command {
	return &cli.Command{
		Name:      "import",
		Usage:     "Import a capsule from a JSON file or stdin",
		ArgsUsage: "[path]",
		Action: func(c *cli.Context) error {
			var (
				cp capsule.Capsule
				err error
			)
			switch {
			case c.NArg() > 0:
				cp, err = transfer.ReadFile(c.Args().First(), a.repo)
			case stdinHasData():
				var doc []byte
				doc, err = io.ReadAll(os.Stdin)
				if err != nil {
					return outputError(errors.NewInternal(err))
				}
				cp, err = transfer.Import(doc, a.repo)
			default:
				return outputError(errors.NewInvalidRequest("pass a file path or pipe a document via stdin"))
			}
			if err != nil {
				return outputError(err)
			}
			return outputJSON(cp)
		},
	}
}

// webCmd creates the web command.
func webCmd(a *app) *cli.Command {
	return &cli.Command{
		Name:  "web",
		Usage: "Serve the read-only web view",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "bind", Usage: "Bind address (default from config)"},
			&cli.IntFlag{Name: "port", Usage: "Port (default from config)"},
		},
		Action: func(c *cli.Context) error {
			bind := a.cfg.WebBind
			if c.IsSet("bind") {
				bind = c.String("bind")
			}
			port := a.cfg.WebPort
			if c.IsSet("port") {
				port = c.Int("port")
			}

			srv := web.NewServer(a.repo, a.tracker, Version, bind, port)
			if err := web.Run(srv); err != nil {
				return outputError(err)
			}
			return nil
		},
	}
}

// Helper functions

// draftFromStdin parses a piped draft document, with flags overriding the
// scalar fields. A non-JSON body is treated as raw notes text.
func draftFromStdin(c *cli.Context) (editor.Draft, error) {
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return editor.Draft{}, errors.NewInternal(err)
	}

	var draft editor.Draft
	if err := json.Unmarshal(data, &draft); err != nil {
		// Raw text body: usable as notes content only
		draft = editor.Draft{Type: capsule.TypeNotes, Notes: string(data)}
	}
	draft.ID = "" // the edit command supplies the target id itself

	if t := c.String("title"); t != "" {
		draft.Title = t
	}
	if d := c.String("description"); d != "" {
		draft.Description = d
	}
	if ty := c.String("type"); ty != "" {
		draft.Type = capsule.Type(ty)
	}
	return draft, nil
}

// draftFromCapsule converts a stored capsule back into editable draft form.
func draftFromCapsule(c capsule.Capsule) editor.Draft {
	d := editor.Draft{
		ID:          c.ID,
		Title:       c.Title,
		Description: c.Description,
		Type:        c.Content.Type(),
	}
	switch content := c.Content.(type) {
	case capsule.Notes:
		d.Notes = content.Text
	case capsule.Flashcards:
		d.Cards = make([]editor.CardDraft, len(content.Cards))
		for i, card := range content.Cards {
			d.Cards[i] = editor.CardDraft{Front: card.Front, Back: card.Back}
		}
	case capsule.Quiz:
		d.Questions = make([]editor.QuestionDraft, len(content.Questions))
		for i, q := range content.Questions {
			correct := q.Correct
			d.Questions[i] = editor.QuestionDraft{
				Prompt:  q.Prompt,
				Options: append([]string(nil), q.Options[:]...),
				Correct: &correct,
			}
		}
	}
	return d
}

// overlayDraft applies the fields present in over on top of base.
func overlayDraft(base, over editor.Draft) editor.Draft {
	out := base
	if over.Title != "" {
		out.Title = over.Title
	}
	if over.Description != "" {
		out.Description = over.Description
	}
	if over.Type != "" {
		// Passed through as-is; the editor rejects a changed type on save
		out.Type = over.Type
	}
	if over.Notes != "" {
		out.Notes = over.Notes
	}
	if over.Cards != nil {
		out.Cards = over.Cards
	}
	if over.Questions != nil {
		out.Questions = over.Questions
	}
	return out
}

// outputJSON marshals result to stdout as JSON.
func outputJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputError formats error for CLI.
func outputError(err error) error {
	if perr, ok := err.(*errors.Error); ok {
		return cli.Exit(fmt.Sprintf("[%s] %s", perr.Code, perr.Message), 1)
	}
	return cli.Exit(err.Error(), 1)
}

// stdinHasData returns true if stdin has piped data (not a terminal).
func stdinHasData() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) == 0
}
