package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"

	"github.com/hollandm/pocketroom/internal/capsule"
	"github.com/hollandm/pocketroom/internal/editor"
	"github.com/hollandm/pocketroom/internal/errors"
)

// wizard collects a draft field by field. Every completed answer feeds the
// autosaver, so a half-finished capsule is already persisted once it validates.
type wizard struct {
	in    *bufio.Reader
	out   io.Writer
	bold  *color.Color
	faint *color.Color

	saver *editor.Autosaver
	draft editor.Draft
}

// runWizard drives an interactive create or edit starting from base.
func runWizard(a *app, base editor.Draft) error {
	w := &wizard{
		in:    bufio.NewReader(os.Stdin),
		out:   os.Stdout,
		bold:  color.New(color.Bold),
		faint: color.New(color.Faint),
		draft: base,
	}
	w.saver = editor.NewAutosaver(a.editor, a.autosaveDelay(), func(capsule.Capsule) {
		_, _ = w.faint.Fprintln(w.out, "· saved")
	})
	defer w.saver.Close()

	if err := w.collect(); err != nil {
		return outputError(err)
	}

	// Re-stage the final state so Flush always has a draft to commit, even
	// when the debounce already fired.
	w.changed()
	saved, err := w.saver.Flush()
	if err != nil {
		if rule := errors.Rule(err); rule != "" {
			fmt.Fprintf(w.out, "cannot save: %s\n", err.(*errors.Error).Message)
		}
		return outputError(err)
	}

	fmt.Fprintln(w.out)
	_, _ = w.bold.Fprintf(w.out, "saved %s (%s)\n", saved.Title, saved.ID)
	return nil
}

func (w *wizard) collect() error {
	title, err := w.prompt("title", w.draft.Title)
	if err != nil {
		return err
	}
	w.draft.Title = title
	w.changed()

	desc, err := w.prompt("description", w.draft.Description)
	if err != nil {
		return err
	}
	w.draft.Description = desc
	w.changed()

	if w.draft.Type == "" {
		t, err := w.promptType()
		if err != nil {
			return err
		}
		w.draft.Type = t
		w.changed()
	}

	switch w.draft.Type {
	case capsule.TypeNotes:
		return w.collectNotes()
	case capsule.TypeFlashcards:
		return w.collectCards()
	case capsule.TypeQuiz:
		return w.collectQuestions()
	}
	return errors.NewValidationFailed("type_unknown", fmt.Sprintf("unknown capsule type %q", w.draft.Type))
}

// collectNotes reads free text until a line containing only ".". New text
// replaces the stored notes; entering nothing keeps them.
func (w *wizard) collectNotes() error {
	if w.draft.Notes != "" {
		_, _ = w.faint.Fprintln(w.out, "current notes kept unless new text is entered")
	}
	fmt.Fprintln(w.out, "notes (finish with a single \".\" line):")

	var lines []string
	for {
		line, err := w.in.ReadString('\n')
		if err != nil {
			if err == io.EOF {
				break
			}
			return errors.NewInternal(err)
		}
		line = strings.TrimRight(line, "\n")
		if line == "." {
			break
		}
		lines = append(lines, line)
	}

	if text := strings.Join(lines, "\n"); text != "" {
		w.draft.Notes = text
		w.changed()
	}
	return nil
}

// collectCards appends flashcards until an empty front.
func (w *wizard) collectCards() error {
	if n := len(w.draft.Cards); n > 0 {
		_, _ = w.faint.Fprintf(w.out, "%d existing cards kept; add more below\n", n)
	}
	for {
		front, err := w.prompt("front (empty to finish)", "")
		if err != nil {
			return err
		}
		if front == "" {
			return nil
		}
		back, err := w.prompt("back", "")
		if err != nil {
			return err
		}
		w.draft.Cards = append(w.draft.Cards, editor.CardDraft{Front: front, Back: back})
		w.changed()
	}
}

// collectQuestions appends quiz questions until an empty prompt.
func (w *wizard) collectQuestions() error {
	if n := len(w.draft.Questions); n > 0 {
		_, _ = w.faint.Fprintf(w.out, "%d existing questions kept; add more below\n", n)
	}
	for {
		prompt, err := w.prompt("question (empty to finish)", "")
		if err != nil {
			return err
		}
		if prompt == "" {
			return nil
		}

		options := make([]string, 4)
		for i := range options {
			opt, err := w.prompt(fmt.Sprintf("option %d", i+1), "")
			if err != nil {
				return err
			}
			options[i] = opt
		}

		var correct *int
		for correct == nil {
			ans, err := w.prompt("correct option [1-4]", "")
			if err != nil {
				return err
			}
			n, convErr := strconv.Atoi(ans)
			if convErr != nil || n < 1 || n > 4 {
				fmt.Fprintln(w.out, "pick an option between 1 and 4")
				continue
			}
			idx := n - 1
			correct = &idx
		}

		w.draft.Questions = append(w.draft.Questions, editor.QuestionDraft{
			Prompt:  prompt,
			Options: options,
			Correct: correct,
		})
		w.changed()
	}
}

// promptType asks for the capsule type until a known one is entered.
func (w *wizard) promptType() (capsule.Type, error) {
	for {
		t, err := w.prompt("type (notes|flashcards|quiz)", "")
		if err != nil {
			return "", err
		}
		ct := capsule.Type(t)
		if capsule.KnownType(ct) {
			return ct, nil
		}
		fmt.Fprintln(w.out, "unknown type")
	}
}

// prompt reads one line, falling back to def on empty input.
func (w *wizard) prompt(label, def string) (string, error) {
	if def != "" {
		_, _ = w.bold.Fprintf(w.out, "%s [%s]: ", label, def)
	} else {
		_, _ = w.bold.Fprintf(w.out, "%s: ", label)
	}
	line, err := w.in.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", errors.NewInternal(err)
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return def, nil
	}
	return line, nil
}

// changed hands the current draft to the autosaver.
func (w *wizard) changed() {
	w.saver.Change(w.draft)
}
