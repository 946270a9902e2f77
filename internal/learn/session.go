// Package learn implements the review engine: one session per invocation,
// scoped to a single capsule, with a variant per content type. Sessions read
// the capsule, never mutate it; all mastery updates go through the progress
// tracker.
package learn

import (
	"github.com/hollandm/pocketroom/internal/capsule"
	"github.com/hollandm/pocketroom/internal/errors"
	"github.com/hollandm/pocketroom/internal/progress"
)

// Session is the common surface of the three variants. Hosts type-switch on
// the concrete session to drive the right interaction.
type Session interface {
	Capsule() capsule.Capsule
}

// NewSession builds the session variant matching the capsule's content type.
func NewSession(c capsule.Capsule, t *progress.Tracker) (Session, error) {
	switch c.Content.(type) {
	case capsule.Notes:
		return NewNotesSession(c)
	case capsule.Flashcards:
		return NewFlashcardSession(c, t)
	case capsule.Quiz:
		return NewQuizSession(c, t)
	}
	return nil, errors.NewInvalidRequest("capsule has no learnable content")
}

// NotesSession is display-only: no transitions, closed by the user.
type NotesSession struct {
	c capsule.Capsule
}

// NewNotesSession creates the stateless notes variant.
func NewNotesSession(c capsule.Capsule) (*NotesSession, error) {
	if _, ok := c.Content.(capsule.Notes); !ok {
		return nil, errors.NewInvalidRequest("capsule is not a notes capsule")
	}
	return &NotesSession{c: c}, nil
}

// Capsule returns the capsule under review.
func (s *NotesSession) Capsule() capsule.Capsule { return s.c }

// Text returns the notes body.
func (s *NotesSession) Text() string {
	return s.c.Content.(capsule.Notes).Text
}
