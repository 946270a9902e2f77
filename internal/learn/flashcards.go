package learn

import (
	"github.com/hollandm/pocketroom/internal/capsule"
	"github.com/hollandm/pocketroom/internal/errors"
	"github.com/hollandm/pocketroom/internal/progress"
)

// Face is the side of the current card shown to the user.
type Face string

const (
	FaceFront Face = "front"
	FaceBack  Face = "back"
)

// FlashcardSession cycles through a deck: show, flip, mark, advance. The
// index wraps past the last card; the session only ends when the user closes
// it. Known/unknown counts are derived from the tracker on every read, never
// cached here.
type FlashcardSession struct {
	c       capsule.Capsule
	deck    []capsule.Card
	tracker *progress.Tracker

	index int
	face  Face
}

// NewFlashcardSession creates a session positioned on the first card, front up.
func NewFlashcardSession(c capsule.Capsule, t *progress.Tracker) (*FlashcardSession, error) {
	fc, ok := c.Content.(capsule.Flashcards)
	if !ok {
		return nil, errors.NewInvalidRequest("capsule is not a flashcard capsule")
	}
	if len(fc.Cards) == 0 {
		return nil, errors.NewInvalidRequest("capsule has no cards")
	}
	return &FlashcardSession{
		c:       c,
		deck:    fc.Cards,
		tracker: t,
		face:    FaceFront,
	}, nil
}

// Capsule returns the capsule under review.
func (s *FlashcardSession) Capsule() capsule.Capsule { return s.c }

// Card returns the card at the current position.
func (s *FlashcardSession) Card() capsule.Card { return s.deck[s.index] }

// Index returns the current zero-based position.
func (s *FlashcardSession) Index() int { return s.index }

// Length returns the deck size.
func (s *FlashcardSession) Length() int { return len(s.deck) }

// Face returns which side of the current card is up.
func (s *FlashcardSession) Face() Face { return s.face }

// Flip turns the current card over. Nothing else changes.
func (s *FlashcardSession) Flip() {
	if s.face == FaceFront {
		s.face = FaceBack
	} else {
		s.face = FaceFront
	}
}

// Mark records the current card as known or unknown, then advances to the
// next card front-up, wrapping from the last card to the first.
func (s *FlashcardSession) Mark(known bool) error {
	if err := s.tracker.MarkCard(s.c.ID, s.Card().ID(), known); err != nil {
		return err
	}
	s.index = (s.index + 1) % len(s.deck)
	s.face = FaceFront
	return nil
}

// Counts returns how many cards of this deck are currently known and unknown,
// read live from the tracker.
func (s *FlashcardSession) Counts() (known, unknown int) {
	rec := s.tracker.Get(s.c.ID)
	for _, card := range s.deck {
		if rec.Knows(card.ID()) {
			known++
		}
	}
	return known, len(s.deck) - known
}
