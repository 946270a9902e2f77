package capsule

import (
	"encoding/json"
	"fmt"
)

// envelope is the JSON wire form of a capsule. The content field's shape is
// discriminated by the type field: a string for notes, an array of cards for
// flashcards, an array of questions for a quiz.
type envelope struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	Type        Type            `json:"type"`
	Content     json.RawMessage `json:"content"`
	CreatedAt   int64           `json:"created_at"`
	UpdatedAt   int64           `json:"updated_at"`
}

// MarshalJSON encodes the capsule as a type-tagged envelope.
func (c Capsule) MarshalJSON() ([]byte, error) {
	var (
		raw []byte
		err error
	)
	switch content := c.Content.(type) {
	case Notes:
		raw, err = json.Marshal(content.Text)
	case Flashcards:
		raw, err = json.Marshal(content.Cards)
	case Quiz:
		raw, err = json.Marshal(content.Questions)
	default:
		return nil, fmt.Errorf("capsule %s has unsupported content %T", c.ID, c.Content)
	}
	if err != nil {
		return nil, err
	}

	return json.Marshal(envelope{
		ID:          c.ID,
		Title:       c.Title,
		Description: c.Description,
		Type:        c.Content.Type(),
		Content:     raw,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	})
}

// UnmarshalJSON decodes a type-tagged envelope back into a capsule.
func (c *Capsule) UnmarshalJSON(data []byte) error {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return err
	}

	content, err := DecodeContent(env.Type, env.Content)
	if err != nil {
		return err
	}

	*c = Capsule{
		ID:          env.ID,
		Title:       env.Title,
		Description: env.Description,
		Content:     content,
		CreatedAt:   env.CreatedAt,
		UpdatedAt:   env.UpdatedAt,
	}
	return nil
}

// DecodeContent decodes a raw content payload for the given type tag. The
// decode is shape-tolerant: it enforces the JSON kind only; non-emptiness
// rules belong to the editor.
func DecodeContent(t Type, raw json.RawMessage) (Content, error) {
	switch t {
	case TypeNotes:
		var text string
		if err := json.Unmarshal(raw, &text); err != nil {
			return nil, fmt.Errorf("notes content: %w", err)
		}
		return Notes{Text: text}, nil
	case TypeFlashcards:
		var cards []Card
		if err := json.Unmarshal(raw, &cards); err != nil {
			return nil, fmt.Errorf("flashcards content: %w", err)
		}
		return Flashcards{Cards: cards}, nil
	case TypeQuiz:
		var questions []Question
		if err := json.Unmarshal(raw, &questions); err != nil {
			return nil, fmt.Errorf("quiz content: %w", err)
		}
		return Quiz{Questions: questions}, nil
	default:
		return nil, fmt.Errorf("unknown capsule type %q", t)
	}
}
