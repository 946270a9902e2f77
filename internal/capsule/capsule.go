package capsule

// Type identifies the shape of a capsule's content.
type Type string

const (
	TypeNotes      Type = "notes"
	TypeFlashcards Type = "flashcards"
	TypeQuiz       Type = "quiz"
)

// KnownType reports whether t is one of the three content types.
func KnownType(t Type) bool {
	switch t {
	case TypeNotes, TypeFlashcards, TypeQuiz:
		return true
	}
	return false
}

// Content is the variant payload of a capsule. Exactly one of Notes,
// Flashcards or Quiz; the concrete type always matches the capsule's Type.
type Content interface {
	Type() Type

	// Items returns the number of studyable items (1 for notes, the card
	// count for decks, the question count for quizzes).
	Items() int
}

// Notes is free-form study text, treated as markdown for display.
type Notes struct {
	Text string
}

func (Notes) Type() Type { return TypeNotes }
func (Notes) Items() int { return 1 }

// Card is a single flashcard.
type Card struct {
	Front string `json:"front"`
	Back  string `json:"back"`
	Known bool   `json:"known"`
}

// Flashcards is an ordered deck of cards.
type Flashcards struct {
	Cards []Card
}

func (Flashcards) Type() Type   { return TypeFlashcards }
func (f Flashcards) Items() int { return len(f.Cards) }

// Question is a single multiple-choice question with exactly four options.
type Question struct {
	Prompt  string    `json:"question"`
	Options [4]string `json:"options"`
	Correct int       `json:"correct"`
}

// Quiz is an ordered sequence of questions.
type Quiz struct {
	Questions []Question
}

func (Quiz) Type() Type   { return TypeQuiz }
func (q Quiz) Items() int { return len(q.Questions) }

// Capsule is a single authored unit of study content.
type Capsule struct {
	// ID is a ULID that uniquely identifies this capsule. Assigned at first
	// save and immutable afterwards.
	ID string

	// Title is the non-empty display title.
	Title string

	// Description is optional free text.
	Description string

	// Content is the typed payload.
	Content Content

	// CreatedAt is the Unix timestamp when the capsule was first saved.
	CreatedAt int64

	// UpdatedAt is the Unix timestamp of the most recent save.
	UpdatedAt int64
}
