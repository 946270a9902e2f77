// Package editor converts raw drafts into canonical capsules. Manual save
// surfaces the first violated rule; autosave runs the same validation
// silently behind a debounce.
package editor

import (
	"crypto/rand"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/oklog/ulid/v2"

	"github.com/hollandm/pocketroom/internal/capsule"
	"github.com/hollandm/pocketroom/internal/errors"
	"github.com/hollandm/pocketroom/internal/repo"
)

// Draft is the raw field state collected from a form or wizard. Exactly one
// of Notes, Cards or Questions is meaningful, selected by Type.
type Draft struct {
	// ID is empty for a create, or the target capsule id for an update.
	ID          string          `json:"id,omitempty"`
	Title       string          `json:"title" validate:"required"`
	Description string          `json:"description,omitempty" validate:"-"`
	Type        capsule.Type    `json:"type" validate:"required,oneof=notes flashcards quiz"`
	Notes       string          `json:"notes,omitempty" validate:"-"`
	Cards       []CardDraft     `json:"cards,omitempty" validate:"-"`
	Questions   []QuestionDraft `json:"questions,omitempty" validate:"-"`
}

// CardDraft is one flashcard's raw field pair.
type CardDraft struct {
	Front string `json:"front" validate:"required"`
	Back  string `json:"back" validate:"required"`
}

// QuestionDraft is one quiz question's raw fields. Correct is a pointer so
// "no option selected" is distinguishable from option 0.
type QuestionDraft struct {
	Prompt  string   `json:"question" validate:"required"`
	Options []string `json:"options" validate:"len=4,dive,required"`
	Correct *int     `json:"correct" validate:"required,min=0,max=3"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Editor validates drafts and commits them through the repository. A single
// mutex serializes manual saves against debounced autosave commits so a save
// is always one atomic upsert of a freshly validated draft.
type Editor struct {
	mu   sync.Mutex
	repo *repo.Repository
}

// New creates an Editor writing through the given repository.
func New(r *repo.Repository) *Editor {
	return &Editor{repo: r}
}

// Save validates the draft and upserts the resulting capsule. On a create
// (empty draft ID) it assigns a fresh ULID and creation timestamp; on an
// update it preserves both and refreshes UpdatedAt. On validation failure
// nothing is mutated and the first violated rule is returned.
func (e *Editor) Save(d Draft) (capsule.Capsule, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	d = normalize(d)

	var prior capsule.Capsule
	if d.ID != "" {
		prev, err := e.repo.Get(d.ID)
		if err != nil {
			return capsule.Capsule{}, err
		}
		prior = prev
	}
	if d.ID != "" && d.Type != "" && d.Type != prior.Content.Type() {
		return capsule.Capsule{}, errors.NewValidationFailed("type_immutable",
			"capsule type is fixed after creation")
	}

	content, err := buildContent(d, prior.Content)
	if err != nil {
		return capsule.Capsule{}, err
	}

	now := time.Now().Unix()
	c := capsule.Capsule{
		ID:          d.ID,
		Title:       d.Title,
		Description: d.Description,
		Content:     content,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if d.ID == "" {
		id, err := generateULID()
		if err != nil {
			return capsule.Capsule{}, errors.NewInternal(err)
		}
		c.ID = id
	} else {
		c.CreatedAt = prior.CreatedAt
	}

	if err := e.repo.Upsert(c); err != nil {
		return capsule.Capsule{}, err
	}
	return c, nil
}

// normalize trims every text field of the draft. The slices are cloned
// first so trimming never writes into the caller's backing arrays.
func normalize(d Draft) Draft {
	d.Title = strings.TrimSpace(d.Title)
	d.Description = strings.TrimSpace(d.Description)
	d.Notes = strings.TrimSpace(d.Notes)
	d.Cards = slices.Clone(d.Cards)
	for i := range d.Cards {
		d.Cards[i].Front = strings.TrimSpace(d.Cards[i].Front)
		d.Cards[i].Back = strings.TrimSpace(d.Cards[i].Back)
	}
	d.Questions = slices.Clone(d.Questions)
	for i := range d.Questions {
		d.Questions[i].Prompt = strings.TrimSpace(d.Questions[i].Prompt)
		d.Questions[i].Options = slices.Clone(d.Questions[i].Options)
		for j := range d.Questions[i].Options {
			d.Questions[i].Options[j] = strings.TrimSpace(d.Questions[i].Options[j])
		}
	}
	return d
}

// buildContent validates the type-specific fields and assembles the canonical
// content. prior is the capsule's previous content on an update, or nil; it
// supplies the known flag for cards that kept their position.
func buildContent(d Draft, prior capsule.Content) (capsule.Content, error) {
	if err := validate.Struct(d); err != nil {
		return nil, draftRuleError(err)
	}

	switch d.Type {
	case capsule.TypeNotes:
		if d.Notes == "" {
			return nil, errors.NewValidationFailed("notes_required", "notes content is required")
		}
		return capsule.Notes{Text: d.Notes}, nil

	case capsule.TypeFlashcards:
		if len(d.Cards) == 0 {
			return nil, errors.NewValidationFailed("cards_required", "add at least one flashcard")
		}
		var priorCards []capsule.Card
		if fc, ok := prior.(capsule.Flashcards); ok {
			priorCards = fc.Cards
		}
		cards := make([]capsule.Card, len(d.Cards))
		for i, cd := range d.Cards {
			if err := validate.Struct(cd); err != nil {
				return nil, errors.NewValidationFailed("card_text_required",
					fmt.Sprintf("card %d needs both front and back text", i+1))
			}
			known := i < len(priorCards) && priorCards[i].Known
			cards[i] = capsule.Card{Front: cd.Front, Back: cd.Back, Known: known}
		}
		return capsule.Flashcards{Cards: cards}, nil

	case capsule.TypeQuiz:
		if len(d.Questions) == 0 {
			return nil, errors.NewValidationFailed("questions_required", "add at least one question")
		}
		questions := make([]capsule.Question, len(d.Questions))
		for i, qd := range d.Questions {
			if err := validate.Struct(qd); err != nil {
				return nil, questionRuleError(i, err)
			}
			var options [4]string
			copy(options[:], qd.Options)
			questions[i] = capsule.Question{
				Prompt:  qd.Prompt,
				Options: options,
				Correct: *qd.Correct,
			}
		}
		return capsule.Quiz{Questions: questions}, nil
	}

	// unreachable: oneof catches unknown types above
	return nil, errors.NewValidationFailed("type_unknown", fmt.Sprintf("unknown capsule type %q", d.Type))
}

// draftRuleError maps the first scalar-field violation to a named rule.
func draftRuleError(err error) error {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok || len(verrs) == 0 {
		return errors.NewInternal(err)
	}
	fe := verrs[0]
	switch fe.Field() {
	case "Title":
		return errors.NewValidationFailed("title_required", "title is required")
	case "Type":
		if fe.Tag() == "required" {
			return errors.NewValidationFailed("type_required", "select a capsule type")
		}
		return errors.NewValidationFailed("type_unknown", fmt.Sprintf("unknown capsule type %q", fe.Value()))
	}
	return errors.NewInternal(err)
}

// questionRuleError maps a question's first violation to a named rule.
func questionRuleError(index int, err error) error {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok || len(verrs) == 0 {
		return errors.NewInternal(err)
	}
	n := index + 1
	fe := verrs[0]
	switch {
	case fe.Field() == "Prompt":
		return errors.NewValidationFailed("question_text_required",
			fmt.Sprintf("question %d is empty", n))
	// dive violations report as Options[i]
	case strings.HasPrefix(fe.Field(), "Options"):
		return errors.NewValidationFailed("options_required",
			fmt.Sprintf("question %d needs 4 non-empty options", n))
	case fe.Field() == "Correct":
		if fe.Tag() == "required" {
			return errors.NewValidationFailed("correct_required",
				fmt.Sprintf("select the correct answer for question %d", n))
		}
		return errors.NewValidationFailed("correct_range",
			fmt.Sprintf("question %d has an out-of-range correct answer", n))
	}
	return errors.NewInternal(err)
}

// generateULID generates a new ULID.
func generateULID() (string, error) {
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(time.Now()), entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
