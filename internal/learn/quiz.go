package learn

import (
	"fmt"
	"math"

	"github.com/hollandm/pocketroom/internal/capsule"
	"github.com/hollandm/pocketroom/internal/errors"
	"github.com/hollandm/pocketroom/internal/progress"
)

// Unanswered marks a question with no recorded selection. It never matches a
// correct index, so skipped questions always grade wrong.
const Unanswered = -1

// QuizResult is the graded outcome of one attempt.
type QuizResult struct {
	// Score is the number of correctly answered questions.
	Score int `json:"score"`

	// Total is the question count.
	Total int `json:"total"`

	// Percentage is round(100 * Score / Total).
	Percentage int `json:"percentage"`

	// Answers holds the selected option per question, Unanswered for skips.
	Answers []int `json:"answers"`
}

// QuizSession runs one quiz attempt: collect selections, grade once, done.
// After Submit the session is terminal; selections and re-submission are
// rejected until the user closes it and starts a new one.
type QuizSession struct {
	c         capsule.Capsule
	questions []capsule.Question
	tracker   *progress.Tracker

	selections map[int]int
	result     *QuizResult
}

// NewQuizSession creates a session in the answering state with no selections.
func NewQuizSession(c capsule.Capsule, t *progress.Tracker) (*QuizSession, error) {
	quiz, ok := c.Content.(capsule.Quiz)
	if !ok {
		return nil, errors.NewInvalidRequest("capsule is not a quiz capsule")
	}
	if len(quiz.Questions) == 0 {
		return nil, errors.NewInvalidRequest("capsule has no questions")
	}
	return &QuizSession{
		c:          c,
		questions:  quiz.Questions,
		tracker:    t,
		selections: make(map[int]int),
	}, nil
}

// Capsule returns the capsule under review.
func (s *QuizSession) Capsule() capsule.Capsule { return s.c }

// Questions returns the quiz questions in order.
func (s *QuizSession) Questions() []capsule.Question { return s.questions }

// Graded reports whether the attempt has been submitted.
func (s *QuizSession) Graded() bool { return s.result != nil }

// Result returns the graded outcome, or nil while still answering.
func (s *QuizSession) Result() *QuizResult { return s.result }

// BestScore returns the best recorded percentage for this quiz, or nil if no
// attempt was ever graded.
func (s *QuizSession) BestScore() *int {
	return s.tracker.Get(s.c.ID).BestScore
}

// Selected returns the recorded selection for a question, or Unanswered.
func (s *QuizSession) Selected(question int) int {
	if opt, ok := s.selections[question]; ok {
		return opt
	}
	return Unanswered
}

// Select records the single selection for a question, replacing any prior
// one. Selecting after grading is rejected.
func (s *QuizSession) Select(question, option int) error {
	if s.result != nil {
		return errors.NewAlreadyGraded()
	}
	if question < 0 || question >= len(s.questions) {
		return errors.NewInvalidRequest(fmt.Sprintf("question %d out of range", question))
	}
	if option < 0 || option > 3 {
		return errors.NewInvalidRequest(fmt.Sprintf("option %d out of range", option))
	}
	s.selections[question] = option
	return nil
}

// Submit grades every question in order, records the percentage with the
// tracker, and moves the session to its terminal graded state. A second
// Submit is rejected.
func (s *QuizSession) Submit() (QuizResult, error) {
	if s.result != nil {
		return QuizResult{}, errors.NewAlreadyGraded()
	}

	result := QuizResult{
		Total:   len(s.questions),
		Answers: make([]int, len(s.questions)),
	}
	for i, q := range s.questions {
		selected := s.Selected(i)
		result.Answers[i] = selected
		if selected == q.Correct {
			result.Score++
		}
	}
	result.Percentage = int(math.Round(100 * float64(result.Score) / float64(result.Total)))

	if err := s.tracker.RecordQuizScore(s.c.ID, result.Percentage); err != nil {
		return QuizResult{}, err
	}

	s.result = &result
	return result, nil
}
