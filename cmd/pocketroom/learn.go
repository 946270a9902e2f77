package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/hollandm/pocketroom/internal/errors"
	"github.com/hollandm/pocketroom/internal/learn"
)

// learnCmd creates the learn command.
func learnCmd(a *app) *cli.Command {
	return &cli.Command{
		Name:      "learn",
		Usage:     "Start an interactive learn session for a capsule",
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return outputError(errors.NewInvalidRequest("capsule id is required"))
			}
			if !isTerminal() {
				return outputError(errors.NewInvalidRequest("learn mode needs an interactive terminal"))
			}

			cp, err := a.repo.Get(c.Args().First())
			if err != nil {
				return outputError(err)
			}

			session, err := learn.NewSession(cp, a.tracker)
			if err != nil {
				return outputError(err)
			}

			runner := newLearnRunner(os.Stdin, os.Stdout)
			if err := runner.run(session); err != nil {
				return outputError(err)
			}
			return nil
		},
	}
}

// learnRunner drives a learn session over a terminal.
type learnRunner struct {
	in     *bufio.Reader
	out    io.Writer
	bold   *color.Color
	italic *color.Color
}

func newLearnRunner(in io.Reader, out io.Writer) *learnRunner {
	return &learnRunner{
		in:     bufio.NewReader(in),
		out:    out,
		bold:   color.New(color.Bold),
		italic: color.New(color.Italic),
	}
}

func (r *learnRunner) run(session learn.Session) error {
	switch s := session.(type) {
	case *learn.NotesSession:
		return r.runNotes(s)
	case *learn.FlashcardSession:
		return r.runFlashcards(s)
	case *learn.QuizSession:
		return r.runQuiz(s)
	}
	return errors.NewInternal(fmt.Errorf("unhandled session type %T", session))
}

// runNotes prints the notes text and returns.
func (r *learnRunner) runNotes(s *learn.NotesSession) error {
	cp := s.Capsule()
	_, _ = r.bold.Fprintln(r.out, cp.Title)
	if cp.Description != "" {
		_, _ = r.italic.Fprintln(r.out, cp.Description)
	}
	fmt.Fprintln(r.out)
	fmt.Fprintln(r.out, s.Text())
	return nil
}

// runFlashcards loops cards until the user quits: flip to reveal, mark known
// or unknown to advance.
func (r *learnRunner) runFlashcards(s *learn.FlashcardSession) error {
	cp := s.Capsule()
	_, _ = r.bold.Fprintln(r.out, cp.Title)

	for {
		known, unknown := s.Counts()
		fmt.Fprintf(r.out, "\ncard %d/%d   known %d, still learning %d\n",
			s.Index()+1, s.Length(), known, unknown)

		card := s.Card()
		if s.Face() == learn.FaceFront {
			_, _ = r.bold.Fprintf(r.out, "  %s\n", card.Front)
		} else {
			_, _ = r.italic.Fprintf(r.out, "  %s\n", card.Back)
		}

		fmt.Fprint(r.out, "[f]lip  [k]now it  [s]till learning  [q]uit: ")
		input, err := r.in.ReadString('\n')
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return fmt.Errorf("error reading input: %w", err)
		}

		switch strings.ToLower(strings.TrimSpace(input)) {
		case "f", "":
			s.Flip()
		case "k":
			if err := s.Mark(true); err != nil {
				return err
			}
		case "s":
			if err := s.Mark(false); err != nil {
				return err
			}
		case "q":
			return nil
		}
	}
}

// runQuiz asks every question in order, then grades the whole attempt.
func (r *learnRunner) runQuiz(s *learn.QuizSession) error {
	cp := s.Capsule()
	_, _ = r.bold.Fprintln(r.out, cp.Title)

	questions := s.Questions()
	for i, q := range questions {
		fmt.Fprintf(r.out, "\n%d/%d. ", i+1, len(questions))
		_, _ = r.bold.Fprintln(r.out, q.Prompt)
		for j, opt := range q.Options {
			fmt.Fprintf(r.out, "  %d) %s\n", j+1, opt)
		}

		for {
			fmt.Fprint(r.out, "answer [1-4], or enter to skip: ")
			input, err := r.in.ReadString('\n')
			if err != nil {
				if err == io.EOF {
					break
				}
				return fmt.Errorf("error reading input: %w", err)
			}
			input = strings.TrimSpace(input)
			if input == "" {
				break
			}
			n, err := strconv.Atoi(input)
			if err != nil || n < 1 || n > 4 {
				fmt.Fprintln(r.out, "pick an option between 1 and 4")
				continue
			}
			if err := s.Select(i, n-1); err != nil {
				return err
			}
			break
		}
	}

	result, err := s.Submit()
	if err != nil {
		return err
	}

	fmt.Fprintln(r.out)
	if result.Percentage >= 50 {
		color.Green("score: %d/%d (%d%%)", result.Score, result.Total, result.Percentage)
	} else {
		color.Red("score: %d/%d (%d%%)", result.Score, result.Total, result.Percentage)
	}
	if rec := s.BestScore(); rec != nil {
		fmt.Fprintf(r.out, "best score: %d%%\n", *rec)
	}
	return nil
}
