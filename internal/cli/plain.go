package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"trivia-quiz/internal/quiz"
	"trivia-quiz/internal/view"
)

const maxAttempts = 3

var (
	errQuit             = errors.New("quit requested")
	errTooManyAttempts  = errors.New("too many invalid answers")
	errSubscriptionDone = errors.New("quiz view closed")
	errNoOptions        = errors.New("question has no options")
)

// plainView drives a quiz through line-based prompts.
type plainView struct {
	driver view.Driver
	reader *bufio.Reader
	out    io.Writer
}

// runPlain plays the view until the user declines to continue, enters q,
// or input ends.
func runPlain(ctx context.Context, driver view.Driver, in io.Reader, out io.Writer) error {
	updates, cancel := driver.Subscribe()
	defer cancel()

	p := &plainView{driver: driver, reader: bufio.NewReader(in), out: out}

	state, ok := <-updates
	if !ok {
		return errSubscriptionDone
	}

	for {
		var err error
		state, err = p.step(ctx, updates, state)
		switch {
		case err == nil:
		case errors.Is(err, errQuit), errors.Is(err, io.EOF):
			return nil
		default:
			return err
		}
	}
}

func (p *plainView) step(ctx context.Context, updates <-chan quiz.State, state quiz.State) (quiz.State, error) {
	screen := view.Build(state)

	switch screen.Kind {
	case view.KindLoading:
		fmt.Fprintln(p.out, screen.Message)
		return waitLoaded(ctx, updates)

	case view.KindLoadFailed:
		fmt.Fprintf(p.out, "\nCould not load questions: %s\n", screen.Message)
		retry, err := p.promptYesNo(screen.ActionLabel + "?")
		if err != nil {
			return state, err
		}
		if !retry {
			return state, errQuit
		}
		return p.act(p.driver.Retry)

	case view.KindEmpty:
		fmt.Fprintln(p.out, screen.Message)
		return state, errQuit

	case view.KindResults:
		fmt.Fprintf(p.out, "\n%s\n", screen.Message)
		again, err := p.promptYesNo(screen.ActionLabel + "?")
		if err != nil {
			return state, err
		}
		if !again {
			return state, errQuit
		}
		return p.act(p.driver.Reset)

	default:
		return p.ask(state, screen)
	}
}

func (p *plainView) ask(state quiz.State, screen view.Screen) (quiz.State, error) {
	printQuestion(p.out, screen)

	chosenIndex, err := getAnswer(p.reader, p.out, len(screen.Options))
	fmt.Fprintln(p.out)
	if errors.Is(err, errTooManyAttempts) {
		fmt.Fprintln(p.out, "Too many invalid answers, asking again.")
		return state, nil
	}
	if err != nil {
		return state, err
	}

	question, _ := state.Current()
	next, err := p.driver.Select(chosenIndex)
	if err != nil {
		fmt.Fprintf(p.out, "error: %v\n", err)
		return p.driver.State(), nil
	}

	if chosenIndex < len(question.Answers) && question.Answers[chosenIndex].IsCorrect {
		fmt.Fprintln(p.out, "Correct!")
	} else {
		fmt.Fprintf(p.out, "Wrong. Correct answer was %s\n", correctAnswerText(question))
	}
	return next, nil
}

// act runs a driver action. Rejected actions are reported and the view
// continues from the driver's current state.
func (p *plainView) act(action func() (quiz.State, error)) (quiz.State, error) {
	next, err := action()
	if err != nil {
		fmt.Fprintf(p.out, "error: %v\n", err)
		return p.driver.State(), nil
	}
	return next, nil
}

func (p *plainView) promptYesNo(label string) (bool, error) {
	fmt.Fprintf(p.out, "%s [y/N]: ", label)
	line, err := p.reader.ReadString('\n')
	if err != nil && line == "" {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

// waitLoaded blocks until the view leaves the loading state.
func waitLoaded(ctx context.Context, updates <-chan quiz.State) (quiz.State, error) {
	for {
		select {
		case <-ctx.Done():
			return quiz.State{}, ctx.Err()
		case state, ok := <-updates:
			if !ok {
				return state, errSubscriptionDone
			}
			if state.Phase() != quiz.PhaseLoading {
				return state, nil
			}
		}
	}
}

func printQuestion(out io.Writer, screen view.Screen) {
	fmt.Fprintln(out)
	fmt.Fprintf(out, "%s (score %d)\n", screen.Progress, screen.Score)
	fmt.Fprintf(out, "%s\n\n", screen.Prompt)
	for _, option := range screen.Options {
		fmt.Fprintf(out, "%s. %s\n", option.Letter, option.Text)
	}
	fmt.Fprintln(out)
}

// getAnswer reads a letter answer, allowing maxAttempts tries. "q" quits.
func getAnswer(reader *bufio.Reader, out io.Writer, optionCount int) (int, error) {
	if optionCount < 1 {
		return -1, errNoOptions
	}

	maxLetter := view.Letter(optionCount - 1)

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		userAnswer, err := reader.ReadString('\n')
		if err != nil && userAnswer == "" {
			return -1, err
		}

		userAnswer = strings.ToUpper(strings.TrimSpace(userAnswer))
		if userAnswer == "Q" {
			return -1, errQuit
		}
		if len(userAnswer) == 1 {
			idx := int(userAnswer[0] - 'A')
			if userAnswer[0] >= 'A' && idx < optionCount {
				return idx, nil
			}
		}

		if err != nil {
			return -1, err
		}
		if attempt < maxAttempts {
			fmt.Fprintf(out, "\nInvalid input. Please enter a letter A-%s (or q to quit).\n", maxLetter)
		}
	}

	return -1, errTooManyAttempts
}

func correctAnswerText(question quiz.Question) string {
	idx := question.CorrectIndex()
	if idx < 0 {
		return ""
	}
	return question.Answers[idx].Text
}
