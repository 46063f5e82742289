package cli

import (
	"bufio"
	"context"
	"errors"
	"io"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"trivia-quiz/internal/opentdb"
	"trivia-quiz/internal/quiz"
	"trivia-quiz/internal/view"
)

func sampleQuestions() []opentdb.RawQuestion {
	return []opentdb.RawQuestion{
		{Question: "Capital of France?", CorrectAnswer: "Paris", IncorrectAnswers: []string{"Berlin", "Rome", "Madrid"}},
		{Question: "Answer to everything?", CorrectAnswer: "42", IncorrectAnswers: []string{"7", "13", "0"}},
	}
}

func mountedController(t *testing.T, fetcher quiz.QuestionsFetcher) *quiz.Controller {
	t.Helper()
	controller := quiz.NewController(fetcher, quiz.WithShuffler(quiz.NewShuffler(7)))
	controller.Mount(context.Background())
	t.Cleanup(controller.Unmount)
	return controller
}

func loadedState(t *testing.T, controller *quiz.Controller) quiz.State {
	t.Helper()
	updates, cancel := controller.Subscribe()
	defer cancel()

	ctx, stop := context.WithTimeout(context.Background(), 5*time.Second)
	defer stop()
	state, err := waitLoaded(ctx, updates)
	if err != nil {
		t.Fatalf("wait for load: %v", err)
	}
	return state
}

func letterOf(t *testing.T, question quiz.Question, text string) string {
	t.Helper()
	for idx, answer := range question.Answers {
		if answer.Text == text {
			return view.Letter(idx)
		}
	}
	t.Fatalf("answer %q not in %+v", text, question.Answers)
	return ""
}

func TestRunPlainPlaysAndResets(t *testing.T) {
	controller := mountedController(t, func(context.Context, int) ([]opentdb.RawQuestion, error) {
		return sampleQuestions(), nil
	})
	state := loadedState(t, controller)

	input := strings.Join([]string{
		strings.ToLower(letterOf(t, state.Questions[0], "Paris")),
		letterOf(t, state.Questions[1], "7"),
		"y",
		"q",
	}, "\n") + "\n"

	var out strings.Builder
	if err := runPlain(context.Background(), controller, strings.NewReader(input), &out); err != nil {
		t.Fatalf("runPlain: %v", err)
	}

	got := out.String()
	for _, want := range []string{
		"Question 1/2 (score 0)",
		"Capital of France?",
		"Correct!",
		"Question 2/2 (score 1)",
		"Wrong. Correct answer was 42",
		"You scored 1 out of 2",
		"Try Again? [y/N]",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("output missing %q:\n%s", want, got)
		}
	}
	if strings.Count(got, "Question 1/2 (score 0)") != 2 {
		t.Fatalf("expected the quiz to restart after Try Again:\n%s", got)
	}

	final := controller.State()
	if final.Phase() != quiz.PhaseInProgress || final.Score != 0 || final.CurrentQuestion != 0 {
		t.Fatalf("unexpected final state: %+v", final)
	}
}

func TestRunPlainRetriesFailedLoad(t *testing.T) {
	var calls atomic.Int32
	controller := mountedController(t, func(context.Context, int) ([]opentdb.RawQuestion, error) {
		if calls.Add(1) == 1 {
			return nil, errors.New("service down")
		}
		return sampleQuestions(), nil
	})

	var out strings.Builder
	if err := runPlain(context.Background(), controller, strings.NewReader("y\nq\n"), &out); err != nil {
		t.Fatalf("runPlain: %v", err)
	}

	got := out.String()
	for _, want := range []string{
		"Could not load questions:",
		"service down",
		"Retry? [y/N]",
		"Question 1/2",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("output missing %q:\n%s", want, got)
		}
	}
	if calls.Load() != 2 {
		t.Fatalf("fetch calls = %d, want 2", calls.Load())
	}
}

func TestRunPlainDeclinedRetryEnds(t *testing.T) {
	controller := mountedController(t, func(context.Context, int) ([]opentdb.RawQuestion, error) {
		return nil, errors.New("service down")
	})

	var out strings.Builder
	if err := runPlain(context.Background(), controller, strings.NewReader("n\n"), &out); err != nil {
		t.Fatalf("runPlain: %v", err)
	}
	if controller.State().Phase() != quiz.PhaseLoadFailed {
		t.Fatalf("declining must leave the view failed, got %s", controller.State().Phase())
	}
}

func TestRunPlainEmptyQuestionSet(t *testing.T) {
	controller := mountedController(t, func(context.Context, int) ([]opentdb.RawQuestion, error) {
		return nil, nil
	})

	var out strings.Builder
	if err := runPlain(context.Background(), controller, strings.NewReader(""), &out); err != nil {
		t.Fatalf("runPlain: %v", err)
	}
	if !strings.Contains(out.String(), view.EmptyMessage) {
		t.Fatalf("output missing empty message:\n%s", out.String())
	}
}

func TestRunPlainReasksAfterInvalidInput(t *testing.T) {
	controller := mountedController(t, func(context.Context, int) ([]opentdb.RawQuestion, error) {
		return sampleQuestions(), nil
	})
	loadedState(t, controller)

	var out strings.Builder
	if err := runPlain(context.Background(), controller, strings.NewReader("z\n9\nfoo\n"), &out); err != nil {
		t.Fatalf("runPlain: %v", err)
	}

	got := out.String()
	if strings.Count(got, "Invalid input. Please enter a letter A-D") != 2 {
		t.Fatalf("expected two invalid-input hints:\n%s", got)
	}
	if !strings.Contains(got, "Too many invalid answers") {
		t.Fatalf("expected re-ask notice:\n%s", got)
	}
	if controller.State().CurrentQuestion != 0 {
		t.Fatalf("invalid input must not advance the quiz")
	}
}

func TestGetAnswer(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int
		wantErr error
	}{
		{name: "letter", input: "b\n", want: 1},
		{name: "padded upper", input: "  C \n", want: 2},
		{name: "no trailing newline", input: "a", want: 0},
		{name: "second attempt", input: "x\nd\n", want: 3},
		{name: "quit", input: "q\n", want: -1, wantErr: errQuit},
		{name: "end of input", input: "", want: -1, wantErr: io.EOF},
		{name: "three invalid", input: "x\n5\nzz\n", want: -1, wantErr: errTooManyAttempts},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := getAnswer(bufio.NewReader(strings.NewReader(tc.input)), io.Discard, 4)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("err = %v, want %v", err, tc.wantErr)
			}
			if got != tc.want {
				t.Fatalf("index = %d, want %d", got, tc.want)
			}
		})
	}
}
