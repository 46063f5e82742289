package view

import (
	"fmt"

	"trivia-quiz/internal/quiz"
)

type Kind string

const (
	KindLoading    Kind = "loading"
	KindLoadFailed Kind = "load_failed"
	KindEmpty      Kind = "empty"
	KindInProgress Kind = "in_progress"
	KindResults    Kind = "results"
)

const (
	LoadingMessage = "Loading quiz questions, please wait..."
	EmptyMessage   = "No questions available."
	TryAgainLabel  = "Try Again"
	RetryLabel     = "Retry"
)

type Option struct {
	Index  int    `json:"index"`
	Letter string `json:"letter"`
	Text   string `json:"text"`
}

// Screen is everything a renderer needs to draw one frame of the quiz view.
type Screen struct {
	Kind        Kind     `json:"kind"`
	Message     string   `json:"message,omitempty"`
	Progress    string   `json:"progress,omitempty"`
	QuestionID  string   `json:"question_id,omitempty"`
	Prompt      string   `json:"prompt,omitempty"`
	Options     []Option `json:"options,omitempty"`
	Score       int      `json:"score"`
	Total       int      `json:"total"`
	ActionLabel string   `json:"action_label,omitempty"`
}

func Build(state quiz.State) Screen {
	total := len(state.Questions)

	switch state.Phase() {
	case quiz.PhaseLoading:
		return Screen{Kind: KindLoading, Message: LoadingMessage}
	case quiz.PhaseLoadFailed:
		return Screen{
			Kind:        KindLoadFailed,
			Message:     state.LoadError,
			ActionLabel: RetryLabel,
		}
	case quiz.PhaseEmpty:
		return Screen{Kind: KindEmpty, Message: EmptyMessage}
	case quiz.PhaseCompleted:
		return Screen{
			Kind:        KindResults,
			Message:     ResultMessage(state.Score, total),
			Score:       state.Score,
			Total:       total,
			ActionLabel: TryAgainLabel,
		}
	}

	question, _ := state.Current()
	options := make([]Option, 0, len(question.Answers))
	for idx, answer := range question.Answers {
		options = append(options, Option{
			Index:  idx,
			Letter: Letter(idx),
			Text:   answer.Text,
		})
	}

	return Screen{
		Kind:       KindInProgress,
		Progress:   fmt.Sprintf("Question %d/%d", state.CurrentQuestion+1, total),
		QuestionID: question.QuestionID,
		Prompt:     question.Question,
		Options:    options,
		Score:      state.Score,
		Total:      total,
	}
}

func ResultMessage(score, total int) string {
	return fmt.Sprintf("You scored %d out of %d", score, total)
}

// Letter labels option idx as A, B, C, ... and falls back to a number past Z.
func Letter(idx int) string {
	if idx >= 0 && idx < 26 {
		return string(rune('A' + idx))
	}
	return fmt.Sprintf("%d", idx+1)
}
