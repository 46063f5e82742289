package view

import "trivia-quiz/internal/quiz"

// Driver is what a renderer talks to. It is satisfied by a local
// *quiz.Controller and by the remote client in userclient.
type Driver interface {
	State() quiz.State
	Select(option int) (quiz.State, error)
	Reset() (quiz.State, error)
	Retry() (quiz.State, error)
	Subscribe() (<-chan quiz.State, func())
}

var _ Driver = (*quiz.Controller)(nil)
