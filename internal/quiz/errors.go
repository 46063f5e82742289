package quiz

import "errors"

var (
	ErrAlreadyLoaded    = errors.New("questions already loaded")
	ErrNotInProgress    = errors.New("quiz is not in progress")
	ErrNotCompleted     = errors.New("quiz is not completed")
	ErrNotLoadFailed    = errors.New("quiz load has not failed")
	ErrOptionOutOfRange = errors.New("answer option out of range")
	ErrStaleQuestion    = errors.New("answer is for a question that is not current")
)

// LoadError wraps any failure to retrieve or parse the question set.
type LoadError struct {
	Err error
}

func (e *LoadError) Error() string {
	if e.Err == nil {
		return "failed to load questions"
	}
	return "failed to load questions: " + e.Err.Error()
}

func (e *LoadError) Unwrap() error {
	return e.Err
}
