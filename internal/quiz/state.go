package quiz

type Phase string

const (
	PhaseLoading    Phase = "loading"
	PhaseLoadFailed Phase = "load_failed"
	PhaseEmpty      Phase = "empty"
	PhaseInProgress Phase = "in_progress"
	PhaseCompleted  Phase = "completed"
)

// State is the full snapshot driving rendering. Transitions are value
// methods returning a new State; the receiver is never modified.
type State struct {
	CurrentQuestion int        `json:"current_question"`
	Score           int        `json:"score"`
	ShowResults     bool       `json:"show_results"`
	Questions       []Question `json:"questions"`
	IsLoading       bool       `json:"is_loading"`
	LoadError       string     `json:"load_error,omitempty"`
	// Revision counts the transitions a controller has applied. Mirrors
	// use it to drop snapshots older than the one they hold.
	Revision uint64 `json:"revision"`
}

// NewState returns the state of a view that has not finished loading.
func NewState() State {
	return State{IsLoading: true}
}

func (s State) Phase() Phase {
	switch {
	case s.IsLoading:
		return PhaseLoading
	case s.LoadError != "":
		return PhaseLoadFailed
	case len(s.Questions) == 0:
		return PhaseEmpty
	case s.ShowResults:
		return PhaseCompleted
	default:
		return PhaseInProgress
	}
}

// Current returns the question awaiting an answer.
func (s State) Current() (Question, bool) {
	if s.Phase() != PhaseInProgress || s.CurrentQuestion >= len(s.Questions) {
		return Question{}, false
	}
	return s.Questions[s.CurrentQuestion], true
}

// Load installs the fetched question set. The slice is owned by the state
// from here on.
func (s State) Load(questions []Question) (State, error) {
	if s.Phase() != PhaseLoading {
		return s, ErrAlreadyLoaded
	}
	return State{Questions: questions}, nil
}

func (s State) Fail(err error) (State, error) {
	if s.Phase() != PhaseLoading {
		return s, ErrAlreadyLoaded
	}
	message := "failed to load questions"
	if err != nil {
		message = err.Error()
	}
	return State{LoadError: message}, nil
}

// Retry returns a failed view to the loading state.
func (s State) Retry() (State, error) {
	if s.Phase() != PhaseLoadFailed {
		return s, ErrNotLoadFailed
	}
	return NewState(), nil
}

// Answer records the correctness of the selected answer and advances.
func (s State) Answer(isCorrect bool) (State, error) {
	if s.Phase() != PhaseInProgress {
		return s, ErrNotInProgress
	}

	next := s
	if isCorrect {
		next.Score++
	}
	next.CurrentQuestion++
	if next.CurrentQuestion >= len(next.Questions) {
		next.ShowResults = true
	}
	return next, nil
}

// SelectOption answers the current question with the option at index.
func (s State) SelectOption(index int) (State, error) {
	question, ok := s.Current()
	if !ok {
		return s, ErrNotInProgress
	}
	if index < 0 || index >= len(question.Answers) {
		return s, ErrOptionOutOfRange
	}
	return s.Answer(question.Answers[index].IsCorrect)
}

// Reset restarts a completed quiz with the same questions.
func (s State) Reset() (State, error) {
	if s.Phase() != PhaseCompleted {
		return s, ErrNotCompleted
	}
	return State{Questions: s.Questions}, nil
}
