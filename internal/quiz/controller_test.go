package quiz

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"trivia-quiz/internal/opentdb"
)

func rawScenario() []opentdb.RawQuestion {
	return []opentdb.RawQuestion{
		{Question: "Capital of France?", CorrectAnswer: "Paris", IncorrectAnswers: []string{"Berlin", "Rome", "Madrid"}},
		{Question: "Answer to everything?", CorrectAnswer: "42", IncorrectAnswers: []string{"7", "13", "0"}},
	}
}

func staticFetcher(raw []opentdb.RawQuestion) QuestionsFetcher {
	return func(context.Context, int) ([]opentdb.RawQuestion, error) {
		return raw, nil
	}
}

// waitForPhase reads the subscription until the wanted phase shows up.
func waitForPhase(t *testing.T, updates <-chan State, want Phase) State {
	t.Helper()
	timeout := time.After(2 * time.Second)
	for {
		select {
		case state, ok := <-updates:
			if !ok {
				t.Fatalf("subscription closed before phase %s", want)
			}
			if state.Phase() == want {
				return state
			}
		case <-timeout:
			t.Fatalf("timed out waiting for phase %s", want)
		}
	}
}

func indexOf(t *testing.T, question Question, text string) int {
	t.Helper()
	for idx, answer := range question.Answers {
		if answer.Text == text {
			return idx
		}
	}
	t.Fatalf("answer %q not found in %+v", text, question.Answers)
	return -1
}

func TestControllerLoadsOnMountAndPlays(t *testing.T) {
	var requested int
	controller := NewController(func(_ context.Context, amount int) ([]opentdb.RawQuestion, error) {
		requested = amount
		return rawScenario(), nil
	}, WithShuffler(NewShuffler(1)))

	controller.Mount(context.Background())
	defer controller.Unmount()
	updates, cancel := controller.Subscribe()
	defer cancel()

	state := waitForPhase(t, updates, PhaseInProgress)
	if requested != 10 {
		t.Fatalf("requested amount = %d, want 10", requested)
	}
	if len(state.Questions) != 2 {
		t.Fatalf("expected 2 questions, got %d", len(state.Questions))
	}

	state, err := controller.Select(indexOf(t, state.Questions[0], "Paris"))
	if err != nil {
		t.Fatalf("select Paris: %v", err)
	}
	if state.Score != 1 || state.CurrentQuestion != 1 {
		t.Fatalf("after Q1: score=%d index=%d", state.Score, state.CurrentQuestion)
	}

	state, err = controller.Select(indexOf(t, state.Questions[1], "7"))
	if err != nil {
		t.Fatalf("select 7: %v", err)
	}
	if state.Score != 1 || state.CurrentQuestion != 2 || !state.ShowResults {
		t.Fatalf("after Q2: %+v", state)
	}

	questions := state.Questions
	state, err = controller.Reset()
	if err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if state.Score != 0 || state.CurrentQuestion != 0 || state.ShowResults {
		t.Fatalf("after reset: %+v", state)
	}
	if &state.Questions[0] != &questions[0] {
		t.Fatalf("reset must not refetch")
	}
}

func TestControllerFetchesOnlyOncePerLoadCycle(t *testing.T) {
	var calls atomic.Int32
	controller := NewController(func(context.Context, int) ([]opentdb.RawQuestion, error) {
		calls.Add(1)
		return rawScenario(), nil
	})

	controller.Mount(context.Background())
	controller.Mount(context.Background())
	defer controller.Unmount()
	updates, cancel := controller.Subscribe()
	defer cancel()

	waitForPhase(t, updates, PhaseInProgress)
	_, _ = controller.Select(0)
	_, _ = controller.Select(0)
	if _, err := controller.Reset(); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if got := calls.Load(); got != 1 {
		t.Fatalf("fetch calls = %d, want 1", got)
	}
}

func TestControllerLoadFailureThenRetry(t *testing.T) {
	var calls atomic.Int32
	controller := NewController(func(context.Context, int) ([]opentdb.RawQuestion, error) {
		if calls.Add(1) == 1 {
			return nil, errors.New("network down")
		}
		return rawScenario(), nil
	})

	controller.Mount(context.Background())
	defer controller.Unmount()
	updates, cancel := controller.Subscribe()
	defer cancel()

	failed := waitForPhase(t, updates, PhaseLoadFailed)
	if failed.LoadError == "" {
		t.Fatalf("expected load error message")
	}

	if _, err := controller.Select(0); !errors.Is(err, ErrNotInProgress) {
		t.Fatalf("select on failed view: %v", err)
	}

	state, err := controller.Retry()
	if err != nil {
		t.Fatalf("Retry: %v", err)
	}
	if state.Phase() != PhaseLoading {
		t.Fatalf("phase after retry = %s", state.Phase())
	}
	waitForPhase(t, updates, PhaseInProgress)
}

func TestControllerSubscribeWhenUnmountedYieldsSnapshot(t *testing.T) {
	controller := NewController(staticFetcher(rawScenario()))
	updates, cancel := controller.Subscribe()
	defer cancel()

	state, ok := <-updates
	if !ok || state.Phase() != PhaseLoading {
		t.Fatalf("expected loading snapshot, got %+v ok=%v", state, ok)
	}
	if _, ok := <-updates; ok {
		t.Fatalf("subscription on an unmounted view must be closed")
	}
}

func TestControllerDiscardsLoadAfterUnmount(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	controller := NewController(func(context.Context, int) ([]opentdb.RawQuestion, error) {
		close(started)
		<-release
		return rawScenario(), nil
	})

	controller.Mount(context.Background())
	<-started
	controller.Unmount()
	close(release)

	time.Sleep(50 * time.Millisecond)
	if state := controller.State(); state.Phase() != PhaseLoading {
		t.Fatalf("late load result applied after unmount: %+v", state)
	}
}

func TestControllerUnmountCancelsFetchContext(t *testing.T) {
	cancelled := make(chan struct{})
	controller := NewController(func(ctx context.Context, _ int) ([]opentdb.RawQuestion, error) {
		<-ctx.Done()
		close(cancelled)
		return nil, ctx.Err()
	})

	controller.Mount(context.Background())
	controller.Unmount()

	select {
	case <-cancelled:
	case <-time.After(2 * time.Second):
		t.Fatalf("fetch context was not cancelled")
	}
}

func TestControllerAnswerRejectsStaleQuestion(t *testing.T) {
	controller := NewController(staticFetcher(rawScenario()))
	controller.Mount(context.Background())
	defer controller.Unmount()
	updates, cancel := controller.Subscribe()
	defer cancel()

	state := waitForPhase(t, updates, PhaseInProgress)
	firstID := state.Questions[0].QuestionID

	if _, err := controller.Answer(firstID, 0); err != nil {
		t.Fatalf("first answer: %v", err)
	}
	if _, err := controller.Answer(firstID, 0); !errors.Is(err, ErrStaleQuestion) {
		t.Fatalf("second answer for the same question: %v", err)
	}
	if got := controller.State().CurrentQuestion; got != 1 {
		t.Fatalf("stale answer moved the index to %d", got)
	}
}

func TestControllerRestoredStateSkipsLoad(t *testing.T) {
	restored, err := NewState().Load(twoQuestions())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	restored, _ = restored.Answer(true)

	var calls atomic.Int32
	controller := NewController(func(context.Context, int) ([]opentdb.RawQuestion, error) {
		calls.Add(1)
		return nil, nil
	}, WithInitialState(restored))
	controller.Mount(context.Background())
	defer controller.Unmount()

	time.Sleep(20 * time.Millisecond)
	if calls.Load() != 0 {
		t.Fatalf("restored in-progress view must not refetch")
	}
	if got := controller.State(); got.Score != 1 || got.CurrentQuestion != 1 {
		t.Fatalf("restored state lost: %+v", got)
	}
}

func TestControllerOnChangeSeesEveryTransition(t *testing.T) {
	seen := make(chan Phase, 8)
	controller := NewController(staticFetcher(rawScenario()), WithOnChange(func(s State) {
		seen <- s.Phase()
	}))
	controller.Mount(context.Background())
	defer controller.Unmount()

	select {
	case phase := <-seen:
		if phase != PhaseInProgress {
			t.Fatalf("first change phase = %s", phase)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("no change after load")
	}

	_, _ = controller.Select(0)
	select {
	case <-seen:
	case <-time.After(time.Second):
		t.Fatalf("no change after select")
	}
}

func TestControllerWithoutFetcherFails(t *testing.T) {
	controller := NewController(nil)
	controller.Mount(context.Background())
	defer controller.Unmount()
	updates, cancel := controller.Subscribe()
	defer cancel()

	state := waitForPhase(t, updates, PhaseLoadFailed)
	if state.LoadError == "" {
		t.Fatalf("expected load error")
	}
}

func TestControllerRevisionCountsTransitions(t *testing.T) {
	controller := NewController(staticFetcher(rawScenario()))
	controller.Mount(context.Background())
	defer controller.Unmount()
	updates, cancel := controller.Subscribe()
	defer cancel()

	loaded := waitForPhase(t, updates, PhaseInProgress)
	if loaded.Revision != 1 {
		t.Fatalf("revision after load = %d, want 1", loaded.Revision)
	}

	answered, err := controller.Select(0)
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if answered.Revision != 2 || controller.State().Revision != 2 {
		t.Fatalf("revision after answer = %d (controller %d), want 2", answered.Revision, controller.State().Revision)
	}

	rejected, err := controller.Reset()
	if !errors.Is(err, ErrNotCompleted) {
		t.Fatalf("expected ErrNotCompleted, got %v", err)
	}
	if rejected.Revision != 2 {
		t.Fatalf("a rejected transition must not bump the revision, got %d", rejected.Revision)
	}
}

func TestControllerNotifyAndSubscribers(t *testing.T) {
	var notified []State
	controller := NewController(staticFetcher(rawScenario()), WithOnChange(func(s State) {
		notified = append(notified, s)
	}))
	controller.Mount(context.Background())
	defer controller.Unmount()

	updates, cancel := controller.Subscribe()
	if controller.Subscribers() != 1 {
		t.Fatalf("subscribers = %d, want 1", controller.Subscribers())
	}
	state := waitForPhase(t, updates, PhaseInProgress)
	cancel()
	if controller.Subscribers() != 0 {
		t.Fatalf("subscribers after cancel = %d, want 0", controller.Subscribers())
	}

	controller.Notify()
	last := controller.State()
	if last.Revision != state.Revision {
		t.Fatalf("Notify changed the state: %+v", last)
	}
	if len(notified) != 2 || notified[1].Revision != state.Revision {
		t.Fatalf("expected the hook to see the load and the notify, got %d calls", len(notified))
	}
}
