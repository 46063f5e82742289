package tui

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"trivia-quiz/internal/quiz"
	"trivia-quiz/internal/view"
)

// Model renders one quiz view and forwards key presses to a driver.
type Model struct {
	driver   view.Driver
	updates  <-chan quiz.State
	screen   view.Screen
	spinner  spinner.Model
	notice   string
	noColor  bool
	quitting bool
}

// Options configures the terminal view.
type Options struct {
	NoColor bool
}

// NewModel builds a model for driver. updates is usually the channel
// returned by driver.Subscribe.
func NewModel(driver view.Driver, updates <-chan quiz.State, opts Options) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	if !opts.NoColor {
		s.Style = spinnerStyle
	}
	return Model{
		driver:  driver,
		updates: updates,
		screen:  view.Build(driver.State()),
		spinner: s,
		noColor: opts.NoColor,
	}
}

// StateMsg carries a new state snapshot from the driver.
type StateMsg struct {
	State quiz.State
}

// actionMsg is the outcome of a user action sent to the driver.
type actionMsg struct {
	state quiz.State
	err   error
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(waitForState(m.updates), m.spinner.Tick)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(typed)
	case StateMsg:
		m.screen = view.Build(typed.State)
		return m, waitForState(m.updates)
	case actionMsg:
		if typed.err != nil {
			m.notice = typed.err.Error()
			return m, nil
		}
		m.notice = ""
		m.screen = view.Build(typed.state)
		return m, nil
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(typed)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		m.quitting = true
		return m, tea.Quit
	case "enter", "r":
		switch m.screen.Kind {
		case view.KindResults:
			return m, runAction(m.driver.Reset)
		case view.KindLoadFailed:
			return m, runAction(m.driver.Retry)
		}
		return m, nil
	}

	if m.screen.Kind != view.KindInProgress {
		return m, nil
	}
	option, ok := optionForKey(msg.String(), len(m.screen.Options))
	if !ok {
		m.notice = "Press " + optionRange(len(m.screen.Options)) + " to answer."
		return m, nil
	}
	driver := m.driver
	return m, runAction(func() (quiz.State, error) {
		return driver.Select(option)
	})
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	return render(m)
}

// Screen exposes the frame being shown.
func (m Model) Screen() view.Screen {
	return m.screen
}

func waitForState(updates <-chan quiz.State) tea.Cmd {
	return func() tea.Msg {
		if updates == nil {
			return nil
		}
		state, ok := <-updates
		if !ok {
			return tea.Quit()
		}
		return StateMsg{State: state}
	}
}

func runAction(action func() (quiz.State, error)) tea.Cmd {
	return func() tea.Msg {
		state, err := action()
		return actionMsg{state: state, err: err}
	}
}

// optionForKey maps a-z and 1-9 to an option index.
func optionForKey(key string, count int) (int, bool) {
	if len(key) != 1 {
		return -1, false
	}
	ch := key[0]
	idx := -1
	switch {
	case ch >= 'a' && ch <= 'z':
		idx = int(ch - 'a')
	case ch >= 'A' && ch <= 'Z':
		idx = int(ch - 'A')
	case ch >= '1' && ch <= '9':
		idx = int(ch - '1')
	}
	if idx < 0 || idx >= count {
		return -1, false
	}
	return idx, true
}

func optionRange(count int) string {
	if count <= 1 {
		return "A"
	}
	return "A-" + view.Letter(count-1)
}

// Run starts the terminal program and blocks until the user quits.
func Run(driver view.Driver, opts Options, programOpts ...tea.ProgramOption) error {
	updates, cancel := driver.Subscribe()
	defer cancel()

	program := tea.NewProgram(NewModel(driver, updates, opts), programOpts...)
	_, err := program.Run()
	return err
}
