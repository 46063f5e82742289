package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"trivia-quiz/internal/view"
)

var spinnerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

func render(m Model) string {
	screen := m.screen
	lines := []string{stylize("Trivia Quiz", m.noColor, lipgloss.Color("33")), ""}

	switch screen.Kind {
	case view.KindLoading:
		lines = append(lines, m.spinner.View()+" "+screen.Message)
	case view.KindLoadFailed:
		lines = append(lines,
			stylize(screen.Message, m.noColor, lipgloss.Color("196")),
			"",
			stylize("[r] "+screen.ActionLabel, m.noColor, lipgloss.Color("42")),
		)
	case view.KindEmpty:
		lines = append(lines, screen.Message)
	case view.KindResults:
		lines = append(lines,
			stylize(screen.Message, m.noColor, lipgloss.Color("42")),
			"",
			stylize("[r] "+screen.ActionLabel, m.noColor, lipgloss.Color("42")),
		)
	case view.KindInProgress:
		lines = append(lines,
			stylize(screen.Progress, m.noColor, lipgloss.Color("242"))+
				stylize(fmt.Sprintf("  Score: %d", screen.Score), m.noColor, lipgloss.Color("240")),
			"",
			screen.Prompt,
			"",
		)
		for _, option := range screen.Options {
			lines = append(lines, stylize(option.Letter+".", m.noColor, lipgloss.Color("214"))+" "+option.Text)
		}
	}

	if m.notice != "" {
		lines = append(lines, "", stylize(m.notice, m.noColor, lipgloss.Color("196")))
	}
	lines = append(lines, "", stylize(helpLine(screen.Kind), m.noColor, lipgloss.Color("244")))
	return strings.Join(lines, "\n") + "\n"
}

func helpLine(kind view.Kind) string {
	switch kind {
	case view.KindInProgress:
		return "a-z/1-9 answer • q quit"
	case view.KindResults, view.KindLoadFailed:
		return "r/enter continue • q quit"
	}
	return "q quit"
}

// stylize applies optional color styling.
func stylize(text string, noColor bool, color lipgloss.Color) string {
	if noColor {
		return text
	}
	return lipgloss.NewStyle().Foreground(color).Render(text)
}
