package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
)

type selectModel struct {
	question string
	options  []string
	cursor   int
	done     bool
	aborted  bool
}

func newSelectModel(question string, options []string) selectModel {
	return selectModel{question: question, options: options}
}

func (m selectModel) Init() tea.Cmd {
	return nil
}

func (m selectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.options)-1 {
			m.cursor++
		}
	case "enter":
		m.done = true
		return m, tea.Quit
	case "ctrl+c", "esc":
		m.aborted = true
		return m, tea.Quit
	}
	return m, nil
}

func (m selectModel) View() string {
	if m.aborted {
		return ""
	}
	if m.done {
		return questionStyle.Render(m.question) + " " + answerStyle.Render(m.options[m.cursor]) + "\n"
	}

	var sb strings.Builder
	sb.WriteString(questionStyle.Render(m.question))
	sb.WriteString("\n")
	for i, option := range m.options {
		if i == m.cursor {
			sb.WriteString(cursorStyle.Render("▸ " + option))
		} else {
			sb.WriteString(fmt.Sprintf("  %s", faintStyle.Render(option)))
		}
		sb.WriteString("\n")
	}
	sb.WriteString(faintStyle.Render("  [↑↓] Navigate  [Enter] Choose  [Esc] Cancel"))
	sb.WriteString("\n")
	return sb.String()
}
