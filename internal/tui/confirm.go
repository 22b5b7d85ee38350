package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

type confirmModel struct {
	question string
	def      bool
	answer   bool
	done     bool
	aborted  bool
}

func newConfirmModel(question string, def bool) confirmModel {
	return confirmModel{question: question, def: def}
}

func (m confirmModel) Init() tea.Cmd {
	return nil
}

func (m confirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.String() {
	case "y", "Y":
		m.answer = true
		m.done = true
		return m, tea.Quit
	case "n", "N":
		m.answer = false
		m.done = true
		return m, tea.Quit
	case "enter":
		m.answer = m.def
		m.done = true
		return m, tea.Quit
	case "ctrl+c", "esc":
		m.aborted = true
		return m, tea.Quit
	}
	return m, nil
}

func (m confirmModel) View() string {
	if m.aborted {
		return ""
	}
	if m.done {
		answer := "no"
		if m.answer {
			answer = "yes"
		}
		return questionStyle.Render(m.question) + " " + answerStyle.Render(answer) + "\n"
	}

	hint := "[y/N]"
	if m.def {
		hint = "[Y/n]"
	}
	return questionStyle.Render(m.question) + " " + faintStyle.Render(hint) + "\n"
}
