// Package tui renders the prompt-provider questions with bubbletea. Each
// question is a tiny model run to completion; the session code never sees
// any of this, only the typed answers.
package tui

import (
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"vidgrab/internal/prompt"
)

// Provider implements prompt.Provider on a terminal.
type Provider struct {
	In  io.Reader
	Out io.Writer
}

// NewProvider returns a provider bound to the process terminal.
func NewProvider() *Provider {
	return &Provider{In: os.Stdin, Out: os.Stdout}
}

func (p *Provider) run(model tea.Model) (tea.Model, error) {
	opts := []tea.ProgramOption{}
	if p.In != nil {
		opts = append(opts, tea.WithInput(p.In))
	}
	if p.Out != nil {
		opts = append(opts, tea.WithOutput(p.Out))
	}
	return tea.NewProgram(model, opts...).Run()
}

// Input asks for a free-form line of text.
func (p *Provider) Input(question, placeholder string) (string, error) {
	final, err := p.run(newInputModel(question, placeholder))
	if err != nil {
		return "", err
	}
	m := final.(inputModel)
	if m.aborted {
		return "", prompt.ErrAborted
	}
	return m.value(), nil
}

// Confirm asks a yes/no question with the given default.
func (p *Provider) Confirm(question string, def bool) (bool, error) {
	final, err := p.run(newConfirmModel(question, def))
	if err != nil {
		return false, err
	}
	m := final.(confirmModel)
	if m.aborted {
		return false, prompt.ErrAborted
	}
	return m.answer, nil
}

// Select asks the user to pick one of options and returns its index.
func (p *Provider) Select(question string, options []string) (int, error) {
	final, err := p.run(newSelectModel(question, options))
	if err != nil {
		return 0, err
	}
	m := final.(selectModel)
	if m.aborted {
		return 0, prompt.ErrAborted
	}
	return m.cursor, nil
}

var _ prompt.Provider = (*Provider)(nil)
