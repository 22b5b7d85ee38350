// Package prompt defines the question/answer surface the interactive flow
// is written against. Implementations decide how questions are rendered;
// callers only see typed answers.
package prompt

import "errors"

// ErrAborted is returned when the user abandons a question (ctrl+c / esc)
// instead of answering it.
var ErrAborted = errors.New("prompt aborted")

// Provider presents typed questions to the user and returns typed answers.
type Provider interface {
	// Input asks for a free-form line of text. The placeholder is a hint
	// only and is never returned as the answer.
	Input(question, placeholder string) (string, error)

	// Confirm asks a yes/no question with the given default.
	Confirm(question string, def bool) (bool, error)

	// Select asks the user to pick one of options and returns its index.
	Select(question string, options []string) (int, error)
}
