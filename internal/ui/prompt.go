package ui

import (
	"errors"

	"github.com/charmbracelet/huh"
)

// ErrNonInteractive is returned when a run configured without prompts
// hits a decision that would need one.
var ErrNonInteractive = errors.New("interactive prompt required but prompts are disabled")

// Prompter answers the operator-facing questions of a run. The sync
// runner only ever talks to this interface, so tests and
// non-interactive deployments can substitute fixed answers.
type Prompter interface {
	// Confirm asks a yes/no question and returns the answer.
	Confirm(title, description string) (bool, error)

	// Acknowledge blocks until the operator confirms they performed a
	// manual step, or reports that they aborted instead.
	Acknowledge(title, description string) error
}

// Interactive is the terminal-backed Prompter, rendered with huh.
type Interactive struct{}

// Confirm shows a yes/no form.
func (Interactive) Confirm(title, description string) (bool, error) {
	var answer bool
	form := huh.NewForm(huh.NewGroup(
		huh.NewConfirm().
			Title(title).
			Description(description).
			Negative("No").
			Affirmative("Yes").
			Value(&answer),
	))
	if err := form.Run(); err != nil {
		return false, err
	}
	return answer, nil
}

// Acknowledge shows a done/abort form and fails when the operator
// chooses to abort.
func (Interactive) Acknowledge(title, description string) error {
	var done bool
	form := huh.NewForm(huh.NewGroup(
		huh.NewConfirm().
			Title(title).
			Description(description).
			Negative("Abort").
			Affirmative("Done").
			Value(&done),
	))
	if err := form.Run(); err != nil {
		return err
	}
	if !done {
		return errors.New("aborted by operator")
	}
	return nil
}

// Scripted is the Prompter for non-interactive runs: every Confirm
// resolves to a fixed answer and manual steps fail immediately.
type Scripted struct {
	// ConfirmAnswer is returned from every Confirm call.
	ConfirmAnswer bool
}

// Confirm returns the preset answer.
func (s Scripted) Confirm(string, string) (bool, error) {
	return s.ConfirmAnswer, nil
}

// Acknowledge always fails: there is nobody to perform the step.
func (Scripted) Acknowledge(string, string) error {
	return ErrNonInteractive
}
