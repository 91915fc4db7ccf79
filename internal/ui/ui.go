// Package ui provides the interactive prompts used by the publish and setup
// commands.
package ui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
)

// ErrCancelled is returned when the user aborts a prompt with Ctrl-C.
var ErrCancelled = errors.New("prompt cancelled by user")

// Prompter asks the user questions.
type Prompter interface {
	// Input asks for a free-form answer; an empty answer yields defaultValue.
	Input(message, defaultValue string) (string, error)
	// Confirm asks a yes/no question.
	Confirm(message string, defaultValue bool) (bool, error)
}

// SurveyPrompter implements [Prompter] on the terminal.
type SurveyPrompter struct{}

// NewPrompter returns a terminal prompter.
func NewPrompter() *SurveyPrompter {
	return &SurveyPrompter{}
}

// Input implements [Prompter].
func (p *SurveyPrompter) Input(message, defaultValue string) (string, error) {
	var answer string
	prompt := &survey.Input{
		Message: message,
		Default: defaultValue,
	}
	if err := survey.AskOne(prompt, &answer); err != nil {
		return "", wrapPromptError(err)
	}

	answer = strings.TrimSpace(answer)
	if answer == "" {
		return defaultValue, nil
	}
	return answer, nil
}

// Confirm implements [Prompter].
func (p *SurveyPrompter) Confirm(message string, defaultValue bool) (bool, error) {
	answer := defaultValue
	prompt := &survey.Confirm{
		Message: message,
		Default: defaultValue,
	}
	if err := survey.AskOne(prompt, &answer); err != nil {
		return false, wrapPromptError(err)
	}
	return answer, nil
}

func wrapPromptError(err error) error {
	if errors.Is(err, terminal.InterruptErr) {
		return ErrCancelled
	}
	return fmt.Errorf("failed to read answer: %w", err)
}

// Compile-time interface check.
var _ Prompter = (*SurveyPrompter)(nil)
