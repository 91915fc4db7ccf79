package mocks

import "github.com/sgaunet/auto-release/internal/ui"

// Prompter answers prompts from queues. When a queue is empty the default
// value is returned.
type Prompter struct {
	callTracker

	InputAnswers   []string
	ConfirmAnswers []bool
	InputError     error
	ConfirmError   error
}

// NewPrompter creates a prompter accepting every default.
func NewPrompter() *Prompter {
	return &Prompter{}
}

// Input implements ui.Prompter.
func (m *Prompter) Input(message, defaultValue string) (string, error) {
	m.trackCall("Input", map[string]any{"message": message, "default": defaultValue})
	if m.InputError != nil {
		return "", m.InputError
	}
	if len(m.InputAnswers) == 0 {
		return defaultValue, nil
	}
	answer := m.InputAnswers[0]
	m.InputAnswers = m.InputAnswers[1:]
	if answer == "" {
		return defaultValue, nil
	}
	return answer, nil
}

// Confirm implements ui.Prompter.
func (m *Prompter) Confirm(message string, defaultValue bool) (bool, error) {
	m.trackCall("Confirm", map[string]any{"message": message, "default": defaultValue})
	if m.ConfirmError != nil {
		return false, m.ConfirmError
	}
	if len(m.ConfirmAnswers) == 0 {
		return defaultValue, nil
	}
	answer := m.ConfirmAnswers[0]
	m.ConfirmAnswers = m.ConfirmAnswers[1:]
	return answer, nil
}

// Ensure Prompter implements ui.Prompter interface.
var _ ui.Prompter = (*Prompter)(nil)
