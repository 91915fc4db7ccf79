package mocks

import (
	"context"

	"github.com/sgaunet/auto-release/pkg/runner"
)

// Executor is a runner.Executor returning canned results keyed by the
// formatted command line (see runner.FormatCommand).
type Executor struct {
	callTracker

	Outputs      map[string]runner.Result
	OutputErrors map[string]error
	RunErrors    map[string]error
	CheckResults map[string]bool
}

// NewExecutor creates an executor where every command succeeds silently.
func NewExecutor() *Executor {
	return &Executor{
		Outputs:      map[string]runner.Result{},
		OutputErrors: map[string]error{},
		RunErrors:    map[string]error{},
		CheckResults: map[string]bool{},
	}
}

// Run implements runner.Executor.
func (m *Executor) Run(_ context.Context, name string, args ...string) error {
	line := runner.FormatCommand(name, args...)
	m.trackCall("Run", map[string]any{"command": line, "name": name, "args": args})
	return m.RunErrors[line]
}

// Output implements runner.Executor. A canned result with a non-zero exit
// code is returned together with a *runner.CommandError.
func (m *Executor) Output(_ context.Context, name string, args ...string) (runner.Result, error) {
	line := runner.FormatCommand(name, args...)
	m.trackCall("Output", map[string]any{"command": line, "name": name, "args": args})
	res := m.Outputs[line]
	if err := m.OutputErrors[line]; err != nil {
		return res, err
	}
	if res.ExitCode != 0 {
		return res, &runner.CommandError{Name: name, Args: args, Result: res}
	}
	return res, nil
}

// Check implements runner.Executor.
func (m *Executor) Check(_ context.Context, name string, args ...string) bool {
	line := runner.FormatCommand(name, args...)
	m.trackCall("Check", map[string]any{"command": line})
	return m.CheckResults[line]
}

// Commands returns the command lines passed to Run, in order.
func (m *Executor) Commands() []string {
	var out []string
	for _, call := range m.GetCalls() {
		if call.Method == "Run" {
			out = append(out, call.Args["command"].(string))
		}
	}
	return out
}

// Ensure Executor implements runner.Executor interface.
var _ runner.Executor = (*Executor)(nil)
