package testutil

import (
	"strings"

	"github.com/wslkit/wslkit/pkg/errors"
	"github.com/wslkit/wslkit/pkg/types"
)

// Call records one command handed to the scripted runner.
type Call struct {
	Name        string
	Args        []string
	Interactive bool
}

// String renders the call the way a shell would show it.
func (c Call) String() string {
	return strings.Join(append([]string{c.Name}, c.Args...), " ")
}

// ScriptedRunner implements types.Runner with canned results, recording
// every call for assertions. Unscripted commands succeed with empty output,
// so tests only script the commands they care about.
type ScriptedRunner struct {
	Calls   []Call
	results map[string]scriptedResult
}

type scriptedResult struct {
	result types.CommandResult
	err    error
}

// NewScriptedRunner creates an empty scripted runner.
func NewScriptedRunner() *ScriptedRunner {
	return &ScriptedRunner{results: make(map[string]scriptedResult)}
}

// Script sets the result for an exact command line (name followed by args,
// space-joined).
func (r *ScriptedRunner) Script(commandLine string, result types.CommandResult, err error) {
	r.results[commandLine] = scriptedResult{result: result, err: err}
}

// Fail scripts a command line to fail with a COMMAND_FAILED error carrying
// the given stderr.
func (r *ScriptedRunner) Fail(commandLine, stderr string) {
	name := strings.SplitN(commandLine, " ", 2)[0]
	r.results[commandLine] = scriptedResult{
		result: types.CommandResult{Stderr: stderr, ExitCode: 1},
		err: errors.Newf(errors.ErrCommandFailed, "%s exited with status 1", name).
			WithDetail("stderr", stderr),
	}
}

func (r *ScriptedRunner) Run(name string, args ...string) (types.CommandResult, error) {
	call := Call{Name: name, Args: args}
	r.Calls = append(r.Calls, call)
	if s, ok := r.results[call.String()]; ok {
		return s.result, s.err
	}
	return types.CommandResult{}, nil
}

func (r *ScriptedRunner) RunInteractive(name string, args ...string) error {
	call := Call{Name: name, Args: args, Interactive: true}
	r.Calls = append(r.Calls, call)
	if s, ok := r.results[call.String()]; ok {
		return s.err
	}
	return nil
}

// CommandLines returns every recorded call as a shell-style string.
func (r *ScriptedRunner) CommandLines() []string {
	lines := make([]string, 0, len(r.Calls))
	for _, c := range r.Calls {
		lines = append(lines, c.String())
	}
	return lines
}

// Ran reports whether any recorded command line contains the substring.
func (r *ScriptedRunner) Ran(substring string) bool {
	for _, line := range r.CommandLines() {
		if strings.Contains(line, substring) {
			return true
		}
	}
	return false
}
