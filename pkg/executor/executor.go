package executor

import (
	"bytes"
	"os"
	"os/exec"

	"github.com/rs/zerolog"

	"github.com/wslkit/wslkit/pkg/errors"
	"github.com/wslkit/wslkit/pkg/logging"
	"github.com/wslkit/wslkit/pkg/types"
)

// osRunner implements types.Runner with os/exec
type osRunner struct {
	logger zerolog.Logger
}

// NewOSRunner creates a Runner backed by os/exec
func NewOSRunner() types.Runner {
	return &osRunner{
		logger: logging.GetLogger("executor"),
	}
}

// Run executes a command and captures its output. A non-zero exit status is
// returned as a COMMAND_FAILED error carrying the captured stderr, so callers
// can show the external tool's own words verbatim.
func (r *osRunner) Run(name string, args ...string) (types.CommandResult, error) {
	r.logger.Info().
		Str("command", name).
		Strs("args", args).
		Msg("Executing command")

	cmd := exec.Command(name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	result := types.CommandResult{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		ExitCode: cmd.ProcessState.ExitCode(),
	}

	if stdout.Len() > 0 {
		r.logger.Debug().Str("output", stdout.String()).Msg("Command stdout")
	}
	if stderr.Len() > 0 {
		r.logger.Debug().Str("output", stderr.String()).Msg("Command stderr")
	}

	if err != nil {
		if _, ok := err.(*exec.ExitError); !ok {
			// Command could not be started at all (not found, not executable)
			return result, errors.Wrapf(err, errors.ErrCommandFailed, "failed to start %s", name)
		}
		return result, errors.Newf(errors.ErrCommandFailed, "%s exited with status %d", name, result.ExitCode).
			WithDetail("stderr", result.Stderr).
			WithDetail("stdout", result.Stdout)
	}

	return result, nil
}

// RunInteractive executes a command with the process's stdio attached. No
// timeout is imposed: enrollment tools block on physical user action.
func (r *osRunner) RunInteractive(name string, args ...string) error {
	r.logger.Info().
		Str("command", name).
		Strs("args", args).
		Msg("Executing interactive command")

	cmd := exec.Command(name, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		if _, ok := err.(*exec.ExitError); !ok {
			return errors.Wrapf(err, errors.ErrCommandFailed, "failed to start %s", name)
		}
		return errors.Newf(errors.ErrCommandFailed, "%s exited with status %d", name, cmd.ProcessState.ExitCode())
	}
	return nil
}
