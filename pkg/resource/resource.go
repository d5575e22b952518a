// Package resource manages single-purpose declarative files that wslkit
// owns outright, like the udev rule for FIDO hidraw access.
//
// Ensure classifies the current state (absent, matches, differs) and
// converges the file to the desired content. Repeated runs are no-ops.
package resource

import (
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"

	"github.com/wslkit/wslkit/pkg/errors"
	"github.com/wslkit/wslkit/pkg/logging"
	"github.com/wslkit/wslkit/pkg/style"
	"github.com/wslkit/wslkit/pkg/types"
)

// State is the classification branch Ensure took.
type State string

const (
	// StateCreated means the file was absent and has been written.
	StateCreated State = "created"
	// StateUnchanged means the file already held the desired content.
	StateUnchanged State = "already present"
	// StateReplaced means the file existed with different content and was
	// overwritten.
	StateReplaced State = "replaced"
)

// Resource is one managed file: a target path and the exact content wslkit
// wants there.
type Resource struct {
	// Name is how the file is described in console output ("udev rule").
	Name string

	Path    string
	Content string
	Mode    fs.FileMode

	// Reload, when set, is fired after a real write to nudge the consuming
	// subsystem (udevadm reload). Failures are logged, never fatal: the
	// file is durably written regardless.
	Reload func() error
}

// Writer converges managed resources. Under dry-run it classifies and
// reports but never writes and never fires reload hooks.
type Writer struct {
	fs      types.FS
	dryRun  bool
	printer *style.Printer
	logger  zerolog.Logger
}

// NewWriter creates a Writer.
func NewWriter(fsys types.FS, dryRun bool, printer *style.Printer) *Writer {
	return &Writer{
		fs:      fsys,
		dryRun:  dryRun,
		printer: printer,
		logger:  logging.GetLogger("resource"),
	}
}

// Ensure converges one resource and reports which branch was taken.
//
// Content comparison ignores trailing-whitespace differences only; any
// other difference replaces the file wholesale.
func (w *Writer) Ensure(res Resource) (State, error) {
	mode := res.Mode
	if mode == 0 {
		mode = 0644
	}

	existing, err := w.fs.ReadFile(res.Path)
	switch {
	case err == nil:
		if contentEqual(string(existing), res.Content) {
			w.printer.OK("%s already present at %s", res.Name, res.Path)
			return StateUnchanged, nil
		}
		w.printer.Notice("%s exists but differs; will replace with managed content", res.Path)
		if err := w.write(res, mode); err != nil {
			return StateReplaced, err
		}
		return StateReplaced, nil
	default:
		w.printer.Plain("Writing %s to: %s", res.Name, res.Path)
		if err := w.write(res, mode); err != nil {
			return StateCreated, err
		}
		return StateCreated, nil
	}
}

func (w *Writer) write(res Resource, mode fs.FileMode) error {
	if w.dryRun {
		w.printer.DryRun("not writing %s", res.Name)
		return nil
	}

	if err := w.fs.MkdirAll(filepath.Dir(res.Path), 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "creating parent directory for %s", res.Path)
	}
	if err := w.fs.WriteFile(res.Path, []byte(res.Content), mode); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "writing %s", res.Path)
	}

	if res.Reload != nil {
		if err := res.Reload(); err != nil {
			// The rule is durably written; a reload hiccup must not fail the run.
			w.logger.Warn().Err(err).Str("resource", res.Name).Msg("Reload signal failed")
		}
	}
	return nil
}

// contentEqual compares file content ignoring trailing-whitespace
// differences. This matches the behavior re-runs rely on when an editor or
// earlier version left a different amount of trailing newline.
func contentEqual(existing, desired string) bool {
	return strings.TrimRight(existing, " \t\r\n") == strings.TrimRight(desired, " \t\r\n")
}
