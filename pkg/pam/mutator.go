// Package pam mutates the sudo PAM configuration so the hardware-token
// auth control is evaluated first.
//
// The transform is pure text: prior stanza instances are removed, one new
// stanza is inserted after the leading comment header, everything else is
// untouched. The mutator wraps the transform with the backup guard and the
// dry-run preview.
package pam

import (
	"strings"

	"github.com/rs/zerolog"

	"github.com/wslkit/wslkit/pkg/backup"
	"github.com/wslkit/wslkit/pkg/errors"
	"github.com/wslkit/wslkit/pkg/logging"
	"github.com/wslkit/wslkit/pkg/style"
	"github.com/wslkit/wslkit/pkg/types"
)

// previewLines bounds the dry-run preview of the would-be file content.
const previewLines = 12

// Result reports what a mutation did (or would do, under dry-run).
type Result struct {
	// Removed is the count of prior stanza instances deleted.
	Removed int

	// Written reports whether the file was actually rewritten; false under
	// dry-run.
	Written bool

	// Stanza is the exact line now present in the file.
	Stanza string
}

// Mutator applies the auth stanza to a PAM configuration file.
type Mutator struct {
	fs      types.FS
	guard   *backup.Guard
	dryRun  bool
	printer *style.Printer
	logger  zerolog.Logger
}

// NewMutator creates a Mutator. The guard is invoked before every
// destructive edit.
func NewMutator(fsys types.FS, guard *backup.Guard, dryRun bool, printer *style.Printer) *Mutator {
	return &Mutator{
		fs:      fsys,
		guard:   guard,
		dryRun:  dryRun,
		printer: printer,
		logger:  logging.GetLogger("pam"),
	}
}

// Apply ensures the PAM file at path contains exactly one instance of the
// stanza for authfile, evaluated before all other directives.
//
// A missing PAM file is TARGET_FILE_MISSING: its absence means the host's
// auth stack is not what this tool was built for, and creating one from
// scratch could lock the operator out.
func (m *Mutator) Apply(path, authfile string) (Result, error) {
	info, err := m.fs.Stat(path)
	if err != nil {
		return Result{}, errors.Wrapf(err, errors.ErrTargetFileMissing, "%s not found", path)
	}

	if _, err := m.guard.Ensure(path); err != nil {
		return Result{}, err
	}

	data, err := m.fs.ReadFile(path)
	if err != nil {
		return Result{}, errors.Wrapf(err, errors.ErrFileRead, "reading %s", path)
	}

	stanza := Stanza(authfile)
	updated, removed := EnsureAuthStanza(string(data), stanza)

	if removed > 0 {
		m.printer.Notice("removed %d existing %s auth line(s) to avoid duplicates", removed, moduleRef)
	}

	result := Result{Removed: removed, Stanza: stanza}

	if m.dryRun {
		m.printer.DryRun("would write the following first ~%d lines of %s:", previewLines, path)
		for _, line := range previewOf(updated) {
			m.printer.Plain("%s", line)
		}
		return result, nil
	}

	if err := m.fs.WriteFile(path, []byte(updated), info.Mode().Perm()); err != nil {
		return Result{}, errors.Wrapf(err, errors.ErrFileWrite, "writing %s", path)
	}

	m.logger.Info().Str("path", path).Int("removed", removed).Msg("PAM stanza applied")
	m.printer.OK("%s line added to %s", moduleRef, path)
	m.printer.Plain("Inserted line: %s", stanza)
	result.Written = true
	return result, nil
}

func previewOf(text string) []string {
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	if len(lines) > previewLines {
		lines = lines[:previewLines]
	}
	return lines
}
