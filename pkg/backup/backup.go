// Package backup implements the backup-then-mutate guard: before wslkit's
// first destructive edit to an authoritative file, exactly one pristine
// copy is taken. Re-runs never touch an existing backup, so the safety net
// always reflects the state before any tool-driven edit ever happened.
package backup

import (
	"github.com/rs/zerolog"

	"github.com/wslkit/wslkit/pkg/errors"
	"github.com/wslkit/wslkit/pkg/logging"
	"github.com/wslkit/wslkit/pkg/style"
	"github.com/wslkit/wslkit/pkg/types"
)

// Guard creates one-time backups of files about to be mutated.
type Guard struct {
	fs      types.FS
	suffix  string
	dryRun  bool
	printer *style.Printer
	logger  zerolog.Logger
}

// NewGuard creates a Guard appending suffix (".bak") to backup paths.
func NewGuard(fsys types.FS, suffix string, dryRun bool, printer *style.Printer) *Guard {
	return &Guard{
		fs:      fsys,
		suffix:  suffix,
		dryRun:  dryRun,
		printer: printer,
		logger:  logging.GetLogger("backup"),
	}
}

// Path returns the backup path for an original, without touching the disk.
func (g *Guard) Path(original string) string {
	return original + g.suffix
}

// Ensure guarantees a backup of original exists and returns its path.
//
// An existing backup is reported and returned untouched, even if the
// original has since changed. A missing original is SOURCE_MISSING: callers
// must confirm the file they intend to mutate exists before guarding it.
// Dry-run reports the backup that would be created without copying.
func (g *Guard) Ensure(original string) (string, error) {
	backupPath := g.Path(original)

	if _, err := g.fs.Stat(backupPath); err == nil {
		g.printer.OK("backup already exists at %s", backupPath)
		return backupPath, nil
	}

	info, err := g.fs.Stat(original)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrSourceMissing, "cannot back up %s", original)
	}

	g.printer.Plain("Creating backup: %s", backupPath)
	if g.dryRun {
		g.printer.DryRun("not creating backup")
		return backupPath, nil
	}

	data, err := g.fs.ReadFile(original)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrFileRead, "reading %s for backup", original)
	}
	if err := g.fs.WriteFile(backupPath, data, info.Mode().Perm()); err != nil {
		return "", errors.Wrapf(err, errors.ErrFileWrite, "writing backup %s", backupPath)
	}

	g.logger.Info().Str("original", original).Str("backup", backupPath).Msg("Backup created")
	return backupPath, nil
}
