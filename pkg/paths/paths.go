// Package paths materializes user-supplied path expressions into absolute
// filesystem paths.
//
// The subtlety it exists for: when wslkit runs under sudo, "~/..." in an
// argument means the *target* user's home, not root's. ExpandForTarget
// resolves against the resolved identity's home before falling back to
// normal expansion.
package paths

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/wslkit/wslkit/pkg/errors"
	"github.com/wslkit/wslkit/pkg/types"
)

// ExpandForTarget expands a path expression into an absolute path. A leading
// "~/" is rooted at targetHome when one is given; otherwise the expression
// gets regular tilde and environment-variable expansion relative to the
// calling process.
func ExpandForTarget(expr string, targetHome string) (string, error) {
	if expr == "" {
		return "", errors.New(errors.ErrInvalidInput, "empty path expression")
	}

	if targetHome != "" && strings.HasPrefix(expr, "~/") {
		return filepath.Abs(filepath.Join(targetHome, expr[2:]))
	}

	expanded := os.ExpandEnv(expandHome(expr))
	return filepath.Abs(expanded)
}

// expandHome expands ~ to the home directory
func expandHome(path string) string {
	if path == "" {
		return path
	}

	if path[0] == '~' {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			// Fallback to HOME env var
			homeDir = os.Getenv("HOME")
			if homeDir == "" {
				// Can't expand, return as-is
				return path
			}
		}

		if len(path) == 1 {
			return homeDir
		}

		// Handle both ~/ and ~
		if path[1] == '/' || path[1] == filepath.Separator {
			return filepath.Join(homeDir, path[2:])
		}

		// ~something (not the user's home)
		return path
	}

	return path
}

// EnsureDir creates path and its parents. A segment that already exists as
// a non-directory is a PATH_CONFLICT: wslkit never implicitly replaces an
// existing file with a directory.
func EnsureDir(fsys types.FS, path string, perm fs.FileMode) error {
	if !filepath.IsAbs(path) {
		return errors.Newf(errors.ErrInvalidInput, "EnsureDir requires an absolute path, got %q", path)
	}

	segment := string(filepath.Separator)
	for _, part := range strings.Split(filepath.Clean(path), string(filepath.Separator)) {
		if part == "" {
			continue
		}
		segment = filepath.Join(segment, part)
		info, err := fsys.Stat(segment)
		if err != nil {
			break // first missing segment; MkdirAll creates the rest
		}
		if !info.IsDir() {
			return errors.Newf(errors.ErrPathConflict,
				"%s exists and is not a directory", segment).
				WithDetail("segment", segment).
				WithDetail("path", path)
		}
	}

	if err := fsys.MkdirAll(path, perm); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "creating directory %s", path)
	}
	return nil
}
