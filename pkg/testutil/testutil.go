// Package testutil provides test helpers for wslkit: an in-memory
// filesystem behind the types.FS interface and a scripted command runner,
// so mutation-engine tests never touch the host or real external tools.
package testutil

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/wslkit/wslkit/pkg/filesystem"
	"github.com/wslkit/wslkit/pkg/types"
)

// NewMemoryFS returns an empty in-memory types.FS.
func NewMemoryFS() types.FS {
	return filesystem.NewAferoFS(afero.NewMemMapFs())
}

// WriteFile writes content to the filesystem, failing the test on error.
func WriteFile(t *testing.T, fsys types.FS, path, content string) {
	t.Helper()
	require.NoError(t, fsys.WriteFile(path, []byte(content), 0644))
}

// MkdirAll creates a directory tree, failing the test on error.
func MkdirAll(t *testing.T, fsys types.FS, path string) {
	t.Helper()
	require.NoError(t, fsys.MkdirAll(path, 0755))
}

// ReadFile reads a file, failing the test on error.
func ReadFile(t *testing.T, fsys types.FS, path string) string {
	t.Helper()
	data, err := fsys.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

// Exists reports whether a path exists on the filesystem.
func Exists(fsys types.FS, path string) bool {
	_, err := fsys.Stat(path)
	return err == nil
}

// PasswdLine formats one passwd-format entry for test account databases.
func PasswdLine(name string, uid, gid int, home string) string {
	return name + ":x:" + itoa(uid) + ":" + itoa(gid) + "::" + home + ":/bin/bash\n"
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var digits []byte
	for n > 0 {
		digits = append([]byte{byte('0' + n%10)}, digits...)
		n /= 10
	}
	return string(digits)
}
