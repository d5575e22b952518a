package types

import (
	"io/fs"
)

// FS is the filesystem interface required for wslkit operations
type FS interface {
	// File operations
	Stat(name string) (fs.FileInfo, error)
	ReadFile(name string) ([]byte, error)
	WriteFile(name string, data []byte, perm fs.FileMode) error

	// Directory operations
	MkdirAll(path string, perm fs.FileMode) error
	ReadDir(name string) ([]fs.DirEntry, error)

	// Mutation operations
	Rename(oldpath, newpath string) error
	Remove(name string) error
	Chmod(name string, mode fs.FileMode) error
	Chown(name string, uid, gid int) error
}

// CommandResult is the observable outcome of an external command: captured
// output plus exit status. Nothing else about the external tool is modeled.
type CommandResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Runner executes external commands. A single narrow capability interface so
// the mutation engine can be tested with a scripted fake instead of real
// package managers or hardware tooling.
type Runner interface {
	// Run executes a command with captured output.
	Run(name string, args ...string) (CommandResult, error)

	// RunInteractive executes a command with the process's own stdio attached,
	// for tools that prompt the operator (PIN entry, key touch). It imposes no
	// timeout: enrollment legitimately blocks on physical user action.
	RunInteractive(name string, args ...string) error
}
