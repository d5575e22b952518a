package ansible

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/wslkit/wslkit/pkg/config"
	"github.com/wslkit/wslkit/pkg/identity"
	"github.com/wslkit/wslkit/pkg/style"
	"github.com/wslkit/wslkit/pkg/testutil"
	"github.com/wslkit/wslkit/pkg/types"
)

type env struct {
	fs     types.FS
	runner *testutil.ScriptedRunner
	out    *bytes.Buffer
	opts   Options
}

func newEnv(t *testing.T) *env {
	t.Helper()
	fs := testutil.NewMemoryFS()
	testutil.WriteFile(t, fs, "/etc/passwd",
		"root:x:0:0:root:/root:/bin/bash\n"+
			testutil.PasswdLine("alice", 1000, 1000, "/home/alice"))
	testutil.MkdirAll(t, fs, "/home/alice")
	testutil.WriteFile(t, fs, "/proc/version", "Linux version 5.15.90.1-microsoft-standard-WSL2")

	cfg, err := config.Default()
	require.NoError(t, err)

	runner := testutil.NewScriptedRunner()
	var out bytes.Buffer
	resolver := &identity.Resolver{
		FS:   fs,
		Euid: 0,
		LookupEnv: func(key string) (string, bool) {
			if key == "SUDO_USER" {
				return "alice", true
			}
			return "", false
		},
		PasswdPath: "/etc/passwd",
	}

	return &env{
		fs:     fs,
		runner: runner,
		out:    &out,
		opts: Options{
			FS:       fs,
			Runner:   runner,
			Printer:  style.NewPlainPrinter(&out),
			Config:   cfg,
			Resolver: resolver,
		},
	}
}

func TestBootstrapFullRun(t *testing.T) {
	e := newEnv(t)

	result, err := Bootstrap(e.opts)
	require.NoError(t, err)

	assert.Equal(t, "alice", result.Identity.Name)
	assert.Equal(t, "/home/alice/ansible-control-node", result.Base)
	assert.ElementsMatch(t, []string{
		"ansible.cfg",
		"inventory/hosts.yml",
		"playbooks/test_ios_facts.yml",
	}, result.FilesWritten)

	// Project tree exists
	for _, sub := range []string{"inventory", "group_vars", "host_vars", "playbooks", "roles", "images", "reports"} {
		assert.True(t, testutil.Exists(e.fs, result.Base+"/"+sub), "missing %s", sub)
	}

	// External steps ran in order: apt, venv, pip, ansible --version, galaxy
	assert.True(t, e.runner.Ran("apt-get update"))
	assert.True(t, e.runner.Ran("apt-get install -y python3"))
	assert.True(t, e.runner.Ran("python3 -m venv /home/alice/ansible-control-node/venv"))
	assert.True(t, e.runner.Ran("venv/bin/pip install --upgrade"))
	assert.True(t, e.runner.Ran("venv/bin/ansible --version"))
	assert.True(t, e.runner.Ran("venv/bin/ansible-galaxy collection install ansible.netcommon"))
	assert.True(t, e.runner.Ran("venv/bin/ansible-galaxy collection install cisco.ios"))
}

func TestBootstrapBaselineTemplatesAreValidYAML(t *testing.T) {
	e := newEnv(t)
	_, err := Bootstrap(e.opts)
	require.NoError(t, err)

	for _, path := range []string{
		"/home/alice/ansible-control-node/inventory/hosts.yml",
		"/home/alice/ansible-control-node/playbooks/test_ios_facts.yml",
	} {
		var doc interface{}
		err := yaml.Unmarshal([]byte(testutil.ReadFile(t, e.fs, path)), &doc)
		require.NoError(t, err, "template %s must be valid YAML", path)
	}
}

func TestBootstrapNeverOverwritesExistingFiles(t *testing.T) {
	e := newEnv(t)
	custom := "all:\n  hosts:\n    myswitch:\n      ansible_host: 192.0.2.1\n"
	testutil.MkdirAll(t, e.fs, "/home/alice/ansible-control-node/inventory")
	testutil.WriteFile(t, e.fs, "/home/alice/ansible-control-node/inventory/hosts.yml", custom)

	result, err := Bootstrap(e.opts)
	require.NoError(t, err)

	assert.NotContains(t, result.FilesWritten, "inventory/hosts.yml")
	assert.Equal(t, custom, testutil.ReadFile(t, e.fs, "/home/alice/ansible-control-node/inventory/hosts.yml"))
}

func TestBootstrapSkipApt(t *testing.T) {
	e := newEnv(t)
	e.opts.SkipApt = true

	_, err := Bootstrap(e.opts)
	require.NoError(t, err)
	assert.False(t, e.runner.Ran("apt-get"))
	assert.Contains(t, e.out.String(), "[SKIP]")
}

func TestBootstrapExistingVenvLeftAlone(t *testing.T) {
	e := newEnv(t)
	testutil.MkdirAll(t, e.fs, "/home/alice/ansible-control-node/venv")

	_, err := Bootstrap(e.opts)
	require.NoError(t, err)
	assert.False(t, e.runner.Ran("python3 -m venv"))
	// pip still runs against the existing venv
	assert.True(t, e.runner.Ran("venv/bin/pip install"))
}

func TestBootstrapExplicitTildePathRootsAtTargetHome(t *testing.T) {
	e := newEnv(t)
	e.opts.Path = "~/netops"

	result, err := Bootstrap(e.opts)
	require.NoError(t, err)
	assert.Equal(t, "/home/alice/netops", result.Base)
	assert.True(t, testutil.Exists(e.fs, "/home/alice/netops/inventory"))
}

func TestBootstrapDryRunMutatesNothing(t *testing.T) {
	e := newEnv(t)
	e.opts.DryRun = true

	result, err := Bootstrap(e.opts)
	require.NoError(t, err)

	// No external commands, no files, no dirs
	assert.Empty(t, e.runner.Calls)
	assert.False(t, testutil.Exists(e.fs, result.Base))
	assert.Empty(t, result.FilesWritten)

	// But a non-empty, accurate preview
	out := e.out.String()
	assert.Contains(t, out, "DRY RUN: would create directory /home/alice/ansible-control-node")
	assert.Contains(t, out, "DRY RUN: would write /home/alice/ansible-control-node/ansible.cfg")
	assert.Contains(t, out, "DRY RUN: skipping apt operations")
}

func TestBootstrapAmbiguousIdentityFails(t *testing.T) {
	e := newEnv(t)
	// Second eligible account and no env hints
	testutil.WriteFile(t, e.fs, "/etc/passwd",
		"root:x:0:0:root:/root:/bin/bash\n"+
			testutil.PasswdLine("alice", 1000, 1000, "/home/alice")+
			testutil.PasswdLine("bob", 1001, 1001, "/home/bob"))
	testutil.MkdirAll(t, e.fs, "/home/bob")
	e.opts.Resolver.LookupEnv = func(string) (string, bool) { return "", false }

	_, err := Bootstrap(e.opts)
	require.Error(t, err)
}

// chownRecorder wraps a types.FS and records Chown calls.
type chownRecorder struct {
	types.FS
	chowned map[string][2]int
}

func (c *chownRecorder) Chown(name string, uid, gid int) error {
	c.chowned[name] = [2]int{uid, gid}
	return c.FS.Chown(name, uid, gid)
}

func TestBootstrapChownsTreeWhenElevated(t *testing.T) {
	e := newEnv(t)
	rec := &chownRecorder{FS: e.fs, chowned: make(map[string][2]int)}
	e.opts.FS = rec
	e.opts.Resolver.FS = rec

	_, err := Bootstrap(e.opts)
	require.NoError(t, err)

	assert.Equal(t, [2]int{1000, 1000}, rec.chowned["/home/alice/ansible-control-node"])
	assert.Equal(t, [2]int{1000, 1000}, rec.chowned["/home/alice/ansible-control-node/ansible.cfg"])
	assert.Equal(t, [2]int{1000, 1000}, rec.chowned["/home/alice/ansible-control-node/inventory/hosts.yml"])
}
