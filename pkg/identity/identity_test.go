package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wslkit/wslkit/pkg/errors"
	"github.com/wslkit/wslkit/pkg/testutil"
	"github.com/wslkit/wslkit/pkg/types"
)

const testPasswd = "/etc/passwd"

func newTestResolver(t *testing.T, fsys types.FS, euid int, env map[string]string) *Resolver {
	t.Helper()
	return &Resolver{
		FS:   fsys,
		Euid: euid,
		LookupEnv: func(key string) (string, bool) {
			v, ok := env[key]
			return v, ok
		},
		PasswdPath: testPasswd,
	}
}

func writePasswd(t *testing.T, fsys types.FS, entries ...string) {
	t.Helper()
	content := "root:x:0:0:root:/root:/bin/bash\n" +
		"daemon:x:1:1::/usr/sbin:/usr/sbin/nologin\n"
	for _, e := range entries {
		content += e
	}
	testutil.WriteFile(t, fsys, testPasswd, content)
}

func TestResolveExplicitUser(t *testing.T) {
	fsys := testutil.NewMemoryFS()
	writePasswd(t, fsys, testutil.PasswdLine("alice", 1000, 1000, "/home/alice"))
	testutil.MkdirAll(t, fsys, "/home/alice")

	r := newTestResolver(t, fsys, 0, nil)
	id, err := r.Resolve("alice")
	require.NoError(t, err)

	assert.Equal(t, "alice", id.Name)
	assert.Equal(t, 1000, id.UID)
	assert.Equal(t, "/home/alice", id.Home)
	assert.True(t, id.Elevated)
	assert.False(t, id.AutoSelected)
}

func TestResolveExplicitUnknownUser(t *testing.T) {
	fsys := testutil.NewMemoryFS()
	writePasswd(t, fsys)

	r := newTestResolver(t, fsys, 0, nil)
	_, err := r.Resolve("ghost")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrUnknownIdentity))
}

func TestResolveSudoUserHint(t *testing.T) {
	fsys := testutil.NewMemoryFS()
	writePasswd(t, fsys,
		testutil.PasswdLine("alice", 1000, 1000, "/home/alice"),
		testutil.PasswdLine("bob", 1001, 1001, "/home/bob"))
	testutil.MkdirAll(t, fsys, "/home/alice")
	testutil.MkdirAll(t, fsys, "/home/bob")

	r := newTestResolver(t, fsys, 0, map[string]string{"SUDO_USER": "bob"})
	id, err := r.Resolve("")
	require.NoError(t, err)
	assert.Equal(t, "bob", id.Name)
	assert.False(t, id.AutoSelected)
}

func TestResolveHintsSkipRootAndUnknown(t *testing.T) {
	fsys := testutil.NewMemoryFS()
	writePasswd(t, fsys, testutil.PasswdLine("alice", 1000, 1000, "/home/alice"))
	testutil.MkdirAll(t, fsys, "/home/alice")

	// SUDO_USER=root must not win; USER=ghost resolves to nothing; LOGNAME
	// finally lands on a real account.
	env := map[string]string{"SUDO_USER": "root", "USER": "ghost", "LOGNAME": "alice"}
	r := newTestResolver(t, fsys, 0, env)
	id, err := r.Resolve("")
	require.NoError(t, err)
	assert.Equal(t, "alice", id.Name)
}

func TestResolveCurrentAccountWhenNotElevated(t *testing.T) {
	fsys := testutil.NewMemoryFS()
	writePasswd(t, fsys, testutil.PasswdLine("carol", 1002, 1002, "/home/carol"))
	testutil.MkdirAll(t, fsys, "/home/carol")

	r := newTestResolver(t, fsys, 1002, nil)
	id, err := r.Resolve("")
	require.NoError(t, err)
	assert.Equal(t, "carol", id.Name)
	assert.False(t, id.Elevated)
}

func TestResolveAutoSelectSingleCandidate(t *testing.T) {
	fsys := testutil.NewMemoryFS()
	writePasswd(t, fsys,
		testutil.PasswdLine("alice", 1000, 1000, "/home/alice"),
		// Not a candidate: system uid
		testutil.PasswdLine("svc", 999, 999, "/home/svc"),
		// Not a candidate: home outside /home
		testutil.PasswdLine("mover", 1003, 1003, "/var/lib/mover"),
		// Not a candidate: home missing on disk
		testutil.PasswdLine("gone", 1004, 1004, "/home/gone"))
	testutil.MkdirAll(t, fsys, "/home/alice")
	testutil.MkdirAll(t, fsys, "/home/svc")
	testutil.MkdirAll(t, fsys, "/var/lib/mover")

	r := newTestResolver(t, fsys, 0, nil)
	id, err := r.Resolve("")
	require.NoError(t, err)
	assert.Equal(t, "alice", id.Name)
	assert.True(t, id.AutoSelected)
}

func TestResolveAmbiguousWithTwoCandidates(t *testing.T) {
	fsys := testutil.NewMemoryFS()
	writePasswd(t, fsys,
		testutil.PasswdLine("alice", 1000, 1000, "/home/alice"),
		testutil.PasswdLine("bob", 1001, 1001, "/home/bob"))
	testutil.MkdirAll(t, fsys, "/home/alice")
	testutil.MkdirAll(t, fsys, "/home/bob")

	r := newTestResolver(t, fsys, 0, nil)
	_, err := r.Resolve("")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrAmbiguousIdentity))
	assert.Equal(t, []string{"alice", "bob"}, errors.GetErrorDetails(err)["candidates"])
}

func TestResolveAmbiguousWithZeroCandidates(t *testing.T) {
	fsys := testutil.NewMemoryFS()
	writePasswd(t, fsys)

	r := newTestResolver(t, fsys, 0, nil)
	_, err := r.Resolve("")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrAmbiguousIdentity))
}

func TestResolveFailsWhenHomeMissing(t *testing.T) {
	fsys := testutil.NewMemoryFS()
	writePasswd(t, fsys, testutil.PasswdLine("alice", 1000, 1000, "/home/alice"))
	// /home/alice never created

	r := newTestResolver(t, fsys, 0, nil)
	_, err := r.Resolve("alice")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrUnknownIdentity))
}

func TestLoadAccountsSkipsMalformedLines(t *testing.T) {
	fsys := testutil.NewMemoryFS()
	testutil.WriteFile(t, fsys, testPasswd,
		"# comment\n"+
			"\n"+
			"broken:line\n"+
			"badint:x:abc:0::/home/badint:/bin/bash\n"+
			"alice:x:1000:1000::/home/alice:/bin/bash\n")

	accounts, err := loadAccounts(fsys, testPasswd)
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.Equal(t, "alice", accounts[0].Name)
}
