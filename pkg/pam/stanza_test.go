package pam

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testStanza = "auth required pam_u2f.so authfile=/home/alice/.config/Yubico/u2f_keys cue"

func countMatching(text string) int {
	n := 0
	for _, line := range strings.Split(text, "\n") {
		if matches(line) {
			n++
		}
	}
	return n
}

func TestStanza(t *testing.T) {
	assert.Equal(t,
		"auth required pam_u2f.so authfile=/etc/u2f_keys cue",
		Stanza("/etc/u2f_keys"))
}

func TestEnsureAuthStanzaDedup(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		wantRemoved int
	}{
		{
			name:        "no prior stanza",
			input:       "# header\nauth required pam_unix.so\nsession optional pam_motd.so\n",
			wantRemoved: 0,
		},
		{
			name:        "one prior stanza",
			input:       "# header\nauth required pam_u2f.so authfile=/old/path\nauth required pam_unix.so\n",
			wantRemoved: 1,
		},
		{
			name: "three prior stanzas scattered through the body",
			input: "auth required pam_u2f.so cue\n" +
				"auth required pam_unix.so\n" +
				"  auth sufficient pam_u2f.so\n" +
				"session optional pam_motd.so\n" +
				"auth required pam_u2f.so authfile=/stale\n",
			wantRemoved: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, removed := EnsureAuthStanza(tt.input, testStanza)

			assert.Equal(t, tt.wantRemoved, removed)
			assert.Equal(t, 1, countMatching(out), "output must contain exactly one stanza")

			// Non-matching line count is unchanged
			inLines := strings.Split(strings.TrimRight(tt.input, "\n"), "\n")
			nonMatching := 0
			for _, l := range inLines {
				if !matches(l) {
					nonMatching++
				}
			}
			outLines := strings.Split(strings.TrimRight(out, "\n"), "\n")
			assert.Equal(t, nonMatching+1, len(outLines))
		})
	}
}

func TestEnsureAuthStanzaInsertionAfterCommentHeader(t *testing.T) {
	input := "# 1\n# 2\n# 3\nauth required pam_unix.so\n@include common-auth\n"
	out, removed := EnsureAuthStanza(input, testStanza)
	require.Equal(t, 0, removed)

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	assert.Equal(t, testStanza, lines[3], "stanza must land at index 3, after the 3-line header")
	assert.Equal(t, []string{"# 1", "# 2", "# 3"}, lines[:3])
	assert.Equal(t, []string{"auth required pam_unix.so", "@include common-auth"}, lines[4:])
}

func TestEnsureAuthStanzaNoHeaderInsertsAtTop(t *testing.T) {
	out, _ := EnsureAuthStanza("auth required pam_unix.so\n", testStanza)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	assert.Equal(t, testStanza, lines[0])
}

func TestEnsureAuthStanzaLaterCommentsAreBody(t *testing.T) {
	// Comments after the first directive are not part of the leading block
	input := "# header\nauth required pam_unix.so\n# mid comment\nsession optional pam_motd.so\n"
	out, _ := EnsureAuthStanza(input, testStanza)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	assert.Equal(t, []string{
		"# header",
		testStanza,
		"auth required pam_unix.so",
		"# mid comment",
		"session optional pam_motd.so",
	}, lines)
}

func TestEnsureAuthStanzaEmptyInput(t *testing.T) {
	out, removed := EnsureAuthStanza("", testStanza)
	assert.Equal(t, 0, removed)
	assert.Equal(t, testStanza+"\n", out)
}

func TestEnsureAuthStanzaSingleTrailingNewline(t *testing.T) {
	inputs := []string{
		"auth required pam_unix.so",          // no trailing newline
		"auth required pam_unix.so\n",        // one
		"auth required pam_unix.so\n\n\n",    // several
		"auth required pam_unix.so\n   \n\t", // trailing whitespace noise
	}
	for _, input := range inputs {
		out, _ := EnsureAuthStanza(input, testStanza)
		assert.True(t, strings.HasSuffix(out, "\n"))
		assert.False(t, strings.HasSuffix(out, "\n\n"))
	}
}

func TestEnsureAuthStanzaConvergence(t *testing.T) {
	input := "# PAM config\nauth required pam_permit.so\n"

	first, removed := EnsureAuthStanza(input, testStanza)
	assert.Equal(t, 0, removed)
	lines := strings.Split(strings.TrimRight(first, "\n"), "\n")
	assert.Equal(t, testStanza, lines[1], "stanza inserted at index 1 after the header")

	second, removed := EnsureAuthStanza(first, testStanza)
	assert.Equal(t, 1, removed)
	assert.Equal(t, first, second, "re-running converges to identical output")
}
