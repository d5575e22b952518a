package pam

import (
	"strings"
)

const (
	// moduleRef identifies the lines this tool owns in the PAM file.
	moduleRef = "pam_u2f.so"

	// authDirective is the controlling directive keyword. Only auth lines
	// referencing the module are ours; a session or account line that
	// happens to mention pam_u2f is left alone.
	authDirective = "auth"

	commentMarker = "#"
)

// Stanza builds the fully-qualified auth line for a given enrollment file.
// The cue flag makes pam_u2f print a touch prompt so the operator knows why
// sudo is waiting.
func Stanza(authfile string) string {
	return "auth required " + moduleRef + " authfile=" + authfile + " cue"
}

// matches reports whether a line is an existing stanza instance: it
// references the module and its trimmed form starts with the auth directive.
func matches(line string) bool {
	return strings.Contains(line, moduleRef) &&
		strings.HasPrefix(strings.TrimSpace(line), authDirective)
}

// scanner states for locating the insertion point.
const (
	inLeadingCommentBlock = iota
	scanningBody
)

// EnsureAuthStanza returns the PAM file text with exactly one instance of
// stanza, plus the number of prior instances removed.
//
// Prior matching lines are removed wherever they appear. The stanza is
// inserted after the contiguous leading comment header (index 0 when there
// is none) so the new control is evaluated before every other directive.
// All other lines keep their relative order, and the output ends with
// exactly one newline.
func EnsureAuthStanza(text, stanza string) (string, int) {
	var lines []string
	if text != "" {
		lines = strings.Split(text, "\n")
		// A trailing newline yields one empty trailing element; drop it so
		// it isn't treated as a body line.
		if lines[len(lines)-1] == "" {
			lines = lines[:len(lines)-1]
		}
	}

	removed := 0
	kept := make([]string, 0, len(lines)+1)
	for _, line := range lines {
		if matches(line) {
			removed++
			continue
		}
		kept = append(kept, line)
	}

	insertIdx := 0
	state := inLeadingCommentBlock
	for i, line := range kept {
		if state == scanningBody {
			break
		}
		if strings.HasPrefix(line, commentMarker) {
			insertIdx = i + 1
			continue
		}
		state = scanningBody
	}

	out := make([]string, 0, len(kept)+1)
	out = append(out, kept[:insertIdx]...)
	out = append(out, stanza)
	out = append(out, kept[insertIdx:]...)

	return strings.TrimRight(strings.Join(out, "\n"), " \t\n") + "\n", removed
}
