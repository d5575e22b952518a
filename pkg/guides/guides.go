// Package guides holds the operator-facing walkthroughs wslkit cannot
// automate: Windows-side usbipd attachment, lockout recovery, control-node
// next steps. They ship embedded and render as markdown in the terminal.
package guides

import (
	"embed"
	"sort"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/wslkit/wslkit/pkg/errors"
)

//go:embed guides/*.md
var guideFS embed.FS

// List returns the available guide names, sorted.
func List() []string {
	entries, err := guideFS.ReadDir("guides")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".md"))
	}
	sort.Strings(names)
	return names
}

// Raw returns a guide's markdown source.
func Raw(name string) (string, error) {
	data, err := guideFS.ReadFile("guides/" + name + ".md")
	if err != nil {
		return "", errors.Newf(errors.ErrInvalidInput,
			"unknown guide %q (available: %s)", name, strings.Join(List(), ", "))
	}
	return string(data), nil
}

// Render returns a guide rendered for the terminal. Rendering failures fall
// back to the plain markdown: the content matters more than the styling.
func Render(name string) (string, error) {
	content, err := Raw(name)
	if err != nil {
		return "", err
	}

	renderer, err := glamour.NewTermRenderer(glamour.WithAutoStyle())
	if err != nil {
		return content, nil
	}
	rendered, err := renderer.Render(content)
	if err != nil {
		return content, nil
	}
	return rendered, nil
}
