package output

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/arthur-debert/reposync/pkg/errors"
)

const (
	errorColor = lipgloss.Color("#FF5F87")
	mutedColor = lipgloss.Color("#808080")
)

// RenderError formats err for the terminal. Details of coded errors are only
// included when debug is set.
func RenderError(w io.Writer, err error, debug bool) string {
	title := "Error: " + err.Error()
	var details []string
	if debug {
		details = detailLines(err)
	}

	if !ColorEnabled(w) {
		for i, line := range details {
			details[i] = "  " + line
		}
		return strings.Join(append([]string{title}, details...), "\n")
	}

	r := lipgloss.NewRenderer(w)
	titleStyle := r.NewStyle().Foreground(errorColor).Bold(true)
	detailStyle := r.NewStyle().Foreground(mutedColor).PaddingLeft(2)

	lines := []string{titleStyle.Render(title)}
	for _, line := range details {
		lines = append(lines, detailStyle.Render(line))
	}
	return strings.Join(lines, "\n")
}

func detailLines(err error) []string {
	details := errors.GetErrorDetails(err)
	keys := make([]string, 0, len(details))
	for k := range details {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		lines = append(lines, fmt.Sprintf("%s: %v", k, details[k]))
	}
	return lines
}
