package report

import (
	"io"

	"github.com/charmbracelet/lipgloss"
)

// styles are bound to the renderer of one writer, so color is only emitted
// when that writer is a terminal.
type styles struct {
	title   lipgloss.Style
	section lipgloss.Style
	label   lipgloss.Style
	dim     lipgloss.Style
	filled  lipgloss.Style
	empty   lipgloss.Style
	warning lipgloss.Style
}

func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	return styles{
		// Title - bold bright cyan
		title: r.NewStyle().
			Foreground(lipgloss.Color("51")).
			Bold(true),

		section: r.NewStyle().
			Foreground(lipgloss.Color("45")).
			Bold(true),

		label: r.NewStyle().
			Foreground(lipgloss.Color("45")),

		dim: r.NewStyle().
			Foreground(lipgloss.Color("245")),

		// Confidence bar cells
		filled: r.NewStyle().
			Foreground(lipgloss.Color("46")),
		empty: r.NewStyle().
			Foreground(lipgloss.Color("238")),

		warning: r.NewStyle().
			Foreground(lipgloss.Color("226")).
			Bold(true),
	}
}
