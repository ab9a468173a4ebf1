package main

import (
	"io"

	"github.com/charmbracelet/lipgloss"
)

// styles renders headings for human-readable output. Colors are dropped
// when w is not a terminal.
type styles struct {
	heading lipgloss.Style
	muted   lipgloss.Style
}

func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	return styles{
		heading: r.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		muted:   r.NewStyle().Foreground(lipgloss.Color("8")),
	}
}
