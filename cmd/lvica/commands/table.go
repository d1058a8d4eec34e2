package commands

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/katalvlaran/lvica/trainer"
)

// Theme colors, shared by the epoch table and the summary box.
var (
	colorPrimary = lipgloss.Color("#00ff9f")
	colorDim     = lipgloss.Color("#6e7681")
)

type styles struct {
	Header lipgloss.Style
	Cell   lipgloss.Style
	Dim    lipgloss.Style
	Box    lipgloss.Style
	Label  lipgloss.Style
}

func newStyles() styles {
	return styles{
		Header: lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Width(14).Align(lipgloss.Right),
		Cell:   lipgloss.NewStyle().Width(14).Align(lipgloss.Right),
		Dim:    lipgloss.NewStyle().Foreground(colorDim),
		Box: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorPrimary).
			Padding(0, 1),
		Label: lipgloss.NewStyle().Bold(true).Foreground(colorPrimary),
	}
}

// epochTable streams one styled row per epoch.
type epochTable struct {
	w      io.Writer
	st     styles
	header bool
}

func newEpochTable(w io.Writer) *epochTable {
	return &epochTable{w: w, st: newStyles()}
}

func (t *epochTable) row(cells ...string) string {
	out := make([]string, len(cells))
	for i, c := range cells {
		out[i] = t.st.Cell.Render(c)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, out...)
}

// Observe is a trainer epoch observer.
func (t *epochTable) Observe(e trainer.Epoch) {
	if !t.header {
		t.header = true
		cols := []string{"epoch", "objective", "stalls", "evals", "elapsed"}
		hdr := make([]string, len(cols))
		for i, c := range cols {
			hdr[i] = t.st.Header.Render(c)
		}
		fmt.Fprintln(t.w, lipgloss.JoinHorizontal(lipgloss.Top, hdr...))
		fmt.Fprintln(t.w, t.st.Dim.Render(strings.Repeat("─", 14*len(cols))))
	}
	fmt.Fprintln(t.w, t.row(
		fmt.Sprint(e.Index),
		fmt.Sprintf("%.6f", e.Value),
		fmt.Sprint(e.Stalls),
		fmt.Sprint(e.Evals),
		e.Elapsed.Round(time.Millisecond).String(),
	))
}

// summary renders label/value pairs in a rounded box.
func summary(pairs ...[2]string) string {
	st := newStyles()
	width := 0
	for _, p := range pairs {
		width = max(width, lipgloss.Width(p[0]))
	}
	lines := make([]string, len(pairs))
	for i, p := range pairs {
		label := st.Label.Render(p[0] + strings.Repeat(" ", width-lipgloss.Width(p[0])))
		lines[i] = label + "  " + p[1]
	}
	return st.Box.Render(strings.Join(lines, "\n"))
}
