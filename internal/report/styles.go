package report

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// renderer ties lipgloss's styling to termenv's own terminal-capability
// detection for stdout, rather than lipgloss's implicit global default,
// so a no-color or dumb terminal degrades the rich report to plain text.
var renderer = lipgloss.NewRenderer(os.Stdout, termenv.WithColorCache(true))

var (
	colorPass  = lipgloss.Color("10")
	colorFail  = lipgloss.Color("9")
	colorFlaky = lipgloss.Color("11")
	colorSkip  = lipgloss.Color("8")
	colorDim   = lipgloss.Color("8")

	passStyle  = renderer.NewStyle().Foreground(colorPass).Bold(true)
	failStyle  = renderer.NewStyle().Foreground(colorFail).Bold(true)
	flakyStyle = renderer.NewStyle().Foreground(colorFlaky).Bold(true)
	skipStyle  = renderer.NewStyle().Foreground(colorSkip)
	dimStyle   = renderer.NewStyle().Foreground(colorDim)
)
