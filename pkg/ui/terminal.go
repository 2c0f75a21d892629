package ui

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

// Logo printed at the top of interactive runs
const Logo = `
 ┬┌─┐  ┬ ┬┌┐┌┌─┐┌─┐┬  ┬  ┌─┐┬ ┬
 ││ ┬  │ ││││├┤ │ ││  │  │ ││││
 ┴└─┘  └─┘┘└┘└  └─┘┴─┘┴─┘└─┘└┴┘
  unfollow the accounts that do not follow you back
`

var (
	cyan    = lipgloss.Color("#00FFFF")
	magenta = lipgloss.Color("#FF00FF")
	green   = lipgloss.Color("#39FF14")
	yellow  = lipgloss.Color("#FFFF00")
	orange  = lipgloss.Color("#FF6700")
	red     = lipgloss.Color("#FF0000")
	dim     = lipgloss.Color("#B0B0B0")

	logoStyle      = lipgloss.NewStyle().Foreground(cyan).Bold(true)
	labelStyle     = lipgloss.NewStyle().Foreground(cyan).Bold(true)
	valueStyle     = lipgloss.NewStyle().Foreground(yellow)
	successStyle   = lipgloss.NewStyle().Foreground(green).Bold(true)
	errorStyle     = lipgloss.NewStyle().Foreground(red).Bold(true)
	warningStyle   = lipgloss.NewStyle().Foreground(orange).Bold(true)
	highlightStyle = lipgloss.NewStyle().Foreground(magenta).Bold(true)
	dimStyle       = lipgloss.NewStyle().Foreground(dim).Faint(true)
)

var (
	outMu sync.Mutex
	out   io.Writer = os.Stdout
	quiet bool
)

// SetOutput redirects every Print helper. Passing nil restores stdout.
func SetOutput(w io.Writer) {
	outMu.Lock()
	defer outMu.Unlock()
	if w == nil {
		w = os.Stdout
	}
	out = w
}

// SetQuiet silences every helper except PrintError
func SetQuiet(q bool) {
	outMu.Lock()
	defer outMu.Unlock()
	quiet = q
}

func writer(important bool) io.Writer {
	outMu.Lock()
	defer outMu.Unlock()
	if quiet && !important {
		return io.Discard
	}
	return out
}

func withDetail(msg string, args []interface{}) string {
	if len(args) > 0 && fmt.Sprint(args[0]) != "" {
		return msg + ": " + fmt.Sprint(args[0])
	}
	return msg
}

// PrintLogo prints the logo
func PrintLogo() {
	fmt.Fprint(writer(false), logoStyle.Render(Logo)+"\n")
}

// PrintError prints an error message, optionally followed by a detail
func PrintError(msg string, args ...interface{}) {
	fmt.Fprintln(writer(true), errorStyle.Render(withDetail(msg, args)))
}

// PrintSuccess prints a success message
func PrintSuccess(msg string) {
	fmt.Fprintln(writer(false), successStyle.Render(msg))
}

// PrintInfo prints a label and its value
func PrintInfo(label string, value string) {
	fmt.Fprintf(writer(false), "%s: %s\n", labelStyle.Render(label), valueStyle.Render(value))
}

// PrintWarning prints a warning message, optionally followed by a detail
func PrintWarning(msg string, args ...interface{}) {
	fmt.Fprintln(writer(false), warningStyle.Render(withDetail(msg, args)))
}

// PrintHighlight prints a section heading
func PrintHighlight(msg string) {
	fmt.Fprintln(writer(false), highlightStyle.Render(msg))
}

// PrintDim prints secondary text
func PrintDim(msg string) {
	fmt.Fprintln(writer(false), dimStyle.Render(msg))
}
