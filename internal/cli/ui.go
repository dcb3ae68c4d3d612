package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/celltower/pkg/declutter"
)

// Terminal palette (ANSI 256).
var (
	colorCyan  = lipgloss.Color("37")
	colorGreen = lipgloss.Color("71")
	colorAmber = lipgloss.Color("214")
	colorRed   = lipgloss.Color("160")
	colorBlue  = lipgloss.Color("33")
	colorWhite = lipgloss.Color("255")
	colorGray  = lipgloss.Color("246")
	colorDim   = lipgloss.Color("241")
)

var (
	StyleTitle   = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	StyleLink    = lipgloss.NewStyle().Foreground(colorBlue).Underline(true)
	StyleDim     = lipgloss.NewStyle().Foreground(colorDim)
	StyleValue   = lipgloss.NewStyle().Foreground(colorWhite)
	StyleWarning = lipgloss.NewStyle().Foreground(colorAmber)

	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)
	styleCommand     = lipgloss.NewStyle().Foreground(colorBlue)
	styleKey         = lipgloss.NewStyle().Foreground(colorGray).Width(12)
)

const (
	iconCached = "cached"
	iconFresh  = "fresh"
)

// status icons
var (
	markSuccess = lipgloss.NewStyle().Foreground(colorGreen).Render("✓")
	markError   = lipgloss.NewStyle().Foreground(colorRed).Render("✗")
	markWarning = lipgloss.NewStyle().Foreground(colorAmber).Render("!")
	markInfo    = lipgloss.NewStyle().Foreground(colorGray).Render("›")
	markFile    = StyleDim.Render("→")
	separator   = StyleDim.Render(" · ")
)

// stdout receives all user-facing status lines; logs go to stderr.
var stdout io.Writer = os.Stdout

func status(mark, format string, args ...any) {
	fmt.Fprintln(stdout, mark+" "+fmt.Sprintf(format, args...))
}

func printSuccess(format string, args ...any) { status(markSuccess, format, args...) }
func printError(format string, args ...any)   { status(markError, format, args...) }
func printInfo(format string, args ...any)    { status(markInfo, format, args...) }

func printWarning(format string, args ...any) {
	status(markWarning, "%s", StyleWarning.Render(fmt.Sprintf(format, args...)))
}

// printDetail prints an indented secondary line.
func printDetail(format string, args ...any) {
	fmt.Fprintln(stdout, "  "+StyleDim.Render(fmt.Sprintf(format, args...)))
}

func printFile(path string) {
	fmt.Fprintln(stdout, "  "+markFile+" "+StyleValue.Render(path))
}

func printKeyValue(key, value string) {
	fmt.Fprintln(stdout, styleKey.Render(key)+" "+StyleValue.Render(value))
}

// printStats summarizes a declutter pass, e.g.
//
//	4 sites · 2 anchors · 1 down · 1 right · largest group 3 · fresh
func printStats(stats declutter.Stats, cached bool) {
	parts := []string{
		fmt.Sprintf("%d sites", stats.Sites),
		fmt.Sprintf("%d anchors", stats.Anchors),
	}
	if stats.ShiftedDown > 0 {
		parts = append(parts, fmt.Sprintf("%d down", stats.ShiftedDown))
	}
	if stats.ShiftedRight > 0 {
		parts = append(parts, fmt.Sprintf("%d right", stats.ShiftedRight))
	}
	if stats.MaxGroupSize > 1 {
		parts = append(parts, fmt.Sprintf("largest group %d", stats.MaxGroupSize))
	}
	for i, p := range parts {
		parts[i] = StyleDim.Render(p)
	}

	state := StyleDim.Render(iconFresh)
	if cached {
		state = lipgloss.NewStyle().Foreground(colorGreen).Render(iconCached)
	}
	fmt.Fprintln(stdout, "  "+strings.Join(append(parts, state), separator))
}

// printNextStep suggests a follow-up command.
func printNextStep(description, cmd string) {
	fmt.Fprintln(stdout, StyleDim.Render(description+":")+" "+styleCommand.Render(cmd))
}

func printNewline() { fmt.Fprintln(stdout) }
