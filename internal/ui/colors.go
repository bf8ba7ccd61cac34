package ui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

var (
	successStyle lipgloss.Style
	errorStyle   lipgloss.Style
	warningStyle lipgloss.Style
	infoStyle    lipgloss.Style
	dimStyle     lipgloss.Style
	setStyle     lipgloss.Style
	movieStyle   lipgloss.Style
	pathStyle    lipgloss.Style
	headerStyle  lipgloss.Style
)

func init() {
	initStyles()
}

func initStyles() {
	if !IsTerminal() {
		plain := lipgloss.NewStyle()
		successStyle, errorStyle, warningStyle, infoStyle = plain, plain, plain, plain
		dimStyle, setStyle, movieStyle, pathStyle, headerStyle = plain, plain, plain, plain, plain
		return
	}

	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	infoStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
	dimStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	setStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("5")).Bold(true)
	movieStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("4"))
	pathStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("15"))
	headerStyle = lipgloss.NewStyle().Bold(true)
}

func Success(text string) string { return successStyle.Render(text) }
func Error(text string) string   { return errorStyle.Render(text) }
func Warning(text string) string { return warningStyle.Render(text) }
func Info(text string) string    { return infoStyle.Render(text) }
func Dim(text string) string     { return dimStyle.Render(text) }

// Set renders a movie set title.
func Set(text string) string { return setStyle.Render(text) }

// Movie renders a movie title.
func Movie(text string) string { return movieStyle.Render(text) }

func Path(text string) string   { return pathStyle.Render(text) }
func Header(text string) string { return headerStyle.Render(text) }

// CheckMark renders a check column cell.
func CheckMark(ok bool) string {
	if ok {
		return Success("✓")
	}
	return Dim("✗")
}

// SuccessMsg writes a success message
func SuccessMsg(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, Success("✓")+" "+fmt.Sprintf(format, args...))
}

// ErrorMsg writes an error message
func ErrorMsg(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, Error("✗")+" "+fmt.Sprintf(format, args...))
}

// WarningMsg writes a warning message
func WarningMsg(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, Warning("⚠")+" "+fmt.Sprintf(format, args...))
}

// InfoMsg writes an info message
func InfoMsg(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, Info("ℹ")+" "+fmt.Sprintf(format, args...))
}
