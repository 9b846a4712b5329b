package ui

import (
	"fmt"
	"os"

	"github.com/fatih/color"
)

// Formatter applies semantic formatting to text.
type Formatter struct {
	color  *color.Color
	prefix string
	suffix string
}

// Sprint formats the arguments and returns the resulting string.
func (f Formatter) Sprint(a ...any) string {
	return f.render(fmt.Sprint(a...))
}

// Sprintf formats according to a format specifier and returns the resulting string.
func (f Formatter) Sprintf(format string, a ...any) string {
	return f.render(fmt.Sprintf(format, a...))
}

func (f Formatter) render(text string) string {
	if NoColor() {
		return f.prefix + text + f.suffix
	}
	return f.color.Sprint(text)
}

// NoColor reports whether colour output is disabled.
func NoColor() bool {
	// https://no-color.org/
	if _, exists := os.LookupEnv("NO_COLOR"); exists {
		return true
	}
	return color.NoColor
}

var (
	// ID formats note ids: cyan, [brackets] without colour.
	ID = Formatter{color.New(color.FgCyan), "[", "]"}

	// Title formats note titles.
	Title = Formatter{color.New(color.FgHiWhite), "", ""}

	// Path formats file and directory paths.
	Path = Formatter{color.New(color.FgYellow), "", ""}

	// Code formats runnable commands: yellow, `backticks` without colour.
	Code = Formatter{color.New(color.FgYellow), "`", "`"}

	// Success formats success messages.
	Success = Formatter{color.New(color.FgGreen), "", ""}

	// Error formats error messages.
	Error = Formatter{color.New(color.FgRed), "", ""}

	// Warning formats warnings.
	Warning = Formatter{color.New(color.FgYellow), "", ""}

	// Dim formats secondary text.
	Dim = Formatter{color.New(color.Faint), "", ""}
)
