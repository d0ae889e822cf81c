// Package ansi provides the small set of colored message formats used on
// the interactive surface. Colors are dropped when stdout is not a terminal
// or NO_COLOR is set.
package ansi

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
)

const (
	reset   = "\033[0m"
	warning = "\033[1;33m"
	info    = "\033[1;34m"
	success = "\033[1;32m"
	errorC  = "\033[1;31m"
	command = "\033[1;35m"
	prompt  = "\033[1;36m"
)

var enabled = detect()

func detect() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}

// SetEnabled overrides color detection, mainly for tests.
func SetEnabled(on bool) { enabled = on }

func wrap(code, text string) string {
	if !enabled {
		return text
	}
	return code + text + reset
}

// Error renders "Error: <text>" in red.
func Error(text string) string { return wrap(errorC, "Error: "+text) }

// Warning renders "Warning: <text>" in yellow.
func Warning(text string) string { return wrap(warning, "Warning: "+text) }

// Info renders informational text in blue.
func Info(text string) string { return wrap(info, text) }

// Success renders text in green.
func Success(text string) string { return wrap(success, text) }

// Command renders a literal command string in magenta.
func Command(text string) string { return wrap(command, text) }

// Prompt renders an input prompt marker in cyan.
func Prompt(text string) string { return wrap(prompt, text) }

// Errorf is Error with formatting.
func Errorf(format string, args ...any) string {
	return Error(fmt.Sprintf(format, args...))
}
