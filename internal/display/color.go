// Package display renders countdowns and schedules for the terminal.
//
// Colors are raw ANSI escapes. They are off when NO_COLOR is set
// (https://no-color.org/) or stdout is not a terminal, and forced on by
// FORCE_COLOR.
package display

import (
	"fmt"
	"os"
)

const (
	reset  = "\033[0m"
	bold   = "\033[1m"
	dim    = "\033[2m"
	red    = "\033[31m"
	green  = "\033[32m"
	yellow = "\033[33m"
	cyan   = "\033[36m"
	gray   = "\033[90m"
)

var enabled = detect()

func detect() bool {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	if _, ok := os.LookupEnv("FORCE_COLOR"); ok {
		return true
	}
	return IsTerminal(os.Stdout)
}

// IsTerminal reports whether f is a character device.
func IsTerminal(f *os.File) bool {
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

// SetEnabled overrides detection, e.g. for --json or tests.
func SetEnabled(b bool) { enabled = b }

// Enabled reports whether colors are on.
func Enabled() bool { return enabled }

func paint(code, text string) string {
	if !enabled {
		return text
	}
	return code + text + reset
}

func Bold(text string) string   { return paint(bold, text) }
func Dim(text string) string    { return paint(dim, text) }
func Red(text string) string    { return paint(red, text) }
func Green(text string) string  { return paint(green, text) }
func Yellow(text string) string { return paint(yellow, text) }
func Cyan(text string) string   { return paint(cyan, text) }
func Gray(text string) string   { return paint(gray, text) }

// Accent marks the next prayer: bold cyan.
func Accent(text string) string { return paint(bold+cyan, text) }

// Boldf formats then bolds.
func Boldf(format string, a ...any) string {
	return Bold(fmt.Sprintf(format, a...))
}
