// Package ui styles terminal output with ANSI escape sequences.
package ui

import "strings"

// Style is one ANSI SGR sequence
type Style string

const (
	Reset Style = "\033[0m"

	StyleBold Style = "\033[1m"
	StyleDim  Style = "\033[2m"

	Cyan   Style = "\033[36m"
	Green  Style = "\033[32m"
	Yellow Style = "\033[33m"
	White  Style = "\033[97m"
	Red    Style = "\033[31m"
)

// Paint wraps s in the given styles and a trailing reset
func Paint(s string, styles ...Style) string {
	if len(styles) == 0 {
		return s
	}
	var b strings.Builder
	for _, st := range styles {
		b.WriteString(string(st))
	}
	b.WriteString(s)
	b.WriteString(string(Reset))
	return b.String()
}

func Heading(s string) string { return Paint(s, StyleBold, White) }
func Command(s string) string { return Paint(s, Cyan) }
func Flag(s string) string    { return Paint(s, Green) }
func Muted(s string) string   { return Paint(s, StyleDim) }
func Bold(s string) string    { return Paint(s, StyleBold) }
func Success(s string) string { return Paint(s, Green) }
func Warn(s string) string    { return Paint(s, Yellow) }
func Info(s string) string    { return Paint(s, StyleDim, Yellow) }
func Error(s string) string   { return Paint(s, Red) }
