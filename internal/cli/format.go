package cli

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

var (
	// fatih/color disables itself when stderr is not a TTY or NO_COLOR is set
	successColor = color.New(color.FgGreen, color.Bold)
	warningColor = color.New(color.FgYellow, color.Bold)
	headerColor  = color.New(color.FgBlue, color.Bold)
	dimColor     = color.New(color.FgHiBlack)
)

// printStep prints a pipeline step header
func printStep(w io.Writer, format string, args ...any) {
	_, _ = headerColor.Fprintf(w, "▸ %s\n", fmt.Sprintf(format, args...))
}

// printSuccess prints a success message with a checkmark
func printSuccess(w io.Writer, format string, args ...any) {
	_, _ = successColor.Fprintf(w, "✓ %s\n", fmt.Sprintf(format, args...))
}

// printWarning prints a warning message with a warning symbol
func printWarning(w io.Writer, format string, args ...any) {
	_, _ = warningColor.Fprintf(w, "⚠ %s\n", fmt.Sprintf(format, args...))
}

// printDetail prints an indented label-value pair
func printDetail(w io.Writer, label string, value any) {
	_, _ = dimColor.Fprintf(w, "  %s: %v\n", label, value)
}
