package logger

import (
	"fmt"
	"os"
)

// CLI output helpers using fatih/color for cross-platform support

// Success prints a success message with green checkmark
func Success(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	_, _ = SuccessColor.Fprint(os.Stdout, "✓ ")
	fmt.Println(msg)
}

// Error prints an error message with red X
func Error(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	_, _ = ErrorColor.Fprint(os.Stderr, "✗ ")
	fmt.Fprintln(os.Stderr, msg)
}

// Warning prints a warning message with yellow exclamation
func Warning(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	_, _ = WarnColor.Fprint(os.Stdout, "⚠ ")
	fmt.Println(msg)
}

// Info prints an info message with blue arrow
func Info(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	_, _ = InfoColor.Fprint(os.Stdout, "→ ")
	fmt.Println(msg)
}

// Header prints a bold section header
func Header(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	_, _ = HighlightColor.Fprintln(os.Stdout, msg)
}
