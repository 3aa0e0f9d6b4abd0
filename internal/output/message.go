package output

import (
	"fmt"
	"io"
)

// Status messages go to stderr so stdout stays machine-readable.

// Info writes an informational message.
func Info(w io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintf(w, "info: "+format+"\n", args...)
}

// Warn writes a warning message.
func Warn(w io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintf(w, "warning: "+format+"\n", args...)
}
