package cli

import (
	"fmt"
	"io"
)

// out writes formatted text, ignoring write errors like fmt.Printf.
func out(w io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}

// outln writes a line of text.
func outln(w io.Writer, args ...any) {
	_, _ = fmt.Fprintln(w, args...)
}
