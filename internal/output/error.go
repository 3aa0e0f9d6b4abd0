package output

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	ethtypes "github.com/mrz1836/ethtx/internal/chain/eth/types"
	txerr "github.com/mrz1836/ethtx/pkg/errors"
)

// ErrorOutput is the JSON shape of a failed command.
type ErrorOutput struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error details.
type ErrorDetail struct {
	Code       string            `json:"code"`
	Message    string            `json:"message"`
	Details    map[string]string `json:"details,omitempty"`
	Suggestion string            `json:"suggestion,omitempty"`
	Attempts   []AttemptDetail   `json:"attempts,omitempty"`
	ExitCode   int               `json:"exit_code"`
}

// AttemptDetail reports why one envelope variant rejected the input.
type AttemptDetail struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

// NewErrorDetail flattens err for display.
func NewErrorDetail(err error) ErrorDetail {
	detail := ErrorDetail{
		Code:     txerr.Code(err),
		Message:  err.Error(),
		ExitCode: txerr.ExitCode(err),
	}

	var te *txerr.TxError
	if errors.As(err, &te) {
		detail.Message = te.Message
		detail.Details = te.Details
		detail.Suggestion = te.Suggestion
	}

	var de *ethtypes.DecodeError
	if errors.As(err, &de) {
		for _, a := range de.Attempts {
			detail.Attempts = append(detail.Attempts, AttemptDetail{Type: a.Type.String(), Error: a.Err.Error()})
		}
	}
	return detail
}

// FormatError writes err in format. Nil errors produce no output.
func FormatError(w io.Writer, err error, format Format) error {
	if err == nil {
		return nil
	}

	detail := NewErrorDetail(err)
	if format == FormatJSON {
		return writeJSON(w, ErrorOutput{Error: detail})
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Error: %s\n", detail.Message)
	if len(detail.Details) > 0 {
		sb.WriteString("\nDetails:\n")
		for _, k := range sortedKeys(detail.Details) {
			fmt.Fprintf(&sb, "  %s: %s\n", k, detail.Details[k])
		}
	}
	if len(detail.Attempts) > 0 {
		sb.WriteString("\nAttempts:\n")
		for _, a := range detail.Attempts {
			fmt.Fprintf(&sb, "  %s: %s\n", a.Type, a.Error)
		}
	}
	if detail.Suggestion != "" {
		fmt.Fprintf(&sb, "\nSuggestion: %s\n", detail.Suggestion)
	}

	_, writeErr := io.WriteString(w, sb.String())
	return writeErr
}

// FormatSuccess writes a one-line success message.
func FormatSuccess(w io.Writer, message string, format Format) error {
	if format == FormatJSON {
		return writeJSON(w, map[string]string{"status": "success", "message": message})
	}
	_, err := fmt.Fprintln(w, message)
	return err
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
