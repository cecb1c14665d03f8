package diag

import (
	"fmt"
	"strings"
)

// FormatShort renders diagnostics one per line as
//
//	<severity> <ID> <file>:<line>:<col> <message>
//
// keeping emission order. Span-less diagnostics use "-" as location.
// Intended for golden tests and the CLI short format.
func FormatShort(diags []Diagnostic, includeNotes bool) string {
	if len(diags) == 0 {
		return ""
	}
	var b strings.Builder
	for i := range diags {
		d := &diags[i]
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%s %s %s %s", d.Severity.Label(), d.Code.ID(), shortLocation(d.Primary.File, d.Primary.Start.Line, d.Primary.Start.Col, d.Primary.IsZero()), sanitizeMessage(d.Message))
		if !includeNotes {
			continue
		}
		for _, note := range d.Notes {
			fmt.Fprintf(&b, "\nnote %s %s %s", d.Code.ID(), shortLocation(note.Span.File, note.Span.Start.Line, note.Span.Start.Col, note.Span.IsZero()), sanitizeMessage(note.Msg))
		}
	}
	return b.String()
}

func shortLocation(file string, line, col uint32, zero bool) string {
	if zero {
		return "-"
	}
	if file == "" {
		file = "<input>"
	}
	return fmt.Sprintf("%s:%d:%d", file, line, col)
}

func sanitizeMessage(msg string) string {
	msg = strings.ReplaceAll(msg, "\r\n", "\n")
	msg = strings.ReplaceAll(msg, "\r", "\n")
	msg = strings.ReplaceAll(msg, "\n", " ")
	return strings.TrimSpace(msg)
}
