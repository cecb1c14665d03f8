package diagfmt

import (
	"encoding/json"
	"fmt"
	"io"

	"aster/internal/diag"
	"aster/internal/source"
)

// SpanJSON представляет местоположение в файле для JSON
type SpanJSON struct {
	File      string `json:"file"`
	StartLine uint32 `json:"startLine"`
	StartCol  uint32 `json:"startCol"`
	EndLine   uint32 `json:"endLine"`
	EndCol    uint32 `json:"endCol"`
}

// NoteJSON представляет дополнительную заметку для JSON
type NoteJSON struct {
	Message string    `json:"message"`
	Span    *SpanJSON `json:"span,omitempty"`
}

// DiagnosticJSON представляет диагностику в JSON формате
type DiagnosticJSON struct {
	Severity string         `json:"severity"`
	Code     string         `json:"code"` // stable ID, e.g. SEM1002
	Name     string         `json:"name"` // readable name, e.g. UndefinedSymbol
	Message  string         `json:"message"`
	Span     *SpanJSON      `json:"span,omitempty"`
	Help     string         `json:"help,omitempty"`
	Data     map[string]any `json:"data,omitempty"`
	Notes    []NoteJSON     `json:"notes,omitempty"`
}

// Report is the document printed for one checked file.
type Report struct {
	Source      string           `json:"source"`
	Diagnostics []DiagnosticJSON `json:"diagnostics"`
	Summary     diag.Summary     `json:"summary"`
}

func makeSpan(span source.Span, opts JSONOpts) *SpanJSON {
	if span.IsZero() {
		return nil
	}
	return &SpanJSON{
		File:      formatPath(span.File, opts.PathMode, opts.BaseDir),
		StartLine: span.Start.Line,
		StartCol:  span.Start.Col,
		EndLine:   span.End.Line,
		EndCol:    span.End.Col,
	}
}

// BuildReport формирует структуру JSON-вывода без сериализации. The summary
// counts bag as given, so filtering must happen before the call.
func BuildReport(src string, bag *diag.Bag, opts JSONOpts) Report {
	items := bag.Items()
	n := len(items)
	if opts.Max > 0 && opts.Max < n {
		n = opts.Max
	}
	out := Report{
		Source:      src,
		Diagnostics: make([]DiagnosticJSON, 0, n),
		Summary:     bag.Summary(),
	}
	for _, d := range items[:n] {
		dj := DiagnosticJSON{
			Severity: d.Severity.Label(),
			Code:     d.Code.ID(),
			Name:     d.Code.Name(),
			Message:  d.Message,
			Span:     makeSpan(d.Primary, opts),
			Help:     d.Help,
			Data:     d.Data,
		}
		if opts.IncludeNotes && len(d.Notes) > 0 {
			dj.Notes = make([]NoteJSON, len(d.Notes))
			for j, note := range d.Notes {
				dj.Notes[j] = NoteJSON{Message: note.Msg, Span: makeSpan(note.Span, opts)}
			}
		}
		out.Diagnostics = append(out.Diagnostics, dj)
	}
	return out
}

// JSON writes r as one JSON document followed by a newline. Without
// opts.Indent the document fits on one line, which makes a sequence of calls
// valid NDJSON.
func JSON(w io.Writer, r Report, opts JSONOpts) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if opts.Indent {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("encode report for %s: %w", r.Source, err)
	}
	return nil
}
