package diag

import (
	"aster/internal/source"
)

type Note struct {
	Span source.Span
	Msg  string
}

type Diagnostic struct {
	Severity Severity
	Code     Code
	Message  string
	Primary  source.Span
	Help     string
	Data     map[string]any
	Notes    []Note
}

func New(sev Severity, code Code, primary source.Span, msg string) Diagnostic {
	return Diagnostic{
		Severity: sev,
		Code:     code,
		Primary:  primary,
		Message:  msg,
	}
}

func NewError(code Code, primary source.Span, msg string) Diagnostic {
	return New(SevError, code, primary, msg)
}

func (d Diagnostic) WithNote(sp source.Span, msg string) Diagnostic {
	d.Notes = append(d.Notes, Note{Span: sp, Msg: msg})
	return d
}

// WithData returns a copy of d with key set in its data map.
func (d Diagnostic) WithData(key string, value any) Diagnostic {
	data := make(map[string]any, len(d.Data)+1)
	for k, v := range d.Data {
		data[k] = v
	}
	data[key] = value
	d.Data = data
	return d
}
