package diagfmt

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"aster/internal/diag"
	"aster/internal/source"
)

type palette struct {
	err, warn, info, code, loc, note, help, bold *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		err:  color.New(color.FgRed, color.Bold),
		warn: color.New(color.FgYellow, color.Bold),
		info: color.New(color.FgCyan, color.Bold),
		code: color.New(color.FgMagenta),
		loc:  color.New(color.Bold),
		note: color.New(color.FgBlue),
		help: color.New(color.FgGreen),
		bold: color.New(color.Bold),
	}
	for _, c := range []*color.Color{p.err, p.warn, p.info, p.code, p.loc, p.note, p.help, p.bold} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p palette) severity(s diag.Severity) *color.Color {
	switch s {
	case diag.SevError:
		return p.err
	case diag.SevWarning:
		return p.warn
	}
	return p.info
}

// Pretty форматирует диагностики в человекочитаемый вид.
// Для каждой диагностики печатает
//
//	<path>:<line>:<col>  <SEV> <CODE> <Name>: <Message>
//
// затем заметки и подсказку, и в конце итоговую строку.
// Колонка с местоположением выравнивается по самой широкой.
func Pretty(w io.Writer, src string, bag *diag.Bag, opts PrettyOpts) error {
	p := newPalette(opts.Color)
	items := bag.Items()

	locs := make([]string, len(items))
	width := 0
	for i, d := range items {
		locs[i] = location(d.Primary, src, opts)
		width = max(width, runewidth.StringWidth(locs[i]))
	}

	var b strings.Builder
	for i, d := range items {
		loc := runewidth.FillRight(locs[i], width)
		fmt.Fprintf(&b, "%s  %s %s %s: %s\n",
			p.loc.Sprint(loc),
			p.severity(d.Severity).Sprint(d.Severity.String()),
			p.code.Sprint(d.Code.ID()),
			d.Code.Name(),
			truncate(d.Message, opts.Width),
		)
		indent := strings.Repeat(" ", width+2)
		if opts.ShowNotes {
			for _, n := range d.Notes {
				where := ""
				if !n.Span.IsZero() {
					where = location(n.Span, src, opts) + ": "
				}
				fmt.Fprintf(&b, "%s%s %s%s\n", indent, p.note.Sprint("note:"), where, n.Msg)
			}
		}
		if opts.ShowHelp && d.Help != "" {
			fmt.Fprintf(&b, "%s%s %s\n", indent, p.help.Sprint("help:"), d.Help)
		}
	}
	b.WriteString(summaryLine(p, src, bag.Summary()))
	b.WriteByte('\n')

	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("write diagnostics for %s: %w", src, err)
	}
	return nil
}

func location(span source.Span, src string, opts PrettyOpts) string {
	if span.IsZero() {
		return formatPath(src, opts.PathMode, opts.BaseDir)
	}
	file := span.File
	if file == "" {
		file = src
	}
	return fmt.Sprintf("%s:%d:%d", formatPath(file, opts.PathMode, opts.BaseDir), span.Start.Line, span.Start.Col)
}

func truncate(msg string, width int) string {
	if width <= 0 || runewidth.StringWidth(msg) <= width {
		return msg
	}
	if width <= 3 {
		return runewidth.Truncate(msg, width, "")
	}
	return runewidth.Truncate(msg, width, "...")
}

func summaryLine(p palette, src string, s diag.Summary) string {
	if s.Total == 0 {
		return p.bold.Sprintf("%s: no problems", src)
	}
	return fmt.Sprintf("%s: %s, %s, %s",
		p.bold.Sprint(src),
		p.err.Sprint(count(s.Error, "error")),
		p.warn.Sprint(count(s.Warning, "warning")),
		p.info.Sprint(count(s.Info, "info")),
	)
}

func count(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
