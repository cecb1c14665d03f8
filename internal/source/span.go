package source

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Position is a human-readable location inside a source file.
type Position struct {
	Line uint32 // 1-based
	Col  uint32 // 1-based
}

// IsZero reports whether the position was never set.
func (p Position) IsZero() bool {
	return p.Line == 0 && p.Col == 0
}

// Less orders positions by line, then column.
func (p Position) Less(other Position) bool {
	if p.Line != other.Line {
		return p.Line < other.Line
	}
	return p.Col < other.Col
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Col)
}

// Span points at a region of a source file. The zero Span means "no location";
// diagnostics carrying it are rendered without a span.
type Span struct {
	File  string
	Start Position
	End   Position
}

// IsZero reports whether the span carries no location.
func (s Span) IsZero() bool {
	return s.File == "" && s.Start.IsZero() && s.End.IsZero()
}

func (s Span) String() string {
	if s.IsZero() {
		return "<unknown>"
	}
	file := s.File
	if file == "" {
		file = "<input>"
	}
	return fmt.Sprintf("%s:%s-%s", file, s.Start, s.End)
}

// Cover returns the smallest span containing both s and other.
// Spans from different files are not merged.
func (s Span) Cover(other Span) Span {
	switch {
	case other.IsZero():
		return s
	case s.IsZero():
		return other
	case s.File != other.File:
		return s
	}
	if other.Start.Less(s.Start) {
		s.Start = other.Start
	}
	if s.End.Less(other.End) {
		s.End = other.End
	}
	return s
}

// Or returns s unless it is zero, in which case fallback is returned.
func (s Span) Or(fallback Span) Span {
	if s.IsZero() {
		return fallback
	}
	return s
}

// RelativePath renders path relative to base when possible.
func RelativePath(path, base string) string {
	if path == "" || base == "" || !filepath.IsAbs(path) {
		return path
	}
	rel, err := filepath.Rel(base, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return filepath.ToSlash(rel)
}
