package source

import "testing"

func TestSpanCover(t *testing.T) {
	tests := []struct {
		name     string
		a, b     Span
		expected Span
	}{
		{
			name:     "b extends both ends",
			a:        Span{File: "m.aster", Start: Position{2, 4}, End: Position{2, 9}},
			b:        Span{File: "m.aster", Start: Position{1, 1}, End: Position{3, 2}},
			expected: Span{File: "m.aster", Start: Position{1, 1}, End: Position{3, 2}},
		},
		{
			name:     "b inside a",
			a:        Span{File: "m.aster", Start: Position{1, 1}, End: Position{5, 1}},
			b:        Span{File: "m.aster", Start: Position{2, 1}, End: Position{3, 1}},
			expected: Span{File: "m.aster", Start: Position{1, 1}, End: Position{5, 1}},
		},
		{
			name:     "different files keep receiver",
			a:        Span{File: "a.aster", Start: Position{1, 1}, End: Position{1, 2}},
			b:        Span{File: "b.aster", Start: Position{1, 1}, End: Position{9, 9}},
			expected: Span{File: "a.aster", Start: Position{1, 1}, End: Position{1, 2}},
		},
		{
			name:     "zero receiver takes other",
			a:        Span{},
			b:        Span{File: "b.aster", Start: Position{1, 1}, End: Position{1, 4}},
			expected: Span{File: "b.aster", Start: Position{1, 1}, End: Position{1, 4}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Cover(tt.b); got != tt.expected {
				t.Fatalf("Cover() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestSpanZero(t *testing.T) {
	var s Span
	if !s.IsZero() {
		t.Fatalf("zero span must report IsZero")
	}
	if s.String() != "<unknown>" {
		t.Fatalf("unexpected string for zero span: %q", s.String())
	}
	withFile := Span{File: "x.aster"}
	if withFile.IsZero() {
		t.Fatalf("span with file is not zero")
	}
	if got := s.Or(withFile); got != withFile {
		t.Fatalf("Or() should fall back, got %v", got)
	}
}

func TestInterner(t *testing.T) {
	in := NewInterner()
	a := in.Intern("alpha")
	b := in.Intern("beta")
	if a == b {
		t.Fatalf("distinct strings got the same id")
	}
	if again := in.Intern("alpha"); again != a {
		t.Fatalf("re-interning changed id: %d vs %d", again, a)
	}
	if s := in.MustLookup(b); s != "beta" {
		t.Fatalf("lookup = %q", s)
	}
	if _, ok := in.Find("gamma"); ok {
		t.Fatalf("Find must not insert")
	}
	if in.Len() != 3 {
		t.Fatalf("expected 3 entries (with empty), got %d", in.Len())
	}
}
