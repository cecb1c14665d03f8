package pii

import (
	"errors"
	"testing"
)

func samples() []*Meta {
	return []*Meta{
		nil,
		New(L1),
		New(L1, "email"),
		New(L2, "email", "phone"),
		New(L3, "ssn"),
		New(L3, "ssn", "email"),
	}
}

func TestMergeIdentity(t *testing.T) {
	for _, m := range samples() {
		if got := Merge(nil, m); got != m {
			t.Fatalf("Merge(nil, %v) = %v, want same operand", m, got)
		}
		if got := Merge(m, nil); got != m {
			t.Fatalf("Merge(%v, nil) = %v, want same operand", m, got)
		}
	}
}

func TestMergeCommutativeAssociativeIdempotent(t *testing.T) {
	all := samples()
	for _, a := range all {
		if !Merge(a, a).Equal(a) {
			t.Fatalf("Merge(a, a) != a for %v", a)
		}
		for _, b := range all {
			if !Merge(a, b).Equal(Merge(b, a)) {
				t.Fatalf("not commutative: %v, %v", a, b)
			}
			for _, c := range all {
				left := Merge(Merge(a, b), c)
				right := Merge(a, Merge(b, c))
				if !left.Equal(right) {
					t.Fatalf("not associative: %v, %v, %v", a, b, c)
				}
			}
		}
	}
}

func TestMergeNeverLowersLevel(t *testing.T) {
	for _, a := range samples() {
		for _, b := range samples() {
			m := Merge(a, b)
			if m.Level() < a.Level() || m.Level() < b.Level() {
				t.Fatalf("merge lowered level: %v + %v = %v", a, b, m)
			}
		}
	}
}

func TestMergeUnionsCategories(t *testing.T) {
	m := Merge(New(L1, "email"), New(L3, "ssn", "email"))
	if m.Level() != L3 {
		t.Fatalf("level = %v, want L3", m.Level())
	}
	cats := m.CategoryList()
	if len(cats) != 2 || cats[0] != "email" || cats[1] != "ssn" {
		t.Fatalf("categories = %v", cats)
	}
	if !m.HasCategory("ssn") || m.HasCategory("phone") {
		t.Fatalf("HasCategory mismatch for %v", m)
	}
}

func TestNewNormalizesCategories(t *testing.T) {
	if !New(L2, "b", "a", "b", " ").Equal(New(L2, "a", "b")) {
		t.Fatalf("expected duplicate and blank categories to be dropped")
	}
}

func TestParseLevel(t *testing.T) {
	for in, want := range map[string]Level{"L1": L1, "l2": L2, " L3 ": L3, "3": L3} {
		got, err := ParseLevel(in)
		if err != nil || got != want {
			t.Fatalf("ParseLevel(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseLevel("L4"); !errors.Is(err, ErrUnknownLevel) {
		t.Fatalf("expected ErrUnknownLevel, got %v", err)
	}
}

func TestAtLeast(t *testing.T) {
	if LevelNone.AtLeast(LevelNone) {
		t.Fatalf("untainted value must never reach a threshold")
	}
	if !L3.AtLeast(L2) || !L2.AtLeast(L2) || L1.AtLeast(L2) {
		t.Fatalf("AtLeast ordering broken")
	}
}
