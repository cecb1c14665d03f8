package symbols

import (
	"errors"
	"testing"

	"aster/internal/source"
	"aster/internal/types"
)

func TestDefineDuplicateInSameScope(t *testing.T) {
	table := NewTable(Hints{}, nil)
	first := source.Span{File: "m", Start: source.Position{Line: 1, Col: 1}}
	if _, err := table.Define("x", Symbol{Kind: SymbolLet, Span: first}); err != nil {
		t.Fatalf("define: %v", err)
	}
	_, err := table.Define("x", Symbol{Kind: SymbolLet})
	if !errors.Is(err, ErrDuplicateSymbol) {
		t.Fatalf("expected ErrDuplicateSymbol, got %v", err)
	}
	var dup *DuplicateError
	if !errors.As(err, &dup) || dup.Span != first || dup.Name != "x" {
		t.Fatalf("duplicate error lost previous declaration: %+v", dup)
	}
}

func TestShadowingAcrossScopes(t *testing.T) {
	table := NewTable(Hints{}, nil)
	in := types.NewInterner(table.Strings)
	b := in.Builtins()

	if _, err := table.Define("x", Symbol{Kind: SymbolLet, Type: b.Int}); err != nil {
		t.Fatalf("outer define: %v", err)
	}
	scope := table.EnterScope(ScopeBlock, source.Span{})
	if sym, ok := table.Lookup("x"); !ok || sym.Type != b.Int {
		t.Fatalf("outer binding must be visible from inner scope")
	}
	if _, ok := table.LookupLocal("x"); ok {
		t.Fatalf("outer binding must not be local")
	}
	if _, err := table.Define("x", Symbol{Kind: SymbolLet, Type: b.Text}); err != nil {
		t.Fatalf("shadowing must be allowed: %v", err)
	}
	if sym, _ := table.Lookup("x"); sym.Type != b.Text || sym.Depth != 1 {
		t.Fatalf("expected inner binding, got %+v", sym)
	}
	if _, err := table.Define("y", Symbol{Kind: SymbolLet}); err != nil {
		t.Fatalf("define y: %v", err)
	}
	table.ExitScope(scope)

	if sym, _ := table.Lookup("x"); sym.Type != b.Int {
		t.Fatalf("outer binding should be restored after exit")
	}
	if _, ok := table.Lookup("y"); ok {
		t.Fatalf("inner binding leaked out of its scope")
	}
	if err := table.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestLookupUnknownDoesNotIntern(t *testing.T) {
	table := NewTable(Hints{}, nil)
	before := table.Strings.Len()
	if _, ok := table.Lookup("missing"); ok {
		t.Fatalf("unexpected binding")
	}
	if table.Strings.Len() != before {
		t.Fatalf("lookup must not intern unknown names")
	}
}

func TestDepthTracksNesting(t *testing.T) {
	table := NewTable(Hints{}, nil)
	if table.Depth() != 0 {
		t.Fatalf("root depth = %d", table.Depth())
	}
	table.WithScope(ScopeFunction, source.Span{}, func(ScopeID) {
		table.WithScope(ScopeBlock, source.Span{}, func(ScopeID) {
			if table.Depth() != 2 {
				t.Fatalf("nested depth = %d", table.Depth())
			}
		})
	})
	if table.Depth() != 0 || table.CurrentScope() != table.Root() {
		t.Fatalf("WithScope left the stack unbalanced")
	}
	if err := table.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func expectScopePanic(t *testing.T, fn func()) {
	t.Helper()
	defer func() {
		r := recover()
		err, ok := r.(error)
		if !ok || !errors.Is(err, ErrScopeMismatch) {
			t.Fatalf("expected ErrScopeMismatch panic, got %v", r)
		}
	}()
	fn()
}

func TestExitScopeMismatchPanics(t *testing.T) {
	table := NewTable(Hints{}, nil)
	outer := table.EnterScope(ScopeFunction, source.Span{})
	table.EnterScope(ScopeBlock, source.Span{})
	expectScopePanic(t, func() { table.ExitScope(outer) })
}

func TestExitRootPanics(t *testing.T) {
	table := NewTable(Hints{}, nil)
	expectScopePanic(t, func() { table.ExitScope(table.Root()) })
}
