package symbols

import (
	"errors"
	"fmt"
	"slices"
)

// Validate checks the structural invariants of the table: parent and child
// links agree, depths grow by one, every name index entry points back at a
// symbol of that scope, and the open scope stack is a parent chain. All
// problems are joined into one error.
func (t *Table) Validate() error {
	var errs []error
	report := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	for i := 1; i <= t.Scopes.Len(); i++ {
		id := ScopeID(i)
		scope := t.Scopes.Get(id)
		if scope.Kind == ScopeInvalid {
			report("scope %d has invalid kind", id)
		}
		if scope.Parent.IsValid() {
			parent := t.Scopes.Get(scope.Parent)
			switch {
			case parent == nil || scope.Parent == id:
				report("scope %d has invalid parent %d", id, scope.Parent)
			case !slices.Contains(parent.Children, id):
				report("scope %d is not among the children of %d", id, scope.Parent)
			case scope.Depth != parent.Depth+1:
				report("scope %d depth %d under parent depth %d", id, scope.Depth, parent.Depth)
			}
		}
		for _, child := range scope.Children {
			if c := t.Scopes.Get(child); c == nil || c.Parent != id {
				report("scope %d lists child %d that does not point back", id, child)
			}
		}
		if len(scope.NameIndex) != len(scope.Symbols) {
			report("scope %d indexes %d names for %d symbols", id, len(scope.NameIndex), len(scope.Symbols))
		}
		for name, symID := range scope.NameIndex {
			sym := t.Symbols.Get(symID)
			if sym == nil || sym.Scope != id || sym.Name != name {
				report("scope %d name %d maps to foreign symbol %d", id, name, symID)
			}
		}
	}

	for i := 1; i < len(t.stack); i++ {
		if s := t.Scopes.Get(t.stack[i]); s == nil || s.Parent != t.stack[i-1] {
			report("scope stack broken at level %d", i)
		}
	}

	for i := 1; i <= t.Symbols.Len(); i++ {
		id := SymbolID(i)
		sym := t.Symbols.Get(id)
		scope := t.Scopes.Get(sym.Scope)
		if scope == nil {
			report("symbol %d has invalid scope %d", id, sym.Scope)
			continue
		}
		if !slices.Contains(scope.Symbols, id) {
			report("symbol %d is missing from scope %d", id, sym.Scope)
		}
	}

	return errors.Join(errs...)
}
