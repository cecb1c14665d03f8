package symbols

import (
	"errors"
	"fmt"

	"fortio.org/safecast"

	"aster/internal/source"
)

var (
	// ErrDuplicateSymbol is wrapped by DuplicateError.
	ErrDuplicateSymbol = errors.New("duplicate symbol")
	// ErrScopeMismatch is the panic payload for unpaired EnterScope/ExitScope.
	ErrScopeMismatch = errors.New("scope mismatch")
)

// DuplicateError reports a name already bound in the current scope.
type DuplicateError struct {
	Name     string
	Previous SymbolID
	Span     source.Span // span of the previous declaration
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("%s: %q already defined in this scope", ErrDuplicateSymbol, e.Name)
}

func (e *DuplicateError) Unwrap() error { return ErrDuplicateSymbol }

// Hints provide optional capacity suggestions for the symbol table arenas.
type Hints struct{ Scopes, Symbols uint }

// Table is a stack of lexical scopes backed by arenas. Lookups walk from the
// innermost scope outwards, so inner bindings shadow outer ones.
type Table struct {
	Scopes  *Scopes
	Symbols *Symbols
	Strings *source.Interner
	root    ScopeID
	stack   []ScopeID
}

// NewTable builds a fresh table whose stack holds a module root scope.
// If strings is nil, a fresh interner is allocated.
func NewTable(h Hints, strings *source.Interner) *Table {
	scopeCap, err := safecast.Conv[uint32](h.Scopes)
	if err != nil {
		panic(fmt.Errorf("scope capacity overflow: %w", err))
	}
	symCap, err := safecast.Conv[uint32](h.Symbols)
	if err != nil {
		panic(fmt.Errorf("symbol capacity overflow: %w", err))
	}
	if strings == nil {
		strings = source.NewInterner()
	}
	t := &Table{
		Scopes:  NewScopes(scopeCap),
		Symbols: NewSymbols(symCap),
		Strings: strings,
		stack:   make([]ScopeID, 0, 8),
	}
	t.root = t.Scopes.New(ScopeModule, NoScopeID, 0, source.Span{})
	t.stack = append(t.stack, t.root)
	return t
}

// Root returns the module scope.
func (t *Table) Root() ScopeID { return t.root }

// CurrentScope returns the scope at the top of the stack.
func (t *Table) CurrentScope() ScopeID {
	if len(t.stack) == 0 {
		return NoScopeID
	}
	return t.stack[len(t.stack)-1]
}

// Depth is the nesting level of the current scope; the module scope is 0.
func (t *Table) Depth() int { return len(t.stack) - 1 }

// EnterScope creates a child of the current scope and makes it current.
func (t *Table) EnterScope(kind ScopeKind, span source.Span) ScopeID {
	scope := t.Scopes.New(kind, t.CurrentScope(), len(t.stack), span)
	t.stack = append(t.stack, scope)
	return scope
}

// ExitScope pops expected. Popping anything other than the innermost scope,
// or popping the module scope, is a programming error and panics.
func (t *Table) ExitScope(expected ScopeID) {
	if len(t.stack) <= 1 {
		panic(fmt.Errorf("%w: exit of scope %d with no open scope", ErrScopeMismatch, expected))
	}
	top := t.stack[len(t.stack)-1]
	if top != expected {
		panic(fmt.Errorf("%w: expected to exit %d, innermost is %d", ErrScopeMismatch, expected, top))
	}
	t.stack = t.stack[:len(t.stack)-1]
}

// WithScope runs fn inside a fresh scope, keeping EnterScope/ExitScope paired.
func (t *Table) WithScope(kind ScopeKind, span source.Span, fn func(ScopeID)) {
	scope := t.EnterScope(kind, span)
	defer t.ExitScope(scope)
	fn(scope)
}

// Define binds name in the current scope. A name already bound in the same
// scope yields *DuplicateError; outer bindings are shadowed silently.
func (t *Table) Define(name string, sym Symbol) (SymbolID, error) {
	scopeID := t.CurrentScope()
	scope := t.Scopes.Get(scopeID)
	if scope == nil {
		return NoSymbolID, fmt.Errorf("%w: no open scope", ErrScopeMismatch)
	}
	nameID := t.Strings.Intern(name)
	if prev, exists := scope.NameIndex[nameID]; exists {
		dup := &DuplicateError{Name: name, Previous: prev}
		if p := t.Symbols.Get(prev); p != nil {
			dup.Span = p.Span
		}
		return NoSymbolID, dup
	}
	sym.Name = nameID
	sym.Scope = scopeID
	sym.Depth = scope.Depth
	id := t.Symbols.New(&sym)
	scope.Symbols = append(scope.Symbols, id)
	scope.NameIndex[nameID] = id
	return id, nil
}

// LookupID returns the nearest enclosing binding of name.
func (t *Table) LookupID(name string) (SymbolID, bool) {
	nameID, ok := t.Strings.Find(name)
	if !ok {
		return NoSymbolID, false
	}
	for i := len(t.stack) - 1; i >= 0; i-- {
		scope := t.Scopes.Get(t.stack[i])
		if scope == nil {
			continue
		}
		if id, found := scope.NameIndex[nameID]; found {
			return id, true
		}
	}
	return NoSymbolID, false
}

// Lookup returns the nearest enclosing binding of name.
func (t *Table) Lookup(name string) (*Symbol, bool) {
	id, ok := t.LookupID(name)
	if !ok {
		return nil, false
	}
	return t.Symbols.Get(id), true
}

// LookupLocal only consults the current scope.
func (t *Table) LookupLocal(name string) (*Symbol, bool) {
	nameID, ok := t.Strings.Find(name)
	if !ok {
		return nil, false
	}
	scope := t.Scopes.Get(t.CurrentScope())
	if scope == nil {
		return nil, false
	}
	id, found := scope.NameIndex[nameID]
	if !found {
		return nil, false
	}
	return t.Symbols.Get(id), true
}

// Get returns the symbol for id, nil when invalid.
func (t *Table) Get(id SymbolID) *Symbol { return t.Symbols.Get(id) }

// Name returns the interned name of sym.
func (t *Table) Name(sym *Symbol) string {
	if sym == nil {
		return ""
	}
	s, _ := t.Strings.Lookup(sym.Name)
	return s
}
