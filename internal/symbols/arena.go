package symbols

import (
	"fmt"

	"fortio.org/safecast"

	"aster/internal/source"
)

// arena is an append-only slice whose slot 0 is a sentinel, so the zero ID
// never names a live entry.
type arena[T any] struct {
	items []T
	what  string
}

func newArena[T any](what string, capacity uint32) arena[T] {
	return arena[T]{items: make([]T, 1, capacity+1), what: what}
}

func (a *arena[T]) push(v T) uint32 {
	idx, err := safecast.Conv[uint32](len(a.items))
	if err != nil {
		panic(fmt.Errorf("%s arena overflow: %w", a.what, err))
	}
	a.items = append(a.items, v)
	return idx
}

func (a *arena[T]) at(idx uint32) *T {
	if idx == 0 || int(idx) >= len(a.items) {
		return nil
	}
	return &a.items[idx]
}

// size excludes the sentinel.
func (a *arena[T]) size() int { return len(a.items) - 1 }

// Scopes owns every scope of one table; parents keep child backlinks.
type Scopes struct{ arena[Scope] }

// NewScopes creates an arena with an optional capacity hint.
func NewScopes(capacity uint32) *Scopes {
	if capacity == 0 {
		capacity = 32
	}
	return &Scopes{newArena[Scope]("scopes", capacity)}
}

// New allocates a scope under parent and returns its ID.
func (s *Scopes) New(kind ScopeKind, parent ScopeID, depth int, span source.Span) ScopeID {
	id := ScopeID(s.push(Scope{
		Kind:      kind,
		Parent:    parent,
		Depth:     depth,
		Span:      span,
		NameIndex: make(map[source.StringID]SymbolID),
	}))
	if p := s.Get(parent); p != nil {
		p.Children = append(p.Children, id)
	}
	return id
}

// Get returns the scope or nil for an unknown ID.
func (s *Scopes) Get(id ScopeID) *Scope { return s.at(uint32(id)) }

// Len reports the number of allocated scopes.
func (s *Scopes) Len() int { return s.size() }

// Symbols owns every symbol of one table.
type Symbols struct{ arena[Symbol] }

// NewSymbols creates an arena with an optional capacity hint.
func NewSymbols(capacity uint32) *Symbols {
	if capacity == 0 {
		capacity = 64
	}
	return &Symbols{newArena[Symbol]("symbols", capacity)}
}

// New copies sym into the arena.
func (s *Symbols) New(sym *Symbol) SymbolID {
	if sym == nil {
		panic("symbols.New: nil symbol")
	}
	return SymbolID(s.push(*sym))
}

// Get returns the symbol or nil for an unknown ID.
func (s *Symbols) Get(id SymbolID) *Symbol { return s.at(uint32(id)) }

// Len reports the number of declared symbols.
func (s *Symbols) Len() int { return s.size() }
