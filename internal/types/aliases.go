package types

import (
	"maps"
	"slices"
)

// Resolver maps a type name to its TypeID.
type Resolver interface {
	Resolve(name string) (TypeID, bool)
}

// Aliases is the immutable name -> type table used during one module check.
// It is produced by AliasBuilder.Freeze and never changes afterwards.
type Aliases struct {
	byName map[string]TypeID
}

// Resolve looks a name up.
func (a *Aliases) Resolve(name string) (TypeID, bool) {
	if a == nil {
		return NoTypeID, false
	}
	id, ok := a.byName[name]
	return id, ok
}

func (a *Aliases) Len() int {
	if a == nil {
		return 0
	}
	return len(a.byName)
}

// Names lists every resolvable name, sorted.
func (a *Aliases) Names() []string {
	if a == nil {
		return nil
	}
	return slices.Sorted(maps.Keys(a.byName))
}

// primitiveNames are always resolvable. String, Float and Void are accepted
// spellings of Text, Double and Unit.
func primitiveNames(b Builtins) map[string]TypeID {
	return map[string]TypeID{
		"Int":    b.Int,
		"Long":   b.Long,
		"Double": b.Double,
		"Float":  b.Double,
		"Text":   b.Text,
		"String": b.Text,
		"Bool":   b.Bool,
		"Unit":   b.Unit,
		"Void":   b.Unit,
		"Null":   b.Null,
	}
}

// IsPrimitiveName reports whether name is a builtin type spelling.
func IsPrimitiveName(name string) bool {
	switch name {
	case "Int", "Long", "Double", "Float", "Text", "String", "Bool", "Unit", "Void", "Null":
		return true
	}
	return false
}

// AliasBuilder collects module type names before the table is frozen.
type AliasBuilder struct {
	byName map[string]TypeID
}

// NewAliasBuilder seeds the table with primitive names.
func NewAliasBuilder(in *Interner) *AliasBuilder {
	return &AliasBuilder{byName: primitiveNames(in.Builtins())}
}

// Define adds name. It returns false when name is already present.
func (b *AliasBuilder) Define(name string, id TypeID) bool {
	if _, exists := b.byName[name]; exists {
		return false
	}
	b.byName[name] = id
	return true
}

// Set overwrites an existing entry, used once an alias target is resolved.
func (b *AliasBuilder) Set(name string, id TypeID) {
	b.byName[name] = id
}

// Resolve looks a name up in the table under construction.
func (b *AliasBuilder) Resolve(name string) (TypeID, bool) {
	id, ok := b.byName[name]
	return id, ok
}

// Freeze copies the collected names into an immutable snapshot.
func (b *AliasBuilder) Freeze() *Aliases {
	return &Aliases{byName: maps.Clone(b.byName)}
}
