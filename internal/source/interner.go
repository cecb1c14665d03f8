package source

import (
	"fmt"
	"slices"

	"fortio.org/safecast"
)

// StringID identifies an interned string.
type StringID uint32

// NoStringID is the ID of the empty string.
const NoStringID StringID = 0

// Interner deduplicates identifier strings so that scopes can key on StringID.
type Interner struct {
	byID  []string            // byID[0] = "" для NoStringID
	index map[string]StringID // строка -> ID
}

// NewInterner returns an interner holding only the empty string.
func NewInterner() *Interner {
	return &Interner{
		byID:  []string{""},
		index: map[string]StringID{"": NoStringID},
	}
}

// Intern returns the ID of s, inserting it when unseen.
func (i *Interner) Intern(s string) StringID {
	if id, ok := i.index[s]; ok {
		return id
	}
	n, err := safecast.Conv[uint32](len(i.byID))
	if err != nil {
		panic(fmt.Errorf("interner overflow: %w", err))
	}
	id := StringID(n)
	i.byID = append(i.byID, s)
	i.index[s] = id
	return id
}

// Find returns the ID of s without inserting it.
func (i *Interner) Find(s string) (StringID, bool) {
	id, ok := i.index[s]
	return id, ok
}

// Lookup returns the string for id.
func (i *Interner) Lookup(id StringID) (string, bool) {
	if int(id) >= len(i.byID) {
		return "", false
	}
	return i.byID[id], true
}

// MustLookup panics on an unknown id.
func (i *Interner) MustLookup(id StringID) string {
	s, ok := i.Lookup(id)
	if !ok {
		panic("invalid string ID")
	}
	return s
}

// Len counts interned strings, including the empty one.
func (i *Interner) Len() int {
	return len(i.byID)
}

// Snapshot returns a copy of every interned string, indexed by ID.
func (i *Interner) Snapshot() []string {
	return slices.Clone(i.byID)
}
