// Package pii tracks personal data sensitivity as a taint lattice.
//
// A Meta carries the highest Level seen and the union of categories; nil
// means clean. Merging never lowers a level.
package pii

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/cases"
)

// Level is the sensitivity level of a value. The zero value means "not sensitive".
type Level uint8

const (
	LevelNone Level = iota
	L1
	L2
	L3
)

// ErrUnknownLevel is returned by ParseLevel for labels outside L1..L3.
var ErrUnknownLevel = errors.New("unknown pii level")

func (l Level) String() string {
	switch l {
	case L1:
		return "L1"
	case L2:
		return "L2"
	case L3:
		return "L3"
	default:
		return "none"
	}
}

// ParseLevel accepts "L1", "l2", "3" and the like.
func ParseLevel(s string) (Level, error) {
	switch cases.Fold().String(strings.TrimSpace(s)) {
	case "l1", "1":
		return L1, nil
	case "l2", "2":
		return L2, nil
	case "l3", "3":
		return L3, nil
	}
	return LevelNone, fmt.Errorf("%w: %q", ErrUnknownLevel, s)
}

// Max is the lattice join on levels.
func Max(a, b Level) Level {
	if a > b {
		return a
	}
	return b
}

// AtLeast reports whether l reaches threshold. LevelNone never does.
func (l Level) AtLeast(threshold Level) bool {
	return l != LevelNone && l >= threshold
}

// Meta is the taint attached to a value: a level plus a set of categories.
// A nil *Meta means "untainted" and is the identity of Merge.
// Meta values are immutable once built.
type Meta struct {
	level      Level
	categories []string // sorted, unique
}

// New builds a Meta. Empty and duplicate categories are dropped.
func New(level Level, categories ...string) *Meta {
	return &Meta{level: level, categories: normalize(categories)}
}

func normalize(in []string) []string {
	out := make([]string, 0, len(in))
	for _, c := range in {
		c = strings.TrimSpace(c)
		if c != "" {
			out = append(out, c)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// Level returns the sensitivity level; LevelNone for nil.
func (m *Meta) Level() Level {
	if m == nil {
		return LevelNone
	}
	return m.level
}

// CategoryList returns a sorted copy of the categories.
func (m *Meta) CategoryList() []string {
	if m == nil {
		return nil
	}
	return slices.Clone(m.categories)
}

func (m *Meta) HasCategory(c string) bool {
	if m == nil {
		return false
	}
	_, found := slices.BinarySearch(m.categories, c)
	return found
}

// Equal compares level and category set.
func (m *Meta) Equal(other *Meta) bool {
	if m == nil || other == nil {
		return m == nil && other == nil
	}
	return m.level == other.level && slices.Equal(m.categories, other.categories)
}

func (m *Meta) String() string {
	if m == nil {
		return "none"
	}
	return fmt.Sprintf("%s{%s}", m.level, strings.Join(m.categories, ","))
}

// Merge joins two metas: max level, union of categories.
// A nil operand returns the other one unchanged.
func Merge(a, b *Meta) *Meta {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	case a.Equal(b):
		return a
	}
	cats := make([]string, 0, len(a.categories)+len(b.categories))
	cats = append(cats, a.categories...)
	cats = append(cats, b.categories...)
	slices.Sort(cats)
	return &Meta{level: Max(a.level, b.level), categories: slices.Compact(cats)}
}

// MergeAll folds Merge over metas, left to right.
func MergeAll(metas ...*Meta) *Meta {
	var out *Meta
	for _, m := range metas {
		out = Merge(out, m)
	}
	return out
}
