// Package effects implements the side-effect lattice Pure < Cpu < Io < Async.
//
// The checker only ever folds effects with Join, so a running effect can
// escalate but never drop back.
package effects

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
)

// Effect is one level of the lattice. The zero value is Pure.
type Effect uint8

const (
	Pure Effect = iota
	Cpu
	Io
	Async
)

// ErrUnknownEffect is returned for labels outside the lattice.
var ErrUnknownEffect = errors.New("unknown effect")

func (e Effect) String() string {
	switch e {
	case Pure:
		return "Pure"
	case Cpu:
		return "Cpu"
	case Io:
		return "Io"
	case Async:
		return "Async"
	default:
		return fmt.Sprintf("Effect(%d)", uint8(e))
	}
}

// Valid reports whether e is a lattice member.
func (e Effect) Valid() bool { return e <= Async }

// IsSink reports whether values flowing into an operation of this effect
// leave the program (Io and Async).
func (e Effect) IsSink() bool { return e >= Io && e.Valid() }

// Join returns the least upper bound of a and b.
func Join(a, b Effect) Effect {
	if a > b {
		return a
	}
	return b
}

// Less reports a < b in the lattice.
func Less(a, b Effect) bool { return a < b }

// Parse resolves a label case-insensitively.
func Parse(label string) (Effect, error) {
	switch cases.Fold().String(strings.TrimSpace(label)) {
	case "pure":
		return Pure, nil
	case "cpu":
		return Cpu, nil
	case "io":
		return Io, nil
	case "async":
		return Async, nil
	}
	return Pure, fmt.Errorf("%w: %q", ErrUnknownEffect, label)
}

// FromLabels joins every label. An empty list is Pure.
func FromLabels(labels []string) (Effect, error) {
	out := Pure
	for _, l := range labels {
		e, err := Parse(l)
		if err != nil {
			return Pure, err
		}
		out = Join(out, e)
	}
	return out, nil
}
