// Package capability holds the closed vocabulary of external privileges and
// the allow/deny manifest that gates them.
//
// The policy is default-deny: a capability is usable only when the manifest
// lists it under allow and does not list it under deny. Deny always wins.
// A nil *Manifest denies everything.
package capability

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
)

// Capability is one named external privilege.
type Capability uint8

const (
	Invalid Capability = iota
	Http
	Sql
	Time
	Files
	Secrets
	AiModel
	Cpu
	capCount
)

// ErrUnknownCapability is returned when a label is not part of the vocabulary.
var ErrUnknownCapability = errors.New("unknown capability")

var capNames = [...]string{
	Invalid: "Invalid",
	Http:    "Http",
	Sql:     "Sql",
	Time:    "Time",
	Files:   "Files",
	Secrets: "Secrets",
	AiModel: "AiModel",
	Cpu:     "Cpu",
}

// aliases map folded labels to capabilities; canonical names are added at init.
var aliases = map[string]Capability{
	"network": Http,
	"db":      Sql,
	"clock":   Time,
	"fs":      Files,
	"ai":      AiModel,
}

func init() {
	for c := Http; c < capCount; c++ {
		aliases[fold(capNames[c])] = c
	}
}

func fold(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}

func (c Capability) String() string {
	if int(c) < len(capNames) {
		return capNames[c]
	}
	return fmt.Sprintf("Capability(%d)", uint8(c))
}

// Valid reports whether c is part of the vocabulary.
func (c Capability) Valid() bool { return c > Invalid && c < capCount }

// Parse resolves a label case-insensitively.
func Parse(label string) (Capability, error) {
	if c, ok := aliases[fold(label)]; ok {
		return c, nil
	}
	return Invalid, fmt.Errorf("%w: %q", ErrUnknownCapability, label)
}

// ParseList parses every label, failing on the first unknown one.
func ParseList(labels []string) ([]Capability, error) {
	out := make([]Capability, 0, len(labels))
	for _, l := range labels {
		c, err := Parse(l)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// All lists the vocabulary in declaration order.
func All() []Capability {
	out := make([]Capability, 0, int(capCount)-1)
	for c := Http; c < capCount; c++ {
		out = append(out, c)
	}
	return out
}

// Set is a small immutable bit set over the vocabulary.
type Set uint16

// NewSet builds a set; invalid capabilities are ignored.
func NewSet(caps ...Capability) Set {
	var s Set
	for _, c := range caps {
		if c.Valid() {
			s |= 1 << c
		}
	}
	return s
}

func (s Set) Has(c Capability) bool { return c.Valid() && s&(1<<c) != 0 }
func (s Set) Empty() bool           { return s == 0 }

// Members returns the capabilities in declaration order.
func (s Set) Members() []Capability {
	var out []Capability
	for c := Http; c < capCount; c++ {
		if s.Has(c) {
			out = append(out, c)
		}
	}
	return out
}

// Labels returns the member names in declaration order.
func (s Set) Labels() []string {
	members := s.Members()
	out := make([]string, len(members))
	for i, c := range members {
		out[i] = c.String()
	}
	return out
}

func (s Set) String() string {
	return "{" + strings.Join(s.Labels(), ", ") + "}"
}
