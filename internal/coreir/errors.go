package coreir

import (
	"errors"
	"fmt"
)

// ErrContract is wrapped by every ContractError.
var ErrContract = errors.New("core ir contract violation")

// ContractError reports a structurally malformed IR document. Path locates the
// offending node, e.g. "decls[1].body.statements[0].expr".
type ContractError struct {
	Source string
	Path   string
	Msg    string
}

func (e *ContractError) Error() string {
	loc := e.Path
	if loc == "" {
		loc = "<root>"
	}
	if e.Source != "" {
		return fmt.Sprintf("%s: %s: %s: %s", e.Source, ErrContract, loc, e.Msg)
	}
	return fmt.Sprintf("%s: %s: %s", ErrContract, loc, e.Msg)
}

func (e *ContractError) Unwrap() error { return ErrContract }
