package diag

import (
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/cases"
)

type Code uint16

const (
	UnknownCode Code = 0

	// Семантические: имена и типы
	SemaInfo             Code = 1000
	SemaDuplicateSymbol  Code = 1001
	SemaUndefinedSymbol  Code = 1002
	SemaUnknownType      Code = 1003
	SemaTypeMismatch     Code = 1004
	SemaInvalidOperands  Code = 1005
	SemaArityMismatch    Code = 1006
	SemaReturnMismatch   Code = 1007
	SemaNotCallable      Code = 1008
	SemaUnknownField     Code = 1009
	SemaMissingField     Code = 1010
	SemaNonBoolCondition Code = 1011
	SemaMissingReturn    Code = 1012

	// Эффекты
	EffInfo       Code = 2000
	EffEscalation Code = 2001
	EffUnused     Code = 2002

	// Capabilities
	CapInfo       Code = 3000
	CapDenied     Code = 3001
	CapUndeclared Code = 3002

	// PII / taint
	PiiInfo         Code = 4000
	PiiLeak         Code = 4001
	PiiDeclassified Code = 4002
)

type codeInfo struct {
	name  string
	title string
}

var codeTable = map[Code]codeInfo{
	UnknownCode:          {"Unknown", "Unknown error"},
	SemaInfo:             {"SemaInfo", "Semantic information"},
	SemaDuplicateSymbol:  {"DuplicateSymbol", "Duplicate symbol"},
	SemaUndefinedSymbol:  {"UndefinedSymbol", "Undefined symbol"},
	SemaUnknownType:      {"UnknownType", "Unknown type"},
	SemaTypeMismatch:     {"TypeMismatch", "Type mismatch"},
	SemaInvalidOperands:  {"InvalidOperands", "Invalid operands for operator"},
	SemaArityMismatch:    {"ArityMismatch", "Wrong number of arguments"},
	SemaReturnMismatch:   {"ReturnTypeMismatch", "Return type mismatch"},
	SemaNotCallable:      {"NotCallable", "Value is not callable"},
	SemaUnknownField:     {"UnknownField", "Unknown field"},
	SemaMissingField:     {"MissingField", "Missing field"},
	SemaNonBoolCondition: {"NonBoolCondition", "Condition is not Bool"},
	SemaMissingReturn:    {"MissingReturn", "Missing return in function"},
	EffInfo:              {"EffectInfo", "Effect information"},
	EffEscalation:        {"EffectEscalation", "Computed effect exceeds declared effect"},
	EffUnused:            {"EffectUnused", "Declared effect is never used"},
	CapInfo:              {"CapabilityInfo", "Capability information"},
	CapDenied:            {"CapabilityDenied", "Capability denied by manifest"},
	CapUndeclared:        {"CapabilityUndeclared", "Capability not declared by function"},
	PiiInfo:              {"PiiInfo", "PII information"},
	PiiLeak:              {"PiiLeak", "Sensitive data reaches an effectful sink"},
	PiiDeclassified:      {"PiiDeclassified", "Sensitive data declassified"},
}

// foldKey case-folds s. A Caser keeps state, so one is built per call.
func foldKey(s string) string {
	return cases.Fold().String(strings.TrimSpace(s))
}

// codeIndex maps both folded IDs ("sem1002") and folded names
// ("undefinedsymbol") to codes.
var codeIndex = func() map[string]Code {
	idx := make(map[string]Code, len(codeTable)*2)
	for c, info := range codeTable {
		if c == UnknownCode {
			continue
		}
		idx[foldKey(c.ID())] = c
		idx[foldKey(info.name)] = c
	}
	return idx
}()

// ID is the stable wire identifier, e.g. SEM1002.
func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("SEM%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("EFF%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("CAP%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("PII%04d", ic)
	}
	return "E0000"
}

// Name is the symbolic name, e.g. UndefinedSymbol.
func (c Code) Name() string {
	info, ok := codeTable[c]
	if !ok {
		return codeTable[UnknownCode].name
	}
	return info.name
}

func (c Code) Title() string {
	info, ok := codeTable[c]
	if !ok {
		return codeTable[UnknownCode].title
	}
	return info.title
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}

// LookupCode resolves a code from either its ID or its name, ignoring case.
func LookupCode(s string) (Code, bool) {
	c, ok := codeIndex[foldKey(s)]
	return c, ok
}

// Codes lists every known code except UnknownCode, in ascending order.
func Codes() []Code {
	out := make([]Code, 0, len(codeTable))
	for c := range codeTable {
		if c != UnknownCode {
			out = append(out, c)
		}
	}
	slices.Sort(out)
	return out
}
