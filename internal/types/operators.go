package types

// FamilyMask describes broad categories of types an operator accepts.
type FamilyMask uint32

const (
	FamilyNone FamilyMask = 0
	FamilyAny  FamilyMask = 1 << iota
	FamilyBool
	FamilyInt
	FamilyLong
	FamilyDouble
	FamilyText
)

const (
	FamilyIntegral = FamilyInt | FamilyLong
	FamilyNumeric  = FamilyIntegral | FamilyDouble
)

// BinaryResult describes how to derive the result type for an operator.
type BinaryResult uint8

const (
	BinaryResultUnknown BinaryResult = iota
	BinaryResultLeft
	BinaryResultBool
)

// BinaryFlags annotate special handling for binary operators.
type BinaryFlags uint16

const (
	BinaryFlagNone     BinaryFlags = 0
	BinaryFlagSameKind BinaryFlags = 1 << iota // operands must share a kind
	BinaryFlagCompatible                       // operands must be mutually compatible
	BinaryFlagShortCircuit
)

// BinarySpec lists operand families and expected result for an operation.
type BinarySpec struct {
	Left   FamilyMask
	Right  FamilyMask
	Result BinaryResult
	Flags  BinaryFlags
}

// UnaryResult indicates how to derive the resulting type.
type UnaryResult uint8

const (
	UnaryResultUnknown UnaryResult = iota
	UnaryResultSame
	UnaryResultBool
)

// UnarySpec describes operand expectations for unary operators.
type UnarySpec struct {
	Operand FamilyMask
	Result  UnaryResult
}

var (
	arith   = []BinarySpec{{Left: FamilyNumeric, Right: FamilyNumeric, Result: BinaryResultLeft, Flags: BinaryFlagSameKind}}
	compare = []BinarySpec{{Left: FamilyNumeric, Right: FamilyNumeric, Result: BinaryResultBool, Flags: BinaryFlagSameKind}}
	equal   = []BinarySpec{{Left: FamilyAny, Right: FamilyAny, Result: BinaryResultBool, Flags: BinaryFlagCompatible}}
	logical = []BinarySpec{{Left: FamilyBool, Right: FamilyBool, Result: BinaryResultBool, Flags: BinaryFlagShortCircuit}}
)

var binarySpecTable = map[string][]BinarySpec{
	"+": {
		{Left: FamilyNumeric, Right: FamilyNumeric, Result: BinaryResultLeft, Flags: BinaryFlagSameKind},
		{Left: FamilyText, Right: FamilyText, Result: BinaryResultLeft, Flags: BinaryFlagSameKind},
	},
	"-":   arith,
	"*":   arith,
	"/":   arith,
	"%":   {{Left: FamilyIntegral, Right: FamilyIntegral, Result: BinaryResultLeft, Flags: BinaryFlagSameKind}},
	"<":   compare,
	"<=":  compare,
	">":   compare,
	">=":  compare,
	"==":  equal,
	"!=":  equal,
	"and": logical,
	"&&":  logical,
	"or":  logical,
	"||":  logical,
}

var unarySpecTable = map[string]UnarySpec{
	"-":   {Operand: FamilyNumeric, Result: UnaryResultSame},
	"+":   {Operand: FamilyNumeric, Result: UnaryResultSame},
	"not": {Operand: FamilyBool, Result: UnaryResultBool},
	"!":   {Operand: FamilyBool, Result: UnaryResultBool},
}

// BinarySpecs returns operand rules for the given operator; nil when unknown.
func BinarySpecs(op string) []BinarySpec {
	return binarySpecTable[op]
}

// UnarySpecFor returns operand/result hints for unary operators.
func UnarySpecFor(op string) (UnarySpec, bool) {
	spec, ok := unarySpecTable[op]
	return spec, ok
}

// Family classifies id (Pii stripped) for operator matching.
func (in *Interner) Family(id TypeID) FamilyMask {
	switch in.KindOf(id) {
	case KindBool:
		return FamilyBool
	case KindInt:
		return FamilyInt
	case KindLong:
		return FamilyLong
	case KindDouble:
		return FamilyDouble
	case KindText:
		return FamilyText
	}
	return FamilyAny
}

// Accepts reports whether a value of family f fits mask.
func (f FamilyMask) Accepts(mask FamilyMask) bool {
	return mask&FamilyAny != 0 || f&mask != 0
}
