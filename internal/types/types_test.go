package types

import (
	"testing"

	"aster/internal/pii"
	"aster/internal/source"
)

func TestInternerBuiltins(t *testing.T) {
	in := NewInterner(nil)
	b := in.Builtins()
	if b.Unit == NoTypeID || b.Bool == NoTypeID || b.Unknown == NoTypeID {
		t.Fatalf("builtins not initialized")
	}
	unit, _ := in.Lookup(b.Unit)
	if unit.Kind != KindUnit {
		t.Fatalf("expected unit kind, got %v", unit.Kind)
	}
}

func TestInternerDeduplicatesDescriptors(t *testing.T) {
	in := NewInterner(nil)
	text := in.Builtins().Text
	if in.List(text) != in.List(text) {
		t.Fatalf("list types should be deduplicated")
	}
	if in.Map(text, in.Builtins().Int) == in.Map(in.Builtins().Int, text) {
		t.Fatalf("map key and value must not be interchangeable")
	}
	f1 := in.RegisterFn([]TypeID{text}, in.Builtins().Bool)
	f2 := in.RegisterFn([]TypeID{text}, in.Builtins().Bool)
	if f1 != f2 {
		t.Fatalf("function types should be deduplicated")
	}
	b := in.Builtins()
	if in.RegisterFn([]TypeID{b.Int, text}, b.Unit) == in.RegisterFn([]TypeID{text, b.Int}, b.Unit) {
		t.Fatalf("parameter order must matter")
	}
	if in.RegisterFn(nil, b.Unit) != in.RegisterFn([]TypeID{}, b.Unit) {
		t.Fatalf("nil and empty parameter lists are the same signature")
	}
	params := []TypeID{text}
	f3 := in.RegisterFn(params, b.Int)
	params[0] = b.Bool
	if info, ok := in.FnInfo(f3); !ok || info.Params[0] != text {
		t.Fatalf("signature must not alias the caller's slice: %+v", info)
	}
}

func TestNominalTypesAreDistinct(t *testing.T) {
	in := NewInterner(nil)
	a := in.RegisterData("User", source.Span{})
	b := in.RegisterData("User", source.Span{})
	if a == b {
		t.Fatalf("each data declaration gets its own identity")
	}
	in.SetDataFields(a, []Field{{Name: "name", Type: in.Builtins().Text}})
	info, ok := in.DataInfo(a)
	if !ok {
		t.Fatalf("missing data info")
	}
	if f, ok := info.Field("name"); !ok || f.Type != in.Builtins().Text {
		t.Fatalf("field lookup failed: %+v", f)
	}
	if in.Compatible(a, b) {
		t.Fatalf("distinct nominal types must not be compatible")
	}
}

func TestCompatible(t *testing.T) {
	in := NewInterner(nil)
	b := in.Builtins()
	cases := []struct {
		name             string
		expected, actual TypeID
		want             bool
	}{
		{"same", b.Int, b.Int, true},
		{"different primitives", b.Int, b.Text, false},
		{"int is not long", b.Long, b.Int, false},
		{"optional accepts inner", in.Optional(b.Text), b.Text, true},
		{"optional accepts null", in.Optional(b.Text), b.Null, true},
		{"inner does not accept optional", b.Text, in.Optional(b.Text), false},
		{"unknown matches anything", b.Int, b.Unknown, true},
		{"var matches anything", in.Var("T"), b.Bool, true},
		{"pii transparent", b.Text, in.Pii(b.Text, pii.L3, "ssn"), true},
		{"pii expected", in.Pii(b.Text, pii.L2, "email"), b.Text, true},
		{"list elementwise", in.List(b.Int), in.List(b.Int), true},
		{"list of unknown", in.List(b.Int), in.List(b.Unknown), true},
		{"list mismatch", in.List(b.Int), in.List(b.Text), false},
		{"result", in.Result(b.Int, b.Text), in.Result(b.Int, b.Unknown), true},
		{"fn arity", in.RegisterFn([]TypeID{b.Int}, b.Unit), in.RegisterFn(nil, b.Unit), false},
	}
	for _, tc := range cases {
		if got := in.Compatible(tc.expected, tc.actual); got != tc.want {
			t.Fatalf("%s: Compatible(%s, %s) = %v", tc.name, Label(in, tc.expected), Label(in, tc.actual), got)
		}
	}
}

func TestJoin(t *testing.T) {
	in := NewInterner(nil)
	b := in.Builtins()
	if got, ok := in.Join(b.Null, b.Int); !ok || got != in.Optional(b.Int) {
		t.Fatalf("Join(Null, Int) = %s", Label(in, got))
	}
	if got, ok := in.Join(b.Unknown, b.Text); !ok || got != b.Text {
		t.Fatalf("Join(Unknown, Text) = %s", Label(in, got))
	}
	if _, ok := in.Join(b.Int, b.Text); ok {
		t.Fatalf("Join(Int, Text) must fail")
	}
}

func TestPiiMeta(t *testing.T) {
	in := NewInterner(nil)
	text := in.Builtins().Text
	ssn := in.Pii(text, pii.L3, "ssn")
	if !in.PiiMeta(ssn).Equal(pii.New(pii.L3, "ssn")) {
		t.Fatalf("unexpected meta %v", in.PiiMeta(ssn))
	}
	if !in.PiiMeta(in.Optional(ssn)).Equal(pii.New(pii.L3, "ssn")) {
		t.Fatalf("optional should expose inner taint")
	}
	if in.PiiMeta(text) != nil {
		t.Fatalf("plain text must be untainted")
	}
	if in.Unwrap(ssn) != text || in.KindOf(ssn) != KindText {
		t.Fatalf("unwrap broken")
	}
}

func TestLabel(t *testing.T) {
	in := NewInterner(nil)
	b := in.Builtins()
	cases := map[TypeID]string{
		in.Optional(b.Text):                          "Text?",
		in.Map(b.Text, in.List(b.Int)):               "Map<Text, List<Int>>",
		in.Result(b.Int, b.Text):                     "Result<Int, Text>",
		in.RegisterFn([]TypeID{b.Int}, b.Bool):       "(Int) -> Bool",
		in.Pii(b.Text, pii.L3, "ssn"):                "Pii<Text, L3, ssn>",
		in.RegisterEnum("Color", source.Span{}, nil): "Color",
	}
	for id, want := range cases {
		if got := Label(in, id); got != want {
			t.Fatalf("Label = %q, want %q", got, want)
		}
	}
}

func TestAliasesSnapshotIsImmutable(t *testing.T) {
	in := NewInterner(nil)
	builder := NewAliasBuilder(in)
	if builder.Define("Int", in.Builtins().Long) {
		t.Fatalf("primitive names must not be redefinable")
	}
	if !builder.Define("Email", in.Builtins().Text) {
		t.Fatalf("define failed")
	}
	snap := builder.Freeze()
	builder.Set("Email", in.Builtins().Int)
	if id, ok := snap.Resolve("Email"); !ok || id != in.Builtins().Text {
		t.Fatalf("snapshot changed after freeze")
	}
	if id, ok := snap.Resolve("String"); !ok || id != in.Builtins().Text {
		t.Fatalf("String should resolve to Text")
	}
}

func TestBinarySpecs(t *testing.T) {
	specs := BinarySpecs("and")
	if len(specs) != 1 || specs[0].Left&FamilyBool == 0 || specs[0].Result != BinaryResultBool {
		t.Fatalf("logical and expects bool operands, got %+v", specs)
	}
	if len(BinarySpecs("+")) != 2 {
		t.Fatalf("+ should accept numerics and text")
	}
	if BinarySpecs("<<") != nil {
		t.Fatalf("unknown operator should have no specs")
	}
	if !FamilyInt.Accepts(FamilyNumeric) || FamilyText.Accepts(FamilyNumeric) {
		t.Fatalf("family acceptance broken")
	}
}
