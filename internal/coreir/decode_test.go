package coreir

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/vmihailenco/msgpack/v5"

	"aster/internal/capability"
	"aster/internal/effects"
	"aster/internal/pii"
	"aster/internal/source"
)

const sampleIR = `{
  "version": 1,
  "name": "demo",
  "decls": [
    {"kind": "alias", "name": "Ssn", "type": {"kind": "pii", "type": "Text", "level": "L3", "category": "ssn"}},
    {"kind": "data", "name": "User", "fields": [{"name": "id", "type": "Int"}, {"name": "ssn", "type": {"kind": "name", "name": "Ssn"}}]},
    {"kind": "enum", "name": "Color", "variants": ["Red", "Green"]},
    {"kind": "func", "name": "send", "params": [{"name": "u", "type": "User"}],
     "ret": {"kind": "optional", "type": "Text"}, "effects": ["io"], "capabilities": ["Http"],
     "span": {"start": {"line": 4, "col": 1}, "end": {"line": 9, "col": 2}},
     "body": {"statements": [
       {"kind": "let", "name": "x", "expr": {"kind": "member", "expr": {"kind": "name", "name": "u"}, "field": "ssn"}},
       {"kind": "expr", "expr": {"kind": "call", "target": "Http.post", "effect": "Io", "capability": "Http",
         "args": [{"kind": "name", "name": "x"}, {"kind": "double", "value": 1.5}]}},
       {"kind": "if", "cond": {"kind": "bool", "value": true},
        "then": [{"kind": "return", "expr": {"kind": "some", "expr": {"kind": "string", "value": "ok"}}}],
        "else": {"statements": [{"kind": "return", "expr": {"kind": "none"}}]}},
       {"kind": "match", "expr": {"kind": "name", "name": "x"}, "cases": [
         {"pattern": {"kind": "string", "value": "a"}, "body": []},
         {"pattern": {"kind": "some", "pattern": {"kind": "name", "name": "v"}}, "body": []},
         {"pattern": {"kind": "wildcard"}, "body": [{"kind": "return"}]}
       ]}
     ]}}
  ]
}`

func decodeString(t *testing.T, doc string) (*Module, error) {
	t.Helper()
	return Decode(strings.NewReader(doc), DecodeOptions{Source: "demo.json"})
}

func TestDecodeSample(t *testing.T) {
	mod, err := decodeString(t, sampleIR)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if mod.Name != "demo" || mod.Source != "demo.json" || len(mod.Decls) != 4 {
		t.Fatalf("unexpected module header: %+v", mod)
	}
	alias, ok := mod.Decls[0].(*AliasDecl)
	if !ok {
		t.Fatalf("decl 0 is %T", mod.Decls[0])
	}
	pt, ok := alias.Target.(*PiiType)
	if !ok || pt.Level != pii.L3 || pt.Category != "ssn" {
		t.Fatalf("unexpected alias target %#v", alias.Target)
	}
	fn, ok := mod.Decls[3].(*FuncDecl)
	if !ok {
		t.Fatalf("decl 3 is %T", mod.Decls[3])
	}
	if fn.Effect != effects.Io || !fn.CapsDeclared || len(fn.Caps) != 1 || fn.Caps[0] != capability.Http {
		t.Fatalf("unexpected signature: effect=%v caps=%v declared=%v", fn.Effect, fn.Caps, fn.CapsDeclared)
	}
	wantSpan := source.Span{File: "demo.json", Start: source.Position{Line: 4, Col: 1}, End: source.Position{Line: 9, Col: 2}}
	if fn.Pos() != wantSpan {
		t.Fatalf("span = %v, want %v", fn.Pos(), wantSpan)
	}
	if len(fn.Body) != 4 {
		t.Fatalf("body has %d statements", len(fn.Body))
	}
	call := fn.Body[1].(*ExprStmt).Expr.(*CallExpr)
	if call.Target != "Http.post" || !call.HasEffect || call.Effect != effects.Io || call.Capability != capability.Http {
		t.Fatalf("unexpected call %+v", call)
	}
	if lit := call.Args[1].(*LiteralExpr); lit.Kind != LitDouble || lit.Double != 1.5 {
		t.Fatalf("unexpected literal %+v", lit)
	}
	ifs := fn.Body[2].(*IfStmt)
	if len(ifs.Then) != 1 || len(ifs.Else) != 1 {
		t.Fatalf("if branches not decoded: %+v", ifs)
	}
	match := fn.Body[3].(*MatchStmt)
	if len(match.Cases) != 3 {
		t.Fatalf("match cases = %d", len(match.Cases))
	}
	if _, ok := match.Cases[1].Pattern.(*WrapPattern); !ok {
		t.Fatalf("case 1 pattern is %T", match.Cases[1].Pattern)
	}
}

func TestDecodeEmptyModule(t *testing.T) {
	mod, err := decodeString(t, `{"name": "empty", "declarations": []}`)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(mod.Decls) != 0 {
		t.Fatalf("expected no declarations")
	}
}

func TestDecodeContractViolations(t *testing.T) {
	cases := []struct {
		name string
		doc  string
		path string
	}{
		{"missing name", `{"decls": []}`, ""},
		{"missing decls", `{"name": "m"}`, ""},
		{"bad version", `{"version": 2, "name": "m", "decls": []}`, ""},
		{"unknown decl", `{"name": "m", "decls": [{"kind": "class", "name": "X"}]}`, "decls[0]"},
		{"unknown expr", `{"name": "m", "decls": [{"kind": "func", "name": "f", "body": {"statements": [{"kind": "expr", "expr": {"kind": "lambda"}}]}}]}`, "decls[0].body.statements[0].expr"},
		{"missing body", `{"name": "m", "decls": [{"kind": "func", "name": "f"}]}`, "decls[0]"},
		{"unknown effect", `{"name": "m", "decls": [{"kind": "func", "name": "f", "effects": ["network"], "body": []}]}`, "decls[0]"},
		{"unknown capability", `{"name": "m", "decls": [{"kind": "func", "name": "f", "capabilities": ["Teleport"], "body": []}]}`, "decls[0].capabilities[0]"},
		{"bad literal", `{"name": "m", "decls": [{"kind": "func", "name": "f", "body": [{"kind": "expr", "expr": {"kind": "int", "value": "1"}}]}]}`, "decls[0].body[0].expr"},
		{"not json", `{"name": `, ""},
	}
	for _, tc := range cases {
		_, err := decodeString(t, tc.doc)
		if !errors.Is(err, ErrContract) {
			t.Fatalf("%s: expected contract error, got %v", tc.name, err)
		}
		var ce *ContractError
		if !errors.As(err, &ce) {
			t.Fatalf("%s: not a *ContractError: %T", tc.name, err)
		}
		if ce.Path != tc.path {
			t.Fatalf("%s: path = %q, want %q", tc.name, ce.Path, tc.path)
		}
	}
}

func TestSpanIsOptional(t *testing.T) {
	mod, err := decodeString(t, `{"name": "m", "decls": [{"kind": "import", "name": "Http"}]}`)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !mod.Decls[0].Pos().IsZero() {
		t.Fatalf("expected zero span, got %v", mod.Decls[0].Pos())
	}
}

func TestMsgpackMatchesJSON(t *testing.T) {
	fromJSON, err := decodeString(t, sampleIR)
	if err != nil {
		t.Fatalf("decode json: %v", err)
	}
	var tree any
	if err := json.Unmarshal([]byte(sampleIR), &tree); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	packed, err := msgpack.Marshal(tree)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	fromMsgpack, err := DecodeMsgpack(bytes.NewReader(packed), DecodeOptions{Source: "demo.json"})
	if err != nil {
		t.Fatalf("decode msgpack: %v", err)
	}
	if diff := cmp.Diff(fromJSON, fromMsgpack); diff != "" {
		t.Fatalf("msgpack decode differs (-json +msgpack):\n%s", diff)
	}
}

func TestLoadFileByExtension(t *testing.T) {
	dir := t.TempDir()
	var tree any
	if err := json.Unmarshal([]byte(sampleIR), &tree); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	packed, err := msgpack.Marshal(tree)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	path := filepath.Join(dir, "demo.msgpack")
	if err := os.WriteFile(path, packed, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	mod, err := LoadFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if mod.Source != path || len(mod.Decls) != 4 {
		t.Fatalf("unexpected module %q with %d decls", mod.Source, len(mod.Decls))
	}
	if _, err := LoadFile(filepath.Join(dir, "absent.json")); !errors.Is(err, os.ErrNotExist) || errors.Is(err, ErrContract) {
		t.Fatalf("missing file must be an I/O error, got %v", err)
	}
}
