package diagfmt

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"aster/internal/diag"
	"aster/internal/source"
)

func sampleBag() *diag.Bag {
	bag := diag.NewBag(4)
	span := source.Span{File: "/work/app/main.json", Start: source.Position{Line: 3, Col: 5}, End: source.Position{Line: 3, Col: 9}}
	diag.ReportError(diag.BagReporter{Bag: bag}, diag.SemaUndefinedSymbol, span, `undefined name "x"`).
		WithData("name", "x").
		Emit()
	diag.ReportWarning(diag.BagReporter{Bag: bag}, diag.EffUnused, source.Span{}, `function "f" declares effect Io but only needs Pure`).
		WithHelp("drop the effect").
		WithNote(span, "effect declared here").
		Emit()
	return bag
}

func TestBuildReport(t *testing.T) {
	r := BuildReport("main.json", sampleBag(), JSONOpts{PathMode: PathModeBasename})
	if diff := cmp.Diff(diag.Summary{Total: 2, Error: 1, Warning: 1}, r.Summary); diff != "" {
		t.Fatalf("summary (-want +got):\n%s", diff)
	}
	want := DiagnosticJSON{
		Severity: "error",
		Code:     "SEM1002",
		Name:     "UndefinedSymbol",
		Message:  `undefined name "x"`,
		Span:     &SpanJSON{File: "main.json", StartLine: 3, StartCol: 5, EndLine: 3, EndCol: 9},
		Data:     map[string]any{"name": "x"},
	}
	if diff := cmp.Diff(want, r.Diagnostics[0]); diff != "" {
		t.Fatalf("diagnostic (-want +got):\n%s", diff)
	}
	if r.Diagnostics[1].Span != nil {
		t.Fatalf("zero span must be omitted, got %+v", r.Diagnostics[1].Span)
	}
	if r.Diagnostics[1].Notes != nil {
		t.Fatalf("notes are opt-in")
	}
}

func TestBuildReportMax(t *testing.T) {
	r := BuildReport("main.json", sampleBag(), JSONOpts{Max: 1})
	if len(r.Diagnostics) != 1 || r.Summary.Total != 2 {
		t.Fatalf("Max trims output only: %d diagnostics, total %d", len(r.Diagnostics), r.Summary.Total)
	}
}

func TestJSONShape(t *testing.T) {
	var buf bytes.Buffer
	if err := JSON(&buf, BuildReport("main.json", sampleBag(), JSONOpts{}), JSONOpts{}); err != nil {
		t.Fatalf("JSON: %v", err)
	}
	if strings.Count(buf.String(), "\n") != 1 {
		t.Fatalf("compact output must be one line, got %q", buf.String())
	}
	var doc map[string]any
	if err := json.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, key := range []string{"source", "diagnostics", "summary"} {
		if _, ok := doc[key]; !ok {
			t.Fatalf("missing %q in %s", key, buf.String())
		}
	}
	first := doc["diagnostics"].([]any)[0].(map[string]any)
	span := first["span"].(map[string]any)
	if span["startLine"] != float64(3) || span["endCol"] != float64(9) {
		t.Fatalf("unexpected span %v", span)
	}
}

func TestEmptyReportHasEmptyList(t *testing.T) {
	var buf bytes.Buffer
	if err := JSON(&buf, BuildReport("empty.json", diag.NewBag(0), JSONOpts{}), JSONOpts{}); err != nil {
		t.Fatalf("JSON: %v", err)
	}
	want := `{"source":"empty.json","diagnostics":[],"summary":{"total":0,"error":0,"warning":0,"info":0}}` + "\n"
	if buf.String() != want {
		t.Fatalf("got %s", buf.String())
	}
}

func TestPretty(t *testing.T) {
	var buf bytes.Buffer
	opts := PrettyOpts{PathMode: PathModeRelative, BaseDir: "/work", ShowNotes: true, ShowHelp: true}
	if err := Pretty(&buf, "main.json", sampleBag(), opts); err != nil {
		t.Fatalf("Pretty: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"app/main.json:3:5  ERROR SEM1002 UndefinedSymbol: undefined name \"x\"",
		"WARNING EFF2002 EffectUnused",
		"note: app/main.json:3:5: effect declared here",
		"help: drop the effect",
		"main.json: 1 error, 1 warning, 0 infos",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("output lacks %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "\x1b[") {
		t.Fatalf("colour escapes with Color=false:\n%s", out)
	}
}

func TestPrettyTruncatesWideMessages(t *testing.T) {
	if got := truncate("a very long message", 10); got != "a very ..." {
		t.Fatalf("truncate = %q", got)
	}
	if got := truncate("short", 10); got != "short" {
		t.Fatalf("truncate = %q", got)
	}
}

func TestFormatPath(t *testing.T) {
	tests := []struct {
		mode PathMode
		want string
	}{
		{PathModeAuto, "/work/app/main.json"},
		{PathModeRelative, "app/main.json"},
		{PathModeBasename, "main.json"},
	}
	for _, tt := range tests {
		if got := formatPath("/work/app/main.json", tt.mode, "/work"); got != tt.want {
			t.Fatalf("mode %d: got %q, want %q", tt.mode, got, tt.want)
		}
	}
}
