package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"aster/internal/diag"
	"aster/internal/diagfmt"
	"aster/internal/version"
)

const pureIR = `{"version": 1, "name": "ok", "decls": [
  {"kind": "func", "name": "answer", "ret": "Int", "body": [{"kind": "return", "expr": {"kind": "int", "value": 42}}]}
]}`

const leakyIR = `{"version": 1, "name": "app", "decls": [
  {"kind": "func", "name": "send", "effect": "pure",
   "params": [{"name": "ssn", "type": {"kind": "pii", "type": "Text", "level": "L3", "category": "ssn"}}],
   "body": [{"kind": "expr", "expr": {"kind": "call", "target": "Http.post", "args": [{"kind": "name", "name": "ssn"}]}}]}
]}`

func isolateEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"ASTER_CAPS", "ASTER_FRONTEND", "ASTER_FRONTEND_TIMEOUT", "ASTER_LEAK_THRESHOLD"} {
		t.Setenv(key, "")
	}
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func runCLI(t *testing.T, args ...string) (code int, stdout, stderr string) {
	t.Helper()
	var out, errOut bytes.Buffer
	code = run(context.Background(), args, &out, &errOut)
	return code, out.String(), errOut.String()
}

func decodeReport(t *testing.T, data string) diagfmt.Report {
	t.Helper()
	var r diagfmt.Report
	if err := json.Unmarshal([]byte(data), &r); err != nil {
		t.Fatalf("decode report: %v\n%s", err, data)
	}
	return r
}

func TestTypecheckSingleFileJSON(t *testing.T) {
	isolateEnv(t)
	path := writeFile(t, t.TempDir(), "app.json", leakyIR)

	code, stdout, stderr := runCLI(t, "typecheck", path)
	if code != exitOK {
		t.Fatalf("exit %d, stderr: %s", code, stderr)
	}
	r := decodeReport(t, stdout)
	if r.Source != path {
		t.Fatalf("source = %q, want %q", r.Source, path)
	}
	var codes []string
	for _, d := range r.Diagnostics {
		codes = append(codes, d.Code)
	}
	want := []string{diag.CapDenied.ID(), diag.PiiLeak.ID(), diag.EffEscalation.ID()}
	if diff := cmp.Diff(want, codes); diff != "" {
		t.Fatalf("codes (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(diag.Summary{Total: 3, Error: 3}, r.Summary); diff != "" {
		t.Fatalf("summary (-want +got):\n%s", diff)
	}
}

func TestTypecheckFilterCodesChangesSummary(t *testing.T) {
	isolateEnv(t)
	path := writeFile(t, t.TempDir(), "app.json", leakyIR)

	code, stdout, stderr := runCLI(t, "typecheck", "--filter-codes=piileak", path)
	if code != exitOK {
		t.Fatalf("exit %d, stderr: %s", code, stderr)
	}
	r := decodeReport(t, stdout)
	if len(r.Diagnostics) != 1 || r.Diagnostics[0].Name != "PiiLeak" {
		t.Fatalf("unexpected diagnostics %+v", r.Diagnostics)
	}
	if diff := cmp.Diff(diag.Summary{Total: 1, Error: 1}, r.Summary); diff != "" {
		t.Fatalf("summary (-want +got):\n%s", diff)
	}
}

func TestTypecheckManifestFlag(t *testing.T) {
	isolateEnv(t)
	dir := t.TempDir()
	path := writeFile(t, dir, "app.json", leakyIR)
	caps := writeFile(t, dir, "caps.toml", "[capabilities]\nallow = [\"Http\"]\n")
	t.Setenv("ASTER_CAPS", filepath.Join(dir, "missing.toml"))

	code, stdout, stderr := runCLI(t, "typecheck", "--manifest", caps, path)
	if code != exitOK {
		t.Fatalf("exit %d, stderr: %s", code, stderr)
	}
	for _, d := range decodeReport(t, stdout).Diagnostics {
		if d.Code == diag.CapDenied.ID() {
			t.Fatalf("Http is allowed by the manifest: %+v", d)
		}
	}
}

func TestTypecheckSeveralFilesIsNDJSON(t *testing.T) {
	isolateEnv(t)
	dir := t.TempDir()
	first := writeFile(t, dir, "a.json", leakyIR)
	second := writeFile(t, dir, "b.json", pureIR)

	code, stdout, stderr := runCLI(t, "typecheck", first, second)
	if code != exitOK {
		t.Fatalf("exit %d, stderr: %s", code, stderr)
	}
	var sources []string
	sc := bufio.NewScanner(strings.NewReader(stdout))
	for sc.Scan() {
		sources = append(sources, decodeReport(t, sc.Text()).Source)
	}
	if diff := cmp.Diff([]string{first, second}, sources); diff != "" {
		t.Fatalf("sources (-want +got):\n%s", diff)
	}
}

func TestTypecheckPretty(t *testing.T) {
	isolateEnv(t)
	path := writeFile(t, t.TempDir(), "app.json", leakyIR)

	code, stdout, stderr := runCLI(t, "typecheck", "--format=pretty", "--path-mode=basename", path)
	if code != exitOK {
		t.Fatalf("exit %d, stderr: %s", code, stderr)
	}
	for _, want := range []string{"app.json", "CapabilityDenied", "PiiLeak", "3 errors"} {
		if !strings.Contains(stdout, want) {
			t.Fatalf("pretty output lacks %q:\n%s", want, stdout)
		}
	}
	if strings.Contains(stdout, "\x1b[") {
		t.Fatalf("colour must be off for a non-terminal:\n%q", stdout)
	}
}

func TestTypecheckTimingsAndTrace(t *testing.T) {
	isolateEnv(t)
	path := writeFile(t, t.TempDir(), "app.json", pureIR)

	code, stdout, stderr := runCLI(t, "typecheck", "--timings", "--trace-level=phase", "--trace-format=ndjson", path)
	if code != exitOK {
		t.Fatalf("exit %d, stderr: %s", code, stderr)
	}
	if decodeReport(t, stdout).Summary != (diag.Summary{}) {
		t.Fatalf("expected a clean module:\n%s", stdout)
	}
	for _, want := range []string{"timings:", "check", `"typecheck"`} {
		if !strings.Contains(stderr, want) {
			t.Fatalf("stderr lacks %q:\n%s", want, stderr)
		}
	}
}

func TestTypecheckProjectConfig(t *testing.T) {
	isolateEnv(t)
	dir := t.TempDir()
	writeFile(t, dir, "aster.toml", "[typecheck]\nfilter_codes = [\"EffectEscalation\"]\n")
	path := writeFile(t, dir, "app.json", leakyIR)

	code, stdout, stderr := runCLI(t, "typecheck", path)
	if code != exitOK {
		t.Fatalf("exit %d, stderr: %s", code, stderr)
	}
	if diff := cmp.Diff(diag.Summary{Total: 1, Error: 1}, decodeReport(t, stdout).Summary); diff != "" {
		t.Fatalf("summary (-want +got):\n%s", diff)
	}
}

func TestExitCodes(t *testing.T) {
	isolateEnv(t)
	dir := t.TempDir()
	good := writeFile(t, dir, "app.json", pureIR)
	broken := writeFile(t, dir, "broken.json", `{"name": "m", "decls": [{"kind": "class"}]}`)
	badCaps := writeFile(t, dir, "caps.json", `{"capabilities": {"allow": ["Teleport"]}}`)

	tests := []struct {
		name string
		args []string
		want int
	}{
		{name: "ok", args: []string{"typecheck", good}, want: exitOK},
		{name: "no files", args: []string{"typecheck"}, want: exitUsage},
		{name: "unknown flag", args: []string{"typecheck", "--bogus", good}, want: exitUsage},
		{name: "unknown command", args: []string{"compile", good}, want: exitUsage},
		{name: "bad format", args: []string{"typecheck", "--format=xml", good}, want: exitUsage},
		{name: "bad leak threshold", args: []string{"typecheck", "--leak-threshold=L9", good}, want: exitUsage},
		{name: "bad filter code", args: []string{"typecheck", "--filter-codes=NOPE", good}, want: exitUsage},
		{name: "bad trace level", args: []string{"typecheck", "--trace-level=loud", good}, want: exitUsage},
		{name: "bad jobs", args: []string{"typecheck", "--jobs=many", good}, want: exitUsage},
		{name: "missing file", args: []string{"typecheck", filepath.Join(dir, "nope.json")}, want: exitFailure},
		{name: "contract violation", args: []string{"typecheck", broken}, want: exitFailure},
		{name: "bad manifest", args: []string{"typecheck", "--manifest", badCaps, good}, want: exitFailure},
		{name: "source without frontend", args: []string{"typecheck", writeFile(t, dir, "main.aster", "")}, want: exitFailure},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, stderr := runCLI(t, tt.args...)
			if code != tt.want {
				t.Fatalf("exit %d, want %d; stderr: %s", code, tt.want, stderr)
			}
			if code != exitOK && !strings.HasPrefix(stderr, "aster: ") {
				t.Fatalf("error not reported on stderr: %q", stderr)
			}
		})
	}
}

func TestVersionJSON(t *testing.T) {
	code, stdout, stderr := runCLI(t, "version", "--format", "json")
	if code != exitOK {
		t.Fatalf("exit %d, stderr: %s", code, stderr)
	}
	var got version.Info
	if err := json.Unmarshal([]byte(stdout), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if diff := cmp.Diff(version.Get(), got); diff != "" {
		t.Fatalf("version (-want +got):\n%s", diff)
	}

	code, stdout, _ = runCLI(t, "version")
	if code != exitOK || !strings.HasPrefix(stdout, "aster "+version.Get().Version) {
		t.Fatalf("pretty version: exit %d, %q", code, stdout)
	}
	if code, _, _ := runCLI(t, "version", "--format", "yaml"); code != exitUsage {
		t.Fatalf("unsupported format exit %d", code)
	}
}
