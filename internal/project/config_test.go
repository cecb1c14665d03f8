package project

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"aster/internal/diag"
	"aster/internal/pii"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestDiscoverWalksUp(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, "[typecheck]\nleak_threshold = \"L3\"\n")
	nested := filepath.Join(root, "src", "pkg")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	cfg, ok, err := Discover(nested)
	if err != nil || !ok {
		t.Fatalf("Discover: ok=%v err=%v", ok, err)
	}
	if cfg.Root != root {
		t.Fatalf("root = %q, want %q", cfg.Root, root)
	}
	if !cfg.IsSet("typecheck", "leak_threshold") || cfg.LeakLevel != pii.L3 {
		t.Fatalf("leak threshold not decoded: %+v", cfg)
	}
	if cfg.IsSet("typecheck", "warn_unused_effects") {
		t.Fatalf("absent key reported as set")
	}

	gotRoot, ok, err := FindProjectRoot(nested)
	if err != nil || !ok || gotRoot != root {
		t.Fatalf("FindProjectRoot = %q %v %v", gotRoot, ok, err)
	}
}

func TestDiscoverWithoutFile(t *testing.T) {
	cfg, ok, err := Discover(t.TempDir())
	if err != nil || ok || cfg != nil {
		t.Fatalf("expected nothing, got cfg=%v ok=%v err=%v", cfg, ok, err)
	}
	if cfg.IsSet("typecheck") {
		t.Fatalf("nil config must report nothing set")
	}
}

func TestDiscoverSkipsDirectoryNamedLikeConfig(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, "")
	nested := filepath.Join(root, "pkg")
	if err := os.MkdirAll(filepath.Join(nested, FileName), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	path, ok, err := FindAsterToml(nested)
	if err != nil || !ok || path != filepath.Join(root, FileName) {
		t.Fatalf("FindAsterToml = %q %v %v", path, ok, err)
	}
}

func TestLoadConfigFull(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, `
[typecheck]
manifest = "caps/caps.toml"
leak_threshold = "l2"
warn_unused_effects = false
audit_pii = true
filter_codes = ["PiiLeak", "eff2001"]
jobs = 4

[frontend]
command = "aster-emit-core"
args = ["--json"]
timeout = "5s"
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if want := filepath.Join(dir, "caps", "caps.toml"); cfg.Typecheck.Manifest != want {
		t.Fatalf("manifest = %q, want %q", cfg.Typecheck.Manifest, want)
	}
	if diff := cmp.Diff([]diag.Code{diag.PiiLeak, diag.EffEscalation}, cfg.Codes); diff != "" {
		t.Fatalf("codes (-want +got):\n%s", diff)
	}
	if !cfg.IsSet("typecheck", "warn_unused_effects") || cfg.Typecheck.WarnUnusedEffects {
		t.Fatalf("explicit false must be visible")
	}
	if cfg.FrontendTimeout != 5*time.Second || cfg.Frontend.Command != "aster-emit-core" || cfg.Typecheck.Jobs != 4 {
		t.Fatalf("unexpected config %+v", cfg)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		invalid bool
	}{
		{name: "syntax", content: "[typecheck\n"},
		{name: "unknown key", content: "[typecheck]\ncolour = true\n", invalid: true},
		{name: "bad level", content: "[typecheck]\nleak_threshold = \"L9\"\n"},
		{name: "bad code", content: "[typecheck]\nfilter_codes = [\"NOPE\"]\n", invalid: true},
		{name: "bad timeout", content: "[frontend]\ntimeout = \"soon\"\n", invalid: true},
		{name: "negative jobs", content: "[typecheck]\njobs = -1\n", invalid: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, t.TempDir(), tt.content))
			if err == nil {
				t.Fatalf("expected an error")
			}
			if tt.invalid != errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("errors.Is(ErrInvalidConfig) = %v for %v", !tt.invalid, err)
			}
		})
	}
}
