package version

import (
	"testing"

	"github.com/fatih/color"
	"github.com/google/go-cmp/cmp"
)

func TestGetTrimsAndDefaults(t *testing.T) {
	origVersion, origCommit, origDate := Version, GitCommit, BuildDate
	t.Cleanup(func() { Version, GitCommit, BuildDate = origVersion, origCommit, origDate })

	Version, GitCommit, BuildDate = " 1.2.3 ", "abc123\n", ""
	want := Info{Tool: "aster", Version: "1.2.3", GitCommit: "abc123"}
	if diff := cmp.Diff(want, Get()); diff != "" {
		t.Fatalf("Get (-want +got):\n%s", diff)
	}

	Version = "  "
	if got := Get().Version; got != "dev" {
		t.Fatalf("empty version = %q, want dev", got)
	}
}

func TestStyledWithoutColor(t *testing.T) {
	orig := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = orig })

	for _, v := range []string{"0.1.0-dev", "1.2.3+build.7", "nightly", "1.2"} {
		if got := Styled(v); got != v {
			t.Fatalf("Styled(%q) = %q", v, got)
		}
	}
}

func TestStyledWithColor(t *testing.T) {
	orig := color.NoColor
	color.NoColor = false
	t.Cleanup(func() { color.NoColor = orig })

	got := Styled("1.2.3-rc.1")
	if got == "1.2.3-rc.1" || len(got) <= len("1.2.3-rc.1") {
		t.Fatalf("expected escape codes, got %q", got)
	}
}
