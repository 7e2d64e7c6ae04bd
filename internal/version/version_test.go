package version

import (
	"testing"

	"github.com/fatih/color"
)

func TestVersion_DefaultValues(t *testing.T) {
	if Version == "" {
		t.Error("Version should have a default value")
	}
	// GitCommit and BuildDate can be empty (optional)
	_ = GitCommit
	_ = BuildDate
}

func TestVersion_CanBeOverridden(t *testing.T) {
	origVersion, origGitCommit, origBuildDate := Version, GitCommit, BuildDate
	defer func() {
		Version, GitCommit, BuildDate = origVersion, origGitCommit, origBuildDate
	}()

	// simulating build-time ldflags
	Version = "1.2.3"
	GitCommit = "abc123def456"
	BuildDate = "2024-01-15T10:30:00Z"

	if Version != "1.2.3" {
		t.Errorf("Version = %q, want %q", Version, "1.2.3")
	}
	if GitCommit != "abc123def456" {
		t.Errorf("GitCommit = %q, want %q", GitCommit, "abc123def456")
	}
	if BuildDate != "2024-01-15T10:30:00Z" {
		t.Errorf("BuildDate = %q, want %q", BuildDate, "2024-01-15T10:30:00Z")
	}
}

func TestColoredWithoutColor(t *testing.T) {
	orig := color.NoColor
	color.NoColor = true
	defer func() { color.NoColor = orig }()

	for _, v := range []string{
		"0.1.0",
		"1.2.3",
		"2.0.0-alpha",
		"1.0.0-beta.1",
		"0.1.0-dev",
		"1.2.3-rc.1+build.123",
		"dev",
	} {
		if got := Colored(v); got != v {
			t.Errorf("Colored(%q) = %q", v, got)
		}
	}
}

func TestColoredAddsEscapes(t *testing.T) {
	orig := color.NoColor
	color.NoColor = false
	defer func() { color.NoColor = orig }()

	if got := Colored("1.2.3-dev"); got == "1.2.3-dev" {
		t.Errorf("expected colored output, got %q", got)
	}
}
