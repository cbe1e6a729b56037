package version

import (
	"strings"
	"testing"

	"github.com/fatih/color"
)

func TestVersion_DefaultValues(t *testing.T) {
	if Version == "" {
		t.Error("Version should have a default value")
	}
}

func TestLong(t *testing.T) {
	origVersion, origCommit, origDate := Version, GitCommit, BuildDate
	t.Cleanup(func() {
		Version, GitCommit, BuildDate = origVersion, origCommit, origDate
	})

	Version = "1.2.3"
	GitCommit = "abc123def456"
	BuildDate = "2024-01-15T10:30:00Z"

	got := Long(false)
	for _, want := range []string{"safec 1.2.3\n", "commit: abc123def456\n", "built: 2024-01-15T10:30:00Z\n"} {
		if !strings.Contains(got, want) {
			t.Errorf("Long() = %q, missing %q", got, want)
		}
	}
}

func TestColoredKeepsSuffix(t *testing.T) {
	orig := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = orig })

	origVersion := Version
	t.Cleanup(func() { Version = origVersion })

	Version = "0.4.1-rc1"
	if got := Colored(); got != "0.4.1-rc1" {
		t.Fatalf("Colored() = %q", got)
	}
	Version = "dev"
	if got := Colored(); got != "dev" {
		t.Fatalf("Colored() = %q", got)
	}
}
