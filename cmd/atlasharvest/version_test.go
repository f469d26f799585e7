package main

import (
	"strings"
	"testing"
)

// TestVersionCmd tests the version output.
func TestVersionCmd(t *testing.T) {
	t.Parallel()

	stdout, _, err := execute(t, "version")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{"atlasharvest version", "commit:", "built:", "go:"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("expected %q in output:\n%s", want, stdout)
		}
	}
}

// TestGetVersion tests the ldflags fallbacks.
func TestGetVersion(t *testing.T) {
	t.Parallel()

	if getVersion() == "" {
		t.Error("expected a version")
	}
	if getCommit() == "" {
		t.Error("expected a commit")
	}
	if getDate() == "" {
		t.Error("expected a date")
	}
}
