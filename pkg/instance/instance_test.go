package instance

import (
	"strings"
	"testing"
)

func TestIDPrefersConfiguredValue(t *testing.T) {
	if got := ID("  till-1 "); got != "till-1" {
		t.Fatalf("expected till-1, got %q", got)
	}
}

func TestIDGeneratesUniqueValues(t *testing.T) {
	a, b := ID(""), ID("")
	if a == "" || b == "" {
		t.Fatal("expected generated ids")
	}
	if a == b {
		t.Fatalf("expected distinct ids, got %q twice", a)
	}
	if !strings.Contains(a, "-") {
		t.Fatalf("expected host-suffix form, got %q", a)
	}
}
