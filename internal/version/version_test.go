// ABOUTME: Tests for version constants
// ABOUTME: Checks the values are usable in mDNS TXT records and the telemetry hello
package version

import (
	"strconv"
	"strings"
	"testing"
)

func TestConstantsDefined(t *testing.T) {
	tests := []struct {
		name  string
		value string
	}{
		{"Version", Version},
		{"Product", Product},
		{"Manufacturer", Manufacturer},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if strings.TrimSpace(tt.value) == "" {
				t.Fatalf("expected %s to be set", tt.name)
			}
			if tt.value != strings.TrimSpace(tt.value) {
				t.Errorf("expected no surrounding whitespace, got %q", tt.value)
			}
			// A DNS-SD TXT string holds at most 255 bytes including "key="
			if len("version=")+len(tt.value) > 255 {
				t.Errorf("expected %s to fit in a TXT record, got %d bytes", tt.name, len(tt.value))
			}
		})
	}
}

func TestVersionIsSemantic(t *testing.T) {
	parts := strings.Split(Version, ".")
	if len(parts) != 3 {
		t.Fatalf("expected major.minor.patch, got %q", Version)
	}
	for _, p := range parts {
		if _, err := strconv.Atoi(p); err != nil {
			t.Errorf("expected numeric component, got %q in %q", p, Version)
		}
	}
}
