package version

import (
	"strings"
	"testing"
)

func TestVersion(t *testing.T) {
	if !strings.HasPrefix(Version, "v") {
		t.Errorf("Version = %q, want a v-prefixed tag", Version)
	}
	if r := Revision(); len(r) > 12 {
		t.Errorf("Revision() = %q, want at most 12 characters", r)
	}
}
