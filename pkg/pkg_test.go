package pkg

import (
	"regexp"
	"testing"
)

func TestVersion(t *testing.T) {
	t.Parallel()

	semver := regexp.MustCompile(`^\d+\.\d+\.\d+(-[0-9A-Za-z.-]+)?$`)
	if v := Version(); !semver.MatchString(v) {
		t.Errorf("Version() = %q, want a semantic version", v)
	}
}

func TestName(t *testing.T) {
	t.Parallel()

	if Name != "formula" {
		t.Errorf("Name = %q", Name)
	}
}
