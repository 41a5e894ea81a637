package randx

import (
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestBase62(t *testing.T) {
	s, err := Base62(12)
	if err != nil {
		t.Fatalf("Base62: %v", err)
	}
	if len(s) != 12 {
		t.Fatalf("len = %d, want 12", len(s))
	}
	for _, r := range s {
		if !strings.ContainsRune(Base62Chars, r) {
			t.Errorf("unexpected rune %q in %q", r, s)
		}
	}
}

func TestDisplayName(t *testing.T) {
	name, err := DisplayName()
	if err != nil {
		t.Fatalf("DisplayName: %v", err)
	}

	base, suffix, ok := strings.Cut(name, "_")
	if !ok {
		t.Fatalf("name %q has no suffix separator", name)
	}
	if len(suffix) != NameSuffixLength {
		t.Errorf("suffix %q has length %d, want %d", suffix, len(suffix), NameSuffixLength)
	}

	found := false
	for _, n := range famousNames {
		if n == base {
			found = true
			break
		}
	}
	if !found {
		t.Errorf("base %q not drawn from the name pool", base)
	}
}

func TestSessionID(t *testing.T) {
	a, b := SessionID(), SessionID()
	if a == b {
		t.Fatal("two session IDs are equal")
	}
	if _, err := uuid.Parse(a); err != nil {
		t.Errorf("SessionID %q is not a UUID: %v", a, err)
	}
}
