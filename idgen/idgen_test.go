package idgen

import (
	"strings"
	"testing"
)

func TestNanoID(t *testing.T) {
	gen := NanoID(12)
	id := gen()
	if len(id) != 12 {
		t.Fatalf("length = %d, want 12", len(id))
	}
	for _, c := range id {
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'z')) {
			t.Fatalf("unexpected character %q in %q", c, id)
		}
	}

	seen := make(map[string]struct{}, 1000)
	for i := 0; i < 1000; i++ {
		id := gen()
		if _, ok := seen[id]; ok {
			t.Fatalf("duplicate at iteration %d: %q", i, id)
		}
		seen[id] = struct{}{}
	}
}

func TestUUIDv7(t *testing.T) {
	id := New()
	if len(id) != 36 || len(strings.Split(id, "-")) != 5 {
		t.Fatalf("not a UUID: %q", id)
	}
	if New() == New() {
		t.Fatal("duplicate UUIDs")
	}
}

func TestPrefixed(t *testing.T) {
	gen := Prefixed("cap_", NanoID(8))
	id := gen()
	if !strings.HasPrefix(id, "cap_") || len(id) != 12 {
		t.Fatalf("id = %q", id)
	}
}
