package idgen

import (
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestNanoID(t *testing.T) {
	gen := NanoID(12)
	seen := make(map[string]struct{}, 1000)
	for i := 0; i < 1000; i++ {
		id := gen()
		if len(id) != 12 {
			t.Fatalf("length %d: %q", len(id), id)
		}
		for _, c := range id {
			if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'z')) {
				t.Fatalf("unexpected character %q in %q", c, id)
			}
		}
		if _, ok := seen[id]; ok {
			t.Fatalf("duplicate at iteration %d: %q", i, id)
		}
		seen[id] = struct{}{}
	}
}

func TestSession(t *testing.T) {
	id := Session()
	if !strings.HasPrefix(id, "qs_") {
		t.Fatalf("missing prefix: %q", id)
	}
	u, err := uuid.Parse(strings.TrimPrefix(id, "qs_"))
	if err != nil {
		t.Fatalf("not a uuid: %v", err)
	}
	if u.Version() != 7 {
		t.Errorf("version %d, want 7", u.Version())
	}
}

func TestSession_Sortable(t *testing.T) {
	prev := Session()
	for i := 0; i < 50; i++ {
		next := Session()
		if next <= prev {
			t.Fatalf("ids not increasing: %q then %q", prev, next)
		}
		prev = next
	}
}
