package randx

import "testing"

func TestServerIDIsValid(t *testing.T) {
	seen := make(map[string]struct{})

	for range 50 {
		id, err := ServerID()
		if err != nil {
			t.Fatalf("ServerID() error = %v", err)
		}
		if !IsValidServerID(id) {
			t.Fatalf("ServerID() produced invalid id %q", id)
		}
		if _, dup := seen[id]; dup {
			t.Fatalf("ServerID() repeated %q", id)
		}
		seen[id] = struct{}{}
	}
}

func TestIsValidServerIDRejects(t *testing.T) {
	for _, id := range []string{"", "short", "abcdefghijklmnopqrstuvw!", "abcdefghijklmnopqrstuvwxyz"} {
		if IsValidServerID(id) {
			t.Errorf("IsValidServerID(%q) = true", id)
		}
	}
}
