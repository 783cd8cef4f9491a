package keys

import "testing"

func TestCanonicalUsername(t *testing.T) {
	if got := CanonicalUsername("  Big   Alice "); got != "big alice" {
		t.Fatalf("unexpected canonical name %q", got)
	}
}

func TestPlayerIDsAreStable(t *testing.T) {
	a := PlayerIDForUsername("Alice")
	if a != PlayerIDForUsername(" alice ") {
		t.Fatalf("case and spacing must not change the id")
	}
	if a == PlayerIDForUsername("bob") {
		t.Fatalf("different names must not collide")
	}
	if a == PlayerIDForEmail("alice") {
		t.Fatalf("username and email ids live in separate namespaces")
	}
	if PlayerIDForEmail("A@Example.com") != PlayerIDForEmail("a@example.com") {
		t.Fatalf("email ids must be case-insensitive")
	}
}
