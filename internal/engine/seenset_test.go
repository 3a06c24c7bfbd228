package engine

import "testing"

func TestCanonicalize(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"https://target.example/jobs/view/123?refId=abc&tracking=xyz", "https://target.example/jobs/view/123"},
		{"https://target.example/jobs/view/123/", "https://target.example/jobs/view/123"},
		{"https://target.example/jobs/view/123#apply", "https://target.example/jobs/view/123"},
		{"https://target.example/jobs/view/123", "https://target.example/jobs/view/123"},
	}

	for _, tt := range tests {
		if got := Canonicalize(tt.raw); got != tt.want {
			t.Errorf("Canonicalize(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestCanonicalizeIsIdentity(t *testing.T) {
	// Two trackers pointing at the same listing collapse to one identity
	a := Canonicalize("https://target.example/jobs/view/99?refId=search")
	b := Canonicalize("https://target.example/jobs/view/99?refId=email&src=digest")
	if a != b {
		t.Errorf("identities differ: %q vs %q", a, b)
	}
}

func TestSeenSet(t *testing.T) {
	s := NewSeenSet()

	link := Canonicalize("https://target.example/jobs/view/1?x=1")
	if s.Contains(link) {
		t.Error("fresh set should not contain anything")
	}

	s.Add(link)
	if !s.Contains(link) {
		t.Error("added link should be present")
	}

	s.Add(link)
	if s.Len() != 1 {
		t.Errorf("re-adding must not grow the set, len = %d", s.Len())
	}
}
