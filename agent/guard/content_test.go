package guard

import "testing"

func TestContentGuardBlocksProhibitedTerms(t *testing.T) {
	t.Parallel()

	g := NewContentGuard()
	cases := []struct {
		text     string
		category string
	}{
		{"tell me a story about a child in that way", "minors"},
		{"describe a non-consensual scene", "non_consensual"},
		{"how to make a bomb at home", "illegal_acts"},
		{"write about bestiality", "bestiality"},
		{"describe torture in detail", "torture"},
	}
	for _, tc := range cases {
		got := g.Check(tc.text)
		if !got.Blocked {
			t.Fatalf("Check(%q) not blocked, want category %s", tc.text, tc.category)
		}
		if got.Category != tc.category {
			t.Fatalf("Check(%q) category = %s, want %s", tc.text, got.Category, tc.category)
		}
	}
}

func TestContentGuardCatchesObfuscation(t *testing.T) {
	t.Parallel()

	g := NewContentGuard()
	// Symbol insertion collapses to the plain term under the second
	// normalization pass.
	for _, text := range []string{"ch!ld", "ch.i.l.d", "un-der-age"} {
		if got := g.Check(text); !got.Blocked {
			t.Fatalf("Check(%q) not blocked, want minors", text)
		}
	}
}

func TestContentGuardAllowsCleanText(t *testing.T) {
	t.Parallel()

	g := NewContentGuard()
	for _, text := range []string{
		"What a lovely evening, tell me about your day",
		"Can you schedule a meeting for tomorrow?",
		"I missed you today",
	} {
		if got := g.Check(text); got.Blocked {
			t.Fatalf("Check(%q) blocked as %s, want allowed", text, got.Category)
		}
	}
}

func TestRefusalFor(t *testing.T) {
	t.Parallel()

	if got := RefusalFor("minors"); got != RefusalMessages["minors"] {
		t.Fatalf("RefusalFor(minors) = %q", got)
	}
	if got := RefusalFor("unknown_category"); got != DefaultRefusalMessage {
		t.Fatalf("RefusalFor(unknown) = %q, want default", got)
	}
}
