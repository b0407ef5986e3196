package modeswitch

import (
	"testing"

	contractx "github.com/avamind/ava-core/agent/contract"
)

func newTestDetector() *Detector {
	return NewDetector(DefaultConfig())
}

func TestExactCommands(t *testing.T) {
	t.Parallel()

	d := newTestDetector()
	cases := []struct {
		text   string
		target contractx.Mode
	}{
		{"/intimate", contractx.ModeIntimate},
		{"/secretary", contractx.ModeSecretary},
		{"/stop", contractx.ModeSecretary},
		{"  /intimate  ", contractx.ModeIntimate},
		{"/STOP", contractx.ModeSecretary},
	}
	for _, tc := range cases {
		got := d.Detect(tc.text, contractx.ModeSecretary)
		if got.Confidence != ConfidenceExact {
			t.Fatalf("Detect(%q) confidence = %s, want exact", tc.text, got.Confidence)
		}
		if got.Target != tc.target {
			t.Fatalf("Detect(%q) target = %s, want %s", tc.text, got.Target, tc.target)
		}
	}
}

func TestFuzzyIntimatePhrases(t *testing.T) {
	t.Parallel()

	d := newTestDetector()
	for _, text := range []string{"i'm alone", "im alone", "lets be alone"} {
		got := d.Detect(text, contractx.ModeSecretary)
		if got.Target != contractx.ModeIntimate {
			t.Fatalf("Detect(%q) target = %s, want intimate", text, got.Target)
		}
		if got.Confidence != ConfidenceFuzzy {
			t.Fatalf("Detect(%q) confidence = %s, want fuzzy", text, got.Confidence)
		}
	}
}

func TestFuzzySecretaryPhrases(t *testing.T) {
	t.Parallel()

	d := newTestDetector()
	for _, text := range []string{"stop", "back to work"} {
		got := d.Detect(text, contractx.ModeIntimate)
		if got.Target != contractx.ModeSecretary {
			t.Fatalf("Detect(%q) target = %s, want secretary", text, got.Target)
		}
		if got.Confidence != ConfidenceFuzzy {
			t.Fatalf("Detect(%q) confidence = %s, want fuzzy", text, got.Confidence)
		}
	}
}

func TestNormalMessagesStayNone(t *testing.T) {
	t.Parallel()

	d := newTestDetector()
	for _, text := range []string{
		"Hello, how are you?",
		"What's the weather today?",
	} {
		got := d.Detect(text, contractx.ModeSecretary)
		if got.Confidence != ConfidenceNone {
			t.Fatalf("Detect(%q) confidence = %s, want none", text, got.Confidence)
		}
	}
}

func TestLongMessageGuard(t *testing.T) {
	t.Parallel()

	d := newTestDetector()
	// "stop" alone is a trigger, but buried in a long sentence it must not fire.
	text := "I'm done and want to stop the project analysis right now because it is late"
	got := d.Detect(text, contractx.ModeIntimate)
	if got.Confidence != ConfidenceNone {
		t.Fatalf("long message confidence = %s, want none", got.Confidence)
	}

	// Exact commands are immune to the length guard by construction; the guard
	// only applies after the command stage.
	if got := d.Detect("/stop", contractx.ModeIntimate); got.Confidence != ConfidenceExact {
		t.Fatalf("command confidence = %s, want exact", got.Confidence)
	}
}

func TestVocabularyIsConfiguration(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.Commands["/work"] = contractx.ModeSecretary
	cfg.IntimatePhrases = append(cfg.IntimatePhrases, "entre nous")
	d := NewDetector(cfg)

	if got := d.Detect("/work", contractx.ModeIntimate); got.Confidence != ConfidenceExact {
		t.Fatalf("extended command confidence = %s, want exact", got.Confidence)
	}
	if got := d.Detect("entre nous", contractx.ModeSecretary); got.Target != contractx.ModeIntimate {
		t.Fatalf("extended phrase target = %s, want intimate", got.Target)
	}
}
