// Package modeswitch classifies free text as a mode-switch request. Pure
// classification: no state, no I/O. Trigger vocabulary and thresholds are
// configuration: extending them never touches the detection algorithm.
package modeswitch

import (
	"strings"

	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"

	contractx "github.com/avamind/ava-core/agent/contract"
)

// Confidence is the strength tier of a detected switch intent.
type Confidence string

const (
	ConfidenceExact     Confidence = "exact"     // literal command, act immediately
	ConfidenceFuzzy     Confidence = "fuzzy"     // strong phrase match, act immediately
	ConfidenceAmbiguous Confidence = "ambiguous" // ask the user to confirm
	ConfidenceNone      Confidence = "none"      // normal message
)

// Result is transient, produced per Detect call and never stored.
type Result struct {
	Target     contractx.Mode // meaningful only when Confidence != none
	Confidence Confidence
}

// Config carries the trigger vocabulary and scoring thresholds.
type Config struct {
	Commands         map[string]contractx.Mode
	IntimatePhrases  []string
	SecretaryPhrases []string

	// FuzzyThreshold and AmbiguousThreshold split the [0,100] token-set score
	// into fuzzy / ambiguous / none bands.
	FuzzyThreshold     int
	AmbiguousThreshold int

	// MaxWordsForFuzzy guards long natural messages from matching trigger
	// phrases they happen to contain. Exact commands are immune.
	MaxWordsForFuzzy int
}

// DefaultConfig returns the built-in trigger vocabulary.
func DefaultConfig() Config {
	return Config{
		Commands: map[string]contractx.Mode{
			"/intimate":  contractx.ModeIntimate,
			"/secretary": contractx.ModeSecretary,
			"/stop":      contractx.ModeSecretary,
		},
		IntimatePhrases: []string{
			"i'm alone", "im alone", "let's be alone", "lets be alone",
			"private", "i am alone", "just us", "we're alone", "were alone",
		},
		SecretaryPhrases: []string{
			"stop", "back to work", "secretary mode", "work mode",
			"that's enough", "thats enough", "let's stop", "lets stop",
		},
		FuzzyThreshold:     75,
		AmbiguousThreshold: 50,
		MaxWordsForFuzzy:   10,
	}
}

type Detector struct {
	cfg Config
}

func NewDetector(cfg Config) *Detector {
	if cfg.FuzzyThreshold <= 0 {
		cfg.FuzzyThreshold = 75
	}
	if cfg.AmbiguousThreshold <= 0 {
		cfg.AmbiguousThreshold = 50
	}
	if cfg.MaxWordsForFuzzy <= 0 {
		cfg.MaxWordsForFuzzy = 10
	}
	return &Detector{cfg: cfg}
}

// Detect classifies text, short-circuiting through three stages: exact command
// match, long-message guard, then fuzzy phrase scoring against both trigger
// lists. The higher-scoring list decides the target mode.
func (d *Detector) Detect(text string, currentMode contractx.Mode) Result {
	stripped := strings.ToLower(strings.TrimSpace(text))

	if target, ok := d.cfg.Commands[stripped]; ok {
		return Result{Target: target, Confidence: ConfidenceExact}
	}

	if len(strings.Fields(stripped)) > d.cfg.MaxWordsForFuzzy {
		return Result{Confidence: ConfidenceNone}
	}

	bestScore := 0
	var bestTarget contractx.Mode
	if score := bestPhraseScore(stripped, d.cfg.IntimatePhrases); score > bestScore {
		bestScore = score
		bestTarget = contractx.ModeIntimate
	}
	if score := bestPhraseScore(stripped, d.cfg.SecretaryPhrases); score > bestScore {
		bestScore = score
		bestTarget = contractx.ModeSecretary
	}

	switch {
	case bestScore >= d.cfg.FuzzyThreshold:
		return Result{Target: bestTarget, Confidence: ConfidenceFuzzy}
	case bestScore >= d.cfg.AmbiguousThreshold:
		return Result{Target: bestTarget, Confidence: ConfidenceAmbiguous}
	default:
		return Result{Confidence: ConfidenceNone}
	}
}

func bestPhraseScore(text string, phrases []string) int {
	best := 0
	for _, phrase := range phrases {
		if score := fuzzy.TokenSetRatio(text, phrase); score > best {
			best = score
		}
	}
	return best
}
