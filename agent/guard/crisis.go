package guard

import (
	"regexp"

	contractx "github.com/avamind/ava-core/agent/contract"
)

// CrisisResult reports a detection plus the matched phrase tokens only,
// never surrounding text, so nothing personal reaches the audit log.
type CrisisResult struct {
	Detected       bool
	MatchedPhrases []string
}

// Layer 1: unambiguous phrases; any single match triggers immediately.
// "want to die" is deliberately absent: it false-positives on ironic uses
// ("I want to die laughing") and lives in Layer 2 instead.
var highRiskPattern = regexp.MustCompile(`(?i)\b(kill myself|end my life|suicide|suicidal|don'?t want to live|no reason to live|better off dead|thinking about ending it)\b`)

// Layer 2: ambiguous distress phrases. A hit in the current message alone is
// not enough; the trailing history window must also carry at least two hits.
var contextBoostPattern = regexp.MustCompile(`(?i)\b(hopeless|worthless|nobody cares|no one would miss|can'?t go on|no point|exhausted|trapped|alone|want to die)\b`)

// CrisisResponse is the fixed, non-generative crisis reply.
const CrisisResponse = "Hey... I'm worried about you right now. " +
	"Please reach out to the 988 Suicide & Crisis Lifeline — call or text 988. " +
	"They're there 24/7 and they genuinely want to hear from you. " +
	"I'm still here too — whenever you're ready."

// historyWindowTurns bounds how far back Layer 2 looks (3 exchanges).
const historyWindowTurns = 6

// minHistoryHits is the accumulated-distress threshold for Layer 2.
const minHistoryHits = 2

// CrisisDetector is the two-layer phrase/context gate. Policy: when ambiguous,
// treat as genuine.
type CrisisDetector struct{}

func NewCrisisDetector() *CrisisDetector {
	return &CrisisDetector{}
}

// Check runs both layers against the current message and the trailing history
// window.
func (d *CrisisDetector) Check(text string, recentHistory []contractx.Turn) CrisisResult {
	if hits := highRiskPattern.FindAllString(text, -1); len(hits) > 0 {
		return CrisisResult{Detected: true, MatchedPhrases: hits}
	}

	messageHits := contextBoostPattern.FindAllString(text, -1)
	if len(messageHits) == 0 {
		return CrisisResult{}
	}

	window := recentHistory
	if len(window) > historyWindowTurns {
		window = window[len(window)-historyWindowTurns:]
	}
	var historyHits []string
	for _, turn := range window {
		historyHits = append(historyHits, contextBoostPattern.FindAllString(turn.Content, -1)...)
	}

	if len(historyHits) >= minHistoryHits {
		return CrisisResult{Detected: true, MatchedPhrases: append(messageHits, historyHits...)}
	}
	return CrisisResult{}
}
