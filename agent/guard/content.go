// Package guard holds the two pure safety gates: the content guard and the
// crisis detector. Neither is mode-aware; the caller decides in which modes
// to invoke each one.
package guard

import (
	"regexp"
	"strings"
)

// ContentResult reports whether a message is blocked and which category won.
type ContentResult struct {
	Blocked  bool
	Category string
}

type contentCategory struct {
	name    string
	pattern *regexp.Regexp
}

// Categories are checked in this fixed priority order; the first match wins.
// Patterns tolerate light obfuscation (ch!ld, ch1ld) via the character-class
// gaps; the two normalization passes in Check cover the rest.
var contentCategories = []contentCategory{
	{"minors", regexp.MustCompile(`(?i)\b(child|ch[^a-z]{0,2}ld|minor|underage|teen\w*|kid|preteen|loli|shota|year.old|juvenile|adolescent)\b`)},
	{"non_consensual", regexp.MustCompile(`(?i)\b(rape|non.?consen\w+|forced|against.{0,10}will|without.{0,10}consent|coerce\w*)\b`)},
	{"illegal_acts", regexp.MustCompile(`(?i)\b(how.to.make.{0,20}(bomb|poison|drug|meth)|synthesis.of|manufacture.{0,10}(weapon|explosive)|instructions.for.{0,20}(meth|explosiv|poiso))\b`)},
	{"bestiality", regexp.MustCompile(`(?i)\b(bestiality|zoophilia|animal.sex|sex.with.{0,10}animal)\b`)},
	{"torture", regexp.MustCompile(`(?i)\b(torture|mutilat\w+|dismember\w+|genital.mutilat\w*)\b`)},
	{"real_people", regexp.MustCompile(`(?i)\b(pretend.{0,20}(you are|you're).{0,30}(president|prime minister|celebrity|politician|famous))\b`)},
}

// RefusalMessages maps a blocked category to its in-character refusal reply.
var RefusalMessages = map[string]string{
	"minors":         "That's not something I'll go there with — minors are completely off the table. Let's take this somewhere else.",
	"non_consensual": "I'm not into that scenario — I only play where everyone's into it. Tell me something that excites you instead?",
	"illegal_acts":   "I can't help with that. Let's keep things between us — what else is on your mind?",
	"bestiality":     "That's a hard no from me. What else can I do for you?",
	"torture":        "That's not a place I'll go. Let's stay somewhere warmer — what do you want to talk about?",
	"real_people":    "I don't roleplay as real public figures — that's not my thing. But I'm right here.",
}

// DefaultRefusalMessage covers categories without a dedicated reply.
const DefaultRefusalMessage = "That's something I won't do. Let me know what else you'd like."

// RefusalFor returns the refusal reply for a category.
func RefusalFor(category string) string {
	if msg, ok := RefusalMessages[category]; ok {
		return msg
	}
	return DefaultRefusalMessage
}

var nonAlnum = regexp.MustCompile(`[^a-zA-Z0-9\s]`)

// ContentGuard matches message text against the prohibited-content categories.
// Patterns compile once at package load. Apply to user INPUT only, never to
// model output.
type ContentGuard struct{}

func NewContentGuard() *ContentGuard {
	return &ContentGuard{}
}

// Check normalizes the input two ways (non-alphanumerics replaced with
// whitespace, and deleted outright) and tests both forms against every
// category. Spacing tricks fall to the first form, symbol insertion ("ch!ld")
// to the second.
func (g *ContentGuard) Check(text string) ContentResult {
	lowered := strings.ToLower(text)
	spaced := nonAlnum.ReplaceAllString(lowered, " ")
	collapsed := nonAlnum.ReplaceAllString(lowered, "")

	for _, cat := range contentCategories {
		if cat.pattern.MatchString(spaced) || cat.pattern.MatchString(collapsed) {
			return ContentResult{Blocked: true, Category: cat.name}
		}
	}
	return ContentResult{}
}
