package skill

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"

	contractx "github.com/avamind/ava-core/agent/contract"
	sessionx "github.com/avamind/ava-core/agent/session"
)

const (
	ResearchErrorMsg  = "Couldn't look that up right now — try again in a moment."
	NoAnswerMsg       = "I'm not fully certain, but this topic doesn't have a clear consensus answer yet. Try rephrasing or ask for a specific aspect of it."
	AmbiguousQueryMsg = "That's a broad topic — are you looking for a general overview, a recent development, or something specific about it?"
)

// minAnswerLength filters out "I don't know" style non-answers from the
// search backend.
const minAnswerLength = 20

// questionStarters marks queries specific enough to dispatch even when short
// (EN + FR interrogative openers).
var questionStarters = map[string]struct{}{
	"what": {}, "how": {}, "why": {}, "when": {}, "where": {}, "who": {}, "which": {},
	"qu": {}, "comment": {}, "pourquoi": {}, "quand": {}, "où": {}, "qui": {},
}

// ResearchSkill forwards lookup queries to the search backend and formats the
// synthesized answer with one source link.
type ResearchSkill struct {
	search contractx.SearchClient
}

func NewResearchSkill(search contractx.SearchClient) *ResearchSkill {
	return &ResearchSkill{search: search}
}

var _ Skill = (*ResearchSkill)(nil)

func (s *ResearchSkill) Handle(ctx context.Context, userID string, intent contractx.ParsedIntent, userTZ string, sess *sessionx.Session) (string, error) {
	query := strings.TrimSpace(intent.Query)
	if query == "" {
		query = strings.TrimSpace(intent.RawText)
	}

	if isQueryAmbiguous(query) {
		return AmbiguousQueryMsg, nil
	}

	answer, err := s.search.Search(ctx, query)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Str("query", query).Msg("search failed")
		return ResearchErrorMsg, nil
	}

	// Empty or minimal answers are "no confident answer", never surfaced
	// verbatim.
	if answer.Answer == "" && answer.SourceURL == "" {
		return ResearchErrorMsg, nil
	}
	if len(strings.TrimSpace(answer.Answer)) < minAnswerLength {
		return NoAnswerMsg, nil
	}

	reply := strings.TrimSpace(answer.Answer)
	if answer.SourceURL != "" {
		reply += "\n\nSource: " + answer.SourceURL
	}
	return reply, nil
}

// isQueryAmbiguous treats short queries without an interrogative opener as
// too broad to dispatch: "physics" needs clarification, "what is quantum
// entanglement" does not.
func isQueryAmbiguous(query string) bool {
	words := strings.Fields(query)
	if len(words) == 0 {
		return true
	}
	if len(words) >= 3 {
		return false
	}
	first := strings.ToLower(strings.TrimRight(words[0], "'?"))
	// "qu'est-ce" and friends reduce to the "qu" opener.
	if idx := strings.IndexAny(first, "'’"); idx > 0 {
		first = first[:idx]
	}
	_, ok := questionStarters[first]
	return !ok
}
