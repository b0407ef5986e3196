// Package chat is the orchestration core: one entry point per inbound message,
// routing through the pending-confirmation gates, mode-switch detection, the
// safety gates, skill dispatch, and generation, in that order. Each stage
// short-circuits on producing a reply.
package chat

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	contractx "github.com/avamind/ava-core/agent/contract"
	guardx "github.com/avamind/ava-core/agent/guard"
	modeswitchx "github.com/avamind/ava-core/agent/modeswitch"
	sessionx "github.com/avamind/ava-core/agent/session"
	skillx "github.com/avamind/ava-core/agent/skill"
)

// Scripted control replies. The switch acknowledgments double as the mode's
// entry marker, so they stay stable across persona changes.
const (
	SwitchToIntimateMsg  = "Switching to private mode — just us now 💬"
	SwitchToSecretaryMsg = "Back to work mode."
	AlreadyIntimateMsg   = "We're already in private mode 😉"
	AlreadySecretaryMsg  = "We're already in work mode."

	ClarifyToIntimateMsg  = "Did you mean to switch to private mode? Reply 'yes' or use /intimate."
	ClarifyToSecretaryMsg = "Did you mean to switch back to work mode? Reply 'yes' or use /stop."

	OnboardingPrompt = "You haven't set up your Ava profile yet — visit ava.example.com to get started."
	LLMErrorMsg      = "I'm having trouble thinking right now — try again in a moment."
)

// affirmativeTokens commit a pending confirmation (EN + FR).
var affirmativeTokens = map[string]struct{}{
	"yes": {}, "y": {}, "yeah": {}, "yep": {}, "oui": {},
}

func isAffirmative(text string) bool {
	_, ok := affirmativeTokens[strings.ToLower(strings.TrimSpace(text))]
	return ok
}

// Deps wires the orchestrator. Profiles, LLM, Classifier, and the guards are
// required; Registry, Calendar, Audit, and Archive may be nil, degrading the
// matching stages to pass-through.
type Deps struct {
	Store      *sessionx.Store
	Profiles   contractx.ProfileSource
	Detector   *modeswitchx.Detector
	Content    *guardx.ContentGuard
	Crisis     *guardx.CrisisDetector
	Classifier contractx.IntentClassifier
	Registry   *skillx.Registry
	Calendar   *skillx.CalendarSkill
	LLM        contractx.LLMProvider
	Audit      contractx.AuditSink
	Archive    contractx.MessageArchive
}

// Service is the stateless orchestrator; all conversational state lives in
// the session store. Safe for concurrent use.
type Service struct {
	deps Deps
}

func NewService(deps Deps) *Service {
	if deps.Detector == nil {
		deps.Detector = modeswitchx.NewDetector(modeswitchx.DefaultConfig())
	}
	if deps.Content == nil {
		deps.Content = guardx.NewContentGuard()
	}
	if deps.Crisis == nil {
		deps.Crisis = guardx.NewCrisisDetector()
	}
	return &Service{deps: deps}
}

// HandleMessage processes one inbound message and returns the reply text. It
// is total: every internal failure degrades to a scripted reply.
func (s *Service) HandleMessage(ctx context.Context, userID, text string) string {
	profile, ok := s.resolveProfile(ctx, userID)
	if !ok {
		return OnboardingPrompt
	}

	sess := s.deps.Store.GetOrCreate(userID)

	// Pending mode-switch gate. An affirmative commits; anything else cancels
	// and the message is evaluated normally.
	if target, pending := sess.PendingSwitch(); pending {
		if isAffirmative(text) {
			sess.SwitchMode(target)
			return switchAck(target)
		}
		sess.ClearPendingSwitch()
	}

	// Pending skill-confirmation gate, before intent classification: the
	// affirmative token would otherwise classify as ordinary chat. A decline
	// routes the message straight to classification/generation: detection and
	// the safety gates are deliberately not re-run on a confirmation reply.
	if pending, ok := sess.PendingCalendarAdd(); ok {
		sess.ClearPendingCalendarAdd()
		if isAffirmative(text) && s.deps.Calendar != nil {
			reply := s.deps.Calendar.ExecutePending(ctx, pending)
			s.commitTurns(ctx, sess, text, reply)
			return reply
		}
		reply := s.routeAndGenerate(ctx, sess, profile, text)
		s.commitTurns(ctx, sess, text, reply)
		return reply
	}

	// Mode-switch detection.
	switch result := s.deps.Detector.Detect(text, sess.Mode()); result.Confidence {
	case modeswitchx.ConfidenceExact, modeswitchx.ConfidenceFuzzy:
		if result.Target == sess.Mode() {
			return alreadyAck(result.Target)
		}
		sess.SwitchMode(result.Target)
		return switchAck(result.Target)
	case modeswitchx.ConfidenceAmbiguous:
		sess.SetPendingSwitch(result.Target)
		return clarifyAck(result.Target)
	}

	// Safety gates: crisis in every mode, content blocking only in the
	// private mode. Both replies are fixed, never generated.
	if crisis := s.deps.Crisis.Check(text, sess.HistorySnapshot(sess.Mode())); crisis.Detected {
		s.audit(ctx, contractx.AuditEvent{
			UserID:  userID,
			Kind:    contractx.AuditKindCrisis,
			Mode:    sess.Mode(),
			Phrases: crisis.MatchedPhrases,
		})
		return guardx.CrisisResponse
	}
	if sess.Mode() == contractx.ModeIntimate {
		if blocked := s.deps.Content.Check(text); blocked.Blocked {
			s.audit(ctx, contractx.AuditEvent{
				UserID:   userID,
				Kind:     contractx.AuditKindContentBlocked,
				Mode:     sess.Mode(),
				Category: blocked.Category,
			})
			return guardx.RefusalFor(blocked.Category)
		}
	}

	reply := s.routeAndGenerate(ctx, sess, profile, text)
	s.commitTurns(ctx, sess, text, reply)
	return reply
}

// routeAndGenerate is steps 6 and 7: intent classification and skill dispatch
// in secretary mode, then generation as the universal fallback.
func (s *Service) routeAndGenerate(ctx context.Context, sess *sessionx.Session, profile contractx.Profile, text string) string {
	if sess.Mode() == contractx.ModeSecretary && s.deps.Classifier != nil {
		if reply, handled := s.dispatchSkill(ctx, sess, profile, text); handled {
			return reply
		}
	}
	return s.generate(ctx, sess, profile, text)
}

// dispatchSkill classifies and routes to a skill handler. handled is false
// whenever control should fall through to generation: chat intent, unknown
// skill, classification failure, or handler failure.
func (s *Service) dispatchSkill(ctx context.Context, sess *sessionx.Session, profile contractx.Profile, text string) (string, bool) {
	intent, err := s.deps.Classifier.Classify(ctx, text)
	if err != nil {
		log.Warn().Err(err).Str("user_id", sess.UserID()).Msg("intent classification failed, falling back to chat")
		return "", false
	}
	if intent.Skill == contractx.SkillChat || s.deps.Registry == nil {
		return "", false
	}

	handler, ok := s.deps.Registry.Resolve(intent.Skill)
	if !ok {
		log.Warn().Str("skill", intent.Skill).Msg("no handler registered for classified skill")
		return "", false
	}

	reply, err := handler.Handle(ctx, sess.UserID(), intent, profile.Timezone, sess)
	if err != nil {
		// Dispatch failures are swallowed; generation answers instead.
		log.Error().Err(err).Str("skill", intent.Skill).Str("user_id", sess.UserID()).Msg("skill dispatch failed")
		return "", false
	}
	return reply, true
}

func (s *Service) generate(ctx context.Context, sess *sessionx.Session, profile contractx.Profile, text string) string {
	mode := sess.Mode()
	history := append(sess.HistorySnapshot(mode), contractx.Turn{Role: contractx.RoleUser, Content: text})

	reply, err := s.deps.LLM.Complete(ctx, history, systemPrompt(mode, profile))
	if err != nil {
		log.Error().Err(err).Str("user_id", sess.UserID()).Str("mode", string(mode)).Msg("generation failed")
		return LLMErrorMsg
	}
	return reply
}

// commitTurns appends both turns to the current mode's history and mirrors
// them into the durable archive, best-effort.
func (s *Service) commitTurns(ctx context.Context, sess *sessionx.Session, userText, reply string) {
	userTurn := contractx.Turn{Role: contractx.RoleUser, Content: userText}
	replyTurn := contractx.Turn{Role: contractx.RoleAssistant, Content: reply}
	mode := sess.Mode()
	sess.AppendTurn(mode, userTurn)
	sess.AppendTurn(mode, replyTurn)

	if s.deps.Archive == nil {
		return
	}
	for _, turn := range []contractx.Turn{userTurn, replyTurn} {
		if err := s.deps.Archive.ArchiveTurn(ctx, sess.UserID(), mode, turn); err != nil {
			log.Error().Err(err).Str("user_id", sess.UserID()).Msg("turn archival failed")
		}
	}
}

// audit emits a safety event; failures are logged, never raised.
func (s *Service) audit(ctx context.Context, event contractx.AuditEvent) {
	if s.deps.Audit == nil {
		return
	}
	event.ID = uuid.NewString()
	event.At = time.Now().UTC()
	if err := s.deps.Audit.Append(ctx, event); err != nil {
		log.Error().Err(err).Str("user_id", event.UserID).Str("kind", event.Kind).Msg("audit append failed")
	}
}

func (s *Service) resolveProfile(ctx context.Context, userID string) (contractx.Profile, bool) {
	sess := s.deps.Store.GetOrCreate(userID)
	if profile, ok := sess.CachedProfile(); ok {
		return profile, true
	}

	profile, ok, err := s.deps.Profiles.ProfileFor(ctx, userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("profile lookup failed")
		return contractx.Profile{}, false
	}
	if !ok {
		return contractx.Profile{}, false
	}
	sess.CacheProfile(profile)
	return profile, true
}

func switchAck(target contractx.Mode) string {
	if target == contractx.ModeIntimate {
		return SwitchToIntimateMsg
	}
	return SwitchToSecretaryMsg
}

func alreadyAck(target contractx.Mode) string {
	if target == contractx.ModeIntimate {
		return AlreadyIntimateMsg
	}
	return AlreadySecretaryMsg
}

func clarifyAck(target contractx.Mode) string {
	if target == contractx.ModeIntimate {
		return ClarifyToIntimateMsg
	}
	return ClarifyToSecretaryMsg
}
