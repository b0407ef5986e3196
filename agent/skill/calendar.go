package skill

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
	"github.com/rs/zerolog/log"

	contractx "github.com/avamind/ava-core/agent/contract"
	sessionx "github.com/avamind/ava-core/agent/session"
)

// Reply templates for the calendar skill.
const (
	NotConnectedMsg  = "To use calendar features, connect your calendar: %s"
	CalendarErrorMsg = "Couldn't reach your calendar. Check your account settings."
	RevokedMsg       = "Your calendar access was revoked. Reconnect here: %s"
	MissingTitleMsg  = "What should I call this meeting?"
	MissingTimeMsg   = "When should I schedule that?"
	ConflictMsg      = "You already have '%s' at that time. Add anyway? Reply 'yes' to confirm."
	NoEventsMsg      = "Nothing on your calendar for the next 7 days."
)

const defaultEventDuration = time.Hour

// CalendarSkill handles calendar_add and calendar_view.
//
// Conflict confirmation: when an add collides with an existing event, the
// fully resolved action is parked on the session and ConflictMsg is returned.
// The chat service checks that slot on the NEXT message, before intent
// classification, and calls ExecutePending on confirmation; otherwise "yes"
// would be classified as ordinary chat and the confirmation lost.
type CalendarSkill struct {
	calendar contractx.CalendarClient
	parser   *when.Parser
	now      func() time.Time
}

func NewCalendarSkill(calendar contractx.CalendarClient) *CalendarSkill {
	parser := when.New(nil)
	parser.Add(en.All...)
	parser.Add(common.All...)
	return &CalendarSkill{
		calendar: calendar,
		parser:   parser,
		now:      time.Now,
	}
}

var _ Skill = (*CalendarSkill)(nil)

func (s *CalendarSkill) Handle(ctx context.Context, userID string, intent contractx.ParsedIntent, userTZ string, sess *sessionx.Session) (string, error) {
	switch intent.Skill {
	case contractx.SkillCalendarAdd:
		return s.handleAdd(ctx, userID, intent, userTZ, sess), nil
	case contractx.SkillCalendarView:
		return s.handleView(ctx, userID), nil
	default:
		return "", fmt.Errorf("%w: calendar skill cannot handle intent=%s", contractx.ErrValidation, intent.Skill)
	}
}

func (s *CalendarSkill) handleAdd(ctx context.Context, userID string, intent contractx.ParsedIntent, userTZ string, sess *sessionx.Session) string {
	// Ask for exactly one missing piece at a time.
	if strings.TrimSpace(intent.ExtractedTitle) == "" {
		return MissingTitleMsg
	}
	if strings.TrimSpace(intent.ExtractedDate) == "" {
		return MissingTimeMsg
	}

	start, ok := s.parseUserDate(intent.ExtractedDate, userTZ)
	if !ok {
		// Unparseable dates degrade to the same clarification, never an error.
		return MissingTimeMsg
	}
	window := contractx.TimeWindow{Start: start, End: start.Add(defaultEventDuration)}

	conflicts, err := s.calendar.CheckConflicts(ctx, userID, window)
	if err != nil {
		if reply, ok := s.remediate(ctx, userID, err); ok {
			return reply
		}
		// Conflict check failure is non-fatal: proceed to create.
		log.Error().Err(err).Str("user_id", userID).Msg("calendar conflict check failed")
	}

	if len(conflicts) > 0 {
		sess.SetPendingCalendarAdd(sessionx.PendingCalendarAdd{
			UserID:   userID,
			Title:    intent.ExtractedTitle,
			Window:   window,
			Timezone: userTZ,
		})
		return fmt.Sprintf(ConflictMsg, conflicts[0])
	}

	if err := s.calendar.CreateEvent(ctx, userID, intent.ExtractedTitle, window, userTZ); err != nil {
		if reply, ok := s.remediate(ctx, userID, err); ok {
			return reply
		}
		log.Error().Err(err).Str("user_id", userID).Msg("calendar event creation failed")
		return CalendarErrorMsg
	}

	return addedReply(intent.ExtractedTitle, start)
}

// ExecutePending creates the event from a confirmed pending add, verbatim.
// The original text is never re-parsed.
func (s *CalendarSkill) ExecutePending(ctx context.Context, pending sessionx.PendingCalendarAdd) string {
	if err := s.calendar.CreateEvent(ctx, pending.UserID, pending.Title, pending.Window, pending.Timezone); err != nil {
		if reply, ok := s.remediate(ctx, pending.UserID, err); ok {
			return reply
		}
		log.Error().Err(err).Str("user_id", pending.UserID).Msg("confirmed calendar event creation failed")
		return CalendarErrorMsg
	}
	return addedReply(pending.Title, pending.Window.Start)
}

func (s *CalendarSkill) handleView(ctx context.Context, userID string) string {
	now := s.now()
	window := contractx.TimeWindow{Start: now, End: now.AddDate(0, 0, 7)}

	events, err := s.calendar.ListUpcoming(ctx, userID, window)
	if err != nil {
		if reply, ok := s.remediate(ctx, userID, err); ok {
			return reply
		}
		log.Error().Err(err).Str("user_id", userID).Msg("calendar listing failed")
		return CalendarErrorMsg
	}

	if len(events) == 0 {
		return NoEventsMsg
	}

	lines := make([]string, 0, len(events))
	for _, event := range events {
		title := event.Title
		if title == "" {
			title = "Untitled"
		}
		lines = append(lines, fmt.Sprintf("• %s — %s", eventTime(event.Start), title))
	}
	return strings.Join(lines, "\n")
}

// remediate maps connection-lifecycle failures to their distinct user-facing
// replies. Revocation also drops the stale tokens.
func (s *CalendarSkill) remediate(ctx context.Context, userID string, err error) (string, bool) {
	switch {
	case errors.Is(err, contractx.ErrCalendarRevoked):
		if delErr := s.calendar.DeleteTokens(ctx, userID); delErr != nil {
			log.Error().Err(delErr).Str("user_id", userID).Msg("stale calendar token cleanup failed")
		}
		return fmt.Sprintf(RevokedMsg, s.calendar.AuthURL()), true
	case errors.Is(err, contractx.ErrCalendarNotConnected):
		return fmt.Sprintf(NotConnectedMsg, s.calendar.AuthURL()), true
	default:
		return "", false
	}
}

// parseUserDate parses a natural-language date expression in the user's time
// zone, preferring future occurrences.
func (s *CalendarSkill) parseUserDate(text, userTZ string) (time.Time, bool) {
	loc, err := time.LoadLocation(userTZ)
	if err != nil || userTZ == "" {
		loc = time.UTC
	}
	base := s.now().In(loc)

	result, err := s.parser.Parse(text, base)
	if err != nil || result == nil {
		return time.Time{}, false
	}

	parsed := result.Time
	if parsed.Before(base) {
		// A bare clock time already past today means the next day.
		parsed = parsed.AddDate(0, 0, 1)
	}
	return parsed, true
}

func addedReply(title string, start time.Time) string {
	return fmt.Sprintf("Added: %s · %s · %s", title, start.Format("Mon"), strings.ToLower(start.Format("3:04PM")))
}

func eventTime(t time.Time) string {
	if t.IsZero() {
		return "?"
	}
	formatted := strings.ToLower(t.Format("Mon 3:04PM"))
	return strings.Replace(formatted, ":00", "", 1)
}
