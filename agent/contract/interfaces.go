package contract

import "context"

// LLMProvider generates a reply from mode-scoped history plus a system prompt.
// Implementations satisfy it structurally; any number may coexist.
type LLMProvider interface {
	Complete(ctx context.Context, history []Turn, systemPrompt string) (string, error)
}

// IntentClassifier maps free text to a ParsedIntent. Implementations must
// degrade to the chat skill on failure rather than returning an error the
// caller cannot act on.
type IntentClassifier interface {
	Classify(ctx context.Context, text string) (ParsedIntent, error)
}

// CalendarClient is the calendar backend at its conflict-detection contract.
// CheckConflicts and CreateEvent distinguish ErrCalendarNotConnected and
// ErrCalendarRevoked so callers can send the matching remediation reply.
type CalendarClient interface {
	CheckConflicts(ctx context.Context, userID string, window TimeWindow) ([]string, error)
	CreateEvent(ctx context.Context, userID, title string, window TimeWindow, timezone string) error
	ListUpcoming(ctx context.Context, userID string, window TimeWindow) ([]CalendarEvent, error)
	// AuthURL is the re-authorization link included in remediation replies.
	AuthURL() string
	// DeleteTokens drops stale credentials after a revocation is detected.
	DeleteTokens(ctx context.Context, userID string) error
}

// SearchClient is the external lookup capability used by the research skill.
type SearchClient interface {
	Search(ctx context.Context, query string) (SearchAnswer, error)
}

// AuditSink receives safety-gate events, fire-and-forget. Failures are logged
// by callers and never affect the user-facing reply.
type AuditSink interface {
	Append(ctx context.Context, event AuditEvent) error
}

// ProfileSource resolves a user's companion profile. ok is false when the user
// has not finished onboarding.
type ProfileSource interface {
	ProfileFor(ctx context.Context, userID string) (profile Profile, ok bool, err error)
}

// MessageArchive durably records conversation turns, best-effort. The volatile
// session buffer stays authoritative for generation context.
type MessageArchive interface {
	ArchiveTurn(ctx context.Context, userID string, mode Mode, turn Turn) error
}
