package contract

import "time"

// Mode is one of the two mutually isolated conversational personas. Each mode
// carries its own history buffer and its own routing rules.
type Mode string

const (
	ModeSecretary Mode = "secretary"
	ModeIntimate  Mode = "intimate"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one message in a mode-scoped history buffer.
type Turn struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Profile is the external per-user companion profile. Absent profile means the
// user has not finished onboarding.
type Profile struct {
	Name     string `json:"name"`
	Persona  string `json:"persona"`
	Timezone string `json:"timezone"`
}

// ParsedIntent is the result of one intent classification call, consumed once
// by skill dispatch.
type ParsedIntent struct {
	Skill          string `json:"skill"`
	RawText        string `json:"raw_text"`
	ExtractedDate  string `json:"extracted_date,omitempty"`
	ExtractedTitle string `json:"extracted_title,omitempty"`
	Query          string `json:"query,omitempty"`
}

const (
	SkillCalendarAdd  = "calendar_add"
	SkillCalendarView = "calendar_view"
	SkillResearch     = "research"
	SkillChat         = "chat"
)

// TimeWindow is a half-open event window [Start, End).
type TimeWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// CalendarEvent is one entry returned by the calendar backend.
type CalendarEvent struct {
	Title string    `json:"title"`
	Start time.Time `json:"start"`
}

// SearchAnswer is the search backend's reply: a synthesized answer plus one
// source link. Either may be empty.
type SearchAnswer struct {
	Answer    string `json:"answer"`
	SourceURL string `json:"source_url"`
}

// AuditEvent records a safety-gate trip. Phrases holds matched phrase tokens
// only, never full message text.
type AuditEvent struct {
	ID       string    `json:"id"`
	UserID   string    `json:"user_id"`
	Kind     string    `json:"kind"`
	Mode     Mode      `json:"mode"`
	Category string    `json:"category,omitempty"`
	Phrases  []string  `json:"phrases,omitempty"`
	At       time.Time `json:"at"`
}

const (
	AuditKindCrisis         = "crisis"
	AuditKindContentBlocked = "content_blocked"
)
