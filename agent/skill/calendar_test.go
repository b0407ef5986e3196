package skill

import (
	"context"
	"strings"
	"testing"
	"time"

	contractx "github.com/avamind/ava-core/agent/contract"
	sessionx "github.com/avamind/ava-core/agent/session"
)

type fakeCalendar struct {
	conflicts    []string
	conflictsErr error
	createErr    error
	created      []string
	listed       []contractx.CalendarEvent
	listErr      error
	deletedFor   []string
}

func (f *fakeCalendar) CheckConflicts(ctx context.Context, userID string, window contractx.TimeWindow) ([]string, error) {
	if f.conflictsErr != nil {
		return nil, f.conflictsErr
	}
	return f.conflicts, nil
}

func (f *fakeCalendar) CreateEvent(ctx context.Context, userID, title string, window contractx.TimeWindow, timezone string) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, title)
	return nil
}

func (f *fakeCalendar) ListUpcoming(ctx context.Context, userID string, window contractx.TimeWindow) ([]contractx.CalendarEvent, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.listed, nil
}

func (f *fakeCalendar) AuthURL() string {
	return "https://auth.example.com/connect"
}

func (f *fakeCalendar) DeleteTokens(ctx context.Context, userID string) error {
	f.deletedFor = append(f.deletedFor, userID)
	return nil
}

// Monday, 10:00 UTC.
var testNow = time.Date(2026, time.March, 2, 10, 0, 0, 0, time.UTC)

func newTestCalendarSkill(cal *fakeCalendar) *CalendarSkill {
	s := NewCalendarSkill(cal)
	s.now = func() time.Time { return testNow }
	return s
}

func addIntent(title, date string) contractx.ParsedIntent {
	return contractx.ParsedIntent{
		Skill:          contractx.SkillCalendarAdd,
		RawText:        "add " + title + " " + date,
		ExtractedTitle: title,
		ExtractedDate:  date,
	}
}

func TestCalendarAddCreatesEvent(t *testing.T) {
	t.Parallel()

	cal := &fakeCalendar{}
	s := newTestCalendarSkill(cal)
	sess := sessionx.NewStore().GetOrCreate("u1")

	reply, err := s.Handle(context.Background(), "u1", addIntent("dentist", "tomorrow at 3pm"), "UTC", sess)
	if err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if want := "Added: dentist · Tue · 3:00pm"; reply != want {
		t.Fatalf("reply = %q, want %q", reply, want)
	}
	if len(cal.created) != 1 {
		t.Fatalf("created %d events, want 1", len(cal.created))
	}
	if _, ok := sess.PendingCalendarAdd(); ok {
		t.Fatal("no-conflict add must not park a pending confirmation")
	}
}

func TestCalendarAddMissingFields(t *testing.T) {
	t.Parallel()

	s := newTestCalendarSkill(&fakeCalendar{})
	sess := sessionx.NewStore().GetOrCreate("u1")

	reply, err := s.Handle(context.Background(), "u1", addIntent("", "tomorrow at 3pm"), "UTC", sess)
	if err != nil || reply != MissingTitleMsg {
		t.Fatalf("missing title reply = %q err = %v, want %q", reply, err, MissingTitleMsg)
	}

	reply, err = s.Handle(context.Background(), "u1", addIntent("standup", ""), "UTC", sess)
	if err != nil || reply != MissingTimeMsg {
		t.Fatalf("missing time reply = %q err = %v, want %q", reply, err, MissingTimeMsg)
	}

	// Unparseable dates degrade to the same clarification.
	reply, err = s.Handle(context.Background(), "u1", addIntent("standup", "whenever the stars align"), "UTC", sess)
	if err != nil || reply != MissingTimeMsg {
		t.Fatalf("unparseable date reply = %q err = %v, want %q", reply, err, MissingTimeMsg)
	}
}

func TestCalendarAddConflictParksPending(t *testing.T) {
	t.Parallel()

	cal := &fakeCalendar{conflicts: []string{"Team standup"}}
	s := newTestCalendarSkill(cal)
	sess := sessionx.NewStore().GetOrCreate("u1")

	reply, err := s.Handle(context.Background(), "u1", addIntent("dentist", "tomorrow at 3pm"), "UTC", sess)
	if err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if !strings.Contains(reply, "Team standup") {
		t.Fatalf("conflict reply = %q, want conflicting title named", reply)
	}
	if len(cal.created) != 0 {
		t.Fatal("conflicting add must not create the event")
	}

	pending, ok := sess.PendingCalendarAdd()
	if !ok {
		t.Fatal("conflict must park a pending confirmation")
	}
	if pending.Title != "dentist" || pending.UserID != "u1" {
		t.Fatalf("pending = %+v, want resolved action stored verbatim", pending)
	}
	if pending.Window.End.Sub(pending.Window.Start) != time.Hour {
		t.Fatalf("pending window duration = %s, want 1h", pending.Window.End.Sub(pending.Window.Start))
	}
}

func TestExecutePendingCreatesVerbatim(t *testing.T) {
	t.Parallel()

	cal := &fakeCalendar{}
	s := newTestCalendarSkill(cal)
	start := time.Date(2026, time.March, 3, 15, 0, 0, 0, time.UTC)

	reply := s.ExecutePending(context.Background(), sessionx.PendingCalendarAdd{
		UserID:   "u1",
		Title:    "dentist",
		Window:   contractx.TimeWindow{Start: start, End: start.Add(time.Hour)},
		Timezone: "UTC",
	})

	if want := "Added: dentist · Tue · 3:00pm"; reply != want {
		t.Fatalf("reply = %q, want %q", reply, want)
	}
	if len(cal.created) != 1 {
		t.Fatalf("created %d events, want 1", len(cal.created))
	}
}

func TestCalendarRemediation(t *testing.T) {
	t.Parallel()

	cal := &fakeCalendar{conflictsErr: contractx.ErrCalendarNotConnected}
	s := newTestCalendarSkill(cal)
	sess := sessionx.NewStore().GetOrCreate("u1")

	reply, err := s.Handle(context.Background(), "u1", addIntent("dentist", "tomorrow at 3pm"), "UTC", sess)
	if err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if !strings.Contains(reply, cal.AuthURL()) {
		t.Fatalf("not-connected reply = %q, want auth url included", reply)
	}

	cal = &fakeCalendar{conflictsErr: contractx.ErrCalendarRevoked}
	s = newTestCalendarSkill(cal)
	reply, err = s.Handle(context.Background(), "u1", addIntent("dentist", "tomorrow at 3pm"), "UTC", sess)
	if err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if !strings.Contains(reply, "revoked") {
		t.Fatalf("revoked reply = %q, want revocation remediation", reply)
	}
	if len(cal.deletedFor) != 1 || cal.deletedFor[0] != "u1" {
		t.Fatalf("deletedFor = %v, want stale tokens dropped for u1", cal.deletedFor)
	}
}

func TestCalendarView(t *testing.T) {
	t.Parallel()

	cal := &fakeCalendar{}
	s := newTestCalendarSkill(cal)
	sess := sessionx.NewStore().GetOrCreate("u1")
	viewIntent := contractx.ParsedIntent{Skill: contractx.SkillCalendarView, RawText: "what's on my calendar?"}

	reply, err := s.Handle(context.Background(), "u1", viewIntent, "UTC", sess)
	if err != nil || reply != NoEventsMsg {
		t.Fatalf("empty view reply = %q err = %v, want %q", reply, err, NoEventsMsg)
	}

	cal.listed = []contractx.CalendarEvent{
		{Title: "Team standup", Start: time.Date(2026, time.March, 3, 15, 0, 0, 0, time.UTC)},
		{Title: "", Start: time.Date(2026, time.March, 4, 9, 30, 0, 0, time.UTC)},
	}
	reply, err = s.Handle(context.Background(), "u1", viewIntent, "UTC", sess)
	if err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	want := "• Tue 3pm — Team standup\n• Wed 9:30am — Untitled"
	if reply != want {
		t.Fatalf("view reply = %q, want %q", reply, want)
	}
}
