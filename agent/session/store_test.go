package session

import (
	"fmt"
	"testing"

	contractx "github.com/avamind/ava-core/agent/contract"
)

func TestGetOrCreateDefaults(t *testing.T) {
	t.Parallel()

	store := NewStore()
	sess := store.GetOrCreate("user-123")

	if got := sess.Mode(); got != contractx.ModeSecretary {
		t.Fatalf("default mode = %s, want %s", got, contractx.ModeSecretary)
	}
	if got := len(sess.HistorySnapshot(contractx.ModeSecretary)); got != 0 {
		t.Fatalf("secretary history len = %d, want 0", got)
	}
	if got := len(sess.HistorySnapshot(contractx.ModeIntimate)); got != 0 {
		t.Fatalf("intimate history len = %d, want 0", got)
	}
}

func TestGetOrCreateIdempotent(t *testing.T) {
	t.Parallel()

	store := NewStore()
	first := store.GetOrCreate("user-abc")
	second := store.GetOrCreate("user-abc")
	if first != second {
		t.Fatal("repeated GetOrCreate returned a different session instance")
	}
}

func TestHistoryIsolation(t *testing.T) {
	t.Parallel()

	store := NewStore()
	sess := store.GetOrCreate("user-1")
	sess.AppendTurn(contractx.ModeSecretary, contractx.Turn{Role: contractx.RoleUser, Content: "hello"})

	if got := len(sess.HistorySnapshot(contractx.ModeSecretary)); got != 1 {
		t.Fatalf("secretary history len = %d, want 1", got)
	}
	if got := len(sess.HistorySnapshot(contractx.ModeIntimate)); got != 0 {
		t.Fatalf("intimate history len = %d, want 0", got)
	}

	sess.AppendTurn(contractx.ModeIntimate, contractx.Turn{Role: contractx.RoleUser, Content: "private"})
	if got := len(sess.HistorySnapshot(contractx.ModeSecretary)); got != 1 {
		t.Fatalf("secretary history len after intimate append = %d, want 1", got)
	}
}

func TestHistoryOverflowDropsOldest(t *testing.T) {
	t.Parallel()

	store := NewStore(WithMaxHistoryTurns(10))
	sess := store.GetOrCreate("user-overflow")
	for i := 0; i < 25; i++ {
		sess.AppendTurn(contractx.ModeSecretary, contractx.Turn{
			Role:    contractx.RoleUser,
			Content: fmt.Sprintf("message %d", i),
		})
	}

	history := sess.HistorySnapshot(contractx.ModeSecretary)
	if len(history) != 10 {
		t.Fatalf("history len = %d, want 10", len(history))
	}
	if got := history[len(history)-1].Content; got != "message 24" {
		t.Fatalf("tail = %q, want newest message retained", got)
	}
	if got := history[0].Content; got != "message 15" {
		t.Fatalf("head = %q, want oldest excess dropped in order", got)
	}
}

func TestSwitchModeClearsPendingPreservesHistory(t *testing.T) {
	t.Parallel()

	store := NewStore()
	sess := store.GetOrCreate("user-3")
	sess.AppendTurn(contractx.ModeSecretary, contractx.Turn{Role: contractx.RoleUser, Content: "work note"})
	sess.AppendTurn(contractx.ModeIntimate, contractx.Turn{Role: contractx.RoleUser, Content: "private note"})
	sess.SetPendingSwitch(contractx.ModeIntimate)

	sess.SwitchMode(contractx.ModeIntimate)

	if got := sess.Mode(); got != contractx.ModeIntimate {
		t.Fatalf("mode = %s, want %s", got, contractx.ModeIntimate)
	}
	if _, ok := sess.PendingSwitch(); ok {
		t.Fatal("pending switch not cleared by SwitchMode")
	}
	if got := sess.HistorySnapshot(contractx.ModeSecretary)[0].Content; got != "work note" {
		t.Fatalf("secretary history changed: %q", got)
	}
	if got := sess.HistorySnapshot(contractx.ModeIntimate)[0].Content; got != "private note" {
		t.Fatalf("intimate history changed: %q", got)
	}
}

func TestSwitchModeLeavesPendingCalendarAdd(t *testing.T) {
	t.Parallel()

	store := NewStore()
	sess := store.GetOrCreate("user-cal")
	sess.SetPendingCalendarAdd(PendingCalendarAdd{UserID: "user-cal", Title: "standup"})

	sess.SwitchMode(contractx.ModeIntimate)

	if _, ok := sess.PendingCalendarAdd(); !ok {
		t.Fatal("pending calendar add cleared by SwitchMode")
	}
}

func TestResetSession(t *testing.T) {
	t.Parallel()

	store := NewStore()
	sess := store.GetOrCreate("user-reset")
	sess.AppendTurn(contractx.ModeSecretary, contractx.Turn{Role: contractx.RoleUser, Content: "hi"})
	sess.SwitchMode(contractx.ModeIntimate)
	sess.SetPendingSwitch(contractx.ModeSecretary)

	store.ResetSession("user-reset")
	fresh := store.GetOrCreate("user-reset")

	if got := fresh.Mode(); got != contractx.ModeSecretary {
		t.Fatalf("mode after reset = %s, want %s", got, contractx.ModeSecretary)
	}
	if got := len(fresh.HistorySnapshot(contractx.ModeSecretary)); got != 0 {
		t.Fatalf("history len after reset = %d, want 0", got)
	}
	if _, ok := fresh.PendingSwitch(); ok {
		t.Fatal("pending switch survived reset")
	}
}

func TestInvalidateCachedProfile(t *testing.T) {
	t.Parallel()

	store := NewStore()
	sess := store.GetOrCreate("user-p")
	sess.CacheProfile(contractx.Profile{Name: "Ava", Persona: "caring"})

	// Cache survives mode switches.
	sess.SwitchMode(contractx.ModeIntimate)
	if _, ok := sess.CachedProfile(); !ok {
		t.Fatal("cached profile lost on mode switch")
	}

	store.InvalidateCachedProfile("user-p")
	if _, ok := sess.CachedProfile(); ok {
		t.Fatal("cached profile survived invalidation")
	}

	// No-op for unknown users.
	store.InvalidateCachedProfile("nobody")
}
