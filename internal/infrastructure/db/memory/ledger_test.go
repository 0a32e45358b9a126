package memory

import (
	"context"
	"fmt"
	"reflect"
	"sync"
	"testing"
)

func usableCount(l *Ledger, principalID string) int {
	n := 0
	for _, rec := range l.Records(principalID) {
		if rec.Usable() {
			n++
		}
	}
	return n
}

func TestLedger_IssueAndFindUsable(t *testing.T) {
	ctx := context.Background()
	l := NewLedger()

	rec, err := l.Issue(ctx, "t1", "p1")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if rec.ID == "" || rec.LoggedOut || rec.Revoked || rec.PrincipalID != "p1" {
		t.Fatalf("unexpected record: %+v", rec)
	}

	got, ok, err := l.FindUsable(ctx, "t1")
	if err != nil || !ok || got.Token != "t1" {
		t.Fatalf("FindUsable: %+v %v %v", got, ok, err)
	}

	if _, ok, err := l.FindUsable(ctx, "unknown"); ok || err != nil {
		t.Fatalf("unknown token: ok=%v err=%v", ok, err)
	}
}

func TestLedger_IssueRejectsDuplicatesAndEmpty(t *testing.T) {
	ctx := context.Background()
	l := NewLedger()

	if _, err := l.Issue(ctx, "", "p1"); err == nil {
		t.Fatalf("expected error for empty token")
	}
	_, _ = l.Issue(ctx, "t1", "p1")
	if _, err := l.Issue(ctx, "t1", "p1"); err == nil {
		t.Fatalf("expected duplicate error")
	}
	if _, err := l.IssueExclusive(ctx, "t1", "p1"); err == nil {
		t.Fatalf("expected duplicate error from IssueExclusive")
	}
	if usableCount(l, "p1") != 1 {
		t.Fatalf("rejected IssueExclusive must not revoke")
	}
}

func TestLedger_IssueExclusiveRevokesPrevious(t *testing.T) {
	ctx := context.Background()
	l := NewLedger()

	if _, err := l.IssueExclusive(ctx, "t1", "p1"); err != nil {
		t.Fatalf("IssueExclusive: %v", err)
	}
	if _, err := l.IssueExclusive(ctx, "other", "p2"); err != nil {
		t.Fatalf("IssueExclusive: %v", err)
	}
	if _, err := l.IssueExclusive(ctx, "t2", "p1"); err != nil {
		t.Fatalf("IssueExclusive: %v", err)
	}

	if _, ok, _ := l.FindUsable(ctx, "t1"); ok {
		t.Fatalf("t1 should have been revoked")
	}
	if _, ok, _ := l.FindUsable(ctx, "t2"); !ok {
		t.Fatalf("t2 should be usable")
	}
	if _, ok, _ := l.FindUsable(ctx, "other"); !ok {
		t.Fatalf("another principal's token must be untouched")
	}

	recs := l.Records("p1")
	if len(recs) != 2 || !recs[0].Revoked || recs[0].LoggedOut {
		t.Fatalf("expected revoked audit record, got %+v", recs)
	}
}

func TestLedger_RevokeAllUsable(t *testing.T) {
	ctx := context.Background()
	l := NewLedger()
	_, _ = l.Issue(ctx, "t1", "p1")
	_, _ = l.Issue(ctx, "t2", "p1")

	n, err := l.RevokeAllUsable(ctx, "p1")
	if err != nil || n != 2 {
		t.Fatalf("RevokeAllUsable: n=%d err=%v", n, err)
	}
	n, _ = l.RevokeAllUsable(ctx, "p1")
	if n != 0 {
		t.Fatalf("second revoke should flip nothing, got %d", n)
	}
}

func TestLedger_MarkLoggedOutIsIdempotent(t *testing.T) {
	ctx := context.Background()
	l := NewLedger()
	_, _ = l.Issue(ctx, "t1", "p1")

	if err := l.MarkLoggedOut(ctx, "t1"); err != nil {
		t.Fatalf("MarkLoggedOut: %v", err)
	}
	once := l.Records("p1")

	if err := l.MarkLoggedOut(ctx, "t1"); err != nil {
		t.Fatalf("MarkLoggedOut again: %v", err)
	}
	twice := l.Records("p1")

	if !reflect.DeepEqual(once, twice) {
		t.Fatalf("state changed on second logout:\n%+v\n%+v", once, twice)
	}
	if _, ok, _ := l.FindUsable(ctx, "t1"); ok {
		t.Fatalf("logged out token must not be usable")
	}
	if err := l.MarkLoggedOut(ctx, "never-issued"); err != nil {
		t.Fatalf("unknown token should be a no-op, got %v", err)
	}
}

func TestLedger_ConcurrentLoginsLeaveOneUsable(t *testing.T) {
	ctx := context.Background()
	l := NewLedger()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if _, err := l.IssueExclusive(ctx, fmt.Sprintf("t%d", i), "p1"); err != nil {
				t.Errorf("IssueExclusive: %v", err)
			}
		}(i)
	}
	wg.Wait()

	if got := usableCount(l, "p1"); got != 1 {
		t.Fatalf("expected exactly one usable token, got %d", got)
	}
	if got := len(l.Records("p1")); got != 50 {
		t.Fatalf("expected 50 audit records, got %d", got)
	}
}

func TestLedger_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	l := NewLedger()

	if _, err := l.Issue(ctx, "t1", "p1"); err == nil {
		t.Fatalf("expected context error")
	}
	if _, _, err := l.FindUsable(ctx, "t1"); err == nil {
		t.Fatalf("expected context error")
	}
}
