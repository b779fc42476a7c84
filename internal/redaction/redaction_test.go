package redaction

import (
	"testing"
	"time"

	"parley/pkg/brain"
	"parley/pkg/models"
	"parley/pkg/state"
	"parley/pkg/store"
)

// Runs first: RunImmediate must refuse to sweep before Register has been
// called. Later tests in this file register a brain, so order matters.
func TestRunImmediateUnregistered(t *testing.T) {
	if _, err := RunImmediate(); err == nil {
		t.Fatalf("expected error before Register")
	}
}

func TestFileLeaseLifecycle(t *testing.T) {
	lease := NewFileLease(t.TempDir())

	ok, err := lease.Acquire("owner-a", time.Minute)
	if err != nil || !ok {
		t.Fatalf("first acquire: ok=%v err=%v", ok, err)
	}

	ok, err = lease.Acquire("owner-b", time.Minute)
	if err != nil {
		t.Fatalf("foreign acquire errored: %v", err)
	}
	if ok {
		t.Fatalf("foreign acquire must fail while lease is live")
	}

	// same owner re-acquires freely
	ok, err = lease.Acquire("owner-a", time.Minute)
	if err != nil || !ok {
		t.Fatalf("re-acquire: ok=%v err=%v", ok, err)
	}

	if err := lease.Renew("owner-b", time.Minute); err == nil {
		t.Fatalf("foreign renew must fail")
	}
	if err := lease.Renew("owner-a", time.Minute); err != nil {
		t.Fatalf("owner renew: %v", err)
	}

	if err := lease.Release("owner-b"); err == nil {
		t.Fatalf("foreign release must fail")
	}
	if err := lease.Release("owner-a"); err != nil {
		t.Fatalf("owner release: %v", err)
	}

	ok, err = lease.Acquire("owner-b", time.Minute)
	if err != nil || !ok {
		t.Fatalf("acquire after release: ok=%v err=%v", ok, err)
	}
}

func TestFileLeaseExpiryAllowsTakeover(t *testing.T) {
	lease := NewFileLease(t.TempDir())
	if ok, err := lease.Acquire("owner-a", -time.Second); err != nil || !ok {
		t.Fatalf("acquire expired lease: ok=%v err=%v", ok, err)
	}
	ok, err := lease.Acquire("owner-b", time.Minute)
	if err != nil || !ok {
		t.Fatalf("takeover of expired lease: ok=%v err=%v", ok, err)
	}
}

func setupSweep(t *testing.T) *brain.Brain {
	t.Helper()
	dbPath := t.TempDir()
	if err := state.EnsureStateDirs(dbPath); err != nil {
		t.Fatalf("EnsureStateDirs: %v", err)
	}
	if err := store.Open(state.PathsVar.Store); err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	b := brain.New(brain.Options{})
	if _, err := b.HandleInbound("u", "the secret plan leaked", 1, "", "s1"); err != nil {
		t.Fatalf("HandleInbound: %v", err)
	}
	if _, err := b.HandleInbound("u", "nothing noteworthy here", 2, "", "s2"); err != nil {
		t.Fatalf("HandleInbound: %v", err)
	}
	if err := b.RecordFeedback([]models.Feedback{{Content: "classified memo", Up: 1}}); err != nil {
		t.Fatalf("RecordFeedback: %v", err)
	}
	return b
}

func TestRunImmediateSweepsRegisteredPhrases(t *testing.T) {
	b := setupSweep(t)
	Register(b, []string{"secret", "  ", "classified"})

	res, err := RunImmediate()
	if err != nil {
		t.Fatalf("RunImmediate: %v", err)
	}
	if res.Messages != 1 || res.Feedback != 1 {
		t.Fatalf("unexpected sweep result: %+v", res)
	}

	st := b.Stats()
	if st.Messages != 1 || st.Feedback != 0 {
		t.Fatalf("state after sweep: %+v", st)
	}
}

func TestRunImmediateBlockedByForeignLease(t *testing.T) {
	b := setupSweep(t)
	Register(b, []string{"secret"})

	lease := NewFileLease(state.PathsVar.Redaction)
	if ok, err := lease.Acquire("other-process", time.Minute); err != nil || !ok {
		t.Fatalf("pre-acquire: ok=%v err=%v", ok, err)
	}
	t.Cleanup(func() { _ = lease.Release("other-process") })

	if _, err := RunImmediate(); err == nil {
		t.Fatalf("sweep must refuse to run while another owner holds the lease")
	}
}

func TestRunImmediateNoPhrasesIsNoop(t *testing.T) {
	b := setupSweep(t)
	Register(b, nil)

	res, err := RunImmediate()
	if err != nil {
		t.Fatalf("RunImmediate: %v", err)
	}
	if res != (brain.PurgeResult{}) {
		t.Fatalf("noop sweep must purge nothing: %+v", res)
	}
	if b.Stats().Messages != 2 {
		t.Fatalf("noop sweep mutated state")
	}
}
