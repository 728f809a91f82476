package history_test

import (
	"context"
	"testing"
	"time"

	"timeturner/internal/config"
	"timeturner/internal/control"
	"timeturner/internal/history"
	"timeturner/internal/logging"
)

func openStore(t *testing.T) *history.Store {
	t.Helper()
	cfg := config.Default()
	cfg.Paths.LogDir = t.TempDir()
	store, err := history.Open(&cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

func TestInsertAndRecent(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	base := time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)
	target := base.Add(100 * time.Millisecond)

	first, err := store.Insert(ctx, control.Correction{
		At:       base,
		Trigger:  control.TriggerAuto,
		Target:   target,
		DriftMS:  42,
		JitterMS: 7,
		Status:   "CLOCK AHEAD",
		Outcome:  control.OutcomeApplied,
	})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if first.ID == "" {
		t.Fatal("entry has no identifier")
	}

	if _, err := store.Insert(ctx, control.Correction{
		At:      base.Add(time.Minute),
		Trigger: control.TriggerNudge,
		NudgeMS: -5,
		Outcome: control.OutcomeApplied,
	}); err != nil {
		t.Fatalf("insert nudge: %v", err)
	}

	entries, err := store.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(entries))
	}
	if entries[0].Trigger != control.TriggerNudge {
		t.Fatalf("newest trigger = %q, want %q", entries[0].Trigger, control.TriggerNudge)
	}
	if entries[0].NudgeMS != -5 {
		t.Fatalf("nudge_ms = %d, want -5", entries[0].NudgeMS)
	}

	oldest := entries[1]
	if oldest.DriftMS != 42 || oldest.JitterMS != 7 {
		t.Fatalf("drift/jitter = %d/%d, want 42/7", oldest.DriftMS, oldest.JitterMS)
	}
	if oldest.Target == nil || !oldest.Target.Equal(target) {
		t.Fatalf("target = %v, want %v", oldest.Target, target)
	}
	if oldest.SyncStatus != "CLOCK AHEAD" {
		t.Fatalf("sync status = %q, want CLOCK AHEAD", oldest.SyncStatus)
	}
}

func TestRecentHonorsLimit(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	base := time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		if _, err := store.Insert(ctx, control.Correction{
			At:      base.Add(time.Duration(i) * time.Second),
			Trigger: control.TriggerAuto,
			Outcome: control.OutcomeApplied,
		}); err != nil {
			t.Fatalf("insert %d: %v", i, err)
		}
	}

	entries, err := store.Recent(ctx, 3)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("entries = %d, want 3", len(entries))
	}
	if !entries[0].At.After(entries[2].At) {
		t.Fatal("entries are not newest first")
	}
}

func TestFailedOutcomeRoundTrips(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	if _, err := store.Insert(ctx, control.Correction{
		At:      time.Now(),
		Trigger: control.TriggerManual,
		Outcome: control.OutcomeFailed,
		Error:   "operation not permitted",
	}); err != nil {
		t.Fatalf("insert: %v", err)
	}

	entries, err := store.Recent(ctx, 1)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if entries[0].Outcome != control.OutcomeFailed {
		t.Fatalf("outcome = %q, want %q", entries[0].Outcome, control.OutcomeFailed)
	}
	if entries[0].Error != "operation not permitted" {
		t.Fatalf("error = %q", entries[0].Error)
	}
	if entries[0].Target != nil {
		t.Fatalf("target = %v, want nil", entries[0].Target)
	}
}

func TestPruneRemovesOldEntries(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	base := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 4; i++ {
		if _, err := store.Insert(ctx, control.Correction{
			At:      base.AddDate(0, 0, i*10),
			Trigger: control.TriggerAuto,
			Outcome: control.OutcomeApplied,
		}); err != nil {
			t.Fatalf("insert %d: %v", i, err)
		}
	}

	removed, err := store.Prune(ctx, base.AddDate(0, 0, 15))
	if err != nil {
		t.Fatalf("prune: %v", err)
	}
	if removed != 2 {
		t.Fatalf("removed = %d, want 2", removed)
	}

	count, err := store.Count(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 2 {
		t.Fatalf("count = %d, want 2", count)
	}
}

func TestRecordSwallowsNothingOnSuccess(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	store.Record(ctx, control.Correction{
		At:      time.Now(),
		Trigger: control.TriggerAuto,
		Outcome: control.OutcomeApplied,
	})

	count, err := store.Count(ctx)
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	if count != 1 {
		t.Fatalf("count = %d, want 1", count)
	}
}
