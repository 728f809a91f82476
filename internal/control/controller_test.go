package control_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"timeturner/internal/config"
	"timeturner/internal/control"
	"timeturner/internal/logging"
	"timeturner/internal/ltc"
)

type fakeSetter struct {
	mu     sync.Mutex
	sets   []time.Time
	nudges []time.Duration
	err    error
}

func (f *fakeSetter) Set(_ context.Context, target time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sets = append(f.sets, target)
	return nil
}

func (f *fakeSetter) Nudge(_ context.Context, offset time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.nudges = append(f.nudges, offset)
	return nil
}

func (f *fakeSetter) setCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sets)
}

type fakeRecorder struct {
	mu      sync.Mutex
	records []control.Correction
}

func (f *fakeRecorder) Record(_ context.Context, c control.Correction) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = append(f.records, c)
}

func testConfig(autoSync bool) *config.Store {
	cfg := config.Default()
	cfg.Sync.AutoSyncEnabled = autoSync
	return config.NewStore(&cfg, "")
}

var testBase = time.Date(2026, 8, 26, 12, 0, 0, 0, time.Local)

// feedDrift pushes one locked frame whose clock delta is driftMS.
func feedDrift(state *ltc.State, driftMS int64) {
	frame := ltc.Frame{
		Status:    ltc.StatusLocked,
		Hours:     12,
		FrameRate: 25.0,
		Arrival:   testBase,
	}
	state.Update(frame, 0, testBase.Add(time.Duration(driftMS)*time.Millisecond))
}

func feedFreeRun(state *ltc.State) {
	frame := ltc.Frame{Status: ltc.StatusFreeRun, FrameRate: 25.0, Arrival: testBase}
	state.Update(frame, 0, testBase)
}

func TestTickFiresOnceAfterSustainedDrift(t *testing.T) {
	state := ltc.NewState()
	feedDrift(state, 100)

	setter := &fakeSetter{}
	recorder := &fakeRecorder{}
	ctrl := control.NewController(state, testConfig(true), setter, recorder, logging.NewNop())

	ctx := context.Background()
	for s := 0; s <= 10; s++ {
		ctrl.Tick(ctx, testBase.Add(time.Duration(s)*time.Second))
	}

	// Pending starts on the first tick; the window closes 5 s later and the
	// timer restarts, so a second correction would need another full window.
	if got := setter.setCount(); got != 1 {
		t.Fatalf("corrections applied = %d, want 1", got)
	}
	if len(recorder.records) != 1 {
		t.Fatalf("recorded corrections = %d, want 1", len(recorder.records))
	}
	rec := recorder.records[0]
	if rec.Trigger != control.TriggerAuto {
		t.Fatalf("trigger = %q, want %q", rec.Trigger, control.TriggerAuto)
	}
	if rec.Outcome != control.OutcomeApplied {
		t.Fatalf("outcome = %q, want %q", rec.Outcome, control.OutcomeApplied)
	}
	if rec.DriftMS != 100 {
		t.Fatalf("recorded drift = %d, want 100", rec.DriftMS)
	}
}

func TestTickNeverFiresOnOscillatingStatus(t *testing.T) {
	state := ltc.NewState()
	setter := &fakeSetter{}
	ctrl := control.NewController(state, testConfig(true), setter, nil, logging.NewNop())

	// Alternate between drifting lock and signal loss every two seconds for
	// twenty seconds. No excursion lasts the full window.
	ctx := context.Background()
	for s := 0; s <= 20; s++ {
		if s%4 < 2 {
			feedDrift(state, 100)
		} else {
			feedFreeRun(state)
		}
		ctrl.Tick(ctx, testBase.Add(time.Duration(s)*time.Second))
	}

	if got := setter.setCount(); got != 0 {
		t.Fatalf("corrections applied = %d, want 0", got)
	}
}

func TestTickRespectsAutoSyncDisabled(t *testing.T) {
	state := ltc.NewState()
	feedDrift(state, 500)

	setter := &fakeSetter{}
	ctrl := control.NewController(state, testConfig(false), setter, nil, logging.NewNop())

	ctx := context.Background()
	for s := 0; s <= 10; s++ {
		ctrl.Tick(ctx, testBase.Add(time.Duration(s)*time.Second))
	}

	if got := setter.setCount(); got != 0 {
		t.Fatalf("corrections applied = %d, want 0", got)
	}
}

func TestTickSuppressedWhileOffsetActive(t *testing.T) {
	state := ltc.NewState()
	feedDrift(state, 500)

	cfg := config.Default()
	cfg.Sync.AutoSyncEnabled = true
	cfg.Offset.Seconds = 30
	store := config.NewStore(&cfg, "")

	setter := &fakeSetter{}
	ctrl := control.NewController(state, store, setter, nil, logging.NewNop())

	ctx := context.Background()
	for s := 0; s <= 10; s++ {
		ctrl.Tick(ctx, testBase.Add(time.Duration(s)*time.Second))
	}

	if got := setter.setCount(); got != 0 {
		t.Fatalf("corrections applied = %d, want 0", got)
	}
}

func TestSyncBypassesDebounce(t *testing.T) {
	state := ltc.NewState()
	feedDrift(state, 100)

	setter := &fakeSetter{}
	recorder := &fakeRecorder{}
	ctrl := control.NewController(state, testConfig(false), setter, recorder, logging.NewNop())

	if err := ctrl.Sync(context.Background()); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if got := setter.setCount(); got != 1 {
		t.Fatalf("corrections applied = %d, want 1", got)
	}
	target := setter.sets[0]
	if target.Hour() != 12 || target.Minute() != 0 || target.Second() != 0 {
		t.Fatalf("target = %v, want today at 12:00:00", target)
	}
	if recorder.records[0].Trigger != control.TriggerManual {
		t.Fatalf("trigger = %q, want %q", recorder.records[0].Trigger, control.TriggerManual)
	}
}

func TestSyncWithoutLockedFrameFails(t *testing.T) {
	setter := &fakeSetter{}

	ctrl := control.NewController(ltc.NewState(), testConfig(false), setter, nil, logging.NewNop())
	if err := ctrl.Sync(context.Background()); !errors.Is(err, control.ErrNoLock) {
		t.Fatalf("Sync on empty state = %v, want ErrNoLock", err)
	}

	state := ltc.NewState()
	feedFreeRun(state)
	ctrl = control.NewController(state, testConfig(false), setter, nil, logging.NewNop())
	if err := ctrl.Sync(context.Background()); !errors.Is(err, control.ErrNoLock) {
		t.Fatalf("Sync on free-run state = %v, want ErrNoLock", err)
	}
	if got := setter.setCount(); got != 0 {
		t.Fatalf("corrections applied = %d, want 0", got)
	}
}

func TestSyncRecordsFailedOutcome(t *testing.T) {
	state := ltc.NewState()
	feedDrift(state, 100)

	setter := &fakeSetter{err: errors.New("operation not permitted")}
	recorder := &fakeRecorder{}
	ctrl := control.NewController(state, testConfig(false), setter, recorder, logging.NewNop())

	if err := ctrl.Sync(context.Background()); err == nil {
		t.Fatal("expected Sync to propagate the clock error")
	}
	if len(recorder.records) != 1 {
		t.Fatalf("recorded corrections = %d, want 1", len(recorder.records))
	}
	rec := recorder.records[0]
	if rec.Outcome != control.OutcomeFailed {
		t.Fatalf("outcome = %q, want %q", rec.Outcome, control.OutcomeFailed)
	}
	if rec.Error == "" {
		t.Fatal("failed record is missing the error text")
	}
}

func TestNudgeDefaultsToConfiguredStep(t *testing.T) {
	setter := &fakeSetter{}
	recorder := &fakeRecorder{}
	ctrl := control.NewController(ltc.NewState(), testConfig(false), setter, recorder, logging.NewNop())

	if err := ctrl.Nudge(context.Background(), 0); err != nil {
		t.Fatalf("Nudge: %v", err)
	}
	if err := ctrl.Nudge(context.Background(), -7); err != nil {
		t.Fatalf("Nudge: %v", err)
	}

	want := []time.Duration{2 * time.Millisecond, -7 * time.Millisecond}
	if len(setter.nudges) != len(want) {
		t.Fatalf("nudges applied = %d, want %d", len(setter.nudges), len(want))
	}
	for i, n := range setter.nudges {
		if n != want[i] {
			t.Fatalf("nudge[%d] = %v, want %v", i, n, want[i])
		}
	}
	if recorder.records[0].NudgeMS != 2 || recorder.records[1].NudgeMS != -7 {
		t.Fatalf("recorded nudge amounts = %d, %d want 2, -7",
			recorder.records[0].NudgeMS, recorder.records[1].NudgeMS)
	}
}
