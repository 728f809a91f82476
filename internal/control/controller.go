package control

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"timeturner/internal/clock"
	"timeturner/internal/config"
	"timeturner/internal/logging"
	"timeturner/internal/ltc"
)

// ErrNoLock is returned when a correction is requested but the decoder has
// not produced a locked frame yet.
var ErrNoLock = errors.New("no locked timecode frame available")

// Trigger records what initiated a clock adjustment.
type Trigger string

const (
	TriggerAuto   Trigger = "auto"
	TriggerManual Trigger = "manual"
	TriggerNudge  Trigger = "nudge"
)

// Outcome records whether a clock adjustment took effect.
type Outcome string

const (
	OutcomeApplied Outcome = "applied"
	OutcomeFailed  Outcome = "failed"
)

// Correction describes a single clock adjustment for the audit trail.
type Correction struct {
	At       time.Time
	Trigger  Trigger
	Target   time.Time
	NudgeMS  int64
	DriftMS  int64
	JitterMS int64
	Status   ltc.SyncStatus
	Outcome  Outcome
	Error    string
}

// Recorder persists corrections. Failures are the recorder's problem; the
// control loop never blocks on the audit trail.
type Recorder interface {
	Record(ctx context.Context, c Correction)
}

// loopState is the debounce machine. Transient drift excursions shorter than
// the debounce window must never move the system clock.
type loopState int

const (
	stateStable loopState = iota
	statePending
)

// Controller owns the correction state machine. All mutation happens on Tick
// or through the manual entry points; the mutex covers only the machine
// itself, never a blocking clock call.
type Controller struct {
	ltcState *ltc.State
	cfg      *config.Store
	setter   clock.Setter
	recorder Recorder
	logger   *slog.Logger

	mu           sync.Mutex
	state        loopState
	pendingSince time.Time
}

// NewController wires the correction loop against the shared aggregate.
func NewController(state *ltc.State, cfg *config.Store, setter clock.Setter, recorder Recorder, logger *slog.Logger) *Controller {
	return &Controller{
		ltcState: state,
		cfg:      cfg,
		setter:   setter,
		recorder: recorder,
		logger:   logging.NewComponentLogger(logger, "control"),
	}
}

// Run ticks the state machine until ctx is cancelled. The tick interval is
// re-read from the configuration each cycle so hot reloads take effect.
func (c *Controller) Run(ctx context.Context) {
	for {
		interval := time.Duration(c.cfg.Snapshot().Sync.TickIntervalMS) * time.Millisecond
		if interval <= 0 {
			interval = 50 * time.Millisecond
		}
		timer := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
			c.Tick(ctx, time.Now())
		}
	}
}

// Tick advances the debounce machine one step at the given instant. A status
// inside the correction band must persist for the full debounce window before
// the clock is touched; any in-band observation resets the window.
func (c *Controller) Tick(ctx context.Context, now time.Time) {
	cfg := c.cfg.Snapshot()
	snap := c.ltcState.Snapshot()

	if !cfg.Sync.AutoSyncEnabled || snap.Latest == nil || snap.Latest.Status != ltc.StatusLocked || !snap.DriftValid {
		c.reset()
		return
	}

	offset := cfg.TimeturnerOffset()
	status := ltc.ClassifySync(snap.DriftMS, offset.Active())
	if !status.InCorrectionBand() {
		c.reset()
		return
	}

	debounce := time.Duration(cfg.Sync.DebounceSeconds) * time.Second

	c.mu.Lock()
	switch c.state {
	case stateStable:
		c.state = statePending
		c.pendingSince = now
		c.mu.Unlock()
		c.logger.Debug("drift excursion started",
			logging.Int64("drift_ms", snap.DriftMS),
			logging.String("sync_status", string(status)),
		)
		return
	case statePending:
		if now.Sub(c.pendingSince) < debounce {
			c.mu.Unlock()
			return
		}
		// Window elapsed. Return to stable before the blocking clock call so
		// a slow correction cannot double-fire on the next tick.
		c.state = stateStable
		c.pendingSince = time.Time{}
		c.mu.Unlock()
	default:
		c.mu.Unlock()
		return
	}

	frame := *snap.Latest
	c.correct(ctx, frame, offset, snap, TriggerAuto)
}

// Sync applies an immediate correction from the latest locked frame,
// bypassing the debounce window.
func (c *Controller) Sync(ctx context.Context) error {
	snap := c.ltcState.Snapshot()
	if snap.Latest == nil || snap.Latest.Status != ltc.StatusLocked {
		return ErrNoLock
	}
	offset := c.cfg.Snapshot().TimeturnerOffset()
	c.reset()
	return c.correct(ctx, *snap.Latest, offset, snap, TriggerManual)
}

// Nudge steps the system clock by the given signed millisecond amount. A zero
// amount uses the configured default nudge.
func (c *Controller) Nudge(ctx context.Context, amountMS int64) error {
	if amountMS == 0 {
		amountMS = c.cfg.Snapshot().Sync.DefaultNudgeMS
	}
	snap := c.ltcState.Snapshot()

	err := c.setter.Nudge(ctx, time.Duration(amountMS)*time.Millisecond)

	rec := Correction{
		At:       time.Now(),
		Trigger:  TriggerNudge,
		NudgeMS:  amountMS,
		DriftMS:  snap.DriftMS,
		JitterMS: snap.AverageJitterMS,
		Outcome:  OutcomeApplied,
	}
	if err != nil {
		rec.Outcome = OutcomeFailed
		rec.Error = err.Error()
		logging.ErrorWithContext(c.logger, "clock nudge failed", "nudge_failed",
			logging.Error(err),
			logging.Int64("nudge_ms", amountMS),
			logging.String(logging.FieldErrorHint, "the daemon needs CAP_SYS_TIME or root to adjust the clock"),
			logging.String(logging.FieldImpact, "system clock unchanged"),
		)
	} else {
		c.logger.Info("clock nudged",
			logging.String(logging.FieldEventType, "clock_nudged"),
			logging.Int64("nudge_ms", amountMS),
		)
	}
	if c.recorder != nil {
		c.recorder.Record(ctx, rec)
	}
	return err
}

func (c *Controller) correct(ctx context.Context, frame ltc.Frame, offset ltc.Offset, snap ltc.Snapshot, trigger Trigger) error {
	target, err := ltc.ComputeTarget(frame, offset)
	if err != nil {
		logging.ErrorWithContext(c.logger, "cannot resolve correction target", "target_unresolvable",
			logging.Error(err),
			logging.String("timecode", frame.Timecode()),
			logging.String(logging.FieldImpact, "correction skipped"),
		)
		if c.recorder != nil {
			c.recorder.Record(ctx, Correction{
				At:       time.Now(),
				Trigger:  trigger,
				DriftMS:  snap.DriftMS,
				JitterMS: snap.AverageJitterMS,
				Status:   ltc.ClassifySync(snap.DriftMS, offset.Active()),
				Outcome:  OutcomeFailed,
				Error:    err.Error(),
			})
		}
		return err
	}

	err = c.setter.Set(ctx, target)

	rec := Correction{
		At:       time.Now(),
		Trigger:  trigger,
		Target:   target,
		DriftMS:  snap.DriftMS,
		JitterMS: snap.AverageJitterMS,
		Status:   ltc.ClassifySync(snap.DriftMS, offset.Active()),
		Outcome:  OutcomeApplied,
	}
	if err != nil {
		rec.Outcome = OutcomeFailed
		rec.Error = err.Error()
		logging.ErrorWithContext(c.logger, "clock correction failed", "correction_failed",
			logging.Error(err),
			logging.String("trigger", string(trigger)),
			logging.Time("target", target),
			logging.String(logging.FieldErrorHint, "the daemon needs CAP_SYS_TIME or root to set the clock"),
			logging.String(logging.FieldImpact, "system clock still drifting"),
		)
	} else {
		c.logger.Info("clock corrected",
			logging.String(logging.FieldEventType, "clock_corrected"),
			logging.String("trigger", string(trigger)),
			logging.Time("target", target),
			logging.Int64("drift_ms", snap.DriftMS),
		)
	}
	if c.recorder != nil {
		c.recorder.Record(ctx, rec)
	}
	return err
}

func (c *Controller) reset() {
	c.mu.Lock()
	c.state = stateStable
	c.pendingSince = time.Time{}
	c.mu.Unlock()
}
