package ltc

import (
	"math"
	"sync"
	"time"
)

const (
	// jitterWindowCap bounds the sliding window of raw jitter samples.
	jitterWindowCap = 20
	// driftAlpha is the EWMA smoothing factor for the clock-delta estimate.
	driftAlpha = 0.1
	// matchCheckSeconds throttles wall-clock-match recomputation.
	matchCheckSeconds = 5
)

// MatchState is the throttled HH:MM:SS comparison against the wall clock.
type MatchState string

const (
	MatchUnknown   MatchState = "UNKNOWN"
	MatchInSync    MatchState = "IN SYNC"
	MatchOutOfSync MatchState = "OUT OF SYNC"
)

// State is the shared timecode aggregate. One instance exists per process
// and is shared by the decoder, the control loop, and the status surfaces;
// all access is serialized by the internal mutex and mutation goes through
// Update so lock transitions and statistics resets stay atomic.
type State struct {
	mu sync.Mutex

	latest      *Frame
	lockedCount uint64
	freeCount   uint64

	jitter     []int64
	drift      float64
	driftValid bool

	wallClockMatch MatchState
	lastMatchCheck int64
}

// NewState returns an empty aggregate with an unknown wall-clock match.
func NewState() *State {
	return &State{
		jitter:         make([]int64, 0, jitterWindowCap),
		wallClockMatch: MatchUnknown,
	}
}

// Update folds one decoded frame into the aggregate. hardwareOffsetMS is the
// configured capture-path latency, subtracted from the raw jitter
// measurement. now is the local receive instant of this call.
func (s *State) Update(frame Frame, hardwareOffsetMS int64, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch frame.Status {
	case StatusLocked:
		s.lockedCount++

		raw := now.Sub(frame.Arrival).Milliseconds() - hardwareOffsetMS
		if len(s.jitter) == jitterWindowCap {
			copy(s.jitter, s.jitter[1:])
			s.jitter = s.jitter[:jitterWindowCap-1]
		}
		s.jitter = append(s.jitter, raw)

		// The drift EWMA tracks local wall clock minus embedded timecode.
		// Frames whose embedded time cannot be resolved leave the estimate
		// untouched rather than corrupting it.
		if embedded, err := embeddedWallTime(frame, now); err == nil {
			delta := float64(now.Sub(embedded).Milliseconds())
			if s.driftValid {
				s.drift = driftAlpha*delta + (1-driftAlpha)*s.drift
			} else {
				s.drift = delta
				s.driftValid = true
			}
		}

		if now.Unix()-s.lastMatchCheck >= matchCheckSeconds {
			if frame.MatchesWallClock(now) {
				s.wallClockMatch = MatchInSync
			} else {
				s.wallClockMatch = MatchOutOfSync
			}
			s.lastMatchCheck = now.Unix()
		}

	case StatusFreeRun:
		// Loss of lock invalidates accumulated history in one step.
		s.freeCount++
		s.jitter = s.jitter[:0]
		s.driftValid = false
		s.drift = 0
		s.wallClockMatch = MatchUnknown
	}

	copied := frame
	s.latest = &copied
}

// LatestFrame returns a copy of the most recent frame, if any.
func (s *State) LatestFrame() (Frame, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.latest == nil {
		return Frame{}, false
	}
	return *s.latest, true
}

// AverageJitter returns the arithmetic mean of the jitter window in
// milliseconds, or 0 when the window is empty.
func (s *State) AverageJitter() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return averageJitterLocked(s.jitter)
}

// DriftMS returns the rounded EWMA clock delta, or 0 before the first
// locked sample.
func (s *State) DriftMS() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.driftValid {
		return 0
	}
	return int64(math.Round(s.drift))
}

// LockRatio returns the percentage of observed frames in LOCK state, or 0
// before any frame has arrived.
func (s *State) LockRatio() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return lockRatioLocked(s.lockedCount, s.freeCount)
}

// WallClockMatch returns the throttled HH:MM:SS comparison result.
func (s *State) WallClockMatch() MatchState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.wallClockMatch
}

// Snapshot captures every reader-facing field under a single lock
// acquisition so the API and UI never observe a torn view.
type Snapshot struct {
	Latest            *Frame
	LockedCount       uint64
	FreeCount         uint64
	LockRatio         float64
	AverageJitterMS   int64
	DriftMS           int64
	DriftValid        bool
	WallClockMatch    MatchState
	JitterSampleCount int
}

// Snapshot returns a consistent copy of the aggregate.
func (s *State) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		LockedCount:       s.lockedCount,
		FreeCount:         s.freeCount,
		LockRatio:         lockRatioLocked(s.lockedCount, s.freeCount),
		AverageJitterMS:   averageJitterLocked(s.jitter),
		DriftValid:        s.driftValid,
		WallClockMatch:    s.wallClockMatch,
		JitterSampleCount: len(s.jitter),
	}
	if s.driftValid {
		snap.DriftMS = int64(math.Round(s.drift))
	}
	if s.latest != nil {
		copied := *s.latest
		snap.Latest = &copied
	}
	return snap
}

// DriftFrames converts the drift estimate into whole frames at the latest
// frame's rate, for display next to the millisecond figure.
func (snap Snapshot) DriftFrames() int64 {
	return msToFrames(snap.DriftMS, snap.Latest)
}

// JitterFrames converts the average jitter into whole frames.
func (snap Snapshot) JitterFrames() int64 {
	return msToFrames(snap.AverageJitterMS, snap.Latest)
}

func msToFrames(ms int64, latest *Frame) int64 {
	if latest == nil || latest.FrameRate <= 0 {
		return 0
	}
	msPerFrame := 1000.0 / latest.FrameRate
	return int64(math.Round(float64(ms) / msPerFrame))
}

func averageJitterLocked(window []int64) int64 {
	if len(window) == 0 {
		return 0
	}
	var sum int64
	for _, v := range window {
		sum += v
	}
	return sum / int64(len(window))
}

func lockRatioLocked(locked, free uint64) float64 {
	total := locked + free
	if total == 0 {
		return 0.0
	}
	return float64(locked) / float64(total) * 100.0
}
