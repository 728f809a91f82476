package ltc

// SyncStatus categorizes the smoothed clock delta for operators and for the
// auto-correction loop.
type SyncStatus string

const (
	// SyncTimeTurning means a fixed offset is active; the operator has
	// declared an intentional skew and drift correction must not fight it.
	SyncTimeTurning SyncStatus = "TIME TURNING"
	SyncInSync      SyncStatus = "IN SYNC"
	SyncClockAhead  SyncStatus = "CLOCK AHEAD"
	SyncClockBehind SyncStatus = "CLOCK BEHIND"
)

// InCorrectionBand reports whether the status calls for a clock correction.
func (s SyncStatus) InCorrectionBand() bool {
	return s == SyncClockAhead || s == SyncClockBehind
}

// JitterStatus grades short-term measurement noise.
type JitterStatus string

const (
	JitterGood    JitterStatus = "GOOD"
	JitterAverage JitterStatus = "AVERAGE"
	JitterBad     JitterStatus = "BAD"
)

// ClassifySync maps a smoothed drift value to a sync status. The 8/10 ms
// boundary is asymmetric on purpose: drift in (8,10] resolves to CLOCK
// BEHIND via the else branch. This is a compatibility contract with the
// deployed decoder firmware, not a bug to tidy up.
func ClassifySync(driftMS int64, offsetActive bool) SyncStatus {
	switch {
	case offsetActive:
		return SyncTimeTurning
	case driftMS >= -8 && driftMS <= 8:
		return SyncInSync
	case driftMS > 10:
		return SyncClockAhead
	default:
		return SyncClockBehind
	}
}

// ClassifyJitter maps an average jitter magnitude to a quality grade.
func ClassifyJitter(jitterMS int64) JitterStatus {
	abs := jitterMS
	if abs < 0 {
		abs = -abs
	}
	switch {
	case abs < 10:
		return JitterGood
	case abs < 40:
		return JitterAverage
	default:
		return JitterBad
	}
}
