package ltc

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// ErrClockArithmetic indicates the target time could not be resolved to a
// concrete local instant, typically because the composed timestamp falls in a
// DST gap or the frame carries unusable fields. Callers skip the correction
// cycle rather than guessing.
var ErrClockArithmetic = errors.New("clock arithmetic failed")

// Offset is the operator-declared fixed skew applied to every computed
// target time. The frames component is denominated in the source's own
// frame rate; all components may independently be negative.
type Offset struct {
	Hours        int
	Minutes      int
	Seconds      int
	Frames       int
	Milliseconds int
}

// Active reports whether any component is non-zero. An active offset puts
// the engine in time-turning mode and suppresses drift-based correction.
func (o Offset) Active() bool {
	return o.Hours != 0 || o.Minutes != 0 || o.Seconds != 0 || o.Frames != 0 || o.Milliseconds != 0
}

// ComputeTarget composes the frame's embedded time with the fixed offset
// into an absolute local instant, using the current local calendar date.
func ComputeTarget(frame Frame, offset Offset) (time.Time, error) {
	return ComputeTargetAt(frame, offset, time.Now())
}

// ComputeTargetAt is ComputeTarget with an explicit reference instant. The
// target's calendar date and time zone are taken from now.
func ComputeTargetAt(frame Frame, offset Offset, now time.Time) (time.Time, error) {
	base, err := embeddedWallTime(frame, now)
	if err != nil {
		return time.Time{}, err
	}

	target := base.Add(time.Duration(offset.Hours)*time.Hour +
		time.Duration(offset.Minutes)*time.Minute +
		time.Duration(offset.Seconds)*time.Second)

	// The offset's frames unit is converted at the frame's own rate so a
	// "12 frame" turn means the same interval the source counts in.
	frameOffsetMS := roundHalfAway(float64(offset.Frames) / frame.FrameRate * 1000.0)
	target = target.Add(time.Duration(frameOffsetMS) * time.Millisecond)
	target = target.Add(time.Duration(offset.Milliseconds) * time.Millisecond)
	return target, nil
}

// embeddedWallTime resolves the frame's HH:MM:SS plus its frame-derived
// sub-second component onto now's local date.
func embeddedWallTime(frame Frame, now time.Time) (time.Time, error) {
	if frame.FrameRate <= 0 {
		return time.Time{}, fmt.Errorf("%w: frame rate %.2f is not positive", ErrClockArithmetic, frame.FrameRate)
	}

	base := time.Date(now.Year(), now.Month(), now.Day(),
		frame.Hours, frame.Minutes, frame.Seconds, 0, now.Location())

	// time.Date normalizes nonexistent local times (DST gaps) and
	// out-of-range fields instead of failing. A round-trip mismatch means
	// the composed timestamp does not exist on today's local calendar.
	if base.Day() != now.Day() || base.Hour() != frame.Hours ||
		base.Minute() != frame.Minutes || base.Second() != frame.Seconds {
		return time.Time{}, fmt.Errorf("%w: %02d:%02d:%02d is ambiguous or invalid in %s",
			ErrClockArithmetic, frame.Hours, frame.Minutes, frame.Seconds, now.Location())
	}

	subMS := roundHalfAway(float64(frame.FrameNumber) / frame.FrameRate * 1000.0)
	return base.Add(time.Duration(subMS) * time.Millisecond), nil
}

// roundHalfAway rounds to the nearest integer with ties away from zero,
// matching the decoder's frame-to-millisecond convention.
func roundHalfAway(v float64) int64 {
	return int64(math.Round(v))
}
