package ltc

import (
	"fmt"
	"time"
)

// LockStatus reports the decoder's confidence in the incoming signal.
type LockStatus string

const (
	// StatusLocked means the decoder is tracking a valid genlock reference.
	StatusLocked LockStatus = "LOCK"
	// StatusFreeRun means the decoder is coasting without a locked reference.
	StatusFreeRun LockStatus = "FREE"
)

// Frame is one decoded LTC observation together with its local arrival
// instant. Field ranges are not enforced here; the decoder owns input
// validation and the engine degrades gracefully on out-of-range values.
type Frame struct {
	Status      LockStatus
	Hours       int
	Minutes     int
	Seconds     int
	FrameNumber int
	FrameRate   float64
	Arrival     time.Time
}

// Timecode renders the embedded time as HH:MM:SS:FF.
func (f Frame) Timecode() string {
	return fmt.Sprintf("%02d:%02d:%02d:%02d", f.Hours, f.Minutes, f.Seconds, f.FrameNumber)
}

// MatchesWallClock compares the embedded HH:MM:SS against the local
// hour/minute/second of now. Sub-second components are ignored.
func (f Frame) MatchesWallClock(now time.Time) bool {
	return now.Hour() == f.Hours && now.Minute() == f.Minutes && now.Second() == f.Seconds
}
