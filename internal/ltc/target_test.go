package ltc_test

import (
	"errors"
	"testing"
	"time"

	"timeturner/internal/ltc"
)

func targetFrame(h, m, s, f int, rate float64) ltc.Frame {
	return ltc.Frame{
		Status:      ltc.StatusLocked,
		Hours:       h,
		Minutes:     m,
		Seconds:     s,
		FrameNumber: f,
		FrameRate:   rate,
		Arrival:     time.Now(),
	}
}

func TestComputeTargetNoOffset(t *testing.T) {
	now := time.Date(2026, 8, 26, 9, 30, 0, 0, time.Local)

	target, err := ltc.ComputeTargetAt(targetFrame(12, 0, 0, 12, 25), ltc.Offset{}, now)
	if err != nil {
		t.Fatalf("ComputeTargetAt returned error: %v", err)
	}

	want := time.Date(2026, 8, 26, 12, 0, 0, 480_000_000, time.Local)
	if !target.Equal(want) {
		t.Fatalf("target = %v, want %v", target, want)
	}
}

func TestComputeTargetRoundsHalfAwayFromZero(t *testing.T) {
	now := time.Date(2026, 8, 26, 9, 30, 0, 0, time.Local)

	// 29 frames at 30fps is 966.67ms which rounds up to 967.
	target, err := ltc.ComputeTargetAt(targetFrame(8, 0, 0, 29, 30), ltc.Offset{}, now)
	if err != nil {
		t.Fatalf("ComputeTargetAt returned error: %v", err)
	}
	if ms := target.Nanosecond() / 1_000_000; ms != 967 {
		t.Fatalf("sub-second component = %dms, want 967ms", ms)
	}
}

func TestComputeTargetWithPositiveOffset(t *testing.T) {
	now := time.Date(2026, 8, 26, 9, 30, 0, 0, time.Local)
	offset := ltc.Offset{Hours: 1, Minutes: 5, Seconds: 10, Frames: 12}

	target, err := ltc.ComputeTargetAt(targetFrame(10, 20, 30, 0, 25), offset, now)
	if err != nil {
		t.Fatalf("ComputeTargetAt returned error: %v", err)
	}

	// The offset's 12 frames at the source's 25fps contribute 480ms.
	want := time.Date(2026, 8, 26, 11, 25, 40, 480_000_000, time.Local)
	if !target.Equal(want) {
		t.Fatalf("target = %v, want %v", target, want)
	}
}

func TestComputeTargetWithNegativeOffset(t *testing.T) {
	now := time.Date(2026, 8, 26, 9, 30, 0, 0, time.Local)
	offset := ltc.Offset{Hours: -1, Minutes: -5, Seconds: -10, Frames: -12}

	// The frame's own 12 frames (480ms) cancel against the offset's -480ms.
	target, err := ltc.ComputeTargetAt(targetFrame(10, 20, 30, 12, 25), offset, now)
	if err != nil {
		t.Fatalf("ComputeTargetAt returned error: %v", err)
	}

	want := time.Date(2026, 8, 26, 9, 15, 20, 0, time.Local)
	if !target.Equal(want) {
		t.Fatalf("target = %v, want %v", target, want)
	}
}

func TestComputeTargetMillisecondsComponent(t *testing.T) {
	now := time.Date(2026, 8, 26, 9, 30, 0, 0, time.Local)
	offset := ltc.Offset{Milliseconds: -480}

	target, err := ltc.ComputeTargetAt(targetFrame(12, 0, 0, 12, 25), offset, now)
	if err != nil {
		t.Fatalf("ComputeTargetAt returned error: %v", err)
	}

	want := time.Date(2026, 8, 26, 12, 0, 0, 0, time.Local)
	if !target.Equal(want) {
		t.Fatalf("target = %v, want %v", target, want)
	}
}

func TestComputeTargetRejectsNonPositiveFrameRate(t *testing.T) {
	now := time.Date(2026, 8, 26, 9, 30, 0, 0, time.Local)

	_, err := ltc.ComputeTargetAt(targetFrame(12, 0, 0, 0, 0), ltc.Offset{}, now)
	if !errors.Is(err, ltc.ErrClockArithmetic) {
		t.Fatalf("expected ErrClockArithmetic, got %v", err)
	}
}

func TestComputeTargetRejectsNonexistentLocalTime(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("zoneinfo unavailable: %v", err)
	}

	// 2026-03-08 02:30 does not exist in America/New_York: clocks jump from
	// 02:00 to 03:00.
	now := time.Date(2026, 3, 8, 12, 0, 0, 0, loc)
	_, err = ltc.ComputeTargetAt(targetFrame(2, 30, 0, 0, 25), ltc.Offset{}, now)
	if !errors.Is(err, ltc.ErrClockArithmetic) {
		t.Fatalf("expected ErrClockArithmetic for DST gap, got %v", err)
	}
}

func TestOffsetActive(t *testing.T) {
	if (ltc.Offset{}).Active() {
		t.Fatal("zero offset must be inactive")
	}
	for _, offset := range []ltc.Offset{
		{Hours: 1},
		{Minutes: -1},
		{Seconds: 2},
		{Frames: -3},
		{Milliseconds: 4},
	} {
		if !offset.Active() {
			t.Fatalf("expected %+v to be active", offset)
		}
	}
}
