//go:build linux

package clock

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sys/unix"
)

// SystemSetter adjusts the host clock through the Linux time syscalls.
// Both operations require CAP_SYS_TIME.
type SystemSetter struct{}

// NewSystemSetter returns the platform clock implementation.
func NewSystemSetter() SystemSetter {
	return SystemSetter{}
}

// Set steps CLOCK_REALTIME to the target instant via clock_settime(2).
func (SystemSetter) Set(_ context.Context, target time.Time) error {
	ts := unix.NsecToTimespec(target.UnixNano())
	if err := unix.ClockSettime(unix.CLOCK_REALTIME, &ts); err != nil {
		return fmt.Errorf("%w: clock_settime to %s: %v", ErrSet, target.Format(time.RFC3339Nano), err)
	}
	return nil
}

// Nudge applies a single-shot offset via adjtimex(2), letting the kernel
// slew rather than step for small corrections.
func (SystemSetter) Nudge(_ context.Context, offset time.Duration) error {
	tx := unix.Timex{
		Modes:  unix.ADJ_OFFSET_SINGLESHOT,
		Offset: offset.Microseconds(),
	}
	if _, err := unix.Adjtimex(&tx); err != nil {
		return fmt.Errorf("%w: adjtimex offset %s: %v", ErrSet, offset, err)
	}
	return nil
}
