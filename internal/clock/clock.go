// Package clock owns the privileged wall-clock mutation primitives the sync
// controller delegates to: stepping the clock to an absolute target and
// nudging it by a small signed interval. The engine itself never imports the
// platform syscalls; it only sees the Setter contract.
package clock

import (
	"context"
	"errors"
	"os/exec"
	"strings"
	"time"
)

// ErrSet wraps any failure to mutate the system clock. Callers log and
// surface it; it is never fatal to the process.
var ErrSet = errors.New("set system clock")

// ErrUnsupported is returned on platforms without a clock implementation.
var ErrUnsupported = errors.New("system clock adjustment unsupported on this platform")

// Setter mutates the host wall clock. Implementations must be safe to call
// from the control loop goroutine and must not hold engine locks.
type Setter interface {
	// Set steps the wall clock to the given absolute instant.
	Set(ctx context.Context, target time.Time) error
	// Nudge slews the wall clock by the given signed interval.
	Nudge(ctx context.Context, offset time.Duration) error
}

// ChronyActive reports whether the chrony NTP service is currently active.
// Corrections issued while an NTP daemon disciplines the clock tend to be
// undone, so the status surfaces warn when both are running.
func ChronyActive(ctx context.Context) bool {
	out, err := exec.CommandContext(ctx, "systemctl", "is-active", "chrony").Output()
	if err != nil {
		return false
	}
	return strings.TrimSpace(string(out)) == "active"
}
