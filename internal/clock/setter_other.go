//go:build !linux

package clock

import (
	"context"
	"time"
)

// SystemSetter is a stub on platforms without clock syscall support. The
// daemon still runs for observation; corrections report ErrUnsupported.
type SystemSetter struct{}

// NewSystemSetter returns the platform clock implementation.
func NewSystemSetter() SystemSetter {
	return SystemSetter{}
}

func (SystemSetter) Set(context.Context, time.Time) error {
	return ErrUnsupported
}

func (SystemSetter) Nudge(context.Context, time.Duration) error {
	return ErrUnsupported
}
