//go:build !linux

package decoder

import (
	"context"
	"log/slog"
)

// HotplugMonitor is a no-op off Linux; the supervisor's retry timer covers
// reconnects.
type HotplugMonitor struct{}

func NewHotplugMonitor(device string, logger *slog.Logger, onAttach func()) *HotplugMonitor {
	return nil
}

func (m *HotplugMonitor) Start(ctx context.Context) error { return nil }

func (m *HotplugMonitor) Stop() {}
