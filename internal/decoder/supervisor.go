package decoder

import (
	"context"
	"log/slog"
	"time"

	"timeturner/internal/logging"
)

// reconnectInterval bounds how long a missing device goes unnoticed when
// hotplug events are unavailable.
const reconnectInterval = 5 * time.Second

// Supervisor keeps the serial pump alive across decoder disconnects. Open
// failures and read errors degrade to a retry loop; the hotplug monitor
// shortcuts the wait when the device node reappears.
type Supervisor struct {
	device   string
	baud     int
	ingestor *Ingestor
	logger   *slog.Logger
	attach   chan struct{}
}

// NewSupervisor creates a supervisor for the configured device.
func NewSupervisor(device string, baud int, ingestor *Ingestor, logger *slog.Logger) *Supervisor {
	return &Supervisor{
		device:   device,
		baud:     baud,
		ingestor: ingestor,
		logger:   logging.NewComponentLogger(logger, "serial-supervisor"),
		attach:   make(chan struct{}, 1),
	}
}

// NotifyAttach wakes a waiting reconnect cycle. Safe from any goroutine.
func (s *Supervisor) NotifyAttach() {
	select {
	case s.attach <- struct{}{}:
	default:
	}
}

// Run blocks until ctx is cancelled, reopening the serial port and pumping
// frames for as long as the device stays present.
func (s *Supervisor) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}

		port, err := OpenSerial(s.device, s.baud)
		if err != nil {
			logging.WarnWithContext(s.logger, "serial port unavailable", "serial_open_failed",
				logging.Error(err),
				logging.String(logging.FieldDevice, s.device),
				logging.String(logging.FieldErrorHint, "check the decoder cable and device permissions"),
				logging.String(logging.FieldImpact, "no timecode frames are being ingested"),
			)
			if !s.waitForRetry(ctx) {
				return
			}
			continue
		}

		s.logger.Info("serial port opened",
			logging.String(logging.FieldEventType, "serial_opened"),
			logging.String(logging.FieldDevice, s.device),
			logging.Int("baud_rate", s.baud),
		)

		// Close the port when ctx ends so the blocking read unblocks.
		done := make(chan struct{})
		go func() {
			select {
			case <-ctx.Done():
				_ = port.Close()
			case <-done:
			}
		}()

		err = s.ingestor.Pump(ctx, port)
		close(done)
		_ = port.Close()

		if ctx.Err() != nil {
			return
		}
		logging.WarnWithContext(s.logger, "decoder stream ended; reconnecting", "serial_stream_ended",
			logging.Error(err),
			logging.String(logging.FieldDevice, s.device),
			logging.String(logging.FieldErrorHint, "check the decoder cable"),
			logging.String(logging.FieldImpact, "timecode ingestion paused until the device returns"),
		)
		if !s.waitForRetry(ctx) {
			return
		}
	}
}

func (s *Supervisor) waitForRetry(ctx context.Context) bool {
	timer := time.NewTimer(reconnectInterval)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-s.attach:
		return true
	case <-timer.C:
		return true
	}
}
