package decoder

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	"timeturner/internal/logging"
	"timeturner/internal/ltc"
)

// Ingestor folds decoder lines into the shared timecode state. One instance
// survives serial reconnects so the malformed/frame counters cover the
// process lifetime.
type Ingestor struct {
	state    *ltc.State
	offsetMS func() int64
	logger   *slog.Logger

	frames    atomic.Uint64
	malformed atomic.Uint64
}

// NewIngestor wires a pump against the shared state. offsetMS supplies the
// current hardware offset so hot config reloads take effect per frame.
func NewIngestor(state *ltc.State, offsetMS func() int64, logger *slog.Logger) *Ingestor {
	return &Ingestor{
		state:    state,
		offsetMS: offsetMS,
		logger:   logging.NewComponentLogger(logger, "ingest"),
	}
}

// Pump reads lines from r until ctx ends or the reader fails. The reader may
// block indefinitely while no signal is present; callers run Pump on its own
// goroutine so the control and presentation loops proceed on cached state.
func (i *Ingestor) Pump(ctx context.Context, r io.Reader) error {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}

		line := scanner.Text()
		if line == "" {
			continue
		}

		frame, ok := ParseLine(line, time.Now())
		if !ok {
			i.malformed.Add(1)
			i.logger.Debug("discarded undecodable line", logging.String("line", line))
			continue
		}

		i.state.Update(frame, i.offsetMS(), time.Now())
		if i.frames.Add(1) == 1 {
			i.logger.Info("first frame decoded",
				logging.String(logging.FieldEventType, "first_frame"),
				logging.String("timecode", frame.Timecode()),
				logging.Float64("frame_rate", frame.FrameRate),
			)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read decoder stream: %w", err)
	}
	return nil
}

// FrameCount reports the number of frames folded into the state.
func (i *Ingestor) FrameCount() uint64 {
	return i.frames.Load()
}

// MalformedCount reports lines rejected at the parse boundary.
func (i *Ingestor) MalformedCount() uint64 {
	return i.malformed.Load()
}
