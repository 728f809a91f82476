package decoder

import (
	"regexp"
	"strconv"
	"time"

	"timeturner/internal/ltc"
)

// lineRe matches decoder output such as "[LOCK] 10:20:30:12 | 25.00fps".
// Drop-frame timecode separates the frame count with a semicolon.
var lineRe = regexp.MustCompile(`\[(LOCK|FREE)\]\s+(\d{2}):(\d{2}):(\d{2})[:;](\d{2})\s+\|\s+([\d.]+)fps`)

// ParseLine extracts the frame encoded in one decoder line. The second
// return value is false for lines that do not match the protocol or carry an
// unusable frame rate; such lines are rejected before they can reach the
// engine.
func ParseLine(line string, arrival time.Time) (ltc.Frame, bool) {
	caps := lineRe.FindStringSubmatch(line)
	if caps == nil {
		return ltc.Frame{}, false
	}

	hours, _ := strconv.Atoi(caps[2])
	minutes, _ := strconv.Atoi(caps[3])
	seconds, _ := strconv.Atoi(caps[4])
	frameNumber, _ := strconv.Atoi(caps[5])

	rate, err := strconv.ParseFloat(caps[6], 64)
	if err != nil || rate <= 0 {
		return ltc.Frame{}, false
	}

	return ltc.Frame{
		Status:      ltc.LockStatus(caps[1]),
		Hours:       hours,
		Minutes:     minutes,
		Seconds:     seconds,
		FrameNumber: frameNumber,
		FrameRate:   rate,
		Arrival:     arrival,
	}, true
}
