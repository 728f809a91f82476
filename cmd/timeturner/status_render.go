package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"timeturner/internal/api"
	"timeturner/internal/ltc"
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
)

const (
	statusLabelWidth = 20
	statusIndent     = "  "
)

func renderStatusLine(label string, kind statusKind, message string, colorize bool) string {
	statusText := statusKindLabel(kind)
	if message != "" {
		statusText = fmt.Sprintf("[%s] %s", statusText, message)
	} else {
		statusText = fmt.Sprintf("[%s]", statusText)
	}
	base := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, label+":", statusText)
	if colorize {
		if color := statusKindColor(kind); color != "" {
			return color + base + ansiReset
		}
	}
	return base
}

func statusKindLabel(kind statusKind) string {
	switch kind {
	case statusOK:
		return "OK"
	case statusWarn:
		return "WARN"
	case statusError:
		return "ERROR"
	default:
		return "INFO"
	}
}

func statusKindColor(kind statusKind) string {
	switch kind {
	case statusOK:
		return ansiGreen
	case statusWarn:
		return ansiYellow
	case statusError:
		return ansiRed
	case statusInfo:
		return ansiBlue
	default:
		return ""
	}
}

func renderSectionHeader(title string, colorize bool) []string {
	line := fmt.Sprintf("== %s ==", strings.TrimSpace(title))
	rule := strings.Repeat("-", len(line))
	if colorize {
		line = ansiBlue + line + ansiReset
		rule = ansiBlue + rule + ansiReset
	}
	return []string{line, rule}
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// renderStatus lays out the full status view, one line per slice entry.
func renderStatus(status api.Status, colorize bool) []string {
	lines := renderSectionHeader("Timecode", colorize)

	ltcKind := statusError
	ltcText := api.LTCNoSignal
	switch status.LTCStatus {
	case string(ltc.StatusLocked):
		ltcKind = statusOK
		ltcText = fmt.Sprintf("%s %s @ %.2ffps", status.LTCStatus, status.LTCTimecode, status.FrameRate)
	case string(ltc.StatusFreeRun):
		ltcKind = statusWarn
		ltcText = fmt.Sprintf("%s %s @ %.2ffps", status.LTCStatus, status.LTCTimecode, status.FrameRate)
	}
	lines = append(lines, renderStatusLine("LTC", ltcKind, ltcText, colorize))
	lines = append(lines, renderStatusLine("System Clock", statusInfo, status.SystemClock, colorize))
	lines = append(lines, renderStatusLine("Delta", deltaKind(status.SyncStatus),
		fmt.Sprintf("%+d ms (%+d frames)", status.DeltaMS, status.DeltaFrames), colorize))
	lines = append(lines, renderStatusLine("Jitter", jitterKind(status.JitterStatus),
		fmt.Sprintf("%d ms (%s)", status.JitterMS, status.JitterStatus), colorize))
	lines = append(lines, renderStatusLine("Sync", deltaKind(status.SyncStatus), status.SyncStatus, colorize))
	lines = append(lines, renderStatusLine("Lock Ratio", lockRatioKind(status.LockRatio),
		fmt.Sprintf("%.1f%%", status.LockRatio), colorize))
	lines = append(lines, renderStatusLine("Wall Clock", statusInfo, status.WallClockMatch, colorize))

	lines = append(lines, "")
	lines = append(lines, renderSectionHeader("Daemon", colorize)...)
	lines = append(lines, renderStatusLine("Running", boolKind(status.Running),
		fmt.Sprintf("%s (pid %d)", yesNo(status.Running), status.PID), colorize))
	lines = append(lines, renderStatusLine("Auto Sync", statusInfo, yesNo(status.AutoSync), colorize))
	offsetKind := statusInfo
	if status.OffsetActive {
		offsetKind = statusWarn
	}
	lines = append(lines, renderStatusLine("Offset Active", offsetKind, yesNo(status.OffsetActive), colorize))
	ntpKind := statusInfo
	if status.NTPActive {
		ntpKind = statusWarn
	}
	lines = append(lines, renderStatusLine("NTP (chrony)", ntpKind, yesNo(status.NTPActive), colorize))
	lines = append(lines, renderStatusLine("Serial Device", statusInfo, status.SerialDevice, colorize))
	lines = append(lines, renderStatusLine("Frames", statusInfo,
		fmt.Sprintf("%d decoded, %d malformed", status.FramesDecoded, status.FramesMalformed), colorize))
	if len(status.Interfaces) > 0 {
		lines = append(lines, renderStatusLine("Interfaces", statusInfo,
			strings.Join(status.Interfaces, ", "), colorize))
	}
	return lines
}

func deltaKind(syncStatus string) statusKind {
	switch syncStatus {
	case string(ltc.SyncInSync):
		return statusOK
	case string(ltc.SyncTimeTurning):
		return statusInfo
	default:
		return statusWarn
	}
}

func jitterKind(jitterStatus string) statusKind {
	switch jitterStatus {
	case string(ltc.JitterGood):
		return statusOK
	case string(ltc.JitterAverage):
		return statusWarn
	default:
		return statusError
	}
}

func lockRatioKind(ratio float64) statusKind {
	switch {
	case ratio >= 95.0:
		return statusOK
	case ratio >= 50.0:
		return statusWarn
	default:
		return statusError
	}
}

func boolKind(value bool) statusKind {
	if value {
		return statusOK
	}
	return statusError
}
