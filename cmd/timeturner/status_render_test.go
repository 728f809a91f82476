package main

import (
	"strings"
	"testing"

	"timeturner/internal/api"
)

func sampleStatus() api.Status {
	return api.Status{
		Running:        true,
		PID:            4242,
		LTCStatus:      "LOCK",
		LTCTimecode:    "10:20:30:12",
		FrameRate:      25.0,
		SystemClock:    "10:20:30.512",
		DeltaMS:        3,
		DeltaFrames:    0,
		JitterMS:       2,
		SyncStatus:     "IN SYNC",
		JitterStatus:   "GOOD",
		LockRatio:      99.3,
		WallClockMatch: "IN SYNC",
		AutoSync:       true,
		SerialDevice:   "/dev/ttyACM0",
		FramesDecoded:  1200,
	}
}

func TestRenderStatusShowsTimecodeAndDaemonSections(t *testing.T) {
	lines := renderStatus(sampleStatus(), false)
	joined := strings.Join(lines, "\n")

	for _, want := range []string{
		"== Timecode ==",
		"== Daemon ==",
		"LOCK 10:20:30:12 @ 25.00fps",
		"+3 ms (+0 frames)",
		"2 ms (GOOD)",
		"IN SYNC",
		"99.3%",
		"yes (pid 4242)",
		"/dev/ttyACM0",
		"1200 decoded, 0 malformed",
	} {
		if !strings.Contains(joined, want) {
			t.Errorf("rendered status missing %q:\n%s", want, joined)
		}
	}
	if strings.Contains(joined, ansiGreen) {
		t.Error("colorize=false output contains ANSI escapes")
	}
}

func TestRenderStatusNoSignal(t *testing.T) {
	status := sampleStatus()
	status.LTCStatus = api.LTCNoSignal
	status.LTCTimecode = ""
	status.FrameRate = 0

	lines := renderStatus(status, false)
	joined := strings.Join(lines, "\n")
	if !strings.Contains(joined, "[ERROR] NO SIGNAL") {
		t.Fatalf("no-signal status not flagged as error:\n%s", joined)
	}
}

func TestRenderStatusColorizesKinds(t *testing.T) {
	lines := renderStatus(sampleStatus(), true)
	joined := strings.Join(lines, "\n")
	if !strings.Contains(joined, ansiGreen) {
		t.Error("expected green for in-sync fields")
	}
	if !strings.Contains(joined, ansiReset) {
		t.Error("expected reset sequences in colorized output")
	}
}

func TestRenderStatusLineAlignment(t *testing.T) {
	line := renderStatusLine("Delta", statusOK, "+3 ms", false)
	if !strings.HasPrefix(line, statusIndent+"Delta:") {
		t.Fatalf("unexpected prefix: %q", line)
	}
	if !strings.Contains(line, "[OK] +3 ms") {
		t.Fatalf("unexpected status text: %q", line)
	}
}

func TestDeltaKind(t *testing.T) {
	cases := map[string]statusKind{
		"IN SYNC":      statusOK,
		"TIME TURNING": statusInfo,
		"CLOCK AHEAD":  statusWarn,
		"CLOCK BEHIND": statusWarn,
	}
	for status, want := range cases {
		if got := deltaKind(status); got != want {
			t.Errorf("deltaKind(%q) = %v, want %v", status, got, want)
		}
	}
}

func TestLockRatioKind(t *testing.T) {
	cases := []struct {
		ratio float64
		want  statusKind
	}{
		{100.0, statusOK},
		{95.0, statusOK},
		{94.9, statusWarn},
		{50.0, statusWarn},
		{49.9, statusError},
		{0.0, statusError},
	}
	for _, tc := range cases {
		if got := lockRatioKind(tc.ratio); got != tc.want {
			t.Errorf("lockRatioKind(%v) = %v, want %v", tc.ratio, got, tc.want)
		}
	}
}

func TestRenderHistoryTable(t *testing.T) {
	entries := []api.HistoryEntry{
		{
			At:       "2026-08-26T12:00:00.000Z",
			Trigger:  "auto",
			Outcome:  "applied",
			DriftMS:  42,
			JitterMS: 3,
			Target:   "2026-08-26T12:00:00.480Z",
		},
		{
			At:      "2026-08-26T12:01:00.000Z",
			Trigger: "nudge",
			Outcome: "applied",
			NudgeMS: -5,
		},
	}
	rendered := renderHistoryTable(entries)
	for _, want := range []string{"auto", "applied", "42", "-5 ms", "2026-08-26T12:00:00.480Z"} {
		if !strings.Contains(rendered, want) {
			t.Errorf("history table missing %q:\n%s", want, rendered)
		}
	}
}
