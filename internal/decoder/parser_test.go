package decoder_test

import (
	"testing"
	"time"

	"timeturner/internal/decoder"
	"timeturner/internal/ltc"
)

func TestParseLineLocked(t *testing.T) {
	arrival := time.Date(2026, 8, 26, 10, 20, 31, 0, time.UTC)
	frame, ok := decoder.ParseLine("[LOCK] 10:20:30:12 | 25.00fps", arrival)
	if !ok {
		t.Fatal("expected line to parse")
	}
	if frame.Status != ltc.StatusLocked {
		t.Fatalf("status = %q, want %q", frame.Status, ltc.StatusLocked)
	}
	if frame.Hours != 10 || frame.Minutes != 20 || frame.Seconds != 30 || frame.FrameNumber != 12 {
		t.Fatalf("unexpected timecode fields: %+v", frame)
	}
	if frame.FrameRate != 25.0 {
		t.Fatalf("frame rate = %v, want 25.0", frame.FrameRate)
	}
	if !frame.Arrival.Equal(arrival) {
		t.Fatalf("arrival = %v, want %v", frame.Arrival, arrival)
	}
}

func TestParseLineFreeRun(t *testing.T) {
	frame, ok := decoder.ParseLine("[FREE] 00:00:00:00 | 30.00fps", time.Now())
	if !ok {
		t.Fatal("expected line to parse")
	}
	if frame.Status != ltc.StatusFreeRun {
		t.Fatalf("status = %q, want %q", frame.Status, ltc.StatusFreeRun)
	}
}

func TestParseLineDropFrameSeparator(t *testing.T) {
	frame, ok := decoder.ParseLine("[LOCK] 01:02:03;29 | 29.97fps", time.Now())
	if !ok {
		t.Fatal("expected drop-frame line to parse")
	}
	if frame.FrameNumber != 29 {
		t.Fatalf("frame number = %d, want 29", frame.FrameNumber)
	}
	if frame.FrameRate != 29.97 {
		t.Fatalf("frame rate = %v, want 29.97", frame.FrameRate)
	}
}

func TestParseLineRejectsGarbage(t *testing.T) {
	lines := []string{
		"",
		"hello world",
		"[LOCK] 10:20:30 | 25.00fps",
		"[HOLD] 10:20:30:12 | 25.00fps",
		"[LOCK] 10:20:30:12 | 25.00",
	}
	for _, line := range lines {
		if _, ok := decoder.ParseLine(line, time.Now()); ok {
			t.Errorf("ParseLine(%q) parsed, want reject", line)
		}
	}
}

func TestParseLineRejectsUnusableRate(t *testing.T) {
	if _, ok := decoder.ParseLine("[LOCK] 10:20:30:12 | 1.2.3fps", time.Now()); ok {
		t.Fatal("malformed rate should not parse")
	}
	if _, ok := decoder.ParseLine("[LOCK] 10:20:30:12 | 0.00fps", time.Now()); ok {
		t.Fatal("zero rate should not parse")
	}
}
