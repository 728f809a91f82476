package ltc_test

import (
	"testing"

	"timeturner/internal/ltc"
)

func TestClassifySync(t *testing.T) {
	cases := []struct {
		name         string
		driftMS      int64
		offsetActive bool
		want         ltc.SyncStatus
	}{
		{"zero drift", 0, false, ltc.SyncInSync},
		{"upper in-sync bound", 8, false, ltc.SyncInSync},
		{"lower in-sync bound", -8, false, ltc.SyncInSync},
		{"dead zone 9", 9, false, ltc.SyncClockBehind},
		{"dead zone 10", 10, false, ltc.SyncClockBehind},
		{"clock ahead", 11, false, ltc.SyncClockAhead},
		{"large positive", 5000, false, ltc.SyncClockAhead},
		{"negative beyond band", -9, false, ltc.SyncClockBehind},
		{"large negative", -100, false, ltc.SyncClockBehind},
		{"offset overrides drift", 5000, true, ltc.SyncTimeTurning},
		{"offset overrides in-sync", 0, true, ltc.SyncTimeTurning},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ltc.ClassifySync(tc.driftMS, tc.offsetActive); got != tc.want {
				t.Fatalf("ClassifySync(%d, %v) = %s, want %s", tc.driftMS, tc.offsetActive, got, tc.want)
			}
		})
	}
}

func TestClassifyJitter(t *testing.T) {
	cases := []struct {
		jitterMS int64
		want     ltc.JitterStatus
	}{
		{0, ltc.JitterGood},
		{9, ltc.JitterGood},
		{-9, ltc.JitterGood},
		{10, ltc.JitterAverage},
		{39, ltc.JitterAverage},
		{-39, ltc.JitterAverage},
		{40, ltc.JitterBad},
		{-40, ltc.JitterBad},
		{500, ltc.JitterBad},
	}
	for _, tc := range cases {
		if got := ltc.ClassifyJitter(tc.jitterMS); got != tc.want {
			t.Fatalf("ClassifyJitter(%d) = %s, want %s", tc.jitterMS, got, tc.want)
		}
	}
}

func TestSyncStatusCorrectionBand(t *testing.T) {
	if ltc.SyncInSync.InCorrectionBand() || ltc.SyncTimeTurning.InCorrectionBand() {
		t.Fatal("stable statuses must not request correction")
	}
	if !ltc.SyncClockAhead.InCorrectionBand() || !ltc.SyncClockBehind.InCorrectionBand() {
		t.Fatal("out-of-sync statuses must request correction")
	}
}
