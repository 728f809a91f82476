package api

import (
	"time"

	"timeturner/internal/config"
	"timeturner/internal/history"
	"timeturner/internal/logging"
	"timeturner/internal/ltc"
)

// FromSnapshot builds the live sync portion of a Status payload from the
// engine aggregate and current configuration.
func FromSnapshot(snap ltc.Snapshot, cfg *config.Config, now time.Time) Status {
	offsetActive := cfg.TimeturnerOffset().Active()
	status := Status{
		LTCStatus:      LTCNoSignal,
		SystemClock:    now.Format("15:04:05.000"),
		DeltaMS:        snap.DriftMS,
		DeltaFrames:    snap.DriftFrames(),
		JitterMS:       snap.AverageJitterMS,
		JitterFrames:   snap.JitterFrames(),
		SyncStatus:     string(ltc.ClassifySync(snap.DriftMS, offsetActive)),
		JitterStatus:   string(ltc.ClassifyJitter(snap.AverageJitterMS)),
		LockRatio:      snap.LockRatio,
		WallClockMatch: string(snap.WallClockMatch),
		OffsetActive:   offsetActive,
		AutoSync:       cfg.Sync.AutoSyncEnabled,
		SerialDevice:   cfg.Serial.Device,
	}
	if snap.Latest != nil {
		status.LTCStatus = string(snap.Latest.Status)
		status.LTCTimecode = snap.Latest.Timecode()
		status.FrameRate = snap.Latest.FrameRate
	}
	return status
}

// FromConfig extracts the operator-editable configuration subset.
func FromConfig(cfg *config.Config) ConfigPayload {
	return ConfigPayload{
		SerialDevice:     cfg.Serial.Device,
		BaudRate:         cfg.Serial.BaudRate,
		HardwareOffsetMS: cfg.Sync.HardwareOffsetMS,
		AutoSyncEnabled:  cfg.Sync.AutoSyncEnabled,
		DefaultNudgeMS:   cfg.Sync.DefaultNudgeMS,
		Offset: OffsetPayload{
			Hours:        cfg.Offset.Hours,
			Minutes:      cfg.Offset.Minutes,
			Seconds:      cfg.Offset.Seconds,
			Frames:       cfg.Offset.Frames,
			Milliseconds: cfg.Offset.Milliseconds,
		},
	}
}

// ApplyTo folds the payload into a copy of the current configuration and
// returns it. Fields outside the payload keep their current values.
func (p ConfigPayload) ApplyTo(cfg *config.Config) *config.Config {
	updated := *cfg
	updated.Serial.Device = p.SerialDevice
	updated.Serial.BaudRate = p.BaudRate
	updated.Sync.HardwareOffsetMS = p.HardwareOffsetMS
	updated.Sync.AutoSyncEnabled = p.AutoSyncEnabled
	updated.Sync.DefaultNudgeMS = p.DefaultNudgeMS
	updated.Offset.Hours = p.Offset.Hours
	updated.Offset.Minutes = p.Offset.Minutes
	updated.Offset.Seconds = p.Offset.Seconds
	updated.Offset.Frames = p.Offset.Frames
	updated.Offset.Milliseconds = p.Offset.Milliseconds
	return &updated
}

// FromEntry converts a persisted correction into transport form.
func FromEntry(entry history.Entry) HistoryEntry {
	out := HistoryEntry{
		ID:         entry.ID,
		At:         entry.At.Format(dateTimeFormat),
		Trigger:    string(entry.Trigger),
		NudgeMS:    entry.NudgeMS,
		DriftMS:    entry.DriftMS,
		JitterMS:   entry.JitterMS,
		SyncStatus: entry.SyncStatus,
		Outcome:    string(entry.Outcome),
		Error:      entry.Error,
	}
	if entry.Target != nil {
		out.Target = entry.Target.Format(dateTimeFormat)
	}
	return out
}

// FromEntries converts a correction list, newest first.
func FromEntries(entries []history.Entry) []HistoryEntry {
	if len(entries) == 0 {
		return nil
	}
	out := make([]HistoryEntry, 0, len(entries))
	for _, entry := range entries {
		out = append(out, FromEntry(entry))
	}
	return out
}

// FromLogEvents converts buffered log records into transport form.
func FromLogEvents(events []logging.LogEvent) []LogEvent {
	if len(events) == 0 {
		return nil
	}
	out := make([]LogEvent, 0, len(events))
	for _, evt := range events {
		out = append(out, LogEvent{
			Sequence:  evt.Sequence,
			Timestamp: evt.Timestamp,
			Level:     evt.Level,
			Message:   evt.Message,
			Component: evt.Component,
			Fields:    evt.Fields,
		})
	}
	return out
}
