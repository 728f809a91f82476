package api

import "time"

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// Status aggregates the daemon's live sync picture for API consumers.
type Status struct {
	Running         bool     `json:"running"`
	PID             int      `json:"pid"`
	LTCStatus       string   `json:"ltcStatus"`
	LTCTimecode     string   `json:"ltcTimecode"`
	FrameRate       float64  `json:"frameRate"`
	SystemClock     string   `json:"systemClock"`
	DeltaMS         int64    `json:"deltaMs"`
	DeltaFrames     int64    `json:"deltaFrames"`
	JitterMS        int64    `json:"jitterMs"`
	JitterFrames    int64    `json:"jitterFrames"`
	SyncStatus      string   `json:"syncStatus"`
	JitterStatus    string   `json:"jitterStatus"`
	LockRatio       float64  `json:"lockRatio"`
	WallClockMatch  string   `json:"wallClockMatch"`
	NTPActive       bool     `json:"ntpActive"`
	OffsetActive    bool     `json:"offsetActive"`
	AutoSync        bool     `json:"autoSync"`
	FramesDecoded   uint64   `json:"framesDecoded"`
	FramesMalformed uint64   `json:"framesMalformed"`
	SerialDevice    string   `json:"serialDevice"`
	Interfaces      []string `json:"interfaces,omitempty"`
	LockFilePath    string   `json:"lockFilePath,omitempty"`
	HistoryDBPath   string   `json:"historyDbPath,omitempty"`
}

// LTCStatus values when no frame has been decoded yet.
const (
	LTCNoSignal = "NO SIGNAL"
)

// ConfigPayload is the operator-editable subset of the configuration,
// round-tripped by the config endpoints.
type ConfigPayload struct {
	SerialDevice     string        `json:"serialDevice"`
	BaudRate         int           `json:"baudRate"`
	HardwareOffsetMS int64         `json:"hardwareOffsetMs"`
	AutoSyncEnabled  bool          `json:"autoSyncEnabled"`
	DefaultNudgeMS   int64         `json:"defaultNudgeMs"`
	Offset           OffsetPayload `json:"offset"`
}

// OffsetPayload mirrors the fixed time-turning offset components.
type OffsetPayload struct {
	Hours        int `json:"hours"`
	Minutes      int `json:"minutes"`
	Seconds      int `json:"seconds"`
	Frames       int `json:"frames"`
	Milliseconds int `json:"milliseconds"`
}

// SyncResponse reports the outcome of a manual correction.
type SyncResponse struct {
	Applied bool   `json:"applied"`
	Target  string `json:"target,omitempty"`
	Error   string `json:"error,omitempty"`
}

// NudgeRequest asks for a one-shot clock step. A zero amount means the
// configured default.
type NudgeRequest struct {
	AmountMS int64 `json:"amountMs"`
}

// NudgeResponse reports the outcome of a clock nudge.
type NudgeResponse struct {
	Applied  bool   `json:"applied"`
	AmountMS int64  `json:"amountMs"`
	Error    string `json:"error,omitempty"`
}

// HistoryEntry is one persisted clock adjustment in transport form.
type HistoryEntry struct {
	ID         string `json:"id"`
	At         string `json:"at"`
	Trigger    string `json:"trigger"`
	Target     string `json:"target,omitempty"`
	NudgeMS    int64  `json:"nudgeMs,omitempty"`
	DriftMS    int64  `json:"driftMs"`
	JitterMS   int64  `json:"jitterMs"`
	SyncStatus string `json:"syncStatus,omitempty"`
	Outcome    string `json:"outcome"`
	Error      string `json:"error,omitempty"`
}

// HistoryResponse wraps a collection of corrections for API responses.
type HistoryResponse struct {
	Entries []HistoryEntry `json:"entries"`
}

// LogEvent is one structured log record in transport form.
type LogEvent struct {
	Sequence  uint64            `json:"sequence"`
	Timestamp time.Time         `json:"timestamp"`
	Level     string            `json:"level"`
	Message   string            `json:"message"`
	Component string            `json:"component,omitempty"`
	Fields    map[string]string `json:"fields,omitempty"`
}

// LogStreamResponse delivers buffered log events plus the next cursor.
type LogStreamResponse struct {
	Events []LogEvent `json:"events"`
	Next   uint64     `json:"next"`
}
