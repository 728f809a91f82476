package config

const (
	defaultSerialDevice    = "/dev/ttyACM0"
	defaultSerialBaudRate  = 115200
	defaultLogDir          = "~/.local/share/timeturner/logs"
	defaultLogRetention    = 30
	defaultLogFormat       = "console"
	defaultLogLevel        = "info"
	defaultAPIBind         = "0.0.0.0:8080"
	defaultNudgeMS         = 2
	defaultTickIntervalMS  = 50
	defaultDebounceSeconds = 5
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Serial: Serial{
			Device:   defaultSerialDevice,
			BaudRate: defaultSerialBaudRate,
		},
		Sync: Sync{
			DefaultNudgeMS:  defaultNudgeMS,
			TickIntervalMS:  defaultTickIntervalMS,
			DebounceSeconds: defaultDebounceSeconds,
		},
		Paths: Paths{
			LogDir:  defaultLogDir,
			APIBind: defaultAPIBind,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetention,
		},
	}
}
