package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateSerial(); err != nil {
		return err
	}
	if err := c.validateSync(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	if c.Paths.LogDir == "" {
		return errors.New("paths.log_dir must be set")
	}
	return nil
}

func (c *Config) validateSerial() error {
	if c.Serial.Device == "" {
		return errors.New("serial.device must be set")
	}
	if c.Serial.BaudRate <= 0 {
		return errors.New("serial.baud_rate must be positive")
	}
	return nil
}

func (c *Config) validateSync() error {
	if c.Sync.TickIntervalMS <= 0 {
		return errors.New("sync.tick_interval_ms must be positive")
	}
	if c.Sync.DebounceSeconds <= 0 {
		return errors.New("sync.debounce_seconds must be positive")
	}
	if c.Sync.DefaultNudgeMS == 0 {
		return errors.New("sync.default_nudge_ms must be non-zero")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	if c.Logging.RetentionDays < 0 {
		return errors.New("logging.retention_days must not be negative")
	}
	return nil
}
