package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"timeturner/internal/ltc"
)

//go:embed sample_config.toml
var sampleConfig string

// Serial describes the LTC decoder's serial connection.
type Serial struct {
	Device   string `toml:"device"`
	BaudRate int    `toml:"baud_rate"`
}

// Sync contains the correction engine's tunables.
type Sync struct {
	// HardwareOffsetMS compensates capture-path latency; it is subtracted
	// from every raw jitter measurement.
	HardwareOffsetMS int64 `toml:"hardware_offset_ms"`
	AutoSyncEnabled  bool  `toml:"auto_sync_enabled"`
	DefaultNudgeMS   int64 `toml:"default_nudge_ms"`
	TickIntervalMS   int   `toml:"tick_interval_ms"`
	DebounceSeconds  int   `toml:"debounce_seconds"`
}

// Offset is the operator-declared fixed "time turning" skew, composited onto
// every computed target time. Any non-zero component activates it.
type Offset struct {
	Hours        int `toml:"hours"`
	Minutes      int `toml:"minutes"`
	Seconds      int `toml:"seconds"`
	Frames       int `toml:"frames"`
	Milliseconds int `toml:"milliseconds"`
}

// Paths contains directory and bind address configuration.
type Paths struct {
	LogDir   string `toml:"log_dir"`
	APIBind  string `toml:"api_bind"`
	APIToken string `toml:"api_token"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	RetentionDays int    `toml:"retention_days"`
}

// Config encapsulates all configuration values for timeturner.
//
// Configuration sections by subsystem:
//   - Serial: decoder device and baud rate
//   - Sync: hardware offset, auto-sync enablement, nudge default, loop timing
//   - Offset: fixed timeturner offset (hours through milliseconds)
//   - Paths: log directory and HTTP API bind/token
//   - Logging: log format, level, and retention
type Config struct {
	Serial  Serial  `toml:"serial"`
	Sync    Sync    `toml:"sync"`
	Offset  Offset  `toml:"offset"`
	Paths   Paths   `toml:"paths"`
	Logging Logging `toml:"logging"`
}

// TimeturnerOffset converts the configured fixed offset into engine terms.
func (c *Config) TimeturnerOffset() ltc.Offset {
	return ltc.Offset{
		Hours:        c.Offset.Hours,
		Minutes:      c.Offset.Minutes,
		Seconds:      c.Offset.Seconds,
		Frames:       c.Offset.Frames,
		Milliseconds: c.Offset.Milliseconds,
	}
}

// DefaultConfigPath returns the absolute path to the default configuration
// file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/timeturner/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("timeturner.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates required directories for daemon operation.
func (c *Config) EnsureDirectories() error {
	if err := os.MkdirAll(c.Paths.LogDir, 0o755); err != nil {
		return fmt.Errorf("create directory %q: %w", c.Paths.LogDir, err)
	}
	return nil
}

// Save persists the configuration to the given path. Used by the HTTP API's
// config update endpoint so operator changes survive restarts.
func (c *Config) Save(path string) error {
	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}
