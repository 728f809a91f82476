package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"timeturner/internal/config"
)

func TestLoadDefaultsWhenFileAbsent(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	if cfg.Serial.Device != "/dev/ttyACM0" {
		t.Fatalf("unexpected serial device: %q", cfg.Serial.Device)
	}
	if cfg.Serial.BaudRate != 115200 {
		t.Fatalf("unexpected baud rate: %d", cfg.Serial.BaudRate)
	}
	if cfg.Sync.AutoSyncEnabled {
		t.Fatal("expected auto sync disabled by default")
	}
	if cfg.Sync.DefaultNudgeMS != 2 {
		t.Fatalf("unexpected default nudge: %d", cfg.Sync.DefaultNudgeMS)
	}
	if cfg.Sync.TickIntervalMS != 50 || cfg.Sync.DebounceSeconds != 5 {
		t.Fatalf("unexpected control timing: %+v", cfg.Sync)
	}
	if cfg.TimeturnerOffset().Active() {
		t.Fatal("expected inactive offset by default")
	}
	if cfg.Paths.APIBind != "0.0.0.0:8080" {
		t.Fatalf("unexpected api bind: %q", cfg.Paths.APIBind)
	}
	wantLogDir := filepath.Join(tempHome, ".local", "share", "timeturner", "logs")
	if cfg.Paths.LogDir != wantLogDir {
		t.Fatalf("unexpected log dir: got %q want %q", cfg.Paths.LogDir, wantLogDir)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	if info, err := os.Stat(cfg.Paths.LogDir); err != nil || !info.IsDir() {
		t.Fatalf("expected log dir to exist: %v", err)
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "timeturner.toml")

	contents := `
[serial]
device = "/dev/ttyUSB3"
baud_rate = 9600

[sync]
hardware_offset_ms = 14
auto_sync_enabled = true

[offset]
hours = 1
frames = 12
`
	if err := os.WriteFile(configPath, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != configPath {
		t.Fatalf("expected existing config at %q, got %q exists=%v", configPath, resolved, exists)
	}
	if cfg.Serial.Device != "/dev/ttyUSB3" || cfg.Serial.BaudRate != 9600 {
		t.Fatalf("unexpected serial config: %+v", cfg.Serial)
	}
	if cfg.Sync.HardwareOffsetMS != 14 {
		t.Fatalf("unexpected hardware offset: %d", cfg.Sync.HardwareOffsetMS)
	}
	if !cfg.Sync.AutoSyncEnabled {
		t.Fatal("expected auto sync enabled")
	}
	offset := cfg.TimeturnerOffset()
	if !offset.Active() || offset.Hours != 1 || offset.Frames != 12 {
		t.Fatalf("unexpected offset: %+v", offset)
	}
	// Unspecified sections keep defaults.
	if cfg.Sync.DefaultNudgeMS != 2 {
		t.Fatalf("expected default nudge preserved, got %d", cfg.Sync.DefaultNudgeMS)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := []struct {
		name     string
		contents string
		fragment string
	}{
		{
			"zero baud",
			"[serial]\ndevice = \"/dev/ttyACM0\"\nbaud_rate = 0\n",
			"baud_rate",
		},
		{
			"bad log format",
			"[logging]\nformat = \"xml\"\n",
			"logging.format",
		},
		{
			"zero debounce",
			"[sync]\ndebounce_seconds = -1\n",
			"debounce_seconds",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "timeturner.toml")
			if err := os.WriteFile(path, []byte(tc.contents), 0o644); err != nil {
				t.Fatalf("write config: %v", err)
			}
			_, _, _, err := config.Load(path)
			if err == nil || !strings.Contains(err.Error(), tc.fragment) {
				t.Fatalf("expected error mentioning %q, got %v", tc.fragment, err)
			}
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg := config.Default()
	cfg.Sync.HardwareOffsetMS = 25
	cfg.Offset.Minutes = 5
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load after Save failed: %v", err)
	}
	if !exists {
		t.Fatal("expected saved file to exist")
	}
	if loaded.Sync.HardwareOffsetMS != 25 || loaded.Offset.Minutes != 5 {
		t.Fatalf("round trip lost values: %+v", loaded)
	}
}

func TestCreateSampleParses(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("sample config failed to load: %v", err)
	}
	if !exists {
		t.Fatal("expected sample file to exist")
	}
	if cfg.Serial.Device == "" {
		t.Fatal("expected sample to carry a serial device")
	}
}

func TestStoreSnapshotAndReplace(t *testing.T) {
	cfg := config.Default()
	store := config.NewStore(&cfg, "/tmp/config.toml")

	if store.Snapshot().Sync.HardwareOffsetMS != 0 {
		t.Fatal("unexpected initial snapshot")
	}

	next := config.Default()
	next.Sync.HardwareOffsetMS = 42
	store.Replace(&next)

	if got := store.Snapshot().Sync.HardwareOffsetMS; got != 42 {
		t.Fatalf("expected replaced snapshot, got %d", got)
	}
	if store.Path() != "/tmp/config.toml" {
		t.Fatalf("unexpected path: %q", store.Path())
	}
}
